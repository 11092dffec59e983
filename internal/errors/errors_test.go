package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestAnalysisError_Error(t *testing.T) {
	tests := []struct {
		name      string
		err       *AnalysisError
		wantParts []string
	}{
		{
			name:      "with cause",
			err:       Wrap(NotFound, "food lookup failed", stderrors.New("no rows")),
			wantParts: []string{"NOT_FOUND", "food lookup failed", "no rows"},
		},
		{
			name:      "without cause",
			err:       New(InvalidPortion, "servings must be positive"),
			wantParts: []string{"INVALID_PORTION", "servings must be positive"},
		},
		{
			name:      "formatted",
			err:       Newf(UnknownGI, "no GI for %q", "kale"),
			wantParts: []string{"UNKNOWN_GI", `no GI for "kale"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			for _, part := range tt.wantParts {
				if !strings.Contains(got, part) {
					t.Errorf("Error() = %q, want to contain %q", got, part)
				}
			}
		})
	}
}

func TestAnalysisError_IsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("failed to analyze: %w", Newf(NotFound, "food %q not found", "unicorn"))

	if !stderrors.Is(err, ErrNotFound) {
		t.Error("wrapped NOT_FOUND should match ErrNotFound")
	}
	if stderrors.Is(err, ErrInvalidPortion) {
		t.Error("NOT_FOUND should not match ErrInvalidPortion")
	}
}

func TestAnalysisError_Unwrap(t *testing.T) {
	cause := stderrors.New("root cause")
	err := Wrap(InternalError, "something went wrong", cause)

	if err.Unwrap() != cause {
		t.Errorf("Unwrap() = %v, want %v", err.Unwrap(), cause)
	}
	if New(InvalidInput, "x").Unwrap() != nil {
		t.Error("Unwrap() on error without cause should return nil")
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"nil", nil, ""},
		{"direct", New(UnknownGI, "x"), UnknownGI},
		{"wrapped", fmt.Errorf("ctx: %w", New(InvalidPortion, "x")), InvalidPortion},
		{"foreign", stderrors.New("boom"), InternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWithDetails(t *testing.T) {
	err := New(InvalidInput, "bad portions")
	if err.WithDetails(map[string]float64{"portions": -1}) != err {
		t.Error("WithDetails should return the same error for chaining")
	}
	if err.Details == nil {
		t.Error("Details should be set")
	}
}
