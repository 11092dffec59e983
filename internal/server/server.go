// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/ThinkInAIXYZ/go-mcp/server"

	apperrors "mcp-glucoguide/internal/errors"
	"mcp-glucoguide/internal/glycemic"
	"mcp-glucoguide/internal/identify"
	"mcp-glucoguide/internal/profile"
	"mcp-glucoguide/internal/storage"
)

type Config struct {
	Host    string
	Port    int
	Version string
}

type GlucoGuideServer struct {
	server     *server.Server
	httpServer *http.Server
	storage    *storage.SQLiteStorage
	profiles   profile.Loader
	engine     *glycemic.Service
	identifier identify.Identifier
	logger     *slog.Logger
	config     *Config
	tools      map[string]toolHandler
}

type toolHandler func(context.Context, *protocol.CallToolRequest) (*protocol.CallToolResult, error)

// NewGlucoGuideServer wires the analysis engine and storage behind the MCP
// tool endpoint. The server does not own stor; callers close it.
func NewGlucoGuideServer(cfg *Config, stor *storage.SQLiteStorage, engine *glycemic.Service, identifier identify.Identifier, logger *slog.Logger) (*GlucoGuideServer, error) {
	if cfg.Version == "" {
		cfg.Version = "dev"
	}

	s := &GlucoGuideServer{
		storage:    stor,
		profiles:   stor,
		engine:     engine,
		identifier: identifier,
		logger:     logger,
		config:     cfg,
	}

	// Create MCP server (without transport, we'll handle HTTP manually)
	mcpServer, err := server.NewServer(
		nil,
		server.WithServerInfo(protocol.Implementation{
			Name:    "glucoguide",
			Version: cfg.Version,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create MCP server: %w", err)
	}
	s.server = mcpServer

	s.registerTools()

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

// Handler returns the HTTP routes: tool calls on / and a health check.
func (s *GlucoGuideServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/", s.handleHTTP)
	return mux
}

func (s *GlucoGuideServer) handleHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	var request protocol.CallToolRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.writeError(w, apperrors.Wrap(apperrors.InvalidInput, "invalid JSON", err))
		return
	}

	handler, ok := s.tools[request.Name]
	if !ok {
		s.writeError(w, apperrors.Newf(apperrors.NotFound, "unknown tool: %s", request.Name))
		return
	}

	start := time.Now()
	result, err := handler(r.Context(), &request)
	if err != nil {
		s.logger.Warn("tool call failed",
			"tool", request.Name,
			"code", apperrors.CodeOf(err),
			"error", err,
			"duration", time.Since(start),
		)
		s.writeError(w, err)
		return
	}
	s.logger.Info("tool call", "tool", request.Name, "duration", time.Since(start))

	if err := json.NewEncoder(w).Encode(result); err != nil {
		s.logger.Error("failed to encode response", "tool", request.Name, "error", err)
	}
}

func (s *GlucoGuideServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	status := map[string]interface{}{
		"status":  "ok",
		"version": s.config.Version,
	}
	code := http.StatusOK

	if err := s.storage.Ping(r.Context()); err != nil {
		status["status"] = "unavailable"
		status["error"] = err.Error()
		code = http.StatusServiceUnavailable
	} else if n, err := s.storage.CountFoods(r.Context()); err == nil {
		status["foods"] = n
	}

	w.WriteHeader(code)
	json.NewEncoder(w).Encode(status)
}

// statusFor maps analysis error codes onto HTTP statuses.
func statusFor(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.InvalidInput, apperrors.InvalidPortion:
		return http.StatusBadRequest
	case apperrors.UnknownGI:
		return http.StatusUnprocessableEntity
	case apperrors.NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *GlucoGuideServer) writeError(w http.ResponseWriter, err error) {
	code := apperrors.CodeOf(err)

	body := &apperrors.AnalysisError{Code: code, Message: err.Error()}
	var ae *apperrors.AnalysisError
	if errors.As(err, &ae) {
		body = ae
	} else if code == apperrors.InternalError {
		body.Message = "internal error"
		s.logger.Error("internal error", "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusFor(code))
	json.NewEncoder(w).Encode(map[string]interface{}{"error": body})
}

func (s *GlucoGuideServer) Start(ctx context.Context) error {
	s.logger.Info("starting glucoguide server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *GlucoGuideServer) Stop(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

func (s *GlucoGuideServer) createJSONResponse(data interface{}) (*protocol.CallToolResult, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}

	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{
				Type: "text",
				Text: string(jsonBytes),
			},
		},
	}, nil
}
