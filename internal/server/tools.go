// internal/server/tools.go
package server

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"

	apperrors "mcp-glucoguide/internal/errors"
	"mcp-glucoguide/internal/glycemic"
	"mcp-glucoguide/internal/models"
	"mcp-glucoguide/internal/profile"
	"mcp-glucoguide/internal/risk"
	"mcp-glucoguide/internal/storage"
)

type AnalyzeFoodParams struct {
	FoodName     string       `json:"food_name" description:"Food to analyze, matched case-insensitively"`
	Portions     float64      `json:"portions" description:"Number of canonical servings eaten"`
	ServingGrams float64      `json:"serving_grams,omitempty" description:"Override of the serving size in grams"`
	UserID       string       `json:"user_id,omitempty" description:"User whose stored profile personalizes the result"`
	Profile      *profile.Raw `json:"profile,omitempty" description:"Inline profile, takes precedence over user_id"`
}

type AnalyzeMealParams struct {
	Foods   []glycemic.FoodRequest `json:"foods" description:"Foods eaten together"`
	UserID  string                 `json:"user_id,omitempty" description:"User whose stored profile personalizes the result"`
	Profile *profile.Raw           `json:"profile,omitempty" description:"Inline profile, takes precedence over user_id"`
}

type AnalyzeDescriptionParams struct {
	Description string       `json:"description" description:"Free-text description of the meal"`
	UserID      string       `json:"user_id,omitempty" description:"User whose stored profile personalizes the result"`
	Profile     *profile.Raw `json:"profile,omitempty" description:"Inline profile, takes precedence over user_id"`
}

type SearchFoodsParams struct {
	Query string `json:"query" description:"Substring of the food name"`
	Limit int    `json:"limit,omitempty" description:"Maximum number of foods to return"`
}

type SaveProfileParams struct {
	UserID  string      `json:"user_id" description:"Profile owner"`
	Profile profile.Raw `json:"profile" description:"Health profile fields, all optional"`
}

type GetProfileParams struct {
	UserID string `json:"user_id" description:"Profile owner"`
}

type GetAnalysesParams struct {
	UserID    string `json:"user_id,omitempty" description:"Only analyses for this user"`
	StartDate string `json:"start_date,omitempty" description:"Start date for analysis query (YYYY-MM-DD)"`
	EndDate   string `json:"end_date,omitempty" description:"End date for analysis query (YYYY-MM-DD)"`
	Limit     int    `json:"limit,omitempty" description:"Maximum number of analyses to return"`
}

// AnalysisResponse is returned by every analyze tool. Risk is present only
// when a profile was available.
type AnalysisResponse struct {
	AnalysisID string                  `json:"analysis_id,omitempty"`
	EGL        *models.EGLResult       `json:"egl"`
	Risk       *models.RiskScoreResult `json:"risk,omitempty"`
}

type DescriptionResponse struct {
	AnalysisResponse
	Identification *models.IdentificationResponse `json:"identification"`
	Unmatched      []string                       `json:"unmatched,omitempty"`
}

type ProfileResponse struct {
	UserID  string                `json:"user_id"`
	Profile *profile.Raw          `json:"profile"`
	Context models.ProfileContext `json:"context"`
}

// extractParams safely extracts parameters from the request arguments
func extractParams(req *protocol.CallToolRequest, target interface{}) error {
	jsonBytes, err := json.Marshal(req.Arguments)
	if err != nil {
		return apperrors.Wrap(apperrors.InvalidInput, "failed to marshal arguments", err)
	}

	if err := json.Unmarshal(jsonBytes, target); err != nil {
		return apperrors.Wrap(apperrors.InvalidInput, "invalid parameters", err)
	}

	return nil
}

func (s *GlucoGuideServer) handleAnalyzeFood(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params AnalyzeFoodParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	egl, err := s.engine.Compute(ctx, glycemic.FoodRequest{
		FoodID:       params.FoodName,
		Portions:     params.Portions,
		ServingGrams: params.ServingGrams,
	})
	if err != nil {
		return nil, err
	}

	resp, err := s.personalize(ctx, egl, params.UserID, params.Profile)
	if err != nil {
		return nil, err
	}
	return s.createJSONResponse(resp)
}

func (s *GlucoGuideServer) handleAnalyzeMeal(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params AnalyzeMealParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	egl, err := s.engine.ComputeMeal(ctx, params.Foods)
	if err != nil {
		return nil, err
	}

	resp, err := s.personalize(ctx, egl, params.UserID, params.Profile)
	if err != nil {
		return nil, err
	}
	return s.createJSONResponse(resp)
}

// handleAnalyzeDescription identifies foods in free text, scores the ones
// the food table knows and reports the rest as unmatched.
func (s *GlucoGuideServer) handleAnalyzeDescription(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params AnalyzeDescriptionParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.Description) == "" {
		return nil, apperrors.New(apperrors.InvalidInput, "meal description is required")
	}
	if s.identifier == nil {
		return nil, apperrors.New(apperrors.InvalidInput, "food identification is not configured")
	}

	ident, err := s.identifier.Identify(ctx, &models.IdentificationRequest{Description: params.Description})
	if err != nil {
		return nil, err
	}

	resp := &DescriptionResponse{Identification: ident}
	var foods []glycemic.FoodRequest
	for _, f := range ident.Foods {
		if _, err := s.storage.Resolve(ctx, f.Name); err != nil {
			if apperrors.CodeOf(err) != apperrors.NotFound {
				return nil, err
			}
			resp.Unmatched = append(resp.Unmatched, f.Name)
			continue
		}
		foods = append(foods, identifiedRequest(f))
	}

	if len(foods) == 0 {
		ident.NeedsMoreInfo = true
		return s.createJSONResponse(resp)
	}

	egl, err := s.engine.ComputeMeal(ctx, foods)
	if err != nil {
		return nil, err
	}
	analysis, err := s.personalize(ctx, egl, params.UserID, params.Profile)
	if err != nil {
		return nil, err
	}
	resp.AnalysisResponse = *analysis
	return s.createJSONResponse(resp)
}

func identifiedRequest(f models.IdentifiedFood) glycemic.FoodRequest {
	portions := f.Portions
	if portions <= 0 {
		portions = 1
	}
	req := glycemic.FoodRequest{FoodID: f.Name, Portions: portions}
	if f.EstimatedGrams > 0 {
		req.ServingGrams = f.EstimatedGrams / portions
	}
	return req
}

func (s *GlucoGuideServer) handleComputeRisk(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params AnalyzeFoodParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	pc, err := s.resolveProfile(ctx, params.UserID, params.Profile)
	if err != nil {
		return nil, err
	}
	if pc == nil {
		return nil, apperrors.New(apperrors.NotFound, "a profile is required to compute a risk score")
	}

	egl, err := s.engine.Compute(ctx, glycemic.FoodRequest{
		FoodID:       params.FoodName,
		Portions:     params.Portions,
		ServingGrams: params.ServingGrams,
	})
	if err != nil {
		return nil, err
	}

	resp := &AnalysisResponse{EGL: egl, Risk: risk.Compute(egl, *pc)}
	resp.AnalysisID = s.logAnalysis(ctx, params.UserID, resp)
	return s.createJSONResponse(resp)
}

// personalize adds the risk score when a profile is available and logs the
// analysis.
func (s *GlucoGuideServer) personalize(ctx context.Context, egl *models.EGLResult, userID string, raw *profile.Raw) (*AnalysisResponse, error) {
	pc, err := s.resolveProfile(ctx, userID, raw)
	if err != nil {
		return nil, err
	}

	resp := &AnalysisResponse{EGL: egl}
	if pc != nil {
		resp.Risk = risk.Compute(egl, *pc)
	}
	resp.AnalysisID = s.logAnalysis(ctx, userID, resp)
	return resp, nil
}

func (s *GlucoGuideServer) resolveProfile(ctx context.Context, userID string, raw *profile.Raw) (*models.ProfileContext, error) {
	if raw != nil {
		pc, err := profile.Build(*raw)
		if err != nil {
			return nil, err
		}
		return &pc, nil
	}
	if userID == "" {
		return nil, nil
	}
	return s.profiles.LoadProfile(ctx, userID)
}

// logAnalysis appends to the analysis log. Failures are logged only; the
// caller still gets its result.
func (s *GlucoGuideServer) logAnalysis(ctx context.Context, userID string, resp *AnalysisResponse) string {
	payload, err := json.Marshal(resp)
	if err != nil {
		s.logger.Warn("failed to marshal analysis payload", "error", err)
	}

	a := &models.Analysis{
		UserID:      userID,
		FoodName:    resp.EGL.FoodName,
		Portions:    resp.EGL.Portions,
		BaseGL:      resp.EGL.BaseGL,
		EffectiveGL: resp.EGL.EffectiveGL,
		SpikeLevel:  resp.EGL.SpikeLevel,
		Payload:     string(payload),
	}
	if resp.Risk != nil {
		score := resp.Risk.RiskScore
		a.RiskScore = &score
		a.RiskLevel = resp.Risk.RiskLevel
	}

	if err := s.storage.SaveAnalysis(ctx, a); err != nil {
		s.logger.Warn("failed to log analysis", "food", a.FoodName, "error", err)
		return ""
	}
	return a.ID
}

func (s *GlucoGuideServer) handleSearchFoods(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params SearchFoodsParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if params.Limit <= 0 {
		params.Limit = 20
	}

	foods, err := s.storage.SearchFoods(ctx, params.Query, params.Limit)
	if err != nil {
		return nil, err
	}
	return s.createJSONResponse(foods)
}

func (s *GlucoGuideServer) handleListCategories(ctx context.Context, _ *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	categories, err := s.storage.Categories(ctx)
	if err != nil {
		return nil, err
	}
	return s.createJSONResponse(categories)
}

func (s *GlucoGuideServer) handleSaveProfile(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params SaveProfileParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	if err := s.storage.SaveProfile(ctx, params.UserID, params.Profile); err != nil {
		return nil, err
	}
	return s.profileResponse(params.UserID, &params.Profile)
}

func (s *GlucoGuideServer) handleGetProfile(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params GetProfileParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if params.UserID == "" {
		return nil, apperrors.New(apperrors.InvalidInput, "user id is required")
	}

	raw, err := s.storage.GetProfile(ctx, params.UserID)
	if err != nil {
		return nil, err
	}
	return s.profileResponse(params.UserID, raw)
}

func (s *GlucoGuideServer) profileResponse(userID string, raw *profile.Raw) (*protocol.CallToolResult, error) {
	pc, err := profile.Build(*raw)
	if err != nil {
		return nil, err
	}
	return s.createJSONResponse(&ProfileResponse{UserID: userID, Profile: raw, Context: pc})
}

func (s *GlucoGuideServer) handleGetAnalyses(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params GetAnalysesParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	analyses, err := s.storage.GetAnalyses(ctx, storage.AnalysisFilter{
		UserID:    params.UserID,
		StartDate: params.StartDate,
		EndDate:   params.EndDate,
		Limit:     params.Limit,
	})
	if err != nil {
		return nil, err
	}
	return s.createJSONResponse(analyses)
}

func (s *GlucoGuideServer) registerTools() {
	s.tools = map[string]toolHandler{
		"analyze_food":        s.handleAnalyzeFood,
		"analyze_meal":        s.handleAnalyzeMeal,
		"analyze_description": s.handleAnalyzeDescription,
		"compute_risk":        s.handleComputeRisk,
		"search_foods":        s.handleSearchFoods,
		"list_categories":     s.handleListCategories,
		"save_profile":        s.handleSaveProfile,
		"get_profile":         s.handleGetProfile,
		"get_analyses":        s.handleGetAnalyses,
	}

	for name := range s.tools {
		s.logger.Debug("registered tool", "tool", name)
	}
}
