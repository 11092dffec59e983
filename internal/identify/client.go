// internal/identify/client.go
package identify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"mcp-glucoguide/internal/models"
)

// Identifier turns a free-text meal description into food items.
type Identifier interface {
	Identify(ctx context.Context, req *models.IdentificationRequest) (*models.IdentificationResponse, error)
}

type Config struct {
	URL     string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client talks to the completion gateway exposed through the MCP proxy.
type Client struct {
	httpClient *http.Client
	gatewayURL string
	apiKey     string
	model      string
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		gatewayURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
	}
}

const systemPrompt = `You are a nutrition expert who identifies foods in meal descriptions.

Name each food the way a nutrition database would (for example "white rice", "chicken breast", "apple").
Estimate the grams eaten for every item.

IMPORTANT: Always respond with valid JSON in this exact format:
{
  "foods": [
    {
      "name": "food name",
      "estimated_grams": [number],
      "portions": [number],
      "confidence": "high|medium|low"
    }
  ],
  "meal_description": "short summary",
  "confidence": "high|medium|low",
  "clarifications": ["specific question1"],
  "needs_more_info": [true/false]
}

If portion sizes are unclear, set "needs_more_info" to true and ask about them in "clarifications".`

func (c *Client) Identify(ctx context.Context, req *models.IdentificationRequest) (*models.IdentificationResponse, error) {
	if strings.TrimSpace(req.Description) == "" {
		return nil, fmt.Errorf("meal description is required")
	}

	completionRequest := map[string]interface{}{
		"model":         c.model,
		"system_prompt": systemPrompt,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": fmt.Sprintf("Identify the foods and portion sizes in this meal: %q", req.Description),
			},
		},
		"max_tokens":  1500,
		"temperature": 0.1,
	}

	text, err := c.callGateway(ctx, "create_completion", completionRequest)
	if err != nil {
		return nil, fmt.Errorf("failed to get AI completion: %w", err)
	}

	return parseCompletion(text, req.Description), nil
}

func (c *Client) callGateway(ctx context.Context, toolName string, args interface{}) (string, error) {
	url := fmt.Sprintf("%s/openrouter-gateway", c.gatewayURL)

	requestData := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params": map[string]interface{}{
			"name":      toolName,
			"arguments": args,
		},
	}

	jsonData, err := json.Marshal(requestData)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("failed to decode response: invalid JSON")
	}
	if msg := gjson.GetBytes(body, "error.message"); msg.Exists() {
		return "", fmt.Errorf("gateway error: %s", msg.String())
	}

	text := gjson.GetBytes(body, "result.content.0.text")
	if !text.Exists() {
		return "", fmt.Errorf("unexpected response format")
	}
	return text.String(), nil
}

// parseCompletion never fails: output the model did not shape correctly
// becomes a low-confidence response asking for more detail.
func parseCompletion(output, description string) *models.IdentificationResponse {
	content := output
	if gjson.Valid(output) {
		if c := gjson.Get(output, "content"); c.Type == gjson.String {
			content = c.String()
		}
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end <= start {
		return fallbackResponse(description)
	}

	doc := content[start : end+1]
	if !gjson.Valid(doc) {
		return fallbackResponse(description)
	}

	parsed := gjson.Parse(doc)
	resp := &models.IdentificationResponse{
		MealDescription: parsed.Get("meal_description").String(),
		Confidence:      models.ParseConfidence(parsed.Get("confidence").String()),
		NeedsMoreInfo:   parsed.Get("needs_more_info").Bool(),
	}
	if resp.MealDescription == "" {
		resp.MealDescription = description
	}

	parsed.Get("foods").ForEach(func(_, item gjson.Result) bool {
		name := strings.TrimSpace(item.Get("name").String())
		if name == "" {
			return true
		}
		food := models.IdentifiedFood{
			Name:           name,
			EstimatedGrams: item.Get("estimated_grams").Float(),
			Portions:       item.Get("portions").Float(),
			Confidence:     models.ParseConfidence(item.Get("confidence").String()),
		}
		if food.Portions <= 0 {
			food.Portions = 1
		}
		resp.Foods = append(resp.Foods, food)
		return true
	})

	parsed.Get("clarifications").ForEach(func(_, q gjson.Result) bool {
		if s := strings.TrimSpace(q.String()); s != "" {
			resp.Clarifications = append(resp.Clarifications, s)
		}
		return true
	})

	if len(resp.Foods) == 0 {
		resp.NeedsMoreInfo = true
	}
	return resp
}

func fallbackResponse(description string) *models.IdentificationResponse {
	return &models.IdentificationResponse{
		MealDescription: description,
		Confidence:      models.LowConfidence,
		NeedsMoreInfo:   true,
		Clarifications: []string{
			"Which foods were in the meal?",
			"About how large was each portion (in grams or cups)?",
		},
	}
}
