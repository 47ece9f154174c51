package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"lg/palm-points-api/points"
)

/* ─── Request / Response types ───────────────────────────────────────── */

// classifyRequest is the request body for POST /api/food-log/classify.
type classifyRequest struct {
	Description string `json:"description"`
}

// classification is what the model returns: a category and a palm count.
// Confidence is 1-5 indicating how sure the model is of the category.
type classification struct {
	ItemName   string  `json:"item_name"`
	Category   string  `json:"category"`
	Palms      float64 `json:"palms"`
	Confidence int     `json:"confidence"`
}

// classifyResponse is the classification priced for the caller. It is not
// logged; the client confirms and posts a pick.
type classifyResponse struct {
	classification
	Unit    points.Unit `json:"unit"`
	Points  int         `json:"points"`
	Penalty int         `json:"penalty"`
}

/* ─── OpenAI prompt ──────────────────────────────────────────────────── */

const classifySystemPromptTemplate = `You are a nutrition assistant for a palm-sized portion tracker. One palm is a serving about the size and thickness of the eater's palm (for drinks, one glass).
Classify the food description into exactly one of these categories:
%s
Return a JSON object with:
- "item_name" (string, cleaned up title case)
- "category" (string, one of the keys above; pick the dominant component for mixed dishes)
- "palms" (number, total palm-sized servings, in steps of 0.25)
- "confidence" (integer 1-5: 5=obvious single food, 3=reasonable guess, 1=very uncertain)

Only return {"error": "unrecognized"} if the input is not food or drink at all.
Return only valid JSON, no explanation.`

// classifySystemPrompt lists the category keys with their examples.
func classifySystemPrompt() string {
	var b strings.Builder
	for _, cat := range points.Categories(points.ModeHybrid) {
		fmt.Fprintf(&b, "- %q: %s (%s)\n", cat.Key, cat.Name, cat.Examples)
	}
	return fmt.Sprintf(classifySystemPromptTemplate, b.String())
}

/* ─── OpenAI HTTP client ─────────────────────────────────────────────── */

// openAIMessage is a single message in the OpenAI chat completions request.
type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// openAIRequest is the request body for the OpenAI chat completions API.
type openAIRequest struct {
	Model          string          `json:"model"`
	Messages       []openAIMessage `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat map[string]any  `json:"response_format"`
}

// callOpenAI sends a chat completions request and returns the content of the
// first choice.
func callOpenAI(ctx context.Context, messages []openAIMessage, baseURL string) (string, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY not set")
	}

	bodyBytes, err := json.Marshal(openAIRequest{
		Model:          "gpt-4o-mini",
		Messages:       messages,
		Temperature:    0,
		ResponseFormat: map[string]any{"type": "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai returned status %d: %s", resp.StatusCode, string(respBytes))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBytes, &result); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return result.Choices[0].Message.Content, nil
}

// parseClassification decodes the model output. ok is false when the model
// reported the input as unrecognized or answered with something unusable.
func parseClassification(content string) (classification, bool, error) {
	var raw struct {
		classification
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return classification{}, false, err
	}
	if raw.Error != "" {
		return classification{}, false, nil
	}
	cl := raw.classification
	if _, known := points.LookupCategory(cl.Category, points.ModeHybrid); !known || cl.Palms <= 0 {
		return classification{}, false, nil
	}
	// quarter palms, capped like a manual pick
	cl.Palms = math.Min(math.Max(math.Round(cl.Palms*4)/4, 0.25), maxServings)
	if cl.Confidence < 1 || cl.Confidence > 5 {
		cl.Confidence = 3
	}
	return cl, true, nil
}

/* ─── Handler ────────────────────────────────────────────────────────── */

// classifyFood handles POST /api/food-log/classify.
// Sends a free-text description to OpenAI, maps it to a category and palm
// count, and prices it as a pick logged now.
func (h *Handler) classifyFood(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		apiError(c, http.StatusBadRequest, "description is required")
		return
	}

	messages := []openAIMessage{
		{Role: "system", Content: classifySystemPrompt()},
		{Role: "user", Content: req.Description},
	}
	content, err := callOpenAI(c.Request.Context(), messages, h.openAIBaseURL)
	if err != nil {
		log.Printf("[classifyFood] OpenAI error: %v", err)
		apiError(c, http.StatusInternalServerError, "openai request failed")
		return
	}

	cl, ok, err := parseClassification(content)
	if err != nil {
		log.Printf("[classifyFood] Failed to parse OpenAI response: %v", err)
		apiError(c, http.StatusInternalServerError, "openai request failed")
		return
	}
	if !ok {
		c.JSON(http.StatusOK, gin.H{"error": "unrecognized"})
		return
	}

	mode, penalty := h.classifyPricing(c)
	unit := points.UnitFor(cl.Category, false)
	c.JSON(http.StatusOK, classifyResponse{
		classification: cl,
		Unit:           unit,
		Points:         points.PickCost(cl.Category, cl.Palms, unit, mode, penalty),
		Penalty:        penalty,
	})
}

// classifyPricing returns the user's mode and the current window penalty,
// falling back to hybrid with no penalty when the profile is unavailable.
func (h *Handler) classifyPricing(c *gin.Context) (points.Mode, int) {
	if h.db == nil {
		return points.ModeHybrid, points.PenaltyNone
	}
	p, penalty, err := h.pricingContext(c, c.GetInt("user_id"), h.clock())
	if err != nil {
		log.Printf("[classifyFood] profile lookup failed: %v", err)
		return points.ModeHybrid, points.PenaltyNone
	}
	return p.mode(), penalty
}
