package gemini

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gitlab.com/yelinaung/budget-tracker/internal/logger"
	"gitlab.com/yelinaung/budget-tracker/internal/models"
	"gitlab.com/yelinaung/budget-tracker/internal/tracker"
	"google.golang.org/genai"
)

const (
	suggestTimeout     = 10 * time.Second
	maxReasoningLength = 500
)

type categoryResponse struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

var _ tracker.CategorySuggester = (*Client)(nil)

// SuggestCategory asks Gemini to pick one of availableCategories for the
// expense description. The answer must name a listed category and carry a
// confidence in [0, 1].
func (c *Client) SuggestCategory(ctx context.Context, description string, availableCategories []string) (*tracker.Suggestion, error) {
	descHash := hashDescription(description)
	log := logger.Log.With().Str("description_hash", descHash).Logger()

	if c.generator == nil {
		return nil, fmt.Errorf("gemini client not initialized")
	}
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("description is required")
	}
	if len(availableCategories) == 0 {
		return nil, fmt.Errorf("no categories available")
	}

	prompt := buildPrompt(SanitizeForPrompt(description, models.MaxDescriptionLength), availableCategories)

	timeoutCtx, cancel := context.WithTimeout(ctx, suggestTimeout)
	defer cancel()

	contents := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: prompt}}},
	}

	temp := float32(0.2)
	config := &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: int32(300),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				{Text: "You are a JSON API that classifies personal expenses. Respond with a single JSON object only."},
			},
		},
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"category": {
					Type:        genai.TypeString,
					Enum:        availableCategories,
					Description: "The best matching category from the provided list",
				},
				"confidence": {
					Type:        genai.TypeNumber,
					Description: "Confidence score between 0 and 1",
				},
				"reasoning": {
					Type:        genai.TypeString,
					Description: "One short sentence explaining the choice",
				},
			},
			Required: []string{"category", "confidence", "reasoning"},
		},
	}

	resp, err := c.generator.GenerateContent(timeoutCtx, ModelName, contents, config)
	if err != nil {
		log.Error().Err(err).Msg("Gemini category suggestion failed")
		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("no response from Gemini")
	}

	jsonText := extractJSON(resp.Text())
	if jsonText == "" {
		log.Warn().Msg("No JSON found in Gemini response")
		return nil, fmt.Errorf("no JSON found in response")
	}

	var parsed categoryResponse
	if err := json.Unmarshal([]byte(jsonText), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	matched := ""
	for _, cat := range availableCategories {
		if strings.EqualFold(cat, strings.TrimSpace(parsed.Category)) {
			matched = cat
			break
		}
	}
	if matched == "" {
		log.Warn().Str("suggested_category", parsed.Category).Msg("Suggested category not in available list")
		return nil, fmt.Errorf("suggested category %q not in available categories", parsed.Category)
	}

	if parsed.Confidence < 0 || parsed.Confidence > 1 {
		return nil, fmt.Errorf("confidence out of range: %f", parsed.Confidence)
	}

	log.Debug().
		Str("category", matched).
		Float64("confidence", parsed.Confidence).
		Msg("Gemini suggested category")

	return &tracker.Suggestion{
		Category:   matched,
		Confidence: parsed.Confidence,
		Reasoning:  sanitizeReasoning(parsed.Reasoning),
	}, nil
}

func buildPrompt(description string, categories []string) string {
	return fmt.Sprintf(`Categorize this personal expense: "%s"

Available categories:
- %s

Rules:
- Choose exactly one category from the list
- "Food" covers groceries and eating out, "Transport" covers fuel, taxis and public transit
- Use "Other" only when nothing else fits
- Higher confidence (0.8-1.0) for obvious matches, lower (0.4-0.7) for ambiguous ones

Return JSON only:
{"category": "exact category name", "confidence": 0.0-1.0, "reasoning": "brief explanation"}`,
		description, strings.Join(categories, "\n- "))
}

// extractJSON returns the outermost {...} span in text, or "" if none.
// Gemini occasionally adds a preamble even in JSON mode.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	if start == -1 {
		return ""
	}
	end := strings.LastIndex(text, "}")
	if end <= start {
		return ""
	}
	return text[start : end+1]
}

// SanitizeForPrompt strips characters that could break out of the quoted
// prompt field, collapses whitespace and truncates to maxLength bytes.
func SanitizeForPrompt(input string, maxLength int) string {
	input = strings.ReplaceAll(input, `"`, `'`)
	input = strings.ReplaceAll(input, "`", "'")
	input = strings.ReplaceAll(input, "\x00", "")
	input = strings.Join(strings.Fields(input), " ")
	if len(input) > maxLength {
		input = strings.TrimSpace(input[:maxLength])
	}
	return input
}

func sanitizeReasoning(reasoning string) string {
	reasoning = strings.Join(strings.Fields(reasoning), " ")
	if len(reasoning) > maxReasoningLength {
		reasoning = strings.TrimSpace(reasoning[:maxReasoningLength])
	}
	return reasoning
}

func hashDescription(description string) string {
	hash := sha256.Sum256([]byte(description))
	return hex.EncodeToString(hash[:8])
}
