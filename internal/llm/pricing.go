package llm

import "strings"

// ModelCost holds per-million-token pricing for a model in USD.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Cost calculates the total USD cost for the given token counts.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)*c.InputPerMTok/1_000_000 +
		float64(outputTokens)*c.OutputPerMTok/1_000_000
}

// LookupCost returns the pricing for a model ID, or nil if unknown.
// Bedrock cross-region prefixes ("us.", "eu.", "apac.") are ignored.
func LookupCost(modelID string) *ModelCost {
	if c, ok := modelCosts[modelID]; ok {
		return &c
	}
	for _, prefix := range []string{"us.", "eu.", "apac."} {
		if trimmed, ok := strings.CutPrefix(modelID, prefix); ok {
			if c, ok := modelCosts[trimmed]; ok {
				return &c
			}
		}
	}
	return nil
}

// Last updated: 2026-09-30.
var modelCosts = map[string]ModelCost{
	// Anthropic
	"claude-3-5-haiku-20241022":  {0.8, 4},
	"claude-3-7-sonnet-20250219": {3, 15},
	"claude-haiku-4-5-20251001":  {1, 5},
	"claude-sonnet-4-20250514":   {3, 15},
	"claude-sonnet-4-5-20250929": {3, 15},
	"claude-opus-4-1-20250805":   {15, 75},

	// OpenAI
	"gpt-4.1":      {2, 8},
	"gpt-4.1-mini": {0.4, 1.6},
	"gpt-4.1-nano": {0.1, 0.4},
	"gpt-4o":       {2.5, 10},
	"gpt-4o-mini":  {0.15, 0.6},
	"gpt-5":        {1.25, 10},
	"gpt-5-mini":   {0.25, 2},
	"gpt-5-nano":   {0.05, 0.4},
	"o4-mini":      {1.1, 4.4},

	// Google (Gemini)
	"gemini-2.0-flash":      {0.1, 0.4},
	"gemini-2.0-flash-lite": {0.075, 0.3},
	"gemini-2.5-flash":      {0.3, 2.5},
	"gemini-2.5-flash-lite": {0.1, 0.4},
	"gemini-2.5-pro":        {1.25, 10},

	// AWS Bedrock
	"amazon.titan-text-express-v1":              {0.2, 0.6},
	"amazon.titan-text-lite-v1":                 {0.15, 0.2},
	"amazon.nova-micro-v1:0":                    {0.035, 0.14},
	"amazon.nova-lite-v1:0":                     {0.06, 0.24},
	"amazon.nova-pro-v1:0":                      {0.8, 3.2},
	"anthropic.claude-3-haiku-20240307-v1:0":    {0.25, 1.25},
	"anthropic.claude-3-5-haiku-20241022-v1:0":  {0.8, 4},
	"anthropic.claude-3-5-sonnet-20241022-v2:0": {3, 15},
	"meta.llama3-1-8b-instruct-v1:0":            {0.22, 0.22},
}
