package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const generatorSystemPrompt = `You propose natural-language synonym phrases for content taxonomy values.
For each value you are given, suggest short phrases a marketer might type that should map to it.
Respond with a JSON object of the form {"synonyms": [{"phrase": "...", "value": "...", "confidence": 0.9}]}.
Confidence is your estimate in [0,1] that the phrase unambiguously means the value.`

// Suggestion is one generated synonym candidate.
type Suggestion struct {
	Phrase     string  `json:"phrase"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// GenerateSynonyms proposes synonym phrases for one category's values.
// Suggestions naming a value outside the given list are dropped.
func (e *Extractor) GenerateSynonyms(ctx context.Context, category string, values []string) ([]Suggestion, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	prompt := fmt.Sprintf("Category: %s\nValues: %s", category, strings.Join(values, ", "))
	req := openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: e.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: generatorSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	resp, err := e.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, parseAPIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty completion response")
	}

	var parsed struct {
		Synonyms []Suggestion `json:"synonyms"`
	}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &parsed); err != nil {
		return nil, fmt.Errorf("decode synonym response: %w", err)
	}

	known := make(map[string]struct{}, len(values))
	for _, v := range values {
		known[v] = struct{}{}
	}

	out := make([]Suggestion, 0, len(parsed.Synonyms))
	for _, s := range parsed.Synonyms {
		if s.Phrase == "" {
			continue
		}
		if _, ok := known[s.Value]; !ok {
			continue
		}
		if s.Confidence < 0 || s.Confidence > 1 {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}
