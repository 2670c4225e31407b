package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/contentiq/internal/domain"
)

const extractorSystemPrompt = `You extract content filters from a user query.
You are given the complete list of allowed categories and their allowed values.
Respond with a JSON object mapping category names to arrays of matched values.
Only use category names and values from the provided list, verbatim.
If nothing matches, respond with an empty JSON object {}.`

// Extractor is the LLM fallback filter extractor using an
// OpenAI-compatible chat API.
type Extractor struct {
	client      *openai.Client
	model       string
	temperature float32
	timeout     time.Duration
	logger      *zap.Logger
}

// Config holds the LLM provider settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
	Logger      *zap.Logger
}

// NewExtractor creates an OpenAI-compatible fallback extractor.
func NewExtractor(cfg *Config) *Extractor {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Extractor{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     timeout,
		logger:      cfg.Logger,
	}
}

// Extract implements usecase/parse.FallbackExtractor. The response is
// JSON-constrained; values outside the enumeration are still discarded
// by the caller.
func (e *Extractor) Extract(ctx context.Context, text string, enumeration map[string][]string) (map[string][]string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: e.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: extractorSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildExtractionPrompt(text, enumeration)},
		},
	}

	resp, err := e.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, parseAPIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty completion response: %w", domain.ErrExtractionFallbackFailed)
	}

	var filters map[string][]string
	raw := resp.Choices[0].Message.Content
	if err := json.Unmarshal([]byte(raw), &filters); err != nil {
		if e.logger != nil {
			e.logger.Warn("fallback extractor returned malformed JSON", zap.String("body", raw))
		}
		return nil, fmt.Errorf("decode extraction response: %w: %w", err, domain.ErrExtractionFallbackFailed)
	}

	return filters, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (e *Extractor) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// buildExtractionPrompt lists the closed vocabulary in a stable order
// followed by the query.
func buildExtractionPrompt(text string, enumeration map[string][]string) string {
	categories := make([]string, 0, len(enumeration))
	for category := range enumeration {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var b strings.Builder
	b.WriteString("Allowed categories and values:\n")
	for _, category := range categories {
		fmt.Fprintf(&b, "- %s: %s\n", category, strings.Join(enumeration[category], ", "))
	}
	b.WriteString("\nQuery: ")
	b.WriteString(text)
	return b.String()
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrExtractionFallbackFailed for correct 502 mapping.
func parseAPIError(err error) error {
	wrap := domain.ErrExtractionFallbackFailed

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail != "" {
			return fmt.Errorf("extraction API error %d: %s: %w",
				reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("extraction API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("extraction API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("extraction request failed: %w", wrap)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
