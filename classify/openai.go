package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIEnricher asks an OpenAI-compatible endpoint to classify files the
// heuristic could not. The provider is capability-gated: it is only
// constructed when both a base URL and an API key are configured.
type OpenAIEnricher struct {
	client *openai.Client
	model  string
}

// NewOpenAIEnricher creates the provider, or returns (nil, false) when the
// endpoint is not configured. Absence is not an error.
func NewOpenAIEnricher(baseURL, apiKey, model string) (*OpenAIEnricher, bool) {
	if baseURL == "" || apiKey == "" {
		return nil, false
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &OpenAIEnricher{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}, true
}

// Name implements Enricher
func (o *OpenAIEnricher) Name() string { return "openai" }

const enrichPrompt = `You label clinical reference files. Given a filename and an
optional text excerpt, reply with a single JSON object:
{"docType": "...", "condition": "...", "year": "..."}
docType must be one of: %s. Use "" for any field you cannot determine.`

// Enrich implements Enricher
func (o *OpenAIEnricher) Enrich(ctx context.Context, filename string, preview []byte, tags Tags) (Tags, error) {
	docTypes := make([]string, 0, len(DefaultRules().DocTypes))
	for _, r := range DefaultRules().DocTypes {
		docTypes = append(docTypes, r.Value)
	}

	user := "Filename: " + filename
	if text := TextPreview(preview); len(text) > 0 {
		excerpt := string(text)
		if len(excerpt) > 2000 {
			excerpt = excerpt[:2000]
		}
		user += "\nExcerpt:\n" + excerpt
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: fmt.Sprintf(enrichPrompt, strings.Join(docTypes, ", "))},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return tags, err
	}
	if len(resp.Choices) == 0 {
		return tags, fmt.Errorf("empty completion")
	}

	var proposed struct {
		DocType   string `json:"docType"`
		Condition string `json:"condition"`
		Year      string `json:"year"`
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.Trim(content, "` \n")
	if err := json.Unmarshal([]byte(content), &proposed); err != nil {
		return tags, fmt.Errorf("unparseable completion: %w", err)
	}

	// The engine sanitizes these against the closed lists; pass through as-is.
	if proposed.DocType != "" {
		tags.DocType = proposed.DocType
	}
	if proposed.Condition != "" {
		tags.Condition = proposed.Condition
	}
	if proposed.Year != "" {
		tags.Year = proposed.Year
	}
	return tags, nil
}

var _ Enricher = (*OpenAIEnricher)(nil)
