package reportgen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Request is the engineer's raw input: the issue text and an optional
// photo as a data URI.
type Request struct {
	IssueReport string  `json:"issueReport" binding:"required"`
	Photo       *string `json:"photo,omitempty"`
}

// Result is the drafted verification report plus the fields the engineer
// still has to confirm on site. Advisory only; the workflow never depends
// on it.
type Result struct {
	Report             string   `json:"report"`
	ConfirmationNeeded []string `json:"confirmationNeeded"`
}

// Generator drafts a verification report from a citizen's issue text.
type Generator interface {
	Draft(ctx context.Context, req Request) (*Result, error)
}

// Client wraps the Anthropic API for report drafting.
type Client struct {
	api   *anthropic.Client
	model anthropic.Model
}

// NewClient creates a report-draft client with the given API key and model.
func NewClient(apiKey, model string) *Client {
	opts := []option.RequestOption{}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	client := anthropic.NewClient(opts...)
	return &Client{
		api:   &client,
		model: anthropic.Model(model),
	}
}

const systemPrompt = `You draft municipal civic-issue verification reports for a field engineer. Return ONLY a JSON object with these fields:
- "report": a concise professional verification report based on the citizen's description and any photo
- "confirmationNeeded": an array of short field names the engineer must confirm on site (e.g. "exact dimensions", "traffic impact")

Rules:
- Never invent measurements or facts not visible in the input; list them in confirmationNeeded instead
- Return valid JSON only, no markdown fencing or explanation`

// Draft asks the model for a report draft. Callers treat any error as
// non-fatal: manual submission must still work without a draft.
func (c *Client) Draft(ctx context.Context, req Request) (*Result, error) {
	blocks := []anthropic.ContentBlockParamUnion{
		anthropic.NewTextBlock("Draft a verification report for this citizen issue:\n\n" + req.IssueReport),
	}
	if req.Photo != nil {
		if mediaType, data, ok := parseDataURI(*req.Photo); ok {
			blocks = append(blocks, anthropic.NewImageBlockBase64(mediaType, data))
		}
	}

	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(blocks...),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic API call: %w", err)
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}
	if text == "" {
		return nil, fmt.Errorf("no text content in API response")
	}

	text = stripFencing(text)

	var result Result
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, fmt.Errorf("parse draft response as JSON: %w", err)
	}
	return &result, nil
}

// parseDataURI splits "data:image/png;base64,AAAA" into media type and
// payload.
func parseDataURI(uri string) (mediaType, data string, ok bool) {
	if !strings.HasPrefix(uri, "data:") {
		return "", "", false
	}
	rest := strings.TrimPrefix(uri, "data:")
	meta, payload, found := strings.Cut(rest, ",")
	if !found || !strings.HasSuffix(meta, ";base64") {
		return "", "", false
	}
	return strings.TrimSuffix(meta, ";base64"), payload, true
}

func stripFencing(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		lines := strings.SplitN(text, "\n", 2)
		if len(lines) > 1 {
			text = lines[1]
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}
	return text
}
