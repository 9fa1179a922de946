// Package draft generates personalized outreach email drafts for verified
// leads via the Anthropic API.
package draft

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Client is the single-message surface the drafter needs.
type Client interface {
	Message(ctx context.Context, system, user string) (string, error)
}

// sdkClient implements Client using the official anthropic-sdk-go.
type sdkClient struct {
	client    sdk.Client
	model     string
	maxTokens int64
}

// NewClient creates an Anthropic-backed drafting client.
func NewClient(apiKey, model string, maxTokens int64) Client {
	return &sdkClient{
		client: sdk.NewClient(
			option.WithAPIKey(apiKey),
		),
		model:     model,
		maxTokens: maxTokens,
	}
}

func (c *sdkClient) Message(ctx context.Context, system, user string) (string, error) {
	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: c.maxTokens,
		System: []sdk.TextBlockParam{
			{Text: system},
		},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", eris.Wrap(err, "draft: create message")
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		sb.WriteString(block.Text)
	}
	return sb.String(), nil
}

// Draft is a generated outreach email.
type Draft struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

const systemPrompt = `You are an expert B2B sales email writer. You write one
concise, professional, personalized cold outreach email per request. Respond
with JSON only, using exactly the keys "subject" and "body".`

// Generate produces a subject/body draft for the given person and company
// context. The model is asked for JSON; if the response cannot be parsed the
// raw text is returned as the body so nothing is lost.
func Generate(ctx context.Context, c Client, personName, companyInfo string) (*Draft, error) {
	if personName == "" || companyInfo == "" {
		return nil, eris.New("draft: person name and company info are required")
	}

	user := fmt.Sprintf(
		"Write a personalized cold email to %s.\n\nCompany/person context: %s\n\nKeep it short and actionable, reference something specific about the company, and end with a clear ask for a quick call.",
		personName, companyInfo,
	)

	content, err := c.Message(ctx, systemPrompt, user)
	if err != nil {
		return nil, err
	}

	var d Draft
	if err := json.Unmarshal([]byte(extractJSON(content)), &d); err != nil {
		zap.L().Warn("draft: response was not valid JSON, using raw text",
			zap.Error(err),
		)
		return &Draft{Body: content}, nil
	}
	return &d, nil
}

// extractJSON trims code fences and surrounding prose around a JSON object.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return s
	}
	return s[start : end+1]
}
