package anthropic

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/everstacklabs/relay/internal/httpclient"
	"github.com/everstacklabs/relay/internal/provider"
)

func init() {
	provider.Register(&Anthropic{})
}

// Upstream model names for the claude catalog entries.
var modelNames = map[string]string{
	"claude-3-opus":   "claude-3-opus-20240229",
	"claude-3-sonnet": "claude-3-sonnet-20240229",
	"claude-3-haiku":  "claude-3-haiku-20240307",
}

// Anthropic serves the claude-3 catalog entries via the Messages API.
type Anthropic struct {
	apiKey  string
	baseURL string
	client  *httpclient.Client
}

func (a *Anthropic) Name() string { return "anthropic" }

// Configure sets up the generator with API credentials and HTTP client.
func (a *Anthropic) Configure(apiKey, baseURL string, client *httpclient.Client) {
	a.apiKey = apiKey
	a.baseURL = baseURL
	a.client = client
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func (a *Anthropic) Generate(ctx context.Context, req provider.Request) (*provider.Response, error) {
	model, ok := modelNames[req.ProviderID]
	if !ok {
		return nil, fmt.Errorf("anthropic: no upstream model for %q", req.ProviderID)
	}

	headers := map[string]string{
		"x-api-key":         a.apiKey,
		"anthropic-version": "2023-06-01",
	}

	body, err := a.client.PostJSON(ctx, a.baseURL+"/messages", headers, messagesRequest{
		Model:     model,
		MaxTokens: req.MaxUnits,
		Messages:  []message{{Role: "user", Content: req.Prompt}},
	})
	if err != nil {
		return nil, provider.FromUpstream(err)
	}

	var resp messagesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing messages response: %w", err)
	}
	if len(resp.Content) == 0 {
		return nil, fmt.Errorf("empty response from anthropic")
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	return &provider.Response{
		Content: text,
		Units:   float64(resp.Usage.InputTokens + resp.Usage.OutputTokens),
	}, nil
}
