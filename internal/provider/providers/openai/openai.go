package openai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/everstacklabs/relay/internal/catalog"
	"github.com/everstacklabs/relay/internal/httpclient"
	"github.com/everstacklabs/relay/internal/provider"
)

func init() {
	provider.Register(&OpenAI{})
}

// OpenAI serves the gpt-4, gpt-3.5-turbo, dall-e-3, and sora catalog
// entries.
type OpenAI struct {
	apiKey  string
	baseURL string
	client  *httpclient.Client
}

func (o *OpenAI) Name() string { return "openai" }

// Configure sets up the generator with API credentials and HTTP client.
func (o *OpenAI) Configure(apiKey, baseURL string, client *httpclient.Client) {
	o.apiKey = apiKey
	o.baseURL = baseURL
	o.client = client
}

func (o *OpenAI) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + o.apiKey}
}

func (o *OpenAI) Generate(ctx context.Context, req provider.Request) (*provider.Response, error) {
	switch req.Capability {
	case catalog.CapabilityText:
		return o.generateText(ctx, req)
	case catalog.CapabilityImage:
		return o.generateImage(ctx, req)
	case catalog.CapabilityVideo:
		return o.generateVideo(ctx, req)
	}
	return nil, fmt.Errorf("openai: unsupported capability %q", req.Capability)
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

func (o *OpenAI) generateText(ctx context.Context, req provider.Request) (*provider.Response, error) {
	body, err := o.client.PostJSON(ctx, o.baseURL+"/chat/completions", o.headers(), chatRequest{
		Model:     req.ProviderID,
		Messages:  []chatMessage{{Role: "user", Content: req.Prompt}},
		MaxTokens: req.MaxUnits,
	})
	if err != nil {
		return nil, provider.FromUpstream(err)
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing chat response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from openai")
	}

	return &provider.Response{
		Content: resp.Choices[0].Message.Content,
		Units:   float64(resp.Usage.TotalTokens),
	}, nil
}

type imageRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Size   string `json:"size"`
	N      int    `json:"n"`
}

type imageResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

func (o *OpenAI) generateImage(ctx context.Context, req provider.Request) (*provider.Response, error) {
	body, err := o.client.PostJSON(ctx, o.baseURL+"/images/generations", o.headers(), imageRequest{
		Model:  req.ProviderID,
		Prompt: req.Prompt,
		Size:   "1024x1024",
		N:      1,
	})
	if err != nil {
		return nil, provider.FromUpstream(err)
	}

	var resp imageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing image response: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("empty image response from openai")
	}

	return &provider.Response{Content: resp.Data[0].URL, Units: 1}, nil
}

type videoRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type videoResponse struct {
	URL string `json:"url"`
}

func (o *OpenAI) generateVideo(ctx context.Context, req provider.Request) (*provider.Response, error) {
	body, err := o.client.PostJSON(ctx, o.baseURL+"/videos/generations", o.headers(), videoRequest{
		Model:  req.ProviderID,
		Prompt: req.Prompt,
	})
	if err != nil {
		return nil, provider.FromUpstream(err)
	}

	var resp videoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing video response: %w", err)
	}

	return &provider.Response{Content: resp.URL, Units: 1}, nil
}
