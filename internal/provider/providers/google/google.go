package google

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/everstacklabs/relay/internal/httpclient"
	"github.com/everstacklabs/relay/internal/provider"
)

func init() {
	provider.Register(&Google{})
}

// Google serves the gemini-pro catalog entry via the generateContent API.
type Google struct {
	apiKey  string
	baseURL string
	client  *httpclient.Client
}

func (g *Google) Name() string { return "google" }

// Configure sets up the generator with API credentials and HTTP client.
func (g *Google) Configure(apiKey, baseURL string, client *httpclient.Client) {
	g.apiKey = apiKey
	g.baseURL = baseURL
	g.client = client
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		TotalTokenCount int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

func (g *Google) Generate(ctx context.Context, req provider.Request) (*provider.Response, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, req.ProviderID, g.apiKey)

	body, err := g.client.PostJSON(ctx, url, nil, generateRequest{
		Contents: []content{{Parts: []part{{Text: req.Prompt}}}},
	})
	if err != nil {
		return nil, provider.FromUpstream(err)
	}

	var resp generateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing generateContent response: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from google")
	}

	var text string
	for _, p := range resp.Candidates[0].Content.Parts {
		text += p.Text
	}

	return &provider.Response{
		Content: text,
		Units:   float64(resp.UsageMetadata.TotalTokenCount),
	}, nil
}
