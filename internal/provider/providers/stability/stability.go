package stability

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/everstacklabs/relay/internal/httpclient"
	"github.com/everstacklabs/relay/internal/provider"
)

func init() {
	provider.Register(&Stability{})
}

// Upstream engine ids for the image catalog entries served here. Midjourney
// has no public API; it is reached through the same image gateway.
var engineIDs = map[string]string{
	"stable-diffusion": "stable-diffusion-xl-1024-v1-0",
	"midjourney":       "midjourney-v6",
}

// Stability serves the stable-diffusion and midjourney catalog entries.
type Stability struct {
	apiKey  string
	baseURL string
	client  *httpclient.Client
}

func (s *Stability) Name() string { return "stability" }

// Configure sets up the generator with API credentials and HTTP client.
func (s *Stability) Configure(apiKey, baseURL string, client *httpclient.Client) {
	s.apiKey = apiKey
	s.baseURL = baseURL
	s.client = client
}

type textToImageRequest struct {
	TextPrompts []textPrompt `json:"text_prompts"`
	Samples     int          `json:"samples"`
	Width       int          `json:"width"`
	Height      int          `json:"height"`
}

type textPrompt struct {
	Text string `json:"text"`
}

type textToImageResponse struct {
	Artifacts []struct {
		Base64 string `json:"base64"`
	} `json:"artifacts"`
}

func (s *Stability) Generate(ctx context.Context, req provider.Request) (*provider.Response, error) {
	engine, ok := engineIDs[req.ProviderID]
	if !ok {
		return nil, fmt.Errorf("stability: no engine for %q", req.ProviderID)
	}

	headers := map[string]string{"Authorization": "Bearer " + s.apiKey}
	url := fmt.Sprintf("%s/generation/%s/text-to-image", s.baseURL, engine)

	body, err := s.client.PostJSON(ctx, url, headers, textToImageRequest{
		TextPrompts: []textPrompt{{Text: req.Prompt}},
		Samples:     1,
		Width:       1024,
		Height:      1024,
	})
	if err != nil {
		return nil, provider.FromUpstream(err)
	}

	var resp textToImageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing text-to-image response: %w", err)
	}
	if len(resp.Artifacts) == 0 {
		return nil, fmt.Errorf("empty image response from stability")
	}

	return &provider.Response{Content: resp.Artifacts[0].Base64, Units: 1}, nil
}
