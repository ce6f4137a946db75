package runway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/everstacklabs/relay/internal/httpclient"
	"github.com/everstacklabs/relay/internal/provider"
)

func init() {
	provider.Register(&Runway{})
}

// Upstream model ids for the video catalog entries served here.
var modelIDs = map[string]string{
	"runway-ml": "gen-3-alpha",
	"pika-labs": "pika-1.5",
}

// Runway serves the runway-ml and pika-labs catalog entries.
type Runway struct {
	apiKey  string
	baseURL string
	client  *httpclient.Client
}

func (r *Runway) Name() string { return "runway" }

// Configure sets up the generator with API credentials and HTTP client.
func (r *Runway) Configure(apiKey, baseURL string, client *httpclient.Client) {
	r.apiKey = apiKey
	r.baseURL = baseURL
	r.client = client
}

type generationRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type generationResponse struct {
	Output struct {
		URL string `json:"url"`
	} `json:"output"`
	Error string `json:"error,omitempty"`
}

func (r *Runway) Generate(ctx context.Context, req provider.Request) (*provider.Response, error) {
	model, ok := modelIDs[req.ProviderID]
	if !ok {
		return nil, fmt.Errorf("runway: no upstream model for %q", req.ProviderID)
	}

	headers := map[string]string{"Authorization": "Bearer " + r.apiKey}

	body, err := r.client.PostJSON(ctx, r.baseURL+"/generations", headers, generationRequest{
		Model:  model,
		Prompt: req.Prompt,
	})
	if err != nil {
		return nil, provider.FromUpstream(err)
	}

	var resp generationResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing generation response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("runway error: %s", resp.Error)
	}
	if resp.Output.URL == "" {
		return nil, fmt.Errorf("empty video response from runway")
	}

	return &provider.Response{Content: resp.Output.URL, Units: 1}, nil
}
