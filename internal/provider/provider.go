// Package provider defines the generation collaborator contract: one
// Generator per upstream vendor, registered by name, serving one or more
// catalog entries.
package provider

import (
	"context"
	"errors"

	"github.com/everstacklabs/relay/internal/catalog"
)

// Typed upstream failures. The dispatcher treats all of them (and timeouts)
// as attempt failures that feed the health monitor and advance fallback.
var (
	// ErrUpstreamRateLimited means the upstream itself throttled the call.
	ErrUpstreamRateLimited = errors.New("upstream rate limited")

	// ErrInvalidRequest means the upstream rejected the payload.
	ErrInvalidRequest = errors.New("invalid generation request")
)

// Request is the normalized payload handed to a generator. ProviderID names
// the catalog entry being served so a generator backing several entries can
// pick the upstream model.
type Request struct {
	ProviderID string
	Capability catalog.Capability
	Prompt     string
	MaxUnits   int
}

// Response is generated content plus the unit count to bill: a token
// estimate for text, item count for image and video.
type Response struct {
	Content string
	Units   float64
}

// Generator performs the remote generation call for one upstream vendor.
type Generator interface {
	// Name returns the generator name referenced by catalog descriptors.
	Name() string
	// Generate performs one call. Implementations must honor ctx deadlines.
	Generate(ctx context.Context, req Request) (*Response, error)
}
