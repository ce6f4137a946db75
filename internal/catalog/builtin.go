package catalog

// Builtin returns the default provider catalog, used when no catalog file is
// configured. Costs are currency per token for text providers and currency
// per item for image and video providers.
func Builtin() []Descriptor {
	return []Descriptor{
		// Text
		{
			ID:           "gemini-pro",
			DisplayName:  "Google Gemini Pro",
			Capability:   CapabilityText,
			Generator:    "google",
			CostPerUnit:  0.0005,
			MaxUnits:     32000,
			RateLimit:    60,
			QualityScore: 0.95,
			Fallbacks:    []string{"gpt-4", "claude-3-sonnet"},
		},
		{
			ID:           "gpt-4",
			DisplayName:  "OpenAI GPT-4",
			Capability:   CapabilityText,
			Generator:    "openai",
			CostPerUnit:  0.03,
			MaxUnits:     8192,
			RateLimit:    40,
			QualityScore: 0.98,
			Fallbacks:    []string{"gemini-pro", "claude-3-opus"},
		},
		{
			ID:           "claude-3-opus",
			DisplayName:  "Anthropic Claude 3 Opus",
			Capability:   CapabilityText,
			Generator:    "anthropic",
			CostPerUnit:  0.015,
			MaxUnits:     200000,
			RateLimit:    50,
			QualityScore: 0.97,
			Fallbacks:    []string{"claude-3-sonnet", "gemini-pro"},
		},
		{
			ID:           "claude-3-sonnet",
			DisplayName:  "Anthropic Claude 3 Sonnet",
			Capability:   CapabilityText,
			Generator:    "anthropic",
			CostPerUnit:  0.003,
			MaxUnits:     200000,
			RateLimit:    60,
			QualityScore: 0.93,
			Fallbacks:    []string{"claude-3-haiku", "gpt-3.5-turbo"},
		},
		{
			ID:           "claude-3-haiku",
			DisplayName:  "Anthropic Claude 3 Haiku",
			Capability:   CapabilityText,
			Generator:    "anthropic",
			CostPerUnit:  0.00025,
			MaxUnits:     200000,
			RateLimit:    100,
			QualityScore: 0.80,
			Fallbacks:    []string{"gpt-3.5-turbo"},
		},
		{
			ID:           "gpt-3.5-turbo",
			DisplayName:  "OpenAI GPT-3.5 Turbo",
			Capability:   CapabilityText,
			Generator:    "openai",
			CostPerUnit:  0.0015,
			MaxUnits:     4096,
			RateLimit:    90,
			QualityScore: 0.85,
			Fallbacks:    []string{"gemini-pro", "claude-3-haiku"},
		},

		// Image
		{
			ID:           "dall-e-3",
			DisplayName:  "OpenAI DALL-E 3",
			Capability:   CapabilityImage,
			Generator:    "openai",
			CostPerUnit:  0.04,
			MaxUnits:     1,
			RateLimit:    50,
			QualityScore: 0.95,
			Fallbacks:    []string{"midjourney", "stable-diffusion"},
		},
		{
			ID:           "midjourney",
			DisplayName:  "Midjourney",
			Capability:   CapabilityImage,
			Generator:    "stability",
			CostPerUnit:  0.03,
			MaxUnits:     1,
			RateLimit:    30,
			QualityScore: 0.98,
			Fallbacks:    []string{"dall-e-3", "stable-diffusion"},
		},
		{
			ID:           "stable-diffusion",
			DisplayName:  "Stable Diffusion XL",
			Capability:   CapabilityImage,
			Generator:    "stability",
			CostPerUnit:  0.02,
			MaxUnits:     1,
			RateLimit:    100,
			QualityScore: 0.88,
			Fallbacks:    []string{"dall-e-3"},
		},

		// Video
		{
			ID:           "sora",
			DisplayName:  "OpenAI Sora",
			Capability:   CapabilityVideo,
			Generator:    "openai",
			CostPerUnit:  0.50,
			MaxUnits:     1,
			RateLimit:    10,
			QualityScore: 0.95,
			Fallbacks:    []string{"runway-ml", "pika-labs"},
		},
		{
			ID:           "runway-ml",
			DisplayName:  "Runway ML",
			Capability:   CapabilityVideo,
			Generator:    "runway",
			CostPerUnit:  0.30,
			MaxUnits:     1,
			RateLimit:    20,
			QualityScore: 0.90,
			Fallbacks:    []string{"pika-labs"},
		},
		{
			ID:           "pika-labs",
			DisplayName:  "Pika Labs",
			Capability:   CapabilityVideo,
			Generator:    "runway",
			CostPerUnit:  0.25,
			MaxUnits:     1,
			RateLimit:    15,
			QualityScore: 0.85,
		},
	}
}
