package catalog

// Capability is the category of generation task a provider serves.
type Capability string

const (
	CapabilityText  Capability = "text"
	CapabilityImage Capability = "image"
	CapabilityVideo Capability = "video"
)

// Known reports whether c is one of the supported capability classes.
func (c Capability) Known() bool {
	switch c {
	case CapabilityText, CapabilityImage, CapabilityVideo:
		return true
	}
	return false
}

// Descriptor describes one routable provider.
// Fields match the catalog YAML schema.
type Descriptor struct {
	ID           string     `yaml:"id"`
	DisplayName  string     `yaml:"display_name"`
	Capability   Capability `yaml:"capability"`
	Generator    string     `yaml:"generator"`
	CostPerUnit  float64    `yaml:"cost_per_unit"`
	MaxUnits     int        `yaml:"max_units"`
	RateLimit    int        `yaml:"rate_limit"` // requests per trailing 60s window
	QualityScore float64    `yaml:"quality_score"`
	Fallbacks    []string   `yaml:"fallbacks,omitempty"`
}

// File is the top-level structure of a catalog YAML file.
type File struct {
	Providers []Descriptor `yaml:"providers"`
}
