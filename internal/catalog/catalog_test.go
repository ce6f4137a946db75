package catalog

import "testing"

func TestBuiltinIsValid(t *testing.T) {
	issues := Validate(Builtin())
	if len(issues) != 0 {
		t.Fatalf("builtin catalog has issues: %v", issues)
	}
}

func TestRegistryOrdersByQuality(t *testing.T) {
	reg, err := NewRegistry(Builtin())
	if err != nil {
		t.Fatalf("building registry: %v", err)
	}

	for _, cap := range []Capability{CapabilityText, CapabilityImage, CapabilityVideo} {
		ids := reg.ListByCapability(cap)
		if len(ids) == 0 {
			t.Fatalf("no providers for capability %s", cap)
		}
		for i := 1; i < len(ids); i++ {
			prev, _ := reg.Get(ids[i-1])
			cur, _ := reg.Get(ids[i])
			if prev.QualityScore < cur.QualityScore {
				t.Errorf("%s: %s (%g) ranked above %s (%g)",
					cap, ids[i-1], prev.QualityScore, ids[i], cur.QualityScore)
			}
		}
	}
}

func TestRegistryUnknownID(t *testing.T) {
	reg, err := NewRegistry(Builtin())
	if err != nil {
		t.Fatalf("building registry: %v", err)
	}
	if _, err := reg.Get("nonexistent"); err == nil {
		t.Error("expected error for unknown provider id")
	}
}

func TestValidateSelfFallback(t *testing.T) {
	descs := []Descriptor{
		{
			ID:           "p1",
			Capability:   CapabilityText,
			Generator:    "openai",
			CostPerUnit:  0.01,
			RateLimit:    10,
			QualityScore: 0.5,
			Fallbacks:    []string{"p1"},
		},
	}
	issues := Validate(descs)
	if len(issues) == 0 {
		t.Fatal("expected issue for self-referential fallback")
	}
}

func TestValidateQualityRange(t *testing.T) {
	descs := []Descriptor{
		{ID: "p1", Capability: CapabilityText, Generator: "openai", RateLimit: 10, QualityScore: 1.5},
	}
	issues := Validate(descs)
	if len(issues) == 0 {
		t.Fatal("expected issue for quality score outside [0,1]")
	}
}

func TestValidateUnknownFallback(t *testing.T) {
	descs := []Descriptor{
		{ID: "p1", Capability: CapabilityText, Generator: "openai", RateLimit: 10, QualityScore: 0.5,
			Fallbacks: []string{"ghost"}},
	}
	issues := Validate(descs)
	if len(issues) == 0 {
		t.Fatal("expected issue for fallback to provider not in catalog")
	}
}
