package services

import (
	"testing"

	"procurement-api/models"
)

func TestDocTypeConfigForCaseInsensitive(t *testing.T) {
	for _, name := range []string{"MTF", "mtf", " Mtf "} {
		cfg, ok := DocTypeConfigFor(name)
		if !ok || cfg.Type != models.DocTypeMTF {
			t.Errorf("DocTypeConfigFor(%q) = (%+v, %v)", name, cfg, ok)
		}
	}

	if _, ok := DocTypeConfigFor("PO"); ok {
		t.Error("DocTypeConfigFor(PO) should not resolve")
	}
	if _, ok := DocTypeConfigFor(""); ok {
		t.Error("DocTypeConfigFor of empty string should not resolve")
	}
}

func TestDocTypeChain(t *testing.T) {
	configs := DocTypeConfigs()
	if len(configs) != 5 {
		t.Fatalf("registry has %d types, want 5", len(configs))
	}

	// The chain root has no upstream; every other tier consumes from the
	// previous one in registry order.
	if configs[0].UpstreamType != "" {
		t.Fatalf("%s should have no upstream", configs[0].Type)
	}
	for i := 1; i < len(configs); i++ {
		if configs[i].UpstreamType != configs[i-1].Type {
			t.Errorf("%s upstream = %q, want %q", configs[i].Type, configs[i].UpstreamType, configs[i-1].Type)
		}
	}

	seen := map[string]bool{}
	for _, cfg := range configs {
		if seen[cfg.Prefix] {
			t.Errorf("duplicate prefix %q", cfg.Prefix)
		}
		seen[cfg.Prefix] = true
		if cfg.FinalStatus == "" || cfg.ApproverRole == "" {
			t.Errorf("%s has incomplete config: %+v", cfg.Type, cfg)
		}
	}

	otf, _ := DocTypeConfigFor(models.DocTypeOTF)
	if !otf.RevisableWhenApproved {
		t.Error("OTF must be revisable after approval")
	}
	mrf, _ := DocTypeConfigFor(models.DocTypeMRF)
	if mrf.FinalStatus != models.StatusReceived {
		t.Errorf("MRF final status = %q, want %q", mrf.FinalStatus, models.StatusReceived)
	}
	mdf, _ := DocTypeConfigFor(models.DocTypeMDF)
	if mdf.FinalStatus != models.StatusDelivered {
		t.Errorf("MDF final status = %q, want %q", mdf.FinalStatus, models.StatusDelivered)
	}
}
