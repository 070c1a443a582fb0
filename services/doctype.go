package services

import (
	"strings"

	"procurement-api/models"
)

// DocTypeConfig drives the generic approval engine. One entry per tier of
// the procurement chain; everything type-specific lives here so the engine
// itself stays free of per-type branches.
type DocTypeConfig struct {
	Type         string
	Prefix       string
	ApproverRole string
	// FinalStatus is the header/line status once the last approval level is
	// reached (approved for MTF/STF/OTF, received for MRF, delivered for MDF).
	FinalStatus string
	// UpstreamType is the tier this type consumes quantity from; empty for
	// the chain root (MTF).
	UpstreamType string
	// RevisableWhenApproved permits revising a document that already reached
	// its final status. Only OTF carries this.
	RevisableWhenApproved bool
}

var docTypeRegistry = []DocTypeConfig{
	{
		Type:         models.DocTypeMTF,
		Prefix:       "MTF",
		ApproverRole: "MTF_Approver",
		FinalStatus:  models.StatusApproved,
	},
	{
		Type:         models.DocTypeSTF,
		Prefix:       "STF",
		ApproverRole: "STF_Approver",
		FinalStatus:  models.StatusApproved,
		UpstreamType: models.DocTypeMTF,
	},
	{
		Type:                  models.DocTypeOTF,
		Prefix:                "OTF",
		ApproverRole:          "OTF_Approver",
		FinalStatus:           models.StatusApproved,
		UpstreamType:          models.DocTypeSTF,
		RevisableWhenApproved: true,
	},
	{
		Type:         models.DocTypeMRF,
		Prefix:       "MRF",
		ApproverRole: "MRF_Approver",
		FinalStatus:  models.StatusReceived,
		UpstreamType: models.DocTypeOTF,
	},
	{
		Type:         models.DocTypeMDF,
		Prefix:       "MDF",
		ApproverRole: "MDF_Approver",
		FinalStatus:  models.StatusDelivered,
		UpstreamType: models.DocTypeMRF,
	},
}

// DocTypeConfigFor resolves a document type by name, case-insensitively so
// URL path params like "mtf" work directly.
func DocTypeConfigFor(docType string) (DocTypeConfig, bool) {
	name := strings.ToUpper(strings.TrimSpace(docType))
	for _, cfg := range docTypeRegistry {
		if cfg.Type == name {
			return cfg, true
		}
	}
	return DocTypeConfig{}, false
}

// DocTypeConfigs returns the registry in chain order (MTF first).
func DocTypeConfigs() []DocTypeConfig {
	out := make([]DocTypeConfig, len(docTypeRegistry))
	copy(out, docTypeRegistry)
	return out
}
