package reconcile

import (
	"fmt"
	"strings"
)

// EntityRecord is one immutable input record for reconciliation.
type EntityRecord struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
	Source  string `json:"source,omitempty"`

	// External identifiers, when the upstream source carries them.
	DUNS        string `json:"duns,omitempty"`
	CAGE        string `json:"cage,omitempty"`
	RegistryDoc string `json:"registry_doc,omitempty"`

	URL string `json:"url,omitempty"`
}

// Validate reports whether the record is usable for reconciliation.
func (r EntityRecord) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("record has empty id")
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("record %s has empty name", r.ID)
	}
	return nil
}

// ExternalIdentifiers returns the record's non-empty external identifiers
// keyed by scheme.
func (r EntityRecord) ExternalIdentifiers() map[string]string {
	ids := make(map[string]string, 3)
	if r.DUNS != "" {
		ids["duns"] = r.DUNS
	}
	if r.CAGE != "" {
		ids["cage"] = r.CAGE
	}
	if r.RegistryDoc != "" {
		ids["registry_doc"] = r.RegistryDoc
	}
	return ids
}
