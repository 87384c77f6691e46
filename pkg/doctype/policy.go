package doctype

import (
	"fmt"
	"strings"
)

// Option names as the command line spells them. ConfigError reports
// conflicts in these terms.
const (
	OptionSystemID     = "--system-id"
	OptionPublicID     = "--public-id"
	OptionOmitSystemID = "--omit-system-id"
	OptionOmitPublicID = "--omit-public-id"
	OptionRoot         = "--root"
)

// OverridePolicy describes how a document's declaration is amended. Empty
// strings leave the document's own value in place.
type OverridePolicy struct {
	ForcedPublicID string
	ForcedSystemID string
	ForcedRoot     string
	OmitPublicID   bool
	OmitSystemID   bool
}

// ConfigError reports a contradictory combination of overrides.
type ConfigError struct {
	Flags  []string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("conflicting options %s: %s", strings.Join(e.Flags, ", "), e.Reason)
}

// Validate rejects policies whose overrides contradict each other. It must
// pass before any document is processed.
func (p OverridePolicy) Validate() error {
	if p.ForcedPublicID != "" && p.OmitPublicID {
		return &ConfigError{
			Flags:  []string{OptionPublicID, OptionOmitPublicID},
			Reason: "only one of them may be given",
		}
	}
	if p.OmitSystemID && (p.ForcedSystemID != "" || p.ForcedPublicID != "") {
		flags := []string{OptionOmitSystemID}
		if p.ForcedSystemID != "" {
			flags = append(flags, OptionSystemID)
		}
		if p.ForcedPublicID != "" {
			flags = append(flags, OptionPublicID)
		}
		return &ConfigError{
			Flags:  flags,
			Reason: "omitting the system identifier also removes the public identifier",
		}
	}
	return nil
}

// IsZero reports whether the policy leaves every declaration unchanged.
func (p OverridePolicy) IsZero() bool {
	return p == OverridePolicy{}
}

// Ignored lists the options whose forced value did not survive into d. A
// forced public identifier is dropped when d has no system identifier.
func (p OverridePolicy) Ignored(d Declaration) []string {
	if p.ForcedPublicID != "" && !d.HasPublicID() {
		return []string{OptionPublicID}
	}
	return nil
}

// Resolve merges a document's declared root and identifiers with the
// policy. Forced values win over the document's, omissions win over both,
// and omitting the system identifier always drops the public one too.
func (p OverridePolicy) Resolve(root, publicID, systemID string) Declaration {
	if p.ForcedRoot != "" {
		root = p.ForcedRoot
	}
	if p.ForcedSystemID != "" {
		systemID = p.ForcedSystemID
	}
	if p.ForcedPublicID != "" {
		publicID = p.ForcedPublicID
	}
	if p.OmitPublicID {
		publicID = ""
	}
	if p.OmitSystemID {
		systemID = ""
		publicID = ""
	}
	return NewDeclaration(root, publicID, systemID)
}
