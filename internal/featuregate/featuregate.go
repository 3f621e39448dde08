// Package featuregate decides whether an account operation is enabled for the
// current deployment environment.
//
// The gate is deliberately fail-open: an unconfigured flag or environment
// resolves to enabled. Disabling a feature is always an explicit admin action
// in the table below; a freshly introduced flag must never be silently dark.
package featuregate

// Flag names, one per gated account capability.
const (
	FlagRegistration      = "registration"
	FlagLogin             = "login"
	FlagPasswordReset     = "password_reset"
	FlagEmailVerification = "email_verification"
	FlagAccountDeletion   = "account_deletion"
)

// Environment names recognized by the gate.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// flagTable is the per-environment flag configuration, fixed at build time.
// Only flags listed here can be off; everything else is on (fail-open).
var flagTable = map[string]map[string]bool{
	EnvDevelopment: {
		FlagRegistration:      true,
		FlagLogin:             true,
		FlagPasswordReset:     true,
		FlagEmailVerification: true,
		FlagAccountDeletion:   true,
	},
	EnvStaging: {
		FlagRegistration:      true,
		FlagLogin:             true,
		FlagPasswordReset:     true,
		FlagEmailVerification: true,
		FlagAccountDeletion:   true,
	},
	EnvProduction: {
		FlagRegistration:      true,
		FlagLogin:             true,
		FlagPasswordReset:     true,
		FlagEmailVerification: true,
		FlagAccountDeletion:   true,
	},
}

// Gate answers enabled/disabled questions for one environment. It is built
// once at startup and read-only afterwards, safe for concurrent use.
type Gate struct {
	flags map[string]bool
}

// New builds a gate for the given environment name. An unrecognized
// environment falls back to the development table, the most permissive one.
func New(environment string) *Gate {
	flags, ok := flagTable[environment]
	if !ok {
		flags = flagTable[EnvDevelopment]
	}
	return NewWithFlags(flags)
}

// NewWithFlags builds a gate from an explicit flag set, bypassing the
// per-environment table. Intended for tests and operational overrides.
func NewWithFlags(flags map[string]bool) *Gate {
	// Snapshot so later edits to the source map cannot leak into a live gate.
	snapshot := make(map[string]bool, len(flags))
	for name, enabled := range flags {
		snapshot[name] = enabled
	}
	return &Gate{flags: snapshot}
}

// Enabled reports whether the named flag is on. Unknown flags are enabled:
// the gate must never block functionality nobody configured off.
func (g *Gate) Enabled(flag string) bool {
	enabled, ok := g.flags[flag]
	if !ok {
		return true
	}
	return enabled
}
