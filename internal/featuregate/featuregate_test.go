package featuregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnabled_ConfiguredFlags(t *testing.T) {
	gate := New(EnvProduction)

	assert.True(t, gate.Enabled(FlagRegistration))
	assert.True(t, gate.Enabled(FlagLogin))
	assert.True(t, gate.Enabled(FlagPasswordReset))
	assert.True(t, gate.Enabled(FlagEmailVerification))
	assert.True(t, gate.Enabled(FlagAccountDeletion))
}

func TestEnabled_UnknownFlagFailsOpen(t *testing.T) {
	for _, env := range []string{EnvDevelopment, EnvStaging, EnvProduction} {
		gate := New(env)
		assert.True(t, gate.Enabled("brand_new_feature"), "env: %s", env)
	}
}

func TestNew_UnknownEnvironmentFallsBackToDevelopment(t *testing.T) {
	gate := New("does-not-exist")

	// The fallback is the development table, so everything configured there
	// must answer the same way.
	dev := New(EnvDevelopment)
	for _, flag := range []string{FlagRegistration, FlagLogin, FlagPasswordReset, FlagEmailVerification, FlagAccountDeletion} {
		assert.Equal(t, dev.Enabled(flag), gate.Enabled(flag), "flag: %s", flag)
	}
}

func TestNew_SnapshotsTable(t *testing.T) {
	gate := New(EnvDevelopment)

	// Mutating the source table after construction must not change a live gate.
	flagTable[EnvDevelopment][FlagLogin] = false
	defer func() { flagTable[EnvDevelopment][FlagLogin] = true }()

	assert.True(t, gate.Enabled(FlagLogin))
}

func TestEnabled_ExplicitlyDisabledFlag(t *testing.T) {
	// Fail-open must not override an explicit off switch.
	flagTable[EnvStaging][FlagAccountDeletion] = false
	defer func() { flagTable[EnvStaging][FlagAccountDeletion] = true }()

	gate := New(EnvStaging)
	assert.False(t, gate.Enabled(FlagAccountDeletion))
}
