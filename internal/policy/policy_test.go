package policy

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultTableAllowsPackagesAndServices(t *testing.T) {
	e := Default()
	require.True(t, e.Allows(DomainPackages))
	require.True(t, e.Allows(DomainServices))
	require.False(t, e.Allows(DomainKernel))
	require.False(t, e.Allows(DomainNetwork))
}

func TestUnknownDomainDefaultsToAlertOnly(t *testing.T) {
	e := New(nil)
	require.Equal(t, AlertOnly, e.Decide(Domain("made-up")))
	require.False(t, e.Allows(Domain("made-up")))
}

func TestZeroValueEngineIsConservative(t *testing.T) {
	var e *Engine
	require.Equal(t, AlertOnly, e.Decide(DomainPackages))
	require.False(t, e.Allows(DomainPackages))
}

func TestVetoIsPerDomainNotGlobal(t *testing.T) {
	e := New(map[Domain]Decision{DomainNetwork: AutoRepair})
	require.True(t, e.Allows(DomainNetwork))
	require.False(t, e.Allows(DomainConfig))
}
