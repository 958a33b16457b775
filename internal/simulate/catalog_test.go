package simulate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadCatalogMergesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenarios.yaml")
	yaml := `
scenarios:
  - scenario_type: lease_termination
    label: Break the lease early
    description: override with campus defaults
    domain: housing
    parameters:
      base_penalty: 1000
      months_remaining: 4
      monthly_penalty: 300
    formula: base_penalty + months_remaining x monthly_penalty
  - scenario_type: broken
    label: missing formula, must be skipped
    parameters: {}
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	c, err := LoadCatalog(path)
	require.NoError(t, err)

	d, ok := c.Lookup(TypeLeaseTermination)
	require.True(t, ok)
	require.Equal(t, 1000.0, d.Parameters["base_penalty"])

	_, ok = c.Lookup("broken")
	require.False(t, ok)

	// Untouched builtins survive the merge.
	_, ok = c.Lookup(TypeWorkHoursViolation)
	require.True(t, ok)
}

func TestLoadCatalogEmptyPath(t *testing.T) {
	c, err := LoadCatalog("")
	require.NoError(t, err)
	_, ok := c.Lookup(TypeLateRent)
	require.True(t, ok)
}
