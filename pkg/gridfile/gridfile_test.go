package gridfile_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/paramspace/pkg/gridfile"
	"github.com/Sumatoshi-tech/paramspace/pkg/paramspace"
)

const examplesDir = "../../examples/grids"

func TestFormatOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want gridfile.Format
	}{
		{"grid.yaml", gridfile.FormatYAML},
		{"grid.YML", gridfile.FormatYAML},
		{"dir/grid.json", gridfile.FormatJSON},
	}

	for _, tt := range tests {
		got, err := gridfile.FormatOf(tt.path)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.path)
	}

	_, err := gridfile.FormatOf("grid.toml")
	require.ErrorIs(t, err, gridfile.ErrUnsupportedFormat)
}

func TestLoad_BasicJSON(t *testing.T) {
	t.Parallel()

	grid, err := gridfile.Load(filepath.Join(examplesDir, "basic.json"))
	require.NoError(t, err)
	assert.Equal(t, "basic", grid.Name)
	require.Len(t, grid.Configs(), 1)

	space, err := grid.Build()
	require.NoError(t, err)
	assert.Equal(t, 6, space.Len())

	hydrated, err := space.HydrateIndex(1)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1, "b": 20}, hydrated)
}

func TestLoad_AgentsYAML(t *testing.T) {
	t.Parallel()

	grid, err := gridfile.Load(filepath.Join(examplesDir, "agents.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "agents", grid.Name)

	configs := grid.Configs()
	require.Len(t, configs, 2)

	space := paramspace.New()

	qbc, err := space.Combinations(configs[0])
	require.NoError(t, err)
	assert.Equal(t, 1_645_920, qbc)

	ml5, err := space.Combinations(configs[1])
	require.NoError(t, err)
	assert.Equal(t, 548_640, ml5)

	assert.Zero(t, space.Len())
}

func TestParse_YAMLAnchorsShareNestedGrid(t *testing.T) {
	t.Parallel()

	doc := `
x-models: &models
  - "@class": [linear]
    alpha: [0.1, 1.0]
configs:
  - "@class": [agent_a]
    model: *models
  - "@class": [agent_b]
    n_query: [4, 6]
    model: *models
`

	grid, err := gridfile.Parse(strings.NewReader(doc), gridfile.FormatYAML)
	require.NoError(t, err)

	space, err := grid.Build()
	require.NoError(t, err)
	assert.Equal(t, 6, space.Len())

	nested, ok := space.Nested("model")
	require.True(t, ok)
	assert.Equal(t, 2, nested.Len())
}

func TestParse_JSONNumbers(t *testing.T) {
	t.Parallel()

	doc := `{"configs": [{"n": [1, 2.5, 3]}]}`

	grid, err := gridfile.Parse(strings.NewReader(doc), gridfile.FormatJSON)
	require.NoError(t, err)

	space, err := grid.Build()
	require.NoError(t, err)

	values, err := space.Values("n")
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2.5, 3}, values)
}

func TestParse_SchemaViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"missing_configs", `{"name": "x"}`, "configs"},
		{"scalar_value", `{"configs": [{"a": 1}]}`, "configs.0.a"},
		{"unknown_top_level_key", `{"configs": [], "grid": []}`, "grid"},
		{"configs_not_list", `{"configs": {"a": [1]}}`, "configs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := gridfile.Parse(strings.NewReader(tt.doc), gridfile.FormatJSON)
			require.ErrorIs(t, err, gridfile.ErrSchema)

			var schemaErr *gridfile.SchemaError
			require.True(t, errors.As(err, &schemaErr))
			assert.NotEmpty(t, schemaErr.Issues)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParse_DecodeErrors(t *testing.T) {
	t.Parallel()

	_, err := gridfile.Parse(strings.NewReader(`{"configs": [`), gridfile.FormatJSON)
	require.Error(t, err)
	require.NotErrorIs(t, err, gridfile.ErrSchema)

	_, err = gridfile.Parse(strings.NewReader("configs: [\n"), gridfile.FormatYAML)
	require.Error(t, err)

	_, err = gridfile.Parse(strings.NewReader(`{}`), gridfile.Format("toml"))
	require.ErrorIs(t, err, gridfile.ErrUnsupportedFormat)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := gridfile.Load(filepath.Join(dir, "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("configs:\n  - a: 1\n"), 0o600))

	_, err = gridfile.Load(bad)
	require.ErrorIs(t, err, gridfile.ErrSchema)
	assert.Contains(t, err.Error(), bad)
}

func TestConfigs_ReturnsCopy(t *testing.T) {
	t.Parallel()

	grid, err := gridfile.Parse(strings.NewReader(`{"configs": [{"a": [1]}]}`), gridfile.FormatJSON)
	require.NoError(t, err)

	configs := grid.Configs()
	configs[0] = nil

	assert.NotNil(t, grid.Configs()[0])
}
