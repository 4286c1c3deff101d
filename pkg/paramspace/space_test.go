package paramspace_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/paramspace/pkg/paramspace"
)

func basicConfig() paramspace.Config {
	return paramspace.Config{
		"a": []any{1, 2},
		"b": []any{10, 20, 30},
	}
}

func regressorConfigs() []any {
	return []any{
		paramspace.Config{
			"@class":        []any{"linear"},
			"fit_intercept": []any{true, false},
			"alpha":         []any{0.1, 0.5, 1.0},
		},
		map[string]any{
			"@class":             []any{"mlp"},
			"hidden_layer_sizes": []any{[]any{80, 50}, []any{84, 55}, []any{87, 60}},
			"activation":         []string{"relu", "tanh"},
		},
	}
}

func TestSpace_BasicScenario(t *testing.T) {
	t.Parallel()

	space, err := paramspace.NewFrom([]paramspace.Config{basicConfig()})
	require.NoError(t, err)
	require.Equal(t, 6, space.Len())

	row := paramspace.Row{0, 0, 1, 1}

	idx, err := space.IndexOf(row)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	hydrated, err := space.HydrateIndex(idx)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1, "b": 20}, hydrated)
}

func TestSpace_ProductOrder(t *testing.T) {
	t.Parallel()

	space := paramspace.New()

	rows, err := space.Append(basicConfig())
	require.NoError(t, err)

	assert.Equal(t, []paramspace.Row{
		{0, 0, 1, 0}, {0, 0, 1, 1}, {0, 0, 1, 2},
		{0, 1, 1, 0}, {0, 1, 1, 1}, {0, 1, 1, 2},
	}, rows)
	assert.Equal(t, []string{"a", "b"}, space.Names())
}

func TestSpace_CartesianCompleteness(t *testing.T) {
	t.Parallel()

	space := paramspace.New()

	rows, err := space.Append(paramspace.Config{
		"x": []any{1, 2, 3},
		"y": []any{"p", "q"},
		"z": []any{true, false},
		"w": []any{0.5, 0.25, 0.125, 0.0625},
	})
	require.NoError(t, err)

	assert.Len(t, rows, 3*2*2*4)
	assert.Equal(t, 3*2*2*4, space.Len())

	seen := map[string]bool{}
	for _, r := range rows {
		seen[r.Key()] = true
	}

	assert.Len(t, seen, len(rows))
}

func TestSpace_AppendIsIdempotent(t *testing.T) {
	t.Parallel()

	space := paramspace.New()

	first, err := space.Append(basicConfig())
	require.NoError(t, err)

	second, err := space.Append(basicConfig())
	require.NoError(t, err)

	// The product is recomputed, but no new rows are interned.
	assert.Equal(t, first, second)
	assert.Equal(t, 6, space.Len())
}

func TestSpace_DeterministicAcrossInputOrder(t *testing.T) {
	t.Parallel()

	build := func(cfg paramspace.Config) []paramspace.Row {
		space := paramspace.New()

		rows, err := space.Append(cfg)
		require.NoError(t, err)

		return rows
	}

	forward := paramspace.Config{}
	forward["alpha"] = []any{1, 2}
	forward["beta"] = []any{"x"}
	forward["gamma"] = []any{true, false}

	backward := paramspace.Config{}
	backward["gamma"] = []any{true, false}
	backward["beta"] = []any{"x"}
	backward["alpha"] = []any{1, 2}

	for range 10 {
		assert.Equal(t, build(forward), build(backward))
	}
}

func TestSpace_ExtendGrowsValues(t *testing.T) {
	t.Parallel()

	space := paramspace.New()

	_, err := space.Append(basicConfig())
	require.NoError(t, err)

	rows, err := space.Append(paramspace.Config{"a": []any{2, 3}, "b": []any{40}})
	require.NoError(t, err)

	assert.Equal(t, []paramspace.Row{{0, 1, 1, 3}, {0, 2, 1, 3}}, rows)
	assert.Equal(t, 8, space.Len())

	values, err := space.Values("a")
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2, 3}, values)
}

func TestSpace_Extend(t *testing.T) {
	t.Parallel()

	space := paramspace.New()

	rows, err := space.Extend([]paramspace.Config{
		basicConfig(),
		{"c": []any{"only"}},
	})
	require.NoError(t, err)

	assert.Len(t, rows, 7)
	assert.Equal(t, 7, space.Len())

	hydrated, err := space.HydrateIndex(6)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"c": "only"}, hydrated)
}

func TestSpace_NestedRecursion(t *testing.T) {
	t.Parallel()

	space := paramspace.New()

	rows, err := space.Append(paramspace.Config{
		"n_query":   []any{4, 6},
		"regressor": regressorConfigs(),
	})
	require.NoError(t, err)

	nested, ok := space.Nested("regressor")
	require.True(t, ok)

	// Each regressor config expands to 3 x 2 rows.
	assert.Equal(t, 12, nested.Len())
	assert.Len(t, rows, 2*12)
	assert.Equal(t, 24, space.Len())

	hydrated, err := space.HydrateIndex(0)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"n_query": 4,
		"regressor": map[string]any{
			"@class":        "linear",
			"alpha":         0.1,
			"fit_intercept": true,
		},
	}, hydrated)

	last, err := space.HydrateIndex(space.Len() - 1)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"n_query": 6,
		"regressor": map[string]any{
			"@class":             "mlp",
			"activation":         "tanh",
			"hidden_layer_sizes": []any{87, 60},
		},
	}, last)
}

func TestSpace_SharedNestedSpace(t *testing.T) {
	t.Parallel()

	space, err := paramspace.NewFrom([]paramspace.Config{
		{"@class": []any{"qbc"}, "n_members": []any{2, 3}, "regressor": regressorConfigs()},
		{"@class": []any{"ml5"}, "exploit": []any{0.4}, "regressor": regressorConfigs()},
	})
	require.NoError(t, err)

	nested, ok := space.Nested("regressor")
	require.True(t, ok)

	// The second agent reuses the regressor rows interned by the first.
	assert.Equal(t, 12, nested.Len())
	assert.Equal(t, 2*12+12, space.Len())
}

func TestSpace_RoundTrip(t *testing.T) {
	t.Parallel()

	space, err := paramspace.NewFrom([]paramspace.Config{
		basicConfig(),
		{"n_query": []any{4, 8}, "regressor": regressorConfigs(), "shape": []any{[]any{1, 2}}},
	})
	require.NoError(t, err)

	for idx, row := range space.Rows() {
		hydrated, hydrateErr := space.HydrateRow(row)
		require.NoError(t, hydrateErr)

		encoded, encodeErr := space.Encode(hydrated)
		require.NoError(t, encodeErr)
		assert.Equal(t, row, encoded, "row %d", idx)
	}
}

func TestSpace_EmptyValueList(t *testing.T) {
	t.Parallel()

	space := paramspace.New()

	rows, err := space.Append(paramspace.Config{"a": []any{1, 2}, "b": []any{}})
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, 0, space.Len())

	// Names are interned even without rows.
	assert.Equal(t, []string{"a", "b"}, space.Names())
}

func TestSpace_EmptyListPromotedToNested(t *testing.T) {
	t.Parallel()

	space := paramspace.New()

	_, err := space.Append(paramspace.Config{"regressor": []any{}})
	require.NoError(t, err)

	rows, err := space.Append(paramspace.Config{"regressor": regressorConfigs()})
	require.NoError(t, err)
	assert.Len(t, rows, 12)

	_, ok := space.Nested("regressor")
	assert.True(t, ok)
}

func TestSpace_EmptyConfig(t *testing.T) {
	t.Parallel()

	space := paramspace.New()

	rows, err := space.Append(paramspace.Config{})
	require.NoError(t, err)

	// The product of no factors is a single empty combination.
	assert.Equal(t, []paramspace.Row{{}}, rows)

	hydrated, err := space.HydrateIndex(0)
	require.NoError(t, err)
	assert.Empty(t, hydrated)
}

func TestSpace_InvalidConfigLeavesSpaceUnchanged(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  paramspace.Config
	}{
		{"scalar_value", paramspace.Config{"a": []any{1}, "z": 5}},
		{"string_value", paramspace.Config{"a": []any{1}, "z": "abc"}},
		{"mixed_list", paramspace.Config{"a": []any{1}, "z": []any{paramspace.Config{"x": []any{1}}, 2}}},
		{"mixed_scalars", paramspace.Config{"a": []any{1}, "z": []any{2, map[string]any{"x": []any{1}}}}},
		{"nested_invalid", paramspace.Config{"a": []any{1}, "z": []any{paramspace.Config{"x": 1}}}},
		{"unsupported_type", paramspace.Config{"a": []any{1}, "z": []any{struct{}{}}}},
		{"shape_change_to_nested", paramspace.Config{"b": []any{paramspace.Config{"x": []any{1}}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			space, err := paramspace.NewFrom([]paramspace.Config{basicConfig()})
			require.NoError(t, err)

			before := space.Names()

			_, err = space.Append(tt.cfg)
			require.ErrorIs(t, err, paramspace.ErrInvalidConfig)

			assert.Equal(t, before, space.Names())
			assert.Equal(t, 6, space.Len())

			values, valuesErr := space.Values("a")
			require.NoError(t, valuesErr)
			assert.Equal(t, []any{1, 2}, values)
		})
	}
}

func TestSpace_ShapeChangeToScalar(t *testing.T) {
	t.Parallel()

	space := paramspace.New()

	_, err := space.Append(paramspace.Config{"regressor": regressorConfigs()})
	require.NoError(t, err)

	_, err = space.Append(paramspace.Config{"regressor": []any{"linear"}})
	require.ErrorIs(t, err, paramspace.ErrInvalidConfig)
}

func TestSpace_MaxCombinations(t *testing.T) {
	t.Parallel()

	space := paramspace.New(paramspace.WithMaxCombinations(5))

	_, err := space.Append(basicConfig())
	require.ErrorIs(t, err, paramspace.ErrTooManyCombinations)
	require.ErrorIs(t, err, paramspace.ErrInvalidConfig)
	assert.Equal(t, 0, space.Len())
	assert.Empty(t, space.Names())

	rows, err := space.Append(paramspace.Config{"a": []any{1, 2, 3, 4, 5}})
	require.NoError(t, err)
	assert.Len(t, rows, 5)
}

func TestSpace_MaxCombinationsNested(t *testing.T) {
	t.Parallel()

	space := paramspace.New(paramspace.WithMaxCombinations(10))

	// The parent product is empty, but the nested space alone exceeds the limit.
	_, err := space.Append(paramspace.Config{
		"a":         []any{},
		"regressor": []any{paramspace.Config{"x": []any{1, 2, 3, 4}, "y": []any{1, 2, 3}}},
	})
	require.ErrorIs(t, err, paramspace.ErrTooManyCombinations)
}

func TestSpace_Combinations(t *testing.T) {
	t.Parallel()

	space := paramspace.New()

	count, err := space.Combinations(paramspace.Config{
		"n_query":   []any{4, 6, 8},
		"regressor": regressorConfigs(),
	})
	require.NoError(t, err)
	assert.Equal(t, 36, count)
	assert.Equal(t, 0, space.Len())
}

func TestSpace_Describe(t *testing.T) {
	t.Parallel()

	space, err := paramspace.NewFrom([]paramspace.Config{
		{"n_query": []any{4, 6}, "regressor": regressorConfigs()},
	})
	require.NoError(t, err)

	assert.Equal(t, []paramspace.StoreInfo{
		{Name: "n_query", Kind: paramspace.StoreValues, Size: 2},
		{Name: "regressor", Kind: paramspace.StoreNested, Size: 12},
	}, space.Describe())

	_, err = space.Values("regressor")
	require.ErrorIs(t, err, paramspace.ErrInvalidConfig)

	_, err = space.Values("missing")
	require.ErrorIs(t, err, paramspace.ErrNotFound)
}

func TestSpace_Progress(t *testing.T) {
	t.Parallel()

	var calls [][2]int

	space := paramspace.New(paramspace.WithProgress(func(done, total int) {
		calls = append(calls, [2]int{done, total})
	}))

	_, err := space.Append(paramspace.Config{"n_query": []any{4, 6}, "regressor": regressorConfigs()})
	require.NoError(t, err)

	// Only the top-level expansion reports.
	require.Len(t, calls, 1)
	assert.Equal(t, [2]int{24, 24}, calls[0])
}

func TestSpace_IndexOfUnknownRow(t *testing.T) {
	t.Parallel()

	space, err := paramspace.NewFrom([]paramspace.Config{basicConfig()})
	require.NoError(t, err)

	_, err = space.IndexOf(paramspace.Row{0, 9, 1, 0})
	require.ErrorIs(t, err, paramspace.ErrNotFound)

	_, err = space.Row(6)
	require.ErrorIs(t, err, paramspace.ErrOutOfRange)
}

func TestSpace_ReturnedRowsAreCopies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(t *testing.T, space *paramspace.Space, appended []paramspace.Row)
	}{
		{"row", func(t *testing.T, space *paramspace.Space, _ []paramspace.Row) {
			t.Helper()

			row, err := space.Row(0)
			require.NoError(t, err)

			row[1] = 1
		}},
		{"rows", func(_ *testing.T, space *paramspace.Space, _ []paramspace.Row) {
			for _, row := range space.Rows() {
				row[1] = 1
			}
		}},
		{"append_result", func(_ *testing.T, _ *paramspace.Space, appended []paramspace.Row) {
			appended[0][1] = 1
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			space := paramspace.New()

			appended, err := space.Append(basicConfig())
			require.NoError(t, err)

			tt.mutate(t, space, appended)

			row, err := space.Row(0)
			require.NoError(t, err)
			assert.Equal(t, paramspace.Row{0, 0, 1, 0}, row)

			hydrated, err := space.HydrateIndex(0)
			require.NoError(t, err)
			assert.Equal(t, map[string]any{"a": 1, "b": 10}, hydrated)

			idx, err := space.IndexOf(paramspace.Row{0, 1, 1, 0})
			require.NoError(t, err)
			assert.Equal(t, 3, idx)
			assert.Equal(t, 6, space.Len())
		})
	}
}

func TestSpace_RepeatedNestedConfig(t *testing.T) {
	t.Parallel()

	space := paramspace.New()

	rows, err := space.Append(paramspace.Config{
		"r": []any{paramspace.Config{"a": []any{1}}, paramspace.Config{"a": []any{1}}},
	})
	require.NoError(t, err)

	assert.Equal(t, []paramspace.Row{{0, 0}, {0, 0}}, rows)
	assert.Equal(t, 1, space.Len())
}
