// Package paramspace builds combinatorial parameter spaces and indexes every
// point of a space with a compact integer encoding.
//
// A configuration maps parameter names to lists of candidate values:
//
//	space, err := paramspace.NewFrom([]paramspace.Config{
//		{"a": []any{1, 2}, "b": []any{10, 20, 30}},
//	})
//	// space.Len() == 6
//
// Each combination is a Row of (name-index, value-index) pairs, ordered by
// parameter name. A row decodes back into its configuration with HydrateRow,
// and Encode maps a decoded configuration back to its row.
//
// # Nested spaces
//
// A parameter whose values are themselves configurations becomes a nested
// Space. The value index of such a parameter is a row index in the nested
// space, so the nested row count multiplies into the parent product:
//
//	regressors := []any{
//		paramspace.Config{"@class": []any{"linear"}, "fit_intercept": []any{true, false}},
//		paramspace.Config{"@class": []any{"forest"}, "n_estimators": []any{100, 200}},
//	}
//	space.Append(paramspace.Config{"n_query": []any{4, 8}, "regressor": regressors})
//	// 2 x (2 + 2) = 8 rows
//
// # Construction
//
// ConstructRow hydrates a row and, when it carries the "@class" key, resolves
// that path through a Resolver and calls the resulting Constructor with the
// remaining entries. Class resolution is injected with WithResolver; the
// package has no built-in registry.
package paramspace
