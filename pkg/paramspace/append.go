package paramspace

import (
	"fmt"
	"maps"
	"slices"

	"github.com/Sumatoshi-tech/paramspace/pkg/safeconv"
)

// maxPrealloc caps the row slice capacity reserved before expansion.
const maxPrealloc = 1 << 16

// Append expands cfg into the Cartesian product of its value lists and
// interns every combination as a row.
//
// Parameters are processed in sorted name order, so the encoding does not
// depend on map iteration order. The whole configuration, nested
// configurations included, is validated before anything is interned: a
// failed Append leaves the space unchanged.
//
// The returned rows are every combination produced by this call, in product
// order, including rows that were already present. Re-appending a known
// configuration recomputes the full product and relies on row interning for
// deduplication. Equal nested configurations in one list each contribute a
// factor, so {"r": [{"a": [1]}, {"a": [1]}]} returns two equal rows even when
// "r" is new, and Len grows by one.
func (s *Space) Append(cfg Config) ([]Row, error) {
	p, err := planner{limit: s.opts.maxCombinations}.prepare(newShapeView(s), cfg)
	if err != nil {
		return nil, err
	}

	before := s.rows.Len()
	rows, _ := s.commit(p)

	s.opts.logger.Debug("expanded configuration",
		"parameters", len(p.params),
		"combinations", len(rows),
		"new_rows", s.rows.Len()-before,
		"total_rows", s.rows.Len(),
	)

	return rows, nil
}

// Extend appends each configuration in turn and returns all produced rows.
// Configurations before a failing one stay applied.
func (s *Space) Extend(configs []Config) ([]Row, error) {
	var all []Row

	for i, cfg := range configs {
		rows, err := s.Append(cfg)
		if err != nil {
			return all, fmt.Errorf("config %d: %w", i, err)
		}

		all = append(all, rows...)
	}

	return all, nil
}

// Combinations returns how many rows Append(cfg) would produce, without
// modifying the space. The count saturates at the maximum int.
func (s *Space) Combinations(cfg Config) (int, error) {
	p, err := planner{}.prepare(newShapeView(s), cfg)
	if err != nil {
		return 0, err
	}

	return p.combinations, nil
}

type plan struct {
	params       []paramPlan
	combinations int
}

type paramPlan struct {
	name   string
	nested bool
	leaves []Value
	subs   []*plan
}

func (pp paramPlan) count() int {
	if !pp.nested {
		return len(pp.leaves)
	}

	total := 0
	for _, sub := range pp.subs {
		total = safeconv.SaturatingAdd(total, sub.combinations)
	}

	return total
}

type planner struct {
	limit int
}

func (pl planner) prepare(view *shapeView, cfg Config) (*plan, error) {
	names := slices.Sorted(maps.Keys(cfg))

	p := &plan{
		params:       make([]paramPlan, 0, len(names)),
		combinations: 1,
	}

	for _, name := range names {
		pp, err := pl.prepareParam(view, name, cfg[name])
		if err != nil {
			return nil, err
		}

		p.params = append(p.params, pp)
		p.combinations = safeconv.SaturatingMul(p.combinations, pp.count())
	}

	if pl.limit > 0 && p.combinations > pl.limit {
		return nil, fmt.Errorf("%w: %d exceeds limit %d", ErrTooManyCombinations, p.combinations, pl.limit)
	}

	return p, nil
}

func (pl planner) prepareParam(view *shapeView, name string, raw any) (paramPlan, error) {
	list, ok := asList(raw)
	if !ok {
		return paramPlan{}, fmt.Errorf("%w: parameter %q: values must be a list, got %T", ErrInvalidConfig, name, raw)
	}

	state := view.state(name)
	pp := paramPlan{name: name}

	if len(list) == 0 {
		pp.nested = state == shapeNested
		if state == shapeAbsent {
			view.markLeaf(name, false)
		}

		return pp, nil
	}

	if _, nested := asMap(list[0]); nested {
		if state == shapeLeaf {
			return paramPlan{}, fmt.Errorf("%w: parameter %q holds scalar values, got nested configurations",
				ErrInvalidConfig, name)
		}

		return pl.prepareNested(view.nestedView(name), pp, list)
	}

	if state == shapeNested {
		return paramPlan{}, fmt.Errorf("%w: parameter %q holds nested configurations, got scalar values",
			ErrInvalidConfig, name)
	}

	pp.leaves = make([]Value, len(list))

	for i, item := range list {
		if _, nested := asMap(item); nested {
			return paramPlan{}, fmt.Errorf("%w: parameter %q: element %d mixes a nested configuration into scalar values",
				ErrInvalidConfig, name, i)
		}

		v, err := ValueOf(item)
		if err != nil {
			return paramPlan{}, fmt.Errorf("parameter %q: element %d: %w", name, i, err)
		}

		pp.leaves[i] = v
	}

	view.markLeaf(name, true)

	return pp, nil
}

func (pl planner) prepareNested(child *shapeView, pp paramPlan, list []any) (paramPlan, error) {
	pp.nested = true
	pp.subs = make([]*plan, 0, len(list))

	for i, item := range list {
		sub, ok := asMap(item)
		if !ok {
			return paramPlan{}, fmt.Errorf("%w: parameter %q: element %d is %T, expected a nested configuration",
				ErrInvalidConfig, pp.name, i, item)
		}

		subPlan, err := pl.prepare(child, sub)
		if err != nil {
			return paramPlan{}, fmt.Errorf("parameter %q: element %d: %w", pp.name, i, err)
		}

		pp.subs = append(pp.subs, subPlan)
	}

	return pp, nil
}

// commit applies a validated plan and returns the produced rows with their
// row indices.
func (s *Space) commit(p *plan) ([]Row, []int) {
	nameIdx := make([]int, len(p.params))
	factors := make([][]int, len(p.params))

	for i, pp := range p.params {
		nameIdx[i] = s.names.Append(pp.name)

		if !pp.nested {
			factors[i] = s.leafFor(pp.name).table.Extend(pp.leaves)

			continue
		}

		sub := s.nestedFor(pp.name)
		for _, sp := range pp.subs {
			_, indices := sub.commit(sp)
			factors[i] = append(factors[i], indices...)
		}
	}

	return s.expand(nameIdx, factors, p.combinations)
}

func (s *Space) leafFor(name string) *leafStore {
	if leaf, ok := s.values[name].(*leafStore); ok {
		return leaf
	}

	leaf := newLeafStore()
	s.values[name] = leaf

	return leaf
}

// nestedFor returns the nested space of name, creating it when the name is
// new or only has an empty value table.
func (s *Space) nestedFor(name string) *Space {
	if sub, ok := s.values[name].(*Space); ok {
		return sub
	}

	sub := s.child()
	s.values[name] = sub

	return sub
}

// expand walks the Cartesian product of factors, last factor fastest, and
// interns one row per combination.
func (s *Space) expand(nameIdx []int, factors [][]int, total int) ([]Row, []int) {
	for _, f := range factors {
		if len(f) == 0 {
			s.reportProgress(0, 0)

			return nil, nil
		}
	}

	k := len(factors)
	rows := make([]Row, 0, min(total, maxPrealloc))
	indices := make([]int, 0, min(total, maxPrealloc))
	counters := make([]int, k)
	done := 0

	for {
		row := make(Row, 2*k)
		for i := range k {
			row[2*i] = nameIdx[i]
			row[2*i+1] = factors[i][counters[i]]
		}

		indices = append(indices, s.rows.Append(row))
		rows = append(rows, slices.Clone(row))

		done++
		if done%progressStep == 0 {
			s.reportProgress(done, total)
		}

		if !advance(counters, factors) {
			break
		}
	}

	s.reportProgress(done, total)

	return rows, indices
}

func (s *Space) reportProgress(done, total int) {
	if s.opts.progress != nil {
		s.opts.progress(done, total)
	}
}

// advance steps the odometer and reports false once it wraps around.
func advance(counters []int, factors [][]int) bool {
	for i := len(counters) - 1; i >= 0; i-- {
		counters[i]++
		if counters[i] < len(factors[i]) {
			return true
		}

		counters[i] = 0
	}

	return false
}

type shapeState int

const (
	shapeAbsent shapeState = iota
	shapeEmpty
	shapeLeaf
	shapeNested
)

// shapeView tracks, during validation, the store shape every name will have
// once the earlier parameters of the same call are applied.
type shapeView struct {
	space   *Space
	pending map[string]*pendingShape
}

type pendingShape struct {
	nested bool
	filled bool
	child  *shapeView
}

func newShapeView(s *Space) *shapeView {
	return &shapeView{space: s, pending: make(map[string]*pendingShape)}
}

func (v *shapeView) state(name string) shapeState {
	if p, ok := v.pending[name]; ok {
		switch {
		case p.nested:
			return shapeNested
		case p.filled:
			return shapeLeaf
		default:
			return shapeEmpty
		}
	}

	if v.space == nil {
		return shapeAbsent
	}

	switch st := v.space.values[name].(type) {
	case *Space:
		return shapeNested
	case *leafStore:
		if st.Len() == 0 {
			return shapeEmpty
		}

		return shapeLeaf
	default:
		return shapeAbsent
	}
}

func (v *shapeView) nestedView(name string) *shapeView {
	if p, ok := v.pending[name]; ok && p.child != nil {
		return p.child
	}

	var existing *Space
	if v.space != nil {
		existing, _ = v.space.values[name].(*Space)
	}

	child := newShapeView(existing)
	v.pending[name] = &pendingShape{nested: true, child: child}

	return child
}

func (v *shapeView) markLeaf(name string, filled bool) {
	p, ok := v.pending[name]
	if !ok {
		p = &pendingShape{}
		v.pending[name] = p
	}

	p.filled = p.filled || filled
}
