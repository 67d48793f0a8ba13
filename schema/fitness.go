package schema

import "slices"

// FitnessSet records the canonical representative chosen among fit
// candidates. Every document taking part in one merge must share the same
// set so that differently spelled labels resolve to one value.
type FitnessSet struct {
	set   map[string]struct{}
	order []string
}

// NewFitnessSet returns an empty set.
func NewFitnessSet() *FitnessSet {
	return &FitnessSet{set: make(map[string]struct{})}
}

// Contains reports whether s has been selected before.
func (f *FitnessSet) Contains(s string) bool {
	_, ok := f.set[s]

	return ok
}

// Len returns the number of selected representatives.
func (f *FitnessSet) Len() int { return len(f.order) }

// Values returns the selected representatives in selection order.
func (f *FitnessSet) Values() []string { return slices.Clone(f.order) }

// Select returns the first candidate already in the set. Failing that, the
// first non-empty candidate is added and returned. The remaining candidates
// are returned as alternatives.
func (f *FitnessSet) Select(candidates []string) (string, []string) {
	pick := -1

	for i, c := range candidates {
		if f.Contains(c) {
			pick = i

			break
		}
	}

	if pick < 0 {
		for i, c := range candidates {
			if c != "" {
				pick = i
				f.set[c] = struct{}{}
				f.order = append(f.order, c)

				break
			}
		}
	}

	if pick < 0 {
		return "", nil
	}

	alts := make([]string, 0, len(candidates)-1)
	for i, c := range candidates {
		if i != pick && c != "" {
			alts = append(alts, c)
		}
	}

	return candidates[pick], alts
}
