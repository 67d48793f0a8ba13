package document

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/ardnew/cmf/schema"
)

// Mode selects a merge algorithm.
type Mode string

// Merge modes.
const (
	ModeReplace Mode = "replace"
	ModeSource  Mode = "merge_source"
	ModeDest    Mode = "merge_dest"
	ModeAverage Mode = "merge_average"
	ModeForward Mode = "merge_forward"
)

// Modes lists every merge mode.
func Modes() []Mode {
	return []Mode{ModeReplace, ModeSource, ModeDest, ModeAverage, ModeForward}
}

// ModeNames returns the names of [Modes].
func ModeNames() []string {
	names := make([]string, 0, 5)
	for _, m := range Modes() {
		names = append(names, string(m))
	}

	return names
}

// ParseMode returns the mode named s.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Modes(), m) {
		return "", ErrUnknownMode.With(slog.String("mode", s))
	}

	return m, nil
}

func (m Mode) String() string { return string(m) }

// Import merges the tables of sources into d. Sources are listed from
// lowest to highest priority. The param names the key that merge_forward
// advances along. Nothing is changed unless the whole merge succeeds.
func (d *Document) Import(ctx context.Context, mode Mode, sources []*Document, param string) error {
	if err := d.validate(mode, sources, param); err != nil {
		return err
	}

	var result *Table

	switch mode {
	case ModeReplace:
		result = sources[0].table.Clone()
	case ModeSource:
		result = d.mergeSource(sources)
	case ModeDest:
		result = d.mergeDest(sources)
	case ModeAverage:
		result = d.mergeAverage(sources)
	case ModeForward:
		result = mergeForward(sources, d.keyPos(param))
	}

	before := d.table.Len()
	d.table = result

	d.logger.InfoContext(ctx, "merge complete",
		slog.String("schema", d.Name()),
		slog.String("mode", mode.String()),
		slog.Int("sources", len(sources)),
		slog.Int("groups_before", before),
		slog.Int("groups_after", result.Len()),
	)

	return nil
}

func (d *Document) validate(mode Mode, sources []*Document, param string) error {
	if !slices.Contains(Modes(), mode) {
		return ErrUnknownMode.With(slog.String("mode", string(mode)))
	}

	if len(sources) == 0 || (mode == ModeReplace && len(sources) != 1) {
		return ErrSourceCount.With(
			slog.String("mode", string(mode)),
			slog.Int("sources", len(sources)),
		)
	}

	keys := d.KeyNames()

	for _, s := range sources {
		if !slices.Equal(s.KeyNames(), keys) {
			return ErrIncompatibleKeys.With(
				slog.String("source", s.Name()),
				slog.String("source_keys", strings.Join(s.KeyNames(), ",")),
				slog.String("keys", strings.Join(keys, ",")),
			)
		}
	}

	if mode == ModeForward {
		if param == "" {
			return ErrMergeParam.With(slog.String("issue", "merge_forward requires a key"))
		}

		if d.keyPos(param) < 0 {
			return ErrMergeParam.With(
				slog.String("param", param),
				slog.String("keys", strings.Join(keys, ",")),
			)
		}
	}

	return nil
}

// mergeSource overlays sources onto the destination; a later source's
// record replaces any earlier or destination record of the same group.
func (d *Document) mergeSource(sources []*Document) *Table {
	result := d.table.Clone()
	applied := NewTable()

	for i := len(sources) - 1; i >= 0; i-- {
		sources[i].table.Each(func(g schema.Group, rec Record) bool {
			if !applied.Has(g) {
				result.Put(g, rec.Clone())
				applied.Put(g, nil)
			}

			return true
		})
	}

	return result
}

// mergeDest fills groups missing from the destination, later sources
// first.
func (d *Document) mergeDest(sources []*Document) *Table {
	result := d.table.Clone()

	for i := len(sources) - 1; i >= 0; i-- {
		sources[i].table.Each(func(g schema.Group, rec Record) bool {
			if !result.Has(g) {
				result.Put(g, rec.Clone())
			}

			return true
		})
	}

	return result
}

// mergeAverage adds each group missing from the destination using the
// first source containing it, with every field numeric in all sources
// replaced by its truncated mean over the sources containing the group.
func (d *Document) mergeAverage(sources []*Document) *Table {
	numeric := numericFields(sources[0].table)
	for _, s := range sources[1:] {
		other := numericFields(s.table)
		for f := range numeric {
			if !other[f] {
				delete(numeric, f)
			}
		}
	}

	result := d.table.Clone()

	for _, s := range sources {
		s.table.Each(func(g schema.Group, rec Record) bool {
			if result.Has(g) {
				return true
			}

			merged := rec.Clone()

			for f := range numeric {
				var sum, n int64

				for _, o := range sources {
					orec, ok := o.table.Get(g)
					if !ok {
						continue
					}

					if val, ok := orec[f]; ok {
						sum += val.Int()
						n++
					}
				}

				if n > 0 {
					merged[f] = schema.NumberValue(sum / n).WithPhase(rec[f].Phase())
				}
			}

			result.Put(g, merged)

			return true
		})
	}

	return result
}

// numericFields returns the fields whose non-empty values are all integers.
func numericFields(t *Table) map[string]bool {
	numeric := make(map[string]bool)

	t.Each(func(_ schema.Group, rec Record) bool {
		for f, val := range rec {
			if val.Text() == "" {
				if _, seen := numeric[f]; !seen {
					numeric[f] = true
				}

				continue
			}

			_, ok := val.Number()
			if prev, seen := numeric[f]; !seen || prev {
				numeric[f] = ok
			}
		}

		return true
	})

	return numeric
}

// mergeForward starts from the first source and appends, from each later
// source in turn, the groups whose key at pos lies beyond every value
// merged so far.
func mergeForward(sources []*Document, pos int) *Table {
	result := sources[0].table.Clone()

	var (
		high schema.Value
		have bool
	)

	result.Each(func(g schema.Group, _ Record) bool {
		if !have || g[pos].Compare(high) > 0 {
			high, have = g[pos], true
		}

		return true
	})

	for _, s := range sources[1:] {
		next, moved := high, false

		s.table.Each(func(g schema.Group, rec Record) bool {
			if have && g[pos].Compare(high) <= 0 {
				return true
			}

			result.Put(g, rec.Clone())

			if !moved || g[pos].Compare(next) > 0 {
				next, moved = g[pos], true
			}

			return true
		})

		if moved {
			high, have = next, true
		}
	}

	return result
}
