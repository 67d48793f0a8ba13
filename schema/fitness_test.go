package schema

import (
	"slices"
	"testing"

	"github.com/ardnew/cmf/lang"
)

func fitVariable(members ...*Variable) *Variable {
	v := newVariable("", lang.KindInvalid, nil)
	v.fit = members

	return v
}

func TestFitnessSet_Canonicalization(t *testing.T) {
	fs := NewFitnessSet()

	// Two documents spell the same country in opposite member order.
	a1, a2 := newVariable("Name", lang.KindString, nil), newVariable("Alt", lang.KindString, nil)
	first := fitVariable(a1, a2)
	mustRead(t, a1, "Czechia")
	mustRead(t, a2, "Czech Republic")

	b1, b2 := newVariable("Country", lang.KindString, nil), newVariable("Other", lang.KindString, nil)
	second := fitVariable(b1, b2)
	mustRead(t, b1, "Czech Republic")
	mustRead(t, b2, "Czechia")

	v1 := first.Imprint(fs)
	v2 := second.Imprint(fs)

	if v1.Text() != "Czechia" || v2.Text() != "Czechia" {
		t.Errorf("Imprint() = %q, %q; want Czechia for both", v1.Text(), v2.Text())
	}

	if !v1.Equal(v2) {
		t.Error("fit values differ")
	}

	if got := v2.Alternatives(); !slices.Equal(got, []string{"Czech Republic"}) {
		t.Errorf("Alternatives() = %q, want [Czech Republic]", got)
	}

	if got := fs.Values(); !slices.Equal(got, []string{"Czechia"}) {
		t.Errorf("Values() = %q, want [Czechia]", got)
	}
}

func TestFitnessSet_Select(t *testing.T) {
	tests := []struct {
		name  string
		seed  []string
		cands []string
		want  string
		alts  []string
		size  int
	}{
		{"first non-empty inserted", nil, []string{"", "b", "c"}, "b", []string{"c"}, 1},
		{"existing wins over earlier", []string{"c"}, []string{"a", "c"}, "c", []string{"a"}, 1},
		{"all empty", nil, []string{"", ""}, "", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := NewFitnessSet()
			for _, s := range tt.seed {
				fs.Select([]string{s})
			}

			got, alts := fs.Select(tt.cands)
			if got != tt.want {
				t.Errorf("Select() = %q, want %q", got, tt.want)
			}

			if !slices.Equal(alts, tt.alts) {
				t.Errorf("Select() alternatives = %q, want %q", alts, tt.alts)
			}

			if fs.Len() != tt.size {
				t.Errorf("Len() = %d, want %d", fs.Len(), tt.size)
			}
		})
	}
}

func TestVariable_FitRead(t *testing.T) {
	m1, m2 := newVariable("A", lang.KindString, nil), newVariable("B", lang.KindString, nil)
	v := fitVariable(m1, m2)

	tests := []struct {
		input  string
		m1, m2 string
	}{
		{"x|y|z", "x", "y|z"},
		{"solo", "solo", ""},
	}

	for _, tt := range tests {
		mustRead(t, v, tt.input)

		if m1.Write() != tt.m1 || m2.Write() != tt.m2 {
			t.Errorf("Read(%q) members = %q, %q; want %q, %q",
				tt.input, m1.Write(), m2.Write(), tt.m1, tt.m2)
		}
	}

	mustRead(t, v, "x|y|z")
	if got := v.Write(); got != "x|y|z" {
		t.Errorf("Write() = %q, want %q", got, "x|y|z")
	}

	v.Reset()
	if m1.Write() != "" || m2.Write() != "" {
		t.Errorf("Reset() left members %q, %q", m1.Write(), m2.Write())
	}
}
