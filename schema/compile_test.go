package schema

import (
	"context"
	"errors"
	"maps"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"testing"

	"github.com/ardnew/cmf/lang"
)

const timeSeries = `
# wide daily time series, one file per aspect
aspects confirmed, deaths, recovered;
province = "Province/State";
country = "Country/Region" except { "Mainland China" = "China" };
lat = "Lat";
long = "Long";
region = key fit country, province;
date = * as { "%u/%u/%u", month(1), day(2), year(0) };
`

func mustCompile(t *testing.T, src string, opts ...Option) *Context {
	t.Helper()

	c, err := Compile(context.Background(), src, opts...)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	return c
}

func mustLookup(t *testing.T, c *Context, name string) *Variable {
	t.Helper()

	v, ok := c.Lookup(name)
	if !ok {
		t.Fatalf("Lookup(%q) not found", name)
	}

	return v
}

func TestCompile_TimeSeries(t *testing.T) {
	c := mustCompile(t, timeSeries, WithName("jhu"))

	if c.Name() != "jhu" {
		t.Errorf("Name() = %q, want jhu", c.Name())
	}

	if n := len(c.Variables()); n != 6 {
		t.Errorf("Variables() len = %d, want 6", n)
	}

	wantLinks := []Link{
		{Header: "Province/State", Name: "province"},
		{Header: "Country/Region", Name: "country"},
		{Header: "Lat", Name: "lat"},
		{Header: "Long", Name: "long"},
	}
	if got := c.Links(); !reflect.DeepEqual(got, wantLinks) {
		t.Errorf("Links() = %v, want %v", got, wantLinks)
	}

	tr := c.Trailing()
	if tr == nil {
		t.Fatal("Trailing() = nil")
	}

	if c.NameOf(tr) != "date" || !tr.Trails() || !tr.Key() {
		t.Errorf("trailing %q: Trails() = %v, Key() = %v", c.NameOf(tr), tr.Trails(), tr.Key())
	}

	if got := tr.Format().String(); got != "%u/%u/%u" {
		t.Errorf("Format() = %q, want %%u/%%u/%%u", got)
	}

	if got := c.KeyNames(); !slices.Equal(got, []string{"date", "region"}) {
		t.Errorf("KeyNames() = %v, want [date region]", got)
	}

	region := mustLookup(t, c, "region")
	if !region.IsFit() || len(region.Fit()) != 2 {
		t.Errorf("region IsFit() = %v with %d members, want 2", region.IsFit(), len(region.Fit()))
	}

	if !c.Fused(mustLookup(t, c, "country")) || c.Fused(region) {
		t.Error("only fit members are fused")
	}

	wantAspects := []Aspect{
		{Label: "confirmed", Priority: 0},
		{Label: "deaths", Priority: 1},
		{Label: "recovered", Priority: 2},
	}
	if got := c.Aspects(); !reflect.DeepEqual(got, wantAspects) {
		t.Errorf("Aspects() = %v, want %v", got, wantAspects)
	}
}

func TestCompile_ImplicitAspect(t *testing.T) {
	c := mustCompile(t, `c = key "Country"; d = * as "%u-%u-%u";`)

	want := []Aspect{{Label: DefaultAspect, Priority: 0}}
	if got := c.Aspects(); !reflect.DeepEqual(got, want) {
		t.Errorf("Aspects() = %v, want %v", got, want)
	}
}

func TestCompile_NoTrailing(t *testing.T) {
	c := mustCompile(t, `c = key "Country"; n = sum("Cases");`)

	if c.Trailing() != nil {
		t.Error("Trailing() != nil")
	}

	if got := c.Aspects(); len(got) != 0 {
		t.Errorf("Aspects() = %v, want none", got)
	}

	n := mustLookup(t, c, "n")
	if !n.Aggregates() || n.Key() {
		t.Errorf("n Aggregates() = %v, Key() = %v", n.Aggregates(), n.Key())
	}
}

func TestCompile_Rename(t *testing.T) {
	c := mustCompile(t, `c = "Cases"; cases = sum(c); total = cases;`)

	v := mustLookup(t, c, "c")
	if w := mustLookup(t, c, "total"); v != w {
		t.Error("renamed variable is a copy")
	}

	if got := c.NameOf(v); got != "total" {
		t.Errorf("NameOf() = %q, want total", got)
	}

	if n := len(c.Variables()); n != 1 {
		t.Errorf("Variables() len = %d, want 1", n)
	}

	want := []Link{{Header: "Cases", Name: "total"}}
	if got := c.Links(); !reflect.DeepEqual(got, want) {
		t.Errorf("Links() = %v, want %v", got, want)
	}

	if got := c.Header(v); got != "Cases" {
		t.Errorf("Header() = %q, want Cases", got)
	}
}

func TestCompile_NumericConstant(t *testing.T) {
	c := mustCompile(t, `scale = 100;`)

	v := mustLookup(t, c, "scale")
	if !v.Numeric() {
		t.Error("Numeric() = false")
	}

	if got := c.Links(); len(got) != 0 {
		t.Errorf("Links() = %v, want none", got)
	}

	if v.Write() != "100" || c.Header(v) != "scale" {
		t.Errorf("Write() = %q, Header() = %q", v.Write(), c.Header(v))
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"undefined variable", "a = b", lang.ErrUndefinedVariable},
		{"duplicate key", `a = key "A"; key a`, lang.ErrDuplicateKey},
		{"duplicate trailing", "a = *; b = *", lang.ErrDuplicateTrailing},
		{"duplicate aspects", "aspects a, b; aspects c, d", lang.ErrDuplicateAspects},
		{"duplicate aggregate", `a = sum("A"); sum(a)`, lang.ErrDuplicateAggregate},
		{"duplicate helper", `a = helper sum("A"); helper a`, lang.ErrDuplicateHelper},
		{"helper without sum", `a = helper "A"`, lang.ErrConflictingFlags},
		{"key on helper", `a = helper sum("A"); key a`, lang.ErrConflictingFlags},
		{"helper on key", `a = key sum("A"); helper a`, lang.ErrConflictingFlags},
		{"unknown fit member", `a = "A"; f = fit a, b`, lang.ErrUnknownFitMember},
		{"unknown format type", `d = "D" as "%x"`, lang.ErrUnknownFormatType},
		{"component count", `d = "D" as { "%u-%u", a }`, lang.ErrMissingArgument},
		{"duplicate format", `d = "D" as "%u"; e = d as "%u"`, lang.ErrDuplicateFormat},
		{"symbol exceptions", `d = x except { "a" = "b" }`, lang.ErrSymbolExceptions},
		{"redeclared", `a = "A"; a = "B"`, lang.ErrRedeclared},
		{"aspects without value", "x = aspects a, b", lang.ErrMissingArgument},
		{"undefined aspect source", "aspects a, b = kind", lang.ErrUndefinedVariable},
		{"parse error", "a = = b", lang.ErrParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(context.Background(), tt.src)
			if !errors.Is(err, tt.want) {
				t.Errorf("Compile(%q) error = %v, want %v", tt.src, err, tt.want)
			}
		})
	}
}

func TestCompileFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jhu_confirmed.cmf")
	if err := os.WriteFile(path, []byte(timeSeries), 0o600); err != nil {
		t.Fatal(err)
	}

	c, err := CompileFile(context.Background(), path)
	if err != nil {
		t.Fatalf("CompileFile() error = %v", err)
	}

	if c.Name() != "jhu_confirmed" {
		t.Errorf("Name() = %q, want jhu_confirmed", c.Name())
	}

	if n := len(c.Program().Statements); n != 7 {
		t.Errorf("Statements len = %d, want 7", n)
	}

	_, err = CompileFile(context.Background(), filepath.Join(t.TempDir(), "missing.cmf"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("CompileFile(missing) error = %v, want %v", err, os.ErrNotExist)
	}
}

func TestContext_CloneIndependent(t *testing.T) {
	c := mustCompile(t, timeSeries)
	d := c.Clone()

	dv := mustLookup(t, d, "country")
	cv := mustLookup(t, c, "country")

	if cv == dv {
		t.Fatal("Clone() shares variables")
	}

	mustRead(t, dv, "Mainland China")
	dv.SetIndex(3)

	if cv.Write() != "" || cv.Index() != -1 {
		t.Errorf("original changed: Write() = %q, Index() = %d", cv.Write(), cv.Index())
	}

	if mustLookup(t, d, "region").Fit()[0] != dv {
		t.Error("cloned fit member is not the cloned variable")
	}

	if d.Trailing() != mustLookup(t, d, "date") {
		t.Error("cloned trailing is not the cloned variable")
	}

	d.SetAspectPresent("deaths", false)

	if c.Aspects()[1].Priority != 1 || d.Aspects()[1].Priority != -1 {
		t.Errorf("priorities = %d, %d; want 1, -1", c.Aspects()[1].Priority, d.Aspects()[1].Priority)
	}

	d.SetAspectPresent("deaths", true)

	if got := d.Aspects()[1].Priority; got != 1 {
		t.Errorf("restored priority = %d, want 1", got)
	}
}

func TestContext_Describe(t *testing.T) {
	d := mustCompile(t, timeSeries, WithName("jhu")).Describe()

	if d.Name != "jhu" || d.Trailing != "date" || len(d.Statements) != 7 {
		t.Errorf("Describe() = %q trailing %q with %d statements", d.Name, d.Trailing, len(d.Statements))
	}

	if len(d.Variables) != 6 {
		t.Fatalf("Variables len = %d, want 6", len(d.Variables))
	}

	country := d.Variables[1]
	if country.Name != "country" || country.Header != "Country/Region" {
		t.Errorf("country = %q linked to %q", country.Name, country.Header)
	}

	if want := map[string]string{"Mainland China": "China"}; !maps.Equal(country.Exceptions, want) {
		t.Errorf("Exceptions = %v, want %v", country.Exceptions, want)
	}

	region := d.Variables[4]
	if !slices.Equal(region.Fit, []string{"country", "province"}) || !region.Key {
		t.Errorf("region Fit = %v, Key = %v", region.Fit, region.Key)
	}
}

func TestBuilder_Incremental(t *testing.T) {
	ctx := context.Background()
	b := NewBuilder()

	for _, src := range []string{`a = "A";`, `key a;`} {
		prog, err := lang.ParseString(ctx, src)
		if err != nil {
			t.Fatalf("ParseString(%q) error = %v", src, err)
		}

		if err := b.Apply(ctx, prog); err != nil {
			t.Fatalf("Apply(%q) error = %v", src, err)
		}
	}

	c, err := b.Context()
	if err != nil {
		t.Fatalf("Context() error = %v", err)
	}

	if got := c.KeyNames(); !slices.Equal(got, []string{"a"}) {
		t.Errorf("KeyNames() = %v, want [a]", got)
	}

	if n := len(c.Program().Statements); n != 2 {
		t.Errorf("Statements len = %d, want 2", n)
	}
}
