package lang

import (
	"slices"
	"strconv"
	"strings"
)

// Ref is a handle to an intermediate variable held by a [Callbacks]
// implementation while a statement is evaluated. The zero Ref is invalid.
type Ref int

// Prioritized is a name with an ordering priority, used for format
// components and aspect labels.
type Prioritized struct {
	Name     string `json:"name"     yaml:"name"`
	Priority int    `json:"priority" yaml:"priority"`
}

func (p Prioritized) String() string {
	return p.Name + "(" + strconv.Itoa(p.Priority) + ")"
}

// Callbacks receives the effects of evaluating statements. A schema builder
// implements it to populate a compiled context.
type Callbacks interface {
	// Load resolves a previously saved variable.
	Load(name string) (Ref, error)
	// Save binds ref to a permanent name.
	Save(name string, ref Ref) error
	// Constant materializes a literal.
	Constant(text string, kind Kind, exceptions map[string]string) (Ref, error)
	// Scanf binds a format string and its components to input.
	Scanf(input Ref, format string, fields []Prioritized) (Ref, error)
	// Sum marks ref as an aggregate.
	Sum(ref Ref) (Ref, error)
	// DeclareAspects registers the aspect labels and optional source variable.
	DeclareAspects(labels []Prioritized, source string) (Ref, error)
	// Fit builds a group of alternate representations from saved variables.
	Fit(names []string) (Ref, error)
	// Key marks ref as part of the grouping key.
	Key(ref Ref) (Ref, error)
	// Helper marks ref as an aggregate that is not written to output.
	Helper(ref Ref) (Ref, error)
}

// Statement is a node of a parsed schema. The set of implementations is
// closed; see the types in this file.
type Statement interface {
	// Clone returns a deep copy sharing no mutable state with the receiver.
	Clone() Statement
	// Eval applies the statement to cb.
	Eval(cb Callbacks) (Ref, error)
	// String renders the statement as schema text.
	String() string

	statement()
}

// VariableRef refers to a previously assigned variable.
type VariableRef struct {
	Name string
	Pos  Position
}

// Exception substitutes Canonical for a raw input equal to Raw.
type Exception struct {
	Raw       string
	Canonical string
}

// Literal is a constant value: a number, a string, or the trailing marker
// "*". A symbol literal only occurs when it carries exceptions, which is
// rejected during evaluation.
type Literal struct {
	Kind       Kind
	Text       string
	Exceptions []Exception
	Pos        Position
}

// FormatField binds a format string and its prioritized component names to
// the variable produced by Source.
type FormatField struct {
	Source Statement
	Format string
	Fields []Prioritized
}

// Assign names the variable produced by Value.
type Assign struct {
	Name  string
	Value Statement
}

// Key marks the variable produced by Inner as a grouping key.
type Key struct{ Inner Statement }

// Helper marks the variable produced by Inner as a hidden aggregate.
type Helper struct{ Inner Statement }

// Fit groups previously declared variables as alternate representations.
type Fit struct{ Names []string }

// AspectsDecl declares the aspect labels of a schema and optionally the
// variable whose recorded value becomes the aspect cell.
type AspectsDecl struct {
	Labels []Prioritized
	Source string
}

// SumAggregate marks the variable produced by Inner as an aggregate.
type SumAggregate struct{ Inner Statement }

func (*VariableRef) statement()  {}
func (*Literal) statement()      {}
func (*FormatField) statement()  {}
func (*Assign) statement()       {}
func (*Key) statement()          {}
func (*Helper) statement()       {}
func (*Fit) statement()          {}
func (*AspectsDecl) statement()  {}
func (*SumAggregate) statement() {}

func (s *VariableRef) Clone() Statement {
	c := *s

	return &c
}

func (s *Literal) Clone() Statement {
	c := *s
	c.Exceptions = slices.Clone(s.Exceptions)

	return &c
}

func (s *FormatField) Clone() Statement {
	return &FormatField{
		Source: s.Source.Clone(),
		Format: s.Format,
		Fields: slices.Clone(s.Fields),
	}
}

func (s *Assign) Clone() Statement {
	return &Assign{Name: s.Name, Value: s.Value.Clone()}
}

func (s *Key) Clone() Statement          { return &Key{Inner: s.Inner.Clone()} }
func (s *Helper) Clone() Statement       { return &Helper{Inner: s.Inner.Clone()} }
func (s *Fit) Clone() Statement          { return &Fit{Names: slices.Clone(s.Names)} }
func (s *SumAggregate) Clone() Statement { return &SumAggregate{Inner: s.Inner.Clone()} }

func (s *AspectsDecl) Clone() Statement {
	return &AspectsDecl{Labels: slices.Clone(s.Labels), Source: s.Source}
}

func (s *VariableRef) Eval(cb Callbacks) (Ref, error) { return cb.Load(s.Name) }

func (s *Literal) Eval(cb Callbacks) (Ref, error) {
	if s.Kind == KindSymbol {
		return 0, ErrSymbolExceptions.At(s.Pos, "", s.Text)
	}

	return cb.Constant(s.Text, s.Kind, s.exceptionMap())
}

func (s *FormatField) Eval(cb Callbacks) (Ref, error) {
	ref, err := s.Source.Eval(cb)
	if err != nil {
		return 0, err
	}

	return cb.Scanf(ref, s.Format, slices.Clone(s.Fields))
}

func (s *Assign) Eval(cb Callbacks) (Ref, error) {
	ref, err := s.Value.Eval(cb)
	if err != nil {
		return 0, err
	}

	return ref, cb.Save(s.Name, ref)
}

func (s *Key) Eval(cb Callbacks) (Ref, error) {
	ref, err := s.Inner.Eval(cb)
	if err != nil {
		return 0, err
	}

	return cb.Key(ref)
}

func (s *Helper) Eval(cb Callbacks) (Ref, error) {
	ref, err := s.Inner.Eval(cb)
	if err != nil {
		return 0, err
	}

	return cb.Helper(ref)
}

func (s *Fit) Eval(cb Callbacks) (Ref, error) { return cb.Fit(slices.Clone(s.Names)) }

func (s *AspectsDecl) Eval(cb Callbacks) (Ref, error) {
	return cb.DeclareAspects(slices.Clone(s.Labels), s.Source)
}

func (s *SumAggregate) Eval(cb Callbacks) (Ref, error) {
	ref, err := s.Inner.Eval(cb)
	if err != nil {
		return 0, err
	}

	return cb.Sum(ref)
}

func (s *VariableRef) String() string { return s.Name }

func (s *Literal) String() string {
	var b strings.Builder

	if s.Kind == KindString {
		b.WriteString(`"` + s.Text + `"`)
	} else {
		b.WriteString(s.Text)
	}

	if len(s.Exceptions) > 0 {
		part := make([]string, len(s.Exceptions))
		for i, e := range s.Exceptions {
			part[i] = `"` + e.Raw + `" = "` + e.Canonical + `"`
		}

		b.WriteString(" except { " + strings.Join(part, ", ") + " }")
	}

	return b.String()
}

func (s *FormatField) String() string {
	if slices.Equal(s.Fields, positional(s.Format)) {
		return s.Source.String() + ` as "` + s.Format + `"`
	}

	part := make([]string, 0, len(s.Fields)+1)
	part = append(part, `"`+s.Format+`"`)

	for _, f := range s.Fields {
		part = append(part, f.String())
	}

	return s.Source.String() + " as { " + strings.Join(part, ", ") + " }"
}

func (s *Assign) String() string       { return s.Name + " = " + s.Value.String() }
func (s *Key) String() string          { return "key " + s.Inner.String() }
func (s *Helper) String() string       { return "helper " + s.Inner.String() }
func (s *Fit) String() string          { return "fit " + strings.Join(s.Names, ", ") }
func (s *SumAggregate) String() string { return "sum(" + s.Inner.String() + ")" }

func (s *AspectsDecl) String() string {
	part := make([]string, len(s.Labels))
	for i, l := range s.Labels {
		part[i] = l.String()
	}

	out := "aspects " + strings.Join(part, ", ")
	if s.Source != "" {
		out += " = " + s.Source
	}

	return out
}

func (s *Literal) exceptionMap() map[string]string {
	if len(s.Exceptions) == 0 {
		return nil
	}

	m := make(map[string]string, len(s.Exceptions))
	for _, e := range s.Exceptions {
		m[e.Raw] = e.Canonical
	}

	return m
}
