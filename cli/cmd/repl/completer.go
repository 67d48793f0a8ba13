package repl

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "vars", "links", "edit", "reset", "clear", "quit"}

// keywords are the reserved words of the schema language.
var keywords = []string{"aspects", "as", "except", "fit", "helper", "key", "sum"}

// isWordBoundary reports whether r separates completion words. Quoted text
// is not completed, so the quote is a boundary as well.
func isWordBoundary(r rune) bool {
	switch r {
	case ' ', '\t', '(', ')', '{', '}', ',', ';', '=', '"', '*', '#':
		return true
	}

	return false
}

// wordBounds returns the word under the cursor and its byte offsets in
// input. The word is empty when the cursor sits on a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(cursor, len(input))

	for start = cursor; start > 0; {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	for end = cursor; end < len(input); {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// inString reports whether offset lies inside a double-quoted string.
func inString(input string, offset int) bool {
	quoted := false

	for i := 0; i < offset && i < len(input); i++ {
		switch input[i] {
		case '\\':
			i++
		case '"':
			quoted = !quoted
		}
	}

	return quoted
}

// candidates returns the completion candidates for eval mode: declared
// variables followed by keywords.
func candidates(vars []string) []string {
	out := slices.Clone(vars)
	slices.Sort(out)

	for _, k := range keywords {
		if !slices.Contains(out, k) {
			out = append(out, k)
		}
	}

	return out
}

// computeMatches ranks the candidates matching the word at the cursor.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	wordStart, wordEnd int,
) {
	input := m.input.Value()
	cursor := m.input.Position()

	word, wordStart, wordEnd := wordBounds(input, cursor)
	if word == "" || inString(input, wordStart) {
		return nil, wordStart, wordEnd
	}

	list := ctrlCommands
	if m.mode == modeEval {
		list = candidates(m.session.names())
	}

	return fuzzy.Find(word, list), wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, cut with an
// ellipsis at width.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	ellipsis := hintStyle.Render("...")
	room := width - lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		w := lipgloss.Width(rendered)
		if i > 0 {
			w += len(sep)
		}

		if i > 0 && i < len(matches)-1 && used+w > room {
			b.WriteString(sep + ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += w
	}

	return b.String()
}

// renderCandidate highlights the matched characters of one candidate.
// Keywords are set in italics.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base := suggestionStyle
	hl := lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)

	if selected {
		base = selectedStyle
		hl = hl.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("4"))
	}

	if slices.Contains(keywords, match.Str) {
		base = base.Italic(true)
		hl = hl.Italic(true)
	}

	var b strings.Builder

	for i, r := range match.Str {
		if slices.Contains(match.MatchedIndexes, i) {
			b.WriteString(hl.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	return b.String()
}
