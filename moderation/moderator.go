package moderation

import (
	"log/slog"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// Moderator masks configured words in text rendered to the terminal.
// Outgoing messages are never rewritten; only the local view is.
type Moderator struct {
	log          *slog.Logger
	matcher      *goahocorasick.Machine
	censoredChar rune
	enabled      bool
}

// folded is a normalized text plus, for each kept rune, its index in the original.
type folded struct {
	runes  []rune
	origin []int
}

// NewModerator builds the Aho-Corasick automaton over the normalized censored words.
// Words that normalize to nothing are skipped; an empty dictionary yields a pass-through moderator.
func NewModerator(censoredWords []string, censoredChar rune, log *slog.Logger) (*Moderator, error) {
	patterns := make([][]rune, 0, len(censoredWords))
	for _, word := range censoredWords {
		if f := fold(word); len(f.runes) > 0 {
			patterns = append(patterns, f.runes)
		}
	}
	if len(patterns) == 0 {
		return &Moderator{log: log, censoredChar: censoredChar}, nil
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	log.Debug("Moderator ready", "patterns", len(patterns))
	return &Moderator{log: log, matcher: m, censoredChar: censoredChar, enabled: true}, nil
}

// Censor replaces matched characters while preserving spacing and punctuation around them.
// It returns the masked text and the normalized words found, nil when none.
func (m *Moderator) Censor(original string) (string, []string) {
	if !m.enabled {
		return original, nil
	}
	f := fold(original)
	if len(f.runes) == 0 {
		return original, nil
	}
	hits := m.matcher.MultiPatternSearch(f.runes, false)
	if len(hits) == 0 {
		return original, nil
	}

	masked := []rune(original)
	var words []string
	for _, hit := range hits {
		first, last := hit.Pos, hit.Pos+len(hit.Word)-1
		if first < 0 || last >= len(f.origin) {
			continue
		}
		for i := f.origin[first]; i <= f.origin[last]; i++ {
			masked[i] = m.censoredChar
		}
		words = append(words, string(hit.Word))
	}
	return string(masked), words
}

// fold lowercases, undoes leet substitutions and drops punctuation, symbols and spaces.
func fold(text string) folded {
	f := folded{}
	for i, r := range []rune(text) {
		r = unleet(r)
		if unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r) {
			continue
		}
		f.runes = append(f.runes, unicode.ToLower(r))
		f.origin = append(f.origin, i)
	}
	return f
}

func unleet(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3', '€':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}
