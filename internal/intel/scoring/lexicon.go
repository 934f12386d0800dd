package scoring

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

//go:embed lexicon.yaml
var defaultLexiconYAML []byte

// Intent categories recognised by the AI sub-score.
const (
	IntentPricing = "pricing"
	IntentBooking = "booking"
	IntentUrgency = "urgency"
)

var intentCategories = []string{IntentPricing, IntentBooking, IntentUrgency}

// Lexicon holds the fixed word lists used by the text heuristics.
type Lexicon struct {
	Version       string              `yaml:"version"`
	Intent        map[string][]string `yaml:"intent"`
	Positive      []string            `yaml:"positive"`
	Negative      []string            `yaml:"negative"`
	BuyingSignals []string            `yaml:"buying_signals"`
}

// DefaultLexicon returns the lexicon shipped with the binary.
func DefaultLexicon() *Lexicon {
	lex, err := parseLexicon(defaultLexiconYAML)
	if err != nil {
		panic(fmt.Sprintf("scoring: embedded lexicon is invalid: %v", err))
	}
	return lex
}

// LoadLexicon reads a lexicon override from path. An empty path returns the
// embedded default.
func LoadLexicon(path string) (*Lexicon, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultLexicon(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}
	return parseLexicon(raw)
}

func parseLexicon(raw []byte) (*Lexicon, error) {
	var lex Lexicon
	if err := yaml.Unmarshal(raw, &lex); err != nil {
		return nil, fmt.Errorf("parse lexicon: %w", err)
	}
	for _, category := range intentCategories {
		if len(lex.Intent[category]) == 0 {
			return nil, fmt.Errorf("lexicon: intent category %q has no terms", category)
		}
	}
	if len(lex.Positive) == 0 || len(lex.Negative) == 0 || len(lex.BuyingSignals) == 0 {
		return nil, fmt.Errorf("lexicon: positive, negative and buying_signals lists are required")
	}

	for category, terms := range lex.Intent {
		lex.Intent[category] = normalizeTerms(terms)
	}
	lex.Positive = normalizeTerms(lex.Positive)
	lex.Negative = normalizeTerms(lex.Negative)
	lex.BuyingSignals = normalizeTerms(lex.BuyingSignals)
	if lex.Version == "" {
		lex.Version = "custom"
	}
	return &lex, nil
}

// normalizeTerms folds terms into the same shape as scored text and drops
// duplicates so each distinct term is counted once.
func normalizeTerms(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		folded := foldText(term)
		if folded == "" {
			continue
		}
		if _, dup := seen[folded]; dup {
			continue
		}
		seen[folded] = struct{}{}
		out = append(out, folded)
	}
	return out
}

// foldText lowercases s and collapses every run of non-alphanumeric runes
// into one space. Apostrophes are dropped so "don't" folds to "dont".
func foldText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r == '\'' || r == '’':
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		default:
			pendingSpace = true
		}
	}
	return b.String()
}

// corpus is folded text padded with spaces so terms match on word boundaries.
type corpus string

func newCorpus(parts ...string) corpus {
	folded := make([]string, 0, len(parts))
	for _, p := range parts {
		if f := foldText(p); f != "" {
			folded = append(folded, f)
		}
	}
	return corpus(" " + strings.Join(folded, " ") + " ")
}

func (c corpus) contains(term string) bool {
	return strings.Contains(string(c), " "+term+" ")
}

// hits counts the distinct terms present in the corpus.
func (c corpus) hits(terms []string) int {
	n := 0
	for _, term := range terms {
		if c.contains(term) {
			n++
		}
	}
	return n
}

func (c corpus) matchesAny(terms []string) bool {
	for _, term := range terms {
		if c.contains(term) {
			return true
		}
	}
	return false
}
