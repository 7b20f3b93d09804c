// Package suggest ranks canonical lexicon spellings for a hypothesis word a
// reviewer flagged.
//
// Yiddish ASR output frequently renders a word phonetically rather than in
// its canonical spelling, so plain edit distance misses the right
// replacement. The [Ranker] works in two stages:
//
//  1. Phonetic candidate filtering: Double Metaphone codes are computed for
//     the flagged word and for every lexicon entry; entries sharing at least
//     one code become candidates.
//
//  2. Jaro-Winkler ranking: candidates are ordered by string similarity
//     against the flagged word (case-insensitive), cut off at the phonetic
//     threshold. When the phonetic stage yields nothing, a fallback pass
//     ranks the whole lexicon by pure Jaro-Winkler with a stricter
//     threshold.
//
// The Ranker is read-only after construction and safe for concurrent use.
package suggest

import (
	"slices"
	"strings"

	"github.com/antzucaro/matchr"
)

const (
	defaultPhoneticThreshold = 0.70
	defaultFuzzyThreshold    = 0.85
	defaultLimit             = 5
)

// Suggestion is one ranked replacement candidate.
type Suggestion struct {
	// Word is the canonical lexicon spelling.
	Word string `json:"word"`

	// Score is the Jaro-Winkler similarity against the flagged word, in
	// [0, 1].
	Score float64 `json:"score"`

	// Phonetic reports whether the candidate passed the Double Metaphone
	// filter or came from the fuzzy fallback.
	Phonetic bool `json:"phonetic"`
}

// Option is a functional option for configuring a [Ranker].
type Option func(*Ranker)

// WithPhoneticThreshold sets the minimum Jaro-Winkler score for a
// phonetically-matched candidate. Default: 0.70.
func WithPhoneticThreshold(threshold float64) Option {
	return func(r *Ranker) {
		r.phoneticThreshold = threshold
	}
}

// WithFuzzyThreshold sets the minimum Jaro-Winkler score for the fallback
// pass used when no phonetic candidate exists. Default: 0.85.
func WithFuzzyThreshold(threshold float64) Option {
	return func(r *Ranker) {
		r.fuzzyThreshold = threshold
	}
}

// WithLimit caps the number of suggestions returned. Default: 5.
func WithLimit(n int) Option {
	return func(r *Ranker) {
		r.limit = n
	}
}

// lexEntry is a lexicon word with its precomputed phonetic codes.
type lexEntry struct {
	word    string
	lower   string
	primary string
	second  string
}

// Ranker ranks lexicon entries against flagged words. The lexicon's phonetic
// codes are computed once at construction.
type Ranker struct {
	entries []lexEntry

	phoneticThreshold float64
	fuzzyThreshold    float64
	limit             int
}

// New builds a [Ranker] over the given lexicon of canonical spellings.
// Duplicate and blank entries are dropped.
func New(lexicon []string, opts ...Option) *Ranker {
	r := &Ranker{
		phoneticThreshold: defaultPhoneticThreshold,
		fuzzyThreshold:    defaultFuzzyThreshold,
		limit:             defaultLimit,
	}
	for _, o := range opts {
		o(r)
	}

	seen := make(map[string]struct{}, len(lexicon))
	for _, w := range lexicon {
		w = strings.TrimSpace(w)
		lower := strings.ToLower(w)
		if w == "" {
			continue
		}
		if _, dup := seen[lower]; dup {
			continue
		}
		seen[lower] = struct{}{}

		p, s := matchr.DoubleMetaphone(lower)
		r.entries = append(r.entries, lexEntry{word: w, lower: lower, primary: p, second: s})
	}
	return r
}

// Rank returns up to the configured limit of replacement candidates for
// word, best first. An empty result means the lexicon holds nothing close
// enough.
func (r *Ranker) Rank(word string) []Suggestion {
	lower := strings.ToLower(strings.TrimSpace(word))
	if lower == "" || len(r.entries) == 0 {
		return nil
	}
	primary, second := matchr.DoubleMetaphone(lower)

	var out []Suggestion
	for _, e := range r.entries {
		if e.lower == lower {
			continue // already spelled canonically
		}
		if !codesOverlap(primary, second, e) {
			continue
		}
		if score := matchr.JaroWinkler(lower, e.lower, false); score >= r.phoneticThreshold {
			out = append(out, Suggestion{Word: e.word, Score: score, Phonetic: true})
		}
	}

	// Fuzzy fallback: no phonetic candidate cleared the bar, so rank by
	// string similarity alone with the stricter threshold.
	if len(out) == 0 {
		for _, e := range r.entries {
			if e.lower == lower {
				continue
			}
			if score := matchr.JaroWinkler(lower, e.lower, false); score >= r.fuzzyThreshold {
				out = append(out, Suggestion{Word: e.word, Score: score})
			}
		}
	}

	slices.SortStableFunc(out, func(a, b Suggestion) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return strings.Compare(a.Word, b.Word)
	})
	if len(out) > r.limit {
		out = out[:r.limit]
	}
	return out
}

// codesOverlap reports whether the flagged word shares a Double Metaphone
// code with the lexicon entry. Empty codes never match: Hebrew-alphabet
// input produces none, and matching empties would pass everything.
func codesOverlap(primary, second string, e lexEntry) bool {
	for _, a := range [2]string{primary, second} {
		if a == "" {
			continue
		}
		if a == e.primary || a == e.second {
			return true
		}
	}
	return false
}
