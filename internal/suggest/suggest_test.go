package suggest_test

import (
	"testing"

	"github.com/Shloimy15e/yiddish-cleaner/internal/suggest"
)

func TestRanker_PhoneticMatch(t *testing.T) {
	t.Parallel()

	r := suggest.New([]string{"shabbos", "yontif", "kiddush"})

	got := r.Rank("shabes")
	if len(got) == 0 {
		t.Fatal("Rank(shabes) returned no suggestions, want the phonetic match")
	}
	if got[0].Word != "shabbos" {
		t.Errorf("top suggestion = %q, want shabbos", got[0].Word)
	}
	if !got[0].Phonetic {
		t.Error("top suggestion not marked phonetic")
	}
	if got[0].Score <= 0 || got[0].Score > 1 {
		t.Errorf("score = %v, want within (0, 1]", got[0].Score)
	}
}

func TestRanker_ExactSpellingExcluded(t *testing.T) {
	t.Parallel()

	r := suggest.New([]string{"shabbos", "yontif"})

	for _, s := range r.Rank("shabbos") {
		if s.Word == "shabbos" {
			t.Error("Rank returned the word's own canonical spelling")
		}
	}
	// Case-insensitive: the uppercase form is the same lexicon entry.
	for _, s := range r.Rank("SHABBOS") {
		if s.Word == "shabbos" {
			t.Error("Rank(SHABBOS) returned the word's own canonical spelling")
		}
	}
}

func TestRanker_FuzzyFallback(t *testing.T) {
	t.Parallel()

	// "kiddish" vs "kiddush": one vowel apart, well above the fuzzy
	// threshold. Force the phonetic stage empty with an impossible phonetic
	// threshold so only the fallback can answer.
	r := suggest.New([]string{"kiddush"},
		suggest.WithPhoneticThreshold(1.01),
		suggest.WithFuzzyThreshold(0.85),
	)

	got := r.Rank("kiddish")
	if len(got) != 1 {
		t.Fatalf("Rank(kiddish) = %v, want the fuzzy fallback match", got)
	}
	if got[0].Phonetic {
		t.Error("fallback suggestion marked phonetic")
	}
}

func TestRanker_NoMatchBelowThresholds(t *testing.T) {
	t.Parallel()

	r := suggest.New([]string{"shabbos"})

	if got := r.Rank("xylophone"); len(got) != 0 {
		t.Errorf("Rank(xylophone) = %v, want no suggestions", got)
	}
}

func TestRanker_LimitAndOrdering(t *testing.T) {
	t.Parallel()

	lexicon := []string{"brokha", "brokhe", "brokhes", "brukha", "barkha", "brokh"}
	r := suggest.New(lexicon, suggest.WithLimit(3))

	got := r.Rank("broche")
	if len(got) > 3 {
		t.Fatalf("got %d suggestions, want at most 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Errorf("suggestions out of order: %v before %v", got[i-1], got[i])
		}
	}
}

func TestRanker_DedupsAndTrimsLexicon(t *testing.T) {
	t.Parallel()

	r := suggest.New([]string{" shabbos ", "shabbos", "SHABBOS", "", "  "})

	got := r.Rank("shabes")
	if len(got) != 1 {
		t.Fatalf("Rank = %v, want exactly one deduplicated entry", got)
	}
	if got[0].Word != "shabbos" {
		t.Errorf("suggestion = %q, want the trimmed first spelling", got[0].Word)
	}
}

func TestRanker_EmptyInputs(t *testing.T) {
	t.Parallel()

	r := suggest.New([]string{"shabbos"})
	if got := r.Rank(""); got != nil {
		t.Errorf("Rank(\"\") = %v, want nil", got)
	}
	if got := r.Rank("   "); got != nil {
		t.Errorf("Rank(blank) = %v, want nil", got)
	}

	empty := suggest.New(nil)
	if got := empty.Rank("shabes"); got != nil {
		t.Errorf("empty lexicon Rank = %v, want nil", got)
	}
}

func TestRanker_HebrewInputNeverMatchesByEmptyCode(t *testing.T) {
	t.Parallel()

	// Hebrew letters produce no Double Metaphone codes; the phonetic stage
	// must not treat two empty codes as a match. Only the fuzzy fallback may
	// answer, and these strings are far apart.
	r := suggest.New([]string{"shabbos", "kiddush"})

	if got := r.Rank("שבת"); len(got) != 0 {
		t.Errorf("Rank(שבת) = %v, want no suggestions", got)
	}
}
