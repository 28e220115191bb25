package sentiment

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// turkishPositive and turkishNegative are the lexicon for the primary
// language-specific estimator. Entries are matched as substrings of the
// Turkish-lowercased text, so suffixed forms still hit.
var turkishPositive = []string{
	"lezzetli", "güzel", "harika", "mükemmel", "muhteşem", "şahane",
	"nefis", "başarılı", "temiz", "güler yüzlü", "hızlı", "uygun",
	"ekonomik", "rahat", "keyifli", "tavsiye ederim", "bayıldık",
}

var turkishNegative = []string{
	"berbat", "kötü", "rezalet", "pahalı", "yavaş", "pis", "kirli",
	"soğuk", "ilgisiz", "kaba", "hayal kırıklığı", "beğenmedim",
	"tavsiye etmem", "bekletme", "geç",
}

// TurkishLexicon is the primary estimator: a lexicon classifier for Turkish
// review text. It stands in for the original transformer-based classifier;
// the chain contract only requires a compound score with 0 as neutral.
type TurkishLexicon struct {
	lower cases.Caser
}

// NewTurkishLexicon creates the estimator with Turkish-aware casing, so
// dotted/dotless i forms fold correctly.
func NewTurkishLexicon() *TurkishLexicon {
	return &TurkishLexicon{lower: cases.Lower(language.Turkish)}
}

// Name implements Estimator.
func (t *TurkishLexicon) Name() string { return "turkish_lexicon" }

// Score implements Estimator. The compound is the signed hit balance
// normalized by total hits; no hits yields the neutral sentinel 0.
func (t *TurkishLexicon) Score(text string) (float64, error) {
	lowered := t.lower.String(text)

	pos := countHits(lowered, turkishPositive)
	neg := countHits(lowered, turkishNegative)
	if pos+neg == 0 {
		return 0, nil
	}
	return float64(pos-neg) / float64(pos+neg), nil
}

func countHits(text string, lexicon []string) int {
	n := 0
	for _, w := range lexicon {
		if strings.Contains(text, w) {
			n++
		}
	}
	return n
}
