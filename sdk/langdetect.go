package sdk

import (
	"regexp"
	"sort"
	"strings"
)

// LanguageDetector identifies the languages of a text. Implementations
// return capitalized language names, best guess first, and never an empty
// slice.
type LanguageDetector interface {
	Detect(text string) []string
}

// HeuristicDetector counts common function words (Latin scripts) or
// script-range characters (CJK, Arabic). It is a coarse stand-in for a
// real language-identification service; short or mixed text will produce
// false negatives.
type HeuristicDetector struct{}

const (
	// A language needs strictly more than this many hits to count.
	detectThreshold = 5
	maxDetected     = 3
)

type languagePattern struct {
	name    string
	pattern *regexp.Regexp
}

var languagePatterns = []languagePattern{
	{"English", regexp.MustCompile(`\b(the|and|of|to|in|is|that|for|with|was)\b`)},
	{"Spanish", regexp.MustCompile(`\b(el|la|los|las|de|que|en|una|por|con)\b`)},
	{"French", regexp.MustCompile(`\b(le|les|des|une|est|dans|pour|que|avec|sur)\b`)},
	{"German", regexp.MustCompile(`\b(der|die|das|und|ist|nicht|ein|eine|mit|für)\b`)},
	{"Chinese", regexp.MustCompile(`[\x{4e00}-\x{9fff}]`)},
	{"Japanese", regexp.MustCompile(`[\x{3040}-\x{309f}\x{30a0}-\x{30ff}]`)},
	{"Arabic", regexp.MustCompile(`[\x{0600}-\x{06ff}]`)},
}

func (HeuristicDetector) Detect(text string) []string {
	lowered := strings.ToLower(text)

	type hit struct {
		name  string
		count int
	}
	hits := []hit{}
	for _, lp := range languagePatterns {
		count := len(lp.pattern.FindAllStringIndex(lowered, -1))
		if count > detectThreshold {
			hits = append(hits, hit{name: lp.name, count: count})
		}
	}
	if len(hits) == 0 {
		return []string{"English"}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].count > hits[j].count })
	if len(hits) > maxDetected {
		hits = hits[:maxDetected]
	}

	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.name
	}
	return out
}
