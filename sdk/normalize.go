package sdk

import "strings"

// RawAnalysis is the loosely-typed server payload. Field names and value
// types vary across server versions, so nothing in it is trusted until it
// passes through Normalize.
type RawAnalysis map[string]any

// PRDAnalysisResponse is the canonical client-facing shape. Every field is
// always present; slices are possibly empty, never nil.
type PRDAnalysisResponse struct {
	ArticleSummary string   `json:"article_summary"`
	Nationalities  []string `json:"nationalities"`
	Organizations  []string `json:"organizations"`
	People         []string `json:"people"`
	Languages      []string `json:"languages"`
}

// Normalize reconciles a raw payload into the canonical response. It is
// total: any missing or wrongly-typed field degrades to its zero shape
// instead of failing. originalText feeds heuristic language detection when
// the server supplied no language.
func Normalize(raw RawAnalysis, originalText string) PRDAnalysisResponse {
	return NormalizeWith(raw, originalText, HeuristicDetector{})
}

func NormalizeWith(raw RawAnalysis, originalText string, detector LanguageDetector) PRDAnalysisResponse {
	if detector == nil {
		detector = HeuristicDetector{}
	}
	return PRDAnalysisResponse{
		ArticleSummary: resolveSummary(raw),
		Nationalities:  ExtractNationalities(resolveCountries(raw)),
		Organizations:  stringSliceOrEmpty(raw["organizations"]),
		People:         stringSliceOrEmpty(raw["people"]),
		Languages:      resolveLanguages(raw, originalText, detector),
	}
}

// Summary resolution order: array-valued article_summary joined with
// spaces, else scalar summary, else empty.
func resolveSummary(raw RawAnalysis) string {
	if parts, ok := stringSlice(raw["article_summary"]); ok {
		return strings.Join(parts, " ")
	}
	if s, ok := raw["summary"].(string); ok {
		return s
	}
	return ""
}

// Countries[] is preferred; nationalities[] is the legacy field carrying
// raw country-like strings. An empty array counts as absent.
func resolveCountries(raw RawAnalysis) []string {
	if countries, ok := stringSlice(raw["countries"]); ok && len(countries) > 0 {
		return countries
	}
	if nationalities, ok := stringSlice(raw["nationalities"]); ok {
		return nationalities
	}
	return nil
}

// Language resolution order: languages[], then the legacy language[] key,
// then heuristic detection over the original text, then English.
func resolveLanguages(raw RawAnalysis, originalText string, detector LanguageDetector) []string {
	if langs, ok := stringSlice(raw["languages"]); ok && len(langs) > 0 {
		return langs
	}
	if langs, ok := stringSlice(raw["language"]); ok && len(langs) > 0 {
		return langs
	}
	if strings.TrimSpace(originalText) != "" {
		return detector.Detect(originalText)
	}
	return []string{"English"}
}

// stringSlice accepts []string or a JSON-decoded []any whose elements are
// all strings. A single non-string element rejects the whole value.
func stringSlice(v any) ([]string, bool) {
	switch typed := v.(type) {
	case []string:
		return typed, true
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

func stringSliceOrEmpty(v any) []string {
	if out, ok := stringSlice(v); ok {
		return out
	}
	return []string{}
}
