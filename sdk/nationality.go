package sdk

import (
	_ "embed"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed nationalities.yaml
var nationalitiesYAML []byte

type nationalityEntry struct {
	Nationality string   `yaml:"nationality"`
	Names       []string `yaml:"names"`
}

// Keys shorter than this never participate in substring matching; two-byte
// keys like "uk" would otherwise swallow unrelated country names.
const minSubstringKeyLen = 3

var (
	// Ordered table for the substring fallback scan.
	nationalityEntries []nationalityEntry
	// Exact lower-cased name -> nationality.
	nationalityExact map[string]string
)

func init() {
	if err := yaml.Unmarshal(nationalitiesYAML, &nationalityEntries); err != nil {
		panic("sdk: invalid embedded nationality table: " + err.Error())
	}
	nationalityExact = make(map[string]string)
	for _, entry := range nationalityEntries {
		for _, name := range entry.Names {
			nationalityExact[name] = entry.Nationality
		}
	}
}

// ExtractNationalities converts country-like strings into nationality
// adjectives. Each input is trimmed and lower-cased, looked up exactly,
// then by substring containment in either direction against the ordered
// table. Unmatched inputs are dropped. The result is deduplicated,
// preserving first-seen order of nationalities.
func ExtractNationalities(countries []string) []string {
	out := []string{}
	seen := make(map[string]struct{})

	for _, country := range countries {
		key := strings.ToLower(strings.TrimSpace(country))
		if key == "" {
			continue
		}
		nationality, ok := lookupNationality(key)
		if !ok {
			continue
		}
		if _, dup := seen[nationality]; dup {
			continue
		}
		seen[nationality] = struct{}{}
		out = append(out, nationality)
	}
	return out
}

func lookupNationality(key string) (string, bool) {
	if nationality, ok := nationalityExact[key]; ok {
		return nationality, true
	}
	for _, entry := range nationalityEntries {
		for _, name := range entry.Names {
			if len(name) < minSubstringKeyLen {
				continue
			}
			if strings.Contains(key, name) || strings.Contains(name, key) {
				return entry.Nationality, true
			}
		}
	}
	return "", false
}
