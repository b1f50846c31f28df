package alias

import (
	"regexp"
	"strings"
)

// Alias classes, most to least specific.
const (
	TypeOfficial = "official"
	TypeCommon   = "common"
	TypeAbbrev   = "abbrev"
	TypeShort    = "short"
)

const minAliasLength = 4

// Candidate is one generated alias. Weight is the authoritative priority;
// emission order is informational only.
type Candidate struct {
	Alias     string
	AliasType string
	Weight    int
}

// Words too generic to stand alone as an alias.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {}, "at": {},
	"to": {}, "for": {}, "of": {}, "with": {}, "by": {},
	"game": {}, "games": {}, "inside": {}, "life": {}, "world": {}, "war": {}, "battle": {},
	"fight": {}, "story": {}, "tale": {}, "adventure": {}, "quest": {}, "journey": {},
	"legend": {}, "myth": {}, "hero": {}, "heroes": {}, "king": {}, "queen": {},
	"prince": {}, "princess": {}, "dragon": {}, "monster": {}, "beast": {}, "creature": {},
	"magic": {}, "spell": {}, "sword": {}, "shield": {}, "armor": {}, "weapon": {},
	"item": {}, "treasure": {}, "gold": {}, "coin": {}, "money": {}, "shop": {}, "store": {},
}

// Trailing edition/marketing suffixes stripped for the common alias,
// applied in order against the already-normalized name.
var suffixPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\s+game\s+of\s+the\s+year\s+edition$`),
	regexp.MustCompile(`\s+goty\s+edition$`),
	regexp.MustCompile(`\s+definitive\s+edition$`),
	regexp.MustCompile(`\s+complete\s+edition$`),
	regexp.MustCompile(`\s+deluxe\s+edition$`),
	regexp.MustCompile(`\s+ultimate\s+edition$`),
	regexp.MustCompile(`\s+remastered$`),
	regexp.MustCompile(`\s+remaster$`),
	regexp.MustCompile(`\s+edition$`),
	regexp.MustCompile(`\s+™$`),
	regexp.MustCompile(`\s+®$`),
	regexp.MustCompile(`\s+©$`),
}

// Generate derives weighted aliases from a display name. The output is
// deterministic for a given name; regeneration always yields the same set.
func Generate(name string) []Candidate {
	normalized := Normalize(name)
	if normalized == "" {
		return nil
	}

	candidates := []Candidate{{
		Alias:     normalized,
		AliasType: TypeOfficial,
		Weight:    10,
	}}

	cleaned := normalized
	for _, pattern := range suffixPatterns {
		cleaned = pattern.ReplaceAllString(cleaned, "")
	}
	cleaned = strings.TrimSpace(cleaned)

	if cleaned != normalized && cleaned != "" {
		candidates = append(candidates, Candidate{
			Alias:     cleaned,
			AliasType: TypeCommon,
			Weight:    8,
		})
	}

	if rest, ok := strings.CutPrefix(cleaned, "the "); ok {
		rest = strings.TrimSpace(rest)
		if rest != "" {
			candidates = append(candidates, Candidate{
				Alias:     rest,
				AliasType: TypeCommon,
				Weight:    7,
			})
		}
	}

	words := strings.Fields(cleaned)
	if len(words) > 1 {
		abbrev := words[0] + " " + words[1]
		if len(abbrev) >= 6 {
			candidates = append(candidates, Candidate{
				Alias:     abbrev,
				AliasType: TypeAbbrev,
				Weight:    5,
			})
		}

		last := words[len(words)-1]
		if !isStopWord(last) && len(last) >= minAliasLength {
			candidates = append(candidates, Candidate{
				Alias:     last,
				AliasType: TypeShort,
				Weight:    3,
			})
		}
	}

	if len(words) == 1 && !isStopWord(words[0]) && len(words[0]) >= minAliasLength {
		if !containsAlias(candidates, words[0]) {
			candidates = append(candidates, Candidate{
				Alias:     words[0],
				AliasType: TypeShort,
				Weight:    6,
			})
		}
	}

	return candidates
}

// Keep decides whether a generated candidate survives the persistence
// post-filter. Official aliases always survive; anything else must be at
// least four characters and not a stop word.
func Keep(c Candidate) bool {
	if c.AliasType == TypeOfficial {
		return true
	}
	if len(c.Alias) < minAliasLength {
		return false
	}
	return !isStopWord(c.Alias)
}

func isStopWord(word string) bool {
	_, ok := stopWords[word]
	return ok
}

func containsAlias(candidates []Candidate, alias string) bool {
	for _, c := range candidates {
		if c.Alias == alias {
			return true
		}
	}
	return false
}
