package match

import (
	"fmt"
	"strings"

	"github.com/ibchat/game-scout-sub001/internal/alias"
	"github.com/ibchat/game-scout-sub001/internal/db"
)

const (
	// MinConfidence is the floor below which a candidate match is discarded.
	MinConfidence = 0.80

	minFuzzyAliasLength = 6
	minFuzzyRatio       = 0.75
	maxFuzzyWords       = 5
)

var baseConfidence = map[string]float64{
	alias.TypeOfficial: 0.98,
	alias.TypeCommon:   0.95,
	alias.TypeAbbrev:   0.90,
	alias.TypeShort:    0.88,
}

// Match is one accepted entity-match decision.
type Match struct {
	SteamAppID int64
	Confidence float64
	Reason     string
}

// Matcher resolves event text against a loaded alias table. The target slice
// must already be ordered by weight then alias length, highest first.
type Matcher struct {
	targets []db.AliasTarget
}

func NewMatcher(targets []db.AliasTarget) *Matcher {
	return &Matcher{targets: targets}
}

// MatchEvent finds the app an event most likely refers to. Exact word-bounded
// alias hits are tried first; a trigram similarity fallback against longer
// official and common aliases covers misspelled titles. Returns ok=false when
// nothing clears the confidence floor or the best hit is ambiguous.
func (m *Matcher) MatchEvent(title string, body *string) (Match, bool) {
	text := alias.Normalize(title)
	if body != nil {
		if b := alias.Normalize(*body); b != "" {
			text = strings.TrimSpace(text + " " + b)
		}
	}
	if text == "" {
		return Match{}, false
	}

	if matched, ok := m.matchExact(text); ok {
		return matched, true
	}
	return m.matchFuzzy(text)
}

func (m *Matcher) matchExact(text string) (Match, bool) {
	for i, target := range m.targets {
		if !containsWord(text, target.Alias) {
			continue
		}

		// A second app matching at the same weight and alias length means
		// the text is ambiguous; refuse to pick one.
		for _, other := range m.targets[i+1:] {
			if other.Weight != target.Weight || len(other.Alias) != len(target.Alias) {
				break
			}
			if other.SteamAppID != target.SteamAppID && containsWord(text, other.Alias) {
				return Match{}, false
			}
		}

		confidence := exactConfidence(target)
		if confidence < MinConfidence {
			return Match{}, false
		}
		return Match{
			SteamAppID: target.SteamAppID,
			Confidence: confidence,
			Reason:     fmt.Sprintf("exact alias %q (%s)", target.Alias, target.AliasType),
		}, true
	}
	return Match{}, false
}

// matchFuzzy compares the leading words of the text, where a title almost
// always sits, against the longer high-trust aliases.
func (m *Matcher) matchFuzzy(text string) (Match, bool) {
	words := strings.Fields(text)
	if len(words) > maxFuzzyWords {
		words = words[:maxFuzzyWords]
	}
	sample := strings.Join(words, " ")
	if len(sample) < minFuzzyAliasLength {
		return Match{}, false
	}

	sampleGrams := trigrams(sample)
	if len(sampleGrams) == 0 {
		return Match{}, false
	}

	var (
		best      db.AliasTarget
		bestRatio float64
	)
	for _, target := range m.targets {
		if target.AliasType != alias.TypeOfficial && target.AliasType != alias.TypeCommon {
			continue
		}
		if len(target.Alias) < minFuzzyAliasLength {
			continue
		}
		ratio := jaccard(sampleGrams, trigrams(target.Alias))
		if ratio > bestRatio {
			bestRatio = ratio
			best = target
		}
	}

	if bestRatio <= minFuzzyRatio {
		return Match{}, false
	}
	confidence := bestRatio * 0.95
	if confidence > 0.85 {
		confidence = 0.85
	}
	if confidence < MinConfidence {
		return Match{}, false
	}
	return Match{
		SteamAppID: best.SteamAppID,
		Confidence: confidence,
		Reason:     fmt.Sprintf("fuzzy title match against %q", best.Alias),
	}, true
}

// exactConfidence scores an exact alias hit from its class base, a small
// length bonus, and the alias weight.
func exactConfidence(target db.AliasTarget) float64 {
	base, known := baseConfidence[target.AliasType]
	if !known {
		base = 0.85
	}

	bonus := float64(len(target.Alias)) * 0.002
	if bonus > 0.05 {
		bonus = 0.05
	}
	confidence := base + bonus
	if confidence > 0.98 {
		confidence = 0.98
	}
	return confidence * (0.9 + float64(target.Weight)*0.01)
}

// containsWord reports whether phrase occurs in text on word boundaries.
// Both inputs are assumed normalized, so boundaries are spaces.
func containsWord(text, phrase string) bool {
	if phrase == "" {
		return false
	}
	offset := 0
	for {
		idx := strings.Index(text[offset:], phrase)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(phrase)
		startOK := start == 0 || text[start-1] == ' '
		endOK := end == len(text) || text[end] == ' '
		if startOK && endOK {
			return true
		}
		offset = start + 1
		if offset >= len(text) {
			return false
		}
	}
}

func trigrams(text string) map[string]struct{} {
	runes := []rune(text)
	if len(runes) < 3 {
		return nil
	}
	grams := make(map[string]struct{}, len(runes))
	for i := 0; i+3 <= len(runes); i++ {
		grams[string(runes[i:i+3])] = struct{}{}
	}
	return grams
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for gram := range a {
		if _, ok := b[gram]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
