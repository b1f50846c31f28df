package match

import (
	"math"
	"strings"
	"testing"

	"github.com/ibchat/game-scout-sub001/internal/alias"
	"github.com/ibchat/game-scout-sub001/internal/db"
)

func TestMatchEvent_ExactOfficialAlias(t *testing.T) {
	t.Parallel()

	m := NewMatcher([]db.AliasTarget{
		{SteamAppID: 1145350, Alias: "hades ii", AliasType: alias.TypeOfficial, Weight: 10},
	})

	matched, ok := m.MatchEvent("Hades II gets a big update!", nil)
	if !ok {
		t.Fatalf("expected a match")
	}
	if matched.SteamAppID != 1145350 {
		t.Fatalf("unexpected app id %d", matched.SteamAppID)
	}
	if math.Abs(matched.Confidence-0.98) > 1e-9 {
		t.Fatalf("unexpected confidence %v", matched.Confidence)
	}
	if !strings.Contains(matched.Reason, `"hades ii"`) {
		t.Fatalf("reason does not name the matched alias: %q", matched.Reason)
	}
}

func TestMatchEvent_RespectsWordBoundaries(t *testing.T) {
	t.Parallel()

	m := NewMatcher([]db.AliasTarget{
		{SteamAppID: 1, Alias: "hades", AliasType: alias.TypeOfficial, Weight: 10},
	})

	if _, ok := m.MatchEvent("Shades of winter announced", nil); ok {
		t.Fatalf("substring inside a longer word must not match")
	}
	if _, ok := m.MatchEvent("New roguelike rivals Hades, say critics", nil); !ok {
		t.Fatalf("word-bounded occurrence should match")
	}
}

func TestMatchEvent_HigherWeightWins(t *testing.T) {
	t.Parallel()

	m := NewMatcher([]db.AliasTarget{
		{SteamAppID: 10, Alias: "frostpunk 2", AliasType: alias.TypeOfficial, Weight: 10},
		{SteamAppID: 20, Alias: "frostpunk", AliasType: alias.TypeShort, Weight: 3},
	})

	matched, ok := m.MatchEvent("Frostpunk 2 beta opens next week", nil)
	if !ok || matched.SteamAppID != 10 {
		t.Fatalf("expected the official alias to win, got %+v ok=%v", matched, ok)
	}
}

func TestMatchEvent_AmbiguousTieYieldsNoMatch(t *testing.T) {
	t.Parallel()

	m := NewMatcher([]db.AliasTarget{
		{SteamAppID: 1, Alias: "dawnfall", AliasType: alias.TypeShort, Weight: 3},
		{SteamAppID: 2, Alias: "duskfall", AliasType: alias.TypeShort, Weight: 3},
	})

	if _, ok := m.MatchEvent("dawnfall and duskfall crossover event", nil); ok {
		t.Fatalf("same-priority hits on different apps must not match")
	}

	matched, ok := m.MatchEvent("dawnfall patch 1.2 released", nil)
	if !ok || matched.SteamAppID != 1 {
		t.Fatalf("single hit should still match, got %+v ok=%v", matched, ok)
	}
}

func TestMatchEvent_BodyIsSearched(t *testing.T) {
	t.Parallel()

	m := NewMatcher([]db.AliasTarget{
		{SteamAppID: 7, Alias: "crimson horizon protocol", AliasType: alias.TypeOfficial, Weight: 10},
	})

	body := "Today we are shipping the Crimson Horizon Protocol anniversary patch."
	matched, ok := m.MatchEvent("Anniversary patch notes", &body)
	if !ok || matched.SteamAppID != 7 {
		t.Fatalf("expected body text to match, got %+v ok=%v", matched, ok)
	}
}

func TestMatchEvent_FuzzyFallback(t *testing.T) {
	t.Parallel()

	m := NewMatcher([]db.AliasTarget{
		{SteamAppID: 1086940, Alias: "baldurs gate 3", AliasType: alias.TypeOfficial, Weight: 10},
	})

	matched, ok := m.MatchEvent("Baldurs Gate 33", nil)
	if !ok {
		t.Fatalf("expected fuzzy fallback to match a near-identical title")
	}
	if math.Abs(matched.Confidence-0.85) > 1e-9 {
		t.Fatalf("fuzzy confidence should cap at 0.85, got %v", matched.Confidence)
	}
	if !strings.Contains(matched.Reason, "fuzzy") {
		t.Fatalf("reason should mark the fuzzy path: %q", matched.Reason)
	}
}

func TestMatchEvent_NonLatinAlias(t *testing.T) {
	t.Parallel()

	m := NewMatcher([]db.AliasTarget{
		{SteamAppID: 292030, Alias: "ведьмак 3 дикая охота", AliasType: alias.TypeOfficial, Weight: 10},
	})

	matched, ok := m.MatchEvent("Ведьмак 3: Дикая Охота получает обновление", nil)
	if !ok || matched.SteamAppID != 292030 {
		t.Fatalf("expected cyrillic alias to match, got %+v ok=%v", matched, ok)
	}
}

func TestMatchEvent_FuzzyUsesLeadingWordsOfCombinedText(t *testing.T) {
	t.Parallel()

	m := NewMatcher([]db.AliasTarget{
		{SteamAppID: 1086940, Alias: "baldurs gate 3", AliasType: alias.TypeOfficial, Weight: 10},
	})

	body := "Baldurs Gate 33!!!"
	matched, ok := m.MatchEvent("", &body)
	if !ok || matched.SteamAppID != 1086940 {
		t.Fatalf("expected fuzzy match from body text, got %+v ok=%v", matched, ok)
	}

	// The near-miss name sits past the leading-word window.
	if _, ok := m.MatchEvent("Weekly roundup of community highlights featuring Baldurs Gate 33", nil); ok {
		t.Fatalf("words past the fuzzy window must not be candidates")
	}
}

func TestMatchEvent_FuzzySkipsShortAliases(t *testing.T) {
	t.Parallel()

	m := NewMatcher([]db.AliasTarget{
		{SteamAppID: 1, Alias: "gates", AliasType: alias.TypeOfficial, Weight: 10},
		{SteamAppID: 2, Alias: "dawnfall", AliasType: alias.TypeShort, Weight: 3},
	})

	if _, ok := m.MatchEvent("gatess", nil); ok {
		t.Fatalf("aliases shorter than the fuzzy floor must not be fuzzy candidates")
	}
	if _, ok := m.MatchEvent("dawnfalls", nil); ok {
		t.Fatalf("short-class aliases must not be fuzzy candidates")
	}
}

func TestMatchEvent_NoAliasNoMatch(t *testing.T) {
	t.Parallel()

	m := NewMatcher([]db.AliasTarget{
		{SteamAppID: 1, Alias: "hollow knight silksong", AliasType: alias.TypeOfficial, Weight: 10},
	})

	if _, ok := m.MatchEvent("Completely unrelated industry news roundup", nil); ok {
		t.Fatalf("expected no match for unrelated text")
	}
	if _, ok := m.MatchEvent("", nil); ok {
		t.Fatalf("expected no match for empty text")
	}
}
