package emerging

import (
	"math"
	"testing"
	"time"
)

func defaultThresholds() Thresholds {
	return Thresholds{
		MinRecentReviews30D: 30,
		MinPositiveRatio:    0.70,
		EvergreenYears:      3,
		EvergreenReviews:    50000,
		EmergingScoreMin:    2.0,
	}
}

func i64(v int64) *int64     { return &v }
func f64(v float64) *float64 { return &v }
func str(v string) *string   { return &v }

var analysisNow = time.Date(2025, 8, 23, 0, 0, 0, 0, time.UTC)

func TestAnalyze_SustainedGrowth(t *testing.T) {
	t.Parallel()

	report := Analyze(Snapshot{
		SteamAppID:            1,
		Name:                  "Crimson Horizon Protocol",
		ReleaseDate:           str("2024-01-01"),
		AllReviewsCount:       i64(1000),
		RecentReviewsCount30D: i64(50),
		AllPositiveRatio:      f64(0.85),
	}, defaultThresholds(), analysisNow)

	if !report.Passed {
		t.Fatalf("expected pass, got %+v", report)
	}
	if report.Verdict != VerdictEmerging {
		t.Fatalf("unexpected verdict %q", report.Verdict)
	}
	if math.Abs(report.Score-3.34) > 1e-9 {
		t.Fatalf("expected score 3.34, got %v", report.Score)
	}
	if len(report.FilterResults) != 4 {
		t.Fatalf("expected all four gates recorded, got %+v", report.FilterResults)
	}
	for _, gate := range report.FilterResults {
		if !gate.Passed {
			t.Fatalf("gate %q should have passed: %+v", gate.Gate, report.FilterResults)
		}
	}
}

func TestAnalyze_GrowthGateStopsEverythingElse(t *testing.T) {
	t.Parallel()

	// Terrible quality and evergreen-aged, but growth fails first.
	report := Analyze(Snapshot{
		SteamAppID:            2,
		ReleaseDate:           str("2001-05-01"),
		AllReviewsCount:       i64(900000),
		RecentReviewsCount30D: i64(10),
		AllPositiveRatio:      f64(0.10),
	}, defaultThresholds(), analysisNow)

	if report.Passed || report.Verdict != VerdictInsufficientData {
		t.Fatalf("expected insufficient data, got %+v", report)
	}
	if report.Score != 0 {
		t.Fatalf("terminal gate must leave score at 0, got %v", report.Score)
	}
	if len(report.FilterResults) != 1 || report.FilterResults[0].Gate != GateGrowth {
		t.Fatalf("later gates must not run after growth fails: %+v", report.FilterResults)
	}
}

func TestAnalyze_GrowthBoundaryInclusive(t *testing.T) {
	t.Parallel()

	at := Analyze(Snapshot{RecentReviewsCount30D: i64(30), AllPositiveRatio: f64(0.9)}, defaultThresholds(), analysisNow)
	if at.Verdict == VerdictInsufficientData {
		t.Fatalf("exactly 30 recent reviews must pass growth, got %+v", at)
	}

	below := Analyze(Snapshot{RecentReviewsCount30D: i64(29), AllPositiveRatio: f64(0.9)}, defaultThresholds(), analysisNow)
	if below.Verdict != VerdictInsufficientData {
		t.Fatalf("29 recent reviews must fail growth, got %+v", below)
	}
}

func TestAnalyze_QualityBoundaryInclusive(t *testing.T) {
	t.Parallel()

	at := Analyze(Snapshot{RecentReviewsCount30D: i64(50), AllPositiveRatio: f64(0.70)}, defaultThresholds(), analysisNow)
	if at.Verdict == VerdictLowQuality {
		t.Fatalf("ratio 0.70 must pass quality, got %+v", at)
	}

	below := Analyze(Snapshot{RecentReviewsCount30D: i64(50), AllPositiveRatio: f64(0.699)}, defaultThresholds(), analysisNow)
	if below.Verdict != VerdictLowQuality {
		t.Fatalf("ratio 0.699 must fail quality, got %+v", below)
	}

	missing := Analyze(Snapshot{RecentReviewsCount30D: i64(50)}, defaultThresholds(), analysisNow)
	if missing.Verdict != VerdictLowQuality {
		t.Fatalf("missing ratio must fail quality, got %+v", missing)
	}
}

func TestAnalyze_EvergreenExclusion(t *testing.T) {
	t.Parallel()

	base := Snapshot{
		RecentReviewsCount30D: i64(500),
		AllPositiveRatio:      f64(0.95),
		ReleaseDate:           str("2011-04-19"),
		AllReviewsCount:       i64(900000),
	}

	report := Analyze(base, defaultThresholds(), analysisNow)
	if report.Verdict != VerdictEvergreen || report.Passed {
		t.Fatalf("old high-volume app must be excluded, got %+v", report)
	}

	young := base
	young.ReleaseDate = str("2024-06-01")
	if got := Analyze(young, defaultThresholds(), analysisNow); got.Verdict == VerdictEvergreen {
		t.Fatalf("young app must not be evergreen, got %+v", got)
	}

	lowVolume := base
	lowVolume.AllReviewsCount = i64(49999)
	if got := Analyze(lowVolume, defaultThresholds(), analysisNow); got.Verdict == VerdictEvergreen {
		t.Fatalf("below the lifetime floor must not be evergreen, got %+v", got)
	}

	unparseable := base
	unparseable.ReleaseDate = str("coming soon")
	if got := Analyze(unparseable, defaultThresholds(), analysisNow); got.Verdict == VerdictEvergreen {
		t.Fatalf("unparseable release date must never exclude, got %+v", got)
	}

	missingDate := base
	missingDate.ReleaseDate = nil
	if got := Analyze(missingDate, defaultThresholds(), analysisNow); got.Verdict == VerdictEvergreen {
		t.Fatalf("missing release date must never exclude, got %+v", got)
	}
}

func TestAnalyze_ScoreBands(t *testing.T) {
	t.Parallel()

	// ln(31)·0.70 ≈ 2.40: emerging.
	strong := Analyze(Snapshot{RecentReviewsCount30D: i64(30), AllPositiveRatio: f64(0.70)}, defaultThresholds(), analysisNow)
	if strong.Verdict != VerdictEmerging || !strong.Passed {
		t.Fatalf("expected emerging verdict, got %+v", strong)
	}

	thresholds := defaultThresholds()
	thresholds.MinRecentReviews30D = 1

	// ln(5)·0.70 ≈ 1.13: weak momentum.
	weak := Analyze(Snapshot{RecentReviewsCount30D: i64(4), AllPositiveRatio: f64(0.70)}, thresholds, analysisNow)
	if weak.Verdict != VerdictWeakMomentum || weak.Passed {
		t.Fatalf("expected weak momentum, got %+v", weak)
	}

	// ln(2)·0.70 ≈ 0.49: early growth.
	early := Analyze(Snapshot{RecentReviewsCount30D: i64(1), AllPositiveRatio: f64(0.70)}, thresholds, analysisNow)
	if early.Verdict != VerdictEarlyGrowth || early.Passed {
		t.Fatalf("expected early growth, got %+v", early)
	}
}

func TestScore_MonotonicAndRounded(t *testing.T) {
	t.Parallel()

	if got := Score(50, 0.85); math.Abs(got-3.34) > 1e-9 {
		t.Fatalf("expected 3.34, got %v", got)
	}

	prev := -1.0
	for n := int64(0); n <= 2000; n += 37 {
		got := Score(n, 0.8)
		if got < prev {
			t.Fatalf("score decreased from %v to %v at n=%d", prev, got, n)
		}
		prev = got
	}

	prev = -1.0
	for r := 0.0; r <= 1.0; r += 0.05 {
		got := Score(100, r)
		if got < prev {
			t.Fatalf("score decreased from %v to %v at r=%v", prev, got, r)
		}
		prev = got
	}
}
