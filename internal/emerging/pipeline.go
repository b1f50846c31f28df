package emerging

import (
	"math"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/ibchat/game-scout-sub001/internal/config"
	"github.com/ibchat/game-scout-sub001/internal/db"
)

// Verdicts form a closed set; no other strings are ever produced.
const (
	VerdictEmerging         = "Sustained growth — emerging"
	VerdictWeakMomentum     = "Growth present but weak momentum"
	VerdictEarlyGrowth      = "Early growth — needs monitoring"
	VerdictInsufficientData = "Insufficient data"
	VerdictLowQuality       = "High interest but low quality"
	VerdictEvergreen        = "Evergreen — excluded from emerging"
)

const (
	GateGrowth    = "growth"
	GateQuality   = "quality"
	GateEvergreen = "evergreen"
	GateScore     = "score"
)

const daysPerYear = 365.25

// Thresholds parameterize one pipeline run.
type Thresholds struct {
	MinRecentReviews30D int
	MinPositiveRatio    float64
	EvergreenYears      float64
	EvergreenReviews    int64
	EmergingScoreMin    float64
}

func ThresholdsFromConfig(cfg *config.Config) Thresholds {
	return Thresholds{
		MinRecentReviews30D: cfg.MinRecentReviews30D,
		MinPositiveRatio:    cfg.MinPositiveRatio,
		EvergreenYears:      cfg.EvergreenYears,
		EvergreenReviews:    int64(cfg.EvergreenReviews),
		EmergingScoreMin:    cfg.EmergingScoreMin,
	}
}

// Snapshot is the metrics view of one catalog app at analysis time.
type Snapshot struct {
	SteamAppID            int64
	Name                  string
	SteamURL              *string
	ReleaseDate           *string
	AllReviewsCount       *int64
	RecentReviewsCount30D *int64
	AllPositiveRatio      *float64
}

func SnapshotFromRow(row db.MetricsSnapshot) Snapshot {
	return Snapshot{
		SteamAppID:            row.SteamAppID,
		Name:                  row.Name,
		SteamURL:              row.SteamURL,
		ReleaseDate:           row.ReleaseDate,
		AllReviewsCount:       row.AllReviewsCount,
		RecentReviewsCount30D: row.RecentReviewsCount30D,
		AllPositiveRatio:      row.AllPositiveRatio,
	}
}

// GateResult records one stage outcome in the report breakdown.
type GateResult struct {
	Gate   string `json:"gate"`
	Passed bool   `json:"passed"`
}

// Report is the verdict for one app. Recomputed on demand, never persisted.
type Report struct {
	SteamAppID       int64        `json:"steam_app_id"`
	Name             string       `json:"name"`
	SteamURL         *string      `json:"steam_url,omitempty"`
	RecentReviews30D int64        `json:"recent_reviews_30d"`
	PositiveRatio    float64      `json:"positive_ratio"`
	Score            float64      `json:"score"`
	Verdict          string       `json:"verdict"`
	Passed           bool         `json:"passed"`
	FilterResults    []GateResult `json:"filter_results"`
}

// Analyze runs the ordered gate battery over one snapshot. Each gate either
// stops with a terminal verdict or lets the next gate run; a missing input at
// a gate routes to that gate's failure branch, never an error. Pure function
// of (snapshot, thresholds, now).
func Analyze(snapshot Snapshot, thresholds Thresholds, now time.Time) Report {
	report := Report{
		SteamAppID: snapshot.SteamAppID,
		Name:       snapshot.Name,
		SteamURL:   snapshot.SteamURL,
	}
	if snapshot.RecentReviewsCount30D != nil {
		report.RecentReviews30D = *snapshot.RecentReviewsCount30D
	}
	if snapshot.AllPositiveRatio != nil {
		report.PositiveRatio = *snapshot.AllPositiveRatio
	}

	fail := func(gate, verdict string) Report {
		report.FilterResults = append(report.FilterResults, GateResult{Gate: gate, Passed: false})
		report.Verdict = verdict
		return report
	}
	pass := func(gate string) {
		report.FilterResults = append(report.FilterResults, GateResult{Gate: gate, Passed: true})
	}

	if snapshot.RecentReviewsCount30D == nil ||
		*snapshot.RecentReviewsCount30D < int64(thresholds.MinRecentReviews30D) {
		return fail(GateGrowth, VerdictInsufficientData)
	}
	pass(GateGrowth)

	if snapshot.AllPositiveRatio == nil ||
		*snapshot.AllPositiveRatio < thresholds.MinPositiveRatio {
		return fail(GateQuality, VerdictLowQuality)
	}
	pass(GateQuality)

	if isEvergreen(snapshot, thresholds, now) {
		return fail(GateEvergreen, VerdictEvergreen)
	}
	pass(GateEvergreen)

	score := Score(*snapshot.RecentReviewsCount30D, *snapshot.AllPositiveRatio)
	report.Score = score
	switch {
	case score < 1.0:
		return fail(GateScore, VerdictEarlyGrowth)
	case score < thresholds.EmergingScoreMin:
		return fail(GateScore, VerdictWeakMomentum)
	}
	pass(GateScore)

	report.Verdict = VerdictEmerging
	report.Passed = true
	return report
}

// Score is ln(1+n)·r rounded to two decimals; monotonically non-decreasing
// in both inputs.
func Score(recentReviews int64, positiveRatio float64) float64 {
	return math.Round(math.Log1p(float64(recentReviews))*positiveRatio*100) / 100
}

// isEvergreen fires only when the release date parses, the app is strictly
// older than the year threshold, and lifetime reviews reach the floor.
// A missing or unparseable release date never excludes an app.
func isEvergreen(snapshot Snapshot, thresholds Thresholds, now time.Time) bool {
	if snapshot.ReleaseDate == nil || snapshot.AllReviewsCount == nil {
		return false
	}
	if *snapshot.AllReviewsCount < thresholds.EvergreenReviews {
		return false
	}

	raw := strings.TrimSpace(*snapshot.ReleaseDate)
	if raw == "" {
		return false
	}
	released, err := dateparse.ParseAny(raw)
	if err != nil {
		return false
	}

	ageYears := now.Sub(released).Hours() / (24 * daysPerYear)
	return ageYears > thresholds.EvergreenYears
}
