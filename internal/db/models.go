package db

import (
	"encoding/json"
	"time"
)

// SteamApp maps scout.steam_apps. Rows are created and refreshed by the
// catalog collector; the signal pipeline only reads them.
type SteamApp struct {
	SteamAppID            int64      `gorm:"column:steam_app_id;primaryKey"`
	Name                  string     `gorm:"column:name;type:text;not null"`
	SteamURL              *string    `gorm:"column:steam_url;type:text"`
	ReleaseDate           *string    `gorm:"column:release_date;type:text"`
	AllReviewsCount       *int64     `gorm:"column:all_reviews_count;type:bigint"`
	RecentReviewsCount30D *int64     `gorm:"column:recent_reviews_count_30d;type:bigint"`
	AllPositiveRatio      *float64   `gorm:"column:all_positive_ratio;type:double precision"`
	IsSeed                bool       `gorm:"column:is_seed;type:boolean;not null;default:false"`
	RefreshedAt           *time.Time `gorm:"column:refreshed_at;type:timestamptz"`
	CreatedAt             time.Time  `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	UpdatedAt             time.Time  `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (SteamApp) TableName() string { return "scout.steam_apps" }

// AppAlias maps scout.app_aliases. The pair (steam_app_id, alias) is unique;
// regeneration inserts missing pairs and never deletes existing ones.
type AppAlias struct {
	AliasID    int64     `gorm:"column:alias_id;primaryKey;autoIncrement"`
	SteamAppID int64     `gorm:"column:steam_app_id;type:bigint;not null;uniqueIndex:ux_app_aliases_app_alias,priority:1"`
	Alias      string    `gorm:"column:alias;type:text;not null;uniqueIndex:ux_app_aliases_app_alias,priority:2"`
	AliasType  string    `gorm:"column:alias_type;type:text;not null"`
	Weight     int       `gorm:"column:weight;type:integer;not null;default:1"`
	CreatedAt  time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
}

func (AppAlias) TableName() string { return "scout.app_aliases" }

// RawEvent maps scout.raw_events. The pair (source, external_id) is the
// global dedup key; only the match_* columns are ever updated after insert.
type RawEvent struct {
	EventID           int64           `gorm:"column:event_id;primaryKey;autoIncrement"`
	Source            string          `gorm:"column:source;type:text;not null;uniqueIndex:ux_raw_events_source_external,priority:1"`
	ExternalID        string          `gorm:"column:external_id;type:text;not null;uniqueIndex:ux_raw_events_source_external,priority:2"`
	URL               *string         `gorm:"column:url;type:text"`
	Title             string          `gorm:"column:title;type:text;not null;default:''"`
	Body              *string         `gorm:"column:body;type:text"`
	Metrics           json.RawMessage `gorm:"column:metrics;type:jsonb"`
	Language          *string         `gorm:"column:language;type:text"`
	PublishedAt       *time.Time      `gorm:"column:published_at;type:timestamptz"`
	CapturedAt        time.Time       `gorm:"column:captured_at;type:timestamptz;not null;default:now()"`
	MatchedSteamAppID *int64          `gorm:"column:matched_steam_app_id;type:bigint;index"`
	MatchConfidence   *float64        `gorm:"column:match_confidence;type:double precision"`
	MatchReason       *string         `gorm:"column:match_reason;type:text"`
}

func (RawEvent) TableName() string { return "scout.raw_events" }

func autoMigrateModels() []any {
	return []any{
		&SteamApp{},
		&AppAlias{},
		&RawEvent{},
	}
}
