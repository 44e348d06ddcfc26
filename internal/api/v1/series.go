package v1

import (
	"fmt"
	"strings"
	"time"
)

// CreateSeriesRequest is the body of POST /v1/series.
type CreateSeriesRequest struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`

	// RRule is the serialized rule. When empty, Rule is built instead.
	RRule string      `json:"rrule,omitempty"`
	Rule  *RuleFields `json:"rule,omitempty"`

	// StartDate is the first candidate date, YYYY-MM-DD.
	StartDate string `json:"start_date"`

	// StartTime is the local wall-clock start, HH:MM.
	StartTime string `json:"start_time"`

	DurationMinutes int `json:"duration_minutes"`

	// Timezone is an IANA zone name such as "Europe/Paris".
	Timezone string `json:"timezone"`
}

// Validate checks presence and shape. Rule, date and zone semantics are
// checked when the request is converted to a series.
func (r *CreateSeriesRequest) Validate() error {
	r.Slug = strings.TrimSpace(r.Slug)
	r.Title = strings.TrimSpace(r.Title)

	if r.Slug == "" {
		return fmt.Errorf("slug is required")
	}
	if strings.ContainsAny(r.Slug, " /?#") {
		return fmt.Errorf("slug must not contain spaces or URL delimiters")
	}
	if r.Title == "" {
		return fmt.Errorf("title is required")
	}
	if r.RRule == "" && r.Rule == nil {
		return fmt.Errorf("rrule or rule is required")
	}
	if r.StartDate == "" {
		return fmt.Errorf("start_date is required")
	}
	if r.StartTime == "" {
		return fmt.Errorf("start_time is required")
	}
	if r.DurationMinutes <= 0 {
		return fmt.Errorf("duration_minutes must be positive")
	}
	if r.Timezone == "" {
		return fmt.Errorf("timezone is required")
	}
	return nil
}

// SeriesResponse describes a stored series.
type SeriesResponse struct {
	ID                  string `json:"id"`
	Slug                string `json:"slug"`
	Title               string `json:"title"`
	RRule               string `json:"rrule"`
	Description         string `json:"description"`
	ShortLabel          string `json:"short_label"`
	Status              string `json:"status"`
	StartDate           string `json:"start_date"`
	StartTime           string `json:"start_time"`
	DurationMinutes     int    `json:"duration_minutes"`
	Timezone            string `json:"timezone"`
	MaterializedThrough string `json:"materialized_through,omitempty"`
}

// ExclusionRequest is the body of POST /v1/series/:slug/exclusions.
type ExclusionRequest struct {
	Date string `json:"date" binding:"required"`
}

// MaterializeResponse reports an on-demand materialization.
type MaterializeResponse struct {
	SeriesID  string `json:"series_id"`
	Instances int    `json:"instances"`
	Through   string `json:"through,omitempty"`
	Truncated bool   `json:"truncated"`
}

// Health is returned by GET /health.
type Health struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	CheckedAt time.Time `json:"checked_at"`
}
