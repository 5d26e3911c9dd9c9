// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

package streaks

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/Joshykins/stupid-neko-sub000/internal/config"
)

// Service is what the rest of the pipeline sees of the streak system.
// RecordActivityDay is how the pipeline advances a streak; without it the
// bonus read by the award path could never grow from this system's own
// activity.
type Service interface {
	CurrentStreakDays(ctx context.Context, userID uuid.UUID) (int, error)
	RecordActivityDay(ctx context.Context, userID uuid.UUID, day time.Time) error
	CreditVacationDay(ctx context.Context, userID uuid.UUID) error
	NotifyInactive(ctx context.Context, userID uuid.UUID) error
}

// Client talks to the streak service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a streak service client from config.
func NewClient(cfg *config.StreaksConfig) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(cfg.URL, "/"),
		http: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type streakResponse struct {
	UserID     string `json:"user_id"`
	StreakDays int    `json:"streak_days"`
}

// CurrentStreakDays fetches the user's current consecutive-day streak.
func (c *Client) CurrentStreakDays(ctx context.Context, userID uuid.UUID) (int, error) {
	url := fmt.Sprintf("%s/api/v1/streaks/%s", c.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build streak request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("streak request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		// Unknown user means no streak yet.
		return 0, nil
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("streak service returned status %d", resp.StatusCode)
	}

	var body streakResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode streak response: %w", err)
	}
	if body.StreakDays < 0 {
		return 0, nil
	}
	return body.StreakDays, nil
}

type activityDayRequest struct {
	Day string `json:"day"`
}

// RecordActivityDay tells the streak service the user was active on a day.
// The streak service dedupes repeat days, so every finalized activity can
// report unconditionally.
func (c *Client) RecordActivityDay(ctx context.Context, userID uuid.UUID, day time.Time) error {
	url := fmt.Sprintf("%s/api/v1/streaks/%s/activity-days", c.baseURL, userID)
	return c.post(ctx, url, activityDayRequest{Day: day.UTC().Format("2006-01-02")})
}

// CreditVacationDay spends one of the user's vacation days to keep a lapsing
// streak alive.
func (c *Client) CreditVacationDay(ctx context.Context, userID uuid.UUID) error {
	url := fmt.Sprintf("%s/api/v1/streaks/%s/vacation-days", c.baseURL, userID)
	return c.post(ctx, url, struct{}{})
}

func (c *Client) post(ctx context.Context, url string, body interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal streak request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build streak request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("streak request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("streak service returned status %d", resp.StatusCode)
	}
	return nil
}

type nudgeRequest struct {
	UserID string    `json:"user_id"`
	SentAt time.Time `json:"sent_at"`
}

// NotifyInactive asks the streak service to nudge a user whose streak is
// about to lapse.
func (c *Client) NotifyInactive(ctx context.Context, userID uuid.UUID) error {
	return c.post(ctx, c.baseURL+"/api/v1/nudges",
		nudgeRequest{UserID: userID.String(), SentAt: time.Now().UTC()})
}

// Noop is a Service that reports no streak and swallows writes. Used when
// the streak integration is disabled.
type Noop struct{}

func (Noop) CurrentStreakDays(context.Context, uuid.UUID) (int, error) { return 0, nil }

func (Noop) RecordActivityDay(context.Context, uuid.UUID, time.Time) error { return nil }

func (Noop) CreditVacationDay(context.Context, uuid.UUID) error { return nil }

func (Noop) NotifyInactive(context.Context, uuid.UUID) error { return nil }
