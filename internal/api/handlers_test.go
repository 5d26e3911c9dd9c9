// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/Joshykins/stupid-neko-sub000/internal/config"
	"github.com/Joshykins/stupid-neko-sub000/internal/database"
	"github.com/Joshykins/stupid-neko-sub000/internal/models"
	"github.com/Joshykins/stupid-neko-sub000/internal/recorder"
)

type fakeStore struct {
	users      map[uuid.UUID]*models.User
	activities map[uuid.UUID]*models.LanguageActivity
	labels     map[models.ContentKey]*models.ContentLabel
	policies   map[string]*models.UserContentLabelPolicy
	pingErr    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:      make(map[uuid.UUID]*models.User),
		activities: make(map[uuid.UUID]*models.LanguageActivity),
		labels:     make(map[models.ContentKey]*models.ContentLabel),
		policies:   make(map[string]*models.UserContentLabelPolicy),
	}
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func (f *fakeStore) CreateUser(_ context.Context, user *models.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeStore) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return u, nil
}

func (f *fakeStore) UpdateUserTargetLanguage(_ context.Context, id uuid.UUID, code string) error {
	u, ok := f.users[id]
	if !ok {
		return database.ErrNotFound
	}
	u.TargetLanguageCode = code
	return nil
}

func (f *fakeStore) ListActivities(_ context.Context, userID uuid.UUID, _, _ int) ([]models.LanguageActivity, error) {
	var out []models.LanguageActivity
	for _, a := range f.activities {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeStore) GetActivity(_ context.Context, id uuid.UUID) (*models.LanguageActivity, error) {
	a, ok := f.activities[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return a, nil
}

func (f *fakeStore) InsertActivity(_ context.Context, a *models.LanguageActivity) error {
	f.activities[a.ID] = a
	return nil
}

func (f *fakeStore) DeleteActivity(_ context.Context, id uuid.UUID) error {
	if _, ok := f.activities[id]; !ok {
		return database.ErrNotFound
	}
	delete(f.activities, id)
	return nil
}

func (f *fakeStore) GetContentLabel(_ context.Context, key models.ContentKey) (*models.ContentLabel, error) {
	l, ok := f.labels[key]
	if !ok {
		return nil, database.ErrNotFound
	}
	return l, nil
}

func (f *fakeStore) UpsertPolicy(_ context.Context, p *models.UserContentLabelPolicy) error {
	f.policies[p.UserID.String()+"|"+string(p.ContentKey)] = p
	return nil
}

func (f *fakeStore) ListPolicies(_ context.Context, userID uuid.UUID) ([]models.UserContentLabelPolicy, error) {
	var out []models.UserContentLabelPolicy
	for _, p := range f.policies {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeStore) DeletePolicy(_ context.Context, userID uuid.UUID, key models.ContentKey) error {
	k := userID.String() + "|" + string(key)
	if _, ok := f.policies[k]; !ok {
		return database.ErrNotFound
	}
	delete(f.policies, k)
	return nil
}

func (f *fakeStore) ListLedgerEntries(context.Context, uuid.UUID, int, int) ([]models.ExperienceLedgerEntry, error) {
	return nil, nil
}

// fakeRecorder returns a canned result.
type fakeRecorder struct {
	result *recorder.Result
	err    error
	last   *recorder.Event
}

func (f *fakeRecorder) Record(_ context.Context, ev *recorder.Event) (*recorder.Result, error) {
	f.last = ev
	return f.result, f.err
}

// fakeLabeler records retry calls.
type fakeLabeler struct {
	retried []models.ContentKey
	err     error
}

func (f *fakeLabeler) Retry(_ context.Context, key models.ContentKey) error {
	if f.err != nil {
		return f.err
	}
	f.retried = append(f.retried, key)
	return nil
}

// fakeXP awards a fixed delta and tracks reversals.
type fakeXP struct {
	awarded  int
	reversed []uuid.UUID
}

func (f *fakeXP) AwardForActivity(_ context.Context, _ *models.LanguageActivity, _ *models.MediaType) (*models.ExperienceLedgerEntry, error) {
	f.awarded++
	return &models.ExperienceLedgerEntry{DeltaExperience: 25}, nil
}

func (f *fakeXP) Reverse(_ context.Context, a *models.LanguageActivity) (*models.ExperienceLedgerEntry, error) {
	if a.AwardedExperience == nil || *a.AwardedExperience == 0 {
		return nil, nil
	}
	f.reversed = append(f.reversed, a.ID)
	return &models.ExperienceLedgerEntry{DeltaExperience: -*a.AwardedExperience}, nil
}

func (f *fakeXP) Level(_ context.Context, userID uuid.UUID) (*models.ExperienceLedgerEntry, error) {
	return &models.ExperienceLedgerEntry{UserID: userID, NewLevel: 3, TotalExperience: 250, NextLevelCost: 150}, nil
}

func setup() (*fakeStore, *fakeRecorder, *fakeLabeler, *fakeXP, http.Handler) {
	store := newFakeStore()
	rec := &fakeRecorder{result: &recorder.Result{Saved: true, WaitingOnLabeling: true}}
	labels := &fakeLabeler{}
	xp := &fakeXP{}
	handler := NewHandler(store, rec, labels, xp, config.APIConfig{DefaultPageSize: 50, MaxPageSize: 200})
	router := NewRouter(handler, &config.ServerConfig{RateLimitDisabled: true})
	return store, rec, labels, xp, router
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) *models.APIResponse {
	t.Helper()
	var resp models.APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v (body %s)", err, w.Body.String())
	}
	return &resp
}

func TestRecordEvent(t *testing.T) {
	store, rec, _, _, router := setup()
	userID := uuid.New()
	store.users[userID] = &models.User{ID: userID, TargetLanguageCode: "ja"}

	w := doJSON(t, router, http.MethodPost, "/api/v1/events", RecordEventRequest{
		UserID:       userID.String(),
		ContentKey:   "youtube:abc123",
		ActivityType: "heartbeat",
	})

	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202 (body %s)", w.Code, w.Body.String())
	}
	if rec.last == nil || rec.last.ContentKey != "youtube:abc123" {
		t.Errorf("recorder got %+v", rec.last)
	}
	resp := decodeResponse(t, w)
	if resp.Status != "success" {
		t.Errorf("status = %q, want success", resp.Status)
	}
}

func TestRecordEvent_Validation(t *testing.T) {
	_, _, _, _, router := setup()

	tests := []struct {
		name string
		body RecordEventRequest
	}{
		{"missing user", RecordEventRequest{ContentKey: "youtube:abc", ActivityType: "start"}},
		{"bad content key", RecordEventRequest{UserID: uuid.NewString(), ContentKey: "abc", ActivityType: "start"}},
		{"bad activity type", RecordEventRequest{UserID: uuid.NewString(), ContentKey: "youtube:abc", ActivityType: "resume"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/api/v1/events", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
			resp := decodeResponse(t, w)
			if resp.Error == nil || resp.Error.Code != "VALIDATION_ERROR" {
				t.Errorf("error = %+v, want VALIDATION_ERROR", resp.Error)
			}
		})
	}
}

func TestCreateManualActivity(t *testing.T) {
	store, _, _, xp, router := setup()
	userID := uuid.New()
	store.users[userID] = &models.User{ID: userID, TargetLanguageCode: "ja"}

	w := doJSON(t, router, http.MethodPost, "/api/v1/activities", CreateManualActivityRequest{
		UserID:          userID.String(),
		Title:           "Graded reader chapter 3",
		LanguageCode:    "ja",
		DurationSeconds: 1800,
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", w.Code, w.Body.String())
	}
	if xp.awarded != 1 {
		t.Errorf("awards = %d, want 1", xp.awarded)
	}
	if len(store.activities) != 1 {
		t.Fatalf("activities = %d, want 1", len(store.activities))
	}
	for _, a := range store.activities {
		if !a.IsManuallyTracked || a.State != models.ActivityCompleted {
			t.Errorf("activity = %+v, want manual completed", a)
		}
		if a.AwardedExperience == nil || *a.AwardedExperience != 25 {
			t.Errorf("awarded experience = %v, want 25", a.AwardedExperience)
		}
	}
}

func TestCreateManualActivity_UnknownUser(t *testing.T) {
	_, _, _, _, router := setup()

	w := doJSON(t, router, http.MethodPost, "/api/v1/activities", CreateManualActivityRequest{
		UserID:          uuid.NewString(),
		Title:           "Podcast",
		LanguageCode:    "ja",
		DurationSeconds: 600,
	})

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestDeleteActivity_ReversesExperience(t *testing.T) {
	store, _, _, xp, router := setup()
	awarded := int64(50)
	activity := &models.LanguageActivity{
		ID:                uuid.New(),
		UserID:            uuid.New(),
		State:             models.ActivityCompleted,
		AwardedExperience: &awarded,
	}
	store.activities[activity.ID] = activity

	w := doJSON(t, router, http.MethodDelete, "/api/v1/activities/"+activity.ID.String(), nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
	if len(xp.reversed) != 1 || xp.reversed[0] != activity.ID {
		t.Errorf("reversed = %v, want the deleted activity", xp.reversed)
	}
	if len(store.activities) != 0 {
		t.Error("activity should be deleted")
	}
}

func TestDeleteActivity_NotFound(t *testing.T) {
	_, _, _, _, router := setup()
	w := doJSON(t, router, http.MethodDelete, "/api/v1/activities/"+uuid.NewString(), nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestGetLabel(t *testing.T) {
	store, _, _, _, router := setup()
	ja := "ja"
	store.labels["youtube:abc"] = &models.ContentLabel{
		ContentKey: "youtube:abc", Stage: models.LabelCompleted,
		ContentSource: models.SourceYouTube, ContentLanguageCode: &ja,
	}

	w := doJSON(t, router, http.MethodGet, "/api/v1/labels/youtube/abc", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/labels/youtube/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/labels/nonsense/abc", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for unknown source", w.Code)
	}
}

func TestRetryLabel(t *testing.T) {
	_, _, labels, _, router := setup()

	w := doJSON(t, router, http.MethodPost, "/api/v1/labels/youtube/abc/retry", nil)
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202 (body %s)", w.Code, w.Body.String())
	}
	if len(labels.retried) != 1 || labels.retried[0] != "youtube:abc" {
		t.Errorf("retried = %v", labels.retried)
	}
}

func TestRetryLabel_NotRetryable(t *testing.T) {
	_, _, labels, _, router := setup()
	labels.err = database.ErrNotFound

	w := doJSON(t, router, http.MethodPost, "/api/v1/labels/youtube/abc/retry", nil)
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

func TestPolicyLifecycle(t *testing.T) {
	store, _, _, _, router := setup()
	userID := uuid.New()
	store.users[userID] = &models.User{ID: userID, TargetLanguageCode: "ja"}

	w := doJSON(t, router, http.MethodPost, "/api/v1/policies", UpsertPolicyRequest{
		UserID:     userID.String(),
		ContentKey: "youtube:noisy",
		PolicyKind: "block",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("upsert status = %d (body %s)", w.Code, w.Body.String())
	}
	if len(store.policies) != 1 {
		t.Fatalf("policies = %d, want 1", len(store.policies))
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/policies?user_id="+userID.String(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}

	w = doJSON(t, router, http.MethodDelete,
		"/api/v1/policies?user_id="+userID.String()+"&content_key=youtube:noisy", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d (body %s)", w.Code, w.Body.String())
	}
	if len(store.policies) != 0 {
		t.Error("policy should be deleted")
	}
}

func TestGetLevel(t *testing.T) {
	_, _, _, _, router := setup()

	w := doJSON(t, router, http.MethodGet, "/api/v1/users/"+uuid.NewString()+"/level", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", w.Code, w.Body.String())
	}
	resp := decodeResponse(t, w)
	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("data = %T", resp.Data)
	}
	if data["level"] != float64(3) {
		t.Errorf("level = %v, want 3", data["level"])
	}
}

func TestUserLifecycle(t *testing.T) {
	store, _, _, _, router := setup()

	w := doJSON(t, router, http.MethodPost, "/api/v1/users", CreateUserRequest{
		Username:           "kenji",
		TargetLanguageCode: "ja",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d (body %s)", w.Code, w.Body.String())
	}

	var created models.User
	for _, u := range store.users {
		created = *u
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/users/"+created.ID.String(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}

	w = doJSON(t, router, http.MethodPut, "/api/v1/users/"+created.ID.String()+"/target-language",
		UpdateTargetLanguageRequest{TargetLanguageCode: "ko"})
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d (body %s)", w.Code, w.Body.String())
	}
	if store.users[created.ID].TargetLanguageCode != "ko" {
		t.Error("target language should be updated")
	}
}

func TestHealth(t *testing.T) {
	store, _, _, _, router := setup()

	w := doJSON(t, router, http.MethodGet, "/api/v1/health/ready", nil)
	if w.Code != http.StatusOK {
		t.Errorf("ready status = %d, want 200", w.Code)
	}

	store.pingErr = context.DeadlineExceeded
	w = doJSON(t, router, http.MethodGet, "/api/v1/health/ready", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("ready status = %d, want 503 when db is down", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/health/live", nil)
	if w.Code != http.StatusOK {
		t.Errorf("live status = %d, want 200", w.Code)
	}
}

func TestRecordEvent_DroppedStillSucceeds(t *testing.T) {
	store, rec, _, _, router := setup()
	userID := uuid.New()
	store.users[userID] = &models.User{ID: userID, TargetLanguageCode: "ja"}
	rec.result = &recorder.Result{DropReason: recorder.DropNotTargetLanguage}

	w := doJSON(t, router, http.MethodPost, "/api/v1/events", RecordEventRequest{
		UserID:       userID.String(),
		ContentKey:   "youtube:kdrama",
		ActivityType: "start",
		OccurredAt:   func() *time.Time { ts := time.Now(); return &ts }(),
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
}
