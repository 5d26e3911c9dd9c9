// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

package streaks

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Joshykins/stupid-neko-sub000/internal/config"
)

func newTestClient(url string) *Client {
	return NewClient(&config.StreaksConfig{URL: url, Timeout: 5 * time.Second})
}

func TestCurrentStreakDays(t *testing.T) {
	userID := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/streaks/"+userID.String() {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"user_id":"` + userID.String() + `","streak_days":12}`))
	}))
	defer srv.Close()

	days, err := newTestClient(srv.URL).CurrentStreakDays(context.Background(), userID)
	if err != nil {
		t.Fatalf("CurrentStreakDays() error: %v", err)
	}
	if days != 12 {
		t.Errorf("days = %d, want 12", days)
	}
}

func TestCurrentStreakDays_UnknownUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	days, err := newTestClient(srv.URL).CurrentStreakDays(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("CurrentStreakDays() error: %v", err)
	}
	if days != 0 {
		t.Errorf("days = %d, want 0 for unknown user", days)
	}
}

func TestCurrentStreakDays_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).CurrentStreakDays(context.Background(), uuid.New()); err == nil {
		t.Error("expected error for 500 response")
	}
}

func TestNotifyInactive(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	if err := newTestClient(srv.URL).NotifyInactive(context.Background(), uuid.New()); err != nil {
		t.Fatalf("NotifyInactive() error: %v", err)
	}
	if gotPath != "/api/v1/nudges" {
		t.Errorf("path = %q", gotPath)
	}
}

func TestRecordActivityDay(t *testing.T) {
	userID := uuid.New()
	var gotPath, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	day := time.Date(2026, 8, 30, 23, 45, 0, 0, time.UTC)
	if err := newTestClient(srv.URL).RecordActivityDay(context.Background(), userID, day); err != nil {
		t.Fatalf("RecordActivityDay() error: %v", err)
	}
	if gotPath != "/api/v1/streaks/"+userID.String()+"/activity-days" {
		t.Errorf("path = %q", gotPath)
	}
	if gotBody != `{"day":"2026-08-30"}` {
		t.Errorf("body = %q, want the calendar day", gotBody)
	}
}

func TestCreditVacationDay(t *testing.T) {
	userID := uuid.New()
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if err := newTestClient(srv.URL).CreditVacationDay(context.Background(), userID); err != nil {
		t.Fatalf("CreditVacationDay() error: %v", err)
	}
	if gotPath != "/api/v1/streaks/"+userID.String()+"/vacation-days" {
		t.Errorf("path = %q", gotPath)
	}
}

func TestCreditVacationDay_Exhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	if err := newTestClient(srv.URL).CreditVacationDay(context.Background(), uuid.New()); err == nil {
		t.Error("expected error when no vacation days remain")
	}
}

// fakeInactiveStore returns a fixed set of inactive users.
type fakeInactiveStore struct {
	users []uuid.UUID
}

func (f *fakeInactiveStore) ListUsersInactiveSince(context.Context, time.Time) ([]uuid.UUID, error) {
	return f.users, nil
}

// recordingService records nudges and vacation credits, and can fail either
// call for a chosen user.
type recordingService struct {
	Noop
	nudged     []uuid.UUID
	credited   []uuid.UUID
	failFor    uuid.UUID
	noVacation uuid.UUID
}

func (r *recordingService) NotifyInactive(_ context.Context, userID uuid.UUID) error {
	if userID == r.failFor {
		return errors.New("nudge rejected")
	}
	r.nudged = append(r.nudged, userID)
	return nil
}

func (r *recordingService) CreditVacationDay(_ context.Context, userID uuid.UUID) error {
	if userID == r.noVacation {
		return errors.New("no vacation days left")
	}
	r.credited = append(r.credited, userID)
	return nil
}

func TestNudgerRun_FailureIsolation(t *testing.T) {
	bad := uuid.New()
	good1, good2 := uuid.New(), uuid.New()

	svc := &recordingService{failFor: bad}
	nudger := NewNudger(&fakeInactiveStore{users: []uuid.UUID{good1, bad, good2}}, svc, 26*time.Hour)

	if err := nudger.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(svc.nudged) != 2 {
		t.Errorf("nudged %d users, want 2 (one failure skipped)", len(svc.nudged))
	}
	if len(svc.credited) != 3 {
		t.Errorf("credited %d vacation days, want 3", len(svc.credited))
	}
}

func TestNudgerRun_NudgesEvenWithoutVacationDays(t *testing.T) {
	userID := uuid.New()
	svc := &recordingService{noVacation: userID}
	nudger := NewNudger(&fakeInactiveStore{users: []uuid.UUID{userID}}, svc, 26*time.Hour)

	if err := nudger.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(svc.nudged) != 1 {
		t.Errorf("nudged %d users, want 1", len(svc.nudged))
	}
	if len(svc.credited) != 0 {
		t.Errorf("credited %d, want 0", len(svc.credited))
	}
}
