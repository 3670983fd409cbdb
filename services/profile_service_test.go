package services

import (
	"errors"
	"testing"
	"time"

	"github.com/CavinKrenik/RecovrSocial/internal/localstore"
	"github.com/CavinKrenik/RecovrSocial/internal/milestone"
	"github.com/CavinKrenik/RecovrSocial/internal/profile"
)

func setupProfile(t *testing.T) *ProfileService {
	t.Helper()
	store, err := localstore.OpenInMemory()
	if err != nil {
		t.Fatalf("Failed to open in-memory store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewProfileService(store)
}

func fixedNow(t *testing.T, svc *ProfileService, value string) {
	t.Helper()
	now, err := time.ParseInLocation(profile.DateLayout, value, time.Local)
	if err != nil {
		t.Fatalf("Bad fixed time %s: %v", value, err)
	}
	svc.now = func() time.Time { return now }
}

func TestNicknameRequired(t *testing.T) {
	svc := setupProfile(t)

	if err := svc.UpdateNickname("user-1", "  "); !errors.Is(err, ErrEmptyNickname) {
		t.Errorf("Expected ErrEmptyNickname, got %v", err)
	}

	if err := svc.UpdateNickname("user-1", "Hopeful"); err != nil {
		t.Fatalf("UpdateNickname failed: %v", err)
	}

	p, err := svc.GetProfile("user-1")
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if p.Nickname != "Hopeful" {
		t.Errorf("Expected nickname Hopeful, got %s", p.Nickname)
	}
}

func TestFutureCleanDateRejected(t *testing.T) {
	svc := setupProfile(t)
	fixedNow(t, svc, "2025-03-10")

	err := svc.SetCleanDate("user-1", "2025-03-11")
	if !errors.Is(err, milestone.ErrFutureCleanDate) {
		t.Errorf("Expected ErrFutureCleanDate, got %v", err)
	}

	if err := svc.SetCleanDate("user-1", "not-a-date"); !errors.Is(err, ErrInvalidCleanDate) {
		t.Errorf("Expected ErrInvalidCleanDate, got %v", err)
	}

	if err := svc.SetCleanDate("user-1", "2025-03-10"); err != nil {
		t.Errorf("Expected today to be accepted, got %v", err)
	}
}

func TestTrackerNotSetState(t *testing.T) {
	svc := setupProfile(t)

	tracker, err := svc.Tracker("user-1")
	if err != nil {
		t.Fatalf("Tracker failed: %v", err)
	}
	if tracker.CleanDateSet {
		t.Error("Expected clean_date_set false")
	}
	if tracker.DaysClean != 0 || tracker.Progress != 0 || len(tracker.Achieved) != 0 {
		t.Errorf("Expected zero state, got %+v", tracker)
	}
}

func TestTrackerRoundTripSameDayIsZero(t *testing.T) {
	svc := setupProfile(t)
	fixedNow(t, svc, "2025-03-10")

	if err := svc.SetCleanDate("user-1", "2025-03-10"); err != nil {
		t.Fatalf("SetCleanDate failed: %v", err)
	}

	tracker, err := svc.Tracker("user-1")
	if err != nil {
		t.Fatalf("Tracker failed: %v", err)
	}
	if tracker.DaysClean != 0 {
		t.Errorf("Expected 0 days on save day, got %d", tracker.DaysClean)
	}
}

func TestTrackerComputesMilestones(t *testing.T) {
	svc := setupProfile(t)
	fixedNow(t, svc, "2025-03-10")

	// 45 days before the fixed "today".
	if err := svc.SetCleanDate("user-1", "2025-01-24"); err != nil {
		t.Fatalf("SetCleanDate failed: %v", err)
	}

	tracker, err := svc.Tracker("user-1")
	if err != nil {
		t.Fatalf("Tracker failed: %v", err)
	}
	if tracker.DaysClean != 45 {
		t.Fatalf("Expected 45 days clean, got %d", tracker.DaysClean)
	}
	if tracker.NextMilestone.Days != 60 {
		t.Errorf("Expected next milestone 60, got %d", tracker.NextMilestone.Days)
	}
	if tracker.DaysToNext != 15 {
		t.Errorf("Expected 15 days to next, got %d", tracker.DaysToNext)
	}
	if tracker.Progress != 50 {
		t.Errorf("Expected 50%% progress, got %f", tracker.Progress)
	}
	// 1, 7 and 30 are behind a 45-day streak.
	if len(tracker.Achieved) != 3 {
		t.Errorf("Expected 3 achieved milestones, got %v", tracker.Achieved)
	}
}

func TestPrivacyFlags(t *testing.T) {
	svc := setupProfile(t)

	p, err := svc.GetProfile("user-1")
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if p.AnonymousMode || !p.ProfileVisible {
		t.Errorf("Expected defaults anonymous=false visible=true, got %+v", p)
	}

	err = svc.SetPrivacy("user-1", &profile.PrivacyRequest{AnonymousMode: true, ProfileVisible: false})
	if err != nil {
		t.Fatalf("SetPrivacy failed: %v", err)
	}

	p, err = svc.GetProfile("user-1")
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if !p.AnonymousMode || p.ProfileVisible {
		t.Errorf("Expected anonymous=true visible=false, got %+v", p)
	}
}
