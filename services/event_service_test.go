package services

import (
	"errors"
	"testing"
	"time"

	"github.com/CavinKrenik/RecovrSocial/internal/event"
	"github.com/CavinKrenik/RecovrSocial/internal/localstore"
)

func setupEvents(t *testing.T) *EventService {
	t.Helper()
	store, err := localstore.OpenInMemory()
	if err != nil {
		t.Fatalf("Failed to open in-memory store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewEventService(store)
}

func TestAddEventValidation(t *testing.T) {
	svc := setupEvents(t)

	if _, err := svc.Add(&event.AddEventRequest{Name: "", Date: "2025-04-01"}); !errors.Is(err, ErrEventMissingFields) {
		t.Errorf("Expected ErrEventMissingFields for empty name, got %v", err)
	}
	if _, err := svc.Add(&event.AddEventRequest{Name: "Sober Bowling", Date: ""}); !errors.Is(err, ErrEventMissingFields) {
		t.Errorf("Expected ErrEventMissingFields for empty date, got %v", err)
	}
	if _, err := svc.Add(&event.AddEventRequest{Name: "Sober Bowling", Date: "April 1st"}); !errors.Is(err, ErrEventInvalidDate) {
		t.Errorf("Expected ErrEventInvalidDate, got %v", err)
	}

	svc.now = func() time.Time { return time.Date(2025, time.April, 10, 12, 0, 0, 0, time.Local) }
	if _, err := svc.Add(&event.AddEventRequest{Name: "Sober Bowling", Date: "2025-04-09"}); !errors.Is(err, ErrEventInPast) {
		t.Errorf("Expected ErrEventInPast, got %v", err)
	}

	ev, err := svc.Add(&event.AddEventRequest{Name: "Sober Bowling", Date: "2025-04-10", Location: "Lakewood Lanes"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if ev.Category != event.DefaultCategory {
		t.Errorf("Expected category %s, got %s", event.DefaultCategory, ev.Category)
	}
}

func TestListPurgesStaleEvents(t *testing.T) {
	svc := setupEvents(t)
	svc.now = func() time.Time { return time.Date(2025, time.April, 1, 9, 0, 0, 0, time.Local) }

	if _, err := svc.Add(&event.AddEventRequest{Name: "Morning Meeting", Date: "2025-04-01"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := svc.Add(&event.AddEventRequest{Name: "Game Night", Date: "2025-04-05"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	// Three days pass; the April 1 event is now more than a day old.
	svc.now = func() time.Time { return time.Date(2025, time.April, 4, 9, 0, 0, 0, time.Local) }

	events, err := svc.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(events) != 1 || events[0].Name != "Game Night" {
		t.Fatalf("Expected only Game Night to survive retention, got %v", events)
	}

	// The purge is written back, not just filtered from the response.
	var stored []event.Event
	if _, err := svc.store.ReadJSON(keyEvents, &stored); err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}
	if len(stored) != 1 {
		t.Errorf("Expected purged list persisted, got %d entries", len(stored))
	}
}

func TestListYesterdayWithinGrace(t *testing.T) {
	svc := setupEvents(t)
	svc.now = func() time.Time { return time.Date(2025, time.April, 1, 9, 0, 0, 0, time.Local) }

	if _, err := svc.Add(&event.AddEventRequest{Name: "Picnic", Date: "2025-04-01"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	// One day later the event is exactly a day in the past: still listed.
	svc.now = func() time.Time { return time.Date(2025, time.April, 2, 9, 0, 0, 0, time.Local) }

	events, err := svc.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("Expected yesterday's event within the grace window, got %v", events)
	}
}

func TestListSortedByDate(t *testing.T) {
	svc := setupEvents(t)
	svc.now = func() time.Time { return time.Date(2025, time.April, 1, 9, 0, 0, 0, time.Local) }

	for _, req := range []event.AddEventRequest{
		{Name: "Later", Date: "2025-04-20"},
		{Name: "Sooner", Date: "2025-04-03"},
		{Name: "Middle", Date: "2025-04-10"},
	} {
		if _, err := svc.Add(&req); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	events, err := svc.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if events[0].Name != "Sooner" || events[1].Name != "Middle" || events[2].Name != "Later" {
		t.Errorf("Expected ascending date order, got %v", events)
	}
}
