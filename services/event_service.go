package services

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/CavinKrenik/RecovrSocial/internal/event"
	"github.com/CavinKrenik/RecovrSocial/internal/localstore"
)

var (
	ErrEventMissingFields = errors.New("event name and date are required")
	ErrEventInvalidDate   = errors.New("event date must be a valid YYYY-MM-DD date")
	ErrEventInPast        = errors.New("event date cannot be in the past")
)

// EventService keeps community-submitted events in the local tier with a
// short retention window: anything dated more than one day in the past is
// purged on every read.
type EventService struct {
	store *localstore.Store
	now   func() time.Time
}

func NewEventService(store *localstore.Store) *EventService {
	return &EventService{store: store, now: time.Now}
}

func (s *EventService) Add(req *event.AddEventRequest) (*event.Event, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || strings.TrimSpace(req.Date) == "" {
		return nil, ErrEventMissingFields
	}

	date, err := time.ParseInLocation(event.DateLayout, req.Date, time.Local)
	if err != nil {
		return nil, ErrEventInvalidDate
	}
	if date.Before(startOfDay(s.now())) {
		return nil, ErrEventInPast
	}

	ev := event.Event{
		ID:        uuid.NewString(),
		Name:      name,
		Date:      req.Date,
		Time:      req.Time,
		Location:  req.Location,
		Details:   req.Details,
		Website:   req.Website,
		Category:  event.DefaultCategory,
		CreatedAt: time.Now().UTC(),
	}

	err = s.store.Update(func(txn *badger.Txn) error {
		var events []event.Event
		if _, err := localstore.GetJSON(txn, keyEvents, &events); err != nil {
			return err
		}
		events = append(events, ev)
		return localstore.SetJSON(txn, keyEvents, events)
	})
	if err != nil {
		return nil, err
	}

	return &ev, nil
}

// List returns upcoming events sorted by date. Expired entries (and entries
// whose stored date no longer parses) are dropped and the cleaned list is
// written back, so retention happens on every read.
func (s *EventService) List() ([]event.Event, error) {
	cutoff := startOfDay(s.now()).AddDate(0, 0, -1)

	var kept []event.Event
	err := s.store.Update(func(txn *badger.Txn) error {
		var events []event.Event
		if _, err := localstore.GetJSON(txn, keyEvents, &events); err != nil {
			return err
		}

		kept = make([]event.Event, 0, len(events))
		for _, ev := range events {
			date, err := time.ParseInLocation(event.DateLayout, ev.Date, time.Local)
			if err != nil {
				continue
			}
			if date.Before(cutoff) {
				continue
			}
			kept = append(kept, ev)
		}

		if len(kept) == len(events) {
			return nil
		}
		return localstore.SetJSON(txn, keyEvents, kept)
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Date != kept[j].Date {
			return kept[i].Date < kept[j].Date
		}
		return kept[i].CreatedAt.Before(kept[j].CreatedAt)
	})

	return kept, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
