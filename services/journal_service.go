package services

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/CavinKrenik/RecovrSocial/internal/journal"
	"github.com/CavinKrenik/RecovrSocial/internal/localstore"
)

var (
	ErrEmptyEntry    = errors.New("journal entry needs a title or content")
	ErrEntryNotFound = errors.New("journal entry not found")
)

// JournalService keeps the user's journal in the local tier only; entries are
// private and never leave the device profile.
type JournalService struct {
	store *localstore.Store
}

func NewJournalService(store *localstore.Store) *JournalService {
	return &JournalService{store: store}
}

func (s *JournalService) Create(userID string, req *journal.EntryRequest) (*journal.Entry, error) {
	if strings.TrimSpace(req.Title) == "" && strings.TrimSpace(req.Content) == "" {
		return nil, ErrEmptyEntry
	}

	now := time.Now().UTC()
	entry := journal.Entry{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Content:   req.Content,
		Mood:      req.Mood,
		Tags:      req.Tags,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.store.Update(func(txn *badger.Txn) error {
		var entries []journal.Entry
		if _, err := localstore.GetJSON(txn, journalKey(userID), &entries); err != nil {
			return err
		}
		entries = append(entries, entry)
		return localstore.SetJSON(txn, journalKey(userID), entries)
	})
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

func (s *JournalService) Update(userID, entryID string, req *journal.EntryRequest) (*journal.Entry, error) {
	if strings.TrimSpace(req.Title) == "" && strings.TrimSpace(req.Content) == "" {
		return nil, ErrEmptyEntry
	}

	var updated *journal.Entry
	err := s.store.Update(func(txn *badger.Txn) error {
		var entries []journal.Entry
		if _, err := localstore.GetJSON(txn, journalKey(userID), &entries); err != nil {
			return err
		}
		for i := range entries {
			if entries[i].ID != entryID {
				continue
			}
			entries[i].Title = req.Title
			entries[i].Content = req.Content
			entries[i].Mood = req.Mood
			entries[i].Tags = req.Tags
			entries[i].UpdatedAt = time.Now().UTC()
			updated = &entries[i]
			return localstore.SetJSON(txn, journalKey(userID), entries)
		}
		return ErrEntryNotFound
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (s *JournalService) Delete(userID, entryID string) error {
	return s.store.Update(func(txn *badger.Txn) error {
		var entries []journal.Entry
		if _, err := localstore.GetJSON(txn, journalKey(userID), &entries); err != nil {
			return err
		}
		kept := make([]journal.Entry, 0, len(entries))
		for _, e := range entries {
			if e.ID != entryID {
				kept = append(kept, e)
			}
		}
		if len(kept) == len(entries) {
			return ErrEntryNotFound
		}
		return localstore.SetJSON(txn, journalKey(userID), kept)
	})
}

// List returns the user's entries newest-first, narrowed by the filter.
func (s *JournalService) List(userID string, filter *journal.Filter) ([]journal.Entry, error) {
	var entries []journal.Entry
	if _, err := s.store.ReadJSON(journalKey(userID), &entries); err != nil {
		return nil, err
	}

	matched := make([]journal.Entry, 0, len(entries))
	for _, e := range entries {
		if filter != nil && !matches(e, filter) {
			continue
		}
		matched = append(matched, e)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	return matched, nil
}

func matches(e journal.Entry, f *journal.Filter) bool {
	if f.Term != "" {
		term := strings.ToLower(f.Term)
		if !strings.Contains(strings.ToLower(e.Title), term) &&
			!strings.Contains(strings.ToLower(e.Content), term) {
			return false
		}
	}
	if f.Mood != "" && e.Mood != f.Mood {
		return false
	}
	if f.Tag != "" {
		found := false
		for _, t := range e.Tags {
			if t == f.Tag {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
