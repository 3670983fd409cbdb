package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/CavinKrenik/RecovrSocial/internal/localstore"
	"github.com/CavinKrenik/RecovrSocial/internal/milestone"
	"github.com/CavinKrenik/RecovrSocial/internal/profile"
)

var (
	ErrEmptyNickname    = errors.New("nickname is required")
	ErrInvalidCleanDate = errors.New("clean date must be a valid YYYY-MM-DD date")
)

// ProfileService owns the local user's settings: nickname, clean date,
// privacy flags, and the derived clean-time tracker.
type ProfileService struct {
	store *localstore.Store
	now   func() time.Time
}

func NewProfileService(store *localstore.Store) *ProfileService {
	return &ProfileService{store: store, now: time.Now}
}

func (s *ProfileService) GetProfile(userID string) (*profile.Profile, error) {
	p := &profile.Profile{
		UserID: userID,
		// Profiles are visible unless the user opted out.
		ProfileVisible: true,
	}

	err := s.store.View(func(txn *badger.Txn) error {
		if _, err := localstore.GetJSON(txn, profileKey(userID, fieldNickname), &p.Nickname); err != nil {
			return err
		}
		if _, err := localstore.GetJSON(txn, profileKey(userID, fieldCleanDate), &p.CleanDate); err != nil {
			return err
		}
		if _, err := localstore.GetJSON(txn, profileKey(userID, fieldAnonymousMode), &p.AnonymousMode); err != nil {
			return err
		}
		var visible bool
		found, err := localstore.GetJSON(txn, profileKey(userID, fieldProfileVisible), &visible)
		if err != nil {
			return err
		}
		if found {
			p.ProfileVisible = visible
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	return p, nil
}

func (s *ProfileService) UpdateNickname(userID, nickname string) error {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return ErrEmptyNickname
	}
	return s.store.WriteJSON(profileKey(userID, fieldNickname), nickname)
}

// SetCleanDate validates and saves the clean date. Future dates are rejected
// with milestone.ErrFutureCleanDate; the comparison is day-granular in the
// server's local time zone.
func (s *ProfileService) SetCleanDate(userID, cleanDate string) error {
	date, err := time.ParseInLocation(profile.DateLayout, cleanDate, time.Local)
	if err != nil {
		return ErrInvalidCleanDate
	}
	if err := milestone.ValidateCleanDate(date, s.now()); err != nil {
		return err
	}
	return s.store.WriteJSON(profileKey(userID, fieldCleanDate), cleanDate)
}

func (s *ProfileService) SetPrivacy(userID string, req *profile.PrivacyRequest) error {
	return s.store.Update(func(txn *badger.Txn) error {
		if err := localstore.SetJSON(txn, profileKey(userID, fieldAnonymousMode), req.AnonymousMode); err != nil {
			return err
		}
		return localstore.SetJSON(txn, profileKey(userID, fieldProfileVisible), req.ProfileVisible)
	})
}

// Tracker computes the clean-time read model. With no clean date saved it
// returns the "not set" state: zero days, no progress, nothing achieved.
func (s *ProfileService) Tracker(userID string) (*profile.Tracker, error) {
	var cleanDate string
	if _, err := s.store.ReadJSON(profileKey(userID, fieldCleanDate), &cleanDate); err != nil {
		return nil, fmt.Errorf("failed to load clean date: %w", err)
	}

	if cleanDate == "" {
		return &profile.Tracker{Achieved: []milestone.Milestone{}}, nil
	}

	date, err := time.ParseInLocation(profile.DateLayout, cleanDate, time.Local)
	if err != nil {
		// A garbled stored date renders as not-set rather than failing.
		return &profile.Tracker{Achieved: []milestone.Milestone{}}, nil
	}

	days := milestone.DaysClean(date, s.now())
	next := milestone.Next(days, milestone.DefaultSet)
	daysToNext := next.Days - days
	if daysToNext < 0 {
		daysToNext = 0
	}

	return &profile.Tracker{
		CleanDateSet:  true,
		CleanDate:     cleanDate,
		DaysClean:     days,
		NextMilestone: next,
		DaysToNext:    daysToNext,
		Progress:      milestone.Progress(days, milestone.DefaultSet),
		Achieved:      milestone.Achieved(days, milestone.DefaultSet),
	}, nil
}
