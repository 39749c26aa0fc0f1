package client

import (
	"sync"

	"crm-notification-api/models"
)

// resourceState tracks the lifecycle of a cached resource:
// idle -> fetching -> ready on success, idle -> fetching -> failed on error,
// and ready -> idle when a mutation invalidates the cache.
type resourceState int

const (
	stateIdle resourceState = iota
	stateFetching
	stateReady
	stateFailed
)

// Store is a session-scoped cache of one user's mailbox and preference
// matrix. Construct it at login, drop it at logout; it holds no global state.
//
// Mutations follow an invalidate-and-refetch discipline: after a successful
// mutation the affected resource is discarded and the next read fetches a
// fresh snapshot. Server responses are never merged into the cache
// optimistically. A failed mutation or fetch leaves the cached data as it
// was. Mutations on the same resource are serialized by its mutex.
type Store struct {
	api API

	mailboxMu    sync.Mutex
	mailboxState resourceState
	mailbox      []models.Notification

	prefsMu    sync.Mutex
	prefsState resourceState
	prefs      *models.NotificationPreference
}

func NewStore(api API) *Store {
	return &Store{api: api}
}

// Notifications returns the mailbox, fetching it when the cache is not
// ready. The view is newest-first and de-duplicated by notification id.
func (s *Store) Notifications() ([]models.Notification, error) {
	s.mailboxMu.Lock()
	defer s.mailboxMu.Unlock()

	if s.mailboxState != stateReady {
		if err := s.fetchMailboxLocked(); err != nil {
			return nil, err
		}
	}

	seen := make(map[uint]bool, len(s.mailbox))
	out := make([]models.Notification, 0, len(s.mailbox))
	for _, n := range s.mailbox {
		if seen[n.NotificationID] {
			continue
		}
		seen[n.NotificationID] = true
		out = append(out, n)
	}
	return out, nil
}

// Preferences returns the preference matrix, fetching it when the cache is
// not ready.
func (s *Store) Preferences() (*models.NotificationPreference, error) {
	s.prefsMu.Lock()
	defer s.prefsMu.Unlock()

	if s.prefsState != stateReady {
		if err := s.fetchPrefsLocked(); err != nil {
			return nil, err
		}
	}
	return s.prefs, nil
}

// MarkRead marks one notification read and invalidates the mailbox cache.
func (s *Store) MarkRead(id uint) error {
	s.mailboxMu.Lock()
	defer s.mailboxMu.Unlock()

	if _, err := s.api.MarkRead(id); err != nil {
		return err
	}
	s.invalidateMailboxLocked()
	return nil
}

// MarkAllRead marks every notification read, returning the server's count of
// changed records, and invalidates the mailbox cache.
func (s *Store) MarkAllRead() (int64, error) {
	s.mailboxMu.Lock()
	defer s.mailboxMu.Unlock()

	updated, err := s.api.MarkAllRead()
	if err != nil {
		return 0, err
	}
	s.invalidateMailboxLocked()
	return updated, nil
}

// Delete removes one notification and invalidates the mailbox cache.
func (s *Store) Delete(id uint) error {
	s.mailboxMu.Lock()
	defer s.mailboxMu.Unlock()

	if err := s.api.DeleteNotification(id); err != nil {
		return err
	}
	s.invalidateMailboxLocked()
	return nil
}

// DeleteAll empties the mailbox, returning the server's count of removed
// records, and invalidates the mailbox cache.
func (s *Store) DeleteAll() (int64, error) {
	s.mailboxMu.Lock()
	defer s.mailboxMu.Unlock()

	deleted, err := s.api.DeleteAllNotifications()
	if err != nil {
		return 0, err
	}
	s.invalidateMailboxLocked()
	return deleted, nil
}

// UpdatePreferences applies a partial matrix update and invalidates the
// preference cache. The server's merged record is not kept: the next read
// fetches it fresh.
func (s *Store) UpdatePreferences(partial map[string][]string) error {
	s.prefsMu.Lock()
	defer s.prefsMu.Unlock()

	if _, err := s.api.UpdatePreferences(partial); err != nil {
		return err
	}
	s.prefs = nil
	s.prefsState = stateIdle
	return nil
}

// Reset discards both caches. Call it on logout.
func (s *Store) Reset() {
	s.mailboxMu.Lock()
	s.invalidateMailboxLocked()
	s.mailboxMu.Unlock()

	s.prefsMu.Lock()
	s.prefs = nil
	s.prefsState = stateIdle
	s.prefsMu.Unlock()
}

func (s *Store) fetchMailboxLocked() error {
	s.mailboxState = stateFetching
	items, err := s.api.ListNotifications()
	if err != nil {
		// Cached data stays as it was; the next read retries.
		s.mailboxState = stateFailed
		return err
	}
	s.mailbox = items
	s.mailboxState = stateReady
	return nil
}

func (s *Store) fetchPrefsLocked() error {
	s.prefsState = stateFetching
	pref, err := s.api.Preferences()
	if err != nil {
		s.prefsState = stateFailed
		return err
	}
	s.prefs = pref
	s.prefsState = stateReady
	return nil
}

func (s *Store) invalidateMailboxLocked() {
	s.mailbox = nil
	s.mailboxState = stateIdle
}
