package memstore

import (
	"os"

	"campuspulse/internal/models"

	"github.com/vmihailenco/msgpack/v5"
)

type snapshot struct {
	Users       map[string]*models.User
	Events      map[int64]*models.Event
	RSVPs       map[int64]map[string]*models.RSVP
	CheckIns    map[int64]map[string]*models.CheckIn
	Submissions map[string]*models.ChallengeSubmission
	Entries     []*models.LedgerEntry
	Refs        map[string]int64
	Balances    map[string]int
	Prizes      map[int64]*models.Prize
	Redemptions []*models.Redemption
	Config      map[string]string
	NextID      int64
	LastSeq     int64
}

// SaveSnapshot persists the whole store to one msgpack file so a dev node
// survives restarts. Not meant for multi-process durability; that is what
// the Postgres stores are for.
func (s *Store) SaveSnapshot(path string) error {
	s.mu.Lock()
	b, err := msgpack.Marshal(&snapshot{
		Users:       s.users,
		Events:      s.events,
		RSVPs:       s.rsvps,
		CheckIns:    s.checkins,
		Submissions: s.submissions,
		Entries:     s.entries,
		Refs:        s.refs,
		Balances:    s.balances,
		Prizes:      s.prizes,
		Redemptions: s.redemptions,
		Config:      s.config,
		NextID:      s.nextID,
		LastSeq:     s.lastSeq,
	})
	s.mu.Unlock()
	if err != nil {
		return err
	}

	return os.WriteFile(path, b, 0o644)
}

// LoadSnapshot restores a previously saved store. A missing file is a fresh
// start, not an error.
func (s *Store) LoadSnapshot(path string) error {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var snap snapshot
	if err := msgpack.Unmarshal(b, &snap); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if snap.Users != nil {
		s.users = snap.Users
	}
	if snap.Events != nil {
		s.events = snap.Events
	}
	if snap.RSVPs != nil {
		s.rsvps = snap.RSVPs
	}
	if snap.CheckIns != nil {
		s.checkins = snap.CheckIns
	}
	if snap.Submissions != nil {
		s.submissions = snap.Submissions
	}
	s.entries = snap.Entries
	if snap.Refs != nil {
		s.refs = snap.Refs
	}
	if snap.Balances != nil {
		s.balances = snap.Balances
	}
	if snap.Prizes != nil {
		s.prizes = snap.Prizes
	}
	s.redemptions = snap.Redemptions
	if snap.Config != nil {
		s.config = snap.Config
	}
	s.nextID = snap.NextID
	s.lastSeq = snap.LastSeq
	return nil
}
