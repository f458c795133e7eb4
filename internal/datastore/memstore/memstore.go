// Package memstore is an in-memory implementation of the store contracts.
// It backs single-node deployments without Postgres (DB_DSN unset) and the
// test suite. Each operation holds the store mutex for its whole atomic
// step; the Postgres stores carry the per-entity row locking for
// multi-process setups.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"campuspulse/internal/interfaces"
	"campuspulse/internal/models"
)

type Store struct {
	mu sync.Mutex

	users       map[string]*models.User
	events      map[int64]*models.Event
	rsvps       map[int64]map[string]*models.RSVP
	checkins    map[int64]map[string]*models.CheckIn
	submissions map[string]*models.ChallengeSubmission
	entries     []*models.LedgerEntry
	refs        map[string]int64
	balances    map[string]int
	prizes      map[int64]*models.Prize
	redemptions []*models.Redemption
	config      map[string]string

	nextID  int64
	lastSeq int64
}

func New() *Store {
	return &Store{
		users:       map[string]*models.User{},
		events:      map[int64]*models.Event{},
		rsvps:       map[int64]map[string]*models.RSVP{},
		checkins:    map[int64]map[string]*models.CheckIn{},
		submissions: map[string]*models.ChallengeSubmission{},
		refs:        map[string]int64{},
		balances:    map[string]int{},
		prizes:      map[int64]*models.Prize{},
		config:      map[string]string{},
	}
}

func refKey(reason, ref string) string {
	return reason + "|" + ref
}

// appendLocked is the single write path into the ledger; the caller holds
// s.mu, which makes the entry and the balance aggregate one atomic step.
func (s *Store) appendLocked(entry *models.LedgerEntry) error {
	key := refKey(entry.Reason, entry.Ref)
	if _, ok := s.refs[key]; ok {
		return interfaces.ErrAlreadyAwarded
	}

	if entry.Delta < 0 && s.balances[entry.UserID]+entry.Delta < 0 {
		return interfaces.ErrInsufficientPoints
	}

	s.lastSeq++
	entry.Seq = s.lastSeq
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	s.entries = append(s.entries, entry)
	s.refs[key] = entry.Seq
	s.balances[entry.UserID] += entry.Delta
	return nil
}

// --- interfaces.UserStore ---

func (s *Store) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (s *Store) UpsertUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if existing, ok := s.users[user.ID]; ok {
		user.CreatedAt = existing.CreatedAt
	} else if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *Store) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var users []*models.User
	for _, id := range page(ids, limit, offset) {
		clone := *s.users[id]
		users = append(users, &clone)
	}
	return users, nil
}

// --- interfaces.EventStore ---

func (s *Store) CreateEvent(ctx context.Context, event *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	event.ID = s.nextID
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	clone := *event
	s.events[event.ID] = &clone
	return nil
}

func (s *Store) activeRSVPCountLocked(eventID int64) int {
	n := 0
	for _, rsvp := range s.rsvps[eventID] {
		if rsvp.CancelledAt == nil {
			n++
		}
	}
	return n
}

func (s *Store) FindEventByID(ctx context.Context, id int64) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}

	clone := *event
	clone.RSVPCount = s.activeRSVPCountLocked(id)
	return &clone, nil
}

func (s *Store) ListEvents(ctx context.Context, category string, limit, offset int) ([]*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var events []*models.Event
	for _, event := range s.events {
		if category != "" && category != models.EVENT_CATEGORY_ALL && event.Category != category {
			continue
		}
		clone := *event
		clone.RSVPCount = s.activeRSVPCountLocked(event.ID)
		events = append(events, &clone)
	}

	sort.Slice(events, func(i, j int) bool {
		if !events[i].StartTime.Equal(events[j].StartTime) {
			return events[i].StartTime.Before(events[j].StartTime)
		}
		return events[i].ID < events[j].ID
	})

	return page(events, limit, offset), nil
}

func (s *Store) AddRSVP(ctx context.Context, eventID int64, userID string, points int) (*models.RSVP, bool, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[eventID]
	if !ok {
		return nil, false, 0, interfaces.ErrNotFound
	}

	byUser := s.rsvps[eventID]
	if byUser == nil {
		byUser = map[string]*models.RSVP{}
		s.rsvps[eventID] = byUser
	}

	existing := byUser[userID]
	created := false

	switch {
	case existing == nil:
		if !event.Unbounded() && s.activeRSVPCountLocked(eventID) >= event.MaxCapacity {
			return nil, false, 0, interfaces.ErrEventFull
		}
		s.nextID++
		existing = &models.RSVP{ID: s.nextID, EventID: eventID, UserID: userID, CreatedAt: time.Now()}
		byUser[userID] = existing
		created = true

	case existing.CancelledAt != nil:
		if !event.Unbounded() && s.activeRSVPCountLocked(eventID) >= event.MaxCapacity {
			return nil, false, 0, interfaces.ErrEventFull
		}
		existing.CancelledAt = nil
		created = true
	}

	if created {
		err := s.appendLocked(&models.LedgerEntry{
			UserID: userID,
			Delta:  points,
			Reason: models.LEDGER_REASON_RSVP,
			Ref:    models.RefRSVP(eventID, userID),
		})
		// a revived RSVP keeps its original award
		if err != nil && err != interfaces.ErrAlreadyAwarded {
			return nil, false, 0, err
		}
	}

	clone := *existing
	return &clone, created, s.activeRSVPCountLocked(eventID), nil
}

func (s *Store) CancelRSVP(ctx context.Context, eventID int64, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.rsvps[eventID][userID]
	if existing == nil {
		return 0, interfaces.ErrNotFound
	}

	if existing.CancelledAt == nil {
		now := time.Now()
		existing.CancelledAt = &now
	}

	return s.activeRSVPCountLocked(eventID), nil
}

// --- interfaces.CheckInStore ---

func (s *Store) InsertCheckIn(ctx context.Context, checkin *models.CheckIn) (*models.CheckIn, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byUser := s.checkins[checkin.EventID]
	if byUser == nil {
		byUser = map[string]*models.CheckIn{}
		s.checkins[checkin.EventID] = byUser
	}

	if existing, ok := byUser[checkin.UserID]; ok {
		clone := *existing
		return &clone, false, nil
	}

	s.nextID++
	checkin.ID = s.nextID
	if checkin.CheckedInAt.IsZero() {
		checkin.CheckedInAt = time.Now()
	}

	if err := s.appendLocked(&models.LedgerEntry{
		UserID: checkin.UserID,
		Delta:  checkin.Points,
		Reason: models.LEDGER_REASON_CHECKIN,
		Ref:    models.RefCheckIn(checkin.EventID, checkin.UserID),
	}); err != nil {
		return nil, false, err
	}

	clone := *checkin
	byUser[checkin.UserID] = &clone
	result := clone
	return &result, true, nil
}

func (s *Store) FindCheckIn(ctx context.Context, eventID int64, userID string) (*models.CheckIn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.checkins[eventID][userID]
	if !ok {
		return nil, interfaces.ErrNotFound
	}

	clone := *existing
	return &clone, nil
}

// --- interfaces.ChallengeStore ---

func (s *Store) InsertSubmission(ctx context.Context, submission *models.ChallengeSubmission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if submission.SubmittedAt.IsZero() {
		submission.SubmittedAt = time.Now()
	}

	clone := *submission
	s.submissions[submission.ID] = &clone
	return nil
}

func (s *Store) FindSubmissionByID(ctx context.Context, id string) (*models.ChallengeSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	submission, ok := s.submissions[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}

	clone := *submission
	return &clone, nil
}

func (s *Store) ReviewSubmission(ctx context.Context, id string, status string, points int) (*models.ChallengeSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	submission, ok := s.submissions[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	if submission.Terminal() {
		return nil, interfaces.ErrSubmissionReviewed
	}

	if status == models.SUBMISSION_STATUS_ACCEPTED {
		if err := s.appendLocked(&models.LedgerEntry{
			UserID: submission.UserID,
			Delta:  points,
			Reason: models.LEDGER_REASON_CHALLENGE,
			Ref:    models.RefChallenge(submission.ID),
		}); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	submission.Status = status
	submission.ReviewedAt = &now

	clone := *submission
	return &clone, nil
}

// --- interfaces.LedgerStore ---

func (s *Store) AppendEntry(ctx context.Context, entry *models.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(entry)
}

func (s *Store) Balance(ctx context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[userID], nil
}

func (s *Store) History(ctx context.Context, userID string, limit, offset int) ([]*models.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []*models.LedgerEntry
	for _, entry := range s.entries {
		if entry.UserID != userID {
			continue
		}
		clone := *entry
		entries = append(entries, &clone)
	}

	// s.entries is already seq-ascending
	return page(entries, limit, offset), nil
}

func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeq, nil
}

func (s *Store) TotalsBy(ctx context.Context, scope string, since *time.Time, maxSeq int64, limit int) ([]*models.PointsTotal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byKey := map[string]*models.PointsTotal{}
	for _, entry := range s.entries {
		if entry.Seq > maxSeq {
			break
		}
		if since != nil && entry.CreatedAt.Before(*since) {
			continue
		}

		key := entry.UserID
		switch scope {
		case models.LEADERBOARD_SCOPE_ORGANIZATION:
			user := s.users[entry.UserID]
			if user == nil || user.Organization == "" {
				continue
			}
			key = user.Organization
		case models.LEADERBOARD_SCOPE_DORM:
			user := s.users[entry.UserID]
			if user == nil || user.Dorm == "" {
				continue
			}
			key = user.Dorm
		}

		total, ok := byKey[key]
		if !ok {
			total = &models.PointsTotal{Key: key}
			byKey[key] = total
		}
		total.Total += entry.Delta
		total.LastSeq = entry.Seq
	}

	totals := make([]*models.PointsTotal, 0, len(byKey))
	for _, total := range byKey {
		totals = append(totals, total)
	}

	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Total != totals[j].Total {
			return totals[i].Total > totals[j].Total
		}
		return totals[i].LastSeq < totals[j].LastSeq
	})

	if limit > 0 && len(totals) > limit {
		totals = totals[:limit]
	}
	return totals, nil
}

func (s *Store) CountByUserReason(ctx context.Context, userID, reason string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, entry := range s.entries {
		if entry.UserID == userID && entry.Reason == reason {
			n++
		}
	}
	return n, nil
}

// --- interfaces.PrizeStore ---

func (s *Store) CreatePrize(ctx context.Context, prize *models.Prize) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	prize.ID = s.nextID
	if prize.CreatedAt.IsZero() {
		prize.CreatedAt = time.Now()
	}

	clone := *prize
	if prize.Stock != nil {
		stock := *prize.Stock
		clone.Stock = &stock
	}
	s.prizes[prize.ID] = &clone
	return nil
}

func (s *Store) ListPrizes(ctx context.Context, limit, offset int) ([]*models.Prize, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var prizes []*models.Prize
	for _, prize := range s.prizes {
		clone := *prize
		prizes = append(prizes, &clone)
	}

	sort.Slice(prizes, func(i, j int) bool {
		if prizes[i].PointsCost != prizes[j].PointsCost {
			return prizes[i].PointsCost < prizes[j].PointsCost
		}
		return prizes[i].ID < prizes[j].ID
	})

	return page(prizes, limit, offset), nil
}

func (s *Store) FindPrizeByID(ctx context.Context, id int64) (*models.Prize, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prize, ok := s.prizes[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}

	clone := *prize
	return &clone, nil
}

func (s *Store) RedeemPrize(ctx context.Context, userID string, prizeID int64) (*models.Redemption, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prize, ok := s.prizes[prizeID]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	if prize.Stock != nil && *prize.Stock <= 0 {
		return nil, interfaces.ErrOutOfStock
	}

	s.nextID++
	redemption := &models.Redemption{
		ID:        s.nextID,
		UserID:    userID,
		PrizeID:   prizeID,
		Points:    prize.PointsCost,
		CreatedAt: time.Now(),
	}

	if err := s.appendLocked(&models.LedgerEntry{
		UserID: userID,
		Delta:  -prize.PointsCost,
		Reason: models.LEDGER_REASON_REDEMPTION,
		Ref:    models.RefRedemption(redemption.ID),
	}); err != nil {
		return nil, err
	}

	if prize.Stock != nil {
		stock := *prize.Stock - 1
		prize.Stock = &stock
	}
	s.redemptions = append(s.redemptions, redemption)

	clone := *redemption
	return &clone, nil
}

// --- interfaces.ConfigStore ---

func (s *Store) GetConfigByKey(ctx context.Context, key string) (*models.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.config[key]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return &models.Config{Key: key, Value: value}, nil
}

func (s *Store) SetConfig(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config[key] = value
	return nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
