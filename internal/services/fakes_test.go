package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"ewaste-recycle-backend/internal/models"
	"ewaste-recycle-backend/internal/workflow"
)

// In-memory stores mirroring the repository semantics: the guarded status
// update, the submission-id credit key and the (submission, status)
// notification uniqueness.

type fakeSubmissionStore struct {
	mu   sync.Mutex
	subs map[string]*models.Submission
}

func newFakeSubmissionStore() *fakeSubmissionStore {
	return &fakeSubmissionStore{subs: make(map[string]*models.Submission)}
}

func (s *fakeSubmissionStore) Create(_ context.Context, sub *models.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sub
	s.subs[sub.ID] = &cp
	return nil
}

func (s *fakeSubmissionStore) GetByID(_ context.Context, id string) (*models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subs[id]
	if !ok {
		return nil, workflow.ErrNotFound
	}
	cp := *sub
	return &cp, nil
}

func (s *fakeSubmissionStore) ListByOwner(_ context.Context, ownerID string) ([]*models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Submission
	for _, sub := range s.subs {
		if sub.OwnerID == ownerID {
			cp := *sub
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *fakeSubmissionStore) ListByStatus(_ context.Context, statuses []models.Status) ([]*models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := make(map[models.Status]bool, len(statuses))
	for _, st := range statuses {
		set[st] = true
	}
	var out []*models.Submission
	for _, sub := range s.subs {
		if set[sub.Status] {
			cp := *sub
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *fakeSubmissionStore) UpdateStatus(_ context.Context, id string, expected, target models.Status, pickup *models.Pickup) (*models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subs[id]
	if !ok {
		return nil, workflow.ErrNotFound
	}
	if sub.Status != expected {
		return nil, workflow.ErrConflict
	}
	if sub.Status != target {
		sub.NotificationRead = false
	}
	sub.Status = target
	if pickup != nil {
		cp := *pickup
		sub.Pickup = &cp
	}
	sub.UpdatedAt = time.Now()
	out := *sub
	return &out, nil
}

func (s *fakeSubmissionStore) setPoints(id string, amount int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub, ok := s.subs[id]; ok {
		sub.Points = amount
	}
}

func (s *fakeSubmissionStore) MarkNotificationRead(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subs[id]
	if !ok {
		return workflow.ErrNotFound
	}
	sub.NotificationRead = true
	return nil
}

type fakeLedgerStore struct {
	mu        sync.Mutex
	credits   map[string]int // submission id -> amount
	users     map[string][]string
	subs      *fakeSubmissionStore
	creditErr error
}

func newFakeLedgerStore() *fakeLedgerStore {
	return &fakeLedgerStore{
		credits: make(map[string]int),
		users:   make(map[string][]string),
	}
}

func (s *fakeLedgerStore) Credit(_ context.Context, userID, submissionID string, amount int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.creditErr != nil {
		return false, s.creditErr
	}
	if _, ok := s.credits[submissionID]; ok {
		return false, nil
	}
	s.credits[submissionID] = amount
	s.users[userID] = append(s.users[userID], submissionID)
	// The repository stamps the submission row in the same transaction.
	if s.subs != nil {
		s.subs.setPoints(submissionID, amount)
	}
	return true, nil
}

func (s *fakeLedgerStore) TotalFor(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, subID := range s.users[userID] {
		total += s.credits[subID]
	}
	return total, nil
}

type notifKey struct {
	submissionID string
	status       models.Status
}

type fakeNotificationStore struct {
	mu     sync.Mutex
	byKey  map[notifKey]*models.Notification
	writes int
}

func newFakeNotificationStore() *fakeNotificationStore {
	return &fakeNotificationStore{byKey: make(map[notifKey]*models.Notification)}
}

func (s *fakeNotificationStore) Create(_ context.Context, n *models.Notification) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := notifKey{n.SubmissionID, n.Status}
	if _, ok := s.byKey[key]; ok {
		return false, nil
	}
	cp := *n
	s.byKey[key] = &cp
	s.writes++
	return true, nil
}

func (s *fakeNotificationStore) ListUnread(_ context.Context, userID string) ([]*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Notification
	for _, n := range s.byKey {
		if n.UserID == userID && !n.Read {
			cp := *n
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *fakeNotificationStore) MarkRead(_ context.Context, submissionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	found := false
	for _, n := range s.byKey {
		if n.SubmissionID == submissionID {
			n.Read = true
			found = true
		}
	}
	if !found {
		return workflow.ErrNotFound
	}
	return nil
}

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*models.User)}
}

func (s *fakeUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, workflow.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (s *fakeUserStore) EmailExists(_ context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeUserStore) UpdatePushToken(_ context.Context, userID string, pushToken *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[userID]; ok {
		user.PushToken = pushToken
	}
	return nil
}
