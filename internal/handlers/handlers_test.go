package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ewaste-recycle-backend/internal/handlers"
	"ewaste-recycle-backend/internal/middleware"
	"ewaste-recycle-backend/internal/models"
	"ewaste-recycle-backend/internal/services"
	"ewaste-recycle-backend/internal/workflow"
)

// Minimal in-memory stores so the full handler -> service -> store path runs
// without Postgres.

type memSubmissionStore struct {
	mu   sync.Mutex
	subs map[string]*models.Submission
}

func newMemSubmissionStore() *memSubmissionStore {
	return &memSubmissionStore{subs: make(map[string]*models.Submission)}
}

func (s *memSubmissionStore) Create(_ context.Context, sub *models.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sub
	s.subs[sub.ID] = &cp
	return nil
}

func (s *memSubmissionStore) GetByID(_ context.Context, id string) (*models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subs[id]
	if !ok {
		return nil, workflow.ErrNotFound
	}
	cp := *sub
	return &cp, nil
}

func (s *memSubmissionStore) ListByOwner(_ context.Context, ownerID string) ([]*models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Submission
	for _, sub := range s.subs {
		if sub.OwnerID == ownerID {
			cp := *sub
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memSubmissionStore) ListByStatus(_ context.Context, statuses []models.Status) ([]*models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := make(map[models.Status]bool)
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
	return out, nil
}

func (s *memSubmissionStore) UpdateStatus(_ context.Context, id string, expected, target models.Status, pickup *models.Pickup) (*models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subs[id]
	if !ok {
		return nil, workflow.ErrNotFound
	}
	if sub.Status != expected {
		return nil, workflow.ErrConflict
	}
	sub.Status = target
	if pickup != nil {
		cp := *pickup
		sub.Pickup = &cp
	}
	sub.UpdatedAt = time.Now()
	cp := *sub
	return &cp, nil
}

func (s *memSubmissionStore) MarkNotificationRead(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subs[id]
	if !ok {
		return workflow.ErrNotFound
	}
	sub.NotificationRead = true
	return nil
}

type memLedgerStore struct {
	mu      sync.Mutex
	credits map[string]int
	totals  map[string]int
}

func newMemLedgerStore() *memLedgerStore {
	return &memLedgerStore{credits: make(map[string]int), totals: make(map[string]int)}
}

func (s *memLedgerStore) Credit(_ context.Context, userID, submissionID string, amount int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.credits[submissionID]; ok {
		return false, nil
	}
	s.credits[submissionID] = amount
	s.totals[userID] += amount
	return true, nil
}

func (s *memLedgerStore) TotalFor(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totals[userID], nil
}

type memNotificationStore struct {
	mu    sync.Mutex
	byKey map[string]*models.Notification
}

func newMemNotificationStore() *memNotificationStore {
	return &memNotificationStore{byKey: make(map[string]*models.Notification)}
}

func (s *memNotificationStore) Create(_ context.Context, n *models.Notification) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := n.SubmissionID + "/" + string(n.Status)
	if _, ok := s.byKey[key]; ok {
		return false, nil
	}
	cp := *n
	s.byKey[key] = &cp
	return true, nil
}

func (s *memNotificationStore) ListUnread(_ context.Context, userID string) ([]*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Notification
	for _, n := range s.byKey {
		if n.UserID == userID && !n.Read {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memNotificationStore) MarkRead(_ context.Context, submissionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.byKey {
		if n.SubmissionID == submissionID {
			n.Read = true
		}
	}
	return nil
}

type memUserStore struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[string]*models.User)}
}

func (s *memUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *memUserStore) GetByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, workflow.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (s *memUserStore) EmailExists(_ context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *memUserStore) UpdatePushToken(_ context.Context, userID string, pushToken *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[userID]; ok {
		user.PushToken = pushToken
	}
	return nil
}

type testServer struct {
	router      chi.Router
	userService *services.UserService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	subStore := newMemSubmissionStore()
	userStore := newMemUserStore()
	userService := services.NewUserService(userStore, "test-secret")
	ledgerService := services.NewLedgerService(newMemLedgerStore(), 50)
	notificationService := services.NewNotificationService(newMemNotificationStore(), subStore, userStore, nil)
	submissionService := services.NewSubmissionService(subStore, ledgerService, notificationService, nil, nil, nil)

	userHandler := handlers.NewUserHandler(userService)
	submissionHandler := handlers.NewSubmissionHandler(submissionService, ledgerService)
	orgHandler := handlers.NewOrgHandler(submissionService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/users", userHandler.Register)
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(userService))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleUser))
				r.Post("/submissions", submissionHandler.Decide)
				r.Get("/submissions", submissionHandler.List)
				r.Get("/points", submissionHandler.Points)
				r.Get("/notifications", notificationHandler.ListUnread)
				r.Post("/notifications/{submission_id}/read", notificationHandler.MarkRead)
			})
			r.Route("/org", func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleOrganization))
				r.Get("/submissions", orgHandler.List)
				r.Post("/submissions/{id}/accept", orgHandler.Accept)
				r.Post("/submissions/{id}/reject", orgHandler.Reject)
				r.Post("/submissions/{id}/pickup", orgHandler.SchedulePickup)
				r.Post("/submissions/{id}/done", orgHandler.Done)
			})
		})
	})

	return &testServer{router: r, userService: userService}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(data)
	} else {
		reader = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) token(t *testing.T, id string, role models.Role) string {
	t.Helper()
	token, err := ts.userService.GenerateJWT(id, role)
	require.NoError(t, err)
	return token
}

func decideBody(decision string) map[string]interface{} {
	return map[string]interface{}{
		"image_url":     "https://images.example.com/phone.jpg",
		"analysis_text": "Recognized Item: mobile phone",
		"decision":      decision,
		"item_name":     "Old phone",
		"contact": map[string]string{
			"name":  "Asha",
			"email": "asha@example.com",
			"phone": "555-0101",
		},
	}
}

func TestDecideEndpoint_CreatesSubmission(t *testing.T) {
	ts := newTestServer(t)
	userToken := ts.token(t, "u1", models.RoleUser)

	w := ts.do(t, "POST", "/api/v1/submissions", userToken, decideBody("recycle"))
	require.Equal(t, http.StatusCreated, w.Code)

	var sub models.Submission
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sub))
	assert.Equal(t, models.StatusInterested, sub.Status)
	assert.Equal(t, "u1", sub.OwnerID)
	assert.Equal(t, 50, sub.Points)

	w = ts.do(t, "GET", "/api/v1/points", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"eco_points": 50}`, w.Body.String())
}

func TestDecideEndpoint_MissingContact(t *testing.T) {
	ts := newTestServer(t)
	userToken := ts.token(t, "u1", models.RoleUser)

	body := decideBody("recycle")
	delete(body, "contact")

	w := ts.do(t, "POST", "/api/v1/submissions", userToken, body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrgEndpoints_FullLifecycle(t *testing.T) {
	ts := newTestServer(t)
	userToken := ts.token(t, "u1", models.RoleUser)
	orgToken := ts.token(t, "o1", models.RoleOrganization)

	w := ts.do(t, "POST", "/api/v1/submissions", userToken, decideBody("recycle"))
	require.Equal(t, http.StatusCreated, w.Code)
	var sub models.Submission
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sub))

	// The triage queue shows it.
	w = ts.do(t, "GET", "/api/v1/org/submissions", orgToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), sub.ID)

	// Accept.
	w = ts.do(t, "POST", fmt.Sprintf("/api/v1/org/submissions/%s/accept", sub.ID), orgToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Pickup without location is a bad request.
	w = ts.do(t, "POST", fmt.Sprintf("/api/v1/org/submissions/%s/pickup", sub.ID), orgToken, map[string]interface{}{
		"when": time.Now().Add(24 * time.Hour),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Retry with the full slot.
	w = ts.do(t, "POST", fmt.Sprintf("/api/v1/org/submissions/%s/pickup", sub.ID), orgToken, map[string]interface{}{
		"when":     time.Now().Add(24 * time.Hour),
		"location": "Depot A",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// The owner now has an unread notification.
	w = ts.do(t, "GET", "/api/v1/notifications", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "is scheduled!")

	// Done, then a repeat accept conflicts.
	w = ts.do(t, "POST", fmt.Sprintf("/api/v1/org/submissions/%s/done", sub.ID), orgToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, "POST", fmt.Sprintf("/api/v1/org/submissions/%s/accept", sub.ID), orgToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestOrgEndpoints_RoleEnforcement(t *testing.T) {
	ts := newTestServer(t)
	userToken := ts.token(t, "u1", models.RoleUser)

	w := ts.do(t, "GET", "/api/v1/org/submissions", userToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, "POST", "/api/v1/submissions", ts.token(t, "o1", models.RoleOrganization), decideBody("recycle"))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestOrgEndpoints_UnknownSubmission(t *testing.T) {
	ts := newTestServer(t)
	orgToken := ts.token(t, "o1", models.RoleOrganization)

	w := ts.do(t, "POST", "/api/v1/org/submissions/nope/accept", orgToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMarkReadEndpoint(t *testing.T) {
	ts := newTestServer(t)
	userToken := ts.token(t, "u1", models.RoleUser)
	orgToken := ts.token(t, "o1", models.RoleOrganization)

	w := ts.do(t, "POST", "/api/v1/submissions", userToken, decideBody("recycle"))
	require.Equal(t, http.StatusCreated, w.Code)
	var sub models.Submission
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sub))

	w = ts.do(t, "POST", fmt.Sprintf("/api/v1/org/submissions/%s/accept", sub.ID), orgToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, "POST", fmt.Sprintf("/api/v1/notifications/%s/read", sub.ID), userToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(t, "GET", "/api/v1/notifications", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"notifications": null, "total": 0}`, w.Body.String())
}

func TestRegisterEndpoint(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, "POST", "/api/v1/users", "", map[string]string{
		"name":  "Asha",
		"email": "asha@example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var user models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEmpty(t, user.Token)

	// Issued token works against protected routes.
	w = ts.do(t, "GET", "/api/v1/submissions", user.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
