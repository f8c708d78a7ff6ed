package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mypts/profile-api/internal/middleware"
	"github.com/mypts/profile-api/internal/model"
	"github.com/mypts/profile-api/internal/repository"
	notificationsvc "github.com/mypts/profile-api/internal/service/notification"
	"github.com/mypts/profile-api/pkg/messaging"
)

type stubRepo struct {
	notifications []*model.Notification
	unread        int64
}

func (s *stubRepo) Create(_ context.Context, n *model.Notification) error {
	s.notifications = append(s.notifications, n)
	return nil
}

func (s *stubRepo) List(_ context.Context, _ uuid.UUID, _ *model.NotificationFilters) ([]*model.Notification, error) {
	return s.notifications, nil
}

func (s *stubRepo) Count(_ context.Context, _ uuid.UUID, _ *model.NotificationFilters) (int64, error) {
	return int64(len(s.notifications)), nil
}

func (s *stubRepo) UnreadCount(_ context.Context, _ uuid.UUID) (int64, error) {
	return s.unread, nil
}

func (s *stubRepo) MarkRead(_ context.Context, id, _ uuid.UUID) (*model.Notification, error) {
	for _, n := range s.notifications {
		if n.ID == id {
			n.IsRead = true
			return n, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *stubRepo) MarkAllRead(_ context.Context, _ uuid.UUID) (int64, error) {
	return int64(len(s.notifications)), nil
}

func (s *stubRepo) Archive(_ context.Context, id, _ uuid.UUID) (*model.Notification, error) {
	return s.MarkRead(context.Background(), id, uuid.Nil)
}

func (s *stubRepo) Delete(_ context.Context, _, _ uuid.UUID) error { return nil }

func (s *stubRepo) DeleteExpired(_ context.Context, _ time.Time) (int64, error) { return 0, nil }

func setupTestRouter(repo *stubRepo, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	svc := notificationsvc.NewService(repo, messaging.NewMemoryBroker(), zerolog.Nop())
	h := NewHandler(svc)

	api := engine.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID.String())
		c.Next()
	})
	h.RegisterRoutes(api)
	return engine
}

func doRequest(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	engine.ServeHTTP(w, req)
	return w
}

func TestListNotifications(t *testing.T) {
	userID := uuid.New()
	repo := &stubRepo{notifications: []*model.Notification{
		{ID: uuid.New(), Recipient: userID, Title: "a", Message: "m"},
		{ID: uuid.New(), Recipient: userID, Title: "b", Message: "m"},
	}}
	engine := setupTestRouter(repo, userID)

	w := doRequest(engine, http.MethodGet, "/api/v1/notifications?page=1&limit=10")

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Status string `json:"status"`
		Data   struct {
			Notifications []model.Notification `json:"notifications"`
			Pagination    model.Pagination     `json:"pagination"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)
	assert.Len(t, body.Data.Notifications, 2)
	assert.Equal(t, int64(2), body.Data.Pagination.Total)
}

func TestListNotificationsRejectsBadFilter(t *testing.T) {
	engine := setupTestRouter(&stubRepo{}, uuid.New())

	w := doRequest(engine, http.MethodGet, "/api/v1/notifications?unread=banana")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetUnreadCount(t *testing.T) {
	engine := setupTestRouter(&stubRepo{unread: 7}, uuid.New())

	w := doRequest(engine, http.MethodGet, "/api/v1/notifications/unread-count")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"unreadCount":7`)
}

func TestMarkAsRead(t *testing.T) {
	userID := uuid.New()
	n := &model.Notification{ID: uuid.New(), Recipient: userID, Title: "a", Message: "m"}
	engine := setupTestRouter(&stubRepo{notifications: []*model.Notification{n}}, userID)

	w := doRequest(engine, http.MethodPut, "/api/v1/notifications/"+n.ID.String()+"/read")

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, n.IsRead)
}

func TestMarkAsReadUnknownID(t *testing.T) {
	engine := setupTestRouter(&stubRepo{}, uuid.New())

	w := doRequest(engine, http.MethodPut, "/api/v1/notifications/"+uuid.NewString()+"/read")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMarkAsReadInvalidID(t *testing.T) {
	engine := setupTestRouter(&stubRepo{}, uuid.New())

	w := doRequest(engine, http.MethodPut, "/api/v1/notifications/not-a-uuid/read")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMarkAllAsRead(t *testing.T) {
	userID := uuid.New()
	repo := &stubRepo{notifications: []*model.Notification{
		{ID: uuid.New(), Recipient: userID, Title: "a", Message: "m"},
	}}
	engine := setupTestRouter(repo, userID)

	w := doRequest(engine, http.MethodPut, "/api/v1/notifications/read-all")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"updated":1`)
}

func TestDeleteNotification(t *testing.T) {
	engine := setupTestRouter(&stubRepo{}, uuid.New())

	w := doRequest(engine, http.MethodDelete, "/api/v1/notifications/"+uuid.NewString())

	assert.Equal(t, http.StatusOK, w.Code)
}
