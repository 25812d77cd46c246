package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eventrate/internal/config"
	"eventrate/internal/models"
	"eventrate/internal/repository"
	"eventrate/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockEventRepository is a mock of the EventRepository interface
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) GetByID(ctx context.Context, id uint) (*models.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockEventRepository) List(ctx context.Context, filters repository.EventFilters) ([]models.Event, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]models.Event), args.Get(1).(int64), args.Error(2)
}

func (m *MockEventRepository) ListByCreator(ctx context.Context, creatorID uint) ([]models.Event, error) {
	args := m.Called(ctx, creatorID)
	return args.Get(0).([]models.Event), args.Error(1)
}

func (m *MockEventRepository) ListActiveForDuplicateCheck(ctx context.Context) ([]models.Event, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Event), args.Error(1)
}

func (m *MockEventRepository) Create(ctx context.Context, event *models.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventRepository) Update(ctx context.Context, event *models.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventRepository) UpdatePhotos(ctx context.Context, eventID uint, photos []byte) error {
	args := m.Called(ctx, eventID, photos)
	return args.Error(0)
}

func (m *MockEventRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEventRepository) IncrementViews(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEventRepository) Register(ctx context.Context, eventID, userID uint) error {
	args := m.Called(ctx, eventID, userID)
	return args.Error(0)
}

func (m *MockEventRepository) IsRegistered(ctx context.Context, eventID, userID uint) (bool, error) {
	args := m.Called(ctx, eventID, userID)
	return args.Bool(0), args.Error(1)
}

// asUser injects an authenticated user ID the way AuthRequired would.
func asUser(userID uint) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		return c.Next()
	}
}

func newEventTestServer(repo *MockEventRepository) *Server {
	return &Server{
		config:       &config.Config{JWTSecret: "test_secret"},
		eventRepo:    repo,
		eventService: service.NewEventService(repo),
	}
}

func TestGetEvents(t *testing.T) {
	app := fiber.New()
	mockRepo := new(MockEventRepository)
	mockRepo.On("List", mock.Anything, repository.EventFilters{Category: "music", City: "Paris", Page: 1, Limit: 20}).
		Return([]models.Event{
			{ID: 1, Title: "Concert", LocationCity: "Paris", PriceCurrency: "EUR"},
		}, int64(41), nil)

	s := newEventTestServer(mockRepo)
	app.Get("/events", s.GetEvents)

	req := httptest.NewRequest(http.MethodGet, "/events?category=music&city=Paris", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	events, ok := body["events"].([]interface{})
	require.True(t, ok)
	require.Len(t, events, 1)

	first := events[0].(map[string]interface{})
	location := first["location"].(map[string]interface{})
	assert.Equal(t, "Paris", location["city"])

	pagination := body["pagination"].(map[string]interface{})
	assert.Equal(t, float64(41), pagination["total"])
	assert.Equal(t, float64(3), pagination["pages"])
}

func TestGetEvent_NotFound(t *testing.T) {
	app := fiber.New()
	mockRepo := new(MockEventRepository)
	mockRepo.On("GetByID", mock.Anything, uint(99)).Return(nil, models.NewNotFoundError("Event", 99))

	s := newEventTestServer(mockRepo)
	app.Get("/events/:id", s.GetEvent)

	req := httptest.NewRequest(http.MethodGet, "/events/99", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateEvent(t *testing.T) {
	app := fiber.New()
	mockRepo := new(MockEventRepository)
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	s := newEventTestServer(mockRepo)
	app.Post("/events", asUser(7), s.CreateEvent)

	t.Run("created", func(t *testing.T) {
		resp := postJSON(t, app, "/events", map[string]interface{}{
			"title":       "Concert Rock",
			"description": "Une soirée rock au centre-ville",
			"category":    "music",
			"location":    map[string]string{"address": "1 rue de la Paix", "city": "Paris"},
			"date":        map[string]string{"start": time.Now().Add(24 * time.Hour).Format(time.RFC3339)},
			"price":       map[string]interface{}{"amount": 10.0, "isFree": false},
		})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("missing start date", func(t *testing.T) {
		resp := postJSON(t, app, "/events", map[string]interface{}{
			"title":       "Concert Rock",
			"description": "Une soirée rock",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing title", func(t *testing.T) {
		resp := postJSON(t, app, "/events", map[string]interface{}{
			"description": "Une soirée rock",
			"date":        map[string]string{"start": time.Now().Format(time.RFC3339)},
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing description", func(t *testing.T) {
		resp := postJSON(t, app, "/events", map[string]interface{}{
			"title": "Concert Rock",
			"date":  map[string]string{"start": time.Now().Format(time.RFC3339)},
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestUpdateEvent_NonOwnerForbidden(t *testing.T) {
	app := fiber.New()
	mockRepo := new(MockEventRepository)
	mockRepo.On("GetByID", mock.Anything, uint(5)).Return(&models.Event{
		ID:        5,
		CreatorID: 1,
		Title:     "Concert",
		DateStart: time.Now(),
	}, nil)

	s := newEventTestServer(mockRepo)
	app.Put("/events/:id", asUser(2), s.UpdateEvent)

	encoded, _ := json.Marshal(map[string]string{"title": "Hijacked"})
	req := httptest.NewRequest(http.MethodPut, "/events/5", bytes.NewReader(encoded))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestRegisterForEvent_Full(t *testing.T) {
	app := fiber.New()
	mockRepo := new(MockEventRepository)
	mockRepo.On("Register", mock.Anything, uint(5), uint(2)).Return(models.NewConflictError("Event is full"))

	s := newEventTestServer(mockRepo)
	app.Post("/events/:id/register", asUser(2), s.RegisterForEvent)

	resp := postJSON(t, app, "/events/5/register", map[string]string{})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCheckDuplicates_Endpoint(t *testing.T) {
	app := fiber.New()
	mockRepo := new(MockEventRepository)
	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	mockRepo.On("ListActiveForDuplicateCheck", mock.Anything).Return([]models.Event{
		{ID: 1, Title: "Jazz festival", LocationCity: "paris", DateStart: start},
	}, nil)

	s := newEventTestServer(mockRepo)
	app.Get("/events/check-duplicates", s.CheckDuplicates)

	t.Run("finds the near-identical event", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet,
			"/events/check-duplicates?title=Jazz+Festival&location_city=Paris&date_start=2025-06-01", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		duplicates := body["duplicates"].([]interface{})
		require.Len(t, duplicates, 1)
		confidence := duplicates[0].(map[string]interface{})["confidence"].(float64)
		assert.GreaterOrEqual(t, confidence, float64(80))
	})

	t.Run("missing title is a 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/events/check-duplicates?location_city=Paris", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("malformed date is a 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/events/check-duplicates?title=Jazz&date_start=someday", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestUpdateEventPhotos(t *testing.T) {
	app := fiber.New()
	mockRepo := new(MockEventRepository)
	mockRepo.On("GetByID", mock.Anything, uint(5)).Return(&models.Event{ID: 5, CreatorID: 7}, nil)
	mockRepo.On("UpdatePhotos", mock.Anything, uint(5), mock.Anything).Return(nil)

	s := newEventTestServer(mockRepo)
	app.Post("/events/:id/photos", asUser(7), s.UpdateEventPhotos)

	resp := postJSON(t, app, "/events/5/photos", map[string]interface{}{
		"photos": []string{"https://cdn.example.com/a.jpg", "not a url"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	photos := body["photos"].([]interface{})
	require.Len(t, photos, 1)
	assert.Equal(t, "https://cdn.example.com/a.jpg", photos[0])
}
