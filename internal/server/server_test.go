package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"rental-backend/internal/apperr"
	"rental-backend/internal/config"
	"rental-backend/internal/metrics"
	"rental-backend/internal/models"
	"rental-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type env struct {
	app *fiber.App
	db  *gorm.DB
	fx  *testutil.Fixtures
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db := testutil.OpenDB(t)
	fx := testutil.Seed(t, db)

	reg := prometheus.NewRegistry()
	metrics.Register(reg)

	app := New(Deps{
		Config: &config.Config{
			JWTSecret:   testutil.Secret,
			CORSOrigins: "http://localhost:3000",
		},
		DB:       db,
		Gatherer: reg,
	})
	return &env{app: app, db: db, fx: fx}
}

func (e *env) token(t *testing.T, u models.User) string {
	return testutil.SignToken(t, testutil.Secret, u)
}

// call sends a request and decodes the JSON body into out when out is not nil.
func (e *env) call(t *testing.T, method, path, token string, body any, out any) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	e := newEnv(t)

	var body map[string]string
	assert.Equal(t, http.StatusOK, e.call(t, http.MethodGet, "/api/health", "", nil, &body))
	assert.Equal(t, "ok", body["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	e := newEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuth_RejectsMissingAndInvalidTokens(t *testing.T) {
	e := newEnv(t)

	var body map[string]string
	assert.Equal(t, http.StatusUnauthorized, e.call(t, http.MethodGet, "/api/auth/me", "", nil, &body))
	assert.NotEmpty(t, body["error"])

	assert.Equal(t, http.StatusUnauthorized, e.call(t, http.MethodGet, "/api/auth/me", "not-a-token", nil, nil))

	forged := testutil.SignToken(t, "another-secret-with-at-least-32-chars!!", e.fx.Member)
	assert.Equal(t, http.StatusUnauthorized, e.call(t, http.MethodGet, "/api/auth/me", forged, nil, nil))
}

func TestMe(t *testing.T) {
	e := newEnv(t)

	var me struct {
		ID      uint   `json:"id"`
		Email   string `json:"email"`
		Company *struct {
			Name string `json:"name"`
			Tier string `json:"tier"`
		} `json:"company"`
	}
	status := e.call(t, http.MethodGet, "/api/auth/me", e.token(t, e.fx.Member), nil, &me)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, e.fx.Member.ID, me.ID)
	require.NotNil(t, me.Company)
	assert.Equal(t, "Seaside Rentals", me.Company.Name)
	assert.Equal(t, "premium", me.Company.Tier)

	var other map[string]any
	require.Equal(t, http.StatusOK, e.call(t, http.MethodGet, "/api/auth/me", e.token(t, e.fx.Other), nil, &other))
	assert.Nil(t, other["company"])
}

func TestMe_UnknownUserIsNotFound(t *testing.T) {
	e := newEnv(t)

	ghost := models.User{ID: 9999, Email: "ghost@example.com", Role: models.RoleMember}
	var body map[string]string
	assert.Equal(t, http.StatusNotFound, e.call(t, http.MethodGet, "/api/auth/me", e.token(t, ghost), nil, &body))
	assert.Equal(t, "User", body["entity"])
}

func TestLookupMissesMapTo404(t *testing.T) {
	e := newEnv(t)
	tok := e.token(t, e.fx.Admin)

	cases := []struct {
		path   string
		entity string
	}{
		{"/api/users/9999", "User"},
		{"/api/companies/9999", "Company"},
		{"/api/properties/9999", "Property"},
		{"/api/bookings/9999", "Booking"},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			var body map[string]string
			assert.Equal(t, http.StatusNotFound, e.call(t, http.MethodGet, tc.path, tok, nil, &body))
			assert.Equal(t, tc.entity, body["entity"])
			assert.Equal(t, tc.entity+" not found", body["error"])
		})
	}
}

func TestProperties(t *testing.T) {
	e := newEnv(t)
	tok := e.token(t, e.fx.Member)

	var all []map[string]any
	require.Equal(t, http.StatusOK, e.call(t, http.MethodGet, "/api/properties", tok, nil, &all))
	assert.Len(t, all, 2)

	var available []map[string]any
	require.Equal(t, http.StatusOK, e.call(t, http.MethodGet, "/api/properties?status=available", tok, nil, &available))
	require.Len(t, available, 1)
	assert.Equal(t, "Harbour Loft", available[0]["title"])
	assert.Equal(t, []any{"wifi", "kitchen"}, available[0]["amenities"])

	assert.Equal(t, http.StatusBadRequest, e.call(t, http.MethodGet, "/api/properties?status=bogus", tok, nil, nil))
}

func TestReviews(t *testing.T) {
	e := newEnv(t)
	tok := e.token(t, e.fx.Other)
	path := fmt.Sprintf("/api/properties/%d/reviews", e.fx.Loft.ID)

	assert.Equal(t, http.StatusBadRequest, e.call(t, http.MethodPost, path, tok, map[string]any{"rating": 6}, nil))

	var created map[string]any
	require.Equal(t, http.StatusCreated, e.call(t, http.MethodPost, path, tok, map[string]any{"rating": 4, "comment": " Cosy "}, &created))
	assert.Equal(t, "Otto Other", created["user_name"])
	assert.Equal(t, "Cosy", created["comment"])

	var list []map[string]any
	require.Equal(t, http.StatusOK, e.call(t, http.MethodGet, path, tok, nil, &list))
	assert.Len(t, list, 2)

	assert.Equal(t, http.StatusNotFound, e.call(t, http.MethodGet, "/api/properties/9999/reviews", tok, nil, nil))
}

func TestCancelBooking(t *testing.T) {
	e := newEnv(t)
	path := fmt.Sprintf("/api/bookings/%d/cancel", e.fx.Booking.ID)

	assert.Equal(t, http.StatusForbidden, e.call(t, http.MethodPost, path, e.token(t, e.fx.Other), nil, nil))

	var booking map[string]any
	require.Equal(t, http.StatusOK, e.call(t, http.MethodPost, path, e.token(t, e.fx.Member), nil, &booking))
	assert.Equal(t, "cancelled", booking["status"])
	assert.NotNil(t, booking["cancelled_at"])

	var stored models.Booking
	require.NoError(t, e.db.First(&stored, e.fx.Booking.ID).Error)
	assert.Equal(t, models.BookingCancelled, stored.Status)
	assert.NotNil(t, stored.CancelledAt)

	var body map[string]string
	assert.Equal(t, http.StatusConflict, e.call(t, http.MethodPost, path, e.token(t, e.fx.Member), nil, &body))
	assert.Equal(t, "booking is already cancelled", body["error"])

	var logs []models.AuditLog
	require.NoError(t, e.db.Where("entity_type = ?", "booking").Find(&logs).Error)
	assert.Len(t, logs, 1)
}

func TestListBookings_OnlyCallers(t *testing.T) {
	e := newEnv(t)

	var mine []map[string]any
	require.Equal(t, http.StatusOK, e.call(t, http.MethodGet, "/api/bookings", e.token(t, e.fx.Member), nil, &mine))
	require.Len(t, mine, 2)
	assert.Equal(t, "Harbour Loft", mine[0]["property_title"])

	var none []map[string]any
	require.Equal(t, http.StatusOK, e.call(t, http.MethodGet, "/api/bookings", e.token(t, e.fx.Other), nil, &none))
	assert.Empty(t, none)
}

func TestToggleFavorite(t *testing.T) {
	e := newEnv(t)
	tok := e.token(t, e.fx.Member)
	body := map[string]any{"property_id": e.fx.Loft.ID}

	var res map[string]any
	require.Equal(t, http.StatusOK, e.call(t, http.MethodPost, "/api/favorites/toggle", tok, body, &res))
	assert.Equal(t, false, res["favorited"])

	var list []map[string]any
	favPath := fmt.Sprintf("/api/users/%d/favorites", e.fx.Member.ID)
	require.Equal(t, http.StatusOK, e.call(t, http.MethodGet, favPath, tok, nil, &list))
	assert.Empty(t, list)

	require.Equal(t, http.StatusOK, e.call(t, http.MethodPost, "/api/favorites/toggle", tok, body, &res))
	assert.Equal(t, true, res["favorited"])

	require.Equal(t, http.StatusOK, e.call(t, http.MethodGet, favPath, tok, nil, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Harbour Loft", list[0]["property_title"])

	assert.Equal(t, http.StatusNotFound, e.call(t, http.MethodPost, "/api/favorites/toggle", tok, map[string]any{"property_id": 9999}, nil))
	assert.Equal(t, http.StatusForbidden, e.call(t, http.MethodGet, favPath, e.token(t, e.fx.Other), nil, nil))
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	e := newEnv(t)

	assert.Equal(t, http.StatusForbidden, e.call(t, http.MethodGet, "/api/users", e.token(t, e.fx.Member), nil, nil))
	assert.Equal(t, http.StatusForbidden, e.call(t, http.MethodGet, "/api/audit-logs", e.token(t, e.fx.Member), nil, nil))

	var all []map[string]any
	require.Equal(t, http.StatusOK, e.call(t, http.MethodGet, "/api/users", e.token(t, e.fx.Admin), nil, &all))
	assert.Len(t, all, 3)
}

func TestUpdateUserThenUndo(t *testing.T) {
	e := newEnv(t)
	userPath := fmt.Sprintf("/api/users/%d", e.fx.Member.ID)

	assert.Equal(t, http.StatusForbidden,
		e.call(t, http.MethodPut, userPath, e.token(t, e.fx.Other), map[string]any{"name": "Hijack"}, nil))
	assert.Equal(t, http.StatusConflict,
		e.call(t, http.MethodPut, userPath, e.token(t, e.fx.Member), map[string]any{"email": "ada@example.com"}, nil))

	var updated map[string]any
	require.Equal(t, http.StatusOK,
		e.call(t, http.MethodPut, userPath, e.token(t, e.fx.Member), map[string]any{"name": "Mel Renamed", "tier": "premium"}, &updated))
	assert.Equal(t, "Mel Renamed", updated["name"])
	assert.Equal(t, "premium", updated["tier"])

	adminTok := e.token(t, e.fx.Admin)
	var logs []map[string]any
	require.Equal(t, http.StatusOK,
		e.call(t, http.MethodGet, fmt.Sprintf("/api/audit-logs?entity_type=user&entity_id=%d", e.fx.Member.ID), adminTok, nil, &logs))
	require.Len(t, logs, 1)
	assert.Equal(t, "Mel Renamed", logs[0]["user_name"])

	undoPath := fmt.Sprintf("/api/audit-logs/%v/undo", logs[0]["id"])
	require.Equal(t, http.StatusOK, e.call(t, http.MethodPost, undoPath, adminTok, nil, nil))
	assert.Equal(t, http.StatusConflict, e.call(t, http.MethodPost, undoPath, adminTok, nil, nil))

	var restored map[string]any
	require.Equal(t, http.StatusOK, e.call(t, http.MethodGet, userPath, adminTok, nil, &restored))
	assert.Equal(t, "Mel Member", restored["name"])
	assert.Equal(t, "basic", restored["tier"])

	assert.Equal(t, http.StatusNotFound, e.call(t, http.MethodPost, "/api/audit-logs/9999/undo", adminTok, nil, nil))
}

func TestCompanyMembers(t *testing.T) {
	e := newEnv(t)
	path := fmt.Sprintf("/api/companies/%d/members", e.fx.Company.ID)

	var members []map[string]any
	require.Equal(t, http.StatusOK, e.call(t, http.MethodGet, path, e.token(t, e.fx.Member), nil, &members))
	assert.Len(t, members, 2)

	assert.Equal(t, http.StatusForbidden, e.call(t, http.MethodGet, path, e.token(t, e.fx.Other), nil, nil))
}

func TestPasswordChangeCannotBeUndone(t *testing.T) {
	e := newEnv(t)
	userPath := fmt.Sprintf("/api/users/%d", e.fx.Member.ID)

	require.Equal(t, http.StatusOK,
		e.call(t, http.MethodPut, userPath, e.token(t, e.fx.Member), map[string]any{"password": "a-new-password"}, nil))

	var stored models.User
	require.NoError(t, e.db.First(&stored, e.fx.Member.ID).Error)
	require.NotEqual(t, e.fx.Member.PasswordHash, stored.PasswordHash)

	adminTok := e.token(t, e.fx.Admin)
	var logs []map[string]any
	require.Equal(t, http.StatusOK,
		e.call(t, http.MethodGet, "/api/audit-logs?entity_type=user", adminTok, nil, &logs))
	require.Len(t, logs, 1)

	var body map[string]string
	undoPath := fmt.Sprintf("/api/audit-logs/%v/undo", logs[0]["id"])
	assert.Equal(t, http.StatusConflict, e.call(t, http.MethodPost, undoPath, adminTok, nil, &body))
	assert.Equal(t, "this change cannot be undone", body["error"])
}

func TestErrorHandler_WrappedNotFound(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: errorHandler(zap.NewNop())})
	app.Get("/x", func(c *fiber.Ctx) error {
		return fmt.Errorf("load: %w", apperr.NewNotFound(apperr.EntityBooking))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/x", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Booking", body["entity"])
	assert.Contains(t, body["error"], "Booking not found")
}
