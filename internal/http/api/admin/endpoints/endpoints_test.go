package endpoints_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minaret-labs/minaret/internal/db"
	"github.com/minaret-labs/minaret/internal/engine"
	"github.com/minaret-labs/minaret/internal/http/api"
	"github.com/minaret-labs/minaret/internal/http/api/admin/endpoints"
	"github.com/minaret-labs/minaret/internal/mode"
	"github.com/minaret-labs/minaret/internal/model"
	"github.com/minaret-labs/minaret/internal/source"
)

type noopResolver struct{}

func (noopResolver) Resolve(_ context.Context, locationID int, day time.Time, _ bool) (model.DailySchedule, source.ResolveMeta, error) {
	return model.DailySchedule{LocationID: locationID, Date: day}, source.ResolveMeta{Tier: source.TierCached}, nil
}

type noopReconciler struct{}

func (noopReconciler) Reconcile(context.Context, model.DailySchedule, bool) (model.InstalledAlertSet, error) {
	return model.InstalledAlertSet{}, nil
}

func (noopReconciler) ReconcileRecovered(context.Context, model.DailySchedule, bool) (model.InstalledAlertSet, error) {
	return model.InstalledAlertSet{}, nil
}

func setupRouter(secret string, store db.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	modeCtl := mode.NewController(store)
	eng := engine.New(store, noopResolver{}, modeCtl, noopReconciler{}, nil, nil)

	api.MountGroup(r, api.GroupConfig{Prefix: "/api/admin"},
		endpoints.AuthPublicModule(secret, store),
	)
	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api/admin",
		Auth:      true,
		SecretKey: secret,
		Store:     store,
	},
		endpoints.AuthSessionModule(secret, store),
		endpoints.SettingsModule(store),
		endpoints.ModeModule(modeCtl, eng),
	)
	return r
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func signupToken(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/admin/auth/signup", "", map[string]any{
		"email":    "admin@example.com",
		"password": "12345678",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["token"])
	return resp["token"]
}

func TestSignupLoginAndProfile(t *testing.T) {
	router := setupRouter("supersecret", db.NewMemStore())
	token := signupToken(t, router)

	w := doJSON(t, router, http.MethodGet, "/api/admin/auth/current_profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "profile must reject requests without a token")

	w = doJSON(t, router, http.MethodGet, "/api/admin/auth/current_profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var profile map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, "admin@example.com", profile["email"])

	w = doJSON(t, router, http.MethodPost, "/api/admin/auth/login", "", map[string]any{
		"email":    "admin@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/admin/auth/login", "", map[string]any{
		"email":    "admin@example.com",
		"password": "12345678",
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestSettingsRoundTrip(t *testing.T) {
	router := setupRouter("supersecret", db.NewMemStore())
	token := signupToken(t, router)

	w := doJSON(t, router, http.MethodGet, "/api/admin/locations/7/settings", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var settings map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &settings))
	assert.Equal(t, true, settings["dnd_enabled"])

	w = doJSON(t, router, http.MethodPut, "/api/admin/locations/7/settings", token, map[string]any{
		"dnd_before_minutes": 10,
		"enabled_kinds":      []string{"fajr", "isha"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodGet, "/api/admin/locations/7/settings", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &settings))
	assert.Equal(t, float64(10), settings["dnd_before_minutes"])

	w = doJSON(t, router, http.MethodPut, "/api/admin/locations/7/settings", token, map[string]any{
		"enabled_kinds": []string{"sunrise"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, "non-canonical kinds are rejected")
}

func TestModeToggleAndReset(t *testing.T) {
	store := db.NewMemStore()
	router := setupRouter("supersecret", store)
	token := signupToken(t, router)

	w := doJSON(t, router, http.MethodGet, "/api/admin/locations/7/mode", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var state map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, false, state["effective"])

	w = doJSON(t, router, http.MethodPost, "/api/admin/locations/7/mode/toggle", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, true, state["effective"])
	assert.Equal(t, true, state["manual_override_active"])

	w = doJSON(t, router, http.MethodPost, "/api/admin/locations/7/mode/reset", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, false, state["effective"])
	assert.Equal(t, false, state["manual_override_active"])
}

func TestReconcileReadbackUsesLocationDay(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := db.NewMemStore()
	require.NoError(t, store.ReplaceCachedLocations([]model.Location{
		{ID: 7, Name: "Central Masjid", Slug: "central-masjid", Timezone: "UTC", Active: true},
	}))

	settings := model.DefaultAlertSettings()
	settings.CalendarOffsetDays = 1
	require.NoError(t, store.SaveAlertSettings(7, settings))

	// the engine reconciles tomorrow's schedule under this offset, so the
	// handler must read tomorrow's ledger row, not the server-local today
	tomorrow := time.Now().UTC().AddDate(0, 0, 1).Format(model.DateLayout)
	require.NoError(t, store.SwapInstalledAlertSet(model.InstalledAlertSet{
		LocationID:  7,
		Date:        tomorrow,
		Fingerprint: "abc123",
		Alarms:      []model.AlarmEntry{{ID: "a1", Kind: model.KindFajr, Name: "Fajr"}},
	}))

	modeCtl := mode.NewController(store)
	eng := engine.New(store, noopResolver{}, modeCtl, noopReconciler{}, nil, nil)
	resolver := source.NewResolver(
		source.NewStaticClient("http://127.0.0.1:0"),
		source.NewDynamicClient("http://127.0.0.1:0"),
		source.NewDirectory("http://127.0.0.1:0", store),
		store,
	)

	r := gin.New()
	api.MountGroup(r, api.GroupConfig{Prefix: "/api/admin"},
		endpoints.AuthPublicModule("supersecret", store),
	)
	api.MountGroup(r, api.GroupConfig{Prefix: "/api/admin", Auth: true, SecretKey: "supersecret", Store: store},
		endpoints.ScheduleModule(store, resolver, modeCtl, eng),
	)
	token := signupToken(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/admin/locations/7/reconcile", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "abc123", resp["fingerprint"])
	assert.Equal(t, float64(1), resp["alarms"])
}

func TestLocationParamValidation(t *testing.T) {
	router := setupRouter("supersecret", db.NewMemStore())
	token := signupToken(t, router)

	w := doJSON(t, router, http.MethodGet, "/api/admin/locations/not-a-number/settings", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
