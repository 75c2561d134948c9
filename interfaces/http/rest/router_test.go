package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"formulahub-backend/application/services"
	"formulahub-backend/infrastructure/config"
	"formulahub-backend/infrastructure/persistence/sqlite"
	"formulahub-backend/pkg/session"
)

func newTestHandler(t *testing.T, cfg *config.Config) (http.Handler, *sqlite.DB) {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := zap.NewNop()
	formulas := sqlite.NewFormulaRepository(db)
	categories := sqlite.NewCategoryRepository(db)
	cards := sqlite.NewCardRepository(db)
	events := sqlite.NewEventStore(db)

	catalogService := services.NewCatalogService(formulas, categories, cards, logger)
	trendingService := services.NewTrendingService(formulas, events, logger)
	metricsService := services.NewMetricsService(events, logger)

	seed := func(ctx context.Context) (int, error) {
		return sqlite.Seed(ctx, db, time.Now().UTC())
	}

	router := NewRouter(cfg, catalogService, trendingService, metricsService, seed, db, logger)
	return router.Setup(), db
}

func testConfig() *config.Config {
	return &config.Config{
		ServerAddress: ":0",
		Environment:   "development",
		DatabasePath:  "unused",
		LogLevel:      "error",
	}
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body interface{}, mutate func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if mutate != nil {
		mutate(req)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func sidCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	return nil
}

func createFormula(t *testing.T, handler http.Handler, name string) string {
	t.Helper()
	rec := doJSON(t, handler, http.MethodPost, "/api/formulas", map[string]interface{}{
		"name":        name,
		"description": "desc",
		"formula":     "=X()",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	return created.ID
}

func TestCopyEndpoint_IssuesSessionAndRecords(t *testing.T) {
	handler, _ := newTestHandler(t, testConfig())
	formulaID := createFormula(t, handler, "SUM")

	rec := doJSON(t, handler, http.MethodPost, "/api/metrics/copy",
		map[string]string{"formulaId": formulaID}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	cookie := sidCookie(t, rec)
	require.NotNil(t, cookie, "first request must receive a sid cookie")
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Contains(t, cookie.Value, "session_")

	var resp struct {
		Success  bool `json:"success"`
		Recorded bool `json:"recorded"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.Recorded)

	// Immediate repeat with the same cookie hits the rate limiter.
	rec = doJSON(t, handler, http.MethodPost, "/api/metrics/copy",
		map[string]string{"formulaId": formulaID}, func(r *http.Request) {
			r.AddCookie(cookie)
		})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.False(t, resp.Recorded)

	// A reused cookie does not get reissued.
	assert.Nil(t, sidCookie(t, rec))
}

func TestCopyEndpoint_UnknownFormula(t *testing.T) {
	handler, _ := newTestHandler(t, testConfig())

	rec := doJSON(t, handler, http.MethodPost, "/api/metrics/copy",
		map[string]string{"formulaId": "missing"}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestClickEndpoint_RecordsCardClicks(t *testing.T) {
	handler, _ := newTestHandler(t, testConfig())

	rec := doJSON(t, handler, http.MethodPost, "/api/cards", map[string]interface{}{
		"title":   "Shortcut",
		"content": "Ctrl+D fills down",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var card struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &card))

	rec = doJSON(t, handler, http.MethodPost, "/api/clicks",
		map[string]string{"cardId": card.ID}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Success  bool `json:"success"`
		Recorded bool `json:"recorded"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Recorded)
}

func TestTrendingEndpoint_RanksAndHidesCounters(t *testing.T) {
	handler, _ := newTestHandler(t, testConfig())

	quietID := createFormula(t, handler, "QUIET")
	popularID := createFormula(t, handler, "POPULAR")

	// Three copies from distinct sessions; each request mints its own sid.
	for i := 0; i < 3; i++ {
		rec := doJSON(t, handler, http.MethodPost, "/api/metrics/copy",
			map[string]string{"formulaId": popularID}, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doJSON(t, handler, http.MethodGet, "/api/formulas/trending", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var listing []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	require.Len(t, listing, 2)
	assert.Equal(t, popularID, listing[0]["id"])
	assert.Equal(t, quietID, listing[1]["id"])

	for _, entry := range listing {
		assert.NotContains(t, entry, "score")
		assert.NotContains(t, entry, "totalCopies")
		assert.NotContains(t, entry, "total_copies")
	}
}

func TestTrendingEndpoint_InvalidPaginationFallsBack(t *testing.T) {
	handler, _ := newTestHandler(t, testConfig())
	createFormula(t, handler, "SUM")

	// Out-of-range values are clamped to defaults before ranking.
	rec := doJSON(t, handler, http.MethodGet, "/api/formulas/trending?page=-1&pageSize=0", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/formulas/trending?page=99", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listing []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	assert.Empty(t, listing, "a page past the end is empty")
}

func TestAdminGuard(t *testing.T) {
	cfg := testConfig()
	cfg.AdminToken = "secret-token"
	handler, _ := newTestHandler(t, cfg)

	body := map[string]interface{}{
		"name":        "SUM",
		"description": "desc",
		"formula":     "=SUM()",
	}

	rec := doJSON(t, handler, http.MethodPost, "/api/formulas", body, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, handler, http.MethodPost, "/api/formulas", body, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer wrong")
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, handler, http.MethodPost, "/api/formulas", body, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer secret-token")
	})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Reads stay open.
	rec = doJSON(t, handler, http.MethodGet, "/api/formulas", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSeedEndpoint(t *testing.T) {
	handler, _ := newTestHandler(t, testConfig())

	rec := doJSON(t, handler, http.MethodPost, "/api/seed", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Success  bool `json:"success"`
		Inserted int  `json:"inserted"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Greater(t, resp.Inserted, 0)

	rec = doJSON(t, handler, http.MethodGet, "/api/categories", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var categories []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &categories))
	assert.NotEmpty(t, categories)
}

func TestHealthAndReadiness(t *testing.T) {
	handler, db := newTestHandler(t, testConfig())

	rec := doJSON(t, handler, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/ready", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	db.Close()
	rec = doJSON(t, handler, http.MethodGet, "/ready", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
