package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/donkruger/share-transfer-template-sub000/internal/domain"
	"github.com/donkruger/share-transfer-template-sub000/internal/modules/search"
	"github.com/donkruger/share-transfer-template-sub000/internal/modules/universe"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/mattn/go-sqlite3"
)

func newTestHandler(t *testing.T) *Handler {
	log := zerolog.New(nil).Level(zerolog.Disabled)

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE instruments (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			ticker TEXT NOT NULL DEFAULT '',
			isin TEXT NOT NULL DEFAULT '',
			contract_code TEXT NOT NULL DEFAULT '',
			asset_type TEXT NOT NULL DEFAULT '',
			exchange TEXT NOT NULL DEFAULT '',
			currency TEXT NOT NULL DEFAULT '',
			active INTEGER NOT NULL DEFAULT 1,
			account_filters TEXT NOT NULL DEFAULT '',
			updated_at INTEGER NOT NULL DEFAULT 0
		)
	`)
	require.NoError(t, err)

	repo := universe.NewRepository(db, log)
	require.NoError(t, repo.Upsert(domain.Instrument{
		ID: 1, Name: "Apple Inc", Ticker: "AAPL", ISIN: "US0378331005",
		ContractCode: "AAPL.US", AssetType: "equity", Exchange: "NASDAQ",
		Currency: "USD", Active: true, AccountFilters: "2,10",
	}))

	cache := universe.NewCache(repo, log)
	require.NoError(t, cache.Reload())

	service := search.NewService(cache, nil, nil, log)
	return NewHandler(service, log)
}

func newTestRouter(t *testing.T) http.Handler {
	r := chi.NewRouter()
	r.Route("/api", newTestHandler(t).RegisterRoutes)
	return r
}

func TestHandleSearch(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/search?q=AAPL&wallet_id=10", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))

	data := response["data"].(map[string]interface{})
	assert.Equal(t, "AAPL", data["query"])
	assert.Equal(t, float64(1), data["count"])

	results := data["results"].([]interface{})
	first := results[0].(map[string]interface{})
	assert.Equal(t, "exact_ticker", first["match_type"])
	assert.Equal(t, float64(95), first["relevance_score"])
}

func TestHandleSearch_EmptyQuery(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/search", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(0), data["count"])
}

func TestHandleSearch_InvalidMaxResults(t *testing.T) {
	router := newTestRouter(t)

	for _, raw := range []string{"abc", "-1", "1.5"} {
		req := httptest.NewRequest(http.MethodGet, "/api/search?q=AAPL&max_results="+raw, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "max_results=%s", raw)
	}
}

func TestHandleSearch_UnlimitedWithZeroMaxResults(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/search?q=AAPL&wallet_id=10&max_results=0", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleMetrics(t *testing.T) {
	router := newTestRouter(t)

	// Prime the metrics with one search.
	searchReq := httptest.NewRequest(http.MethodGet, "/api/search?q=AAPL&wallet_id=10", nil)
	router.ServeHTTP(httptest.NewRecorder(), searchReq)

	req := httptest.NewRequest(http.MethodGet, "/api/search/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))

	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["instrument_count"])
	assert.Equal(t, float64(80), data["score_threshold"])

	metrics := data["metrics"].(map[string]interface{})
	assert.Equal(t, float64(1), metrics["total_searches"])
}
