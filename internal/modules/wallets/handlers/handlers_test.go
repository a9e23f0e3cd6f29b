package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/donkruger/share-transfer-template-sub000/internal/domain"
	"github.com/donkruger/share-transfer-template-sub000/internal/modules/wallets"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestHandler() *Handler {
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	engine := wallets.NewEngine(map[string]domain.Wallet{
		"2":  {ID: "2", Name: "eur-main", DisplayName: "EUR Main Account", Currency: "EUR", Active: true},
		"10": {ID: "10", Name: "gbp-savings", Currency: "GBP", Active: true},
	}, logger)
	return NewHandler(engine, logger)
}

func TestHandleListWallets(t *testing.T) {
	handler := setupTestHandler()

	req := httptest.NewRequest("GET", "/api/wallets", nil)
	w := httptest.NewRecorder()

	handler.HandleListWallets(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var response map[string]interface{}
	err := json.NewDecoder(w.Body).Decode(&response)
	require.NoError(t, err)

	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["count"])
}

func TestHandleResolveFilter(t *testing.T) {
	handler := setupTestHandler()

	req := httptest.NewRequest("GET", "/api/wallets/resolve?filter=2,999", nil)
	w := httptest.NewRecorder()

	handler.HandleResolveFilter(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.NewDecoder(w.Body).Decode(&response)
	require.NoError(t, err)

	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["count"])
}

func TestHandleCheckAvailability(t *testing.T) {
	handler := setupTestHandler()

	req := httptest.NewRequest("GET", "/api/wallets/check?filter=2,10&name=eur-main", nil)
	w := httptest.NewRecorder()

	handler.HandleCheckAvailability(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.NewDecoder(w.Body).Decode(&response)
	require.NoError(t, err)

	data := response["data"].(map[string]interface{})
	assert.Equal(t, true, data["available"])
}

func TestHandleCheckAvailability_MissingName(t *testing.T) {
	handler := setupTestHandler()

	req := httptest.NewRequest("GET", "/api/wallets/check?filter=2,10", nil)
	w := httptest.NewRecorder()

	handler.HandleCheckAvailability(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGetDisplayName(t *testing.T) {
	handler := setupTestHandler()

	router := chi.NewRouter()
	router.Get("/wallets/{id}/display-name", handler.HandleGetDisplayName)

	req := httptest.NewRequest("GET", "/wallets/2/display-name", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.NewDecoder(w.Body).Decode(&response)
	require.NoError(t, err)

	data := response["data"].(map[string]interface{})
	assert.Equal(t, "EUR Main Account", data["display_name"])
}

func TestHandleGetDisplayName_UnknownWallet(t *testing.T) {
	handler := setupTestHandler()

	router := chi.NewRouter()
	router.Get("/wallets/{id}/display-name", handler.HandleGetDisplayName)

	req := httptest.NewRequest("GET", "/wallets/999/display-name", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.NewDecoder(w.Body).Decode(&response)
	require.NoError(t, err)

	data := response["data"].(map[string]interface{})
	assert.Equal(t, "Wallet 999", data["display_name"])
}
