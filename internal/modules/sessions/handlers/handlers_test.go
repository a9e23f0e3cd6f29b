package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	selectionhandlers "github.com/donkruger/share-transfer-template-sub000/internal/modules/selection/handlers"
	testingpkg "github.com/donkruger/share-transfer-template-sub000/internal/testing"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (http.Handler, *testingpkg.Stack) {
	stack := testingpkg.NewStack(t)

	selections := selectionhandlers.NewHandler(stack.Registry, stack.Events, stack.Log)
	handler := NewHandler(stack.Registry, stack.Search, selections, stack.Log)

	r := chi.NewRouter()
	r.Route("/api", handler.RegisterRoutes)
	return r, stack
}

func createSession(t *testing.T, router http.Handler) string {
	req := httptest.NewRequest(http.MethodPost, "/api/sessions", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	session := response["data"].(map[string]interface{})["session"].(map[string]interface{})
	id := session["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestHandleCreate(t *testing.T) {
	router, stack := newTestRouter(t)

	id := createSession(t, router)

	assert.Equal(t, 1, stack.Registry.Count())
	_, ok := stack.Registry.Get(id)
	assert.True(t, ok)
}

func TestHandleList(t *testing.T) {
	router, _ := newTestRouter(t)
	createSession(t, router)
	createSession(t, router)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["count"])
}

func TestHandleGet(t *testing.T) {
	router, _ := newTestRouter(t)
	id := createSession(t, router)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/"+id, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	session := response["data"].(map[string]interface{})["session"].(map[string]interface{})
	assert.Equal(t, id, session["id"])
	assert.Equal(t, float64(80), session["score_threshold"])
	assert.Equal(t, float64(0), session["selection_count"])
}

func TestHandleGet_UnknownSession(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/unknown-id", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleDelete(t *testing.T) {
	router, _ := newTestRouter(t)
	id := createSession(t, router)

	req := httptest.NewRequest(http.MethodDelete, "/api/sessions/"+id, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodDelete, "/api/sessions/"+id, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleSetThreshold(t *testing.T) {
	router, stack := newTestRouter(t)
	id := createSession(t, router)

	body := bytes.NewBufferString(`{"threshold": 60}`)
	req := httptest.NewRequest(http.MethodPut, "/api/sessions/"+id+"/threshold", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	session := response["data"].(map[string]interface{})["session"].(map[string]interface{})
	assert.Equal(t, float64(60), session["score_threshold"])

	sess, ok := stack.Registry.Get(id)
	require.True(t, ok)
	assert.Equal(t, 60, sess.Matcher.Threshold())

	rec2, err := stack.Store.Load(id)
	require.NoError(t, err)
	require.NotNil(t, rec2)
	assert.Equal(t, 60, rec2.ScoreThreshold, "threshold changes must be persisted")
}

func TestHandleSetThreshold_Invalid(t *testing.T) {
	router, _ := newTestRouter(t)
	id := createSession(t, router)

	for _, body := range []string{`{"threshold": 101}`, `{"threshold": -1}`, `not json`} {
		req := httptest.NewRequest(http.MethodPut, "/api/sessions/"+id+"/threshold", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
	}
}

func TestHandleSearch_SessionScoped(t *testing.T) {
	router, _ := newTestRouter(t)
	id := createSession(t, router)

	// At the default threshold the typo only reaches Apple through the
	// looser ticker bar.
	req := httptest.NewRequest(http.MethodGet, "/api/sessions/"+id+"/search?q=Aple", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["count"])
	first := data["results"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "ticker", first["match_type"])

	// Lowering this session's threshold lets the name pass claim the hit.
	body := bytes.NewBufferString(`{"threshold": 60}`)
	req = httptest.NewRequest(http.MethodPut, "/api/sessions/"+id+"/threshold", body)
	router.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/api/sessions/"+id+"/search?q=Aple", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	data = response["data"].(map[string]interface{})
	results := data["results"].([]interface{})
	require.NotEmpty(t, results)
	first = results[0].(map[string]interface{})
	assert.Equal(t, "Apple Inc", first["name"])
	assert.Equal(t, "fuzzy_name", first["match_type"])
}

func TestHandleSearch_MarksSelectedResults(t *testing.T) {
	router, stack := newTestRouter(t)
	id := createSession(t, router)

	sess, ok := stack.Registry.Get(id)
	require.True(t, ok)
	require.True(t, sess.Selections.Add(testingpkg.NewSearchResultFixture(), "aapl"))

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/"+id+"/search?q=AAPL&wallet_id=10", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})

	selected := data["selected"].([]interface{})
	require.NotEmpty(t, selected)
	assert.Equal(t, true, selected[0])
}

func TestHandleSearch_UnknownSession(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/nope/search?q=AAPL", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
