package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
)

func dialLiveSearch(t *testing.T) (*websocket.Conn, context.Context) {
	r := chi.NewRouter()
	r.Route("/api", newTestHandler(t).RegisterRoutes)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/search/live"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })

	return conn, ctx
}

func readLiveResult(t *testing.T, conn *websocket.Conn, ctx context.Context) liveResult {
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)

	var result liveResult
	require.NoError(t, json.Unmarshal(data, &result))
	return result
}

func TestHandleLiveSearch_AnswersQueryFrames(t *testing.T) {
	conn, ctx := dialLiveSearch(t)

	frame, err := json.Marshal(liveQuery{Query: "AAPL", WalletID: "10"})
	require.NoError(t, err)
	require.NoError(t, conn.Write(ctx, websocket.MessageText, frame))

	result := readLiveResult(t, conn, ctx)

	assert.Equal(t, "AAPL", result.Query)
	assert.Equal(t, 1, result.Count)
	require.Len(t, result.Results, 1)
	assert.Equal(t, "Apple Inc", result.Results[0].Name)
}

func TestHandleLiveSearch_BareTextFrame(t *testing.T) {
	conn, ctx := dialLiveSearch(t)

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte("AAPL")))

	result := readLiveResult(t, conn, ctx)

	assert.Equal(t, "AAPL", result.Query)
	assert.Equal(t, 1, result.Count)
}

func TestHandleLiveSearch_SequentialQueries(t *testing.T) {
	conn, ctx := dialLiveSearch(t)

	for _, query := range []string{"AAPL", "no such instrument", "apple inc"} {
		frame, err := json.Marshal(liveQuery{Query: query})
		require.NoError(t, err)
		require.NoError(t, conn.Write(ctx, websocket.MessageText, frame))

		result := readLiveResult(t, conn, ctx)
		assert.Equal(t, query, result.Query)
	}
}
