package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/donkruger/share-transfer-template-sub000/internal/domain"
	"github.com/donkruger/share-transfer-template-sub000/internal/modules/search"
	"nhooyr.io/websocket"
)

const liveWriteWait = 10 * time.Second

// liveQuery is one inbound frame on the live search socket. A frame that is
// not valid JSON is treated as a bare query string.
type liveQuery struct {
	Query      string `json:"query"`
	WalletID   string `json:"wallet_id"`
	MaxResults *int   `json:"max_results"`
}

type liveResult struct {
	Query      string                `json:"query"`
	Results    []domain.SearchResult `json:"results"`
	Count      int                   `json:"count"`
	DurationMs float64               `json:"duration_ms"`
}

// HandleLiveSearch handles GET /api/search/live. It upgrades the connection
// to a websocket and answers every query frame with ranked results, so
// clients can search as the user types without re-issuing HTTP requests.
func (h *Handler) HandleLiveSearch(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// Origin checks are disabled; the server binds to localhost by default.
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "unexpected close")

	ctx := r.Context()
	h.log.Debug().Str("remote", r.RemoteAddr).Msg("Live search connection opened")

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || ctx.Err() != nil {
				conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			h.log.Debug().Err(err).Msg("Live search read failed")
			return
		}

		var req liveQuery
		if err := json.Unmarshal(data, &req); err != nil {
			req = liveQuery{Query: string(data)}
		}

		maxResults := search.UseDefaultMaxResults
		if req.MaxResults != nil && *req.MaxResults >= 0 {
			maxResults = *req.MaxResults
		}

		start := time.Now()
		results := h.service.Search(req.Query, req.WalletID, maxResults)
		duration := time.Since(start)

		payload, err := json.Marshal(liveResult{
			Query:      req.Query,
			Results:    results,
			Count:      len(results),
			DurationMs: float64(duration.Microseconds()) / 1000.0,
		})
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to encode live search result")
			continue
		}

		writeCtx, cancel := context.WithTimeout(ctx, liveWriteWait)
		err = conn.Write(writeCtx, websocket.MessageText, payload)
		cancel()
		if err != nil {
			h.log.Debug().Err(err).Msg("Live search write failed")
			return
		}
	}
}
