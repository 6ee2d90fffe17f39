package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/statusloops/statusloops/internal/pkg/ctxlog"
	"github.com/statusloops/statusloops/internal/pkg/httputil"
	"github.com/statusloops/statusloops/internal/statuspage"
)

// sseWriteTimeout bounds a single stream write so a stalled client
// cannot pin the handler goroutine. Must stay below the server's
// shutdown timeout.
const sseWriteTimeout = 5 * time.Second

// SnapshotProvider resolves a page slug and supplies the initial
// snapshot payload sent to a new stream subscriber.
type SnapshotProvider interface {
	ResolvePage(ctx context.Context, slug string) (pageID string, snapshot any, err error)
}

// Handler serves the per-page event stream over Server-Sent Events.
type Handler struct {
	hub   *Hub
	pages SnapshotProvider
}

// NewHandler creates a new stream handler.
func NewHandler(hub *Hub, pages SnapshotProvider) *Handler {
	return &Handler{hub: hub, pages: pages}
}

// RegisterRoutes registers the public stream route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/pages/{slug}/stream", h.Stream)
}

// Stream handles GET /pages/{slug}/stream. It sends one snapshot event
// with the page's current overview, then relays broadcast events until
// the client disconnects, the server shuts down, or a write times out.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := ctxlog.FromContext(ctx)

	if _, ok := w.(http.Flusher); !ok {
		httputil.Error(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	pageID, snapshot, err := h.pages.ResolvePage(ctx, chi.URLParam(r, "slug"))
	if err != nil {
		httputil.HandleError(ctx, w, err, []httputil.ErrorMapping{
			{Error: statuspage.ErrPageNotFound, Status: http.StatusNotFound},
		})
		return
	}

	rc := http.NewResponseController(w)
	deadlinesSupported := true

	// Writes carry a deadline so a slow or dead client errors out
	// instead of blocking the select loop below.
	writeEvent := func(ev Event) error {
		if deadlinesSupported {
			if err := rc.SetWriteDeadline(time.Now().Add(sseWriteTimeout)); err != nil {
				log.Warn("stream write deadlines not supported", "error", err)
				deadlinesSupported = false
			}
		}

		data, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("marshal event: %w", err)
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data); err != nil {
			return err
		}
		return rc.Flush()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sub := h.hub.Subscribe(pageID)
	defer h.hub.Unsubscribe(sub)

	if err := writeEvent(NewSnapshot(pageID, snapshot)); err != nil {
		return
	}

	for {
		select {
		case ev := <-sub.Events():
			if err := writeEvent(ev); err != nil {
				log.Debug("dropping stream client", "page_id", pageID, "error", err)
				return
			}

		case <-sub.Done():
			// Hub closed during shutdown.
			return

		case <-ctx.Done():
			// Fires on client disconnect and on server shutdown when
			// the request context derives from the server context.
			return
		}
	}
}
