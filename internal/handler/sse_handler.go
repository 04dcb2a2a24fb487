package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xavierspacelix/jamming/internal/domain"
	"github.com/xavierspacelix/jamming/internal/hub"
	"github.com/xavierspacelix/jamming/internal/service"
	"github.com/xavierspacelix/jamming/pkg/log"
	"github.com/xavierspacelix/jamming/pkg/response"
)

// Streamer registers and releases queue subscribers. Implemented by
// hub.Hub and hub.Bridge.
type Streamer interface {
	Subscribe(roomCode string) *hub.Subscriber
	Unsubscribe(sub *hub.Subscriber)
}

// StreamHandler serves the long-lived SSE queue stream.
type StreamHandler struct {
	streamer     Streamer
	queueService service.QueueService
	heartbeat    time.Duration
}

// NewStreamHandler creates a new SSE stream handler.
func NewStreamHandler(streamer Streamer, queueService service.QueueService, heartbeat time.Duration) *StreamHandler {
	if heartbeat <= 0 {
		heartbeat = 15 * time.Second
	}
	return &StreamHandler{
		streamer:     streamer,
		queueService: queueService,
		heartbeat:    heartbeat,
	}
}

// RegisterRoutes registers the streaming endpoint.
func (h *StreamHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/events", h.StreamQueue)
}

// StreamQueue opens an SSE session on a room: subscribe, push the current
// snapshot, then forward every published snapshot until the client goes
// away. Comment frames keep intermediary proxies from timing the
// connection out. Unsubscribe runs on every exit path.
func (h *StreamHandler) StreamQueue(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	roomCode := c.Query("room")
	if roomCode == "" || !domain.ValidRoomCode(roomCode) {
		response.BadRequest(c, "room is required")
		return
	}
	roomCode = domain.NormalizeRoomCode(roomCode)

	sub := h.streamer.Subscribe(roomCode)
	defer h.streamer.Unsubscribe(sub)

	snap, err := h.queueService.Snapshot(ctx, roomCode)
	if err != nil {
		h.writeStreamError(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	if err := h.writeSnapshot(c, snap); err != nil {
		return
	}

	l.Debug().Str(log.FieldRoomCode, roomCode).Str("subscriber_id", sub.ID()).Msg("stream session open")

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case next, ok := <-sub.C():
			if !ok {
				return
			}
			if err := h.writeSnapshot(c, next); err != nil {
				l.Debug().Err(err).Str(log.FieldRoomCode, roomCode).Msg("stream write failed, closing session")
				return
			}

		case <-ticker.C:
			if _, err := fmt.Fprint(c.Writer, ": ping\n\n"); err != nil {
				l.Debug().Err(err).Str(log.FieldRoomCode, roomCode).Msg("heartbeat failed, closing session")
				return
			}
			c.Writer.Flush()
		}
	}
}

func (h *StreamHandler) writeSnapshot(c *gin.Context, snap *domain.QueueSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", data); err != nil {
		return err
	}
	c.Writer.Flush()
	return nil
}

func (h *StreamHandler) writeStreamError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRoomNotFound):
		response.Error(c, 404, "ROOM_NOT_FOUND", "room not found")
	case errors.Is(err, service.ErrInvalidInput):
		response.BadRequest(c, "invalid room code")
	default:
		response.InternalError(c, "failed to open stream")
	}
}
