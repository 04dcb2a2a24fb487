package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/xavierspacelix/jamming/internal/domain"
	"github.com/xavierspacelix/jamming/internal/search"
	"github.com/xavierspacelix/jamming/internal/service"
	"github.com/xavierspacelix/jamming/pkg/log"
	"github.com/xavierspacelix/jamming/pkg/response"
)

// Handler handles HTTP requests for rooms, queue mutations, votes, and search.
type Handler struct {
	roomService  service.RoomService
	queueService service.QueueService
	searcher     search.MediaSearcher
	rateLimit    gin.HandlerFunc
}

// NewHandler creates a new HTTP handler. rateLimit may be nil.
func NewHandler(roomService service.RoomService, queueService service.QueueService, searcher search.MediaSearcher, rateLimit gin.HandlerFunc) *Handler {
	if rateLimit == nil {
		rateLimit = func(c *gin.Context) { c.Next() }
	}
	return &Handler{
		roomService:  roomService,
		queueService: queueService,
		searcher:     searcher,
		rateLimit:    rateLimit,
	}
}

// RegisterRoutes registers all routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		rooms := api.Group("/rooms")
		{
			rooms.POST("", h.rateLimit, h.CreateRoom)
			rooms.GET("/validate", h.ValidateRoom)
			rooms.GET("/:code", h.GetRoom)
		}

		requests := api.Group("/requests")
		{
			requests.GET("", h.GetQueue)
			requests.POST("", h.rateLimit, h.AppendRequest)
			requests.DELETE("/:id", h.RemoveRequest)
			requests.PUT("/reorder", h.rateLimit, h.ReorderQueue)
		}

		api.POST("/votes", h.rateLimit, h.Vote)
		api.GET("/search", h.SearchMedia)
	}
}

// CreateRoom provisions a new room and hands the creator host cookies.
func (h *Handler) CreateRoom(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("failed to bind create room request")
		response.BadRequest(c, err.Error())
		return
	}

	room, err := h.roomService.CreateRoom(ctx, &req)
	if err != nil {
		h.writeServiceError(c, err, "failed to create room")
		return
	}

	setGuestCookies(c, room)
	response.Created(c, room)
}

// GetRoom returns a room and its current queue.
func (h *Handler) GetRoom(c *gin.Context) {
	ctx := c.Request.Context()

	room, err := h.roomService.GetRoom(ctx, c.Param("code"))
	if err != nil {
		h.writeServiceError(c, err, "failed to get room")
		return
	}

	response.Success(c, room)
}

// ValidateRoom checks that a room code resolves to a live room.
func (h *Handler) ValidateRoom(c *gin.Context) {
	ctx := c.Request.Context()

	code := c.Query("code")
	if code == "" {
		response.BadRequest(c, "code is required")
		return
	}

	result, err := h.roomService.ValidateRoom(ctx, code)
	if err != nil {
		h.writeServiceError(c, err, "failed to validate room")
		return
	}

	response.Success(c, result)
}

// GetQueue returns the current snapshot of a room's queue.
func (h *Handler) GetQueue(c *gin.Context) {
	ctx := c.Request.Context()

	roomCode := c.Query("room")
	if roomCode == "" {
		response.BadRequest(c, "room is required")
		return
	}

	snap, err := h.queueService.Snapshot(ctx, roomCode)
	if err != nil {
		h.writeServiceError(c, err, "failed to get queue")
		return
	}

	response.Success(c, snap)
}

// AppendRequest adds a media item to a room's queue.
func (h *Handler) AppendRequest(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.AppendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("failed to bind append request")
		response.BadRequest(c, err.Error())
		return
	}

	entry, err := h.queueService.Append(ctx, req.RoomCode, req.Video, GuestName(c))
	if err != nil {
		h.writeServiceError(c, err, "failed to append entry")
		return
	}

	response.Created(c, entry)
}

// RemoveRequest removes an entry from its queue. A missing entry is
// reported as not found; clients treat that as already removed.
func (h *Handler) RemoveRequest(c *gin.Context) {
	ctx := c.Request.Context()

	snap, err := h.queueService.Remove(ctx, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err, "failed to remove entry")
		return
	}

	response.Success(c, snap)
}

// ReorderQueue applies a client-submitted ordering atomically.
func (h *Handler) ReorderQueue(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("failed to bind reorder request")
		response.BadRequest(c, err.Error())
		return
	}

	snap, err := h.queueService.Reorder(ctx, req.RoomCode, req.EntryIDs)
	if err != nil {
		h.writeServiceError(c, err, "failed to reorder queue")
		return
	}

	response.Success(c, snap)
}

// Vote adjusts an entry's vote counter.
func (h *Handler) Vote(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("failed to bind vote request")
		response.BadRequest(c, err.Error())
		return
	}

	entry, err := h.queueService.Vote(ctx, req.EntryID, req.Delta)
	if err != nil {
		h.writeServiceError(c, err, "failed to vote")
		return
	}

	response.Success(c, entry)
}

// SearchMedia proxies a media search to the configured provider.
func (h *Handler) SearchMedia(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	q := c.Query("q")
	if q == "" {
		response.BadRequest(c, "q is required")
		return
	}

	result, err := h.searcher.Search(ctx, q, c.Query("page_token"))
	if err != nil {
		l.Error().Err(err).Msg("media search failed")
		response.InternalError(c, "search failed")
		return
	}

	response.Success(c, result)
}

func (h *Handler) writeServiceError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrRoomNotFound):
		response.Error(c, 404, "ROOM_NOT_FOUND", "room not found")
	case errors.Is(err, service.ErrEntryNotFound):
		response.Error(c, 404, "ENTRY_NOT_FOUND", "entry not found")
	case errors.Is(err, service.ErrIncompleteReorder):
		response.Error(c, 400, "INCOMPLETE_REORDER", "reorder list must include every entry in the room")
	case errors.Is(err, service.ErrInvalidInput):
		response.BadRequest(c, "invalid input")
	default:
		l := log.Ctx(c.Request.Context())
		l.Error().Err(err).Msg(msg)
		response.InternalError(c, msg)
	}
}
