package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierspacelix/jamming/internal/domain"
	"github.com/xavierspacelix/jamming/internal/search"
	"github.com/xavierspacelix/jamming/internal/service"
)

// fakeRoomService returns canned responses per room code.
type fakeRoomService struct {
	rooms map[string]*domain.Room
}

func (f *fakeRoomService) CreateRoom(_ context.Context, req *domain.CreateRoomRequest) (*domain.Room, error) {
	room := &domain.Room{ID: "room-1", Code: "ABC123", Host: req.HostName}
	f.rooms[room.Code] = room
	return room, nil
}

func (f *fakeRoomService) GetRoom(_ context.Context, code string) (*domain.RoomResponse, error) {
	room, ok := f.rooms[domain.NormalizeRoomCode(code)]
	if !ok {
		return nil, service.ErrRoomNotFound
	}
	return &domain.RoomResponse{Room: *room, Queue: []domain.QueueEntry{}}, nil
}

func (f *fakeRoomService) ValidateRoom(_ context.Context, code string) (*domain.ValidateRoomResponse, error) {
	room, ok := f.rooms[domain.NormalizeRoomCode(code)]
	if !ok {
		return nil, service.ErrRoomNotFound
	}
	return &domain.ValidateRoomResponse{Code: room.Code, Host: room.Host}, nil
}

// fakeQueueService records calls and returns configured results.
type fakeQueueService struct {
	snap        *domain.QueueSnapshot
	entry       *domain.QueueEntry
	err         error
	lastRoom    string
	lastIDs     []string
	lastRequest string
}

func (f *fakeQueueService) Append(_ context.Context, roomCode string, video domain.MediaRef, requestedBy string) (*domain.QueueEntry, error) {
	f.lastRoom = roomCode
	f.lastRequest = requestedBy
	if f.err != nil {
		return nil, f.err
	}
	return f.entry, nil
}

func (f *fakeQueueService) Remove(_ context.Context, entryID string) (*domain.QueueSnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.snap, nil
}

func (f *fakeQueueService) Reorder(_ context.Context, roomCode string, entryIDs []string) (*domain.QueueSnapshot, error) {
	f.lastRoom = roomCode
	f.lastIDs = entryIDs
	if f.err != nil {
		return nil, f.err
	}
	return f.snap, nil
}

func (f *fakeQueueService) Snapshot(_ context.Context, roomCode string) (*domain.QueueSnapshot, error) {
	f.lastRoom = roomCode
	if f.err != nil {
		return nil, f.err
	}
	return f.snap, nil
}

func (f *fakeQueueService) Vote(_ context.Context, entryID string, delta int) (*domain.QueueEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.entry, nil
}

type fakeSearcher struct {
	result *search.SearchResult
	err    error
}

func (f *fakeSearcher) Search(_ context.Context, query, pageToken string) (*search.SearchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestRouter(rooms *fakeRoomService, queue *fakeQueueService, searcher search.MediaSearcher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GuestMiddleware())
	NewHandler(rooms, queue, searcher, nil).RegisterRoutes(r)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, cookies ...*http.Cookie) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestCreateRoomSetsCookies(t *testing.T) {
	rooms := &fakeRoomService{rooms: map[string]*domain.Room{}}
	r := newTestRouter(rooms, &fakeQueueService{}, &fakeSearcher{})

	w, env := doJSON(t, r, http.MethodPost, "/api/v1/rooms", domain.CreateRoomRequest{HostName: "Alice"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)

	var room domain.Room
	require.NoError(t, json.Unmarshal(env.Data, &room))
	assert.Equal(t, "ABC123", room.Code)

	names := make(map[string]string)
	for _, c := range w.Result().Cookies() {
		names[c.Name] = c.Value
	}
	assert.Equal(t, "Alice", names["guest_name"])
	assert.Equal(t, "Alice", names["host_name"])
	assert.Equal(t, "ABC123", names["room_code"])
}

func TestCreateRoomRejectsMissingHost(t *testing.T) {
	rooms := &fakeRoomService{rooms: map[string]*domain.Room{}}
	r := newTestRouter(rooms, &fakeQueueService{}, &fakeSearcher{})

	w, env := doJSON(t, r, http.MethodPost, "/api/v1/rooms", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
}

func TestGetRoomNotFound(t *testing.T) {
	rooms := &fakeRoomService{rooms: map[string]*domain.Room{}}
	r := newTestRouter(rooms, &fakeQueueService{}, &fakeSearcher{})

	w, env := doJSON(t, r, http.MethodGet, "/api/v1/rooms/NOPE99", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "ROOM_NOT_FOUND", env.Error.Code)
}

func TestValidateRoomRequiresCode(t *testing.T) {
	rooms := &fakeRoomService{rooms: map[string]*domain.Room{}}
	r := newTestRouter(rooms, &fakeQueueService{}, &fakeSearcher{})

	w, _ := doJSON(t, r, http.MethodGet, "/api/v1/rooms/validate", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetQueueRequiresRoomParam(t *testing.T) {
	r := newTestRouter(&fakeRoomService{rooms: map[string]*domain.Room{}}, &fakeQueueService{}, &fakeSearcher{})

	w, _ := doJSON(t, r, http.MethodGet, "/api/v1/requests", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAppendRequestUsesGuestCookie(t *testing.T) {
	queue := &fakeQueueService{entry: &domain.QueueEntry{ID: "e1", Position: 1}}
	r := newTestRouter(&fakeRoomService{rooms: map[string]*domain.Room{}}, queue, &fakeSearcher{})

	body := domain.AppendRequest{
		RoomCode: "ABC123",
		Video:    domain.MediaRef{VideoID: "v1", Title: "song"},
	}
	w, env := doJSON(t, r, http.MethodPost, "/api/v1/requests", body,
		&http.Cookie{Name: "guest_name", Value: "Bob"})

	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "ABC123", queue.lastRoom)
	assert.Equal(t, "Bob", queue.lastRequest)
}

func TestAppendRequestValidation(t *testing.T) {
	r := newTestRouter(&fakeRoomService{rooms: map[string]*domain.Room{}}, &fakeQueueService{}, &fakeSearcher{})

	// Missing video payload fails binding before the service is reached.
	w, _ := doJSON(t, r, http.MethodPost, "/api/v1/requests", map[string]string{"room_code": "ABC123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRemoveRequestMapsEntryNotFound(t *testing.T) {
	queue := &fakeQueueService{err: service.ErrEntryNotFound}
	r := newTestRouter(&fakeRoomService{rooms: map[string]*domain.Room{}}, queue, &fakeSearcher{})

	w, env := doJSON(t, r, http.MethodDelete, "/api/v1/requests/e1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "ENTRY_NOT_FOUND", env.Error.Code)
}

func TestReorderMapsIncompleteReorder(t *testing.T) {
	queue := &fakeQueueService{err: service.ErrIncompleteReorder}
	r := newTestRouter(&fakeRoomService{rooms: map[string]*domain.Room{}}, queue, &fakeSearcher{})

	body := domain.ReorderRequest{RoomCode: "ABC123", EntryIDs: []string{"e1"}}
	w, env := doJSON(t, r, http.MethodPut, "/api/v1/requests/reorder", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INCOMPLETE_REORDER", env.Error.Code)
}

func TestReorderPassesIDsThrough(t *testing.T) {
	queue := &fakeQueueService{snap: &domain.QueueSnapshot{Queue: []domain.QueueEntry{}}}
	r := newTestRouter(&fakeRoomService{rooms: map[string]*domain.Room{}}, queue, &fakeSearcher{})

	body := domain.ReorderRequest{RoomCode: "ABC123", EntryIDs: []string{"e2", "e1"}}
	w, _ := doJSON(t, r, http.MethodPut, "/api/v1/requests/reorder", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"e2", "e1"}, queue.lastIDs)
}

func TestVoteRejectsOutOfRangeDelta(t *testing.T) {
	r := newTestRouter(&fakeRoomService{rooms: map[string]*domain.Room{}}, &fakeQueueService{}, &fakeSearcher{})

	w, _ := doJSON(t, r, http.MethodPost, "/api/v1/votes", map[string]any{"entry_id": "e1", "delta": 2})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchRequiresQuery(t *testing.T) {
	r := newTestRouter(&fakeRoomService{rooms: map[string]*domain.Room{}}, &fakeQueueService{}, &fakeSearcher{})

	w, _ := doJSON(t, r, http.MethodGet, "/api/v1/search", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchReturnsProviderResult(t *testing.T) {
	searcher := &fakeSearcher{result: &search.SearchResult{
		Items: []search.MediaItem{{VideoID: "v1", Title: "song"}},
	}}
	r := newTestRouter(&fakeRoomService{rooms: map[string]*domain.Room{}}, &fakeQueueService{}, searcher)

	w, env := doJSON(t, r, http.MethodGet, "/api/v1/search?q=song", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var result search.SearchResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	require.Len(t, result.Items, 1)
	assert.Equal(t, "v1", result.Items[0].VideoID)
}
