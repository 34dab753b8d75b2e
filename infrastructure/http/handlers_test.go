package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"community-hub/domain"
	"community-hub/errors"
	"community-hub/observability"
	"community-hub/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeChatService struct {
	history services.RoomHistory
	rooms   []services.RoomActivity
	err     error
}

func (f *fakeChatService) RoomHistory(room domain.Room, page, limit int) (services.RoomHistory, error) {
	if f.err != nil {
		return services.RoomHistory{}, f.err
	}
	history := f.history
	history.Room = room
	history.Pagination.CurrentPage = page
	return history, nil
}

func (f *fakeChatService) Rooms() ([]services.RoomActivity, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rooms, nil
}

func newTestServer(t *testing.T, svc services.IChatService, filesDir string) *httptest.Server {
	t.Helper()
	log := slog.Default()
	server := httptest.NewServer(NewRouter(
		NewRoomHandler(svc, log),
		NewFileHandler(services.NewFileService(filesDir), log),
		NewHealthHandler(observability.NewMonitor(log), log),
		nil,
		nil,
	))
	t.Cleanup(server.Close)
	return server
}

func getJSON(t *testing.T, rawURL string) (int, envelope) {
	t.Helper()
	resp, err := http.Get(rawURL)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestRoomHandler_History(t *testing.T) {
	req := require.New(t)
	svc := &fakeChatService{
		history: services.RoomHistory{
			Messages: []domain.Message{{
				ID:        uuid.New(),
				Room:      domain.RoomGeneral,
				Username:  "Alice",
				UserID:    "u1",
				Content:   "hello",
				Type:      domain.MessageTypeText,
				Timestamp: time.Now().UTC(),
			}},
			Pagination: services.Pagination{TotalPages: 1, TotalMessages: 1},
		},
	}
	server := newTestServer(t, svc, t.TempDir())

	status, body := getJSON(t, server.URL+"/api/chat/General?page=2&limit=10")

	req.Equal(http.StatusOK, status)
	req.True(body.Success)

	data := body.Data.(map[string]any)
	req.Equal("General", data["room"])
	req.Len(data["messages"], 1)

	message := data["messages"].([]any)[0].(map[string]any)
	req.Equal("hello", message["message"])
	req.Equal("Alice", message["username"])
	req.Equal("u1", message["userId"])
	req.Equal("text", message["messageType"])

	pagination := data["pagination"].(map[string]any)
	req.Equal(float64(2), pagination["currentPage"])
	req.Equal(float64(1), pagination["totalMessages"])
	req.Equal(false, pagination["hasMore"])
}

func TestRoomHandler_History_Room_Name_With_Space(t *testing.T) {
	req := require.New(t)
	svc := &fakeChatService{}
	server := newTestServer(t, svc, t.TempDir())

	status, body := getJSON(t, server.URL+"/api/chat/"+url.PathEscape("Food Help"))

	req.Equal(http.StatusOK, status)
	req.True(body.Success)
	req.Equal("Food Help", body.Data.(map[string]any)["room"])
}

func TestRoomHandler_History_Invalid_Room(t *testing.T) {
	req := require.New(t)
	svc := &fakeChatService{err: errors.ErrInvalidRoom}
	server := newTestServer(t, svc, t.TempDir())

	status, body := getJSON(t, server.URL+"/api/chat/Lobby")

	req.Equal(http.StatusBadRequest, status)
	req.False(body.Success)
	req.Equal(errors.MsgInvalidRoom, body.Message)
}

func TestRoomHandler_History_Archive_Failure(t *testing.T) {
	req := require.New(t)
	svc := &fakeChatService{err: fmt.Errorf("archive down")}
	server := newTestServer(t, svc, t.TempDir())

	status, body := getJSON(t, server.URL+"/api/chat/General")

	req.Equal(http.StatusInternalServerError, status)
	req.False(body.Success)
	req.Equal("Failed to fetch messages", body.Message)
}

func TestRoomHandler_Rooms(t *testing.T) {
	req := require.New(t)
	svc := &fakeChatService{
		rooms: []services.RoomActivity{{
			Name:         domain.RoomGeneral,
			MessageCount: 3,
			ActiveUsers:  2,
			Description:  "Open discussion and community chat",
		}},
	}
	server := newTestServer(t, svc, t.TempDir())

	status, body := getJSON(t, server.URL+"/api/chat/rooms")

	req.Equal(http.StatusOK, status)
	req.True(body.Success)

	rooms := body.Data.(map[string]any)["rooms"].([]any)
	req.Len(rooms, 1)
	room := rooms[0].(map[string]any)
	req.Equal("General", room["name"])
	req.Equal(float64(3), room["messageCount"])
	req.Equal(float64(2), room["activeUsers"])
	req.Nil(room["latestMessage"])
}

func TestFileHandler_List(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "guide.txt"), []byte("first aid"), 0o644))
	server := newTestServer(t, &fakeChatService{}, dir)

	status, body := getJSON(t, server.URL+"/api/files/list")

	req.Equal(http.StatusOK, status)
	req.True(body.Success)

	data := body.Data.(map[string]any)
	req.Equal(float64(1), data["totalFiles"])
	file := data["files"].([]any)[0].(map[string]any)
	req.Equal("guide.txt", file["name"])
	req.Equal(".txt", file["extension"])
}

func TestFileHandler_Download(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "guide.txt"), []byte("first aid"), 0o644))
	server := newTestServer(t, &fakeChatService{}, dir)

	resp, err := http.Get(server.URL + "/api/files/download/guide.txt")
	req.NoError(err)
	defer resp.Body.Close()

	req.Equal(http.StatusOK, resp.StatusCode)
	req.Equal(`attachment; filename="guide.txt"`, resp.Header.Get("Content-Disposition"))
	req.Equal("9", resp.Header.Get("Content-Length"))
}

func TestFileHandler_Download_Not_Found(t *testing.T) {
	req := require.New(t)
	server := newTestServer(t, &fakeChatService{}, t.TempDir())

	status, body := getJSON(t, server.URL+"/api/files/download/missing.pdf")

	req.Equal(http.StatusNotFound, status)
	req.False(body.Success)
	req.Equal("File not found", body.Message)
}

func TestHealthHandler(t *testing.T) {
	req := require.New(t)
	server := newTestServer(t, &fakeChatService{}, t.TempDir())

	resp, err := http.Get(server.URL + "/api/health")
	req.NoError(err)
	defer resp.Body.Close()

	req.Equal(http.StatusOK, resp.StatusCode)

	var stats observability.HealthStats
	req.NoError(json.NewDecoder(resp.Body).Decode(&stats))
	req.Equal("ok", stats.Status)
	req.Positive(stats.Goroutines)
}
