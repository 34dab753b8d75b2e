package http

import (
	stderrors "errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"community-hub/domain"
	"community-hub/errors"
	"community-hub/observability"
	"community-hub/services"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
)

const (
	defaultPage  = 1
	defaultLimit = 50
)

type messageDTO struct {
	ID          string    `json:"id"`
	Room        string    `json:"room"`
	Username    string    `json:"username"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
	UserID      string    `json:"userId"`
	MessageType string    `json:"messageType"`
}

type paginationDTO struct {
	CurrentPage   int  `json:"currentPage"`
	TotalPages    int  `json:"totalPages"`
	TotalMessages int  `json:"totalMessages"`
	HasMore       bool `json:"hasMore"`
}

type latestMessageDTO struct {
	Message   string    `json:"message"`
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
}

type roomDTO struct {
	Name          string            `json:"name"`
	LatestMessage *latestMessageDTO `json:"latestMessage"`
	MessageCount  int               `json:"messageCount"`
	ActiveUsers   int               `json:"activeUsers"`
	Description   string            `json:"description"`
}

type fileDTO struct {
	Name          string    `json:"name"`
	Size          int64     `json:"size"`
	SizeFormatted string    `json:"sizeFormatted"`
	LastModified  time.Time `json:"lastModified"`
	Extension     string    `json:"extension"`
	Type          string    `json:"type"`
}

// RoomHandler serves the read-only chat surface: the room catalogue with
// activity stats and paginated room history.
type RoomHandler struct {
	svc services.IChatService
	log *slog.Logger
}

func NewRoomHandler(svc services.IChatService, log *slog.Logger) *RoomHandler {
	return &RoomHandler{svc: svc, log: log}
}

func (h *RoomHandler) Rooms(w http.ResponseWriter, _ *http.Request) {
	rooms, err := h.svc.Rooms()
	if err != nil {
		h.log.Error("Failed to fetch chat rooms", "error", err)
		respondError(w, h.log, http.StatusInternalServerError, "Failed to fetch chat rooms")
		return
	}
	respondData(w, h.log, map[string]any{
		"rooms": lo.Map(rooms, func(room services.RoomActivity, _ int) roomDTO { return toRoomDTO(room) }),
	})
}

func (h *RoomHandler) History(w http.ResponseWriter, r *http.Request) {
	room := roomParam(r)
	page := queryInt(r, "page", defaultPage)
	limit := queryInt(r, "limit", defaultLimit)

	history, err := h.svc.RoomHistory(room, page, limit)
	if err != nil {
		if stderrors.Is(err, errors.ErrInvalidRoom) {
			respondError(w, h.log, http.StatusBadRequest, errors.MsgInvalidRoom)
			return
		}
		h.log.Error("Failed to fetch room messages", "room", room, "error", err)
		respondError(w, h.log, http.StatusInternalServerError, "Failed to fetch messages")
		return
	}

	respondData(w, h.log, map[string]any{
		"messages": lo.Map(history.Messages, func(m domain.Message, _ int) messageDTO { return toMessageDTO(m) }),
		"pagination": paginationDTO{
			CurrentPage:   history.Pagination.CurrentPage,
			TotalPages:    history.Pagination.TotalPages,
			TotalMessages: history.Pagination.TotalMessages,
			HasMore:       history.Pagination.HasMore,
		},
		"room": history.Room,
	})
}

// FileHandler serves the shared files directory.
type FileHandler struct {
	files *services.FileService
	log   *slog.Logger
}

func NewFileHandler(files *services.FileService, log *slog.Logger) *FileHandler {
	return &FileHandler{files: files, log: log}
}

func (h *FileHandler) List(w http.ResponseWriter, _ *http.Request) {
	files, err := h.files.List()
	if err != nil {
		if stderrors.Is(err, services.ErrFilesDirectoryMissing) {
			respondError(w, h.log, http.StatusNotFound, "Files directory not found")
			return
		}
		h.log.Error("Failed to list files", "error", err)
		respondError(w, h.log, http.StatusInternalServerError, "Failed to list files")
		return
	}
	respondData(w, h.log, map[string]any{
		"files":      lo.Map(files, func(f services.FileInfo, _ int) fileDTO { return toFileDTO(f) }),
		"totalFiles": len(files),
	})
}

func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	if unescaped, err := url.PathUnescape(filename); err == nil {
		filename = unescaped
	}

	file, info, err := h.files.Open(filename)
	if err != nil {
		switch {
		case stderrors.Is(err, services.ErrFileNotFound):
			respondError(w, h.log, http.StatusNotFound, "File not found")
		case stderrors.Is(err, services.ErrNotAFile):
			respondError(w, h.log, http.StatusBadRequest, "Invalid file")
		default:
			h.log.Error("Failed to open file", "filename", filename, "error", err)
			respondError(w, h.log, http.StatusInternalServerError, "Failed to download file")
		}
		return
	}
	defer file.Close()

	w.Header().Set("Content-Disposition", `attachment; filename="`+info.Name+`"`)
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	if _, err := io.Copy(w, file); err != nil {
		h.log.Warn("File download interrupted", "filename", info.Name, "error", err)
	}
}

// HealthHandler reports process liveness and stats.
type HealthHandler struct {
	monitor *observability.Monitor
	log     *slog.Logger
}

func NewHealthHandler(monitor *observability.Monitor, log *slog.Logger) *HealthHandler {
	return &HealthHandler{monitor: monitor, log: log}
}

func (h *HealthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, h.log, http.StatusOK, h.monitor.Snapshot())
}

func roomParam(r *http.Request) domain.Room {
	room := chi.URLParam(r, "room")
	if unescaped, err := url.PathUnescape(room); err == nil {
		room = unescaped
	}
	return domain.Room(room)
}

func queryInt(r *http.Request, name string, fallback int) int {
	value := r.URL.Query().Get(name)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 1 {
		return fallback
	}
	return parsed
}

func toMessageDTO(m domain.Message) messageDTO {
	return messageDTO{
		ID:          m.ID.String(),
		Room:        string(m.Room),
		Username:    m.Username,
		Message:     m.Content,
		Timestamp:   m.Timestamp,
		UserID:      m.UserID,
		MessageType: string(m.Type),
	}
}

func toRoomDTO(room services.RoomActivity) roomDTO {
	dto := roomDTO{
		Name:         string(room.Name),
		MessageCount: room.MessageCount,
		ActiveUsers:  room.ActiveUsers,
		Description:  room.Description,
	}
	if room.LatestMessage != nil {
		dto.LatestMessage = &latestMessageDTO{
			Message:   room.LatestMessage.Message,
			Username:  room.LatestMessage.Username,
			Timestamp: room.LatestMessage.Timestamp,
		}
	}
	return dto
}

func toFileDTO(f services.FileInfo) fileDTO {
	return fileDTO{
		Name:          f.Name,
		Size:          f.Size,
		SizeFormatted: f.SizeFormatted,
		LastModified:  f.LastModified,
		Extension:     f.Extension,
		Type:          f.Mime,
	}
}
