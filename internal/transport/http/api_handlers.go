package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/salonlabs/salon-server/internal/core"
	"github.com/salonlabs/salon-server/internal/proto"
)

// APIHandlers provides the read-only REST surface over the hub.
type APIHandlers struct {
	hub *core.Hub
	log *zerolog.Logger
}

// NewAPIHandlers creates a new API handlers instance.
func NewAPIHandlers(hub *core.Hub, logger *zerolog.Logger) *APIHandlers {
	return &APIHandlers{hub: hub, log: logger}
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RoomListResponse is the body for GET /api/rooms.
type RoomListResponse struct {
	Rooms []proto.RoomInfoData `json:"rooms"`
}

// OnlineResponse is the body for GET /api/online.
type OnlineResponse struct {
	Online []proto.ParticipantData `json:"online"`
}

// ListRooms returns every room in creation order.
// GET /api/rooms
func (h *APIHandlers) ListRooms(c *gin.Context) {
	rooms, err := h.hub.Rooms(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list rooms")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "coordinator unavailable"})
		return
	}

	out := make([]proto.RoomInfoData, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, roomInfoData(r))
	}
	c.JSON(http.StatusOK, RoomListResponse{Rooms: out})
}

// ListOnline returns connected participants in registration order.
// GET /api/online
func (h *APIHandlers) ListOnline(c *gin.Context) {
	online, err := h.hub.Online(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list online")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "coordinator unavailable"})
		return
	}

	out := make([]proto.ParticipantData, 0, len(online))
	for _, p := range online {
		out = append(out, participantData(p))
	}
	c.JSON(http.StatusOK, OnlineResponse{Online: out})
}
