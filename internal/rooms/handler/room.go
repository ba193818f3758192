package handler

import (
	"net/http"

	"classbook/internal/rooms/service"
	httputil "classbook/pkg/http"
	"classbook/pkg/logger"
	"classbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type RoomHandler struct {
	service service.RoomService
	log     *logger.Logger
}

func NewRoomHandler(service service.RoomService, log *logger.Logger) *RoomHandler {
	return &RoomHandler{
		service: service,
		log:     log,
	}
}

func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	activeOnly, err := httputil.QueryBool(r, "active", false)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	rooms, err := h.service.List(r.Context(), activeOnly)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WriteSuccess(w, rooms); err != nil {
		h.log.Error("failed to write success response", "handler", "List", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RoomHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	room, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, room); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RoomHandler) Suggest(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.SuggestionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Suggest", err)
		return
	}

	suggestion, err := h.service.Suggest(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Suggest", err)
		return
	}

	if err := httputil.WriteSuccess(w, suggestion); err != nil {
		h.log.Error("failed to write success response", "handler", "Suggest", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RoomHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *RoomHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/rooms", h.List)
	router.GET("/api/v1/rooms/id/:id", h.GetByID)
	router.POST("/api/v1/rooms/suggest", h.Suggest)
}
