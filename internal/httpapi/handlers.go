package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"batepapo/internal/chat"
	"batepapo/internal/message"
	"batepapo/internal/monitor"
	"batepapo/internal/participant"
)

const (
	maxBodyBytes = 1 << 20
	timeLayout   = time.RFC3339Nano

	// userHeader carries the claimed identity of the requester. There is no
	// authentication beyond the claimed name.
	userHeader = "User"
)

var validate = validator.New()

type Handler struct {
	chat    *chat.Service
	monitor *monitor.Monitor
	log     *slog.Logger
}

func NewHandler(log *slog.Logger, chatService *chat.Service, mon *monitor.Monitor) *Handler {
	return &Handler{
		chat:    chatService,
		monitor: mon,
		log:     log,
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /participants", h.handleJoin)
	mux.HandleFunc("GET /participants", h.handleListParticipants)
	mux.HandleFunc("DELETE /participants", h.handleLeave)
	mux.HandleFunc("POST /messages", h.handlePostMessage)
	mux.HandleFunc("GET /messages", h.handleReadMessages)
	mux.HandleFunc("PUT /messages/{id}", h.handleEditMessage)
	mux.HandleFunc("DELETE /messages/{id}", h.handleDeleteMessage)
	mux.HandleFunc("POST /status", h.handleHeartbeat)
	mux.HandleFunc("GET /stats", h.handleStats)
}

type joinRequest struct {
	Name string `json:"name" validate:"required"`
}

type participantResponse struct {
	Name     string `json:"name"`
	LastSeen string `json:"last_seen"`
}

func (h *Handler) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	p, err := h.chat.Join(r.Context(), req.Name)
	if err != nil {
		switch {
		case errors.Is(err, participant.ErrInvalidInput):
			writeError(w, http.StatusUnprocessableEntity, err)
		case errors.Is(err, participant.ErrConflict):
			writeError(w, http.StatusConflict, err)
		default:
			h.internalError(w, "join", err)
		}
		return
	}
	writeJSON(w, http.StatusCreated, toParticipantResponse(p))
}

func (h *Handler) handleListParticipants(w http.ResponseWriter, r *http.Request) {
	ps, err := h.chat.Participants(r.Context())
	if err != nil {
		h.internalError(w, "list participants", err)
		return
	}
	writeJSON(w, http.StatusOK, lo.Map(ps, func(p participant.Participant, _ int) participantResponse {
		return toParticipantResponse(p)
	}))
}

func (h *Handler) handleLeave(w http.ResponseWriter, r *http.Request) {
	name, ok := requesterName(w, r)
	if !ok {
		return
	}
	removed, err := h.chat.Leave(r.Context(), name)
	if err != nil {
		h.internalError(w, "leave", err)
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, participant.ErrNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type messageRequest struct {
	To   string `json:"to" validate:"required"`
	Text string `json:"text" validate:"required"`
	Type string `json:"type" validate:"required,oneof=message private_message"`
}

type messageResponse struct {
	ID     string `json:"id"`
	From   string `json:"from"`
	To     string `json:"to"`
	Text   string `json:"text"`
	Type   string `json:"type"`
	SentAt string `json:"sent_at"`
}

func (h *Handler) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	from, ok := requesterName(w, r)
	if !ok {
		return
	}
	var req messageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	m, err := h.chat.Post(r.Context(), from, req.To, req.Text, message.Kind(req.Type))
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrUnauthenticated):
			writeError(w, http.StatusUnauthorized, err)
		case errors.Is(err, message.ErrInvalidInput):
			writeError(w, http.StatusUnprocessableEntity, err)
		default:
			h.internalError(w, "post message", err)
		}
		return
	}
	writeJSON(w, http.StatusCreated, toMessageResponse(m))
}

func (h *Handler) handleReadMessages(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requesterName(w, r)
	if !ok {
		return
	}

	var limit *int
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, message.ErrInvalidInput)
			return
		}
		limit = &parsed
	}

	msgs, err := h.chat.Read(r.Context(), viewer, limit)
	if err != nil {
		switch {
		case errors.Is(err, message.ErrInvalidInput):
			writeError(w, http.StatusUnprocessableEntity, err)
		default:
			h.internalError(w, "read messages", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, lo.Map(msgs, func(m message.Message, _ int) messageResponse {
		return toMessageResponse(m)
	}))
}

func (h *Handler) handleEditMessage(w http.ResponseWriter, r *http.Request) {
	requester, ok := requesterName(w, r)
	if !ok {
		return
	}
	var req messageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	patch := message.Patch{To: req.To, Text: req.Text, Kind: message.Kind(req.Type)}
	if err := h.chat.Edit(r.Context(), requester, r.PathValue("id"), patch); err != nil {
		h.writeMutationError(w, "edit message", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	requester, ok := requesterName(w, r)
	if !ok {
		return
	}
	if err := h.chat.Delete(r.Context(), requester, r.PathValue("id")); err != nil {
		h.writeMutationError(w, "delete message", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	name, ok := requesterName(w, r)
	if !ok {
		return
	}
	if err := h.chat.Heartbeat(r.Context(), name); err != nil {
		switch {
		case errors.Is(err, participant.ErrNotFound):
			writeError(w, http.StatusNotFound, err)
		case errors.Is(err, participant.ErrInvalidInput):
			writeError(w, http.StatusUnprocessableEntity, err)
		default:
			h.internalError(w, "heartbeat", err)
		}
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	if h.monitor == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	writeJSON(w, http.StatusOK, h.monitor.Snapshot(ctx))
}

// writeMutationError maps the edit/delete precedence chain: unknown
// requester, then missing message, then wrong author.
func (h *Handler) writeMutationError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, chat.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, err)
	case errors.Is(err, message.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, chat.ErrForbidden):
		writeError(w, http.StatusForbidden, err)
	case errors.Is(err, message.ErrInvalidInput):
		writeError(w, http.StatusUnprocessableEntity, err)
	default:
		h.internalError(w, op, err)
	}
}

func (h *Handler) internalError(w http.ResponseWriter, op string, err error) {
	h.log.Error(op, "error", err)
	writeError(w, http.StatusInternalServerError, errors.New("internal error"))
}

func requesterName(w http.ResponseWriter, r *http.Request) (string, bool) {
	name := strings.TrimSpace(r.Header.Get(userHeader))
	if name == "" {
		writeError(w, http.StatusUnprocessableEntity, errors.New("User header is required"))
		return "", false
	}
	return name, true
}

func toParticipantResponse(p participant.Participant) participantResponse {
	return participantResponse{
		Name:     p.Name,
		LastSeen: p.LastSeen.UTC().Format(timeLayout),
	}
}

func toMessageResponse(m message.Message) messageResponse {
	return messageResponse{
		ID:     m.ID,
		From:   m.From,
		To:     m.To,
		Text:   m.Text,
		Type:   string(m.Kind),
		SentAt: m.SentAt.UTC().Format(timeLayout),
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("multiple json objects are not allowed")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
