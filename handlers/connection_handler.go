package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"mentorLinkAPI/internal/types/relationship"
	"mentorLinkAPI/middleware"
	"mentorLinkAPI/services"
)

type ConnectionHandler struct {
	connectionService *services.ConnectionService
}

func NewConnectionHandler(connectionService *services.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{
		connectionService: connectionService,
	}
}

// POST /api/v1/connections/request
func (h *ConnectionHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "SendConnectionRequest", h.connectionService.Send)
}

// POST /api/v1/connections/accept
func (h *ConnectionHandler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "AcceptConnectionRequest", h.connectionService.Accept)
}

// POST /api/v1/connections/decline
func (h *ConnectionHandler) DeclineRequest(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "DeclineConnectionRequest", h.connectionService.Decline)
}

func (h *ConnectionHandler) transition(w http.ResponseWriter, r *http.Request, op string, call func(ctx context.Context, callerUID, targetUID string) error) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	callerUID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req relationship.ConnectionRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := call(ctx, callerUID, req.TargetUserID); err != nil {
		respondWithServiceError(w, op, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// GET /api/v1/connections/incoming
func (h *ConnectionHandler) FetchIncoming(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "FetchIncomingRequests", "requests", h.connectionService.Incoming)
}

// GET /api/v1/connections/outgoing
func (h *ConnectionHandler) FetchOutgoing(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "FetchOutgoingRequests", "requests", h.connectionService.Outgoing)
}

// GET /api/v1/connections
func (h *ConnectionHandler) FetchConnections(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "FetchConnections", "connections", h.connectionService.Connections)
}

func (h *ConnectionHandler) list(w http.ResponseWriter, r *http.Request, op, key string, call func(ctx context.Context, callerUID string) ([]relationship.ConnectionEntry, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	callerUID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	entries, err := call(ctx, callerUID)
	if err != nil {
		respondWithServiceError(w, op, err)
		return
	}
	if entries == nil {
		entries = []relationship.ConnectionEntry{}
	}

	respondWithJSON(w, http.StatusOK, map[string]any{key: entries})
}
