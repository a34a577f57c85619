package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"mentorLinkAPI/internal/types/group"
	"mentorLinkAPI/middleware"
	"mentorLinkAPI/services"
)

type GroupHandler struct {
	groupService *services.GroupService
}

func NewGroupHandler(groupService *services.GroupService) *GroupHandler {
	return &GroupHandler{
		groupService: groupService,
	}
}

// POST /api/v1/groups
func (h *GroupHandler) CreateGroupChat(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	callerUID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req group.CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	g, err := h.groupService.Create(ctx, callerUID, &req)
	if err != nil {
		respondWithServiceError(w, "CreateGroupChat", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]any{
		"id":      g.ID,
		"name":    g.Name,
		"members": g.Members,
	})
}

// DELETE /api/v1/groups/{groupId}
// The cascade over member profiles can span many chunks, so this handler
// gets a longer deadline than the rest.
func (h *GroupHandler) DeleteGroupChat(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	callerUID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	groupID := mux.Vars(r)["groupId"]

	if err := h.groupService.Delete(ctx, groupID, callerUID); err != nil {
		respondWithServiceError(w, "DeleteGroupChat", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"groupId": groupID,
	})
}

// POST /api/v1/groups/participants
func (h *GroupHandler) ManageGroupParticipants(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	callerUID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req group.ManageParticipantsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	message, err := h.groupService.ManageParticipants(ctx, req.ChatID, req.ParticipantID, req.Action, callerUID)
	if err != nil {
		respondWithServiceError(w, "ManageGroupParticipants", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": message,
	})
}

// POST /api/v1/groups/{groupId}/members
func (h *GroupHandler) AddUserToGroup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	_, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	groupID := mux.Vars(r)["groupId"]

	var req group.AddUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	members, err := h.groupService.AddParticipant(ctx, groupID, req.UserID)
	if err != nil {
		respondWithServiceError(w, "AddUserToGroup", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"groupId": groupID,
		"groupData": map[string]any{
			"members": members,
		},
	})
}
