package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mentorLinkAPI/internal/store"
	"mentorLinkAPI/internal/types/group"
	"mentorLinkAPI/middleware"
	"mentorLinkAPI/services"
)

func newTestRouter() (*mux.Router, *store.MemoryStore) {
	ms := store.NewMemoryStore()
	users := services.NewUserService(ms)
	chats := services.NewChatService(ms)
	connections := services.NewConnectionService(ms, users)
	groups := services.NewGroupService(ms, users, chats)

	connectionHandler := NewConnectionHandler(connections)
	groupHandler := NewGroupHandler(groups)
	chatHandler := NewChatHandler(chats)

	r := mux.NewRouter()
	r.HandleFunc("/api/v1/connections/request", connectionHandler.SendRequest).Methods("POST")
	r.HandleFunc("/api/v1/connections/incoming", connectionHandler.FetchIncoming).Methods("GET")
	r.HandleFunc("/api/v1/groups", groupHandler.CreateGroupChat).Methods("POST")
	r.HandleFunc("/api/v1/groups/{groupId}", groupHandler.DeleteGroupChat).Methods("DELETE")
	r.HandleFunc("/api/v1/chats/initialize", chatHandler.InitializeChat).Methods("POST")
	return r, ms
}

func authedRequest(method, target string, body any, uid string) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	if uid != "" {
		req = req.WithContext(context.WithValue(req.Context(), middleware.ClerkIDKey, uid))
	}
	return req
}

func TestSendRequestEndpoint(t *testing.T) {
	router, ms := newTestRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest("POST", "/api/v1/connections/request", map[string]string{"targetUserId": "bob"}, "alice"))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success": true}`, w.Body.String())

	doc, err := ms.Get(context.Background(), store.RelationshipsCollection, "bob")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, []string{"alice"}, store.Strings(doc.Data, "pending"))
}

func TestSendRequestRequiresAuth(t *testing.T) {
	router, _ := newTestRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest("POST", "/api/v1/connections/request", map[string]string{"targetUserId": "bob"}, ""))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSendRequestRejectsSelfTarget(t *testing.T) {
	router, _ := newTestRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest("POST", "/api/v1/connections/request", map[string]string{"targetUserId": "alice"}, "alice"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteGroupEndpointStatusCodes(t *testing.T) {
	router, ms := newTestRouter()

	users := services.NewUserService(ms)
	chats := services.NewChatService(ms)
	groups := services.NewGroupService(ms, users, chats)
	g, err := groups.Create(context.Background(), "alice", &group.CreateGroupRequest{GroupName: "StudyGroup"})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest("DELETE", "/api/v1/groups/"+g.ID, nil, "bob"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest("DELETE", "/api/v1/groups/"+g.ID, nil, "alice"))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest("DELETE", "/api/v1/groups/"+g.ID, nil, "alice"))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInitializeChatEndpoint(t *testing.T) {
	router, _ := newTestRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest("POST", "/api/v1/chats/initialize", map[string]string{"targetUid": "bob"}, "alice"))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success": true, "chatId": "alice_bob"}`, w.Body.String())
}

func TestFetchIncomingReturnsEmptyList(t *testing.T) {
	router, _ := newTestRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest("GET", "/api/v1/connections/incoming", nil, "alice"))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"requests": []}`, w.Body.String())
}
