package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/ozcanmiraay/cs162-todo-list-app/internal/api/controller"
	"github.com/ozcanmiraay/cs162-todo-list-app/internal/api/repository"
	"github.com/ozcanmiraay/cs162-todo-list-app/internal/api/service"
	"github.com/ozcanmiraay/cs162-todo-list-app/internal/config"
	"github.com/ozcanmiraay/cs162-todo-list-app/internal/db"
	"github.com/ozcanmiraay/cs162-todo-list-app/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// client drives the engine through httptest, carrying the session cookie
// between requests the way a browser would.
type client struct {
	t      *testing.T
	engine *gin.Engine
	cookie *http.Cookie
}

func newTestClient(t *testing.T) *client {
	t.Helper()

	pool, err := db.Connect(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	userRepo := repository.NewUserRepository(pool)
	listRepo := repository.NewListRepository(pool)
	itemRepo := repository.NewItemRepository(pool)
	sessions := session.NewMemoryStore("test-secret")

	userService := service.NewUserService(userRepo, sessions)
	todoService := service.NewTodoService(listRepo, itemRepo)

	srv := NewServer(config.Config{CORSOrigin: "http://localhost:3000"},
		controller.NewUserController(userService),
		controller.NewTodoController(todoService),
		userService)

	return &client{t: t, engine: srv.Engine()}
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}

	w := httptest.NewRecorder()
	c.engine.ServeHTTP(w, req)
	return w
}

// login authenticates and stores the session cookie for later requests.
func (c *client) login(username, password string) *httptest.ResponseRecorder {
	c.t.Helper()

	w := c.do(http.MethodPost, "/login", gin.H{"username": username, "password": password})
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == controller.SessionCookie {
			c.cookie = cookie
		}
	}
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestProtectedEndpointsRequireSession(t *testing.T) {
	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/lists"},
		{http.MethodPost, "/api/lists"},
		{http.MethodPut, "/api/lists/1"},
		{http.MethodPost, "/list/1/delete"},
		{http.MethodPost, "/list/1/item/new"},
		{http.MethodPost, "/item/1/toggle"},
		{http.MethodPost, "/item/1/complete"},
		{http.MethodPost, "/item/1/edit"},
		{http.MethodPost, "/item/1/delete"},
		{http.MethodPost, "/item/1/move"},
	}

	c := newTestClient(t)
	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			w := c.do(p.method, p.path, nil)
			require.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRegisterLoginStatusCodes(t *testing.T) {
	c := newTestClient(t)

	w := c.do(http.MethodPost, "/register", gin.H{"username": "alice", "password": "secret"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = c.do(http.MethodPost, "/register", gin.H{"username": "alice", "password": "secret"})
	require.Equal(t, http.StatusConflict, w.Code)

	w = c.do(http.MethodPost, "/register", gin.H{"username": "", "password": ""})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = c.login("alice", "wrong")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "INVALID_PASSWORD", decode(t, w)["code"])

	w = c.login("nobody", "secret")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "USER_NOT_FOUND", decode(t, w)["code"])

	w = c.login("alice", "secret")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, c.cookie, "login must set the session cookie")
	user := decode(t, w)["user"].(map[string]any)
	require.Equal(t, "alice", user["username"])
}

func TestTodoFlow(t *testing.T) {
	c := newTestClient(t)
	c.do(http.MethodPost, "/register", gin.H{"username": "alice", "password": "secret"})
	require.Equal(t, http.StatusOK, c.login("alice", "secret").Code)

	// Create a list.
	w := c.do(http.MethodPost, "/api/lists", gin.H{"name": "Groceries"})
	require.Equal(t, http.StatusCreated, w.Code)
	listID := int64(decode(t, w)["id"].(float64))

	// Empty names are rejected.
	w = c.do(http.MethodPost, "/api/lists", gin.H{"name": ""})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Add a three-level chain.
	w = c.do(http.MethodPost, fmt.Sprintf("/list/%d/item/new", listID), gin.H{"description": "Milk"})
	require.Equal(t, http.StatusCreated, w.Code)
	rootID := int64(decode(t, w)["id"].(float64))

	w = c.do(http.MethodPost, fmt.Sprintf("/list/%d/item/new", listID),
		gin.H{"description": "Oat", "parent_id": rootID})
	require.Equal(t, http.StatusCreated, w.Code)
	childID := int64(decode(t, w)["id"].(float64))

	w = c.do(http.MethodPost, fmt.Sprintf("/list/%d/item/new", listID),
		gin.H{"description": "Barista", "parent_id": childID})
	require.Equal(t, http.StatusCreated, w.Code)
	grandchildID := int64(decode(t, w)["id"].(float64))

	// A fourth level is rejected.
	w = c.do(http.MethodPost, fmt.Sprintf("/list/%d/item/new", listID),
		gin.H{"description": "Too deep", "parent_id": grandchildID})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "DEPTH_EXCEEDED", decode(t, w)["code"])

	// The nested view contains the chain.
	w = c.do(http.MethodGet, "/api/lists", nil)
	require.Equal(t, http.StatusOK, w.Code)
	lists := decode(t, w)["lists"].([]any)
	require.Len(t, lists, 1)
	items := lists[0].(map[string]any)["items"].([]any)
	require.Len(t, items, 1)
	milk := items[0].(map[string]any)
	require.Equal(t, "Milk", milk["description"])
	require.Equal(t, false, milk["complete"])
	require.Len(t, milk["children"].([]any), 1)

	// Toggle is its own inverse, via both route spellings.
	w = c.do(http.MethodPost, fmt.Sprintf("/item/%d/toggle", rootID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, true, decode(t, w)["complete"])
	w = c.do(http.MethodPost, fmt.Sprintf("/item/%d/complete", rootID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, false, decode(t, w)["complete"])

	// Edit.
	w = c.do(http.MethodPost, fmt.Sprintf("/item/%d/edit", rootID), gin.H{"description": "Whole milk"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Whole milk", decode(t, w)["description"])

	// Rename.
	w = c.do(http.MethodPut, fmt.Sprintf("/api/lists/%d", listID), gin.H{"name": "Food"})
	require.Equal(t, http.StatusOK, w.Code)

	// Move: child items are rejected, top-level items go through.
	w = c.do(http.MethodPost, "/api/lists", gin.H{"name": "Other"})
	require.Equal(t, http.StatusCreated, w.Code)
	otherID := int64(decode(t, w)["id"].(float64))

	w = c.do(http.MethodPost, fmt.Sprintf("/item/%d/move", childID), gin.H{"target_list_id": otherID})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = c.do(http.MethodPost, fmt.Sprintf("/item/%d/move", rootID), gin.H{"target_list_id": otherID})
	require.Equal(t, http.StatusOK, w.Code)

	// Delete the moved item, then the list.
	w = c.do(http.MethodPost, fmt.Sprintf("/item/%d/delete", rootID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = c.do(http.MethodPost, fmt.Sprintf("/list/%d/delete", otherID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Absent resources are 404.
	w = c.do(http.MethodPost, fmt.Sprintf("/item/%d/toggle", rootID), nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestOwnershipAcrossUsersOverHTTP(t *testing.T) {
	c := newTestClient(t)
	c.do(http.MethodPost, "/register", gin.H{"username": "alice", "password": "secret"})
	c.do(http.MethodPost, "/register", gin.H{"username": "mallory", "password": "secret"})

	require.Equal(t, http.StatusOK, c.login("alice", "secret").Code)
	w := c.do(http.MethodPost, "/api/lists", gin.H{"name": "Private"})
	require.Equal(t, http.StatusCreated, w.Code)
	listID := int64(decode(t, w)["id"].(float64))

	require.Equal(t, http.StatusOK, c.login("mallory", "secret").Code)
	w = c.do(http.MethodPut, fmt.Sprintf("/api/lists/%d", listID), gin.H{"name": "Stolen"})
	require.Equal(t, http.StatusForbidden, w.Code)
	w = c.do(http.MethodPost, fmt.Sprintf("/list/%d/delete", listID), nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = c.do(http.MethodGet, "/api/lists", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, decode(t, w)["lists"])
}

func TestSessionEndpoints(t *testing.T) {
	c := newTestClient(t)
	c.do(http.MethodPost, "/register", gin.H{"username": "alice", "password": "secret"})

	w := c.do(http.MethodGet, "/check-session", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	require.Equal(t, http.StatusOK, c.login("alice", "secret").Code)
	w = c.do(http.MethodGet, "/check-session", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, true, decode(t, w)["authenticated"])

	// Logout kills the session; the old cookie stops working.
	w = c.do(http.MethodPost, "/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = c.do(http.MethodGet, "/api/lists", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Logging out again is fine.
	w = c.do(http.MethodPost, "/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	c := newTestClient(t)

	w := c.do(http.MethodOptions, "/api/lists", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}
