package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ozcanmiraay/cs162-todo-list-app/internal/api/apperr"
	"github.com/ozcanmiraay/cs162-todo-list-app/internal/api/models"
	"github.com/ozcanmiraay/cs162-todo-list-app/internal/api/response"
	"github.com/ozcanmiraay/cs162-todo-list-app/internal/api/service"
)

// CallerKey is the gin context key under which the auth middleware stores
// the resolved caller id.
const CallerKey = "callerID"

// TodoController handles list and item endpoints. All of them run behind the
// session middleware, so a caller id is always present.
type TodoController struct {
	todoService service.TodoService
}

// NewTodoController creates a new TodoController.
func NewTodoController(todoService service.TodoService) *TodoController {
	return &TodoController{
		todoService: todoService,
	}
}

func caller(c *gin.Context) int64 {
	return c.GetInt64(CallerKey)
}

// pathID parses the numeric :id path parameter. Non-numeric ids address no
// resource, so they surface as not found.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, apperr.ErrNotFound)
		return 0, false
	}
	return id, true
}

// GetLists returns the caller's lists with fully nested item trees.
func (tc *TodoController) GetLists(c *gin.Context) {
	lists, err := tc.todoService.Lists(c.Request.Context(), caller(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"lists": lists})
}

// CreateList creates a new list for the caller.
func (tc *TodoController) CreateList(c *gin.Context) {
	var req models.CreateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperr.ErrInvalidInput)
		return
	}

	list, err := tc.todoService.CreateList(c.Request.Context(), caller(c), req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"id": list.ID, "name": list.Name})
}

// RenameList renames a list the caller owns.
func (tc *TodoController) RenameList(c *gin.Context) {
	listID, ok := pathID(c)
	if !ok {
		return
	}
	var req models.RenameListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperr.ErrInvalidInput)
		return
	}

	list, err := tc.todoService.RenameList(c.Request.Context(), caller(c), listID, req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"list": list})
}

// DeleteList deletes a list and everything in it.
func (tc *TodoController) DeleteList(c *gin.Context) {
	listID, ok := pathID(c)
	if !ok {
		return
	}
	if err := tc.todoService.DeleteList(c.Request.Context(), caller(c), listID); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "List deleted successfully")
}

// NewItem adds an item to a list, optionally under a parent item.
func (tc *TodoController) NewItem(c *gin.Context) {
	listID, ok := pathID(c)
	if !ok {
		return
	}
	var req models.NewItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperr.ErrInvalidInput)
		return
	}

	item, err := tc.todoService.AddItem(c.Request.Context(), caller(c), listID, req.Description, req.ParentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"id":          item.ID,
		"description": item.Description,
		"complete":    item.Complete,
		"parent_id":   item.ParentID,
	})
}

// ToggleItem flips an item's completion flag and returns the new value.
func (tc *TodoController) ToggleItem(c *gin.Context) {
	itemID, ok := pathID(c)
	if !ok {
		return
	}
	item, err := tc.todoService.ToggleComplete(c.Request.Context(), caller(c), itemID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": item.ID, "complete": item.Complete})
}

// EditItem replaces an item's description.
func (tc *TodoController) EditItem(c *gin.Context) {
	itemID, ok := pathID(c)
	if !ok {
		return
	}
	var req models.EditItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperr.ErrInvalidInput)
		return
	}

	item, err := tc.todoService.EditDescription(c.Request.Context(), caller(c), itemID, req.Description)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": item.ID, "description": item.Description})
}

// DeleteItem deletes an item and its whole subtree.
func (tc *TodoController) DeleteItem(c *gin.Context) {
	itemID, ok := pathID(c)
	if !ok {
		return
	}
	if err := tc.todoService.DeleteItem(c.Request.Context(), caller(c), itemID); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Item deleted successfully")
}

// MoveItem moves a top-level item to another list owned by the caller.
func (tc *TodoController) MoveItem(c *gin.Context) {
	itemID, ok := pathID(c)
	if !ok {
		return
	}
	var req models.MoveItemRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.TargetListID == 0 {
		response.Error(c, apperr.ErrInvalidInput)
		return
	}

	if err := tc.todoService.MoveItem(c.Request.Context(), caller(c), itemID, req.TargetListID); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Item moved successfully")
}
