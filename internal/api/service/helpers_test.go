package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ozcanmiraay/cs162-todo-list-app/internal/api/models"
	"github.com/ozcanmiraay/cs162-todo-list-app/internal/api/repository"
	"github.com/ozcanmiraay/cs162-todo-list-app/internal/db"
	"github.com/ozcanmiraay/cs162-todo-list-app/internal/session"
)

// env wires the services onto a fresh in-memory SQLite database and an
// in-memory session store.
type env struct {
	users    UserService
	todos    TodoService
	itemRepo repository.ItemRepository
	listRepo repository.ListRepository
}

func newTestEnv(t *testing.T) *env {
	t.Helper()

	pool, err := db.Connect(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	userRepo := repository.NewUserRepository(pool)
	listRepo := repository.NewListRepository(pool)
	itemRepo := repository.NewItemRepository(pool)
	sessions := session.NewMemoryStore("test-secret")

	return &env{
		users:    NewUserService(userRepo, sessions),
		todos:    NewTodoService(listRepo, itemRepo),
		itemRepo: itemRepo,
		listRepo: listRepo,
	}
}

// register creates a user and returns its id.
func (e *env) register(t *testing.T, username string) int64 {
	t.Helper()
	user, err := e.users.Register(context.Background(), &models.RegisterRequest{
		Username: username,
		Password: "hunter22",
	})
	require.NoError(t, err)
	return user.ID
}

// list creates a list for owner and returns it.
func (e *env) list(t *testing.T, owner int64, name string) *models.TodoList {
	t.Helper()
	list, err := e.todos.CreateList(context.Background(), owner, name)
	require.NoError(t, err)
	return list
}

// item adds an item and returns it.
func (e *env) item(t *testing.T, owner, listID int64, description string, parentID *int64) *models.TodoItem {
	t.Helper()
	item, err := e.todos.AddItem(context.Background(), owner, listID, description, parentID)
	require.NoError(t, err)
	return item
}

// chain builds a root item with a child and a grandchild (depths 1..3) and
// returns them in order.
func (e *env) chain(t *testing.T, owner, listID int64) (root, child, grandchild *models.TodoItem) {
	t.Helper()
	root = e.item(t, owner, listID, "root", nil)
	child = e.item(t, owner, listID, "child", &root.ID)
	grandchild = e.item(t, owner, listID, "grandchild", &child.ID)
	return root, child, grandchild
}
