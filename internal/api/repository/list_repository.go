package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"

	"github.com/ozcanmiraay/cs162-todo-list-app/internal/api/models"
)

var tracer = otel.Tracer("repository.todo")

// ListRepository defines the interface for todo list data operations.
type ListRepository interface {
	CreateList(ctx context.Context, list *models.TodoList) error
	GetListByID(ctx context.Context, id int64) (*models.TodoList, error)
	GetListsByOwner(ctx context.Context, ownerID int64) ([]models.TodoList, error)
	RenameList(ctx context.Context, id int64, name string) error
	// DeleteListTree removes the list and every item belonging to it in a
	// single transaction.
	DeleteListTree(ctx context.Context, id int64) error
}

type sqliteListRepository struct {
	db *sqlx.DB
}

// NewListRepository creates a new SQLite-based ListRepository.
func NewListRepository(db *sqlx.DB) ListRepository {
	return &sqliteListRepository{db: db}
}

// CreateList inserts a new list and populates its ID.
func (r *sqliteListRepository) CreateList(ctx context.Context, list *models.TodoList) error {
	ctx, span := tracer.Start(ctx, "ListRepository.CreateList")
	defer span.End()

	query := `INSERT INTO lists (name, user_id) VALUES (?, ?)`
	res, err := r.db.ExecContext(ctx, query, list.Name, list.UserID)
	if err != nil {
		return fmt.Errorf("failed to create list: %w", err)
	}
	list.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read new list id: %w", err)
	}
	return nil
}

// GetListByID retrieves a list by its primary key. A missing list yields
// (nil, nil), matching the user repository convention.
func (r *sqliteListRepository) GetListByID(ctx context.Context, id int64) (*models.TodoList, error) {
	ctx, span := tracer.Start(ctx, "ListRepository.GetListByID")
	defer span.End()

	var list models.TodoList
	query := `SELECT id, name, user_id FROM lists WHERE id = ?`
	err := r.db.GetContext(ctx, &list, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get list by id: %w", err)
	}
	return &list, nil
}

// GetListsByOwner retrieves every list owned by the given user.
func (r *sqliteListRepository) GetListsByOwner(ctx context.Context, ownerID int64) ([]models.TodoList, error) {
	ctx, span := tracer.Start(ctx, "ListRepository.GetListsByOwner")
	defer span.End()

	var lists []models.TodoList
	query := `SELECT id, name, user_id FROM lists WHERE user_id = ?`
	if err := r.db.SelectContext(ctx, &lists, query, ownerID); err != nil {
		return nil, fmt.Errorf("failed to get lists by owner: %w", err)
	}
	return lists, nil
}

// RenameList updates the list's name.
func (r *sqliteListRepository) RenameList(ctx context.Context, id int64, name string) error {
	ctx, span := tracer.Start(ctx, "ListRepository.RenameList")
	defer span.End()

	query := `UPDATE lists SET name = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, name, id); err != nil {
		return fmt.Errorf("failed to rename list: %w", err)
	}
	return nil
}

// DeleteListTree deletes all of the list's items and then the list row.
// Everything happens inside one transaction so a crash can never leave
// orphaned items or a half-deleted list.
func (r *sqliteListRepository) DeleteListTree(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "ListRepository.DeleteListTree")
	defer span.End()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Children reference parents, so clear the deepest level first to keep
	// the foreign key satisfied at every point. Trees are bounded at
	// MaxItemDepth levels, so three passes cover everything.
	deletes := []string{
		`DELETE FROM items WHERE list_id = ? AND parent_id IN
			(SELECT id FROM items WHERE list_id = ? AND parent_id IS NOT NULL)`,
		`DELETE FROM items WHERE list_id = ? AND parent_id IS NOT NULL`,
		`DELETE FROM items WHERE list_id = ?`,
	}
	args := [][]any{{id, id}, {id}, {id}}
	for i, q := range deletes {
		if _, err := tx.ExecContext(ctx, q, args[i]...); err != nil {
			return fmt.Errorf("failed to delete items: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM lists WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit list deletion: %w", err)
	}
	return nil
}
