package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ozcanmiraay/cs162-todo-list-app/internal/api/models"
)

// ItemRepository defines the interface for todo item data operations.
type ItemRepository interface {
	CreateItem(ctx context.Context, item *models.TodoItem) error
	GetItemByID(ctx context.Context, id int64) (*models.TodoItem, error)
	GetItemsByLists(ctx context.Context, listIDs []int64) ([]models.TodoItem, error)
	SetComplete(ctx context.Context, id int64, complete bool) error
	UpdateDescription(ctx context.Context, id int64, description string) error
	// DeleteItemTree removes the item and all of its descendants, children
	// before parents, in a single transaction.
	DeleteItemTree(ctx context.Context, id int64) error
	// MoveItemTree reassigns the item and all of its descendants to the
	// target list in a single transaction.
	MoveItemTree(ctx context.Context, id int64, targetListID int64) error
}

type sqliteItemRepository struct {
	db *sqlx.DB
}

// NewItemRepository creates a new SQLite-based ItemRepository.
func NewItemRepository(db *sqlx.DB) ItemRepository {
	return &sqliteItemRepository{db: db}
}

// CreateItem inserts a new item and populates its ID.
func (r *sqliteItemRepository) CreateItem(ctx context.Context, item *models.TodoItem) error {
	ctx, span := tracer.Start(ctx, "ItemRepository.CreateItem")
	defer span.End()

	query := `INSERT INTO items (description, complete, list_id, parent_id) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, item.Description, item.Complete, item.ListID, item.ParentID)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	item.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read new item id: %w", err)
	}
	return nil
}

// GetItemByID retrieves an item by its primary key, (nil, nil) if absent.
func (r *sqliteItemRepository) GetItemByID(ctx context.Context, id int64) (*models.TodoItem, error) {
	ctx, span := tracer.Start(ctx, "ItemRepository.GetItemByID")
	defer span.End()

	var item models.TodoItem
	query := `SELECT id, description, complete, list_id, parent_id FROM items WHERE id = ?`
	err := r.db.GetContext(ctx, &item, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get item by id: %w", err)
	}
	return &item, nil
}

// GetItemsByLists retrieves all items of the given lists as flat rows. The
// caller assembles the tree; the row set is complete for every depth.
func (r *sqliteItemRepository) GetItemsByLists(ctx context.Context, listIDs []int64) ([]models.TodoItem, error) {
	ctx, span := tracer.Start(ctx, "ItemRepository.GetItemsByLists")
	defer span.End()

	if len(listIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(
		`SELECT id, description, complete, list_id, parent_id FROM items WHERE list_id IN (?)`, listIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build items query: %w", err)
	}

	var items []models.TodoItem
	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get items by lists: %w", err)
	}
	return items, nil
}

// SetComplete updates the completion flag of a single item. No propagation
// to parents or children.
func (r *sqliteItemRepository) SetComplete(ctx context.Context, id int64, complete bool) error {
	ctx, span := tracer.Start(ctx, "ItemRepository.SetComplete")
	defer span.End()

	query := `UPDATE items SET complete = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, complete, id); err != nil {
		return fmt.Errorf("failed to set item completion: %w", err)
	}
	return nil
}

// UpdateDescription replaces the item's description.
func (r *sqliteItemRepository) UpdateDescription(ctx context.Context, id int64, description string) error {
	ctx, span := tracer.Start(ctx, "ItemRepository.UpdateDescription")
	defer span.End()

	query := `UPDATE items SET description = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, description, id); err != nil {
		return fmt.Errorf("failed to update item description: %w", err)
	}
	return nil
}

// DeleteItemTree collects the item's descendants inside the transaction and
// deletes them post-order, then the item itself.
func (r *sqliteItemRepository) DeleteItemTree(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "ItemRepository.DeleteItemTree")
	defer span.End()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	levels, err := collectSubtreeLevels(ctx, tx, id)
	if err != nil {
		return err
	}

	// Deepest level first so no child ever outlives its parent.
	for i := len(levels) - 1; i >= 0; i-- {
		query, args, err := sqlx.In(`DELETE FROM items WHERE id IN (?)`, levels[i])
		if err != nil {
			return fmt.Errorf("failed to build delete query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
			return fmt.Errorf("failed to delete item subtree: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit item deletion: %w", err)
	}
	return nil
}

// MoveItemTree reassigns the item and every descendant to targetListID so
// the same-list invariant between parents and children keeps holding.
func (r *sqliteItemRepository) MoveItemTree(ctx context.Context, id int64, targetListID int64) error {
	ctx, span := tracer.Start(ctx, "ItemRepository.MoveItemTree")
	defer span.End()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	levels, err := collectSubtreeLevels(ctx, tx, id)
	if err != nil {
		return err
	}

	for _, level := range levels {
		query, args, err := sqlx.In(`UPDATE items SET list_id = ? WHERE id IN (?)`, targetListID, level)
		if err != nil {
			return fmt.Errorf("failed to build move query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
			return fmt.Errorf("failed to move item subtree: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit item move: %w", err)
	}
	return nil
}

// collectSubtreeLevels gathers the ids of an item's subtree level by level,
// starting with the item itself. Trees never exceed models.MaxItemDepth
// levels, so the fan-out is bounded.
func collectSubtreeLevels(ctx context.Context, tx *sqlx.Tx, id int64) ([][]int64, error) {
	levels := [][]int64{{id}}
	frontier := []int64{id}

	for range models.MaxItemDepth - 1 {
		query, args, err := sqlx.In(`SELECT id FROM items WHERE parent_id IN (?)`, frontier)
		if err != nil {
			return nil, fmt.Errorf("failed to build children query: %w", err)
		}

		var children []int64
		if err := tx.SelectContext(ctx, &children, tx.Rebind(query), args...); err != nil {
			return nil, fmt.Errorf("failed to collect children: %w", err)
		}
		if len(children) == 0 {
			break
		}
		levels = append(levels, children)
		frontier = children
	}

	return levels, nil
}
