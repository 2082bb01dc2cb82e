package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ozcanmiraay/cs162-todo-list-app/internal/api/apperr"
	"github.com/ozcanmiraay/cs162-todo-list-app/internal/api/models"
	"github.com/ozcanmiraay/cs162-todo-list-app/internal/api/repository"
)

// TodoService defines the interface for the hierarchy component. Every
// operation takes the resolved caller id and re-verifies ownership against
// current storage state; nothing is trusted from earlier calls.
type TodoService interface {
	CreateList(ctx context.Context, owner int64, name string) (*models.TodoList, error)
	RenameList(ctx context.Context, owner, listID int64, name string) (*models.TodoList, error)
	DeleteList(ctx context.Context, owner, listID int64) error
	// Lists returns the owner's lists with their items nested down to
	// models.MaxItemDepth levels.
	Lists(ctx context.Context, owner int64) ([]models.ListTree, error)
	AddItem(ctx context.Context, owner, listID int64, description string, parentID *int64) (*models.TodoItem, error)
	// ToggleComplete flips the item's completion flag and returns the new
	// value. Children and parents are unaffected.
	ToggleComplete(ctx context.Context, owner, itemID int64) (*models.TodoItem, error)
	EditDescription(ctx context.Context, owner, itemID int64, description string) (*models.TodoItem, error)
	DeleteItem(ctx context.Context, owner, itemID int64) error
	// MoveItem reassigns a top-level item (and its whole subtree) to
	// another list owned by the same caller.
	MoveItem(ctx context.Context, owner, itemID, targetListID int64) error
}

type todoService struct {
	listRepo repository.ListRepository
	itemRepo repository.ItemRepository
}

// NewTodoService creates a new TodoService.
func NewTodoService(listRepo repository.ListRepository, itemRepo repository.ItemRepository) TodoService {
	return &todoService{listRepo: listRepo, itemRepo: itemRepo}
}

// ownedList loads a list and verifies the caller owns it. This is the single
// authorization guard for list-addressed operations.
func (s *todoService) ownedList(ctx context.Context, owner, listID int64) (*models.TodoList, error) {
	list, err := s.listRepo.GetListByID(ctx, listID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, fmt.Errorf("%w: list %d", apperr.ErrNotFound, listID)
	}
	if list.UserID != owner {
		return nil, fmt.Errorf("%w: list %d", apperr.ErrForbidden, listID)
	}
	return list, nil
}

// ownedItem loads an item and verifies ownership transitively through the
// item's list.
func (s *todoService) ownedItem(ctx context.Context, owner, itemID int64) (*models.TodoItem, error) {
	item, err := s.itemRepo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: item %d", apperr.ErrNotFound, itemID)
	}
	if _, err := s.ownedList(ctx, owner, item.ListID); err != nil {
		return nil, err
	}
	return item, nil
}

// depthOf walks parent references upward from the item, counting levels.
// Top-level items sit at depth 1. The walk is bounded by MaxItemDepth; a
// longer chain means corrupt data and is reported as such.
func (s *todoService) depthOf(ctx context.Context, item *models.TodoItem) (int, error) {
	depth := 1
	current := item
	for current.ParentID != nil {
		depth++
		if depth > models.MaxItemDepth {
			return 0, fmt.Errorf("item %d exceeds maximum depth", item.ID)
		}
		parent, err := s.itemRepo.GetItemByID(ctx, *current.ParentID)
		if err != nil {
			return 0, err
		}
		if parent == nil {
			return 0, fmt.Errorf("item %d references missing parent %d", current.ID, *current.ParentID)
		}
		current = parent
	}
	return depth, nil
}

// CreateList creates a list owned by the caller.
func (s *todoService) CreateList(ctx context.Context, owner int64, name string) (*models.TodoList, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: list name is required", apperr.ErrInvalidInput)
	}

	list := &models.TodoList{Name: name, UserID: owner}
	if err := s.listRepo.CreateList(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// RenameList renames a list the caller owns.
func (s *todoService) RenameList(ctx context.Context, owner, listID int64, name string) (*models.TodoList, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: list name is required", apperr.ErrInvalidInput)
	}

	list, err := s.ownedList(ctx, owner, listID)
	if err != nil {
		return nil, err
	}
	if err := s.listRepo.RenameList(ctx, listID, name); err != nil {
		return nil, err
	}
	list.Name = name
	return list, nil
}

// DeleteList deletes a list the caller owns together with every item in it.
func (s *todoService) DeleteList(ctx context.Context, owner, listID int64) error {
	if _, err := s.ownedList(ctx, owner, listID); err != nil {
		return err
	}
	return s.listRepo.DeleteListTree(ctx, listID)
}

// Lists loads the owner's lists and items flat, then assembles the nested
// trees in memory from a parent-id adjacency map.
func (s *todoService) Lists(ctx context.Context, owner int64) ([]models.ListTree, error) {
	lists, err := s.listRepo.GetListsByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	listIDs := make([]int64, len(lists))
	for i, l := range lists {
		listIDs[i] = l.ID
	}
	items, err := s.itemRepo.GetItemsByLists(ctx, listIDs)
	if err != nil {
		return nil, err
	}

	childrenOf := make(map[int64][]models.TodoItem)
	rootsOf := make(map[int64][]models.TodoItem)
	for _, item := range items {
		if item.ParentID == nil {
			rootsOf[item.ListID] = append(rootsOf[item.ListID], item)
		} else {
			childrenOf[*item.ParentID] = append(childrenOf[*item.ParentID], item)
		}
	}

	trees := make([]models.ListTree, 0, len(lists))
	for _, list := range lists {
		tree := models.ListTree{
			ID:    list.ID,
			Name:  list.Name,
			Items: buildForest(rootsOf[list.ID], childrenOf, 1),
		}
		trees = append(trees, tree)
	}
	return trees, nil
}

// buildForest nests items recursively. Recursion is bounded by MaxItemDepth
// regardless of what the adjacency map contains.
func buildForest(items []models.TodoItem, childrenOf map[int64][]models.TodoItem, depth int) []models.ItemTree {
	forest := make([]models.ItemTree, 0, len(items))
	for _, item := range items {
		node := models.ItemTree{
			ID:          item.ID,
			Description: item.Description,
			Complete:    item.Complete,
			ParentID:    item.ParentID,
			Children:    []models.ItemTree{},
		}
		if depth < models.MaxItemDepth {
			node.Children = buildForest(childrenOf[item.ID], childrenOf, depth+1)
		}
		forest = append(forest, node)
	}
	return forest
}

// AddItem adds an item to a list the caller owns, optionally under a parent
// item of the same list. Insertions that would create a fourth level are
// rejected.
func (s *todoService) AddItem(ctx context.Context, owner, listID int64, description string, parentID *int64) (*models.TodoItem, error) {
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("%w: description is required", apperr.ErrInvalidInput)
	}

	if _, err := s.ownedList(ctx, owner, listID); err != nil {
		return nil, err
	}

	if parentID != nil {
		parent, err := s.itemRepo.GetItemByID(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, fmt.Errorf("%w: parent item %d", apperr.ErrNotFound, *parentID)
		}
		if parent.ListID != listID {
			return nil, fmt.Errorf("%w: parent item belongs to a different list", apperr.ErrInvalidState)
		}
		depth, err := s.depthOf(ctx, parent)
		if err != nil {
			return nil, err
		}
		if depth >= models.MaxItemDepth {
			return nil, fmt.Errorf("%w: maximum hierarchy depth (%d) reached", apperr.ErrDepthExceeded, models.MaxItemDepth)
		}
	}

	item := &models.TodoItem{
		Description: description,
		ListID:      listID,
		ParentID:    parentID,
	}
	if err := s.itemRepo.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// ToggleComplete flips the item's completion flag.
func (s *todoService) ToggleComplete(ctx context.Context, owner, itemID int64) (*models.TodoItem, error) {
	item, err := s.ownedItem(ctx, owner, itemID)
	if err != nil {
		return nil, err
	}

	item.Complete = !item.Complete
	if err := s.itemRepo.SetComplete(ctx, itemID, item.Complete); err != nil {
		return nil, err
	}
	return item, nil
}

// EditDescription replaces the item's description.
func (s *todoService) EditDescription(ctx context.Context, owner, itemID int64, description string) (*models.TodoItem, error) {
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("%w: description is required", apperr.ErrInvalidInput)
	}

	item, err := s.ownedItem(ctx, owner, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.itemRepo.UpdateDescription(ctx, itemID, description); err != nil {
		return nil, err
	}
	item.Description = description
	return item, nil
}

// DeleteItem deletes the item and its whole subtree.
func (s *todoService) DeleteItem(ctx context.Context, owner, itemID int64) error {
	if _, err := s.ownedItem(ctx, owner, itemID); err != nil {
		return err
	}
	return s.itemRepo.DeleteItemTree(ctx, itemID)
}

// MoveItem moves a top-level item to another list owned by the same caller.
// The item's descendants follow it, so every item in the subtree keeps
// referencing the list its parent belongs to.
func (s *todoService) MoveItem(ctx context.Context, owner, itemID, targetListID int64) error {
	item, err := s.ownedItem(ctx, owner, itemID)
	if err != nil {
		return err
	}
	if item.ParentID != nil {
		return fmt.Errorf("%w: only top-level items can be moved", apperr.ErrInvalidState)
	}
	if _, err := s.ownedList(ctx, owner, targetListID); err != nil {
		return err
	}
	if item.ListID == targetListID {
		return nil
	}
	return s.itemRepo.MoveItemTree(ctx, itemID, targetListID)
}
