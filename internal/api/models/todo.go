package models

// MaxItemDepth is the deepest level an item may occupy. Top-level items sit
// at depth 1, so trees are at most list -> item -> sub-item -> sub-sub-item.
const MaxItemDepth = 3

// TodoList represents a todo list row. A list is owned by exactly one user.
type TodoList struct {
	ID     int64  `db:"id" json:"id"`
	Name   string `db:"name" json:"name"`
	UserID int64  `db:"user_id" json:"-"`
}

// TodoItem represents a todo item row. ParentID is nil for top-level items;
// a non-nil ParentID always references an item in the same list.
type TodoItem struct {
	ID          int64  `db:"id" json:"id"`
	Description string `db:"description" json:"description"`
	Complete    bool   `db:"complete" json:"complete"`
	ListID      int64  `db:"list_id" json:"-"`
	ParentID    *int64 `db:"parent_id" json:"parent_id"`
}

// ItemTree is the nested JSON form of an item and its children.
type ItemTree struct {
	ID          int64      `json:"id"`
	Description string     `json:"description"`
	Complete    bool       `json:"complete"`
	ParentID    *int64     `json:"parent_id"`
	Children    []ItemTree `json:"children"`
}

// ListTree is the nested JSON form of a list with its top-level items.
type ListTree struct {
	ID    int64      `json:"id"`
	Name  string     `json:"name"`
	Items []ItemTree `json:"items"`
}

// CreateListRequest names a new list.
type CreateListRequest struct {
	Name string `json:"name" validate:"required"`
}

// RenameListRequest renames an existing list.
type RenameListRequest struct {
	Name string `json:"name" validate:"required"`
}

// NewItemRequest adds an item to a list, optionally under a parent item.
type NewItemRequest struct {
	Description string `json:"description" validate:"required"`
	ParentID    *int64 `json:"parent_id"`
}

// EditItemRequest replaces an item's description.
type EditItemRequest struct {
	Description string `json:"description" validate:"required"`
}

// MoveItemRequest moves a top-level item to another list.
type MoveItemRequest struct {
	TargetListID int64 `json:"target_list_id" validate:"required"`
}
