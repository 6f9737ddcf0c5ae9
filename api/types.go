package api

import (
	"context"
	"iter"

	"taskboard/domain"
)

const postCommandMaxSize = 64 * 1024 // 64 KiB

// Boards is the task-store command surface the handlers drive. Mutations run
// synchronously to completion before the call returns.
type Boards interface {
	Create(content string, tags []string) (domain.Task, bool)
	Delete(id string) bool
	Move(id string, target domain.Board) bool
	Check(id string) bool
	Uncheck(id string) bool
	Reorder(b domain.Board, ids []string) bool
	Tasks(b domain.Board) []domain.Task
	Query(b domain.Board, search string) iter.Seq[domain.Task]
	State() domain.State
}

// Dragger is the drag-session surface.
type Dragger interface {
	Begin(taskID string) bool
	Hover(b domain.Board, pointerY float64, rows []domain.DragRow) (int, bool)
	Drop(b domain.Board) bool
	Cancel()
}

// Authenticator is implemented by types able to extract user IDs from headers.
type Authenticator interface {
	UserIDFromAuthHeader(string) (string, error)
}

// Deduper prevents reprocessing of duplicate commands.
type Deduper interface {
	// AddMany records the idempotency keys and reports which were newly added.
	AddMany(ctx context.Context, userID string, keys []string) ([]bool, error)
	// Remove deletes a previously added key.
	Remove(ctx context.Context, userID, key string) error
}

// POST /api/commands response body.
type postCommandResponse struct {
	IdempotencyKeys []string `json:"idempotencyKeys,omitempty"`
	Applied         int      `json:"applied"`
	Skipped         int      `json:"skipped,omitempty"`
	Error           string   `json:"error,omitempty"`
}
