package domain

import "github.com/bytedance/sonic"

// Command types accepted on the intent surface.
const (
	TaskCreate   = "task-create"
	TaskDelete   = "task-delete"
	TaskMove     = "task-move"
	TaskCheck    = "task-check"
	TaskUncheck  = "task-uncheck"
	BoardReorder = "board-reorder"
	DragBegin    = "drag-begin"
	DragHover    = "drag-hover"
	DragDrop     = "drag-drop"
	DragCancel   = "drag-cancel"
)

// Command represents a single write intent raised by the view layer.
type Command struct {
	// ID mirrors the idempotency key once the server has assigned one.
	ID             string                 `json:"id,omitempty"`
	IdempotencyKey string                 `json:"idempotencyKey"`
	Type           string                 `json:"type"`
	Data           sonic.NoCopyRawMessage `json:"data,omitempty"`
	Timestamp      int64                  `json:"timestamp"`
}

type TaskCreateData struct {
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

type TaskDeleteData struct {
	ID string `json:"id"`
}

type TaskMoveData struct {
	ID     string `json:"id"`
	Target Board  `json:"target"`
}

// TaskToggleData carries the payload for task-check and task-uncheck.
type TaskToggleData struct {
	ID string `json:"id"`
}

type BoardReorderData struct {
	Board Board    `json:"board"`
	IDs   []string `json:"ids"`
}

type DragBeginData struct {
	ID string `json:"id"`
}

// DragRow describes the rendered geometry of one task row inside a board
// column, in the same vertical coordinate space as the pointer.
type DragRow struct {
	ID     string  `json:"id"`
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
}

type DragHoverData struct {
	Board    Board     `json:"board"`
	PointerY float64   `json:"pointerY"`
	Rows     []DragRow `json:"rows"`
}

type DragDropData struct {
	Board Board `json:"board"`
}
