package domain

import "time"

// Board identifies one of the three fixed workflow stages.
type Board string

const (
	BoardTodo  Board = "todo"
	BoardDoing Board = "doing"
	BoardDone  Board = "done"
)

// Boards lists the workflow stages in display order.
func Boards() []Board {
	return []Board{BoardTodo, BoardDoing, BoardDone}
}

// Valid reports whether b names a known workflow stage.
func (b Board) Valid() bool {
	switch b {
	case BoardTodo, BoardDoing, BoardDone:
		return true
	}
	return false
}

// Task represents a single board item.
type Task struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	Board     Board     `json:"board"`
	Completed bool      `json:"completed,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
