package board

import (
	"sync"

	"taskboard/domain"

	log "github.com/sirupsen/logrus"
)

// DragCoordinator tracks the single in-flight drag gesture. Hover events only
// reshape a session-local visual order for live feedback; the store is
// touched exactly once, on drop. Cancel discards the session with no
// mutation, and any terminal event returns the coordinator to idle.
type DragCoordinator struct {
	mu      sync.Mutex
	store   *Store
	logger  *log.Logger
	session *dragSession
}

type dragSession struct {
	taskID string
	source domain.Board
	// visual holds the live-feedback order per hovered board. Only the
	// source board's entry is ever committed.
	visual map[domain.Board][]string
}

func NewDragCoordinator(store *Store, logger *log.Logger) *DragCoordinator {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &DragCoordinator{store: store, logger: logger}
}

// Begin starts a drag session for the task. A session already in flight is
// overwritten; a single pointer cannot produce two concurrent drags, so an
// overlap means the previous gesture's end event was lost.
func (d *DragCoordinator) Begin(taskID string) bool {
	source, ok := d.store.BoardOf(taskID)
	if !ok {
		return false
	}

	d.mu.Lock()
	if d.session != nil {
		d.logger.WithFields(log.Fields{"task": d.session.taskID, "next": taskID}).Warn("drag began while another was active; replacing session")
	}
	d.session = &dragSession{
		taskID: taskID,
		source: source,
		visual: map[domain.Board][]string{source: d.orderOf(source)},
	}
	d.mu.Unlock()
	return true
}

// Hover records live drag feedback over a board: the insertion index is the
// position of the first row whose vertical midpoint lies below the pointer,
// and the dragged task is slotted there in the session's visual order for
// that board. Rows are the board's currently rendered rows, top to bottom,
// excluding the dragged task itself. Returns the computed index.
func (d *DragCoordinator) Hover(b domain.Board, pointerY float64, rows []domain.DragRow) (int, bool) {
	if !b.Valid() {
		return 0, false
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.session == nil {
		return 0, false
	}

	idx := insertionIndex(pointerY, rows)
	order := make([]string, 0, len(rows)+1)
	for _, r := range rows {
		if r.ID == d.session.taskID {
			continue
		}
		order = append(order, r.ID)
	}
	if idx > len(order) {
		idx = len(order)
	}
	order = append(order[:idx], append([]string{d.session.taskID}, order[idx:]...)...)
	d.session.visual[b] = order
	return idx, true
}

// Drop ends the session. A drop on the source board commits the visual order
// captured during hovering as a reorder; a drop on any other board commits a
// cross-board move, which appends to the end of the target regardless of
// hover feedback. Dropping on an unknown board is a cancel.
func (d *DragCoordinator) Drop(b domain.Board) bool {
	d.mu.Lock()
	session := d.session
	d.session = nil
	d.mu.Unlock()

	if session == nil {
		return false
	}
	if !b.Valid() {
		return false
	}

	if b == session.source {
		order, ok := session.visual[b]
		if !ok {
			order = d.orderOf(b)
		}
		return d.store.Reorder(b, order)
	}
	return d.store.Move(session.taskID, b)
}

// Cancel aborts the in-flight drag with no store mutation.
func (d *DragCoordinator) Cancel() {
	d.mu.Lock()
	d.session = nil
	d.mu.Unlock()
}

// Dragging reports the active session, if any.
func (d *DragCoordinator) Dragging() (taskID string, source domain.Board, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.session == nil {
		return "", "", false
	}
	return d.session.taskID, d.session.source, true
}

func (d *DragCoordinator) orderOf(b domain.Board) []string {
	tasks := d.store.Tasks(b)
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids
}

// insertionIndex returns the slot the pointer is over: the index of the first
// row whose midpoint is below the pointer, or one past the last row.
func insertionIndex(pointerY float64, rows []domain.DragRow) int {
	for i, r := range rows {
		if pointerY < r.Top+r.Height/2 {
			return i
		}
	}
	return len(rows)
}
