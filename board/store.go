package board

import (
	"iter"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"taskboard/domain"
)

// Saver receives the latest full state after every successful mutation.
// Implementations must not block the caller; persistence is best-effort and a
// failed write is the saver's problem to log, not the store's.
type Saver interface {
	Save(s domain.State)
}

// Notifier is told that board contents changed so attached views can re-render.
type Notifier interface {
	Notify()
}

// Store owns the authoritative board-to-task mapping and the origin table.
// Every mutation runs to completion under a single mutex, is handed to the
// saver as a full snapshot, and then triggers a change notification.
type Store struct {
	mu      sync.Mutex
	lists   map[domain.Board][]domain.Task
	origins map[string]domain.Board

	saver    Saver
	notifier Notifier
	logger   *log.Logger

	now   func() time.Time
	newID func() string
}

// NewStore builds a store from a previously persisted state. The state is
// normalized defensively: unknown boards are dropped, each task's board field
// and completed flag are forced to match the list holding it, and origin
// entries for tasks that are not currently in done are discarded.
func NewStore(initial domain.State, saver Saver, notifier Notifier, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.StandardLogger()
	}
	s := &Store{
		lists:    make(map[domain.Board][]domain.Task, 3),
		origins:  make(map[string]domain.Board),
		saver:    saver,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	seen := make(map[string]struct{})
	for _, b := range domain.Boards() {
		list := make([]domain.Task, 0, len(initial.Boards[b]))
		for _, t := range initial.Boards[b] {
			if t.ID == "" {
				continue
			}
			if _, dup := seen[t.ID]; dup {
				logger.WithFields(log.Fields{"task": t.ID, "board": b}).Warn("dropping duplicate task from persisted state")
				continue
			}
			seen[t.ID] = struct{}{}
			t.Board = b
			t.Completed = b == domain.BoardDone
			list = append(list, t)
		}
		s.lists[b] = list
	}
	for id, origin := range initial.Origins {
		if !origin.Valid() {
			continue
		}
		if b, _, ok := s.locateLocked(id); ok && b == domain.BoardDone {
			s.origins[id] = origin
		}
	}
	return s
}

// Create appends a new task to the todo board. Blank content is a silent
// no-op. Tags are kept in the order given, deduplicated.
func (s *Store) Create(content string, tags []string) (domain.Task, bool) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Task{}, false
	}
	t := domain.Task{
		ID:        s.newID(),
		Content:   content,
		Tags:      dedupeTags(tags),
		Board:     domain.BoardTodo,
		CreatedAt: s.now().UTC(),
	}

	s.mu.Lock()
	s.lists[domain.BoardTodo] = append(s.lists[domain.BoardTodo], t)
	snap := s.stateLocked()
	s.mu.Unlock()

	s.commit(snap)
	if len(t.Tags) > 0 {
		tags := make([]string, len(t.Tags))
		copy(tags, t.Tags)
		t.Tags = tags
	}
	return t, true
}

// Delete removes the task from whichever board holds it and purges its origin
// entry. Deleting an unknown id changes nothing.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	b, idx, ok := s.locateLocked(id)
	if !ok {
		s.mu.Unlock()
		return false
	}
	s.lists[b] = append(s.lists[b][:idx], s.lists[b][idx+1:]...)
	delete(s.origins, id)
	snap := s.stateLocked()
	s.mu.Unlock()

	s.commit(snap)
	return true
}

// Reorder replaces the board's list with the tasks named by ids, in that
// order. Ids that are not current members are ignored and current members not
// named are appended in their previous relative order; either case is a
// caller bug and is logged as such rather than silently losing tasks.
func (s *Store) Reorder(b domain.Board, ids []string) bool {
	if !b.Valid() {
		s.logger.WithField("board", b).Warn("reorder for unknown board")
		return false
	}

	s.mu.Lock()
	current := s.lists[b]
	byID := make(map[string]domain.Task, len(current))
	for _, t := range current {
		byID[t.ID] = t
	}
	next := make([]domain.Task, 0, len(current))
	used := make(map[string]struct{}, len(ids))
	unknown := 0
	for _, id := range ids {
		if _, dup := used[id]; dup {
			continue
		}
		t, ok := byID[id]
		if !ok {
			unknown++
			continue
		}
		used[id] = struct{}{}
		next = append(next, t)
	}
	omitted := 0
	for _, t := range current {
		if _, ok := used[t.ID]; !ok {
			next = append(next, t)
			omitted++
		}
	}
	s.lists[b] = next
	snap := s.stateLocked()
	s.mu.Unlock()

	if unknown > 0 || omitted > 0 {
		s.logger.WithFields(log.Fields{
			"board":   b,
			"unknown": unknown,
			"omitted": omitted,
		}).Warn("board reorder did not match current membership")
	}

	s.commit(snap)
	return true
}

// Query returns a restartable, read-only view of the board filtered by
// search. A task matches when its content or any tag contains search as a
// case-insensitive substring; an empty search matches everything. Each range
// over the returned sequence observes the store's order at that moment.
func (s *Store) Query(b domain.Board, search string) iter.Seq[domain.Task] {
	needle := strings.ToLower(search)
	return func(yield func(domain.Task) bool) {
		for _, t := range s.Tasks(b) {
			if !taskMatches(t, needle) {
				continue
			}
			if !yield(t) {
				return
			}
		}
	}
}

// Tasks returns a copy of the board's ordered task list.
func (s *Store) Tasks(b domain.Board) []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.lists[b]
	out := make([]domain.Task, len(list))
	copy(out, list)
	for i := range out {
		if len(out[i].Tags) > 0 {
			tags := make([]string, len(out[i].Tags))
			copy(tags, out[i].Tags)
			out[i].Tags = tags
		}
	}
	return out
}

// State returns a deep copy of the full board state and origin table.
func (s *Store) State() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// BoardOf reports which board currently holds the task.
func (s *Store) BoardOf(id string) (domain.Board, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, _, ok := s.locateLocked(id)
	return b, ok
}

// Origin reports the recorded pre-completion board for a task, if any.
func (s *Store) Origin(id string) (domain.Board, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.origins[id]
	return b, ok
}

func (s *Store) locateLocked(id string) (domain.Board, int, bool) {
	for _, b := range domain.Boards() {
		for i, t := range s.lists[b] {
			if t.ID == id {
				return b, i, true
			}
		}
	}
	return "", 0, false
}

func (s *Store) stateLocked() domain.State {
	st := domain.State{Boards: s.lists, Origins: s.origins}
	return st.Clone()
}

func (s *Store) commit(snap domain.State) {
	if s.saver != nil {
		s.saver.Save(snap)
	}
	if s.notifier != nil {
		s.notifier.Notify()
	}
}

func taskMatches(t domain.Task, needle string) bool {
	if needle == "" {
		return true
	}
	if strings.Contains(strings.ToLower(t.Content), needle) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

func dedupeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
