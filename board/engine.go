package board

import (
	log "github.com/sirupsen/logrus"

	"taskboard/domain"
)

// Move relocates a task to the target board, appending it to the end of the
// target's list. Entering done marks the task completed and records the
// source board in the origin table unless an entry already exists (first
// write wins). Leaving done clears the completed flag and drops the origin
// entry. Unknown ids and unknown boards are silent no-ops.
func (s *Store) Move(id string, target domain.Board) bool {
	if !target.Valid() {
		s.logger.WithFields(log.Fields{"task": id, "target": target}).Warn("move to unknown board")
		return false
	}

	s.mu.Lock()
	if !s.moveLocked(id, target) {
		s.mu.Unlock()
		return false
	}
	snap := s.stateLocked()
	s.mu.Unlock()

	s.commit(snap)
	return true
}

// Check is the checkbox affordance: it records the task's current board as
// its origin (unless one is already recorded) and moves it to done.
func (s *Store) Check(id string) bool {
	s.mu.Lock()
	src, _, ok := s.locateLocked(id)
	if !ok {
		s.mu.Unlock()
		return false
	}
	if _, exists := s.origins[id]; !exists {
		s.origins[id] = src
	}
	s.moveLocked(id, domain.BoardDone)
	snap := s.stateLocked()
	s.mu.Unlock()

	s.commit(snap)
	return true
}

// Uncheck restores a task to its recorded origin board, defaulting to todo
// when no origin is known, and removes the origin entry.
func (s *Store) Uncheck(id string) bool {
	s.mu.Lock()
	if _, _, ok := s.locateLocked(id); !ok {
		s.mu.Unlock()
		return false
	}
	origin, ok := s.origins[id]
	if !ok {
		origin = domain.BoardTodo
	}
	s.moveLocked(id, origin)
	delete(s.origins, id)
	snap := s.stateLocked()
	s.mu.Unlock()

	s.commit(snap)
	return true
}

func (s *Store) moveLocked(id string, target domain.Board) bool {
	src, idx, ok := s.locateLocked(id)
	if !ok {
		return false
	}
	t := s.lists[src][idx]
	s.lists[src] = append(s.lists[src][:idx], s.lists[src][idx+1:]...)

	if target == domain.BoardDone {
		t.Completed = true
		if _, exists := s.origins[id]; !exists {
			s.origins[id] = src
		}
	} else {
		t.Completed = false
		if src == domain.BoardDone {
			delete(s.origins, id)
		}
	}

	t.Board = target
	s.lists[target] = append(s.lists[target], t)
	return true
}
