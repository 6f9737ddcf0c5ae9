package board

import (
	"testing"

	"taskboard/domain"
)

func collect(s *Store, b domain.Board, search string) []domain.Task {
	var out []domain.Task
	for t := range s.Query(b, search) {
		out = append(out, t)
	}
	return out
}

func TestQueryEmptySearchReturnsFullBoardInOrder(t *testing.T) {
	s, _ := newTestStore(t)
	a, _ := s.Create("Buy milk", nil)
	b, _ := s.Create("Walk dog", nil)

	got := collect(s, domain.BoardTodo, "")
	if len(got) != 2 || got[0].ID != a.ID || got[1].ID != b.ID {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestQueryMatchesContentCaseInsensitively(t *testing.T) {
	s, _ := newTestStore(t)
	s.Create("Buy MILK", nil)
	s.Create("Walk dog", nil)

	got := collect(s, domain.BoardTodo, "milk")
	if len(got) != 1 || got[0].Content != "Buy MILK" {
		t.Fatalf("unexpected result: %+v", got)
	}
	got = collect(s, domain.BoardTodo, "WALK")
	if len(got) != 1 || got[0].Content != "Walk dog" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestQueryMatchesTags(t *testing.T) {
	s, _ := newTestStore(t)
	s.Create("Buy milk", []string{"Errands"})
	s.Create("Pay rent", []string{"Finance"})

	got := collect(s, domain.BoardTodo, "errand")
	if len(got) != 1 || got[0].Content != "Buy milk" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestQueryPreservesRelativeOrder(t *testing.T) {
	s, _ := newTestStore(t)
	a, _ := s.Create("alpha one", nil)
	s.Create("beta", nil)
	c, _ := s.Create("alpha two", nil)

	got := collect(s, domain.BoardTodo, "alpha")
	if len(got) != 2 || got[0].ID != a.ID || got[1].ID != c.ID {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestQueryNoMatches(t *testing.T) {
	s, _ := newTestStore(t)
	s.Create("Buy milk", nil)

	if got := collect(s, domain.BoardTodo, "zzz"); len(got) != 0 {
		t.Fatalf("expected no matches, got %+v", got)
	}
}

func TestQueryIsRestartable(t *testing.T) {
	s, _ := newTestStore(t)
	s.Create("Buy milk", nil)
	s.Create("Buy bread", nil)

	seq := s.Query(domain.BoardTodo, "buy")

	first := 0
	for range seq {
		first++
		break // abandon mid-iteration
	}
	second := 0
	for range seq {
		second++
	}
	if second != 2 {
		t.Fatalf("expected a fresh pass to yield 2 tasks, got %d", second)
	}

	// A restarted pass observes later mutations.
	s.Create("Buy eggs", nil)
	third := 0
	for range seq {
		third++
	}
	if third != 3 {
		t.Fatalf("expected restarted pass to see new task, got %d", third)
	}
}

func TestQueryDoesNotExposeInternalState(t *testing.T) {
	s, _ := newTestStore(t)
	s.Create("Buy milk", []string{"Errands"})

	for task := range s.Query(domain.BoardTodo, "") {
		task.Content = "mutated"
		task.Tags[0] = "mutated"
	}

	got := s.Tasks(domain.BoardTodo)
	if got[0].Content != "Buy milk" {
		t.Fatal("query leaked a mutable reference to task content")
	}
}
