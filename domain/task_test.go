package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
)

func TestTaskMarshalOmitsCompletedWhenFalse(t *testing.T) {
	task := Task{ID: "t1", Content: "Buy milk", Tags: []string{"Personal"}, Board: BoardTodo}

	payload, err := sonic.Marshal(task)
	if err != nil {
		t.Fatalf("marshal task: %v", err)
	}
	if strings.Contains(string(payload), "completed") {
		t.Fatalf("expected completed to be omitted, got %s", payload)
	}

	task.Completed = true
	payload, err = sonic.Marshal(task)
	if err != nil {
		t.Fatalf("marshal completed task: %v", err)
	}
	if !strings.Contains(string(payload), "\"completed\":true") {
		t.Fatalf("expected completed field, got %s", payload)
	}
}

func TestTaskMarshalUsesRFC3339Timestamps(t *testing.T) {
	created := time.Date(2026, 8, 25, 10, 30, 0, 0, time.UTC)
	task := Task{ID: "t1", Content: "Buy milk", Board: BoardTodo, CreatedAt: created}

	payload, err := sonic.Marshal(task)
	if err != nil {
		t.Fatalf("marshal task: %v", err)
	}
	if !strings.Contains(string(payload), "2026-08-25T10:30:00Z") {
		t.Fatalf("expected RFC3339 createdAt, got %s", payload)
	}
}

func TestBoardValid(t *testing.T) {
	for _, b := range Boards() {
		if !b.Valid() {
			t.Fatalf("expected %q to be valid", b)
		}
	}
	if Board("archive").Valid() {
		t.Fatal("expected unknown board to be invalid")
	}
}

func TestEmptyStateHasAllBoards(t *testing.T) {
	s := EmptyState()
	if len(s.Boards) != 3 {
		t.Fatalf("expected 3 boards, got %d", len(s.Boards))
	}
	for _, b := range Boards() {
		list, ok := s.Boards[b]
		if !ok {
			t.Fatalf("missing board %q", b)
		}
		if len(list) != 0 {
			t.Fatalf("expected empty board %q", b)
		}
	}
}

func TestStateCloneIsIndependent(t *testing.T) {
	s := EmptyState()
	s.Boards[BoardTodo] = []Task{{ID: "t1", Content: "a", Tags: []string{"x"}}}
	s.Origins["t1"] = BoardDoing

	c := s.Clone()
	c.Boards[BoardTodo][0].Content = "changed"
	c.Boards[BoardTodo][0].Tags[0] = "changed"
	c.Origins["t1"] = BoardTodo

	if s.Boards[BoardTodo][0].Content != "a" {
		t.Fatal("clone shared task slice with original")
	}
	if s.Boards[BoardTodo][0].Tags[0] != "x" {
		t.Fatal("clone shared tag slice with original")
	}
	if s.Origins["t1"] != BoardDoing {
		t.Fatal("clone shared origin map with original")
	}
}
