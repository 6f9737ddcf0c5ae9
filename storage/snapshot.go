package storage

import (
	"context"

	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"

	"taskboard/domain"
)

// Persisted entries. Tasks holds the board-to-list mapping, origins the
// completed-task origin table. The two are independent keys; each carries a
// versioned envelope so the shape can be migrated later.
const (
	TasksKey   = "tasks"
	OriginsKey = "taskOrigins"

	SnapshotVersion = 1
)

type tasksEnvelope struct {
	Version int                            `json:"version"`
	Boards  map[domain.Board][]domain.Task `json:"boards"`
}

type originsEnvelope struct {
	Version int                     `json:"version"`
	Origins map[string]domain.Board `json:"origins"`
}

// LoadState reads both entries and assembles a State. Absent or unparsable
// values degrade to empty defaults so startup never fails on corrupt
// persisted data. Pre-versioning payloads (a bare board map / a bare origin
// map) are still accepted.
func LoadState(ctx context.Context, kv KV, logger *log.Logger) domain.State {
	if logger == nil {
		logger = log.StandardLogger()
	}
	state := domain.EmptyState()

	if raw, ok := loadRaw(ctx, kv, TasksKey, logger); ok {
		if boards, ok := decodeBoards(raw); ok {
			for _, b := range domain.Boards() {
				if list := boards[b]; list != nil {
					state.Boards[b] = list
				}
			}
		} else {
			logger.WithField("key", TasksKey).Warn("unparsable persisted tasks; starting from empty boards")
		}
	}

	if raw, ok := loadRaw(ctx, kv, OriginsKey, logger); ok {
		if origins, ok := decodeOrigins(raw); ok {
			state.Origins = origins
		} else {
			logger.WithField("key", OriginsKey).Warn("unparsable persisted origins; starting from empty table")
		}
	}

	return state
}

// SaveState writes both entries best-effort. Failures are logged and dropped;
// the in-memory state stays authoritative for the session.
func SaveState(ctx context.Context, kv KV, state domain.State, logger *log.Logger) {
	if logger == nil {
		logger = log.StandardLogger()
	}

	tasks, err := sonic.MarshalString(tasksEnvelope{Version: SnapshotVersion, Boards: state.Boards})
	if err != nil {
		logger.Errorf("encode tasks snapshot: %v", err)
	} else if err := kv.Save(ctx, TasksKey, tasks); err != nil {
		logger.Errorf("persist %s: %v", TasksKey, err)
	}

	origins, err := sonic.MarshalString(originsEnvelope{Version: SnapshotVersion, Origins: state.Origins})
	if err != nil {
		logger.Errorf("encode origins snapshot: %v", err)
	} else if err := kv.Save(ctx, OriginsKey, origins); err != nil {
		logger.Errorf("persist %s: %v", OriginsKey, err)
	}
}

func loadRaw(ctx context.Context, kv KV, key string, logger *log.Logger) (string, bool) {
	raw, ok, err := kv.Load(ctx, key)
	if err != nil {
		logger.WithField("key", key).Errorf("load persisted state: %v", err)
		return "", false
	}
	return raw, ok
}

func decodeBoards(raw string) (map[domain.Board][]domain.Task, bool) {
	var env tasksEnvelope
	if err := sonic.UnmarshalString(raw, &env); err == nil && env.Boards != nil {
		return env.Boards, true
	}
	// Legacy shape: the board map stored directly, no envelope.
	var legacy map[domain.Board][]domain.Task
	if err := sonic.UnmarshalString(raw, &legacy); err == nil && legacy != nil {
		if _, ok := legacy[domain.BoardTodo]; ok {
			return legacy, true
		}
	}
	return nil, false
}

func decodeOrigins(raw string) (map[string]domain.Board, bool) {
	var env originsEnvelope
	if err := sonic.UnmarshalString(raw, &env); err == nil && env.Origins != nil {
		return env.Origins, true
	}
	// Legacy shape: the origin map stored directly, no envelope.
	var legacy map[string]domain.Board
	if err := sonic.UnmarshalString(raw, &legacy); err == nil && legacy != nil {
		return legacy, true
	}
	return nil, false
}
