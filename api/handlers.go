package api

import (
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"taskboard/domain"
)

// Register wires up all API routes on the provided Echo instance. The broker
// may be nil when no stream endpoint is wanted; the deduper may be nil to
// disable idempotency tracking.
func Register(e *echo.Echo, boards Boards, drag Dragger, auth Authenticator, deduper Deduper, broker *UpdateBroker, logger *log.Logger) {
	e.GET("/api/tasks", getAllTasks(boards, auth))
	e.GET("/api/board/:board/tasks", getBoardTasks(boards, auth, logger))
	e.POST("/api/commands", postCommands(boards, drag, auth, deduper, logger))
	if broker != nil {
		e.GET("/api/stream", streamTasks(boards, auth, broker))
	}
	e.GET("/healthz", healthz())
}

type allTasksResponse struct {
	Boards map[domain.Board][]domain.Task `json:"boards"`
}

type boardTasksResponse struct {
	Tasks []domain.Task `json:"tasks"`
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

func getAllTasks(boards Boards, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := auth.UserIDFromAuthHeader(c.Request().Header.Get("Authorization")); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		return c.JSON(http.StatusOK, allTasksResponse{Boards: boards.State().Boards})
	}
}

func getBoardTasks(boards Boards, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		metrics := newBoardRequestMetrics(logger)
		defer func() {
			metrics.Log("/api/board/:board/tasks", c.Response().Status, err)
		}()

		if _, authErr := auth.UserIDFromAuthHeader(c.Request().Header.Get("Authorization")); authErr != nil {
			metrics.SetErrorStage("auth")
			err = c.String(http.StatusUnauthorized, authErr.Error())
			return err
		}

		b := domain.Board(c.Param("board"))
		if !b.Valid() {
			metrics.SetErrorStage("invalid_board")
			err = c.String(http.StatusBadRequest, "unknown board")
			return err
		}
		search := c.QueryParam("search")
		metrics.SetSearchProvided(search != "")

		fetchStart := time.Now()
		tasks := make([]domain.Task, 0, 8)
		for t := range boards.Query(b, search) {
			tasks = append(tasks, t)
		}
		metrics.ObserveFetch(time.Since(fetchStart))
		metrics.SetTasksReturned(len(tasks))

		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, boardTasksResponse{Tasks: tasks})
		metrics.ObserveEncode(time.Since(encodeStart))
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}

func postCommands(boards Boards, drag Dragger, auth Authenticator, deduper Deduper, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, err := auth.UserIDFromAuthHeader(c.Request().Header.Get("Authorization"))
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}

		lr := io.LimitReader(c.Request().Body, postCommandMaxSize)
		dec := sonic.ConfigStd.NewDecoder(lr)
		dec.DisallowUnknownFields()

		cmds := make([]domain.Command, 0, 4)
		if err := dec.Decode(&cmds); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}

		keys := make([]string, len(cmds))
		for i := range cmds {
			if cmds[i].IdempotencyKey == "" {
				cmds[i].IdempotencyKey = uuid.NewString()
			}
			cmds[i].ID = cmds[i].IdempotencyKey
			cmds[i].Timestamp = nextTimestamp()
			keys[i] = cmds[i].IdempotencyKey
		}

		fresh := make([]bool, len(cmds))
		for i := range fresh {
			fresh[i] = true
		}
		if deduper != nil && len(keys) > 0 {
			added, dedupeErr := deduper.AddMany(ctx, userID, keys)
			if dedupeErr != nil {
				// Dedupe is advisory: prefer applying a possible duplicate
				// over rejecting the batch.
				logger.Warnf("idempotency check failed, applying batch anyway: %v", dedupeErr)
			} else {
				fresh = added
			}
		}

		applied, skipped := 0, 0
		for i := range cmds {
			if !fresh[i] {
				skipped++
				continue
			}
			if applyCommand(boards, drag, cmds[i], logger) {
				applied++
			}
		}

		return c.JSON(http.StatusAccepted, postCommandResponse{
			IdempotencyKeys: keys,
			Applied:         applied,
			Skipped:         skipped,
		})
	}
}

// applyCommand dispatches one intent to the store or drag coordinator.
// Unknown types and malformed payloads are dropped: invalid input is a silent
// no-op for the caller, logged here for diagnostics.
func applyCommand(boards Boards, drag Dragger, cmd domain.Command, logger *log.Logger) bool {
	switch cmd.Type {
	case domain.TaskCreate:
		var data domain.TaskCreateData
		if err := sonic.Unmarshal(cmd.Data, &data); err != nil {
			logger.WithField("type", cmd.Type).Warnf("bad command payload: %v", err)
			return false
		}
		_, ok := boards.Create(data.Content, data.Tags)
		return ok
	case domain.TaskDelete:
		var data domain.TaskDeleteData
		if err := sonic.Unmarshal(cmd.Data, &data); err != nil {
			logger.WithField("type", cmd.Type).Warnf("bad command payload: %v", err)
			return false
		}
		return boards.Delete(data.ID)
	case domain.TaskMove:
		var data domain.TaskMoveData
		if err := sonic.Unmarshal(cmd.Data, &data); err != nil {
			logger.WithField("type", cmd.Type).Warnf("bad command payload: %v", err)
			return false
		}
		return boards.Move(data.ID, data.Target)
	case domain.TaskCheck:
		var data domain.TaskToggleData
		if err := sonic.Unmarshal(cmd.Data, &data); err != nil {
			logger.WithField("type", cmd.Type).Warnf("bad command payload: %v", err)
			return false
		}
		return boards.Check(data.ID)
	case domain.TaskUncheck:
		var data domain.TaskToggleData
		if err := sonic.Unmarshal(cmd.Data, &data); err != nil {
			logger.WithField("type", cmd.Type).Warnf("bad command payload: %v", err)
			return false
		}
		return boards.Uncheck(data.ID)
	case domain.BoardReorder:
		var data domain.BoardReorderData
		if err := sonic.Unmarshal(cmd.Data, &data); err != nil {
			logger.WithField("type", cmd.Type).Warnf("bad command payload: %v", err)
			return false
		}
		return boards.Reorder(data.Board, data.IDs)
	case domain.DragBegin:
		var data domain.DragBeginData
		if err := sonic.Unmarshal(cmd.Data, &data); err != nil {
			logger.WithField("type", cmd.Type).Warnf("bad command payload: %v", err)
			return false
		}
		return drag.Begin(data.ID)
	case domain.DragHover:
		var data domain.DragHoverData
		if err := sonic.Unmarshal(cmd.Data, &data); err != nil {
			logger.WithField("type", cmd.Type).Warnf("bad command payload: %v", err)
			return false
		}
		_, ok := drag.Hover(data.Board, data.PointerY, data.Rows)
		return ok
	case domain.DragDrop:
		var data domain.DragDropData
		if err := sonic.Unmarshal(cmd.Data, &data); err != nil {
			logger.WithField("type", cmd.Type).Warnf("bad command payload: %v", err)
			return false
		}
		return drag.Drop(data.Board)
	case domain.DragCancel:
		drag.Cancel()
		return true
	default:
		logger.WithField("type", cmd.Type).Warn("unknown command type")
		return false
	}
}

func streamTasks(boards Boards, auth Authenticator, broker *UpdateBroker) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if token := c.QueryParam("token"); authHeader == "" && token != "" {
			authHeader = "Bearer " + token
		}
		if _, err := auth.UserIDFromAuthHeader(authHeader); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}

		c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
		c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
		c.Response().Header().Set(echo.HeaderConnection, "keep-alive")
		c.Response().Header().Set("X-Accel-Buffering", "no")
		flusher, ok := c.Response().Writer.(http.Flusher)
		if !ok {
			return c.String(http.StatusInternalServerError, "stream unsupported")
		}

		ctx := c.Request().Context()
		ch := broker.subscribe()
		defer broker.unsubscribe(ch)
		for {
			data, err := sonic.Marshal(allTasksResponse{Boards: boards.State().Boards})
			if err != nil {
				c.Logger().Error(err)
				return err
			}
			if _, err := c.Response().Write([]byte("data: ")); err != nil {
				return nil
			}
			if _, err := c.Response().Write(data); err != nil {
				return nil
			}
			if _, err := c.Response().Write([]byte("\n\n")); err != nil {
				return nil
			}
			flusher.Flush()

			select {
			case <-ctx.Done():
				return nil
			case <-ch:
			}
		}
	}
}
