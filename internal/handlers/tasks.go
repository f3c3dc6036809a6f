package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-trellis/trellis/internal/store"
	"github.com/go-trellis/trellis/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TasksHandler runs crons and lambdas on demand for operators.
type TasksHandler struct {
	runner           *worker.CronRunner
	dispatcher       *worker.LambdaDispatcher
	defaultBatchSize int
	log              *zap.Logger
}

// NewTasksHandler creates a new tasks handler
func NewTasksHandler(
	runner *worker.CronRunner,
	dispatcher *worker.LambdaDispatcher,
	defaultBatchSize int,
	log *zap.Logger,
) *TasksHandler {
	return &TasksHandler{
		runner:           runner,
		dispatcher:       dispatcher,
		defaultBatchSize: defaultBatchSize,
		log:              log.Named("tasks"),
	}
}

// CronRequest is the body of a cron invocation.
type CronRequest struct {
	Strategy  string `json:"strategy"`
	BatchSize int    `json:"batch_size"`
}

// LambdaRequest is the body of a lambda invocation.
type LambdaRequest struct {
	Identifier string          `json:"identifier" binding:"required"`
	Payload    json.RawMessage `json:"payload"`
}

func (h *TasksHandler) taskError(c *gin.Context, name string, err error) {
	switch {
	case errors.Is(err, worker.ErrUnknownCron), errors.Is(err, worker.ErrUnknownLambda):
		c.JSON(http.StatusNotFound, gin.H{
			"error":             "not_found",
			"error_description": err.Error(),
		})
	default:
		h.log.Error("task failed", zap.String("task", name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":             "server_error",
			"error_description": err.Error(),
		})
	}
}

// RunCron runs one batch of a cron and returns its result.
func (h *TasksHandler) RunCron(c *gin.Context) {
	name := c.Param("name")

	var req CronRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":             "invalid_request",
				"error_description": err.Error(),
			})
			return
		}
	}

	strategy, err := store.ParseStrategy(strings.ToUpper(req.Strategy))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "invalid_request",
			"error_description": err.Error(),
		})
		return
	}
	batchSize := req.BatchSize
	if batchSize <= 0 {
		batchSize = h.defaultBatchSize
	}

	result, err := h.runner.Run(c.Request.Context(), name, strategy, batchSize)
	if err != nil {
		h.taskError(c, name, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

// CronStats reports how many merchants each strategy would select.
func (h *TasksHandler) CronStats(c *gin.Context) {
	name := c.Param("name")

	stats, err := h.runner.Stats(c.Request.Context(), name)
	if err != nil {
		h.taskError(c, name, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// RunLambda dispatches a lambda synchronously.
func (h *TasksHandler) RunLambda(c *gin.Context) {
	name := c.Param("name")

	var req LambdaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "invalid_request",
			"error_description": err.Error(),
		})
		return
	}
	if len(req.Payload) == 0 {
		req.Payload = json.RawMessage("{}")
	}

	result, err := h.dispatcher.Dispatch(c.Request.Context(), name, req.Identifier, req.Payload)
	if err != nil {
		h.taskError(c, name, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
