package api

import (
	"net/http"

	"helios/internal/exec"

	"github.com/gin-gonic/gin"
)

type ExecHandler struct {
	executor *exec.Executor
}

func NewExecHandler(executor *exec.Executor) *ExecHandler {
	return &ExecHandler{executor: executor}
}

func (h *ExecHandler) RunCommand(c *gin.Context) {
	var req ExecRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, ErrInvalidRequest, err.Error())
		return
	}

	result, err := h.executor.Run(c.Request.Context(), currentUserID(c), req.Command)
	if err != nil {
		respondError(c, mapExecError(err), err)
		return
	}

	c.JSON(http.StatusOK, ExecResponse{
		Command:    result.Command,
		ExitCode:   result.ExitCode,
		Stdout:     result.Stdout,
		Stderr:     result.Stderr,
		DurationMs: result.Duration.Milliseconds(),
	})
}
