package api

import (
	"context"
	"net/http"
	"strconv"

	"helios/internal/audit/repo"

	"github.com/gin-gonic/gin"
)

// AuditStore reads persisted audit trails. Both queries are scoped to one
// user; callers only ever see their own history.
type AuditStore interface {
	ListLifecycle(ctx context.Context, userID string, limit int) ([]repo.LifecycleEventModel, error)
	ListCommands(ctx context.Context, userID string, limit int) ([]repo.CommandAuditModel, error)
}

type AuditHandler struct {
	store AuditStore
}

func NewAuditHandler(store AuditStore) *AuditHandler {
	return &AuditHandler{store: store}
}

func (h *AuditHandler) ListEvents(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	events, err := h.store.ListLifecycle(c.Request.Context(), currentUserID(c), limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (h *AuditHandler) ListCommands(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	commands, err := h.store.ListCommands(c.Request.Context(), currentUserID(c), limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"commands": commands})
}
