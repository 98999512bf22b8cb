package api

import (
	"net/http"

	"helios/internal/pool"
	"helios/internal/stream"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	mgr      *pool.Manager
	displays *stream.Registry
}

func NewSessionHandler(mgr *pool.Manager, displays *stream.Registry) *SessionHandler {
	return &SessionHandler{mgr: mgr, displays: displays}
}

// CreateSession allocates a desktop for the authenticated user. Pool
// exhaustion surfaces as 503; the client decides whether to retry.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	sess, err := h.mgr.Allocate(currentUserID(c))
	if err != nil {
		respondError(c, mapPoolError(err), err)
		return
	}

	c.JSON(http.StatusCreated, toSessionResponse(sess))
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	sess, err := h.mgr.GetSession(c.Param("id"))
	if err != nil {
		respondError(c, mapPoolError(err), err)
		return
	}

	c.JSON(http.StatusOK, toSessionResponse(sess))
}

func (h *SessionHandler) ListSessions(c *gin.Context) {
	sessions := h.mgr.ListSessions(currentUserID(c))

	resp := SessionListResponse{Sessions: make([]SessionResponse, 0, len(sessions))}
	for _, sess := range sessions {
		resp.Sessions = append(resp.Sessions, toSessionResponse(sess))
	}

	c.JSON(http.StatusOK, resp)
}

func (h *SessionHandler) ReleaseSession(c *gin.Context) {
	if err := h.mgr.Release(c.Param("id")); err != nil {
		respondError(c, mapPoolError(err), err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "released",
		"session_id": c.Param("id"),
	})
}

func (h *SessionHandler) Heartbeat(c *gin.Context) {
	if err := h.mgr.Heartbeat(c.Param("id")); err != nil {
		respondError(c, mapPoolError(err), err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "active",
		"session_id": c.Param("id"),
	})
}

// GetDisplay resolves the display endpoint the streaming bridge should attach
// to for this session's desktop.
func (h *SessionHandler) GetDisplay(c *gin.Context) {
	sess, err := h.mgr.GetSession(c.Param("id"))
	if err != nil {
		respondError(c, mapPoolError(err), err)
		return
	}

	info, err := h.displays.DisplayFor(sess.DesktopID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, DisplayResponse{
		SessionID: sess.ID,
		DesktopID: info.DesktopID,
		Display:   info.Display,
		VNCAddr:   info.VNCAddr,
	})
}

type StatsHandler struct {
	mgr *pool.Manager
}

func NewStatsHandler(mgr *pool.Manager) *StatsHandler {
	return &StatsHandler{mgr: mgr}
}

func (h *StatsHandler) GetStats(c *gin.Context) {
	s := h.mgr.Stats()
	c.JSON(http.StatusOK, StatsResponse{
		Total:          s.Total,
		Available:      s.Available,
		Allocated:      s.Allocated,
		ActiveSessions: s.ActiveSessions,
	})
}
