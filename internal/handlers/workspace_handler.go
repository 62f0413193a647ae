package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cartorio-reconciliation-backend/internal/services/matching"
)

type WorkspaceHandler struct {
	manager *matching.Manager
}

func NewWorkspaceHandler(m *matching.Manager) *WorkspaceHandler {
	return &WorkspaceHandler{manager: m}
}

// Get reloads the pools so the view reflects links made elsewhere.
func (h *WorkspaceHandler) Get(c *gin.Context) {
	ws := h.manager.Workspace(currentSession(c))
	if err := ws.Refresh(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ws.View())
}

func (h *WorkspaceHandler) ChangeAccount(c *gin.Context) {
	var payload struct {
		AccountID string `json:"account_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	accountID, err := uuid.Parse(payload.AccountID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account ID"})
		return
	}

	ws := h.manager.Workspace(currentSession(c))
	if err := ws.ChangeAccount(c.Request.Context(), accountID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ws.View())
}

func (h *WorkspaceHandler) SelectItem(c *gin.Context) {
	id, ok := parseID(c, "id", "statement item")
	if !ok {
		return
	}
	ws := h.manager.Workspace(currentSession(c))
	changed := ws.SelectStatementItem(id)
	c.JSON(http.StatusOK, gin.H{"changed": changed, "workspace": ws.View()})
}

func (h *WorkspaceHandler) SelectEntry(c *gin.Context) {
	id, ok := parseID(c, "id", "ledger entry")
	if !ok {
		return
	}
	ws := h.manager.Workspace(currentSession(c))
	changed := ws.SelectLedgerEntry(id)
	c.JSON(http.StatusOK, gin.H{"changed": changed, "workspace": ws.View()})
}

func (h *WorkspaceHandler) Confirm(c *gin.Context) {
	var payload struct {
		Note *string `json:"note"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
	}

	ws := h.manager.Workspace(currentSession(c))
	result, err := ws.ConfirmLink(c.Request.Context(), payload.Note)
	if err != nil && result == nil {
		respondError(c, err)
		return
	}
	if err != nil {
		log.Println("WARN workspace reload after link:", err)
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "reconciled",
		"status":    result.Link.Status(),
		"result":    result,
		"workspace": ws.View(),
	})
}
