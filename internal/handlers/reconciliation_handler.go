package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	service "cartorio-reconciliation-backend/internal/services/reconciliation"
)

type ReconciliationHandler struct {
	service *service.ReconciliationService
}

func NewReconciliationHandler(s *service.ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{service: s}
}

type pairPayload struct {
	StatementItemID string  `json:"statement_item_id" binding:"required"`
	LedgerEntryID   string  `json:"ledger_entry_id" binding:"required"`
	Note            *string `json:"note"`
}

func (p pairPayload) ids() (uuid.UUID, uuid.UUID, bool) {
	itemID, err := uuid.Parse(p.StatementItemID)
	if err != nil {
		return uuid.Nil, uuid.Nil, false
	}
	entryID, err := uuid.Parse(p.LedgerEntryID)
	if err != nil {
		return uuid.Nil, uuid.Nil, false
	}
	return itemID, entryID, true
}

func (h *ReconciliationHandler) ListLinks(c *gin.Context) {
	links, err := h.service.ListLinks(c.Request.Context(), currentSession(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": links})
}

func (h *ReconciliationHandler) Link(c *gin.Context) {
	var payload pairPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	itemID, entryID, ok := payload.ids()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid statement item or ledger entry ID"})
		return
	}

	result, err := h.service.Link(c.Request.Context(), currentSession(c), itemID, entryID, payload.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "reconciled",
		"status":  result.Link.Status(),
		"result":  result,
	})
}

func (h *ReconciliationHandler) Unlink(c *gin.Context) {
	var payload pairPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	itemID, entryID, ok := payload.ids()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid statement item or ledger entry ID"})
		return
	}

	if err := h.service.Unlink(c.Request.Context(), currentSession(c), itemID, entryID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "reconciliation undone"})
}

func (h *ReconciliationHandler) Stats(c *gin.Context) {
	accountID, ok := parseID(c, "accountId", "account")
	if !ok {
		return
	}
	stats, err := h.service.AccountStats(c.Request.Context(), currentSession(c), accountID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *ReconciliationHandler) Consistency(c *gin.Context) {
	drifts, err := h.service.CheckConsistency(c.Request.Context(), currentSession(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"consistent": len(drifts) == 0, "drifts": drifts})
}
