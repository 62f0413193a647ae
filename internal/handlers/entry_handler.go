package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cartorio-reconciliation-backend/internal/models"
	"cartorio-reconciliation-backend/internal/repository"
	"cartorio-reconciliation-backend/internal/services/ledger"
)

type EntryHandler struct {
	service *ledger.Service
}

func NewEntryHandler(s *ledger.Service) *EntryHandler {
	return &EntryHandler{service: s}
}

// List accepts ?kind=income|expense, ?status=pending|matched|divergent and
// a free-text ?q= on the description.
func (h *EntryHandler) List(c *gin.Context) {
	filter := repository.EntryFilter{
		Kind:                 models.EntryKind(c.Query("kind")),
		Query:                c.Query("q"),
		ReconciliationStatus: models.ReconciliationStatus(c.Query("status")),
	}
	if filter.Kind != "" && !filter.Kind.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid kind"})
		return
	}
	entries, err := h.service.ListEntries(c.Request.Context(), currentSession(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries})
}

func (h *EntryHandler) Create(c *gin.Context) {
	var payload ledger.EntryInput
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	entry, err := h.service.CreateEntry(c.Request.Context(), currentSession(c), payload)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "entry created", "entry": entry})
}

func (h *EntryHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id", "entry")
	if !ok {
		return
	}
	var payload ledger.EntryInput
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	entry, err := h.service.UpdateEntry(c.Request.Context(), currentSession(c), id, payload)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "entry updated", "entry": entry})
}

func (h *EntryHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id", "entry")
	if !ok {
		return
	}
	if err := h.service.DeleteEntry(c.Request.Context(), currentSession(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "entry deleted"})
}
