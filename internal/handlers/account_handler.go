package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cartorio-reconciliation-backend/internal/services/ledger"
)

type AccountHandler struct {
	service *ledger.Service
}

func NewAccountHandler(s *ledger.Service) *AccountHandler {
	return &AccountHandler{service: s}
}

func (h *AccountHandler) List(c *gin.Context) {
	accounts, err := h.service.ListAccounts(c.Request.Context(), currentSession(c), c.Query("active") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": accounts})
}

func (h *AccountHandler) Create(c *gin.Context) {
	var payload ledger.AccountInput
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	account, err := h.service.CreateAccount(c.Request.Context(), currentSession(c), payload)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "account created", "account": account})
}

func (h *AccountHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id", "account")
	if !ok {
		return
	}
	var payload ledger.AccountPatch
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	account, err := h.service.UpdateAccount(c.Request.Context(), currentSession(c), id, payload)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "account updated", "account": account})
}

func (h *AccountHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id", "account")
	if !ok {
		return
	}
	if err := h.service.DeleteAccount(c.Request.Context(), currentSession(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "account deleted"})
}
