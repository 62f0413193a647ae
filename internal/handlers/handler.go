package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"cartorio-reconciliation-backend/internal/services/importer"
	"cartorio-reconciliation-backend/internal/services/ledger"
	"cartorio-reconciliation-backend/internal/services/matching"
	"cartorio-reconciliation-backend/internal/services/reconciliation"
	"cartorio-reconciliation-backend/internal/session"
)

const sessionKey = "session"

// RequireSession rejects requests without a valid X-User-ID header and
// stores the session for the handlers below it.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := session.Parse(c.GetHeader(session.Header))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid user"})
			return
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

func currentSession(c *gin.Context) session.Session {
	return c.MustGet(sessionKey).(session.Session)
}

func parseID(c *gin.Context, param, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + what + " ID"})
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps service errors to status codes. Unknown errors are
// logged and reported as 500 without detail.
func respondError(c *gin.Context, err error) {
	var verr *ledger.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "fields": verr.Fields})
	case errors.Is(err, importer.ErrInvalidFormat),
		errors.Is(err, importer.ErrInvalidDate),
		errors.Is(err, matching.ErrIncompleteSelection):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, importer.ErrFileTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
	case errors.Is(err, importer.ErrNoTransactions):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound),
		errors.Is(err, reconciliation.ErrLinkNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, reconciliation.ErrAlreadyLinked),
		errors.Is(err, ledger.ErrLinkedEntry),
		errors.Is(err, ledger.ErrAccountHasStatements),
		errors.Is(err, importer.ErrAccountInactive),
		errors.Is(err, matching.ErrAccountInactive):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Printf("ERROR %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
