package handler

import (
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cartorio-reconciliation-backend/internal/repository"
	"cartorio-reconciliation-backend/internal/services/importer"
)

type StatementHandler struct {
	importer   *importer.Service
	statements *repository.StatementRepository
}

func NewStatementHandler(i *importer.Service, statements *repository.StatementRepository) *StatementHandler {
	return &StatementHandler{importer: i, statements: statements}
}

func (h *StatementHandler) List(c *gin.Context) {
	statements, err := h.statements.List(c.Request.Context(), currentSession(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": statements})
}

func (h *StatementHandler) Items(c *gin.Context) {
	id, ok := parseID(c, "id", "statement")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	sess := currentSession(c)
	if _, err := h.statements.GetByID(ctx, sess, id); err != nil {
		respondError(c, err)
		return
	}
	items, err := h.statements.ItemsByStatement(ctx, sess, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

// Preview parses the uploaded file without storing anything.
func (h *StatementHandler) Preview(c *gin.Context) {
	filename, content, ok := h.readUpload(c)
	if !ok {
		return
	}
	preview, err := h.importer.Preview(filename, content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

// Import expects multipart fields "file" and "account_id".
func (h *StatementHandler) Import(c *gin.Context) {
	accountID, err := uuid.Parse(c.PostForm("account_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account ID"})
		return
	}
	filename, content, ok := h.readUpload(c)
	if !ok {
		return
	}
	statement, err := h.importer.Import(c.Request.Context(), currentSession(c), accountID, filename, content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "statement imported", "statement": statement})
}

// readUpload checks extension and size from the multipart header before the
// body is read.
func (h *StatementHandler) readUpload(c *gin.Context) (string, []byte, bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return "", nil, false
	}
	defer file.Close()

	opts := h.importer.Options()
	if _, err := importer.Check(header.Filename, header.Size, opts); err != nil {
		respondError(c, err)
		return "", nil, false
	}

	content, err := io.ReadAll(io.LimitReader(file, header.Size))
	if err != nil {
		log.Println("ERROR reading upload:", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file"})
		return "", nil, false
	}
	log.Println("Received file:", header.Filename, "size:", header.Size)
	return header.Filename, content, true
}
