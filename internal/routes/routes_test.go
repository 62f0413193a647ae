package routes

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cartorio-reconciliation-backend/internal/config"
	"cartorio-reconciliation-backend/internal/dbtest"
	"cartorio-reconciliation-backend/internal/session"
)

type api struct {
	t    *testing.T
	r    *gin.Engine
	user uuid.UUID
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	cfg := &config.Config{Import: config.ImportConfig{MaxSizeBytes: config.DefaultMaxImportSize}}
	RegisterRoutes(r, dbtest.Open(t), cfg)
	return &api{t: t, r: r, user: uuid.New()}
}

func (a *api) do(req *http.Request) (int, map[string]interface{}) {
	a.t.Helper()
	req.Header.Set(session.Header, a.user.String())
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)
	var body map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	}
	return w.Code, body
}

func (a *api) json(method, path string, payload interface{}) (int, map[string]interface{}) {
	a.t.Helper()
	var buf bytes.Buffer
	if payload != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return a.do(req)
}

func (a *api) upload(path, filename, content string, fields map[string]string) (int, map[string]interface{}) {
	a.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(a.t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(a.t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(a.t, err)
	require.NoError(a.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return a.do(req)
}

func id(t *testing.T, body map[string]interface{}, key string) string {
	t.Helper()
	obj, ok := body[key].(map[string]interface{})
	require.True(t, ok, "missing %s in %v", key, body)
	return obj["id"].(string)
}

const statementCSV = "Data;Descricao;Valor\n" +
	"10/01/2024;CONTA LUZ;-920,00\n" +
	"11/01/2024;PIX RECEBIDO;500,00\n"

func TestHealth(t *testing.T) {
	a := newAPI(t)
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequiresUser(t *testing.T) {
	a := newAPI(t)
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/accounts", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestReconciliationFlow(t *testing.T) {
	a := newAPI(t)

	code, body := a.json(http.MethodPost, "/api/accounts", map[string]interface{}{
		"bank_name": "Banco do Brasil",
		"kind":      "checking",
		"balance":   "10.000,00",
	})
	require.Equal(t, http.StatusCreated, code, body)
	accountID := id(t, body, "account")

	code, body = a.upload("/api/statements/preview", "jan.csv", statementCSV, nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "500", body["total_credits"])
	assert.Equal(t, "920", body["total_debits"])

	code, body = a.upload("/api/statements/import", "jan.csv", statementCSV, map[string]string{"account_id": accountID})
	require.Equal(t, http.StatusCreated, code, body)
	statementID := id(t, body, "statement")

	req := httptest.NewRequest(http.MethodGet, "/api/statements/"+statementID+"/items", nil)
	code, body = a.do(req)
	require.Equal(t, http.StatusOK, code)
	items := body["data"].([]interface{})
	require.Len(t, items, 2)
	light := items[1].(map[string]interface{})
	assert.Equal(t, "CONTA LUZ", light["description"])
	lightID := light["id"].(string)

	code, body = a.json(http.MethodPost, "/api/entries", map[string]interface{}{
		"date":        "10/01/2024",
		"description": "Conta de energia",
		"kind":        "expense",
		"category":    "Utilidades",
		"amount":      "890,00",
		"status":      "paid",
	})
	require.Equal(t, http.StatusCreated, code, body)
	entryID := id(t, body, "entry")

	code, body = a.json(http.MethodPut, "/api/workspace/account", map[string]string{"account_id": accountID})
	require.Equal(t, http.StatusOK, code, body)
	assert.Len(t, body["statement_items"], 2)

	code, body = a.json(http.MethodPost, "/api/workspace/confirm", nil)
	assert.Equal(t, http.StatusBadRequest, code, body)

	code, _ = a.json(http.MethodPost, "/api/workspace/items/"+lightID+"/select", nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = a.json(http.MethodPost, "/api/workspace/entries/"+entryID+"/select", nil)
	require.Equal(t, http.StatusOK, code)

	code, body = a.json(http.MethodPost, "/api/workspace/confirm", map[string]string{"note": "tarifa"})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "divergent", body["status"])

	code, body = a.json(http.MethodPost, "/api/reconciliation/link", map[string]string{
		"statement_item_id": lightID,
		"ledger_entry_id":   entryID,
	})
	assert.Equal(t, http.StatusConflict, code, body)

	code, body = a.json(http.MethodGet, "/api/reconciliation/stats/"+accountID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["divergent"])
	assert.EqualValues(t, 0, body["rate"])

	code, body = a.json(http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["divergences"], 1)

	code, body = a.json(http.MethodGet, "/api/reconciliation/consistency", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["consistent"])

	code, _ = a.json(http.MethodDelete, "/api/entries/"+entryID, nil)
	assert.Equal(t, http.StatusConflict, code)
	code, _ = a.json(http.MethodDelete, "/api/accounts/"+accountID, nil)
	assert.Equal(t, http.StatusConflict, code)

	code, body = a.json(http.MethodPost, "/api/reconciliation/unlink", map[string]string{
		"statement_item_id": lightID,
		"ledger_entry_id":   entryID,
	})
	require.Equal(t, http.StatusOK, code, body)

	code, _ = a.json(http.MethodPost, "/api/reconciliation/unlink", map[string]string{
		"statement_item_id": lightID,
		"ledger_entry_id":   entryID,
	})
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = a.json(http.MethodDelete, "/api/entries/"+entryID, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestImportErrors(t *testing.T) {
	a := newAPI(t)

	code, body := a.json(http.MethodPost, "/api/accounts", map[string]interface{}{"bank_name": "Itaú", "kind": "savings"})
	require.Equal(t, http.StatusCreated, code, body)
	accountID := id(t, body, "account")

	code, _ = a.upload("/api/statements/import", "jan.pdf", statementCSV, map[string]string{"account_id": accountID})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = a.upload("/api/statements/import", "empty.csv", "Data;Descricao;Valor\n", map[string]string{"account_id": accountID})
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, _ = a.upload("/api/statements/import", "jan.csv", statementCSV, map[string]string{"account_id": uuid.NewString()})
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = a.upload("/api/statements/import", "jan.csv", statementCSV, map[string]string{"account_id": "x"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestEntryValidation(t *testing.T) {
	a := newAPI(t)
	code, body := a.json(http.MethodPost, "/api/entries", map[string]interface{}{
		"date":        "2024-01-10",
		"description": "ab",
		"kind":        "expense",
		"category":    "Utilidades",
		"amount":      "0",
		"status":      "paid",
	})
	require.Equal(t, http.StatusBadRequest, code)
	fields := body["fields"].(map[string]interface{})
	assert.Contains(t, fields, "description")
}

func TestDeactivatedAccount(t *testing.T) {
	a := newAPI(t)

	code, body := a.json(http.MethodPost, "/api/accounts", map[string]interface{}{
		"bank_name": "Bradesco",
		"branch":    "1234",
		"kind":      "checking",
		"balance":   "1.500,00",
	})
	require.Equal(t, http.StatusCreated, code, body)
	accountID := id(t, body, "account")

	code, body = a.json(http.MethodPut, "/api/accounts/"+accountID, map[string]interface{}{"active": false})
	require.Equal(t, http.StatusOK, code, body)
	account := body["account"].(map[string]interface{})
	assert.Equal(t, false, account["active"])
	assert.Equal(t, "1500", account["balance"])
	assert.Equal(t, "1234", account["branch"])

	code, _ = a.json(http.MethodPut, "/api/workspace/account", map[string]string{"account_id": accountID})
	assert.Equal(t, http.StatusConflict, code)

	code, _ = a.upload("/api/statements/import", "jan.csv", statementCSV, map[string]string{"account_id": accountID})
	assert.Equal(t, http.StatusConflict, code)
}

func TestStatsUnknownAccount(t *testing.T) {
	a := newAPI(t)
	code, _ := a.json(http.MethodGet, "/api/reconciliation/stats/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, code)
}
