package importer

import (
	"github.com/shopspring/decimal"

	"cartorio-reconciliation-backend/internal/models"
)

// DemoTransactions is the demonstration statement returned for files that
// yield nothing when Options.DemoOnEmptyParse is set.
func DemoTransactions() []Transaction {
	rows := []struct {
		date, description, amount string
		direction                 models.Direction
	}{
		{"02/01/2024", "TED RECEBIDA - CLIENTE ABC", "15000.00", models.Credit},
		{"03/01/2024", "PAGAMENTO FORNECEDOR XYZ", "3500.00", models.Debit},
		{"05/01/2024", "EMOLUMENTOS - REGISTRO 12345", "850.00", models.Credit},
		{"08/01/2024", "TAXA BANCÁRIA", "45.90", models.Debit},
		{"10/01/2024", "TED RECEBIDA - CARTÓRIO CENTRAL", "22500.00", models.Credit},
		{"12/01/2024", "PAGAMENTO ENERGIA", "890.50", models.Debit},
		{"15/01/2024", "EMOLUMENTOS - AVERBAÇÃO 67890", "1200.00", models.Credit},
		{"18/01/2024", "FOLHA DE PAGAMENTO", "45000.00", models.Debit},
		{"20/01/2024", "TED RECEBIDA - IMOBILIÁRIA", "8750.00", models.Credit},
		{"25/01/2024", "IMPOSTOS FEDERAIS", "12300.00", models.Debit},
	}
	txs := make([]Transaction, len(rows))
	for i, r := range rows {
		txs[i] = Transaction{
			Date:        r.date,
			Description: r.description,
			Amount:      decimal.RequireFromString(r.amount),
			Direction:   r.direction,
		}
	}
	return txs
}
