// Package importer turns uploaded bank statement files into candidate
// transactions and persists confirmed imports.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"

	"cartorio-reconciliation-backend/internal/models"
)

var (
	ErrInvalidFormat  = errors.New("invalid file format, use OFX or CSV")
	ErrFileTooLarge   = errors.New("file too large")
	ErrNoTransactions = errors.New("no transactions found in file")
)

type Format string

const (
	FormatOFX Format = "ofx"
	FormatCSV Format = "csv"
)

// DefaultMaxSize is the upload ceiling when Options.MaxSize is unset.
const DefaultMaxSize int64 = 10 << 20

const noDescription = "Sem descrição"

// Transaction is a normalized statement line. Date is DD/MM/YYYY as found in
// the file (empty when absent); Amount is unsigned.
type Transaction struct {
	Date        string           `json:"date"`
	Description string           `json:"description"`
	Amount      decimal.Decimal  `json:"amount"`
	Direction   models.Direction `json:"direction"`
}

type Options struct {
	MaxSize int64
	// DemoOnEmptyParse returns DemoTransactions instead of ErrNoTransactions
	// when nothing could be parsed.
	DemoOnEmptyParse bool
}

func (o Options) maxSize() int64 {
	if o.MaxSize <= 0 {
		return DefaultMaxSize
	}
	return o.MaxSize
}

type Result struct {
	Format       Format        `json:"format"`
	Transactions []Transaction `json:"transactions"`
	Demo         bool          `json:"demo"`
}

// Check validates extension and size before any content is read.
func Check(filename string, size int64, opts Options) (Format, error) {
	var format Format
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".ofx":
		format = FormatOFX
	case ".csv":
		format = FormatCSV
	default:
		return "", fmt.Errorf("%s: %w", filename, ErrInvalidFormat)
	}
	if size > opts.maxSize() {
		return "", fmt.Errorf("%s (%d bytes, max %d): %w", filename, size, opts.maxSize(), ErrFileTooLarge)
	}
	return format, nil
}

// Parse normalizes content according to the file extension. It never fails
// on a single malformed record.
func Parse(filename string, content []byte, opts Options) (*Result, error) {
	format, err := Check(filename, int64(len(content)), opts)
	if err != nil {
		return nil, err
	}

	text := decode(content)
	var txs []Transaction
	switch format {
	case FormatOFX:
		txs = ParseOFX(text)
	case FormatCSV:
		txs = ParseCSV(text)
	}

	if len(txs) == 0 {
		if !opts.DemoOnEmptyParse {
			return nil, fmt.Errorf("%s: %w", filename, ErrNoTransactions)
		}
		return &Result{Format: format, Transactions: DemoTransactions(), Demo: true}, nil
	}
	return &Result{Format: format, Transactions: txs}, nil
}

// decode reads Windows-1252 exports (common for Brazilian banks) when the
// bytes are not valid UTF-8.
func decode(content []byte) string {
	if utf8.Valid(content) {
		return string(content)
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(content)
	if err != nil {
		return string(content)
	}
	return string(out)
}

var (
	stmtTrnRe  = regexp.MustCompile(`(?is)<STMTTRN>(.*?)</STMTTRN>`)
	dtPostedRe = regexp.MustCompile(`(?i)<DTPOSTED>\s*(\d{8})`)
	trnAmtRe   = regexp.MustCompile(`(?i)<TRNAMT>\s*([^<\s]+)`)
	nameRe     = regexp.MustCompile(`(?i)<NAME>([^<]+)`)
	memoRe     = regexp.MustCompile(`(?i)<MEMO>([^<]+)`)
)

// ParseOFX extracts every <STMTTRN> block.
func ParseOFX(content string) []Transaction {
	var txs []Transaction
	for _, block := range stmtTrnRe.FindAllStringSubmatch(content, -1) {
		trn := block[1]

		date := ""
		if d := firstGroup(dtPostedRe, trn); d != "" {
			date = d[6:8] + "/" + d[4:6] + "/" + d[0:4]
		}

		amount := parseAmount(cleanAmount(firstGroup(trnAmtRe, trn)))

		description := strings.TrimSpace(firstGroup(nameRe, trn))
		if description == "" {
			description = strings.TrimSpace(firstGroup(memoRe, trn))
		}
		if description == "" {
			description = noDescription
		}

		txs = append(txs, newTransaction(date, description, amount))
	}
	return txs
}

// ParseCSV reads semicolon-separated date;description;amount lines after a
// one-line header. Lines with fewer than three columns are skipped.
func ParseCSV(content string) []Transaction {
	r := csv.NewReader(strings.NewReader(content))
	r.Comma = ';'
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var txs []Transaction
	header := true
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				continue
			}
			break
		}
		if header {
			header = false
			continue
		}
		if len(record) < 3 {
			continue
		}

		cols := make([]string, 3)
		for i := range cols {
			cols[i] = strings.TrimSpace(strings.ReplaceAll(record[i], `"`, ""))
		}
		description := cols[1]
		if description == "" {
			description = noDescription
		}
		txs = append(txs, newTransaction(cols[0], description, parseAmount(cleanAmount(cols[2]))))
	}
	return txs
}

func newTransaction(date, description string, amount decimal.Decimal) Transaction {
	direction := models.Credit
	if amount.IsNegative() {
		direction = models.Debit
	}
	return Transaction{
		Date:        date,
		Description: description,
		Amount:      amount.Abs(),
		Direction:   direction,
	}
}

// cleanAmount strips currency symbols and thousands separators and turns a
// decimal comma into a dot: "R$ -1.234,56" becomes "-1234.56".
func cleanAmount(s string) string {
	s = strings.NewReplacer("R$", "", " ", "", "\u00a0", "").Replace(s)
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	return s
}

func parseAmount(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func firstGroup(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// Totals sums credits and debits of txs.
func Totals(txs []Transaction) (credits, debits decimal.Decimal) {
	credits, debits = decimal.Zero, decimal.Zero
	for _, tx := range txs {
		if tx.Direction == models.Debit {
			debits = debits.Add(tx.Amount)
		} else {
			credits = credits.Add(tx.Amount)
		}
	}
	return credits, debits
}

