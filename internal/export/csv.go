package export

import (
	"strconv"
	"strings"

	"github.com/ktuntum/statement-ocr/internal/extract"
)

const (
	// Header is the fixed CSV header row.
	Header = "Date,Description,Amount,Category,Notes"

	// Filename is the download name for exported CSV files.
	Filename = "transactions.csv"

	// ContentType is the MIME type used when serving the CSV.
	ContentType = "text/csv;charset=utf-8;"
)

// CSV serializes transactions for export. Description and notes are
// wrapped in double quotes with internal quotes doubled; date, amount
// and category are rendered literally (they contain no delimiters by
// contract). Row order matches input order; no trailing newline.
//
// encoding/csv is deliberately not used here: it quotes fields only
// when necessary, while this export contract always quotes description
// and notes, including when empty.
func CSV(txs []extract.Transaction) string {
	rows := make([]string, 0, len(txs)+1)
	rows = append(rows, Header)

	for _, t := range txs {
		row := []string{
			t.Date,
			quote(t.Description),
			formatAmount(t.Amount),
			t.Category,
			quote(t.Notes),
		}
		rows = append(rows, strings.Join(row, ","))
	}

	return strings.Join(rows, "\n")
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}
