package extract

// Transaction is one extracted financial line item. Field names match
// the JSON the model is instructed to emit; no renaming happens between
// the model response and this struct.
type Transaction struct {
	// Date is an ISO calendar date, YYYY-MM-DD.
	Date string `json:"date"`

	// Description is the cleaned transaction text.
	Description string `json:"description"`

	// Amount is negative for expenses/withdrawals, positive for
	// deposits/income. Single implied currency.
	Amount float64 `json:"amount"`

	// Category is model-chosen from an open vocabulary
	// (e.g. Groceries, Dining, Transport, Salary).
	Category string `json:"category"`

	// Notes holds reference numbers or extra context. An absent note is
	// normalized to the empty string.
	Notes string `json:"notes"`
}

// NetTotal returns the arithmetic sum of all transaction amounts.
func NetTotal(txs []Transaction) float64 {
	var total float64
	for _, t := range txs {
		total += t.Amount
	}
	return total
}
