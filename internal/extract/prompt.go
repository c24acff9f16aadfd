package extract

import (
	"fmt"

	"google.golang.org/genai"
)

// buildPrompt returns the fixed extraction instruction. pages is the
// document page count when known (0 otherwise); naming it reinforces the
// all-pages rule for long statements.
func buildPrompt(pages int) string {
	prompt :=
		"Analyze this bank statement document.\n" +
			"Extract ALL transactions into a structured list.\n\n" +
			"Rules:\n" +
			"1. Date: Format as YYYY-MM-DD.\n" +
			"2. Amount: Use negative numbers for expenses/withdrawals, positive numbers for deposits/income.\n" +
			"3. Description: Clean up the text (remove unnecessary codes if possible, but keep identifying info).\n" +
			"4. Category: Auto-detect the category based on the description (e.g., Groceries, Dining, Transport, Salary, Utilities, Transfer, Shopping, Bills).\n" +
			"5. Notes: Any additional reference numbers or relevant details.\n" +
			"6. SKIP: Headers, footers, page numbers, running balances, and summary lines. Only extract actual transactions.\n\n" +
			"If there are multiple pages, extract transactions from all pages.\n"

	if pages > 1 {
		prompt += fmt.Sprintf("This document has %d pages; every page must be covered.\n", pages)
	}

	return prompt
}

// responseSchema declares the output contract sent with every request:
// a JSON array of transaction objects. The field descriptions constrain
// model behavior but are not machine-enforced, so the response is still
// validated after decoding.
func responseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"date": {
					Type:        genai.TypeString,
					Description: "Transaction date in YYYY-MM-DD format",
				},
				"description": {
					Type:        genai.TypeString,
					Description: "Cleaned transaction description",
				},
				"amount": {
					Type:        genai.TypeNumber,
					Description: "Transaction amount (negative for expense, positive for income)",
				},
				"category": {
					Type:        genai.TypeString,
					Description: "Categorized type of transaction",
				},
				"notes": {
					Type:        genai.TypeString,
					Description: "Any extra notes or reference numbers",
				},
			},
			Required: []string{"date", "description", "amount", "category"},
		},
	}
}
