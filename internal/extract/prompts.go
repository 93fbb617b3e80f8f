package extract

// receiptPrompt asks for a single JSON object per receipt image.
const receiptPrompt = "Analyze this receipt and extract:\n" +
	"1. Merchant name\n" +
	"2. Date (YYYY-MM-DD format)\n" +
	"3. Total amount\n\n" +
	"Return ONLY valid JSON:\n" +
	"{\"merchant\": \"Name\", \"date\": \"YYYY-MM-DD\", \"total\": 0.00}\n\n" +
	"Return ONLY the JSON object, no other text."

// bankStatementPrompt asks for a JSON array of transactions per page.
const bankStatementPrompt = "Extract ALL transactions from this bank statement page.\n\n" +
	"Rules:\n" +
	"- Convert all dates to YYYY-MM-DD format.\n" +
	"- Amounts are negative for money out, positive for money in.\n" +
	"- Clean merchant names for readability (remove card numbers, reference IDs).\n\n" +
	"Return ONLY a valid JSON array (no markdown, no explanation):\n" +
	"[{\"date\": \"YYYY-MM-DD\", \"description\": \"Merchant\", \"amount\": -123.45}]\n\n" +
	"If no transactions are visible, return an empty array: []"

// promptFor selects the extraction prompt for a resolved document type.
func promptFor(docType DocType) string {
	if docType == DocTypeBankStatement {
		return bankStatementPrompt
	}
	return receiptPrompt
}
