package scanning

// extractionPrompt is the shared prompt used by all LLM providers. It pins the
// exact JSON schema ParseResponse expects and spells out the currency
// heuristics, since models otherwise default everything to USD.
const extractionPrompt = `Analyze this medical receipt image and extract the following information.
Return ONLY a valid JSON object with these fields:

{
  "date": "YYYY-MM-DD format, or null if not visible",
  "provider": "Doctor, clinic, hospital, or pharmacy name",
  "patient": "Patient's full name",
  "amount": "Total amount as a number (no currency symbol)",
  "currency": "3-letter ISO currency code (see instructions below)",
  "is_medical_receipt": true or false
}

CURRENCY DETECTION - Look carefully at the receipt for:
- S$ or SGD = "SGD", $ with Singapore address = "SGD"
- RM = "MYR", € = "EUR", £ = "GBP", ¥ = "JPY"
- If the receipt shows a Singapore clinic/hospital/address, use SGD
- Only use "USD" if explicitly shown or if from a US provider
- If unclear, infer from the country/region shown on the receipt

If a field is not visible or unclear, use null for that field.
If this is NOT a medical receipt, set is_medical_receipt to false.

Return ONLY the JSON object, no other text.`
