// Package eval implements the transaction matching and metrics core used to
// score model extraction output against curated ground truth. Everything in
// this package is pure and side-effect free: callers hand in predicted and
// ground-truth records and get deterministic match results and metrics back.
package eval

// Record is a single transaction as produced by a model or a ground-truth
// file. It is a loose mapping because neither side guarantees a fixed schema:
// fields may be absent, and "description"/"merchant" and "amount"/"total" are
// treated as synonyms. Absence of a field is distinct from an empty value.
type Record map[string]any

// Date returns the raw date string, or "" when absent or not a string.
func (r Record) Date() string {
	if v, ok := r["date"]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Description resolves the description field. A present "description" key is
// terminal even when empty, null or non-string: it never falls back to
// "merchant", matching how RawAmount treats an explicit null amount.
func (r Record) Description() string {
	if v, ok := r["description"]; ok {
		s, _ := v.(string)
		return s
	}
	if v, ok := r["merchant"]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// RawAmount resolves the amount field without normalization. "amount" takes
// precedence over "total", and an explicit null amount wins over a present
// total. The second return reports whether either key exists.
func (r Record) RawAmount() (any, bool) {
	if v, ok := r["amount"]; ok {
		return v, true
	}
	if v, ok := r["total"]; ok {
		return v, true
	}
	return nil, false
}

// Amount returns the normalized amount. ok is false when the field is absent
// or unparseable.
func (r Record) Amount() (float64, bool) {
	raw, ok := r.RawAmount()
	if !ok {
		return 0, false
	}
	return NormalizeAmount(raw)
}

// Page returns the page number stamped by the extractor, if any.
func (r Record) Page() (int, bool) {
	switch v := r["page"].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	}
	return 0, false
}

// SetPage stamps a page number onto the record. This is the only mutation
// records undergo; the matcher treats them as immutable.
func (r Record) SetPage(page int) {
	r["page"] = page
}
