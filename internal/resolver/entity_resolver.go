package resolver

import (
	"regexp"
	"strings"

	"ledger-gateway/internal/database/metadata"
)

// tableSynonym maps a table-name substring to the question keywords that
// trigger it. Iteration order is part of the contract: first match wins.
type tableSynonym struct {
	pattern  string
	keywords []string
}

var tableSynonyms = []tableSynonym{
	{"ledger", []string{"ledger", "account", "balance"}},
	{"invoice", []string{"invoice", "bill", "receipt"}},
	{"customer", []string{"customer", "client", "buyer"}},
	{"product", []string{"product", "item", "goods"}},
	{"sales", []string{"sales", "sell", "revenue"}},
	{"transaction", []string{"transaction", "payment", "txn"}},
}

// columnSynonym maps a canonical column concept to its trigger phrases.
// Ordered; earlier concepts win on ambiguous terms.
type columnSynonym struct {
	concept  string
	keywords []string
}

var columnSynonyms = []columnSynonym{
	{"amount", []string{"amount", "price", "cost", "value"}},
	{"total_amount", []string{"total amount", "invoice total", "grand total", "final amount"}},
	{"quantity", []string{"quantity", "qty", "count", "number"}},
	{"date", []string{"date", "time", "created", "updated"}},
	{"name", []string{"name", "title", "description", "text"}},
	{"id", []string{"id", "identifier", "key", "number"}},
	{"description", []string{"description", "desc", "item", "product"}},
	{"customer_name", []string{"customer", "client", "buyer"}},
	{"company_name", []string{"company", "vendor", "supplier", "firm"}},
	{"gst_number", []string{"gst", "tax", "gstin"}},
	{"invoice_number", []string{"invoice", "bill", "receipt", "number"}},
	{"hsn", []string{"hsn", "code", "tax code"}},
	{"gst", []string{"gst", "tax"}},
}

// ResolveTable picks the table a question refers to. A catalog table name
// appearing literally in the question always wins; the synonym dictionary
// is tried next; the first catalog table, then the literal "data", close
// the fallback chain.
func ResolveTable(query string, catalog *metadata.Catalog) string {
	queryLower := strings.ToLower(query)

	for _, table := range catalog.Tables() {
		if strings.Contains(queryLower, strings.ToLower(table)) {
			return table
		}
	}

	for _, table := range catalog.Tables() {
		tableLower := strings.ToLower(table)
		for _, syn := range tableSynonyms {
			if !strings.Contains(tableLower, syn.pattern) {
				continue
			}
			for _, keyword := range syn.keywords {
				if strings.Contains(queryLower, keyword) {
					return table
				}
			}
		}
	}

	if tables := catalog.Tables(); len(tables) > 0 {
		return tables[0]
	}
	return "data"
}

// ResolveColumn picks a column of table for a question. The tier order is
// the contract; it decides outcomes on ambiguous input:
//
//  1. preferNumeric: first numeric column literally present, else the
//     first numeric column
//  2. any column literally present
//  3. any column with an underscore part (longer than 2 runes) present
//  4. any column containing a question term as substring
//  5. the ordered synonym table, term by term
//  6. the table's first column, else "id"/"amount"
func ResolveColumn(query string, table *metadata.TableSchema, preferNumeric bool) string {
	if table == nil || len(table.Columns) == 0 {
		if preferNumeric {
			return "amount"
		}
		return "id"
	}

	queryLower := strings.ToLower(query)

	if preferNumeric && len(table.Numeric) > 0 {
		for _, col := range table.Numeric {
			if strings.Contains(queryLower, strings.ToLower(col)) {
				return col
			}
		}
		return table.Numeric[0]
	}

	for _, col := range table.Columns {
		if strings.Contains(queryLower, strings.ToLower(col)) {
			return col
		}
	}

	for _, col := range table.Columns {
		for _, part := range strings.Split(strings.ToLower(col), "_") {
			if len(part) > 2 && strings.Contains(queryLower, part) {
				return col
			}
		}
	}

	queryTerms := strings.Fields(queryLower)
	for _, col := range table.Columns {
		colLower := strings.ToLower(col)
		for _, term := range queryTerms {
			if strings.Contains(colLower, term) {
				return col
			}
		}
	}

	for _, term := range queryTerms {
		for _, syn := range columnSynonyms {
			if !containsString(syn.keywords, term) {
				continue
			}
			for _, col := range table.Columns {
				if strings.Contains(strings.ToLower(col), syn.concept) {
					return col
				}
			}
		}
	}

	return table.Columns[0]
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

var (
	yearPattern = regexp.MustCompile(`\b(20\d{2})\b`)
	datePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
)

// ExtractYear pulls a 20xx year mention out of a question.
func ExtractYear(query string) (string, bool) {
	m := yearPattern.FindStringSubmatch(query)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ExtractDate pulls a YYYY-MM-DD date mention out of a question.
func ExtractDate(query string) (string, bool) {
	m := datePattern.FindString(query)
	return m, m != ""
}
