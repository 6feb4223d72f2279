package service

import (
	"fmt"
	"regexp"
	"strings"

	"ledger-gateway/internal/model"
	"ledger-gateway/internal/resolver"
	"ledger-gateway/internal/utils"
)

// taxKeywords mark statutory tax accounts, excluded from extremum answers
// so "highest balance" means a trading party, not a GST control account.
var taxKeywords = []string{"gst", "igst", "cgst", "sgst", "tax", "tds", "vat", "cess"}

func isTaxLedger(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range taxKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// ledgerNamePatterns pull an explicit ledger name out of a question, most
// specific first. Quoted forms win over bare forms.
var ledgerNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ledger\s+name\s*[=:]\s*["']([^"']+)["']`),
	regexp.MustCompile(`(?i)ledger\s+name\s*[=:]\s*([^,]+)`),
	regexp.MustCompile(`(?i)ledger\s*[=:]\s*["']([^"']+)["']`),
	regexp.MustCompile(`(?i)ledger\s*[=:]\s*([^,]+)`),
}

// ofNamePattern picks the name after "of", stopping before a trailing
// year so "balance of Acme Traders 2024" yields "Acme Traders".
var ofNamePattern = regexp.MustCompile(`(?i)\bof\s+(.+?)(?:\s+of\s+\d{4}|\s+\d{4}|$)`)

// yearToken matches tokens that open with a four-digit year.
var yearToken = regexp.MustCompile(`^\d{4}`)

// fillerWords are stripped when falling back to treating the leftover text
// as the ledger name itself.
var fillerWords = map[string]bool{
	"show": true, "all": true, "rows": true, "ledger": true, "name": true,
	"data": true, "of": true, "for": true, "with": true, "balance": true,
	"closing": true, "opening": true,
}

func extractLedgerName(query string) string {
	for _, p := range ledgerNamePatterns {
		if m := p.FindStringSubmatch(query); m != nil {
			return strings.TrimSpace(m[1])
		}
	}

	if m := ofNamePattern.FindStringSubmatch(query); m != nil {
		return strings.TrimSpace(m[1])
	}

	var kept []string
	for _, w := range strings.Fields(query) {
		if yearToken.MatchString(w) || w == "=" || w == ":" {
			continue
		}
		if !fillerWords[strings.ToLower(w)] {
			kept = append(kept, w)
		}
	}
	return strings.TrimSpace(strings.Join(kept, " "))
}

// LedgerAnswerer answers ledger-domain questions over synced sink rows
// with a fixed rule chain. Answer reports handled=false when no rule
// applies, so the caller can fall through to the generic pipeline.
type LedgerAnswerer struct {
	rows []model.SinkLedger
}

func NewLedgerAnswerer(rows []model.SinkLedger) *LedgerAnswerer {
	return &LedgerAnswerer{rows: rows}
}

func (a *LedgerAnswerer) Answer(query string) (string, bool) {
	queryLower := strings.ToLower(query)
	year, hasYear := queryYear(query)

	if strings.Contains(queryLower, "add all") || strings.Contains(queryLower, "sum of") ||
		(strings.Contains(queryLower, "total") && strings.Contains(queryLower, "balance")) {
		return a.sumBalance(queryLower, year, hasYear), true
	}

	if strings.Contains(queryLower, "show all ledger name") &&
		(strings.Contains(queryLower, "closing balance") || strings.Contains(queryLower, "opening balance")) {
		return a.listBalances(queryLower, year, hasYear), true
	}

	if strings.Contains(queryLower, "ledger name") || strings.Contains(queryLower, "ledger") {
		if name := extractLedgerName(query); name != "" {
			return a.searchLedger(name, queryLower, year, hasYear), true
		}
	}

	if date, ok := resolver.ExtractDate(query); ok {
		return a.rowsForDate(date), true
	}

	if hasYear && strings.Contains(queryLower, "show all") {
		return a.rowsForYear(year), true
	}

	if containsAny(queryLower, "largest", "highest", "max") {
		return a.extremum(queryLower, year, hasYear, true), true
	}
	if containsAny(queryLower, "smallest", "lowest", "min") {
		return a.extremum(queryLower, year, hasYear, false), true
	}

	return "", false
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func queryYear(query string) (int, bool) {
	y, ok := resolver.ExtractYear(query)
	if !ok {
		return 0, false
	}
	var year int
	fmt.Sscanf(y, "%d", &year)
	return year, true
}

// balanceColumn picks opening vs closing balance from the question text,
// defaulting to closing.
func balanceColumn(queryLower string) (func(*model.SinkLedger) float64, string) {
	if strings.Contains(queryLower, "opening") {
		return func(l *model.SinkLedger) float64 { return l.OpeningBalance }, "opening balance"
	}
	return func(l *model.SinkLedger) float64 { return l.ClosingBalance }, "closing balance"
}

func (a *LedgerAnswerer) filtered(year int, hasYear bool, excludeTax bool) []model.SinkLedger {
	var out []model.SinkLedger
	for _, l := range a.rows {
		if hasYear && l.AlteredOn.Year() != year {
			continue
		}
		if excludeTax && isTaxLedger(l.LedgerName) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func (a *LedgerAnswerer) sumBalance(queryLower string, year int, hasYear bool) string {
	value, label := balanceColumn(queryLower)

	var total float64
	for _, l := range a.filtered(year, hasYear, false) {
		total += value(&l)
	}

	if hasYear {
		return fmt.Sprintf("Total %s for %d: %s", label, year, utils.GroupDecimal(total))
	}
	return fmt.Sprintf("Total %s: %s", label, utils.GroupDecimal(total))
}

func (a *LedgerAnswerer) listBalances(queryLower string, year int, hasYear bool) string {
	value, label := balanceColumn(queryLower)
	rows := a.filtered(year, hasYear, false)
	if len(rows) == 0 {
		return noEntries(year, hasYear)
	}

	var b strings.Builder
	if hasYear {
		fmt.Fprintf(&b, "Ledger names with %s for %d:\n", label, year)
	} else {
		fmt.Fprintf(&b, "Ledger names with %s:\n", label)
	}
	for _, l := range rows {
		fmt.Fprintf(&b, "%-50s | %s\n", l.LedgerName, utils.FormatBalance(fmt.Sprintf("%f", value(&l))))
	}
	return strings.TrimRight(b.String(), "\n")
}

// searchLedger looks for an exact name match: case-insensitive first, then
// whitespace-normalized. With no exact match it offers up to five partial
// suggestions instead of guessing.
func (a *LedgerAnswerer) searchLedger(name, queryLower string, year int, hasYear bool) string {
	matches := a.exactMatches(name)
	if len(matches) == 0 {
		return a.suggest(name)
	}

	if hasYear {
		var kept []model.SinkLedger
		for _, l := range matches {
			if l.AlteredOn.Year() == year {
				kept = append(kept, l)
			}
		}
		if len(kept) == 0 {
			return fmt.Sprintf("No results found for '%s' in year %d", name, year)
		}
		matches = kept
	}

	value, _ := balanceColumn(queryLower)
	var b strings.Builder
	yearInfo := ""
	if hasYear {
		yearInfo = fmt.Sprintf(" for %d", year)
	}
	fmt.Fprintf(&b, "%d results found for '%s'%s:\n", len(matches), name, yearInfo)
	for _, l := range matches {
		fmt.Fprintf(&b, "%-50s | %s\n", l.LedgerName, utils.FormatBalance(fmt.Sprintf("%f", value(&l))))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (a *LedgerAnswerer) exactMatches(name string) []model.SinkLedger {
	target := strings.ToLower(strings.TrimSpace(name))

	var out []model.SinkLedger
	for _, l := range a.rows {
		if strings.ToLower(l.LedgerName) == target {
			out = append(out, l)
		}
	}
	if len(out) > 0 {
		return out
	}

	// Second pass: collapse runs of whitespace on both sides.
	normalized := strings.Join(strings.Fields(target), " ")
	for _, l := range a.rows {
		candidate := strings.Join(strings.Fields(strings.ToLower(l.LedgerName)), " ")
		if candidate == normalized {
			out = append(out, l)
		}
	}
	return out
}

func (a *LedgerAnswerer) suggest(name string) string {
	needle := strings.ToLower(name)
	seen := make(map[string]bool)
	var suggestions []string
	for _, l := range a.rows {
		if !strings.Contains(strings.ToLower(l.LedgerName), needle) {
			continue
		}
		if seen[l.LedgerName] {
			continue
		}
		seen[l.LedgerName] = true
		suggestions = append(suggestions, l.LedgerName)
		if len(suggestions) == 5 {
			break
		}
	}

	if len(suggestions) == 0 {
		return fmt.Sprintf("No results found for '%s'", name)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "No exact match found for '%s'\nDid you mean one of these?\n", name)
	for _, s := range suggestions {
		fmt.Fprintf(&b, "• %s\n", s)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (a *LedgerAnswerer) rowsForDate(date string) string {
	var matched []model.SinkLedger
	for _, l := range a.rows {
		if l.AlteredOn.Format("2006-01-02") == date {
			matched = append(matched, l)
		}
	}
	if len(matched) == 0 {
		return fmt.Sprintf("No entries found for date %s", date)
	}
	return fmt.Sprintf("Results for date %s:\n%s", date, ledgerLines(matched))
}

func (a *LedgerAnswerer) rowsForYear(year int) string {
	matched := a.filtered(year, true, false)
	if len(matched) == 0 {
		return fmt.Sprintf("No entries found for year %d", year)
	}
	return fmt.Sprintf("Results for year %d:\n%s", year, ledgerLines(matched))
}

// extremum answers highest/lowest balance questions, excluding tax
// accounts and surfacing every tied row.
func (a *LedgerAnswerer) extremum(queryLower string, year int, hasYear, max bool) string {
	rows := a.filtered(year, hasYear, true)
	if len(rows) == 0 {
		return noEntries(year, hasYear)
	}

	value, label := balanceColumn(queryLower)
	extreme := value(&rows[0])
	for i := range rows {
		v := value(&rows[i])
		if (max && v > extreme) || (!max && v < extreme) {
			extreme = v
		}
	}

	var matched []model.SinkLedger
	for _, l := range rows {
		if value(&l) == extreme {
			matched = append(matched, l)
		}
	}

	direction := "highest"
	if !max {
		direction = "lowest"
	}
	return fmt.Sprintf("Ledger with %s %s (excluding tax accounts):\n%s",
		direction, label, ledgerLines(matched))
}

func ledgerLines(rows []model.SinkLedger) string {
	var b strings.Builder
	for _, l := range rows {
		fmt.Fprintf(&b, "%-50s | %-30s | %20s | %20s | %s\n",
			l.LedgerName, l.Parent,
			utils.FormatBalance(fmt.Sprintf("%f", l.OpeningBalance)),
			utils.FormatBalance(fmt.Sprintf("%f", l.ClosingBalance)),
			l.AlteredOn.Format("02/01/06"))
	}
	return strings.TrimRight(b.String(), "\n")
}

func noEntries(year int, hasYear bool) string {
	if hasYear {
		return fmt.Sprintf("No entries found for year %d", year)
	}
	return "No data found."
}
