package tally

import (
	"fmt"
	"strings"

	"ledger-gateway/internal/model"
	"ledger-gateway/internal/utils"
)

// Column widths of the full-export table. Fixed so exports from different
// days line up in logs and diffs.
const (
	nameWidth    = 50
	parentWidth  = 30
	balanceWidth = 20
	alteredWidth = 15
)

// FormatLedgerTable renders a full export as an aligned table, one block
// per ledger, contact details indented under their row.
func FormatLedgerTable(records []model.LedgerRecord) string {
	header := fmt.Sprintf("%-*s | %-*s | %*s | %*s | %-*s",
		nameWidth, "LEDGER NAME",
		parentWidth, "PARENT",
		balanceWidth, "OPENING BALANCE",
		balanceWidth, "CLOSING BALANCE",
		alteredWidth, "ALTERED ON")

	blocks := make([]string, 0, len(records))
	for i := range records {
		blocks = append(blocks, ledgerBlock(&records[i]))
	}

	return header + "\n" + strings.Repeat("-", len(header)) + "\n" +
		strings.Join(blocks, "\n\n")
}

func ledgerBlock(rec *model.LedgerRecord) string {
	line := fmt.Sprintf("%-*s | %-*s | %*s | %*s | %-*s",
		nameWidth, rec.Name,
		parentWidth, rec.Parent,
		balanceWidth, utils.FormatBalance(rec.OpeningBalance),
		balanceWidth, utils.FormatBalance(rec.ClosingBalance),
		alteredWidth, rec.AlteredOn)

	details := make([]string, 0, 8)
	for _, d := range []struct{ label, value string }{
		{"ADDRESS", rec.Address},
		{"STATE", rec.State},
		{"COUNTRY", rec.Country},
		{"PINCODE", rec.PinCode},
		{"EMAIL", rec.Email},
		{"PHONE", rec.Phone},
		{"MOBILE", rec.Mobile},
		{"GSTIN", rec.GSTIN},
	} {
		if d.value != "" {
			details = append(details, fmt.Sprintf("    ◦ %s: %s", d.label, d.value))
		}
	}
	if len(details) == 0 {
		return line
	}
	return line + "\n" + strings.Join(details, "\n")
}
