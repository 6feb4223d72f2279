package tally

import (
	"strings"
	"testing"
)

const exportBody = `<ENVELOPE>
<BODY><DATA><COLLECTION>
<LEDGER NAME="Acme Traders">
  <PARENT>Sundry Debtors</PARENT>
  <GSTIN>22AAAAA0000A1Z5</GSTIN>
  <OPENINGBALANCE>0</OPENINGBALANCE>
  <CLOSINGBALANCE>1234567.89</CLOSINGBALANCE>
  <ALTEREDON>20240315</ALTEREDON>
</LEDGER>
<LEDGER>
  <NAME>Globex</NAME>
  <CLOSINGBALANCE>500</CLOSINGBALANCE>
  <ALTEREDON>20231201</ALTEREDON>
</LEDGER>
<LEDGER NAME="Broken"><PARENT>&;</PARENT></LEDGER>
<LEDGER NAME="No Date">
  <CLOSINGBALANCE>10</CLOSINGBALANCE>
</LEDGER>
</COLLECTION></DATA></BODY>
</ENVELOPE>`

func TestParseLedgersRecoversFromMalformedSibling(t *testing.T) {
	records, malformed := ParseLedgers([]byte(exportBody))

	if malformed != 1 {
		t.Errorf("malformed count: got %d, want 1", malformed)
	}
	if len(records) != 3 {
		t.Fatalf("records: got %d, want 3", len(records))
	}

	// Name from attribute and from child element both work.
	if records[0].Name != "Acme Traders" || records[1].Name != "Globex" {
		t.Errorf("names: got %s, %s", records[0].Name, records[1].Name)
	}
}

func TestParseLedgersNormalizesWireDates(t *testing.T) {
	records, _ := ParseLedgers([]byte(exportBody))

	if records[0].AlteredOn != "15/03/24" {
		t.Errorf("wire date: got %q, want 15/03/24", records[0].AlteredOn)
	}
	if !records[0].HasDate() {
		t.Error("parsed date must be set")
	}
	if records[2].HasDate() {
		t.Error("date-less record must report no date")
	}
}

func TestSortByAlteredDescDatelessLast(t *testing.T) {
	records, _ := ParseLedgers([]byte(exportBody))
	SortByAlteredDesc(records)

	want := []string{"Acme Traders", "Globex", "No Date"}
	for i, name := range want {
		if records[i].Name != name {
			t.Errorf("position %d: got %s, want %s", i, records[i].Name, name)
		}
	}

	// Strictly non-increasing by date.
	for i := 1; i < len(records); i++ {
		if sortKey(&records[i]).After(sortKey(&records[i-1])) {
			t.Errorf("order violated at %d", i)
		}
	}
}

func TestFormatLedgerTable(t *testing.T) {
	records, _ := ParseLedgers([]byte(exportBody))
	SortByAlteredDesc(records)

	table := FormatLedgerTable(records)
	if !strings.Contains(table, "LEDGER NAME") {
		t.Error("missing header")
	}
	// A zero balance renders as the explicit zero literal, never a dash.
	if !strings.Contains(table, "₹0.00") {
		t.Errorf("missing zero balance literal:\n%s", table)
	}
	if !strings.Contains(table, "₹1,234,567.89") {
		t.Errorf("missing grouped balance:\n%s", table)
	}
	if !strings.Contains(table, "◦ GSTIN: 22AAAAA0000A1Z5") {
		t.Errorf("missing detail line:\n%s", table)
	}
}

func TestLedgerFragmentsSkipsPrefixedNames(t *testing.T) {
	body := `<LEDGERNAME>not a ledger</LEDGERNAME><LEDGER NAME="Real"><PARENT>x</PARENT></LEDGER>`
	fragments := ledgerFragments([]byte(body))
	if len(fragments) != 1 {
		t.Fatalf("got %d fragments, want 1", len(fragments))
	}
	if !strings.Contains(string(fragments[0]), `NAME="Real"`) {
		t.Errorf("wrong fragment: %s", fragments[0])
	}
}
