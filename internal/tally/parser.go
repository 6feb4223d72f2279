package tally

import (
	"bytes"
	"encoding/xml"
	"sort"
	"strings"
	"time"

	"ledger-gateway/internal/model"
	"ledger-gateway/internal/utils"
)

// wireLedger mirrors one LEDGER element on the wire. The name can arrive as
// an attribute or as a child element; both are mapped.
type wireLedger struct {
	XMLName  xml.Name `xml:"LEDGER"`
	NameAttr string   `xml:"NAME,attr"`
	Name     string   `xml:"NAME"`

	Parent         string `xml:"PARENT"`
	Address        string `xml:"ADDRESS"`
	State          string `xml:"STATE"`
	Country        string `xml:"COUNTRY"`
	PinCode        string `xml:"PINCODE"`
	Email          string `xml:"EMAIL"`
	Phone          string `xml:"PHONE"`
	Mobile         string `xml:"MOBILE"`
	GSTIN          string `xml:"GSTIN"`
	OpeningBalance string `xml:"OPENINGBALANCE"`
	ClosingBalance string `xml:"CLOSINGBALANCE"`
	AlteredOn      string `xml:"ALTEREDON"`
}

// sortEpoch is where date-less records sort: the far past, so descending
// order puts them last.
var sortEpoch = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// ParseLedgers extracts every LEDGER element from a gateway response. Each
// fragment is decoded independently, so one malformed element never
// discards its well-formed siblings; the second return value counts the
// fragments that failed to decode.
func ParseLedgers(data []byte) ([]model.LedgerRecord, int) {
	var records []model.LedgerRecord
	malformed := 0

	for _, fragment := range ledgerFragments(data) {
		var wire wireLedger
		if err := xml.Unmarshal(fragment, &wire); err != nil {
			malformed++
			continue
		}
		rec, ok := normalize(&wire)
		if !ok {
			continue
		}
		records = append(records, rec)
	}
	return records, malformed
}

// ledgerFragments cuts the raw body into one byte slice per LEDGER element.
// Working on raw bytes keeps a broken sibling from poisoning the scan.
func ledgerFragments(data []byte) [][]byte {
	openTag := []byte("<LEDGER")
	closeTag := []byte("</LEDGER>")

	var fragments [][]byte
	for {
		start := bytes.Index(data, openTag)
		if start < 0 {
			return fragments
		}
		rest := data[start:]
		// Skip longer names sharing the prefix, like LEDGERNAME.
		if len(rest) > len(openTag) {
			switch rest[len(openTag)] {
			case '>', ' ', '\t', '\r', '\n', '/':
			default:
				data = rest[len(openTag):]
				continue
			}
		}
		end := bytes.Index(rest, closeTag)
		if end < 0 {
			// Unterminated trailing element; keep what decodes, drop the tail.
			fragments = append(fragments, rest)
			return fragments
		}
		fragments = append(fragments, rest[:end+len(closeTag)])
		data = rest[end+len(closeTag):]
	}
}

func normalize(wire *wireLedger) (model.LedgerRecord, bool) {
	name := strings.TrimSpace(wire.NameAttr)
	if name == "" {
		name = strings.TrimSpace(wire.Name)
	}
	if name == "" {
		return model.LedgerRecord{}, false
	}

	rec := model.LedgerRecord{
		Name:           name,
		Parent:         strings.TrimSpace(wire.Parent),
		Address:        strings.TrimSpace(wire.Address),
		State:          strings.TrimSpace(wire.State),
		Country:        strings.TrimSpace(wire.Country),
		PinCode:        strings.TrimSpace(wire.PinCode),
		Email:          strings.TrimSpace(wire.Email),
		Phone:          strings.TrimSpace(wire.Phone),
		Mobile:         strings.TrimSpace(wire.Mobile),
		GSTIN:          strings.TrimSpace(wire.GSTIN),
		OpeningBalance: strings.TrimSpace(wire.OpeningBalance),
		ClosingBalance: strings.TrimSpace(wire.ClosingBalance),
	}

	rec.AlteredOn = utils.FormatWireDate(strings.TrimSpace(wire.AlteredOn))
	if rec.AlteredOn != "" {
		if t, err := utils.ParseDisplayDate(rec.AlteredOn); err == nil {
			rec.AlteredOnDate = t
		}
	}
	return rec, true
}

// SortByAlteredDesc orders records newest first. Records without a parsable
// date take the sort epoch and land at the end.
func SortByAlteredDesc(records []model.LedgerRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return sortKey(&records[i]).After(sortKey(&records[j]))
	})
}

func sortKey(rec *model.LedgerRecord) time.Time {
	if rec.HasDate() {
		return rec.AlteredOnDate
	}
	return sortEpoch
}

// elementTexts collects the text of every element with the given upper-case
// local name, tolerating malformed surroundings by token-scanning.
func elementTexts(data []byte, name string) []string {
	var out []string
	dec := xml.NewDecoder(bytes.NewReader(data))
	depth := 0
	var buf strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if strings.EqualFold(t.Name.Local, name) {
				depth++
				buf.Reset()
			}
		case xml.CharData:
			if depth > 0 {
				buf.Write(t)
			}
		case xml.EndElement:
			if depth > 0 && strings.EqualFold(t.Name.Local, name) {
				depth--
				if s := strings.TrimSpace(buf.String()); s != "" {
					out = append(out, s)
				}
			}
		}
	}
}
