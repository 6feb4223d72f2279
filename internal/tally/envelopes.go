package tally

import (
	"fmt"

	"ledger-gateway/internal/synthesizer"
)

// Envelope templates for the gateway's TDL request protocol. The shapes are
// fixed; only the balance field name varies.

const companiesEnvelope = `<ENVELOPE>
    <HEADER>
        <VERSION>1</VERSION>
        <TALLYREQUEST>Export</TALLYREQUEST>
        <TYPE>Collection</TYPE>
        <ID>Company Collection</ID>
    </HEADER>
    <BODY>
        <DESC>
            <STATICVARIABLES>
                <SVEXPORTFORMAT>$$SysName:XML</SVEXPORTFORMAT>
            </STATICVARIABLES>
            <TDL>
                <TDLMESSAGE>
                    <COLLECTION NAME="Company Collection" ISMODIFY="No">
                        <TYPE>Company</TYPE>
                        <FETCH>NAME</FETCH>
                    </COLLECTION>
                </TDLMESSAGE>
            </TDL>
        </DESC>
    </BODY>
</ENVELOPE>`

const ledgersEnvelope = `<ENVELOPE>
    <HEADER>
        <VERSION>1</VERSION>
        <TALLYREQUEST>Export</TALLYREQUEST>
        <TYPE>Collection</TYPE>
        <ID>Ledger Collection</ID>
    </HEADER>
    <BODY>
        <DESC>
            <STATICVARIABLES>
                <SVEXPORTFORMAT>$$SysName:XML</SVEXPORTFORMAT>
            </STATICVARIABLES>
            <TDL>
                <TDLMESSAGE>
                    <COLLECTION NAME="Ledger Collection" ISMODIFY="No">
                        <TYPE>Ledger</TYPE>
                        <FETCH>*</FETCH>
                    </COLLECTION>
                </TDLMESSAGE>
            </TDL>
        </DESC>
    </BODY>
</ENVELOPE>`

// sortedEnvelope is the top-1 report: descending order answers max,
// ascending answers min.
const sortedEnvelope = `<ENVELOPE>
    <HEADER>
        <TALLYREQUEST>Export</TALLYREQUEST>
        <TYPE>Data</TYPE>
        <ID>List of Ledgers</ID>
    </HEADER>
    <BODY>
        <DESC>
            <STATICVARIABLES>
                <SVEXPORTFORMAT>$$SysName:XML</SVEXPORTFORMAT>
            </STATICVARIABLES>
            <TDL>
                <TDLMESSAGE>
                    <REPORT NAME="List of Ledgers" ISMODIFY="No">
                        <FORMS>Ledger</FORMS>
                        <VARIABLE>
                            <SVSORTFIELD>%s</SVSORTFIELD>
                            <SVSORTORDER>%s</SVSORTORDER>
                        </VARIABLE>
                        <FETCH>%s</FETCH>
                    </REPORT>
                </TDLMESSAGE>
            </TDL>
        </DESC>
    </BODY>
</ENVELOPE>`

const aggregateEnvelope = `<ENVELOPE>
    <HEADER>
        <TALLYREQUEST>Export</TALLYREQUEST>
        <TYPE>Data</TYPE>
        <ID>Ledger Summary</ID>
    </HEADER>
    <BODY>
        <DESC>
            <STATICVARIABLES>
                <SVEXPORTFORMAT>$$SysName:XML</SVEXPORTFORMAT>
            </STATICVARIABLES>
            <TDL>
                <TDLMESSAGE>
                    <REPORT NAME="Ledger Summary" ISMODIFY="No">
                        <FORMS>Ledger</FORMS>
                        <VARIABLE>
                            <SVAGGREGATEMETHOD>%s</SVAGGREGATEMETHOD>
                            <SVAGGREGATEFIELD>%s</SVAGGREGATEFIELD>
                        </VARIABLE>
                        <FETCH>%s</FETCH>
                    </REPORT>
                </TDLMESSAGE>
            </TDL>
        </DESC>
    </BODY>
</ENVELOPE>`

const countEnvelope = `<ENVELOPE>
    <HEADER>
        <TALLYREQUEST>Export</TALLYREQUEST>
        <TYPE>Collection</TYPE>
        <ID>Ledger Collection</ID>
    </HEADER>
    <BODY>
        <DESC>
            <STATICVARIABLES>
                <SVEXPORTFORMAT>$$SysName:XML</SVEXPORTFORMAT>
            </STATICVARIABLES>
            <TDL>
                <TDLMESSAGE>
                    <COLLECTION NAME="Ledger Collection" ISMODIFY="No">
                        <TYPE>Ledger</TYPE>
                        <FETCH>NAME</FETCH>
                        <COMPUTE>Count: $$CollectionField:$NAME:Count:Ledger</COMPUTE>
                    </COLLECTION>
                </TDLMESSAGE>
            </TDL>
        </DESC>
    </BODY>
</ENVELOPE>`

const fullExportEnvelope = `<ENVELOPE>
    <HEADER>
        <VERSION>1</VERSION>
        <TALLYREQUEST>Export</TALLYREQUEST>
        <TYPE>Collection</TYPE>
        <ID>Ledger Details</ID>
    </HEADER>
    <BODY>
        <DESC>
            <STATICVARIABLES>
                <SVEXPORTFORMAT>$$SysName:XML</SVEXPORTFORMAT>
            </STATICVARIABLES>
            <TDL>
                <TDLMESSAGE>
                    <COLLECTION NAME="Ledger Details" ISMODIFY="No">
                        <TYPE>Ledger</TYPE>
                        <FETCH>
                            NAME, PARENT, ADDRESS, STATE, COUNTRY,
                            PINCODE, EMAIL, PHONE, MOBILE, GSTIN,
                            OPENINGBALANCE, CLOSINGBALANCE, ALTEREDON
                        </FETCH>
                    </COLLECTION>
                </TDLMESSAGE>
            </TDL>
        </DESC>
    </BODY>
</ENVELOPE>`

// envelopeFor builds the request body for a planned command.
func envelopeFor(cmd synthesizer.TallyCommand) string {
	field := cmd.Field
	if field == "" {
		field = synthesizer.FieldClosingBalance
	}

	switch cmd.Op {
	case synthesizer.TallyCompanies:
		return companiesEnvelope
	case synthesizer.TallyLedgers:
		return ledgersEnvelope
	case synthesizer.TallyMax:
		return fmt.Sprintf(sortedEnvelope, field, "Descending", field)
	case synthesizer.TallyMin:
		return fmt.Sprintf(sortedEnvelope, field, "Ascending", field)
	case synthesizer.TallySum:
		return fmt.Sprintf(aggregateEnvelope, "Sum", field, field)
	case synthesizer.TallyAvg:
		return fmt.Sprintf(aggregateEnvelope, "Average", field, field)
	case synthesizer.TallyCount:
		return countEnvelope
	}
	return fullExportEnvelope
}
