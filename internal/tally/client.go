package tally

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ledger-gateway/internal/model"
	"ledger-gateway/internal/synthesizer"
	"ledger-gateway/internal/utils"
)

// licenseSentinel appears in the response body when the gateway's XML
// interface is switched off; the gateway answers HTTP but speaks nothing
// useful.
const licenseSentinel = "License server is Running"

const remediation = `Tally XML service is not enabled!
Please enable XML in Tally:
1. Open Tally
2. Press F12 > Configure
3. Go to Advanced Configuration
4. Set 'Enable XML' to Yes
5. Restart Tally`

const connectHint = `Cannot connect to Tally. Make sure:
1. Tally is running
2. XML services are enabled (F12 > Configure > Advanced Config)
3. You're using correct host/port (default: localhost:9000)`

// Client speaks the gateway's XML-over-HTTP protocol. One outstanding
// exchange per invocation; every request carries the configured timeout.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg model.TallyConfig) *Client {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 9000
	}
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:    fmt.Sprintf("http://%s:%d", host, port),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) exchange(ctx context.Context, envelope string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL,
		strings.NewReader(envelope))
	if err != nil {
		return nil, utils.NewBackendFailure(err, "building gateway request")
	}
	req.Header.Set("Content-Type", "application/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, utils.NewBackendFailure(err, connectHint)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, utils.NewBackendFailure(err, "reading gateway response")
	}
	if strings.Contains(string(body), licenseSentinel) {
		return nil, utils.NewAppError(utils.ErrCodeProtocolDisabled, nil, remediation)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, utils.NewBackendFailure(nil,
			fmt.Sprintf("Tally connection failed: %d - %s", resp.StatusCode, body))
	}
	return body, nil
}

// Companies enumerates loaded company names.
func (c *Client) Companies(ctx context.Context) ([]string, error) {
	body, err := c.exchange(ctx, companiesEnvelope)
	if err != nil {
		return nil, err
	}
	return elementTexts(body, "NAME"), nil
}

// LedgerNames enumerates ledger names.
func (c *Client) LedgerNames(ctx context.Context) ([]string, error) {
	body, err := c.exchange(ctx, ledgersEnvelope)
	if err != nil {
		return nil, err
	}
	records, _ := ParseLedgers(body)
	names := make([]string, 0, len(records))
	for i := range records {
		names = append(names, records[i].Name)
	}
	return names, nil
}

// Scalar runs a sorted top-1, aggregate or count command and returns the
// single reported value.
func (c *Client) Scalar(ctx context.Context, cmd synthesizer.TallyCommand) (string, error) {
	body, err := c.exchange(ctx, envelopeFor(cmd))
	if err != nil {
		return "", err
	}

	element := strings.ToUpper(cmd.Field)
	if element == "" {
		element = strings.ToUpper(synthesizer.FieldClosingBalance)
	}
	if cmd.Op == synthesizer.TallyCount {
		element = "COUNT"
	}

	values := elementTexts(body, element)
	if len(values) == 0 {
		return "", utils.NewNoData(fmt.Sprintf("gateway reported no %s", element))
	}
	return values[0], nil
}

// FullExport fetches every ledger with the complete field set, normalized
// and sorted newest first.
func (c *Client) FullExport(ctx context.Context) ([]model.LedgerRecord, error) {
	body, err := c.exchange(ctx, fullExportEnvelope)
	if err != nil {
		return nil, err
	}

	records, malformed := ParseLedgers(body)
	if len(records) == 0 {
		if malformed > 0 {
			return nil, utils.NewAppError(utils.ErrCodeMalformedWire, nil,
				fmt.Sprintf("%d ledger fragments failed to decode", malformed))
		}
		return nil, utils.NewNoData("no ledgers found")
	}
	SortByAlteredDesc(records)
	return records, nil
}
