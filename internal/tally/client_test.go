package tally

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"ledger-gateway/internal/model"
	"ledger-gateway/internal/synthesizer"
	"ledger-gateway/internal/utils"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	host, portStr, err := net.SplitHostPort(strings.TrimPrefix(srv.URL, "http://"))
	if err != nil {
		t.Fatalf("parsing test server address: %v", err)
	}
	port, _ := strconv.Atoi(portStr)
	return NewClient(model.TallyConfig{Host: host, Port: port, Timeout: 5})
}

func TestClientDisabledInterfaceSentinel(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("TallyPrime Server is Running. License server is Running"))
	})

	_, err := client.FullExport(context.Background())
	if !utils.IsErrorType(err, utils.ErrCodeProtocolDisabled) {
		t.Fatalf("expected PROTOCOL_DISABLED, got %v", err)
	}
	if !strings.Contains(err.(*utils.AppError).Details, "Enable XML") {
		t.Errorf("remediation text missing: %v", err)
	}
}

func TestClientFullExport(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/xml" {
			t.Errorf("content type: got %s", ct)
		}
		w.Write([]byte(exportBody))
	})

	records, err := client.FullExport(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records", len(records))
	}
	// Newest first.
	if records[0].Name != "Acme Traders" {
		t.Errorf("first record: got %s", records[0].Name)
	}
}

func TestClientScalarCount(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), "<COMPUTE>") {
			t.Errorf("count envelope must carry a COMPUTE element")
		}
		w.Write([]byte("<ENVELOPE><COUNT>42</COUNT></ENVELOPE>"))
	})

	got, err := client.Scalar(context.Background(), synthesizer.TallyCommand{Op: synthesizer.TallyCount})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "42" {
		t.Errorf("got %q, want 42", got)
	}
}

func TestClientScalarNoData(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<ENVELOPE></ENVELOPE>"))
	})

	_, err := client.Scalar(context.Background(),
		synthesizer.TallyCommand{Op: synthesizer.TallyMax, Field: synthesizer.FieldClosingBalance})
	if !utils.IsErrorType(err, utils.ErrCodeNoData) {
		t.Errorf("expected NO_DATA, got %v", err)
	}
}

func TestClientConnectionRefused(t *testing.T) {
	client := NewClient(model.TallyConfig{Host: "127.0.0.1", Port: 1, Timeout: 1})

	_, err := client.Companies(context.Background())
	if !utils.IsErrorType(err, utils.ErrCodeBackendFailure) {
		t.Fatalf("expected BACKEND_FAILURE, got %v", err)
	}
}
