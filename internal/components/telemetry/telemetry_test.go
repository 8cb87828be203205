package telemetry

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestScopedAPI(t *testing.T) {
	rec := NewRecorder()
	scoped := NewScopedAPI("visitor", rec)

	scoped.ReportBroken("client.report-visit", errors.New("boom"))
	scoped.ReportWarning("client.fetch", "slow")
	scoped.ReportDebug("fetched", 42)
	scoped.ReportCount("verifier.run", 3)

	entries := rec.Entries()
	require.Len(t, entries, 4)
	require.Equal(t, Entry{Level: LevelBroken, ID: "visitor: client.report-visit", Params: []any{errors.New("boom")}}, entries[0])
	require.Equal(t, "visitor: client.fetch", entries[1].ID)
	require.Equal(t, "visitor: fetched", entries[2].ID)
	require.Equal(t, Entry{Level: LevelCount, ID: "visitor: verifier.run", Count: 3}, entries[3])

	require.Len(t, rec.Filter(LevelBroken), 1)
	require.Len(t, rec.Filter(LevelWarning), 1)
}

func TestSlogAPI(t *testing.T) {
	var buff bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buff, &slog.HandlerOptions{Level: slog.LevelInfo}))
	api := NewSlogAPIFromLogger(logger)

	api.ReportBroken("client.report-visit", "status", 500)
	require.Contains(t, buff.String(), "level=ERROR")
	require.Contains(t, buff.String(), "id=client.report-visit")
	require.Contains(t, buff.String(), "params.0=status")
	require.Contains(t, buff.String(), "params.1=500")

	buff.Reset()
	api.ReportDebug("ignored at info level")
	require.Empty(t, buff.String())

	api.ReportCount("verifier.run", 2)
	require.Contains(t, buff.String(), "n=2")
}

func TestInstrumentResty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := NewRecorder()
	client := resty.New()
	InstrumentResty(client, "test", rec)

	res, err := client.R().Get(server.URL)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, http.StatusTeapot, res.StatusCode())

	debug := rec.Filter(LevelDebug)
	require.Len(t, debug, 2)
	require.Equal(t, report_resty_request, debug[0].ID)
	require.Equal(t, report_resty_response, debug[1].ID)

	server.Close()
	_, err = client.R().Get(server.URL)
	require.Error(t, err)
	require.Len(t, rec.Filter(LevelDebug), 4)
	require.Empty(t, rec.Filter(LevelBroken))
}
