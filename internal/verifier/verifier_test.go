package verifier

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"resume-visitor/internal/components/telemetry"
	"resume-visitor/internal/testutil"

	"github.com/stretchr/testify/require"
)

func newTestVerifier(t testing.TB, service *testutil.CountingService, tel telemetry.API) Verifier {
	v, err := New(Options{
		SiteURL:           service.SiteURL(),
		Endpoint:          service.Endpoint(),
		RequestsPerSecond: 1000,
	}, tel)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func requireFailed(t *testing.T, report Report, names ...string) {
	t.Helper()
	failed := map[string]bool{}
	for _, name := range names {
		failed[name] = true
	}
	for _, res := range report.Results {
		require.Equal(t, !failed[res.Name], res.Passed, "%s: %v", res.Name, res.Err)
	}
}

func TestNewDefaults(t *testing.T) {
	v, err := New(Options{}, telemetry.NewRecorder())
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, DefaultSiteURL, v.opts.SiteURL)
	require.Equal(t, "https://vsubtle.com/lambda", v.opts.Endpoint)
	require.Equal(t, "vsubtle", v.opts.User)
	require.Equal(t, DefaultSiteName, v.opts.SiteName)
	require.Equal(t, "h1", v.opts.NameSelector)
	require.Equal(t, float64(1), v.opts.Baseline)

	_, err = New(Options{Endpoint: "vsubtle.com/lambda"}, telemetry.NewRecorder())
	require.Error(t, err)
}

func TestRunPasses(t *testing.T) {
	service := testutil.NewCountingService(t)
	service.Seed("vsubtle", 10)
	tel := telemetry.NewRecorder()

	report := newTestVerifier(t, service, tel).Run(context.Background())

	require.True(t, report.Passed())
	require.Len(t, report.Results, 5)
	require.Equal(t, CheckNameHeading, report.Results[0].Name)
	require.Equal(t, CheckCountBaseline, report.Results[4].Name)
	require.Empty(t, tel.Filter(telemetry.LevelWarning))

	// one post per api check
	require.Len(t, service.Requests(), 4)
	require.Equal(t, int64(14), service.Count("vsubtle"))
}

func TestRunUninitializedCounter(t *testing.T) {
	service := testutil.NewCountingService(t)
	tel := telemetry.NewRecorder()

	// fresh counter: the baseline check sees the 4th visit, so raise the baseline above it
	v, err := New(Options{
		SiteURL:           service.SiteURL(),
		Endpoint:          service.Endpoint(),
		Baseline:          4,
		RequestsPerSecond: 1000,
	}, tel)
	if err != nil {
		t.Fatal(err)
	}
	report := v.Run(context.Background())

	requireFailed(t, report, CheckCountBaseline)
	res, ok := report.Result(CheckCountBaseline)
	require.True(t, ok)
	require.ErrorContains(t, res.Err, "count is 4, expected it to be greater than 4")

	warnings := tel.Filter(telemetry.LevelWarning)
	require.Len(t, warnings, 1)
	require.Equal(t, "verifier: "+CheckCountBaseline, warnings[0].ID)
}

func TestRunWrongSiteName(t *testing.T) {
	service := testutil.NewCountingService(t)
	service.Seed("vsubtle", 10)
	service.SetPage(`<html><body><h1>Someone Else</h1><h3></h3></body></html>`)

	report := newTestVerifier(t, service, telemetry.NewRecorder()).Run(context.Background())
	requireFailed(t, report, CheckNameHeading)
}

func TestRunServerError(t *testing.T) {
	service := testutil.NewCountingService(t)
	service.RespondWith(http.StatusInternalServerError, `{"message": "internal error"}`)

	report := newTestVerifier(t, service, telemetry.NewRecorder()).Run(context.Background())
	requireFailed(t, report, CheckStatus, CheckProperties, CheckPropertyTypes, CheckCountBaseline)
	require.Equal(t, 4, report.Failed())
}

func TestRunWrongShapes(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		failed []string
	}{
		{
			name:   "missing count",
			body:   `{"message": "hi"}`,
			failed: []string{CheckProperties, CheckPropertyTypes, CheckCountBaseline},
		},
		{
			name:   "count as string",
			body:   `{"message": "hi", "count": "42"}`,
			failed: []string{CheckPropertyTypes, CheckCountBaseline},
		},
		{
			name:   "message as number",
			body:   `{"message": 3, "count": 42}`,
			failed: []string{CheckPropertyTypes},
		},
		{
			name:   "count at baseline",
			body:   `{"message": "hi", "count": 1}`,
			failed: []string{CheckCountBaseline},
		},
		{
			name:   "not json",
			body:   `<html>oops</html>`,
			failed: []string{CheckProperties, CheckPropertyTypes, CheckCountBaseline},
		},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			service := testutil.NewCountingService(t)
			service.RespondWith(http.StatusOK, test.body)

			report := newTestVerifier(t, service, telemetry.NewRecorder()).Run(context.Background())
			requireFailed(t, report, test.failed...)
		})
	}
}

func TestRunUnreachable(t *testing.T) {
	service := testutil.NewCountingService(t)
	v := newTestVerifier(t, service, telemetry.NewRecorder())
	service.Server.Close()

	report := v.Run(context.Background())
	require.Equal(t, len(report.Results), report.Failed())
}

func TestReportRender(t *testing.T) {
	service := testutil.NewCountingService(t)
	service.RespondWith(http.StatusOK, `{"message": "hi", "count": 0}`)

	report := newTestVerifier(t, service, telemetry.NewRecorder()).Run(context.Background())

	var out bytes.Buffer
	report.Render(&out)
	rendered := out.String()
	for _, name := range []string{CheckNameHeading, CheckStatus, CheckProperties, CheckPropertyTypes, CheckCountBaseline} {
		require.Contains(t, rendered, name)
	}
	require.Contains(t, rendered, "pass")
	require.Contains(t, rendered, "fail")
	require.Contains(t, rendered, "count is 0, expected it to be greater than 1")
}
