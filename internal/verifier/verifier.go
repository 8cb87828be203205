// Package verifier checks the deployed resume site and its counting service
// from the outside, the same way a visitor's browser sees them.
package verifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"resume-visitor/internal/components/assert"
	"resume-visitor/internal/components/telemetry"
	"resume-visitor/internal/page"
	"resume-visitor/internal/visitor"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

const (
	DefaultSiteURL      = "https://vsubtle.com"
	DefaultSiteName     = "Vernell Mangum"
	DefaultNameSelector = "h1"
	DefaultBaseline     = 1
)

const (
	CheckNameHeading    = "site.name-heading"
	CheckStatus         = "api.status"
	CheckProperties     = "api.properties"
	CheckPropertyTypes  = "api.property-types"
	CheckCountBaseline  = "api.count-initialized"
	report_verifier_run = "verifier.run"
)

var tracer = otel.Tracer("resume-visitor/verifier")

type Options struct {
	SiteURL      string
	Endpoint     string
	User         string
	SiteName     string
	NameSelector string
	// Baseline is the value the count must exceed for the counter to be considered initialized,
	// 0 means DefaultBaseline.
	Baseline float64
	// RequestsPerSecond paces the requests made by a run, 0 means 2 per second.
	RequestsPerSecond float64
	Timeout           time.Duration
}

type Verifier struct {
	opts Options
	http *resty.Client
	tel  telemetry.API
}

func New(opts Options, tel telemetry.API) (Verifier, error) {
	assert.NotNil(tel)
	tel = telemetry.NewScopedAPI("verifier", tel)

	if opts.SiteURL == "" {
		opts.SiteURL = DefaultSiteURL
	}
	if opts.Endpoint == "" {
		opts.Endpoint = visitor.DefaultEndpoint
	}
	for _, link := range []string{opts.SiteURL, opts.Endpoint} {
		parsed, err := url.Parse(link)
		if err != nil {
			return Verifier{}, fmt.Errorf("verifier: parse url: %w", err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return Verifier{}, fmt.Errorf("verifier: '%s' is not an http(s) url", link)
		}
	}
	if opts.User == "" {
		opts.User = visitor.DefaultUser
	}
	if opts.SiteName == "" {
		opts.SiteName = DefaultSiteName
	}
	if opts.NameSelector == "" {
		opts.NameSelector = DefaultNameSelector
	}
	if opts.Baseline == 0 {
		opts.Baseline = DefaultBaseline
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 2
	}
	if opts.Timeout <= 0 {
		opts.Timeout = visitor.DefaultTimeout
	}

	httpClient := resty.New()
	httpClient.SetTimeout(opts.Timeout)
	telemetry.InstrumentResty(httpClient, "resume-visitor/verifier/http", tel)

	// max burst of 1 so consecutive checks never fire at once
	limiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return limiter.Wait(req.Context())
	})

	return Verifier{
		opts: opts,
		http: httpClient,
		tel:  tel,
	}, nil
}

type Check struct {
	Name string
	run  func(ctx context.Context) error
}

// Checks returns the checks of a run in the order they are executed.
func (v Verifier) Checks() []Check {
	return []Check{
		{Name: CheckNameHeading, run: v.checkNameHeading},
		{Name: CheckStatus, run: v.checkStatus},
		{Name: CheckProperties, run: v.checkProperties},
		{Name: CheckPropertyTypes, run: v.checkPropertyTypes},
		{Name: CheckCountBaseline, run: v.checkCountBaseline},
	}
}

// Run executes every check, a failing check does not stop the ones after it.
func (v Verifier) Run(ctx context.Context) Report {
	ctx, span := tracer.Start(ctx, "verifier:Run")
	defer span.End()

	var report Report
	for _, check := range v.Checks() {
		start := time.Now()
		err := v.runCheck(ctx, check)
		result := Result{
			Name:     check.Name,
			Passed:   err == nil,
			Err:      err,
			Duration: time.Since(start),
		}
		if err != nil {
			v.tel.ReportWarning(check.Name, err)
		}
		report.Results = append(report.Results, result)
	}

	if !report.Passed() {
		span.SetStatus(codes.Error, "contract violated")
	}
	v.tel.ReportCount(report_verifier_run, int64(report.Failed()))
	return report
}

func (v Verifier) runCheck(ctx context.Context, check Check) (err error) {
	ctx, span := tracer.Start(ctx, fmt.Sprintf("check:%s", check.Name))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("check panicked: %v", r)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()
	return check.run(ctx)
}

func (v Verifier) checkNameHeading(ctx context.Context) error {
	res, err := v.http.R().
		SetContext(ctx).
		Get(v.opts.SiteURL)
	if err != nil {
		return fmt.Errorf("get site: %w", err)
	}
	if !res.IsSuccess() {
		return fmt.Errorf("get site: status %d", res.StatusCode())
	}

	doc, err := page.Parse(bytes.NewBuffer(res.Body()))
	if err != nil {
		return err
	}
	text, ok := doc.Text(v.opts.NameSelector)
	if !ok {
		return fmt.Errorf("site has no '%s' element", v.opts.NameSelector)
	}
	if !strings.Contains(text, v.opts.SiteName) {
		return fmt.Errorf("'%s' contains '%s', expected it to contain '%s'", v.opts.NameSelector, text, v.opts.SiteName)
	}
	return nil
}

// post makes a fresh visit, each call increments the counter.
func (v Verifier) post(ctx context.Context) (*resty.Response, error) {
	res, err := v.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(visitor.Request{User: v.opts.User}).
		Post(v.opts.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("post visit: %w", err)
	}
	return res, nil
}

func (v Verifier) postFields(ctx context.Context) (map[string]json.RawMessage, error) {
	res, err := v.post(ctx)
	if err != nil {
		return nil, err
	}
	if res.StatusCode() != 200 {
		return nil, fmt.Errorf("post visit: status %d", res.StatusCode())
	}
	fields, err := visitor.DecodeFields(res.Body())
	if err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	return fields, nil
}

// StatusText returns the reason phrase of a response, ex. "OK" for "200 OK".
func StatusText(res *resty.Response) string {
	status := strings.TrimPrefix(res.Status(), strconv.Itoa(res.StatusCode()))
	return strings.TrimSpace(status)
}

func (v Verifier) checkStatus(ctx context.Context) error {
	res, err := v.post(ctx)
	if err != nil {
		return err
	}
	if res.StatusCode() != 200 {
		return fmt.Errorf("status is %d, expected 200", res.StatusCode())
	}
	if text := StatusText(res); text != "OK" {
		return fmt.Errorf("status text is '%s', expected 'OK'", text)
	}
	return nil
}

func (v Verifier) checkProperties(ctx context.Context) error {
	fields, err := v.postFields(ctx)
	if err != nil {
		return err
	}
	var missing []string
	for _, name := range []string{"message", "count"} {
		if _, ok := fields[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("body is missing %s", strings.Join(missing, ", "))
	}
	return nil
}

func (v Verifier) checkPropertyTypes(ctx context.Context) error {
	fields, err := v.postFields(ctx)
	if err != nil {
		return err
	}
	if kind := visitor.KindOf(fields["message"]); kind != visitor.KindString {
		return fmt.Errorf("message is %s, expected string", kind)
	}
	if kind := visitor.KindOf(fields["count"]); kind != visitor.KindNumber {
		return fmt.Errorf("count is %s, expected number", kind)
	}
	return nil
}

func (v Verifier) checkCountBaseline(ctx context.Context) error {
	fields, err := v.postFields(ctx)
	if err != nil {
		return err
	}
	if kind := visitor.KindOf(fields["count"]); kind != visitor.KindNumber {
		return fmt.Errorf("count is %s, expected number", kind)
	}
	var count float64
	err = json.Unmarshal(fields["count"], &count)
	if err != nil {
		return err
	}
	if count <= v.opts.Baseline {
		return fmt.Errorf(
			"count is %s, expected it to be greater than %s",
			visitor.FormatCount(count),
			visitor.FormatCount(v.opts.Baseline),
		)
	}
	return nil
}
