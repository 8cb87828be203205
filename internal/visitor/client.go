// Package visitor reports a page visit to the counting service and renders
// the returned count into the page.
package visitor

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"resume-visitor/internal/components/assert"
	"resume-visitor/internal/components/telemetry"
	"resume-visitor/internal/page"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultEndpoint = "https://vsubtle.com/lambda"
	DefaultUser     = "vsubtle"
	DefaultSelector = "h3"
	DefaultTimeout  = 10 * time.Second
)

const (
	report_client_fetch        = "client.fetch"
	report_client_report_visit = "client.report-visit"
)

var tracer = otel.Tracer("resume-visitor/visitor")

type ClientOptions struct {
	// Endpoint is the full url of the counting service.
	Endpoint string
	// User identifies the site whose visits are counted.
	User string
	// Selector locates the heading the count is written to, the first match wins.
	Selector string
	// Timeout bounds a single request, 0 means DefaultTimeout and a negative value
	// disables the timeout.
	Timeout time.Duration
}

// Client is safe for concurrent use, it holds no state between visits.
type Client struct {
	endpoint string
	user     string
	selector string
	http     *resty.Client
	tel      telemetry.API
}

func NewClient(opts ClientOptions, tel telemetry.API) (Client, error) {
	assert.NotNil(tel)
	tel = telemetry.NewScopedAPI("visitor", tel)

	if opts.Endpoint == "" {
		return Client{}, fmt.Errorf("visitor: endpoint must be specified")
	}
	endpoint, err := url.Parse(opts.Endpoint)
	if err != nil {
		return Client{}, fmt.Errorf("visitor: parse endpoint: %w", err)
	}
	if endpoint.Scheme != "http" && endpoint.Scheme != "https" {
		return Client{}, fmt.Errorf("visitor: endpoint must be an http(s) url, got '%s'", opts.Endpoint)
	}

	if opts.User == "" {
		opts.User = DefaultUser
	}
	if opts.Selector == "" {
		opts.Selector = DefaultSelector
	}
	switch {
	case opts.Timeout == 0:
		opts.Timeout = DefaultTimeout
	case opts.Timeout < 0:
		opts.Timeout = 0
	}

	httpClient := resty.New()
	httpClient.SetTimeout(opts.Timeout)
	httpClient.SetHeader("Content-Type", "application/json")
	telemetry.InstrumentResty(httpClient, "resume-visitor/visitor/http", tel)

	return Client{
		endpoint: endpoint.String(),
		user:     opts.User,
		selector: opts.Selector,
		http:     httpClient,
		tel:      tel,
	}, nil
}

// Fetch posts a single visit to the counting service and returns its response.
//
// The returned error is a *NetworkError, *StatusError or *PayloadError.
func (c Client) Fetch(ctx context.Context) (Response, error) {
	ctx, span := tracer.Start(ctx, "client:Fetch")
	defer span.End()

	res, err := c.http.R().
		SetContext(ctx).
		SetBody(Request{User: c.user}).
		Post(c.endpoint)
	if err != nil {
		span.SetStatus(codes.Error, "failed to post visit")
		return Response{}, &NetworkError{Err: err}
	}
	if !res.IsSuccess() {
		span.SetStatus(codes.Error, res.Status())
		return Response{}, &StatusError{Code: res.StatusCode(), Status: res.Status()}
	}

	out, err := decodeResponse(res.Body())
	if err != nil {
		span.SetStatus(codes.Error, "failed to decode response")
		return Response{}, err
	}

	span.SetAttributes(attribute.Float64("visitor.count", out.Count))
	c.tel.ReportDebug(report_client_fetch, out.Message, out.Count)
	return out, nil
}

// ReportVisit reports a visit and writes "Visitor Count: {count}" into the
// counter heading of `p`. It returns true if the page was updated.
//
// Failures of any kind are reported once through telemetry and leave the page
// untouched, they never escape to the caller.
func (c Client) ReportVisit(ctx context.Context, p *page.Page) (rendered bool) {
	ctx, span := tracer.Start(ctx, "client:ReportVisit")
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			c.fail(span, fmt.Errorf("panic: %v", r))
			rendered = false
		}
	}()

	if p == nil {
		c.fail(span, fmt.Errorf("no page to render into"))
		return false
	}

	res, err := c.Fetch(ctx)
	if err != nil {
		c.fail(span, err)
		return false
	}

	err = p.SetText(c.selector, Heading(res.Count))
	if err != nil {
		c.fail(span, err)
		return false
	}
	return true
}

func (c Client) fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	c.tel.ReportBroken(report_client_report_visit, Classify(err).String(), err)
}
