package commands

import (
	"time"

	"resume-visitor/internal/verifier"
	"resume-visitor/internal/visitor"
)

type SiteConfig struct {
	URL          string `json:"url"`
	Name         string `json:"name"`
	NameSelector string `json:"name_selector"`
}

type VerifierConfig struct {
	Baseline          float64 `json:"baseline"`
	RequestsPerSecond float64 `json:"requests_per_second"`
}

// Config is the shape of config.json5, every field is optional.
type Config struct {
	Endpoint       string         `json:"endpoint"`
	User           string         `json:"user"`
	Selector       string         `json:"selector"`
	TimeoutSeconds float64        `json:"timeout_seconds"`
	Site           SiteConfig     `json:"site"`
	Verifier       VerifierConfig `json:"verifier"`
}

func (c Config) timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds * float64(time.Second))
}

func (c Config) ClientOptions() visitor.ClientOptions {
	endpoint := c.Endpoint
	if endpoint == "" {
		endpoint = visitor.DefaultEndpoint
	}
	return visitor.ClientOptions{
		Endpoint: endpoint,
		User:     c.User,
		Selector: c.Selector,
		Timeout:  c.timeout(),
	}
}

func (c Config) VerifierOptions() verifier.Options {
	return verifier.Options{
		SiteURL:           c.Site.URL,
		Endpoint:          c.Endpoint,
		User:              c.User,
		SiteName:          c.Site.Name,
		NameSelector:      c.Site.NameSelector,
		Baseline:          c.Verifier.Baseline,
		RequestsPerSecond: c.Verifier.RequestsPerSecond,
		Timeout:           c.timeout(),
	}
}
