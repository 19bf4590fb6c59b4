package module

import (
	"time"

	"registrygate/internal/platform/config"
)

// Options controls admission behavior. Values may also be read from env
type Options struct {
	Concurrency int
	Timeout     time.Duration // per network operation

	// hosting transport
	RatePerSec float64
	Burst      int
	UserAgent  string
	GitBin     string

	// GitHub fast path, enabled by tokens
	TokensCSV string
	APIBase   string

	TraceExporter string
}

// FromConfig reads options using the ADMISSION_ prefix
func FromConfig(cfg config.Conf) Options {
	ad := cfg.Prefix("ADMISSION_")
	return Options{
		Concurrency:   ad.MayInt("CONCURRENCY", 4),
		Timeout:       ad.MayDuration("TIMEOUT", 30*time.Second),
		RatePerSec:    ad.MayFloat64("RPS", 5),
		Burst:         ad.MayInt("BURST", 5),
		UserAgent:     ad.MayString("USER_AGENT", "registrygate-parser"),
		GitBin:        ad.MayString("GIT_BIN", "git"),
		TokensCSV:     ad.MayString("GH_TOKENS", ""),
		APIBase:       ad.MayURL("GH_API_BASE", "https://api.github.com"),
		TraceExporter: ad.MayEnum("TRACE_EXPORTER", "none", "none", "stdout", "otlp"),
	}
}

// merge applies non-zero overrides over o
func (o Options) merge(over Options) Options {
	if over.Concurrency > 0 {
		o.Concurrency = over.Concurrency
	}
	if over.Timeout > 0 {
		o.Timeout = over.Timeout
	}
	if over.RatePerSec > 0 {
		o.RatePerSec = over.RatePerSec
	}
	if over.Burst > 0 {
		o.Burst = over.Burst
	}
	if over.UserAgent != "" {
		o.UserAgent = over.UserAgent
	}
	if over.GitBin != "" {
		o.GitBin = over.GitBin
	}
	if over.TokensCSV != "" {
		o.TokensCSV = over.TokensCSV
	}
	if over.APIBase != "" {
		o.APIBase = over.APIBase
	}
	if over.TraceExporter != "" {
		o.TraceExporter = over.TraceExporter
	}
	return o
}
