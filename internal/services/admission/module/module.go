// Package module wires the admission service and exposes its ports
package module

import (
	"registrygate/internal/adapters/hosting"
	"registrygate/internal/adapters/hosting/github"
	"registrygate/internal/core/rules"
	"registrygate/internal/modkit"
	"registrygate/internal/services/admission/domain"
	"registrygate/internal/services/admission/service"
)

// Module defines the admission module
type Module struct {
	deps  modkit.Deps
	opts  Options
	ports Ports
}

// New constructs the module over the production hosting transport
func New(deps modkit.Deps, overrides Options, r rules.Rules) *Module {
	opts := FromConfig(deps.Cfg).merge(overrides)
	tr := hosting.New(hosting.Options{
		Timeout:    opts.Timeout,
		RatePerSec: opts.RatePerSec,
		Burst:      opts.Burst,
		UserAgent:  opts.UserAgent,
		GitBin:     opts.GitBin,
		GitHub: github.Options{
			BaseURL:   opts.APIBase,
			TokensCSV: opts.TokensCSV,
		},
	})
	return NewWithTransport(deps, opts, r, tr)
}

// NewWithTransport constructs the module over tr; opts are used as given
func NewWithTransport(deps modkit.Deps, opts Options, r rules.Rules, tr domain.Transport) *Module {
	svc := service.New(deps, service.Config{
		Concurrency: opts.Concurrency,
		Timeout:     opts.Timeout,
		LogsBaseURL: r.LogsBaseURL,
		Hosts:       r.SupportedHosts,
		Tiers:       r.Registry(),
	}, tr)

	deps.Log.Debug().
		Int("concurrency", opts.Concurrency).
		Dur("timeout", opts.Timeout).
		Int("hosts", len(r.SupportedHosts)).
		Msg("admission module ready")

	return &Module{deps: deps, opts: opts, ports: Ports{Evaluator: svc}}
}

// Name returns the module name
func (m *Module) Name() string { return "admission" }

// Ports returns the module ports (Evaluator)
func (m *Module) Ports() any { return m.ports }

// Options returns the effective options
func (m *Module) Options() Options { return m.opts }
