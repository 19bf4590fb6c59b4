package module

import (
	"context"
	"net/url"
	"testing"
	"time"

	"registrygate/internal/core/access"
	"registrygate/internal/core/index"
	"registrygate/internal/core/rules"
	"registrygate/internal/modkit"
	pmod "registrygate/internal/modkit/module"
	"registrygate/internal/platform/config"
	kit "registrygate/internal/platform/testkit"
	"registrygate/internal/services/admission/domain"
)

func TestFromConfig_Defaults(t *testing.T) {
	for _, k := range []string{"CONCURRENCY", "TIMEOUT", "RPS", "BURST", "USER_AGENT", "GIT_BIN", "GH_TOKENS", "GH_API_BASE", "TRACE_EXPORTER"} {
		t.Setenv("ADMISSION_"+k, "")
	}
	o := FromConfig(config.New())
	want := Options{
		Concurrency:   4,
		Timeout:       30 * time.Second,
		RatePerSec:    5,
		Burst:         5,
		UserAgent:     "registrygate-parser",
		GitBin:        "git",
		APIBase:       "https://api.github.com",
		TraceExporter: "none",
	}
	if o != want {
		t.Fatalf("defaults:\n got %+v\nwant %+v", o, want)
	}
}

func TestFromConfig_Env(t *testing.T) {
	t.Setenv("ADMISSION_CONCURRENCY", "9")
	t.Setenv("ADMISSION_TIMEOUT", "5s")
	t.Setenv("ADMISSION_GH_TOKENS", "a,b")
	t.Setenv("ADMISSION_GH_API_BASE", "https://ghe.example.com/api/v3/")
	t.Setenv("ADMISSION_TRACE_EXPORTER", "STDOUT")

	o := FromConfig(config.New())
	if o.Concurrency != 9 || o.Timeout != 5*time.Second || o.TokensCSV != "a,b" {
		t.Fatalf("env not applied: %+v", o)
	}
	if o.APIBase != "https://ghe.example.com/api/v3" {
		t.Fatalf("api base = %q", o.APIBase)
	}
	if o.TraceExporter != "stdout" {
		t.Fatalf("trace exporter = %q", o.TraceExporter)
	}
}

func TestFromConfig_BadEnumPanics(t *testing.T) {
	t.Setenv("ADMISSION_TRACE_EXPORTER", "jaeger")
	kit.MustPanic(t, func() { FromConfig(config.New()) })
}

func TestMerge(t *testing.T) {
	base := Options{Concurrency: 4, Timeout: time.Second, GitBin: "git", TraceExporter: "none"}
	got := base.merge(Options{Concurrency: 8, GitBin: "/usr/bin/git"})
	if got.Concurrency != 8 || got.GitBin != "/usr/bin/git" {
		t.Fatalf("overrides not applied: %+v", got)
	}
	if got.Timeout != time.Second || got.TraceExporter != "none" {
		t.Fatalf("zero overrides must keep base values: %+v", got)
	}
}

type stubTransport struct{}

func (stubTransport) Resolve(_ context.Context, u *url.URL) (*url.URL, error) { return u, nil }
func (stubTransport) Probe(context.Context, string) error                  { return nil }
func (stubTransport) Tags(context.Context, string) ([]string, error) {
	return []string{"1.0.0"}, nil
}
func (stubTransport) ReadFile(context.Context, string, string, string) ([]byte, error) {
	return []byte("name=Lib\nversion=1.0.0\n"), nil
}

func TestModule_PortsResolveEvaluator(t *testing.T) {
	m := NewWithTransport(modkit.Deps{}, Options{Concurrency: 2, Timeout: time.Second}, rules.Defaults(), stubTransport{})
	if m.Name() != "admission" {
		t.Fatalf("name = %q", m.Name())
	}

	ev := pmod.MustPortsOf[domain.EvaluatorPort](m)
	diff := "diff --git a/repositories.txt b/repositories.txt\n" +
		"index 1111111..2222222 100644\n" +
		"--- a/repositories.txt\n" +
		"+++ b/repositories.txt\n" +
		"@@ -1 +1,2 @@\n" +
		" https://github.com/a/b\n" +
		"+https://github.com/someone/Lib\n"
	v, err := ev.Evaluate(context.Background(), domain.Request{
		Diff:     []byte(diff),
		ListName: "repositories.txt",
		Index:    index.New([]string{"https://github.com/a/b"}),
		Access:   access.New(),
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if v.IndexEntry != "https://github.com/someone/Lib.git|Contributed|Lib" {
		t.Fatalf("index entry = %q", v.IndexEntry)
	}
}

func TestNew_BuildsHostingTransport(t *testing.T) {
	t.Setenv("ADMISSION_TRACE_EXPORTER", "")
	m := New(modkit.Deps{}, Options{Concurrency: 3, UserAgent: "ua"}, rules.Defaults())
	if m.Options().Concurrency != 3 || m.Options().UserAgent != "ua" {
		t.Fatalf("overrides lost: %+v", m.Options())
	}
	if _, ok := pmod.PortsOf[domain.EvaluatorPort](m); !ok {
		t.Fatalf("evaluator port missing")
	}
}
