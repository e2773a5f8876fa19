// Package llm adapts language model backends to a single completion
// interface. Providers are chosen by name: openai, anthropic, ollama, gemini.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
)

// ErrUnknownProvider is returned by New for an unsupported provider name.
var ErrUnknownProvider = errors.New("unknown LLM provider")

// Request is a single-turn completion request.
type Request struct {
	System string
	Prompt string
}

// Provider completes prompts with one backend.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

// Options configures a provider. Empty fields take provider defaults.
type Options struct {
	Model      string
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

type factory struct {
	model  string
	keyEnv string
	build  func(ctx context.Context, opts Options) (Provider, error)
}

var providers = map[string]factory{
	"openai":    {model: "gpt-4o", keyEnv: "OPENAI_API_KEY", build: newOpenAI},
	"anthropic": {model: "claude-sonnet-4-5", keyEnv: "ANTHROPIC_API_KEY", build: newAnthropic},
	"ollama":    {model: "llama3", build: newOllama},
	"gemini":    {model: "gemini-2.5-flash", keyEnv: "GEMINI_API_KEY", build: newGemini},
}

// Names returns the supported provider names, sorted.
func Names() []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(name string) string {
	return providers[strings.ToLower(name)].model
}

// New returns the provider called name. A missing API key falls back to the
// provider's usual environment variable.
func New(ctx context.Context, name string, opts Options) (Provider, error) {
	f, ok := providers[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownProvider, name, strings.Join(Names(), ", "))
	}
	if opts.Model == "" {
		opts.Model = f.model
	}
	if opts.APIKey == "" && f.keyEnv != "" {
		opts.APIKey = os.Getenv(f.keyEnv)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	return f.build(ctx, opts)
}

// QuerySystem is the system prompt for context questions.
const QuerySystem = "You are a helpful assistant. Answer questions based on the provided context."

// FormatContext renders files as "File: name\nContent:\n..." blocks
// separated by blank lines, in name order.
func FormatContext(files map[string]string) string {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	blocks := make([]string, 0, len(names))
	for _, name := range names {
		blocks = append(blocks, "File: "+name+"\nContent:\n"+files[name])
	}
	return strings.Join(blocks, "\n\n")
}

// Query asks p a question about the given files.
func Query(ctx context.Context, p Provider, query string, files map[string]string) (string, error) {
	return p.Complete(ctx, Request{
		System: QuerySystem,
		Prompt: "Context:\n" + FormatContext(files) + "\n\nQuery: " + query,
	})
}
