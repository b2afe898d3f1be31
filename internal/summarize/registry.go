// Package summarize generates LLM summaries for reconciled conversations.
// Providers are enumerated in configuration and assembled into an explicit
// Registry at startup; nothing here is initialized as package state.
package summarize

import (
	"context"
	"sort"

	"github.com/loorthu/dna/internal/config"
)

// Summarizer turns one conversation into a short summary.
type Summarizer interface {
	Name() string
	Summarize(ctx context.Context, conversation string) (string, error)
}

// Registry holds the enabled summarization providers in deterministic
// (name-sorted) order.
type Registry struct {
	providers []Summarizer
}

// NewRegistry builds a registry from the configured provider set. Disabled
// providers are skipped. All configured backends speak the OpenAI-compatible
// chat completions shape; the base URL decides where requests go.
func NewRegistry(providers map[string]config.Provider, prompt string) *Registry {
	names := make([]string, 0, len(providers))
	for name, p := range providers {
		if p.Enabled {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	r := &Registry{}
	for _, name := range names {
		r.providers = append(r.providers, newChatClient(name, providers[name], prompt))
	}
	return r
}

// Providers returns the enabled summarizers.
func (r *Registry) Providers() []Summarizer {
	return r.providers
}

// Empty reports whether no provider is enabled.
func (r *Registry) Empty() bool {
	return len(r.providers) == 0
}

// Names returns the provider names in registry order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.providers))
	for i, p := range r.providers {
		names[i] = p.Name()
	}
	return names
}
