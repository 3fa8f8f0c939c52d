package category

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		name      string
		message   string
		stack     string
		component string
		operation string
		want      string
	}{
		{"supabase message", "supabase insert rejected", "", "api", "", CategoryDatabaseConnection},
		{"connection message", "connection refused", "", "worker", "", CategoryDatabaseConnection},
		{"supabase in stack", "write failed", "at supabase.from", "api", "", CategoryDatabaseConnection},
		{"openai message", "openai returned 500", "", "content", "", CategoryAPIIntegration},
		{"rate limit message", "rate limit exceeded", "", "worker", "", CategoryAPIIntegration},
		{"campaign component", "step exploded", "", "campaign-runner", "", CategoryCampaignManagement},
		{"campaign operation", "step exploded", "", "worker", "create_campaign", CategoryCampaignManagement},
		{"blog component", "draft rejected", "", "blog-writer", "", CategoryContentGeneration},
		{"generation message", "generation stalled", "", "worker", "", CategoryContentGeneration},
		{"discovery component", "no results", "", "discovery", "", CategoryLinkDiscovery},
		{"scraping message", "scraping blocked by robots", "", "worker", "", CategoryLinkDiscovery},
		{"auth message", "auth token expired", "", "worker", "", CategoryUserAuthentication},
		{"unauthorized message", "unauthorized access", "", "worker", "", CategoryUserAuthentication},
		{"stripe message", "stripe charge declined", "", "worker", "", CategoryPaymentProcessing},
		{"ui component", "state out of sync", "", "ui-panel", "", CategoryUIInteraction},
		{"render message", "render took too long", "", "worker", "", CategoryUIInteraction},
		{"unmatched falls back", "something odd happened", "", "worker", "", CategoryAPIIntegration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Categorize(tt.message, tt.stack, tt.component, tt.operation)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("database keyword beats timeout keyword", func(t *testing.T) {
		got := Categorize("database timeout after 30s", "", "campaign", "")
		assert.Equal(t, CategoryDatabaseConnection, got)
	})

	t.Run("timeout beats campaign component", func(t *testing.T) {
		got := Categorize("timeout waiting for response", "", "campaign-runner", "")
		assert.Equal(t, CategoryAPIIntegration, got)
	})

	t.Run("always returns a known category", func(t *testing.T) {
		system := NewSystem(nil, nil)
		inputs := []string{"", "???", "plain failure", "DATABASE DOWN", "Stripe"}
		for _, msg := range inputs {
			got := Categorize(msg, "", "", "")
			assert.NotNil(t, system.Category(got), "message %q", msg)
		}
	})
}

func TestSignature(t *testing.T) {
	t.Run("digit runs collapse", func(t *testing.T) {
		a := Signature("user 123 not found", "", "api", "lookup")
		b := Signature("user 45678 not found", "", "api", "lookup")
		assert.Equal(t, a, b)
	})

	t.Run("quotes and whitespace normalize", func(t *testing.T) {
		a := Signature(`cannot open "config"`, "", "api", "load")
		b := Signature("cannot  open\tconfig", "", "api", "load")
		assert.Equal(t, a, b)
	})

	t.Run("distinct components stay distinct", func(t *testing.T) {
		a := Signature("not found", "", "api", "lookup")
		b := Signature("not found", "", "worker", "lookup")
		assert.NotEqual(t, a, b)
	})

	t.Run("empty code becomes unknown", func(t *testing.T) {
		sig := Signature("boom", "", "api", "call")
		assert.Equal(t, "api:call:unknown:boom", sig)
	})

	t.Run("long messages truncate", func(t *testing.T) {
		long := strings.Repeat("x", 500)
		sig := Signature(long, "E1", "api", "call")
		assert.Equal(t, "api:call:E1:"+strings.Repeat("x", 100), sig)
	})
}
