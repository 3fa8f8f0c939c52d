package category

import (
	"regexp"
	"strings"
)

// Categorize maps an error to a taxonomy id. It is a pure function of its
// inputs and always returns a member of the fixed set: inputs matching no
// keyword group fall through to api_integration.
//
// Groups are tested in a fixed priority order, infrastructure first. Message
// keywords win over component names except where a group explicitly tests the
// component (campaign, content, link, ui).
func Categorize(message, stack, component, operation string) string {
	msg := strings.ToLower(message)
	stk := strings.ToLower(stack)

	switch {
	case strings.Contains(msg, "supabase"),
		strings.Contains(msg, "database"),
		strings.Contains(msg, "connection"),
		strings.Contains(msg, "postgres"),
		strings.Contains(stk, "supabase"):
		return CategoryDatabaseConnection

	case strings.Contains(msg, "openai"),
		strings.Contains(msg, "api key"),
		strings.Contains(msg, "rate limit"),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "fetch"):
		return CategoryAPIIntegration

	case strings.Contains(component, "campaign"),
		strings.Contains(msg, "campaign"),
		strings.Contains(operation, "campaign"):
		return CategoryCampaignManagement

	case strings.Contains(component, "content"),
		strings.Contains(component, "blog"),
		strings.Contains(msg, "generation"),
		strings.Contains(msg, "ai content"):
		return CategoryContentGeneration

	case strings.Contains(component, "link"),
		strings.Contains(component, "discovery"),
		strings.Contains(msg, "scraping"),
		strings.Contains(msg, "search"):
		return CategoryLinkDiscovery

	case strings.Contains(msg, "auth"),
		strings.Contains(msg, "login"),
		strings.Contains(msg, "permission"),
		strings.Contains(msg, "unauthorized"):
		return CategoryUserAuthentication

	case strings.Contains(msg, "payment"),
		strings.Contains(msg, "stripe"),
		strings.Contains(msg, "subscription"),
		strings.Contains(msg, "billing"):
		return CategoryPaymentProcessing

	case strings.Contains(component, "ui"),
		strings.Contains(component, "component"),
		strings.Contains(msg, "render"),
		strings.Contains(msg, "hook"):
		return CategoryUIInteraction
	}

	return CategoryAPIIntegration
}

var (
	digitRuns  = regexp.MustCompile(`\d+`)
	quoteChars = regexp.MustCompile(`['"]`)
	whitespace = regexp.MustCompile(`\s+`)
)

const maxSignatureMessage = 100

// Signature derives the key that groups similar errors into one pattern.
// Digit runs collapse to a placeholder so "user 123 not found" and
// "user 456 not found" share a signature.
func Signature(message, code, component, operation string) string {
	normalized := strings.ToLower(message)
	normalized = digitRuns.ReplaceAllString(normalized, "N")
	normalized = quoteChars.ReplaceAllString(normalized, "")
	normalized = whitespace.ReplaceAllString(normalized, "_")
	if len(normalized) > maxSignatureMessage {
		normalized = normalized[:maxSignatureMessage]
	}
	if code == "" {
		code = "unknown"
	}
	return component + ":" + operation + ":" + code + ":" + normalized
}
