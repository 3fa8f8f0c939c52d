package category

// Severities
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Automation impact ranks, ordered by disruption
const (
	ImpactNone     = "none"
	ImpactMinor    = "minor"
	ImpactModerate = "moderate"
	ImpactSevere   = "severe"
	ImpactBlocking = "blocking"
)

// Category ids
const (
	CategoryDatabaseConnection = "database_connection"
	CategoryAPIIntegration     = "api_integration"
	CategoryCampaignManagement = "campaign_management"
	CategoryContentGeneration  = "content_generation"
	CategoryLinkDiscovery      = "link_discovery"
	CategoryUserAuthentication = "user_authentication"
	CategoryPaymentProcessing  = "payment_processing"
	CategoryUIInteraction      = "ui_interaction"
)

// Category is a static taxonomy entry
type Category struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	Severity         string   `json:"severity"`
	CommonCauses     []string `json:"common_causes"`
	Solutions        []string `json:"solutions"`
	PreventionTips   []string `json:"prevention_tips"`
	AutomationImpact string   `json:"automation_impact"`
}

// defaultCategories is the fixed taxonomy, created once at startup.
// Order is significant: it fixes breakdown iteration and scoring output.
func defaultCategories() []*Category {
	return []*Category{
		{
			ID:          CategoryDatabaseConnection,
			Name:        "Database Connection",
			Description: "Issues connecting to or querying the backing database",
			Severity:    SeverityCritical,
			CommonCauses: []string{
				"Network connectivity issues",
				"Invalid credentials",
				"Rate limiting",
				"Database maintenance",
				"Firewall restrictions",
			},
			Solutions: []string{
				"Check network connection",
				"Verify database credentials",
				"Implement exponential backoff",
				"Use connection pooling",
				"Add fallback database",
			},
			PreventionTips: []string{
				"Implement retry logic with backoff",
				"Monitor connection health",
				"Use environment-specific configs",
				"Set up database alerts",
			},
			AutomationImpact: ImpactBlocking,
		},
		{
			ID:          CategoryAPIIntegration,
			Name:        "API Integration",
			Description: "External API failures (content models, rank tracking, etc.)",
			Severity:    SeverityHigh,
			CommonCauses: []string{
				"API rate limits exceeded",
				"Invalid API keys",
				"Service outages",
				"Malformed requests",
				"Authentication failures",
			},
			Solutions: []string{
				"Verify API keys",
				"Implement rate limiting",
				"Add request validation",
				"Use circuit breakers",
				"Set up backup providers",
			},
			PreventionTips: []string{
				"Monitor API usage quotas",
				"Implement graceful degradation",
				"Cache API responses when possible",
				"Use multiple API providers",
			},
			AutomationImpact: ImpactSevere,
		},
		{
			ID:          CategoryCampaignManagement,
			Name:        "Campaign Management",
			Description: "Issues with campaign creation, modification, or execution",
			Severity:    SeverityHigh,
			CommonCauses: []string{
				"Invalid campaign data",
				"Duplicate campaign names",
				"Permission errors",
				"Resource conflicts",
				"State synchronization issues",
			},
			Solutions: []string{
				"Validate input data",
				"Implement unique constraints",
				"Check user permissions",
				"Add conflict resolution",
				"Use atomic operations",
			},
			PreventionTips: []string{
				"Use form validation",
				"Implement proper state management",
				"Add confirmation dialogs",
				"Log all campaign changes",
			},
			AutomationImpact: ImpactSevere,
		},
		{
			ID:          CategoryContentGeneration,
			Name:        "Content Generation",
			Description: "AI content generation failures or quality issues",
			Severity:    SeverityMedium,
			CommonCauses: []string{
				"Prompt engineering issues",
				"API response timeouts",
				"Content quality filters",
				"Token limits exceeded",
				"Model availability",
			},
			Solutions: []string{
				"Optimize prompts",
				"Increase timeout values",
				"Adjust quality filters",
				"Implement token management",
				"Use fallback models",
			},
			PreventionTips: []string{
				"Test prompts thoroughly",
				"Monitor content quality",
				"Implement content caching",
				"Use progressive enhancement",
			},
			AutomationImpact: ImpactModerate,
		},
		{
			ID:          CategoryLinkDiscovery,
			Name:        "Link Discovery",
			Description: "Issues finding relevant linking opportunities",
			Severity:    SeverityMedium,
			CommonCauses: []string{
				"Search API limitations",
				"Invalid search parameters",
				"No results found",
				"Quality filtering too strict",
				"Scraping blocked",
			},
			Solutions: []string{
				"Diversify search sources",
				"Optimize search parameters",
				"Adjust quality filters",
				"Implement retry logic",
				"Use proxy rotation",
			},
			PreventionTips: []string{
				"Regularly update search algorithms",
				"Monitor discovery success rates",
				"Use multiple discovery methods",
				"Cache discovered opportunities",
			},
			AutomationImpact: ImpactModerate,
		},
		{
			ID:          CategoryUserAuthentication,
			Name:        "User Authentication",
			Description: "Login, registration, and permission issues",
			Severity:    SeverityHigh,
			CommonCauses: []string{
				"Invalid credentials",
				"Session expiration",
				"Permission denied",
				"Email verification pending",
				"Account suspension",
			},
			Solutions: []string{
				"Verify credentials",
				"Refresh tokens",
				"Check permissions",
				"Resend verification email",
				"Contact support",
			},
			PreventionTips: []string{
				"Implement proper session management",
				"Use secure authentication flows",
				"Add clear error messages",
				"Monitor auth failure rates",
			},
			AutomationImpact: ImpactBlocking,
		},
		{
			ID:          CategoryPaymentProcessing,
			Name:        "Payment Processing",
			Description: "Subscription and payment related errors",
			Severity:    SeverityCritical,
			CommonCauses: []string{
				"Payment method declined",
				"Billing webhook failures",
				"Subscription status sync issues",
				"Pricing plan conflicts",
				"Tax calculation errors",
			},
			Solutions: []string{
				"Update payment method",
				"Retry webhook processing",
				"Sync subscription status",
				"Review pricing configuration",
				"Fix tax calculations",
			},
			PreventionTips: []string{
				"Monitor payment success rates",
				"Implement webhook retry logic",
				"Use idempotency keys",
				"Test payment flows regularly",
			},
			AutomationImpact: ImpactBlocking,
		},
		{
			ID:          CategoryUIInteraction,
			Name:        "UI Interaction",
			Description: "User interface errors and interaction issues",
			Severity:    SeverityLow,
			CommonCauses: []string{
				"Component state issues",
				"Form validation errors",
				"Navigation problems",
				"Loading state bugs",
				"Responsive design issues",
			},
			Solutions: []string{
				"Fix component state management",
				"Improve form validation",
				"Debug navigation flow",
				"Fix loading indicators",
				"Test responsive breakpoints",
			},
			PreventionTips: []string{
				"Use proper state management patterns",
				"Test across different devices",
				"Implement comprehensive form validation",
				"Monitor user interaction metrics",
			},
			AutomationImpact: ImpactMinor,
		},
	}
}
