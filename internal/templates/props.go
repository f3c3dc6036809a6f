package templates

import (
	"github.com/go-trellis/trellis/internal/models"
	"github.com/go-trellis/trellis/internal/store"
	"github.com/go-trellis/trellis/internal/util"
)

// BaseProps contains common properties shared across all pages
type BaseProps struct {
	CSRFToken string
	Flashes   []util.Flash
}

// NavbarProps contains properties for the navigation bar
type NavbarProps struct {
	Integration string
	ActiveLink  string // "home", "status", "credentials", "logs", "rules", "example"
	Connected   bool
}

// ===== Page Props Structures =====

// IndexPageProps lists the enabled integrations
type IndexPageProps struct {
	Integrations []string
}

// ErrorPageProps contains properties for the error page
type ErrorPageProps struct {
	BaseProps
	Error   string
	Message string
}

// HomePageProps contains properties for the merchant home page
type HomePageProps struct {
	BaseProps
	NavbarProps
	Merchant *models.Merchant
}

// ConnectPageProps contains properties for the third-party connect page
type ConnectPageProps struct {
	BaseProps
	NavbarProps
	Merchant     *models.Merchant
	Provider     string
	AuthorizeURL string
}

// StatusPageProps contains properties for the connection status page
type StatusPageProps struct {
	BaseProps
	NavbarProps
	Merchant *models.Merchant
}

// CredentialsPageProps contains properties for the credentials page
type CredentialsPageProps struct {
	BaseProps
	NavbarProps
	Merchant *models.Merchant
}

// LogsPageProps contains properties for the collected reviews page
type LogsPageProps struct {
	BaseProps
	NavbarProps
	Reviews    []models.Review
	Pagination store.PaginationResult
	Search     string
}

// RulesPageProps contains properties for the rules page
type RulesPageProps struct {
	BaseProps
	NavbarProps
}

// MaintenancePageProps contains properties for the maintenance page
type MaintenancePageProps struct {
	BaseProps
	NavbarProps
}

// ExamplePageProps contains properties for the example review form
type ExamplePageProps struct {
	BaseProps
	Action  string // form target
	Reviews []models.Review
}
