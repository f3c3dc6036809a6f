package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-trellis/trellis/internal/middleware"
	"github.com/go-trellis/trellis/internal/services"
	"github.com/go-trellis/trellis/internal/store"
	"github.com/go-trellis/trellis/internal/templates"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PagesHandler renders the merchant pages of one integration.
type PagesHandler struct {
	integration string
	reviews     *services.ReviewService
	log         *zap.Logger
}

// NewPagesHandler creates a new pages handler
func NewPagesHandler(integration string, reviews *services.ReviewService, log *zap.Logger) *PagesHandler {
	return &PagesHandler{
		integration: integration,
		reviews:     reviews,
		log:         log.Named("pages").With(zap.String("integration", integration)),
	}
}

func (h *PagesHandler) base(c *gin.Context) templates.BaseProps {
	return templates.BaseProps{CSRFToken: middleware.GetCSRFToken(c)}
}

func (h *PagesHandler) navbar(active string) templates.NavbarProps {
	return templates.NavbarProps{
		Integration: h.integration,
		ActiveLink:  active,
		Connected:   true,
	}
}

// Root redirects the integration root to its home page.
func (h *PagesHandler) Root(c *gin.Context) {
	c.Redirect(http.StatusTemporaryRedirect, middleware.PagePath(h.integration, ""))
}

// Home shows the connected merchant.
func (h *PagesHandler) Home(c *gin.Context) {
	templates.RenderTempl(c, http.StatusOK, templates.HomePage(templates.HomePageProps{
		BaseProps:   h.base(c),
		NavbarProps: h.navbar("home"),
		Merchant:    middleware.MerchantFromContext(c),
	}))
}

// Status shows both links of the merchant.
func (h *PagesHandler) Status(c *gin.Context) {
	templates.RenderTempl(c, http.StatusOK, templates.StatusPage(templates.StatusPageProps{
		BaseProps:   h.base(c),
		NavbarProps: h.navbar("status"),
		Merchant:    middleware.MerchantFromContext(c),
	}))
}

// Credentials shows the identifiers of the merchant.
func (h *PagesHandler) Credentials(c *gin.Context) {
	templates.RenderTempl(c, http.StatusOK, templates.CredentialsPage(templates.CredentialsPageProps{
		BaseProps:   h.base(c),
		NavbarProps: h.navbar("credentials"),
		Merchant:    middleware.MerchantFromContext(c),
	}))
}

// Logs lists the reviews collected for the merchant.
func (h *PagesHandler) Logs(c *gin.Context) {
	merchant := middleware.MerchantFromContext(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	search := c.Query("search")
	params := store.NewPaginationParams(page, pageSize, search)

	reviews, pagination, err := h.reviews.ListForMerchantPaginated(c.Request.Context(), merchant.ID, params)
	if err != nil {
		h.log.Error("failed to list reviews", zap.String("merchant_id", merchant.ID), zap.Error(err))
		templates.RenderTempl(c, http.StatusInternalServerError, templates.ErrorPage(templates.ErrorPageProps{
			Error: "Failed to retrieve reviews",
		}))
		return
	}

	templates.RenderTempl(c, http.StatusOK, templates.LogsPage(templates.LogsPageProps{
		BaseProps:   h.base(c),
		NavbarProps: h.navbar("logs"),
		Reviews:     reviews,
		Pagination:  pagination,
		Search:      search,
	}))
}

// Rules explains how comments become reviews.
func (h *PagesHandler) Rules(c *gin.Context) {
	templates.RenderTempl(c, http.StatusOK, templates.RulesPage(templates.RulesPageProps{
		BaseProps:   h.base(c),
		NavbarProps: h.navbar("rules"),
	}))
}

// Maintenance is shown while the integration is unavailable.
func (h *PagesHandler) Maintenance(c *gin.Context) {
	merchant := middleware.MerchantFromContext(c)
	templates.RenderTempl(c, http.StatusOK, templates.MaintenancePage(templates.MaintenancePageProps{
		BaseProps: h.base(c),
		NavbarProps: templates.NavbarProps{
			Integration: h.integration,
			Connected:   merchant != nil && merchant.IsConnected(),
		},
	}))
}

// reviewForm is the example page form.
type reviewForm struct {
	ReviewerEmail string `form:"reviewer_email" binding:"required,email"`
	ReviewerName  string `form:"reviewer_name"  binding:"required"`
	Body          string `form:"body"`
}

// Example renders the demo review form.
func (h *PagesHandler) Example(c *gin.Context) {
	h.renderExample(c, http.StatusOK, h.base(c))
}

// ExamplePost stores a review submitted through the demo form.
func (h *PagesHandler) ExamplePost(c *gin.Context) {
	base := h.base(c)

	var form reviewForm
	if err := c.ShouldBind(&form); err != nil {
		base.Flashes = flashError("A valid email and a name are required.")
		h.renderExample(c, http.StatusBadRequest, base)
		return
	}

	_, err := h.reviews.Create(c.Request.Context(), services.CreateReviewInput{
		ReviewerEmail: form.ReviewerEmail,
		ReviewerName:  form.ReviewerName,
		Body:          form.Body,
	}, services.SourceExample)
	if err != nil {
		status, msg := reviewErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.log.Error("failed to create review", zap.Error(err))
		}
		base.Flashes = flashError(msg)
		h.renderExample(c, status, base)
		return
	}

	base.Flashes = flashInfo("Review submitted.")
	h.renderExample(c, http.StatusOK, base)
}

func (h *PagesHandler) renderExample(c *gin.Context, status int, base templates.BaseProps) {
	reviews, err := h.reviews.List(c.Request.Context())
	if err != nil {
		h.log.Error("failed to list reviews", zap.Error(err))
		templates.RenderTempl(c, http.StatusInternalServerError, templates.ErrorPage(templates.ErrorPageProps{
			Error: "Failed to retrieve reviews",
		}))
		return
	}

	templates.RenderTempl(c, status, templates.ExamplePage(templates.ExamplePageProps{
		BaseProps: base,
		Action:    middleware.PagePath(h.integration, "example"),
		Reviews:   reviews,
	}))
}

// IndexHandler lists the enabled integrations.
func IndexHandler(integrations []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		templates.RenderTempl(c, http.StatusOK, templates.IndexPage(templates.IndexPageProps{
			Integrations: integrations,
		}))
	}
}
