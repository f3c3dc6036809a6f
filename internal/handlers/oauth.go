package handlers

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/go-trellis/trellis/internal/auth"
	"github.com/go-trellis/trellis/internal/config"
	"github.com/go-trellis/trellis/internal/core"
	"github.com/go-trellis/trellis/internal/middleware"
	"github.com/go-trellis/trellis/internal/services"
	"github.com/go-trellis/trellis/internal/store"
	"github.com/go-trellis/trellis/internal/templates"
	"github.com/go-trellis/trellis/internal/util"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const stateLength = 32

// OAuthHandler runs the Beans login and the third-party connect flows of
// one integration.
type OAuthHandler struct {
	integration string
	beans       core.BeansClient
	thirdParty  core.ThirdPartyClient
	merchants   *services.MerchantService
	cfg         *config.Config
	log         *zap.Logger
}

// NewOAuthHandler creates a new OAuth handler
func NewOAuthHandler(
	integration string,
	beans core.BeansClient,
	thirdParty core.ThirdPartyClient,
	merchants *services.MerchantService,
	cfg *config.Config,
	log *zap.Logger,
) *OAuthHandler {
	return &OAuthHandler{
		integration: integration,
		beans:       beans,
		thirdParty:  thirdParty,
		merchants:   merchants,
		cfg:         cfg,
		log:         log.Named("oauth").With(zap.String("integration", integration)),
	}
}

func (h *OAuthHandler) stateKey() string {
	return "oauth_state_" + h.integration
}

// Login redirects to the Beans authorization page.
func (h *OAuthHandler) Login(c *gin.Context) {
	c.Redirect(http.StatusTemporaryRedirect, h.beans.AuthorizeURL())
}

// BeansCallback exchanges the Beans code, links the merchant and starts
// a session.
func (h *OAuthHandler) BeansCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		templates.RenderTempl(c, http.StatusBadRequest, templates.ErrorPage(templates.ErrorPageProps{
			Error: "Missing authorization code.",
		}))
		return
	}

	ctx := c.Request.Context()

	key, err := h.beans.Exchange(ctx, code)
	if err != nil {
		h.log.Error("beans code exchange failed", zap.Error(err))
		templates.RenderTempl(c, http.StatusBadGateway, templates.ErrorPage(templates.ErrorPageProps{
			Error:   "Beans authorization failed.",
			Message: "We could not verify your Beans account. Please try again.",
		}))
		return
	}

	merchant, err := h.merchants.LinkPrimary(ctx, h.integration, h.beans, key)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, store.ErrMerchantConflict):
			status = http.StatusConflict
		case errors.Is(err, auth.ErrUpstreamExchange), errors.Is(err, auth.ErrUpstreamResponse):
			status = http.StatusBadGateway
		}
		h.log.Error("failed to link beans account",
			zap.String("card_id", key.CardID),
			zap.Int("status", status),
			zap.Error(err),
		)
		templates.RenderTempl(c, status, templates.ErrorPage(templates.ErrorPageProps{
			Error: "Unable to link your Beans account.",
		}))
		return
	}

	sess, err := h.merchants.IssueSession(merchant)
	if err != nil {
		h.log.Error("failed to issue session", zap.String("merchant_id", merchant.ID), zap.Error(err))
		templates.RenderTempl(c, http.StatusInternalServerError, templates.ErrorPage(templates.ErrorPageProps{
			Error: "Internal server error. Failed to start session.",
		}))
		return
	}

	middleware.SessionLogin(c, h.cfg, h.integration, sess)
	c.Redirect(http.StatusTemporaryRedirect, middleware.PagePath(h.integration, ""))
}

// Connect stores a fresh state nonce and renders the third-party
// authorization link.
func (h *OAuthHandler) Connect(c *gin.Context) {
	merchant := middleware.MerchantFromContext(c)

	state, err := util.RandomState(stateLength)
	if err != nil {
		h.log.Error("failed to generate state", zap.Error(err))
		templates.RenderTempl(c, http.StatusInternalServerError, templates.ErrorPage(templates.ErrorPageProps{
			Error: "Internal server error. Failed to initiate connection.",
		}))
		return
	}

	session := sessions.Default(c)
	session.Set(h.stateKey(), state)
	flashes := util.PopFlashes(session)
	if err := session.Save(); err != nil {
		h.log.Error("failed to save session", zap.Error(err))
		templates.RenderTempl(c, http.StatusInternalServerError, templates.ErrorPage(templates.ErrorPageProps{
			Error: "Internal server error. Failed to save session.",
		}))
		return
	}

	templates.RenderTempl(c, http.StatusOK, templates.ConnectPage(templates.ConnectPageProps{
		BaseProps: templates.BaseProps{
			CSRFToken: middleware.GetCSRFToken(c),
			Flashes:   flashes,
		},
		NavbarProps: templates.NavbarProps{
			Integration: h.integration,
			Connected:   merchant.IsConnected(),
		},
		Merchant:     merchant,
		Provider:     h.thirdParty.Name(),
		AuthorizeURL: h.thirdParty.AuthorizeURL(state),
	}))
}

// ThirdPartyCallback checks the state nonce and links the third-party
// account. Any failure leaves the merchant untouched and sends it back to
// the connect page with an error message.
func (h *OAuthHandler) ThirdPartyCallback(c *gin.Context) {
	merchant := middleware.MerchantFromContext(c)
	session := sessions.Default(c)

	saved, _ := session.Get(h.stateKey()).(string)
	session.Delete(h.stateKey())

	state := c.Query("state")
	if saved == "" || subtle.ConstantTimeCompare([]byte(saved), []byte(state)) != 1 {
		h.connectFailed(c, session, merchant.ID, ErrStateMismatch)
		return
	}

	if denied := c.Query("error"); denied != "" {
		h.connectFailed(c, session, merchant.ID,
			errors.New(denied+": "+c.Query("error_description")))
		return
	}

	if _, err := h.merchants.LinkThirdParty(c.Request.Context(), merchant, h.thirdParty, c.Query("code")); err != nil {
		h.connectFailed(c, session, merchant.ID, err)
		return
	}

	if err := session.Save(); err != nil {
		h.log.Warn("failed to save session", zap.Error(err))
	}
	c.Redirect(http.StatusTemporaryRedirect, middleware.PagePath(h.integration, ""))
}

func (h *OAuthHandler) connectFailed(
	c *gin.Context,
	session sessions.Session,
	merchantID string,
	err error,
) {
	h.log.Warn("unable to connect third-party account",
		zap.String("merchant_id", merchantID),
		zap.String("provider", h.thirdParty.Name()),
		zap.Error(err),
	)
	util.AddFlash(session, util.FlashError,
		"Unable to connect to "+h.thirdParty.Name()+" account: "+err.Error())
	if err := session.Save(); err != nil {
		h.log.Warn("failed to save session", zap.Error(err))
	}
	c.Redirect(http.StatusTemporaryRedirect, middleware.PagePath(h.integration, "connect"))
}

// Disconnect unlinks the third-party account and returns to the connect
// page.
func (h *OAuthHandler) Disconnect(c *gin.Context) {
	merchant := middleware.MerchantFromContext(c)

	if err := h.merchants.DisconnectThirdParty(c.Request.Context(), merchant); err != nil {
		h.log.Error("failed to disconnect", zap.String("merchant_id", merchant.ID), zap.Error(err))
		templates.RenderTempl(c, http.StatusInternalServerError, templates.ErrorPage(templates.ErrorPageProps{
			Error: "Internal server error. Failed to disconnect.",
		}))
		return
	}

	session := sessions.Default(c)
	util.AddFlash(session, util.FlashInfo, h.thirdParty.Name()+" account disconnected.")
	if err := session.Save(); err != nil {
		h.log.Warn("failed to save session", zap.Error(err))
	}
	c.Redirect(http.StatusSeeOther, middleware.PagePath(h.integration, "connect"))
}

// Logout disconnects the Beans account, which ends every session of the
// merchant, and clears the cookie.
func (h *OAuthHandler) Logout(c *gin.Context) {
	merchant := middleware.MerchantFromContext(c)

	if err := h.merchants.DisconnectPrimary(c.Request.Context(), merchant); err != nil {
		h.log.Error("failed to log out", zap.String("merchant_id", merchant.ID), zap.Error(err))
		templates.RenderTempl(c, http.StatusInternalServerError, templates.ErrorPage(templates.ErrorPageProps{
			Error: "Internal server error. Failed to log out.",
		}))
		return
	}

	middleware.SessionLogout(c, h.cfg, h.integration)
	c.Redirect(http.StatusSeeOther, middleware.PagePath(h.integration, "login"))
}
