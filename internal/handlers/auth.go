package handlers

import (
	"net/http"
	"strings"

	"github.com/devflow-dev/devflow/internal/auth"
	"github.com/devflow-dev/devflow/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	oauthStateCookie = "oauth_state"
	oauthStateMaxAge = 10 * 60
	oauthCookiePath  = "/api/auth/github"
)

type LoginUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) LoginUser(ctx *gin.Context) {
	var body LoginUserRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.Error(err)
		return
	}

	email := strings.ToLower(strings.TrimSpace(body.Email))

	token, err := h.Auth.Login(ctx.Request.Context(), email, body.Password)
	if err != nil {
		ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusOK, types.TokenResponse{Token: token})
}

// VerifyToken only runs behind AuthMiddleware, so reaching it means the token is good.
func (h *Handler) VerifyToken(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, types.MessageResponse{Message: "Valid token"})
}

// GitHubLogin redirects to GitHub's consent screen with a fresh state value.
func (h *Handler) GitHubLogin(ctx *gin.Context) {
	state := uuid.NewString()

	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     oauthCookiePath,
		MaxAge:   oauthStateMaxAge,
		Secure:   h.SecureCookies,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	ctx.Redirect(http.StatusFound, h.GitHub.AuthCodeURL(state))
}

func (h *Handler) GitHubCallback(ctx *gin.Context) {
	state, err := ctx.Cookie(oauthStateCookie)
	if err != nil || state == "" || state != ctx.Query("state") {
		ctx.Error(auth.ErrGitHubAuthFailed)
		return
	}

	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    "",
		Path:     oauthCookiePath,
		MaxAge:   -1,
		Secure:   h.SecureCookies,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	token, err := h.GitHub.Callback(ctx.Request.Context(), ctx.Query("code"))
	if err != nil {
		ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusOK, types.TokenResponse{Token: token})
}
