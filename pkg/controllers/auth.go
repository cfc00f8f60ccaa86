package controllers

import (
	"net/http"

	"gamemarket-api-io/api/internal/auth"
	"gamemarket-api-io/api/pkg/models"
	"gamemarket-api-io/api/pkg/services"
	"gamemarket-api-io/api/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

var errTokenBlacklisted = errors.New("token is blacklisted")

type AuthController struct {
	userService  services.UserService
	jwt          *auth.JWTManager
	blacklist    auth.TokenBlacklist
	sessions     auth.SessionStore
	google       auth.GoogleVerifier
	sessionLogin bool
}

type AuthControllerOptions struct {
	JWT          *auth.JWTManager
	Blacklist    auth.TokenBlacklist
	Sessions     auth.SessionStore
	Google       auth.GoogleVerifier
	SessionLogin bool
}

func InitAuthController(userService services.UserService, opts AuthControllerOptions) *AuthController {
	return &AuthController{
		userService:  userService,
		jwt:          opts.JWT,
		blacklist:    opts.Blacklist,
		sessions:     opts.Sessions,
		google:       opts.Google,
		sessionLogin: opts.SessionLogin,
	}
}

// Register creates a customer account.
func (ac *AuthController) Register(c *gin.Context) {
	ctx, cancel := WithTimeout(c)
	defer cancel()

	var req models.RegistrationRequest
	if !BindJSONAndValidate(c, &req) {
		return
	}

	user, err := ac.userService.Register(ctx, req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	util.HandleSuccess(c, http.StatusCreated, "Registration successful", user)
}

// ObtainToken exchanges email and password for a refresh and access token.
func (ac *AuthController) ObtainToken(c *gin.Context) {
	ctx, cancel := WithTimeout(c)
	defer cancel()

	var req models.TokenObtainRequest
	if !BindJSONAndValidate(c, &req) {
		return
	}

	user, err := ac.userService.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	pair, err := ac.jwt.Pair(user)
	if err != nil {
		util.HandleError(c, http.StatusInternalServerError, err)
		return
	}

	util.HandleSuccess(c, http.StatusOK, "Token obtained", pair)
}

// RefreshToken issues a new access token for a valid refresh token.
func (ac *AuthController) RefreshToken(c *gin.Context) {
	var req models.TokenRefreshRequest
	if !BindJSONAndValidate(c, &req) {
		return
	}

	claim, err := ac.jwt.ValidateRefresh(req.Refresh)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	if ac.revoked(c, req.Refresh) {
		util.HandleError(c, http.StatusUnauthorized, errTokenBlacklisted)
		return
	}

	access, err := ac.jwt.AccessFromRefresh(claim)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	util.HandleSuccess(c, http.StatusOK, "Token refreshed", gin.H{"access": access})
}

// VerifyToken reports whether a token of either kind is valid.
func (ac *AuthController) VerifyToken(c *gin.Context) {
	var req models.TokenVerifyRequest
	if !BindJSONAndValidate(c, &req) {
		return
	}

	if _, err := ac.jwt.Validate(req.Token); err != nil {
		HandleServiceError(c, err)
		return
	}
	if ac.revoked(c, req.Token) {
		util.HandleError(c, http.StatusUnauthorized, errTokenBlacklisted)
		return
	}

	util.HandleSuccess(c, http.StatusOK, "Token is valid", gin.H{})
}

// Login opens a cookie session. It is only mounted when session login is
// enabled.
func (ac *AuthController) Login(c *gin.Context) {
	ctx, cancel := WithTimeout(c)
	defer cancel()

	if !ac.sessionLogin || ac.sessions == nil {
		util.HandleError(c, http.StatusNotFound, errors.New("session login is disabled"))
		return
	}

	var req models.TokenObtainRequest
	if !BindJSONAndValidate(c, &req) {
		return
	}

	user, err := ac.userService.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	key, err := ac.sessions.Create(ctx, user.ID, user.Email)
	if err != nil {
		util.HandleError(c, http.StatusInternalServerError, err)
		return
	}
	auth.SetSessionCookie(c, key)

	util.HandleSuccess(c, http.StatusOK, "Login successful", user)
}

// Logout blacklists the bearer token and an optional refresh token from the
// body, then drops the session cookie.
func (ac *AuthController) Logout(c *gin.Context) {
	ctx, cancel := WithTimeout(c)
	defer cancel()

	if token, err := auth.ExtractBearerToken(c.GetHeader("Authorization")); err == nil {
		if claim, err := ac.jwt.ValidateAccess(token); err == nil {
			ac.revoke(c, token, claim)
		}
	}

	var req models.TokenRefreshRequest
	if err := c.ShouldBindJSON(&req); err == nil && req.Refresh != "" {
		if claim, err := ac.jwt.ValidateRefresh(req.Refresh); err == nil {
			ac.revoke(c, req.Refresh, claim)
		}
	}

	if key, err := c.Cookie(auth.SESSION_NAME); err == nil && key != "" && ac.sessions != nil {
		if err := ac.sessions.Delete(ctx, key); err != nil {
			util.LogError("delete session", err)
		}
		auth.ClearSessionCookie(c)
	}

	util.HandleSuccess(c, http.StatusOK, "Successfully logged out.", nil)
}

// GoogleLogin signs in with a google id token, creating the account on first
// use.
func (ac *AuthController) GoogleLogin(c *gin.Context) {
	ctx, cancel := WithTimeout(c)
	defer cancel()

	var req models.GoogleLoginRequest
	if !BindJSONAndValidate(c, &req) {
		return
	}

	identity, err := ac.google.Verify(ctx, req.IDToken)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	user, err := ac.userService.AuthenticateGoogle(ctx, identity)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	pair, err := ac.jwt.Pair(user)
	if err != nil {
		util.HandleError(c, http.StatusInternalServerError, err)
		return
	}

	util.HandleSuccess(c, http.StatusOK, "Login successful", gin.H{
		"user":    user,
		"refresh": pair.Refresh,
		"access":  pair.Access,
	})
}

func (ac *AuthController) revoked(c *gin.Context, token string) bool {
	if ac.blacklist == nil {
		return false
	}
	revoked, err := ac.blacklist.IsRevoked(c.Request.Context(), token)
	if err != nil {
		util.LogError("check token blacklist", err)
	}
	return revoked
}

func (ac *AuthController) revoke(c *gin.Context, token string, claim auth.JWTClaim) {
	if ac.blacklist == nil {
		return
	}
	if err := ac.blacklist.Revoke(c.Request.Context(), token, claim.TTL()); err != nil {
		util.LogError("blacklist token", err, "user", claim.Id)
	}
}
