package http

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// AuthController handles registration, login and the current-user endpoint.
type AuthController struct {
	service *auth.Service
	audit   *audit.Service
}

func NewAuthController(service *auth.Service, auditService *audit.Service) *AuthController {
	return &AuthController{service: service, audit: auditService}
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	auth.Token
	User *entities.User `json:"user"`
}

// LoginRequest accepts "login" or the OAuth2-style "username" field, as JSON
// or as a form.
type LoginRequest struct {
	Login    string `json:"login" form:"login"`
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// Register handles POST /api/auth/register.
func (ac *AuthController) Register(c *gin.Context) {
	var in auth.RegisterInput
	if !bindJSON(c, &in) {
		return
	}

	user, err := ac.service.Register(c.Request.Context(), in)
	if err != nil {
		respondAppError(c, err)
		return
	}
	ac.audit.LogUser(user.ID, "user_register", user.ID, user.Login)

	token, err := ac.service.IssueToken(user)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, AuthResponse{Token: *token, User: user})
}

// Login handles POST /api/auth/login.
func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	login := strings.TrimSpace(req.Login)
	if login == "" {
		login = strings.TrimSpace(req.Username)
	}
	if login == "" || req.Password == "" {
		respondAppError(c, apperr.ValidationFields("validation failed", map[string]string{
			"login":    "is required",
			"password": "is required",
		}))
		return
	}

	ip := c.ClientIP()
	user, err := ac.service.Authenticate(c.Request.Context(), auth.LoginAttempt{
		Login:    login,
		Password: req.Password,
		ClientIP: ip,
	})
	if err != nil {
		var lockout *auth.LockoutError
		if errors.As(err, &lockout) {
			ac.audit.LogAuth(0, login, "login_locked", ip, false)
			tooManyAttempts(c, lockout.RetryAfter(time.Now()).Seconds())
			return
		}
		ac.audit.LogAuth(0, login, "login_failed", ip, false)
		respondAppError(c, err)
		return
	}

	ac.audit.LogAuth(user.ID, user.Login, "login", ip, true)

	token, err := ac.service.IssueToken(user)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, AuthResponse{Token: *token, User: user})
}

// Me handles GET /api/auth/me.
func (ac *AuthController) Me(c *gin.Context) {
	user := auth.GetUser(c)
	if user == nil {
		respondAppError(c, apperr.Unauthorizedf("authentication required"))
		return
	}
	c.JSON(http.StatusOK, user)
}

func tooManyAttempts(c *gin.Context, seconds float64) {
	c.Header("Retry-After", fmt.Sprintf("%d", int(math.Ceil(seconds))))
	c.JSON(http.StatusTooManyRequests, ErrorResponse{
		Error: "too many login attempts, try again later",
		Code:  "RATE_LIMITED",
	})
}
