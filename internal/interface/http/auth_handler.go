package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/interviewhub/interviewhub-api/config"
	"github.com/interviewhub/interviewhub-api/internal/application"
	"github.com/interviewhub/interviewhub-api/internal/domain/entity"
	"github.com/interviewhub/interviewhub-api/pkg/helpers"
	"github.com/interviewhub/interviewhub-api/pkg/response"
	"github.com/interviewhub/interviewhub-api/pkg/validation"
)

type AuthHandler struct {
	Svc     *application.AuthService
	Cfg     *config.Config
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewAuthHandler(svc *application.AuthService, cfg *config.Config, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		Svc:     svc,
		Cfg:     cfg,
		Logger:  logger,
		Cookies: helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure),
	}
}

func clientIP(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	return c.ClientIP()
}

func mailMeta(c *gin.Context) application.MailMeta {
	return application.MailMeta{IP: clientIP(c), UserAgent: c.GetHeader("User-Agent")}
}

// profileView strips the password hash and internal verification flag.
func profileView(a *entity.Account) gin.H {
	return gin.H{
		"id":           a.ID,
		"username":     a.Username,
		"email":        a.Email,
		"is_admin":     a.IsAdmin,
		"branch":       a.Branch,
		"passing_year": a.PassingYear,
		"designation":  a.Designation,
		"about":        a.About,
		"github":       a.GitHub,
		"leetcode":     a.Leetcode,
		"linkedin":     a.LinkedIn,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login POST /login
// A missing field, an unknown email, and a wrong password all produce the
// same response, so callers cannot enumerate accounts.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusUnauthorized, "incorrect email or password", nil)
		return
	}

	a, sess, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrInvalidCredentials):
			response.Error(c, http.StatusUnauthorized, "incorrect email or password", nil)
		case errors.Is(err, application.ErrEmailNotVerified):
			response.Error(c, http.StatusUnauthorized, "email is not verified", nil)
		default:
			h.Logger.WithError(err).Error("login failed")
			response.Error(c, http.StatusInternalServerError, "something went wrong, please try again later", nil)
		}
		return
	}

	h.Cookies.SetSession(c, sess.Token, sess.ExpiresAt)
	response.Success(c, http.StatusOK, profileView(a), "login successful", nil)
}

type registerRequest struct {
	Username    string `json:"username" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,pwd"`
	Branch      string `json:"branch" binding:"required"`
	PassingYear string `json:"passing_year" binding:"required"`
	Designation string `json:"designation" binding:"required"`
	About       string `json:"about" binding:"required"`
	GitHub      string `json:"github"`
	Leetcode    string `json:"leetcode"`
	LinkedIn    string `json:"linkedin"`
}

// Register POST /register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusUnauthorized, "please enter all required fields", validation.ToDetails(err))
		return
	}

	_, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		Branch:      req.Branch,
		PassingYear: req.PassingYear,
		Designation: req.Designation,
		About:       req.About,
		GitHub:      req.GitHub,
		Leetcode:    req.Leetcode,
		LinkedIn:    req.LinkedIn,
	}, mailMeta(c))
	if err != nil {
		if errors.Is(err, application.ErrEmailTaken) {
			response.Error(c, http.StatusNotFound, "email already exists", nil)
			return
		}
		h.Logger.WithError(err).Error("register failed")
		response.Error(c, http.StatusInternalServerError, "something went wrong, please try again later", nil)
		return
	}

	response.Success[any](c, http.StatusOK, nil, "account created successfully, please verify your email", nil)
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPassword POST /forgot-password
// The success message is generic regardless of downstream dispatch, so the
// caller cannot probe delivery.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusUnauthorized, "please enter all required fields", validation.ToDetails(err))
		return
	}

	err := h.Svc.ForgotPassword(c.Request.Context(), req.Email, mailMeta(c))
	if err != nil {
		switch {
		case errors.Is(err, application.ErrAccountNotFound):
			response.Error(c, http.StatusUnauthorized, "no account found with this email", nil)
		case errors.Is(err, application.ErrEmailNotVerified):
			response.Error(c, http.StatusBadRequest, "please verify your email first", nil)
		default:
			h.Logger.WithError(err).Error("forgot password failed")
			response.Error(c, http.StatusInternalServerError, "error, please try again later", nil)
		}
		return
	}

	response.Success[any](c, http.StatusOK, nil, "a password reset link has been sent", nil)
}

type resetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	NewPassword string `json:"new_password" binding:"required,pwd"`
}

// ResetPassword POST /reset-password/:token
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusUnauthorized, "please enter all required fields", validation.ToDetails(err))
		return
	}

	err := h.Svc.ResetPassword(c.Request.Context(), c.Param("token"), req.Email, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrInvalidResetLink):
			response.Error(c, http.StatusForbidden, "reset link is not valid", nil)
		case errors.Is(err, application.ErrAccountNotFound):
			response.Error(c, http.StatusUnauthorized, "please request a new reset link", nil)
		default:
			h.Logger.WithError(err).Error("reset password failed")
			response.Error(c, http.StatusInternalServerError, "error, please request a new reset link", nil)
		}
		return
	}

	response.Success[any](c, http.StatusOK, nil, "password changed successfully", nil)
}

// VerifyEmail GET /verify-email/:token
// This endpoint is reached from a browser-followed link: failures render a
// minimal HTML page instead of JSON, success redirects to the client app.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	err := h.Svc.VerifyEmail(c.Request.Context(), c.Param("token"))
	if err != nil {
		status := http.StatusUnauthorized
		if !errors.Is(err, application.ErrInvalidVerifyLink) {
			h.Logger.WithError(err).Error("verify email failed")
			status = http.StatusInternalServerError
		}
		c.Data(status, "text/html; charset=utf-8", []byte("<h1>Error Authenticating</h1>"))
		return
	}

	redirect := h.Cfg.ClientBaseURL
	if redirect == "" {
		redirect = "/"
	}
	c.Redirect(http.StatusFound, redirect)
}

// Logout POST /logout
// Clears the cookie client-side; the session token itself stays valid until
// expiry (stateless tokens are not revocable).
func (h *AuthHandler) Logout(c *gin.Context) {
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, nil, "logout successful", nil)
}

// SessionStatus GET /session-status
// Best-effort read polled by clients; an absent, invalid, or expired cookie
// is a definite "not logged in", only a store failure answers 400.
func (h *AuthHandler) SessionStatus(c *gin.Context) {
	token, _ := c.Cookie(helpers.SessionCookieName)

	st, err := h.Svc.SessionStatus(c.Request.Context(), token)
	if err != nil {
		h.Logger.WithError(err).Warn("session status lookup failed")
		response.Error(c, http.StatusBadRequest, "session status unknown", gin.H{
			"is_logged_in": false,
			"is_admin":     false,
			"user":         nil,
		})
		return
	}

	data := gin.H{
		"is_logged_in": st.LoggedIn,
		"is_admin":     st.IsAdmin,
		"user":         nil,
	}
	if st.LoggedIn {
		data["user"] = profileView(st.Account)
	}
	response.Success(c, http.StatusOK, data, "session status", nil)
}
