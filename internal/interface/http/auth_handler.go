package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-storefront/internal/application"
	"github.com/oksasatya/go-ddd-storefront/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-storefront/pkg/helpers"
	"github.com/oksasatya/go-ddd-storefront/pkg/response"
)

type AuthHandler struct {
	Auth    *application.AuthService
	Reset   *application.ResetService
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewAuthHandler(auth *application.AuthService, reset *application.ResetService, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{Auth: auth, Reset: reset, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type signupRequest struct {
	Email           string `json:"email" form:"email" binding:"required,email"`
	Password        string `json:"password" form:"password" binding:"required,pwd"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

type resetRequest struct {
	Email string `json:"email" form:"email" binding:"required,email"`
}

type newPasswordRequest struct {
	Password string `json:"password" form:"password" binding:"required,pwd"`
	UserID   string `json:"userId" form:"userId" binding:"required"`
	Token    string `json:"passwordToken" form:"passwordToken" binding:"required"`
}

// csrfToken returns the token a form must echo back: the session's own when
// logged in, otherwise a fresh double-submit cookie.
func (h *AuthHandler) csrfToken(c *gin.Context) (string, error) {
	if sess := middleware.CurrentSession(c); sess != nil {
		return sess.CSRFToken, nil
	}
	tok, err := helpers.RandomURLToken(32)
	if err != nil {
		return "", err
	}
	h.Cookies.SetCSRF(c, tok)
	return tok, nil
}

// CSRFToken GET /signup, /login, /reset
func (h *AuthHandler) CSRFToken(c *gin.Context) {
	tok, err := h.csrfToken(c)
	if err != nil {
		fail(c, h.Logger, err, nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"csrf_token": tok}, "ok", nil)
}

// Signup POST /signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBind(&req); err != nil {
		bindFail(c, err, gin.H{"email": req.Email})
		return
	}
	u, err := h.Auth.Signup(c.Request.Context(), application.SignupInput{
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		fail(c, h.Logger, err, gin.H{"email": req.Email})
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"user_id": u.ID, "email": u.Email}, "signup successful", nil)
}

// Login POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		bindFail(c, err, gin.H{"email": req.Email})
		return
	}
	sess, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, h.Logger, err, gin.H{"email": req.Email})
		return
	}
	// the cookie is replaced below, so the session it named is ended here
	if prev := middleware.CurrentSession(c); prev != nil && prev.ID != sess.ID {
		if err := h.Auth.Logout(c.Request.Context(), prev.ID); err != nil {
			h.Logger.WithError(err).WithField("request_id", c.GetString("request_id")).Warn("end previous session failed")
		}
	}
	handle, exp, err := h.Auth.SessionHandle(sess)
	if err != nil {
		fail(c, h.Logger, err, nil)
		return
	}
	h.Cookies.SetSession(c, handle, exp)
	response.Success(c, http.StatusOK, gin.H{"user_id": sess.UserID, "csrf_token": sess.CSRFToken}, "login successful", gin.H{"expires_at": exp})
}

// Logout POST /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if sess := middleware.CurrentSession(c); sess != nil {
		if err := h.Auth.Logout(c.Request.Context(), sess.ID); err != nil {
			fail(c, h.Logger, err, nil)
			return
		}
	}
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, nil, "logged out", nil)
}

// RequestReset POST /reset
func (h *AuthHandler) RequestReset(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBind(&req); err != nil {
		bindFail(c, err, gin.H{"email": req.Email})
		return
	}
	meta := application.RequestMeta{IP: clientIP(c), UserAgent: c.GetHeader("User-Agent")}
	if err := h.Reset.RequestReset(c.Request.Context(), req.Email, meta); err != nil {
		fail(c, h.Logger, err, nil)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "if the email is registered, a reset link is on its way", nil)
}

// ResetForm GET /reset/:token
func (h *AuthHandler) ResetForm(c *gin.Context) {
	form, err := h.Reset.LoadResetForm(c.Request.Context(), c.Param("token"))
	if err != nil {
		fail(c, h.Logger, err, nil)
		return
	}
	tok, err := h.csrfToken(c)
	if err != nil {
		fail(c, h.Logger, err, nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"userId": form.UserID, "passwordToken": form.Token, "csrf_token": tok}, "ok", nil)
}

// NewPassword POST /new-password
func (h *AuthHandler) NewPassword(c *gin.Context) {
	var req newPasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		bindFail(c, err, nil)
		return
	}
	if err := h.Reset.CommitNewPassword(c.Request.Context(), req.UserID, req.Token, req.Password); err != nil {
		fail(c, h.Logger, err, nil)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "password updated", nil)
}
