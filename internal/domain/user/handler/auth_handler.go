package handler

import (
	"net/http"
	"time"

	"coursehub/internal/domain/user/service"
	"coursehub/internal/pkg/middleware"
	"coursehub/pkg/response"

	"github.com/gin-gonic/gin"
)

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Secure bool
	MaxAge time.Duration
}

func (cc CookieConfig) set(c *gin.Context, token string, maxAge time.Duration) {
	if cc.Secure {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteLaxMode)
	}
	c.SetCookie(middleware.TokenCookie, token, int(maxAge.Seconds()), "/", "", cc.Secure, true)
}

func (cc CookieConfig) clear(c *gin.Context) {
	cc.set(c, "", -time.Second)
}

// AuthHandler 认证处理器
type AuthHandler struct {
	service service.AuthService
	cookie  CookieConfig
}

// NewAuthHandler 创建处理器
func NewAuthHandler(service service.AuthService, cookie CookieConfig) *AuthHandler {
	if cookie.MaxAge <= 0 {
		cookie.MaxAge = 7 * 24 * time.Hour
	}
	return &AuthHandler{service: service, cookie: cookie}
}

// LoginInput 登录输入
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type googleLoginInput struct {
	Credential string `json:"credential"`
}

type googleSignupInput struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

type setPasswordInput struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type changePasswordInput struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (h *AuthHandler) session(c *gin.Context, status int, message string, res *service.AuthResult) {
	h.cookie.set(c, res.Token, h.cookie.MaxAge)
	response.JSON(c, status, message, gin.H{
		"token": res.Token,
		"user":  res.User.Summary(),
	})
}

// Signup 处理注册请求
func (h *AuthHandler) Signup(c *gin.Context) {
	var input service.SignupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.MsgInvalidParam)
		return
	}

	res, err := h.service.Signup(c.Request.Context(), input)
	if err != nil {
		response.Fail(c, err)
		return
	}
	h.session(c, http.StatusCreated, "Signup successful", res)
}

// Login 处理登录请求
func (h *AuthHandler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.MsgInvalidParam)
		return
	}

	res, err := h.service.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		response.Fail(c, err)
		return
	}
	h.session(c, http.StatusOK, "Login successful", res)
}

// Logout 清除 cookie 并吊销当前 token
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context(), middleware.CurrentToken(c)); err != nil {
		response.Fail(c, err)
		return
	}
	h.cookie.clear(c)
	response.Success(c, "Logout successful", nil)
}

func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	var input googleLoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.MsgInvalidParam)
		return
	}

	res, err := h.service.GoogleLogin(c.Request.Context(), input.Credential)
	if err != nil {
		response.Fail(c, err)
		return
	}
	h.session(c, http.StatusOK, "Google login successful", res)
}

func (h *AuthHandler) GoogleSignup(c *gin.Context) {
	var input googleSignupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.MsgInvalidParam)
		return
	}

	res, err := h.service.GoogleSignup(c.Request.Context(), input.Token, input.Role)
	if err != nil {
		response.Fail(c, err)
		return
	}
	h.session(c, http.StatusCreated, "Google signup successful. You can set a password later.", res)
}

func (h *AuthHandler) SetPassword(c *gin.Context) {
	var input setPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.MsgInvalidParam)
		return
	}

	user, err := h.service.SetPassword(c.Request.Context(), middleware.CurrentUserID(c), input.Password, input.ConfirmPassword)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, "Password set successfully. You can now login with email and password.", gin.H{"user": user.Summary()})
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var input changePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.MsgInvalidParam)
		return
	}

	user, err := h.service.ChangePassword(c.Request.Context(), middleware.CurrentUserID(c),
		input.CurrentPassword, input.NewPassword, input.ConfirmPassword)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, "Password changed successfully", gin.H{"user": user.Summary()})
}
