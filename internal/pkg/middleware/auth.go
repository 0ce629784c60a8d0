package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"coursehub/internal/domain/user/model"
	"coursehub/internal/pkg/auth"
	"coursehub/pkg/apperr"
	"coursehub/pkg/logger"
	"coursehub/pkg/response"
	"coursehub/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// 上下文键
const (
	ContextUserID = "userID"
	ContextRole   = "role"
	ContextUser   = "user"
	ContextToken  = "token"
)

// TokenCookie is the session cookie name.
const TokenCookie = "token"

// UserLoader resolves the account behind a verified token.
type UserLoader interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// Authenticator JWT认证
type Authenticator struct {
	secret    string
	users     UserLoader
	blacklist auth.TokenBlacklist
}

func NewAuthenticator(secret string, users UserLoader, blacklist auth.TokenBlacklist) *Authenticator {
	return &Authenticator{secret: secret, users: users, blacklist: blacklist}
}

// UseLoader sets the user loader. It must be called before the server starts.
func (a *Authenticator) UseLoader(users UserLoader) {
	a.users = users
}

// extractToken 优先读取 cookie，其次读取 "Bearer <token>"
func extractToken(c *gin.Context) string {
	if tok, err := c.Cookie(TokenCookie); err == nil && tok != "" {
		return tok
	}
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Required JWT认证中间件
func (a *Authenticator) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			response.Abort(c, http.StatusUnauthorized, response.MsgNoToken)
			return
		}

		claims, err := utils.ParseToken(a.secret, tokenString)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				response.Abort(c, http.StatusUnauthorized, response.MsgTokenExpired)
				return
			}
			response.Abort(c, http.StatusUnauthorized, response.MsgTokenInvalid)
			return
		}

		ctx := c.Request.Context()
		if a.blacklist != nil {
			revoked, err := a.blacklist.IsRevoked(ctx, tokenString)
			if err != nil {
				// fail open on cache errors
				logger.Log.Warn("token blacklist lookup failed", zap.Error(err))
			} else if revoked {
				response.Abort(c, http.StatusUnauthorized, response.MsgTokenRevoked)
				return
			}
		}

		if a.users == nil {
			logger.Log.Error("authenticator has no user loader")
			response.Abort(c, http.StatusInternalServerError, response.MsgServerInternal)
			return
		}
		user, err := a.users.GetByID(ctx, claims.UserID)
		if err != nil {
			if apperr.StatusOf(err) == http.StatusNotFound {
				response.Abort(c, http.StatusUnauthorized, response.MsgUserNotFound)
				return
			}
			logger.Log.Error("auth user lookup failed", zap.Error(err))
			response.Abort(c, http.StatusInternalServerError, response.MsgServerInternal)
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextRole, user.Role)
		c.Set(ContextUser, user)
		c.Set(ContextToken, tokenString)
		c.Next()
	}
}

// RequireRole 角色权限中间件，必须放在 Required 之后
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return requireRole(roles, "Access denied. This route is restricted to: "+strings.Join(names, ", "))
}

// AdminOnly 管理员权限中间件
func AdminOnly() gin.HandlerFunc {
	return requireRole([]model.Role{model.RoleAdmin}, response.MsgAdminOnly)
}

func requireRole(roles []model.Role, denied string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := CurrentRole(c)
		if !ok {
			response.Abort(c, http.StatusUnauthorized, response.MsgNotAuthed)
			return
		}
		if !allowed(role, roles) {
			response.Abort(c, http.StatusForbidden, denied)
			return
		}
		c.Next()
	}
}

// allowed switches over the closed role set; unknown roles are never allowed.
func allowed(role model.Role, roles []model.Role) bool {
	switch role {
	case model.RoleAdmin, model.RoleClient:
		for _, r := range roles {
			if r == role {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func CurrentRole(c *gin.Context) (model.Role, bool) {
	v, ok := c.Get(ContextRole)
	if !ok {
		return "", false
	}
	role, ok := v.(model.Role)
	return role, ok
}

func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get(ContextUser)
	if !ok {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok && user != nil
}

func CurrentUserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

func CurrentToken(c *gin.Context) string {
	if tok := c.GetString(ContextToken); tok != "" {
		return tok
	}
	return extractToken(c)
}
