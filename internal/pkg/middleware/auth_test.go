package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"coursehub/internal/domain/user/model"
	"coursehub/internal/pkg/auth"
	"coursehub/pkg/apperr"
	"coursehub/pkg/cache"
	"coursehub/pkg/response"
	"coursehub/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-test-secret"

type userLoader map[string]*model.User

func (l userLoader) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := l[id]; ok {
		return u, nil
	}
	if id == "broken" {
		return nil, errors.New("db down")
	}
	return nil, apperr.NotFound("User not found")
}

func newUser(id string, role model.Role) *model.User {
	u := &model.User{Name: id, Email: id + "@example.com", Role: role}
	u.ID = id
	return u
}

func token(t *testing.T, userID string, ttl time.Duration) string {
	t.Helper()
	tok, _, err := utils.GenerateToken(testSecret, userID, "client", ttl)
	require.NoError(t, err)
	return tok
}

func authRouter(a *Authenticator, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{a.Required()}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": CurrentUserID(c), "token": CurrentToken(c)})
	})
	r.GET("/private", handlers...)
	return r
}

func call(r *gin.Engine, setup func(*http.Request)) (int, map[string]any) {
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	if setup != nil {
		setup(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w.Code, out
}

func bearer(tok string) func(*http.Request) {
	return func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+tok) }
}

func TestRequired(t *testing.T) {
	users := userLoader{
		"u1": newUser("u1", model.RoleClient),
	}
	blacklist := auth.NewTokenBlacklist(cache.NewMemoryCache())
	r := authRouter(NewAuthenticator(testSecret, users, blacklist))

	t.Run("bearer header", func(t *testing.T) {
		tok := token(t, "u1", time.Hour)
		code, out := call(r, bearer(tok))
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "u1", out["userId"])
		assert.Equal(t, tok, out["token"])
	})

	t.Run("cookie wins over header", func(t *testing.T) {
		tok := token(t, "u1", time.Hour)
		code, _ := call(r, func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: TokenCookie, Value: tok})
			req.Header.Set("Authorization", "Bearer garbage")
		})
		assert.Equal(t, http.StatusOK, code)
	})

	tests := []struct {
		name  string
		setup func(*http.Request)
		code  int
		msg   string
	}{
		{"no token", nil, http.StatusUnauthorized, response.MsgNoToken},
		{"wrong scheme", func(req *http.Request) { req.Header.Set("Authorization", "Basic abc") }, http.StatusUnauthorized, response.MsgNoToken},
		{"garbage", bearer("not-a-jwt"), http.StatusUnauthorized, response.MsgTokenInvalid},
		{"expired", bearer(token(t, "u1", -time.Minute)), http.StatusUnauthorized, response.MsgTokenExpired},
		{"unknown user", bearer(token(t, "ghost", time.Hour)), http.StatusUnauthorized, response.MsgUserNotFound},
		{"lookup failure", bearer(token(t, "broken", time.Hour)), http.StatusInternalServerError, response.MsgServerInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out := call(r, tt.setup)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.msg, out["message"])
			assert.Equal(t, false, out["success"])
		})
	}

	t.Run("revoked", func(t *testing.T) {
		tok := token(t, "u1", time.Hour)
		require.NoError(t, blacklist.Revoke(context.Background(), tok, time.Now().Add(time.Hour)))
		code, out := call(r, bearer(tok))
		assert.Equal(t, http.StatusUnauthorized, code)
		assert.Equal(t, response.MsgTokenRevoked, out["message"])
	})
}

func TestRequiredWithoutLoader(t *testing.T) {
	a := NewAuthenticator(testSecret, nil, nil)
	code, _ := call(authRouter(a), bearer(token(t, "u1", time.Hour)))
	assert.Equal(t, http.StatusInternalServerError, code)

	a.UseLoader(userLoader{"u1": newUser("u1", model.RoleClient)})
	code, _ = call(authRouter(a), bearer(token(t, "u1", time.Hour)))
	assert.Equal(t, http.StatusOK, code)
}

func TestRoles(t *testing.T) {
	users := userLoader{
		"admin":  newUser("admin", model.RoleAdmin),
		"client": newUser("client", model.RoleClient),
		"odd":    newUser("odd", model.Role("superuser")),
	}
	a := NewAuthenticator(testSecret, users, nil)

	t.Run("admin only", func(t *testing.T) {
		r := authRouter(a, AdminOnly())

		code, _ := call(r, bearer(token(t, "admin", time.Hour)))
		assert.Equal(t, http.StatusOK, code)

		code, out := call(r, bearer(token(t, "client", time.Hour)))
		assert.Equal(t, http.StatusForbidden, code)
		assert.Equal(t, response.MsgAdminOnly, out["message"])

		code, _ = call(r, bearer(token(t, "odd", time.Hour)))
		assert.Equal(t, http.StatusForbidden, code)
	})

	t.Run("require role", func(t *testing.T) {
		r := authRouter(a, RequireRole(model.RoleAdmin))
		code, out := call(r, bearer(token(t, "client", time.Hour)))
		assert.Equal(t, http.StatusForbidden, code)
		assert.Equal(t, "Access denied. This route is restricted to: admin", out["message"])
	})

	t.Run("role without authentication", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		r := gin.New()
		r.GET("/private", AdminOnly(), func(c *gin.Context) { c.Status(http.StatusOK) })
		code, out := call(r, nil)
		assert.Equal(t, http.StatusUnauthorized, code)
		assert.Equal(t, response.MsgNotAuthed, out["message"])
	})
}
