package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"expense_tracker/internal/domain"
	"expense_tracker/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVerifier struct {
	claims *utils.Claims
	err    error
}

func (v fakeVerifier) Verify(_ context.Context, token string) (*utils.Claims, error) {
	if v.err != nil {
		return nil, v.err
	}
	if token != "good" {
		return nil, domain.NewError(domain.ErrAuth, "test", "Invalid or expired token", nil)
	}
	return v.claims, nil
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	final := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userID": c.GetString(ContextUserID), "token": c.GetString(ContextToken)})
	}
	chain := append(handlers, final)
	r.Handle(http.MethodGet, "/items/:id", chain...)
	r.Handle(http.MethodDelete, "/items/:id", chain...)
	return r
}

func do(r http.Handler, method, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/items/42", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware(t *testing.T) {
	verifier := fakeVerifier{claims: &utils.Claims{UserID: "u1", Email: "a@b.co"}}
	r := newRouter(JWTAuthMiddleware(verifier))

	w := do(r, http.MethodGet, "good")
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "u1", body["userID"])
	assert.Equal(t, "good", body["token"])

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "bad").Code)

	down := newRouter(JWTAuthMiddleware(fakeVerifier{err: domain.Network("test", errors.New("redis down"))}))
	assert.Equal(t, http.StatusServiceUnavailable, do(down, http.MethodGet, "good").Code)
}

func TestOwnerOnlyMiddleware(t *testing.T) {
	owners := map[string]string{"42": "u1"}
	lookup := func(_ context.Context, id string) (string, error) {
		owner, ok := owners[id]
		if !ok {
			return "", domain.NotFound("test", "missing")
		}
		return owner, nil
	}
	as := func(uid string) gin.HandlerFunc {
		return func(c *gin.Context) {
			if uid != "" {
				c.Set(ContextUserID, uid)
			}
			c.Next()
		}
	}

	assert.Equal(t, http.StatusOK, do(newRouter(as("u1"), OwnerOnlyMiddleware("Wallet", lookup)), http.MethodGet, "").Code)
	assert.Equal(t, http.StatusForbidden, do(newRouter(as("u2"), OwnerOnlyMiddleware("Wallet", lookup)), http.MethodGet, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(newRouter(as(""), OwnerOnlyMiddleware("Wallet", lookup)), http.MethodGet, "").Code)

	delete(owners, "42")
	assert.Equal(t, http.StatusNotFound, do(newRouter(as("u1"), OwnerOnlyMiddleware("Wallet", lookup)), http.MethodGet, "").Code)
	assert.Equal(t, http.StatusOK, do(newRouter(as("u1"), OwnerOnlyMiddleware("Wallet", lookup)), http.MethodDelete, "").Code)

	failing := func(context.Context, string) (string, error) { return "", domain.Network("test", errors.New("down")) }
	assert.Equal(t, http.StatusServiceUnavailable, do(newRouter(as("u1"), OwnerOnlyMiddleware("Wallet", failing)), http.MethodGet, "").Code)
}
