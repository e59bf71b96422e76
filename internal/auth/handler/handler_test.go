package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intake/internal/jwtauth"
	"intake/pkg/secrets"
	"intake/pkg/testutil"
)

func newRouter(t *testing.T, secretHash string) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwtSvc := jwtauth.NewService("test-key", "intake", "intake-api")
	h := New(jwtSvc, logger, "reviewer", secretHash, time.Hour)

	r := chi.NewRouter()
	h.Register(r)
	return r
}

func TestHandleToken(t *testing.T) {
	secret := "approver-secret"
	hash, err := secrets.Hash(secret)
	require.NoError(t, err)

	t.Run("valid credentials yield a usable token", func(t *testing.T) {
		router := newRouter(t, hash)
		req := testutil.NewJSONRequest(t, http.MethodPost, "/auth/token", TokenRequest{
			ClientID: "reviewer", ClientSecret: secret,
		})
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[TokenResponse](t, rr)
		assert.Equal(t, "Bearer", resp.TokenType)
		assert.Equal(t, int64(3600), resp.ExpiresIn)

		jwtSvc := jwtauth.NewService("test-key", "intake", "intake-api")
		claims, err := jwtSvc.ValidateToken(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "reviewer", claims.ActorID)
	})

	t.Run("wrong secret is unauthorized", func(t *testing.T) {
		router := newRouter(t, hash)
		req := testutil.NewJSONRequest(t, http.MethodPost, "/auth/token", TokenRequest{
			ClientID: "reviewer", ClientSecret: "wrong",
		})
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	})

	t.Run("unknown client is unauthorized", func(t *testing.T) {
		router := newRouter(t, hash)
		req := testutil.NewJSONRequest(t, http.MethodPost, "/auth/token", TokenRequest{
			ClientID: "intruder", ClientSecret: secret,
		})
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	})

	t.Run("missing fields fail validation", func(t *testing.T) {
		router := newRouter(t, hash)
		req := testutil.NewJSONRequest(t, http.MethodPost, "/auth/token", TokenRequest{ClientID: "reviewer"})
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
	})

	t.Run("unconfigured hash disables issuance", func(t *testing.T) {
		router := newRouter(t, "")
		req := testutil.NewJSONRequest(t, http.MethodPost, "/auth/token", TokenRequest{
			ClientID: "reviewer", ClientSecret: secret,
		})
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusInternalServerError, "internal_error")
	})
}
