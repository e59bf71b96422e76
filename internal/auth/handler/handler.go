// Package handler exchanges approver credentials for access tokens.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	dErrors "intake/pkg/domain-errors"
	"intake/pkg/platform/httputil"
	"intake/pkg/requestcontext"
	"intake/pkg/secrets"
)

// TokenIssuer mints signed access tokens.
type TokenIssuer interface {
	GenerateAccessToken(actorID, clientID string, expiresIn time.Duration) (string, error)
}

// TokenRequest is the credential exchange payload.
type TokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

func (r *TokenRequest) Validate() error {
	if r.ClientID == "" || r.ClientSecret == "" {
		return dErrors.New(dErrors.CodeValidation, "client_id and client_secret are required")
	}
	return nil
}

// TokenResponse is the issued token payload.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Handler authenticates the configured approver client against its bcrypt
// secret hash.
type Handler struct {
	issuer     TokenIssuer
	logger     *slog.Logger
	clientID   string
	secretHash string
	tokenTTL   time.Duration
}

func New(issuer TokenIssuer, logger *slog.Logger, clientID, secretHash string, tokenTTL time.Duration) *Handler {
	return &Handler{
		issuer:     issuer,
		logger:     logger,
		clientID:   clientID,
		secretHash: secretHash,
		tokenTTL:   tokenTTL,
	}
}

// Register mounts the token route.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/token", h.handleToken)
}

func (h *Handler) handleToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[TokenRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	if h.secretHash == "" {
		h.logger.ErrorContext(ctx, "approver secret hash is not configured",
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "token issuance unavailable"))
		return
	}
	if req.ClientID != h.clientID {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials"))
		return
	}
	if err := secrets.Verify(req.ClientSecret, h.secretHash); err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			httputil.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "secret verification failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "token issuance unavailable"))
		return
	}

	token, err := h.issuer.GenerateAccessToken(req.ClientID, req.ClientID, h.tokenTTL)
	if err != nil {
		h.logger.ErrorContext(ctx, "token generation failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "token issuance unavailable"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.tokenTTL.Seconds()),
	})
}
