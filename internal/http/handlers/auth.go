package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/domain"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// bcrypt dominates both calls
const authTimeout = 5 * time.Second

type Accounts interface {
	SignUp(ctx context.Context, req user.SignUpRequest) (user.Profile, error)
	Login(ctx context.Context, req user.LoginRequest) (string, error)
}

type AuthHandler struct {
	accounts Accounts
	log      *slog.Logger
}

func NewAuthHandler(accounts Accounts, log *slog.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, log: log}
}

func (h *AuthHandler) SignUp(ctx *gin.Context) {
	var req user.SignUpRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), authTimeout)
	defer cancel()

	profile, err := h.accounts.SignUp(cctx, req)
	if err != nil {
		respondServiceError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusCreated, profile)
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	// malformed logins get the same message as rejected ones
	if !bindJSON(ctx, &req, msgInvalidCredentials, false) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), authTimeout)
	defer cancel()

	token, err := h.accounts.Login(cctx, req)
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			RespondBadRequest(ctx, msgInvalidCredentials, gin.H{"fields": ve.Fields})
			return
		}
		respondServiceError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"token": token,
	})
}

// Logout keeps no server state: tokens stay valid until they expire.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Logged out",
	})
}
