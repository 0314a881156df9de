package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/softdeck/softdeck/db"
	"github.com/softdeck/softdeck/internal/apierr"
	"github.com/softdeck/softdeck/internal/auth"
	"github.com/softdeck/softdeck/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const birthDateLayout = "2006-01-02"

type RegisterRequest struct {
	Username        string  `json:"username" binding:"required,min=3"`
	Email           string  `json:"email" binding:"required,email"`
	Password        string  `json:"password" binding:"required,min=8"`
	BirthDate       *string `json:"birth_date"`
	CanBeContacted  bool    `json:"can_be_contacted"`
	CanDataBeShared bool    `json:"can_data_be_shared"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

func Register(ctx *gin.Context) {
	var body RegisterRequest

	if err := ctx.BindJSON(&body); err != nil {
		apierr.Write(ctx, apierr.Validation("", "invalid request body"))
		return
	}

	body.Username = strings.TrimSpace(body.Username)
	body.Email = strings.ToLower(strings.TrimSpace(body.Email))

	var birthDate *time.Time

	if body.BirthDate != nil {
		parsed, err := time.Parse(birthDateLayout, *body.BirthDate)
		if err != nil {
			apierr.Write(ctx, apierr.Validation("birth_date", "birth_date must be formatted YYYY-MM-DD"))
			return
		}

		if err := models.ValidateAge(parsed, time.Now()); err != nil {
			apierr.Write(ctx, apierr.Validation("birth_date", err.Error()))
			return
		}

		birthDate = &parsed
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)

	if err != nil {
		slog.Error("failed to hash password", "error", err)
		apierr.Write(ctx, apierr.Internal())
		return
	}

	user := models.User{
		Username:        body.Username,
		Email:           body.Email,
		PasswordHash:    string(passwordHash),
		BirthDate:       birthDate,
		CanBeContacted:  body.CanBeContacted,
		CanDataBeShared: body.CanDataBeShared,
	}

	if err := db.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			apierr.Write(ctx, apierr.Conflict("username already exists"))
			return
		}
		slog.Error("failed to create user", "error", err)
		apierr.Write(ctx, apierr.Internal())
		return
	}

	ctx.JSON(http.StatusCreated, toUserDetail(user))
}

func Login(ctx *gin.Context) {
	var body LoginRequest

	if err := ctx.BindJSON(&body); err != nil {
		apierr.Write(ctx, apierr.Validation("", "invalid request body"))
		return
	}

	var user models.User

	err := db.DB.Where("username = ?", body.Username).First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierr.Write(ctx, apierr.InvalidCredentials())
			return
		}
		slog.Error("failed to fetch user", "error", err)
		apierr.Write(ctx, apierr.Internal())
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
		apierr.Write(ctx, apierr.InvalidCredentials())
		return
	}

	pair, err := auth.GenerateTokenPair(user.ID, user.Username)

	if err != nil {
		slog.Error("failed to generate tokens", "error", err)
		apierr.Write(ctx, apierr.Internal())
		return
	}

	ctx.JSON(http.StatusOK, pair)
}

// RefreshToken exchanges a valid refresh token for a fresh pair. Access tokens
// presented here are rejected by the token-type check.
func RefreshToken(ctx *gin.Context) {
	var body RefreshRequest

	if err := ctx.BindJSON(&body); err != nil {
		apierr.Write(ctx, apierr.Validation("", "invalid request body"))
		return
	}

	claims, err := auth.VerifyToken(body.Refresh, auth.TokenTypeRefresh)

	if err != nil {
		apierr.Write(ctx, apierr.Unauthenticated("invalid or expired refresh token"))
		return
	}

	var user models.User

	if err := db.DB.First(&user, claims.UserID).Error; err != nil {
		apierr.Write(ctx, apierr.Unauthenticated("user not found"))
		return
	}

	pair, err := auth.GenerateTokenPair(user.ID, user.Username)

	if err != nil {
		slog.Error("failed to generate tokens", "error", err)
		apierr.Write(ctx, apierr.Internal())
		return
	}

	ctx.JSON(http.StatusOK, pair)
}
