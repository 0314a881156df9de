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
	"github.com/softdeck/softdeck/internal/models"
	"github.com/softdeck/softdeck/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UpdateUserRequest struct {
	Username        *string `json:"username" binding:"omitempty,min=3"`
	Email           *string `json:"email" binding:"omitempty,email"`
	Password        *string `json:"password" binding:"omitempty,min=8"`
	BirthDate       *string `json:"birth_date"`
	CanBeContacted  *bool   `json:"can_be_contacted"`
	CanDataBeShared *bool   `json:"can_data_be_shared"`
}

// UserListView is the public projection: no contact details, no consent flags.
type UserListView struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

type UserDetailView struct {
	ID              uint    `json:"id"`
	Username        string  `json:"username"`
	Email           string  `json:"email"`
	BirthDate       *string `json:"birth_date"`
	CanBeContacted  bool    `json:"can_be_contacted"`
	CanDataBeShared bool    `json:"can_data_be_shared"`
}

func toUserDetail(user models.User) UserDetailView {
	var birthDate *string

	if user.BirthDate != nil {
		formatted := user.BirthDate.Format(birthDateLayout)
		birthDate = &formatted
	}

	return UserDetailView{
		ID:              user.ID,
		Username:        user.Username,
		Email:           user.Email,
		BirthDate:       birthDate,
		CanBeContacted:  user.CanBeContacted,
		CanDataBeShared: user.CanDataBeShared,
	}
}

func ListUsers(ctx *gin.Context) {
	var users []models.User

	if err := db.DB.Order("id").Find(&users).Error; err != nil {
		slog.Error("failed to list users", "error", err)
		apierr.Write(ctx, apierr.Internal())
		return
	}

	response := make([]UserListView, 0, len(users))

	for _, user := range users {
		response = append(response, UserListView{ID: user.ID, Username: user.Username})
	}

	ctx.JSON(http.StatusOK, response)
}

func GetUser(ctx *gin.Context) {
	userID, ok := uintParam(ctx, "user_id")

	if !ok {
		apierr.Write(ctx, apierr.NotFound("user not found"))
		return
	}

	var user models.User

	if err := db.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierr.Write(ctx, apierr.NotFound("user not found"))
			return
		}
		slog.Error("failed to fetch user", "error", err)
		apierr.Write(ctx, apierr.Internal())
		return
	}

	ctx.JSON(http.StatusOK, toUserDetail(user))
}

// UpdateUser is self-service: a principal may only update their own account.
func UpdateUser(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		apierr.Write(ctx, apierr.Unauthenticated("user not authenticated"))
		return
	}

	userID, ok := uintParam(ctx, "user_id")

	if !ok {
		apierr.Write(ctx, apierr.NotFound("user not found"))
		return
	}

	if userID != currentUser.ID {
		apierr.Write(ctx, apierr.Forbidden("you may only update your own account"))
		return
	}

	var user models.User

	if err := db.DB.First(&user, userID).Error; err != nil {
		slog.Error("failed to fetch user", "error", err)
		apierr.Write(ctx, apierr.Internal())
		return
	}

	var body UpdateUserRequest

	if err := ctx.BindJSON(&body); err != nil {
		apierr.Write(ctx, apierr.Validation("", "invalid request body"))
		return
	}

	if body.Username != nil {
		user.Username = strings.TrimSpace(*body.Username)
	}

	if body.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*body.Email))
	}

	if body.Password != nil {
		passwordHash, err := bcrypt.GenerateFromPassword([]byte(*body.Password), bcrypt.DefaultCost)
		if err != nil {
			slog.Error("failed to hash password", "error", err)
			apierr.Write(ctx, apierr.Internal())
			return
		}
		user.PasswordHash = string(passwordHash)
	}

	if body.BirthDate != nil {
		parsed, err := time.Parse(birthDateLayout, *body.BirthDate)
		if err != nil {
			apierr.Write(ctx, apierr.Validation("birth_date", "birth_date must be formatted YYYY-MM-DD"))
			return
		}
		user.BirthDate = &parsed
	}

	// The age rule is re-validated on every save, not just registration.
	if user.BirthDate != nil {
		if err := models.ValidateAge(*user.BirthDate, time.Now()); err != nil {
			apierr.Write(ctx, apierr.Validation("birth_date", err.Error()))
			return
		}
	}

	if body.CanBeContacted != nil {
		user.CanBeContacted = *body.CanBeContacted
	}

	if body.CanDataBeShared != nil {
		user.CanDataBeShared = *body.CanDataBeShared
	}

	if err := db.DB.Save(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			apierr.Write(ctx, apierr.Conflict("username already exists"))
			return
		}
		slog.Error("failed to update user", "error", err)
		apierr.Write(ctx, apierr.Internal())
		return
	}

	ctx.JSON(http.StatusOK, toUserDetail(user))
}

// DeleteUser removes the principal's own account. Authored projects, issues
// and comments cascade away; issues merely assigned to the user have their
// assignee nulled instead.
func DeleteUser(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		apierr.Write(ctx, apierr.Unauthenticated("user not authenticated"))
		return
	}

	userID, ok := uintParam(ctx, "user_id")

	if !ok {
		apierr.Write(ctx, apierr.NotFound("user not found"))
		return
	}

	if userID != currentUser.ID {
		apierr.Write(ctx, apierr.Forbidden("you may only delete your own account"))
		return
	}

	if err := db.DB.Delete(&models.User{}, userID).Error; err != nil {
		slog.Error("failed to delete user", "error", err)
		apierr.Write(ctx, apierr.Internal())
		return
	}

	ctx.Status(http.StatusNoContent)
}
