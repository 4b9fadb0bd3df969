package handler

import (
	"net/http"

	"garage-service/internal/authz"
	"garage-service/internal/model"
	mid "garage-service/internal/middleware"
	"garage-service/pkg/database"
	"garage-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// CreateUserRequest defines the structure for manager-provisioned accounts
type CreateUserRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
	Role     string `json:"role" form:"role"`
}

// ListMechanics returns all mechanic accounts, for assignment choices
func ListMechanics(c echo.Context) error {
	log := logger.FromContext(c)

	actor, ok := mid.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	if !authz.Allowed(actor.Role, authz.ActionListMechanics) {
		log.Warn("Mechanics listing denied", zap.String("role", string(actor.Role)))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only managers can list mechanics"})
	}

	var mechanics []model.User
	if result := database.GetDB().Where("role = ?", model.RoleMechanic).Order("username").Find(&mechanics); result.Error != nil {
		log.Error("Failed to list mechanics", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve mechanics"})
	}

	return c.JSON(http.StatusOK, mechanics)
}

// CreateUser lets a manager provision an account with any role
func CreateUser(c echo.Context) error {
	log := logger.FromContext(c)

	actor, ok := mid.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	if actor.Role != model.RoleManager {
		log.Warn("User creation denied", zap.String("role", string(actor.Role)))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only managers can create users"})
	}

	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username and password are required"})
	}
	role, ok := model.ParseRole(req.Role)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
	}

	var count int64
	database.GetDB().Model(&model.User{}).Where("username = ?", req.Username).Count(&count)
	if count > 0 {
		log.Warn("Username already taken", zap.String("username", req.Username))
		return c.JSON(http.StatusConflict, echo.Map{"error": "username already exists"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "user creation failed"})
	}

	user := model.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         role,
	}
	if result := database.GetDB().Create(&user); result.Error != nil {
		log.Error("Failed to create user", zap.String("username", req.Username), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "user creation failed"})
	}

	log.Info("User created",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)))
	return c.JSON(http.StatusCreated, user)
}
