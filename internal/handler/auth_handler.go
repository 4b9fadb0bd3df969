package handler

import (
	"net/http"

	"garage-service/internal/model"
	"garage-service/pkg/database"
	"garage-service/pkg/jwtutil"
	"garage-service/pkg/logger"
	"garage-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// RegisterRequest defines the structure for account registration
type RegisterRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// LoginRequest defines the structure for login requests
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// Register creates a new client account. Manager and mechanic accounts
// are provisioned by a manager through the users API.
func Register(c echo.Context) error {
	log := logger.FromContext(c)

	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse register request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username and password are required"})
	}

	// Check username uniqueness
	var count int64
	database.GetDB().Model(&model.User{}).Where("username = ?", req.Username).Count(&count)
	if count > 0 {
		log.Warn("Username already taken", zap.String("username", req.Username))
		return c.JSON(http.StatusConflict, echo.Map{"error": "username already exists"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	user := model.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         model.RoleClient,
	}
	if result := database.GetDB().Create(&user); result.Error != nil {
		log.Error("Failed to create user", zap.String("username", req.Username), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	prometheus.RegisteredCounter.Inc()
	log.Info("User registered",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username))
	return c.JSON(http.StatusCreated, user)
}

// Login verifies credentials and issues a JWT token
func Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	// Find user in database
	var user model.User
	result := database.GetDB().Where("username = ?", req.Username).First(&user)
	if result.Error != nil {
		log.Error("User not found", zap.String("username", req.Username))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		log.Error("Invalid password", zap.String("username", req.Username))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	token, err := jwtutil.GenerateToken(user.Username, user.ID, string(user.Role))
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	log.Info("User logged in",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)))
	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user":  user,
	})
}
