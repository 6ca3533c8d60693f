package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/snailmailtreasures/marketplace/internal/hash"
	"github.com/snailmailtreasures/marketplace/internal/logging"
	"github.com/snailmailtreasures/marketplace/internal/models"
	"github.com/snailmailtreasures/marketplace/internal/mykafka"
)

const tokenTTL = 24 * time.Hour

type AuthHandler struct {
	DB        *gorm.DB
	JWTSecret []byte
	Producer  *mykafka.Producer
}

type authResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Token    string `json:"token"`
}

func (h *AuthHandler) signToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"id":  userID,
		"exp": time.Now().Add(tokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(h.JWTSecret)
}

func (h *AuthHandler) publish(c echo.Context, event map[string]any, key string) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "user_events", key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "error", err)
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "auth.register")

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username, email and password are required")
	}

	var existing models.User
	err := h.DB.Where("user_name = ? OR email = ?", req.Username, req.Email).First(&existing).Error
	if err == nil {
		l.Warn("register_failed", "status", 400, "reason", "user already exists")
		return echo.NewHTTPError(http.StatusBadRequest, "user already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		l.Error("register_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "db error")
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_failed", "status", 500, "reason", "cannot hash password", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot hash password")
	}

	user := models.User{
		UserName:     req.Username,
		Email:        req.Email,
		PasswordHash: pwHash,
		Favourites:   []string{},
	}
	if err := h.DB.Create(&user).Error; err != nil {
		l.Error("register_failed", "status", 500, "reason", "cannot create user", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create user")
	}

	token, err := h.signToken(user.ID)
	if err != nil {
		l.Error("register_failed", "status", 500, "reason", "cannot sign token", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot sign token")
	}

	h.publish(c, map[string]any{
		"type":     "user_registered",
		"userID":   user.ID,
		"username": user.UserName,
	}, fmt.Sprint(user.ID))

	l.Info("register_success", "user_id", user.ID)
	return c.JSON(http.StatusCreated, authResponse{
		ID:       user.ID,
		Username: user.UserName,
		Email:    user.Email,
		Token:    token,
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "auth.login")

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var user models.User
	if err := h.DB.Where("user_name = ?", req.Username).First(&user).Error; err != nil {
		l.Warn("login_failed", "status", 401, "reason", "unknown username")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
	}

	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		l.Warn("login_failed", "status", 401, "reason", "bad password", "user_id", user.ID)
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
	}

	token, err := h.signToken(user.ID)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot sign token", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot sign token")
	}

	h.publish(c, map[string]any{
		"type":     "user_logged_in",
		"userID":   user.ID,
		"username": user.UserName,
	}, fmt.Sprint(user.ID))

	l.Info("login_success", "user_id", user.ID)
	return c.JSON(http.StatusOK, authResponse{
		ID:       user.ID,
		Username: user.UserName,
		Email:    user.Email,
		Token:    token,
	})
}
