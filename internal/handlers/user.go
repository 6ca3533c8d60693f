package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/snailmailtreasures/marketplace/internal/jwtmiddleware"
	"github.com/snailmailtreasures/marketplace/internal/logging"
	"github.com/snailmailtreasures/marketplace/internal/models"
	"github.com/snailmailtreasures/marketplace/internal/mykafka"
)

type UserHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

func (h *UserHandler) publish(c echo.Context, event map[string]any, key string) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "user_events", key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "error", err)
	}
}

func (h *UserHandler) load(c echo.Context) (*models.User, error) {
	var user models.User
	if err := h.DB.Where("id = ?", c.Param("id")).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return &user, nil
}

// loadSelf additionally requires the caller to be the user being mutated.
func (h *UserHandler) loadSelf(c echo.Context) (*models.User, error) {
	callerID, err := jwtmiddleware.CallerID(c)
	if err != nil {
		return nil, err
	}
	user, err := h.load(c)
	if err != nil {
		return nil, err
	}
	if user.ID != callerID {
		return nil, echo.NewHTTPError(http.StatusForbidden, "not your account")
	}
	return user, nil
}

func (h *UserHandler) GetUsers(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "user.get_users")

	var users []models.User
	if err := h.DB.Find(&users).Error; err != nil {
		l.Error("get_users_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list users")
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.load(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateUser(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "user.update")

	user, err := h.loadSelf(c)
	if err != nil {
		return err
	}

	var req struct {
		UserName *string `json:"userName"`
		Email    *string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if req.UserName != nil {
		user.UserName = *req.UserName
	}
	if req.Email != nil {
		user.Email = *req.Email
	}

	if err := h.DB.Save(user).Error; err != nil {
		l.Error("user_update_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update user")
	}

	l.Info("user_update_success", "user_id", user.ID)
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) DeleteUser(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "user.delete")

	user, err := h.loadSelf(c)
	if err != nil {
		return err
	}

	if err := h.DB.Delete(&models.User{}, "id = ?", user.ID).Error; err != nil {
		l.Error("user_delete_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete user")
	}

	h.publish(c, map[string]any{
		"type":   "user_deleted",
		"userID": user.ID,
	}, user.ID)

	l.Info("user_delete_success", "user_id", user.ID)
	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}

// AddFavourite appends an item id to the user's favourites list. Duplicates
// are rejected so the list holds each id at most once. The denormalized
// counter on the item is updated by a separate call (see
// ItemHandler.BumpFavoriteCount).
func (h *UserHandler) AddFavourite(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "user.add_favourite")

	user, err := h.loadSelf(c)
	if err != nil {
		return err
	}

	var req struct {
		ItemID string `json:"itemId"`
	}
	if err := c.Bind(&req); err != nil || req.ItemID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "itemId is required")
	}

	for _, id := range user.Favourites {
		if id == req.ItemID {
			l.Warn("add_favourite_failed", "status", 409, "reason", "duplicate favorite", "item_id", req.ItemID)
			return echo.NewHTTPError(http.StatusConflict, "duplicate favorite")
		}
	}

	user.Favourites = append(user.Favourites, req.ItemID)
	if err := h.DB.Save(user).Error; err != nil {
		l.Error("add_favourite_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot save favourites")
	}

	h.publish(c, map[string]any{
		"type":   "favourite_added",
		"userID": user.ID,
		"itemID": req.ItemID,
	}, user.ID)

	l.Info("add_favourite_success", "user_id", user.ID, "item_id", req.ItemID)
	return c.JSON(http.StatusOK, echo.Map{
		"message":    "added to favorites",
		"favourites": user.Favourites,
	})
}

func (h *UserHandler) RemoveFavourite(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "user.remove_favourite")

	user, err := h.loadSelf(c)
	if err != nil {
		return err
	}

	itemID := c.Param("itemId")
	idx := -1
	for i, id := range user.Favourites {
		if id == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		l.Warn("remove_favourite_failed", "status", 404, "reason", "not favorited", "item_id", itemID)
		return echo.NewHTTPError(http.StatusNotFound, "not favorited")
	}

	user.Favourites = append(user.Favourites[:idx], user.Favourites[idx+1:]...)
	if err := h.DB.Save(user).Error; err != nil {
		l.Error("remove_favourite_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot save favourites")
	}

	h.publish(c, map[string]any{
		"type":   "favourite_removed",
		"userID": user.ID,
		"itemID": itemID,
	}, user.ID)

	l.Info("remove_favourite_success", "user_id", user.ID, "item_id", itemID)
	return c.JSON(http.StatusOK, echo.Map{
		"message":    "removed from favorites",
		"favourites": user.Favourites,
	})
}
