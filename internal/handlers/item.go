package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/snailmailtreasures/marketplace/internal/jwtmiddleware"
	"github.com/snailmailtreasures/marketplace/internal/logging"
	"github.com/snailmailtreasures/marketplace/internal/models"
	"github.com/snailmailtreasures/marketplace/internal/mykafka"
	"github.com/snailmailtreasures/marketplace/internal/util"
	"github.com/snailmailtreasures/marketplace/pkg/deal"
)

type ItemHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func (h *ItemHandler) publish(c echo.Context, event map[string]any, key string) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "item_events", key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "error", err)
	}
}

// loadOwned fetches the item and enforces that the caller owns it. This is
// the real authorization check; whatever the storefront decides from its
// decoded token is advisory only.
func (h *ItemHandler) loadOwned(c echo.Context) (*models.Item, error) {
	callerID, err := jwtmiddleware.CallerID(c)
	if err != nil {
		return nil, err
	}

	var item models.Item
	if err := h.DB.Where("id = ?", c.Param("id")).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "item not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if item.UserID != callerID {
		return nil, echo.NewHTTPError(http.StatusForbidden, "not the item owner")
	}
	return &item, nil
}

func (h *ItemHandler) GetItems(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "item.get_items")

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), 0)

	var items []models.Item
	q := h.DB.Model(&models.Item{}).Order("created_at ASC")
	if size > 0 {
		offset, limit := util.Calculate(page, size)
		q = q.Offset(offset).Limit(limit)
	}
	if err := q.Find(&items).Error; err != nil {
		l.Error("get_items_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list items")
	}

	return c.JSON(http.StatusOK, items)
}

func (h *ItemHandler) GetItem(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "item.get_item")

	var item models.Item
	if err := h.DB.Where("id = ?", c.Param("id")).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "item not found")
		}
		l.Error("get_item_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return c.JSON(http.StatusOK, item)
}

func (h *ItemHandler) CreateItem(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "item.create")

	callerID, err := jwtmiddleware.CallerID(c)
	if err != nil {
		return err
	}

	var req struct {
		ItemName    string  `json:"itemName"`
		Description string  `json:"description"`
		ImageURL    string  `json:"imageUrl"`
		Category    string  `json:"category"`
		Price       float64 `json:"price"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.ItemName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "itemName is required")
	}
	if req.Price < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "price cannot be negative")
	}

	item := models.Item{
		ItemName:    req.ItemName,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Category:    req.Category,
		Price:       req.Price,
		UserID:      callerID,
	}
	if err := h.DB.Create(&item).Error; err != nil {
		l.Error("item_create_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create item")
	}

	h.publish(c, map[string]any{
		"type":     "item_created",
		"itemID":   item.ID,
		"itemName": item.ItemName,
		"userID":   callerID,
	}, item.ID)

	l.Info("item_create_success", "item_id", item.ID)
	return c.JSON(http.StatusCreated, item)
}

func (h *ItemHandler) UpdateItem(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "item.update")

	item, err := h.loadOwned(c)
	if err != nil {
		return err
	}

	var req struct {
		ItemName    *string  `json:"itemName"`
		Description *string  `json:"description"`
		ImageURL    *string  `json:"imageUrl"`
		Category    *string  `json:"category"`
		Price       *float64 `json:"price"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if req.ItemName != nil {
		item.ItemName = *req.ItemName
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.ImageURL != nil {
		item.ImageURL = *req.ImageURL
	}
	if req.Category != nil {
		item.Category = *req.Category
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "price cannot be negative")
		}
		item.Price = *req.Price
	}

	if err := h.DB.Save(item).Error; err != nil {
		l.Error("item_update_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update item")
	}

	h.publish(c, map[string]any{
		"type":     "item_updated",
		"itemID":   item.ID,
		"itemName": item.ItemName,
	}, item.ID)

	l.Info("item_update_success", "item_id", item.ID)
	return c.JSON(http.StatusOK, item)
}

func (h *ItemHandler) DeleteItem(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "item.delete")

	item, err := h.loadOwned(c)
	if err != nil {
		return err
	}

	if err := h.DB.Delete(&models.Item{}, "id = ?", item.ID).Error; err != nil {
		l.Error("item_delete_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete item")
	}

	h.publish(c, map[string]any{
		"type":   "item_deleted",
		"itemID": item.ID,
	}, item.ID)

	l.Info("item_delete_success", "item_id", item.ID)
	return c.JSON(http.StatusOK, echo.Map{"message": "item deleted"})
}

// SetDeal attaches a deal sub-record to an owned item. The discounted price
// and expiration are derived server-side from the requested percentage.
func (h *ItemHandler) SetDeal(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "item.set_deal")

	item, err := h.loadOwned(c)
	if err != nil {
		return err
	}

	var req struct {
		DiscountPercentage float64 `json:"discountPercentage"`
		ExpirationDays     int     `json:"expirationDays"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	d, err := deal.Compute(item.Price, req.DiscountPercentage, req.ExpirationDays)
	if err != nil {
		if errors.Is(err, deal.ErrInvalidDiscount) {
			return echo.NewHTTPError(http.StatusBadRequest, "discount percentage must be between 0 and 100 exclusive")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot compute deal")
	}

	item.Deal = &models.Deal{
		IsOnDeal:    true,
		DealPrice:   d.DealPrice,
		DealExpires: d.ExpiresAt,
	}
	if err := h.DB.Save(item).Error; err != nil {
		l.Error("set_deal_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot save deal")
	}

	h.publish(c, map[string]any{
		"type":      "item_deal_set",
		"itemID":    item.ID,
		"dealPrice": item.Deal.DealPrice,
	}, item.ID)

	l.Info("set_deal_success", "item_id", item.ID, "deal_price", item.Deal.DealPrice)
	return c.JSON(http.StatusOK, item)
}

// BumpFavoriteCount applies a signed delta to the denormalized favorite
// counter. It is a separate call from the favourites-list update on the user
// record; there is no transaction across the two (callers surface partial
// failure).
func (h *ItemHandler) BumpFavoriteCount(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "item.bump_favorite_count")

	var req struct {
		Delta int `json:"delta"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Delta != 1 && req.Delta != -1 {
		return echo.NewHTTPError(http.StatusBadRequest, "delta must be 1 or -1")
	}

	var item models.Item
	if err := h.DB.Where("id = ?", c.Param("id")).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "item not found")
		}
		l.Error("bump_favorite_count_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "db error")
	}

	item.FavoriteCount += req.Delta
	if item.FavoriteCount < 0 {
		item.FavoriteCount = 0
	}
	if err := h.DB.Save(&item).Error; err != nil {
		l.Error("bump_favorite_count_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update favorite count")
	}

	return c.JSON(http.StatusOK, item)
}
