package storeapi

import (
	"encoding/json"
	"time"

	"github.com/snailmailtreasures/marketplace/pkg/deal"
)

// Item is the canonical record every storefront surface works with. Name
// and Image are always populated regardless of which field variant the
// backend emitted.
type Item struct {
	ID            string     `json:"_id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Image         string     `json:"image"`
	Category      string     `json:"category"`
	Price         float64    `json:"price"`
	OwnerID       string     `json:"userId"`
	FavoriteCount int        `json:"favoriteCount"`
	Deal          *deal.Deal `json:"deal,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// rawItem accepts both backend shapes: the canonical itemName/imageUrl pair
// and the legacy name/image aliases. The owner reference may be a bare id
// string or an embedded user object.
type rawItem struct {
	ID            string          `json:"_id"`
	ItemName      string          `json:"itemName"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	ImageURL      string          `json:"imageUrl"`
	Image         string          `json:"image"`
	Category      string          `json:"category"`
	Price         float64         `json:"price"`
	UserID        json.RawMessage `json:"userId"`
	FavoriteCount int             `json:"favoriteCount"`
	Deal          *deal.Deal      `json:"deal,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// normalizeItem is the single mapping point between raw backend records and
// the canonical Item. Precedence: the backend-canonical field (itemName,
// imageUrl) wins, the legacy alias fills the gap. Picked once, applied
// everywhere, so display surfaces cannot drift.
func normalizeItem(r rawItem) Item {
	name := r.ItemName
	if name == "" {
		name = r.Name
	}
	image := r.ImageURL
	if image == "" {
		image = r.Image
	}

	return Item{
		ID:            r.ID,
		Name:          name,
		Description:   r.Description,
		Image:         image,
		Category:      r.Category,
		Price:         r.Price,
		OwnerID:       coerceOwnerID(r.UserID),
		FavoriteCount: r.FavoriteCount,
		Deal:          r.Deal,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func coerceOwnerID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.ID
	}
	return ""
}

type User struct {
	ID         string    `json:"_id"`
	UserName   string    `json:"userName"`
	Email      string    `json:"email"`
	Favourites []string  `json:"favourites"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
