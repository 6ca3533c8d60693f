package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Deal is a document-style sub-record on Item. The backend never clears
// IsOnDeal on its own once DealExpires has passed; readers must check
// expiration themselves.
type Deal struct {
	IsOnDeal    bool       `json:"isOnDeal"`
	DealPrice   float64    `json:"dealPrice"`
	DealExpires *time.Time `json:"dealExpires,omitempty"`
}

type Item struct {
	ID            string    `gorm:"primaryKey"       json:"_id"`
	ItemName      string    `gorm:"not null"         json:"itemName"`
	Description   string    `gorm:"not null"         json:"description"`
	ImageURL      string    `json:"imageUrl"`
	Category      string    `json:"category"`
	Price         float64   `gorm:"not null"         json:"price"`
	UserID        string    `gorm:"index;not null"   json:"userId"`
	FavoriteCount int       `gorm:"default:0"        json:"favoriteCount"`
	Deal          *Deal     `gorm:"serializer:json"  json:"deal,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (i *Item) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

type User struct {
	ID           string    `gorm:"primaryKey"      json:"_id"`
	UserName     string    `gorm:"unique;not null" json:"userName"`
	Email        string    `gorm:"unique;not null" json:"email"`
	PasswordHash string    `gorm:"not null"        json:"-"`
	Favourites   []string  `gorm:"serializer:json" json:"favourites"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
