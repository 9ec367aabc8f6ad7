package models

import (
	"time"

	"github.com/google/uuid"
)

// Cart holds a user's pending selections. Carts are created lazily on first
// add-to-cart and only ever emptied, never deleted.
type Cart struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

type CartItem struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CartID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"cart_id"`
	ProductID   uuid.UUID  `gorm:"type:uuid;not null" json:"product_id"`
	VariationID *uuid.UUID `gorm:"type:uuid" json:"variation_id,omitempty"`
	Quantity    int        `gorm:"not null" json:"quantity"`
}
