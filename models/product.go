package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is the slice of the catalog this service consumes: price, stock
// and variations. Full catalog management lives in the product service.
type Product struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name          string         `gorm:"type:varchar(255);not null" json:"name"`
	Description   string         `gorm:"type:text" json:"description,omitempty"`
	Price         float64        `json:"price"`
	DiscountPrice *float64       `json:"discountPrice,omitempty"`
	Stock         int            `gorm:"not null;default:0" json:"stock"`
	Images        []string       `gorm:"serializer:json;type:jsonb" json:"images,omitempty"`
	HasVariations bool           `gorm:"not null;default:false" json:"hasVariations"`
	Variations    []Variation    `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variations,omitempty"`
	Active        bool           `gorm:"not null;default:true" json:"status"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// Variation is a purchasable variant of a product ("5 kg", "2*5kg", ...)
// with its own price and stock counter.
type Variation struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProductID     uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	Name          string    `gorm:"type:varchar(120);not null" json:"name"`
	Price         float64   `gorm:"not null" json:"price"`
	DiscountPrice *float64  `json:"discountPrice,omitempty"`
	Stock         int       `gorm:"not null;default:0" json:"stock"`
}

// EffectivePrice returns the discount price when one is set.
func (p *Product) EffectivePrice() float64 {
	if p.DiscountPrice != nil && *p.DiscountPrice > 0 {
		return *p.DiscountPrice
	}
	return p.Price
}

func (v *Variation) EffectivePrice() float64 {
	if v.DiscountPrice != nil && *v.DiscountPrice > 0 {
		return *v.DiscountPrice
	}
	return v.Price
}

// FindVariation locates a variation by id on the loaded product.
func (p *Product) FindVariation(id uuid.UUID) *Variation {
	for i := range p.Variations {
		if p.Variations[i].ID == id {
			return &p.Variations[i]
		}
	}
	return nil
}

// Snapshot freezes the attributes an order line is sold under.
func (p *Product) Snapshot(v *Variation) ProductSnapshot {
	snap := ProductSnapshot{
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		DiscountPrice: p.DiscountPrice,
		Images:        p.Images,
	}
	if v != nil {
		snap.Price = v.Price
		snap.DiscountPrice = v.DiscountPrice
		snap.VariationName = v.Name
	}
	return snap
}
