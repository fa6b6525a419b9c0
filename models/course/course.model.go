package course

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultValidityDays applies when a course does not define an access window.
const DefaultValidityDays = 365

// Course represents a course sold in the catalog
type Course struct {
	gorm.Model
	Slug          string           `json:"slug" gorm:"type:varchar(191);uniqueIndex;not null"`
	Title         string           `json:"title" gorm:"not null"`
	Description   string           `json:"description" gorm:"type:text"`
	ImageURL      string           `json:"image_url"`
	Price         decimal.Decimal  `json:"price" gorm:"type:decimal(10,2);not null"`
	DiscountPrice *decimal.Decimal `json:"discount_price" gorm:"type:decimal(10,2)"`
	ValidityDays  int              `json:"validity_days" gorm:"default:365"`
	IsActive      bool             `json:"is_active" gorm:"index"`
	IsFeatured    bool             `json:"is_featured" gorm:"default:false"`
	Modules       []Module         `json:"modules,omitempty" gorm:"foreignKey:CourseID"`
}

// EffectivePrice is the unit price charged for the course right now.
func (c Course) EffectivePrice() decimal.Decimal {
	if c.DiscountPrice != nil {
		return *c.DiscountPrice
	}
	return c.Price
}

// AccessDays is the length of the access window granted on purchase.
func (c Course) AccessDays() int {
	if c.ValidityDays <= 0 {
		return DefaultValidityDays
	}
	return c.ValidityDays
}
