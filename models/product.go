package models

import "time"

type ProductStatus string

const (
	ProductActive     ProductStatus = "active"
	ProductOutOfStock ProductStatus = "out_of_stock"
	ProductInactive   ProductStatus = "inactive"
)

type Product struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	CategoryID     uint          `gorm:"index" json:"category_id"`
	NameRus        string        `gorm:"size:100;not null" json:"name_rus"`
	NameKaz        string        `gorm:"size:100;not null" json:"name_kaz"`
	DescriptionRus string        `gorm:"type:text" json:"description_rus"`
	DescriptionKaz string        `gorm:"type:text" json:"description_kaz"`
	BasePrice      float64       `gorm:"not null" json:"base_price"`
	ImageURL       string        `gorm:"type:text" json:"image_url"`
	Status         ProductStatus `gorm:"type:VARCHAR(20);default:'active'" json:"status"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`

	OptionGroups []OptionGroup `gorm:"many2many:product_option_groups;constraint:OnDelete:CASCADE" json:"option_groups,omitempty"`
}
