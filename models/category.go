package models

import "time"

type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	NameRus   string    `gorm:"size:100;not null" json:"name_rus"`
	NameKaz   string    `gorm:"size:100;not null" json:"name_kaz"`
	SortOrder int       `gorm:"default:0" json:"sort_order"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Products []Product `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"products,omitempty"`
}
