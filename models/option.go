package models

import "time"

// OptionGroup is a customization axis for a product, e.g. "Milk" or "Syrup".
type OptionGroup struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	NameRus    string    `gorm:"size:100;not null" json:"name_rus"`
	NameKaz    string    `gorm:"size:100;not null" json:"name_kaz"`
	IsRequired bool      `gorm:"default:false" json:"is_required"`
	IsMultiple bool      `gorm:"default:false" json:"is_multiple"`
	CreatedAt  time.Time `json:"created_at"`

	Options []Option `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"options,omitempty"`
}

// Option is a single choice inside a group, e.g. "Coconut milk +400".
type Option struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	GroupID     uint      `gorm:"index" json:"group_id"`
	NameRus     string    `gorm:"size:100;not null" json:"name_rus"`
	NameKaz     string    `gorm:"size:100;not null" json:"name_kaz"`
	Price       float64   `gorm:"default:0" json:"price"`
	IsAvailable bool      `gorm:"default:true" json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
}
