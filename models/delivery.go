package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// ZonePolygon is a list of [lat, lng] points stored as a JSON column.
type ZonePolygon [][2]float64

func (p ZonePolygon) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *ZonePolygon) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	case nil:
		*p = nil
		return nil
	default:
		return errors.New("unsupported type for ZonePolygon")
	}
}

type DeliveryZone struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	Name          string      `gorm:"size:100;not null" json:"name"`
	Color         string      `gorm:"size:20;not null" json:"color"`
	Coordinates   ZonePolygon `gorm:"type:jsonb;not null" json:"coordinates"`
	DeliveryFee   float64     `gorm:"not null" json:"delivery_fee"`
	MinOrder      float64     `gorm:"not null" json:"min_order"`
	EstimatedTime string      `gorm:"size:50;not null" json:"estimated_time"`
	IsActive      bool        `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

type PickupLocation struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"size:150;not null" json:"title"`
	Address      string    `gorm:"type:text;not null" json:"address"`
	WorkingHours string    `gorm:"size:100;not null" json:"working_hours"`
	Phone        string    `gorm:"size:30" json:"phone"`
	Latitude     float64   `gorm:"not null" json:"latitude"`
	Longitude    float64   `gorm:"not null" json:"longitude"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	DisplayOrder int       `gorm:"default:0" json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
