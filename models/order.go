package models

import (
	"errors"
	"strings"
	"time"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"   // created, awaiting payment
	OrderPaid      OrderStatus = "paid"      // payment confirmed by the gateway
	OrderCompleted OrderStatus = "completed" // fulfilled by staff
	OrderCancelled OrderStatus = "cancelled" // abandoned before payment
)

// ParseOrderStatus maps a raw string onto the closed status enum.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(strings.ToLower(s)) {
	case OrderPending:
		return OrderPending, nil
	case OrderPaid:
		return OrderPaid, nil
	case OrderCompleted:
		return OrderCompleted, nil
	case OrderCancelled:
		return OrderCancelled, nil
	default:
		return "", errors.New("invalid order status")
	}
}

// CanTransition reports whether the state machine allows moving from s to.
// pending -> paid | cancelled, paid -> completed; everything else is frozen.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	switch s {
	case OrderPending:
		return to == OrderPaid || to == OrderCancelled
	case OrderPaid:
		return to == OrderCompleted
	default:
		return false
	}
}

// Settled reports that payment reconciliation is over for this status:
// no further gateway checks and no bonus crediting may happen.
func (s OrderStatus) Settled() bool {
	return s != OrderPending
}

type Order struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	UserID      *uint       `gorm:"index" json:"user_id"`
	User        *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	TotalAmount float64     `gorm:"not null" json:"total_amount"`
	BonusEarned int         `gorm:"default:0" json:"bonus_earned"`
	Status      OrderStatus `gorm:"type:VARCHAR(20);default:'pending'" json:"status"`

	// Issued by the payment gateway once the invoice is created.
	PaymentToken string `gorm:"size:255" json:"payment_token"`
	PaymentURL   string `gorm:"size:500" json:"payment_url"`

	DeliveryType      string   `gorm:"size:50;default:'pickup'" json:"delivery_type"`
	DeliveryAddress   string   `gorm:"type:text" json:"delivery_address"`
	DeliveryApartment string   `gorm:"size:20" json:"delivery_apartment"`
	DeliveryEntrance  string   `gorm:"size:20" json:"delivery_entrance"`
	DeliveryFloor     string   `gorm:"size:20" json:"delivery_floor"`
	DeliveryLatitude  *float64 `json:"delivery_latitude"`
	DeliveryLongitude *float64 `json:"delivery_longitude"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// OrderItem is a frozen snapshot of the product at order time. The snapshot
// fields stay authoritative even if the product is later edited or deleted.
type OrderItem struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	OrderID     uint    `gorm:"index" json:"order_id"`
	ProductID   *uint   `json:"product_id"`
	ProductName string  `gorm:"size:100;not null" json:"product_name"`
	BasePrice   float64 `gorm:"not null" json:"base_price"`
	Quantity    int     `gorm:"default:1" json:"quantity"`
	TotalPrice  float64 `gorm:"not null" json:"total_price"`

	SelectedOptions []OrderItemOption `gorm:"foreignKey:OrderItemID;constraint:OnDelete:CASCADE" json:"selected_options,omitempty"`
}

// OrderItemOption snapshots one selected option by value.
type OrderItemOption struct {
	ID              uint    `gorm:"primaryKey" json:"id"`
	OrderItemID     uint    `gorm:"index" json:"order_item_id"`
	OptionGroupName string  `gorm:"size:100;not null" json:"option_group_name"`
	OptionName      string  `gorm:"size:100;not null" json:"option_name"`
	OptionPrice     float64 `gorm:"default:0" json:"option_price"`
}
