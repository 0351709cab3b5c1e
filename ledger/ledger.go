// Package ledger owns order rows and their status state machine. Nothing
// else in the codebase writes order status.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/socialcoffee/coffee-api/models"
	"github.com/socialcoffee/coffee-api/payments"
	"github.com/socialcoffee/coffee-api/pricing"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

type Ledger struct {
	db      *gorm.DB
	gateway payments.Gateway
}

func New(db *gorm.DB, gateway payments.Gateway) *Ledger {
	return &Ledger{db: db, gateway: gateway}
}

type DeliveryInfo struct {
	Type      string
	Address   string
	Apartment string
	Entrance  string
	Floor     string
	Latitude  *float64
	Longitude *float64
}

type CreateOrderInput struct {
	UserID   *uint
	Lines    []pricing.CartLine
	Delivery DeliveryInfo
}

// catalogSnapshot adapts a preloaded product set to the pricing engine.
type catalogSnapshot map[uint]models.Product

func (s catalogSnapshot) ProductByID(id uint) (models.Product, bool) {
	p, ok := s[id]
	return p, ok
}

// Create prices the cart, persists the order with its item and option
// snapshots, and stores the gateway invoice reference — all in a single
// transaction. If the gateway refuses the invoice the whole order rolls
// back and nothing is left visible.
func (l *Ledger) Create(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	snapshot, err := l.loadSnapshot(ctx, in.Lines)
	if err != nil {
		return nil, err
	}

	quote, err := pricing.Price(snapshot, in.Lines, in.UserID != nil)
	if err != nil {
		return nil, err
	}

	deliveryType := in.Delivery.Type
	if deliveryType == "" {
		deliveryType = "pickup"
	}

	order := models.Order{
		UserID:            in.UserID,
		TotalAmount:       quote.Total,
		BonusEarned:       quote.BonusEarned,
		Status:            models.OrderPending,
		DeliveryType:      deliveryType,
		DeliveryAddress:   in.Delivery.Address,
		DeliveryApartment: in.Delivery.Apartment,
		DeliveryEntrance:  in.Delivery.Entrance,
		DeliveryFloor:     in.Delivery.Floor,
		DeliveryLatitude:  in.Delivery.Latitude,
		DeliveryLongitude: in.Delivery.Longitude,
	}
	for _, line := range quote.Lines {
		productID := line.Product.ID
		item := models.OrderItem{
			ProductID:   &productID,
			ProductName: line.Product.NameRus,
			BasePrice:   line.Product.BasePrice,
			Quantity:    line.Quantity,
			TotalPrice:  line.LineTotal,
		}
		for _, opt := range line.Options {
			item.SelectedOptions = append(item.SelectedOptions, models.OrderItemOption{
				OptionGroupName: opt.GroupName,
				OptionName:      opt.Name,
				OptionPrice:     opt.Price,
			})
		}
		order.Items = append(order.Items, item)
	}

	err = l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		invoice, err := l.gateway.CreateInvoice(ctx, order.ID, order.TotalAmount)
		if err != nil {
			return err
		}

		order.PaymentToken = invoice.Token
		order.PaymentURL = invoice.PaymentURL
		return tx.Model(&models.Order{}).Where("id = ?", order.ID).
			Updates(map[string]interface{}{
				"payment_token": invoice.Token,
				"payment_url":   invoice.PaymentURL,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (l *Ledger) loadSnapshot(ctx context.Context, lines []pricing.CartLine) (catalogSnapshot, error) {
	ids := make([]uint, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}

	var products []models.Product
	if err := l.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}

	snapshot := make(catalogSnapshot, len(products))
	for _, p := range products {
		snapshot[p.ID] = p
	}
	return snapshot, nil
}

// Get loads an order with its item and option snapshots.
func (l *Ledger) Get(ctx context.Context, orderID uint) (*models.Order, error) {
	var order models.Order
	err := l.db.WithContext(ctx).
		Preload("Items.SelectedOptions").
		Preload("Items").
		First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// MarkPaid moves a pending order to paid and credits the owner's loyalty
// balance with the frozen bonus. The transition is a compare-and-swap on
// status inside one transaction: only the writer that flips pending -> paid
// credits the bonus, so concurrent reconciliation attempts credit at most
// once. Calling it on an order already paid or completed is a no-op.
func (l *Ledger) MarkPaid(ctx context.Context, orderID uint) (*models.Order, error) {
	var order models.Order
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		switch order.Status {
		case models.OrderPaid, models.OrderCompleted:
			return nil // already credited, nothing to do
		case models.OrderCancelled:
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, models.OrderPaid)
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, models.OrderPending).
			Update("status", models.OrderPaid)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Lost the race: someone else settled this order first.
			if err := tx.First(&order, orderID).Error; err != nil {
				return err
			}
			if order.Status == models.OrderPaid || order.Status == models.OrderCompleted {
				return nil
			}
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, models.OrderPaid)
		}
		order.Status = models.OrderPaid

		if order.UserID != nil && order.BonusEarned > 0 {
			if err := tx.Model(&models.User{}).Where("id = ?", *order.UserID).
				UpdateColumn("bonus_points", gorm.Expr("bonus_points + ?", order.BonusEarned)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Complete marks a paid order as fulfilled and stamps completed_at.
func (l *Ledger) Complete(ctx context.Context, orderID uint) (*models.Order, error) {
	return l.transition(ctx, orderID, models.OrderCompleted)
}

// Cancel abandons an order. Only pending orders can be cancelled; the row
// stays around, cancellation is a status, not a deletion.
func (l *Ledger) Cancel(ctx context.Context, orderID uint) (*models.Order, error) {
	return l.transition(ctx, orderID, models.OrderCancelled)
}

func (l *Ledger) transition(ctx context.Context, orderID uint, to models.OrderStatus) (*models.Order, error) {
	var order models.Order
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if !order.Status.CanTransition(to) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, to)
		}

		updates := map[string]interface{}{"status": to}
		var completedAt *time.Time
		if to == models.OrderCompleted {
			now := time.Now()
			completedAt = &now
			updates["completed_at"] = completedAt
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, order.Status).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: concurrent status change on order %d", ErrInvalidTransition, orderID)
		}
		order.Status = to
		order.CompletedAt = completedAt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}
