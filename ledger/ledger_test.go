package ledger

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/socialcoffee/coffee-api/models"
	"github.com/socialcoffee/coffee-api/payments"
	"github.com/socialcoffee/coffee-api/pricing"
)

var dbSeq int

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbSeq++
	dsn := fmt.Sprintf("file:ledger%d?mode=memory&cache=shared", dbSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.OptionGroup{},
		&models.Option{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderItemOption{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedCatalog(t *testing.T, db *gorm.DB) models.Product {
	t.Helper()
	product := models.Product{NameRus: "Раф", NameKaz: "Раф", BasePrice: 1090, Status: models.ProductActive}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func seedUser(t *testing.T, db *gorm.DB, bonus int) models.User {
	t.Helper()
	user := models.User{
		FirstName:   "Aigerim",
		LastName:    "S",
		PhoneNumber: fmt.Sprintf("+7777%07d", dbSeq),
		BonusPoints: bonus,
		Role:        models.RoleClient,
		IsActive:    true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func cartFor(product models.Product) []pricing.CartLine {
	return []pricing.CartLine{{
		ProductID: product.ID,
		Quantity:  2,
		Options: []pricing.SelectedOption{
			{GroupName: "Молоко", Name: "Кокосовое", Price: 400},
			{GroupName: "Сироп", Name: "Ванильный", Price: 300},
		},
	}}
}

func TestCreateOrder(t *testing.T) {
	t.Run("persists frozen snapshot and invoice reference", func(t *testing.T) {
		db := newTestDB(t)
		product := seedCatalog(t, db)
		user := seedUser(t, db, 0)
		l := New(db, payments.NewFakeGateway())

		order, err := l.Create(context.Background(), CreateOrderInput{
			UserID: &user.ID,
			Lines:  cartFor(product),
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if order.TotalAmount != 3580 {
			t.Errorf("total = %v, want 3580", order.TotalAmount)
		}
		if order.BonusEarned != 35 {
			t.Errorf("bonus earned = %d, want 35", order.BonusEarned)
		}
		if order.Status != models.OrderPending {
			t.Errorf("status = %s, want pending", order.Status)
		}
		if order.PaymentToken == "" || order.PaymentURL == "" {
			t.Errorf("missing invoice reference: %+v", order)
		}

		// Editing the product later must not alter the stored order.
		if err := db.Model(&models.Product{}).Where("id = ?", product.ID).
			Update("base_price", 9999).Error; err != nil {
			t.Fatalf("update price: %v", err)
		}
		stored, err := l.Get(context.Background(), order.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if stored.TotalAmount != 3580 {
			t.Errorf("total recomputed to %v after catalog edit", stored.TotalAmount)
		}
		if len(stored.Items) != 1 || stored.Items[0].BasePrice != 1090 {
			t.Errorf("item snapshot changed: %+v", stored.Items)
		}
		if len(stored.Items[0].SelectedOptions) != 2 {
			t.Errorf("option snapshots = %+v", stored.Items[0].SelectedOptions)
		}
	})

	t.Run("unknown product -> nothing persisted, no invoice", func(t *testing.T) {
		db := newTestDB(t)
		gw := payments.NewFakeGateway()
		l := New(db, gw)

		_, err := l.Create(context.Background(), CreateOrderInput{
			Lines: []pricing.CartLine{{ProductID: 42, Quantity: 1}},
		})
		var unknown *pricing.UnknownProductError
		if !errors.As(err, &unknown) {
			t.Fatalf("expected UnknownProductError, got %v", err)
		}
		if gw.CreateCalls() != 0 {
			t.Errorf("gateway called %d times for invalid cart", gw.CreateCalls())
		}
		var count int64
		db.Model(&models.Order{}).Count(&count)
		if count != 0 {
			t.Errorf("%d order rows persisted", count)
		}
	})

	t.Run("gateway failure -> full rollback", func(t *testing.T) {
		db := newTestDB(t)
		product := seedCatalog(t, db)
		gw := payments.NewFakeGateway()
		gw.CreateErr = payments.ErrGatewayUnavailable
		l := New(db, gw)

		_, err := l.Create(context.Background(), CreateOrderInput{Lines: cartFor(product)})
		if !errors.Is(err, payments.ErrGatewayUnavailable) {
			t.Fatalf("expected ErrGatewayUnavailable, got %v", err)
		}
		var orders, items, options int64
		db.Model(&models.Order{}).Count(&orders)
		db.Model(&models.OrderItem{}).Count(&items)
		db.Model(&models.OrderItemOption{}).Count(&options)
		if orders != 0 || items != 0 || options != 0 {
			t.Errorf("partial order left behind: %d orders, %d items, %d options", orders, items, options)
		}
	})

	t.Run("unauthenticated order earns no bonus", func(t *testing.T) {
		db := newTestDB(t)
		product := seedCatalog(t, db)
		l := New(db, payments.NewFakeGateway())

		order, err := l.Create(context.Background(), CreateOrderInput{Lines: cartFor(product)})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if order.BonusEarned != 0 {
			t.Errorf("bonus earned = %d, want 0", order.BonusEarned)
		}
	})
}

func TestMarkPaid(t *testing.T) {
	t.Run("credits the frozen bonus exactly once", func(t *testing.T) {
		db := newTestDB(t)
		product := seedCatalog(t, db)
		user := seedUser(t, db, 100)
		l := New(db, payments.NewFakeGateway())

		order, err := l.Create(context.Background(), CreateOrderInput{
			UserID: &user.ID,
			Lines:  cartFor(product),
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}

		paid, err := l.MarkPaid(context.Background(), order.ID)
		if err != nil {
			t.Fatalf("mark paid: %v", err)
		}
		if paid.Status != models.OrderPaid {
			t.Errorf("status = %s, want paid", paid.Status)
		}

		// Second call is a no-op, not a second credit.
		if _, err := l.MarkPaid(context.Background(), order.ID); err != nil {
			t.Fatalf("repeat mark paid: %v", err)
		}

		var stored models.User
		if err := db.First(&stored, user.ID).Error; err != nil {
			t.Fatalf("load user: %v", err)
		}
		if stored.BonusPoints != 135 {
			t.Errorf("bonus points = %d, want 135", stored.BonusPoints)
		}
	})

	t.Run("cancelled order cannot become paid", func(t *testing.T) {
		db := newTestDB(t)
		product := seedCatalog(t, db)
		l := New(db, payments.NewFakeGateway())

		order, err := l.Create(context.Background(), CreateOrderInput{Lines: cartFor(product)})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if _, err := l.Cancel(context.Background(), order.ID); err != nil {
			t.Fatalf("cancel: %v", err)
		}
		if _, err := l.MarkPaid(context.Background(), order.ID); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
	})

	t.Run("missing order -> ErrNotFound", func(t *testing.T) {
		db := newTestDB(t)
		l := New(db, payments.NewFakeGateway())
		if _, err := l.MarkPaid(context.Background(), 404); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestCompleteAndCancel(t *testing.T) {
	db := newTestDB(t)
	product := seedCatalog(t, db)
	l := New(db, payments.NewFakeGateway())

	newOrder := func(t *testing.T) *models.Order {
		order, err := l.Create(context.Background(), CreateOrderInput{Lines: cartFor(product)})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		return order
	}

	t.Run("pending cannot be completed", func(t *testing.T) {
		order := newOrder(t)
		if _, err := l.Complete(context.Background(), order.ID); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
	})

	t.Run("paid -> completed stamps completed_at", func(t *testing.T) {
		order := newOrder(t)
		if _, err := l.MarkPaid(context.Background(), order.ID); err != nil {
			t.Fatalf("mark paid: %v", err)
		}
		done, err := l.Complete(context.Background(), order.ID)
		if err != nil {
			t.Fatalf("complete: %v", err)
		}
		if done.Status != models.OrderCompleted || done.CompletedAt == nil {
			t.Errorf("completed order = status %s, completed_at %v", done.Status, done.CompletedAt)
		}
	})

	t.Run("cancel is only reachable from pending", func(t *testing.T) {
		order := newOrder(t)
		if _, err := l.Cancel(context.Background(), order.ID); err != nil {
			t.Fatalf("cancel pending: %v", err)
		}
		if _, err := l.Cancel(context.Background(), order.ID); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition on double cancel, got %v", err)
		}

		paidOrder := newOrder(t)
		if _, err := l.MarkPaid(context.Background(), paidOrder.ID); err != nil {
			t.Fatalf("mark paid: %v", err)
		}
		if _, err := l.Cancel(context.Background(), paidOrder.ID); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition cancelling paid order, got %v", err)
		}

		doneOrder := newOrder(t)
		l.MarkPaid(context.Background(), doneOrder.ID)
		l.Complete(context.Background(), doneOrder.ID)
		if _, err := l.Cancel(context.Background(), doneOrder.ID); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition cancelling completed order, got %v", err)
		}
	})
}
