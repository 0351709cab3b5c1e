package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/socialcoffee/coffee-api/ledger"
	"github.com/socialcoffee/coffee-api/models"
	"github.com/socialcoffee/coffee-api/payments"
	"github.com/socialcoffee/coffee-api/pricing"
)

var dbSeq int

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbSeq++
	dsn := fmt.Sprintf("file:reconcile%d?mode=memory&cache=shared", dbSeq)
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
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderItemOption{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type fixture struct {
	db    *gorm.DB
	gw    *payments.FakeGateway
	led   *ledger.Ledger
	coord *Coordinator
	user  models.User
	order *models.Order
}

func newFixture(t *testing.T, startBonus int) *fixture {
	t.Helper()
	db := newTestDB(t)

	user := models.User{
		FirstName:   "Aigerim",
		LastName:    "S",
		PhoneNumber: fmt.Sprintf("+7700%07d", dbSeq),
		BonusPoints: startBonus,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	product := models.Product{NameRus: "Раф", NameKaz: "Раф", BasePrice: 1090}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}

	gw := payments.NewFakeGateway()
	led := ledger.New(db, gw)
	order, err := led.Create(context.Background(), ledger.CreateOrderInput{
		UserID: &user.ID,
		Lines: []pricing.CartLine{{
			ProductID: product.ID,
			Quantity:  2,
			Options: []pricing.SelectedOption{
				{GroupName: "Молоко", Name: "Кокосовое", Price: 400},
				{GroupName: "Сироп", Name: "Ванильный", Price: 300},
			},
		}},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	return &fixture{db: db, gw: gw, led: led, coord: New(led, gw, nil), user: user, order: order}
}

func (f *fixture) bonusPoints(t *testing.T) int {
	t.Helper()
	var user models.User
	if err := f.db.First(&user, f.user.ID).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	return user.BonusPoints
}

func TestReconcile(t *testing.T) {
	t.Run("gateway pending -> order stays pending", func(t *testing.T) {
		f := newFixture(t, 100)

		viewed, err := f.coord.Reconcile(context.Background(), f.order.ID)
		if err != nil {
			t.Fatalf("reconcile: %v", err)
		}
		if viewed.Status != models.OrderPending {
			t.Errorf("status = %s, want pending", viewed.Status)
		}
		if f.gw.StatusCalls() != 1 {
			t.Errorf("status calls = %d, want 1", f.gw.StatusCalls())
		}
		if got := f.bonusPoints(t); got != 100 {
			t.Errorf("bonus points = %d, want 100", got)
		}
	})

	t.Run("gateway paid -> paid, bonus 100 -> 135", func(t *testing.T) {
		f := newFixture(t, 100)
		f.gw.SetState(payments.StatePaid)

		viewed, err := f.coord.Reconcile(context.Background(), f.order.ID)
		if err != nil {
			t.Fatalf("reconcile: %v", err)
		}
		if viewed.Status != models.OrderPaid {
			t.Errorf("status = %s, want paid", viewed.Status)
		}
		if viewed.PaymentURL != f.order.PaymentURL {
			t.Errorf("payment url = %q, want %q", viewed.PaymentURL, f.order.PaymentURL)
		}
		if got := f.bonusPoints(t); got != 135 {
			t.Errorf("bonus points = %d, want 135", got)
		}
	})

	t.Run("settled order short-circuits without a gateway call", func(t *testing.T) {
		f := newFixture(t, 100)
		f.gw.SetState(payments.StatePaid)
		if _, err := f.coord.Reconcile(context.Background(), f.order.ID); err != nil {
			t.Fatalf("first reconcile: %v", err)
		}
		callsAfterFirst := f.gw.StatusCalls()

		viewed, err := f.coord.Reconcile(context.Background(), f.order.ID)
		if err != nil {
			t.Fatalf("second reconcile: %v", err)
		}
		if viewed.Status != models.OrderPaid {
			t.Errorf("status = %s, want paid", viewed.Status)
		}
		if f.gw.StatusCalls() != callsAfterFirst {
			t.Errorf("gateway consulted again for a settled order")
		}
		if got := f.bonusPoints(t); got != 135 {
			t.Errorf("bonus points = %d, want 135 (double credit?)", got)
		}
	})

	t.Run("concurrent reconciliations credit exactly once", func(t *testing.T) {
		f := newFixture(t, 100)
		f.gw.SetState(payments.StatePaid)

		var wg sync.WaitGroup
		errs := make(chan error, 10)
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := f.coord.Reconcile(context.Background(), f.order.ID); err != nil {
					errs <- err
				}
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			t.Errorf("reconcile: %v", err)
		}

		if got := f.bonusPoints(t); got != 135 {
			t.Errorf("bonus points = %d, want 135 after concurrent reconciliations", got)
		}
		var order models.Order
		if err := f.db.First(&order, f.order.ID).Error; err != nil {
			t.Fatalf("load order: %v", err)
		}
		if order.Status != models.OrderPaid {
			t.Errorf("status = %s, want paid", order.Status)
		}
	})

	t.Run("order without token is left alone", func(t *testing.T) {
		f := newFixture(t, 0)
		if err := f.db.Model(&models.Order{}).Where("id = ?", f.order.ID).
			Update("payment_token", "").Error; err != nil {
			t.Fatalf("clear token: %v", err)
		}
		viewed, err := f.coord.Reconcile(context.Background(), f.order.ID)
		if err != nil {
			t.Fatalf("reconcile: %v", err)
		}
		if viewed.Status != models.OrderPending {
			t.Errorf("status = %s, want pending", viewed.Status)
		}
		if f.gw.StatusCalls() != 0 {
			t.Errorf("gateway consulted without a token")
		}
	})

	t.Run("unknown order -> ErrNotFound", func(t *testing.T) {
		f := newFixture(t, 0)
		if _, err := f.coord.Reconcile(context.Background(), 9999); !errors.Is(err, ledger.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

type recordingNotifier struct {
	mu     sync.Mutex
	orders []uint
}

func (n *recordingNotifier) OrderPaid(order models.Order) {
	n.mu.Lock()
	n.orders = append(n.orders, order.ID)
	n.mu.Unlock()
}

func TestReconcileNotifiesOnPaidTransition(t *testing.T) {
	f := newFixture(t, 0)
	notifier := &recordingNotifier{}
	coord := New(f.led, f.gw, notifier)

	// Pending result: no notification.
	if _, err := coord.Reconcile(context.Background(), f.order.ID); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	f.gw.SetState(payments.StatePaid)
	if _, err := coord.Reconcile(context.Background(), f.order.ID); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	// Settled: no second notification.
	if _, err := coord.Reconcile(context.Background(), f.order.ID); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	if len(notifier.orders) != 1 || notifier.orders[0] != f.order.ID {
		t.Fatalf("notifications = %v, want exactly one for order %d", notifier.orders, f.order.ID)
	}
}

func lockCount(c *Coordinator) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.locks)
}

func TestReconcileDropsLockOnceSettled(t *testing.T) {
	f := newFixture(t, 0)

	// A pending order keeps its lock entry between polls.
	if _, err := f.coord.Reconcile(context.Background(), f.order.ID); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if got := lockCount(f.coord); got != 1 {
		t.Fatalf("locks = %d, want 1 while pending", got)
	}

	f.gw.SetState(payments.StatePaid)
	if _, err := f.coord.Reconcile(context.Background(), f.order.ID); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if got := lockCount(f.coord); got != 0 {
		t.Fatalf("locks = %d, want 0 after the order settled", got)
	}

	// Polling an already-settled order must not leave an entry behind either.
	if _, err := f.coord.Reconcile(context.Background(), f.order.ID); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if got := lockCount(f.coord); got != 0 {
		t.Fatalf("locks = %d, want 0 after polling a settled order", got)
	}
}
