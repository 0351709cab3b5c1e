package orderControllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/socialcoffee/coffee-api/ledger"
	"github.com/socialcoffee/coffee-api/metrics"
	"github.com/socialcoffee/coffee-api/middleware"
	"github.com/socialcoffee/coffee-api/models"
	"github.com/socialcoffee/coffee-api/payments"
	"github.com/socialcoffee/coffee-api/pricing"
	"github.com/socialcoffee/coffee-api/reconcile"
)

// -------- Request Structs --------

type SelectedOptionRequest struct {
	OptionGroupName string  `json:"option_group_name" binding:"required"`
	OptionName      string  `json:"option_name" binding:"required"`
	OptionPrice     float64 `json:"option_price"`
}

type OrderItemRequest struct {
	ProductID       uint                    `json:"product_id" binding:"required"`
	Quantity        int                     `json:"quantity" binding:"required,gt=0"`
	SelectedOptions []SelectedOptionRequest `json:"selected_options" binding:"dive"`
}

type CreateOrderRequest struct {
	Items             []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	DeliveryType      string             `json:"delivery_type"`
	DeliveryAddress   string             `json:"delivery_address"`
	DeliveryApartment string             `json:"delivery_apartment"`
	DeliveryEntrance  string             `json:"delivery_entrance"`
	DeliveryFloor     string             `json:"delivery_floor"`
	DeliveryLatitude  *float64           `json:"delivery_latitude"`
	DeliveryLongitude *float64           `json:"delivery_longitude"`
}

// -------- Handlers --------

// CreateOrderHandler submits a cart, persists the order and returns the
// Kaspi payment reference. Anonymous checkout is allowed; an attributed
// order additionally accrues loyalty bonus once it is paid.
func CreateOrderHandler(l *ledger.Ledger, hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		lines := make([]pricing.CartLine, 0, len(req.Items))
		for _, item := range req.Items {
			line := pricing.CartLine{ProductID: item.ProductID, Quantity: item.Quantity}
			for _, opt := range item.SelectedOptions {
				line.Options = append(line.Options, pricing.SelectedOption{
					GroupName: opt.OptionGroupName,
					Name:      opt.OptionName,
					Price:     opt.OptionPrice,
				})
			}
			lines = append(lines, line)
		}

		order, err := l.Create(c.Request.Context(), ledger.CreateOrderInput{
			UserID: middleware.UserID(c),
			Lines:  lines,
			Delivery: ledger.DeliveryInfo{
				Type:      req.DeliveryType,
				Address:   req.DeliveryAddress,
				Apartment: req.DeliveryApartment,
				Entrance:  req.DeliveryEntrance,
				Floor:     req.DeliveryFloor,
				Latitude:  req.DeliveryLatitude,
				Longitude: req.DeliveryLongitude,
			},
		})
		if err != nil {
			var unknown *pricing.UnknownProductError
			switch {
			case errors.As(err, &unknown):
				c.JSON(http.StatusNotFound, gin.H{"error": unknown.Error()})
			case errors.Is(err, payments.ErrGatewayUnavailable):
				c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to create payment"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
			}
			return
		}

		metrics.OrdersCreated.Inc()
		hub.OrderCreated(*order)

		c.JSON(http.StatusOK, gin.H{
			"order_id":     order.ID,
			"payment_url":  order.PaymentURL,
			"qr_token":     order.PaymentToken,
			"total_amount": order.TotalAmount,
		})
	}
}

// OrderStatusHandler reports the order's payment status, reconciling it
// with the gateway first when it is still pending. Gateway trouble during
// the check is absorbed: the caller just sees pending again.
func OrderStatusHandler(coordinator *reconcile.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := strconv.ParseUint(c.Param("orderID"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
			return
		}

		view, err := coordinator.Reconcile(c.Request.Context(), uint(orderID))
		if err != nil {
			if errors.Is(err, ledger.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check order status"})
			return
		}

		metrics.Reconciliations.WithLabelValues(string(view.Status)).Inc()
		c.JSON(http.StatusOK, view)
	}
}

// GetOrderHandler returns the full order with item and option snapshots.
// Restricted to the owning user or the admin key.
func GetOrderHandler(db *gorm.DB, l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := strconv.ParseUint(c.Param("orderID"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
			return
		}

		order, err := l.Get(c.Request.Context(), uint(orderID))
		if err != nil {
			if errors.Is(err, ledger.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load order"})
			return
		}

		if !middleware.IsAdminRequest(c) {
			userID := middleware.UserID(c)
			if userID == nil || order.UserID == nil || *order.UserID != *userID {
				if !isAdminUser(db, userID) {
					c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
					return
				}
			}
		}

		c.JSON(http.StatusOK, order)
	}
}

func isAdminUser(db *gorm.DB, userID *uint) bool {
	if userID == nil {
		return false
	}
	var user models.User
	if err := db.First(&user, *userID).Error; err != nil {
		return false
	}
	return user.Role == models.RoleAdmin
}
