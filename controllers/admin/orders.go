package adminControllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"

	"github.com/socialcoffee/coffee-api/ledger"
	"github.com/socialcoffee/coffee-api/models"
)

// DashboardHandler returns sales totals and order counts for today and the
// current month plus the number of paid-but-unfulfilled orders. Only paid
// and completed orders count as sales; pending and cancelled ones are noise.
func DashboardHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now()
		startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		settled := []models.OrderStatus{models.OrderPaid, models.OrderCompleted}

		var todaySales, monthlySales float64
		var ordersToday, ordersMonth, activeOrders int64
		if err := db.Model(&models.Order{}).
			Where("created_at >= ? AND status IN ?", startOfDay, settled).
			Select("COALESCE(SUM(total_amount), 0)").
			Scan(&todaySales).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
			return
		}
		if err := db.Model(&models.Order{}).
			Where("created_at >= ? AND status IN ?", startOfMonth, settled).
			Select("COALESCE(SUM(total_amount), 0)").
			Scan(&monthlySales).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
			return
		}
		if err := db.Model(&models.Order{}).
			Where("created_at >= ? AND status IN ?", startOfDay, settled).
			Count(&ordersToday).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
			return
		}
		if err := db.Model(&models.Order{}).
			Where("created_at >= ? AND status IN ?", startOfMonth, settled).
			Count(&ordersMonth).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
			return
		}
		if err := db.Model(&models.Order{}).
			Where("status = ?", models.OrderPaid).
			Count(&activeOrders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"today_sales":        todaySales,
			"monthly_sales":      monthlySales,
			"total_orders_today": ordersToday,
			"total_orders_month": ordersMonth,
			"active_orders":      activeOrders,
		})
	}
}

// ActiveOrdersHandler lists paid orders awaiting fulfillment.
func ActiveOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var orders []models.Order
		if err := db.
			Where("status = ?", models.OrderPaid).
			Preload("User").
			Preload("Items.SelectedOptions").
			Preload("Items").
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load active orders"})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// ClosedOrdersHandler lists completed and cancelled orders, newest first.
// An optional ?status= query narrows the list to one of the two.
func ClosedOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 50
		if raw := c.Query("limit"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 500 {
				limit = parsed
			}
		}

		statuses := []models.OrderStatus{models.OrderCompleted, models.OrderCancelled}
		if raw := c.Query("status"); raw != "" {
			parsed, err := models.ParseOrderStatus(raw)
			if err != nil || (parsed != models.OrderCompleted && parsed != models.OrderCancelled) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
				return
			}
			statuses = []models.OrderStatus{parsed}
		}

		var orders []models.Order
		if err := db.
			Where("status IN ?", statuses).
			Preload("User").
			Preload("Items.SelectedOptions").
			Preload("Items").
			Order("created_at DESC").
			Limit(limit).
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load closed orders"})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// CompleteOrderHandler marks a paid order as fulfilled.
func CompleteOrderHandler(l *ledger.Ledger) gin.HandlerFunc {
	return orderTransitionHandler(l.Complete, "Order completed successfully")
}

// CancelOrderHandler abandons a pending order. Paid orders cannot be
// cancelled here; there is deliberately no such path.
func CancelOrderHandler(l *ledger.Ledger) gin.HandlerFunc {
	return orderTransitionHandler(l.Cancel, "Order cancelled successfully")
}

func orderTransitionHandler(apply func(ctx context.Context, orderID uint) (*models.Order, error), message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := strconv.ParseUint(c.Param("orderID"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
			return
		}
		if _, err := apply(c.Request.Context(), uint(orderID)); err != nil {
			switch {
			case errors.Is(err, ledger.ErrNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			case errors.Is(err, ledger.ErrInvalidTransition):
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
			}
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": message})
	}
}

// ExportOrdersHandler streams all orders as an Excel workbook.
func ExportOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var orders []models.Order
		if err := db.Preload("User").Preload("Items").
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}

		file := xlsx.NewFile()
		sheet, err := file.AddSheet("Orders")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel sheet"})
			return
		}

		headers := []string{
			"ID", "User", "Status", "TotalAmount", "BonusEarned",
			"DeliveryType", "Items", "CreatedAt", "CompletedAt",
		}
		headerRow := sheet.AddRow()
		for _, h := range headers {
			headerRow.AddCell().SetValue(h)
		}

		for _, order := range orders {
			row := sheet.AddRow()
			row.AddCell().SetValue(order.ID)
			if order.User != nil {
				row.AddCell().SetValue(order.User.PhoneNumber)
			} else {
				row.AddCell().SetValue("guest")
			}
			row.AddCell().SetValue(string(order.Status))
			row.AddCell().SetValue(order.TotalAmount)
			row.AddCell().SetValue(order.BonusEarned)
			row.AddCell().SetValue(order.DeliveryType)
			row.AddCell().SetValue(len(order.Items))
			row.AddCell().SetValue(order.CreatedAt.Format("2006-01-02 15:04:05"))
			if order.CompletedAt != nil {
				row.AddCell().SetValue(order.CompletedAt.Format("2006-01-02 15:04:05"))
			} else {
				row.AddCell().SetValue("")
			}
		}

		c.Header("Content-Disposition", "attachment; filename=orders.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")

		if err := file.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file"})
			return
		}
	}
}
