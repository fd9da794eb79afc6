package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/plsp-store/backend/internal/catalog"
	"github.com/plsp-store/backend/internal/httpx"
	"github.com/plsp-store/backend/internal/order"
)

// CreateOrderRequest payload for POST /orders.
type CreateOrderRequest struct {
	Items          []order.CartEntry `json:"items"`
	PaymentMethod  string            `json:"paymentMethod"  example:"CASH_ON_PICKUP"`
	PickupLocation string            `json:"pickupLocation"`
	PickupSchedule string            `json:"pickupSchedule" example:"2025-03-10T09:00:00Z"`
}

func createOrderHandler(orders order.Repository, cat catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := httpx.Claims(c)
		if claims == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}

		var req CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request payload"})
			return
		}
		if len(req.Items) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Order items are required"})
			return
		}
		method := order.PaymentMethod(req.PaymentMethod)
		if !method.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid payment method"})
			return
		}

		var pickupSchedule *time.Time
		if req.PickupSchedule != "" {
			t, err := time.Parse(time.RFC3339, req.PickupSchedule)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid pickup schedule"})
				return
			}
			pickupSchedule = &t
		}

		// fetch each referenced product once, variants included
		seen := make(map[string]bool, len(req.Items))
		productIDs := make([]string, 0, len(req.Items))
		for _, it := range req.Items {
			if !seen[it.ProductID] {
				seen[it.ProductID] = true
				productIDs = append(productIDs, it.ProductID)
			}
		}
		products, err := cat.GetProductsByIDs(c.Request.Context(), productIDs)
		if err != nil {
			log.Error().Err(err).Msg("create order: product lookup failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return
		}

		items, total, err := order.PriceCart(req.Items, products)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": userMessage(err)})
			return
		}

		o := order.Order{
			ID:            uuid.NewString(),
			UserID:        claims.UserID,
			Status:        order.StatusPendingPayment,
			PaymentMethod: method,
			PaymentStatus: order.InitialPaymentStatus(method),
			TotalAmount:   total,
		}
		if req.PickupLocation != "" {
			o.PickupLocation = &req.PickupLocation
		}
		o.PickupSchedule = pickupSchedule
		for i := range items {
			items[i].ID = uuid.NewString()
			items[i].OrderID = o.ID
		}

		if err := orders.Create(c.Request.Context(), &o, items); err != nil {
			log.Error().Err(err).Str("order_id", o.ID).Msg("create order: persist failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return
		}

		o.Items = items
		o.Payment = nil
		c.JSON(http.StatusCreated, o)
	}
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, order.ErrEmptyCart):
		return "Order items are required"
	case errors.Is(err, order.ErrInvalidPaymentMethod):
		return "Invalid payment method"
	case errors.Is(err, order.ErrInvalidQuantity):
		return "Quantity must be a positive integer"
	case errors.Is(err, order.ErrUnknownProduct):
		return "One or more products not found"
	default:
		return "Invalid request"
	}
}

func listMyOrdersHandler(orders order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := httpx.Claims(c)
		if claims == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		out, err := orders.ListByUser(c.Request.Context(), claims.UserID)
		if err != nil {
			log.Error().Err(err).Msg("list own orders failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return
		}
		if out == nil {
			out = []order.Order{}
		}
		c.JSON(http.StatusOK, out)
	}
}

func parseOrderFilter(c *gin.Context) (order.Filter, bool) {
	var f order.Filter

	if s := c.Query("status"); s != "" {
		if !order.Status(s).Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid status value"})
			return f, false
		}
		f.Status = s
	}
	if m := c.Query("paymentMethod"); m != "" {
		if !order.PaymentMethod(m).Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid payment method"})
			return f, false
		}
		f.PaymentMethod = m
	}
	f.Search = c.Query("search")

	if s := c.Query("startDate"); s != "" {
		t, err := order.ParseStartBound(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid start date"})
			return f, false
		}
		f.Start = &t
	}
	if s := c.Query("endDate"); s != "" {
		t, exclusive, err := order.ParseEndBound(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid end date"})
			return f, false
		}
		f.End = &t
		f.EndExclusive = exclusive
	}

	f.Page, _ = strconv.Atoi(c.Query("page"))
	f.PerPage, _ = strconv.Atoi(c.Query("perPage"))
	f.Normalize()
	return f, true
}

func adminListOrdersHandler(orders order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		f, ok := parseOrderFilter(c)
		if !ok {
			return
		}

		if c.Query("export") == "csv" {
			// export ignores pagination and caps the row count
			f.Page = 1
			f.PerPage = order.ExportMaxRows
			out, _, err := orders.List(c.Request.Context(), f)
			if err != nil {
				log.Error().Err(err).Msg("order export failed")
				c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
				return
			}
			c.Header("Content-Type", "text/csv")
			c.Header("Content-Disposition", `attachment; filename="orders.csv"`)
			c.Status(http.StatusOK)
			if err := order.WriteCSV(c.Writer, out); err != nil {
				log.Error().Err(err).Msg("order export write failed")
			}
			return
		}

		out, total, err := orders.List(c.Request.Context(), f)
		if err != nil {
			log.Error().Err(err).Msg("admin list orders failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return
		}
		if out == nil {
			out = []order.Order{}
		}
		c.JSON(http.StatusOK, gin.H{
			"items":   out,
			"total":   total,
			"page":    f.Page,
			"perPage": f.PerPage,
		})
	}
}

func adminGetOrderHandler(orders order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := orders.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, order.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": "Order not found"})
				return
			}
			log.Error().Err(err).Msg("get order failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// UpdateOrderStatusRequest payload for PATCH /admin/orders/:id/status.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" example:"READY_FOR_PICKUP"`
}

func updateOrderStatusHandler(orders order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request payload"})
			return
		}
		status := order.Status(req.Status)
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid status value"})
			return
		}

		id := c.Param("id")
		if err := orders.UpdateStatus(c.Request.Context(), id, status); err != nil {
			if errors.Is(err, order.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": "Order not found"})
				return
			}
			log.Error().Err(err).Str("order_id", id).Msg("update order status failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id, "status": status})
	}
}
