package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/plsp-store/backend/internal/auth"
	"github.com/plsp-store/backend/internal/catalog"
	"github.com/plsp-store/backend/internal/httpx"
	"github.com/plsp-store/backend/internal/order"
	"github.com/plsp-store/backend/internal/user"
)

type deps struct {
	issuer         *auth.Issuer
	adminTokenTTL  time.Duration
	mobileTokenTTL time.Duration
	users          user.Repository
	catalog        catalog.Repository
	orders         order.Repository
}

func newRouter(d deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/auth/login", loginHandler(d.users, d.issuer, d.adminTokenTTL))
	r.POST("/auth/mobile-login", mobileLoginHandler(d.users, d.issuer, d.mobileTokenTTL))

	r.GET("/categories", listCategoriesHandler(d.catalog))
	r.GET("/products", listProductsHandler(d.catalog))

	authed := r.Group("/", httpx.Auth(d.issuer))
	authed.GET("/auth/me", meHandler(d.users))
	authed.POST("/orders", createOrderHandler(d.orders, d.catalog))
	authed.GET("/orders", listMyOrdersHandler(d.orders))

	staff := r.Group("/", httpx.Auth(d.issuer), httpx.RequireStaff())
	staff.POST("/categories", createCategoryHandler(d.catalog))
	staff.PUT("/categories/:id", updateCategoryHandler(d.catalog))
	staff.GET("/products/admin", adminListProductsHandler(d.catalog))
	staff.POST("/products/admin", createProductHandler(d.catalog))
	staff.PUT("/products/admin/:id", updateProductHandler(d.catalog))
	staff.DELETE("/products/admin/:id", deleteProductHandler(d.catalog))
	staff.GET("/admin/orders", adminListOrdersHandler(d.orders))
	staff.GET("/admin/orders/:id", adminGetOrderHandler(d.orders))
	staff.PATCH("/admin/orders/:id/status", updateOrderStatusHandler(d.orders))

	return r
}
