package http

import (
	"github.com/chilin89117/shopfront/internal/adapter/http/middleware"
	"github.com/chilin89117/shopfront/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(sh *ShopHandler, ah *AuthHandler, adm *AdminHandler, auth *middleware.SessionAuth, uploadsDir string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.MetricsMiddleware())

	l := logging.New("http")
	r.Use(middleware.Logging(l))
	r.Use(auth.Resolve())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	// Prometheus endpoint (scraped by Prometheus)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Static("/uploads", uploadsDir)

	r.POST("/signup", ah.Signup)
	r.POST("/login", ah.Login)
	r.POST("/logout", ah.Logout)
	r.POST("/reset", ah.RequestReset)
	r.POST("/reset/confirm", ah.ConfirmReset)

	r.GET("/products", sh.ListProducts)
	r.GET("/products/:id", sh.GetProduct)

	authed := r.Group("/", auth.Require())
	{
		authed.GET("/cart", sh.GetCart)
		authed.POST("/cart/items", sh.AddToCart)
		authed.DELETE("/cart/items", sh.DeleteCartItem)
		authed.POST("/checkout", sh.Checkout)
		authed.GET("/orders", sh.ListOrders)
		authed.GET("/orders/:id/invoice", sh.GetInvoice)
	}

	admin := r.Group("/admin", auth.RequireAdmin())
	{
		admin.GET("/products", adm.ListOwnProducts)
		admin.POST("/products", adm.AddProduct)
		admin.PUT("/products/:id", adm.EditProduct)
		admin.DELETE("/products/:id", adm.DeleteProduct)
	}

	return r
}
