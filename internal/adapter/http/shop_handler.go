package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/chilin89117/shopfront/internal/adapter/http/middleware"
	"github.com/chilin89117/shopfront/internal/invoice"
	"github.com/chilin89117/shopfront/internal/logging"
	"github.com/chilin89117/shopfront/internal/usecase"
	"github.com/gin-gonic/gin"
)

type ShopHandler struct {
	catalog  *usecase.Catalog
	cart     *usecase.Cart
	checkout *usecase.Checkout
	orders   *usecase.Orders
	invoices *invoice.Materializer
}

func NewShopHandler(catalog *usecase.Catalog, cart *usecase.Cart, checkout *usecase.Checkout, orders *usecase.Orders, invoices *invoice.Materializer) *ShopHandler {
	return &ShopHandler{catalog: catalog, cart: cart, checkout: checkout, orders: orders, invoices: invoices}
}

func (h *ShopHandler) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	out, err := h.catalog.Page(ctx, page)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toPageResp(out))
}

func (h *ShopHandler) GetProduct(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	p, err := h.catalog.Get(ctx, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResp(*p))
}

func (h *ShopHandler) GetCart(c *gin.Context) {
	principal, _ := middleware.Principal(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	cart, err := h.cart.View(ctx, principal)
	if err != nil {
		fail(c, err)
		return
	}

	items := make([]gin.H, 0, len(cart.Items))
	for _, it := range cart.Items {
		items = append(items, gin.H{
			"productId": it.ProductID,
			"title":     it.Title,
			"price":     it.Price.StringFixed(2),
			"qty":       it.Qty,
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "subtotal": cart.Subtotal().StringFixed(2)})
}

type addToCartReq struct {
	ProductID string `json:"productId" binding:"required"`
}

func (h *ShopHandler) AddToCart(c *gin.Context) {
	var req addToCartReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "bad_request"})
		return
	}
	principal, _ := middleware.Principal(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.cart.Add(ctx, principal, req.ProductID); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type delCartItemReq struct {
	ProductID string `json:"productId" binding:"required"`
	Qty       int    `json:"qty"`
}

func (h *ShopHandler) DeleteCartItem(c *gin.Context) {
	var req delCartItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "bad_request"})
		return
	}
	principal, _ := middleware.Principal(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.cart.Remove(ctx, principal, req.ProductID, req.Qty); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type checkoutReq struct {
	PaymentToken string `json:"paymentToken" binding:"required"`
}

func (h *ShopHandler) Checkout(c *gin.Context) {
	var req checkoutReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "bad_request"})
		return
	}
	principal, _ := middleware.Principal(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	out, err := h.checkout.Execute(ctx, principal, req.PaymentToken)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"orderId":       out.OrderID,
		"total":         out.Total,
		"paymentStatus": out.PaymentStatus,
	})
}

func (h *ShopHandler) ListOrders(c *gin.Context) {
	principal, _ := middleware.Principal(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	orders, err := h.orders.ListForUser(ctx, principal)
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]orderResp, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResp(o))
	}
	c.JSON(http.StatusOK, gin.H{"orders": out})
}

// GetInvoice streams the order's PDF invoice. Ownership is enforced
// here; the materializer is never reached for someone else's order.
func (h *ShopHandler) GetInvoice(c *gin.Context) {
	principal, _ := middleware.Principal(c)
	ctx := c.Request.Context()

	order, err := h.orders.GetOwned(ctx, principal, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", `inline; filename="`+invoice.Key(order.ID)+`"`)

	if err := h.invoices.Obtain(ctx, order, c.Writer); err != nil {
		_ = c.Error(err)
		if !c.Writer.Written() {
			// nothing streamed yet; the client can still get a clean failure
			c.Header("Content-Type", "application/json")
			c.Header("Content-Disposition", "")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "invoice_failed"})
			return
		}
		logging.From(c).Error("invoice stream aborted", "err", err, "order_id", order.ID)
		c.Abort()
	}
}
