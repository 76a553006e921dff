package http

import (
	"errors"
	"net/http"

	"github.com/chilin89117/shopfront/internal/entity"
	"github.com/chilin89117/shopfront/internal/upload"
	"github.com/chilin89117/shopfront/internal/usecase"
	"github.com/gin-gonic/gin"
)

// fail maps domain errors onto status codes; anything unmapped is a
// generic 500 recorded on the gin error list for the logger.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, entity.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	case errors.Is(err, entity.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, entity.ErrBadCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
	case errors.Is(err, entity.ErrDuplicateEmail):
		c.JSON(http.StatusConflict, gin.H{"error": "email_taken"})
	case errors.Is(err, entity.ErrEmptyCart):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "empty_cart"})
	case errors.Is(err, usecase.ErrPaymentDeclined):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "payment_declined"})
	case errors.Is(err, usecase.ErrBadResetToken):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "bad_reset_token"})
	case errors.Is(err, upload.ErrUnsupportedType):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "unsupported_image"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
	}
}

type productResp struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Price       string `json:"price"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
}

func toProductResp(p entity.Product) productResp {
	return productResp{
		ID:          p.ID,
		Title:       p.Title,
		Price:       p.Price.StringFixed(2),
		Description: p.Description,
		ImageURL:    "/uploads/" + p.ImagePath,
	}
}

type pageResp struct {
	Products    []productResp `json:"products"`
	CurrentPage int           `json:"currentPage"`
	LastPage    int           `json:"lastPage"`
	HasNextPage bool          `json:"hasNextPage"`
	HasPrevPage bool          `json:"hasPrevPage"`
}

func toPageResp(page entity.ProductPage) pageResp {
	out := pageResp{
		Products:    make([]productResp, 0, len(page.Products)),
		CurrentPage: page.CurrentPage,
		LastPage:    page.LastPage,
		HasNextPage: page.HasNextPage,
		HasPrevPage: page.HasPrevPage,
	}
	for _, p := range page.Products {
		out.Products = append(out.Products, toProductResp(p))
	}
	return out
}

type orderItemResp struct {
	Title string `json:"title"`
	Qty   int    `json:"qty"`
	Price string `json:"price"`
}

type orderResp struct {
	ID            string          `json:"id"`
	PaymentStatus string          `json:"paymentStatus"`
	Total         string          `json:"total"`
	CreatedAt     string          `json:"createdAt"`
	Items         []orderItemResp `json:"items"`
}

func toOrderResp(o entity.Order) orderResp {
	out := orderResp{
		ID:            o.ID,
		PaymentStatus: string(o.PaymentStatus),
		Total:         o.Total().StringFixed(2),
		CreatedAt:     o.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		Items:         make([]orderItemResp, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		out.Items = append(out.Items, orderItemResp{Title: it.Title, Qty: it.Qty, Price: it.UnitPrice.StringFixed(2)})
	}
	return out
}
