package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/chilin89117/shopfront/internal/adapter/http/middleware"
	"github.com/chilin89117/shopfront/internal/upload"
	"github.com/chilin89117/shopfront/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// AdminHandler owns the product-management area. Routes behind it
// require an admin session; ownership of individual products is
// enforced in the catalog service.
type AdminHandler struct {
	catalog *usecase.Catalog
	images  *upload.ImageStore
}

func NewAdminHandler(catalog *usecase.Catalog, images *upload.ImageStore) *AdminHandler {
	return &AdminHandler{catalog: catalog, images: images}
}

type fieldError struct {
	Param string `json:"param"`
	Msg   string `json:"msg"`
}

type productForm struct {
	title       string
	price       decimal.Decimal
	description string
	imagePath   string // empty when no file was sent
}

var (
	priceMin = decimal.RequireFromString("0.01")
	priceMax = decimal.RequireFromString("99999.99")
)

// parseProductForm validates the multipart form and stores the image
// when one is attached. Validation rules match the storefront's
// classic limits: title 2-255, price 0.01-99999.99, description 3-255.
func (h *AdminHandler) parseProductForm(c *gin.Context, requireImage bool) (productForm, []fieldError) {
	var form productForm
	var errs []fieldError

	form.title = c.PostForm("title")
	if n := len(form.title); n < 2 || n > 255 {
		errs = append(errs, fieldError{Param: "title", Msg: "Title must be 2 to 255 characters long"})
	}

	price, err := decimal.NewFromString(c.PostForm("price"))
	if err != nil || price.LessThan(priceMin) || price.GreaterThan(priceMax) {
		errs = append(errs, fieldError{Param: "price", Msg: "Price must be between 0.01 and 99999.99"})
	} else {
		form.price = price
	}

	form.description = c.PostForm("description")
	if n := len(form.description); n < 3 || n > 255 {
		errs = append(errs, fieldError{Param: "description", Msg: "Description must be 3 to 255 characters long"})
	}

	file, err := c.FormFile("image")
	if err != nil {
		if requireImage {
			errs = append(errs, fieldError{Param: "image", Msg: "Attached file is not an image"})
		}
		return form, errs
	}

	src, err := file.Open()
	if err != nil {
		errs = append(errs, fieldError{Param: "image", Msg: "Attached file is not an image"})
		return form, errs
	}
	defer src.Close()

	name, err := h.images.Save(file.Filename, file.Header.Get("Content-Type"), src)
	if err != nil {
		errs = append(errs, fieldError{Param: "image", Msg: "Attached file is not an image"})
		return form, errs
	}
	form.imagePath = name
	return form, errs
}

func (h *AdminHandler) AddProduct(c *gin.Context) {
	form, errs := h.parseProductForm(c, true)
	if len(errs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": errs})
		return
	}
	principal, _ := middleware.Principal(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	p, err := h.catalog.Add(ctx, principal, usecase.AddProductInput{
		Title:       form.title,
		Price:       form.price,
		Description: form.description,
		ImagePath:   form.imagePath,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toProductResp(*p))
}

func (h *AdminHandler) EditProduct(c *gin.Context) {
	form, errs := h.parseProductForm(c, false)
	if len(errs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": errs})
		return
	}
	principal, _ := middleware.Principal(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	p, err := h.catalog.Edit(ctx, principal, c.Param("id"), usecase.EditProductInput{
		Title:       form.title,
		Price:       form.price,
		Description: form.description,
		ImagePath:   form.imagePath,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResp(*p))
}

func (h *AdminHandler) DeleteProduct(c *gin.Context) {
	principal, _ := middleware.Principal(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.catalog.Delete(ctx, principal, c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) ListOwnProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	principal, _ := middleware.Principal(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	out, err := h.catalog.OwnerPage(ctx, principal, page)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toPageResp(out))
}
