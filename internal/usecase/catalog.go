package usecase

import (
	"context"
	"time"

	"github.com/chilin89117/shopfront/internal/entity"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Catalog struct {
	products      ProductRepo
	carts         CartRepo
	pageSize      int
	adminPageSize int
}

func NewCatalog(products ProductRepo, carts CartRepo, pageSize, adminPageSize int) *Catalog {
	return &Catalog{products: products, carts: carts, pageSize: pageSize, adminPageSize: adminPageSize}
}

// Page returns one page of the public catalog, newest first, excluding
// soft-deleted products.
func (c *Catalog) Page(ctx context.Context, page int) (entity.ProductPage, error) {
	if page < 1 {
		page = 1
	}
	total, err := c.products.Count(ctx)
	if err != nil {
		return entity.ProductPage{}, err
	}
	prods, err := c.products.List(ctx, (page-1)*c.pageSize, c.pageSize)
	if err != nil {
		return entity.ProductPage{}, err
	}
	return paginate(prods, page, c.pageSize, total), nil
}

func (c *Catalog) Get(ctx context.Context, id string) (*entity.Product, error) {
	p, err := c.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Deleted {
		return nil, entity.ErrNotFound
	}
	return p, nil
}

type AddProductInput struct {
	Title       string
	Price       decimal.Decimal
	Description string
	ImagePath   string
}

func (c *Catalog) Add(ctx context.Context, owner entity.Principal, in AddProductInput) (*entity.Product, error) {
	p := &entity.Product{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Price:       in.Price,
		Description: in.Description,
		ImagePath:   in.ImagePath,
		OwnerID:     owner.ID,
		CreatedAt:   time.Now(),
	}
	if err := c.products.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

type EditProductInput struct {
	Title       string
	Price       decimal.Decimal
	Description string
	ImagePath   string // empty keeps the stored image
}

// Edit updates an owned product. Editing someone else's product is
// ErrForbidden, matching the admin-area ownership rule.
func (c *Catalog) Edit(ctx context.Context, owner entity.Principal, id string, in EditProductInput) (*entity.Product, error) {
	p, err := c.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Deleted {
		return nil, entity.ErrNotFound
	}
	if p.OwnerID != owner.ID {
		return nil, entity.ErrForbidden
	}

	p.Title = in.Title
	p.Price = in.Price
	p.Description = in.Description
	if in.ImagePath != "" {
		p.ImagePath = in.ImagePath
	}
	if err := c.products.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete soft-deletes an owned product and purges it from every cart.
// The stored image is kept; existing order snapshots still reference it.
func (c *Catalog) Delete(ctx context.Context, owner entity.Principal, id string) error {
	p, err := c.products.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.OwnerID != owner.ID {
		return entity.ErrForbidden
	}
	if err := c.products.SoftDelete(ctx, id); err != nil {
		return err
	}
	return c.carts.PurgeProduct(ctx, id)
}

// OwnerPage lists the caller's own products for the admin area.
func (c *Catalog) OwnerPage(ctx context.Context, owner entity.Principal, page int) (entity.ProductPage, error) {
	if page < 1 {
		page = 1
	}
	total, err := c.products.CountByOwner(ctx, owner.ID)
	if err != nil {
		return entity.ProductPage{}, err
	}
	prods, err := c.products.ListByOwner(ctx, owner.ID, (page-1)*c.adminPageSize, c.adminPageSize)
	if err != nil {
		return entity.ProductPage{}, err
	}
	return paginate(prods, page, c.adminPageSize, total), nil
}

func paginate(prods []entity.Product, page, size, total int) entity.ProductPage {
	last := (total + size - 1) / size
	if last < 1 {
		last = 1
	}
	return entity.ProductPage{
		Products:    prods,
		CurrentPage: page,
		LastPage:    last,
		HasNextPage: total > page*size,
		HasPrevPage: page > 1,
	}
}
