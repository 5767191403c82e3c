package api

import (
	"context"
	"net/url"

	"golang.org/x/sync/errgroup"

	"grocli/internal/types"
)

// GetProduct fetches a single product by id.
func (c *Client) GetProduct(ctx context.Context, id string) (*types.Product, error) {
	var p types.Product
	if err := c.do(ctx, "GET", "/api/products/"+url.PathEscape(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProductsByCategory fetches all products in a category.
func (c *Client) GetProductsByCategory(ctx context.Context, name string) ([]types.Product, error) {
	var products []types.Product
	path := "/api/products?category=" + url.QueryEscape(name)
	if err := c.do(ctx, "GET", path, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// ListCategories fetches the storefront category list.
func (c *Client) ListCategories(ctx context.Context) ([]types.Category, error) {
	var categories []types.Category
	if err := c.do(ctx, "GET", "/api/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// GetFeaturedProducts fetches the home-screen highlight strip.
func (c *Client) GetFeaturedProducts(ctx context.Context) ([]types.Product, error) {
	var products []types.Product
	if err := c.do(ctx, "GET", "/api/products/featured", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Storefront is the home screen payload: categories plus the featured strip.
type Storefront struct {
	Categories []types.Category
	Featured   []types.Product
}

// FetchStorefront loads categories and featured products concurrently. The
// first failure cancels the sibling fetch.
func (c *Client) FetchStorefront(ctx context.Context) (*Storefront, error) {
	var sf Storefront

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		categories, err := c.ListCategories(gctx)
		if err != nil {
			return err
		}
		sf.Categories = categories
		return nil
	})
	g.Go(func() error {
		featured, err := c.GetFeaturedProducts(gctx)
		if err != nil {
			return err
		}
		sf.Featured = featured
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &sf, nil
}
