package controllers

import (
	"net/http"

	"github.com/s4trading/storefront-backend/api/responses"
	"github.com/s4trading/storefront-backend/internal/commerce"
	"github.com/s4trading/storefront-backend/pkg/logger"
)

type ProductsController struct {
	Provider commerce.Provider
	Logger   *logger.Logger
}

// List returns the active catalog from whichever backend is configured.
func (c *ProductsController) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	products, err := c.Provider.GetProducts(ctx)
	if err != nil {
		responses.WriteError(ctx, c.Logger, w, err)
		return
	}

	responses.WriteSourced(w, c.Provider.Source().String(), products)
}
