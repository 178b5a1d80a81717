package products

import (
	"context"
	"fmt"
	"strings"

	pkgerrors "github.com/digiberkat/storefront-go/pkg/errors"
	"github.com/digiberkat/storefront-go/pkg/logger"
	"github.com/digiberkat/storefront-go/pkg/storefront"
)

const msgEmptyQuery = "Masukkan kata kunci pencarian terlebih dahulu."

// Gateway is the slice of the remote API the catalog service drives.
type Gateway interface {
	Products(ctx context.Context) ([]storefront.Product, error)
	ProductByID(ctx context.Context, productID int) (*storefront.Product, error)
	Recommend(ctx context.Context, params storefront.RecommendParams) ([]storefront.RecommendedProduct, error)
}

// Service exposes the catalog and free-text product recommendations.
type Service interface {
	List(ctx context.Context) ([]storefront.Product, error)
	Detail(ctx context.Context, productID int) (*storefront.Product, error)
	Recommend(ctx context.Context, userQuery string) ([]storefront.RecommendedProduct, error)
}

type service struct {
	gw   Gateway
	logg *logger.Logger
}

// NewService wires the catalog service.
func NewService(gw Gateway, logg *logger.Logger) (Service, error) {
	if gw == nil {
		return nil, fmt.Errorf("products gateway required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{gw: gw, logg: logg}, nil
}

func (s *service) List(ctx context.Context) ([]storefront.Product, error) {
	return s.gw.Products(ctx)
}

func (s *service) Detail(ctx context.Context, productID int) (*storefront.Product, error) {
	if productID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Produk tidak ditemukan.")
	}
	return s.gw.ProductByID(ctx, productID)
}

// Recommend ranks the current catalog against a free-text query. The catalog
// is fetched fresh so the recommender never scores stale stock or pricing.
func (s *service) Recommend(ctx context.Context, userQuery string) ([]storefront.RecommendedProduct, error) {
	query := strings.TrimSpace(userQuery)
	if query == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgEmptyQuery)
	}

	catalog, err := s.gw.Products(ctx)
	if err != nil {
		return nil, err
	}
	if len(catalog) == 0 {
		return nil, nil
	}

	return s.gw.Recommend(ctx, storefront.RecommendParams{
		UserQuery: query,
		Products:  catalog,
	})
}
