package nutrition

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/fdg312/cut-sprint/internal/storage"
	"github.com/google/uuid"
)

var (
	ErrInvalidRequest  = errors.New("invalid request")
	ErrProductNotFound = errors.New("product not found")
)

// Service exposes the calculator and the product catalog to handlers.
type Service struct {
	profiles storage.ProfilesStorage
	products storage.ProductsStorage
	calc     *Calculator
}

func NewService(profiles storage.ProfilesStorage, products storage.ProductsStorage, calc *Calculator) *Service {
	return &Service{
		profiles: profiles,
		products: products,
		calc:     calc,
	}
}

// GetTargets computes the caller's daily and weekly targets.
// A user without a stored profile gets an IncompleteProfileError, same as one with blanks.
func (s *Service) GetTargets(ctx context.Context, userID string) (*TargetsResponse, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		empty := storage.NewDefaultProfile(userID)
		profile = &empty
	} else if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	bmr, err := s.calc.BMR(*profile)
	if err != nil {
		return nil, err
	}
	tdee, err := s.calc.TDEE(*profile)
	if err != nil {
		return nil, err
	}
	daily, err := s.calc.DailyTarget(*profile)
	if err != nil {
		return nil, err
	}

	return &TargetsResponse{
		BMR:    int(math.Round(bmr)),
		TDEE:   int(math.Round(tdee)),
		Daily:  daily,
		Weekly: s.calc.WeeklyFromDaily(daily, s.calc.WeekendBonus(*profile)),
	}, nil
}

// Scale scales a catalog product or an inline product to req.Grams.
func (s *Service) Scale(ctx context.Context, req ScaleRequest) (*ScaleResponse, error) {
	if req.Grams <= 0 || req.Grams > 5000 {
		return nil, fmt.Errorf("%w: grams must be between 0 and 5000", ErrInvalidRequest)
	}

	var product storage.Product
	switch {
	case req.ProductID != nil:
		p, err := s.products.GetProduct(ctx, *req.ProductID)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get product: %w", err)
		}
		product = *p
	case req.Product != nil:
		if err := req.Product.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		product = productFromRequest(*req.Product)
	default:
		return nil, fmt.Errorf("%w: product_id or product is required", ErrInvalidRequest)
	}

	return &ScaleResponse{
		Grams:     req.Grams,
		Nutrition: ScaleNutrition(product, req.Grams),
	}, nil
}

func (s *Service) CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	product := productFromRequest(req)
	if err := s.products.CreateProduct(ctx, &product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	dto := productToDTO(product)
	return &dto, nil
}

func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.products.GetProduct(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	dto := productToDTO(*product)
	return &dto, nil
}

func (s *Service) SearchProducts(ctx context.Context, query string, limit int) (*ProductsResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := s.products.SearchProducts(ctx, strings.TrimSpace(query), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}

	resp := &ProductsResponse{Products: make([]ProductDTO, 0, len(rows))}
	for _, p := range rows {
		resp.Products = append(resp.Products, productToDTO(p))
	}
	return resp, nil
}

func productFromRequest(req CreateProductRequest) storage.Product {
	return storage.Product{
		Name:            strings.TrimSpace(req.Name),
		Brand:           strings.TrimSpace(req.Brand),
		Barcode:         strings.TrimSpace(req.Barcode),
		CaloriesPer100g: req.CaloriesPer100g,
		ProteinPer100g:  req.ProteinPer100g,
		FatPer100g:      req.FatPer100g,
		CarbsPer100g:    req.CarbsPer100g,
		FiberPer100g:    req.FiberPer100g,
		SodiumPer100g:   req.SodiumPer100g,
	}
}

func productToDTO(p storage.Product) ProductDTO {
	return ProductDTO{
		ID:              p.ID,
		Name:            p.Name,
		Brand:           p.Brand,
		Barcode:         p.Barcode,
		CaloriesPer100g: p.CaloriesPer100g,
		ProteinPer100g:  p.ProteinPer100g,
		FatPer100g:      p.FatPer100g,
		CarbsPer100g:    p.CarbsPer100g,
		FiberPer100g:    p.FiberPer100g,
		SodiumPer100g:   p.SodiumPer100g,
		CreatedAt:       p.CreatedAt,
	}
}
