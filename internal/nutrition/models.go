package nutrition

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TargetsResponse is the body of GET /v1/nutrition/targets.
type TargetsResponse struct {
	BMR    int          `json:"bmr"`
	TDEE   int          `json:"tdee"`
	Daily  DailyTarget  `json:"daily"`
	Weekly WeeklyTarget `json:"weekly"`
}

// ProductDTO mirrors storage.Product on the wire.
type ProductDTO struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Brand           string    `json:"brand,omitempty"`
	Barcode         string    `json:"barcode,omitempty"`
	CaloriesPer100g float64   `json:"calories_per_100g"`
	ProteinPer100g  float64   `json:"protein_per_100g"`
	FatPer100g      float64   `json:"fat_per_100g"`
	CarbsPer100g    float64   `json:"carbs_per_100g"`
	FiberPer100g    float64   `json:"fiber_per_100g"`
	SodiumPer100g   float64   `json:"sodium_per_100g"`
	CreatedAt       time.Time `json:"created_at"`
}

type ProductsResponse struct {
	Products []ProductDTO `json:"products"`
}

// CreateProductRequest is the body of POST /v1/products.
type CreateProductRequest struct {
	Name            string  `json:"name"`
	Brand           string  `json:"brand"`
	Barcode         string  `json:"barcode"`
	CaloriesPer100g float64 `json:"calories_per_100g"`
	ProteinPer100g  float64 `json:"protein_per_100g"`
	FatPer100g      float64 `json:"fat_per_100g"`
	CarbsPer100g    float64 `json:"carbs_per_100g"`
	FiberPer100g    float64 `json:"fiber_per_100g"`
	SodiumPer100g   float64 `json:"sodium_per_100g"`
}

func (r *CreateProductRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if len(r.Name) > 200 {
		return fmt.Errorf("name must be at most 200 characters")
	}
	for field, v := range map[string]float64{
		"calories_per_100g": r.CaloriesPer100g,
		"protein_per_100g":  r.ProteinPer100g,
		"fat_per_100g":      r.FatPer100g,
		"carbs_per_100g":    r.CarbsPer100g,
		"fiber_per_100g":    r.FiberPer100g,
		"sodium_per_100g":   r.SodiumPer100g,
	} {
		if v < 0 {
			return fmt.Errorf("%s must not be negative", field)
		}
	}
	if r.CaloriesPer100g > 900 {
		return fmt.Errorf("calories_per_100g must be at most 900")
	}
	return nil
}

// ScaleRequest is the body of POST /v1/nutrition/scale.
// Either ProductID or Product must be set.
type ScaleRequest struct {
	ProductID *uuid.UUID            `json:"product_id,omitempty"`
	Product   *CreateProductRequest `json:"product,omitempty"`
	Grams     float64               `json:"grams"`
}

type ScaleResponse struct {
	Grams     float64       `json:"grams"`
	Nutrition NutritionInfo `json:"nutrition"`
}
