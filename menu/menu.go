// Package menu assembles the customer-facing menu tree with a cache-aside
// read path in front of the catalog store.
package menu

import (
	"context"
	"encoding/json"
	"log"

	"gorm.io/gorm"

	"github.com/socialcoffee/coffee-api/cache"
	"github.com/socialcoffee/coffee-api/metrics"
	"github.com/socialcoffee/coffee-api/models"
)

type Response struct {
	Categories []CategoryView `json:"categories"`
}

type CategoryView struct {
	ID        uint          `json:"id"`
	NameRus   string        `json:"name_rus"`
	NameKaz   string        `json:"name_kaz"`
	SortOrder int           `json:"sort_order"`
	Products  []ProductView `json:"products"`
}

type ProductView struct {
	ID             uint              `json:"id"`
	CategoryID     uint              `json:"category_id"`
	NameRus        string            `json:"name_rus"`
	NameKaz        string            `json:"name_kaz"`
	DescriptionRus string            `json:"description_rus"`
	DescriptionKaz string            `json:"description_kaz"`
	BasePrice      float64           `json:"base_price"`
	ImageURL       string            `json:"image_url"`
	OptionGroups   []OptionGroupView `json:"option_groups"`
}

type OptionGroupView struct {
	ID         uint            `json:"id"`
	NameRus    string          `json:"name_rus"`
	NameKaz    string          `json:"name_kaz"`
	IsRequired bool            `json:"is_required"`
	IsMultiple bool            `json:"is_multiple"`
	Options    []models.Option `json:"options"`
}

type Service struct {
	db    *gorm.DB
	cache *cache.MenuCache
}

func NewService(db *gorm.DB, menuCache *cache.MenuCache) *Service {
	return &Service{db: db, cache: menuCache}
}

// Menu serves the assembled menu, preferring the cached copy. A cache
// failure only costs the round trip to the catalog store; it never fails
// the request.
func (s *Service) Menu(ctx context.Context) (Response, error) {
	if raw, ok := s.cache.Get(ctx); ok {
		var cached Response
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			metrics.MenuCacheHits.Inc()
			return cached, nil
		}
		log.Printf("⚠️ discarding unreadable cached menu")
	}
	metrics.MenuCacheMisses.Inc()

	assembled, err := s.assemble(ctx)
	if err != nil {
		return Response{}, err
	}

	if raw, err := json.Marshal(assembled); err == nil {
		s.cache.Set(ctx, string(raw))
	}
	return assembled, nil
}

// assemble builds the full tree: active categories in display order, their
// active products, each with its option groups and available options only.
func (s *Service) assemble(ctx context.Context) (Response, error) {
	var categories []models.Category
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_order").
		Find(&categories).Error
	if err != nil {
		return Response{}, err
	}

	response := Response{Categories: make([]CategoryView, 0, len(categories))}
	for _, category := range categories {
		var products []models.Product
		err := s.db.WithContext(ctx).
			Where("category_id = ? AND status = ?", category.ID, models.ProductActive).
			Preload("OptionGroups.Options", "is_available = ?", true).
			Preload("OptionGroups").
			Find(&products).Error
		if err != nil {
			return Response{}, err
		}

		view := CategoryView{
			ID:        category.ID,
			NameRus:   category.NameRus,
			NameKaz:   category.NameKaz,
			SortOrder: category.SortOrder,
			Products:  make([]ProductView, 0, len(products)),
		}
		for _, product := range products {
			productView := ProductView{
				ID:             product.ID,
				CategoryID:     product.CategoryID,
				NameRus:        product.NameRus,
				NameKaz:        product.NameKaz,
				DescriptionRus: product.DescriptionRus,
				DescriptionKaz: product.DescriptionKaz,
				BasePrice:      product.BasePrice,
				ImageURL:       product.ImageURL,
				OptionGroups:   make([]OptionGroupView, 0, len(product.OptionGroups)),
			}
			for _, group := range product.OptionGroups {
				productView.OptionGroups = append(productView.OptionGroups, OptionGroupView{
					ID:         group.ID,
					NameRus:    group.NameRus,
					NameKaz:    group.NameKaz,
					IsRequired: group.IsRequired,
					IsMultiple: group.IsMultiple,
					Options:    group.Options,
				})
			}
			view.Products = append(view.Products, productView)
		}
		response.Categories = append(response.Categories, view)
	}
	return response, nil
}
