package adminControllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/socialcoffee/coffee-api/cache"
	"github.com/socialcoffee/coffee-api/models"
)

// Every catalog mutation below invalidates the menu cache before reporting
// success, so the next menu read reassembles from the store.

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// -------- Categories --------

type CreateCategoryRequest struct {
	NameRus   string `json:"name_rus" binding:"required"`
	NameKaz   string `json:"name_kaz" binding:"required"`
	SortOrder int    `json:"sort_order"`
	IsActive  *bool  `json:"is_active"`
}

// UpdateCategoryRequest is a patch: only supplied fields are applied.
type UpdateCategoryRequest struct {
	NameRus   *string `json:"name_rus"`
	NameKaz   *string `json:"name_kaz"`
	SortOrder *int    `json:"sort_order"`
	IsActive  *bool   `json:"is_active"`
}

func ListCategoriesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var categories []models.Category
		if err := db.Order("sort_order").Find(&categories).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load categories"})
			return
		}
		c.JSON(http.StatusOK, categories)
	}
}

func CreateCategoryHandler(db *gorm.DB, menuCache *cache.MenuCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateCategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		category := models.Category{
			NameRus:   req.NameRus,
			NameKaz:   req.NameKaz,
			SortOrder: req.SortOrder,
			IsActive:  true,
		}
		if req.IsActive != nil {
			category.IsActive = *req.IsActive
		}
		if err := db.Create(&category).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
			return
		}
		menuCache.Invalidate(c.Request.Context())
		c.JSON(http.StatusOK, category)
	}
}

func UpdateCategoryHandler(db *gorm.DB, menuCache *cache.MenuCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "categoryID")
		if !ok {
			return
		}
		var req UpdateCategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var category models.Category
		if err := db.First(&category, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load category"})
			return
		}

		if req.NameRus != nil {
			category.NameRus = *req.NameRus
		}
		if req.NameKaz != nil {
			category.NameKaz = *req.NameKaz
		}
		if req.SortOrder != nil {
			category.SortOrder = *req.SortOrder
		}
		if req.IsActive != nil {
			category.IsActive = *req.IsActive
		}
		if err := db.Save(&category).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update category"})
			return
		}
		menuCache.Invalidate(c.Request.Context())
		c.JSON(http.StatusOK, category)
	}
}

func DeleteCategoryHandler(db *gorm.DB, menuCache *cache.MenuCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "categoryID")
		if !ok {
			return
		}
		if err := db.Delete(&models.Category{}, id).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
			return
		}
		menuCache.Invalidate(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
	}
}

// -------- Products --------

type CreateProductRequest struct {
	CategoryID     uint     `json:"category_id" binding:"required"`
	NameRus        string   `json:"name_rus" binding:"required"`
	NameKaz        string   `json:"name_kaz" binding:"required"`
	DescriptionRus string   `json:"description_rus"`
	DescriptionKaz string   `json:"description_kaz"`
	BasePrice      *float64 `json:"base_price" binding:"required"`
	ImageURL       string   `json:"image_url"`
	Status         string   `json:"status"`
	OptionGroupIDs []uint   `json:"option_group_ids"`
}

// UpdateProductRequest is a patch: only supplied fields are applied.
type UpdateProductRequest struct {
	CategoryID     *uint    `json:"category_id"`
	NameRus        *string  `json:"name_rus"`
	NameKaz        *string  `json:"name_kaz"`
	DescriptionRus *string  `json:"description_rus"`
	DescriptionKaz *string  `json:"description_kaz"`
	BasePrice      *float64 `json:"base_price"`
	ImageURL       *string  `json:"image_url"`
	Status         *string  `json:"status"`
	OptionGroupIDs *[]uint  `json:"option_group_ids"`
}

func ListProductsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var products []models.Product
		if err := db.Preload("OptionGroups.Options").Preload("OptionGroups").
			Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load products"})
			return
		}
		c.JSON(http.StatusOK, products)
	}
}

func loadOptionGroups(db *gorm.DB, ids []uint) ([]models.OptionGroup, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var groups []models.OptionGroup
	if err := db.Where("id IN ?", ids).Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

func CreateProductHandler(db *gorm.DB, menuCache *cache.MenuCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		status := models.ProductActive
		if req.Status != "" {
			status = models.ProductStatus(req.Status)
		}
		product := models.Product{
			CategoryID:     req.CategoryID,
			NameRus:        req.NameRus,
			NameKaz:        req.NameKaz,
			DescriptionRus: req.DescriptionRus,
			DescriptionKaz: req.DescriptionKaz,
			BasePrice:      *req.BasePrice,
			ImageURL:       req.ImageURL,
			Status:         status,
		}
		groups, err := loadOptionGroups(db, req.OptionGroupIDs)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load option groups"})
			return
		}
		product.OptionGroups = groups

		if err := db.Create(&product).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
			return
		}
		menuCache.Invalidate(c.Request.Context())
		c.JSON(http.StatusOK, product)
	}
}

func UpdateProductHandler(db *gorm.DB, menuCache *cache.MenuCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "productID")
		if !ok {
			return
		}
		var req UpdateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var product models.Product
		if err := db.Preload("OptionGroups").First(&product, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load product"})
			return
		}

		if req.CategoryID != nil {
			product.CategoryID = *req.CategoryID
		}
		if req.NameRus != nil {
			product.NameRus = *req.NameRus
		}
		if req.NameKaz != nil {
			product.NameKaz = *req.NameKaz
		}
		if req.DescriptionRus != nil {
			product.DescriptionRus = *req.DescriptionRus
		}
		if req.DescriptionKaz != nil {
			product.DescriptionKaz = *req.DescriptionKaz
		}
		if req.BasePrice != nil {
			product.BasePrice = *req.BasePrice
		}
		if req.ImageURL != nil {
			product.ImageURL = *req.ImageURL
		}
		if req.Status != nil {
			product.Status = models.ProductStatus(*req.Status)
		}

		if err := db.Save(&product).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
			return
		}
		if req.OptionGroupIDs != nil {
			groups, err := loadOptionGroups(db, *req.OptionGroupIDs)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load option groups"})
				return
			}
			if err := db.Model(&product).Association("OptionGroups").Replace(groups); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update option groups"})
				return
			}
		}

		menuCache.Invalidate(c.Request.Context())
		c.JSON(http.StatusOK, product)
	}
}

func DeleteProductHandler(db *gorm.DB, menuCache *cache.MenuCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "productID")
		if !ok {
			return
		}
		if err := db.Delete(&models.Product{}, id).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
			return
		}
		menuCache.Invalidate(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
	}
}

// -------- Option groups --------

type CreateOptionGroupRequest struct {
	NameRus    string `json:"name_rus" binding:"required"`
	NameKaz    string `json:"name_kaz" binding:"required"`
	IsRequired bool   `json:"is_required"`
	IsMultiple bool   `json:"is_multiple"`
}

type UpdateOptionGroupRequest struct {
	NameRus    *string `json:"name_rus"`
	NameKaz    *string `json:"name_kaz"`
	IsRequired *bool   `json:"is_required"`
	IsMultiple *bool   `json:"is_multiple"`
}

func ListOptionGroupsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var groups []models.OptionGroup
		if err := db.Preload("Options").Find(&groups).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load option groups"})
			return
		}
		c.JSON(http.StatusOK, groups)
	}
}

func CreateOptionGroupHandler(db *gorm.DB, menuCache *cache.MenuCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateOptionGroupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		group := models.OptionGroup{
			NameRus:    req.NameRus,
			NameKaz:    req.NameKaz,
			IsRequired: req.IsRequired,
			IsMultiple: req.IsMultiple,
		}
		if err := db.Create(&group).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create option group"})
			return
		}
		menuCache.Invalidate(c.Request.Context())
		c.JSON(http.StatusOK, group)
	}
}

func UpdateOptionGroupHandler(db *gorm.DB, menuCache *cache.MenuCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "groupID")
		if !ok {
			return
		}
		var req UpdateOptionGroupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var group models.OptionGroup
		if err := db.First(&group, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Option group not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load option group"})
			return
		}

		if req.NameRus != nil {
			group.NameRus = *req.NameRus
		}
		if req.NameKaz != nil {
			group.NameKaz = *req.NameKaz
		}
		if req.IsRequired != nil {
			group.IsRequired = *req.IsRequired
		}
		if req.IsMultiple != nil {
			group.IsMultiple = *req.IsMultiple
		}
		if err := db.Save(&group).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update option group"})
			return
		}
		menuCache.Invalidate(c.Request.Context())
		c.JSON(http.StatusOK, group)
	}
}

func DeleteOptionGroupHandler(db *gorm.DB, menuCache *cache.MenuCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "groupID")
		if !ok {
			return
		}
		if err := db.Delete(&models.OptionGroup{}, id).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete option group"})
			return
		}
		menuCache.Invalidate(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"message": "Option group deleted successfully"})
	}
}

// -------- Options --------

type CreateOptionRequest struct {
	GroupID     uint    `json:"group_id" binding:"required"`
	NameRus     string  `json:"name_rus" binding:"required"`
	NameKaz     string  `json:"name_kaz" binding:"required"`
	Price       float64 `json:"price"`
	IsAvailable *bool   `json:"is_available"`
}

type UpdateOptionRequest struct {
	NameRus     *string  `json:"name_rus"`
	NameKaz     *string  `json:"name_kaz"`
	Price       *float64 `json:"price"`
	IsAvailable *bool    `json:"is_available"`
}

func CreateOptionHandler(db *gorm.DB, menuCache *cache.MenuCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateOptionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		option := models.Option{
			GroupID:     req.GroupID,
			NameRus:     req.NameRus,
			NameKaz:     req.NameKaz,
			Price:       req.Price,
			IsAvailable: true,
		}
		if req.IsAvailable != nil {
			option.IsAvailable = *req.IsAvailable
		}
		if err := db.Create(&option).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create option"})
			return
		}
		menuCache.Invalidate(c.Request.Context())
		c.JSON(http.StatusOK, option)
	}
}

func UpdateOptionHandler(db *gorm.DB, menuCache *cache.MenuCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "optionID")
		if !ok {
			return
		}
		var req UpdateOptionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var option models.Option
		if err := db.First(&option, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Option not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load option"})
			return
		}

		if req.NameRus != nil {
			option.NameRus = *req.NameRus
		}
		if req.NameKaz != nil {
			option.NameKaz = *req.NameKaz
		}
		if req.Price != nil {
			option.Price = *req.Price
		}
		if req.IsAvailable != nil {
			option.IsAvailable = *req.IsAvailable
		}
		if err := db.Save(&option).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update option"})
			return
		}
		menuCache.Invalidate(c.Request.Context())
		c.JSON(http.StatusOK, option)
	}
}

func DeleteOptionHandler(db *gorm.DB, menuCache *cache.MenuCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "optionID")
		if !ok {
			return
		}
		if err := db.Delete(&models.Option{}, id).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete option"})
			return
		}
		menuCache.Invalidate(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"message": "Option deleted successfully"})
	}
}
