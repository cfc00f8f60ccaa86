package controllers

import (
	"net/http"

	"gamemarket-api-io/api/internal/auth"
	"gamemarket-api-io/api/pkg/models"
	"gamemarket-api-io/api/pkg/services"
	"gamemarket-api-io/api/pkg/util"

	"github.com/gin-gonic/gin"
)

type CategoryController struct {
	categoryService services.CategoryService
}

func InitCategoryController(categoryService services.CategoryService) *CategoryController {
	return &CategoryController{
		categoryService: categoryService,
	}
}

func (cc *CategoryController) ListCategories(c *gin.Context) {
	ctx, cancel := WithTimeout(c)
	defer cancel()

	query := GetListQuery(c)
	categories, count, err := cc.categoryService.ListCategories(ctx, query)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	HandlePaginationAndResponse(c, categories, count, query.Pagination, "Categories retrieved successfully")
}

func (cc *CategoryController) GetCategory(c *gin.Context) {
	ctx, cancel := WithTimeout(c)
	defer cancel()

	category, err := cc.categoryService.GetCategory(ctx, c.Param("slug"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	util.HandleSuccess(c, http.StatusOK, "Category retrieved successfully", category)
}

func (cc *CategoryController) CreateCategory(c *gin.Context) {
	ctx, cancel := WithTimeout(c)
	defer cancel()

	var req models.CategoryRequest
	if !BindJSONAndValidate(c, &req) {
		return
	}

	category, err := cc.categoryService.CreateCategory(ctx, auth.CurrentActor(c), req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	util.HandleSuccess(c, http.StatusCreated, "Category created", category)
}

// UpdateCategory serves both PUT and PATCH; absent fields are left alone.
func (cc *CategoryController) UpdateCategory(c *gin.Context) {
	ctx, cancel := WithTimeout(c)
	defer cancel()

	var req models.CategoryUpdateRequest
	if !BindJSONAndValidate(c, &req) {
		return
	}

	category, err := cc.categoryService.UpdateCategory(ctx, c.Param("slug"), req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	util.HandleSuccess(c, http.StatusOK, "Category updated", category)
}

func (cc *CategoryController) DeleteCategory(c *gin.Context) {
	ctx, cancel := WithTimeout(c)
	defer cancel()

	if err := cc.categoryService.DeleteCategory(ctx, c.Param("slug")); err != nil {
		HandleServiceError(c, err)
		return
	}

	util.HandleSuccess(c, http.StatusOK, "Category deleted", nil)
}
