package controllers

import (
	"net/http"

	"gamemarket-api-io/api/pkg/models"
	"gamemarket-api-io/api/pkg/services"
	"gamemarket-api-io/api/pkg/util"

	"github.com/gin-gonic/gin"
)

type ItemAttributeController struct {
	attributeService services.ItemAttributeService
}

func InitItemAttributeController(attributeService services.ItemAttributeService) *ItemAttributeController {
	return &ItemAttributeController{attributeService: attributeService}
}

func (ac *ItemAttributeController) ListItemAttributes(c *gin.Context) {
	ctx, cancel := WithTimeout(c)
	defer cancel()

	query := GetListQuery(c)
	attributes, count, err := ac.attributeService.ListItemAttributes(ctx, query)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	HandlePaginationAndResponse(c, attributes, count, query.Pagination, "Item attributes retrieved successfully")
}

func (ac *ItemAttributeController) CreateItemAttribute(c *gin.Context) {
	ctx, cancel := WithTimeout(c)
	defer cancel()

	var req models.ItemAttributeRequest
	if !BindJSONAndValidate(c, &req) {
		return
	}

	attribute, err := ac.attributeService.CreateItemAttribute(ctx, req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	util.HandleSuccess(c, http.StatusCreated, "Item attribute created", attribute)
}

func (ac *ItemAttributeController) DeleteItemAttribute(c *gin.Context) {
	ctx, cancel := WithTimeout(c)
	defer cancel()

	id, ok := ParseObjectIDParam(c, "id")
	if !ok {
		return
	}

	if err := ac.attributeService.DeleteItemAttribute(ctx, id); err != nil {
		HandleServiceError(c, err)
		return
	}

	util.HandleSuccess(c, http.StatusOK, "Item attribute deleted", nil)
}
