package controllers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"gamemarket-api-io/api/pkg/models"
	"gamemarket-api-io/api/pkg/permissions"
	"gamemarket-api-io/api/pkg/services"
	"gamemarket-api-io/api/pkg/util"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const MAX_FILE_SIZE = 10 << 20

var imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true}

type ItemController struct {
	itemService services.ItemService
}

func InitItemController(itemService services.ItemService) *ItemController {
	return &ItemController{itemService: itemService}
}

func (ic *ItemController) ListItems(c *gin.Context) {
	ctx, cancel := WithTimeout(c)
	defer cancel()

	query := GetListQuery(c)
	items, count, err := ic.itemService.ListItems(ctx, query)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	HandlePaginationAndResponse(c, items, count, query.Pagination, "Items retrieved successfully")
}

func (ic *ItemController) GetItem(c *gin.Context) {
	ctx, cancel := WithTimeout(c)
	defer cancel()

	id, ok := ParseObjectIDParam(c, "id")
	if !ok {
		return
	}

	item, err := ic.itemService.GetItem(ctx, id)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	util.HandleSuccess(c, http.StatusOK, "Item retrieved successfully", item)
}

// CreateItem lists an item with the caller as its seller.
func (ic *ItemController) CreateItem(c *gin.Context) {
	ctx, cancel := WithTimeout(c)
	defer cancel()

	sellerID, ok := CurrentUserID(c)
	if !ok {
		return
	}

	var req models.ItemRequest
	if !BindJSONAndValidate(c, &req) {
		return
	}

	item, err := ic.itemService.CreateItem(ctx, sellerID, req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	util.HandleSuccess(c, http.StatusCreated, "Item created", item)
}

func (ic *ItemController) UpdateItem(c *gin.Context) {
	ctx, cancel := WithTimeout(c)
	defer cancel()

	id, ok := ic.authorize(c, permissions.Update)
	if !ok {
		return
	}

	var req models.ItemRequest
	if !BindJSONAndValidate(c, &req) {
		return
	}

	updated, err := ic.itemService.UpdateItem(ctx, id, req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	util.HandleSuccess(c, http.StatusOK, "Item updated", updated)
}

func (ic *ItemController) DeleteItem(c *gin.Context) {
	ctx, cancel := WithTimeout(c)
	defer cancel()

	id, ok := ic.authorize(c, permissions.Delete)
	if !ok {
		return
	}

	if err := ic.itemService.DeleteItem(ctx, id); err != nil {
		HandleServiceError(c, err)
		return
	}

	util.HandleSuccess(c, http.StatusOK, "Item deleted", nil)
}

// UploadItemImage replaces the item picture with the multipart "image" file.
func (ic *ItemController) UploadItemImage(c *gin.Context) {
	ctx, cancel := WithTimeout(c)
	defer cancel()

	id, ok := ic.authorize(c, permissions.Update)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MAX_FILE_SIZE)
	header, err := c.FormFile("image")
	if err != nil {
		util.HandleError(c, http.StatusBadRequest, fmt.Errorf("image file is required: %w", err))
		return
	}
	if !imageExtensions[strings.ToLower(filepath.Ext(header.Filename))] {
		util.HandleError(c, http.StatusBadRequest, fmt.Errorf("unsupported image type %q", filepath.Ext(header.Filename)))
		return
	}

	file, err := header.Open()
	if err != nil {
		util.HandleError(c, http.StatusBadRequest, err)
		return
	}
	defer file.Close()

	updated, err := ic.itemService.UpdateItemImage(ctx, id, models.File{File: file})
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	util.HandleSuccess(c, http.StatusOK, "Item image updated", updated)
}

// authorize loads the item named in the path and checks the caller may act
// on it as its seller or an admin.
func (ic *ItemController) authorize(c *gin.Context, action permissions.Action) (primitive.ObjectID, bool) {
	id, ok := ParseObjectIDParam(c, "id")
	if !ok {
		return primitive.NilObjectID, false
	}

	item, err := ic.itemService.GetItem(c.Request.Context(), id)
	if err != nil {
		HandleServiceError(c, err)
		return primitive.NilObjectID, false
	}

	resource := permissions.Resource{Kind: "item", OwnerID: item.Seller}
	if !CheckPermission(c, permissions.AdminOrSeller, action, resource) {
		return primitive.NilObjectID, false
	}
	return id, true
}
