package controllers

import (
	"net/http"

	"gamemarket-api-io/api/pkg/models"
	"gamemarket-api-io/api/pkg/permissions"
	"gamemarket-api-io/api/pkg/services"
	"gamemarket-api-io/api/pkg/util"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserController struct {
	userService         services.UserService
	subscriptionService services.SubscriptionService
}

func InitUserController(userService services.UserService, subscriptionService services.SubscriptionService) *UserController {
	return &UserController{
		userService:         userService,
		subscriptionService: subscriptionService,
	}
}

func (uc *UserController) ListUsers(c *gin.Context) {
	ctx, cancel := WithTimeout(c)
	defer cancel()

	query := GetListQuery(c)
	users, count, err := uc.userService.ListUsers(ctx, query)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	HandlePaginationAndResponse(c, users, count, query.Pagination, "Users retrieved successfully")
}

func (uc *UserController) GetUser(c *gin.Context) {
	ctx, cancel := WithTimeout(c)
	defer cancel()

	userID, ok := uc.ownAccount(c, permissions.Retrieve)
	if !ok {
		return
	}

	user, err := uc.userService.GetUserByID(ctx, userID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	util.HandleSuccess(c, http.StatusOK, "User retrieved successfully", user)
}

func (uc *UserController) GetSubscription(c *gin.Context) {
	ctx, cancel := WithTimeout(c)
	defer cancel()

	userID, ok := uc.ownAccount(c, permissions.Retrieve)
	if !ok {
		return
	}

	subscription, err := uc.subscriptionService.GetSubscription(ctx, userID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	util.HandleSuccess(c, http.StatusOK, "Subscription retrieved successfully", subscription)
}

func (uc *UserController) UpgradeSubscription(c *gin.Context) {
	ctx, cancel := WithTimeout(c)
	defer cancel()

	userID, ok := uc.ownAccount(c, permissions.Update)
	if !ok {
		return
	}

	var req models.SubscriptionUpgradeRequest
	if !BindJSONAndValidate(c, &req) {
		return
	}

	subscription, err := uc.subscriptionService.UpgradeSubscription(ctx, userID, req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	util.HandleSuccess(c, http.StatusOK, "Subscription updated", subscription)
}

// ownAccount parses the :id path parameter and lets through the account
// owner or an admin.
func (uc *UserController) ownAccount(c *gin.Context, action permissions.Action) (primitive.ObjectID, bool) {
	userID, ok := ParseObjectIDParam(c, "id")
	if !ok {
		return primitive.NilObjectID, false
	}

	resource := permissions.Resource{Kind: "user", OwnerID: userID.Hex()}
	if !CheckPermission(c, permissions.UserOrAdmin, action, resource) {
		return primitive.NilObjectID, false
	}
	return userID, true
}
