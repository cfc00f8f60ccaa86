package controllers

import (
	"context"
	"net/http"
	"strconv"

	"gamemarket-api-io/api/internal/auth"
	"gamemarket-api-io/api/internal/common"
	"gamemarket-api-io/api/internal/middleware"
	"gamemarket-api-io/api/pkg/permissions"
	"gamemarket-api-io/api/pkg/services"
	"gamemarket-api-io/api/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WithTimeout derives the request context with the standard timeout
func WithTimeout(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), common.REQUEST_TIMEOUT_SECS)
}

// GetPaginationArgs reads limit and skip, clamping limit to MAX_PAGE_LIMIT.
func GetPaginationArgs(c *gin.Context) util.PaginationArgs {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(common.DEFAULT_PAGE_LIMIT)))
	if err != nil || limit <= 0 {
		limit = common.DEFAULT_PAGE_LIMIT
	}
	if limit > common.MAX_PAGE_LIMIT {
		limit = common.MAX_PAGE_LIMIT
	}

	skip, err := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if err != nil || skip < 0 {
		skip = 0
	}

	return util.PaginationArgs{
		Limit: limit,
		Skip:  skip,
	}
}

// GetListQuery collects filters, search, ordering and pagination of a list
// request.
func GetListQuery(c *gin.Context) services.ListQuery {
	return services.ListQuery{
		Params:     c.Request.URL.Query(),
		Search:     c.Query("search"),
		Ordering:   c.Query("ordering"),
		Pagination: GetPaginationArgs(c),
	}
}

// HandlePaginationAndResponse is a utility for common pagination responses
func HandlePaginationAndResponse(c *gin.Context, data any, count int64, paginationArgs util.PaginationArgs, message string) {
	util.HandleSuccessMeta(c, http.StatusOK, message, data, gin.H{
		"pagination": util.Pagination{
			Limit: paginationArgs.Limit,
			Skip:  paginationArgs.Skip,
			Count: count,
		},
	})
}

// ErrorStatus maps service and permission errors to HTTP statuses.
func ErrorStatus(err error) int {
	var fieldErrs validator.ValidationErrors
	switch {
	case services.IsValidation(err), errors.As(err, &fieldErrs):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrGoogleToken):
		return http.StatusUnauthorized
	case errors.Is(err, permissions.ErrNotAuthenticated), errors.Is(err, permissions.ErrPermissionDenied):
		return middleware.PermissionStatus(err)
	}
	return http.StatusInternalServerError
}

// HandleServiceError writes err with the status ErrorStatus picks.
func HandleServiceError(c *gin.Context, err error) {
	util.HandleError(c, ErrorStatus(err), err)
}

// BindJSONAndValidate binds JSON and handles validation errors
func BindJSONAndValidate(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		util.HandleError(c, http.StatusBadRequest, err)
		return false
	}

	if err := common.Validate.Struct(obj); err != nil {
		util.HandleError(c, http.StatusBadRequest, err)
		return false
	}

	return true
}

// ParseObjectIDParam parses an ObjectID from URL parameter and handles errors
func ParseObjectIDParam(c *gin.Context, paramName string) (primitive.ObjectID, bool) {
	objectID, err := primitive.ObjectIDFromHex(c.Param(paramName))
	if err != nil {
		util.HandleError(c, http.StatusNotFound, services.ErrNotFound)
		return primitive.NilObjectID, false
	}
	return objectID, true
}

// CheckPermission runs policy for the current caller and writes the
// rejection when it fails.
func CheckPermission(c *gin.Context, policy permissions.Policy, action permissions.Action, resource permissions.Resource) bool {
	if err := permissions.Check(policy, auth.CurrentActor(c), action, resource); err != nil {
		util.HandleError(c, middleware.PermissionStatus(err), err)
		return false
	}
	return true
}

// CurrentUserID returns the id of the authenticated caller.
func CurrentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	actor := auth.CurrentActor(c)
	id, err := primitive.ObjectIDFromHex(actor.ID)
	if !actor.Authenticated || err != nil {
		util.HandleError(c, http.StatusUnauthorized, permissions.ErrNotAuthenticated)
		return primitive.NilObjectID, false
	}
	return id, true
}
