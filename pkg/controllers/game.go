package controllers

import (
	"net/http"

	"gamemarket-api-io/api/internal/auth"
	"gamemarket-api-io/api/pkg/models"
	"gamemarket-api-io/api/pkg/services"
	"gamemarket-api-io/api/pkg/util"

	"github.com/gin-gonic/gin"
)

type GameController struct {
	gameService services.GameService
}

func InitGameController(gameService services.GameService) *GameController {
	return &GameController{gameService: gameService}
}

func (gc *GameController) ListGames(c *gin.Context) {
	ctx, cancel := WithTimeout(c)
	defer cancel()

	query := GetListQuery(c)
	games, count, err := gc.gameService.ListGames(ctx, query)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	HandlePaginationAndResponse(c, games, count, query.Pagination, "Games retrieved successfully")
}

func (gc *GameController) GetGame(c *gin.Context) {
	ctx, cancel := WithTimeout(c)
	defer cancel()

	game, err := gc.gameService.GetGame(ctx, c.Param("slug"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	util.HandleSuccess(c, http.StatusOK, "Game retrieved successfully", game)
}

func (gc *GameController) CreateGame(c *gin.Context) {
	ctx, cancel := WithTimeout(c)
	defer cancel()

	var req models.GameRequest
	if !BindJSONAndValidate(c, &req) {
		return
	}

	game, err := gc.gameService.CreateGame(ctx, auth.CurrentActor(c), req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	util.HandleSuccess(c, http.StatusCreated, "Game created", game)
}

// ReplaceGame handles PUT: every field except product_hierarchies is
// required.
func (gc *GameController) ReplaceGame(c *gin.Context) {
	var req models.GameRequest
	if !BindJSONAndValidate(c, &req) {
		return
	}
	if req.ReleaseDate.IsZero() {
		HandleServiceError(c, services.NewValidationError("release_date", "This field is required."))
		return
	}
	gc.update(c, req.AsPatch())
}

func (gc *GameController) PatchGame(c *gin.Context) {
	var req models.GamePatchRequest
	if !BindJSONAndValidate(c, &req) {
		return
	}
	gc.update(c, req)
}

func (gc *GameController) update(c *gin.Context, req models.GamePatchRequest) {
	ctx, cancel := WithTimeout(c)
	defer cancel()

	game, err := gc.gameService.UpdateGame(ctx, c.Param("slug"), req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	util.HandleSuccess(c, http.StatusOK, "Game updated", game)
}

func (gc *GameController) DeleteGame(c *gin.Context) {
	ctx, cancel := WithTimeout(c)
	defer cancel()

	if err := gc.gameService.DeleteGame(ctx, c.Param("slug")); err != nil {
		HandleServiceError(c, err)
		return
	}

	util.HandleSuccess(c, http.StatusOK, "Game deleted", nil)
}
