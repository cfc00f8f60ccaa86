package services

import (
	"context"
	"strings"
	"time"

	"gamemarket-api-io/api/internal/common"
	"gamemarket-api-io/api/pkg/models"
	"gamemarket-api-io/api/pkg/permissions"
	"gamemarket-api-io/api/pkg/util"

	slug2 "github.com/gosimple/slug"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const duplicateGameName = "game with this game name already exists."

var gameOrdering = map[string]string{
	"game_name":       "game_name",
	"genre":           "genre",
	"age_restriction": "age_restriction",
}

type gameService struct {
	client             *mongo.Client
	gameCollection     *mongo.Collection
	categoryCollection *mongo.Collection
	itemCollection     *mongo.Collection
	userCollection     *mongo.Collection
	links              Links
}

func NewGameService(db *mongo.Database, links Links) GameService {
	return &gameService{
		client:             db.Client(),
		gameCollection:     db.Collection(common.GameCollection),
		categoryCollection: db.Collection(common.CategoryCollection),
		itemCollection:     db.Collection(common.ItemCollection),
		userCollection:     db.Collection(common.UserCollection),
		links:              links,
	}
}

func (s *gameService) ListGames(ctx context.Context, query ListQuery) ([]models.GameResponse, int64, error) {
	filter, err := gameFilter(query.Params, query.Search)
	if err != nil {
		return nil, 0, err
	}

	count, err := s.gameCollection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, errors.Wrap(err, "count games")
	}

	sort := util.ParseOrdering(query.Ordering, gameOrdering, bson.D{{Key: "game_name", Value: 1}})
	cursor, err := s.gameCollection.Find(ctx, filter, findOptions(query.Pagination.Limit, query.Pagination.Skip, sort))
	if err != nil {
		return nil, 0, errors.Wrap(err, "find games")
	}

	var games []models.Game
	if err := cursor.All(ctx, &games); err != nil {
		return nil, 0, errors.Wrap(err, "decode games")
	}

	out, err := s.render(ctx, games...)
	if err != nil {
		return nil, 0, err
	}
	return out, count, nil
}

func (s *gameService) GetGame(ctx context.Context, slug string) (*models.GameResponse, error) {
	game, err := s.findBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	out, err := s.render(ctx, *game)
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (s *gameService) CreateGame(ctx context.Context, actor permissions.Actor, req models.GameRequest) (*models.GameResponse, error) {
	if req.ReleaseDate.IsZero() {
		return nil, NewValidationError("release_date", "This field is required.")
	}

	game := models.Game{
		ID:             primitive.NewObjectID(),
		GameName:       req.GameName,
		Genre:          req.Genre,
		ReleaseDate:    models.NewDate(req.ReleaseDate.Time).Time,
		AgeRestriction: req.AgeRestriction,
		Slug:           slug2.Make(req.GameName),
	}
	if game.Slug == "" {
		return nil, NewValidationError("game_name", "must contain at least one letter or digit")
	}

	if req.ProductHierarchies != nil {
		roots, all, err := s.resolveHierarchies(ctx, *req.ProductHierarchies)
		if err != nil {
			return nil, err
		}
		game.ProductHierarchies = roots
		game.AllProductCategories = all
	}

	if !actor.IsSuperuser {
		return nil, NewValidationError("", "Currently only admins can create games")
	}

	if actorID, err := primitive.ObjectIDFromHex(actor.ID); err == nil {
		game.CreatedBy = &actorID
	}
	now := time.Now()
	game.CreatedAt = now
	game.ModifiedAt = now
	if game.ProductHierarchies == nil {
		game.ProductHierarchies = []primitive.ObjectID{}
		game.AllProductCategories = []primitive.ObjectID{}
	}

	if _, err := s.gameCollection.InsertOne(ctx, game); err != nil {
		return nil, duplicateError(err, "game_name", duplicateGameName)
	}

	out, err := s.render(ctx, game)
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// UpdateGame applies the non-nil fields of req. Writing product_hierarchies
// recomputes all_product_categories; leaving it out keeps both untouched.
func (s *gameService) UpdateGame(ctx context.Context, slug string, req models.GamePatchRequest) (*models.GameResponse, error) {
	game, err := s.findBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	if req.GameName != nil && *req.GameName != game.GameName {
		newSlug := slug2.Make(*req.GameName)
		if newSlug == "" {
			return nil, NewValidationError("game_name", "must contain at least one letter or digit")
		}
		game.GameName = *req.GameName
		game.Slug = newSlug
		set["game_name"] = game.GameName
		set["slug"] = game.Slug
	}
	if req.Genre != nil {
		game.Genre = *req.Genre
		set["genre"] = game.Genre
	}
	if req.ReleaseDate != nil && !req.ReleaseDate.IsZero() {
		game.ReleaseDate = models.NewDate(req.ReleaseDate.Time).Time
		set["release_date"] = game.ReleaseDate
	}
	if req.AgeRestriction != nil {
		game.AgeRestriction = *req.AgeRestriction
		set["age_restriction"] = game.AgeRestriction
	}
	if req.ProductHierarchies != nil {
		roots, all, err := s.resolveHierarchies(ctx, *req.ProductHierarchies)
		if err != nil {
			return nil, err
		}
		game.ProductHierarchies = roots
		game.AllProductCategories = all
		set["product_hierarchies"] = roots
		set["all_product_categories"] = all
	}

	if len(set) > 0 {
		game.ModifiedAt = time.Now()
		set["modified_at"] = game.ModifiedAt
		if _, err := s.gameCollection.UpdateOne(ctx, bson.M{"_id": game.ID}, bson.M{"$set": set}); err != nil {
			return nil, duplicateError(err, "game_name", duplicateGameName)
		}
	}

	out, err := s.render(ctx, *game)
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// DeleteGame removes the game and unlinks its items.
func (s *gameService) DeleteGame(ctx context.Context, slug string) error {
	game, err := s.findBySlug(ctx, slug)
	if err != nil {
		return err
	}

	callback := func(ctx mongo.SessionContext) (any, error) {
		if _, err := s.gameCollection.DeleteOne(ctx, bson.M{"_id": game.ID}); err != nil {
			return nil, err
		}
		_, err := s.itemCollection.UpdateMany(ctx, bson.M{"game": game.ID}, bson.M{"$set": bson.M{"game": nil}})
		return nil, err
	}

	_, err = ExecuteTransaction(ctx, s.client, callback)
	return errors.Wrap(err, "delete game")
}

func (s *gameService) findBySlug(ctx context.Context, slug string) (*models.Game, error) {
	var game models.Game
	err := s.gameCollection.FindOne(ctx, bson.M{"slug": strings.ToLower(slug)}).Decode(&game)
	if err != nil {
		return nil, notFound(err, "game")
	}
	return &game, nil
}

// resolveHierarchies maps category references to top level categories and
// expands them into every category of their trees.
func (s *gameService) resolveHierarchies(ctx context.Context, refs []string) ([]primitive.ObjectID, []primitive.ObjectID, error) {
	idx, err := loadCategoryIndex(ctx, s.categoryCollection)
	if err != nil {
		return nil, nil, errors.Wrap(err, "load categories")
	}

	roots := make([]primitive.ObjectID, 0, len(refs))
	seen := map[primitive.ObjectID]bool{}
	for _, ref := range refs {
		c, ok := idx.bySlugRef(slugFromReference(ref))
		if !ok || !pathOf(c).IsRoot() {
			return nil, nil, NewValidationError("product_hierarchies", "Invalid hyperlink - Object does not exist.")
		}
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		roots = append(roots, c.ID)
	}

	return roots, idx.expand(roots), nil
}

func (s *gameService) render(ctx context.Context, games ...models.Game) ([]models.GameResponse, error) {
	out := make([]models.GameResponse, 0, len(games))
	if len(games) == 0 {
		return out, nil
	}

	idx, err := loadCategoryIndex(ctx, s.categoryCollection)
	if err != nil {
		return nil, errors.Wrap(err, "load categories")
	}

	creators := make([]*primitive.ObjectID, 0, len(games))
	for _, g := range games {
		creators = append(creators, g.CreatedBy)
	}
	emails, err := userEmails(ctx, s.userCollection, uniqueIDs(creators))
	if err != nil {
		return nil, errors.Wrap(err, "resolve creators")
	}

	for _, g := range games {
		hierarchies := make([]string, 0, len(g.ProductHierarchies))
		for _, id := range g.ProductHierarchies {
			if c, ok := idx.get(id); ok {
				hierarchies = append(hierarchies, s.links.Category(c.URLSlug))
			}
		}
		names := make([]string, 0, len(g.AllProductCategories))
		for _, id := range g.AllProductCategories {
			if c, ok := idx.get(id); ok {
				names = append(names, c.CategoryName)
			}
		}

		out = append(out, models.GameResponse{
			URL:                  s.links.Game(g.Slug),
			GameName:             g.GameName,
			Genre:                g.Genre,
			ReleaseDate:          models.NewDate(g.ReleaseDate),
			AgeRestriction:       g.AgeRestriction,
			CreatedBy:            emailOf(emails, g.CreatedBy),
			ProductHierarchies:   hierarchies,
			AllProductCategories: names,
		})
	}
	return out, nil
}
