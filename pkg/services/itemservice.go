package services

import (
	"context"
	"time"

	"gamemarket-api-io/api/internal/common"
	"gamemarket-api-io/api/pkg/models"
	"gamemarket-api-io/api/pkg/util"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var itemOrdering = map[string]string{
	"category": "category",
	"seller":   "seller",
	"game":     "game",
}

type itemService struct {
	client              *mongo.Client
	itemCollection      *mongo.Collection
	attributeCollection *mongo.Collection
	categoryCollection  *mongo.Collection
	gameCollection      *mongo.Collection
	userCollection      *mongo.Collection
	media               util.MediaStore
}

func NewItemService(db *mongo.Database, media util.MediaStore) ItemService {
	return &itemService{
		client:              db.Client(),
		itemCollection:      db.Collection(common.ItemCollection),
		attributeCollection: db.Collection(common.ItemAttributeCollection),
		categoryCollection:  db.Collection(common.CategoryCollection),
		gameCollection:      db.Collection(common.GameCollection),
		userCollection:      db.Collection(common.UserCollection),
		media:               media,
	}
}

func (s *itemService) ListItems(ctx context.Context, query ListQuery) ([]models.ItemResponse, int64, error) {
	filter, err := itemFilter(query.Params)
	if err != nil {
		return nil, 0, err
	}

	if search := searchFilter(query.Search, "game_name"); search != nil {
		gameIDs, err := s.gameCollection.Distinct(ctx, "_id", search)
		if err != nil {
			return nil, 0, errors.Wrap(err, "search games")
		}
		filter = merge(filter, bson.M{"game": bson.M{"$in": gameIDs}})
	}

	count, err := s.itemCollection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, errors.Wrap(err, "count items")
	}

	sort := util.ParseOrdering(query.Ordering, itemOrdering, bson.D{{Key: "category", Value: 1}})
	sort = append(sort, bson.E{Key: "_id", Value: 1})
	cursor, err := s.itemCollection.Find(ctx, filter, findOptions(query.Pagination.Limit, query.Pagination.Skip, sort))
	if err != nil {
		return nil, 0, errors.Wrap(err, "find items")
	}

	var items []models.Item
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, errors.Wrap(err, "decode items")
	}

	out, err := s.render(ctx, items...)
	if err != nil {
		return nil, 0, err
	}
	return out, count, nil
}

func (s *itemService) GetItem(ctx context.Context, id primitive.ObjectID) (*models.ItemResponse, error) {
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	out, err := s.render(ctx, *item)
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// CreateItem lists a new item for sellerID, counting it against the seller's
// listed offers limit.
func (s *itemService) CreateItem(ctx context.Context, sellerID primitive.ObjectID, req models.ItemRequest) (*models.ItemResponse, error) {
	var seller models.User
	err := s.userCollection.FindOne(ctx, bson.M{"_id": sellerID},
		options.FindOne().SetProjection(bson.M{"listed_offers_limit": 1})).Decode(&seller)
	if err != nil {
		return nil, notFound(err, "seller")
	}

	limit := seller.ListedOffersLimit
	if limit <= 0 {
		limit = models.DefaultListedOffersLimit
	}
	err = CheckRecordLimit(ctx, s.itemCollection, "seller", sellerID, int64(limit), "",
		"Listed offers limit reached. Upgrade your subscription to list more items.")
	if err != nil {
		return nil, err
	}

	item := models.Item{
		ID:     primitive.NewObjectID(),
		Seller: sellerID,
	}
	if err := s.apply(ctx, &item, req); err != nil {
		return nil, err
	}
	item.CreatedAt = time.Now()
	item.ModifiedAt = item.CreatedAt

	if _, err := s.itemCollection.InsertOne(ctx, item); err != nil {
		return nil, errors.Wrap(err, "insert item")
	}

	out, err := s.render(ctx, item)
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (s *itemService) UpdateItem(ctx context.Context, id primitive.ObjectID, req models.ItemRequest) (*models.ItemResponse, error) {
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, item, req); err != nil {
		return nil, err
	}
	item.ModifiedAt = time.Now()

	_, err = s.itemCollection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"name":        item.Name,
		"description": item.Description,
		"ingame":      item.Ingame,
		"category":    item.Category,
		"game":        item.Game,
		"price":       item.Price,
		"modified_at": item.ModifiedAt,
	}})
	if err != nil {
		return nil, errors.Wrap(err, "update item")
	}

	out, err := s.render(ctx, *item)
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// DeleteItem removes the item together with its attributes.
func (s *itemService) DeleteItem(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}

	callback := func(ctx mongo.SessionContext) (any, error) {
		if _, err := s.attributeCollection.DeleteMany(ctx, bson.M{"object": id}); err != nil {
			return nil, err
		}
		_, err := s.itemCollection.DeleteOne(ctx, bson.M{"_id": id})
		return nil, err
	}

	_, err := ExecuteTransaction(ctx, s.client, callback)
	return errors.Wrap(err, "delete item")
}

func (s *itemService) UpdateItemImage(ctx context.Context, id primitive.ObjectID, file models.File) (*models.ItemResponse, error) {
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.media == nil {
		return nil, errors.New("media storage is not configured")
	}

	uploaded, err := s.media.FileUpload(ctx, file)
	if err != nil {
		return nil, errors.Wrap(err, "upload item image")
	}

	item.ImageURL = uploaded.URL
	item.ModifiedAt = time.Now()
	_, err = s.itemCollection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"image_url":   item.ImageURL,
		"modified_at": item.ModifiedAt,
	}})
	if err != nil {
		return nil, errors.Wrap(err, "update item image")
	}

	out, err := s.render(ctx, *item)
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (s *itemService) find(ctx context.Context, id primitive.ObjectID) (*models.Item, error) {
	var item models.Item
	if err := s.itemCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&item); err != nil {
		return nil, notFound(err, "item")
	}
	return &item, nil
}

// apply copies the request onto item after checking the referenced category
// and game exist.
func (s *itemService) apply(ctx context.Context, item *models.Item, req models.ItemRequest) error {
	category, err := s.reference(ctx, s.categoryCollection, "category", req.Category)
	if err != nil {
		return err
	}
	game, err := s.reference(ctx, s.gameCollection, "game", req.Game)
	if err != nil {
		return err
	}

	item.Name = req.Name
	item.Description = req.Description
	item.Ingame = req.Ingame != nil && *req.Ingame
	item.Price = *req.Price
	item.Category = category
	item.Game = game
	return nil
}

func (s *itemService) reference(ctx context.Context, coll *mongo.Collection, field string, ref *string) (*primitive.ObjectID, error) {
	if ref == nil || *ref == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(*ref)
	if err != nil {
		return nil, NewValidationError(field, "Incorrect type. Expected pk value.")
	}
	n, err := coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, errors.Wrap(err, "check "+field)
	}
	if n == 0 {
		return nil, NewValidationError(field, "Invalid pk \"%s\" - object does not exist.", *ref)
	}
	return &id, nil
}

func (s *itemService) render(ctx context.Context, items ...models.Item) ([]models.ItemResponse, error) {
	out := make([]models.ItemResponse, 0, len(items))
	if len(items) == 0 {
		return out, nil
	}

	ids := make([]primitive.ObjectID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	cursor, err := s.attributeCollection.Find(ctx, bson.M{"object": bson.M{"$in": ids}})
	if err != nil {
		return nil, errors.Wrap(err, "find attributes")
	}
	var attributes []models.ItemAttribute
	if err := cursor.All(ctx, &attributes); err != nil {
		return nil, errors.Wrap(err, "decode attributes")
	}

	byItem := map[primitive.ObjectID][]models.ItemAttributeResponse{}
	for _, a := range attributes {
		if a.Object == nil {
			continue
		}
		byItem[*a.Object] = append(byItem[*a.Object], renderAttribute(a))
	}

	for _, it := range items {
		attrs := byItem[it.ID]
		if attrs == nil {
			attrs = []models.ItemAttributeResponse{}
		}
		out = append(out, models.ItemResponse{
			ID:          it.ID.Hex(),
			Name:        it.Name,
			Description: it.Description,
			Ingame:      it.Ingame,
			Category:    hexOf(it.Category),
			Game:        hexOf(it.Game),
			Price:       it.Price,
			Seller:      it.Seller.Hex(),
			ImageURL:    it.ImageURL,
			Attributes:  attrs,
		})
	}
	return out, nil
}

func hexOf(id *primitive.ObjectID) *string {
	if id == nil {
		return nil
	}
	return stringPtr(id.Hex())
}
