package services

import (
	"context"

	"gamemarket-api-io/api/internal/common"
	"gamemarket-api-io/api/pkg/models"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type itemAttributeService struct {
	attributeCollection *mongo.Collection
	itemCollection      *mongo.Collection
}

func NewItemAttributeService(db *mongo.Database) ItemAttributeService {
	return &itemAttributeService{
		attributeCollection: db.Collection(common.ItemAttributeCollection),
		itemCollection:      db.Collection(common.ItemCollection),
	}
}

func (s *itemAttributeService) ListItemAttributes(ctx context.Context, query ListQuery) ([]models.ItemAttributeResponse, int64, error) {
	filter := bson.M{}
	if v := query.Params.Get("object"); v != "" {
		id, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			return nil, 0, NewValidationError("object", "Incorrect type. Expected pk value.")
		}
		filter["object"] = id
	}

	count, err := s.attributeCollection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, errors.Wrap(err, "count attributes")
	}

	sort := bson.D{{Key: "_id", Value: 1}}
	cursor, err := s.attributeCollection.Find(ctx, filter, findOptions(query.Pagination.Limit, query.Pagination.Skip, sort))
	if err != nil {
		return nil, 0, errors.Wrap(err, "find attributes")
	}

	var attributes []models.ItemAttribute
	if err := cursor.All(ctx, &attributes); err != nil {
		return nil, 0, errors.Wrap(err, "decode attributes")
	}

	out := make([]models.ItemAttributeResponse, 0, len(attributes))
	for _, a := range attributes {
		out = append(out, renderAttribute(a))
	}
	return out, count, nil
}

func (s *itemAttributeService) CreateItemAttribute(ctx context.Context, req models.ItemAttributeRequest) (*models.ItemAttributeResponse, error) {
	attribute := models.ItemAttribute{
		ID:                   primitive.NewObjectID(),
		AttributeName:        req.AttributeName,
		AttributeValue:       req.AttributeValue,
		AttributeDescription: req.AttributeDescription,
	}

	if req.Object != nil && *req.Object != "" {
		id, err := primitive.ObjectIDFromHex(*req.Object)
		if err != nil {
			return nil, NewValidationError("object", "Incorrect type. Expected pk value.")
		}
		n, err := s.itemCollection.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return nil, errors.Wrap(err, "check item")
		}
		if n == 0 {
			return nil, NewValidationError("object", "Invalid pk \"%s\" - object does not exist.", *req.Object)
		}
		attribute.Object = &id
	}

	if _, err := s.attributeCollection.InsertOne(ctx, attribute); err != nil {
		return nil, errors.Wrap(err, "insert attribute")
	}

	out := renderAttribute(attribute)
	return &out, nil
}

func (s *itemAttributeService) DeleteItemAttribute(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.attributeCollection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "delete attribute")
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func renderAttribute(a models.ItemAttribute) models.ItemAttributeResponse {
	return models.ItemAttributeResponse{
		ID:                   a.ID.Hex(),
		AttributeName:        a.AttributeName,
		AttributeValue:       a.AttributeValue,
		AttributeDescription: a.AttributeDescription,
		CompleteAttribute:    a.CompleteAttribute(),
		Object:               hexOf(a.Object),
	}
}
