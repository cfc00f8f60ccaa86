package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// TransactionCallback defines the callback function for database transactions
type TransactionCallback func(ctx mongo.SessionContext) (any, error)

// ExecuteTransaction runs callback inside a majority write concern
// transaction. WithTransaction commits on success and retries transient
// errors.
func ExecuteTransaction(ctx context.Context, client *mongo.Client, callback TransactionCallback) (any, error) {
	wc := writeconcern.New(writeconcern.WMajority())
	txnOptions := options.Transaction().SetWriteConcern(wc)
	session, err := client.StartSession()
	if err != nil {
		return nil, err
	}
	defer session.EndSession(ctx)

	return session.WithTransaction(ctx, callback, txnOptions)
}

// CheckRecordLimit checks if a user has reached a specified limit for a collection
func CheckRecordLimit(ctx context.Context, collection *mongo.Collection, userFieldName string, userID primitive.ObjectID, limit int64, field, errorMessage string) error {
	filter := bson.M{userFieldName: userID}
	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return err
	}

	if count >= limit {
		return NewValidationError(field, "%s", errorMessage)
	}

	return nil
}

// findOptions applies pagination and sorting to a find call.
func findOptions(limit, skip int, sort bson.D) *options.FindOptions {
	opts := options.Find().SetSort(sort)
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	if skip > 0 {
		opts.SetSkip(int64(skip))
	}
	return opts
}

// userEmails resolves user ids to their email addresses.
func userEmails(ctx context.Context, users *mongo.Collection, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	out := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	cursor, err := users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find().SetProjection(bson.M{"email": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc struct {
			ID    primitive.ObjectID `bson:"_id"`
			Email string             `bson:"email"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out[doc.ID] = doc.Email
	}
	return out, cursor.Err()
}

func uniqueIDs(ids []*primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]bool, len(ids))
	var out []primitive.ObjectID
	for _, id := range ids {
		if id == nil || seen[*id] {
			continue
		}
		seen[*id] = true
		out = append(out, *id)
	}
	return out
}

func stringPtr(s string) *string {
	return &s
}
