package services

import (
	"context"
	"time"

	"gamemarket-api-io/api/internal/common"
	"gamemarket-api-io/api/pkg/models"

	creditcard "github.com/durango/go-credit-card"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type subscriptionService struct {
	client                 *mongo.Client
	subscriptionCollection *mongo.Collection
	userCollection         *mongo.Collection
}

func NewSubscriptionService(db *mongo.Database) SubscriptionService {
	return &subscriptionService{
		client:                 db.Client(),
		subscriptionCollection: db.Collection(common.SubscriptionCollection),
		userCollection:         db.Collection(common.UserCollection),
	}
}

func (s *subscriptionService) GetSubscription(ctx context.Context, userID primitive.ObjectID) (*models.Subscription, error) {
	var sub models.Subscription
	if err := s.subscriptionCollection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&sub); err != nil {
		return nil, notFound(err, "subscription")
	}
	return &sub, nil
}

// UpgradeSubscription switches the user to req.Plan. Paid plans require a
// valid payment card; only its last four digits and issuer are kept. The
// user's listed offers limit follows the plan.
func (s *subscriptionService) UpgradeSubscription(ctx context.Context, userID primitive.ObjectID, req models.SubscriptionUpgradeRequest) (*models.Subscription, error) {
	if err := structError(common.Validate, req); err != nil {
		return nil, err
	}

	now := time.Now()
	set := bson.M{
		"plan":                req.Plan,
		"listed_offers_limit": req.Plan.OffersLimit(),
		"renewed_at":          now,
	}
	unset := bson.M{}

	if req.Plan == models.PlanFree {
		unset["card_last_four"] = ""
		unset["card_company"] = ""
	} else {
		lastFour, company, err := validateCard(req)
		if err != nil {
			return nil, err
		}
		set["card_last_four"] = lastFour
		set["card_company"] = company
	}

	update := bson.M{"$set": set, "$setOnInsert": bson.M{"created_at": now}}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	callback := func(ctx mongo.SessionContext) (any, error) {
		var sub models.Subscription
		err := s.subscriptionCollection.FindOneAndUpdate(ctx,
			bson.M{"user_id": userID},
			update,
			options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
		).Decode(&sub)
		if err != nil {
			return nil, err
		}

		res, err := s.userCollection.UpdateOne(ctx, bson.M{"_id": userID},
			bson.M{"$set": bson.M{"listed_offers_limit": req.Plan.OffersLimit()}})
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			return nil, ErrNotFound
		}
		return &sub, nil
	}

	result, err := ExecuteTransaction(ctx, s.client, callback)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "upgrade subscription")
	}
	return result.(*models.Subscription), nil
}

func validateCard(req models.SubscriptionUpgradeRequest) (string, string, error) {
	card := creditcard.Card{
		Number:  req.CardNumber,
		Cvv:     req.CVV,
		Month:   req.ExpiryMonth,
		Year:    req.ExpiryYear,
		Company: creditcard.Company{},
	}

	if err := card.Validate(true); err != nil {
		return "", "", NewValidationError("card_number", "%s", err.Error())
	}

	lastFour, err := card.LastFour()
	if err != nil {
		return "", "", NewValidationError("card_number", "%s", err.Error())
	}

	company, err := card.MethodValidate()
	if err != nil {
		return lastFour, "", nil
	}
	return lastFour, company.Short, nil
}
