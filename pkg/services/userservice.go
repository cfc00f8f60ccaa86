package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
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

const duplicateEmail = "user with this email address already exists."

var userOrdering = map[string]string{
	"id":                            "_id",
	"name":                          "name",
	"surname":                       "surname",
	"customerprofile__items_sold":   "customerprofile.items_sold",
	"customerprofile__items_bought": "customerprofile.items_bought",
	"customerprofile__days_in_row":  "customerprofile.days_in_row",
}

type userService struct {
	client                 *mongo.Client
	userCollection         *mongo.Collection
	profileCollection      *mongo.Collection
	subscriptionCollection *mongo.Collection
}

func NewUserService(db *mongo.Database) UserService {
	return &userService{
		client:                 db.Client(),
		userCollection:         db.Collection(common.UserCollection),
		profileCollection:      db.Collection(common.CustomerProfileCollection),
		subscriptionCollection: db.Collection(common.SubscriptionCollection),
	}
}

// NormalizeEmail lower-cases the domain part of an email address.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}

// ListUsers returns users with their customer profile embedded, so ordering
// by profile fields is possible.
func (s *userService) ListUsers(ctx context.Context, query ListQuery) ([]models.User, int64, error) {
	filter, err := userFilter(query.Params, query.Search)
	if err != nil {
		return nil, 0, err
	}

	count, err := s.userCollection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, errors.Wrap(err, "count users")
	}

	sort := util.ParseOrdering(query.Ordering, userOrdering, bson.D{{Key: "_id", Value: 1}})
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$lookup", Value: bson.M{
			"from":         common.CustomerProfileCollection,
			"localField":   "_id",
			"foreignField": "user_id",
			"as":           "customerprofile",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$customerprofile", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$sort", Value: sort}},
	}
	if query.Pagination.Skip > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$skip", Value: query.Pagination.Skip}})
	}
	if query.Pagination.Limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: query.Pagination.Limit}})
	}

	cursor, err := s.userCollection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, errors.Wrap(err, "aggregate users")
	}

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, 0, errors.Wrap(err, "decode users")
	}
	return users, count, nil
}

func (s *userService) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	if err := s.userCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, notFound(err, "user")
	}

	var profile models.CustomerProfile
	err := s.profileCollection.FindOne(ctx, bson.M{"user_id": id}).Decode(&profile)
	switch {
	case err == nil:
		user.CustomerProfile = &profile
	case !errors.Is(err, mongo.ErrNoDocuments):
		return nil, errors.Wrap(err, "find customer profile")
	}

	return &user, nil
}

// Register creates a regular account with its customer profile and a free
// subscription.
func (s *userService) Register(ctx context.Context, req models.RegistrationRequest) (*models.User, error) {
	if err := util.ValidatePasswordPair(req.Password, req.Password2); err != nil {
		return nil, NewValidationError("", "%s", err.Error())
	}
	if req.DateOfBirth.IsZero() {
		return nil, NewValidationError("date_of_birth", "This field is required.")
	}

	user, err := s.newUser(req.Email, req.Name, req.Surname, req.DateOfBirth, req.Password)
	if err != nil {
		return nil, err
	}
	if err := s.insertWithProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateSuperuser creates an account with every privilege flag set. Admin
// accounts get no customer profile or subscription.
func (s *userService) CreateSuperuser(ctx context.Context, req models.SuperuserRequest) (*models.User, error) {
	if err := structError(common.Validate, req); err != nil {
		return nil, err
	}
	if req.DateOfBirth.IsZero() {
		return nil, NewValidationError("date_of_birth", "This field is required.")
	}

	user, err := s.newUser(req.Email, req.Name, req.Surname, req.DateOfBirth, req.Password)
	if err != nil {
		return nil, err
	}
	user.IsAdmin = true
	user.IsSuperuser = true
	user.IsStaff = true

	if _, err := s.userCollection.InsertOne(ctx, user); err != nil {
		return nil, duplicateError(err, "email", duplicateEmail)
	}
	return user, nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.userCollection.FindOne(ctx, bson.M{"email": NormalizeEmail(email)}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, errors.Wrap(err, "find user")
	}

	if !user.IsActive || user.PasswordDigest == "" {
		return nil, ErrInvalidCredentials
	}
	if err := util.CheckPassword(user.PasswordDigest, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	s.touchLastLogin(ctx, &user)
	return &user, nil
}

// AuthenticateGoogle signs in the owner of a verified google identity,
// creating the account on first use.
func (s *userService) AuthenticateGoogle(ctx context.Context, identity models.GoogleIdentity) (*models.User, error) {
	if identity.Email == "" {
		return nil, NewValidationError("id_token", "token carries no email")
	}

	var user models.User
	err := s.userCollection.FindOne(ctx, bson.M{"email": NormalizeEmail(identity.Email)}).Decode(&user)
	switch {
	case err == nil:
		if !user.IsActive {
			return nil, ErrInvalidCredentials
		}
	case errors.Is(err, mongo.ErrNoDocuments):
		created, err := s.newUser(identity.Email, identity.Name, identity.FamilyName, models.Date{}, "")
		if err != nil {
			return nil, err
		}
		created.GoogleAccount = true
		if err := s.insertWithProfile(ctx, created); err != nil {
			return nil, err
		}
		user = *created
	default:
		return nil, errors.Wrap(err, "find user")
	}

	s.touchLastLogin(ctx, &user)
	return &user, nil
}

// newUser builds an active account. An empty password stores a random digest
// nobody knows, so the account can only sign in through google.
func (s *userService) newUser(email, name, surname string, dob models.Date, password string) (*models.User, error) {
	if password == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, err
		}
		password = hex.EncodeToString(buf)
	}
	digest, err := util.HashPassword(password)
	if err != nil {
		return nil, err
	}

	return &models.User{
		ID:                primitive.NewObjectID(),
		Email:             NormalizeEmail(email),
		Name:              name,
		Surname:           surname,
		DateOfBirth:       dob.Time,
		ListedOffersLimit: models.DefaultListedOffersLimit,
		JoinedOn:          time.Now(),
		IsActive:          true,
		PasswordDigest:    digest,
	}, nil
}

// insertWithProfile stores a regular user together with its customer profile
// and free subscription in one transaction.
func (s *userService) insertWithProfile(ctx context.Context, user *models.User) error {
	profile := models.CustomerProfile{ID: primitive.NewObjectID(), UserID: user.ID}
	subscription := models.Subscription{
		ID:                primitive.NewObjectID(),
		UserID:            user.ID,
		Plan:              models.PlanFree,
		ListedOffersLimit: models.PlanFree.OffersLimit(),
		CreatedAt:         user.JoinedOn,
	}

	callback := func(ctx mongo.SessionContext) (any, error) {
		if _, err := s.userCollection.InsertOne(ctx, user); err != nil {
			return nil, err
		}
		if _, err := s.profileCollection.InsertOne(ctx, profile); err != nil {
			return nil, err
		}
		_, err := s.subscriptionCollection.InsertOne(ctx, subscription)
		return nil, err
	}

	if _, err := ExecuteTransaction(ctx, s.client, callback); err != nil {
		return duplicateError(err, "email", duplicateEmail)
	}
	user.CustomerProfile = &profile
	return nil
}

func (s *userService) touchLastLogin(ctx context.Context, user *models.User) {
	now := time.Now()
	user.LastLogin = &now
	_, err := s.userCollection.UpdateOne(ctx, bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{"last_login": now}}, options.Update())
	util.LogError("update last login", err, "user", user.ID.Hex())
}
