package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const DefaultListedOffersLimit = 5

// User is a marketplace account. Email is the login name.
type User struct {
	ID                primitive.ObjectID `bson:"_id" json:"id"`
	Email             string             `bson:"email" json:"email" validate:"required,email,max=255"`
	Name              string             `bson:"name" json:"name" validate:"required,max=20"`
	Surname           string             `bson:"surname" json:"surname" validate:"required,max=20"`
	DateOfBirth       time.Time          `bson:"date_of_birth" json:"date_of_birth"`
	Rating            *float64           `bson:"rating" json:"rating" validate:"omitempty,min=0,max=10"`
	ListedOffersLimit int                `bson:"listed_offers_limit" json:"listed_offers_limit"`
	JoinedOn          time.Time          `bson:"joined_on" json:"joined_on"`
	LastLogin         *time.Time         `bson:"last_login" json:"last_login"`
	IsSuperuser       bool               `bson:"is_superuser" json:"is_superuser"`
	IsActive          bool               `bson:"is_active" json:"is_active"`
	IsAdmin           bool               `bson:"is_admin" json:"is_admin"`
	IsStaff           bool               `bson:"is_staff" json:"is_staff"`
	PasswordDigest    string             `bson:"password_digest" json:"-"`
	GoogleAccount     bool               `bson:"google_account" json:"-"`
	CustomerProfile   *CustomerProfile   `bson:"customerprofile,omitempty" json:"customerprofile"`
}

// FullName is name and surname separated by a space.
func (u User) FullName() string {
	return u.Name + " " + u.Surname
}

// CustomerProfile keeps per user marketplace statistics.
type CustomerProfile struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user"`
	ItemsSold   int                `bson:"items_sold" json:"items_sold"`
	ItemsBought int                `bson:"items_bought" json:"items_bought"`
	DaysInRow   int                `bson:"days_in_row" json:"days_in_row"`
}

// RegistrationRequest is the body of a sign up call. Password2 only serves the
// equality check and is never stored.
type RegistrationRequest struct {
	Email       string `json:"email" validate:"required,email,max=255"`
	Password    string `json:"password" validate:"required"`
	Password2   string `json:"password2" validate:"required"`
	DateOfBirth Date   `json:"date_of_birth"`
	Name        string `json:"name" validate:"required,max=20"`
	Surname     string `json:"surname" validate:"required,max=20"`
}

// SuperuserRequest is what the createsuperuser command collects.
type SuperuserRequest struct {
	Email       string `validate:"required,email,max=255"`
	Password    string `validate:"required"`
	DateOfBirth Date
	Name        string `validate:"required,max=20"`
	Surname     string `validate:"required,max=20"`
}

type TokenObtainRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type TokenRefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

type TokenVerifyRequest struct {
	Token string `json:"token" validate:"required"`
}

type GoogleLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

// GoogleIdentity is the verified content of a google id token.
type GoogleIdentity struct {
	Email         string
	Name          string
	FamilyName    string
	Picture       string
	EmailVerified bool
}

type TokenPair struct {
	Refresh string `json:"refresh"`
	Access  string `json:"access"`
}
