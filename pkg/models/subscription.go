package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SubscriptionPlan string

const (
	PlanFree     SubscriptionPlan = "free"
	PlanStandard SubscriptionPlan = "standard"
	PlanPremium  SubscriptionPlan = "premium"
)

// OffersLimit returns how many items a seller on the plan may list.
func (p SubscriptionPlan) OffersLimit() int {
	switch p {
	case PlanStandard:
		return 20
	case PlanPremium:
		return 100
	default:
		return DefaultListedOffersLimit
	}
}

type Subscription struct {
	ID                primitive.ObjectID `bson:"_id" json:"id"`
	UserID            primitive.ObjectID `bson:"user_id" json:"user"`
	Plan              SubscriptionPlan   `bson:"plan" json:"plan"`
	ListedOffersLimit int                `bson:"listed_offers_limit" json:"listed_offers_limit"`
	CardLastFour      string             `bson:"card_last_four,omitempty" json:"card_last_four,omitempty"`
	CardCompany       string             `bson:"card_company,omitempty" json:"card_company,omitempty"`
	CreatedAt         time.Time          `bson:"created_at" json:"created_at"`
	RenewedAt         *time.Time         `bson:"renewed_at" json:"renewed_at"`
}

// SubscriptionUpgradeRequest moves a user to a paid plan. The card is only
// validated; its number is never stored.
type SubscriptionUpgradeRequest struct {
	Plan        SubscriptionPlan `json:"plan" validate:"required,oneof=free standard premium"`
	CardNumber  string           `json:"card_number" validate:"required_unless=Plan free"`
	CVV         string           `json:"cvv" validate:"required_unless=Plan free"`
	ExpiryMonth string           `json:"expiry_month" validate:"required_unless=Plan free"`
	ExpiryYear  string           `json:"expiry_year" validate:"required_unless=Plan free"`
}
