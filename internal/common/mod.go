package common

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Database collections
const (
	CategoryCollection        = "Category"
	GameCollection            = "Game"
	ItemCollection            = "Item"
	ItemAttributeCollection   = "ItemAttribute"
	UserCollection            = "User"
	CustomerProfileCollection = "CustomerProfile"
	SubscriptionCollection    = "Subscription"
)

var Validate = validator.New()

const (
	REQUEST_TIMEOUT_SECS     = 2 * 60 * time.Second
	MONGO_DUPLICATE_KEY_CODE = 11000

	DEFAULT_PAGE_LIMIT = 20
	MAX_PAGE_LIMIT     = 100

	API_PREFIX = "/api/v1"
)
