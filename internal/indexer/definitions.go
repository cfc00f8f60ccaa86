package indexer

import (
	"gamemarket-api-io/api/internal/common"

	"go.mongodb.org/mongo-driver/mongo"
)

// Marketplace returns a manager loaded with the indexes the services rely
// on. The unique ones back the duplicate name, slug and email checks.
func Marketplace(db *mongo.Database, opts Options) *Manager {
	return NewManager(db, opts).
		Unique(common.CategoryCollection, "category_name_unique", "category_name").
		Unique(common.CategoryCollection, "category_slug_unique", "url_slug").
		Index(common.CategoryCollection, "category_parent", "parent_category").
		Index(common.CategoryCollection, "category_path", "base_hierarchy", "hierarchy_identifier").
		Unique(common.GameCollection, "game_name_unique", "game_name").
		Unique(common.GameCollection, "game_slug_unique", "slug").
		Index(common.GameCollection, "game_categories", "all_product_categories").
		Index(common.ItemCollection, "item_seller", "seller").
		Index(common.ItemCollection, "item_game", "game").
		Index(common.ItemCollection, "item_category", "category").
		Index(common.ItemAttributeCollection, "attribute_object", "object").
		Unique(common.UserCollection, "user_email_unique", "email").
		Unique(common.CustomerProfileCollection, "profile_user_unique", "user_id").
		Unique(common.SubscriptionCollection, "subscription_user_unique", "user_id")
}
