package services

import (
	"context"
	"testing"
	"time"

	"gamemarket-api-io/api/internal/common"
	"gamemarket-api-io/api/pkg/models"
	"gamemarket-api-io/api/pkg/permissions"
	"gamemarket-api-io/api/pkg/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const ns = "gamemarket.test"

var testLinks = Links{Base: "http://testserver"}

func toDoc(t *testing.T, v any) bson.D {
	t.Helper()
	raw, err := bson.Marshal(v)
	require.NoError(t, err)
	var doc bson.D
	require.NoError(t, bson.Unmarshal(raw, &doc))
	return doc
}

func cursor(t *testing.T, values ...any) bson.D {
	t.Helper()
	docs := make([]bson.D, 0, len(values))
	for _, v := range values {
		docs = append(docs, toDoc(t, v))
	}
	return mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, docs...)
}

func countResponse(n int32) bson.D {
	return mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: n}})
}

func newMockTest(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := models.ParseDate(s)
	require.NoError(t, err)
	return d.Time
}

func superuser() permissions.Actor {
	return permissions.Actor{ID: primitive.NewObjectID().Hex(), Email: "admin@example.com", Authenticated: true, IsSuperuser: true}
}

func TestCategoryService(t *testing.T) {
	mt := newMockTest(t)
	defer mt.Close()

	mt.Run("get renders the subtree", func(mt *mtest.T) {
		categories := sampleCategories()
		mt.AddMockResponses(cursor(t, categories[0], categories[1], categories[2], categories[3]))

		detail, err := NewCategoryService(mt.DB, testLinks).GetCategory(context.Background(), "Items")
		require.NoError(t, err)
		assert.Equal(t, "http://testserver/api/v1/products/categories/items", detail.URL)
		assert.Nil(t, detail.ParentCategory)
		require.Len(t, detail.ChildCategories, 2)
		assert.Equal(t, "Armor", detail.ChildCategories[0].CategoryName)
		assert.Equal(t, "Weapons", detail.ChildCategories[1].CategoryName)
		require.Len(t, detail.ChildCategories[1].ChildCategories, 1)
		assert.Equal(t, "Swords", detail.ChildCategories[1].ChildCategories[0].CategoryName)
	})

	mt.Run("get unknown slug", func(mt *mtest.T) {
		mt.AddMockResponses(cursor(t))

		_, err := NewCategoryService(mt.DB, testLinks).GetCategory(context.Background(), "ghosts")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	mt.Run("create requires a superuser", func(mt *mtest.T) {
		mt.AddMockResponses(cursor(t))

		actor := permissions.Actor{ID: primitive.NewObjectID().Hex(), Authenticated: true, IsAdmin: true}
		_, err := NewCategoryService(mt.DB, testLinks).CreateCategory(context.Background(), actor,
			models.CategoryRequest{CategoryName: "Items", HierarchyIdentifier: "1"})

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "Currently only admins can create categories", verr.Message)
	})

	mt.Run("create rejects identifiers under a parent", func(mt *mtest.T) {
		mt.AddMockResponses(cursor(t, sampleCategories()[0]))

		parent := "Items"
		_, err := NewCategoryService(mt.DB, testLinks).CreateCategory(context.Background(), superuser(),
			models.CategoryRequest{CategoryName: "Runes", ParentCategory: &parent, HierarchyIdentifier: "5"})

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "hierarchy_identifier", verr.Field)
	})

	mt.Run("create under missing parent", func(mt *mtest.T) {
		mt.AddMockResponses(cursor(t))

		parent := "Ghosts"
		_, err := NewCategoryService(mt.DB, testLinks).CreateCategory(context.Background(), superuser(),
			models.CategoryRequest{CategoryName: "Runes", ParentCategory: &parent})

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "Object with category_name=Ghosts does not exist.", verr.Message)
	})

	mt.Run("create child derives its path", func(mt *mtest.T) {
		mt.AddMockResponses(cursor(t, sampleCategories()[0]), mtest.CreateSuccessResponse())

		parent := "Items"
		detail, err := NewCategoryService(mt.DB, testLinks).CreateCategory(context.Background(), superuser(),
			models.CategoryRequest{CategoryName: "Magic Runes", ParentCategory: &parent})
		require.NoError(t, err)
		assert.Equal(t, "1", detail.BaseHierarchy)
		assert.Equal(t, "11", detail.HierarchyIdentifier)
		assert.Equal(t, "Items", *detail.ParentCategory)
		assert.Equal(t, "admin@example.com", *detail.CreatedBy)
		assert.Equal(t, "http://testserver/api/v1/products/categories/magic-runes", detail.URL)
	})

	mt.Run("create duplicate name", func(mt *mtest.T) {
		mt.AddMockResponses(cursor(t), mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "duplicate key error",
		}))

		_, err := NewCategoryService(mt.DB, testLinks).CreateCategory(context.Background(), superuser(),
			models.CategoryRequest{CategoryName: "Items", HierarchyIdentifier: "1"})

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "category_name", verr.Field)
		assert.Equal(t, duplicateCategoryName, verr.Message)
	})
}

func commandNames(mt *mtest.T) []string {
	var names []string
	for _, evt := range mt.GetAllStartedEvents() {
		names = append(names, evt.CommandName)
	}
	return names
}

func startedCommand(mt *mtest.T, name string) bson.Raw {
	for _, evt := range mt.GetAllStartedEvents() {
		if evt.CommandName == name {
			return evt.Command
		}
	}
	mt.Fatalf("no %s command was sent", name)
	return nil
}

func TestCategoryServiceUpdateAndDelete(t *testing.T) {
	mt := newMockTest(t)
	defer mt.Close()

	reading := models.Category{ID: primitive.NewObjectID(), CategoryName: "Reading", URLSlug: "reading", BaseHierarchy: "2", HierarchyIdentifier: "2"}

	mt.Run("reparent moves only the node", func(mt *mtest.T) {
		categories := sampleCategories()
		items, weapons, armor, swords := categories[0], categories[1], categories[2], categories[3]

		moved := weapons
		moved.ParentCategory = &reading.ID
		moved.BaseHierarchy, moved.HierarchyIdentifier = "2", "22"

		mt.AddMockResponses(
			cursor(t, items, weapons, armor, swords, reading),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			cursor(t, items, moved, armor, swords, reading),
		)

		parent := "Reading"
		detail, err := NewCategoryService(mt.DB, testLinks).UpdateCategory(context.Background(), "weapons",
			models.CategoryUpdateRequest{ParentCategory: &parent})
		require.NoError(t, err)
		assert.Equal(t, "2", detail.BaseHierarchy)
		assert.Equal(t, "22", detail.HierarchyIdentifier)
		assert.Equal(t, "Reading", *detail.ParentCategory)

		require.Len(t, detail.ChildCategories, 1)
		assert.Equal(t, "1", detail.ChildCategories[0].BaseHierarchy)
		assert.Equal(t, "111", detail.ChildCategories[0].HierarchyIdentifier)

		update := startedCommand(mt, "update")
		assert.Equal(t, "22", update.Lookup("updates", "0", "u", "$set", "hierarchy_identifier").StringValue())
		assert.Equal(t, "2", update.Lookup("updates", "0", "u", "$set", "base_hierarchy").StringValue())
		assert.Equal(t, weapons.ID, update.Lookup("updates", "0", "q", "_id").ObjectID())
	})

	mt.Run("reparent under own subtree", func(mt *mtest.T) {
		categories := sampleCategories()
		svc := NewCategoryService(mt.DB, testLinks)

		for _, tc := range []struct{ slug, parent string }{{"items", "Swords"}, {"weapons", "Weapons"}} {
			mt.AddMockResponses(cursor(t, categories[0], categories[1], categories[2], categories[3]))

			parent := tc.parent
			_, err := svc.UpdateCategory(context.Background(), tc.slug, models.CategoryUpdateRequest{ParentCategory: &parent})

			var verr *ValidationError
			require.ErrorAs(t, err, &verr, tc.slug)
			assert.Equal(t, "parent_category", verr.Field)
		}
		assert.NotContains(t, commandNames(mt), "update")
	})

	mt.Run("root identifier edit is ignored", func(mt *mtest.T) {
		categories := sampleCategories()
		mt.AddMockResponses(cursor(t, categories[0], categories[1], categories[2], categories[3]))

		identifier := "5"
		detail, err := NewCategoryService(mt.DB, testLinks).UpdateCategory(context.Background(), "items",
			models.CategoryUpdateRequest{HierarchyIdentifier: &identifier})
		require.NoError(t, err)
		assert.Equal(t, "1", detail.HierarchyIdentifier)
		assert.Equal(t, "1", detail.BaseHierarchy)
		assert.Equal(t, []string{"find"}, commandNames(mt))
	})

	mt.Run("rename updates the slug", func(mt *mtest.T) {
		categories := sampleCategories()
		renamed := categories[1]
		renamed.CategoryName, renamed.URLSlug = "Melee Weapons", "melee-weapons"

		mt.AddMockResponses(
			cursor(t, categories[0], categories[1], categories[2], categories[3]),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			cursor(t, categories[0], renamed, categories[2], categories[3]),
		)

		name := "Melee Weapons"
		detail, err := NewCategoryService(mt.DB, testLinks).UpdateCategory(context.Background(), "Weapons",
			models.CategoryUpdateRequest{CategoryName: &name})
		require.NoError(t, err)
		assert.Equal(t, "Melee Weapons", detail.CategoryName)
		assert.Equal(t, "http://testserver/api/v1/products/categories/melee-weapons", detail.URL)
		assert.Equal(t, "11", detail.HierarchyIdentifier)

		set := startedCommand(mt, "update").Lookup("updates", "0", "u", "$set")
		assert.Equal(t, "melee-weapons", set.Document().Lookup("url_slug").StringValue())
		_, err = set.Document().LookupErr("hierarchy_identifier")
		assert.Error(t, err)
	})

	mt.Run("update unknown slug", func(mt *mtest.T) {
		mt.AddMockResponses(cursor(t))

		name := "Anything"
		_, err := NewCategoryService(mt.DB, testLinks).UpdateCategory(context.Background(), "ghosts",
			models.CategoryUpdateRequest{CategoryName: &name})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	mt.Run("delete cascades to the subtree", func(mt *mtest.T) {
		categories := sampleCategories()
		weapons, swords := categories[1], categories[3]

		mt.AddMockResponses(
			cursor(t, categories[0], categories[1], categories[2], categories[3]),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 2}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 3}, bson.E{Key: "nModified", Value: 3}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateSuccessResponse(),
		)

		require.NoError(t, NewCategoryService(mt.DB, testLinks).DeleteCategory(context.Background(), "weapons"))
		assert.Equal(t, []string{"find", "delete", "update", "update", "commitTransaction"}, commandNames(mt))

		idsOf := func(v bson.RawValue) []primitive.ObjectID {
			values, err := v.Array().Values()
			require.NoError(t, err)
			var ids []primitive.ObjectID
			for _, value := range values {
				ids = append(ids, value.ObjectID())
			}
			return ids
		}
		subtree := []primitive.ObjectID{weapons.ID, swords.ID}

		events := mt.GetAllStartedEvents()
		deleted := events[1].Command.Lookup("deletes", "0", "q", "_id", "$in")
		assert.ElementsMatch(t, subtree, idsOf(deleted))

		items := events[2].Command
		assert.Equal(t, common.ItemCollection, items.Lookup("update").StringValue())
		assert.Equal(t, bson.TypeNull, items.Lookup("updates", "0", "u", "$set", "category").Type)
		assert.ElementsMatch(t, subtree, idsOf(items.Lookup("updates", "0", "q", "category", "$in")))

		games := events[3].Command
		assert.Equal(t, common.GameCollection, games.Lookup("update").StringValue())
		assert.ElementsMatch(t, subtree, idsOf(games.Lookup("updates", "0", "u", "$pull", "product_hierarchies", "$in")))
		assert.ElementsMatch(t, subtree, idsOf(games.Lookup("updates", "0", "u", "$pull", "all_product_categories", "$in")))
	})

	mt.Run("delete unknown slug", func(mt *mtest.T) {
		mt.AddMockResponses(cursor(t))

		err := NewCategoryService(mt.DB, testLinks).DeleteCategory(context.Background(), "ghosts")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestGameService(t *testing.T) {
	mt := newMockTest(t)
	defer mt.Close()

	mt.Run("list renders hierarchies", func(mt *mtest.T) {
		categories := sampleCategories()
		game := models.Game{
			ID:                   primitive.NewObjectID(),
			GameName:             "World of Warcraft",
			Genre:                models.GenreMMORPG,
			AgeRestriction:       12,
			Slug:                 "world-of-warcraft",
			ProductHierarchies:   []primitive.ObjectID{categories[0].ID},
			AllProductCategories: []primitive.ObjectID{categories[0].ID, categories[1].ID},
		}
		mt.AddMockResponses(
			countResponse(1),
			cursor(t, game),
			cursor(t, categories[0], categories[1]),
		)

		games, count, err := NewGameService(mt.DB, testLinks).ListGames(context.Background(), ListQuery{})
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)
		require.Len(t, games, 1)
		assert.Equal(t, "http://testserver/api/v1/products/games/world-of-warcraft", games[0].URL)
		assert.Equal(t, []string{"http://testserver/api/v1/products/categories/items"}, games[0].ProductHierarchies)
		assert.Equal(t, []string{"Items", "Weapons"}, games[0].AllProductCategories)
		assert.Nil(t, games[0].CreatedBy)
	})

	mt.Run("create requires release date", func(mt *mtest.T) {
		_, err := NewGameService(mt.DB, testLinks).CreateGame(context.Background(), superuser(),
			models.GameRequest{GameName: "Minecraft", Genre: models.GenreSandbox, AgeRestriction: 7})

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "release_date", verr.Field)
	})

	mt.Run("create rejects non root hierarchies", func(mt *mtest.T) {
		categories := sampleCategories()
		mt.AddMockResponses(cursor(t, categories[0], categories[1]))

		refs := []string{"http://testserver/api/v1/products/categories/weapons"}
		_, err := NewGameService(mt.DB, testLinks).CreateGame(context.Background(), superuser(), models.GameRequest{
			GameName:           "Minecraft",
			Genre:              models.GenreSandbox,
			ReleaseDate:        models.NewDate(mustDate(t, "2011-11-18")),
			AgeRestriction:     7,
			ProductHierarchies: &refs,
		})

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "product_hierarchies", verr.Field)
	})

	mt.Run("get unknown slug", func(mt *mtest.T) {
		mt.AddMockResponses(cursor(t))

		_, err := NewGameService(mt.DB, testLinks).GetGame(context.Background(), "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestItemService(t *testing.T) {
	mt := newMockTest(t)
	defer mt.Close()

	mt.Run("get unknown item", func(mt *mtest.T) {
		mt.AddMockResponses(cursor(t))

		_, err := NewItemService(mt.DB, nil).GetItem(context.Background(), primitive.NewObjectID())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	mt.Run("create over the offers limit", func(mt *mtest.T) {
		seller := models.User{ID: primitive.NewObjectID(), ListedOffersLimit: 1}
		mt.AddMockResponses(cursor(t, seller), countResponse(1))

		price := 10
		ingame := true
		_, err := NewItemService(mt.DB, nil).CreateItem(context.Background(), seller.ID,
			models.ItemRequest{Name: "Gold", Ingame: &ingame, Price: &price})

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Message, "Listed offers limit reached")
	})

	mt.Run("create with unknown game", func(mt *mtest.T) {
		seller := models.User{ID: primitive.NewObjectID(), ListedOffersLimit: 5}
		mt.AddMockResponses(cursor(t, seller), countResponse(0), countResponse(0))

		price := 10
		ingame := false
		game := primitive.NewObjectID().Hex()
		_, err := NewItemService(mt.DB, nil).CreateItem(context.Background(), seller.ID,
			models.ItemRequest{Name: "Gold", Ingame: &ingame, Price: &price, Game: &game})

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "game", verr.Field)
	})

	mt.Run("get renders attributes", func(mt *mtest.T) {
		item := models.Item{ID: primitive.NewObjectID(), Name: "Sword", Price: 30, Seller: primitive.NewObjectID()}
		attr := models.ItemAttribute{ID: primitive.NewObjectID(), AttributeName: "damage", AttributeValue: "12", Object: &item.ID}
		mt.AddMockResponses(cursor(t, item), cursor(t, attr))

		got, err := NewItemService(mt.DB, nil).GetItem(context.Background(), item.ID)
		require.NoError(t, err)
		assert.Equal(t, item.ID.Hex(), got.ID)
		require.Len(t, got.Attributes, 1)
		assert.Equal(t, "damage: 12", got.Attributes[0].CompleteAttribute)
	})
}

func TestItemAttributeService(t *testing.T) {
	mt := newMockTest(t)
	defer mt.Close()

	mt.Run("delete missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := NewItemAttributeService(mt.DB).DeleteItemAttribute(context.Background(), primitive.NewObjectID())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	mt.Run("delete", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		err := NewItemAttributeService(mt.DB).DeleteItemAttribute(context.Background(), primitive.NewObjectID())
		assert.NoError(t, err)
	})

	mt.Run("create for missing item", func(mt *mtest.T) {
		mt.AddMockResponses(countResponse(0))

		object := primitive.NewObjectID().Hex()
		_, err := NewItemAttributeService(mt.DB).CreateItemAttribute(context.Background(),
			models.ItemAttributeRequest{AttributeName: "damage", AttributeValue: "12", Object: &object})

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "object", verr.Field)
	})
}

func TestUserService(t *testing.T) {
	util.PasswordCost = 4

	mt := newMockTest(t)
	defer mt.Close()

	mt.Run("get embeds the profile", func(mt *mtest.T) {
		user := models.User{ID: primitive.NewObjectID(), Email: "buyer@example.com", IsActive: true}
		profile := models.CustomerProfile{ID: primitive.NewObjectID(), UserID: user.ID, ItemsBought: 3}
		mt.AddMockResponses(cursor(t, user), cursor(t, profile))

		got, err := NewUserService(mt.DB).GetUserByID(context.Background(), user.ID)
		require.NoError(t, err)
		require.NotNil(t, got.CustomerProfile)
		assert.Equal(t, 3, got.CustomerProfile.ItemsBought)
	})

	mt.Run("authenticate unknown email", func(mt *mtest.T) {
		mt.AddMockResponses(cursor(t))

		_, err := NewUserService(mt.DB).Authenticate(context.Background(), "nobody@example.com", "secret123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	mt.Run("authenticate wrong password", func(mt *mtest.T) {
		digest, err := util.HashPassword("correct123")
		require.NoError(t, err)
		user := models.User{ID: primitive.NewObjectID(), Email: "buyer@example.com", IsActive: true, PasswordDigest: digest}
		mt.AddMockResponses(cursor(t, user))

		_, err = NewUserService(mt.DB).Authenticate(context.Background(), "buyer@EXAMPLE.com", "wrong1234")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	mt.Run("authenticate", func(mt *mtest.T) {
		digest, err := util.HashPassword("correct123")
		require.NoError(t, err)
		user := models.User{ID: primitive.NewObjectID(), Email: "buyer@example.com", IsActive: true, PasswordDigest: digest}
		mt.AddMockResponses(cursor(t, user), mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		got, err := NewUserService(mt.DB).Authenticate(context.Background(), "buyer@example.com", "correct123")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.NotNil(t, got.LastLogin)
	})

	mt.Run("register rejects weak passwords", func(mt *mtest.T) {
		_, err := NewUserService(mt.DB).Register(context.Background(), models.RegistrationRequest{
			Email: "buyer@example.com", Password: "short", Password2: "short",
		})
		assert.True(t, IsValidation(err))
	})
}

func TestSubscriptionService(t *testing.T) {
	mt := newMockTest(t)
	defer mt.Close()

	mt.Run("paid plan needs card details", func(mt *mtest.T) {
		_, err := NewSubscriptionService(mt.DB).UpgradeSubscription(context.Background(), primitive.NewObjectID(),
			models.SubscriptionUpgradeRequest{Plan: models.PlanPremium})
		assert.True(t, IsValidation(err))
	})

	mt.Run("paid plan rejects invalid card", func(mt *mtest.T) {
		_, err := NewSubscriptionService(mt.DB).UpgradeSubscription(context.Background(), primitive.NewObjectID(),
			models.SubscriptionUpgradeRequest{
				Plan:        models.PlanStandard,
				CardNumber:  "4111111111111112",
				CVV:         "123",
				ExpiryMonth: "12",
				ExpiryYear:  "2035",
			})

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "card_number", verr.Field)
	})

	mt.Run("get missing", func(mt *mtest.T) {
		mt.AddMockResponses(cursor(t))

		_, err := NewSubscriptionService(mt.DB).GetSubscription(context.Background(), primitive.NewObjectID())
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestValidateCard(t *testing.T) {
	lastFour, company, err := validateCard(models.SubscriptionUpgradeRequest{
		Plan:        models.PlanStandard,
		CardNumber:  "4111111111111111",
		CVV:         "123",
		ExpiryMonth: "12",
		ExpiryYear:  "2035",
	})
	require.NoError(t, err)
	assert.Equal(t, "1111", lastFour)
	assert.Equal(t, "visa", company)
}
