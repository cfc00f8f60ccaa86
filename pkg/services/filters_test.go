package services

import (
	"net/url"
	"testing"
	"time"

	"gamemarket-api-io/api/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSearchFilter(t *testing.T) {
	assert.Nil(t, searchFilter("  ,, ", "game_name"))

	filter := searchFilter("world, craft", "game_name", "genre")
	and, ok := filter["$and"].(bson.A)
	require.True(t, ok)
	require.Len(t, and, 2)

	first := and[0].(bson.M)["$or"].(bson.A)
	require.Len(t, first, 2)
	assert.Equal(t, bson.M{"game_name": primitive.Regex{Pattern: "world", Options: "i"}}, first[0])
	assert.Equal(t, bson.M{"genre": primitive.Regex{Pattern: "world", Options: "i"}}, first[1])
}

func TestContainsRegexEscapes(t *testing.T) {
	assert.Equal(t, `a\.b\*`, containsRegex("a.b*").Pattern)
}

func TestMerge(t *testing.T) {
	assert.Equal(t, bson.M{}, merge(nil, bson.M{}))
	assert.Equal(t, bson.M{"a": 1}, merge(bson.M{"a": 1}, nil))

	merged := merge(bson.M{"a": 1}, bson.M{"b": 2})
	assert.Equal(t, bson.A{bson.M{"a": 1}, bson.M{"b": 2}}, merged["$and"])
}

func TestGameFilter(t *testing.T) {
	params := url.Values{
		"age_restriction__gte": {"12"},
		"age_restriction__lte": {"16"},
		"genre":                {"RPG"},
		"release_date":         {"2004-11-23"},
	}

	filter, err := gameFilter(params, "")
	require.NoError(t, err)
	assert.Equal(t, bson.M{"$gte": 12, "$lte": 16}, filter["age_restriction"])
	assert.Equal(t, "RPG", filter["genre"])
	assert.Equal(t, time.Date(2004, 11, 23, 0, 0, 0, 0, time.UTC), filter["release_date"])
}

func TestGameFilterRejectsBadInput(t *testing.T) {
	cases := map[string]url.Values{
		"age_restriction": {"age_restriction": {"old"}},
		"genre":           {"genre": {"MOBA"}},
		"release_date":    {"release_date": {"yesterday"}},
	}

	for field, params := range cases {
		t.Run(field, func(t *testing.T) {
			_, err := gameFilter(params, "")
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, field, verr.Field)
		})
	}
}

func TestItemFilter(t *testing.T) {
	game := primitive.NewObjectID()
	other := primitive.NewObjectID()
	params := url.Values{
		"game":            {game.Hex() + "," + other.Hex()},
		"ingame":          {"true"},
		"name__icontains": {"sword"},
	}

	filter, err := itemFilter(params)
	require.NoError(t, err)
	assert.Equal(t, bson.M{"$in": []primitive.ObjectID{game, other}}, filter["game"])
	assert.Equal(t, true, filter["ingame"])
	assert.Equal(t, containsRegex("sword"), filter["name"])
	assert.NotContains(t, filter, "category")

	_, err = itemFilter(url.Values{"category": {"nope"}})
	assert.True(t, IsValidation(err))
}

func TestUserFilter(t *testing.T) {
	params := url.Values{
		"rating__gt":          {"3.5"},
		"rating__lt":          {"5"},
		"is_admin":            {"false"},
		"listed_offers_limit": {"20"},
		"date_of_birth__lt":   {"2000-01-01"},
	}

	filter, err := userFilter(params, "")
	require.NoError(t, err)
	assert.Equal(t, bson.M{"$gt": 3.5, "$lt": 5.0}, filter["rating"])
	assert.Equal(t, false, filter["is_admin"])
	assert.Equal(t, 20, filter["listed_offers_limit"])
	assert.Equal(t, bson.M{"$lt": time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)}, filter["date_of_birth"])
}

func TestUserFilterSearch(t *testing.T) {
	id := primitive.NewObjectID()

	filter, err := userFilter(url.Values{}, id.Hex())
	require.NoError(t, err)
	or := filter["$and"].(bson.A)[0].(bson.M)["$or"].(bson.A)
	require.Len(t, or, 2)
	assert.Equal(t, bson.M{"_id": id}, or[1])

	filter, err = userFilter(url.Values{}, "(broken")
	require.NoError(t, err)
	or = filter["$and"].(bson.A)[0].(bson.M)["$or"].(bson.A)
	assert.Equal(t, bson.M{"email": primitive.Regex{Pattern: `\(broken`, Options: "i"}}, or[0])
}

func TestCategoryFilter(t *testing.T) {
	idx := newCategoryIndex(sampleCategories())

	filter := categoryFilter(url.Values{"parent_category": {"Items"}}, "", idx)
	items, _ := idx.byCategoryName("Items")
	assert.Equal(t, items.ID, filter["parent_category"])

	assert.Equal(t, matchNothing, categoryFilter(url.Values{"parent_category": {"Ghosts"}}, "", idx))
}

func TestParseDateTime(t *testing.T) {
	got, err := parseDateTime("2024-05-01T10:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 10, got.Hour())

	got, err = parseDateTime("2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, time.May, got.Month())

	_, err = parseDateTime("May 1")
	assert.Error(t, err)
}

func sampleCategories() []models.Category {
	items := primitive.NewObjectID()
	weapons := primitive.NewObjectID()
	armor := primitive.NewObjectID()
	swords := primitive.NewObjectID()

	return []models.Category{
		{ID: items, CategoryName: "Items", URLSlug: "items", BaseHierarchy: "1", HierarchyIdentifier: "1"},
		{ID: weapons, CategoryName: "Weapons", URLSlug: "weapons", ParentCategory: &items, BaseHierarchy: "1", HierarchyIdentifier: "11"},
		{ID: armor, CategoryName: "Armor", URLSlug: "armor", ParentCategory: &items, BaseHierarchy: "1", HierarchyIdentifier: "11"},
		{ID: swords, CategoryName: "Swords", URLSlug: "swords", ParentCategory: &weapons, BaseHierarchy: "1", HierarchyIdentifier: "111"},
	}
}
