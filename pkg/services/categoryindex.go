package services

import (
	"context"
	"strings"

	"gamemarket-api-io/api/pkg/hierarchy"
	"gamemarket-api-io/api/pkg/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// categoryIndex is an in-memory snapshot of the Category collection. The
// catalog of categories is small, so every request that needs the hierarchy
// loads it whole.
type categoryIndex struct {
	tree   *hierarchy.Tree
	byID   map[primitive.ObjectID]models.Category
	bySlug map[string]primitive.ObjectID
	byName map[string]primitive.ObjectID
}

func loadCategoryIndex(ctx context.Context, categories *mongo.Collection) (*categoryIndex, error) {
	cursor, err := categories.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}

	var all []models.Category
	if err := cursor.All(ctx, &all); err != nil {
		return nil, err
	}
	return newCategoryIndex(all), nil
}

func newCategoryIndex(categories []models.Category) *categoryIndex {
	idx := &categoryIndex{
		byID:   make(map[primitive.ObjectID]models.Category, len(categories)),
		bySlug: make(map[string]primitive.ObjectID, len(categories)),
		byName: make(map[string]primitive.ObjectID, len(categories)),
	}

	entries := make([]hierarchy.Entry, 0, len(categories))
	for _, c := range categories {
		idx.byID[c.ID] = c
		idx.bySlug[strings.ToLower(c.URLSlug)] = c.ID
		idx.byName[c.CategoryName] = c.ID

		entry := hierarchy.Entry{
			ID:   c.ID.Hex(),
			Name: c.CategoryName,
			Path: pathOf(c),
		}
		if c.ParentCategory != nil {
			entry.ParentID = c.ParentCategory.Hex()
		}
		entries = append(entries, entry)
	}
	idx.tree = hierarchy.NewTree(entries)
	return idx
}

func pathOf(c models.Category) hierarchy.Path {
	return hierarchy.Path{Base: c.BaseHierarchy, Identifier: c.HierarchyIdentifier}
}

func (idx *categoryIndex) get(id primitive.ObjectID) (models.Category, bool) {
	c, ok := idx.byID[id]
	return c, ok
}

// bySlugRef looks a category up by slug, case-insensitively.
func (idx *categoryIndex) bySlugRef(slug string) (models.Category, bool) {
	id, ok := idx.bySlug[strings.ToLower(slug)]
	if !ok {
		return models.Category{}, false
	}
	return idx.get(id)
}

func (idx *categoryIndex) byCategoryName(name string) (models.Category, bool) {
	id, ok := idx.byName[name]
	if !ok {
		return models.Category{}, false
	}
	return idx.get(id)
}

func (idx *categoryIndex) name(id *primitive.ObjectID) *string {
	if id == nil {
		return nil
	}
	c, ok := idx.get(*id)
	if !ok {
		return nil
	}
	return stringPtr(c.CategoryName)
}

func (idx *categoryIndex) children(id primitive.ObjectID) []models.Category {
	entries := idx.tree.Children(id.Hex())
	out := make([]models.Category, 0, len(entries))
	for _, e := range entries {
		if c, ok := idx.lookupHex(e.ID); ok {
			out = append(out, c)
		}
	}
	return out
}

func (idx *categoryIndex) childNames(id primitive.ObjectID) []string {
	entries := idx.tree.Children(id.Hex())
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}

func (idx *categoryIndex) lookupHex(hex string) (models.Category, bool) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return models.Category{}, false
	}
	return idx.get(id)
}

// subtree returns id followed by every category below it.
func (idx *categoryIndex) subtree(id primitive.ObjectID) []primitive.ObjectID {
	out := []primitive.ObjectID{id}
	for _, hex := range idx.tree.Descendants(id.Hex()) {
		if oid, err := primitive.ObjectIDFromHex(hex); err == nil {
			out = append(out, oid)
		}
	}
	return out
}

// expand returns the given roots and all of their descendants.
func (idx *categoryIndex) expand(roots []primitive.ObjectID) []primitive.ObjectID {
	hexes := make([]string, 0, len(roots))
	for _, r := range roots {
		hexes = append(hexes, r.Hex())
	}

	expanded := idx.tree.Expand(hexes)
	out := make([]primitive.ObjectID, 0, len(expanded))
	for _, e := range expanded {
		if oid, err := primitive.ObjectIDFromHex(e.ID); err == nil {
			out = append(out, oid)
		}
	}
	return out
}

// isBelow reports whether id sits in the subtree of ancestor.
func (idx *categoryIndex) isBelow(ancestor, id primitive.ObjectID) bool {
	return idx.tree.IsDescendant(ancestor.Hex(), id.Hex())
}
