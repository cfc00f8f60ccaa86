package services

import (
	"context"
	"strings"
	"time"

	"gamemarket-api-io/api/internal/common"
	"gamemarket-api-io/api/pkg/hierarchy"
	"gamemarket-api-io/api/pkg/models"
	"gamemarket-api-io/api/pkg/permissions"

	slug2 "github.com/gosimple/slug"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const duplicateCategoryName = "category with this category name already exists."

type categoryService struct {
	client             *mongo.Client
	categoryCollection *mongo.Collection
	gameCollection     *mongo.Collection
	itemCollection     *mongo.Collection
	userCollection     *mongo.Collection
	links              Links
}

func NewCategoryService(db *mongo.Database, links Links) CategoryService {
	return &categoryService{
		client:             db.Client(),
		categoryCollection: db.Collection(common.CategoryCollection),
		gameCollection:     db.Collection(common.GameCollection),
		itemCollection:     db.Collection(common.ItemCollection),
		userCollection:     db.Collection(common.UserCollection),
		links:              links,
	}
}

func (s *categoryService) ListCategories(ctx context.Context, query ListQuery) ([]models.CategoryListItem, int64, error) {
	idx, err := loadCategoryIndex(ctx, s.categoryCollection)
	if err != nil {
		return nil, 0, errors.Wrap(err, "load categories")
	}

	filter := categoryFilter(query.Params, query.Search, idx)
	if email := query.Params.Get("created_by"); email != "" {
		var creator models.User
		err := s.userCollection.FindOne(ctx, bson.M{"email": NormalizeEmail(email)}).Decode(&creator)
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			filter = matchNothing
		case err != nil:
			return nil, 0, errors.Wrap(err, "find creator")
		default:
			filter = merge(filter, bson.M{"created_by": creator.ID})
		}
	}

	count, err := s.categoryCollection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, errors.Wrap(err, "count categories")
	}

	sort := bson.D{{Key: "base_hierarchy", Value: 1}, {Key: "hierarchy_identifier", Value: 1}, {Key: "category_name", Value: 1}}
	cursor, err := s.categoryCollection.Find(ctx, filter, findOptions(query.Pagination.Limit, query.Pagination.Skip, sort))
	if err != nil {
		return nil, 0, errors.Wrap(err, "find categories")
	}

	var categories []models.Category
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, 0, errors.Wrap(err, "decode categories")
	}

	creators := make([]*primitive.ObjectID, 0, len(categories))
	for _, c := range categories {
		creators = append(creators, c.CreatedBy)
	}
	emails, err := userEmails(ctx, s.userCollection, uniqueIDs(creators))
	if err != nil {
		return nil, 0, errors.Wrap(err, "resolve creators")
	}

	out := make([]models.CategoryListItem, 0, len(categories))
	for _, c := range categories {
		out = append(out, models.CategoryListItem{
			URL:                 s.links.Category(c.URLSlug),
			HierarchyIdentifier: c.HierarchyIdentifier,
			BaseHierarchy:       c.BaseHierarchy,
			CategoryName:        c.CategoryName,
			ParentCategory:      idx.name(c.ParentCategory),
			CreatedBy:           emailOf(emails, c.CreatedBy),
			ChildCategories:     idx.childNames(c.ID),
		})
	}
	return out, count, nil
}

func (s *categoryService) GetCategory(ctx context.Context, slug string) (*models.CategoryDetail, error) {
	idx, err := loadCategoryIndex(ctx, s.categoryCollection)
	if err != nil {
		return nil, errors.Wrap(err, "load categories")
	}

	category, ok := idx.bySlugRef(slug)
	if !ok {
		return nil, ErrNotFound
	}
	return s.detail(ctx, idx, category)
}

func (s *categoryService) CreateCategory(ctx context.Context, actor permissions.Actor, req models.CategoryRequest) (*models.CategoryDetail, error) {
	idx, err := loadCategoryIndex(ctx, s.categoryCollection)
	if err != nil {
		return nil, errors.Wrap(err, "load categories")
	}

	var parent *models.Category
	if req.ParentCategory != nil && *req.ParentCategory != "" {
		p, ok := idx.byCategoryName(*req.ParentCategory)
		if !ok {
			return nil, NewValidationError("parent_category", "Object with category_name=%s does not exist.", *req.ParentCategory)
		}
		parent = &p
	}

	identifier := strings.TrimSpace(req.HierarchyIdentifier)
	var parentPath *hierarchy.Path
	if parent != nil {
		pp := pathOf(*parent)
		parentPath = &pp
	}
	path, err := hierarchy.Derive(parentPath, identifier)
	if err != nil {
		return nil, hierarchyError(err)
	}

	if !actor.IsSuperuser {
		return nil, NewValidationError("", "Currently only admins can create categories")
	}

	slug := slug2.Make(req.CategoryName)
	if slug == "" {
		return nil, NewValidationError("category_name", "must contain at least one letter or digit")
	}

	now := time.Now()
	category := models.Category{
		ID:                  primitive.NewObjectID(),
		CategoryName:        req.CategoryName,
		HierarchyIdentifier: path.Identifier,
		BaseHierarchy:       path.Base,
		URLSlug:             slug,
		CreatedAt:           now,
		ModifiedAt:          now,
	}
	if parent != nil {
		category.ParentCategory = &parent.ID
	}
	if actorID, err := primitive.ObjectIDFromHex(actor.ID); err == nil {
		category.CreatedBy = &actorID
	}

	if _, err := s.categoryCollection.InsertOne(ctx, category); err != nil {
		return nil, duplicateError(err, "category_name", duplicateCategoryName)
	}

	return &models.CategoryDetail{
		URL:                 s.links.Category(category.URLSlug),
		HierarchyIdentifier: category.HierarchyIdentifier,
		BaseHierarchy:       category.BaseHierarchy,
		CategoryName:        category.CategoryName,
		ParentCategory:      idx.name(category.ParentCategory),
		CreatedBy:           nonEmpty(actor.Email),
		ChildCategories:     []*models.CategoryDetail{},
	}, nil
}

// UpdateCategory moves a category under a new parent and renames it. Only
// the moved node gets a new path; its descendants keep the old one.
// Identifier edits on roots are validated but never applied, since every
// descendant would need a new path.
func (s *categoryService) UpdateCategory(ctx context.Context, slug string, req models.CategoryUpdateRequest) (*models.CategoryDetail, error) {
	idx, err := loadCategoryIndex(ctx, s.categoryCollection)
	if err != nil {
		return nil, errors.Wrap(err, "load categories")
	}

	category, ok := idx.bySlugRef(slug)
	if !ok {
		return nil, ErrNotFound
	}

	hasParent := req.ParentCategory != nil && *req.ParentCategory != ""
	if req.HierarchyIdentifier != nil && *req.HierarchyIdentifier != "" {
		if err := hierarchy.ValidateInput(hasParent, strings.TrimSpace(*req.HierarchyIdentifier)); err != nil {
			return nil, hierarchyError(err)
		}
	}

	set := bson.M{}
	if hasParent {
		parent, ok := idx.byCategoryName(*req.ParentCategory)
		if !ok {
			return nil, NewValidationError("parent_category", "Object with category_name=%s does not exist.", *req.ParentCategory)
		}
		if parent.ID == category.ID || idx.isBelow(category.ID, parent.ID) {
			return nil, hierarchyError(hierarchy.ErrCycle)
		}

		path, err := hierarchy.Child(pathOf(parent))
		if err != nil {
			return nil, hierarchyError(err)
		}
		category.ParentCategory = &parent.ID
		category.BaseHierarchy = path.Base
		category.HierarchyIdentifier = path.Identifier
		set["parent_category"] = parent.ID
		set["base_hierarchy"] = path.Base
		set["hierarchy_identifier"] = path.Identifier
	}

	if req.CategoryName != nil && *req.CategoryName != "" && *req.CategoryName != category.CategoryName {
		newSlug := slug2.Make(*req.CategoryName)
		if newSlug == "" {
			return nil, NewValidationError("category_name", "must contain at least one letter or digit")
		}
		category.CategoryName = *req.CategoryName
		category.URLSlug = newSlug
		set["category_name"] = category.CategoryName
		set["url_slug"] = newSlug
	}

	if len(set) > 0 {
		set["modified_at"] = time.Now()
		_, err := s.categoryCollection.UpdateOne(ctx, bson.M{"_id": category.ID}, bson.M{"$set": set})
		if err != nil {
			return nil, duplicateError(err, "category_name", duplicateCategoryName)
		}
		idx, err = loadCategoryIndex(ctx, s.categoryCollection)
		if err != nil {
			return nil, errors.Wrap(err, "reload categories")
		}
	}

	return s.detail(ctx, idx, category)
}

// DeleteCategory removes the category with its whole subtree. Items lose
// their category and games drop the removed ids.
func (s *categoryService) DeleteCategory(ctx context.Context, slug string) error {
	idx, err := loadCategoryIndex(ctx, s.categoryCollection)
	if err != nil {
		return errors.Wrap(err, "load categories")
	}

	category, ok := idx.bySlugRef(slug)
	if !ok {
		return ErrNotFound
	}
	ids := idx.subtree(category.ID)

	callback := func(ctx mongo.SessionContext) (any, error) {
		if _, err := s.categoryCollection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
			return nil, err
		}
		if _, err := s.itemCollection.UpdateMany(ctx,
			bson.M{"category": bson.M{"$in": ids}},
			bson.M{"$set": bson.M{"category": nil}},
		); err != nil {
			return nil, err
		}
		_, err := s.gameCollection.UpdateMany(ctx,
			bson.M{"all_product_categories": bson.M{"$in": ids}},
			bson.M{"$pull": bson.M{
				"product_hierarchies":    bson.M{"$in": ids},
				"all_product_categories": bson.M{"$in": ids},
			}},
		)
		return nil, err
	}

	_, err = ExecuteTransaction(ctx, s.client, callback)
	return errors.Wrap(err, "delete category")
}

func (s *categoryService) detail(ctx context.Context, idx *categoryIndex, root models.Category) (*models.CategoryDetail, error) {
	var creators []*primitive.ObjectID
	for _, id := range idx.subtree(root.ID) {
		if c, ok := idx.get(id); ok {
			creators = append(creators, c.CreatedBy)
		}
	}
	emails, err := userEmails(ctx, s.userCollection, uniqueIDs(creators))
	if err != nil {
		return nil, errors.Wrap(err, "resolve creators")
	}

	seen := map[primitive.ObjectID]bool{}
	var build func(c models.Category) *models.CategoryDetail
	build = func(c models.Category) *models.CategoryDetail {
		seen[c.ID] = true
		d := &models.CategoryDetail{
			URL:                 s.links.Category(c.URLSlug),
			HierarchyIdentifier: c.HierarchyIdentifier,
			BaseHierarchy:       c.BaseHierarchy,
			CategoryName:        c.CategoryName,
			ParentCategory:      idx.name(c.ParentCategory),
			CreatedBy:           emailOf(emails, c.CreatedBy),
			ChildCategories:     []*models.CategoryDetail{},
		}
		for _, child := range idx.children(c.ID) {
			if seen[child.ID] {
				continue
			}
			d.ChildCategories = append(d.ChildCategories, build(child))
		}
		return d
	}
	return build(root), nil
}

func emailOf(emails map[primitive.ObjectID]string, id *primitive.ObjectID) *string {
	if id == nil {
		return nil
	}
	email, ok := emails[*id]
	if !ok {
		return nil
	}
	return &email
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
