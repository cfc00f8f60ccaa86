package services

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gamemarket-api-io/api/pkg/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var matchNothing = bson.M{"_id": bson.M{"$in": bson.A{}}}

func containsRegex(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

// searchTerms splits a search value on whitespace and commas.
func searchTerms(search string) []string {
	return strings.FieldsFunc(search, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}

// searchFilter requires every term to be contained, case-insensitively, in
// at least one of fields.
func searchFilter(search string, fields ...string) bson.M {
	terms := searchTerms(search)
	if len(terms) == 0 {
		return nil
	}

	and := make(bson.A, 0, len(terms))
	for _, term := range terms {
		or := make(bson.A, 0, len(fields))
		for _, f := range fields {
			or = append(or, bson.M{f: containsRegex(term)})
		}
		and = append(and, bson.M{"$or": or})
	}
	return bson.M{"$and": and}
}

// merge combines filters with $and, skipping empty ones.
func merge(filters ...bson.M) bson.M {
	var parts bson.A
	for _, f := range filters {
		if len(f) > 0 {
			parts = append(parts, f)
		}
	}
	switch len(parts) {
	case 0:
		return bson.M{}
	case 1:
		return parts[0].(bson.M)
	}
	return bson.M{"$and": parts}
}

// addOp adds a comparison on field, keeping comparisons already set.
func addOp(filter bson.M, field, op string, value any) {
	ops, ok := filter[field].(bson.M)
	if !ok {
		ops = bson.M{}
		filter[field] = ops
	}
	ops[op] = value
}

var lookupOps = map[string]string{"": "$eq", "__lt": "$lt", "__gt": "$gt", "__lte": "$lte", "__gte": "$gte"}

func parseBoolParam(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on":
		return true, true
	case "false", "0", "no", "off":
		return false, true
	}
	return false, false
}

func parseObjectIDs(field string, values []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := primitive.ObjectIDFromHex(part)
			if err != nil {
				return nil, NewValidationError(field, "Select a valid choice. %s is not one of the available choices.", part)
			}
			out = append(out, id)
		}
	}
	return out, nil
}

func parseDateTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(models.DateLayout, s)
}

// categoryFilter builds the list filter of the category endpoint. The parent
// is referenced by name.
func categoryFilter(params url.Values, search string, idx *categoryIndex) bson.M {
	filter := bson.M{}

	if v := params.Get("category_name"); v != "" {
		filter["category_name"] = v
	}
	if v := params.Get("hierarchy_identifier"); v != "" {
		filter["hierarchy_identifier"] = v
	}
	if v := params.Get("parent_category"); v != "" {
		parent, ok := idx.byCategoryName(v)
		if !ok {
			return matchNothing
		}
		filter["parent_category"] = parent.ID
	}

	return merge(filter, searchFilter(search, "category_name"))
}

// gameFilter builds the list filter of the game endpoint.
func gameFilter(params url.Values, search string) (bson.M, error) {
	filter := bson.M{}

	for suffix, op := range lookupOps {
		if suffix == "__lt" || suffix == "__gt" {
			continue
		}
		key := "age_restriction" + suffix
		v := params.Get(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, NewValidationError(key, "Enter a number.")
		}
		addOp(filter, "age_restriction", op, n)
	}

	if v := params.Get("genre"); v != "" {
		switch models.Genre(v) {
		case models.GenreMMORPG, models.GenreRPG, models.GenreFPS, models.GenreSandbox:
			filter["genre"] = v
		default:
			return nil, NewValidationError("genre", "Select a valid choice. %s is not one of the available choices.", v)
		}
	}
	if v := params.Get("game_name"); v != "" {
		filter["game_name"] = v
	}
	if v := params.Get("release_date"); v != "" {
		d, err := models.ParseDate(v)
		if err != nil {
			return nil, NewValidationError("release_date", "Enter a valid date.")
		}
		filter["release_date"] = d.Time
	}

	return merge(filter, searchFilter(search, "game_name", "genre")), nil
}

// itemFilter builds the list filter of the item endpoint, without the search
// over game names which needs a lookup.
func itemFilter(params url.Values) (bson.M, error) {
	filter := bson.M{}

	for _, field := range []string{"game", "category"} {
		if len(params[field]) == 0 {
			continue
		}
		ids, err := parseObjectIDs(field, params[field])
		if err != nil {
			return nil, err
		}
		if len(ids) > 0 {
			filter[field] = bson.M{"$in": ids}
		}
	}

	if len(params["id"]) > 0 {
		ids, err := parseObjectIDs("id", params["id"])
		if err != nil {
			return nil, err
		}
		if len(ids) > 0 {
			filter["_id"] = bson.M{"$in": ids}
		}
	}

	if v := params.Get("ingame"); v != "" {
		if b, ok := parseBoolParam(v); ok {
			filter["ingame"] = b
		}
	}

	if v := params.Get("name__icontains"); v != "" {
		filter["name"] = containsRegex(v)
	}

	return filter, nil
}

// userFilter builds the list filter of the accounts endpoint. The search
// value is a regular expression over the email or an exact id.
func userFilter(params url.Values, search string) (bson.M, error) {
	filter := bson.M{}

	if v := params.Get("id__lt"); v != "" {
		id, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			return nil, NewValidationError("id__lt", "Enter a valid id.")
		}
		addOp(filter, "_id", "$lt", id)
	}

	for _, suffix := range []string{"", "__lt", "__gt"} {
		op := lookupOps[suffix]

		if v := params.Get("rating" + suffix); v != "" {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, NewValidationError("rating"+suffix, "Enter a number.")
			}
			addOp(filter, "rating", op, f)
		}

		if v := params.Get("date_of_birth" + suffix); v != "" {
			d, err := models.ParseDate(v)
			if err != nil {
				return nil, NewValidationError("date_of_birth"+suffix, "Enter a valid date.")
			}
			addOp(filter, "date_of_birth", op, d.Time)
		}

		if v := params.Get("joined_on" + suffix); v != "" {
			t, err := parseDateTime(v)
			if err != nil {
				return nil, NewValidationError("joined_on"+suffix, "Enter a valid date/time.")
			}
			addOp(filter, "joined_on", op, t)
		}
	}

	for _, field := range []string{"is_admin", "is_superuser"} {
		if b, ok := parseBoolParam(params.Get(field)); ok {
			filter[field] = b
		}
	}

	if v := params.Get("listed_offers_limit"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, NewValidationError("listed_offers_limit", "Enter a number.")
		}
		filter["listed_offers_limit"] = n
	}

	var searchPart bson.M
	if terms := searchTerms(search); len(terms) > 0 {
		and := make(bson.A, 0, len(terms))
		for _, term := range terms {
			pattern := term
			if _, err := regexp.Compile(term); err != nil {
				pattern = regexp.QuoteMeta(term)
			}
			or := bson.A{bson.M{"email": primitive.Regex{Pattern: pattern, Options: "i"}}}
			if id, err := primitive.ObjectIDFromHex(term); err == nil {
				or = append(or, bson.M{"_id": id})
			}
			and = append(and, bson.M{"$or": or})
		}
		searchPart = bson.M{"$and": and}
	}

	return merge(filter, searchPart), nil
}
