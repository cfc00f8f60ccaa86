package util

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// ParseOrdering turns an ordering query value such as "-genre,game_name" into
// a mongo sort document. allowed maps the public field names to document
// fields; unknown names are skipped. fallback is used when nothing valid
// remains.
func ParseOrdering(ordering string, allowed map[string]string, fallback bson.D) bson.D {
	var sort bson.D
	seen := map[string]bool{}

	for _, raw := range strings.Split(ordering, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		value := 1
		if strings.HasPrefix(raw, "-") {
			value = -1
			raw = raw[1:]
		}

		key, ok := allowed[raw]
		if !ok || seen[key] {
			continue
		}
		seen[key] = true
		sort = append(sort, bson.E{Key: key, Value: value})
	}

	if len(sort) == 0 {
		return fallback
	}
	return sort
}
