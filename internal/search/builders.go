// internal/search/builders.go
package search

// Query narrows the shape catalog by free-text keywords and an
// optional category.
type Query struct {
	Keywords string
	Category string
	From     int
	Size     int
}

// buildShapeSearchQuery assembles the bool query body for a catalog
// search. Keywords match across name, description, and tags with name
// weighted highest; category is an exact filter.
func buildShapeSearchQuery(q Query) map[string]interface{} {
	boolQuery := make(map[string]interface{})
	mustClauses := []interface{}{}
	filterClauses := []interface{}{}

	if q.Keywords != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  q.Keywords,
				"fields": []string{"name^3", "description^2", "tags"},
				"type":   "best_fields",
			},
		})
	}

	if q.Category != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"category": q.Category},
		})
	}

	if len(mustClauses) == 0 {
		mustClauses = append(mustClauses, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	boolQuery["must"] = mustClauses
	if len(filterClauses) > 0 {
		boolQuery["filter"] = filterClauses
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": boolQuery,
		},
	}
}
