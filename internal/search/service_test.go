package search

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/common/logger"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/pkg/registry"
)

const testIndex = "shapes_test"

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}

func createRealElasticsearchClient(t *testing.T) *elasticsearch.Client {
	cfg := elasticsearch.Config{
		Addresses: []string{"http://localhost:9200"},
	}

	esClient, err := elasticsearch.NewClient(cfg)
	if err != nil {
		t.Skipf("Skipping test: Failed to create Elasticsearch client: %v", err)
		return nil
	}

	res, err := esClient.Info()
	if err != nil {
		t.Skipf("Skipping test: Elasticsearch container not responding: %v", err)
		return nil
	}
	defer res.Body.Close()

	if res.IsError() {
		t.Skipf("Skipping test: Elasticsearch error: %s", res.String())
		return nil
	}

	t.Log("✅ Connected to REAL Elasticsearch container")
	return esClient
}

func catalogFixture() []registry.Shape {
	return []registry.Shape{
		{ID: "heart", Name: "Heart", Category: "classic", Description: "Classic heart silhouette", Tags: []string{"love", "romance"}},
		{ID: "rose", Name: "Rose", Category: "botanical", Description: "Layered rose bloom", Tags: []string{"flower", "romance"}},
		{ID: "owl", Name: "Owl", Category: "animal", Description: "Perched owl with folded wings", Tags: []string{"bird", "night"}},
		{ID: "fox", Name: "Fox", Category: "animal", Description: "Sitting fox with curled tail", Tags: []string{"forest"}},
		{ID: "leaf-simple", Name: "Simple Leaf", Category: "botanical", Description: "Single leaf outline", Tags: []string{"forest", "nature"}},
	}
}

func setupRealCatalog(t *testing.T, esClient *elasticsearch.Client) *Service {
	esClient.Indices.Delete([]string{testIndex}, esClient.Indices.Delete.WithIgnoreUnavailable(true))

	svc := NewService(esClient, testIndex, createTestLogger(t))
	err := svc.IndexShapes(context.Background(), catalogFixture())
	require.NoError(t, err, "Failed to seed catalog index")

	_, err = esClient.Indices.Refresh(esClient.Indices.Refresh.WithIndex(testIndex))
	require.NoError(t, err, "Failed to refresh index")

	time.Sleep(1 * time.Second)

	t.Log("✅ REAL catalog data seeded in Elasticsearch container")
	return svc
}

// ==========================
// QUERY BUILDER TESTS
// ==========================

func TestBuildShapeSearchQuery(t *testing.T) {
	tests := []struct {
		name     string
		query    Query
		validate func(t *testing.T, body map[string]interface{})
	}{
		{
			name:  "empty query falls back to match_all",
			query: Query{},
			validate: func(t *testing.T, body map[string]interface{}) {
				boolQuery := extractBoolQuery(t, body)
				must, ok := boolQuery["must"].([]interface{})
				require.True(t, ok, "must clause should be a list")
				require.Len(t, must, 1)

				clause, ok := must[0].(map[string]interface{})
				require.True(t, ok)
				assert.Contains(t, clause, "match_all")
				assert.NotContains(t, boolQuery, "filter")
			},
		},
		{
			name:  "keywords produce weighted multi_match",
			query: Query{Keywords: "forest owl"},
			validate: func(t *testing.T, body map[string]interface{}) {
				boolQuery := extractBoolQuery(t, body)
				must, ok := boolQuery["must"].([]interface{})
				require.True(t, ok)
				require.Len(t, must, 1)

				clause := must[0].(map[string]interface{})
				multiMatch, ok := clause["multi_match"].(map[string]interface{})
				require.True(t, ok, "keyword clause should be multi_match")
				assert.Equal(t, "forest owl", multiMatch["query"])
				assert.Equal(t, []string{"name^3", "description^2", "tags"}, multiMatch["fields"])
				assert.Equal(t, "best_fields", multiMatch["type"])
			},
		},
		{
			name:  "category becomes a term filter",
			query: Query{Category: "animal"},
			validate: func(t *testing.T, body map[string]interface{}) {
				boolQuery := extractBoolQuery(t, body)

				filters, ok := boolQuery["filter"].([]interface{})
				require.True(t, ok, "filter clause should be a list")
				require.Len(t, filters, 1)

				term, ok := filters[0].(map[string]interface{})["term"].(map[string]interface{})
				require.True(t, ok)
				assert.Equal(t, "animal", term["category"])

				must := boolQuery["must"].([]interface{})
				assert.Contains(t, must[0].(map[string]interface{}), "match_all")
			},
		},
		{
			name:  "keywords and category combine",
			query: Query{Keywords: "leaf", Category: "botanical"},
			validate: func(t *testing.T, body map[string]interface{}) {
				boolQuery := extractBoolQuery(t, body)
				must := boolQuery["must"].([]interface{})
				require.Len(t, must, 1)
				assert.Contains(t, must[0].(map[string]interface{}), "multi_match")

				filters := boolQuery["filter"].([]interface{})
				require.Len(t, filters, 1)
				assert.Contains(t, filters[0].(map[string]interface{}), "term")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := buildShapeSearchQuery(tt.query)
			require.NotNil(t, body)
			tt.validate(t, body)
		})
	}
}

func extractBoolQuery(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	query, ok := body["query"].(map[string]interface{})
	require.True(t, ok, "body should contain a query")
	boolQuery, ok := query["bool"].(map[string]interface{})
	require.True(t, ok, "query should be a bool query")
	return boolQuery
}

func TestBuildShapeSearchQuery_Serializable(t *testing.T) {
	body := buildShapeSearchQuery(Query{Keywords: "heart", Category: "classic"})
	data, err := json.Marshal(body)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"multi_match"`)
	assert.Contains(t, string(data), `"name^3"`)
}

// ==========================
// RESPONSE PARSING TESTS
// ==========================

func TestParseSearchResponse(t *testing.T) {
	t.Run("well formed response", func(t *testing.T) {
		raw := decodeRaw(t, `{
			"took": 7,
			"hits": {
				"total": {"value": 2, "relation": "eq"},
				"hits": [
					{"_id": "heart", "_source": {"id": "heart", "name": "Heart", "category": "classic"}},
					{"_id": "rose", "_source": {"id": "rose", "name": "Rose", "category": "botanical", "tags": ["flower"]}}
				]
			}
		}`)

		result, err := parseSearchResponse(raw)
		require.NoError(t, err)
		assert.Equal(t, 2, result.TotalHits)
		assert.Equal(t, 7, result.Took)
		require.Len(t, result.Shapes, 2)
		assert.Equal(t, "heart", result.Shapes[0].ID)
		assert.Equal(t, "Rose", result.Shapes[1].Name)
		assert.Equal(t, []string{"flower"}, result.Shapes[1].Tags)
	})

	t.Run("missing hits envelope", func(t *testing.T) {
		raw := decodeRaw(t, `{"took": 3}`)

		result, err := parseSearchResponse(raw)
		assert.Error(t, err)
		assert.Nil(t, result)
	})

	t.Run("empty hit list", func(t *testing.T) {
		raw := decodeRaw(t, `{"took": 1, "hits": {"total": {"value": 0}, "hits": []}}`)

		result, err := parseSearchResponse(raw)
		require.NoError(t, err)
		assert.Equal(t, 0, result.TotalHits)
		assert.Empty(t, result.Shapes)
	})

	t.Run("malformed hit entries are skipped", func(t *testing.T) {
		raw := decodeRaw(t, `{
			"hits": {
				"total": {"value": 3},
				"hits": [
					{"_id": "no-source"},
					"not even an object",
					{"_id": "fox", "_source": {"id": "fox", "name": "Fox", "category": "animal"}}
				]
			}
		}`)

		result, err := parseSearchResponse(raw)
		require.NoError(t, err)
		assert.Equal(t, 3, result.TotalHits)
		require.Len(t, result.Shapes, 1)
		assert.Equal(t, "fox", result.Shapes[0].ID)
	})
}

func decodeRaw(t *testing.T, payload string) map[string]interface{} {
	t.Helper()
	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(payload), &raw))
	return raw
}

// ==========================
// REAL ELASTICSEARCH TESTS
// ==========================

func TestService_Search_RealElasticsearch(t *testing.T) {
	esClient := createRealElasticsearchClient(t)
	if esClient == nil {
		return
	}
	svc := setupRealCatalog(t, esClient)

	tests := []struct {
		name     string
		query    Query
		validate func(t *testing.T, result *Result)
	}{
		{
			name:  "match all shapes",
			query: Query{Size: 10},
			validate: func(t *testing.T, result *Result) {
				assert.Equal(t, 5, result.TotalHits, "Should find all 5 seeded shapes")
				assert.Len(t, result.Shapes, 5)
				t.Logf("✅ Found %d shapes in %d ms", result.TotalHits, result.Took)
			},
		},
		{
			name:  "filter by animal category",
			query: Query{Category: "animal", Size: 10},
			validate: func(t *testing.T, result *Result) {
				assert.Equal(t, 2, result.TotalHits, "Should find owl and fox")
				for _, shape := range result.Shapes {
					assert.Equal(t, "animal", shape.Category)
				}
			},
		},
		{
			name:  "keyword search over tags",
			query: Query{Keywords: "forest", Size: 10},
			validate: func(t *testing.T, result *Result) {
				assert.Equal(t, 2, result.TotalHits, "Should find fox and leaf-simple by tag")
			},
		},
		{
			name:  "keyword with category filter",
			query: Query{Keywords: "forest", Category: "botanical", Size: 10},
			validate: func(t *testing.T, result *Result) {
				assert.Equal(t, 1, result.TotalHits)
				if len(result.Shapes) > 0 {
					assert.Equal(t, "leaf-simple", result.Shapes[0].ID)
				}
			},
		},
		{
			name:  "name match outranks tag match",
			query: Query{Keywords: "rose", Size: 10},
			validate: func(t *testing.T, result *Result) {
				require.GreaterOrEqual(t, result.TotalHits, 1)
				assert.Equal(t, "rose", result.Shapes[0].ID, "Name hit should rank first")
			},
		},
		{
			name:  "no matches",
			query: Query{Keywords: "dinosaur", Size: 10},
			validate: func(t *testing.T, result *Result) {
				assert.Equal(t, 0, result.TotalHits)
				assert.Empty(t, result.Shapes)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.Search(context.Background(), tt.query)

			assert.NoError(t, err)
			assert.NotNil(t, result)

			if tt.validate != nil {
				tt.validate(t, result)
			}
		})
	}
}

func TestService_IndexShapes_Idempotent_RealElasticsearch(t *testing.T) {
	esClient := createRealElasticsearchClient(t)
	if esClient == nil {
		return
	}
	svc := setupRealCatalog(t, esClient)

	err := svc.IndexShapes(context.Background(), catalogFixture())
	require.NoError(t, err)

	_, err = esClient.Indices.Refresh(esClient.Indices.Refresh.WithIndex(testIndex))
	require.NoError(t, err)

	result, err := svc.Search(context.Background(), Query{Size: 20})
	require.NoError(t, err)
	assert.Equal(t, 5, result.TotalHits, "Reseeding should overwrite, not duplicate")

	t.Logf("✅ Reseed left %d documents", result.TotalHits)
}

func TestService_Search_PaginationClamps_RealElasticsearch(t *testing.T) {
	esClient := createRealElasticsearchClient(t)
	if esClient == nil {
		return
	}
	svc := setupRealCatalog(t, esClient)

	t.Run("zero size uses default", func(t *testing.T) {
		result, err := svc.Search(context.Background(), Query{})
		require.NoError(t, err)
		assert.Equal(t, 5, result.TotalHits)
		assert.Len(t, result.Shapes, 5)
	})

	t.Run("oversized page is capped", func(t *testing.T) {
		result, err := svc.Search(context.Background(), Query{Size: 5000})
		require.NoError(t, err)
		assert.Equal(t, 5, result.TotalHits)
	})

	t.Run("negative from is reset", func(t *testing.T) {
		result, err := svc.Search(context.Background(), Query{From: -3, Size: 10})
		require.NoError(t, err)
		assert.Equal(t, 5, result.TotalHits)
	})

	t.Run("paging past the end", func(t *testing.T) {
		result, err := svc.Search(context.Background(), Query{From: 10, Size: 10})
		require.NoError(t, err)
		assert.Equal(t, 5, result.TotalHits)
		assert.Empty(t, result.Shapes)
	})
}
