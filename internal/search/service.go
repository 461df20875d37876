// internal/search/service.go
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/common/errors"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/common/logger"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/pkg/registry"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Result carries one page of catalog matches.
type Result struct {
	Shapes    []registry.Shape `json:"shapes"`
	TotalHits int              `json:"total_hits"`
	Took      int              `json:"took_ms"`
}

// Service queries and seeds the shape catalog index.
type Service struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

// NewService creates a search service over the given index.
func NewService(client *elasticsearch.Client, index string, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Service{
		client: client,
		index:  index,
		logger: log,
	}
}

// Ping reports whether the backing cluster is reachable.
func (s *Service) Ping(ctx context.Context) error {
	res, err := s.client.Ping(s.client.Ping.WithContext(ctx))
	if err != nil {
		return errors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return errors.NewElasticsearchConnectionFailedError(fmt.Errorf("ping returned status %s", res.Status()))
	}
	return nil
}

// IndexShapes writes every shape into the catalog index, addressed by
// shape ID so reseeding overwrites rather than duplicates.
func (s *Service) IndexShapes(ctx context.Context, shapes []registry.Shape) error {
	for _, shape := range shapes {
		data, err := json.Marshal(shape)
		if err != nil {
			return errors.NewSearchQueryFailedError(fmt.Errorf("failed to marshal shape %s: %w", shape.ID, err))
		}

		req := esapi.IndexRequest{
			Index:      s.index,
			DocumentID: shape.ID,
			Body:       bytes.NewReader(data),
		}

		res, err := req.Do(ctx, s.client)
		if err != nil {
			return errors.NewElasticsearchConnectionFailedError(err)
		}
		if res.IsError() {
			res.Body.Close()
			return errors.NewSearchQueryFailedError(fmt.Errorf("indexing shape %s returned status %s", shape.ID, res.Status()))
		}
		res.Body.Close()
	}

	s.logger.Info("Shape catalog indexed", map[string]interface{}{
		"index":  s.index,
		"shapes": len(shapes),
	})
	return nil
}

// Search runs a keyword/category query against the catalog index.
func (s *Service) Search(ctx context.Context, q Query) (*Result, error) {
	if q.Size > maxPageSize {
		q.Size = maxPageSize
	}
	if q.Size < 1 {
		q.Size = defaultPageSize
	}
	if q.From < 0 {
		q.From = 0
	}

	body, err := json.Marshal(buildShapeSearchQuery(q))
	if err != nil {
		return nil, errors.NewSearchQueryFailedError(fmt.Errorf("failed to marshal query: %w", err))
	}

	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  strings.NewReader(string(body)),
		From:  &q.From,
		Size:  &q.Size,
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, errors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errors.NewSearchQueryFailedError(fmt.Errorf("search returned status %s", res.Status()))
	}

	var raw map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return nil, errors.NewSearchQueryFailedError(fmt.Errorf("failed to decode response: %w", err))
	}

	result, err := parseSearchResponse(raw)
	if err != nil {
		return nil, errors.NewSearchQueryFailedError(err)
	}

	s.logger.Debug("Shape search executed", map[string]interface{}{
		"keywords":   q.Keywords,
		"category":   q.Category,
		"total_hits": result.TotalHits,
		"took_ms":    result.Took,
	})
	return result, nil
}

// parseSearchResponse walks the hits envelope without trusting any
// level of it to be present.
func parseSearchResponse(raw map[string]interface{}) (*Result, error) {
	result := &Result{Shapes: []registry.Shape{}}

	if took, ok := raw["took"].(float64); ok {
		result.Took = int(took)
	}

	hits, ok := raw["hits"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("response missing hits envelope")
	}

	if total, ok := hits["total"].(map[string]interface{}); ok {
		if value, ok := total["value"].(float64); ok {
			result.TotalHits = int(value)
		}
	}

	hitList, ok := hits["hits"].([]interface{})
	if !ok {
		return result, nil
	}

	for _, h := range hitList {
		hit, ok := h.(map[string]interface{})
		if !ok {
			continue
		}
		source, ok := hit["_source"].(map[string]interface{})
		if !ok {
			continue
		}

		data, err := json.Marshal(source)
		if err != nil {
			continue
		}
		var shape registry.Shape
		if err := json.Unmarshal(data, &shape); err != nil {
			continue
		}
		result.Shapes = append(result.Shapes, shape)
	}

	return result, nil
}
