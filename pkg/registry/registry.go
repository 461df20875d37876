// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
)

func LoadRegistry(path string) (*ShapeRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := validateDocument(data); err != nil {
		return nil, err
	}

	var reg ShapeRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, err
	}

	if err := reg.Validate(); err != nil {
		return nil, err
	}

	return &reg, nil
}

func validateDocument(data []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(registrySchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("registry validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("registry validation failed: %v", errs)
	}

	return nil
}

// Validate checks shape ID uniqueness and rebuilds the lookup index.
func (r *ShapeRegistry) Validate() error {
	seen := make(map[string]bool, len(r.Shapes))
	for _, shape := range r.Shapes {
		if seen[shape.ID] {
			return fmt.Errorf("duplicate shape ID: %s", shape.ID)
		}
		seen[shape.ID] = true
	}
	r.buildIndex()
	return nil
}

func (r *ShapeRegistry) buildIndex() {
	r.byID = make(map[string]*Shape, len(r.Shapes))
	for i := range r.Shapes {
		r.byID[r.Shapes[i].ID] = &r.Shapes[i]
	}
}

// FindByID returns the shape with the given ID, if registered.
func (r *ShapeRegistry) FindByID(id string) (*Shape, bool) {
	if r.byID == nil {
		r.buildIndex()
	}
	shape, ok := r.byID[id]
	return shape, ok
}

// Has reports whether a shape ID is registered.
func (r *ShapeRegistry) Has(id string) bool {
	_, ok := r.FindByID(id)
	return ok
}

// IDs returns all registered shape IDs in registry order.
func (r *ShapeRegistry) IDs() []string {
	ids := make([]string, len(r.Shapes))
	for i, shape := range r.Shapes {
		ids[i] = shape.ID
	}
	return ids
}

// FilterByCategory returns the shapes in the given category.
func (r *ShapeRegistry) FilterByCategory(category string) []Shape {
	var shapes []Shape
	for _, shape := range r.Shapes {
		if shape.Category == category {
			shapes = append(shapes, shape)
		}
	}
	return shapes
}
