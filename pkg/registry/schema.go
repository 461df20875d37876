// pkg/registry/schema.go
package registry

type ShapeRegistry struct {
	Version     string  `json:"version"`
	LastUpdated string  `json:"lastUpdated"`
	Shapes      []Shape `json:"shapes"`

	byID map[string]*Shape
}

type Shape struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// registrySchema validates the on-disk registry document before it is trusted.
const registrySchema = `{
	"type": "object",
	"required": ["version", "shapes"],
	"properties": {
		"version": {"type": "string", "minLength": 1},
		"lastUpdated": {"type": "string"},
		"shapes": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["id", "name", "category"],
				"properties": {
					"id": {"type": "string", "pattern": "^[a-z][a-z0-9]*(-[a-z0-9]+)*$"},
					"name": {"type": "string", "minLength": 1},
					"category": {"type": "string", "minLength": 1},
					"description": {"type": "string"},
					"tags": {"type": "array", "items": {"type": "string"}}
				}
			}
		}
	}
}`
