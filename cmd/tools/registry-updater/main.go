// cmd/tools/registry-updater/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/common/validation"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/pkg/registry"
)

var registryPath string

func main() {
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	// Add command flags
	idAdd := addCmd.String("id", "", "Shape ID (e.g., leaf-simple)")
	name := addCmd.String("name", "", "Display Name (e.g., Simple Leaf)")
	description := addCmd.String("description", "", "Description")
	category := addCmd.String("category", "", "Category (e.g., botanical)")
	tags := addCmd.String("tags", "", "Comma-separated tags (e.g., forest,nature)")
	addCmd.StringVar(&registryPath, "path", "configs/shape-registry.json", "Path to registry file")

	// Update command flags
	idUpdate := updateCmd.String("id", "", "Shape ID to update")
	field := updateCmd.String("field", "", "Field to update (name, description, category, tags)")
	value := updateCmd.String("value", "", "New value for the field")
	updateCmd.StringVar(&registryPath, "path", "configs/shape-registry.json", "Path to registry file")

	// Validate command flags
	validateCmd.StringVar(&registryPath, "path", "configs/shape-registry.json", "Path to registry file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add":
		addCmd.Parse(os.Args[2:])
		if *idAdd == "" || *name == "" || *category == "" {
			fmt.Println("Error: id, name, and category are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		if err := validation.ValidateShapeID(*idAdd); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		shape := registry.Shape{
			ID:          *idAdd,
			Name:        *name,
			Category:    *category,
			Description: *description,
			Tags:        parseTags(*tags),
		}
		err := addShape(&shape)
		if err != nil {
			fmt.Printf("Error adding shape: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added shape: %s\n", *idAdd)

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *idUpdate == "" || *field == "" || *value == "" {
			fmt.Println("Error: id, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		err := updateShape(*idUpdate, *field, *value)
		if err != nil {
			fmt.Printf("Error updating shape: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated shape %s, field %s to %s\n", *idUpdate, *field, *value)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		err := validateRegistry()
		if err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Registry validation passed.")

	case "help":
		fallthrough
	default:
		help()
	}
}

func parseTags(raw string) []string {
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func addShape(shape *registry.Shape) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		// If file doesn't exist, create new registry
		if os.IsNotExist(err) {
			reg = &registry.ShapeRegistry{
				Version:     "1.0.0",
				LastUpdated: time.Now().Format(time.RFC3339),
				Shapes:      []registry.Shape{},
			}
		} else {
			return fmt.Errorf("failed to load registry: %w", err)
		}
	}

	// Check if shape already exists
	for _, existing := range reg.Shapes {
		if existing.ID == shape.ID {
			return fmt.Errorf("shape with ID %s already exists", shape.ID)
		}
	}

	// Add new shape
	reg.Shapes = append(reg.Shapes, *shape)
	reg.LastUpdated = time.Now().Format(time.RFC3339)

	// Save registry
	return saveRegistry(reg, registryPath)
}

func updateShape(id, field, value string) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	found := false
	for i := range reg.Shapes {
		if reg.Shapes[i].ID == id {
			found = true
			switch field {
			case "name":
				reg.Shapes[i].Name = value
			case "description":
				reg.Shapes[i].Description = value
			case "category":
				reg.Shapes[i].Category = value
			case "tags":
				reg.Shapes[i].Tags = parseTags(value)
			default:
				return fmt.Errorf("unknown field: %s", field)
			}
			break
		}
	}

	if !found {
		return fmt.Errorf("shape with ID %s not found", id)
	}

	reg.LastUpdated = time.Now().Format(time.RFC3339)
	return saveRegistry(reg, registryPath)
}

func validateRegistry() error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	for _, shape := range reg.Shapes {
		if err := validation.ValidateShapeID(shape.ID); err != nil {
			return fmt.Errorf("shape %s: %w", shape.ID, err)
		}
		if shape.Name == "" {
			return fmt.Errorf("shape %s missing required field: Name", shape.ID)
		}
		if shape.Category == "" {
			return fmt.Errorf("shape %s missing required field: Category", shape.ID)
		}
	}

	fmt.Printf("Registry validation passed. Found %d shapes.\n", len(reg.Shapes))
	return nil
}

// saveRegistry handles saving the registry to file
func saveRegistry(reg *registry.ShapeRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	err = os.WriteFile(path, data, 0644)
	if err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}

	return nil
}

func help() {
	fmt.Print(`
Usage: registry-updater <command> [flags]

Commands:
  add     Add a new shape to the registry
  update  Update an existing shape's field
  validate Validate the registry file
  help    Show this help message

Examples:
  registry-updater add -id leaf-simple -name "Simple Leaf" -description "Single leaf outline" -category botanical -tags forest,nature
  registry-updater update -id leaf-simple -field description -value "Clean single leaf outline"
  registry-updater validate -path configs/shape-registry.json

Use 'registry-updater <command> -h' for more information about a command.
`)
}
