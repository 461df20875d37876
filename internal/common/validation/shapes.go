package validation

import (
	"fmt"
	"regexp"
	"strings"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

var shapeIDPattern = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)

// ValidateShapeID validates a shape ID follows the catalog naming convention
func ValidateShapeID(shapeID string) error {
	if !shapeIDPattern.MatchString(shapeID) {
		return fmt.Errorf("shape ID must be lowercase kebab-case (e.g., leaf-simple)")
	}
	return nil
}

// ValidateSelection validates a customer shape selection with detailed errors
func ValidateSelection(shapeIDs []string, allowedSizes []int) *ValidationResult {
	errors := []ValidationError{}

	if len(shapeIDs) == 0 {
		errors = append(errors, ValidationError{
			Field:   "shape_ids",
			Message: "selection must contain at least one shape",
			Code:    "EMPTY_SELECTION",
		})
		return &ValidationResult{Valid: false, Errors: errors}
	}

	sizeOK := false
	for _, size := range allowedSizes {
		if len(shapeIDs) == size {
			sizeOK = true
			break
		}
	}
	if !sizeOK {
		errors = append(errors, ValidationError{
			Field:   "shape_ids",
			Message: fmt.Sprintf("selection of %d shapes does not match any tier, allowed sizes: %v", len(shapeIDs), allowedSizes),
			Code:    "SIZE_NOT_ALLOWED",
		})
	}

	for i, id := range shapeIDs {
		if err := ValidateShapeID(id); err != nil {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("shape_ids[%d]", i),
				Message: err.Error(),
				Code:    "MALFORMED_SHAPE_ID",
			})
		}
	}

	return &ValidationResult{
		Valid:  len(errors) == 0,
		Errors: errors,
	}
}

// ValidateGrid validates puzzle grid dimensions
func ValidateGrid(rows, cols int) *ValidationResult {
	errors := []ValidationError{}

	if rows < 1 {
		errors = append(errors, ValidationError{
			Field:   "rows",
			Message: fmt.Sprintf("rows must be >= 1, got %d", rows),
			Code:    "MINIMUM_VIOLATION",
		})
	}
	if cols < 1 {
		errors = append(errors, ValidationError{
			Field:   "cols",
			Message: fmt.Sprintf("cols must be >= 1, got %d", cols),
			Code:    "MINIMUM_VIOLATION",
		})
	}

	return &ValidationResult{
		Valid:  len(errors) == 0,
		Errors: errors,
	}
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

// GetErrorsForField returns errors for a specific field
func (vr *ValidationResult) GetErrorsForField(field string) []ValidationError {
	var fieldErrors []ValidationError
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") || strings.HasPrefix(err.Field, field+"[") {
			fieldErrors = append(fieldErrors, err)
		}
	}
	return fieldErrors
}

// ValidateURL validates URL format
func ValidateURL(url string) bool {
	urlPattern := regexp.MustCompile(`^(https?|ftp)://[^\s/$.?#].[^\s]*$`)
	return urlPattern.MatchString(url)
}
