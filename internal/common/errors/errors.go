// Package errors provides standardized error handling for the puzzle
// template service and its HTTP surface.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Selection / layout errors surfaced to the storefront
const (
	ErrCodeInvalidSelection  ErrorCode = "INVALID_SELECTION"
	ErrCodeInvalidCoordinate ErrorCode = "INVALID_COORDINATE"
	ErrCodeInvalidShapeID    ErrorCode = "INVALID_SHAPE_ID"
	ErrCodeUnknownShape      ErrorCode = "UNKNOWN_SHAPE"
	ErrCodeInvalidGeometry   ErrorCode = "INVALID_GEOMETRY"

	ErrCodeTemplateBuildFailed ErrorCode = "TEMPLATE_BUILD_FAILED"
	ErrCodeRegistryInvalid     ErrorCode = "REGISTRY_INVALID"

	ErrCodePostgresConnectionFailed ErrorCode = "POSTGRES_CONNECTION_FAILED"
	ErrCodeArchiveWriteFailed       ErrorCode = "ARCHIVE_WRITE_FAILED"
	ErrCodeArchiveReadFailed        ErrorCode = "ARCHIVE_READ_FAILED"

	ErrCodeRedisConnectionFailed    ErrorCode = "REDIS_CONNECTION_FAILED"
	ErrCodePopularityTrackingFailed ErrorCode = "POPULARITY_TRACKING_FAILED"

	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeSearchQueryFailed             ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchUnavailable             ErrorCode = "SEARCH_UNAVAILABLE"

	ErrCodeWarmFeedFailed ErrorCode = "WARM_FEED_FAILED"
	ErrCodeConfigInvalid  ErrorCode = "CONFIG_INVALID"

	ErrCodeBadRequest       ErrorCode = "BAD_REQUEST"
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrCodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. HTTP Error Integration
// ==========================

// ErrorResponse is the wire envelope written for failed API requests.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
	Retryable bool   `json:"retryable"`
	RequestID string `json:"requestId,omitempty"`
	Timestamp string `json:"timestamp"`
}

// HTTPStatus maps an internal error code to the HTTP status the API
// responds with.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidSelection, ErrCodeInvalidShapeID, ErrCodeBadRequest:
		return 400
	case ErrCodeUnknownShape, ErrCodeNotFound:
		return 404
	case ErrCodeMethodNotAllowed:
		return 405
	case ErrCodeSearchQueryFailed, ErrCodeElasticsearchConnectionFailed:
		return 502
	case ErrCodeSearchUnavailable:
		return 503
	default:
		return 500
	}
}

// ToResponse converts a StandardError to the HTTP envelope.
func ToResponse(stdErr *StandardError, requestID string) *ErrorResponse {
	return &ErrorResponse{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		RequestID: requestID,
		Timestamp: stdErr.Timestamp.Format(time.RFC3339),
	}
}

// ==========================
// 3. Error Constructors
// ==========================

// NewInvalidSelectionError creates a non-retryable selection cardinality error.
func NewInvalidSelectionError(got int, allowedSizes []int) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidSelection,
		Message:   "Selection size does not match any product tier",
		Details:   fmt.Sprintf("got %d shapes, allowed sizes: %v", got, allowedSizes),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidCoordinateError creates a non-retryable grid coordinate error.
func NewInvalidCoordinateError(rows, cols, row, col int) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidCoordinate,
		Message:   "Cell coordinate outside the declared grid",
		Details:   fmt.Sprintf("grid %dx%d, requested cell (%d,%d)", rows, cols, row, col),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidGridError creates a non-retryable grid dimension error.
func NewInvalidGridError(rows, cols int) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidCoordinate,
		Message:   "Grid dimensions must be positive",
		Details:   fmt.Sprintf("rows: %d, cols: %d", rows, cols),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidShapeIDError creates a non-retryable shape id syntax error.
func NewInvalidShapeIDError(id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidShapeID,
		Message:   "Shape id is not a valid motif token",
		Details:   fmt.Sprintf("shapeId: %q", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownShapeError creates a non-retryable unknown shape error.
func NewUnknownShapeError(id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownShape,
		Message:   "Shape not found in registry",
		Details:   fmt.Sprintf("shapeId: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidGeometryError creates a non-retryable geometry config error.
func NewInvalidGeometryError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidGeometry,
		Message:   "Piece geometry configuration is invalid",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTemplateBuildFailedError creates a non-retryable build error.
func NewTemplateBuildFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateBuildFailed,
		Message:   "Template generation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRegistryInvalidError creates a non-retryable registry error.
func NewRegistryInvalidError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRegistryInvalid,
		Message:   "Shape registry failed to load or validate",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPostgresConnectionFailedError creates a retryable connection error.
func NewPostgresConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePostgresConnectionFailed,
		Message:   "PostgreSQL connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewArchiveWriteFailedError creates a retryable archive write error.
func NewArchiveWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeArchiveWriteFailed,
		Message:   "Template archive write failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewArchiveReadFailedError creates a retryable archive read error.
func NewArchiveReadFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeArchiveReadFailed,
		Message:   "Template archive read failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRedisConnectionFailedError creates a retryable connection error.
func NewRedisConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRedisConnectionFailed,
		Message:   "Redis connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewPopularityTrackingFailedError creates a retryable tracking error.
func NewPopularityTrackingFailedError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePopularityTrackingFailed,
		Message:   "Popularity tracking operation failed",
		Details:   fmt.Sprintf("op: %s, error: %s", op, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewElasticsearchConnectionFailedError creates a retryable Elasticsearch connection error.
func NewElasticsearchConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeElasticsearchConnectionFailed,
		Message:   "Elasticsearch connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchQueryFailedError creates a retryable search query error.
func NewSearchQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Shape search query error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchUnavailableError creates a non-retryable search disabled error.
func NewSearchUnavailableError() *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchUnavailable,
		Message:   "Shape search is not enabled on this deployment",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewWarmFeedFailedError creates a retryable combinations feed error.
func NewWarmFeedFailedError(url string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeWarmFeedFailed,
		Message:   "Warming combinations feed fetch failed",
		Details:   fmt.Sprintf("url: %s, error: %s", url, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewConfigInvalidError creates a non-retryable configuration error.
func NewConfigInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigInvalid,
		Message:   "Service configuration is invalid",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewBadRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeBadRequest,
		Message:   "Request could not be parsed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewNotFoundError(resource, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotFound,
		Message:   fmt.Sprintf("%s not found", resource),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewMethodNotAllowedError(method string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMethodNotAllowed,
		Message:   "Method not allowed on this resource",
		Details:   fmt.Sprintf("method: %s", method),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Internal service error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Utility Functions
// ==========================

// IsValidationErrorCode reports whether the code is caused by caller
// input rather than service state.
func IsValidationErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeInvalidSelection, ErrCodeInvalidShapeID, ErrCodeUnknownShape, ErrCodeBadRequest:
		return true
	default:
		return false
	}
}

// IsInfrastructureErrorCode reports whether the code belongs to a
// backing store rather than the generation core.
func IsInfrastructureErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodePostgresConnectionFailed, ErrCodeArchiveWriteFailed, ErrCodeArchiveReadFailed,
		ErrCodeRedisConnectionFailed, ErrCodePopularityTrackingFailed,
		ErrCodeElasticsearchConnectionFailed, ErrCodeSearchQueryFailed, ErrCodeWarmFeedFailed:
		return true
	default:
		return false
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "SELECTION") || strings.Contains(codeStr, "SHAPE"):
		return "SELECTION"
	case strings.Contains(codeStr, "COORDINATE") || strings.Contains(codeStr, "GEOMETRY") || strings.Contains(codeStr, "TEMPLATE"):
		return "LAYOUT"
	case strings.Contains(codeStr, "REGISTRY"):
		return "REGISTRY"
	case strings.Contains(codeStr, "POSTGRES") || strings.Contains(codeStr, "ARCHIVE"):
		return "ARCHIVE"
	case strings.Contains(codeStr, "REDIS") || strings.Contains(codeStr, "POPULARITY"):
		return "POPULARITY"
	case strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "FEED") || strings.Contains(codeStr, "CONFIG"):
		return "OPS"
	default:
		return "OTHER"
	}
}
