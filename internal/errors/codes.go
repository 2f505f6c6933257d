// Package errors provides structured error handling for VisuaLoom.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: Storage errors (catalog file, tag file)
//   - 3XX: Filesystem and image errors
//   - 4XX: Lookup errors (unknown ids and names)
//   - 5XX: Embedding and job errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryStorage indicates catalog and tag store errors.
	CategoryStorage Category = "STORAGE"
	// CategoryFilesystem indicates directory walk and file read errors.
	CategoryFilesystem Category = "FILESYSTEM"
	// CategoryNotFound indicates lookups that missed.
	CategoryNotFound Category = "NOT_FOUND"
	// CategoryInternal indicates embedding, job, and unexpected errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// Storage errors (200-299)
	ErrCodeCorruptStore = "ERR_201_CORRUPT_STORE"
	ErrCodeStoreWrite   = "ERR_202_STORE_WRITE"
	ErrCodeStoreLock    = "ERR_203_STORE_LOCK"

	// Filesystem and image errors (300-399)
	ErrCodePermissionDenied = "ERR_301_PERMISSION_DENIED"
	ErrCodeUnreadableImage  = "ERR_302_UNREADABLE_IMAGE"
	ErrCodeNotADirectory    = "ERR_303_NOT_A_DIRECTORY"

	// Lookup errors (400-499)
	ErrCodeJobNotFound   = "ERR_401_JOB_NOT_FOUND"
	ErrCodeImageNotFound = "ERR_402_IMAGE_NOT_FOUND"
	ErrCodeTagNotFound   = "ERR_403_TAG_NOT_FOUND"

	// Embedding and job errors (500-599)
	ErrCodeEmbeddingFailure = "ERR_501_EMBEDDING_FAILURE"
	ErrCodeJobFailure       = "ERR_502_JOB_FAILURE"
)

// categoryFromCode derives the category from the numeric range of a code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryStorage
	case '3':
		return CategoryFilesystem
	case '4':
		return CategoryNotFound
	default:
		return CategoryInternal
	}
}

// severityFromCode derives severity from the code.
// Per-item failures (unreadable images, permission misses, embedding failures)
// are warnings because sweeps absorb them and continue.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodePermissionDenied, ErrCodeUnreadableImage, ErrCodeEmbeddingFailure, ErrCodeCorruptStore:
		return SeverityWarning
	case ErrCodeStoreWrite, ErrCodeStoreLock:
		return SeverityFatal
	default:
		return SeverityError
	}
}
