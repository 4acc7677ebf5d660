package storage

import "fmt"

// These constants mirror domain error codes to avoid circular imports.
const (
	codeInvalid  = "invalid"
	codeNotFound = "not_found"
)

// StorageError represents a storage-specific error with a code and message.
type StorageError struct {
	Code    string
	Message string
}

func (e *StorageError) Error() string {
	return e.Message
}

// ErrorCode returns the error code for domain error mapping.
func (e *StorageError) ErrorCode() string {
	return e.Code
}

// ErrorMessage returns the user-facing message.
func (e *StorageError) ErrorMessage() string {
	return e.Message
}

func newStorageError(code, message string) *StorageError {
	return &StorageError{Code: code, Message: message}
}

var (
	// ErrAccountIDRequired is returned when the object store account ID is missing.
	ErrAccountIDRequired = newStorageError(codeInvalid, "object store account ID is required")

	// ErrCredentialsRequired is returned when object store credentials are missing.
	ErrCredentialsRequired = newStorageError(codeInvalid, "object store credentials are required")

	// ErrBucketRequired is returned when the bucket name is missing.
	ErrBucketRequired = newStorageError(codeInvalid, "bucket name is required")
)

// ErrFileNotFound creates an error for when a file is not found.
func ErrFileNotFound(key string) error {
	return &StorageError{
		Code:    codeNotFound,
		Message: fmt.Sprintf("file not found: %s", key),
	}
}

// ErrUnknownProvider creates an error for unknown storage providers.
func ErrUnknownProvider(provider string) error {
	return &StorageError{
		Code:    codeInvalid,
		Message: fmt.Sprintf("unknown storage provider: %s", provider),
	}
}
