package domain

import "errors"

var (
	ErrStorageUnavailable  = errors.New("storage unavailable")
	ErrMalformedStoredData = errors.New("malformed stored data")
	ErrMalformedImport     = errors.New("malformed import")
	ErrNotFound            = errors.New("not found")
	ErrValidation          = errors.New("validation failed")
	ErrBackupUnavailable   = errors.New("backup storage not configured")
	ErrRegistryUnavailable = errors.New("vehicle registry unavailable")
)
