package domain

import "errors"

// Sentinel errors for the item domain. Use errors.Is() to check these.
var (
	// ErrItemNotFound indicates no item exists for the given identifier.
	ErrItemNotFound = errors.New("item not found")

	// ErrItemAlreadyExists indicates a create collided with an existing (item_id, item_type) key.
	ErrItemAlreadyExists = errors.New("item already exists")

	// ErrValidation indicates missing or invalid fields, an invalid status or an empty update set.
	ErrValidation = errors.New("validation failed")

	// ErrBlobStore indicates the blob store rejected an upload.
	ErrBlobStore = errors.New("blob store error")

	// ErrRepository indicates the backing store failed a read or write.
	ErrRepository = errors.New("repository error")

	// ErrIndexUnavailable indicates the status index could not serve a query.
	// Callers fall back to a full scan; it is never surfaced to clients.
	ErrIndexUnavailable = errors.New("status index unavailable")

	// ErrUnauthorized indicates an admin-only operation was attempted without an admin session.
	ErrUnauthorized = errors.New("admin session required")
)
