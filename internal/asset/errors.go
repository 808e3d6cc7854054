package asset

import "errors"

// Sentinel errors for asset operations.
var (
	// ErrNameTaken indicates a preload asset already exists with the name.
	ErrNameTaken = errors.New("asset name already taken")

	// ErrInvalidExtension indicates the filename does not end in .glb.
	ErrInvalidExtension = errors.New("asset name must end in .glb")

	// ErrTooLarge indicates the upload exceeds the size limit.
	ErrTooLarge = errors.New("asset exceeds maximum size")

	// ErrAssetNotFound indicates no preload asset exists with the name.
	ErrAssetNotFound = errors.New("asset not found")
)
