package error

import "errors"

// Snapshot domain errors.
var (
	// ErrSnapshotNotFound is returned when a snapshot does not exist.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrMetalPriceRequired is returned when neither a gold nor a silver price is supplied.
	ErrMetalPriceRequired = errors.New("at least one metal price is required")

	// ErrSnapshotDateOutOfRange is returned for dates the calendar converter does not cover.
	ErrSnapshotDateOutOfRange = errors.New("snapshot date out of supported range")

	// ErrSnapshotDateInFuture is returned for snapshots dated after today.
	ErrSnapshotDateInFuture = errors.New("snapshot date is in the future")
)

// SnapshotErrorCode defines error codes for snapshot errors.
// Format: SNP-XXYYYY where XX is category and YYYY is specific error.
type SnapshotErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeInvalidSnapshot      SnapshotErrorCode = "SNP-010001"
	ErrCodeMetalPriceRequired   SnapshotErrorCode = "SNP-010002"
	ErrCodeSnapshotDateRange    SnapshotErrorCode = "SNP-010003"
	ErrCodeNegativeAssetAmount  SnapshotErrorCode = "SNP-010004"
	ErrCodeInvalidSnapshotInput SnapshotErrorCode = "SNP-010005"
	ErrCodeSnapshotDateFuture   SnapshotErrorCode = "SNP-010006"

	// Lookup errors (02XXXX)
	ErrCodeSnapshotNotFound SnapshotErrorCode = "SNP-020001"
)
