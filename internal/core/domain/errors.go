package domain

import "errors"

// ============================================================================
// Bundle Registry Errors
// ============================================================================

var (
	ErrBundleNotFound   = errors.New("bundle not found")
	ErrBundleExists     = errors.New("bundle with this name and version already exists")
	ErrInvalidBundleID  = errors.New("bundle ID is required")
	ErrCannotDeleteLive = errors.New("cannot delete bundle: must be archived first")
)

// ============================================================================
// Definition Errors
// ============================================================================

var (
	ErrInvalidDefinition    = errors.New("invalid service definition")
	ErrInvalidBundleName    = errors.New("bundle name is required")
	ErrNoArtifactSlots      = errors.New("service definition declares no artifact slots")
	ErrDuplicateSlot        = errors.New("artifact slot declared more than once")
	ErrUnsupportedFramework = errors.New("unsupported model framework")
)

// ============================================================================
// Pack / Save Errors
// ============================================================================

var (
	ErrUnknownSlot       = errors.New("artifact slot not declared in service definition")
	ErrSlotAlreadyPacked = errors.New("artifact slot already packed")
	ErrSlotNotPacked     = errors.New("required artifact slot not packed")
	ErrArtifactNotFile   = errors.New("artifact path is not a regular file")
)

// ============================================================================
// Store Errors
// ============================================================================

var (
	ErrDigestMismatch = errors.New("artifact content does not match recorded digest")
	ErrHeaderNotFound = errors.New("bundle header not found in store")
)
