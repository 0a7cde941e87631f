package utils

import (
	"fmt"
	"regexp"
)

// Payload size limits (in bytes)
const (
	MaxJSONSize      = 1 * 1024 * 1024 // maximum JSON payload size
	MaxEncryptedSize = 4 * 1024 * 1024 // cipher-wrapped chapter body limit
	MaxKeyPacketSize = 256 * 1024      // base64 key packet limit
)

// String length limits
const (
	MaxSiteIDLength = 64
	MaxRefLength    = 512
	MaxQueryLength  = 256
)

// Regular expressions for validation
var (
	// SiteIDPattern allows lowercase alphanumeric, hyphens, underscores
	SiteIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)
)

// ValidateSiteID checks that a caller-supplied site identifier has a
// sane shape before it reaches the registry.
func ValidateSiteID(siteID string) error {
	if siteID == "" {
		return fmt.Errorf("site_id is required")
	}
	if len(siteID) > MaxSiteIDLength {
		return fmt.Errorf("site_id exceeds %d characters", MaxSiteIDLength)
	}
	if !SiteIDPattern.MatchString(siteID) {
		return fmt.Errorf("site_id %q contains invalid characters", siteID)
	}
	return nil
}

// ValidateRef bounds a chapter or book reference.
func ValidateRef(ref string) error {
	if ref == "" {
		return fmt.Errorf("ref is required")
	}
	if len(ref) > MaxRefLength {
		return fmt.Errorf("ref exceeds %d characters", MaxRefLength)
	}
	return nil
}

// ValidateQuery bounds a search query.
func ValidateQuery(query string) error {
	if query == "" {
		return fmt.Errorf("query is required")
	}
	if len(query) > MaxQueryLength {
		return fmt.Errorf("query exceeds %d bytes", MaxQueryLength)
	}
	return nil
}

// ValidateDecryptSizes bounds the two request fields an attacker could
// inflate; oversized payloads are rejected before any context is built.
func ValidateDecryptSizes(encryptedContent, keyPacket string) error {
	if len(encryptedContent) > MaxEncryptedSize {
		return fmt.Errorf("encrypted_content %d bytes exceeds maximum %d bytes", len(encryptedContent), MaxEncryptedSize)
	}
	if len(keyPacket) > MaxKeyPacketSize {
		return fmt.Errorf("key_packet %d bytes exceeds maximum %d bytes", len(keyPacket), MaxKeyPacketSize)
	}
	return nil
}
