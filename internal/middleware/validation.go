package middleware

import (
	"errors"
	"unicode/utf8"

	"github.com/bookleaf/support-platform/internal/model"
)

// ValidateQuery validates an inbound user query.
func ValidateQuery(query string) error {
	if len(query) == 0 {
		return errors.New("query cannot be empty")
	}
	if len(query) > 100000 { // ~100KB limit
		return errors.New("query exceeds maximum length")
	}
	if !utf8.ValidString(query) {
		return errors.New("query must be valid UTF-8")
	}
	return nil
}

// ValidatePlatform validates a platform identifier.
func ValidatePlatform(platform string) error {
	if _, err := model.ParsePlatform(platform); err != nil {
		return errors.New("platform must be one of: web, whatsapp, instagram, email")
	}
	return nil
}

// ValidateSenderID validates a sender handle or ID.
func ValidateSenderID(id string) error {
	if len(id) == 0 {
		return errors.New("sender_id cannot be empty")
	}
	if len(id) > 256 {
		return errors.New("sender_id exceeds maximum length")
	}
	if !utf8.ValidString(id) {
		return errors.New("sender_id must be valid UTF-8")
	}
	return nil
}
