// Package model defines data structures for the support platform.
package model

import "fmt"

// Platform identifies the channel a message arrived on.
type Platform string

const (
	PlatformWeb       Platform = "web"
	PlatformWhatsApp  Platform = "whatsapp"
	PlatformInstagram Platform = "instagram"
	PlatformEmail     Platform = "email"
)

// ParsePlatform validates a raw platform string.
func ParsePlatform(s string) (Platform, error) {
	switch Platform(s) {
	case PlatformWeb, PlatformWhatsApp, PlatformInstagram, PlatformEmail:
		return Platform(s), nil
	}
	return "", fmt.Errorf("unknown platform %q", s)
}

// String returns the platform as a string.
func (p Platform) String() string {
	return string(p)
}
