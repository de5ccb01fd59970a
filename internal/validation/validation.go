package validation

import (
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxRejectReasonLength bounds moderator-entered rejection reasons.
const MaxRejectReasonLength = 240

// SlugPattern defines the valid farm slug format: lowercase alphanumeric and hyphens.
var SlugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// ValidateRejectReason trims the reason and reports whether it is acceptable:
// non-empty after trimming and at most 240 characters.
func ValidateRejectReason(reason string) (string, bool) {
	// Characters, not bytes: the limit must not shrink for accented text.
	reason = strings.TrimSpace(reason)
	if reason == "" || utf8.RuneCountInString(reason) > MaxRejectReasonLength {
		return "", false
	}
	return reason, true
}

// ValidateSlug checks if a farm slug matches the allowed pattern.
func ValidateSlug(slug string) bool {
	if slug == "" || len(slug) > 100 {
		return false
	}
	return SlugPattern.MatchString(slug)
}

// ValidateEmail checks if an address parses as a bare RFC 5322 address.
// Empty is allowed: submitters may stay anonymous.
func ValidateEmail(address string) bool {
	if address == "" {
		return true
	}
	addr, err := mail.ParseAddress(address)
	return err == nil && addr.Address == address
}

// ValidatePhotoURL checks if a photo URL is valid and uses http or https.
// This prevents javascript:, data:, and other dangerous URL schemes.
func ValidatePhotoURL(urlStr string) (bool, string) {
	if urlStr == "" {
		return false, "URL is required"
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return false, "Invalid URL format"
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false, "URL must use http:// or https:// scheme"
	}

	if u.Host == "" {
		return false, "URL must have a valid host"
	}

	return true, ""
}
