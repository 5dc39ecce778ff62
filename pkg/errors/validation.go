package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// githubLogin matches GitHub user names: 1-39 alphanumerics or single
// hyphens, not starting or ending with a hyphen.
var githubLogin = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9]|-[A-Za-z0-9]){0,38}$`)

// ValidateLogin validates a GitHub login used as the identity for seeding
// and fetching. The core never interprets the identity; this check guards the
// GraphQL query and cache keys built from it.
func ValidateLogin(login string) error {
	if login == "" {
		return New(ErrCodeConfig, "login is required (set --user, BLOCKFALL_USER, or user in the config file)")
	}
	if len(login) > 39 {
		return New(ErrCodeInvalidLogin, "login too long (max 39 characters)")
	}
	for _, r := range login {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidLogin, "login contains invalid control characters")
		}
	}
	if !githubLogin.MatchString(login) {
		return New(ErrCodeInvalidLogin, "invalid login: %q", login)
	}
	return nil
}

// ValidateOutputPath validates an output base path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No backslashes (Windows-style paths)
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "output path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "output path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "output path contains invalid characters")
		}
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidInput, "output path cannot contain backslashes")
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
