package validation

import (
	"regexp"
)

// Validation rule patterns
var (
	EmailPattern    = `^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,4}$`
	UsernamePattern = `^[a-zA-Z0-9_]{3,50}$`

	PasswordMinLength = 8

	TitleMinLength = 3
	TitleMaxLength = 200
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Email    *regexp.Regexp
	Username *regexp.Regexp
}{
	Email:    regexp.MustCompile(EmailPattern),
	Username: regexp.MustCompile(UsernamePattern),
}

// IsValidEmail reports whether the address matches the email pattern
func IsValidEmail(email string) bool {
	return CompiledPatterns.Email.MatchString(email)
}

// IsValidUsername reports whether the username is 3-50 word characters
func IsValidUsername(username string) bool {
	return CompiledPatterns.Username.MatchString(username)
}

// IsValidPassword reports whether the password meets the length floor
func IsValidPassword(password string) bool {
	return len(password) >= PasswordMinLength
}

// IsValidTitle reports whether a course title is within bounds
func IsValidTitle(title string) bool {
	return len(title) >= TitleMinLength && len(title) <= TitleMaxLength
}
