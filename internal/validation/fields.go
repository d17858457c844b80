package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	emailRegex = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)
	imageRegex = regexp.MustCompile(`(?i)(\.jpg|\.png|\.jpeg|\.gif)$`)
)

const passwordSymbols = "!@#$%^&*"

const minPasswordLength = 8

func IsEmail(s string) bool {
	return emailRegex.MatchString(s)
}

// IsStrongPassword requires at least 8 characters with one lowercase letter,
// one uppercase letter, one digit and one symbol from !@#$%^&*.
func IsStrongPassword(s string) bool {
	if utf8.RuneCountInString(s) < minPasswordLength {
		return false
	}
	var lower, upper, digit, symbol bool
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		}
	}
	return lower && upper && digit && symbol
}

func IsImageFilename(name string) bool {
	return imageRegex.MatchString(name)
}

// ImageExtension returns the matched extension with its original casing, or ""
// when the name is not an allowed image.
func ImageExtension(name string) string {
	return imageRegex.FindString(name)
}
