package validator

import (
	"net/mail"
	"regexp"
	"strings"
)

const (
	MaxChannelNameLength = 25
	MaxDisplayNameLength = 100
	MaxMessageLength     = 4000
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

// First returns one message, preferring fields in the given order.
func (v ValidationErrors) First(fields ...string) string {
	for _, f := range fields {
		if msg, ok := v[f]; ok {
			return msg
		}
	}
	for _, msg := range v {
		return msg
	}
	return ""
}

var (
	slugRegex    = regexp.MustCompile(`^[a-z0-9-]+$`)
	notSlugRegex = regexp.MustCompile(`[^a-z0-9]`)
)

// Slugify lowercases name and replaces every character outside [a-z0-9]
// with a dash. Surrounding whitespace is dropped first.
func Slugify(name string) string {
	return notSlugRegex.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

func ValidateChannelName(name string) ValidationErrors {
	errs := make(ValidationErrors)

	if name == "" {
		errs.Add("name", "Channel name is required")
	} else if len(name) > MaxChannelNameLength {
		errs.Add("name", "Channel name must be at most 25 characters")
	} else if !slugRegex.MatchString(name) {
		errs.Add("name", "Channel name can only contain lowercase letters, numbers and dashes")
	}

	return errs
}

func ValidateUser(email, displayName string) ValidationErrors {
	errs := make(ValidationErrors)

	// Email
	email = strings.TrimSpace(email)
	if email == "" {
		errs.Add("email", "Email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs.Add("email", "Invalid email address")
	}

	// Display name
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		errs.Add("display_name", "Display name is required")
	} else if len(displayName) > MaxDisplayNameLength {
		errs.Add("display_name", "Display name is too long")
	}

	return errs
}

func ValidateMessage(body string) ValidationErrors {
	errs := make(ValidationErrors)

	if strings.TrimSpace(body) == "" {
		errs.Add("message", "Message cannot be empty")
	} else if len(body) > MaxMessageLength {
		errs.Add("message", "Message is too long")
	}

	return errs
}
