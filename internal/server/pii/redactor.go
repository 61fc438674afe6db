// Package pii detects and redacts personally identifiable information in
// free text before it reaches logs or audit records.
package pii

import (
	"fmt"
	"regexp"
	"strings"
)

// Pattern names accepted by NewRedactor.
const (
	PatternSSN        = "ssn"
	PatternEmail      = "email"
	PatternPhone      = "phone"
	PatternCreditCard = "credit_card"
	PatternIPAddress  = "ip_address"
)

var patterns = map[string]*regexp.Regexp{
	// US format: XXX-XX-XXXX
	PatternSSN:   regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
	PatternEmail: regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
	PatternPhone: regexp.MustCompile(`\b(\+\d{1,2}\s?)?(\(?\d{3}\)?[\s.-]?)?\d{3}[\s.-]?\d{4}\b`),
	PatternCreditCard: regexp.MustCompile(
		`\b\d{4}[\s-]?\d{4}[\s-]?\d{4}[\s-]?\d{4}\b`),
	PatternIPAddress: regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`),
}

// Redactor replaces matches of the enabled patterns with
// [REDACTED_<PATTERN>] markers.
type Redactor struct {
	enabled []string
}

// NewRedactor builds a Redactor for the given pattern names. Unknown names
// are ignored so that config typos degrade to no-ops rather than panics.
func NewRedactor(enabled []string) *Redactor {
	known := make([]string, 0, len(enabled))
	for _, name := range enabled {
		if _, ok := patterns[name]; ok {
			known = append(known, name)
		}
	}
	return &Redactor{enabled: known}
}

// Redact returns text with all enabled pattern matches replaced.
func (r *Redactor) Redact(text string) string {
	if text == "" {
		return text
	}
	redacted := text
	for _, name := range r.enabled {
		replacement := fmt.Sprintf("[REDACTED_%s]", strings.ToUpper(name))
		redacted = patterns[name].ReplaceAllString(redacted, replacement)
	}
	return redacted
}

// Scan reports whether text contains any known PII pattern (enabled or not)
// and which pattern names were detected.
func Scan(text string) (bool, []string) {
	var detected []string
	for name, re := range patterns {
		if re.MatchString(text) {
			detected = append(detected, name)
		}
	}
	return len(detected) > 0, detected
}
