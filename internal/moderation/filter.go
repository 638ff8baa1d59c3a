// Package moderation screens user-written text before it is stored.
package moderation

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/ahmetcoskunkizilkaya/gameshelf-backend/internal/apperr"
)

type Reason string

const (
	ReasonLanguage    Reason = "inappropriate_language"
	ReasonURL         Reason = "url_not_allowed"
	ReasonContactInfo Reason = "contact_info_not_allowed"
	ReasonSpam        Reason = "spam_detected"
	ReasonCaps        Reason = "excessive_caps"
	ReasonEmpty       Reason = "empty"
	ReasonTooLong     Reason = "too_long"
)

var BannedWords = []string{
	"fuck", "fucking", "fucker", "shit", "shitty", "bullshit",
	"asshole", "bastard", "bitch", "cunt",
	"nigger", "nigga", "chink", "spic", "kike", "faggot", "fag",
	"retard", "retarded", "tranny",
	"porn", "porno", "nude", "nudes",
	"scam", "scammer", "phishing", "malware",
}

var rejectionMessages = map[Reason]string{
	ReasonLanguage:    "Your text contains inappropriate language.",
	ReasonURL:         "URLs and web links are not allowed.",
	ReasonContactInfo: "Contact information is not allowed.",
	ReasonSpam:        "Your text appears to be spam.",
	ReasonCaps:        "Please avoid using excessive capital letters.",
	ReasonEmpty:       "Text must not be empty.",
	ReasonTooLong:     "Text is too long.",
}

// Filter is safe for concurrent use; all patterns are compiled up front.
type Filter struct {
	maxLen       int
	allowLinks   bool
	bannedWords  []*regexp.Regexp
	urlPattern   *regexp.Regexp
	emailPattern *regexp.Regexp
	phonePattern *regexp.Regexp
	capsPattern  *regexp.Regexp
}

type Option func(*Filter)

// WithMaxLength caps text length in runes. Zero disables the check.
func WithMaxLength(n int) Option {
	return func(f *Filter) { f.maxLen = n }
}

// AllowLinks lets URLs through, e.g. for private messages.
func AllowLinks() Option {
	return func(f *Filter) { f.allowLinks = true }
}

func New(opts ...Option) *Filter {
	f := &Filter{maxLen: 5000}
	for _, opt := range opts {
		opt(f)
	}

	f.bannedWords = make([]*regexp.Regexp, 0, len(BannedWords))
	for _, word := range BannedWords {
		f.bannedWords = append(f.bannedWords, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(word)+`\b`))
	}
	f.urlPattern = regexp.MustCompile(`(?i)(https?://\S+|www\.\S+\.\S+)`)
	f.emailPattern = regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	f.phonePattern = regexp.MustCompile(`\d{3}[-.\s]?\d{3}[-.\s]?\d{4}|\(\d{3}\)\s*\d{3}[-.\s]?\d{4}`)
	// RE2 has no backreferences, so runs of the same character are found by scan.
	f.capsPattern = regexp.MustCompile(`[A-Z]{5,}`)
	return f
}

// Check returns the first rule text violates, or "" when it passes.
func (f *Filter) Check(text string) Reason {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ReasonEmpty
	}
	if f.maxLen > 0 && len([]rune(trimmed)) > f.maxLen {
		return ReasonTooLong
	}
	for _, re := range f.bannedWords {
		if re.MatchString(trimmed) {
			return ReasonLanguage
		}
	}
	if !f.allowLinks && f.urlPattern.MatchString(trimmed) {
		return ReasonURL
	}
	if f.emailPattern.MatchString(trimmed) || f.phonePattern.MatchString(trimmed) {
		return ReasonContactInfo
	}
	if hasRun(trimmed, 5) {
		return ReasonSpam
	}
	if len(f.capsPattern.FindAllString(trimmed, -1)) > 2 {
		return ReasonCaps
	}
	return ""
}

// Validate wraps Check as an InvalidOperation error carrying the user-facing
// message, and returns the trimmed text when it passes.
func (f *Filter) Validate(text string) (string, error) {
	if reason := f.Check(text); reason != "" {
		return "", apperr.Invalid("%s", Message(reason))
	}
	return strings.TrimSpace(text), nil
}

func Message(reason Reason) string {
	if msg, ok := rejectionMessages[reason]; ok {
		return msg
	}
	return "Your text does not meet our content guidelines."
}

// hasRun reports whether any rune other than a space or digit repeats n or more times in a row.
func hasRun(s string, n int) bool {
	var prev rune
	count := 0
	for _, r := range strings.ToLower(s) {
		if r == prev && !unicode.IsSpace(r) && !unicode.IsDigit(r) {
			count++
			if count >= n {
				return true
			}
			continue
		}
		prev = r
		count = 1
	}
	return false
}
