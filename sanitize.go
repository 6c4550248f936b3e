package showcase

import (
	"regexp"
	"strings"
)

var (
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	// denylist only, this is not an html sanitizer
	markupRegexes = []*regexp.Regexp{
		regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`),
		regexp.MustCompile(`(?is)<iframe\b[^>]*>.*?</iframe\s*>`),
	}
)

func SanitizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SanitizeText removes script and iframe blocks and trims the result.
// Removal repeats until nothing matches so nested fragments cannot
// reassemble into a new block.
func SanitizeText(s string) string {
	for {
		stripped := s
		for _, re := range markupRegexes {
			stripped = re.ReplaceAllString(stripped, "")
		}

		if stripped == s {
			break
		}

		s = stripped
	}

	return strings.TrimSpace(s)
}

// SanitizeParams cleans the named fields of p. Template variables are left
// untouched.
func SanitizeParams(p EmailParams) EmailParams {
	p.ToEmail = SanitizeEmail(p.ToEmail)
	p.FromEmail = SanitizeEmail(p.FromEmail)
	p.FromName = SanitizeText(p.FromName)
	p.Subject = SanitizeText(p.Subject)
	p.Message = SanitizeText(p.Message)

	if p.ToName != "" {
		p.ToName = SanitizeText(p.ToName)
	}

	if p.ReplyTo != "" {
		p.ReplyTo = SanitizeEmail(p.ReplyTo)
	}

	return p
}

func IsValidEmail(s string) bool {
	return emailRegex.MatchString(s)
}
