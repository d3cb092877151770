package services

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer cleans user supplied text before it is stored.
type Sanitizer struct {
	rich  *bluemonday.Policy
	plain *bluemonday.Policy
}

// NewSanitizer allows basic formatting in post bodies and no markup in comments.
func NewSanitizer() *Sanitizer {
	rich := bluemonday.UGCPolicy()
	rich.AllowRelativeURLs(false)
	rich.RequireNoReferrerOnLinks(true)
	rich.AddTargetBlankToFullyQualifiedLinks(true)

	return &Sanitizer{
		rich:  rich,
		plain: bluemonday.StrictPolicy(),
	}
}

// HTML keeps safe formatting tags and drops scripts, styles and event handlers.
func (s *Sanitizer) HTML(raw string) string {
	return strings.TrimSpace(s.rich.Sanitize(raw))
}

// Text strips every tag.
func (s *Sanitizer) Text(raw string) string {
	return strings.TrimSpace(s.plain.Sanitize(raw))
}
