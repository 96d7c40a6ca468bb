// Package sanitize strips and normalizes untrusted strings before they are
// stored or surfaced: rich text through an allow-list HTML policy, plain
// fields through a strict no-markup policy, error values through a
// leak-proof message filter, and slugs through a canonicalizer.
package sanitize

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// htmlPolicy allows only inert formatting elements with no attributes.
// Script tags, event-handler attributes, and javascript: links are all
// outside the allow-list and removed regardless of case or nesting.
var (
	htmlPolicy     *bluemonday.Policy
	htmlPolicyOnce sync.Once
)

// textPolicy removes all markup unconditionally.
var (
	textPolicy     *bluemonday.Policy
	textPolicyOnce sync.Once
)

func getHTMLPolicy() *bluemonday.Policy {
	htmlPolicyOnce.Do(func() {
		htmlPolicy = bluemonday.NewPolicy()
		htmlPolicy.AllowElements("b", "i", "em", "strong", "p", "br", "ul", "ol", "li")
	})
	return htmlPolicy
}

func getTextPolicy() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}

// HTML sanitizes user-provided rich text, keeping only basic formatting
// tags (b, i, em, strong, p, br, ul, ol, li) and stripping every attribute.
// Non-ASCII text, including multi-byte emoji, passes through unchanged.
// Must be called on all rich-text input before it reaches the database.
func HTML(input string) string {
	if input == "" {
		return ""
	}
	return getHTMLPolicy().Sanitize(input)
}

// Text removes all markup from input, returning inert plain text.
func Text(input string) string {
	if input == "" {
		return ""
	}
	return getTextPolicy().Sanitize(input)
}
