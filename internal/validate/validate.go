// Package validate provides structural validation for the domain objects
// that cross a trust boundary: portfolio items, contact submissions, and
// login payloads. Validators never panic and never return Go errors for bad
// input; every failure is a structured Result with field-level messages the
// caller can present directly.
package validate

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Result is the outcome of validating one object. Errors maps field names
// to human-readable messages; Valid is true iff Errors is empty.
type Result struct {
	Valid  bool
	Errors map[string]string
}

func newResult() *Result {
	return &Result{Valid: true, Errors: make(map[string]string)}
}

func (r *Result) fail(field, format string, args ...any) {
	// First message per field wins; later checks are usually consequences
	// of the first failure.
	if _, seen := r.Errors[field]; seen {
		return
	}
	r.Valid = false
	r.Errors[field] = fmt.Sprintf(format, args...)
}

// slugRe is the strict slug format: the canonical output of sanitize.Slug.
var slugRe = regexp.MustCompile(`^[a-z0-9-]+$`)

// injectionChars are characters associated with template and markup
// injection, rejected in free-text identity fields.
const injectionChars = "<>{}|\\^~[]`"

// phoneRe is a conservative phone charset: digits, spaces, and common
// separators, 7 to 20 characters.
var phoneRe = regexp.MustCompile(`^[\d\s+\-().]{7,20}$`)

// PortfolioItem is the shape checked before a portfolio record may reach
// the remote store. Optional string fields are empty when absent.
type PortfolioItem struct {
	Title       string   `json:"title"`
	Client      string   `json:"client"`
	Category    string   `json:"category"`
	Year        int      `json:"year"`
	Slug        string   `json:"slug"`
	Tagline     string   `json:"tagline"`
	Description string   `json:"description"`
	Challenge   string   `json:"challenge,omitempty"`
	Solution    string   `json:"solution,omitempty"`
	Role        string   `json:"role"`
	Duration    string   `json:"duration"`
	Tags        []string `json:"tags"`
	LiveURL     string   `json:"liveUrl,omitempty"`
	NextProject string   `json:"nextProject,omitempty"`
	Featured    bool     `json:"featured"`
	Order       int      `json:"order,omitempty"`
	Thumbnail   string   `json:"thumbnail"`
	HeroImage   string   `json:"heroImage"`
	Gallery     []string `json:"gallery"`
}

// ContactMessage is the shape checked before a contact submission is
// persisted. Email is normalized to lowercase in place during validation.
type ContactMessage struct {
	Name     string   `json:"name"`
	Company  string   `json:"company,omitempty"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone,omitempty"`
	Message  string   `json:"message"`
	Services []string `json:"services,omitempty"`
	Budget   string   `json:"budget,omitempty"`
}

// Login is the admin login payload.
type Login struct {
	Password string `json:"password"`
}

// ValidatePortfolioItem checks every field of a portfolio item. Trims
// leading/trailing whitespace on text fields in place before checking, so
// the validated value is the value that gets stored.
func ValidatePortfolioItem(item *PortfolioItem) *Result {
	r := newResult()
	if item == nil {
		r.fail("item", "portfolio item is required")
		return r
	}

	trimAll(&item.Title, &item.Client, &item.Category, &item.Slug,
		&item.Tagline, &item.Description, &item.Challenge, &item.Solution,
		&item.Role, &item.Duration, &item.LiveURL, &item.NextProject,
		&item.Thumbnail, &item.HeroImage)

	requireLen(r, "title", item.Title, 1, 200)
	requireLen(r, "client", item.Client, 1, 200)
	requireLen(r, "category", item.Category, 1, 100)

	maxYear := time.Now().Year() + 1
	if item.Year < 2000 || item.Year > maxYear {
		r.fail("year", "year must be between 2000 and %d", maxYear)
	}

	requireLen(r, "slug", item.Slug, 1, 100)
	if item.Slug != "" && !slugRe.MatchString(item.Slug) {
		r.fail("slug", "slug may only contain lowercase letters, digits, and hyphens")
	}

	maxLen(r, "tagline", item.Tagline, 500)
	maxLen(r, "description", item.Description, 5000)
	maxLen(r, "challenge", item.Challenge, 2000)
	maxLen(r, "solution", item.Solution, 2000)
	maxLen(r, "role", item.Role, 200)
	maxLen(r, "duration", item.Duration, 100)
	maxLen(r, "nextProject", item.NextProject, 100)
	maxLen(r, "thumbnail", item.Thumbnail, 500)
	maxLen(r, "heroImage", item.HeroImage, 500)

	if len(item.Tags) > 20 {
		r.fail("tags", "at most 20 tags are allowed")
	}
	for i, tag := range item.Tags {
		item.Tags[i] = strings.TrimSpace(tag)
		if utf8.RuneCountInString(item.Tags[i]) > 50 {
			r.fail("tags", "each tag must be at most 50 characters")
		}
	}

	if len(item.Gallery) > 50 {
		r.fail("gallery", "at most 50 gallery images are allowed")
	}
	for i, img := range item.Gallery {
		item.Gallery[i] = strings.TrimSpace(img)
		if utf8.RuneCountInString(item.Gallery[i]) > 500 {
			r.fail("gallery", "each gallery path must be at most 500 characters")
		}
	}

	maxLen(r, "liveUrl", item.LiveURL, 2048)
	if !IsSafeURL(item.LiveURL) {
		r.fail("liveUrl", "live URL is invalid or not allowed")
	}

	return r
}

// ValidateContactMessage checks a contact submission. Name and company
// reject characters associated with markup/template injection; email is
// normalized to lowercase.
func ValidateContactMessage(msg *ContactMessage) *Result {
	r := newResult()
	if msg == nil {
		r.fail("message", "contact message is required")
		return r
	}

	trimAll(&msg.Name, &msg.Company, &msg.Email, &msg.Phone, &msg.Message, &msg.Budget)

	requireLen(r, "name", msg.Name, 1, 100)
	if strings.ContainsAny(msg.Name, injectionChars) {
		r.fail("name", "name contains disallowed characters")
	}

	maxLen(r, "company", msg.Company, 200)
	if msg.Company != "" && strings.ContainsAny(msg.Company, injectionChars) {
		r.fail("company", "company contains disallowed characters")
	}

	msg.Email = strings.ToLower(msg.Email)
	if msg.Email == "" {
		r.fail("email", "email is required")
	} else if utf8.RuneCountInString(msg.Email) > 254 {
		r.fail("email", "email must be at most 254 characters")
	} else if _, err := mail.ParseAddress(msg.Email); err != nil {
		r.fail("email", "email address is not valid")
	}

	if msg.Phone != "" && !phoneRe.MatchString(msg.Phone) {
		r.fail("phone", "phone number format is not valid")
	}

	if n := utf8.RuneCountInString(msg.Message); n < 5 {
		r.fail("message", "message must be at least 5 characters")
	} else if n > 2000 {
		r.fail("message", "message must be at most 2000 characters")
	}

	if len(msg.Services) > 20 {
		r.fail("services", "at most 20 services may be selected")
	}
	for _, s := range msg.Services {
		if utf8.RuneCountInString(s) > 100 {
			r.fail("services", "each service must be at most 100 characters")
		}
	}

	maxLen(r, "budget", msg.Budget, 100)

	return r
}

// ValidateLogin checks a login payload.
func ValidateLogin(login *Login) *Result {
	r := newResult()
	if login == nil {
		r.fail("password", "password is required")
		return r
	}
	if login.Password == "" {
		r.fail("password", "password is required")
	} else if utf8.RuneCountInString(login.Password) > 200 {
		r.fail("password", "password must be at most 200 characters")
	}
	return r
}

// --- field helpers ---

func trimAll(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}

func requireLen(r *Result, field, value string, min, max int) {
	n := utf8.RuneCountInString(value)
	if n < min {
		r.fail(field, "%s is required", field)
		return
	}
	if n > max {
		r.fail(field, "%s must be at most %d characters", field, max)
	}
}

func maxLen(r *Result, field, value string, max int) {
	if utf8.RuneCountInString(value) > max {
		r.fail(field, "%s must be at most %d characters", field, max)
	}
}
