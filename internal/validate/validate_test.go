package validate

import (
	"strings"
	"testing"
	"time"
)

// validItem returns a portfolio item that passes every check.
func validItem() *PortfolioItem {
	return &PortfolioItem{
		Title:       "Brand Refresh",
		Client:      "Acme Co",
		Category:    "Branding",
		Year:        2024,
		Slug:        "brand-refresh",
		Tagline:     "A complete identity overhaul",
		Description: "<p>Long form case study</p>",
		Role:        "Lead design",
		Duration:    "3 months",
		Tags:        []string{"branding", "identity"},
		LiveURL:     "https://example.com",
		Thumbnail:   "/images/acme-thumb.jpg",
		HeroImage:   "/images/acme-hero.jpg",
		Gallery:     []string{"/images/acme-1.jpg"},
	}
}

func TestValidatePortfolioItem_Valid(t *testing.T) {
	r := ValidatePortfolioItem(validItem())
	if !r.Valid {
		t.Fatalf("expected valid, got errors: %v", r.Errors)
	}
}

func TestValidatePortfolioItem_FieldFailures(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*PortfolioItem)
		wantField string
	}{
		{"missing title", func(p *PortfolioItem) { p.Title = "" }, "title"},
		{"missing client", func(p *PortfolioItem) { p.Client = "  " }, "client"},
		{"title too long", func(p *PortfolioItem) { p.Title = strings.Repeat("a", 201) }, "title"},
		{"year too early", func(p *PortfolioItem) { p.Year = 1999 }, "year"},
		{"year in far future", func(p *PortfolioItem) { p.Year = time.Now().Year() + 2 }, "year"},
		{"uppercase slug", func(p *PortfolioItem) { p.Slug = "Brand-Refresh" }, "slug"},
		{"slug with spaces", func(p *PortfolioItem) { p.Slug = "brand refresh" }, "slug"},
		{"empty slug", func(p *PortfolioItem) { p.Slug = "" }, "slug"},
		{"too many tags", func(p *PortfolioItem) { p.Tags = make([]string, 21) }, "tags"},
		{"unsafe live url", func(p *PortfolioItem) { p.LiveURL = "http://192.168.1.1" }, "liveUrl"},
		{"metadata live url", func(p *PortfolioItem) { p.LiveURL = "http://169.254.169.254/latest/meta-data/" }, "liveUrl"},
		{"javascript live url", func(p *PortfolioItem) { p.LiveURL = "javascript:alert(1)" }, "liveUrl"},
		{"description too long", func(p *PortfolioItem) { p.Description = strings.Repeat("a", 5001) }, "description"},
		{"too many gallery images", func(p *PortfolioItem) { p.Gallery = make([]string, 51) }, "gallery"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := validItem()
			tt.mutate(item)
			r := ValidatePortfolioItem(item)
			if r.Valid {
				t.Fatal("expected invalid")
			}
			if _, ok := r.Errors[tt.wantField]; !ok {
				t.Errorf("want error on field %q, got %v", tt.wantField, r.Errors)
			}
		})
	}
}

func TestValidatePortfolioItem_EmptyLiveURLAllowed(t *testing.T) {
	item := validItem()
	item.LiveURL = ""
	if r := ValidatePortfolioItem(item); !r.Valid {
		t.Errorf("empty liveUrl should be permitted: %v", r.Errors)
	}
}

func TestValidatePortfolioItem_TrimsFields(t *testing.T) {
	item := validItem()
	item.Title = "  Brand Refresh  "
	r := ValidatePortfolioItem(item)
	if !r.Valid {
		t.Fatalf("unexpected errors: %v", r.Errors)
	}
	if item.Title != "Brand Refresh" {
		t.Errorf("title not trimmed: %q", item.Title)
	}
}

func validContact() *ContactMessage {
	return &ContactMessage{
		Name:    "Jamie Park",
		Email:   "Jamie@Example.com",
		Message: "We would like a full rebrand for our studio.",
	}
}

func TestValidateContactMessage_Valid(t *testing.T) {
	msg := validContact()
	r := ValidateContactMessage(msg)
	if !r.Valid {
		t.Fatalf("expected valid, got %v", r.Errors)
	}
	if msg.Email != "jamie@example.com" {
		t.Errorf("email not normalized: %q", msg.Email)
	}
}

func TestValidateContactMessage_FieldFailures(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*ContactMessage)
		wantField string
	}{
		{"missing name", func(m *ContactMessage) { m.Name = "" }, "name"},
		{"angle brackets in name", func(m *ContactMessage) { m.Name = "<img>" }, "name"},
		{"backtick in name", func(m *ContactMessage) { m.Name = "a`b" }, "name"},
		{"braces in company", func(m *ContactMessage) { m.Company = "{{evil}}" }, "company"},
		{"missing email", func(m *ContactMessage) { m.Email = "" }, "email"},
		{"bad email", func(m *ContactMessage) { m.Email = "not-an-email" }, "email"},
		{"phone too short", func(m *ContactMessage) { m.Phone = "123" }, "phone"},
		{"phone bad charset", func(m *ContactMessage) { m.Phone = "call me maybe" }, "phone"},
		{"message too short", func(m *ContactMessage) { m.Message = "hi" }, "message"},
		{"message too long", func(m *ContactMessage) { m.Message = strings.Repeat("a", 2001) }, "message"},
		{"too many services", func(m *ContactMessage) { m.Services = make([]string, 21) }, "services"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := validContact()
			tt.mutate(msg)
			r := ValidateContactMessage(msg)
			if r.Valid {
				t.Fatal("expected invalid")
			}
			if _, ok := r.Errors[tt.wantField]; !ok {
				t.Errorf("want error on field %q, got %v", tt.wantField, r.Errors)
			}
		})
	}
}

func TestValidateContactMessage_OptionalPhoneFormats(t *testing.T) {
	ok := []string{"", "+82 10-1234-5678", "(020) 7946 0958", "1234567"}
	for _, phone := range ok {
		msg := validContact()
		msg.Phone = phone
		if r := ValidateContactMessage(msg); !r.Valid {
			t.Errorf("phone %q should be accepted: %v", phone, r.Errors)
		}
	}
}

func TestValidateLogin(t *testing.T) {
	if r := ValidateLogin(&Login{Password: "hunter2!"}); !r.Valid {
		t.Errorf("expected valid, got %v", r.Errors)
	}
	if r := ValidateLogin(&Login{}); r.Valid {
		t.Error("empty password should fail")
	}
	if r := ValidateLogin(&Login{Password: strings.Repeat("a", 201)}); r.Valid {
		t.Error("oversized password should fail")
	}
	if r := ValidateLogin(nil); r.Valid {
		t.Error("nil payload should fail")
	}
}
