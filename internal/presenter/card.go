package presenter

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/pders01/roster/internal/users"
)

// Card is the display projection of one record.
type Card struct {
	ID          int    `json:"id" toml:"id" yaml:"id"`
	Initial     string `json:"initial" toml:"initial" yaml:"initial"`
	Name        string `json:"name" toml:"name" yaml:"name"`
	Handle      string `json:"handle" toml:"handle" yaml:"handle"`
	Email       string `json:"email" toml:"email" yaml:"email"`
	EmailLink   string `json:"email_link" toml:"email_link" yaml:"email_link"`
	Phone       string `json:"phone" toml:"phone" yaml:"phone"`
	PhoneLink   string `json:"phone_link" toml:"phone_link" yaml:"phone_link"`
	Address     string `json:"address" toml:"address" yaml:"address"`
	Website     string `json:"website" toml:"website" yaml:"website"`
	WebsiteLink string `json:"website_link" toml:"website_link" yaml:"website_link"`
	Company     string `json:"company" toml:"company" yaml:"company"`
	// RevealDelay grows with the card's position so cards appear one after another.
	RevealDelay time.Duration `json:"-" toml:"-" yaml:"-"`
}

// NewCard projects r at position index of the rendered sequence.
func NewCard(r users.Record, index int, stagger time.Duration) Card {
	phone := NormalizePhone(r.Phone)
	return Card{
		ID:          r.ID,
		Initial:     Initial(r.Name),
		Name:        r.Name,
		Handle:      "@" + r.Username,
		Email:       r.Email,
		EmailLink:   "mailto:" + r.Email,
		Phone:       phone,
		PhoneLink:   "tel:" + phone,
		Address:     FormatAddress(r.Address),
		Website:     r.Website,
		WebsiteLink: "http://" + r.Website,
		Company:     r.Company.Name,
		RevealDelay: time.Duration(index) * stagger,
	}
}

// Initial is the upper-cased first character of name, or "?" when empty.
func Initial(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if size == 0 || r == utf8.RuneError {
		return "?"
	}
	return string(unicode.ToUpper(r))
}

// NormalizePhone keeps everything before the first space, dropping extensions
// such as "x56442".
func NormalizePhone(raw string) string {
	if i := strings.IndexByte(raw, ' '); i >= 0 {
		return raw[:i]
	}
	return raw
}

func FormatAddress(a users.Address) string {
	return strings.Join([]string{a.Street, a.Suite, a.City, a.Zipcode}, ", ")
}
