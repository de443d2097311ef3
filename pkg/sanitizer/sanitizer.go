package sanitizer

import (
	"strings"

	"billboards/pkg/model"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

const MaxMessageLength = 2000

// SanitizeContact normalizes every field of a booking contact in place.
func SanitizeContact(c *model.Contact) {
	c.Name = NormalizeName(c.Name)
	c.Email = NormalizeEmail(c.Email)
	c.Phone = NormalizePhone(c.Phone)
	c.Company = NormalizeName(c.Company)
}

// SanitizeMessage trims free text and bounds its length.
func SanitizeMessage(s string) string {
	return Pipeline{
		TrimAndNormalize,
		func(s string) string { return truncateRunes(s, MaxMessageLength) },
	}.Apply(s)
}

// SanitizeBillboard normalizes the owner supplied text of a billboard.
func SanitizeBillboard(b *model.Billboard) {
	b.Name = NormalizeName(b.Name)
	b.OwnerID = strings.TrimSpace(b.OwnerID)
	b.Location.Address = TrimAndNormalize(b.Location.Address)
	b.Location.City = NormalizeCity(b.Location.City)
	b.Size.Unit = strings.ToLower(strings.TrimSpace(b.Size.Unit))
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}
