package models

import (
	"math/rand/v2"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	DefaultOrderPrefix = "MS"
	ProductPrefix      = "PROD"
	codeSuffixLen      = 5
	base36Alphabet     = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

var codePattern = regexp.MustCompile(`^[A-Z0-9]+-\d{8}-[0-9A-Z]{5}$`)

// NewOrderCode returns a human readable order code like MS-20250131-4K7QZ.
func NewOrderCode(prefix string, now time.Time) string {
	if prefix == "" {
		prefix = DefaultOrderPrefix
	}
	return newCode(prefix, now)
}

// NewProductCode returns a product code like PROD-20250131-0A1B2.
func NewProductCode(now time.Time) string {
	return newCode(ProductPrefix, now)
}

// IsCode reports whether s has the PREFIX-YYYYMMDD-XXXXX shape.
func IsCode(s string) bool {
	return codePattern.MatchString(s)
}

func newCode(prefix string, now time.Time) string {
	var sb strings.Builder
	sb.WriteString(strings.ToUpper(prefix))
	sb.WriteByte('-')
	sb.WriteString(now.Format("20060102"))
	sb.WriteByte('-')
	for i := 0; i < codeSuffixLen; i++ {
		sb.WriteByte(base36Alphabet[rand.IntN(len(base36Alphabet))])
	}
	return sb.String()
}

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)
	accentFold  = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Slugify lowercases s, folds accents and joins words with dashes.
func Slugify(s string) string {
	folded, _, err := transform.String(accentFold, s)
	if err != nil {
		folded = s
	}
	slug := slugInvalid.ReplaceAllString(strings.ToLower(folded), "-")
	return strings.Trim(slug, "-")
}
