package usecase

import (
	"fmt"
	"net/url"
	"regexp"
)

// Compiled regex pattern for phone normalization
var nonDigitRegex = regexp.MustCompile(`\D`)

// NormalizePhone strips everything but digits from a phone string.
func NormalizePhone(phone string) string {
	return nonDigitRegex.ReplaceAllString(phone, "")
}

// Reachable reports whether a phone has enough digits to receive outreach.
// Short or empty phones mark a customer as unreachable, not as a data error.
func Reachable(phone string, minDigits int) bool {
	return len(NormalizePhone(phone)) >= minDigits
}

// WhatsAppLink builds the deep link the presentation layer opens to start a
// conversation with a pre-filled message.
func WhatsAppLink(phone, text string) string {
	return fmt.Sprintf("https://wa.me/%s?text=%s", NormalizePhone(phone), url.QueryEscape(text))
}
