package validation

import (
	"net/mail"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

func init() {
	gojsonschema.FormatCheckers.Add("email", EmailFormatChecker{})
}

// EmailFormatChecker accepts only a bare addr-spec whose domain has a dot.
// Display-name forms such as "John <john@example.com>" are rejected because the
// value is stored and used as a delivery address as-is.
type EmailFormatChecker struct{}

func (EmailFormatChecker) IsFormat(input interface{}) bool {
	s, ok := input.(string)
	if !ok {
		return true
	}

	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Name != "" || addr.Address != s {
		return false
	}

	at := strings.LastIndex(s, "@")
	if at <= 0 {
		return false
	}
	domain := s[at+1:]
	dot := strings.LastIndex(domain, ".")
	return dot > 0 && dot < len(domain)-1
}
