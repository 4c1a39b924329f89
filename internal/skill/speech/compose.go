// Package speech builds spoken reply text from controller-supplied templates.
package speech

import (
	"fmt"
	"strings"
)

// Placeholder is the marker inside confirmation and response templates that
// is replaced with the user's value.
const Placeholder = "<response>"

// Compose substitutes the user's value into a controller-supplied template.
// An empty template yields the fallback acknowledgement instead.
func Compose(template string, value any, fallback string) string {
	if template == "" {
		return fallback
	}
	return strings.ReplaceAll(template, Placeholder, fmt.Sprint(value))
}
