// Package locale loads the spoken-message catalog used for prompts and error
// replies.
//
// Messages live in an embedded language_strings.json file keyed by locale tag.
// A request locale like "fr-CA" first picks the broader "fr" translations and
// then overlays any "fr-CA" specific entries on top.  Unknown languages fall
// back to English.  The file is validated against an embedded JSON schema at
// load time so a malformed catalog fails fast at startup instead of producing
// empty speech mid-turn.
package locale

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Message keys present for every language in the catalog.
const (
	Okay              = "OKAY"
	Selected          = "SELECTED"
	Error400          = "ERROR_400"
	Error401          = "ERROR_401"
	Error404          = "ERROR_404"
	ErrorConfig       = "ERROR_CONFIG"
	ErrorAcoustic     = "ERROR_ACOUSTIC"
	ErrorSpecificDate = "ERROR_SPECIFIC_DATE"
	StopMessage       = "STOP_MESSAGE"
)

// fallbackLanguage is used when the request locale has no translations at all.
const fallbackLanguage = "en"

//go:embed language_strings.json
var stringsJSON []byte

//go:embed language_strings.schema.json
var schemaJSON string

// Strings is the message catalog for a single resolved locale.
type Strings map[string]string

// Get returns the message for key.  A missing key returns the key itself so
// the gap is audible in testing rather than silently spoken as nothing.
func (s Strings) Get(key string) string {
	if v, ok := s[key]; ok {
		return v
	}
	return key
}

// Format renders the message for key with fmt.Sprintf-style arguments.
func (s Strings) Format(key string, args ...any) string {
	return fmt.Sprintf(s.Get(key), args...)
}

// Catalog holds the parsed catalog for all languages.
type Catalog struct {
	locales map[string]Strings
}

// Load parses and validates the embedded language_strings.json.
func Load() (*Catalog, error) {
	return LoadFrom(stringsJSON)
}

// LoadFrom parses and validates a catalog from raw JSON.  Exposed so tests
// and deployments with a custom strings file can reuse the same validation.
func LoadFrom(data []byte) (*Catalog, error) {
	schema, err := jsonschema.CompileString("language_strings.schema.json", schemaJSON)
	if err != nil {
		return nil, fmt.Errorf("compile locale schema: %w", err)
	}

	var doc any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse language strings: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("validate language strings: %w", err)
	}

	var locales map[string]Strings
	if err := json.Unmarshal(data, &locales); err != nil {
		return nil, fmt.Errorf("decode language strings: %w", err)
	}
	return &Catalog{locales: locales}, nil
}

// ForLocale resolves the message catalog for a request locale tag such as
// "de-DE".  The 2-letter language entry is the base; an exact-tag entry, when
// present, overrides individual messages.  Unknown languages resolve to the
// English catalog.
func (c *Catalog) ForLocale(tag string) Strings {
	lang := tag
	if len(tag) >= 2 {
		lang = strings.ToLower(tag[:2])
	}

	base, ok := c.locales[lang]
	if !ok {
		base = c.locales[fallbackLanguage]
	}

	resolved := make(Strings, len(base))
	for k, v := range base {
		resolved[k] = v
	}
	if exact, ok := c.locales[tag]; ok {
		for k, v := range exact {
			resolved[k] = v
		}
	}
	return resolved
}

// Languages returns the 2-letter language codes present in the catalog.
func (c *Catalog) Languages() []string {
	var langs []string
	for tag := range c.locales {
		if len(tag) == 2 {
			langs = append(langs, tag)
		}
	}
	return langs
}
