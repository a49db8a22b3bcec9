package normalize

import "strings"

// Style holds inline CSS declarations keyed by lower-case property name.
type Style map[string]string

// ParseStyle parses a style attribute value. Malformed declarations are
// skipped; "!important" is dropped from values.
func ParseStyle(raw string) Style {
	var s Style
	for _, decl := range strings.Split(raw, ";") {
		prop, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		value = strings.TrimSpace(value)
		value = strings.TrimSpace(strings.TrimSuffix(value, "!important"))
		if prop == "" || value == "" {
			continue
		}
		if s == nil {
			s = make(Style)
		}
		s[prop] = value
	}
	return s
}

// Get returns the lower-cased value of prop, or "".
func (s Style) Get(prop string) string {
	return strings.ToLower(s[prop])
}

// Raw returns the value of prop as written.
func (s Style) Raw(prop string) string {
	return s[prop]
}
