package match

import (
	"net/url"
	"strings"
)

// BlankURL replaces links whose scheme is not allowed.
const BlankURL = "about:blank"

var linkSchemes = map[string]bool{
	"http": true, "https": true, "mailto": true, "tel": true, "sms": true,
}

var mediaSchemes = map[string]bool{
	"http": true, "https": true,
}

// cleanURL strips what browsers ignore in URLs: surrounding whitespace
// and control characters, plus embedded tabs and newlines.
func cleanURL(raw string) string {
	raw = strings.TrimFunc(raw, func(r rune) bool { return r <= ' ' })
	return strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, raw)
}

func scheme(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	return strings.ToLower(u.Scheme), true
}

// SanitizeLink returns href, or BlankURL when its scheme could execute
// code (javascript:, vbscript:, data:) or it does not parse.
func SanitizeLink(href string) string {
	href = cleanURL(href)
	s, ok := scheme(href)
	if !ok {
		return BlankURL
	}
	if s == "" || linkSchemes[s] {
		return href
	}
	return BlankURL
}

// SanitizeImage accepts http(s), relative and data:image sources.
func SanitizeImage(src string) (string, bool) {
	src = cleanURL(src)
	if src == "" {
		return "", false
	}
	if strings.HasPrefix(strings.ToLower(src), "data:image/") {
		return src, true
	}
	return SanitizeMedia(src)
}

// SanitizeMedia accepts http(s) and relative sources.
func SanitizeMedia(src string) (string, bool) {
	src = cleanURL(src)
	if src == "" {
		return "", false
	}
	s, ok := scheme(src)
	if !ok || (s != "" && !mediaSchemes[s]) {
		return "", false
	}
	return src, true
}
