// Package browserurl pulls a URL out of a focused browser window's title,
// when the page title happens to embed one.
package browserurl

import (
	"regexp"
	"strings"
)

var browserApps = map[string]struct{}{
	"chrome":  {},
	"edge":    {},
	"firefox": {},
	"brave":   {},
	"opera":   {},
	"vivaldi": {},
	"arc":     {},
}

var urlPattern = regexp.MustCompile(`https?://\S+`)

const trailingCutset = ",.;)]}>\"'"

// Extract returns a URL found in windowTitle, or "" if the window isn't a
// focused, recognized browser, or no URL is present.
func Extract(isFocused bool, appName, windowTitle string) string {
	if !isFocused {
		return ""
	}
	if !isBrowser(appName) {
		return ""
	}

	match := urlPattern.FindString(windowTitle)
	if match == "" {
		return ""
	}

	return strings.TrimRight(match, trailingCutset)
}

func isBrowser(appName string) bool {
	lower := strings.ToLower(appName)
	for app := range browserApps {
		if strings.Contains(lower, app) {
			return true
		}
	}
	return false
}
