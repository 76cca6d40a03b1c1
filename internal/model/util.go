package model

import "strings"

// SlugFromName derives a URL-safe slug from a church name: lower-cased, with
// runs of whitespace collapsed to single hyphens. Slugs are not required to be
// unique; two churches with the same name will share a slug.
func SlugFromName(name string) string {
	fields := strings.Fields(strings.ToLower(name))
	return strings.Join(fields, "-")
}
