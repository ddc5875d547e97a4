package scraper

import (
	"strings"
	"unicode"
)

// Listing identifies one scraped page
type Listing struct {
	URL   string
	Title string
	VIN   string
}

// DirName returns "{title}_{vin}", optionally made safe for use as a
// directory name
func (l Listing) DirName(sanitize bool) string {
	name := l.Title + "_" + l.VIN
	if sanitize {
		return SanitizeName(name)
	}
	return name
}

// CleanVIN strips the "VIN:" label, asterisks and surrounding whitespace
func CleanVIN(raw string) string {
	vin := strings.ReplaceAll(raw, "VIN:", "")
	vin = strings.ReplaceAll(vin, "*", "")
	return strings.TrimSpace(vin)
}

// CleanTitle trims the title text
func CleanTitle(raw string) string {
	return strings.TrimSpace(raw)
}

// SanitizeName replaces path separators, characters reserved on common
// filesystems and control characters with '_'. A name made only of dots is
// prefixed so it cannot point at the current or parent directory.
func SanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case strings.ContainsRune(`<>:"/\|?*`, r), unicode.IsControl(r):
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}

	out := b.String()
	if strings.Trim(out, ".") == "" {
		out = "_" + out
	}
	return out
}
