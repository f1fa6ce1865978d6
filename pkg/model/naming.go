package model

import (
	"fmt"
	"hash/fnv"
	"strings"
)

const maxNameLen = 63

// Slug joins the given parts into a DNS-1123 compatible name with a short
// content hash suffix. The result is a pure function of the inputs, so
// re-invocation never renames existing manifests.
func Slug(parts ...string) string {
	h := fnv.New32a()
	var cleaned []string
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
		if c := sanitize(p); c != "" {
			cleaned = append(cleaned, c)
		}
	}
	suffix := fmt.Sprintf("%08x", h.Sum32())
	name := strings.Join(cleaned, "-")
	if name == "" {
		return suffix
	}
	if len(name) > maxNameLen-9 {
		name = strings.TrimRight(name[:maxNameLen-9], "-")
	}
	return name + "-" + suffix
}

func sanitize(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	lastDash := true
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
