package localstore

import (
	"fmt"
	"regexp"
	"strings"
)

// Canonicalise turns an arbitrary name into a filesystem-safe directory
// slug.
func Canonicalise(name string) (string, error) {
	str := regexp.MustCompile(`[^a-zA-Z0-9]+`).ReplaceAllString(name, " ")
	str = strings.ToLower(str)
	str = strings.Join(strings.Fields(str), "-")

	if len(str) > 101 {
		str = str[:100]
	}

	str = strings.Trim(str, "-")

	if len(str) < 2 {
		return "", fmt.Errorf("localstore: slug too short: name was '%s'", name)
	}

	return str, nil
}
