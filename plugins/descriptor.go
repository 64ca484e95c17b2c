// Package plugins partitions opaque key/value metadata into plugin-owned
// groups.  Plugin authors use inconsistent, undocumented key-naming
// conventions, so the grouping is heuristic: descriptors carry a set of
// candidate key prefixes derived from the plugin slug, and classification is
// longest-prefix-first so a generic prefix can't claim a more specific
// plugin's keys.
package plugins

import "strings"

// Descriptor represents one detected or declared extension.  Recomputed on
// each run; only a summary is persisted in the export manifest.
type Descriptor struct {
	// Canonical plugin slug, e.g. "seo-by-rank-math".  Doubles as the group
	// name in classification output.
	Slug    string
	Name    string
	Version string

	// Candidate key prefixes, most of them derived from Slug.  Never empty
	// for a generated descriptor.
	Prefixes []string

	// AutoDiscovered marks synthetic descriptors invented for key prefixes
	// no known plugin claimed.  Callers can use it to tell confident
	// matches from best-effort ones.
	AutoDiscovered bool
}

// NewDescriptor builds a descriptor with heuristically generated prefix
// candidates for the given plugin slug.
func NewDescriptor(slug, name, version string) Descriptor {
	return Descriptor{
		Slug:     slug,
		Name:     name,
		Version:  version,
		Prefixes: CandidatePrefixes(slug),
	}
}

// longestPrefix is the sort key for matching order: descriptors with a
// longer best candidate are tried first.
func (d Descriptor) longestPrefix() int {
	longest := 0
	for _, p := range d.Prefixes {
		if len(p) > longest {
			longest = len(p)
		}
	}
	return longest
}

// Leading qualifiers that rarely appear in metadata keys: "seo-by-rank-math"
// stores its keys under rank_math_*, not seo_by_rank_math_*.
var leadingQualifiers = []string{
	"seo-by-",
	"wordpress-",
	"wp-",
	"simple-",
	"easy-",
	"advanced-",
	"ultimate-",
}

// Suffix qualifiers that distinguish paid tiers but share a key namespace
// with the base plugin.
var suffixQualifiers = []string{
	"-pro",
	"-premium",
	"-lite",
	"-free",
	"-plus",
}

// Known irregular slug→prefix mappings the heuristics can't derive.
var irregularPrefixes = map[string][]string{
	"seo-by-rank-math":       {"rank_math", "rankmath"},
	"wordpress-seo":          {"yoast", "wpseo", "yoast_wpseo"},
	"advanced-custom-fields": {"acf"},
	"woocommerce":            {"wc", "woo"},
	"elementor":              {"_elementor"},
	"all-in-one-seo-pack":    {"aioseo"},
	"contact-form-7":         {"wpcf7"},
	"wp-super-cache":         {"wpsc"},
	"really-simple-ssl":      {"rsssl"},
	"w3-total-cache":         {"w3tc"},
}

// CandidatePrefixes generates the set of metadata key prefixes a plugin with
// the given slug plausibly uses.  All generated forms are deduplicated,
// order-stable, and lowercased.
func CandidatePrefixes(slug string) []string {
	slug = strings.ToLower(strings.TrimSpace(slug))

	seen := map[string]bool{}
	out := []string{}
	add := func(candidate string) {
		candidate = strings.Trim(candidate, "-_")
		// An underscore-led prefix like "_elementor" is legitimate, so only
		// trim from the irregular table's input, not its output.
		if len(candidate) < 2 || seen[candidate] {
			return
		}
		seen[candidate] = true
		out = append(out, candidate)
	}

	add(slug)
	add(strings.ReplaceAll(slug, "-", "_"))

	stripped := slug
	for _, q := range leadingQualifiers {
		stripped = strings.TrimPrefix(stripped, q)
	}
	for _, q := range suffixQualifiers {
		stripped = strings.TrimSuffix(stripped, q)
	}
	add(stripped)
	add(strings.ReplaceAll(stripped, "-", "_"))

	words := strings.Split(stripped, "-")
	if len(words) >= 2 {
		initialism := ""
		for _, w := range words {
			if w != "" {
				initialism += w[:1]
			}
		}
		if len(initialism) >= 2 {
			add(initialism)
		}

		lastTwo := words[len(words)-2:]
		add(strings.Join(lastTwo, "_"))
		add(strings.Join(lastTwo, "-"))
	}
	add(words[0])

	for _, extra := range irregularPrefixes[slug] {
		if !seen[extra] {
			seen[extra] = true
			out = append(out, extra)
		}
	}

	return out
}
