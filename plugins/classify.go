package plugins

import (
	"reflect"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Bag is a flat key→value mapping: one item's metadata, or the site's
// options.  Values are whatever the JSON decoder produced.
type Bag map[string]any

// ReservedKeys describes system-internal keys that never belong to any
// plugin and are never exported.
type ReservedKeys struct {
	Prefixes []string
	Exact    []string
}

// MetaReserved covers WordPress-internal post metadata.
var MetaReserved = ReservedKeys{
	Prefixes: []string{"_edit_", "_wp_", "_oembed_", "_internal_"},
	Exact:    []string{"_edit_lock", "_edit_last", "_thumbnail_id", "_encloseme", "_pingme", "footnotes"},
}

// OptionReserved covers core site options and transients.
var OptionReserved = ReservedKeys{
	Prefixes: []string{"_transient_", "_site_transient_", "_wp_"},
	Exact: []string{
		"siteurl", "home", "blogname", "blogdescription", "admin_email",
		"template", "stylesheet", "active_plugins", "cron", "rewrite_rules",
		"wp_user_roles",
	},
}

func (r ReservedKeys) contains(key string) bool {
	for _, exact := range r.Exact {
		if key == exact {
			return true
		}
	}
	for _, prefix := range r.Prefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

// Classification is the partition of one bag.  Every input key lands in
// exactly one of: dropped (reserved or empty), one named group, the
// remaining bucket, or silently discarded as noise.
type Classification struct {
	// Groups maps descriptor slug (or auto-discovered token) → the keys
	// assigned to it.
	Groups map[string]Bag

	// AutoDiscovered lists the synthetic descriptors invented in step 5,
	// one per grouped leading token.
	AutoDiscovered []Descriptor

	// Remaining holds keys that look plugin-owned but matched nothing.
	Remaining Bag

	// Dropped records reserved and empty-valued keys, for debug output.
	Dropped []string
}

// GroupNames returns the group names in deterministic order.
func (c Classification) GroupNames() []string {
	names := maps.Keys(c.Groups)
	slices.Sort(names)
	return names
}

// Classify partitions bag across the given descriptors.  Assignment is
// exclusive: descriptors are tried longest-candidate-prefix first, and the
// first match wins.  Keys no descriptor claims are auto-grouped by their
// leading token; stragglers that still look plugin-owned land in Remaining.
func Classify(bag Bag, descriptors []Descriptor, reserved ReservedKeys) Classification {
	result := Classification{
		Groups:    map[string]Bag{},
		Remaining: Bag{},
	}

	// Deterministic key order keeps output files and auto-discovery stable
	// across runs.
	keys := maps.Keys(bag)
	slices.Sort(keys)

	// Steps 1+2: drop reserved keys and empty values outright.
	live := []string{}
	for _, key := range keys {
		if reserved.contains(key) || IsEmptyValue(bag[key]) {
			result.Dropped = append(result.Dropped, key)
			continue
		}
		live = append(live, key)
	}

	// Step 3: more specific descriptors first, so "seo" can't claim
	// "seo_pro_title" away from "seo_pro".
	ordered := make([]Descriptor, len(descriptors))
	copy(ordered, descriptors)
	slices.SortStableFunc(ordered, func(a, b Descriptor) int {
		if diff := b.longestPrefix() - a.longestPrefix(); diff != 0 {
			return diff
		}
		return strings.Compare(a.Slug, b.Slug)
	})

	// Step 4: first matching descriptor wins; a key joins at most one group.
	unassigned := []string{}
	for _, key := range live {
		owner := ""
		for _, d := range ordered {
			for _, prefix := range d.Prefixes {
				if matchesPrefix(key, prefix) {
					owner = d.Slug
					break
				}
			}
			if owner != "" {
				break
			}
		}
		if owner == "" {
			unassigned = append(unassigned, key)
			continue
		}
		if result.Groups[owner] == nil {
			result.Groups[owner] = Bag{}
		}
		result.Groups[owner][key] = bag[key]
	}

	// Step 5: auto-group leftovers by their leading token.
	autoGroups := map[string][]string{}
	leftover := []string{}
	for _, key := range unassigned {
		token := leadingToken(key)
		if token == "" {
			leftover = append(leftover, key)
			continue
		}
		autoGroups[token] = append(autoGroups[token], key)
	}

	tokens := maps.Keys(autoGroups)
	slices.Sort(tokens)
	for _, token := range tokens {
		group := Bag{}
		nonTrivial := false
		for _, key := range autoGroups[token] {
			group[key] = bag[key]
			if !IsEmptyValue(bag[key]) {
				nonTrivial = true
			}
		}
		if !nonTrivial {
			leftover = append(leftover, autoGroups[token]...)
			continue
		}
		result.Groups[token] = group
		result.AutoDiscovered = append(result.AutoDiscovered, Descriptor{
			Slug:           token,
			Name:           token,
			Prefixes:       []string{strings.TrimPrefix(token, "_")},
			AutoDiscovered: true,
		})
	}

	// Step 6: whatever still looks like plugin data goes in the remainder;
	// everything else is noise and is silently discarded.
	for _, key := range leftover {
		if strings.Contains(key, "_") && !strings.HasPrefix(key, "_") {
			result.Remaining[key] = bag[key]
		}
	}

	return result
}

// matchesPrefix reports whether key belongs to the namespace prefix: the key
// equals the prefix, extends it with an underscore or hyphen, or is the
// conventional underscore-led variant.  Trying the underscore-led forms for
// every prefix is safe because descriptors are ordered longest-prefix-first,
// so a looser form can't steal from a more specific descriptor.
func matchesPrefix(key, prefix string) bool {
	if key == prefix ||
		strings.HasPrefix(key, prefix+"_") ||
		strings.HasPrefix(key, prefix+"-") {
		return true
	}
	if !strings.HasPrefix(prefix, "_") {
		underscored := "_" + prefix
		if key == underscored || strings.HasPrefix(key, underscored+"_") {
			return true
		}
	}
	return false
}

// leadingToken extracts the portion of key before the first underscore
// separator, preserving a leading underscore: "rank_math_title" → "rank",
// "_elementor_data" → "_elementor".  Returns "" for keys too short or
// separator-free to make a plausible namespace.
func leadingToken(key string) string {
	lead := ""
	rest := key
	if strings.HasPrefix(rest, "_") {
		lead = "_"
		rest = rest[1:]
	}
	i := strings.Index(rest, "_")
	if i < 3 || i == len(rest)-1 {
		return ""
	}
	return lead + rest[:i]
}

// IsEmptyValue implements the uniform emptiness rule: null, empty string,
// empty collection and empty object are empty; numeric zero and boolean
// false are not, because explicit values carry intent.
func IsEmptyValue(v any) bool {
	if v == nil {
		return true
	}
	switch value := v.(type) {
	case string:
		return value == ""
	case bool, int, int64, float64:
		return false
	case []any:
		return len(value) == 0
	case map[string]any:
		return len(value) == 0
	}

	// Values that didn't come through encoding/json, e.g. typed slices.
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
