package plugins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyDropsReservedKeys(t *testing.T) {
	bag := Bag{
		"_edit_lock":          "1700000000:1",
		"_edit_last":          "1",
		"_wp_page_template":   "default",
		"_oembed_abc123":      "<iframe></iframe>",
		"_internal_edit_lock": "x",
		"footnotes":           "[]",
		"rank_math_title":     "My title",
	}
	descriptors := []Descriptor{NewDescriptor("seo-by-rank-math", "Rank Math", "1.0")}

	c := Classify(bag, descriptors, MetaReserved)

	assert.ElementsMatch(t, c.Dropped,
		[]string{"_edit_lock", "_edit_last", "_wp_page_template", "_oembed_abc123", "_internal_edit_lock", "footnotes"})
	require.Contains(t, c.Groups, "seo-by-rank-math")
	assert.Equal(t, Bag{"rank_math_title": "My title"}, c.Groups["seo-by-rank-math"])
}

func TestClassifyEmptinessRule(t *testing.T) {
	bag := Bag{
		"acme_empty_string": "",
		"acme_empty_list":   []any{},
		"acme_empty_map":    map[string]any{},
		"acme_null":         nil,
		"acme_zero":         float64(0),
		"acme_false":        false,
	}

	c := Classify(bag, nil, MetaReserved)

	// zero and false are deliberate values; the rest are dropped as empty
	assert.ElementsMatch(t, c.Dropped,
		[]string{"acme_empty_string", "acme_empty_list", "acme_empty_map", "acme_null"})
	require.Contains(t, c.Groups, "acme")
	assert.Equal(t, Bag{"acme_zero": float64(0), "acme_false": false}, c.Groups["acme"])
}

func TestClassifyExclusiveAssignment(t *testing.T) {
	bag := Bag{
		"seo_title":     "a",
		"seo_pro_title": "b",
	}
	descriptors := []Descriptor{
		{Slug: "seo", Prefixes: []string{"seo"}},
		{Slug: "seo-pro", Prefixes: []string{"seo_pro"}},
	}

	c := Classify(bag, descriptors, MetaReserved)

	// longest-prefix-first keeps "seo" from claiming the pro plugin's key
	assert.Equal(t, Bag{"seo_title": "a"}, c.Groups["seo"])
	assert.Equal(t, Bag{"seo_pro_title": "b"}, c.Groups["seo-pro"])
}

func TestClassifyRankMathScenario(t *testing.T) {
	bag := Bag{
		"rank_math_title":       "Hello",
		"rank_math_description": "World",
		"rank_math_robots":      []any{"index"},
		"_elementor_data":       `[{"id":"abc"}]`,
		"custom_field":          "auto-grouped",
	}
	descriptors := []Descriptor{
		NewDescriptor("seo-by-rank-math", "Rank Math", "1.0"),
		NewDescriptor("elementor", "Elementor", "3.0"),
	}

	c := Classify(bag, descriptors, MetaReserved)

	require.Contains(t, c.Groups, "seo-by-rank-math")
	assert.Len(t, c.Groups["seo-by-rank-math"], 3)
	require.Contains(t, c.Groups, "elementor")
	assert.Equal(t, Bag{"_elementor_data": `[{"id":"abc"}]`}, c.Groups["elementor"])

	// no descriptor claims custom_field, so it's grouped by leading token
	require.Contains(t, c.Groups, "custom")
	require.Len(t, c.AutoDiscovered, 1)
	assert.Equal(t, "custom", c.AutoDiscovered[0].Slug)
	assert.Empty(t, c.Remaining)
}

func TestClassifyAutoDiscovery(t *testing.T) {
	bag := Bag{
		"mystery_plugin_color": "red",
		"mystery_plugin_size":  "12",
	}

	c := Classify(bag, nil, MetaReserved)

	require.Contains(t, c.Groups, "mystery")
	assert.Len(t, c.Groups["mystery"], 2)

	require.Len(t, c.AutoDiscovered, 1)
	d := c.AutoDiscovered[0]
	assert.Equal(t, "mystery", d.Slug)
	assert.True(t, d.AutoDiscovered)
	assert.Equal(t, []string{"mystery"}, d.Prefixes)
}

func TestClassifyAutoDiscoveryPreservesLeadingUnderscore(t *testing.T) {
	bag := Bag{
		"_genesis_layout":  "full",
		"_genesis_scripts": "x",
	}

	c := Classify(bag, nil, ReservedKeys{})

	require.Contains(t, c.Groups, "_genesis")
	require.Len(t, c.AutoDiscovered, 1)
	assert.Equal(t, "_genesis", c.AutoDiscovered[0].Slug)
	assert.Equal(t, []string{"genesis"}, c.AutoDiscovered[0].Prefixes)
}

func TestClassifyRemainingBucket(t *testing.T) {
	bag := Bag{
		"ab_x":      "too short a token to auto-group",
		"_private":  "leading underscore, no namespace",
		"plainword": "no separator at all",
		"trailing_": "separator at the end",
	}

	c := Classify(bag, nil, ReservedKeys{})

	assert.Empty(t, c.Groups)
	// only underscore-containing keys without a leading underscore survive
	assert.Equal(t, Bag{"ab_x": "too short a token to auto-group", "trailing_": "separator at the end"}, c.Remaining)
}

func TestClassifyUnderscoreLedVariantMatches(t *testing.T) {
	bag := Bag{
		"_yoast_wpseo_title": "t",
	}
	descriptors := []Descriptor{NewDescriptor("wordpress-seo", "Yoast SEO", "22.1")}

	c := Classify(bag, descriptors, MetaReserved)

	require.Contains(t, c.Groups, "wordpress-seo")
	assert.Equal(t, Bag{"_yoast_wpseo_title": "t"}, c.Groups["wordpress-seo"])
}

func TestClassifyDeterministicGroupNames(t *testing.T) {
	bag := Bag{
		"zebra_plugin_a": "1",
		"alpha_plugin_b": "2",
	}

	c := Classify(bag, nil, ReservedKeys{})

	assert.Equal(t, []string{"alpha", "zebra"}, c.GroupNames())
}

func TestClassifyPartitionIsExclusive(t *testing.T) {
	bag := Bag{
		"rank_math_title":     "X",
		"_internal_edit_lock": "123",
		"unknown_plugin_key":  "Y",
		"wc_currency":         "EUR",
		"trailing_":           "stays ungrouped",
		"cleared_but_empty":   "",
	}
	descriptors := []Descriptor{
		{Slug: "seo-by-rank-math", Prefixes: []string{"rank_math"}},
		NewDescriptor("woocommerce", "WooCommerce", "8.0"),
	}

	c := Classify(bag, descriptors, MetaReserved)

	// every key lands in at most one bucket
	for key := range bag {
		buckets := 0
		for _, group := range c.Groups {
			if _, ok := group[key]; ok {
				buckets++
			}
		}
		if _, ok := c.Remaining[key]; ok {
			buckets++
		}
		for _, dropped := range c.Dropped {
			if dropped == key {
				buckets++
			}
		}
		assert.LessOrEqual(t, buckets, 1, "key %q in %d buckets", key, buckets)
	}

	assert.Equal(t, Bag{"rank_math_title": "X"}, c.Groups["seo-by-rank-math"])
	assert.Equal(t, Bag{"wc_currency": "EUR"}, c.Groups["woocommerce"])
	require.Contains(t, c.Groups, "unknown")
	assert.ElementsMatch(t, c.Dropped, []string{"_internal_edit_lock", "cleared_but_empty"})
	assert.Equal(t, Bag{"trailing_": "stays ungrouped"}, c.Remaining)
}

func TestIsEmptyValueTypedSlices(t *testing.T) {
	assert.True(t, IsEmptyValue([]string{}))
	assert.False(t, IsEmptyValue([]string{"x"}))
	assert.True(t, IsEmptyValue(map[string]string{}))
	assert.False(t, IsEmptyValue(42))
}
