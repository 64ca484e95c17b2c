package plugins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidatePrefixesPlainSlug(t *testing.T) {
	prefixes := CandidatePrefixes("woocommerce")

	assert.Contains(t, prefixes, "woocommerce")
	// irregular table adds the short forms the heuristics can't derive
	assert.Contains(t, prefixes, "wc")
	assert.Contains(t, prefixes, "woo")
}

func TestCandidatePrefixesStripsQualifiers(t *testing.T) {
	prefixes := CandidatePrefixes("wp-rocket-pro")

	assert.Contains(t, prefixes, "wp_rocket_pro")
	assert.Contains(t, prefixes, "rocket")
	assert.NotContains(t, prefixes, "")
}

func TestCandidatePrefixesRankMath(t *testing.T) {
	prefixes := CandidatePrefixes("seo-by-rank-math")

	assert.Contains(t, prefixes, "rank_math")
	assert.Contains(t, prefixes, "rankmath")
	assert.Contains(t, prefixes, "rank-math")
	assert.Contains(t, prefixes, "seo_by_rank_math")
}

func TestCandidatePrefixesInitialism(t *testing.T) {
	prefixes := CandidatePrefixes("advanced-custom-fields")

	// "advanced-" is stripped as a qualifier, leaving custom-fields → "cf"
	assert.Contains(t, prefixes, "cf")
	assert.Contains(t, prefixes, "custom_fields")
	assert.Contains(t, prefixes, "acf")
}

func TestCandidatePrefixesUnderscoreLedIrregular(t *testing.T) {
	prefixes := CandidatePrefixes("elementor")

	// the irregular form keeps its leading underscore
	assert.Contains(t, prefixes, "_elementor")
	assert.Contains(t, prefixes, "elementor")
}

func TestCandidatePrefixesDeduplicated(t *testing.T) {
	prefixes := CandidatePrefixes("akismet")

	seen := map[string]bool{}
	for _, p := range prefixes {
		require.False(t, seen[p], "duplicate prefix %q", p)
		seen[p] = true
		require.GreaterOrEqual(t, len(p), 2)
	}
}

func TestCandidatePrefixesStable(t *testing.T) {
	first := CandidatePrefixes("contact-form-7")
	second := CandidatePrefixes("contact-form-7")

	assert.Equal(t, first, second)
	assert.Contains(t, first, "wpcf7")
}

func TestNewDescriptor(t *testing.T) {
	d := NewDescriptor("wordpress-seo", "Yoast SEO", "22.1")

	assert.Equal(t, "wordpress-seo", d.Slug)
	assert.Equal(t, "Yoast SEO", d.Name)
	assert.Equal(t, "22.1", d.Version)
	assert.False(t, d.AutoDiscovered)
	assert.Contains(t, d.Prefixes, "yoast")
	assert.Contains(t, d.Prefixes, "wpseo")
}
