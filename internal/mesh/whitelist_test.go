package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthoritative_ExactMatchOnly(t *testing.T) {
	kap, ok := Lookup("M-KAP")
	require.True(t, ok)

	tests := []struct {
		name     string
		fragment string
		want     string
	}{
		{"verbatim block", kap, kap},
		{"single whitelisted block", `"Risk Factors"[MeSH]`, `"Risk Factors"[MeSH]`},
		{"invented heading", `"Treatment Outcome"[MeSH]`, ""},
		{"subheading added", `"Mortality/statistics"[MeSH]`, ""},
		{"misspelled", `"Medication Compliance"[MeSH]`, ""},
		{"substring of a block", `"Prevalence"[MeSH]`, ""},
		{"trailing space", kap + " ", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Authoritative(tt.fragment))
		})
	}
}

func TestAuthoritative_MergedBlocksRejected(t *testing.T) {
	kap, _ := Lookup("M-KAP")
	adh, _ := Lookup("M-ADH")
	assert.Empty(t, Authoritative(kap+" OR "+adh))
}

func TestTags(t *testing.T) {
	tags := Tags()
	assert.Len(t, tags, 11)
	assert.Equal(t, "M-ADH", tags[0])

	for _, tag := range tags {
		fragment, ok := Lookup(tag)
		require.True(t, ok)
		back, ok := TagOf(fragment)
		require.True(t, ok)
		assert.Equal(t, tag, back)
	}
}
