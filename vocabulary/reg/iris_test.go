package reg

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSectionID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"15 CFR 734.3", "15-CFR-734.3"},
		{"15  cfr  734.3", "15-CFR-734.3"},
		{"  15 CFR 734.3  ", "15-CFR-734.3"},
		{"EAR-736.2(b)", "EAR-736.2(b)"},
		{"ear part 736", "EAR-PART-736"},
		{"734.3(b)", "734.3(b)"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeSectionID(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeSectionIDEmpty(t *testing.T) {
	for _, in := range []string{"", "   ", "\t\n"} {
		_, err := NormalizeSectionID(in)
		assert.ErrorIs(t, err, ErrInvalidIdentifier, "input %q", in)
	}
}

func TestSectionIRIDeterministic(t *testing.T) {
	a, err := SectionIRI("15 CFR 734.3")
	require.NoError(t, err)
	b, err := SectionIRI("15  CFR   734.3")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, ResourceNamespace+"section/"))

	other, err := SectionIRI("15 CFR 734.4")
	require.NoError(t, err)
	assert.NotEqual(t, a, other)
}

func TestSectionIRIRoundTrip(t *testing.T) {
	iri, err := SectionIRI("EAR-736.2(b)")
	require.NoError(t, err)

	id, ok := SectionIDFromIRI(iri)
	require.True(t, ok)
	assert.Equal(t, "EAR-736.2(b)", id)
}

func TestSectionIDFromIRINonSection(t *testing.T) {
	_, ok := SectionIDFromIRI("https://example.com/thing/1")
	assert.False(t, ok)

	entity, err := EntityIRI("acme")
	require.NoError(t, err)
	_, ok = SectionIDFromIRI(entity)
	assert.False(t, ok)
}

func TestParagraphIRI(t *testing.T) {
	hash := "a3f5b8c2d9e1f0a4b6c8d0e2f4a6b8c0d2e4f6a8b0c2d4e6f8a0b2c4d6e8f0a2"

	iri, err := ParagraphIRI(hash)
	require.NoError(t, err)
	assert.Equal(t, ResourceNamespace+"paragraph/a3f5b8c2d9e1f0a4", iri)

	// Identical content, identical node.
	again, err := ParagraphIRI(hash)
	require.NoError(t, err)
	assert.Equal(t, iri, again)

	// Case-insensitive on input.
	upper, err := ParagraphIRI(strings.ToUpper(hash))
	require.NoError(t, err)
	assert.Equal(t, iri, upper)
}

func TestParagraphIRIInvalid(t *testing.T) {
	for _, in := range []string{"", "abc123", "zzzzzzzzzzzzzzzz"} {
		_, err := ParagraphIRI(in)
		assert.ErrorIs(t, err, ErrInvalidIdentifier, "input %q", in)
	}
}

func TestEntityIRI(t *testing.T) {
	iri, err := EntityIRI("gleif:5493001KJTIIGC8Y1R12")
	require.NoError(t, err)
	assert.Equal(t, EntityNamespace+"gleif%3A5493001KJTIIGC8Y1R12", iri)

	_, err = EntityIRI("")
	assert.ErrorIs(t, err, ErrInvalidIdentifier)

	_, err = EntityIRI("   ")
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
}

func TestEntityIRIUnreservedPassThrough(t *testing.T) {
	iri, err := EntityIRI("Acme-Corp_2.0~x")
	require.NoError(t, err)
	assert.Equal(t, EntityNamespace+"Acme-Corp_2.0~x", iri)
}

func TestCanonicalizeIRIIdempotent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://regkg.dev/resource/section/15-CFR-734.3", ResourceNamespace + "section/15-CFR-734.3"},
		{"https://w3id.org/regkg/entity/acme", EntityNamespace + "acme"},
		{ResourceNamespace + "section/15-CFR-734.3", ResourceNamespace + "section/15-CFR-734.3"},
		// Unrecognized IRIs pass through unchanged.
		{"https://example.org/other/42", "https://example.org/other/42"},
		{"", ""},
	}

	for _, tt := range tests {
		got := CanonicalizeIRI(tt.in)
		assert.Equal(t, tt.want, got)
		// Applying twice equals applying once.
		assert.Equal(t, got, CanonicalizeIRI(got))
	}
}

func TestIsSectionIRI(t *testing.T) {
	assert.True(t, IsSectionIRI(ResourceNamespace+"section/EAR-740.1"))
	assert.True(t, IsSectionIRI("http://regkg.dev/resource/section/EAR-740.1"))
	assert.False(t, IsSectionIRI(ResourceNamespace+"paragraph/a3f5b8c2d9e1f0a4"))
	assert.False(t, IsSectionIRI(EntityNamespace+"acme"))
}

func TestActivityRequestIRI(t *testing.T) {
	a, err := ActivityIRI("deadbeefdeadbeef")
	require.NoError(t, err)
	assert.Equal(t, ResourceNamespace+"activity/deadbeefdeadbeef", a)

	r, err := RequestIRI("deadbeefdeadbeef")
	require.NoError(t, err)
	assert.Equal(t, ResourceNamespace+"request/deadbeefdeadbeef", r)

	_, err = ActivityIRI("")
	assert.True(t, errors.Is(err, ErrInvalidIdentifier))
}
