package scoreid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerate_NormalizesComponents(t *testing.T) {
	id := Generate("  Études,   Op. 10 ", "Frédéric Chopin")
	require.Equal(t, "études, op. 10:frédéric chopin", id)
}

func TestGenerate_Idempotent(t *testing.T) {
	first := Generate("Études, Op. 10", "Frédéric Chopin")
	title, composer, err := Parse(first)
	require.NoError(t, err)
	require.Equal(t, first, Generate(title, composer))
}

func TestGenerate_NormalizesTypographicCharacters(t *testing.T) {
	id := Generate("L’isle joyeuse — sketch", "Debussy")
	require.Equal(t, "l'isle joyeuse - sketch:debussy", id)
}

func TestGenerate_AltDelimiterWhenTitleContainsDefault(t *testing.T) {
	id := Generate("Suite: In C", "Anon")
	require.Equal(t, "suite: in c|anon", id)

	title, composer, err := Parse(id)
	require.NoError(t, err)
	require.Equal(t, "suite: in c", title)
	require.Equal(t, "anon", composer)
}

func TestParse_RoundTrip(t *testing.T) {
	id := Generate("Nocturne Op. 9 No. 2", "Chopin")
	title, composer, err := Parse(id)
	require.NoError(t, err)
	require.Equal(t, "nocturne op. 9 no. 2", title)
	require.Equal(t, "chopin", composer)
}

func TestParse_RejectsNonCanonical(t *testing.T) {
	_, _, err := Parse("legacy-slug-without-delimiter")
	require.Error(t, err)
}

func TestIsCanonical(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"nocturne op. 9 no. 2:chopin", true},
		{"moonlight sonata:", true}, // empty composer is allowed
		{"Nocturne Op. 9 No. 2:Chopin", false},
		{"nocturne  op. 9:chopin", false}, // whitespace not collapsed
		{"legacy-slug", false},
		{"suite: in c|anon", true},
		{"", false},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, IsCanonical(tc.id), tc.id)
	}
}
