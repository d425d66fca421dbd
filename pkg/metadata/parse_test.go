package metadata

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseListing_RoundTrip(t *testing.T) {
	a := NewRecord("alpha")
	a.Set("descr", "does alpha things")
	a.Set("require.arch", []string{"amd64", "arm64"})
	a.Set("timeout", int64(30))
	b := NewRecord("beta")
	b.Set("require.user", "unprivileged")
	b.Set("memory", "512M")

	parsed, err := ParseListing(strings.NewReader(FormatListing([]*Record{a, b})))
	require.NoError(t, err)
	require.Len(t, parsed, 2)

	for i, orig := range []*Record{a, b} {
		assert.Equal(t, orig.Keys(), parsed[i].Keys())
		for _, p := range orig.Properties() {
			got, _ := parsed[i].Get(p.Key)
			assert.Equal(t, formatValue(p.Value), got, p.Key)
		}
	}
}

func TestParseListing_NewlinesComeBackAsTabs(t *testing.T) {
	r := NewRecord("t")
	r.Set("descr", "one\ntwo")
	parsed, err := ParseListing(strings.NewReader(FormatListing([]*Record{r})))
	require.NoError(t, err)
	got, _ := parsed[0].Get("descr")
	assert.Equal(t, "one\ttwo", got)
}

func TestParseListing_Empty(t *testing.T) {
	parsed, err := ParseListing(strings.NewReader(FormatListing(nil)))
	require.NoError(t, err)
	assert.Empty(t, parsed)
}

func TestParseListing_Errors(t *testing.T) {
	tests := map[string]string{
		"empty input":        "",
		"missing header":     "ident: a\n\n",
		"no blank after hdr": Header + "\nident: a\n",
		"block without id":   Header + "\n\ndescr: x\n",
		"malformed line":     Header + "\n\nident: a\nnonsense\n",
		"duplicate key":      Header + "\n\nident: a\ntimeout: 1\ntimeout: 2\n",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseListing(strings.NewReader(input))
			assert.Error(t, err)
		})
	}
}
