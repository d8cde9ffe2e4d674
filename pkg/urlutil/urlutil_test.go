package urlutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohmanhakim/site-parser/pkg/urlutil"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name         string
		in           string
		includeQuery bool
		want         string
	}{
		{"lowercases scheme and host", "HTTP://Example.COM/About", false, "http://example.com/About"},
		{"adds root path", "http://example.com", false, "http://example.com/"},
		{"drops default http port", "http://example.com:80/a", false, "http://example.com/a"},
		{"drops default https port", "https://example.com:443/a", false, "https://example.com/a"},
		{"keeps custom port", "http://example.com:8080/a", false, "http://example.com:8080/a"},
		{"drops fragment", "http://example.com/a#section", false, "http://example.com/a"},
		{"drops query by default", "http://example.com/a?b=1", false, "http://example.com/a"},
		{"keeps query when asked", "http://example.com/a?b=1", true, "http://example.com/a?b=1"},
		{"preserves path case", "http://example.com/CaseSensitive/Path", false, "http://example.com/CaseSensitive/Path"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := urlutil.Normalize(tc.in, tc.includeQuery)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNormalizeRejectsBadInput(t *testing.T) {
	for _, in := range []string{
		"ftp://example.com/file",
		"javascript:alert(1)",
		"http://",
		"not a url at all\x7f://",
	} {
		_, err := urlutil.Normalize(in, false)
		assert.ErrorIs(t, err, urlutil.ErrMalformedURL, "input %q", in)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"HTTP://Example.COM:80/About?x=1#top",
		"https://www.site.ru/contact",
		"http://example.com",
	}
	for _, in := range inputs {
		once, err := urlutil.Normalize(in, false)
		require.NoError(t, err)
		twice, err := urlutil.Normalize(once, false)
		require.NoError(t, err)
		assert.Equal(t, once, twice)
	}
}

func TestHostnameKeyStripsWWW(t *testing.T) {
	key, err := urlutil.HostnameKey("https://WWW.Example.com/path")
	require.NoError(t, err)
	assert.Equal(t, "example.com", key)

	key, err = urlutil.HostnameKey("http://example.com/")
	require.NoError(t, err)
	assert.Equal(t, "example.com", key)
}

func TestIsSameDomain(t *testing.T) {
	assert.True(t, urlutil.IsSameDomain("http://example.com/a", "example.com"))
	assert.True(t, urlutil.IsSameDomain("http://www.example.com/a", "example.com"))
	assert.False(t, urlutil.IsSameDomain("http://sub.example.com/a", "example.com"))
	assert.False(t, urlutil.IsSameDomain("http://other.org/a", "example.com"))
}

func TestOrigin(t *testing.T) {
	origin, err := urlutil.Origin("https://example.com:8443/deep/path?q=1")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com:8443", origin)

	_, err = urlutil.Origin("/relative/only")
	assert.Error(t, err)
}

func TestInferPhoneRegion(t *testing.T) {
	assert.Equal(t, "RU", urlutil.InferPhoneRegion("https://kagrifon.ru/"))
	assert.Equal(t, "GB", urlutil.InferPhoneRegion("https://example.co.uk/"))
	assert.Equal(t, "DE", urlutil.InferPhoneRegion("https://firma.de/impressum"))
	assert.Equal(t, urlutil.RegionUnknown, urlutil.InferPhoneRegion("http://127.0.0.1:8080/"))
	assert.Equal(t, urlutil.RegionUnknown, urlutil.InferPhoneRegion("https://example.com/"))
}
