package gcloud

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const signURLFixture = `---
expiration: '2025-05-11 14:02:21'
http_verb: GET
resource: gs://example_bucket1sy/test-object-ab12cd34-signurl-deadbeef
signed_url: https://storage.googleapis.com/example_bucket1sy/test-object-ab12cd34-signurl-deadbeef?x-goog-signature=aabbcc&x-goog-expires=3600
`

func TestExtractSignedURLFromFixture(t *testing.T) {
	t.Parallel()

	url, err := ExtractSignedURL(signURLFixture)
	require.NoError(t, err)
	assert.Equal(t,
		"https://storage.googleapis.com/example_bucket1sy/test-object-ab12cd34-signurl-deadbeef?x-goog-signature=aabbcc&x-goog-expires=3600",
		url)
}

func TestExtractSignedURLNoMatch(t *testing.T) {
	t.Parallel()

	for _, output := range []string{
		"",
		"ERROR: (gcloud.storage.sign-url) could not read private key",
		"signed_url: http://insecure.example.com/obj", // https only
	} {
		_, err := ExtractSignedURL(output)
		assert.ErrorIs(t, err, ErrNoSignedURL, "output: %q", output)
	}
}

func TestExtractSignedURLStopsAtWhitespace(t *testing.T) {
	t.Parallel()

	url, err := ExtractSignedURL("signed_url: https://example.com/a?b=c trailing")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a?b=c", url)
}
