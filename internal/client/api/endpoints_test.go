package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatPath(t *testing.T) {
	assert.Equal(t, "/api/v1/media/user/U1", FormatPath(PathMediaByUser, "U1"))
	assert.Equal(t, "/api/v1/media/", FormatPath(PathMediaItem))
	assert.Equal(t, "/a/2/1", FormatPath("/a/{1}/{0}", "1", "2"))
	assert.Equal(t, PathSignIn, FormatPath(PathSignIn, "ignored"))
}

func TestFormatPath_EscapesArgs(t *testing.T) {
	assert.Equal(t, "/api/v1/media/a%2F..%2F..%2Fauth%2Fsignin", FormatPath(PathMediaItem, "a/../../auth/signin"))
	assert.Equal(t, "/api/v1/media/a%20b%3Fx=1", FormatPath(PathMediaItem, "a b?x=1"))
}
