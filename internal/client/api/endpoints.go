package api

import (
	"net/url"
	"regexp"
	"strconv"
)

const (
	PathSignIn      = "/api/v1/auth/signin"
	PathSignUp      = "/api/v1/auth/signup"
	PathMediaByUser = "/api/v1/media/user/{0}"
	PathMediaItem   = "/api/v1/media/{0}"
	PathMediaUpload = "/api/v1/media/post"
)

// Cache endpoint identifiers for the read side of the API.
const (
	EndpointMediaList = "media.list"
	EndpointMediaItem = "media.item"
)

// Mutation names. Each maps to the endpoints it makes stale.
const (
	MutationSignIn      = "auth.signin"
	MutationSignUp      = "auth.signup"
	MutationMediaUpload = "media.upload"
	MutationMediaUpdate = "media.update"
	MutationMediaDelete = "media.delete"
)

var placeholder = regexp.MustCompile(`\{(\d+)\}`)

// FormatPath substitutes positional {n} placeholders with path-escaped args.
// Placeholders without a matching argument become empty strings.
func FormatPath(template string, args ...string) string {
	return placeholder.ReplaceAllStringFunc(template, func(m string) string {
		i, err := strconv.Atoi(m[1 : len(m)-1])
		if err != nil || i >= len(args) {
			return ""
		}
		return url.PathEscape(args[i])
	})
}
