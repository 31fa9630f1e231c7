package apiclient

import (
	"context"
	"github.com/myrjola/spasession/internal/errors"
	"net/url"
	"strings"
)

// AuthFailureInterceptor calls onFailure for every 401 or 419 response, unless the request targeted probePath.
//
// The probe path is the "who am I" endpoint: a 401 there only means nobody is logged in, and tearing the session
// down in response would log the user out for asking. A response whose URL can't be determined is treated as not
// the probe, so the session is torn down.
//
// The error is always passed on unchanged so that the caller still sees the specific failure.
func AuthFailureInterceptor(probePath string, onFailure func(ctx context.Context, err *AuthError)) ResponseInterceptor {
	return func(ctx context.Context, _ *Response, err error) error {
		var authErr *AuthError
		if err == nil || !errors.As(err, &authErr) {
			return err
		}
		if MatchesPath(authErr.RequestURL(), probePath) {
			return err
		}
		onFailure(ctx, authErr)
		return err
	}
}

// MatchesPath reports whether the path of u ends with the path segments of suffix. A nil URL or an empty path
// never matches.
func MatchesPath(u *url.URL, suffix string) bool {
	if u == nil {
		return false
	}
	p := strings.TrimRight(u.Path, "/")
	want := strings.Trim(suffix, "/")
	if p == "" || want == "" {
		return false
	}
	return strings.HasSuffix(p, "/"+want)
}
