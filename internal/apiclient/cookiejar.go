package apiclient

import (
	"github.com/myrjola/spasession/internal/errors"
	"net/http"
	"net/http/cookiejar"
	"net/url"
)

// cookieJar keeps the session and CSRF cookies for every request the Client makes, the way a browser does for
// requests made with credentials included.
type cookieJar struct {
	jar *cookiejar.Jar
	// allowInsecure drops the Secure flag so that cookies issued by a local development server on plain http are
	// still sent back.
	allowInsecure bool
}

func newCookieJar(allowInsecure bool) (*cookieJar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errors.Wrap(err, "new cookie jar")
	}

	return &cookieJar{jar: jar, allowInsecure: allowInsecure}, nil
}

func (j *cookieJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	if j.allowInsecure {
		for _, cookie := range cookies {
			cookie.Secure = false
		}
	}
	j.jar.SetCookies(u, cookies)
}

func (j *cookieJar) Cookies(u *url.URL) []*http.Cookie {
	return j.jar.Cookies(u)
}
