package analyzer

import (
	"errors"
	"net/url"
	"strings"

	"github.com/seo-optimizer/seoscore/errs"
)

// Normalize turns user input into an absolute http(s) URL. Input without a
// scheme is assumed to be https.
func Normalize(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", errs.InvalidURL(raw, errors.New("empty URL"))
	}

	lower := strings.ToLower(trimmed)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		trimmed = "https://" + trimmed
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", errs.InvalidURL(raw, err)
	}
	if u.Host == "" || u.Hostname() == "" || strings.ContainsAny(u.Host, " \t") {
		return "", errs.InvalidURL(raw, errors.New("missing host"))
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String(), nil
}
