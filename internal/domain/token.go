package domain

import "time"

// TokenRecord persists per-user OAuth1 credential state. At most one record
// exists per user identity; request-token fields are overwritten on forced
// re-acquisition while access-token fields stay untouched until the exchange.
type TokenRecord struct {
	UserIdentity       string
	RequestToken       string
	RequestTokenSecret string
	AccessToken        *string
	AccessTokenSecret  *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// HasAccessToken reports whether the three-legged exchange has completed.
func (t TokenRecord) HasAccessToken() bool {
	return t.AccessToken != nil && *t.AccessToken != ""
}
