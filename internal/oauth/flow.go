package oauth

import (
	"crypto/rsa"

	"github.com/dghubble/oauth1"
)

// Flow performs the OAuth1 token exchanges against the tracker endpoints.
// The bot signs these itself since it is not yet authenticated as the user.
type Flow interface {
	RequestToken() (token, secret string, err error)
	AuthorizationURL(requestToken string) (string, error)
	AccessToken(requestToken, requestSecret, verifier string) (token, secret string, err error)
}

// Endpoints names the three OAuth1 endpoints offered by the tracker.
type Endpoints struct {
	RequestTokenURL string
	AuthorizeURL    string
	AccessTokenURL  string
}

type rsaFlow struct {
	config *oauth1.Config
}

// NewRSAFlow builds an RSA-SHA1 signed flow with header-based signatures and
// an out-of-band callback, matching what Jira's OAuth1 servlet expects.
func NewRSAFlow(consumerKey string, key *rsa.PrivateKey, endpoints Endpoints) Flow {
	return &rsaFlow{
		config: &oauth1.Config{
			ConsumerKey: consumerKey,
			CallbackURL: "oob",
			Endpoint: oauth1.Endpoint{
				RequestTokenURL: endpoints.RequestTokenURL,
				AuthorizeURL:    endpoints.AuthorizeURL,
				AccessTokenURL:  endpoints.AccessTokenURL,
			},
			Signer: &oauth1.RSASigner{PrivateKey: key},
		},
	}
}

func (f *rsaFlow) RequestToken() (string, string, error) {
	return f.config.RequestToken()
}

func (f *rsaFlow) AuthorizationURL(requestToken string) (string, error) {
	u, err := f.config.AuthorizationURL(requestToken)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (f *rsaFlow) AccessToken(requestToken, requestSecret, verifier string) (string, string, error) {
	return f.config.AccessToken(requestToken, requestSecret, verifier)
}
