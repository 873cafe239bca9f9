// Package turncred mints ephemeral TURN credentials compatible with the
// coturn REST API (draft-uberti-behave-turn-rest):
//
//	username   = <unix_expiry>:<token>
//	credential = base64(hmac_sha1(shared_secret, username))
//
// The TURN server recomputes the HMAC from its copy of the shared secret
// and rejects usernames whose expiry has passed, so nothing is stored on
// either side.
package turncred

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/kowshik-thatinati/privacy-calls/internal/cryptoutil"
	"github.com/kowshik-thatinati/privacy-calls/internal/errors"
)

const (
	ErrInvalidConfig errors.Code = "invalid_turn_config"
	ErrTokenSource   errors.Code = "token_source_failed"
)

const tokenBytes = 16

// Credentials is the payload pushed to clients on connect.
type Credentials struct {
	Username   string   `json:"username"`
	Credential string   `json:"credential"`
	TTLSeconds int64    `json:"ttl"`
	URLs       []string `json:"urls,omitempty"`
}

// Issuer signs time-limited TURN usernames with the shared secret.
type Issuer struct {
	secret    []byte
	config    *Config
	clock     clockwork.Clock
	tokenFunc func() (string, error)
}

func NewIssuer(config *Config, clock clockwork.Clock) (*Issuer, error) {
	if config.Secret == "" {
		return nil, errors.New(ErrInvalidConfig, "secret is required")
	}
	if config.TTL <= 0 {
		return nil, errors.New(ErrInvalidConfig, "ttl must be positive")
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Issuer{
		secret: []byte(config.Secret),
		config: config,
		clock:  clock,
		tokenFunc: func() (string, error) {
			return cryptoutil.RandomHex(tokenBytes)
		},
	}, nil
}

// Issue mints one fresh credential set.
func (i *Issuer) Issue() (*Credentials, error) {
	token, err := i.tokenFunc()
	if err != nil {
		return nil, errors.Wrap(ErrTokenSource, err, "generate token")
	}
	if strings.Contains(token, ":") {
		return nil, errors.New(ErrTokenSource, "token must not contain ':'")
	}

	expiry := i.clock.Now().UTC().Unix() + int64(i.config.TTL.Seconds())
	username := fmt.Sprintf("%d:%s", expiry, token)

	mac := hmac.New(sha1.New, i.secret)
	_, _ = mac.Write([]byte(username))

	return &Credentials{
		Username:   username,
		Credential: base64.StdEncoding.EncodeToString(mac.Sum(nil)),
		TTLSeconds: int64(i.config.TTL.Seconds()),
		URLs:       i.config.URLs,
	}, nil
}
