package videotoken

import (
	"time"

	"companion-counselling-be/internal/pkg/apperror"
)

// Issuer binds an app id and secret so callers only pass per-room values.
type Issuer struct {
	appID  string
	secret string
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*Issuer)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

// NewIssuer fails with a configuration error when the app id or secret is empty.
func NewIssuer(appID, secret string, ttl time.Duration, opts ...Option) (*Issuer, error) {
	if appID == "" {
		return nil, apperror.Configuration("VIDEO_APP_ID is not set")
	}
	if secret == "" {
		return nil, apperror.Configuration("VIDEO_APP_SECRET is not set")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	i := &Issuer{appID: appID, secret: secret, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

func (i *Issuer) AppID() string {
	return i.appID
}

func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Issue mints a token for participantID in roomName using the issuer's default TTL.
func (i *Issuer) Issue(roomName, participantID string, role Role) (string, time.Time, error) {
	now := i.now()
	ttl := int64(i.ttl / time.Second)
	token, err := IssueToken(i.appID, i.secret, roomName, participantID, role, ttl, now)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, time.Unix(now.Unix()+ttl, 0), nil
}

func (i *Issuer) Verify(token string) (*Claims, error) {
	return VerifyToken(token, i.appID, i.secret, i.now())
}
