// Package videotoken mints and verifies the signed, time-bounded credentials
// that let a participant join a video room.
//
// Wire format: Version || appID || base64(HMAC-SHA256) || base64(payload JSON).
package videotoken

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"companion-counselling-be/internal/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
)

// Version identifies the token scheme.
const Version = "006"

// signatureLen is the base64 length of a 32 byte HMAC-SHA256 digest.
var signatureLen = base64.StdEncoding.EncodedLen(32)

var ErrExpired = errors.New("videotoken: token expired")

type Role string

const (
	RolePublisher  Role = "publisher"
	RoleSubscriber Role = "subscriber"
)

// ParseRole rejects anything outside the enumerated roles.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RolePublisher, RoleSubscriber:
		return Role(s), nil
	}
	return "", apperror.InvalidRole(s)
}

func (r Role) code() (int, error) {
	switch r {
	case RolePublisher:
		return 1, nil
	case RoleSubscriber:
		return 2, nil
	}
	return 0, apperror.InvalidRole(string(r))
}

func roleFromCode(c int) (Role, error) {
	switch c {
	case 1:
		return RolePublisher, nil
	case 2:
		return RoleSubscriber, nil
	}
	return "", apperror.InvalidRole(strconv.Itoa(c))
}

// payload field order is the canonical serialization order.
type payload struct {
	AppID           string `json:"appID"`
	ChannelName     string `json:"channelName"`
	UID             string `json:"uid"`
	Role            int    `json:"role"`
	ExpireTimestamp string `json:"expireTimestamp"`
}

// Claims is the verified content of a token.
type Claims struct {
	AppID         string
	RoomName      string
	ParticipantID string
	Role          Role
	ExpireAt      time.Time
}

// IssueToken builds a token valid until now+ttlSeconds.
func IssueToken(appID, appSecret, roomName, participantID string, role Role, ttlSeconds int64, now time.Time) (string, error) {
	if appSecret == "" {
		return "", apperror.Configuration("video token signing secret is not configured")
	}
	if appID == "" {
		return "", apperror.Configuration("video app id is not configured")
	}
	if roomName == "" || participantID == "" {
		return "", apperror.Validation("room name and participant id are required")
	}
	if ttlSeconds <= 0 {
		return "", apperror.Validation("token ttl must be positive")
	}
	code, err := role.code()
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(payload{
		AppID:           appID,
		ChannelName:     roomName,
		UID:             participantID,
		Role:            code,
		ExpireTimestamp: strconv.FormatInt(now.Unix()+ttlSeconds, 10),
	})
	if err != nil {
		return "", apperror.Token("failed to encode token payload", err)
	}

	sig, err := jwt.SigningMethodHS256.Sign(string(body), []byte(appSecret))
	if err != nil {
		return "", apperror.Token("failed to sign token", err)
	}

	var b strings.Builder
	b.WriteString(Version)
	b.WriteString(appID)
	b.WriteString(base64.StdEncoding.EncodeToString(sig))
	b.WriteString(base64.StdEncoding.EncodeToString(body))
	return b.String(), nil
}

// VerifyToken checks the version, app id, signature and expiry of token.
func VerifyToken(token, appID, appSecret string, now time.Time) (*Claims, error) {
	if appSecret == "" {
		return nil, apperror.Configuration("video token signing secret is not configured")
	}
	prefix := Version + appID
	if !strings.HasPrefix(token, prefix) {
		return nil, apperror.Token("unknown token version or app id", nil)
	}
	rest := token[len(prefix):]
	if len(rest) <= signatureLen {
		return nil, apperror.Token("malformed token", nil)
	}

	sig, err := base64.StdEncoding.DecodeString(rest[:signatureLen])
	if err != nil {
		return nil, apperror.Token("malformed token signature", err)
	}
	body, err := base64.StdEncoding.DecodeString(rest[signatureLen:])
	if err != nil {
		return nil, apperror.Token("malformed token payload", err)
	}

	if err := jwt.SigningMethodHS256.Verify(string(body), sig, []byte(appSecret)); err != nil {
		return nil, apperror.Token("invalid token signature", err)
	}

	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, apperror.Token("malformed token payload", err)
	}
	if p.AppID != appID {
		return nil, apperror.Token("token issued for another app", nil)
	}
	exp, err := strconv.ParseInt(p.ExpireTimestamp, 10, 64)
	if err != nil {
		return nil, apperror.Token("malformed token expiry", err)
	}
	if now.Unix() > exp {
		return nil, apperror.Token("token expired", ErrExpired)
	}
	role, err := roleFromCode(p.Role)
	if err != nil {
		return nil, apperror.Token("malformed token role", err)
	}

	return &Claims{
		AppID:         p.AppID,
		RoomName:      p.ChannelName,
		ParticipantID: p.UID,
		Role:          role,
		ExpireAt:      time.Unix(exp, 0),
	}, nil
}
