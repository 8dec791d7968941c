package service

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Clock returns the current instant. Services store every timestamp in UTC.
type Clock func() time.Time

func SystemClock() time.Time {
	return time.Now().UTC()
}

func clockOrDefault(c Clock) Clock {
	if c == nil {
		return SystemClock
	}
	return func() time.Time { return c().UTC() }
}

// RoomIDGenerator produces URL-safe, unguessable video room names.
type RoomIDGenerator interface {
	NewRoomID() (string, error)
}

type randomRoomIDGenerator struct{}

func NewRandomRoomIDGenerator() RoomIDGenerator {
	return randomRoomIDGenerator{}
}

// NewRoomID uses a version 4 UUID, which draws 122 bits from crypto/rand.
func (randomRoomIDGenerator) NewRoomID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return "session_" + strings.ReplaceAll(id.String(), "-", ""), nil
}
