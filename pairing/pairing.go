// Package pairing derives the canonical identity of a two-user conversation.
package pairing

import (
	"fmt"
	"strconv"
	"strings"

	errs "github.com/techagentng/photohire/errors"
)

// ResolveConversationID returns "<smaller>-<larger>" for two distinct user ids,
// independent of argument order.
func ResolveConversationID(a, b uint) (string, error) {
	if a == 0 || b == 0 || a == b {
		return "", errs.ErrInvalidPairing
	}
	lo, hi := Order(a, b)
	return fmt.Sprintf("%d-%d", lo, hi), nil
}

// Order returns a and b sorted ascending.
func Order(a, b uint) (uint, uint) {
	if a > b {
		return b, a
	}
	return a, b
}

// ParseConversationID splits a canonical id back into its participants. Ids
// that ResolveConversationID could not have produced are rejected.
func ParseConversationID(id string) (uint, uint, error) {
	left, right, ok := strings.Cut(id, "-")
	if !ok {
		return 0, 0, fmt.Errorf("malformed conversation id %q", id)
	}
	lo, err := strconv.ParseUint(left, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed conversation id %q: %w", id, err)
	}
	hi, err := strconv.ParseUint(right, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed conversation id %q: %w", id, err)
	}
	canonical, err := ResolveConversationID(uint(lo), uint(hi))
	if err != nil || canonical != id {
		return 0, 0, fmt.Errorf("non-canonical conversation id %q", id)
	}
	return uint(lo), uint(hi), nil
}

// Peer returns the other participant of conversation id for userID.
func Peer(id string, userID uint) (uint, error) {
	lo, hi, err := ParseConversationID(id)
	if err != nil {
		return 0, err
	}
	switch userID {
	case lo:
		return hi, nil
	case hi:
		return lo, nil
	}
	return 0, errs.ErrNotParticipant
}
