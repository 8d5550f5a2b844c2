// Package models holds the wire-facing types shared between the
// transport layer and the session controller.
package models

// ActionKind tags the two inbound player moves. Keeping this a closed
// set lets the controller route exhaustively instead of dispatching on
// free-form strings.
type ActionKind string

const (
	ActionSayAndPlay ActionKind = "SayAndPlay"
	ActionSlap       ActionKind = "Slap"
)

// Action is the inbound action envelope. Payload carries the spoken
// value ("Ace".."King") for SayAndPlay and is empty for Slap.
type Action struct {
	Kind    ActionKind `json:"kind"`
	Payload string     `json:"payload,omitempty"`
}
