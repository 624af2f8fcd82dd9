package model

import "time"

// EventType names a card event pushed to renderers.
type EventType string

// Card event types.
const (
	EventSnapshot   EventType = "snapshot"
	EventCreated    EventType = "created"
	EventUpdated    EventType = "updated"
	EventRemoved    EventType = "removed"
	EventSwapped    EventType = "swapped"
	EventFiltered   EventType = "filtered"
	EventNewMatches EventType = "new_matches"
)

// CardEvent describes one change of the card registry.
type CardEvent struct {
	Type    EventType `json:"type"`
	MatchID int64     `json:"matchId,omitempty"`
	Card    *Card     `json:"card,omitempty"`
	Cards   []Card    `json:"cards,omitempty"`
	Count   int       `json:"count,omitempty"`
	At      time.Time `json:"at"`
}

// NewCardEvent builds an event for a single card.
func NewCardEvent(t EventType, card Card) CardEvent {
	return CardEvent{Type: t, MatchID: card.MatchID, Card: &card, At: time.Now()}
}

// NewCardsEvent builds an event carrying several cards.
func NewCardsEvent(t EventType, cards []Card) CardEvent {
	return CardEvent{Type: t, Cards: cards, Count: len(cards), At: time.Now()}
}
