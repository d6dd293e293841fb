package main

// History is the bounded, in-memory record of the turns replayed to the
// endpoint. When full, appending evicts the oldest turn.
//
// History is owned by a single session and is not safe for concurrent use.
type History struct {
	turns    []Turn
	capacity int
}

// NewHistory returns an empty history holding at most capacity turns. A
// capacity below one falls back to HistoryCapacity.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = HistoryCapacity
	}
	return &History{
		turns:    make([]Turn, 0, capacity),
		capacity: capacity,
	}
}

// Append adds turn as the newest entry, dropping the oldest if over capacity.
func (h *History) Append(turn Turn) {
	h.turns = append(h.turns, turn)
	if len(h.turns) > h.capacity {
		h.turns = h.turns[len(h.turns)-h.capacity:]
	}
}

// Messages expands the retained turns oldest-first into alternating user and
// assistant messages.
func (h *History) Messages() []Message {
	if h == nil {
		return nil
	}
	messages := make([]Message, 0, 2*len(h.turns))
	for _, turn := range h.turns {
		messages = append(messages,
			Message{Role: RoleUser, Content: turn.UserMessage},
			Message{Role: RoleAssistant, Content: turn.AssistantReply},
		)
	}
	return messages
}

// Turns returns a copy of the retained turns, oldest first.
func (h *History) Turns() []Turn {
	out := make([]Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

// Len returns the number of retained turns.
func (h *History) Len() int {
	if h == nil {
		return 0
	}
	return len(h.turns)
}

// Cap returns the maximum number of retained turns.
func (h *History) Cap() int { return h.capacity }

// Clear discards every retained turn.
func (h *History) Clear() {
	h.turns = h.turns[:0]
}
