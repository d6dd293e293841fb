package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_RetainsMostRecentTurns(t *testing.T) {
	for n := 0; n <= 3*HistoryCapacity; n++ {
		turns := makeTurns(t, n)
		history := NewHistory(HistoryCapacity)
		for _, turn := range turns {
			history.Append(turn)
			require.LessOrEqual(t, history.Len(), HistoryCapacity)
		}

		want := turns
		if len(want) > HistoryCapacity {
			want = want[len(want)-HistoryCapacity:]
		}
		assert.Equal(t, min(n, HistoryCapacity), history.Len(), "after %d appends", n)
		assert.Equal(t, want, history.Turns(), "after %d appends", n)
	}
}

func TestHistory_MessagesAlternateStartingWithUser(t *testing.T) {
	history := NewHistory(HistoryCapacity)
	for _, turn := range makeTurns(t, 4) {
		history.Append(turn)
	}

	messages := history.Messages()
	require.Len(t, messages, 2*history.Len())
	for i, message := range messages {
		if i%2 == 0 {
			assert.Equal(t, RoleUser, message.Role)
		} else {
			assert.Equal(t, RoleAssistant, message.Role)
		}
	}
	assert.Equal(t, "question A0", messages[0].Content)
	assert.Equal(t, "answer A0", messages[1].Content)
	assert.Equal(t, "question D0", messages[6].Content)
	assert.Equal(t, "answer D0", messages[7].Content)
}

func TestHistory_FullHistoryEvictsOldest(t *testing.T) {
	history := NewHistory(HistoryCapacity)
	turns := makeTurns(t, HistoryCapacity+1)
	for _, turn := range turns[:HistoryCapacity] {
		history.Append(turn)
	}
	require.Equal(t, HistoryCapacity, history.Len())

	history.Append(turns[HistoryCapacity])

	assert.Equal(t, HistoryCapacity, history.Len())
	for _, message := range history.Messages() {
		assert.NotEqual(t, turns[0].UserMessage, message.Content)
		assert.NotEqual(t, turns[0].AssistantReply, message.Content)
	}
	messages := history.Messages()
	assert.Equal(t, turns[1].UserMessage, messages[0].Content)
	assert.Equal(t, turns[HistoryCapacity].AssistantReply, messages[len(messages)-1].Content)
}

func TestHistory_Clear(t *testing.T) {
	history := NewHistory(3)
	for _, turn := range makeTurns(t, 5) {
		history.Append(turn)
	}
	history.Clear()

	assert.Equal(t, 0, history.Len())
	assert.Empty(t, history.Messages())

	history.Append(Turn{UserMessage: "again", AssistantReply: "hello"})
	assert.Equal(t, []Turn{{UserMessage: "again", AssistantReply: "hello"}}, history.Turns())
}

func TestHistory_InvalidCapacityUsesDefault(t *testing.T) {
	assert.Equal(t, HistoryCapacity, NewHistory(0).Cap())
	assert.Equal(t, HistoryCapacity, NewHistory(-4).Cap())
	assert.Equal(t, 3, NewHistory(3).Cap())
}

func TestHistory_TurnsIsACopy(t *testing.T) {
	history := NewHistory(2)
	history.Append(Turn{UserMessage: "a", AssistantReply: "b"})

	turns := history.Turns()
	turns[0].UserMessage = "changed"

	assert.Equal(t, "a", history.Turns()[0].UserMessage)
}
