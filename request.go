package main

// systemPrompt frames the assistant with the configured personality.
func systemPrompt(personality string) string {
	return "You are " + personality + "."
}

// BuildMessages assembles the outbound message list: the system message
// first, then the retained history oldest-first, then prompt as the final
// user message. The order matters to the model, so it is fixed here.
func BuildMessages(personality string, history *History, prompt string) []Message {
	previous := history.Messages()
	messages := make([]Message, 0, len(previous)+2)
	messages = append(messages, Message{Role: RoleSystem, Content: systemPrompt(personality)})
	messages = append(messages, previous...)
	messages = append(messages, Message{Role: RoleUser, Content: prompt})
	return messages
}
