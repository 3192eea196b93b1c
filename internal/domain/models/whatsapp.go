package models

// WebhookPayload mirrors the callback body sent by the WhatsApp Cloud API.
// Only the fields the manager command flow reads are mapped.
type WebhookPayload struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

// WebhookEntry is one entry of a webhook callback.
type WebhookEntry struct {
	ID      string          `json:"id"`
	Changes []WebhookChange `json:"changes"`
}

// WebhookChange wraps the notification value.
type WebhookChange struct {
	Value WebhookValue `json:"value"`
	Field string       `json:"field"`
}

// WebhookValue carries inbound messages. Delivery statuses are ignored.
type WebhookValue struct {
	MessagingProduct string           `json:"messaging_product"`
	Messages         []InboundMessage `json:"messages"`
}

// InboundMessage is a message sent to the business number.
type InboundMessage struct {
	From        string              `json:"from"`
	ID          string              `json:"id"`
	Timestamp   string              `json:"timestamp"`
	Type        string              `json:"type"`
	Text        *TextContent        `json:"text,omitempty"`
	Interactive *InteractiveContent `json:"interactive,omitempty"`
}

// TextContent holds a text message body.
type TextContent struct {
	Body string `json:"body"`
}

// InteractiveContent represents quick-reply buttons.
type InteractiveContent struct {
	Type        string       `json:"type"`
	ButtonReply *ButtonReply `json:"button_reply,omitempty"`
}

// ButtonReply is a pressed button payload; its ID carries the command.
type ButtonReply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}
