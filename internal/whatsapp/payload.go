package whatsapp

import "encoding/json"

// WebhookPayload is the provider's nested delivery structure. Only the
// fields the adapter reads are modelled; everything else passes through
// untouched.
type WebhookPayload struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

type Change struct {
	Field string `json:"field"`
	Value Value  `json:"value"`
}

type Value struct {
	MessagingProduct string            `json:"messaging_product"`
	Messages         []InboundMessage  `json:"messages"`
	Statuses         []json.RawMessage `json:"statuses"`
}

// InboundMessage is one delivered message. Non-text kinds are ignored.
type InboundMessage struct {
	From      string       `json:"from"`
	ID        string       `json:"id"`
	Timestamp string       `json:"timestamp"`
	Type      string       `json:"type"`
	Text      *InboundText `json:"text,omitempty"`
}

type InboundText struct {
	Body string `json:"body"`
}
