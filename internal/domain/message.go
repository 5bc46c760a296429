package domain

// Message is the outgoing SMS triple handed to the transport.
// To and From are wire-format numbers ("+1XXXXXXXXXX" for US).
type Message struct {
	To   string `json:"to" yaml:"to"`
	Body string `json:"body" yaml:"body"`
	From string `json:"from_" yaml:"from_"`
}

// Inbound is one webhook turn as delivered by the SMS provider.
type Inbound struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
	Body string `json:"body" yaml:"body"`
}
