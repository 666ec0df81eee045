package dto

// IncomingMessage is one chat event posted by a gateway.
type IncomingMessage struct {
	Channel string `json:"channel"`
	User    string `json:"user"`
	Text    string `json:"text"`
}

// ReplyResponse is one reply for the gateway to render.
type ReplyResponse struct {
	Text    string `json:"text"`
	Private bool   `json:"private"`
	Action  bool   `json:"action"`
}
