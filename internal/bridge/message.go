package bridge

import (
	"encoding/json"

	"github.com/ahmetkoprulu/rtrp/arcade/models"
)

type MessageType string

const (
	// Sent by the overlay frame; answered with MessageTypeUserToken.
	MessageTypeRequestToken MessageType = "empowor_request_token"
	MessageTypeUserToken    MessageType = "empowor_user_token"

	MessageTypeSDKStatus      MessageType = "sdk_status"
	MessageTypeSDKLoad        MessageType = "sdk_load"
	MessageTypeInit           MessageType = "empowor_init"
	MessageTypeOpenOverlay    MessageType = "empowor_open_overlay"
	MessageTypeRequestExpense MessageType = "jirasan_request_expense"
)

// Request is a host to browser call. The browser answers with a Reply carrying
// the same RequestID.
type Request struct {
	Type      MessageType `json:"type"`
	RequestID string      `json:"request_id"`
	Payload   interface{} `json:"payload,omitempty"`
}

type Reply struct {
	Type      MessageType      `json:"type"`
	RequestID string           `json:"request_id,omitempty"`
	Status    models.FeeStatus `json:"status,omitempty"`
	IntentID  string           `json:"intentId,omitempty"`
	Loaded    bool             `json:"loaded,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// UserTokenMessage always carries user_token, null when nobody is logged in.
type UserTokenMessage struct {
	Type      MessageType `json:"type"`
	UserToken *string     `json:"user_token"`
}

type sdkLoadPayload struct {
	Src string `json:"src"`
}

type openOverlayPayload struct {
	URL string `json:"url"`
}

func decodeReply(data []byte) (*Reply, error) {
	var reply Reply
	if err := json.Unmarshal(data, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}
