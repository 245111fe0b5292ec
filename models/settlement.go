package models

import "time"

type EventType string

const (
	EventTypeLoss EventType = "EVENT_LOSS"
	EventTypeGain EventType = "EVENT_GAIN"
)

type ApprovalResult struct {
	Approved bool   `json:"approved"`
	EventID  string `json:"event_id"`
}

// SettlementEvent is the write-only payload of POST /register-event.
type SettlementEvent struct {
	UserID          string    `json:"user_id"`
	EventName       string    `json:"event_name"`
	EventType       EventType `json:"event_type"`
	Amount          int       `json:"amount"`
	TokenAddress    string    `json:"token_address"`
	ExpenseIntentID string    `json:"expense_intent_id,omitempty"`
}

type IntentRequest struct {
	Amount       int    `json:"amount"`
	TokenAddress string `json:"token_address"`
	Description  string `json:"description"`
	ExpiresIn    int    `json:"expires_in"`
	EventName    string `json:"event_name"`
}

type ExpenseIntent struct {
	ID           string `json:"intent_id,omitempty"`
	Success      bool   `json:"success"`
	ApprovalLink string `json:"approval_link"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
	Message      string `json:"message,omitempty"`
}

type FeeStatus string

const (
	FeeStatusApproved  FeeStatus = "approved"
	FeeStatusDenied    FeeStatus = "denied"
	FeeStatusCancelled FeeStatus = "cancelled"
	FeeStatusExpired   FeeStatus = "expired"
)

type FeeRequest struct {
	Amount       int    `json:"amount"`
	TokenAddress string `json:"tokenAddress"`
	Description  string `json:"description"`
	EventName    string `json:"eventName,omitempty"`
}

type FeeResult struct {
	Status   FeeStatus `json:"status"`
	IntentID string    `json:"intentId,omitempty"`
}

func (r *FeeResult) Approved() bool {
	return r != nil && r.Status == FeeStatusApproved
}

type SettlementStatus string

const (
	SettlementStatusAttempted SettlementStatus = "attempted"
	SettlementStatusConfirmed SettlementStatus = "confirmed"
	SettlementStatusFailed    SettlementStatus = "failed"
	SettlementStatusUnknown   SettlementStatus = "unknown"
)

// SettlementRecord is one journalled register-event attempt.
type SettlementRecord struct {
	ID              string           `json:"id" pg:"id"`
	UserID          string           `json:"user_id" pg:"user_id"`
	EventName       string           `json:"event_name" pg:"event_name"`
	EventType       EventType        `json:"event_type" pg:"event_type"`
	Amount          int              `json:"amount" pg:"amount"`
	ApprovalEventID string           `json:"approval_event_id,omitempty" pg:"approval_event_id"`
	ExpenseIntentID string           `json:"expense_intent_id,omitempty" pg:"expense_intent_id"`
	Status          SettlementStatus `json:"status" pg:"status"`
	Message         string           `json:"message,omitempty" pg:"message"`
	CreatedAt       time.Time        `json:"created_at" pg:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at" pg:"updated_at"`
}

// SettlementMessage is published to the bus after a confirmed registration.
type SettlementMessage struct {
	MessageID       string    `json:"message_id"`
	Timestamp       time.Time `json:"timestamp"`
	Variant         string    `json:"variant"`
	UserID          string    `json:"user_id"`
	EventName       string    `json:"event_name"`
	EventType       EventType `json:"event_type"`
	Amount          int       `json:"amount"`
	ApprovalEventID string    `json:"approval_event_id,omitempty"`
	ExpenseIntentID string    `json:"expense_intent_id,omitempty"`
}
