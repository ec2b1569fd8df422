package domain

import "encoding/json"

// ============================================================
// Orders: upstream /orders/creating/ and /orders/purchases/
// ============================================================

// Order is a pending assignment awaiting the user's accept/reject decision.
type Order struct {
	ID          int64           `json:"id"`
	Article     string          `json:"article"`
	Title       string          `json:"title,omitempty"`
	PickupPoint string          `json:"pickup_point,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	Status      string          `json:"status,omitempty"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	CreatedAt   string          `json:"created_at,omitempty"`
	UpdatedAt   string          `json:"updated_at,omitempty"`
}

// Purchase is created once an order is accepted and houses the test report.
type Purchase struct {
	ID          int64           `json:"id"`
	Article     string          `json:"article"`
	ExternalID  string          `json:"external_id,omitempty"`
	PickupPoint string          `json:"pickup_point,omitempty"`
	Status      string          `json:"status"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	HasReport   bool            `json:"has_report"`
	CreatedAt   string          `json:"created_at,omitempty"`
	UpdatedAt   string          `json:"updated_at,omitempty"`
}

// Purchase statuses as reported by the backend.
const (
	PurchaseStatusPending    = "PENDING"
	PurchaseStatusInProgress = "IN_PROGRESS"
	PurchaseStatusCompleted  = "COMPLETED"
	PurchaseStatusCancelled  = "CANCELLED"
)

// DecisionAction is the user's answer to an order.
type DecisionAction string

const (
	DecisionApprove DecisionAction = "approve"
	DecisionReject  DecisionAction = "reject"
)

// Valid reports whether a is one of the accepted actions.
func (a DecisionAction) Valid() bool {
	return a == DecisionApprove || a == DecisionReject
}

// DecisionRequest is the body for POST /orders/creating/{id}/decision/.
// ExternalID and PickupPoint are only sent on approve.
type DecisionRequest struct {
	Action           DecisionAction  `json:"action"`
	ExternalID       string          `json:"external_id,omitempty"`
	PickupPoint      string          `json:"pickup_point,omitempty"`
	PurchaseMetadata json.RawMessage `json:"purchase_metadata,omitempty"`
}

// DecisionResponse carries the purchase created on approve.
type DecisionResponse struct {
	Detail     string `json:"detail,omitempty"`
	PurchaseID int64  `json:"purchase_id,omitempty"`
}

// FindPurchase returns the purchase with the given id, or nil.
func FindPurchase(purchases []Purchase, id int64) *Purchase {
	for i := range purchases {
		if purchases[i].ID == id {
			return &purchases[i]
		}
	}
	return nil
}
