// Package models holds the domain types shared by the client managers,
// the JSON-RPC API and the marketd services.
package models

import (
	"time"

	"github.com/filecoin-project/go-state-types/abi"
)

// TransferStatus is the lifecycle state of a payment transfer.
// The only legal moves are active -> completed and active -> cancelled.
type TransferStatus string

const (
	TransferActive    TransferStatus = "active"
	TransferCompleted TransferStatus = "completed"
	TransferCancelled TransferStatus = "cancelled"
)

func (s TransferStatus) Valid() bool {
	switch s {
	case TransferActive, TransferCompleted, TransferCancelled:
		return true
	}
	return false
}

// CanTransition reports whether a transfer in status s may move to next.
func (s TransferStatus) CanTransition(next TransferStatus) bool {
	return s == TransferActive && (next == TransferCompleted || next == TransferCancelled)
}

// Transfer is a recurring payment from Payer to Recipient for ItemID.
// EndTime is nil exactly while Status is active.
type Transfer struct {
	ID        string          `json:"id"`
	ItemID    string          `json:"itemId"`
	Recipient string          `json:"recipient"`
	Payer     string          `json:"payer"`
	Amount    abi.TokenAmount `json:"amount"`
	StartTime time.Time       `json:"startTime"`
	EndTime   *time.Time      `json:"endTime,omitempty"`
	Status    TransferStatus  `json:"status"`
}

func (t Transfer) Active() bool {
	return t.Status == TransferActive && t.EndTime == nil
}

// Finish moves the transfer to a terminal status at the given time.
func (t *Transfer) Finish(status TransferStatus, at time.Time) bool {
	if !t.Status.CanTransition(status) {
		return false
	}
	at = at.UTC()
	t.Status = status
	t.EndTime = &at
	return true
}

// TransferRequest is what a payer submits to open a transfer.
type TransferRequest struct {
	ID        string          `json:"id"`
	ItemID    string          `json:"itemId"`
	Recipient string          `json:"recipient"`
	Payer     string          `json:"payer"`
	Amount    abi.TokenAmount `json:"amount"`
}

// PaymentStatus is the snapshot returned by a status query.
type PaymentStatus struct {
	ID        string          `json:"id"`
	Status    TransferStatus  `json:"status"`
	Amount    abi.TokenAmount `json:"amount"`
	StartTime time.Time       `json:"startTime"`
	EndTime   *time.Time      `json:"endTime,omitempty"`
}

func (t Transfer) Snapshot() PaymentStatus {
	return PaymentStatus{
		ID:        t.ID,
		Status:    t.Status,
		Amount:    t.Amount,
		StartTime: t.StartTime,
		EndTime:   t.EndTime,
	}
}
