package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "intake/pkg/domain-errors"
)

// NewInquiryID generates a fresh system inquiry identifier, assigned whenever
// an entity becomes durable without one.
func NewInquiryID() string {
	return "INQ-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// Status is the approval workflow state of a durable entity.
type Status string

const (
	StatusPending     Status = "PENDING"
	StatusUnderReview Status = "UNDER_REVIEW"
	StatusApproved    Status = "APPROVED"
	StatusRejected    Status = "REJECTED"
)

// MaxNotesLength bounds approval notes and rejection reasons.
const MaxNotesLength = 500

// ValidStatus reports whether s is one of the workflow states.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusUnderReview, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether s permits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Address is required in full once an entity becomes durable.
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	Country    string `json:"country"`
	PostalCode string `json:"postalCode"`
}

// Validate enforces that every address subfield is present.
func (a Address) Validate() error {
	if a.Street == "" || a.City == "" || a.State == "" || a.Country == "" || a.PostalCode == "" {
		return dErrors.New(dErrors.CodeValidation, "address requires street, city, state, country and postalCode")
	}
	return nil
}

// Entity is the durable record subject to the approval workflow.
type Entity struct {
	ID                   uuid.UUID      `json:"id"`
	Name                 string         `json:"name"`
	IdentificationNumber string         `json:"identificationNumber"`
	InquiryID            string         `json:"inquiryId"`
	Email                string         `json:"email"`
	Phone                string         `json:"phone,omitempty"`
	DateOfBirth          *time.Time     `json:"dateOfBirth,omitempty"`
	Address              Address        `json:"address"`
	ProfilePhoto         *Document      `json:"profilePhoto,omitempty"`
	Documents            []Document     `json:"documents"`
	Status               Status         `json:"status"`
	ApprovedBy           string         `json:"approvedBy,omitempty"`
	RejectedBy           string         `json:"rejectedBy,omitempty"`
	ApprovalDate         *time.Time     `json:"approvalDate,omitempty"`
	RejectionDate        *time.Time     `json:"rejectionDate,omitempty"`
	ApprovalNotes        string         `json:"approvalNotes,omitempty"`
	RejectionReason      string         `json:"rejectionReason,omitempty"`
	CreatedBy            string         `json:"createdBy"`
	CreatedAt            time.Time      `json:"createdAt"`
	UpdatedAt            time.Time      `json:"updatedAt"`
	AdditionalData       map[string]any `json:"additionalData,omitempty"`
}

// CanApprove guards the PENDING/UNDER_REVIEW → APPROVED edge. Rejected
// entities are terminal and cannot be approved.
func (e *Entity) CanApprove() error {
	switch e.Status {
	case StatusApproved:
		return dErrors.New(dErrors.CodeAlreadyApproved, "entity is already approved")
	case StatusRejected:
		return dErrors.New(dErrors.CodeInvalidTransition, "rejected entities cannot be approved")
	}
	return nil
}

// CanReject guards the PENDING/UNDER_REVIEW → REJECTED edge.
func (e *Entity) CanReject() error {
	switch e.Status {
	case StatusRejected:
		return dErrors.New(dErrors.CodeAlreadyRejected, "entity is already rejected")
	case StatusApproved:
		return dErrors.New(dErrors.CodeInvalidTransition, "approved entities cannot be rejected")
	}
	return nil
}

// CanUpdate allows field edits only while the entity is non-terminal.
func (e *Entity) CanUpdate() error {
	if e.Status.Terminal() {
		return dErrors.New(dErrors.CodeInvalidState, "entity is in a terminal state and cannot be edited")
	}
	return nil
}

// ApplyApproval mutates the entity into the APPROVED terminal state.
func (e *Entity) ApplyApproval(actorID, notes string, now time.Time) {
	e.Status = StatusApproved
	e.ApprovedBy = actorID
	e.ApprovalDate = &now
	e.ApprovalNotes = notes
	e.UpdatedAt = now
}

// ApplyRejection mutates the entity into the REJECTED terminal state.
func (e *Entity) ApplyRejection(actorID, reason string, now time.Time) {
	e.Status = StatusRejected
	e.RejectedBy = actorID
	e.RejectionDate = &now
	e.RejectionReason = reason
	e.UpdatedAt = now
}
