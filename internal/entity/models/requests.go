package models

import (
	"time"

	dErrors "intake/pkg/domain-errors"
)

// CreateEntityRequest is the direct (non-wizard) creation payload.
type CreateEntityRequest struct {
	Name                 string         `json:"name"`
	IdentificationNumber string         `json:"identificationNumber"`
	Email                string         `json:"email"`
	Phone                string         `json:"phone,omitempty"`
	DateOfBirth          *time.Time     `json:"dateOfBirth,omitempty"`
	Address              Address        `json:"address"`
	ProfilePhoto         *Document      `json:"profilePhoto,omitempty"`
	Documents            []Document     `json:"documents,omitempty"`
	AdditionalData       map[string]any `json:"additionalData,omitempty"`
}

func (r *CreateEntityRequest) Validate() error {
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if r.IdentificationNumber == "" {
		return dErrors.New(dErrors.CodeValidation, "identificationNumber is required")
	}
	if r.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	return r.Address.Validate()
}

// UpdateEntityRequest carries a partial field merge. Nil pointers leave the
// corresponding field untouched.
type UpdateEntityRequest struct {
	Name           *string         `json:"name,omitempty"`
	Email          *string         `json:"email,omitempty"`
	Phone          *string         `json:"phone,omitempty"`
	DateOfBirth    *time.Time      `json:"dateOfBirth,omitempty"`
	Address        *Address        `json:"address,omitempty"`
	ProfilePhoto   *Document       `json:"profilePhoto,omitempty"`
	Documents      *[]Document     `json:"documents,omitempty"`
	Status         *Status         `json:"status,omitempty"`
	AdditionalData *map[string]any `json:"additionalData,omitempty"`
}

func (r *UpdateEntityRequest) Validate() error {
	if r.Address != nil {
		if err := r.Address.Validate(); err != nil {
			return err
		}
	}
	if r.Status != nil {
		if !ValidStatus(*r.Status) {
			return dErrors.New(dErrors.CodeValidation, "unknown status")
		}
		// Approval and rejection have dedicated operations; a general edit may
		// only move between the non-terminal states.
		if r.Status.Terminal() {
			return dErrors.New(dErrors.CodeInvalidTransition, "use the approve or reject operation for terminal states")
		}
	}
	return nil
}

// ApproveRequest carries optional reviewer notes.
type ApproveRequest struct {
	ApprovalNotes string `json:"approvalNotes,omitempty"`
}

func (r *ApproveRequest) Validate() error {
	if len(r.ApprovalNotes) > MaxNotesLength {
		return dErrors.New(dErrors.CodeValidation, "approvalNotes must be at most 500 characters")
	}
	return nil
}

// RejectRequest carries the mandatory rejection reason.
type RejectRequest struct {
	RejectionReason string `json:"rejectionReason"`
}

func (r *RejectRequest) Validate() error {
	if r.RejectionReason == "" {
		return dErrors.New(dErrors.CodeMissingReason, "rejectionReason is required")
	}
	if len(r.RejectionReason) > MaxNotesLength {
		return dErrors.New(dErrors.CodeValidation, "rejectionReason must be at most 500 characters")
	}
	return nil
}
