package models

import (
	"time"

	entitymodels "intake/internal/entity/models"
	dErrors "intake/pkg/domain-errors"
)

// BeginRequest starts a wizard session (step 1).
type BeginRequest struct {
	Name                 string `json:"name"`
	IdentificationNumber string `json:"identificationNumber"`
}

func (r *BeginRequest) Validate() error {
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if r.IdentificationNumber == "" {
		return dErrors.New(dErrors.CodeValidation, "identificationNumber is required")
	}
	return nil
}

// ContactRequest carries step 2 fields.
type ContactRequest struct {
	Email       string     `json:"email"`
	Phone       string     `json:"phone,omitempty"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
}

func (r *ContactRequest) Validate() error {
	if r.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	return nil
}

// AddressRequest carries step 3 fields; all address subfields are required.
type AddressRequest struct {
	Address entitymodels.Address `json:"address"`
}

func (r *AddressRequest) Validate() error {
	return r.Address.Validate()
}

// PhotoRequest carries step 4: pre-processed profile photo metadata. Raw
// upload and image processing belong to the document collaborator.
type PhotoRequest struct {
	ProfilePhoto entitymodels.Document `json:"profilePhotoData"`
}

func (r *PhotoRequest) Validate() error {
	if r.ProfilePhoto.Filename == "" {
		return dErrors.New(dErrors.CodeValidation, "profilePhotoData.filename is required")
	}
	return nil
}

// DocumentsRequest carries step 5: supporting document metadata, default
// empty.
type DocumentsRequest struct {
	Documents []entitymodels.Document `json:"documents"`
}

func (r *DocumentsRequest) Validate() error {
	if len(r.Documents) > entitymodels.MaxDocumentsPerUpload {
		return dErrors.New(dErrors.CodeValidation, "at most 10 documents per request")
	}
	return nil
}

// FinalizeRequest carries step 6: optional free-form additional data merged
// into the entity before the durable write.
type FinalizeRequest struct {
	AdditionalData map[string]any `json:"additionalData,omitempty"`
}

// StepResult is returned by every step mutation.
type StepResult struct {
	TempID         string         `json:"tempId"`
	Step           int            `json:"step"`
	NextStep       *int           `json:"nextStep"`
	CompletedSteps []string       `json:"completedSteps"`
	EntityData     *SessionRecord `json:"entityData"`
}

// NewStepResult builds the step payload from the saved record.
func NewStepResult(record *SessionRecord) *StepResult {
	result := &StepResult{
		TempID:         record.TempID,
		Step:           record.Step,
		CompletedSteps: record.CompletedSteps,
		EntityData:     record,
	}
	if record.Step < TotalSteps {
		next := record.Step + 1
		result.NextStep = &next
	}
	return result
}
