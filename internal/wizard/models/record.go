// Package models defines the cache-only in-progress record the step wizard
// assembles before an entity becomes durable.
package models

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	entitymodels "intake/internal/entity/models"
)

// TotalSteps is the number of wizard steps.
const TotalSteps = 6

// TempIDPrefix is the prefix of generated temporary session ids.
const TempIDPrefix = "temp_entity"

// Step-name tags appended to CompletedSteps, in step order.
const (
	StepBasicInfo      = "basic_info"
	StepContactInfo    = "contact_info"
	StepAddressInfo    = "address_info"
	StepProfilePhoto   = "profile_photo"
	StepDocuments      = "documents"
	StepAdditionalInfo = "additional_info"
)

// SessionRecord is the partial entity under construction. It exists only in
// the cache and has no durable counterpart until finalized.
type SessionRecord struct {
	TempID string `json:"tempId"`
	// Step is the highest step invoked so far; steps are not forced to run
	// strictly in order, only to address an existing session.
	Step           int      `json:"step"`
	CompletedSteps []string `json:"completedSteps"`

	Name                 string                  `json:"name"`
	IdentificationNumber string                  `json:"identificationNumber"`
	Email                string                  `json:"email,omitempty"`
	Phone                string                  `json:"phone,omitempty"`
	DateOfBirth          *time.Time              `json:"dateOfBirth,omitempty"`
	Address              *entitymodels.Address   `json:"address,omitempty"`
	ProfilePhoto         *entitymodels.Document  `json:"profilePhoto,omitempty"`
	Documents            []entitymodels.Document `json:"documents,omitempty"`
	AdditionalData       map[string]any          `json:"additionalData,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MarkStep records that a step ran: Step advances to the given number and the
// tag is appended once. Re-running a step overwrites its fields but does not
// duplicate the tag.
func (r *SessionRecord) MarkStep(step int, tag string, now time.Time) {
	if step > r.Step {
		r.Step = step
	}
	for _, existing := range r.CompletedSteps {
		if existing == tag {
			r.UpdatedAt = now
			return
		}
	}
	r.CompletedSteps = append(r.CompletedSteps, tag)
	r.UpdatedAt = now
}

// Progress is the progress-query payload.
type Progress struct {
	CurrentStep     int            `json:"currentStep"`
	TotalSteps      int            `json:"totalSteps"`
	CompletedSteps  []string       `json:"completedSteps"`
	ProgressPercent int            `json:"progressPercent"`
	NextStep        *int           `json:"nextStep"`
	EntityData      *SessionRecord `json:"entityData"`
}

// BuildProgress derives progress metadata from a session record.
func BuildProgress(record *SessionRecord) *Progress {
	p := &Progress{
		CurrentStep:     record.Step,
		TotalSteps:      TotalSteps,
		CompletedSteps:  record.CompletedSteps,
		ProgressPercent: int(float64(len(record.CompletedSteps))/TotalSteps*100 + 0.5),
		EntityData:      record,
	}
	if record.Step < TotalSteps {
		next := record.Step + 1
		p.NextStep = &next
	}
	return p
}

const tokenAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// NewTempID generates a temporary session id of the form
// temp_entity_<unixSeconds>_<9-char token>.
func NewTempID(now time.Time) string {
	token := make([]byte, 9)
	max := big.NewInt(int64(len(tokenAlphabet)))
	for i := range token {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken;
			// fall back to a time-derived index rather than panicking.
			token[i] = tokenAlphabet[int(now.UnixNano()+int64(i))%len(tokenAlphabet)]
			continue
		}
		token[i] = tokenAlphabet[n.Int64()]
	}
	return fmt.Sprintf("%s_%d_%s", TempIDPrefix, now.Unix(), token)
}
