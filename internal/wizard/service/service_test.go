package service

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"intake/internal/entity/cache"
	entitymodels "intake/internal/entity/models"
	entitymemory "intake/internal/entity/store/memory"
	"intake/internal/wizard/models"
	"intake/internal/wizard/store"
	dErrors "intake/pkg/domain-errors"
	"intake/pkg/requestcontext"
)

type WizardServiceSuite struct {
	suite.Suite
	ctx      context.Context
	now      time.Time
	clock    *time.Time
	sessions *store.MemoryStore
	entities *entitymemory.Store
	cache    *cache.MemoryCache
	service  *Service
}

func TestWizardServiceSuite(t *testing.T) {
	suite.Run(t, new(WizardServiceSuite))
}

func (s *WizardServiceSuite) SetupTest() {
	s.now = time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	clock := s.now
	s.clock = &clock
	nowFn := func() time.Time { return *s.clock }

	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.sessions = store.NewMemory().WithClock(nowFn)
	s.entities = entitymemory.New()
	s.cache = cache.NewMemory(30 * time.Minute).WithClock(nowFn)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.service = NewService(s.sessions, s.entities, s.cache, 30*time.Minute, logger, nil, nil)
}

func (s *WizardServiceSuite) advance(d time.Duration) {
	*s.clock = s.clock.Add(d)
}

func (s *WizardServiceSuite) begin() *models.StepResult {
	result, err := s.service.Begin(s.ctx, &models.BeginRequest{
		Name:                 "Acme Holdings",
		IdentificationNumber: "ID-" + uuid.NewString()[:8],
	})
	s.Require().NoError(err)
	return result
}

func (s *WizardServiceSuite) address() *models.AddressRequest {
	return &models.AddressRequest{Address: entitymodels.Address{
		Street: "1 Main St", City: "Metropolis", State: "NY",
		Country: "US", PostalCode: "10001",
	}}
}

func (s *WizardServiceSuite) TestFullFlow() {
	begin := s.begin()
	s.Equal(1, begin.Step)
	s.Require().NotNil(begin.NextStep)
	s.Equal(2, *begin.NextStep)
	s.True(strings.HasPrefix(begin.TempID, "temp_entity_"))
	tempID := begin.TempID

	contact, err := s.service.Contact(s.ctx, tempID, &models.ContactRequest{
		Email: "ops@acme.example",
		Phone: "+1-555-0100",
	})
	s.Require().NoError(err)
	s.Equal(2, contact.Step)

	_, err = s.service.Address(s.ctx, tempID, s.address())
	s.Require().NoError(err)

	_, err = s.service.Photo(s.ctx, tempID, &models.PhotoRequest{
		ProfilePhoto: entitymodels.Document{
			Type: entitymodels.DocumentTypeImage, Filename: "p.png",
			OriginalName: "photo.png", MimeType: "image/png",
		},
	})
	s.Require().NoError(err)

	docs, err := s.service.Documents(s.ctx, tempID, &models.DocumentsRequest{
		Documents: []entitymodels.Document{{
			Type: entitymodels.DocumentTypePDF, Filename: "c.pdf",
			OriginalName: "contract.pdf", MimeType: "application/pdf",
		}},
	})
	s.Require().NoError(err)
	s.Equal(5, docs.Step)
	s.Len(docs.CompletedSteps, 5)

	entity, err := s.service.Finalize(s.ctx, tempID, &models.FinalizeRequest{
		AdditionalData: map[string]any{"segment": "enterprise"},
	}, "reviewer-1")
	s.Require().NoError(err)

	// The durable entity carries everything the steps assembled.
	s.Equal("Acme Holdings", entity.Name)
	s.Equal("ops@acme.example", entity.Email)
	s.Equal("+1-555-0100", entity.Phone)
	s.Equal(entitymodels.StatusPending, entity.Status)
	s.Equal("reviewer-1", entity.CreatedBy)
	s.True(strings.HasPrefix(entity.InquiryID, "INQ-"))
	s.Require().NotNil(entity.ProfilePhoto)
	s.Equal("photo.png", entity.ProfilePhoto.OriginalName)
	s.Len(entity.Documents, 1)
	s.Equal("enterprise", entity.AdditionalData["segment"])

	// Durable and cached, session gone.
	stored, err := s.entities.FindByID(s.ctx, entity.ID)
	s.Require().NoError(err)
	s.Equal(entity.Name, stored.Name)

	cached, err := s.cache.Get(s.ctx, entity.ID)
	s.Require().NoError(err)
	s.Equal(entity.ID, cached.ID)

	_, err = s.service.Progress(s.ctx, tempID)
	s.True(dErrors.HasCode(err, dErrors.CodeSessionExpired))
}

func (s *WizardServiceSuite) TestBegin() {
	s.Run("rejects a registered identification number up front", func() {
		existing := &entitymodels.Entity{
			ID:                   uuid.New(),
			IdentificationNumber: "ID-TAKEN",
			InquiryID:            "INQ-1",
			Status:               entitymodels.StatusPending,
		}
		s.Require().NoError(s.entities.Insert(s.ctx, existing))

		_, err := s.service.Begin(s.ctx, &models.BeginRequest{
			Name:                 "Dup Corp",
			IdentificationNumber: "ID-TAKEN",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeDuplicateIdentifier))
	})

	s.Run("requires name and identification number", func() {
		_, err := s.service.Begin(s.ctx, &models.BeginRequest{Name: "No ID"})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *WizardServiceSuite) TestSessionExpiry() {
	begin := s.begin()

	s.advance(31 * time.Minute)

	_, err := s.service.Contact(s.ctx, begin.TempID, &models.ContactRequest{Email: "a@b.c"})
	s.True(dErrors.HasCode(err, dErrors.CodeSessionExpired))

	_, err = s.service.Progress(s.ctx, begin.TempID)
	s.True(dErrors.HasCode(err, dErrors.CodeSessionExpired))

	_, err = s.service.Finalize(s.ctx, begin.TempID, &models.FinalizeRequest{}, "reviewer-1")
	s.True(dErrors.HasCode(err, dErrors.CodeSessionExpired))
}

func (s *WizardServiceSuite) TestSlidingTTL() {
	begin := s.begin()

	// Each step write restarts the 30 minute clock.
	s.advance(20 * time.Minute)
	_, err := s.service.Contact(s.ctx, begin.TempID, &models.ContactRequest{Email: "ops@acme.example"})
	s.Require().NoError(err)

	s.advance(20 * time.Minute)
	_, err = s.service.Address(s.ctx, begin.TempID, s.address())
	s.Require().NoError(err)

	s.advance(20 * time.Minute)
	progress, err := s.service.Progress(s.ctx, begin.TempID)
	s.Require().NoError(err)
	s.Equal(3, progress.CurrentStep)
}

func (s *WizardServiceSuite) TestLooseStepOrdering() {
	begin := s.begin()

	// Steps only require a live session, not their predecessors.
	_, err := s.service.Documents(s.ctx, begin.TempID, &models.DocumentsRequest{})
	s.Require().NoError(err)

	progress, err := s.service.Progress(s.ctx, begin.TempID)
	s.Require().NoError(err)
	s.Equal(5, progress.CurrentStep)
	s.Contains(progress.CompletedSteps, models.StepDocuments)
	s.NotContains(progress.CompletedSteps, models.StepContactInfo)
}

func (s *WizardServiceSuite) TestFinalizeRequiresAssembledFields() {
	s.Run("missing email", func() {
		begin := s.begin()
		_, err := s.service.Address(s.ctx, begin.TempID, s.address())
		s.Require().NoError(err)

		_, err = s.service.Finalize(s.ctx, begin.TempID, &models.FinalizeRequest{}, "reviewer-1")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))

		// The session survives a failed finalize.
		_, err = s.service.Progress(s.ctx, begin.TempID)
		s.NoError(err)
	})

	s.Run("missing address", func() {
		begin := s.begin()
		_, err := s.service.Contact(s.ctx, begin.TempID, &models.ContactRequest{Email: "ops@acme.example"})
		s.Require().NoError(err)

		_, err = s.service.Finalize(s.ctx, begin.TempID, &models.FinalizeRequest{}, "reviewer-1")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *WizardServiceSuite) TestFinalizeDuplicateRace() {
	// A second wizard can pass the begin pre-check before the first finalizes;
	// the store constraint decides the race.
	first := s.begin()
	_, err := s.service.Contact(s.ctx, first.TempID, &models.ContactRequest{Email: "a@acme.example"})
	s.Require().NoError(err)
	_, err = s.service.Address(s.ctx, first.TempID, s.address())
	s.Require().NoError(err)

	record, err := s.sessions.Find(s.ctx, first.TempID)
	s.Require().NoError(err)

	second, err := s.service.Begin(s.ctx, &models.BeginRequest{
		Name:                 "Acme Shadow",
		IdentificationNumber: record.IdentificationNumber,
	})
	s.Require().NoError(err)
	_, err = s.service.Contact(s.ctx, second.TempID, &models.ContactRequest{Email: "b@acme.example"})
	s.Require().NoError(err)
	_, err = s.service.Address(s.ctx, second.TempID, s.address())
	s.Require().NoError(err)

	_, err = s.service.Finalize(s.ctx, first.TempID, &models.FinalizeRequest{}, "reviewer-1")
	s.Require().NoError(err)

	_, err = s.service.Finalize(s.ctx, second.TempID, &models.FinalizeRequest{}, "reviewer-1")
	s.True(dErrors.HasCode(err, dErrors.CodeDuplicateIdentifier))
}

func (s *WizardServiceSuite) TestDocumentsCap() {
	begin := s.begin()
	batch := make([]entitymodels.Document, entitymodels.MaxDocumentsPerUpload+1)
	_, err := s.service.Documents(s.ctx, begin.TempID, &models.DocumentsRequest{Documents: batch})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *WizardServiceSuite) TestRerunStep() {
	begin := s.begin()
	_, err := s.service.Contact(s.ctx, begin.TempID, &models.ContactRequest{Email: "old@acme.example"})
	s.Require().NoError(err)

	result, err := s.service.Contact(s.ctx, begin.TempID, &models.ContactRequest{Email: "new@acme.example"})
	s.Require().NoError(err)

	// Overwrites fields, keeps a single completed tag.
	s.Equal("new@acme.example", result.EntityData.Email)
	s.Equal([]string{models.StepBasicInfo, models.StepContactInfo}, result.CompletedSteps)
}

func (s *WizardServiceSuite) TestCancel() {
	begin := s.begin()

	s.Require().NoError(s.service.Cancel(s.ctx, begin.TempID))
	_, err := s.service.Progress(s.ctx, begin.TempID)
	s.True(dErrors.HasCode(err, dErrors.CodeSessionExpired))

	// Cancelling again, or cancelling an unknown session, is fine.
	s.NoError(s.service.Cancel(s.ctx, begin.TempID))
	s.NoError(s.service.Cancel(s.ctx, "temp_entity_0_unknown"))
}
