// Package postgres persists entities in PostgreSQL with hand-written SQL.
// The unique indexes on identification_number and inquiry_id are the
// authoritative duplicate-identifier signal; services treat the resulting
// conflict as duplicate_identifier regardless of any pre-check.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"intake/internal/entity/models"
	"intake/internal/entity/store"
	"intake/pkg/platform/sentinel"
)

// Schema creates the entities table. Applied by migrations in deployment and
// by the integration test harness.
const Schema = `
CREATE TABLE IF NOT EXISTS entities (
	id                    UUID PRIMARY KEY,
	name                  TEXT NOT NULL,
	identification_number TEXT NOT NULL UNIQUE,
	inquiry_id            TEXT NOT NULL UNIQUE,
	email                 TEXT NOT NULL,
	phone                 TEXT NOT NULL DEFAULT '',
	date_of_birth         TIMESTAMPTZ,
	address               JSONB NOT NULL,
	profile_photo         JSONB,
	documents             JSONB NOT NULL DEFAULT '[]',
	status                TEXT NOT NULL,
	approved_by           TEXT NOT NULL DEFAULT '',
	rejected_by           TEXT NOT NULL DEFAULT '',
	approval_date         TIMESTAMPTZ,
	rejection_date        TIMESTAMPTZ,
	approval_notes        TEXT NOT NULL DEFAULT '',
	rejection_reason      TEXT NOT NULL DEFAULT '',
	created_by            TEXT NOT NULL DEFAULT '',
	created_at            TIMESTAMPTZ NOT NULL,
	updated_at            TIMESTAMPTZ NOT NULL,
	additional_data       JSONB
);
CREATE INDEX IF NOT EXISTS idx_entities_status ON entities (status);
`

const uniqueViolation = "23505"

const entityColumns = `id, name, identification_number, inquiry_id, email, phone,
	date_of_birth, address, profile_photo, documents, status,
	approved_by, rejected_by, approval_date, rejection_date,
	approval_notes, rejection_reason, created_by, created_at, updated_at,
	additional_data`

// Store is the PostgreSQL-backed entity store.
type Store struct {
	db *sql.DB
}

// New constructs a PostgreSQL-backed entity store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Insert(ctx context.Context, entity *models.Entity) error {
	address, profilePhoto, documents, additionalData, err := marshalJSONColumns(entity)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO entities (` + entityColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`
	_, err = s.db.ExecContext(ctx, query,
		entity.ID, entity.Name, entity.IdentificationNumber, entity.InquiryID,
		entity.Email, entity.Phone, entity.DateOfBirth,
		address, profilePhoto, documents, string(entity.Status),
		entity.ApprovedBy, entity.RejectedBy, entity.ApprovalDate, entity.RejectionDate,
		entity.ApprovalNotes, entity.RejectionReason, entity.CreatedBy,
		entity.CreatedAt, entity.UpdatedAt, additionalData,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert entity: %w", err)
	}
	return nil
}

func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*models.Entity, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entityColumns+` FROM entities WHERE id = $1`, id)
	entity, err := scanEntity(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find entity by id: %w", err)
	}
	return entity, nil
}

func (s *Store) FindByIdentificationNumber(ctx context.Context, identificationNumber string) (*models.Entity, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entityColumns+` FROM entities WHERE identification_number = $1`, identificationNumber)
	entity, err := scanEntity(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find entity by identification number: %w", err)
	}
	return entity, nil
}

func (s *Store) List(ctx context.Context, query store.ListQuery) ([]*models.Entity, int, error) {
	query = query.Normalize()

	where, args := buildFilter(query)

	var total int
	countQuery := `SELECT COUNT(*) FROM entities` + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count entities: %w", err)
	}

	direction := "DESC"
	if query.SortAsc {
		direction = "ASC"
	}
	// SortBy passed through NormalizeSort, so interpolation is safe.
	listQuery := fmt.Sprintf(
		`SELECT %s FROM entities%s ORDER BY %s %s, id %s LIMIT $%d OFFSET $%d`,
		entityColumns, where, query.SortBy, direction, direction, len(args)+1, len(args)+2,
	)
	args = append(args, query.Limit, (query.Page-1)*query.Limit)

	rows, err := s.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list entities: %w", err)
	}
	defer rows.Close()

	entities := make([]*models.Entity, 0, query.Limit)
	for rows.Next() {
		entity, err := scanEntity(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan entity: %w", err)
		}
		entities = append(entities, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate entities: %w", err)
	}
	return entities, total, nil
}

func (s *Store) Update(ctx context.Context, entity *models.Entity) error {
	address, profilePhoto, documents, additionalData, err := marshalJSONColumns(entity)
	if err != nil {
		return err
	}

	query := `
		UPDATE entities SET
			name = $2, email = $3, phone = $4, date_of_birth = $5,
			address = $6, profile_photo = $7, documents = $8, status = $9,
			approved_by = $10, rejected_by = $11, approval_date = $12,
			rejection_date = $13, approval_notes = $14, rejection_reason = $15,
			updated_at = $16, additional_data = $17
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query,
		entity.ID, entity.Name, entity.Email, entity.Phone, entity.DateOfBirth,
		address, profilePhoto, documents, string(entity.Status),
		entity.ApprovedBy, entity.RejectedBy, entity.ApprovalDate,
		entity.RejectionDate, entity.ApprovalNotes, entity.RejectionReason,
		entity.UpdatedAt, additionalData,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("update entity: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update entity rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM entities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete entity: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete entity rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Store) CountByStatus(ctx context.Context, status models.Status) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM entities WHERE status = $1`, string(status)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count entities by status: %w", err)
	}
	return count, nil
}

func buildFilter(query store.ListQuery) (string, []any) {
	var conditions []string
	var args []any

	if query.Status != nil {
		args = append(args, string(*query.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if query.Search != "" {
		args = append(args, "%"+escapeLike(query.Search)+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(name ILIKE $%d OR email ILIKE $%d OR identification_number ILIKE $%d OR inquiry_id ILIKE $%d)",
			n, n, n, n,
		))
	}
	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutralizes LIKE metacharacters so a search term matches
// literally instead of acting as a pattern.
func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntity(row rowScanner) (*models.Entity, error) {
	var (
		entity         models.Entity
		status         string
		address        []byte
		profilePhoto   []byte
		documents      []byte
		additionalData []byte
	)
	err := row.Scan(
		&entity.ID, &entity.Name, &entity.IdentificationNumber, &entity.InquiryID,
		&entity.Email, &entity.Phone, &entity.DateOfBirth,
		&address, &profilePhoto, &documents, &status,
		&entity.ApprovedBy, &entity.RejectedBy, &entity.ApprovalDate, &entity.RejectionDate,
		&entity.ApprovalNotes, &entity.RejectionReason, &entity.CreatedBy,
		&entity.CreatedAt, &entity.UpdatedAt, &additionalData,
	)
	if err != nil {
		return nil, err
	}
	entity.Status = models.Status(status)

	if err := json.Unmarshal(address, &entity.Address); err != nil {
		return nil, fmt.Errorf("decode address: %w", err)
	}
	if len(profilePhoto) > 0 {
		entity.ProfilePhoto = &models.Document{}
		if err := json.Unmarshal(profilePhoto, entity.ProfilePhoto); err != nil {
			return nil, fmt.Errorf("decode profile photo: %w", err)
		}
	}
	if len(documents) > 0 {
		if err := json.Unmarshal(documents, &entity.Documents); err != nil {
			return nil, fmt.Errorf("decode documents: %w", err)
		}
	}
	if entity.Documents == nil {
		entity.Documents = []models.Document{}
	}
	if len(additionalData) > 0 {
		if err := json.Unmarshal(additionalData, &entity.AdditionalData); err != nil {
			return nil, fmt.Errorf("decode additional data: %w", err)
		}
	}
	return &entity, nil
}

func marshalJSONColumns(entity *models.Entity) (address, profilePhoto, documents, additionalData []byte, err error) {
	address, err = json.Marshal(entity.Address)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("encode address: %w", err)
	}
	if entity.ProfilePhoto != nil {
		profilePhoto, err = json.Marshal(entity.ProfilePhoto)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("encode profile photo: %w", err)
		}
	}
	docs := entity.Documents
	if docs == nil {
		docs = []models.Document{}
	}
	documents, err = json.Marshal(docs)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("encode documents: %w", err)
	}
	if entity.AdditionalData != nil {
		additionalData, err = json.Marshal(entity.AdditionalData)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("encode additional data: %w", err)
		}
	}
	return address, profilePhoto, documents, additionalData, nil
}
