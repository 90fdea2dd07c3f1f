// Package summary stores interview summaries and caches model responses.
package summary

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/qasummary/internal/inference"
)

// Record is a persisted summary together with the interview it describes.
type Record struct {
	ID            string            `json:"id" yaml:"id"`
	CandidateName string            `json:"candidate_name" yaml:"candidate_name"`
	JobTitle      string            `json:"job_title" yaml:"job_title"`
	CompanyName   string            `json:"company_name" yaml:"company_name"`
	Transcript    string            `json:"transcript" yaml:"transcript"`
	RequestHash   string            `json:"request_hash" yaml:"request_hash"`
	Summary       inference.Summary `json:"summary" yaml:"summary"`
	Model         string            `json:"model" yaml:"model"`
	CreatedAt     time.Time         `json:"created_at" yaml:"created_at"`
}

type row struct {
	ID                      string    `db:"id"`
	CandidateName           string    `db:"candidate_name"`
	JobTitle                string    `db:"job_title"`
	CompanyName             string    `db:"company_name"`
	Transcript              string    `db:"transcript"`
	RequestHash             string    `db:"request_hash"`
	Name                    string    `db:"name"`
	OverallImpression       string    `db:"overall_impression"`
	ChanceOfGettingTheJob   string    `db:"chance_of_getting_the_job"`
	MostRelevantPosition    string    `db:"most_relevant_position"`
	PersonalCapability      string    `db:"personal_capability"`
	PsychologicalCapability string    `db:"psychological_capability"`
	TechnicalCapability     string    `db:"technical_capability"`
	FinalThoughts           string    `db:"final_thoughts"`
	Model                   string    `db:"model"`
	CreatedAt               time.Time `db:"created_at"`
}

func (r row) toRecord() Record {
	return Record{
		ID:            r.ID,
		CandidateName: r.CandidateName,
		JobTitle:      r.JobTitle,
		CompanyName:   r.CompanyName,
		Transcript:    r.Transcript,
		RequestHash:   r.RequestHash,
		Summary: inference.Summary{
			Name:                    r.Name,
			OverallImpression:       r.OverallImpression,
			ChanceOfGettingTheJob:   r.ChanceOfGettingTheJob,
			MostRelevantPosition:    r.MostRelevantPosition,
			PersonalCapability:      r.PersonalCapability,
			PsychologicalCapability: r.PsychologicalCapability,
			TechnicalCapability:     r.TechnicalCapability,
			FinalThoughts:           r.FinalThoughts,
		},
		Model:     r.Model,
		CreatedAt: r.CreatedAt,
	}
}

func toRecords(rows []row) []Record {
	records := make([]Record, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.toRecord())
	}
	return records
}

// Repository defines operations for managing summaries.
type Repository interface {
	FindAll(ctx context.Context) ([]Record, error)
	FindByID(ctx context.Context, id string) (*Record, error)
	FindByCandidate(ctx context.Context, candidateName string) ([]Record, error)
	Create(ctx context.Context, record *Record) error
}

// DBRepository implements Repository using MySQL.
type DBRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{db: db, now: time.Now}
}

// FindAll returns all summaries, newest first.
func (r *DBRepository) FindAll(ctx context.Context) ([]Record, error) {
	var rows []row
	if err := r.db.SelectContext(ctx, &rows, "SELECT * FROM interview_summaries ORDER BY created_at DESC"); err != nil {
		return nil, fmt.Errorf("db.SelectContext(interview_summaries) > %w", err)
	}
	return toRecords(rows), nil
}

// FindByID returns the summary with the id, or nil if not found.
func (r *DBRepository) FindByID(ctx context.Context, id string) (*Record, error) {
	var result row
	err := r.db.GetContext(ctx, &result, "SELECT * FROM interview_summaries WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(interview_summary) > %w", err)
	}
	record := result.toRecord()
	return &record, nil
}

// FindByCandidate returns every summary of a candidate, newest first.
func (r *DBRepository) FindByCandidate(ctx context.Context, candidateName string) ([]Record, error) {
	var rows []row
	if err := r.db.SelectContext(ctx, &rows,
		"SELECT * FROM interview_summaries WHERE candidate_name = ? ORDER BY created_at DESC",
		candidateName); err != nil {
		return nil, fmt.Errorf("db.SelectContext(interview_summaries by candidate) > %w", err)
	}
	return toRecords(rows), nil
}

// Create inserts a new summary, assigning its ID and creation time when unset.
func (r *DBRepository) Create(ctx context.Context, record *Record) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = r.now().UTC().Truncate(time.Millisecond)
	}

	s := record.Summary
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO interview_summaries (id, candidate_name, job_title, company_name, transcript, request_hash,
		name, overall_impression, chance_of_getting_the_job, most_relevant_position, personal_capability,
		psychological_capability, technical_capability, final_thoughts, model, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.CandidateName, record.JobTitle, record.CompanyName, record.Transcript, record.RequestHash,
		s.Name, s.OverallImpression, s.ChanceOfGettingTheJob, s.MostRelevantPosition, s.PersonalCapability,
		s.PsychologicalCapability, s.TechnicalCapability, s.FinalThoughts, record.Model, record.CreatedAt); err != nil {
		return fmt.Errorf("db.ExecContext(insert interview_summary) > %w", err)
	}
	return nil
}
