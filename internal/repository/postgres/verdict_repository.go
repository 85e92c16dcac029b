package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"

	"asclepius/internal/domain/triage"
	"asclepius/internal/domain/verdict"
	"asclepius/pkg/errors"
)

// VerdictRepository persists verdicts to PostgreSQL, with the full verdict
// and classification kept as JSONB alongside the queryable columns.
type VerdictRepository struct {
	db *sqlx.DB
}

// NewVerdictRepository creates the repository
func NewVerdictRepository(db *sqlx.DB) *VerdictRepository {
	return &VerdictRepository{db: db}
}

type verdictRow struct {
	ID                string    `db:"id"`
	PatientID         string    `db:"patient_id"`
	PatientName       string    `db:"patient_name"`
	FinalRiskLevel    string    `db:"final_risk_level"`
	PrimaryDepartment string    `db:"primary_department"`
	CouncilConsensus  string    `db:"council_consensus"`
	PriorityScore     int       `db:"priority_score"`
	ReferralNeeded    bool      `db:"referral_needed"`
	Verdict           []byte    `db:"verdict"`
	Classification    []byte    `db:"classification"`
	CreatedAt         time.Time `db:"created_at"`
}

// Save inserts a finalized verdict record
func (r *VerdictRepository) Save(ctx context.Context, rec *verdict.Record) error {
	if rec == nil || rec.Verdict == nil {
		return errors.Wrap(errors.ErrInvalidInput, "nil verdict record")
	}

	verdictJSON, err := json.Marshal(rec.Verdict)
	if err != nil {
		return errors.Wrap(err, "failed to marshal verdict")
	}
	classificationJSON, err := json.Marshal(rec.Classification)
	if err != nil {
		return errors.Wrap(err, "failed to marshal classification")
	}

	query := `
		INSERT INTO verdicts (
			id, patient_id, patient_name, final_risk_level, primary_department,
			council_consensus, priority_score, referral_needed, verdict, classification, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	v := rec.Verdict
	_, err = r.db.ExecContext(ctx, query,
		v.ID, v.PatientID, v.PatientName, string(v.FinalRiskLevel), v.PrimaryDepartment,
		string(v.CouncilConsensus), v.PriorityScore, v.ReferralNeeded,
		verdictJSON, classificationJSON, v.CreatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to insert verdict")
	}
	return nil
}

// GetByPatientID returns the latest verdict for a patient
func (r *VerdictRepository) GetByPatientID(ctx context.Context, patientID string) (*verdict.Record, error) {
	query := `
		SELECT id, patient_id, patient_name, final_risk_level, primary_department,
		       council_consensus, priority_score, referral_needed, verdict, classification, created_at
		FROM verdicts
		WHERE patient_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	var row verdictRow
	if err := r.db.GetContext(ctx, &row, query, patientID); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get verdict")
	}

	return rowToRecord(&row)
}

// List returns up to limit records, newest first
func (r *VerdictRepository) List(ctx context.Context, limit int) ([]*verdict.Record, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, patient_id, patient_name, final_risk_level, primary_department,
		       council_consensus, priority_score, referral_needed, verdict, classification, created_at
		FROM verdicts
		ORDER BY created_at DESC
		LIMIT $1`

	var rows []verdictRow
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, errors.Wrap(err, "failed to list verdicts")
	}

	records := make([]*verdict.Record, 0, len(rows))
	for i := range rows {
		rec, err := rowToRecord(&rows[i])
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Count returns the total number of stored verdicts
func (r *VerdictRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM verdicts`); err != nil {
		return 0, errors.Wrap(err, "failed to count verdicts")
	}
	return count, nil
}

func rowToRecord(row *verdictRow) (*verdict.Record, error) {
	var v verdict.Verdict
	if err := json.Unmarshal(row.Verdict, &v); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal verdict")
	}

	rec := &verdict.Record{Verdict: &v}
	if len(row.Classification) > 0 {
		var co triage.ClassifierOutput
		if err := json.Unmarshal(row.Classification, &co); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal classification")
		}
		rec.Classification = &co
	}
	return rec, nil
}

var _ verdict.Repository = (*VerdictRepository)(nil)
