package recordinfra

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"time"

	"github.com/Abraxas-365/saenggibu/pkg/errx"
	"github.com/Abraxas-365/saenggibu/pkg/kernel"
	"github.com/Abraxas-365/saenggibu/pkg/pipeline"
	"github.com/Abraxas-365/saenggibu/pkg/studentrecord"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
)

//go:embed schema.sql
var schema string

// Migrate creates the parsed_records table if it does not exist.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return errx.Wrap(err, "failed to migrate parsed_records", errx.TypeInternal)
	}
	return nil
}

// PostgresRecordRepository stores parsed records in PostgreSQL. The
// extraction result is kept as a JSONB document.
type PostgresRecordRepository struct {
	db *sqlx.DB
}

func NewPostgresRecordRepository(db *sqlx.DB) studentrecord.Repository {
	return &PostgresRecordRepository{db: db}
}

// Save inserts or updates a record.
func (r *PostgresRecordRepository) Save(ctx context.Context, record studentrecord.ParsedRecord) error {
	exists, err := r.exists(ctx, record.ID)
	if err != nil {
		return err
	}

	row, err := toPersistence(record)
	if err != nil {
		return err
	}
	if exists {
		return r.update(ctx, row)
	}
	return r.create(ctx, row)
}

func (r *PostgresRecordRepository) create(ctx context.Context, row recordRow) error {
	query := `
		INSERT INTO parsed_records (
			id, file_name, status, page_count, job_id, error, result, created_at, updated_at
		) VALUES (
			:id, :file_name, :status, :page_count, :job_id, :error, :result, :created_at, :updated_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			return studentrecord.ErrRecordExists().WithDetail("record_id", row.ID)
		}
		return errx.Wrap(err, "failed to create record", errx.TypeInternal).
			WithDetail("record_id", row.ID)
	}
	return nil
}

func (r *PostgresRecordRepository) update(ctx context.Context, row recordRow) error {
	query := `
		UPDATE parsed_records SET
			status = :status,
			page_count = :page_count,
			job_id = :job_id,
			error = :error,
			result = :result,
			updated_at = :updated_at
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return errx.Wrap(err, "failed to update record", errx.TypeInternal).
			WithDetail("record_id", row.ID)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return errx.Wrap(err, "failed to get rows affected on update", errx.TypeInternal)
	}
	if n == 0 {
		return studentrecord.ErrRecordNotFound().WithDetail("record_id", row.ID)
	}
	return nil
}

func (r *PostgresRecordRepository) FindByID(ctx context.Context, id kernel.RecordID) (*studentrecord.ParsedRecord, error) {
	var row recordRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM parsed_records WHERE id = $1`, id.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, studentrecord.ErrRecordNotFound().WithDetail("record_id", id.String())
		}
		return nil, errx.Wrap(err, "failed to find record", errx.TypeInternal)
	}
	return toDomain(row)
}

// List returns records newest first. Results are omitted from list rows.
func (r *PostgresRecordRepository) List(ctx context.Context, opts kernel.PaginationOptions) (kernel.Paginated[studentrecord.ParsedRecord], error) {
	opts = opts.Normalize()

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM parsed_records`); err != nil {
		return kernel.Paginated[studentrecord.ParsedRecord]{}, errx.Wrap(err, "failed to count records", errx.TypeInternal)
	}

	var rows []recordRow
	query := `
		SELECT id, file_name, status, page_count, job_id, error, NULL AS result, created_at, updated_at
		FROM parsed_records
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &rows, query, opts.PageSize, opts.Offset()); err != nil {
		return kernel.Paginated[studentrecord.ParsedRecord]{}, errx.Wrap(err, "failed to list records", errx.TypeInternal)
	}

	items := make([]studentrecord.ParsedRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := toDomain(row)
		if err != nil {
			return kernel.Paginated[studentrecord.ParsedRecord]{}, err
		}
		items = append(items, *rec)
	}
	return kernel.NewPaginated(items, opts.Page, opts.PageSize, total), nil
}

func (r *PostgresRecordRepository) Delete(ctx context.Context, id kernel.RecordID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM parsed_records WHERE id = $1`, id.String())
	if err != nil {
		return errx.Wrap(err, "failed to delete record", errx.TypeInternal)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return errx.Wrap(err, "failed to get rows affected on delete", errx.TypeInternal)
	}
	if n == 0 {
		return studentrecord.ErrRecordNotFound().WithDetail("record_id", id.String())
	}
	return nil
}

func (r *PostgresRecordRepository) exists(ctx context.Context, id kernel.RecordID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM parsed_records WHERE id = $1)`, id.String())
	if err != nil {
		return false, errx.Wrap(err, "failed to check record existence", errx.TypeInternal)
	}
	return exists, nil
}

type recordRow struct {
	ID        string             `db:"id"`
	FileName  string             `db:"file_name"`
	Status    string             `db:"status"`
	PageCount int                `db:"page_count"`
	JobID     string             `db:"job_id"`
	Error     string             `db:"error"`
	Result    types.NullJSONText `db:"result"`
	CreatedAt time.Time          `db:"created_at"`
	UpdatedAt time.Time          `db:"updated_at"`
}

func toPersistence(rec studentrecord.ParsedRecord) (recordRow, error) {
	row := recordRow{
		ID:        rec.ID.String(),
		FileName:  rec.FileName,
		Status:    string(rec.Status),
		PageCount: rec.PageCount,
		JobID:     rec.JobID,
		Error:     rec.Error,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
	if rec.Result != nil {
		data, err := json.Marshal(rec.Result)
		if err != nil {
			return recordRow{}, errx.Wrap(err, "failed to encode record result", errx.TypeInternal).
				WithDetail("record_id", row.ID)
		}
		row.Result = types.NullJSONText{JSONText: data, Valid: true}
	}
	return row, nil
}

func toDomain(row recordRow) (*studentrecord.ParsedRecord, error) {
	rec := &studentrecord.ParsedRecord{
		ID:        kernel.RecordID(row.ID),
		FileName:  row.FileName,
		Status:    studentrecord.Status(row.Status),
		PageCount: row.PageCount,
		JobID:     row.JobID,
		Error:     row.Error,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if row.Result.Valid && len(row.Result.JSONText) > 0 {
		var result pipeline.Result
		if err := row.Result.Unmarshal(&result); err != nil {
			return nil, errx.Wrap(err, "failed to decode record result", errx.TypeInternal).
				WithDetail("record_id", row.ID)
		}
		rec.Result = &result
	}
	return rec, nil
}
