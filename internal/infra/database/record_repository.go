package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/robert-SPHERE/RealEstate-VisitorIQPro-sub000/internal/entity"
)

type RecordRepository struct {
	DB *sql.DB
}

func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{DB: db}
}

const recordColumns = `
	id, cid, hash, source_url, session_id, var1, var2, captured_at,
	first_name, last_name, email, street, city, state, zip_code,
	age_range, gender, marital_status, income_range,
	home_owner, home_value, length_of_residence,
	emails, enrichment_status, retry_count, last_error,
	email_synced_at, note_synced_at, created_at, updated_at
`

// UpsertByHash grava os metadados de captura pelo par (cid, hash).
// Tenta UPDATE primeiro; se o registro não existe, INSERT. A corrida
// entre dois writers cai no unique do banco e vira um segundo UPDATE.
// Reprocessar o mesmo evento nunca cria um segundo registro: a chave é
// o par (cid, hash) normalizado em entity.NewIdentityRecord.
// Campos de enriquecimento NÃO são tocados aqui.
func (r *RecordRepository) UpsertByHash(ctx context.Context, rec *entity.IdentityRecord) error {
	updated, err := r.updateCapture(ctx, rec)
	if err != nil {
		return err
	}
	if updated {
		return nil
	}

	insert := `
		INSERT INTO identity_records
			(id, cid, hash, source_url, session_id, var1, var2, captured_at,
			 enrichment_status, retry_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, NOW(), NOW())
	`

	_, err = r.DB.ExecContext(ctx, insert,
		rec.ID,
		rec.CID,
		rec.Hash,
		rec.SourceURL,
		rec.SessionID,
		rec.Var1,
		rec.Var2,
		nullTime(rec.CapturedAt),
		entity.EnrichmentPending,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// Outro writer inseriu o mesmo (cid, hash) no meio do caminho.
			// O unique segura a duplicata; resolve como update.
			if _, retryErr := r.updateCapture(ctx, rec); retryErr != nil {
				return retryErr
			}
			return nil
		}

		log.Printf("Erro crítico no banco: %v", err)
		return err
	}

	return nil
}

func (r *RecordRepository) updateCapture(ctx context.Context, rec *entity.IdentityRecord) (bool, error) {
	query := `
		UPDATE identity_records
		SET
			source_url = $3,
			session_id = $4,
			var1 = $5,
			captured_at = GREATEST(COALESCE(captured_at, 'epoch'::timestamptz), COALESCE($6, 'epoch'::timestamptz)),
			updated_at = NOW()
		WHERE cid = $1 AND hash = $2
	`

	result, err := r.DB.ExecContext(ctx, query,
		rec.CID, rec.Hash, rec.SourceURL, rec.SessionID, rec.Var1, nullTime(rec.CapturedAt),
	)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *RecordRepository) FindByIDs(ctx context.Context, ids []string) ([]*entity.IdentityRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM identity_records WHERE id = ANY($1) ORDER BY created_at`, recordColumns)
	rows, err := r.DB.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

func (r *RecordRepository) FindByHashes(ctx context.Context, cid string, hashes []string) ([]*entity.IdentityRecord, error) {
	if len(hashes) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM identity_records WHERE cid = $1 AND hash = ANY($2) ORDER BY created_at`, recordColumns)
	rows, err := r.DB.QueryContext(ctx, query, cid, hashes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

// FindEnrichmentCandidates: status vazio/pending/failed, OU campos de
// identidade furados mesmo com status completed (proteção contra escrita
// parcial: a mesma regra de entity.NeedsEnrichment, em SQL).
func (r *RecordRepository) FindEnrichmentCandidates(ctx context.Context, cid string, limit int) ([]*entity.IdentityRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM identity_records
		WHERE cid = $1
		  AND (
			enrichment_status IS NULL
			OR enrichment_status IN ('', 'pending', 'failed')
			OR first_name IS NULL OR TRIM(first_name) = '' OR UPPER(TRIM(first_name)) IN ('N/A', 'NULL')
			OR email IS NULL OR TRIM(email) = '' OR UPPER(TRIM(email)) IN ('N/A', 'NULL')
		  )
		ORDER BY created_at
		LIMIT $2
	`, recordColumns)

	rows, err := r.DB.QueryContext(ctx, query, cid, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

// FindDueForChannel aplica o delta do canal em SQL: cursor nulo OU
// registro atualizado depois do último push. A mesma regra de
// entity.IsDueForChannel, que o usecase re-checa registro a registro.
func (r *RecordRepository) FindDueForChannel(ctx context.Context, cid, channel string, limit int) ([]*entity.IdentityRecord, error) {
	column, err := channelColumn(channel)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT %s FROM identity_records
		WHERE cid = $1
		  AND enrichment_status = '%s'
		  AND (%s IS NULL OR updated_at > %s)
		ORDER BY updated_at
		LIMIT $2
	`, recordColumns, entity.EnrichmentCompleted, column, column)

	rows, err := r.DB.QueryContext(ctx, query, cid, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

func (r *RecordRepository) SaveEnrichment(ctx context.Context, rec *entity.IdentityRecord) error {
	emailsJSON, err := json.Marshal(rec.Emails)
	if err != nil {
		return fmt.Errorf("erro ao marshal emails: %w", err)
	}

	query := `
		UPDATE identity_records
		SET
			first_name = $2, last_name = $3, email = $4,
			street = $5, city = $6, state = $7, zip_code = $8,
			age_range = $9, gender = $10, marital_status = $11, income_range = $12,
			home_owner = $13, home_value = $14, length_of_residence = $15,
			emails = $16,
			enrichment_status = $17,
			last_error = '',
			updated_at = NOW()
		WHERE id = $1
	`

	_, err = r.DB.ExecContext(ctx, query,
		rec.ID,
		rec.FirstName, rec.LastName, rec.Email,
		rec.Address.Street, rec.Address.City, rec.Address.State, rec.Address.ZipCode,
		rec.AgeRange, rec.Gender, rec.MaritalStatus, rec.IncomeRange,
		rec.HomeOwner, rec.HomeValue, rec.LengthOfResidence,
		emailsJSON,
		rec.EnrichmentStatus,
	)
	return err
}

func (r *RecordRepository) MarkEnrichmentFailed(ctx context.Context, id string, attempts int, lastError string) error {
	query := `
		UPDATE identity_records
		SET enrichment_status = $2, retry_count = $3, last_error = $4, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.DB.ExecContext(ctx, query, id, entity.EnrichmentFailed, attempts, lastError)
	return err
}

// StampChannelSync avança o cursor do canal, só para frente.
func (r *RecordRepository) StampChannelSync(ctx context.Context, id, channel string, at time.Time) error {
	column, err := channelColumn(channel)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE identity_records
		SET %s = $2
		WHERE id = $1 AND (%s IS NULL OR %s < $2)
	`, column, column, column)

	_, err = r.DB.ExecContext(ctx, query, id, at)
	return err
}

// channelColumn valida o nome do canal: nunca interpola input externo
func channelColumn(channel string) (string, error) {
	switch channel {
	case entity.ChannelEmail:
		return "email_synced_at", nil
	case entity.ChannelNote:
		return "note_synced_at", nil
	}
	return "", fmt.Errorf("canal desconhecido: %s", channel)
}

func scanRecords(rows *sql.Rows) ([]*entity.IdentityRecord, error) {
	var records []*entity.IdentityRecord

	for rows.Next() {
		rec := &entity.IdentityRecord{}
		var capturedAt, emailSyncedAt, noteSyncedAt sql.NullTime
		var emailsJSON []byte
		var firstName, lastName, email, street, city, state, zipCode sql.NullString
		var ageRange, gender, marital, income, homeOwner, homeValue, residence sql.NullString
		var status, lastError sql.NullString

		err := rows.Scan(
			&rec.ID, &rec.CID, &rec.Hash, &rec.SourceURL, &rec.SessionID, &rec.Var1, &rec.Var2, &capturedAt,
			&firstName, &lastName, &email, &street, &city, &state, &zipCode,
			&ageRange, &gender, &marital, &income,
			&homeOwner, &homeValue, &residence,
			&emailsJSON, &status, &rec.RetryCount, &lastError,
			&emailSyncedAt, &noteSyncedAt, &rec.CreatedAt, &rec.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		rec.CapturedAt = capturedAt.Time
		rec.FirstName = firstName.String
		rec.LastName = lastName.String
		rec.Email = email.String
		rec.Address = entity.Address{Street: street.String, City: city.String, State: state.String, ZipCode: zipCode.String}
		rec.AgeRange = ageRange.String
		rec.Gender = gender.String
		rec.MaritalStatus = marital.String
		rec.IncomeRange = income.String
		rec.HomeOwner = homeOwner.String
		rec.HomeValue = homeValue.String
		rec.LengthOfResidence = residence.String
		rec.EnrichmentStatus = status.String
		rec.LastError = lastError.String

		if len(emailsJSON) > 0 {
			if err := json.Unmarshal(emailsJSON, &rec.Emails); err != nil {
				log.Printf("⚠️ Emails corrompidos no registro %s: %v", rec.ID, err)
			}
		}
		if emailSyncedAt.Valid {
			t := emailSyncedAt.Time
			rec.EmailSyncedAt = &t
		}
		if noteSyncedAt.Valid {
			t := noteSyncedAt.Time
			rec.NoteSyncedAt = &t
		}

		records = append(records, rec)
	}

	return records, rows.Err()
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
