package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/robert-SPHERE/RealEstate-VisitorIQPro-sub000/internal/entity"
)

type WatermarkRepository struct {
	DB *sql.DB
}

func NewWatermarkRepository(db *sql.DB) *WatermarkRepository {
	return &WatermarkRepository{DB: db}
}

// Get devolve nil (sem erro) quando o tenant nunca sincronizou:
// é o sinal de full sync para a ingestão.
func (r *WatermarkRepository) Get(ctx context.Context, cid string) (*entity.Watermark, error) {
	query := `SELECT cid, last_synced_at, synced_count FROM tenant_watermarks WHERE cid = $1`

	wm := &entity.Watermark{}
	err := r.DB.QueryRowContext(ctx, query, cid).Scan(&wm.CID, &wm.LastSyncedAt, &wm.SyncedCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return wm, nil
}

// Advance faz o avanço monotônico no próprio banco: o UPDATE só aplica
// quando o novo timestamp é estritamente maior. Dois writers concorrentes
// não conseguem regredir o cursor.
func (r *WatermarkRepository) Advance(ctx context.Context, cid string, lastSyncedAt time.Time, count int64) error {
	query := `
		INSERT INTO tenant_watermarks (cid, last_synced_at, synced_count)
		VALUES ($1, $2, $3)
		ON CONFLICT (cid) DO UPDATE
		SET
			last_synced_at = EXCLUDED.last_synced_at,
			synced_count = tenant_watermarks.synced_count + EXCLUDED.synced_count
		WHERE tenant_watermarks.last_synced_at < EXCLUDED.last_synced_at
	`

	_, err := r.DB.ExecContext(ctx, query, cid, lastSyncedAt, count)
	return err
}
