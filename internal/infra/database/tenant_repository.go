package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/robert-SPHERE/RealEstate-VisitorIQPro-sub000/internal/entity"
)

type TenantRepository struct {
	DB *sql.DB
}

func NewTenantRepository(db *sql.DB) *TenantRepository {
	return &TenantRepository{DB: db}
}

const tenantColumns = `
	cid, name, status,
	sender_name, note_template, mailing_list_id,
	return_street, return_city, return_state, return_zip,
	created_at, updated_at
`

// ListActive: só tenants com status=active entram em qualquer rodada do
// pipeline. Suspenso/inativo fica fora já na query.
func (r *TenantRepository) ListActive(ctx context.Context) ([]*entity.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE status = $1 ORDER BY cid`

	rows, err := r.DB.QueryContext(ctx, query, entity.TenantActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []*entity.Tenant
	for rows.Next() {
		tenant, err := scanTenant(rows.Scan)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, tenant)
	}
	return tenants, rows.Err()
}

func (r *TenantRepository) FindByCID(ctx context.Context, cid string) (*entity.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE cid = $1`

	tenant, err := scanTenant(r.DB.QueryRowContext(ctx, query, cid).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return tenant, nil
}

func scanTenant(scan func(dest ...any) error) (*entity.Tenant, error) {
	tenant := &entity.Tenant{}
	var senderName, noteTemplate, listID sql.NullString
	var retStreet, retCity, retState, retZip sql.NullString

	err := scan(
		&tenant.CID, &tenant.Name, &tenant.Status,
		&senderName, &noteTemplate, &listID,
		&retStreet, &retCity, &retState, &retZip,
		&tenant.CreatedAt, &tenant.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	tenant.Settings = entity.ChannelSettings{
		SenderName:    senderName.String,
		NoteTemplate:  noteTemplate.String,
		MailingListID: listID.String,
		ReturnAddress: entity.Address{
			Street:  retStreet.String,
			City:    retCity.String,
			State:   retState.String,
			ZipCode: retZip.String,
		},
	}
	return tenant, nil
}
