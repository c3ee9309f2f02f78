package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/morphcodes/morphd/internal/core/domain"
)

type organizationRepository struct {
	db *sql.DB
}

func NewOrganizationRepository(config ...interface{}) (domain.OrganizationRepository, error) {
	if len(config) != 1 {
		return nil, fmt.Errorf("invalid config")
	}
	db, ok := config[0].(*sql.DB)
	if !ok {
		return nil, fmt.Errorf("cannot open organization repository: invalid config")
	}
	return &organizationRepository{db}, nil
}

func (r *organizationRepository) Close() {
	_ = r.db.Close()
}

func (r *organizationRepository) AddOrganization(
	ctx context.Context, org domain.Organization,
) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO organization (
			id, name, slug, owner_id, api_key, plan, webhook_url, webhook_secret,
			active, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		org.ID, org.Name, org.Slug, org.OwnerID, org.APIKey, string(org.Plan),
		org.WebhookURL, org.WebhookSecret, boolToInt(org.Active), org.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert organization: %w", err)
	}
	return nil
}

func (r *organizationRepository) GetOrganization(
	ctx context.Context, id string,
) (*domain.Organization, error) {
	return r.getOrgBy(ctx, "id", id)
}

func (r *organizationRepository) GetOrganizationByAPIKey(
	ctx context.Context, apiKey string,
) (*domain.Organization, error) {
	return r.getOrgBy(ctx, "api_key", apiKey)
}

func (r *organizationRepository) UpdateOrganization(
	ctx context.Context, id string,
	updateFn func(*domain.Organization) (*domain.Organization, error),
) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	// nolint
	defer tx.Rollback()

	row := tx.QueryRowContext(
		ctx,
		`SELECT id, name, slug, owner_id, api_key, plan, webhook_url, webhook_secret,
			active, created_at
		FROM organization WHERE id = ?`,
		id,
	)
	org, err := scanOrgRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("organization %s not found", id)
	}
	if err != nil {
		return err
	}

	updated, err := updateFn(org)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(
		ctx,
		`UPDATE organization SET name = ?, plan = ?, api_key = ?, webhook_url = ?,
			webhook_secret = ?, active = ? WHERE id = ?`,
		updated.Name, string(updated.Plan), updated.APIKey, updated.WebhookURL,
		updated.WebhookSecret, boolToInt(updated.Active), id,
	); err != nil {
		return fmt.Errorf("failed to update organization: %w", err)
	}

	return tx.Commit()
}

func (r *organizationRepository) getOrgBy(
	ctx context.Context, column, value string,
) (*domain.Organization, error) {
	row := r.db.QueryRowContext(
		ctx,
		fmt.Sprintf(
			`SELECT id, name, slug, owner_id, api_key, plan, webhook_url, webhook_secret,
				active, created_at
			FROM organization WHERE %s = ?`, column,
		),
		value,
	)
	org, err := scanOrgRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return org, nil
}

func scanOrgRow(row rowScanner) (*domain.Organization, error) {
	var org domain.Organization
	var plan string
	var active int
	var createdAt int64
	if err := row.Scan(
		&org.ID, &org.Name, &org.Slug, &org.OwnerID, &org.APIKey, &plan,
		&org.WebhookURL, &org.WebhookSecret, &active, &createdAt,
	); err != nil {
		return nil, err
	}
	org.Plan = domain.Plan(plan)
	org.Active = active != 0
	org.CreatedAt = time.UnixMilli(createdAt)
	return &org, nil
}
