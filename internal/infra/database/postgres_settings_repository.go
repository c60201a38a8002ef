// internal/infra/database/postgres_settings_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"

	"foodtruck_order_notifier/internal/domain/intake"
)

var ErrMerchantSettingsNotFound = fmt.Errorf("merchant settings not found")

// PostgresSettingsRepository implements intake.SettingsSource over the
// 'merchant_settings' table. Settings are read fresh every polling cycle so
// a mode change takes effect on the next poll without a restart.
type PostgresSettingsRepository struct {
	db *sql.DB
}

func NewPostgresSettingsRepository(db *sql.DB) *PostgresSettingsRepository {
	return &PostgresSettingsRepository{db: db}
}

func (r *PostgresSettingsRepository) MerchantSettings(ctx context.Context, merchantID string) (*intake.Settings, error) {
	query := `SELECT auto_accept_orders, show_order_popup, send_confirmation_email, min_preparation_time
              FROM merchant_settings WHERE merchant_id = $1`
	s := intake.Settings{}
	err := r.db.QueryRowContext(ctx, query, merchantID).Scan(
		&s.AutoAcceptOrders, &s.ShowOrderPopup, &s.SendConfirmationEmail, &s.MinPreparationTime)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrMerchantSettingsNotFound
		}
		return nil, fmt.Errorf("error getting merchant settings: %w", err)
	}
	return &s, nil
}
