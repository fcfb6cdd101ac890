package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

const receiptsTable = "donation_receipts"

const createReceiptsTable = `
CREATE TABLE IF NOT EXISTS donation_receipts (
	id BIGSERIAL PRIMARY KEY,
	certificate_no VARCHAR(32) NOT NULL,
	donor_name VARCHAR(255) NOT NULL,
	donor_email VARCHAR(255) NOT NULL,
	amount_yen VARCHAR(64) NOT NULL,
	payment_method VARCHAR(64) NOT NULL,
	donated_at TIMESTAMPTZ NOT NULL,
	download_token VARCHAR(64) DEFAULT NULL,
	status VARCHAR(32) NOT NULL DEFAULT 'created',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT uk_certificate_no UNIQUE (certificate_no),
	CONSTRAINT uk_download_token UNIQUE (download_token)
)`

type column struct {
	name       string
	definition string
}

// Columns added after the first release. Order matters only for readability
// of \d output.
var receiptColumns = []column{
	{name: "donor_postal_code", definition: "VARCHAR(16) NOT NULL DEFAULT ''"},
	{name: "donor_address", definition: "VARCHAR(255) NOT NULL DEFAULT ''"},
	{name: "is_checked", definition: "BOOLEAN NOT NULL DEFAULT FALSE"},
	{name: "checked_at", definition: "TIMESTAMPTZ DEFAULT NULL"},
	{name: "checked_by", definition: "VARCHAR(64) DEFAULT NULL"},
	{name: "is_deleted", definition: "BOOLEAN NOT NULL DEFAULT FALSE"},
	{name: "deleted_at", definition: "TIMESTAMPTZ DEFAULT NULL"},
	{name: "deleted_by", definition: "VARCHAR(64) DEFAULT NULL"},
	{name: "stripe_checkout_session_id", definition: "VARCHAR(255) DEFAULT NULL"},
	{name: "stripe_payment_intent_id", definition: "VARCHAR(255) DEFAULT NULL"},
	{name: "stripe_last_event_id", definition: "VARCHAR(255) DEFAULT NULL"},
	{name: "paid_at", definition: "TIMESTAMPTZ DEFAULT NULL"},
}

// schemaLockKey is the pg_advisory_xact_lock key serializing Ensure across
// connections and replicas.
const schemaLockKey int64 = 0x646f6e6174696f6e

// SchemaGuard creates the receipts table and adds missing columns. Callers
// take a transaction scoped advisory lock first: two racing CREATE TABLE IF
// NOT EXISTS can otherwise fail on the pg_type unique index.
type SchemaGuard struct {
	DB *gorm.DB
}

func NewSchemaGuard(db *gorm.DB) *SchemaGuard {
	return &SchemaGuard{DB: db}
}

func (g *SchemaGuard) Ensure(ctx context.Context) error {
	return g.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", schemaLockKey).Error; err != nil {
			return fmt.Errorf("lock schema: %w", err)
		}
		if err := tx.Exec(createReceiptsTable).Error; err != nil {
			return fmt.Errorf("create %s: %w", receiptsTable, err)
		}

		for _, col := range receiptColumns {
			exists, err := columnExists(tx, receiptsTable, col.name)
			if err != nil {
				return err
			}
			if exists {
				continue
			}
			stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s %s", receiptsTable, col.name, col.definition)
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("add column %s: %w", col.name, err)
			}
		}
		return nil
	})
}

func columnExists(tx *gorm.DB, table, name string) (bool, error) {
	var count int64
	err := tx.Raw(
		`SELECT COUNT(*) FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = ? AND column_name = ?`,
		table, name,
	).Scan(&count).Error
	if err != nil {
		return false, fmt.Errorf("inspect column %s: %w", name, err)
	}
	return count > 0, nil
}
