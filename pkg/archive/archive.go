// Package archive persists detection verdicts and intelligence snapshots
// to Postgres for later analysis and reporting.
package archive

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/TrapWireAI/lurebox/pkg/detect"
	"github.com/TrapWireAI/lurebox/pkg/intel"
)

// Archive writes conversation artifacts to Postgres.
type Archive struct {
	pool *pgxpool.Pool
}

// New connects to Postgres and verifies the connection.
func New(ctx context.Context, databaseURL string) (*Archive, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Archive{pool: pool}, nil
}

// Close releases the connection pool.
func (a *Archive) Close() {
	a.pool.Close()
}

// EnsureSchema creates the archive tables when they do not exist yet.
func (a *Archive) EnsureSchema(ctx context.Context) error {
	_, err := a.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS detections (
			id BIGSERIAL PRIMARY KEY,
			conversation_id TEXT NOT NULL,
			message TEXT NOT NULL,
			is_scam BOOLEAN NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			category TEXT NOT NULL,
			detected_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS detections_conversation_idx
			ON detections (conversation_id);

		CREATE TABLE IF NOT EXISTS bank_accounts (
			id BIGSERIAL PRIMARY KEY,
			conversation_id TEXT NOT NULL,
			account_number TEXT NOT NULL,
			ifsc_code TEXT NOT NULL DEFAULT '',
			bank_name TEXT NOT NULL DEFAULT '',
			confidence DOUBLE PRECISION NOT NULL,
			extracted_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (conversation_id, account_number)
		);

		CREATE TABLE IF NOT EXISTS payment_ids (
			id BIGSERIAL PRIMARY KEY,
			conversation_id TEXT NOT NULL,
			payment_id TEXT NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			extracted_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (conversation_id, payment_id)
		);

		CREATE TABLE IF NOT EXISTS urls (
			id BIGSERIAL PRIMARY KEY,
			conversation_id TEXT NOT NULL,
			url TEXT NOT NULL,
			domain TEXT NOT NULL,
			phishing BOOLEAN NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			extracted_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (conversation_id, url)
		);

		CREATE TABLE IF NOT EXISTS phone_numbers (
			id BIGSERIAL PRIMARY KEY,
			conversation_id TEXT NOT NULL,
			number TEXT NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			extracted_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (conversation_id, number)
		);
	`)
	if err != nil {
		return fmt.Errorf("ensure archive schema: %w", err)
	}
	return nil
}

// SaveDetection records a verdict for one message.
func (a *Archive) SaveDetection(ctx context.Context, conversationID, message string, result detect.Result) error {
	_, err := a.pool.Exec(ctx, `
		INSERT INTO detections (conversation_id, message, is_scam, confidence, category)
		VALUES ($1, $2, $3, $4, $5)`,
		conversationID, message, result.IsScam, result.Confidence, string(result.Category))
	if err != nil {
		return fmt.Errorf("save detection: %w", err)
	}
	return nil
}

// SaveSnapshot upserts every intelligence item in the snapshot. Confidence
// only ever moves up, matching the in-memory merge rule.
func (a *Archive) SaveSnapshot(ctx context.Context, conversationID string, snap *intel.Snapshot) error {
	if snap == nil || snap.IsEmpty() {
		return nil
	}

	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin archive tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, acc := range snap.BankAccounts {
		_, err = tx.Exec(ctx, `
			INSERT INTO bank_accounts (conversation_id, account_number, ifsc_code, bank_name, confidence)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (conversation_id, account_number) DO UPDATE SET
				ifsc_code = CASE WHEN bank_accounts.ifsc_code = '' THEN EXCLUDED.ifsc_code ELSE bank_accounts.ifsc_code END,
				bank_name = CASE WHEN bank_accounts.bank_name = '' THEN EXCLUDED.bank_name ELSE bank_accounts.bank_name END,
				confidence = GREATEST(bank_accounts.confidence, EXCLUDED.confidence)`,
			conversationID, acc.AccountNumber, acc.IFSCCode, acc.BankName, acc.Confidence)
		if err != nil {
			return fmt.Errorf("save bank account: %w", err)
		}
	}

	for _, p := range snap.PaymentIDs {
		_, err = tx.Exec(ctx, `
			INSERT INTO payment_ids (conversation_id, payment_id, confidence)
			VALUES ($1, $2, $3)
			ON CONFLICT (conversation_id, payment_id) DO UPDATE SET
				confidence = GREATEST(payment_ids.confidence, EXCLUDED.confidence)`,
			conversationID, p.ID, p.Confidence)
		if err != nil {
			return fmt.Errorf("save payment id: %w", err)
		}
	}

	for _, u := range snap.URLs {
		_, err = tx.Exec(ctx, `
			INSERT INTO urls (conversation_id, url, domain, phishing, confidence)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (conversation_id, url) DO UPDATE SET
				phishing = urls.phishing OR EXCLUDED.phishing,
				confidence = GREATEST(urls.confidence, EXCLUDED.confidence)`,
			conversationID, u.URL, u.Domain, u.Phishing, u.Confidence)
		if err != nil {
			return fmt.Errorf("save url: %w", err)
		}
	}

	for _, p := range snap.Phones {
		_, err = tx.Exec(ctx, `
			INSERT INTO phone_numbers (conversation_id, number, confidence)
			VALUES ($1, $2, $3)
			ON CONFLICT (conversation_id, number) DO UPDATE SET
				confidence = GREATEST(phone_numbers.confidence, EXCLUDED.confidence)`,
			conversationID, p.Number, p.Confidence)
		if err != nil {
			return fmt.Errorf("save phone number: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit archive tx: %w", err)
	}
	return nil
}
