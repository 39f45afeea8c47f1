package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/angelcm/horizon-crm/internal/apperr"
	"github.com/angelcm/horizon-crm/internal/metrics"
	"github.com/angelcm/horizon-crm/internal/models"
)

// Repo implements the CRM row store against PostgreSQL.
type Repo struct {
	db *sql.DB
	m  *metrics.Metrics
}

func NewRepo(db *sql.DB, m *metrics.Metrics) *Repo { return &Repo{db: db, m: m} }

// Open connects with lib/pq and pings.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS campaigns (
	id                TEXT PRIMARY KEY,
	user_id           TEXT NOT NULL,
	name              TEXT NOT NULL,
	created_at        DATE NOT NULL,
	lead_count        INTEGER NOT NULL DEFAULT 0,
	created_timestamp TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS leads (
	id                TEXT PRIMARY KEY,
	user_id           TEXT NOT NULL,
	campaign_id       TEXT NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
	name              TEXT NOT NULL,
	company           TEXT NOT NULL,
	phone             TEXT NOT NULL,
	email             TEXT,
	address           TEXT,
	website           TEXT,
	rating            TEXT,
	reviews           TEXT,
	summary           TEXT,
	status            TEXT NOT NULL,
	created_timestamp TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS clients (
	id                    TEXT PRIMARY KEY,
	user_id               TEXT NOT NULL,
	name                  TEXT NOT NULL,
	company               TEXT NOT NULL,
	close_date            DATE NOT NULL,
	upfront_value         NUMERIC(14,2) NOT NULL DEFAULT 0,
	monthly_value         NUMERIC(14,2) NOT NULL DEFAULT 0,
	monthly_retainer_date DATE,
	status                TEXT NOT NULL,
	created_timestamp     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS demo_events (
	id                TEXT PRIMARY KEY,
	user_id           TEXT NOT NULL,
	lead_id           TEXT NOT NULL,
	date              DATE NOT NULL,
	created_timestamp TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// Migrate creates the four tables when missing.
func (r *Repo) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (r *Repo) fail(table, op string, start time.Time, err error) error {
	r.m.ObserveRemote(table, op, start, err)
	if err == nil {
		return nil
	}
	return apperr.Wrap(fmt.Errorf("%s %s: %w", op, table, err), apperr.CodeRemote, "row store request failed")
}

func (r *Repo) ListCampaigns(ctx context.Context, userID string) (out []models.CampaignRow, err error) {
	start := time.Now()
	defer func() { err = r.fail(models.TableCampaigns, "select", start, err) }()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, created_at::text, lead_count, created_timestamp::text
		FROM campaigns WHERE user_id = $1
		ORDER BY created_timestamp DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var c models.CampaignRow
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.CreatedAt, &c.LeadCount, &c.CreatedTimestamp); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) ListLeads(ctx context.Context, userID string) (out []models.LeadRow, err error) {
	start := time.Now()
	defer func() { err = r.fail(models.TableLeads, "select", start, err) }()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, campaign_id, name, company, phone,
		       email, address, website, rating, reviews, summary, status, created_timestamp::text
		FROM leads WHERE user_id = $1
		ORDER BY created_timestamp DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var l models.LeadRow
		if err := rows.Scan(&l.ID, &l.UserID, &l.CampaignID, &l.Name, &l.Company, &l.Phone,
			&l.Email, &l.Address, &l.Website, &l.Rating, &l.Reviews, &l.Summary, &l.Status, &l.CreatedTimestamp); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *Repo) ListClients(ctx context.Context, userID string) (out []models.ClientRow, err error) {
	start := time.Now()
	defer func() { err = r.fail(models.TableClients, "select", start, err) }()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, company, close_date::text, upfront_value, monthly_value,
		       monthly_retainer_date::text, status, created_timestamp::text
		FROM clients WHERE user_id = $1
		ORDER BY created_timestamp DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var c models.ClientRow
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Company, &c.CloseDate, &c.UpfrontValue, &c.MonthlyValue,
			&c.MonthlyRetainerDate, &c.Status, &c.CreatedTimestamp); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) ListDemoEvents(ctx context.Context, userID string) (out []models.DemoEventRow, err error) {
	start := time.Now()
	defer func() { err = r.fail(models.TableDemoEvents, "select", start, err) }()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, lead_id, date::text, created_timestamp::text
		FROM demo_events WHERE user_id = $1
		ORDER BY created_timestamp DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var d models.DemoEventRow
		if err := rows.Scan(&d.ID, &d.UserID, &d.LeadID, &d.Date, &d.CreatedTimestamp); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *Repo) InsertCampaign(ctx context.Context, c models.CampaignRow) (err error) {
	start := time.Now()
	defer func() { err = r.fail(models.TableCampaigns, "insert", start, err) }()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO campaigns (id, user_id, name, created_at, lead_count)
		VALUES ($1, $2, $3, $4, $5)`, c.ID, c.UserID, c.Name, c.CreatedAt, c.LeadCount)
	return err
}

func (r *Repo) UpdateCampaign(ctx context.Context, userID, id string, p models.CampaignPatch) (err error) {
	start := time.Now()
	defer func() { err = r.fail(models.TableCampaigns, "update", start, err) }()
	_, err = r.db.ExecContext(ctx, `
		UPDATE campaigns
		SET name = COALESCE($3, name), lead_count = COALESCE($4, lead_count)
		WHERE id = $1 AND user_id = $2`, id, userID, p.Name, p.LeadCount)
	return err
}

func (r *Repo) DeleteCampaign(ctx context.Context, userID, id string) (err error) {
	start := time.Now()
	defer func() { err = r.fail(models.TableCampaigns, "delete", start, err) }()
	_, err = r.db.ExecContext(ctx, `DELETE FROM campaigns WHERE id = $1 AND user_id = $2`, id, userID)
	return err
}

// InsertLeads streams the batch with COPY inside one transaction.
func (r *Repo) InsertLeads(ctx context.Context, leads []models.LeadRow) (err error) {
	if len(leads) == 0 {
		return nil
	}
	start := time.Now()
	defer func() { err = r.fail(models.TableLeads, "insert", start, err) }()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(models.TableLeads,
		"id", "user_id", "campaign_id", "name", "company", "phone",
		"email", "address", "website", "rating", "reviews", "summary", "status"))
	if err != nil {
		return err
	}
	for _, l := range leads {
		if _, err := stmt.ExecContext(ctx, l.ID, l.UserID, l.CampaignID, l.Name, l.Company, l.Phone,
			l.Email, l.Address, l.Website, l.Rating, l.Reviews, l.Summary, l.Status); err != nil {
			stmt.Close()
			return err
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return err
	}
	if err := stmt.Close(); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *Repo) UpdateLead(ctx context.Context, userID, id string, p models.LeadPatch) (err error) {
	start := time.Now()
	defer func() { err = r.fail(models.TableLeads, "update", start, err) }()
	_, err = r.db.ExecContext(ctx, `
		UPDATE leads SET name = $3, company = $4, phone = $5, email = $6, address = $7,
		       website = $8, rating = $9, reviews = $10, summary = $11, status = $12
		WHERE id = $1 AND user_id = $2`,
		id, userID, p.Name, p.Company, p.Phone, p.Email, p.Address, p.Website, p.Rating, p.Reviews, p.Summary, p.Status)
	return err
}

func (r *Repo) UpdateLeadStatus(ctx context.Context, userID, id string, p models.LeadStatusPatch) (err error) {
	start := time.Now()
	defer func() { err = r.fail(models.TableLeads, "update", start, err) }()
	_, err = r.db.ExecContext(ctx, `UPDATE leads SET status = $3 WHERE id = $1 AND user_id = $2`, id, userID, p.Status)
	return err
}

func (r *Repo) DeleteLead(ctx context.Context, userID, id string) (err error) {
	start := time.Now()
	defer func() { err = r.fail(models.TableLeads, "delete", start, err) }()
	_, err = r.db.ExecContext(ctx, `DELETE FROM leads WHERE id = $1 AND user_id = $2`, id, userID)
	return err
}

func (r *Repo) InsertClient(ctx context.Context, c models.ClientRow) (err error) {
	start := time.Now()
	defer func() { err = r.fail(models.TableClients, "insert", start, err) }()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO clients (id, user_id, name, company, close_date, upfront_value, monthly_value, monthly_retainer_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.UserID, c.Name, c.Company, c.CloseDate, c.UpfrontValue, c.MonthlyValue, c.MonthlyRetainerDate, c.Status)
	return err
}

func (r *Repo) UpdateClient(ctx context.Context, userID, id string, p models.ClientPatch) (err error) {
	start := time.Now()
	defer func() { err = r.fail(models.TableClients, "update", start, err) }()
	_, err = r.db.ExecContext(ctx, `
		UPDATE clients SET name = $3, company = $4, close_date = $5, upfront_value = $6,
		       monthly_value = $7, monthly_retainer_date = $8, status = $9
		WHERE id = $1 AND user_id = $2`,
		id, userID, p.Name, p.Company, p.CloseDate, p.UpfrontValue, p.MonthlyValue, p.MonthlyRetainerDate, p.Status)
	return err
}

func (r *Repo) DeleteClient(ctx context.Context, userID, id string) (err error) {
	start := time.Now()
	defer func() { err = r.fail(models.TableClients, "delete", start, err) }()
	_, err = r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1 AND user_id = $2`, id, userID)
	return err
}

func (r *Repo) InsertDemoEvent(ctx context.Context, d models.DemoEventRow) (err error) {
	start := time.Now()
	defer func() { err = r.fail(models.TableDemoEvents, "insert", start, err) }()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO demo_events (id, user_id, lead_id, date) VALUES ($1, $2, $3, $4)`,
		d.ID, d.UserID, d.LeadID, d.Date)
	return err
}
