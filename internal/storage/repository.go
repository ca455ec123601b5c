package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"splitinvoice/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository stores bills, groups, and templates in a local SQLite
// database. People and items travel as JSON blobs in the historical
// snapshot shape; queryable fields (date, restaurant, total) get columns.
type SQLiteRepository struct {
	db *sql.DB
}

var (
	_ BillStore     = (*SQLiteRepository)(nil)
	_ GroupStore    = (*SQLiteRepository)(nil)
	_ TemplateStore = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveBill inserts or replaces a bill snapshot.
func (r *SQLiteRepository) SaveBill(ctx context.Context, b core.Bill) error {
	if err := b.Validate(); err != nil {
		return err
	}
	people, err := json.Marshal(b.People)
	if err != nil {
		return fmt.Errorf("encode people: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO bills
			(id, bill_date, restaurant, location, notes, tax_basis_points, fee_cents, total_cents, people_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Date.UTC().Format(time.RFC3339), b.Restaurant, b.Location, b.Notes,
		b.TaxPercentage.BasisPoints, b.AdditionalFee.Cents, b.TotalAmount.Cents, string(people))
	if err != nil {
		return fmt.Errorf("save bill: %w", err)
	}

	slog.InfoContext(ctx, "Bill saved",
		"id", b.ID,
		"restaurant", b.Restaurant,
		"total_cents", b.TotalAmount.Cents,
		"people", len(b.People))
	return nil
}

func (r *SQLiteRepository) GetBill(ctx context.Context, id string) (core.Bill, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, bill_date, restaurant, location, notes, tax_basis_points, fee_cents, total_cents, people_json
		FROM bills WHERE id = ?`, id)
	b, err := scanBill(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Bill{}, fmt.Errorf("bill %s: %w", id, ErrNotFound)
	}
	return b, err
}

func (r *SQLiteRepository) ListBills(ctx context.Context) ([]core.Bill, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, bill_date, restaurant, location, notes, tax_basis_points, fee_cents, total_cents, people_json
		FROM bills ORDER BY bill_date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	defer rows.Close()

	var bills []core.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

func (r *SQLiteRepository) DeleteBill(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bills WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete bill: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("bill %s: %w", id, ErrNotFound)
	}
	return nil
}

// SaveGroup inserts or replaces a participant group.
func (r *SQLiteRepository) SaveGroup(ctx context.Context, g core.Group) error {
	if err := g.Validate(); err != nil {
		return err
	}
	members, err := json.Marshal(g.Members)
	if err != nil {
		return fmt.Errorf("encode members: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO groups (name, members_json) VALUES (?, ?)`,
		g.Name, string(members))
	if err != nil {
		return fmt.Errorf("save group: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetGroup(ctx context.Context, name string) (core.Group, error) {
	var g core.Group
	var members string
	err := r.db.QueryRowContext(ctx,
		`SELECT name, members_json FROM groups WHERE name = ?`, name).Scan(&g.Name, &members)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Group{}, fmt.Errorf("group %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return core.Group{}, fmt.Errorf("get group: %w", err)
	}
	if err := json.Unmarshal([]byte(members), &g.Members); err != nil {
		return core.Group{}, fmt.Errorf("decode members: %w", err)
	}
	return g, nil
}

func (r *SQLiteRepository) ListGroups(ctx context.Context) ([]core.Group, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name, members_json FROM groups ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	var groups []core.Group
	for rows.Next() {
		var g core.Group
		var members string
		if err := rows.Scan(&g.Name, &members); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(members), &g.Members); err != nil {
			return nil, fmt.Errorf("decode members: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *SQLiteRepository) DeleteGroup(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM groups WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("group %s: %w", name, ErrNotFound)
	}
	return nil
}

// SaveTemplate inserts or replaces a bill template.
func (r *SQLiteRepository) SaveTemplate(ctx context.Context, t core.Template) error {
	if err := t.Validate(); err != nil {
		return err
	}
	body, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode template: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO templates (name, body_json) VALUES (?, ?)`,
		t.Name, string(body))
	if err != nil {
		return fmt.Errorf("save template: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetTemplate(ctx context.Context, name string) (core.Template, error) {
	var body string
	err := r.db.QueryRowContext(ctx,
		`SELECT body_json FROM templates WHERE name = ?`, name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Template{}, fmt.Errorf("template %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return core.Template{}, fmt.Errorf("get template: %w", err)
	}
	var t core.Template
	if err := json.Unmarshal([]byte(body), &t); err != nil {
		return core.Template{}, fmt.Errorf("decode template: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) ListTemplates(ctx context.Context) ([]core.Template, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT body_json FROM templates ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []core.Template
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		var t core.Template
		if err := json.Unmarshal([]byte(body), &t); err != nil {
			return nil, fmt.Errorf("decode template: %w", err)
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (r *SQLiteRepository) DeleteTemplate(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM templates WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("template %s: %w", name, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBill(row rowScanner) (core.Bill, error) {
	var b core.Bill
	var date, people string
	var taxBP, feeCents, totalCents int64
	if err := row.Scan(&b.ID, &date, &b.Restaurant, &b.Location, &b.Notes,
		&taxBP, &feeCents, &totalCents, &people); err != nil {
		return core.Bill{}, err
	}
	parsed, err := time.Parse(time.RFC3339, date)
	if err != nil {
		return core.Bill{}, fmt.Errorf("parse bill date: %w", err)
	}
	b.Date = parsed
	b.TaxPercentage = core.Rate{BasisPoints: taxBP}
	b.AdditionalFee = core.Money{Cents: feeCents}
	b.TotalAmount = core.Money{Cents: totalCents}
	if err := json.Unmarshal([]byte(people), &b.People); err != nil {
		return core.Bill{}, fmt.Errorf("decode people: %w", err)
	}
	return b, nil
}
