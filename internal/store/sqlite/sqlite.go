package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	sqlite3 "modernc.org/sqlite"

	"github.com/innometrics/innometrics-backend/internal/model"
	"github.com/innometrics/innometrics-backend/internal/store"
)

// Open opens (or creates) a SQLite database at the given path and enables
// WAL journal mode. Pass ":memory:" for an in-memory database (tests).
func Open(path string) (*sql.DB, error) {
	dsn := path
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", path)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		// each pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// New opens the database at path, bootstraps the schema, and returns a store.
func New(path string) (store.Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	return NewWithDB(db)
}

// NewWithDB bootstraps the schema on an existing connection and returns a store.
func NewWithDB(db *sql.DB) (store.Store, error) {
	for _, stmt := range store.DDLStatements() {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("bootstrap schema: %w", err)
		}
	}
	return &sqliteStore{db: db}, nil
}

type sqliteStore struct{ db *sql.DB }

func (s *sqliteStore) Users() store.Users           { return &users{db: s.db} }
func (s *sqliteStore) Activities() store.Activities { return &activities{db: s.db} }
func (s *sqliteStore) Projects() store.Projects     { return &projects{db: s.db} }

// HealthPing implements store.HealthPinger.
func (s *sqliteStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// constraint codes: 1555 = SQLITE_CONSTRAINT_PRIMARYKEY, 2067 = SQLITE_CONSTRAINT_UNIQUE
func uniqueViolation(err error) bool {
	var se *sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code() == 1555 || se.Code() == 2067
}

// --- Users ---
type users struct{ db *sql.DB }

func (u *users) Create(ctx context.Context, m *model.User) (*model.User, error) {
	id := m.UserID
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()
	_, err := u.db.ExecContext(ctx, `
        INSERT INTO users (user_id, email, name, surname, password_hash, creation_time)
        VALUES (?,?,?,?,?,?)
    `, id, m.Email, m.Name, m.Surname, m.PasswordHash, now)
	if err != nil {
		if uniqueViolation(err) {
			return nil, fmt.Errorf("%w: email already registered", model.ErrConflict)
		}
		return nil, err
	}
	out := *m
	out.UserID = id
	out.CreationTime = now
	return &out, nil
}

func (u *users) GetByID(ctx context.Context, userID string) (*model.User, error) {
	row := u.db.QueryRowContext(ctx, `
        SELECT user_id, email, name, surname, password_hash, creation_time
        FROM users WHERE user_id = ?
    `, userID)
	return scanUser(row)
}

func (u *users) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := u.db.QueryRowContext(ctx, `
        SELECT user_id, email, name, surname, password_hash, creation_time
        FROM users WHERE email = ?
    `, email)
	return scanUser(row)
}

func (u *users) Delete(ctx context.Context, userID string) error {
	res, err := u.db.ExecContext(ctx, `DELETE FROM users WHERE user_id = ?`, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (*model.User, error) {
	var out model.User
	if err := row.Scan(&out.UserID, &out.Email, &out.Name, &out.Surname, &out.PasswordHash, &out.CreationTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

// --- Activities ---
type activities struct{ db *sql.DB }

func (a *activities) Insert(ctx context.Context, m *model.Activity) (*model.Activity, error) {
	id := uuid.New().String()
	now := time.Now().UTC()
	extraJSON, _ := json.Marshal(m.Extra)
	_, err := a.db.ExecContext(ctx, `
        INSERT INTO activities (activity_id, user_id, start_time, end_time, executable_name,
                                browser_url, browser_title, ip_address, mac_address,
                                idle_activity, activity_type, extra, creation_time)
        VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)
    `, id, m.UserID, m.StartTime, m.EndTime, m.ExecutableName,
		m.BrowserURL, m.BrowserTitle, m.IPAddress, m.MACAddress,
		m.IdleActivity, m.ActivityType, nullIfEmpty(extraJSON), now)
	if err != nil {
		return nil, err
	}
	out := *m
	out.ActivityID = id
	out.CreationTime = now
	return &out, nil
}

func (a *activities) Delete(ctx context.Context, activityID string) error {
	res, err := a.db.ExecContext(ctx, `DELETE FROM activities WHERE activity_id = ?`, activityID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (a *activities) Find(ctx context.Context, req model.FindActivitiesRequest) ([]*model.Activity, error) {
	if len(req.OwnerIDs) == 0 {
		return nil, nil
	}
	var args []interface{}
	conds := []string{fmt.Sprintf("user_id IN (%s)", placeholders(len(req.OwnerIDs)))}
	for _, id := range req.OwnerIDs {
		args = append(args, id)
	}

	for key, val := range req.Filters {
		col, err := store.FilterColumn(key)
		if err != nil {
			return nil, err
		}
		conds = append(conds, col+" = ?")
		args = append(args, val)
	}
	if req.StartTime != nil {
		conds = append(conds, "start_time >= ?")
		args = append(args, *req.StartTime)
	}
	if req.EndTime != nil {
		conds = append(conds, "end_time <= ?")
		args = append(args, *req.EndTime)
	}

	query := `SELECT activity_id, user_id, start_time, end_time, executable_name,
                     browser_url, browser_title, ip_address, mac_address,
                     idle_activity, activity_type, extra, creation_time
              FROM activities WHERE ` + strings.Join(conds, " AND ") +
		" ORDER BY start_time DESC"
	if req.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", req.Limit)
	}
	if req.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", req.Offset)
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Activity
	for rows.Next() {
		var m model.Activity
		var extra sql.NullString
		if err := rows.Scan(&m.ActivityID, &m.UserID, &m.StartTime, &m.EndTime, &m.ExecutableName,
			&m.BrowserURL, &m.BrowserTitle, &m.IPAddress, &m.MACAddress,
			&m.IdleActivity, &m.ActivityType, &extra, &m.CreationTime); err != nil {
			return nil, err
		}
		if extra.Valid {
			_ = json.Unmarshal([]byte(extra.String), &m.Extra)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// --- Projects ---
type projects struct{ db *sql.DB }

func (p *projects) Create(ctx context.Context, m *model.Project) (*model.Project, error) {
	id := m.ProjectID
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()
	_, err := p.db.ExecContext(ctx, `
        INSERT INTO projects (project_id, title, manager_id, creation_time)
        VALUES (?,?,?,?)
    `, id, m.Title, m.ManagerID, now)
	if err != nil {
		return nil, err
	}
	return &model.Project{ProjectID: id, Title: m.Title, ManagerID: m.ManagerID, CreationTime: now}, nil
}

func (p *projects) GetByID(ctx context.Context, projectID string) (*model.Project, error) {
	var out model.Project
	row := p.db.QueryRowContext(ctx, `
        SELECT project_id, title, manager_id, creation_time FROM projects WHERE project_id = ?
    `, projectID)
	if err := row.Scan(&out.ProjectID, &out.Title, &out.ManagerID, &out.CreationTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (p *projects) List(ctx context.Context, userID string) ([]*model.Project, error) {
	rows, err := p.db.QueryContext(ctx, `
        SELECT pr.project_id, pr.title, pr.manager_id, pr.creation_time
        FROM projects pr
        WHERE pr.manager_id = ?
           OR EXISTS (SELECT 1 FROM project_members pm
                      WHERE pm.project_id = pr.project_id AND pm.user_id = ?)
        ORDER BY pr.creation_time DESC
    `, userID, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Project
	for rows.Next() {
		var m model.Project
		if err := rows.Scan(&m.ProjectID, &m.Title, &m.ManagerID, &m.CreationTime); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (p *projects) AddMember(ctx context.Context, m *model.ProjectMember) error {
	_, err := p.db.ExecContext(ctx, `
        INSERT INTO project_members (project_id, user_id, invited_by, creation_time)
        VALUES (?,?,?,?)
    `, m.ProjectID, m.UserID, m.InvitedBy, time.Now().UTC())
	if err != nil {
		if uniqueViolation(err) {
			return fmt.Errorf("%w: already a member", model.ErrConflict)
		}
		return err
	}
	return nil
}

func (p *projects) MemberIDs(ctx context.Context, projectID string) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT user_id FROM project_members WHERE project_id = ?`, projectID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// helpers

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func nullIfEmpty(b []byte) interface{} {
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	return b
}
