package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/innometrics/innometrics-backend/internal/model"
	"github.com/innometrics/innometrics-backend/internal/store"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB constructs a native Postgres store backed directly by database/sql.
// Schema setup is handled by deployment migrations.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Users() store.Users           { return &users{db: s.db} }
func (s *pgStore) Activities() store.Activities { return &activities{db: s.db} }
func (s *pgStore) Projects() store.Projects     { return &projects{db: s.db} }

// HealthPing implements store.HealthPinger.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// uniqueViolation reports whether err is a Postgres unique-constraint error.
func uniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// --- Users ---
type users struct{ db *sql.DB }

func (u *users) Create(ctx context.Context, m *model.User) (*model.User, error) {
	id := m.UserID
	if id == "" {
		id = uuid.New().String()
	}
	var created time.Time
	row := u.db.QueryRowContext(ctx, `
        INSERT INTO users (user_id, email, name, surname, password_hash, creation_time)
        VALUES ($1,$2,$3,$4,$5,now())
        RETURNING creation_time
    `, id, m.Email, m.Name, m.Surname, m.PasswordHash)
	if err := row.Scan(&created); err != nil {
		if uniqueViolation(err) {
			return nil, fmt.Errorf("%w: email already registered", model.ErrConflict)
		}
		return nil, err
	}
	out := *m
	out.UserID = id
	out.CreationTime = created
	return &out, nil
}

func (u *users) GetByID(ctx context.Context, userID string) (*model.User, error) {
	row := u.db.QueryRowContext(ctx, `
        SELECT user_id, email, name, surname, password_hash, creation_time
        FROM users WHERE user_id=$1
    `, userID)
	return scanUser(row)
}

func (u *users) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := u.db.QueryRowContext(ctx, `
        SELECT user_id, email, name, surname, password_hash, creation_time
        FROM users WHERE email=$1
    `, email)
	return scanUser(row)
}

func (u *users) Delete(ctx context.Context, userID string) error {
	res, err := u.db.ExecContext(ctx, `DELETE FROM users WHERE user_id=$1`, userID)
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
	extraJSON, _ := json.Marshal(m.Extra)
	var created time.Time
	row := a.db.QueryRowContext(ctx, `
        INSERT INTO activities (activity_id, user_id, start_time, end_time, executable_name,
                                browser_url, browser_title, ip_address, mac_address,
                                idle_activity, activity_type, extra, creation_time)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,now())
        RETURNING creation_time
    `, id, m.UserID, m.StartTime, m.EndTime, m.ExecutableName,
		m.BrowserURL, m.BrowserTitle, m.IPAddress, m.MACAddress,
		m.IdleActivity, m.ActivityType, nullIfEmpty(extraJSON))
	if err := row.Scan(&created); err != nil {
		return nil, err
	}
	out := *m
	out.ActivityID = id
	out.CreationTime = created
	return &out, nil
}

func (a *activities) Delete(ctx context.Context, activityID string) error {
	res, err := a.db.ExecContext(ctx, `DELETE FROM activities WHERE activity_id=$1`, activityID)
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
	ph := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	owners := make([]string, len(req.OwnerIDs))
	for i, id := range req.OwnerIDs {
		owners[i] = ph(id)
	}
	conds := []string{fmt.Sprintf("user_id IN (%s)", strings.Join(owners, ","))}

	for key, val := range req.Filters {
		col, err := store.FilterColumn(key)
		if err != nil {
			return nil, err
		}
		conds = append(conds, fmt.Sprintf("%s = %s", col, ph(val)))
	}
	if req.StartTime != nil {
		conds = append(conds, "start_time >= "+ph(*req.StartTime))
	}
	if req.EndTime != nil {
		conds = append(conds, "end_time <= "+ph(*req.EndTime))
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
	var created time.Time
	row := p.db.QueryRowContext(ctx, `
        INSERT INTO projects (project_id, title, manager_id, creation_time)
        VALUES ($1,$2,$3,now())
        RETURNING creation_time
    `, id, m.Title, m.ManagerID)
	if err := row.Scan(&created); err != nil {
		return nil, err
	}
	return &model.Project{ProjectID: id, Title: m.Title, ManagerID: m.ManagerID, CreationTime: created}, nil
}

func (p *projects) GetByID(ctx context.Context, projectID string) (*model.Project, error) {
	var out model.Project
	row := p.db.QueryRowContext(ctx, `
        SELECT project_id, title, manager_id, creation_time FROM projects WHERE project_id=$1
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
        WHERE pr.manager_id = $1
           OR EXISTS (SELECT 1 FROM project_members pm
                      WHERE pm.project_id = pr.project_id AND pm.user_id = $1)
        ORDER BY pr.creation_time DESC
    `, userID)
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
        VALUES ($1,$2,$3,now())
    `, m.ProjectID, m.UserID, m.InvitedBy)
	if err != nil {
		if uniqueViolation(err) {
			return fmt.Errorf("%w: already a member", model.ErrConflict)
		}
		return err
	}
	return nil
}

func (p *projects) MemberIDs(ctx context.Context, projectID string) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT user_id FROM project_members WHERE project_id=$1`, projectID)
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

func nullIfEmpty(b []byte) interface{} {
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	return b
}
