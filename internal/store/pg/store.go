// internal/store/pg/store.go
package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"coursegate/internal/store"

	"github.com/google/uuid"
)

// Store is the PostgreSQL implementation of store.Store, backed by
// database/sql over the pgx stdlib driver. Every lookup is an
// independent point read; the service holds no transactions across
// authorization steps.
type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// Open connects to PostgreSQL with the given DSN
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	// Tuned pool defaults; adjust under load tests
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing handle; used by tests
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the underlying pool
func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const userColumns = `id, external_id, email, name, coalesce(role, 'student'), created_at, updated_at`

func scanUser(row *sql.Row) (store.AppUser, error) {
	var u store.AppUser
	var role string
	err := row.Scan(&u.ID, &u.ExternalID, &u.Email, &u.Name, &role, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return store.AppUser{}, store.ErrNotFound
	}
	if err != nil {
		return store.AppUser{}, err
	}
	u.Role = store.Role(role)
	return u, nil
}

// UserByExternalID returns the user linked to an identity provider subject
func (s *Store) UserByExternalID(ctx context.Context, externalID string) (store.AppUser, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where external_id = $1`, externalID)
	return scanUser(row)
}

// UserByID returns the user with the given internal ID
func (s *Store) UserByID(ctx context.Context, id string) (store.AppUser, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where id = $1`, id)
	return scanUser(row)
}

// UpdateUserRole changes a user's stored role
func (s *Store) UpdateUserRole(ctx context.Context, userID string, role store.Role) (store.AppUser, error) {
	row := s.db.QueryRowContext(ctx, `
		update users set role = $2, updated_at = now()
		where id = $1
		returning `+userColumns, userID, string(role))
	return scanUser(row)
}

// CourseWithEnrollment returns the course and whether userID has an
// active enrollment, in a single lookup
func (s *Store) CourseWithEnrollment(ctx context.Context, courseID, userID string) (store.Course, bool, error) {
	var c store.Course
	var enrolled bool
	err := s.db.QueryRowContext(ctx, `
		select c.id, c.owner_id, c.title, c.description, c.created_at, c.updated_at,
		       (e.user_id is not null)
		from courses c
		left join enrollments e on e.course_id = c.id and e.user_id = $2
		where c.id = $1
	`, courseID, userID).Scan(&c.ID, &c.OwnerID, &c.Title, &c.Description, &c.CreatedAt, &c.UpdatedAt, &enrolled)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Course{}, false, store.ErrNotFound
	}
	if err != nil {
		return store.Course{}, false, err
	}
	return c, enrolled, nil
}

// CreateCourse creates a course owned by ownerID
func (s *Store) CreateCourse(ctx context.Context, ownerID, title, description string) (store.Course, error) {
	id := uuid.NewString()
	var c store.Course
	err := s.db.QueryRowContext(ctx, `
		insert into courses (id, owner_id, title, description, created_at, updated_at)
		values ($1, $2, $3, $4, now(), now())
		returning id, owner_id, title, description, created_at, updated_at
	`, id, ownerID, title, description).Scan(&c.ID, &c.OwnerID, &c.Title, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return store.Course{}, err
	}
	return c, nil
}

// UpdateCourse updates a course's title and description
func (s *Store) UpdateCourse(ctx context.Context, courseID, title, description string) (store.Course, error) {
	var c store.Course
	err := s.db.QueryRowContext(ctx, `
		update courses set title = $2, description = $3, updated_at = now()
		where id = $1
		returning id, owner_id, title, description, created_at, updated_at
	`, courseID, title, description).Scan(&c.ID, &c.OwnerID, &c.Title, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Course{}, store.ErrNotFound
	}
	if err != nil {
		return store.Course{}, err
	}
	return c, nil
}

// DeleteCourse removes a course and its enrollments
func (s *Store) DeleteCourse(ctx context.Context, courseID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`delete from enrollments where course_id = $1`, courseID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `delete from courses where id = $1`, courseID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return tx.Commit()
}

// ListCoursesForUser returns the courses the user owns or is enrolled
// in; when all is true, every course is returned
func (s *Store) ListCoursesForUser(ctx context.Context, userID string, all bool) ([]store.Course, error) {
	query := `
		select c.id, c.owner_id, c.title, c.description, c.created_at, c.updated_at
		from courses c
		where c.owner_id = $1
		   or exists (select 1 from enrollments e where e.course_id = c.id and e.user_id = $1)
		order by c.created_at
	`
	args := []any{userID}
	if all {
		query = `
		select c.id, c.owner_id, c.title, c.description, c.created_at, c.updated_at
		from courses c
		order by c.created_at
	`
		args = nil
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []store.Course
	for rows.Next() {
		var c store.Course
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Title, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// Enroll creates an enrollment for (userID, courseID); enrolling twice
// is a no-op
func (s *Store) Enroll(ctx context.Context, userID, courseID string) (store.Enrollment, error) {
	// The course must exist; the insert below would otherwise report a
	// bare FK violation
	var exists bool
	if err := s.db.QueryRowContext(ctx,
		`select exists (select 1 from courses where id = $1)`, courseID).Scan(&exists); err != nil {
		return store.Enrollment{}, err
	}
	if !exists {
		return store.Enrollment{}, store.ErrNotFound
	}

	var e store.Enrollment
	err := s.db.QueryRowContext(ctx, `
		insert into enrollments (user_id, course_id, created_at)
		values ($1, $2, now())
		on conflict (user_id, course_id) do update set user_id = excluded.user_id
		returning user_id, course_id, created_at
	`, userID, courseID).Scan(&e.UserID, &e.CourseID, &e.CreatedAt)
	if err != nil {
		return store.Enrollment{}, err
	}
	return e, nil
}

// Unenroll removes the enrollment for (userID, courseID)
func (s *Store) Unenroll(ctx context.Context, userID, courseID string) error {
	res, err := s.db.ExecContext(ctx,
		`delete from enrollments where user_id = $1 and course_id = $2`, userID, courseID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}
