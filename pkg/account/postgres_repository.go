package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	uniqueViolation     = "23505"
	usersEmailKey       = "users_email_key"
	userColumns         = `id, email, password_hash, role, tenant_id, first_name, last_name, phone, country_code, is_email_verified, is_active, created_at, updated_at`
	organizationColumns = `id, name, admin_full_name, status, type, created_at`
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository implements Repository on a pgx connection pool.
type PostgresRepository struct {
	pool *pgxpool.Pool
	*queries
}

// NewPostgresRepository creates a new Postgres-backed account repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool, queries: &queries{db: pool}}
}

func (r *PostgresRepository) WithTx(ctx context.Context, fn func(tx TxRepository) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&queries{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", mapWriteError(err))
	}
	return nil
}

// queries holds the SQL shared by the pool and transaction paths.
type queries struct {
	db dbtx
}

func (q *queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = $1`, NormalizeEmail(email))
	return scanUser(row)
}

func (q *queries) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	row := q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (q *queries) MarkEmailVerified(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE users SET is_email_verified = TRUE, updated_at = clock_timestamp()
		WHERE lower(email) = $1
		RETURNING `+userColumns, NormalizeEmail(email))
	return scanUser(row)
}

func (q *queries) SetUserActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := q.db.Exec(ctx, `UPDATE users SET is_active = $2, updated_at = clock_timestamp() WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (q *queries) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO users (id, email, password_hash, role, tenant_id, first_name, last_name, phone, country_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+userColumns,
		uuid.New(),
		NormalizeEmail(params.Email),
		params.PasswordHash,
		string(params.Role),
		params.TenantID,
		params.Profile.FirstName,
		params.Profile.LastName,
		params.Profile.Phone,
		params.Profile.CountryCode,
	)
	user, err := scanUser(row)
	if err != nil {
		return User{}, mapWriteError(err)
	}
	return user, nil
}

func (q *queries) GetOrganization(ctx context.Context, id uuid.UUID) (Organization, error) {
	row := q.db.QueryRow(ctx, `SELECT `+organizationColumns+` FROM organizations WHERE id = $1`, id)
	return scanOrganization(row)
}

func (q *queries) ListOrganizations(ctx context.Context) ([]Organization, error) {
	rows, err := q.db.Query(ctx, `SELECT `+organizationColumns+` FROM organizations ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer rows.Close()

	var orgs []Organization
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		orgs = append(orgs, org)
	}
	return orgs, rows.Err()
}

func (q *queries) FindDefaultOrganization(ctx context.Context) (Organization, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+organizationColumns+` FROM organizations
		WHERE status = 'ACTIVE'
		ORDER BY created_at, id
		LIMIT 1`)
	return scanOrganization(row)
}

func (q *queries) CreateOrganization(ctx context.Context, params CreateOrganizationParams) (Organization, error) {
	orgType := params.Type
	if orgType == "" {
		orgType = OrganizationClinic
	}
	row := q.db.QueryRow(ctx, `
		INSERT INTO organizations (id, name, admin_full_name, status, type)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+organizationColumns,
		uuid.New(),
		OrganizationName(params.AdminFullName),
		params.AdminFullName,
		string(OrganizationActive),
		string(orgType),
	)
	return scanOrganization(row)
}

func (q *queries) SetOrganizationStatus(ctx context.Context, id uuid.UUID, status OrganizationStatus) error {
	tag, err := q.db.Exec(ctx, `UPDATE organizations SET status = $2, updated_at = clock_timestamp() WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("failed to update organization: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrOrganizationNotFound
	}
	return nil
}

func (q *queries) CreateDoctorProfile(ctx context.Context, userID, organizationID uuid.UUID) (DoctorProfile, error) {
	var p DoctorProfile
	err := q.db.QueryRow(ctx, `
		INSERT INTO doctor_profiles (id, user_id, organization_id)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, organization_id, created_at`,
		uuid.New(), userID, organizationID,
	).Scan(&p.ID, &p.UserID, &p.OrganizationID, &p.CreatedAt)
	if err != nil {
		return DoctorProfile{}, fmt.Errorf("failed to create doctor profile: %w", err)
	}
	return p, nil
}

func (q *queries) GetDoctorProfileByUserID(ctx context.Context, userID uuid.UUID) (DoctorProfile, error) {
	var p DoctorProfile
	err := q.db.QueryRow(ctx, `
		SELECT id, user_id, organization_id, created_at FROM doctor_profiles WHERE user_id = $1`,
		userID,
	).Scan(&p.ID, &p.UserID, &p.OrganizationID, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return DoctorProfile{}, ErrDoctorProfileNotFound
	}
	if err != nil {
		return DoctorProfile{}, fmt.Errorf("failed to get doctor profile: %w", err)
	}
	return p, nil
}

func scanUser(row pgx.Row) (User, error) {
	var (
		u    User
		role string
	)
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&role,
		&u.TenantID,
		&u.Profile.FirstName,
		&u.Profile.LastName,
		&u.Profile.Phone,
		&u.Profile.CountryCode,
		&u.EmailVerified,
		&u.Active,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	u.Role = Role(role)
	return u, nil
}

func scanOrganization(row pgx.Row) (Organization, error) {
	var (
		o              Organization
		status, orgTyp string
	)
	err := row.Scan(&o.ID, &o.Name, &o.AdminFullName, &status, &orgTyp, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Organization{}, ErrOrganizationNotFound
	}
	if err != nil {
		return Organization{}, err
	}
	o.Status = OrganizationStatus(status)
	o.Type = OrganizationType(orgTyp)
	return o, nil
}

// mapWriteError turns the email unique violation into ErrEmailExists.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == usersEmailKey {
		return ErrEmailExists
	}
	return err
}
