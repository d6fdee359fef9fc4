package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"super-qa/internal/domain"
)

// TempUserRepository define el contrato de persistencia para signups pendientes.
type TempUserRepository interface {
	Create(ctx context.Context, tempUser domain.TempUser) error
	GetByID(ctx context.Context, id string) (domain.TempUser, error)
	DeleteByEmail(ctx context.Context, email string) error
}

// PgTempUserRepository implementa TempUserRepository usando pgxpool.
type PgTempUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgTempUserRepository(pool *pgxpool.Pool) *PgTempUserRepository {
	return &PgTempUserRepository{pool: pool}
}

func (r *PgTempUserRepository) Create(ctx context.Context, tempUser domain.TempUser) error {
	const query = `
		INSERT INTO temp_users (id, name, email, password, otp, otp_expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		tempUser.ID,
		tempUser.Name,
		tempUser.Email,
		tempUser.PasswordHash,
		tempUser.OTPHash,
		tempUser.OTPExpiresAt,
		tempUser.CreatedAt,
	)
	return err
}

func (r *PgTempUserRepository) GetByID(ctx context.Context, id string) (domain.TempUser, error) {
	const query = `
		SELECT id, name, email, password, otp, otp_expires_at, created_at
		FROM temp_users
		WHERE id = $1
	`
	var t domain.TempUser
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&t.ID,
		&t.Name,
		&t.Email,
		&t.PasswordHash,
		&t.OTPHash,
		&t.OTPExpiresAt,
		&t.CreatedAt,
	)
	if err != nil {
		return domain.TempUser{}, err
	}
	return t, nil
}

// DeleteByEmail borra el signup pendiente para un email, si existe.
// No es error que no exista ninguno.
func (r *PgTempUserRepository) DeleteByEmail(ctx context.Context, email string) error {
	const query = `
		DELETE FROM temp_users WHERE email = $1
	`
	_, err := r.pool.Exec(ctx, query, email)
	return err
}
