package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/travelbook/internal/model"
)

// uniqueViolation はPostgresの一意制約違反のSQLSTATE。
const uniqueViolation = "23505"

// PostgresAccountRepo はPostgreSQLを使用したアカウントリポジトリ。
type PostgresAccountRepo struct {
	db *sql.DB
}

// NewPostgresAccountRepo はPostgresAccountRepoを生成する。
func NewPostgresAccountRepo(db *sql.DB) *PostgresAccountRepo {
	return &PostgresAccountRepo{db: db}
}

const accountColumns = `id, full_name, email, password_hash, google_id, profile_image_url, email_verified, created_at, updated_at`

// scanAccount は1行をmodel.Accountに読み取る。
func scanAccount(row *sql.Row) (*model.Account, error) {
	account := &model.Account{}
	err := row.Scan(
		&account.ID, &account.FullName, &account.Email, &account.PasswordHash,
		&account.GoogleID, &account.ProfileImageURL, &account.EmailVerified,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}

// FindByID は指定IDのアカウントを取得する。見つからない場合はnilを返す。
func (r *PostgresAccountRepo) FindByID(ctx context.Context, id string) (*model.Account, error) {
	account, err := scanAccount(r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`,
		id,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to find account by ID: %w", err)
	}
	return account, nil
}

// FindByEmail はメールアドレスでアカウントを検索する。見つからない場合はnilを返す。
func (r *PostgresAccountRepo) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	account, err := scanAccount(r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = $1`,
		email,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to find account by email: %w", err)
	}
	return account, nil
}

// Create はアカウントを作成する。
// メールアドレスの一意制約違反はErrDuplicateEmailに変換する。
func (r *PostgresAccountRepo) Create(ctx context.Context, account *model.Account) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (id, full_name, email, password_hash, google_id, profile_image_url, email_verified, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		account.ID, account.FullName, account.Email, account.PasswordHash,
		account.GoogleID, account.ProfileImageURL, account.EmailVerified,
		account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

// Update はアカウントの可変フィールドを更新する。
func (r *PostgresAccountRepo) Update(ctx context.Context, account *model.Account) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE accounts
		 SET full_name = $2, google_id = $3, profile_image_url = $4, email_verified = $5, updated_at = $6
		 WHERE id = $1`,
		account.ID, account.FullName, account.GoogleID, account.ProfileImageURL,
		account.EmailVerified, account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	return nil
}

// compile-time interface check
var _ AccountRepository = (*PostgresAccountRepo)(nil)
