// Package auth はアカウント登録、パスワード認証、外部IdP連携、トークン管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/travelbook/internal/model"
	"github.com/hitoshi/travelbook/internal/repository"
)

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	accountRepo repository.AccountRepository
	verifier    IdentityVerifier
	tokens      *TokenIssuer
}

// NewService はServiceを生成する。
func NewService(accountRepo repository.AccountRepository, verifier IdentityVerifier, tokens *TokenIssuer) *Service {
	return &Service{
		accountRepo: accountRepo,
		verifier:    verifier,
		tokens:      tokens,
	}
}

// Register は新規アカウントを作成し、セッショントークンを発行する。
// メールアドレスが既に登録されている場合はDuplicateAccountエラーを返す。
// パスワードはargon2idでハッシュ化して保存し、平文は保持しない。
func (s *Service) Register(ctx context.Context, fullName, email, password string) (*model.Account, string, error) {
	existing, err := s.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check existing account: %w", err)
	}
	if existing != nil {
		return nil, "", model.NewDuplicateAccountError()
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	account := &model.Account{
		ID:           uuid.New().String(),
		FullName:     fullName,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		// 事前チェックとINSERTの間の競合は一意インデックスが防ぐ
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, "", model.NewDuplicateAccountError()
		}
		return nil, "", fmt.Errorf("failed to create account: %w", err)
	}

	token, err := s.tokens.Issue(account.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("account created",
		slog.String("account_id", account.ID),
	)

	return account, token, nil
}

// Login はメールアドレスとパスワードでアカウントを認証し、セッショントークンを発行する。
// アカウントが存在しない場合とパスワード不一致は別のエラーとして返す。
func (s *Service) Login(ctx context.Context, email, password string) (*model.Account, string, error) {
	account, err := s.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to find account: %w", err)
	}
	if account == nil {
		return nil, "", model.NewAccountNotFoundError()
	}

	ok, err := VerifyPassword(password, account.PasswordHash)
	if err != nil {
		return nil, "", fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return nil, "", model.NewInvalidCredentialsError()
	}

	token, err := s.tokens.Issue(account.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("account logged in",
		slog.String("account_id", account.ID),
	)

	return account, token, nil
}

// ReconcileGoogle はGoogleのアクセストークンを検証し、
// 検証済みメールアドレスを既存アカウントに紐付けるか、新規アカウントを作成する。
// メールアドレスのみを紐付けキーとするため、パスワード登録済みのユーザーが
// 後からGoogleでログインしても同一アカウントに解決される。
func (s *Service) ReconcileGoogle(ctx context.Context, accessToken string) (*model.Account, string, error) {
	claim, err := s.verifier.VerifyAccessToken(ctx, accessToken)
	if err != nil {
		return nil, "", fmt.Errorf("failed to verify access token: %w", err)
	}
	if claim.Email == "" {
		return nil, "", model.NewInvalidIdentityError()
	}

	account, err := s.accountRepo.FindByEmail(ctx, claim.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to find account: %w", err)
	}

	if account != nil {
		// 既存アカウント: 未設定フィールドのみバックフィルする
		changed := false
		if account.GoogleID == "" && claim.ProviderUserID != "" {
			account.GoogleID = claim.ProviderUserID
			changed = true
		}
		if account.FullName == "" && claim.Name != "" {
			account.FullName = claim.Name
			changed = true
		}
		if account.ProfileImageURL == "" && claim.AvatarURL != "" {
			account.ProfileImageURL = claim.AvatarURL
			changed = true
		}
		if !account.EmailVerified {
			account.EmailVerified = true
			changed = true
		}
		if changed {
			account.UpdatedAt = time.Now()
			if err := s.accountRepo.Update(ctx, account); err != nil {
				return nil, "", fmt.Errorf("failed to update account: %w", err)
			}
		}

		slog.Info("existing account logged in via oauth",
			slog.String("account_id", account.ID),
			slog.String("provider", claim.Provider),
		)
	} else {
		// 新規アカウント: パスワード互換性のためランダムなプレースホルダーを
		// ハッシュ化して保存する。表示されることはなく、ログインにも使えない。
		placeholder, err := randomPasswordPlaceholder()
		if err != nil {
			return nil, "", fmt.Errorf("failed to generate password placeholder: %w", err)
		}
		hash, err := HashPassword(placeholder)
		if err != nil {
			return nil, "", fmt.Errorf("failed to hash password placeholder: %w", err)
		}

		now := time.Now()
		account = &model.Account{
			ID:              uuid.New().String(),
			FullName:        claim.Name,
			Email:           claim.Email,
			PasswordHash:    hash,
			GoogleID:        claim.ProviderUserID,
			ProfileImageURL: claim.AvatarURL,
			EmailVerified:   true,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		if err := s.accountRepo.Create(ctx, account); err != nil {
			if errors.Is(err, repository.ErrDuplicateEmail) {
				return nil, "", model.NewDuplicateAccountError()
			}
			return nil, "", fmt.Errorf("failed to create account: %w", err)
		}

		slog.Info("new account created via oauth",
			slog.String("account_id", account.ID),
			slog.String("provider", claim.Provider),
		)
	}

	token, err := s.tokens.Issue(account.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	return account, token, nil
}

// GetAccount は指定IDのアカウントを取得する。
func (s *Service) GetAccount(ctx context.Context, accountID string) (*model.Account, error) {
	account, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	if account == nil {
		return nil, model.NewAccountNotFoundError()
	}
	return account, nil
}

// randomPasswordPlaceholder は暗号的乱数によるパスワードプレースホルダーを生成する。
func randomPasswordPlaceholder() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
