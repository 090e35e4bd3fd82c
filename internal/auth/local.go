package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bapti-church/bapti-web/internal/account"
	"github.com/bapti-church/bapti-web/internal/db/models"
)

// LocalProvider handles local database authentication.
type LocalProvider struct {
	db *gorm.DB
}

var _ PasswordProvider = (*LocalProvider)(nil)

// NewLocalProvider creates a new local authentication provider.
func NewLocalProvider(db *gorm.DB) *LocalProvider {
	return &LocalProvider{
		db: db,
	}
}

// PasswordSignIn checks email and password against the credentials table.
func (p *LocalProvider) PasswordSignIn(ctx context.Context, email, password string) (account.Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return account.Identity{}, NewError(CodeInvalidEmail, "", nil)
	}

	var cred models.Credential

	err := p.db.WithContext(ctx).Where("email = ?", email).First(&cred).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return account.Identity{}, NewError(CodeUserNotFound, "", ErrUserNotFound)
	}

	if err != nil {
		return account.Identity{}, fmt.Errorf("failed to query credential: %w", err)
	}

	if !cred.Active {
		return account.Identity{}, NewError(CodeUserDisabled, ErrUserAccountDisabled.Error(), ErrUserAccountDisabled)
	}

	if !cred.VerifyPassword(password) {
		return account.Identity{}, NewError(CodeWrongPassword, "", ErrInvalidPassword)
	}

	return account.Identity{
		UID:           cred.UID,
		Email:         cred.Email,
		DisplayName:   cred.DisplayName,
		EmailVerified: cred.EmailVerified,
		Provider:      account.ProviderPassword,
	}, nil
}

// CreateCredential creates a new active local credential and returns it.
func (p *LocalProvider) CreateCredential(ctx context.Context, email, password, displayName string) (*models.Credential, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var existing models.Credential

	err := p.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, ErrCredentialExists
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing credential: %w", err)
	}

	hash, err := models.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	cred := models.Credential{
		UID:         uuid.NewString(),
		Email:       email,
		Password:    hash,
		DisplayName: displayName,
		Active:      true,
	}

	if err = p.db.WithContext(ctx).Create(&cred).Error; err != nil {
		return nil, fmt.Errorf("failed to create credential: %w", err)
	}

	return &cred, nil
}

// ChangePassword replaces the password of email after checking the old one.
func (p *LocalProvider) ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error {
	if _, err := p.PasswordSignIn(ctx, email, oldPassword); err != nil {
		return err
	}

	hash, err := models.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return p.db.WithContext(ctx).Model(&models.Credential{}). //nolint:wrapcheck
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Update("password", hash).Error
}

// SetActive enables or disables sign-in for email.
func (p *LocalProvider) SetActive(ctx context.Context, email string, active bool) error {
	res := p.db.WithContext(ctx).Model(&models.Credential{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Update("active", active)
	if res.Error != nil {
		return fmt.Errorf("failed to update credential: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// Count returns the number of stored credentials.
func (p *LocalProvider) Count(ctx context.Context) (int64, error) {
	var n int64

	err := p.db.WithContext(ctx).Model(&models.Credential{}).Count(&n).Error

	return n, err //nolint:wrapcheck
}
