// Package iam keeps the sign-in accounts of the platform.
package iam

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/diewo77/vae-dossiers/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrAccountNotFound    = errors.New("account_not_found")
	ErrEmailTaken         = errors.New("email_taken")
	ErrInvalidCredentials = errors.New("invalid_credentials")
)

// Directory is the identity provider used by registration and login.
type Directory interface {
	Get(ctx context.Context, id uint) (*models.Account, error)
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	Create(ctx context.Context, email, password string, role models.Role) (*models.Account, error)
	ResetPassword(ctx context.Context, id uint, password string) error
	Authenticate(ctx context.Context, email, password string) (*models.Account, error)
}

// GormDirectory stores accounts in the application database with bcrypt hashes.
type GormDirectory struct {
	DB   *gorm.DB
	Cost int
}

func NewGormDirectory(db *gorm.DB) *GormDirectory {
	return &GormDirectory{DB: db, Cost: bcrypt.DefaultCost}
}

func normalize(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

func (d *GormDirectory) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), d.Cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

func (d *GormDirectory) Get(ctx context.Context, id uint) (*models.Account, error) {
	var a models.Account
	if err := d.DB.WithContext(ctx).First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (d *GormDirectory) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	var a models.Account
	if err := d.DB.WithContext(ctx).Where("email = ?", normalize(email)).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (d *GormDirectory) Create(ctx context.Context, email, password string, role models.Role) (*models.Account, error) {
	email = normalize(email)
	if _, err := d.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrAccountNotFound) {
		return nil, err
	}
	a := models.Account{Email: email, Role: role}
	if password != "" {
		h, err := d.hash(password)
		if err != nil {
			return nil, err
		}
		a.PasswordHash = h
	}
	if err := d.DB.WithContext(ctx).Create(&a).Error; err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	return &a, nil
}

func (d *GormDirectory) ResetPassword(ctx context.Context, id uint, password string) error {
	h, err := d.hash(password)
	if err != nil {
		return err
	}
	res := d.DB.WithContext(ctx).Model(&models.Account{}).Where("id = ?", id).Update("password_hash", h)
	if res.Error != nil {
		return fmt.Errorf("reset password: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// Authenticate returns the account when password matches. Unknown emails and
// wrong passwords give the same error.
func (d *GormDirectory) Authenticate(ctx context.Context, email, password string) (*models.Account, error) {
	a, err := d.FindByEmail(ctx, email)
	if errors.Is(err, ErrAccountNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if a.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return a, nil
}
