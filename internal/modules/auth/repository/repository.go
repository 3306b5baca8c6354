package repository

import (
	"context"

	"github.com/Sujal06-B/hackathonproject-CampusSync/internal/entity"
	"gorm.io/gorm"
)

type CredentialRepository interface {
	Create(ctx context.Context, cred *entity.Credential) error
	FindByID(ctx context.Context, id string) (*entity.Credential, error)
	FindByEmail(ctx context.Context, email string) (*entity.Credential, error)
	FindByGoogleID(ctx context.Context, googleID string) (*entity.Credential, error)
	Update(ctx context.Context, cred *entity.Credential) error
}

type credentialRepository struct {
	db *gorm.DB
}

func NewCredentialRepository(db *gorm.DB) CredentialRepository {
	return &credentialRepository{db: db}
}

func (r *credentialRepository) Create(ctx context.Context, cred *entity.Credential) error {
	return r.db.WithContext(ctx).Create(cred).Error
}

func (r *credentialRepository) FindByID(ctx context.Context, id string) (*entity.Credential, error) {
	var cred entity.Credential
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&cred).Error; err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *credentialRepository) FindByEmail(ctx context.Context, email string) (*entity.Credential, error) {
	var cred entity.Credential
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&cred).Error; err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *credentialRepository) FindByGoogleID(ctx context.Context, googleID string) (*entity.Credential, error) {
	var cred entity.Credential
	if err := r.db.WithContext(ctx).Where("google_id = ?", googleID).First(&cred).Error; err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *credentialRepository) Update(ctx context.Context, cred *entity.Credential) error {
	return r.db.WithContext(ctx).Save(cred).Error
}
