package repository

import (
	"errors"
	"nailbook/cmd/internal/domain/entity"

	"gorm.io/gorm"
)

type DefaultCredentialRepository struct {
	db *gorm.DB
}

func NewCredentialRepository(db *gorm.DB) *DefaultCredentialRepository {
	return &DefaultCredentialRepository{db: db}
}

func (c *DefaultCredentialRepository) FindByEmail(email string) (*entity.Credential, error) {
	var cred entity.Credential
	err := c.db.Where("lower(email) = lower(?)", email).First(&cred).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &cred, err
}

func (c *DefaultCredentialRepository) Save(cred *entity.Credential) error {
	return c.db.Save(cred).Error
}

func (c *DefaultCredentialRepository) DeleteByEmail(email string) error {
	return c.db.Where("lower(email) = lower(?)", email).Delete(&entity.Credential{}).Error
}
