package repository

import (
	"errors"
	"nailbook/cmd/internal/domain/entity"

	"gorm.io/gorm"
)

type DefaultClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *DefaultClientRepository {
	return &DefaultClientRepository{db: db}
}

func (c *DefaultClientRepository) FindAll() ([]*entity.Client, error) {
	var clients []*entity.Client
	err := c.db.Order("name asc").Find(&clients).Error
	return clients, err
}

func (c *DefaultClientRepository) FindByID(id int) (*entity.Client, error) {
	var client entity.Client
	err := c.db.First(&client, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &client, err
}

func (c *DefaultClientRepository) FindByEmail(email string) (*entity.Client, error) {
	var client entity.Client
	err := c.db.Where("lower(email) = lower(?)", email).First(&client).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &client, err
}

func (c *DefaultClientRepository) Save(client *entity.Client) error {
	return c.db.Save(client).Error
}

func (c *DefaultClientRepository) Delete(client *entity.Client) error {
	return c.db.Delete(client).Error
}
