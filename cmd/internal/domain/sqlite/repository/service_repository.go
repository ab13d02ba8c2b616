package repository

import (
	"errors"
	"nailbook/cmd/internal/domain/entity"

	"gorm.io/gorm"
)

type DefaultServiceRepository struct {
	db *gorm.DB
}

func NewServiceRepository(db *gorm.DB) *DefaultServiceRepository {
	return &DefaultServiceRepository{db: db}
}

func (s *DefaultServiceRepository) FindAll(includeInactive bool) ([]*entity.Service, error) {
	var services []*entity.Service
	q := s.db.Order("price desc, name asc")
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	err := q.Find(&services).Error
	return services, err
}

func (s *DefaultServiceRepository) FindByID(id string) (*entity.Service, error) {
	var svc entity.Service
	err := s.db.Where("id = ?", id).First(&svc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &svc, err
}

func (s *DefaultServiceRepository) Save(svc *entity.Service) error {
	return s.db.Save(svc).Error
}
