package repository

import (
	"errors"
	"nailbook/cmd/internal/domain/entity"

	"gorm.io/gorm"
)

type DefaultBlockedDateRepository struct {
	db *gorm.DB
}

func NewBlockedDateRepository(db *gorm.DB) *DefaultBlockedDateRepository {
	return &DefaultBlockedDateRepository{db: db}
}

func (b *DefaultBlockedDateRepository) FindAll() ([]*entity.BlockedDate, error) {
	var blocked []*entity.BlockedDate
	err := b.db.Order("day asc").Find(&blocked).Error
	return blocked, err
}

func (b *DefaultBlockedDateRepository) FindByID(id int) (*entity.BlockedDate, error) {
	var blocked entity.BlockedDate
	err := b.db.First(&blocked, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &blocked, err
}

func (b *DefaultBlockedDateRepository) FindByDay(day string) (*entity.BlockedDate, error) {
	var blocked entity.BlockedDate
	err := b.db.Where("day = ?", day).First(&blocked).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &blocked, err
}

// FindForRange returns one-off blocks whose day lies in [start, end] plus every recurring
// block anchored on or before end. Days compare correctly as YYYY-MM-DD strings.
func (b *DefaultBlockedDateRepository) FindForRange(start, end string) ([]*entity.BlockedDate, error) {
	var blocked []*entity.BlockedDate
	err := b.db.
		Where("(recurrence = '' AND day >= ? AND day <= ?) OR (recurrence <> '' AND day <= ?)", start, end, end).
		Order("day asc").
		Find(&blocked).Error
	return blocked, err
}

func (b *DefaultBlockedDateRepository) Save(blocked *entity.BlockedDate) error {
	return b.db.Save(blocked).Error
}

func (b *DefaultBlockedDateRepository) Delete(blocked *entity.BlockedDate) error {
	return b.db.Delete(blocked).Error
}
