package repository

import (
	"errors"
	"nailbook/cmd/internal/domain/entity"

	"gorm.io/gorm"
)

type DefaultAppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *DefaultAppointmentRepository {
	return &DefaultAppointmentRepository{db: db}
}

func (a *DefaultAppointmentRepository) FindByID(id int) (*entity.Appointment, error) {
	var appt entity.Appointment
	err := a.db.Preload("Attendees").First(&appt, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &appt, err
}

func (a *DefaultAppointmentRepository) FindAll() ([]*entity.Appointment, error) {
	var appts []*entity.Appointment
	err := a.db.Preload("Attendees").
		Where("is_deleted = ?", false).
		Order("starts_at asc").
		Find(&appts).Error
	return appts, err
}

func (a *DefaultAppointmentRepository) FindByUserID(id int) ([]*entity.Appointment, error) {
	var appts []*entity.Appointment
	err := a.db.Preload("Attendees").
		Where("user_id = ?", id).
		Where("is_deleted = ?", false).
		Order("starts_at asc").
		Find(&appts).Error
	return appts, err
}

// FindActiveBetween returns confirmed appointments starting in [from, to).
func (a *DefaultAppointmentRepository) FindActiveBetween(from, to int64) ([]*entity.Appointment, error) {
	var appts []*entity.Appointment
	err := a.db.Preload("Attendees").
		Where("is_deleted = ?", false).
		Where("status = ?", entity.AppointmentConfirmed).
		Where("starts_at >= ?", from).
		Where("starts_at < ?", to).
		Order("starts_at asc").
		Find(&appts).Error
	return appts, err
}

// SaveChecked runs check and the save in one transaction, so a concurrent booking cannot
// slip in between the availability check and the insert.
func (a *DefaultAppointmentRepository) SaveChecked(appointment *entity.Appointment, check func(existing []*entity.Appointment) error, from, to int64) error {
	return a.db.Transaction(func(tx *gorm.DB) error {
		var existing []*entity.Appointment
		err := tx.Where("is_deleted = ?", false).
			Where("status = ?", entity.AppointmentConfirmed).
			Where("starts_at >= ?", from).
			Where("starts_at < ?", to).
			Find(&existing).Error
		if err != nil {
			return err
		}
		if err := check(existing); err != nil {
			return err
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(appointment).Error
	})
}

// Delete soft-deletes the appointment and marks it cancelled.
func (a *DefaultAppointmentRepository) Delete(appointment *entity.Appointment, now int64) error {
	return a.db.Model(appointment).Updates(map[string]any{
		"is_deleted": true,
		"status":     entity.AppointmentCancelled,
		"updated_at": now,
	}).Error
}
