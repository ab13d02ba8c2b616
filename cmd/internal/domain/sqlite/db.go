package sqlite

import (
	stdlog "log"
	"nailbook/cmd/internal/domain/entity"
	"os"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newLogger reports slow queries and errors. Lookups that find nothing are not logged.
func newLogger(out logger.Writer) logger.Interface {
	return logger.New(out, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  true,
	})
}

// Init opens the SQLite database at path and migrates every entity.
func Init(path string) (*gorm.DB, error) {
	return open(path, newLogger(stdlog.New(os.Stdout, "\r\n", stdlog.LstdFlags)))
}

func open(path string, l logger.Interface) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: l})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&entity.User{},
		&entity.Credential{},
		&entity.Appointment{},
		&entity.Attendee{},
		&entity.BlockedDate{},
		&entity.Service{},
		&entity.Client{},
	)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// DefaultServices is the catalogue a fresh database starts with.
func DefaultServices(now int64) []*entity.Service {
	svc := func(id, name, desc string, minutes int, price float64) *entity.Service {
		return &entity.Service{
			ID: id, Name: name, Description: desc,
			DurationMinutes: minutes, Price: price,
			IsActive: true, CreatedAt: now, UpdatedAt: now,
		}
	}
	return []*entity.Service{
		svc("full-set", "Full Set", "Complete nail enhancement with tips and gel polish.", 90, 45),
		svc("refill", "Refill", "Fill in grown nails and fresh gel polish.", 60, 35),
		svc("manicure", "Classic Manicure", "Nail shaping, cuticle care and regular polish.", 45, 25),
		svc("pedicure", "Luxury Pedicure", "Foot soak, exfoliation, nail shaping and gel polish.", 75, 40),
		svc("nail-art", "Nail Art Design", "Hand-painted details, glitter and decorative elements.", 30, 15),
		svc("gel-polish", "Gel Polish Only", "Gel polish application on natural nails.", 30, 20),
	}
}

// Seed inserts the default catalogue when the services table is empty.
func Seed(db *gorm.DB, now int64) error {
	var count int64
	if err := db.Model(&entity.Service{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return db.Create(DefaultServices(now)).Error
}
