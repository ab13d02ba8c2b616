package entity

type User struct {
	ID            int    `gorm:"primaryKey"`
	SubUUID       string `gorm:"uniqueIndex;not null"`
	Username      string `gorm:"not null"`
	Email         string `gorm:"uniqueIndex;not null"`
	Phone         string
	EmailVerified bool  `gorm:"not null"`
	IsAdmin       bool  `gorm:"not null"`
	CreatedAt     int64 `gorm:"not null"`
	UpdatedAt     int64 `gorm:"not null"`
}

// Credential backs the local identity provider. Cognito deployments never write it.
type Credential struct {
	ID             int    `gorm:"primaryKey"`
	Sub            string `gorm:"uniqueIndex;not null"`
	Email          string `gorm:"uniqueIndex;not null"`
	PasswordHash   string `gorm:"not null"`
	Confirmed      bool   `gorm:"not null"`
	ConfirmCode    string
	ResetCode      string
	ResetExpiresAt int64
	CreatedAt      int64 `gorm:"not null"`
	UpdatedAt      int64 `gorm:"not null"`
}
