package model

type User struct {
	ID           string `gorm:"primaryKey" json:"id"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `json:"-"`
	CreatedAt    int64  `gorm:"not null" json:"created_at"`
}
