package user

import (
	"time"

	"github.com/ogurasousui/employee-management/internal/core/auth"
)

// User はシステムにログインする利用者です。
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         auth.Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
