package employee

import "time"

// DefaultProfilePicture はプロフィール画像未指定時に設定されるファイル名です。
const DefaultProfilePicture = "default-profile.jpg"

// EmployeeType は雇用形態を表します。
type EmployeeType string

const (
	TypeFullTime EmployeeType = "Full-time"
	TypePartTime EmployeeType = "Part-time"
	TypeContract EmployeeType = "Contract"
	TypeIntern   EmployeeType = "Intern"
)

// Status は社員の在籍状態を表します。
type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
	StatusOnLeave  Status = "On Leave"
)

// Address は社員の住所です。各項目は任意です。
type Address struct {
	Street  string
	City    string
	State   string
	ZipCode string
	Country string
}

// Employee は社員エンティティです。
type Employee struct {
	ID             string
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	EmployeeType   EmployeeType
	Department     string
	Position       string
	StartDate      time.Time
	Salary         float64
	Address        Address
	ProfilePicture string
	Status         Status
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Creator        *CreatorSnapshot
}

// CreatorSnapshot は社員を登録したユーザーのスナップショットです。
type CreatorSnapshot struct {
	ID    string
	Name  string
	Email string
}
