package employee

import (
	"math"
	"net/mail"
	"strings"
	"time"
)

// FieldError は項目単位の検証エラーです。Field は API 上の項目名です。
type FieldError struct {
	Field  string
	Reason string
}

// ValidationError は検証に失敗した項目をすべて保持します。
// errors.Is(err, ErrValidation) が真になります。
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Reason)
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

// Is は ErrValidation との比較を可能にします。
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) add(field, reason string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Reason: reason})
}

// Validate は社員レコードの必須項目・列挙値・値域を検証します。
// 事前に normalize 済みであることを前提とし、問題がなければ nil を返します。
func Validate(e *Employee) error {
	verr := &ValidationError{}

	required := []struct {
		field string
		value string
	}{
		{"firstName", e.FirstName},
		{"lastName", e.LastName},
		{"email", e.Email},
		{"phone", e.Phone},
		{"department", e.Department},
		{"position", e.Position},
		{"createdBy", e.CreatedBy},
	}
	for _, r := range required {
		if r.value == "" {
			verr.add(r.field, "is required")
		}
	}

	if e.Email != "" && !isValidEmail(e.Email) {
		verr.add("email", "must be a valid email address")
	}

	if !IsValidEmployeeType(e.EmployeeType) {
		verr.add("employeeType", "must be one of Full-time, Part-time, Contract, Intern")
	}

	if e.StartDate.IsZero() {
		verr.add("startDate", "is required")
	}

	if math.IsNaN(e.Salary) || math.IsInf(e.Salary, 0) {
		verr.add("salary", "must be a number")
	} else if e.Salary < 0 {
		verr.add("salary", "must not be negative")
	}

	if !IsValidStatus(e.Status) {
		verr.add("status", "must be one of Active, Inactive, On Leave")
	}

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

// IsValidEmployeeType は雇用形態が既知の値かどうかを返します。
func IsValidEmployeeType(t EmployeeType) bool {
	switch t {
	case TypeFullTime, TypePartTime, TypeContract, TypeIntern:
		return true
	default:
		return false
	}
}

// IsValidStatus は在籍状態が既知の値かどうかを返します。
func IsValidStatus(s Status) bool {
	switch s {
	case StatusActive, StatusInactive, StatusOnLeave:
		return true
	default:
		return false
	}
}

func isValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndex(email, "@")
	return at > 0 && strings.Contains(email[at+1:], ".")
}

// normalize は文字列項目の前後空白を除去し、メールアドレスを小文字化し、開始日を UTC の日付に揃えます。
func normalize(e *Employee) {
	e.FirstName = strings.TrimSpace(e.FirstName)
	e.LastName = strings.TrimSpace(e.LastName)
	e.Email = normalizeEmail(e.Email)
	e.Phone = strings.TrimSpace(e.Phone)
	e.EmployeeType = EmployeeType(strings.TrimSpace(string(e.EmployeeType)))
	e.Department = strings.TrimSpace(e.Department)
	e.Position = strings.TrimSpace(e.Position)
	e.ProfilePicture = strings.TrimSpace(e.ProfilePicture)
	e.CreatedBy = strings.TrimSpace(e.CreatedBy)
	e.StartDate = normalizeDate(e.StartDate)
	e.Address = Address{
		Street:  strings.TrimSpace(e.Address.Street),
		City:    strings.TrimSpace(e.Address.City),
		State:   strings.TrimSpace(e.Address.State),
		ZipCode: strings.TrimSpace(e.Address.ZipCode),
		Country: strings.TrimSpace(e.Address.Country),
	}
}

func normalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func normalizeDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
