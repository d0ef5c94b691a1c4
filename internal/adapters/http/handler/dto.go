package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ogurasousui/employee-management/internal/core/employee"
	"github.com/ogurasousui/employee-management/internal/core/user"
)

const dateLayout = "2006-01-02"

var errBadRequest = errors.New("bad request")

// flexNumber は JSON の数値と数値文字列のどちらも受け付けます。
type flexNumber string

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = flexNumber(s)
		return nil
	}
	*n = flexNumber(data)
	return nil
}

type addressPayload struct {
	Street  *string `json:"street"`
	City    *string `json:"city"`
	State   *string `json:"state"`
	ZipCode *string `json:"zipCode"`
	Country *string `json:"country"`
}

type employeePayload struct {
	FirstName      *string         `json:"firstName"`
	LastName       *string         `json:"lastName"`
	Email          *string         `json:"email"`
	Phone          *string         `json:"phone"`
	EmployeeType   *string         `json:"employeeType"`
	Department     *string         `json:"department"`
	Position       *string         `json:"position"`
	StartDate      *string         `json:"startDate"`
	Salary         *flexNumber     `json:"salary"`
	Address        *addressPayload `json:"address"`
	ProfilePicture *string         `json:"profilePicture"`
	Status         *string         `json:"status"`
}

// parsedScalars は文字列で受け取った日付と給与を変換した結果です。
type parsedScalars struct {
	startDate *time.Time
	salary    *float64
}

func (p employeePayload) parseScalars() (parsedScalars, error) {
	var (
		out  parsedScalars
		verr employee.ValidationError
	)

	if p.StartDate != nil {
		raw := strings.TrimSpace(*p.StartDate)
		if raw == "" {
			zero := time.Time{}
			out.startDate = &zero
		} else if parsed, err := parseDate(raw); err != nil {
			verr.Fields = append(verr.Fields, employee.FieldError{Field: "startDate", Reason: "must be a date (YYYY-MM-DD)"})
		} else {
			out.startDate = &parsed
		}
	}

	if p.Salary != nil {
		raw := strings.TrimSpace(string(*p.Salary))
		if raw != "" {
			value, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				verr.Fields = append(verr.Fields, employee.FieldError{Field: "salary", Reason: "must be a number"})
			} else {
				out.salary = &value
			}
		}
	}

	if len(verr.Fields) > 0 {
		return parsedScalars{}, &verr
	}
	return out, nil
}

func (p employeePayload) toCreateInput(createdBy string) (employee.CreateEmployeeInput, error) {
	scalars, err := p.parseScalars()
	if err != nil {
		return employee.CreateEmployeeInput{}, err
	}

	in := employee.CreateEmployeeInput{
		FirstName:      deref(p.FirstName),
		LastName:       deref(p.LastName),
		Email:          deref(p.Email),
		Phone:          deref(p.Phone),
		EmployeeType:   employee.EmployeeType(deref(p.EmployeeType)),
		Department:     deref(p.Department),
		Position:       deref(p.Position),
		ProfilePicture: deref(p.ProfilePicture),
		CreatedBy:      createdBy,
	}
	if scalars.startDate != nil {
		in.StartDate = *scalars.startDate
	}
	if scalars.salary != nil {
		in.Salary = *scalars.salary
	}
	if p.Address != nil {
		in.Address = employee.Address{
			Street:  deref(p.Address.Street),
			City:    deref(p.Address.City),
			State:   deref(p.Address.State),
			ZipCode: deref(p.Address.ZipCode),
			Country: deref(p.Address.Country),
		}
	}
	if p.Status != nil && strings.TrimSpace(*p.Status) != "" {
		status := employee.Status(strings.TrimSpace(*p.Status))
		in.Status = &status
	}
	return in, nil
}

func (p employeePayload) toUpdateInput(id string) (employee.UpdateEmployeeInput, error) {
	scalars, err := p.parseScalars()
	if err != nil {
		return employee.UpdateEmployeeInput{}, err
	}

	in := employee.UpdateEmployeeInput{
		ID:             id,
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		Email:          p.Email,
		Phone:          p.Phone,
		Department:     p.Department,
		Position:       p.Position,
		StartDate:      scalars.startDate,
		Salary:         scalars.salary,
		ProfilePicture: p.ProfilePicture,
	}
	if p.EmployeeType != nil {
		t := employee.EmployeeType(*p.EmployeeType)
		in.EmployeeType = &t
	}
	if p.Status != nil {
		s := employee.Status(*p.Status)
		in.Status = &s
	}
	if p.Address != nil {
		in.Address = &employee.AddressInput{
			Street:  p.Address.Street,
			City:    p.Address.City,
			State:   p.Address.State,
			ZipCode: p.Address.ZipCode,
			Country: p.Address.Country,
		}
	}
	return in, nil
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", raw, err)
	}
	return t, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

type addressResponse struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

type creatorResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type employeeResponse struct {
	ID             string          `json:"id"`
	FirstName      string          `json:"firstName"`
	LastName       string          `json:"lastName"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	EmployeeType   string          `json:"employeeType"`
	Department     string          `json:"department"`
	Position       string          `json:"position"`
	StartDate      string          `json:"startDate"`
	Salary         float64         `json:"salary"`
	Address        addressResponse `json:"address"`
	ProfilePicture string          `json:"profilePicture"`
	Status         string          `json:"status"`
	CreatedBy      any             `json:"createdBy"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

func toEmployeeResponse(emp *employee.Employee) employeeResponse {
	var createdBy any = emp.CreatedBy
	if emp.Creator != nil {
		createdBy = creatorResponse{ID: emp.Creator.ID, Name: emp.Creator.Name, Email: emp.Creator.Email}
	}

	startDate := ""
	if !emp.StartDate.IsZero() {
		startDate = emp.StartDate.UTC().Format(dateLayout)
	}

	return employeeResponse{
		ID:           emp.ID,
		FirstName:    emp.FirstName,
		LastName:     emp.LastName,
		Email:        emp.Email,
		Phone:        emp.Phone,
		EmployeeType: string(emp.EmployeeType),
		Department:   emp.Department,
		Position:     emp.Position,
		StartDate:    startDate,
		Salary:       emp.Salary,
		Address: addressResponse{
			Street:  emp.Address.Street,
			City:    emp.Address.City,
			State:   emp.Address.State,
			ZipCode: emp.Address.ZipCode,
			Country: emp.Address.Country,
		},
		ProfilePicture: emp.ProfilePicture,
		Status:         string(emp.Status),
		CreatedBy:      createdBy,
		CreatedAt:      emp.CreatedAt,
		UpdatedAt:      emp.UpdatedAt,
	}
}

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func toUserResponse(u *user.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: string(u.Role)}
}

type tokenResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      userResponse `json:"user"`
}
