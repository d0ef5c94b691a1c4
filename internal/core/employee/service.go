package employee

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ogurasousui/employee-management/internal/core/auth"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// Service は社員に関するユースケースをまとめます。
type Service struct {
	repo  Repository
	clock Clock
	tx    TransactionManager
}

// UseCase は社員ユースケースの公開インターフェースです。
type UseCase interface {
	CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error)
	GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error)
	ListEmployees(ctx context.Context, in ListEmployeesInput) ([]*Employee, error)
	UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error)
	DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) error
}

var _ UseCase = (*Service)(nil)

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, clock: clock, tx: tx}
}

// CreateEmployeeInput は社員作成時の入力です。CreatedBy には認証済みユーザーの ID を設定します。
type CreateEmployeeInput struct {
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
	Status         *Status
	CreatedBy      string
}

// AddressInput は住所の部分更新です。nil の項目は変更しません。
type AddressInput struct {
	Street  *string
	City    *string
	State   *string
	ZipCode *string
	Country *string
}

// UpdateEmployeeInput は社員更新時の入力です。nil の項目は変更しません。
type UpdateEmployeeInput struct {
	ID             string
	FirstName      *string
	LastName       *string
	Email          *string
	Phone          *string
	EmployeeType   *EmployeeType
	Department     *string
	Position       *string
	StartDate      *time.Time
	Salary         *float64
	Address        *AddressInput
	ProfilePicture *string
	Status         *Status
}

// DeleteEmployeeInput は社員削除時の入力です。
type DeleteEmployeeInput struct {
	ID     string
	Caller auth.Caller
}

// GetEmployeeInput は社員取得時の入力です。
type GetEmployeeInput struct {
	ID string
}

// ListEmployeesInput は一覧取得時の入力です。空文字の項目は絞り込みに使いません。
type ListEmployeesInput struct {
	Search       string
	Department   string
	EmployeeType EmployeeType
}

// CreateEmployee は新しい社員を作成します。
func (s *Service) CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error) {
	status := StatusActive
	if in.Status != nil {
		status = *in.Status
	}

	emp := &Employee{
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Email:          in.Email,
		Phone:          in.Phone,
		EmployeeType:   in.EmployeeType,
		Department:     in.Department,
		Position:       in.Position,
		StartDate:      in.StartDate,
		Salary:         in.Salary,
		Address:        in.Address,
		ProfilePicture: in.ProfilePicture,
		Status:         status,
		CreatedBy:      in.CreatedBy,
	}
	normalize(emp)
	if emp.ProfilePicture == "" {
		emp.ProfilePicture = DefaultProfilePicture
	}

	if err := Validate(emp); err != nil {
		return nil, err
	}

	var created *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.ensureEmailNotExists(txCtx, emp.Email, ""); err != nil {
			return err
		}

		now := s.clock.Now()
		emp.CreatedAt = now
		emp.UpdatedAt = now

		result, err := s.repo.Create(txCtx, emp)
		if err != nil {
			return err
		}

		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateEmployee は指定された項目のみを既存の社員に反映し、再検証したうえで保存します。
func (s *Service) UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error) {
	id, err := normalizeID(in.ID)
	if err != nil {
		return nil, err
	}

	var updated *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}

		previousEmail := existing.Email
		applyUpdate(existing, in)
		normalize(existing)
		if existing.ProfilePicture == "" {
			existing.ProfilePicture = DefaultProfilePicture
		}

		if err := Validate(existing); err != nil {
			return err
		}

		if existing.Email != previousEmail {
			if err := s.ensureEmailNotExists(txCtx, existing.Email, existing.ID); err != nil {
				return err
			}
		}

		existing.UpdatedAt = s.clock.Now()

		result, err := s.repo.Update(txCtx, existing)
		if err != nil {
			return err
		}

		updated = result
		return nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteEmployee は社員を削除します。管理者権限を持つ呼び出し元のみ実行できます。
func (s *Service) DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) error {
	if !in.Caller.Privileged() {
		return ErrForbidden
	}

	id, err := normalizeID(in.ID)
	if err != nil {
		return err
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, id)
	})
}

// GetEmployee は社員を取得します。
func (s *Service) GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error) {
	id, err := normalizeID(in.ID)
	if err != nil {
		return nil, err
	}

	var result *Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// ListEmployees は条件に一致する社員を作成日時の新しい順にすべて返します。
// 一致する社員がいない場合は空のスライスを返します。
func (s *Service) ListEmployees(ctx context.Context, in ListEmployeesInput) ([]*Employee, error) {
	filter := ListFilter{
		Search:       in.Search,
		Department:   in.Department,
		EmployeeType: in.EmployeeType,
	}

	var employees []*Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.List(txCtx, filter)
		if err != nil {
			return err
		}
		employees = found
		return nil
	}); err != nil {
		return nil, err
	}

	if employees == nil {
		employees = []*Employee{}
	}
	return employees, nil
}

func (s *Service) ensureEmailNotExists(ctx context.Context, email, selfID string) error {
	emp, err := s.repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrEmployeeNotFound) {
		return err
	}
	if emp != nil && emp.ID != selfID {
		return ErrEmailAlreadyExists
	}
	return nil
}

func applyUpdate(e *Employee, in UpdateEmployeeInput) {
	setString(&e.FirstName, in.FirstName)
	setString(&e.LastName, in.LastName)
	setString(&e.Email, in.Email)
	setString(&e.Phone, in.Phone)
	setString(&e.Department, in.Department)
	setString(&e.Position, in.Position)
	setString(&e.ProfilePicture, in.ProfilePicture)

	if in.EmployeeType != nil {
		e.EmployeeType = *in.EmployeeType
	}
	if in.StartDate != nil {
		e.StartDate = *in.StartDate
	}
	if in.Salary != nil {
		e.Salary = *in.Salary
	}
	if in.Status != nil {
		e.Status = *in.Status
	}

	if in.Address != nil {
		setString(&e.Address.Street, in.Address.Street)
		setString(&e.Address.City, in.Address.City)
		setString(&e.Address.State, in.Address.State)
		setString(&e.Address.ZipCode, in.Address.ZipCode)
		setString(&e.Address.Country, in.Address.Country)
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// normalizeID は空の ID を ErrInvalidID、UUID として解釈できない ID を ErrEmployeeNotFound とします。
func normalizeID(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("id: %w", ErrInvalidID)
	}
	parsed, err := uuid.Parse(trimmed)
	if err != nil {
		return "", ErrEmployeeNotFound
	}
	return parsed.String(), nil
}
