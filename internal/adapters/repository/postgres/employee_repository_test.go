package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/employee-management/internal/core/employee"
	pgdb "github.com/ogurasousui/employee-management/internal/platform/db/postgres"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

var employeeRowColumns = []string{
	"id", "first_name", "last_name", "email", "phone", "employee_type", "department", "position",
	"start_date", "salary", "address_street", "address_city", "address_state", "address_zip_code",
	"address_country", "profile_picture", "status", "created_by", "created_at", "updated_at",
	"creator_id", "creator_name", "creator_email",
}

const (
	aliceID   = "2f1c8a52-5a0e-4b5e-9a53-0d5a1c000001"
	bobID     = "2f1c8a52-5a0e-4b5e-9a53-0d5a1c000002"
	creatorID = "7d0f1c22-1111-4c2b-8d3e-000000000001"
)

func employeeRows(now time.Time) *pgxmock.Rows {
	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	return pgxmock.NewRows(employeeRowColumns).
		AddRow(bobID, "Bob", "Malik", "bob@example.com", "555-0101", "Contract", "IT", "Engineer",
			start, 4200.5, nil, "Tokyo", nil, nil, "Japan", "default-profile.jpg", "Active", creatorID, now, now,
			creatorID, "Admin", "admin@example.com").
		AddRow(aliceID, "Alice", "Smith", "alice@example.com", "555-0100", "Full-time", "IT", "Manager",
			start, 6000.0, "1 Main St", "Osaka", "Osaka", "530-0001", "Japan", "alice.png", "On Leave", creatorID, now, now,
			nil, nil, nil)
}

func TestBuildEmployeeWhere(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		filter    employee.ListFilter
		wantWhere string
		wantArgs  []any
	}{
		{
			name:      "no filters",
			filter:    employee.ListFilter{},
			wantWhere: "",
			wantArgs:  []any{},
		},
		{
			name:      "department only",
			filter:    employee.ListFilter{Department: "IT"},
			wantWhere: "\n         WHERE e.department = $1",
			wantArgs:  []any{"IT"},
		},
		{
			name:      "type only",
			filter:    employee.ListFilter{EmployeeType: employee.TypeIntern},
			wantWhere: "\n         WHERE e.employee_type = $1",
			wantArgs:  []any{"Intern"},
		},
		{
			name:   "all filters",
			filter: employee.ListFilter{Search: "ali", Department: "IT", EmployeeType: employee.TypeFullTime},
			wantWhere: "\n         WHERE (strpos(lower(e.first_name), lower($1)) > 0" +
				" OR strpos(lower(e.last_name), lower($1)) > 0" +
				" OR strpos(lower(e.email), lower($1)) > 0)" +
				" AND e.department = $2 AND e.employee_type = $3",
			wantArgs: []any{"ali", "IT", "Full-time"},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			where, args := buildEmployeeWhere(tc.filter)
			if where != tc.wantWhere {
				t.Fatalf("unexpected where clause:\n got %q\nwant %q", where, tc.wantWhere)
			}
			if len(args) != len(tc.wantArgs) {
				t.Fatalf("unexpected args: %v", args)
			}
			for i := range args {
				if args[i] != tc.wantArgs[i] {
					t.Fatalf("arg %d: got %v want %v", i, args[i], tc.wantArgs[i])
				}
			}
		})
	}
}

func TestEmployeeRepository_List_WithFilters(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	repo := NewEmployeeRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("AND e.department = $2 AND e.employee_type = $3\n         ORDER BY e.created_at DESC, e.seq ASC")).
		WithArgs("ali", "IT", "Full-time").
		WillReturnRows(employeeRows(now))

	employees, err := repo.List(context.Background(), employee.ListFilter{
		Search:       "ali",
		Department:   "IT",
		EmployeeType: employee.TypeFullTime,
	})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	if len(employees) != 2 {
		t.Fatalf("expected 2 employees, got %d", len(employees))
	}

	bob := employees[0]
	if bob.ID != bobID || bob.EmployeeType != employee.TypeContract || bob.Salary != 4200.5 {
		t.Fatalf("unexpected first row: %+v", bob)
	}
	if bob.Address.City != "Tokyo" || bob.Address.Street != "" {
		t.Fatalf("unexpected address: %+v", bob.Address)
	}
	if bob.Creator == nil || bob.Creator.Name != "Admin" {
		t.Fatalf("expected creator snapshot, got %+v", bob.Creator)
	}

	alice := employees[1]
	if alice.Status != employee.StatusOnLeave || alice.Address.ZipCode != "530-0001" {
		t.Fatalf("unexpected second row: %+v", alice)
	}
	if alice.Creator != nil {
		t.Fatalf("expected nil creator when user row is missing")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEmployeeRepository_List_EmptyResult(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	repo := NewEmployeeRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN users u ON u.id = e.created_by\n         ORDER BY e.created_at DESC, e.seq ASC")).
		WillReturnRows(pgxmock.NewRows(employeeRowColumns))

	employees, err := repo.List(context.Background(), employee.ListFilter{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if employees == nil || len(employees) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", employees)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEmployeeRepository_CreateWithinTransaction(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	repo := NewEmployeeRepository(mock)
	tm := pgdb.NewTransactionManager(mock)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.ReadCommitted, AccessMode: pgx.ReadWrite})
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO employees")).
		WithArgs("Alice", "Smith", "alice@example.com", "555-0100", "Full-time", "IT", "Manager",
			start, 6000.0, "1 Main St", nil, nil, nil, nil, "default-profile.jpg", "Active", creatorID, now, now).
		WillReturnRows(pgxmock.NewRows(employeeRowColumns).
			AddRow(aliceID, "Alice", "Smith", "alice@example.com", "555-0100", "Full-time", "IT", "Manager",
				start, 6000.0, "1 Main St", nil, nil, nil, nil, "default-profile.jpg", "Active", creatorID, now, now,
				creatorID, "Admin", "admin@example.com"))
	mock.ExpectCommit()

	var created *employee.Employee
	err := tm.WithinReadWrite(context.Background(), func(ctx context.Context) error {
		var err error
		created, err = repo.Create(ctx, &employee.Employee{
			FirstName:      "Alice",
			LastName:       "Smith",
			Email:          "alice@example.com",
			Phone:          "555-0100",
			EmployeeType:   employee.TypeFullTime,
			Department:     "IT",
			Position:       "Manager",
			StartDate:      start,
			Salary:         6000,
			Address:        employee.Address{Street: "1 Main St"},
			ProfilePicture: employee.DefaultProfilePicture,
			Status:         employee.StatusActive,
			CreatedBy:      creatorID,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
		return err
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.ID != aliceID || created.CreatedBy != creatorID || created.Creator == nil {
		t.Fatalf("unexpected created employee: %+v", created)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func TestEmployeeRepository_CreateDuplicateEmail(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	repo := NewEmployeeRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO employees")).
		WithArgs(anyArgs(19)...).
		WillReturnError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "employees_email_key"})

	_, err := repo.Create(context.Background(), &employee.Employee{Email: "A@x.com"})
	if !errors.Is(err, employee.ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestEmployeeRepository_FindByEmailIgnoresCase(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	repo := NewEmployeeRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE lower(e.email) = lower($1)")).
		WithArgs("ALICE@example.com").
		WillReturnError(pgx.ErrNoRows)

	if _, err := repo.FindByEmail(context.Background(), "ALICE@example.com"); !errors.Is(err, employee.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestEmployeeRepository_UpdateKeepsProvenance(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	repo := NewEmployeeRepository(mock)
	now := time.Now().UTC()

	args := append(anyArgs(15), "Inactive", now, bobID)
	mock.ExpectQuery(regexp.QuoteMeta("updated_at = $17\n             WHERE id = $18")).
		WithArgs(args...).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.Update(context.Background(), &employee.Employee{ID: bobID, Status: employee.StatusInactive, UpdatedAt: now})
	if !errors.Is(err, employee.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEmployeeRepository_DeleteTwice(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	repo := NewEmployeeRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM employees WHERE id = $1")).
		WithArgs(aliceID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM employees WHERE id = $1")).
		WithArgs(aliceID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	if err := repo.Delete(context.Background(), aliceID); err != nil {
		t.Fatalf("first Delete returned error: %v", err)
	}
	if err := repo.Delete(context.Background(), aliceID); !errors.Is(err, employee.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound on second delete, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTranslateEmployeePgError(t *testing.T) {
	t.Parallel()

	if !errors.Is(translateEmployeePgError(&pgconn.PgError{Code: uniqueViolationCode}), employee.ErrEmailAlreadyExists) {
		t.Fatalf("expected unique violation to map to ErrEmailAlreadyExists")
	}

	checkErr := translateEmployeePgError(&pgconn.PgError{Code: checkViolationCode, ConstraintName: "employees_salary_check"})
	var verr *employee.ValidationError
	if !errors.As(checkErr, &verr) || verr.Fields[0].Field != "salary" {
		t.Fatalf("expected check violation to map to salary validation error, got %v", checkErr)
	}

	fkErr := translateEmployeePgError(&pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "employees_created_by_fkey"})
	if !errors.As(fkErr, &verr) || verr.Fields[0].Field != "createdBy" {
		t.Fatalf("expected fk violation to map to createdBy validation error, got %v", fkErr)
	}

	if !errors.Is(translateEmployeePgError(&pgconn.PgError{Code: invalidTextCode}), employee.ErrEmployeeNotFound) {
		t.Fatalf("expected invalid uuid text to map to ErrEmployeeNotFound")
	}

	other := errors.New("other")
	if translateEmployeePgError(other) != other {
		t.Fatalf("unexpected translation for generic error")
	}
}
