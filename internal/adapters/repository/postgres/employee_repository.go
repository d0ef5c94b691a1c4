package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/employee-management/internal/core/employee"
	pgdb "github.com/ogurasousui/employee-management/internal/platform/db/postgres"
)

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
	notNullViolationCode    = "23502"
	invalidTextCode         = "22P02"
)

const employeeColumns = `e.id, e.first_name, e.last_name, e.email, e.phone, e.employee_type, e.department, e.position,
               e.start_date, e.salary, e.address_street, e.address_city, e.address_state, e.address_zip_code,
               e.address_country, e.profile_picture, e.status, e.created_by, e.created_at, e.updated_at,
               u.id, u.name, u.email`

const employeeReturning = `id, first_name, last_name, email, phone, employee_type, department, position,
                      start_date, salary, address_street, address_city, address_state, address_zip_code,
                      address_country, profile_picture, status, created_by, created_at, updated_at`

// EmployeeRepository は PostgreSQL を利用した社員永続化の実装です。
type EmployeeRepository struct {
	pool pgdb.Queryer
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// Create は社員を新規作成し、登録者情報を結合した結果を返します。
func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        WITH e AS (
            INSERT INTO employees (first_name, last_name, email, phone, employee_type, department, position,
                                   start_date, salary, address_street, address_city, address_state, address_zip_code,
                                   address_country, profile_picture, status, created_by, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
            RETURNING `+employeeReturning+`
        )
        SELECT `+employeeColumns+`
          FROM e
          LEFT JOIN users u ON u.id = e.created_by
    `,
		e.FirstName,
		e.LastName,
		e.Email,
		e.Phone,
		string(e.EmployeeType),
		e.Department,
		e.Position,
		dateOnly(e.StartDate),
		e.Salary,
		nullableString(e.Address.Street),
		nullableString(e.Address.City),
		nullableString(e.Address.State),
		nullableString(e.Address.ZipCode),
		nullableString(e.Address.Country),
		e.ProfilePicture,
		string(e.Status),
		e.CreatedBy,
		e.CreatedAt,
		e.UpdatedAt,
	)

	created, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return created, nil
}

// Update は社員情報を更新します。id, created_by, created_at は変更しません。
func (r *EmployeeRepository) Update(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        WITH e AS (
            UPDATE employees
               SET first_name = $1,
                   last_name = $2,
                   email = $3,
                   phone = $4,
                   employee_type = $5,
                   department = $6,
                   position = $7,
                   start_date = $8,
                   salary = $9,
                   address_street = $10,
                   address_city = $11,
                   address_state = $12,
                   address_zip_code = $13,
                   address_country = $14,
                   profile_picture = $15,
                   status = $16,
                   updated_at = $17
             WHERE id = $18
            RETURNING `+employeeReturning+`
        )
        SELECT `+employeeColumns+`
          FROM e
          LEFT JOIN users u ON u.id = e.created_by
    `,
		e.FirstName,
		e.LastName,
		e.Email,
		e.Phone,
		string(e.EmployeeType),
		e.Department,
		e.Position,
		dateOnly(e.StartDate),
		e.Salary,
		nullableString(e.Address.Street),
		nullableString(e.Address.City),
		nullableString(e.Address.State),
		nullableString(e.Address.ZipCode),
		nullableString(e.Address.Country),
		e.ProfilePicture,
		string(e.Status),
		e.UpdatedAt,
		e.ID,
	)

	updated, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return updated, nil
}

// Delete は社員を削除します。
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return translateEmployeePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// FindByID は ID で社員を取得します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+employeeColumns+`
          FROM employees e
          LEFT JOIN users u ON u.id = e.created_by
         WHERE e.id = $1
         LIMIT 1
    `, id)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return found, nil
}

// FindByEmail は大文字小文字を区別せずにメールアドレスで社員を取得します。
func (r *EmployeeRepository) FindByEmail(ctx context.Context, email string) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+employeeColumns+`
          FROM employees e
          LEFT JOIN users u ON u.id = e.created_by
         WHERE lower(e.email) = lower($1)
         LIMIT 1
    `, email)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return found, nil
}

// List は条件に一致する社員を作成日時の降順、同時刻は登録順で返します。
func (r *EmployeeRepository) List(ctx context.Context, filter employee.ListFilter) ([]*employee.Employee, error) {
	whereClause, args := buildEmployeeWhere(filter)

	query := `
        SELECT ` + employeeColumns + `
          FROM employees e
          LEFT JOIN users u ON u.id = e.created_by` + whereClause + `
         ORDER BY e.created_at DESC, e.seq ASC
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	defer rows.Close()

	employees := make([]*employee.Employee, 0)
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, translateEmployeePgError(err)
		}
		employees = append(employees, emp)
	}

	if err := rows.Err(); err != nil {
		return nil, translateEmployeePgError(err)
	}

	return employees, nil
}

// buildEmployeeWhere は空でない条件のみを AND で結合した WHERE 句を組み立てます。
// 検索語はパターンとして解釈させないため LIKE ではなく strpos で比較します。
func buildEmployeeWhere(filter employee.ListFilter) (string, []any) {
	args := make([]any, 0, 3)
	conditions := make([]string, 0, 3)

	if filter.Search != "" {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		conditions = append(conditions, "(strpos(lower(e.first_name), lower("+placeholder+")) > 0"+
			" OR strpos(lower(e.last_name), lower("+placeholder+")) > 0"+
			" OR strpos(lower(e.email), lower("+placeholder+")) > 0)")
		args = append(args, filter.Search)
	}

	if filter.Department != "" {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		conditions = append(conditions, "e.department = "+placeholder)
		args = append(args, filter.Department)
	}

	if filter.EmployeeType != "" {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		conditions = append(conditions, "e.employee_type = "+placeholder)
		args = append(args, string(filter.EmployeeType))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return "\n         WHERE " + strings.Join(conditions, " AND "), args
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var (
		e            employee.Employee
		employeeType string
		status       string
		street       sql.NullString
		city         sql.NullString
		state        sql.NullString
		zipCode      sql.NullString
		country      sql.NullString
		creatorID    sql.NullString
		creatorName  sql.NullString
		creatorEmail sql.NullString
	)

	if err := row.Scan(
		&e.ID,
		&e.FirstName,
		&e.LastName,
		&e.Email,
		&e.Phone,
		&employeeType,
		&e.Department,
		&e.Position,
		&e.StartDate,
		&e.Salary,
		&street,
		&city,
		&state,
		&zipCode,
		&country,
		&e.ProfilePicture,
		&status,
		&e.CreatedBy,
		&e.CreatedAt,
		&e.UpdatedAt,
		&creatorID,
		&creatorName,
		&creatorEmail,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}

	e.EmployeeType = employee.EmployeeType(employeeType)
	e.Status = employee.Status(status)
	e.StartDate = dateOnly(e.StartDate)
	e.Address = employee.Address{
		Street:  street.String,
		City:    city.String,
		State:   state.String,
		ZipCode: zipCode.String,
		Country: country.String,
	}
	if creatorID.Valid {
		e.Creator = &employee.CreatorSnapshot{
			ID:    creatorID.String,
			Name:  creatorName.String,
			Email: creatorEmail.String,
		}
	}

	return &e, nil
}

func translateEmployeePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return employee.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return employee.ErrEmailAlreadyExists
		case checkViolationCode, notNullViolationCode, foreignKeyViolationCode:
			return &employee.ValidationError{Fields: []employee.FieldError{{
				Field:  columnField(pgErr.ColumnName, pgErr.ConstraintName),
				Reason: "violates constraint " + pgErr.ConstraintName,
			}}}
		case invalidTextCode:
			return employee.ErrEmployeeNotFound
		}
	}

	return err
}

// columnField は制約違反の列名を API 上の項目名に変換します。
func columnField(column, constraint string) string {
	name := column
	if name == "" {
		name = strings.TrimSuffix(strings.TrimPrefix(constraint, "employees_"), "_check")
		name = strings.TrimSuffix(name, "_fkey")
	}
	switch name {
	case "first_name":
		return "firstName"
	case "last_name":
		return "lastName"
	case "employee_type":
		return "employeeType"
	case "start_date":
		return "startDate"
	case "profile_picture":
		return "profilePicture"
	case "created_by":
		return "createdBy"
	default:
		return name
	}
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
