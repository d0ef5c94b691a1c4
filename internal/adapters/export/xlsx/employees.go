package xlsx

import (
	"fmt"
	"io"

	"github.com/ogurasousui/employee-management/internal/core/employee"
	"github.com/xuri/excelize/v2"
)

// SheetName は出力するシート名です。
const SheetName = "Employees"

// ContentType は xlsx の MIME タイプです。
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Headers は出力する列見出しです。
var Headers = []string{
	"ID",
	"First Name",
	"Last Name",
	"Email",
	"Phone",
	"Employee Type",
	"Department",
	"Position",
	"Start Date",
	"Salary",
	"Status",
	"Street",
	"City",
	"State",
	"Zip Code",
	"Country",
	"Created By",
	"Created At",
}

// WriteEmployees は社員一覧を 1 シートの xlsx として w に書き出します。
func WriteEmployees(w io.Writer, employees []*employee.Employee) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("xlsx: rename sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("xlsx: stream writer: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "top"},
	})
	if err != nil {
		return fmt.Errorf("xlsx: header style: %w", err)
	}

	if err := sw.SetColWidth(1, len(Headers), 18); err != nil {
		return fmt.Errorf("xlsx: column width: %w", err)
	}

	header := make([]interface{}, len(Headers))
	for i, h := range Headers {
		header[i] = excelize.Cell{Value: h, StyleID: headerStyle}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("xlsx: header row: %w", err)
	}

	for i, emp := range employees {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("xlsx: cell name: %w", err)
		}
		if err := sw.SetRow(cell, employeeRow(emp)); err != nil {
			return fmt.Errorf("xlsx: row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("xlsx: flush: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx: write: %w", err)
	}
	return nil
}

func employeeRow(emp *employee.Employee) []interface{} {
	createdBy := emp.CreatedBy
	if emp.Creator != nil && emp.Creator.Name != "" {
		createdBy = emp.Creator.Name
	}

	return []interface{}{
		emp.ID,
		emp.FirstName,
		emp.LastName,
		emp.Email,
		emp.Phone,
		string(emp.EmployeeType),
		emp.Department,
		emp.Position,
		emp.StartDate.Format("2006-01-02"),
		emp.Salary,
		string(emp.Status),
		emp.Address.Street,
		emp.Address.City,
		emp.Address.State,
		emp.Address.ZipCode,
		emp.Address.Country,
		createdBy,
		emp.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
	}
}
