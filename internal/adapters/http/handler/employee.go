package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/ogurasousui/employee-management/internal/adapters/export/xlsx"
	"github.com/ogurasousui/employee-management/internal/core/auth"
	"github.com/ogurasousui/employee-management/internal/core/employee"
	"github.com/ogurasousui/employee-management/internal/platform/upload"
)

const (
	profilePictureField = "profilePicture"
	multipartMemory     = 1 << 20
	jsonBodyLimit       = 1 << 20
)

// Uploader はアップロードされたファイルを保存し、参照用のファイル名を返します。
type Uploader interface {
	Save(ctx context.Context, originalName string, r io.Reader) (string, error)
}

// EmployeeHandler は社員 API の HTTP 実装です。
type EmployeeHandler struct {
	svc      employee.UseCase
	uploads  Uploader
	maxBytes int64
}

// NewEmployeeHandler は EmployeeHandler を生成します。maxUpload はファイル 1 件あたりの上限です。
func NewEmployeeHandler(svc employee.UseCase, uploads Uploader, maxUpload int64) *EmployeeHandler {
	return &EmployeeHandler{svc: svc, uploads: uploads, maxBytes: maxUpload}
}

// List は社員の一覧を返します。
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	found, err := h.svc.ListEmployees(r.Context(), listInput(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]employeeResponse, 0, len(found))
	for _, emp := range found {
		out = append(out, toEmployeeResponse(emp))
	}
	writeJSON(w, http.StatusOK, out)
}

// Export は一覧と同じ条件で絞り込んだ社員を xlsx で返します。
func (h *EmployeeHandler) Export(w http.ResponseWriter, r *http.Request) {
	found, err := h.svc.ListEmployees(r.Context(), listInput(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsx.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="employees.xlsx"`)
	if err := xlsx.WriteEmployees(w, found); err != nil {
		writeError(w, r, err)
	}
}

// Get は社員を 1 件返します。
func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	found, err := h.svc.GetEmployee(r.Context(), employee.GetEmployeeInput{ID: mux.Vars(r)["id"]})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeResponse(found))
}

// Create は社員を登録します。登録者は認証済みの呼び出し元です。
func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CallerFrom(r.Context())

	payload, err := h.decodePayload(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	in, err := payload.toCreateInput(caller.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, err := h.svc.CreateEmployee(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeResponse(created))
}

// Update は社員を部分更新します。
func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	payload, err := h.decodePayload(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	in, err := payload.toUpdateInput(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := h.svc.UpdateEmployee(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeResponse(updated))
}

// Delete は社員を削除します。
func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CallerFrom(r.Context())

	err := h.svc.DeleteEmployee(r.Context(), employee.DeleteEmployeeInput{
		ID:     mux.Vars(r)["id"],
		Caller: caller,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "employee deleted"})
}

func listInput(r *http.Request) employee.ListEmployeesInput {
	q := r.URL.Query()
	return employee.ListEmployeesInput{
		Search:       q.Get("search"),
		Department:   q.Get("department"),
		EmployeeType: employee.EmployeeType(q.Get("employeeType")),
	}
}

// decodePayload は JSON または multipart/form-data の本文を読み取ります。
// multipart にファイルが含まれる場合は保存後のファイル名を profilePicture に設定します。
func (h *EmployeeHandler) decodePayload(w http.ResponseWriter, r *http.Request) (employeePayload, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return h.decodeMultipart(w, r)
	}

	var payload employeePayload
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, jsonBodyLimit))
	if err := dec.Decode(&payload); err != nil {
		return employeePayload{}, fmt.Errorf("%w: malformed JSON body", errBadRequest)
	}
	return payload, nil
}

func (h *EmployeeHandler) decodeMultipart(w http.ResponseWriter, r *http.Request) (employeePayload, error) {
	if h.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartMemory)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return employeePayload{}, upload.ErrTooLarge
		}
		return employeePayload{}, fmt.Errorf("%w: malformed multipart body", errBadRequest)
	}
	defer r.MultipartForm.RemoveAll()

	values := r.MultipartForm.Value
	field := func(keys ...string) *string {
		for _, key := range keys {
			if v, ok := values[key]; ok && len(v) > 0 {
				value := v[0]
				return &value
			}
		}
		return nil
	}

	payload := employeePayload{
		FirstName:      field("firstName"),
		LastName:       field("lastName"),
		Email:          field("email"),
		Phone:          field("phone"),
		EmployeeType:   field("employeeType"),
		Department:     field("department"),
		Position:       field("position"),
		StartDate:      field("startDate"),
		ProfilePicture: field(profilePictureField),
		Status:         field("status"),
	}
	if salary := field("salary"); salary != nil {
		n := flexNumber(*salary)
		payload.Salary = &n
	}

	address := addressPayload{
		Street:  field("address.street", "address[street]"),
		City:    field("address.city", "address[city]"),
		State:   field("address.state", "address[state]"),
		ZipCode: field("address.zipCode", "address[zipCode]"),
		Country: field("address.country", "address[country]"),
	}
	if address != (addressPayload{}) {
		payload.Address = &address
	}

	files := r.MultipartForm.File[profilePictureField]
	if len(files) == 0 {
		return payload, nil
	}
	if h.uploads == nil {
		return employeePayload{}, fmt.Errorf("%w: uploads are not enabled", errBadRequest)
	}

	header := files[0]
	file, err := header.Open()
	if err != nil {
		return employeePayload{}, fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	stored, err := h.uploads.Save(r.Context(), header.Filename, file)
	if err != nil {
		return employeePayload{}, err
	}
	name := strings.TrimSpace(stored)
	payload.ProfilePicture = &name
	return payload, nil
}
