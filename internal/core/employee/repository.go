package employee

import "context"

// Repository は社員永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, employee *Employee) (*Employee, error)
	Update(ctx context.Context, employee *Employee) (*Employee, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Employee, error)
	FindByEmail(ctx context.Context, email string) (*Employee, error)
	List(ctx context.Context, filter ListFilter) ([]*Employee, error)
}

// ListFilter は一覧取得用フィルタです。空文字の項目は条件に含めません。
//
// 指定された項目同士は AND で結合されます。Search は氏名 (名・姓) とメールアドレスに対する
// 大文字小文字を区別しない部分一致で、三項目のいずれかに一致すれば条件を満たします。
type ListFilter struct {
	Search       string
	Department   string
	EmployeeType EmployeeType
}
