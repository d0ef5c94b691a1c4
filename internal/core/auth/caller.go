package auth

import "context"

// Role は利用者の権限種別です。
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// IsValid は既知のロールかどうかを返します。
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Caller は認証済みの呼び出し元です。認証層が構築し、コアは参照のみ行います。
type Caller struct {
	UserID string
	Role   Role
}

// Privileged は管理者操作が許可されているかを返します。
func (c Caller) Privileged() bool {
	return c.UserID != "" && c.Role == RoleAdmin
}

type callerKey struct{}

// WithCaller は呼び出し元をコンテキストに格納します。
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// CallerFrom はコンテキストから呼び出し元を取り出します。
func CallerFrom(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(callerKey{}).(Caller)
	return c, ok
}
