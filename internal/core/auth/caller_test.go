package auth

import (
	"context"
	"testing"
)

func TestCaller_Privileged(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		caller Caller
		want   bool
	}{
		{name: "admin", caller: Caller{UserID: "u-1", Role: RoleAdmin}, want: true},
		{name: "user", caller: Caller{UserID: "u-2", Role: RoleUser}, want: false},
		{name: "anonymous admin role", caller: Caller{Role: RoleAdmin}, want: false},
		{name: "zero", caller: Caller{}, want: false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.caller.Privileged(); got != tc.want {
				t.Fatalf("Privileged() = %t, want %t", got, tc.want)
			}
		})
	}
}

func TestCallerContextRoundTrip(t *testing.T) {
	t.Parallel()

	if _, ok := CallerFrom(context.Background()); ok {
		t.Fatalf("expected no caller in empty context")
	}

	ctx := WithCaller(context.Background(), Caller{UserID: "u-1", Role: RoleUser})
	got, ok := CallerFrom(ctx)
	if !ok || got.UserID != "u-1" || got.Role != RoleUser {
		t.Fatalf("unexpected caller: %+v ok=%t", got, ok)
	}
}
