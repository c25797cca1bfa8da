package auth

import (
	"context"
	"errors"
	"testing"
)

func TestWithAdmin_AdminFromCtx(t *testing.T) {
	ctx := WithAdmin(context.Background(), "admin")

	got, err := AdminFromCtx(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "admin" {
		t.Fatalf("expected admin, got %q", got)
	}
	if !IsAdmin(ctx) {
		t.Fatal("expected IsAdmin to be true")
	}
}

func TestAdminFromCtx_EmptyContext(t *testing.T) {
	_, err := AdminFromCtx(context.Background())
	if !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("expected ErrNotAdmin, got %v", err)
	}
	if IsAdmin(context.Background()) {
		t.Fatal("expected IsAdmin to be false")
	}
}

func TestAdminFromCtx_EmptyName(t *testing.T) {
	ctx := WithAdmin(context.Background(), "")
	if _, err := AdminFromCtx(ctx); !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("expected ErrNotAdmin for empty name, got %v", err)
	}
}
