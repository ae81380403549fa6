package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"
)

func TestAdminStoreIsAdminNoRow(t *testing.T) {
	ctx := context.Background()
	store := NewAdminStore(stubDB{
		getFn: func(context.Context, any, string, ...any) error {
			return sql.ErrNoRows
		},
	})
	isAdmin, isSuper, err := store.IsAdmin(ctx, "user-1")
	if err != nil {
		t.Fatalf("missing row must not be an error: %v", err)
	}
	if isAdmin || isSuper {
		t.Fatalf("expected non-admin")
	}
}

func TestAdminStoreIsAdminSuper(t *testing.T) {
	ctx := context.Background()
	store := NewAdminStore(stubDB{
		getFn: func(_ context.Context, dest any, _ string, _ ...any) error {
			*dest.(*bool) = true
			return nil
		},
	})
	isAdmin, isSuper, err := store.IsAdmin(ctx, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !isAdmin || !isSuper {
		t.Fatalf("expected super admin, got %v/%v", isAdmin, isSuper)
	}
}

func TestAdminStoreGrantRoleIdempotent(t *testing.T) {
	ctx := context.Background()
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "ON CONFLICT DO NOTHING") {
				t.Fatalf("grant must be idempotent: %s", query)
			}
			if args[0] != "user-1" || args[1] != "CanManageCoins" {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 1}, nil
		},
	}
	store := NewAdminStore(stubDB{})
	if err := store.GrantRole(ctx, execer, "user-1", "CanManageCoins"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAdminStoreCreateFirstAdminGuardsOnEmptiness(t *testing.T) {
	ctx := context.Background()
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "WHERE NOT EXISTS (SELECT 1 FROM admins)") {
				t.Fatalf("insert must check emptiness in the same statement: %s", query)
			}
			if len(args) != 1 || args[0] != "user-1" {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 1}, nil
		},
	}
	store := NewAdminStore(stubDB{})
	created, err := store.CreateFirstAdmin(ctx, execer, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Fatalf("expected bootstrap to report created")
	}
}

func TestAdminStoreCreateFirstAdminLosesWhenPopulated(t *testing.T) {
	ctx := context.Background()
	execer := stubExecer{
		execFn: func(context.Context, string, ...any) (sql.Result, error) {
			return stubResult{rows: 0}, nil
		},
	}
	store := NewAdminStore(stubDB{})
	created, err := store.CreateFirstAdmin(ctx, execer, "user-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Fatalf("bootstrap must not fire on a populated table")
	}
}

func TestAdminStoreHasRole(t *testing.T) {
	ctx := context.Background()
	store := NewAdminStore(stubDB{
		getFn: func(_ context.Context, dest any, _ string, args ...any) error {
			if args[1] == "CanViewReports" {
				*dest.(*int) = 1
			}
			return nil
		},
	})
	has, err := store.HasRole(ctx, "user-1", "CanViewReports")
	if err != nil || !has {
		t.Fatalf("expected role, got %v/%v", has, err)
	}
	has, err = store.HasRole(ctx, "user-1", "CanManageUsers")
	if err != nil || has {
		t.Fatalf("unexpected role, got %v/%v", has, err)
	}
}
