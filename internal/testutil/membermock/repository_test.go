package membermock

import (
	"context"
	"errors"
	"testing"

	domain "community-lending/internal/domain/member"
)

func TestFixed(t *testing.T) {
	m := Fixed(
		domain.User{UserID: "u1", Role: domain.RoleMember, IsActive: true},
		domain.User{UserID: "a1", Role: domain.RoleAdmin, IsActive: true},
		domain.User{UserID: "a2", Role: domain.RoleAdmin, IsActive: false},
	)
	ctx := context.Background()

	if u, err := m.GetByUserID(ctx, "u1"); err != nil || u.UserID != "u1" {
		t.Fatalf("GetByUserID: (%+v, %v)", u, err)
	}
	if _, err := m.GetByUserID(ctx, "zz"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing user: %v", err)
	}
	admins, _ := m.ListActiveAdmins(ctx)
	if len(admins) != 1 || admins[0].UserID != "a1" {
		t.Fatalf("admins: %+v", admins)
	}
}

func TestRepo_Defaults(t *testing.T) {
	m := &Repo{}
	if _, err := m.GetByUserID(context.Background(), "u"); err != context.Canceled {
		t.Fatalf("default GetByUserID: %v", err)
	}
}
