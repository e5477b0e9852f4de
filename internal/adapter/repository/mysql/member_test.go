package mysql

import (
	"context"
	"errors"
	"testing"

	memberDomain "community-lending/internal/domain/member"
)

func TestMemberRepository_GetAndListAdmins(t *testing.T) {
	db := openTestDB(t)
	repo := NewMemberRepository(db)
	ctx := context.Background()

	seed := []userSQLite{
		{UserID: "11111111111111111111111111111111", FullName: "Ada", Role: "member", IsActive: true},
		{UserID: "22222222222222222222222222222222", FullName: "Bo", Role: "admin", IsActive: true},
		{UserID: "33333333333333333333333333333333", FullName: "Cy", Role: "admin", IsActive: false},
		{UserID: "44444444444444444444444444444444", Role: "admin", IsActive: true},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	u, err := repo.GetByUserID(ctx, "11111111111111111111111111111111")
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if u.Role != memberDomain.RoleMember || u.DisplayName() != "Ada" {
		t.Fatalf("unexpected user: %+v", u)
	}

	admins, err := repo.ListActiveAdmins(ctx)
	if err != nil {
		t.Fatalf("ListActiveAdmins: %v", err)
	}
	if len(admins) != 2 {
		t.Fatalf("admins = %d, want 2 (inactive admin excluded)", len(admins))
	}
	if admins[0].UserID != "22222222222222222222222222222222" || admins[1].DisplayName() != "44444444444444444444444444444444" {
		t.Fatalf("unexpected admins: %+v", admins)
	}

	if _, err := repo.GetByUserID(ctx, "nobody"); !errors.Is(err, memberDomain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemberRepository_CreateKeepsInactiveFlag(t *testing.T) {
	db := openTestDB(t)
	repo := NewMemberRepository(db)
	ctx := context.Background()

	u := &memberDomain.User{UserID: "55555555555555555555555555555555", Role: memberDomain.RoleAdmin, IsActive: false}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	admins, err := repo.ListActiveAdmins(ctx)
	if err != nil {
		t.Fatalf("ListActiveAdmins: %v", err)
	}
	if len(admins) != 0 {
		t.Fatalf("inactive admin must not be listed: %+v", admins)
	}
}
