package services

import (
	"context"
	"errors"
	"testing"

	"duitku/internal/core"
)

func TestScopeSoloUser(t *testing.T) {
	env := newTestEnv(t)
	u := env.user(t, "Budi", "budi@example.com", "")

	scope, err := env.family.Scope(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("scope: %v", err)
	}
	if len(scope) != 1 || scope[0] != u.ID {
		t.Errorf("scope = %v, want [%d]", scope, u.ID)
	}
}

func TestScopeCoversFamily(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "Budi", "budi@example.com", "Keluarga")
	member := env.user(t, "Sari", "sari@example.com", "Keluarga")

	scope, err := env.family.Scope(context.Background(), owner.ID)
	if err != nil {
		t.Fatalf("scope: %v", err)
	}
	if len(scope) != 2 {
		t.Fatalf("scope = %v, want both members", scope)
	}

	// Same scope from either end.
	memberScope, err := env.family.Scope(context.Background(), member.ID)
	if err != nil {
		t.Fatalf("member scope: %v", err)
	}
	if len(memberScope) != 2 {
		t.Errorf("member scope = %v", memberScope)
	}
}

func TestCreateFamilyRequiresNoExistingFamily(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u := env.user(t, "Budi", "budi@example.com", "")
	family, err := env.family.Create(ctx, u.ID, "Keluarga Baru")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if family.OwnerID != u.ID {
		t.Errorf("owner = %d, want %d", family.OwnerID, u.ID)
	}

	if _, err := env.family.Create(ctx, u.ID, "Kedua"); !errors.Is(err, core.ErrForbidden) {
		t.Errorf("second create: got %v, want ErrForbidden", err)
	}

	if _, err := env.family.Create(ctx, env.user(t, "Sari", "sari@example.com", "").ID, "  "); !errors.Is(err, core.ErrValidation) {
		t.Errorf("blank name: got %v, want validation error", err)
	}
}

func TestJoinFamilyByName(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.user(t, "Budi", "budi@example.com", "Keluarga")
	joiner := env.user(t, "Sari", "sari@example.com", "")

	family, err := env.family.Join(ctx, joiner.ID, "Keluarga")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if family.Name != "Keluarga" {
		t.Errorf("family = %+v", family)
	}

	// Cannot join twice.
	if _, err := env.family.Join(ctx, joiner.ID, "Keluarga"); !errors.Is(err, core.ErrForbidden) {
		t.Errorf("double join: got %v, want ErrForbidden", err)
	}

	// Unknown family name.
	loner := env.user(t, "Andi", "andi@example.com", "")
	if _, err := env.family.Join(ctx, loner.ID, "Tidak Ada"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("unknown family: got %v, want ErrNotFound", err)
	}
}

func TestLeaveFamilyRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.user(t, "Budi", "budi@example.com", "Keluarga")
	member := env.user(t, "Sari", "sari@example.com", "Keluarga")

	// The owner cannot walk away from the group.
	if err := env.family.Leave(ctx, owner.ID); !errors.Is(err, core.ErrForbidden) {
		t.Errorf("owner leave: got %v, want ErrForbidden", err)
	}

	if err := env.family.Leave(ctx, member.ID); err != nil {
		t.Fatalf("member leave: %v", err)
	}

	// Scope collapses back to self.
	scope, err := env.family.Scope(ctx, member.ID)
	if err != nil {
		t.Fatalf("scope: %v", err)
	}
	if len(scope) != 1 || scope[0] != member.ID {
		t.Errorf("scope after leave = %v", scope)
	}

	// No family to leave anymore.
	if err := env.family.Leave(ctx, member.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second leave: got %v, want ErrNotFound", err)
	}
}

func TestAddMember(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.user(t, "Budi", "budi@example.com", "Keluarga")
	loner := env.user(t, "Sari", "sari@example.com", "")

	added, err := env.family.AddMember(ctx, owner.ID, "sari@example.com")
	if err != nil {
		t.Fatalf("add member: %v", err)
	}
	if added.ID != loner.ID || added.FamilyID == nil {
		t.Errorf("added = %+v", added)
	}

	// Only the owner may add.
	env.user(t, "Andi", "andi@example.com", "")
	if _, err := env.family.AddMember(ctx, added.ID, "andi@example.com"); !errors.Is(err, core.ErrForbidden) {
		t.Errorf("non-owner add: got %v, want ErrForbidden", err)
	}

	// Target already in a family.
	env.user(t, "Dewi", "dewi@example.com", "Lain")
	if _, err := env.family.AddMember(ctx, owner.ID, "dewi@example.com"); !errors.Is(err, core.ErrForbidden) {
		t.Errorf("taken target: got %v, want ErrForbidden", err)
	}

	// Unknown email.
	if _, err := env.family.AddMember(ctx, owner.ID, "nobody@example.com"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("unknown email: got %v, want ErrNotFound", err)
	}
}

func TestRemoveMember(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.user(t, "Budi", "budi@example.com", "Keluarga")
	member := env.user(t, "Sari", "sari@example.com", "Keluarga")

	// A member cannot remove anyone.
	if err := env.family.RemoveMember(ctx, member.ID, owner.ID); !errors.Is(err, core.ErrForbidden) {
		t.Errorf("member removes owner: got %v, want ErrForbidden", err)
	}

	// The owner cannot remove themselves.
	if err := env.family.RemoveMember(ctx, owner.ID, owner.ID); !errors.Is(err, core.ErrForbidden) {
		t.Errorf("owner removes self: got %v, want ErrForbidden", err)
	}

	if err := env.family.RemoveMember(ctx, owner.ID, member.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}

	// Already gone.
	if err := env.family.RemoveMember(ctx, owner.ID, member.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second remove: got %v, want ErrNotFound", err)
	}
}

func TestOverview(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.user(t, "Budi", "budi@example.com", "Keluarga")
	env.user(t, "Sari", "sari@example.com", "Keluarga")

	overview, err := env.family.Overview(ctx, owner.ID)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if overview.Family.Name != "Keluarga" || len(overview.Members) != 2 {
		t.Errorf("overview = %+v", overview)
	}

	loner := env.user(t, "Andi", "andi@example.com", "")
	if _, err := env.family.Overview(ctx, loner.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("no family: got %v, want ErrNotFound", err)
	}
}
