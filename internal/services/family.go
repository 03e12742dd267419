package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"duitku/internal/core"
	"duitku/internal/log"
	"duitku/internal/storage"
)

// FamilyService manages sharing groups and resolves the visibility scope
// every aggregation query runs over.
type FamilyService struct {
	storage *storage.SQLiteRepository
	logger  *log.Logger
}

func NewFamilyService(storage *storage.SQLiteRepository, logger *log.Logger) *FamilyService {
	return &FamilyService{
		storage: storage,
		logger:  logger.WithComponent(log.ComponentFamily),
	}
}

// Scope returns the user IDs whose data the user may read: just themselves
// when they have no family, otherwise every current member of it.
func (s *FamilyService) Scope(ctx context.Context, userID int64) ([]int64, error) {
	user, err := s.storage.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve scope: %w", err)
	}
	if user.FamilyID == nil {
		return []int64{userID}, nil
	}

	members, err := s.storage.FamilyMembers(ctx, *user.FamilyID)
	if err != nil {
		return nil, fmt.Errorf("resolve scope: %w", err)
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	if len(ids) == 0 {
		// The user row says family but no member rows matched; fall back
		// to self so reads never come back empty-scoped.
		ids = []int64{userID}
	}
	return ids, nil
}

// Overview is a family together with its members.
type Overview struct {
	Family  core.Family
	Members []core.User
}

// Overview returns the caller's family and member list, or ErrNotFound when
// they have none.
func (s *FamilyService) Overview(ctx context.Context, userID int64) (Overview, error) {
	user, err := s.storage.GetUser(ctx, userID)
	if err != nil {
		return Overview{}, fmt.Errorf("family overview: %w", err)
	}
	if user.FamilyID == nil {
		return Overview{}, core.ErrNotFound
	}

	family, err := s.storage.GetFamily(ctx, *user.FamilyID)
	if err != nil {
		return Overview{}, fmt.Errorf("family overview: %w", err)
	}
	members, err := s.storage.FamilyMembers(ctx, family.ID)
	if err != nil {
		return Overview{}, fmt.Errorf("family overview: %w", err)
	}
	return Overview{Family: family, Members: members}, nil
}

// Create starts a new family owned by the caller. A user already in a
// family must leave first.
func (s *FamilyService) Create(ctx context.Context, userID int64, name string) (core.Family, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.Family{}, core.ErrEmptyName
	}

	user, err := s.storage.GetUser(ctx, userID)
	if err != nil {
		return core.Family{}, fmt.Errorf("create family: %w", err)
	}
	if user.FamilyID != nil {
		return core.Family{}, core.ErrForbidden
	}

	family, err := s.storage.CreateFamily(ctx, name, userID)
	if err != nil {
		return core.Family{}, fmt.Errorf("create family: %w", err)
	}

	s.logger.InfoContext(ctx, "Family created",
		log.FieldFamilyID, family.ID,
		log.FieldUserID, userID)
	return family, nil
}

// Join adds the caller to an existing family by name.
func (s *FamilyService) Join(ctx context.Context, userID int64, name string) (core.Family, error) {
	user, err := s.storage.GetUser(ctx, userID)
	if err != nil {
		return core.Family{}, fmt.Errorf("join family: %w", err)
	}
	if user.FamilyID != nil {
		return core.Family{}, core.ErrForbidden
	}

	family, err := s.storage.FindFamilyByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return core.Family{}, fmt.Errorf("join family: %w", err)
	}

	if err := s.storage.SetUserFamily(ctx, userID, &family.ID); err != nil {
		return core.Family{}, fmt.Errorf("join family: %w", err)
	}

	s.logger.InfoContext(ctx, "User joined family",
		log.FieldFamilyID, family.ID,
		log.FieldUserID, userID)
	return family, nil
}

// AddMember lets the owner pull an existing, family-less user into the
// group by email.
func (s *FamilyService) AddMember(ctx context.Context, ownerID int64, email string) (core.User, error) {
	owner, err := s.storage.GetUser(ctx, ownerID)
	if err != nil {
		return core.User{}, fmt.Errorf("add member: %w", err)
	}
	if owner.FamilyID == nil {
		return core.User{}, core.ErrNotFound
	}

	family, err := s.storage.GetFamily(ctx, *owner.FamilyID)
	if err != nil {
		return core.User{}, fmt.Errorf("add member: %w", err)
	}
	if family.OwnerID != ownerID {
		return core.User{}, core.ErrForbidden
	}

	target, err := s.storage.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return core.User{}, fmt.Errorf("add member: %w", err)
	}
	if target.FamilyID != nil {
		return core.User{}, core.ErrForbidden
	}

	if err := s.storage.SetUserFamily(ctx, target.ID, &family.ID); err != nil {
		return core.User{}, fmt.Errorf("add member: %w", err)
	}
	target.FamilyID = &family.ID

	s.logger.InfoContext(ctx, "Member added to family",
		log.FieldFamilyID, family.ID,
		log.FieldUserID, target.ID)
	return target, nil
}

// Leave detaches the caller from their family. The owner cannot leave; they
// would orphan the group.
func (s *FamilyService) Leave(ctx context.Context, userID int64) error {
	user, err := s.storage.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("leave family: %w", err)
	}
	if user.FamilyID == nil {
		return core.ErrNotFound
	}

	family, err := s.storage.GetFamily(ctx, *user.FamilyID)
	if err != nil {
		return fmt.Errorf("leave family: %w", err)
	}
	if family.OwnerID == userID {
		return core.ErrForbidden
	}

	if err := s.storage.SetUserFamily(ctx, userID, nil); err != nil {
		return fmt.Errorf("leave family: %w", err)
	}

	s.logger.InfoContext(ctx, "User left family",
		log.FieldFamilyID, family.ID,
		log.FieldUserID, userID)
	return nil
}

// RemoveMember lets the owner detach another member. Owners cannot remove
// themselves; that path is reserved for deleting the family.
func (s *FamilyService) RemoveMember(ctx context.Context, ownerID, memberID int64) error {
	owner, err := s.storage.GetUser(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	if owner.FamilyID == nil {
		return core.ErrNotFound
	}

	family, err := s.storage.GetFamily(ctx, *owner.FamilyID)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	if family.OwnerID != ownerID || memberID == ownerID {
		return core.ErrForbidden
	}

	member, err := s.storage.GetUser(ctx, memberID)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	if member.FamilyID == nil || *member.FamilyID != family.ID {
		return core.ErrNotFound
	}

	if err := s.storage.SetUserFamily(ctx, memberID, nil); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.ErrNotFound
		}
		return fmt.Errorf("remove member: %w", err)
	}

	s.logger.InfoContext(ctx, "Member removed from family",
		log.FieldFamilyID, family.ID,
		log.FieldUserID, memberID)
	return nil
}
