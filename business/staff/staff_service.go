package staff

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"techshop/domain"
	"techshop/pkg/logger"

	"github.com/google/uuid"
)

type StaffRepository interface {
	Create(ctx context.Context, profile *domain.StaffProfile) error
	FindByID(ctx context.Context, id uint) (domain.StaffProfile, error)
	FindByUserID(ctx context.Context, userID uint) (domain.StaffProfile, error)
	FindAll(ctx context.Context) ([]domain.StaffProfile, error)
	Save(ctx context.Context, profile *domain.StaffProfile) error
}

type UserRepository interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	UpdateRole(ctx context.Context, id uint, role string) error
}

type ActivityRepository interface {
	Record(ctx context.Context, entry domain.ActivityLog) error
	List(ctx context.Context, filter domain.ActivityFilter) ([]domain.ActivityLog, int64, error)
}

var (
	ErrAlreadyStaff  = errors.New("user already has a staff profile")
	ErrNotSwitched   = errors.New("role is not switched")
	ErrSuperAdminReq = errors.New("only super admins can switch roles")
)

type CreateStaffInput struct {
	Email      string
	Role       domain.Role
	Department string
	Phone      string
}

type staffService struct {
	staffRepo    StaffRepository
	userRepo     UserRepository
	activityRepo ActivityRepository
}

func NewStaffService(staffRepo StaffRepository, userRepo UserRepository, activityRepo ActivityRepository) *staffService {
	return &staffService{
		staffRepo:    staffRepo,
		userRepo:     userRepo,
		activityRepo: activityRepo,
	}
}

func newEmployeeID() string {
	return "EMP-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
}

func (s *staffService) record(ctx context.Context, entry domain.ActivityLog) {
	if err := s.activityRepo.Record(ctx, entry); err != nil {
		logger.Warn("failed to record activity", err)
	}
}

// GetProfile loads the staff profile for a user; non-staff get ErrStaffNotFound.
func (s *staffService) GetProfile(ctx context.Context, userID uint) (domain.StaffProfile, error) {
	return s.staffRepo.FindByUserID(ctx, userID)
}

func (s *staffService) ListStaff(ctx context.Context) ([]domain.StaffProfile, error) {
	profiles, err := s.staffRepo.FindAll(ctx)
	if err != nil {
		logger.Error("failed to list staff", err)
		return nil, err
	}

	return profiles, nil
}

func (s *staffService) CreateStaff(ctx context.Context, actor domain.Actor, in CreateStaffInput) (domain.StaffProfile, error) {
	if !in.Role.Valid() || in.Role == domain.RoleCustomer {
		return domain.StaffProfile{}, domain.ErrInvalidRole
	}

	user, err := s.userRepo.FindByEmail(ctx, strings.TrimSpace(in.Email))
	if err != nil {
		return domain.StaffProfile{}, err
	}

	if _, err := s.staffRepo.FindByUserID(ctx, user.ID); err == nil {
		return domain.StaffProfile{}, ErrAlreadyStaff
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.StaffProfile{}, err
	}

	profile := domain.StaffProfile{
		UserID:      user.ID,
		Role:        in.Role,
		Department:  in.Department,
		Phone:       in.Phone,
		EmployeeID:  newEmployeeID(),
		IsActive:    true,
		Permissions: domain.RolePermissions(in.Role),
	}

	if err := s.staffRepo.Create(ctx, &profile); err != nil {
		logger.Error("failed to create staff profile", err)
		return domain.StaffProfile{}, fmt.Errorf("failed to create staff profile: %w", err)
	}

	if err := s.userRepo.UpdateRole(ctx, user.ID, domain.UserRoleStaff); err != nil {
		logger.Error("failed to promote user to staff", err)
		return domain.StaffProfile{}, err
	}

	s.record(ctx, actor.Log(domain.ActionCreate, "StaffProfile", strconv.FormatUint(uint64(profile.ID), 10),
		fmt.Sprintf("Created staff %s as %s", user.Email, in.Role), nil))

	logger.Info("staff profile created", "employee_id", profile.EmployeeID, "role", in.Role)

	return profile, nil
}

// UpdateRole changes the role and resets the permission flags to the role's defaults.
func (s *staffService) UpdateRole(ctx context.Context, actor domain.Actor, staffID uint, role domain.Role) (domain.StaffProfile, error) {
	if !role.Valid() || role == domain.RoleCustomer {
		return domain.StaffProfile{}, domain.ErrInvalidRole
	}

	profile, err := s.staffRepo.FindByID(ctx, staffID)
	if err != nil {
		return domain.StaffProfile{}, err
	}

	old := profile.Role
	profile.Role = role
	profile.Permissions = domain.RolePermissions(role)
	profile.IsSwitched = false
	profile.OriginalRole = ""

	if err := s.staffRepo.Save(ctx, &profile); err != nil {
		logger.Error("failed to update staff role", err)
		return domain.StaffProfile{}, err
	}

	s.record(ctx, actor.Log(domain.ActionUpdate, "StaffProfile", strconv.FormatUint(uint64(staffID), 10),
		"Changed role", map[string]any{"old": string(old), "new": string(role)}))

	return profile, nil
}

func (s *staffService) SetPermissions(ctx context.Context, actor domain.Actor, staffID uint, perms domain.Permissions) (domain.StaffProfile, error) {
	profile, err := s.staffRepo.FindByID(ctx, staffID)
	if err != nil {
		return domain.StaffProfile{}, err
	}

	profile.Permissions = perms

	if err := s.staffRepo.Save(ctx, &profile); err != nil {
		logger.Error("failed to update staff permissions", err)
		return domain.StaffProfile{}, err
	}

	s.record(ctx, actor.Log(domain.ActionUpdate, "StaffProfile", strconv.FormatUint(uint64(staffID), 10), "Overrode permissions", nil))

	return profile, nil
}

func (s *staffService) SetActive(ctx context.Context, actor domain.Actor, staffID uint, active bool) (domain.StaffProfile, error) {
	profile, err := s.staffRepo.FindByID(ctx, staffID)
	if err != nil {
		return domain.StaffProfile{}, err
	}

	if profile.UserID == actor.UserID && !active {
		return domain.StaffProfile{}, domain.Invalid("you cannot deactivate yourself")
	}

	profile.IsActive = active

	if err := s.staffRepo.Save(ctx, &profile); err != nil {
		logger.Error("failed to update staff status", err)
		return domain.StaffProfile{}, err
	}

	desc := "Activated staff"
	if !active {
		desc = "Deactivated staff"
	}
	s.record(ctx, actor.Log(domain.ActionUpdate, "StaffProfile", strconv.FormatUint(uint64(staffID), 10), desc, nil))

	return profile, nil
}

// SwitchRole lets a super admin act as another role. The original role is
// kept so SwitchBack can restore it.
func (s *staffService) SwitchRole(ctx context.Context, actor domain.Actor, role domain.Role) (domain.StaffProfile, error) {
	if !role.Valid() || role == domain.RoleCustomer {
		return domain.StaffProfile{}, domain.ErrInvalidRole
	}

	profile, err := s.staffRepo.FindByUserID(ctx, actor.UserID)
	if err != nil {
		return domain.StaffProfile{}, err
	}

	if !profile.IsSuperAdmin() {
		return domain.StaffProfile{}, ErrSuperAdminReq
	}

	if !profile.IsSwitched {
		profile.OriginalRole = profile.Role
	}
	profile.Role = role
	profile.Permissions = domain.RolePermissions(role)
	profile.IsSwitched = role != profile.OriginalRole
	if !profile.IsSwitched {
		profile.OriginalRole = ""
	}

	if err := s.staffRepo.Save(ctx, &profile); err != nil {
		return domain.StaffProfile{}, err
	}

	s.record(ctx, actor.Log(domain.ActionSwitchRole, "StaffProfile", strconv.FormatUint(uint64(profile.ID), 10),
		"Switched role to "+string(role), nil))

	return profile, nil
}

func (s *staffService) SwitchBack(ctx context.Context, actor domain.Actor) (domain.StaffProfile, error) {
	profile, err := s.staffRepo.FindByUserID(ctx, actor.UserID)
	if err != nil {
		return domain.StaffProfile{}, err
	}

	if !profile.IsSwitched || profile.OriginalRole == "" {
		return domain.StaffProfile{}, ErrNotSwitched
	}

	profile.Role = profile.OriginalRole
	profile.Permissions = domain.RolePermissions(profile.Role)
	profile.OriginalRole = ""
	profile.IsSwitched = false

	if err := s.staffRepo.Save(ctx, &profile); err != nil {
		return domain.StaffProfile{}, err
	}

	s.record(ctx, actor.Log(domain.ActionSwitchRole, "StaffProfile", strconv.FormatUint(uint64(profile.ID), 10),
		"Switched back to "+string(profile.Role), nil))

	return profile, nil
}

func (s *staffService) ListActivity(ctx context.Context, filter domain.ActivityFilter) ([]domain.ActivityLog, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 50
	}

	return s.activityRepo.List(ctx, filter)
}
