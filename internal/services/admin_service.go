package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/tokens"
)

// RegisterAdminInput is the payload accepted when creating an admin.
type RegisterAdminInput struct {
	Username    string           `json:"username" validate:"required,min=3,max=100"`
	Email       string           `json:"email" validate:"required,email"`
	Password    string           `json:"password" validate:"required,min=6"`
	FullName    string           `json:"fullName" validate:"required,max=200"`
	Role        models.AdminRole `json:"role" validate:"omitempty,oneof=super_admin product_manager content_manager"`
	Permissions []string         `json:"permissions" validate:"omitempty,dive,permission"`
}

// LoginInput holds admin credentials.
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateAdminInput is a partial update. Nil fields are left unchanged.
type UpdateAdminInput struct {
	FullName    *string           `json:"fullName" validate:"omitempty,min=1,max=200"`
	Email       *string           `json:"email" validate:"omitempty,email"`
	Role        *models.AdminRole `json:"role" validate:"omitempty,oneof=super_admin product_manager content_manager"`
	Permissions []string          `json:"permissions" validate:"omitempty,dive,permission"`
}

// AdminAuth is returned by register and login. ExpiresIn is the token
// lifetime in seconds.
type AdminAuth struct {
	Token     string        `json:"token"`
	ExpiresIn int64         `json:"expiresIn"`
	Admin     *models.Admin `json:"admin"`
}

// AdminService handles admin accounts and their tokens.
type AdminService struct {
	admins    repositories.AdminRepository
	sequences repositories.SequenceRepository
	issuer    *tokens.Issuer
	audit     *AuditService
}

// NewAdminService creates a new AdminService. audit may be nil.
func NewAdminService(admins repositories.AdminRepository, sequences repositories.SequenceRepository, issuer *tokens.Issuer, audit *AuditService) *AdminService {
	return &AdminService{
		admins:    admins,
		sequences: sequences,
		issuer:    issuer,
		audit:     audit,
	}
}

var errInvalidCredentials = fmt.Errorf("%w: Invalid credentials", models.ErrUnauthorized)

// CanRegister decides whether caller may create an admin. Without any admin
// in the store anyone may register the first one; afterwards only admins
// with admins.manage can.
func (s *AdminService) CanRegister(ctx context.Context, caller *models.Admin) (bootstrap bool, err error) {
	count, err := s.admins.Count(ctx)
	if err != nil {
		return false, err
	}
	if count == 0 {
		return true, nil
	}
	if caller == nil {
		return false, fmt.Errorf("%w: an admin token is required", models.ErrUnauthorized)
	}
	if !caller.HasPermission(models.PermAdminsManage) {
		return false, fmt.Errorf("%w: missing permission %s", models.ErrForbidden, models.PermAdminsManage)
	}
	return false, nil
}

// Register creates an admin and returns a token for it. The first admin
// ever registered becomes a super admin.
func (s *AdminService) Register(ctx context.Context, caller *models.Admin, in RegisterAdminInput) (*AdminAuth, error) {
	bootstrap, err := s.CanRegister(ctx, caller)
	if err != nil {
		return nil, err
	}

	exists, err := s.admins.ExistsUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: username or email already exists", models.ErrConflict)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := in.Role
	if role == "" {
		role = models.RoleProductManager
	}
	if bootstrap {
		role = models.RoleSuperAdmin
	}
	perms := in.Permissions
	if len(perms) == 0 {
		perms = models.DefaultPermissions(role)
	}

	id, err := s.sequences.Next(ctx, repositories.SeqAdmins)
	if err != nil {
		return nil, err
	}
	admin := &models.Admin{
		ID:          id,
		Username:    in.Username,
		Email:       in.Email,
		Password:    string(hashed),
		FullName:    in.FullName,
		Role:        role,
		Permissions: models.StringList(perms),
		IsActive:    true,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		return nil, err
	}

	actor := Actor{ID: admin.ID, Username: admin.Username}
	if caller != nil {
		actor = Actor{ID: caller.ID, Username: caller.Username}
	}
	log.WithFields(log.Fields{"admin_id": admin.ID, "role": role, "bootstrap": bootstrap}).Info("Admin registered")
	s.record(ctx, actor, "admin.create", admin.ID, admin.Username)

	return s.authResult(admin)
}

// Login checks the credentials of an active admin and returns a token.
func (s *AdminService) Login(ctx context.Context, in LoginInput) (*AdminAuth, error) {
	admin, err := s.admins.GetByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if !admin.IsActive {
		return nil, errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(in.Password)); err != nil {
		return nil, errInvalidCredentials
	}

	now := time.Now()
	admin.LastLoginAt = &now
	if err := s.admins.Update(ctx, admin); err != nil {
		return nil, err
	}
	return s.authResult(admin)
}

func (s *AdminService) authResult(admin *models.Admin) (*AdminAuth, error) {
	token, err := s.issuer.IssueAdmin(admin)
	if err != nil {
		return nil, err
	}
	return &AdminAuth{
		Token:     token,
		ExpiresIn: int64(s.issuer.TTL().Seconds()),
		Admin:     admin,
	}, nil
}

// FindAll returns the active admins, newest first.
func (s *AdminService) FindAll(ctx context.Context) ([]models.Admin, error) {
	return s.admins.ListActive(ctx)
}

// FindByID returns an active admin.
func (s *AdminService) FindByID(ctx context.Context, id uint64) (*models.Admin, error) {
	admin, err := s.admins.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !admin.IsActive {
		return nil, fmt.Errorf("%w: admin with id %d", models.ErrNotFound, id)
	}
	return admin, nil
}

// Update changes profile, role or permissions of an admin. Emails stay
// unique across admins. A role change without explicit permissions resets
// the permissions to the new role's defaults.
func (s *AdminService) Update(ctx context.Context, actor Actor, id uint64, in UpdateAdminInput) (*models.Admin, error) {
	admin, err := s.admins.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Email != nil && *in.Email != admin.Email {
		exists, err := s.admins.ExistsEmail(ctx, *in.Email, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("%w: email already exists", models.ErrConflict)
		}
		admin.Email = *in.Email
	}
	if in.FullName != nil {
		admin.FullName = *in.FullName
	}
	if in.Role != nil && *in.Role != admin.Role {
		admin.Role = *in.Role
		if in.Permissions == nil {
			admin.Permissions = models.StringList(models.DefaultPermissions(admin.Role))
		}
	}
	if in.Permissions != nil {
		admin.Permissions = models.StringList(in.Permissions)
	}

	if err := s.admins.Update(ctx, admin); err != nil {
		return nil, err
	}
	s.record(ctx, actor, "admin.update", id, "")
	return admin, nil
}

// Delete deactivates an admin. Admins cannot deactivate themselves.
func (s *AdminService) Delete(ctx context.Context, actor Actor, id uint64) error {
	if actor.ID == id {
		return fmt.Errorf("%w: admins cannot deactivate their own account", models.ErrValidation)
	}
	admin, err := s.admins.GetByID(ctx, id)
	if err != nil {
		return err
	}
	admin.IsActive = false
	if err := s.admins.Update(ctx, admin); err != nil {
		return err
	}
	s.record(ctx, actor, "admin.delete", id, admin.Username)
	return nil
}

// ValidateToken resolves an admin bearer token to the stored, active admin.
func (s *AdminService) ValidateToken(ctx context.Context, token string) (*models.Admin, error) {
	claims, err := s.issuer.Parse(token)
	if err != nil {
		return nil, err
	}
	if claims.Kind != tokens.KindAdmin {
		return nil, fmt.Errorf("%w: not an admin token", models.ErrUnauthorized)
	}
	admin, err := s.admins.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown admin", models.ErrUnauthorized)
		}
		return nil, err
	}
	if !admin.IsActive {
		return nil, fmt.Errorf("%w: admin is inactive", models.ErrUnauthorized)
	}
	return admin, nil
}

func (s *AdminService) record(ctx context.Context, actor Actor, action string, id uint64, detail string) {
	if s.audit != nil {
		s.audit.Record(ctx, actor, action, "admin", id, detail)
	}
}
