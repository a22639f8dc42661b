package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/tokens"
)

// RegisterCustomerInput is the storefront sign-up payload.
type RegisterCustomerInput struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"omitempty,max=50"`
	Password  string `json:"password" validate:"required,min=6"`
	Address   string `json:"address" validate:"omitempty,max=255"`
	City      string `json:"city" validate:"omitempty,max=100"`
	ZipCode   string `json:"zipCode" validate:"omitempty,max=20"`
}

// CustomerLoginInput holds customer credentials.
type CustomerLoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateCustomerInput is a partial profile update. Nil fields are left
// unchanged; email and password are not editable here.
type UpdateCustomerInput struct {
	FirstName *string `json:"firstName" validate:"omitnil,min=1,max=100"`
	LastName  *string `json:"lastName" validate:"omitnil,min=1,max=100"`
	Phone     *string `json:"phone" validate:"omitempty,max=50"`
	Address   *string `json:"address" validate:"omitempty,max=255"`
	City      *string `json:"city" validate:"omitempty,max=100"`
	ZipCode   *string `json:"zipCode" validate:"omitempty,max=20"`
}

// CustomerAuth is returned by customer register and login. ExpiresIn is the
// token lifetime in seconds.
type CustomerAuth struct {
	AccessToken string           `json:"access_token"`
	ExpiresIn   int64            `json:"expires_in"`
	User        *models.Customer `json:"user"`
}

// CustomerService handles storefront customer accounts.
type CustomerService struct {
	customers repositories.CustomerRepository
	sequences repositories.SequenceRepository
	issuer    *tokens.Issuer
}

// NewCustomerService creates a new CustomerService.
func NewCustomerService(customers repositories.CustomerRepository, sequences repositories.SequenceRepository, issuer *tokens.Issuer) *CustomerService {
	return &CustomerService{
		customers: customers,
		sequences: sequences,
		issuer:    issuer,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a customer account. Emails are stored lowercased.
func (s *CustomerService) Register(ctx context.Context, in RegisterCustomerInput) (*CustomerAuth, error) {
	email := normalizeEmail(in.Email)
	exists, err := s.customers.ExistsEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: email %s is already registered", models.ErrConflict, email)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	id, err := s.sequences.Next(ctx, repositories.SeqCustomers)
	if err != nil {
		return nil, err
	}

	customer := &models.Customer{
		ID:        id,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     email,
		Phone:     in.Phone,
		Password:  string(hashed),
		IsActive:  true,
		Address:   in.Address,
		City:      in.City,
		ZipCode:   in.ZipCode,
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, err
	}
	return s.authResult(customer)
}

// Login checks the credentials of an active customer and returns a token.
func (s *CustomerService) Login(ctx context.Context, in CustomerLoginInput) (*CustomerAuth, error) {
	customer, err := s.customers.GetByEmailWithPassword(ctx, normalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if !customer.IsActive {
		return nil, errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(customer.Password), []byte(in.Password)); err != nil {
		return nil, errInvalidCredentials
	}

	now := time.Now()
	if err := s.customers.TouchLogin(ctx, customer.ID, now); err != nil {
		return nil, err
	}
	customer.LastLoginAt = &now
	return s.authResult(customer)
}

func (s *CustomerService) authResult(customer *models.Customer) (*CustomerAuth, error) {
	token, err := s.issuer.IssueCustomer(customer)
	if err != nil {
		return nil, err
	}
	customer.Password = ""
	return &CustomerAuth{
		AccessToken: token,
		ExpiresIn:   int64(s.issuer.TTL().Seconds()),
		User:        customer,
	}, nil
}

// Authenticate resolves a customer bearer token to the active customer.
func (s *CustomerService) Authenticate(ctx context.Context, token string) (*models.Customer, error) {
	claims, err := s.issuer.Parse(token)
	if err != nil {
		return nil, err
	}
	if claims.Kind != tokens.KindCustomer {
		return nil, fmt.Errorf("%w: not a customer token", models.ErrUnauthorized)
	}
	customer, err := s.customers.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown customer", models.ErrUnauthorized)
		}
		return nil, err
	}
	if !customer.IsActive {
		return nil, fmt.Errorf("%w: customer is inactive", models.ErrUnauthorized)
	}
	return customer, nil
}

// FindByID returns a customer without the password hash.
func (s *CustomerService) FindByID(ctx context.Context, id uint64) (*models.Customer, error) {
	return s.customers.GetByID(ctx, id)
}

// FindAll returns the active customers, newest first.
func (s *CustomerService) FindAll(ctx context.Context) ([]models.Customer, error) {
	return s.customers.ListActive(ctx)
}

// UpdateProfile changes the contact details of a customer.
func (s *CustomerService) UpdateProfile(ctx context.Context, id uint64, in UpdateCustomerInput) (*models.Customer, error) {
	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, f := range []struct {
		dst *string
		src *string
	}{
		{&customer.FirstName, in.FirstName},
		{&customer.LastName, in.LastName},
		{&customer.Phone, in.Phone},
		{&customer.Address, in.Address},
		{&customer.City, in.City},
		{&customer.ZipCode, in.ZipCode},
	} {
		if f.src != nil {
			*f.dst = *f.src
		}
	}
	if err := s.customers.Update(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}
