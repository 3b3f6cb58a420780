package user

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"techshop/domain"
	"techshop/pkg/logger"
	"techshop/pkg/utils"

	"github.com/go-playground/validator/v10"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id uint) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdateEmailVerification(ctx context.Context, id uint, isVerified bool) error
}

type Mailer interface {
	Send(ctx context.Context, email domain.Email) error
}

var (
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotVerified        = errors.New("email address has not been verified")
	ErrInvalidVerifyLink  = errors.New("invalid or expired url")
)

const (
	SubjectRegisterAccount   = "Activate Your Account!"
	EmailBodyRegisterAccount = `Hi %v, activate your TechShop account by opening the link below</br></br>%v</br>note: the link is valid for %v minutes`
)

type userService struct {
	users    UserRepository
	validate *validator.Validate
	mailer   Mailer
	codes    verifier
	baseURL  string
}

func NewUserService(
	users UserRepository,
	validate *validator.Validate,
	mailer Mailer,
	verificationKey string,
	baseURL string,
) *userService {
	return &userService{
		users:    users,
		validate: validate,
		mailer:   mailer,
		codes:    verifier{key: []byte(verificationKey), ttl: verificationTTL, now: time.Now},
		baseURL:  baseURL,
	}
}

func (s *userService) checkEmail(email string) error {
	if err := s.validate.Var(email, "required,email"); err != nil {
		return domain.Invalid("invalid email format")
	}
	return nil
}

func (s *userService) hashPassword(password string) (string, error) {
	if err := s.validate.Var(password, "required,min=6"); err != nil {
		return "", domain.Invalid("password must be at least 6 characters")
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		logger.Error("failed to hash password", err)
		return "", errors.New("failed to hash password")
	}
	return string(hash), nil
}

// emailTaken reports whether another account already owns the address.
func (s *userService) emailTaken(ctx context.Context, email string, self uint) bool {
	owner, err := s.users.FindByEmail(ctx, email)
	return err == nil && owner.ID > 0 && owner.ID != self
}

// Register creates an unverified customer account and mails the activation
// link. A failed email does not fail registration.
func (s *userService) Register(ctx context.Context, input *domain.User) (domain.User, error) {
	if err := s.checkEmail(input.Email); err != nil {
		return domain.User{}, err
	}
	hash, err := s.hashPassword(input.Password)
	if err != nil {
		return domain.User{}, err
	}
	if s.emailTaken(ctx, input.Email, 0) {
		return domain.User{}, ErrEmailExists
	}

	account := domain.User{
		FullName: input.FullName,
		Email:    input.Email,
		Password: hash,
		Role:     domain.UserRoleCustomer,
	}
	if err := s.users.Create(ctx, &account); err != nil {
		logger.Error("failed to create user", "email", account.Email, "error", err)
		return domain.User{}, err
	}

	if err := s.sendActivation(ctx, account); err != nil {
		logger.Warn("failed to send verification email", "user_id", account.ID, "error", err)
	}

	account.Password = ""
	return account, nil
}

func (s *userService) sendActivation(ctx context.Context, account domain.User) error {
	code, err := s.codes.issue(account.Email)
	if err != nil {
		return err
	}

	link := s.baseURL + "/api/v1/users/email-verification?code=" + url.QueryEscape(code)
	return s.mailer.Send(ctx, domain.Email{
		ToName:    account.FullName,
		ToAddress: account.Email,
		Subject:   SubjectRegisterAccount,
		Text:      fmt.Sprintf(EmailBodyRegisterAccount, account.FullName, link, int(s.codes.ttl/time.Minute)),
	})
}

// Login returns a signed JWT carrying the user's id and role.
func (s *userService) Login(ctx context.Context, email, password string) (string, domain.User, error) {
	account, err := s.users.FindByEmail(ctx, email)
	if err != nil || !utils.CheckPassword(password, account.Password) {
		logger.Warn("login rejected", "email", email)
		return "", domain.User{}, ErrInvalidCredentials
	}
	if !account.IsVerified {
		return "", domain.User{}, ErrNotVerified
	}

	token, err := utils.GenerateJWT(strconv.FormatUint(uint64(account.ID), 10), account.Role)
	if err != nil {
		logger.Error("failed to sign token", err)
		return "", domain.User{}, errors.New("failed to generate token")
	}

	account.Password = ""
	return token, account, nil
}

// VerifyEmail marks the account behind a code as verified. Codes are single
// use: verifying an already verified account fails.
func (s *userService) VerifyEmail(ctx context.Context, code string) error {
	email, err := s.codes.open(code)
	if err != nil {
		return err
	}

	account, err := s.users.FindByEmail(ctx, email)
	if err != nil || account.IsVerified {
		return ErrInvalidVerifyLink
	}

	if err := s.users.UpdateEmailVerification(ctx, account.ID, true); err != nil {
		logger.Error("failed to mark email verified", "user_id", account.ID, "error", err)
		return err
	}
	return nil
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (domain.User, error) {
	account, err := s.users.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	account.Password = ""
	return account, nil
}

func (s *userService) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	accounts, err := s.users.FindAll(ctx)
	if err != nil {
		logger.Error("failed to list users", err)
		return nil, err
	}
	for i := range accounts {
		accounts[i].Password = ""
	}
	return accounts, nil
}

// UpdateUser applies the non-empty fields of patch to the account.
func (s *userService) UpdateUser(ctx context.Context, id uint, patch *domain.User) (domain.User, error) {
	account, err := s.users.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	if patch.FullName != "" {
		account.FullName = patch.FullName
	}
	if patch.Email != "" && patch.Email != account.Email {
		if err := s.checkEmail(patch.Email); err != nil {
			return domain.User{}, err
		}
		if s.emailTaken(ctx, patch.Email, id) {
			return domain.User{}, ErrEmailExists
		}
		account.Email = patch.Email
	}
	if patch.Password != "" {
		hash, err := s.hashPassword(patch.Password)
		if err != nil {
			return domain.User{}, err
		}
		account.Password = hash
	}

	if err := s.users.Update(ctx, &account); err != nil {
		logger.Error("failed to update user", "user_id", id, "error", err)
		return domain.User{}, err
	}

	account.Password = ""
	return account, nil
}
