//go:build !integration

package user

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"techshop/domain"
	"techshop/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	verificationKey = "0123456789abcdef"
	deploymentURL   = "http://shop.test"
)

type fakeUsers struct {
	byID   map[uint]domain.User
	nextID uint
}

func (f *fakeUsers) Create(_ context.Context, u *domain.User) error {
	f.nextID++
	u.ID = f.nextID
	f.byID[u.ID] = *u
	return nil
}

func (f *fakeUsers) FindByID(_ context.Context, id uint) (domain.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (domain.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (f *fakeUsers) FindAll(context.Context) ([]domain.User, error) {
	out := []domain.User{}
	for _, u := range f.byID {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUsers) Update(_ context.Context, u *domain.User) error {
	f.byID[u.ID] = *u
	return nil
}

func (f *fakeUsers) UpdateEmailVerification(_ context.Context, id uint, isVerified bool) error {
	u := f.byID[id]
	u.IsVerified = isVerified
	f.byID[id] = u
	return nil
}

type mailbox struct {
	bodies []string
	fail   bool
}

func (m *mailbox) Send(_ context.Context, email domain.Email) error {
	if m.fail {
		return errors.New("mailjet unavailable")
	}
	m.bodies = append(m.bodies, email.Text)
	return nil
}

func setup() (*userService, *fakeUsers, *mailbox) {
	utils.ConfigureJWT("user-test-secret", time.Hour)
	repo := &fakeUsers{byID: map[uint]domain.User{}}
	mail := &mailbox{}
	return NewUserService(repo, validator.New(), mail, verificationKey, deploymentURL), repo, mail
}

func verificationCode(t *testing.T, body string) string {
	t.Helper()

	start := strings.Index(body, deploymentURL)
	require.GreaterOrEqual(t, start, 0)
	link := body[start:]
	link = link[:strings.Index(link, "</br>")]

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/users/email-verification", u.Path)
	return u.Query().Get("code")
}

func TestRegisterVerifyLogin(t *testing.T) {
	svc, repo, mail := setup()
	ctx := context.Background()

	created, err := svc.Register(ctx, &domain.User{FullName: "Ana", Email: "ana@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Empty(t, created.Password)
	assert.Equal(t, domain.UserRoleCustomer, created.Role)
	assert.NotEqual(t, "hunter22", repo.byID[created.ID].Password)

	_, _, err = svc.Login(ctx, "ana@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrNotVerified)

	require.Len(t, mail.bodies, 1)
	code := verificationCode(t, mail.bodies[0])
	require.NoError(t, svc.VerifyEmail(ctx, code))
	assert.ErrorIs(t, svc.VerifyEmail(ctx, code), ErrInvalidVerifyLink)

	_, _, err = svc.Login(ctx, "ana@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	token, user, err := svc.Login(ctx, "ana@example.com", "hunter22")
	require.NoError(t, err)
	assert.Empty(t, user.Password)

	claims, err := utils.ParseJWT(token)
	require.NoError(t, err)
	assert.Equal(t, domain.UserRoleCustomer, claims.Role)
}

func TestRegisterRejects(t *testing.T) {
	svc, _, _ := setup()
	ctx := context.Background()

	_, err := svc.Register(ctx, &domain.User{Email: "not-an-email", Password: "hunter22"})
	var validationErr *domain.ValidationError
	assert.True(t, errors.As(err, &validationErr))

	_, err = svc.Register(ctx, &domain.User{Email: "bo@example.com", Password: "123"})
	assert.True(t, errors.As(err, &validationErr))

	_, err = svc.Register(ctx, &domain.User{Email: "bo@example.com", Password: "hunter22"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, &domain.User{Email: "bo@example.com", Password: "hunter22"})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestRegisterSurvivesMailFailure(t *testing.T) {
	svc, _, mail := setup()
	mail.fail = true

	_, err := svc.Register(context.Background(), &domain.User{Email: "cy@example.com", Password: "hunter22"})
	assert.NoError(t, err)
}

func TestVerifyEmailGarbage(t *testing.T) {
	svc, _, _ := setup()

	assert.ErrorIs(t, svc.VerifyEmail(context.Background(), "bm90LWEtY29kZQ=="), ErrInvalidVerifyLink)
}

func TestVerificationCodeExpires(t *testing.T) {
	issued := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := issued
	v := verifier{key: []byte(verificationKey), ttl: verificationTTL, now: func() time.Time { return clock }}

	code, err := v.issue("dee@example.com")
	require.NoError(t, err)

	email, err := v.open(code)
	require.NoError(t, err)
	assert.Equal(t, "dee@example.com", email)

	clock = issued.Add(verificationTTL + time.Second)
	_, err = v.open(code)
	assert.ErrorIs(t, err, ErrInvalidVerifyLink)
}

func TestVerificationCodeRoundTripAcrossEmails(t *testing.T) {
	v := verifier{key: []byte(verificationKey), ttl: verificationTTL, now: time.Now}

	for _, email := range []string{
		"a@b.co",
		"ana@example.com",
		"first.last@shop.example.org",
		"a.very.long.customer.address+orders@subdomain.example-store.com",
	} {
		code, err := v.issue(email)
		require.NoError(t, err)

		got, err := v.open(code)
		require.NoError(t, err, email)
		assert.Equal(t, email, got)
	}
}

func TestUpdateUser(t *testing.T) {
	svc, repo, _ := setup()
	ctx := context.Background()

	ana, err := svc.Register(ctx, &domain.User{FullName: "Ana", Email: "ana@example.com", Password: "hunter22"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, &domain.User{FullName: "Bo", Email: "bo@example.com", Password: "hunter22"})
	require.NoError(t, err)

	_, err = svc.UpdateUser(ctx, ana.ID, &domain.User{Email: "bo@example.com"})
	assert.ErrorIs(t, err, ErrEmailExists)

	updated, err := svc.UpdateUser(ctx, ana.ID, &domain.User{FullName: "Ana Lee", Password: "longer-pass"})
	require.NoError(t, err)
	assert.Equal(t, "Ana Lee", updated.FullName)
	assert.Empty(t, updated.Password)
	assert.True(t, utils.CheckPassword("longer-pass", repo.byID[ana.ID].Password))
}
