package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/photovault/internal/common"
	"github.com/dmitrijs2005/photovault/internal/gateway"
	"github.com/dmitrijs2005/photovault/internal/logging"
	"github.com/dmitrijs2005/photovault/internal/models"
	"github.com/dmitrijs2005/photovault/internal/shared"
	"github.com/dmitrijs2005/photovault/internal/store"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const (
	// ResetCode is the fixed verification code accepted by the reset flow.
	// No code is actually delivered anywhere.
	ResetCode = "123456"

	TemporaryPasswordLength   = 8
	TemporaryPasswordValidity = 10 * time.Minute
	MinPasswordLength         = 6
)

// AccountInput carries the signup and customer form fields.
type AccountInput struct {
	Name          string
	Email         string
	Password      string
	CPF           string
	CNPJ          string
	RG            string
	Endereco      string
	Telefone      string
	Plan          models.Plan
	BillingCycle  models.BillingCycle
	PaymentMethod models.PaymentMethod
	AccountStatus models.AccountStatus
}

func (in *AccountInput) applyDefaults() {
	if in.Plan == "" {
		in.Plan = models.PlanEssencial
	}
	if in.BillingCycle == "" {
		in.BillingCycle = models.BillingMonthly
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = models.PaymentPix
	}
	if in.AccountStatus == "" {
		in.AccountStatus = models.StatusActive
	}
}

func (in *AccountInput) validate(passwordRequired bool) error {
	return validation.ValidateStruct(in,
		validation.Field(&in.Name, validation.Required),
		validation.Field(&in.Email, validation.Required, is.EmailFormat),
		validation.Field(&in.Password,
			validation.When(passwordRequired, validation.Required),
			validation.Length(MinPasswordLength, 0),
		),
		validation.Field(&in.CPF, validation.When(in.CNPJ == "", validation.Required.Error("CPF or CNPJ is required"))),
		validation.Field(&in.Endereco, validation.Required),
		validation.Field(&in.Telefone, validation.Required),
		validation.Field(&in.Plan, validation.In(models.PlanEssencial, models.PlanPro, models.PlanStudio)),
		validation.Field(&in.BillingCycle, validation.In(models.BillingMonthly, models.BillingSemiannual, models.BillingAnnual)),
		validation.Field(&in.PaymentMethod, validation.In(models.PaymentBoleto, models.PaymentCard, models.PaymentPix)),
		validation.Field(&in.AccountStatus, validation.In(models.StatusActive, models.StatusInactive, models.StatusCancelled)),
	)
}

func (in AccountInput) profile() models.SetProfile {
	return models.SetProfile{
		Name:     in.Name,
		Email:    in.Email,
		CPF:      in.CPF,
		CNPJ:     in.CNPJ,
		RG:       in.RG,
		Endereco: in.Endereco,
		Telefone: in.Telefone,
	}
}

// LoginResult is a successful login. ResetRequired is set when the user
// signed in with a temporary password and must choose a new one.
type LoginResult struct {
	User          models.User
	ResetRequired bool
}

type UserService struct {
	store   *store.Store
	gateway gateway.Gateway
	logger  logging.Logger
}

// NewUserService builds the account service. gw is used only to clean up the
// objects of deleted users and may be nil.
func NewUserService(s *store.Store, gw gateway.Gateway, l logging.Logger) *UserService {
	return &UserService{store: s, gateway: gw, logger: l.With("module", "users")}
}

// Seed creates the default admin and sample customer when no user exists.
// It reports whether anything was written.
func (s *UserService) Seed(ctx context.Context) (bool, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return false, err
	}
	if len(users) > 0 {
		return false, nil
	}

	created := timestamp()
	admin := models.User{
		ID:        newID(),
		Email:     "admin@revastudio.com",
		Password:  "admin123",
		Name:      "Administrador",
		Role:      models.RoleAdmin,
		Plan:      models.PlanStudio,
		CreatedAt: created,
	}
	customer := models.User{
		ID:            newID(),
		Email:         "contato@teacherkarololiveira.org",
		Password:      "123456",
		Name:          "Karoline de Oliveira",
		Role:          models.RoleUser,
		Plan:          models.PlanEssencial,
		CreatedAt:     created,
		CNPJ:          "42.070.149/0001-97",
		Telefone:      "27 99999-2732",
		Endereco:      "Avenida Barao Rio Branco, 812, Interlagos, Linhares - ES, CEP: 29903-066",
		PlanType:      models.BillingMonthly,
		PaymentMethod: models.PaymentPix,
		AccountStatus: models.StatusActive,
	}

	if err := s.store.SaveUsers(ctx, []models.User{admin, customer}); err != nil {
		return false, err
	}
	s.logger.Info(ctx, "seeded default users")
	return true, nil
}

func newAccount(in AccountInput) models.User {
	created := timestamp()
	return models.User{
		ID:            newID(),
		Email:         in.Email,
		Password:      in.Password,
		Name:          in.Name,
		Role:          models.RoleUser,
		Plan:          in.Plan,
		CreatedAt:     created,
		CPF:           in.CPF,
		CNPJ:          in.CNPJ,
		RG:            in.RG,
		Endereco:      in.Endereco,
		Telefone:      in.Telefone,
		PlanType:      in.BillingCycle,
		PaymentMethod: in.PaymentMethod,
		AccountStatus: models.StatusActive,
		PlanHistory: []models.PlanHistory{{
			ID:            newID(),
			PlanType:      in.Plan,
			BillingCycle:  in.BillingCycle,
			PaymentMethod: in.PaymentMethod,
			StartDate:     created,
			Status:        models.StatusActive,
		}},
	}
}

func (s *UserService) insertAccount(ctx context.Context, in AccountInput) (models.User, error) {
	in.applyDefaults()
	if err := in.validate(true); err != nil {
		return models.User{}, invalid(err)
	}

	if _, taken, err := s.store.FindUserByEmail(ctx, in.Email); err != nil {
		return models.User{}, err
	} else if taken {
		return models.User{}, fmt.Errorf("%w: %s", common.ErrDuplicateEmail, in.Email)
	}

	u := newAccount(in)
	if err := s.store.AddUser(ctx, u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// Signup registers a customer account and starts a session for it.
func (s *UserService) Signup(ctx context.Context, in AccountInput) (models.User, error) {
	var u models.User
	err := s.store.Tx(ctx, func(ctx context.Context, tx *store.Store) error {
		txs := &UserService{store: tx, logger: s.logger}
		var err error
		if u, err = txs.insertAccount(ctx, in); err != nil {
			return err
		}
		return tx.SetCurrentUserID(ctx, u.ID)
	})
	if err != nil {
		return models.User{}, err
	}
	s.logger.Info(ctx, "user signed up", "user_id", u.ID)
	return u, nil
}

// Login checks the credentials. A live temporary password is accepted in
// place of the real one and flags the account for a password reset.
func (s *UserService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	u, ok, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return LoginResult{}, err
	}
	if !ok {
		return LoginResult{}, common.ErrInvalidCredentials
	}

	if u.TemporaryPassword != "" && u.TemporaryPasswordExpiry != "" {
		expiry, err := models.ParseTimestamp(u.TemporaryPasswordExpiry)
		if err != nil || now().After(expiry) {
			if _, err := s.store.UpdateUser(ctx, u.ID, models.ClearTemporaryPassword{}); err != nil {
				return LoginResult{}, err
			}
			return LoginResult{}, common.ErrTemporaryPasswordExpired
		}

		if u.TemporaryPassword == password {
			err := s.store.Tx(ctx, func(ctx context.Context, tx *store.Store) error {
				if _, err := tx.UpdateUser(ctx, u.ID, models.SetNeedsPasswordReset{Value: true}); err != nil {
					return err
				}
				return tx.SetCurrentUserID(ctx, u.ID)
			})
			if err != nil {
				return LoginResult{}, err
			}
			u.NeedsPasswordReset = true
			return LoginResult{User: u, ResetRequired: true}, nil
		}
	}

	if u.Password != password {
		return LoginResult{}, common.ErrInvalidCredentials
	}
	if err := s.store.SetCurrentUserID(ctx, u.ID); err != nil {
		return LoginResult{}, err
	}
	return LoginResult{User: u, ResetRequired: u.NeedsPasswordReset}, nil
}

func (s *UserService) Logout(ctx context.Context) error {
	return s.store.ClearCurrentUserID(ctx)
}

// CurrentUser resolves the session. A session pointing at a deleted user
// counts as no session.
func (s *UserService) CurrentUser(ctx context.Context) (models.User, bool, error) {
	id, ok, err := s.store.CurrentUserID(ctx)
	if err != nil || !ok {
		return models.User{}, false, err
	}
	return s.store.FindUser(ctx, id)
}

// RequestTemporaryPassword issues an 8 character password valid for ten
// minutes. Delivering it to the user is up to the caller.
func (s *UserService) RequestTemporaryPassword(ctx context.Context, email string) (string, models.User, error) {
	u, ok, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return "", models.User{}, err
	}
	if !ok {
		return "", models.User{}, fmt.Errorf("%w: %s", common.ErrNotFound, email)
	}

	temp, err := shared.RandomString(shared.TemporaryPasswordAlphabet, TemporaryPasswordLength)
	if err != nil {
		return "", models.User{}, err
	}
	if _, err := s.store.UpdateUser(ctx, u.ID,
		models.SetTemporaryPassword{Password: temp, Expiry: now().Add(TemporaryPasswordValidity)},
		models.SetNeedsPasswordReset{Value: false},
	); err != nil {
		return "", models.User{}, err
	}
	s.logger.Info(ctx, "temporary password issued", "user_id", u.ID)
	return temp, u, nil
}

// SendResetCode starts the reset flow for email.
func (s *UserService) SendResetCode(ctx context.Context, email string) error {
	_, ok, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", common.ErrNotFound, email)
	}
	return nil
}

func (s *UserService) VerifyResetCode(code string) error {
	if code != ResetCode {
		return common.ErrInvalidCode
	}
	return nil
}

// ResetPassword sets a new password and clears any pending reset state.
func (s *UserService) ResetPassword(ctx context.Context, email, code, password, confirmation string) error {
	if err := s.VerifyResetCode(code); err != nil {
		return err
	}
	err := validation.Errors{
		"password":     validation.Validate(password, validation.Required, validation.Length(MinPasswordLength, 0)),
		"confirmation": validation.Validate(confirmation, validation.Required, validation.In(password).Error("passwords do not match")),
	}.Filter()
	if err != nil {
		return invalid(err)
	}

	u, ok, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", common.ErrNotFound, email)
	}

	_, err = s.store.UpdateUser(ctx, u.ID,
		models.SetPassword{Password: password},
		models.ClearTemporaryPassword{},
		models.SetNeedsPasswordReset{Value: false},
	)
	return err
}

func (s *UserService) Language(ctx context.Context) (models.Language, error) {
	return s.store.Language(ctx)
}

func (s *UserService) SetLanguage(ctx context.Context, lang models.Language) error {
	return s.store.SetLanguage(ctx, lang)
}
