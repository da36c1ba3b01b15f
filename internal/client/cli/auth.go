package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/photovault/internal/common"
	"github.com/dmitrijs2005/photovault/internal/models"
	"github.com/dmitrijs2005/photovault/internal/services"
	"github.com/dmitrijs2005/photovault/internal/shared"
)

// getSimpleText, getPassword and getChoice are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getChoice     = GetChoice
)

func (a *App) isLoggedIn(ctx context.Context) bool {
	_, ok, err := a.users.CurrentUser(ctx)
	return err == nil && ok
}

func (a *App) isAdmin(ctx context.Context) bool {
	u, ok, err := a.users.CurrentUser(ctx)
	return err == nil && ok && u.IsAdmin()
}

// currentUser returns the signed in user or common.ErrUnauthorized.
func (a *App) currentUser(ctx context.Context) (models.User, error) {
	u, ok, err := a.users.CurrentUser(ctx)
	if err != nil {
		return models.User{}, err
	}
	if !ok {
		return models.User{}, common.ErrUnauthorized
	}
	return u, nil
}

func (a *App) readPasswordString(prompt string) (string, error) {
	pw, err := getPassword(prompt, a.out)
	if err != nil {
		return "", err
	}
	defer shared.WipeByteArray(pw)
	return string(pw), nil
}

// readAccount prompts for every account field. Current values of base are
// offered as defaults, and the status is asked only when withStatus is set.
func (a *App) readAccount(base models.User, passwordPrompt string, withStatus bool) (services.AccountInput, error) {
	var in services.AccountInput
	fields := []struct {
		prompt string
		def    string
		dst    *string
	}{
		{"Name", base.Name, &in.Name},
		{"Email", base.Email, &in.Email},
		{"CPF", base.CPF, &in.CPF},
		{"CNPJ", base.CNPJ, &in.CNPJ},
		{"RG", base.RG, &in.RG},
		{"Address", base.Endereco, &in.Endereco},
		{"Phone", base.Telefone, &in.Telefone},
	}
	for _, f := range fields {
		v, err := getChoice(a.reader, f.prompt, f.def, a.out)
		if err != nil {
			return in, err
		}
		*f.dst = v
	}

	pw, err := a.readPasswordString(passwordPrompt)
	if err != nil {
		return in, err
	}
	in.Password = pw

	plan, err := getChoice(a.reader, "Plan (essencial, pro, studio)", string(orDefault(base.Plan, models.PlanEssencial)), a.out)
	if err != nil {
		return in, err
	}
	cycle, err := getChoice(a.reader, "Billing cycle (mensal, semestral, anual)", string(orDefault(base.PlanType, models.BillingMonthly)), a.out)
	if err != nil {
		return in, err
	}
	payment, err := getChoice(a.reader, "Payment method (boleto, cartao, pix)", string(orDefault(base.PaymentMethod, models.PaymentPix)), a.out)
	if err != nil {
		return in, err
	}
	in.Plan = models.Plan(plan)
	in.BillingCycle = models.BillingCycle(cycle)
	in.PaymentMethod = models.PaymentMethod(payment)

	if withStatus {
		status, err := getChoice(a.reader, "Account status (ativo, inativo, cancelado)", string(orDefault(base.AccountStatus, models.StatusActive)), a.out)
		if err != nil {
			return in, err
		}
		in.AccountStatus = models.AccountStatus(status)
	}
	return in, nil
}

func orDefault[T ~string](v, def T) T {
	if v == "" {
		return def
	}
	return v
}

// Signup registers a customer account and signs it in.
func (a *App) Signup(ctx context.Context) error {
	in, err := a.readAccount(models.User{}, "Password", false)
	if err != nil {
		return err
	}
	u, err := a.users.Signup(ctx, in)
	if err != nil {
		return err
	}
	a.folderID = nil
	fmt.Fprintf(a.out, "Welcome, %s! Your plan: %s\n", u.Name, u.Plan)
	return nil
}

// Login prompts for credentials and starts a session. Signing in with a
// temporary password forces a password change before anything else.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := a.readPasswordString("Enter password")
	if err != nil {
		return err
	}

	res, err := a.users.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, common.ErrTemporaryPasswordExpired) {
			fmt.Fprintln(a.out, "Temporary password expired, use 'forgot' to get a new one")
			return nil
		}
		return err
	}
	a.folderID = nil

	if res.ResetRequired {
		fmt.Fprintln(a.out, "You signed in with a temporary password. Choose a new one.")
		if err := a.changePassword(ctx, res.User.Email, services.ResetCode); err != nil {
			_ = a.users.Logout(ctx)
			return err
		}
	}
	fmt.Fprintf(a.out, "Signed in as %s\n", res.User.Email)
	return nil
}

func (a *App) changePassword(ctx context.Context, email, code string) error {
	pw, err := a.readPasswordString("New password")
	if err != nil {
		return err
	}
	confirm, err := a.readPasswordString("Confirm password")
	if err != nil {
		return err
	}
	if err := a.users.ResetPassword(ctx, email, code, pw, confirm); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Password changed")
	return nil
}

// Forgot issues a temporary password. Nothing is mailed: the password is
// shown on screen.
func (a *App) Forgot(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	temp, u, err := a.users.RequestTemporaryPassword(ctx, email)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Temporary password for %s: %s (valid for %s)\n", u.Email, temp, services.TemporaryPasswordValidity)
	return nil
}

// Reset runs the verification code flow.
func (a *App) Reset(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	if err := a.users.SendResetCode(ctx, email); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "A verification code was sent to %s\n", email)

	code, err := getSimpleText(a.reader, "Enter code", a.out)
	if err != nil {
		return err
	}
	if err := a.users.VerifyResetCode(code); err != nil {
		return err
	}
	return a.changePassword(ctx, email, code)
}

// Lang shows the saved language, or saves a new one.
func (a *App) Lang(ctx context.Context, args []string) error {
	if len(args) == 0 {
		lang, err := a.users.Language(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Language:", lang)
		return nil
	}
	lang := models.Language(args[0])
	if !lang.Valid() {
		return errUsage
	}
	if err := a.users.SetLanguage(ctx, lang); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Language set to", lang)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.users.Logout(ctx); err != nil {
		return err
	}
	a.folderID = nil
	fmt.Fprintln(a.out, "Signed out")
	return nil
}
