package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/photovault/internal/common"
	"github.com/dmitrijs2005/photovault/internal/models"
	"github.com/dmitrijs2005/photovault/internal/quota"
)

func (a *App) Users(ctx context.Context) error {
	admin, err := a.currentUser(ctx)
	if err != nil {
		return err
	}
	users, err := a.users.ListCustomers(ctx, admin.ID)
	if err != nil {
		return err
	}
	for _, u := range users {
		fmt.Fprintf(a.out, "%s  %s  %s  %s/%s  %s  %s\n",
			u.ID, u.Email, u.Name, u.Plan, u.PlanType, u.AccountStatus, quota.FormatBytes(u.StorageUsed))
	}
	fmt.Fprintf(a.out, "%d customer(s)\n", len(users))
	return nil
}

func (a *App) AddUser(ctx context.Context) error {
	admin, err := a.currentUser(ctx)
	if err != nil {
		return err
	}
	in, err := a.readAccount(models.User{}, "Password", true)
	if err != nil {
		return err
	}
	u, err := a.users.CreateCustomer(ctx, admin.ID, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created %s (%s)\n", u.Email, u.ID)
	return nil
}

// EditUser rewrites a customer, offering the stored values as defaults. An
// empty password keeps the current one.
func (a *App) EditUser(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	admin, err := a.currentUser(ctx)
	if err != nil {
		return err
	}
	customers, err := a.users.ListCustomers(ctx, admin.ID)
	if err != nil {
		return err
	}
	var target *models.User
	for i := range customers {
		if customers[i].ID == args[0] {
			target = &customers[i]
		}
	}
	if target == nil {
		return fmt.Errorf("%w: user %s", common.ErrNotFound, args[0])
	}

	in, err := a.readAccount(*target, "New password (empty keeps current)", true)
	if err != nil {
		return err
	}
	outcome, err := a.users.UpdateCustomer(ctx, admin.ID, target.ID, in)
	if err != nil {
		return err
	}
	if err := outcome.Err(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Updated", in.Email)
	return nil
}

// DeleteUser removes an account with all of its photos and folders.
func (a *App) DeleteUser(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	admin, err := a.currentUser(ctx)
	if err != nil {
		return err
	}
	if args[0] == admin.ID {
		return fmt.Errorf("%w: cannot delete the signed in account", common.ErrValidation)
	}
	outcome, err := a.users.DeleteUser(ctx, admin.ID, args[0])
	if err != nil {
		return err
	}
	if err := outcome.Err(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted", args[0])
	return nil
}
