package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/photovault/internal/common"
	"github.com/dmitrijs2005/photovault/internal/models"
	"github.com/dmitrijs2005/photovault/internal/store"
)

func (s *UserService) requireAdmin(ctx context.Context, actorID string) error {
	actor, ok, err := s.store.FindUser(ctx, actorID)
	if err != nil {
		return err
	}
	if !ok || !actor.IsAdmin() {
		return common.ErrForbidden
	}
	return nil
}

// ListCustomers returns every account with the user role.
func (s *UserService) ListCustomers(ctx context.Context, actorID string) ([]models.User, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := []models.User{}
	for _, u := range users {
		if u.Role == models.RoleUser {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *UserService) CreateCustomer(ctx context.Context, actorID string, in AccountInput) (models.User, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return models.User{}, err
	}
	u, err := s.insertAccount(ctx, in)
	if err != nil {
		return models.User{}, err
	}
	s.logger.Info(ctx, "customer created", "user_id", u.ID, "by", actorID)
	return u, nil
}

// rolloverHistory closes the last plan period and opens a new one when the
// plan or the billing cycle changes.
func rolloverHistory(u models.User, in AccountInput) []models.PlanHistory {
	if u.Plan == in.Plan && u.PlanType == in.BillingCycle {
		return u.PlanHistory
	}

	history := append([]models.PlanHistory(nil), u.PlanHistory...)
	ts := timestamp()
	if n := len(history); n > 0 {
		history[n-1].EndDate = ts
		history[n-1].Status = models.StatusInactive
	}
	history = append(history, models.PlanHistory{
		ID:            newID(),
		PlanType:      in.Plan,
		BillingCycle:  in.BillingCycle,
		PaymentMethod: in.PaymentMethod,
		StartDate:     ts,
		Status:        models.StatusActive,
	})
	return history
}

// UpdateCustomer rewrites the profile and plan of userID. The password is
// changed only when in.Password is set.
func (s *UserService) UpdateCustomer(ctx context.Context, actorID, userID string, in AccountInput) (store.Outcome, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return store.NotFound, err
	}
	in.applyDefaults()
	if err := in.validate(false); err != nil {
		return store.NotFound, invalid(err)
	}

	u, ok, err := s.store.FindUser(ctx, userID)
	if err != nil {
		return store.NotFound, err
	}
	if !ok {
		return store.NotFound, nil
	}
	if in.Email != u.Email {
		if other, taken, err := s.store.FindUserByEmail(ctx, in.Email); err != nil {
			return store.NotFound, err
		} else if taken && other.ID != u.ID {
			return store.NotFound, fmt.Errorf("%w: %s", common.ErrDuplicateEmail, in.Email)
		}
	}

	history := rolloverHistory(u, in)
	cmds := []models.UserUpdate{
		in.profile(),
		models.SetPlan{Plan: in.Plan, BillingCycle: in.BillingCycle, PaymentMethod: in.PaymentMethod},
		models.SetAccountStatus{Status: in.AccountStatus},
		models.SetPlanHistory{History: history},
	}
	if in.Password != "" {
		cmds = append(cmds, models.SetPassword{Password: in.Password})
	}
	return s.store.UpdateUser(ctx, userID, cmds...)
}

// DeleteUser removes the account with its photos and folders, then deletes
// the photos' remote objects on a best-effort basis.
func (s *UserService) DeleteUser(ctx context.Context, actorID, userID string) (store.Outcome, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return store.NotFound, err
	}

	var photos []models.Photo
	outcome := store.NotFound
	err := s.store.Tx(ctx, func(ctx context.Context, tx *store.Store) error {
		removed, err := tx.RemoveUsers(ctx, func(u models.User) bool { return u.ID == userID })
		if err != nil || len(removed) == 0 {
			return err
		}
		outcome = store.Applied

		if photos, err = tx.RemovePhotos(ctx, func(p models.Photo) bool { return p.UserID == userID }); err != nil {
			return err
		}
		_, err = tx.RemoveFolders(ctx, func(f models.Folder) bool { return f.UserID == userID })
		return err
	})
	if err != nil {
		return store.NotFound, err
	}
	if !outcome.Found() {
		return outcome, nil
	}

	s.logger.Info(ctx, "user deleted", "user_id", userID, "photos", len(photos), "by", actorID)
	removeObjects(ctx, s.gateway, s.logger, photos)
	return outcome, nil
}
