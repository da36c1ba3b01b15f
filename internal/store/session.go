package store

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/photovault/internal/common"
	"github.com/dmitrijs2005/photovault/internal/models"
)

// Scalars are stored as raw strings, not JSON.

func (s *Store) CurrentUserID(ctx context.Context) (string, bool, error) {
	raw, err := s.repo.Get(ctx, KeyCurrentUserID)
	if err != nil {
		return "", false, err
	}
	if len(raw) == 0 {
		return "", false, nil
	}
	return string(raw), true, nil
}

func (s *Store) SetCurrentUserID(ctx context.Context, id string) error {
	return s.repo.Set(ctx, KeyCurrentUserID, []byte(id))
}

func (s *Store) ClearCurrentUserID(ctx context.Context) error {
	return s.repo.Delete(ctx, KeyCurrentUserID)
}

// Language returns the saved UI language or models.DefaultLanguage.
func (s *Store) Language(ctx context.Context) (models.Language, error) {
	raw, err := s.repo.Get(ctx, KeyLanguage)
	if err != nil {
		return "", err
	}
	lang := models.Language(raw)
	if !lang.Valid() {
		return models.DefaultLanguage, nil
	}
	return lang, nil
}

func (s *Store) SetLanguage(ctx context.Context, lang models.Language) error {
	if !lang.Valid() {
		return fmt.Errorf("%w: unsupported language %q", common.ErrValidation, lang)
	}
	return s.repo.Set(ctx, KeyLanguage, []byte(lang))
}
