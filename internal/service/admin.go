package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Shivanand-hulikatti/concert-registration/internal/i18n"
	"github.com/Shivanand-hulikatti/concert-registration/internal/model"
)

// CreateAdmin grants the admin role to the profile registered under email.
// It returns repository.ErrNotFound when no such profile exists and
// ErrRoleUpdate when the profile could not be changed.
func (s *ConcertService) CreateAdmin(ctx context.Context, email string) (*model.Profile, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, invalid(i18n.MsgAdminMissingEmail)
	}

	profile, err := s.profiles.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}

	if err := s.profiles.SetRole(ctx, profile.UserID, model.RoleAdmin); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRoleUpdate, err)
	}
	profile.Role = model.RoleAdmin

	s.log.Info().Str("user_id", profile.UserID).Msg("profile promoted to admin")
	return profile, nil
}
