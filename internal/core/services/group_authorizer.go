package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/finance_tracker/internal/apperrors"
	"github.com/SscSPs/finance_tracker/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_tracker/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finance_tracker/internal/core/ports/services"
)

// groupAuthorizer implements GroupAuthorizerSvc on top of the membership repository.
type groupAuthorizer struct {
	BaseService
	members portsrepo.GroupMembershipReader
}

// NewGroupAuthorizer creates the group membership gate.
func NewGroupAuthorizer(members portsrepo.GroupMembershipReader, opts ...Option) portssvc.GroupAuthorizerSvc {
	svc := &groupAuthorizer{members: members}
	svc.apply(opts)
	return svc
}

var _ portssvc.GroupAuthorizerSvc = (*groupAuthorizer)(nil)

// AuthorizeGroupAction checks if a user has the required role (or a higher one) in a group.
func (s *groupAuthorizer) AuthorizeGroupAction(ctx context.Context, userID, groupID string, requiredRole domain.GroupRole) error {
	membership, err := s.members.FindMembership(ctx, groupID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.LogDebug(ctx, "User not a member of group",
				slog.String("user_id", userID),
				slog.String("group_id", groupID))
			return fmt.Errorf("%w: not a member of group %s", apperrors.ErrForbidden, groupID)
		}
		s.LogError(ctx, err, "Failed to find group membership",
			slog.String("user_id", userID),
			slog.String("group_id", groupID))
		return err
	}

	if !membership.Role.Satisfies(requiredRole) {
		s.LogDebug(ctx, "User does not have required role",
			slog.String("user_id", userID),
			slog.String("group_id", groupID),
			slog.String("user_role", string(membership.Role)),
			slog.String("required_role", string(requiredRole)))
		return fmt.Errorf("%w: %s role required", apperrors.ErrForbidden, requiredRole)
	}

	return nil
}
