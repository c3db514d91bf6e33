// Package invite orchestrates the project membership lifecycle: issuing
// invitations, accepting them, leaving, and kicking. Every path is designed
// so the membership insert is the last state-changing step; a failure
// anywhere earlier leaves nothing to roll back.
package invite

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/zwaTOx/MultiTasker/internal/domain"
	"github.com/zwaTOx/MultiTasker/internal/membership"
	"github.com/zwaTOx/MultiTasker/internal/policy"
	"github.com/zwaTOx/MultiTasker/internal/projects"
	"github.com/zwaTOx/MultiTasker/internal/token"
	"github.com/zwaTOx/MultiTasker/internal/users"
)

// Sender delivers an invitation to its recipient. Implementations report
// delivery failure via error; the workflow treats any failure uniformly as
// ErrNotificationFailed.
type Sender interface {
	SendInvite(ctx context.Context, recipient, inviterName, projectName, joinURL string, ttl time.Duration) error
}

type Workflow struct {
	guard    *policy.Guard
	members  *membership.Store
	users    *users.Repo
	projects *projects.Repo
	issuer   *token.Issuer
	sender   Sender
	baseURL  string
}

func NewWorkflow(
	guard *policy.Guard,
	members *membership.Store,
	userRepo *users.Repo,
	projectRepo *projects.Repo,
	issuer *token.Issuer,
	sender Sender,
	baseURL string,
) *Workflow {
	return &Workflow{
		guard:    guard,
		members:  members,
		users:    userRepo,
		projects: projectRepo,
		issuer:   issuer,
		sender:   sender,
		baseURL:  baseURL,
	}
}

// Invite resolves the target (by id, or by email creating an unverified
// placeholder account), mints an invite token, and dispatches the join link.
// Token minting has no persisted effect, so a dispatch failure is fully
// recoverable by retrying the call.
func (w *Workflow) Invite(ctx context.Context, actorID, projectID int64, targetUserID *int64, targetEmail string) error {
	allowed, err := w.guard.CanManageMembership(ctx, actorID, projectID)
	if err != nil {
		return err
	}
	if !allowed {
		return domain.ErrAccessDenied
	}

	project, err := w.projects.Get(ctx, projectID)
	if err != nil {
		return err
	}

	var target domain.User
	switch {
	case targetUserID != nil:
		target, err = w.users.GetByID(ctx, *targetUserID)
	case targetEmail != "":
		target, err = w.users.CreateUnverified(ctx, targetEmail)
	default:
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}

	isMember, err := w.members.IsMember(ctx, target.ID, projectID)
	if err != nil {
		return err
	}
	if isMember {
		return domain.ErrAlreadyMember
	}

	inviteToken, err := w.issuer.IssueInvite(projectID, target.ID)
	if err != nil {
		return fmt.Errorf("mint invite token: %w", err)
	}

	actor, err := w.users.GetByID(ctx, actorID)
	if err != nil {
		return err
	}
	joinURL := fmt.Sprintf("%s/users/confirm/%s", w.baseURL, inviteToken)
	if err := w.sender.SendInvite(ctx, target.Login, actor.Username, project.Name, joinURL, w.issuer.InviteTTL()); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"project_id": projectID,
			"recipient":  target.Login,
		}).Error("invite dispatch failed")
		return domain.ErrNotificationFailed
	}

	log.WithFields(log.Fields{
		"project_id": projectID,
		"actor_id":   actorID,
		"target_id":  target.ID,
	}).Info("project invite dispatched")
	return nil
}

// Accept verifies the invite token and creates the membership with no
// category tag. Accepting twice fails with ErrAlreadyMember and leaves the
// single membership row untouched.
func (w *Workflow) Accept(ctx context.Context, inviteToken string) (token.Invite, error) {
	claims, err := w.issuer.VerifyInvite(inviteToken)
	if err != nil {
		return token.Invite{}, err
	}

	isMember, err := w.members.IsMember(ctx, claims.UserID, claims.ProjectID)
	if err != nil {
		return token.Invite{}, err
	}
	if isMember {
		return token.Invite{}, domain.ErrAlreadyMember
	}

	if err := w.members.Add(ctx, claims.UserID, claims.ProjectID, nil); err != nil {
		// A concurrent accept of the same invite hits the uniqueness
		// constraint; report it the same way as the pre-check.
		if errors.Is(err, domain.ErrDuplicateMembership) {
			return token.Invite{}, domain.ErrAlreadyMember
		}
		return token.Invite{}, err
	}
	return claims, nil
}

// Leave removes the caller's own membership. Owners cannot leave their own
// project, even if they also hold an explicit membership row; they must
// delete the project instead.
func (w *Workflow) Leave(ctx context.Context, userID, projectID int64) error {
	owner, err := w.guard.IsProjectOwner(ctx, userID, projectID)
	if err != nil {
		return err
	}
	if owner {
		return domain.ErrOwnerCannotLeave
	}
	return w.members.Remove(ctx, userID, projectID)
}

// Kick removes another user's membership. Requires membership-management
// rights and rejects self-removal regardless of role.
func (w *Workflow) Kick(ctx context.Context, actorID, targetUserID, projectID int64) error {
	if actorID == targetUserID {
		return domain.ErrCannotKickSelf
	}
	allowed, err := w.guard.CanManageMembership(ctx, actorID, projectID)
	if err != nil {
		return err
	}
	if !allowed {
		return domain.ErrAccessDenied
	}
	return w.members.Remove(ctx, targetUserID, projectID)
}
