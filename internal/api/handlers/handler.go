package handlers

import (
	"context"

	"github.com/zwaTOx/MultiTasker/internal/auth"
	"github.com/zwaTOx/MultiTasker/internal/category"
	"github.com/zwaTOx/MultiTasker/internal/invite"
	"github.com/zwaTOx/MultiTasker/internal/membership"
	"github.com/zwaTOx/MultiTasker/internal/policy"
	"github.com/zwaTOx/MultiTasker/internal/projects"
	"github.com/zwaTOx/MultiTasker/internal/tasks"
	"github.com/zwaTOx/MultiTasker/internal/token"
	"github.com/zwaTOx/MultiTasker/internal/users"
)

// RecoverySender delivers password recovery codes.
type RecoverySender interface {
	SendRecoveryCode(ctx context.Context, recipient, code string) error
}

type Handler struct {
	users      *users.Repo
	projects   *projects.Repo
	categories *category.Repo
	members    *membership.Store
	guard      *policy.Guard
	issuer     *token.Issuer
	codes      *token.ResetCodes
	invites    *invite.Workflow
	tasks      *tasks.Engine
	hasher     *auth.Hasher
	recovery   RecoverySender
}

type Deps struct {
	Users      *users.Repo
	Projects   *projects.Repo
	Categories *category.Repo
	Members    *membership.Store
	Guard      *policy.Guard
	Issuer     *token.Issuer
	Codes      *token.ResetCodes
	Invites    *invite.Workflow
	Tasks      *tasks.Engine
	Hasher     *auth.Hasher
	Recovery   RecoverySender
}

func NewHandler(d Deps) *Handler {
	return &Handler{
		users:      d.Users,
		projects:   d.Projects,
		categories: d.Categories,
		members:    d.Members,
		guard:      d.Guard,
		issuer:     d.Issuer,
		codes:      d.Codes,
		invites:    d.Invites,
		tasks:      d.Tasks,
		hasher:     d.Hasher,
		recovery:   d.Recovery,
	}
}
