package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/innometrics/innometrics-backend/internal/model"
	"github.com/innometrics/innometrics-backend/internal/store"
)

// maxProjectFindLimit caps project-scoped activity queries.
const maxProjectFindLimit = 10000

// ProjectService manages projects and the invitations that extend read
// access to member activity data.
type ProjectService struct {
	store store.Store
}

func NewProjectService(s store.Store) *ProjectService { return &ProjectService{store: s} }

// CreateProject creates a project managed by managerID. The manager is
// enrolled as a member so project-scoped queries include their data.
func (s *ProjectService) CreateProject(ctx context.Context, managerID, title string) (*model.Project, error) {
	p, err := s.store.Projects().Create(ctx, &model.Project{Title: title, ManagerID: managerID})
	if err != nil {
		return nil, err
	}
	m := &model.ProjectMember{ProjectID: p.ProjectID, UserID: managerID, InvitedBy: managerID}
	if err := s.store.Projects().AddMember(ctx, m); err != nil {
		return nil, err
	}
	return p, nil
}

// ListProjects returns projects the user manages or belongs to.
func (s *ProjectService) ListProjects(ctx context.Context, userID string) ([]*model.Project, error) {
	return s.store.Projects().List(ctx, userID)
}

// Invite adds the user behind inviteeEmail to the project. Only the
// manager may invite. A project invisible to the actor reports
// model.ErrNotFound rather than leaking its existence.
func (s *ProjectService) Invite(ctx context.Context, actorID, projectID, inviteeEmail string) error {
	p, err := s.store.Projects().GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if p.ManagerID != actorID {
		return fmt.Errorf("%w: project", model.ErrNotFound)
	}
	invitee, err := s.store.Users().GetByEmail(ctx, strings.ToLower(inviteeEmail))
	if err != nil {
		return err
	}
	return s.store.Projects().AddMember(ctx, &model.ProjectMember{
		ProjectID: projectID,
		UserID:    invitee.UserID,
		InvitedBy: actorID,
	})
}

// FindActivities queries activity records across all project members,
// with the project-scoped cap applied server-side. Only members (the
// manager included) may query.
func (s *ProjectService) FindActivities(ctx context.Context, actorID, projectID string, req model.FindActivitiesRequest) ([]*model.Activity, error) {
	p, err := s.store.Projects().GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	members, err := s.store.Projects().MemberIDs(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !contains(members, actorID) && p.ManagerID != actorID {
		return nil, fmt.Errorf("%w: project", model.ErrNotFound)
	}
	req.OwnerIDs = members
	req.Limit = capLimit(req.Limit, maxProjectFindLimit)
	return s.store.Activities().Find(ctx, req)
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
