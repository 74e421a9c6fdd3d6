package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/innometrics/innometrics-backend/internal/model"
	"github.com/innometrics/innometrics-backend/internal/store"
)

// fakeStore is an in-memory store.Store for service tests. Behavior can
// be bent per test through the failInsert and insertDelay knobs.
type fakeStore struct {
	users      *fakeUsers
	activities *fakeActivities
	projects   *fakeProjects
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:      &fakeUsers{byID: map[string]*model.User{}},
		activities: &fakeActivities{byID: map[string]*model.Activity{}},
		projects: &fakeProjects{
			byID:    map[string]*model.Project{},
			members: map[string][]string{},
		},
	}
}

func (f *fakeStore) Users() store.Users           { return f.users }
func (f *fakeStore) Activities() store.Activities { return f.activities }
func (f *fakeStore) Projects() store.Projects     { return f.projects }

type fakeUsers struct {
	mu   sync.Mutex
	byID map[string]*model.User
	seq  int
}

func (f *fakeUsers) Create(ctx context.Context, u *model.User) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return nil, fmt.Errorf("%w: email taken", model.ErrConflict)
		}
	}
	f.seq++
	out := *u
	out.UserID = fmt.Sprintf("user-%d", f.seq)
	out.CreationTime = time.Now().UTC()
	f.byID[out.UserID] = &out
	return &out, nil
}

func (f *fakeUsers) GetByID(ctx context.Context, userID string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return nil, model.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, model.ErrNotFound
}

func (f *fakeUsers) Delete(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[userID]; !ok {
		return model.ErrNotFound
	}
	delete(f.byID, userID)
	return nil
}

type fakeActivities struct {
	mu          sync.Mutex
	byID        map[string]*model.Activity
	seq         int
	deleteCalls []string
	lastFind    model.FindActivitiesRequest

	// failInsert, when set, is consulted before every insert.
	failInsert func(a *model.Activity) error
	// insertDelay makes Insert block until the delay elapses or ctx ends.
	insertDelay func(a *model.Activity) time.Duration
}

func (f *fakeActivities) Insert(ctx context.Context, a *model.Activity) (*model.Activity, error) {
	if f.insertDelay != nil {
		if d := f.insertDelay(a); d > 0 {
			select {
			case <-time.After(d):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	if f.failInsert != nil {
		if err := f.failInsert(a); err != nil {
			return nil, err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	out := *a
	out.ActivityID = fmt.Sprintf("activity-%d", f.seq)
	out.CreationTime = time.Now().UTC()
	f.byID[out.ActivityID] = &out
	return &out, nil
}

func (f *fakeActivities) Delete(ctx context.Context, activityID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls = append(f.deleteCalls, activityID)
	if _, ok := f.byID[activityID]; !ok {
		return model.ErrNotFound
	}
	delete(f.byID, activityID)
	return nil
}

func (f *fakeActivities) Find(ctx context.Context, req model.FindActivitiesRequest) ([]*model.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFind = req
	var out []*model.Activity
	for _, a := range f.byID {
		for _, owner := range req.OwnerIDs {
			if a.UserID == owner {
				cp := *a
				out = append(out, &cp)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeActivities) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

type fakeProjects struct {
	mu      sync.Mutex
	byID    map[string]*model.Project
	members map[string][]string
	seq     int
}

func (f *fakeProjects) Create(ctx context.Context, p *model.Project) (*model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	out := *p
	out.ProjectID = fmt.Sprintf("project-%d", f.seq)
	out.CreationTime = time.Now().UTC()
	f.byID[out.ProjectID] = &out
	return &out, nil
}

func (f *fakeProjects) GetByID(ctx context.Context, projectID string) (*model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[projectID]
	if !ok {
		return nil, model.ErrNotFound
	}
	out := *p
	return &out, nil
}

func (f *fakeProjects) List(ctx context.Context, userID string) ([]*model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Project
	for id, p := range f.byID {
		if p.ManagerID == userID {
			cp := *p
			out = append(out, &cp)
			continue
		}
		for _, m := range f.members[id] {
			if m == userID {
				cp := *p
				out = append(out, &cp)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeProjects) AddMember(ctx context.Context, m *model.ProjectMember) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.members[m.ProjectID] {
		if existing == m.UserID {
			return fmt.Errorf("%w: already a member", model.ErrConflict)
		}
	}
	f.members[m.ProjectID] = append(f.members[m.ProjectID], m.UserID)
	return nil
}

func (f *fakeProjects) MemberIDs(ctx context.Context, projectID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.members[projectID]...), nil
}
