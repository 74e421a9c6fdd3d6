package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/innometrics/innometrics-backend/internal/model"
	"github.com/innometrics/innometrics-backend/internal/store"
)

// Run exercises a compliance suite against a store.Store implementation.
// Implementations should provide a clean, isolated store from makeStore.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	// Unique test identifiers
	userID := "u-" + uuid.New().String()
	email := userID + "@example.test"

	// Users
	u, err := s.Users().Create(ctx, &model.User{UserID: userID, Email: email, Name: "Ada", Surname: "Lovelace", PasswordHash: "x"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if got, err := s.Users().GetByID(ctx, u.UserID); err != nil || got.Email != email {
		t.Fatalf("GetUserByID: got=%v err=%v", got, err)
	}
	if got, err := s.Users().GetByEmail(ctx, email); err != nil || got.UserID != userID {
		t.Fatalf("GetUserByEmail: got=%v err=%v", got, err)
	}
	if _, err := s.Users().Create(ctx, &model.User{Email: email, Name: "Dup", Surname: "Dup", PasswordHash: "x"}); !errors.Is(err, model.ErrConflict) {
		t.Fatalf("duplicate email: want ErrConflict, got %v", err)
	}
	if _, err := s.Users().GetByID(ctx, "missing"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetUserByID missing: want ErrNotFound, got %v", err)
	}

	// Activities
	base := time.Date(2023, 4, 1, 9, 0, 0, 0, time.UTC)
	url := "https://example.test/docs"
	a1, err := s.Activities().Insert(ctx, &model.Activity{
		UserID: userID, StartTime: base, EndTime: base.Add(5 * time.Minute),
		ExecutableName: "chrome", BrowserURL: &url, IPAddress: "10.0.0.1",
		MACAddress: "aa:bb:cc:dd:ee:ff", ActivityType: "os",
		Extra: map[string]interface{}{"window": "main"},
	})
	if err != nil {
		t.Fatalf("InsertActivity a1: %v", err)
	}
	if a1.ActivityID == "" {
		t.Fatalf("InsertActivity: empty activity id")
	}
	a2, err := s.Activities().Insert(ctx, &model.Activity{
		UserID: userID, StartTime: base.Add(time.Hour), EndTime: base.Add(time.Hour + 10*time.Minute),
		ExecutableName: "idea", IPAddress: "10.0.0.1", MACAddress: "aa:bb:cc:dd:ee:ff",
		ActivityType: "eclipse",
	})
	if err != nil {
		t.Fatalf("InsertActivity a2: %v", err)
	}

	// Find: owner scope, ordering newest-first
	all, err := s.Activities().Find(ctx, model.FindActivitiesRequest{OwnerIDs: []string{userID}, Limit: 10})
	if err != nil || len(all) != 2 {
		t.Fatalf("Find: n=%d err=%v", len(all), err)
	}
	if all[0].ActivityID != a2.ActivityID {
		t.Fatalf("Find ordering: want newest first, got %s", all[0].ActivityID)
	}
	if len(all[1].Extra) == 0 || all[1].Extra["window"] != "main" {
		t.Fatalf("Find: extra payload lost: %+v", all[1].Extra)
	}

	// Find: exact-match filter
	if got, err := s.Activities().Find(ctx, model.FindActivitiesRequest{
		OwnerIDs: []string{userID}, Limit: 10,
		Filters: map[string]string{"activity_type": "os"},
	}); err != nil || len(got) != 1 || got[0].ActivityID != a1.ActivityID {
		t.Fatalf("Find filter: n=%d err=%v", len(got), err)
	}

	// Find: unknown filter key is rejected
	if _, err := s.Activities().Find(ctx, model.FindActivitiesRequest{
		OwnerIDs: []string{userID}, Limit: 10,
		Filters: map[string]string{"nope": "x"},
	}); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("Find unknown filter: want ErrValidation, got %v", err)
	}

	// Find: time window excludes the later record
	endBound := base.Add(30 * time.Minute)
	if got, err := s.Activities().Find(ctx, model.FindActivitiesRequest{
		OwnerIDs: []string{userID}, Limit: 10, EndTime: &endBound,
	}); err != nil || len(got) != 1 || got[0].ActivityID != a1.ActivityID {
		t.Fatalf("Find time window: n=%d err=%v", len(got), err)
	}

	// Find: limit and offset
	if got, err := s.Activities().Find(ctx, model.FindActivitiesRequest{OwnerIDs: []string{userID}, Limit: 1}); err != nil || len(got) != 1 {
		t.Fatalf("Find limit: n=%d err=%v", len(got), err)
	}
	if got, err := s.Activities().Find(ctx, model.FindActivitiesRequest{OwnerIDs: []string{userID}, Limit: 10, Offset: 1}); err != nil || len(got) != 1 {
		t.Fatalf("Find offset: n=%d err=%v", len(got), err)
	}

	// Delete: NotFound is distinct from infrastructure failure
	if err := s.Activities().Delete(ctx, a2.ActivityID); err != nil {
		t.Fatalf("DeleteActivity: %v", err)
	}
	if err := s.Activities().Delete(ctx, a2.ActivityID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("DeleteActivity repeat: want ErrNotFound, got %v", err)
	}

	// Projects
	pr, err := s.Projects().Create(ctx, &model.Project{Title: "metrics", ManagerID: userID})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if got, err := s.Projects().GetByID(ctx, pr.ProjectID); err != nil || got.Title != "metrics" {
		t.Fatalf("GetProject: got=%v err=%v", got, err)
	}
	member := &model.ProjectMember{ProjectID: pr.ProjectID, UserID: userID, InvitedBy: userID}
	if err := s.Projects().AddMember(ctx, member); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if err := s.Projects().AddMember(ctx, member); !errors.Is(err, model.ErrConflict) {
		t.Fatalf("AddMember repeat: want ErrConflict, got %v", err)
	}
	if ids, err := s.Projects().MemberIDs(ctx, pr.ProjectID); err != nil || len(ids) != 1 || ids[0] != userID {
		t.Fatalf("MemberIDs: ids=%v err=%v", ids, err)
	}
	if lst, err := s.Projects().List(ctx, userID); err != nil || len(lst) != 1 {
		t.Fatalf("ListProjects: n=%d err=%v", len(lst), err)
	}

	// User delete
	if err := s.Users().Delete(ctx, userID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if err := s.Users().Delete(ctx, userID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("DeleteUser repeat: want ErrNotFound, got %v", err)
	}
}
