package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/campuscare/campuscare/internal/core/domain"
	"github.com/campuscare/campuscare/internal/core/ports"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// Stub identity provider
// ---------------------------------------------------------------------------

type stubProvider struct {
	subjects   map[string]string        // token -> subject id
	profiles   map[string]ports.Profile // subject id -> profile
	verifyErr  error
	profileErr error
}

func newStubProvider() *stubProvider {
	return &stubProvider{
		subjects: make(map[string]string),
		profiles: make(map[string]ports.Profile),
	}
}

func (p *stubProvider) Verify(_ context.Context, token string) (string, error) {
	if p.verifyErr != nil {
		return "", p.verifyErr
	}
	subject, ok := p.subjects[token]
	if !ok {
		return "", errors.New("token signature invalid")
	}
	return subject, nil
}

func (p *stubProvider) GetProfile(_ context.Context, subjectID string) (ports.Profile, error) {
	if p.profileErr != nil {
		return ports.Profile{}, p.profileErr
	}
	return p.profiles[subjectID], nil
}

// ---------------------------------------------------------------------------
// In-memory stub identity repository
// ---------------------------------------------------------------------------

type stubIdentityRepo struct {
	bySubject       map[string]*domain.Identity
	nextID          int
	createErr       error // if set, Create returns this error once, then clears
	missFirstLookup bool  // if set, the first FindBySubject misses
}

func newStubIdentityRepo() *stubIdentityRepo {
	return &stubIdentityRepo{bySubject: make(map[string]*domain.Identity)}
}

func (r *stubIdentityRepo) FindBySubject(_ context.Context, subjectID string) (*domain.Identity, error) {
	if r.missFirstLookup {
		r.missFirstLookup = false
		return nil, domain.ErrIdentityNotFound
	}
	id, ok := r.bySubject[subjectID]
	if !ok {
		return nil, domain.ErrIdentityNotFound
	}
	clone := *id
	return &clone, nil
}

func (r *stubIdentityRepo) FindByID(_ context.Context, id string) (*domain.Identity, error) {
	for _, identity := range r.bySubject {
		if identity.ID == id {
			clone := *identity
			return &clone, nil
		}
	}
	return nil, domain.ErrIdentityNotFound
}

func (r *stubIdentityRepo) FindByEmail(_ context.Context, email string) (*domain.Identity, error) {
	for _, identity := range r.bySubject {
		if identity.Email == email {
			clone := *identity
			return &clone, nil
		}
	}
	return nil, domain.ErrIdentityNotFound
}

func (r *stubIdentityRepo) Create(_ context.Context, identity *domain.Identity) (*domain.Identity, error) {
	if r.createErr != nil {
		err := r.createErr
		r.createErr = nil
		return nil, err
	}
	if _, exists := r.bySubject[identity.SubjectID]; exists {
		return nil, domain.ErrIdentityExists
	}
	r.nextID++
	clone := *identity
	clone.ID = string(rune('a' + r.nextID - 1))
	r.bySubject[identity.SubjectID] = &clone
	out := clone
	return &out, nil
}

func (r *stubIdentityRepo) ClaimInvite(_ context.Context, email, subjectID string) (*domain.Identity, error) {
	for subject, identity := range r.bySubject {
		if identity.Email == email && subject == "invite:"+email {
			claimed := *identity
			claimed.SubjectID = subjectID
			delete(r.bySubject, subject)
			r.bySubject[subjectID] = &claimed
			out := claimed
			return &out, nil
		}
	}
	return nil, domain.ErrIdentityNotFound
}

func (r *stubIdentityRepo) SetCampusRole(_ context.Context, id, campusID string, role domain.Role) error {
	for _, identity := range r.bySubject {
		if identity.ID == id {
			identity.CampusID = campusID
			identity.Role = role
			return nil
		}
	}
	return domain.ErrIdentityNotFound
}

func (r *stubIdentityRepo) ListByCampus(_ context.Context, campusID string) ([]*domain.Identity, error) {
	var out []*domain.Identity
	for _, identity := range r.bySubject {
		if identity.CampusID == campusID {
			clone := *identity
			out = append(out, &clone)
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Authenticate tests
// ---------------------------------------------------------------------------

func TestIdentityService_Authenticate_EmptyToken(t *testing.T) {
	svc := NewIdentityService(newStubProvider(), newStubIdentityRepo(), time.Second, discardLogger)

	_, err := svc.Authenticate(context.Background(), "")
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestIdentityService_Authenticate_InvalidToken(t *testing.T) {
	svc := NewIdentityService(newStubProvider(), newStubIdentityRepo(), time.Second, discardLogger)

	_, err := svc.Authenticate(context.Background(), "garbage")
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestIdentityService_Authenticate_ProviderTimeout(t *testing.T) {
	provider := newStubProvider()
	provider.verifyErr = context.DeadlineExceeded
	svc := NewIdentityService(provider, newStubIdentityRepo(), time.Second, discardLogger)

	_, err := svc.Authenticate(context.Background(), "tok")
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("provider timeout must map to ErrUnauthenticated, got %v", err)
	}
}

func TestIdentityService_Authenticate_ExistingIdentity(t *testing.T) {
	provider := newStubProvider()
	provider.subjects["tok"] = "subj_1"
	repo := newStubIdentityRepo()
	repo.bySubject["subj_1"] = &domain.Identity{
		ID: "id_1", SubjectID: "subj_1", Email: "ana@campus.edu",
		Role: domain.RoleAdmin, CampusID: "campus_1",
	}
	svc := NewIdentityService(provider, repo, time.Second, discardLogger)

	identity, err := svc.Authenticate(context.Background(), "tok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identity.ID != "id_1" {
		t.Errorf("expected id_1, got %s", identity.ID)
	}
	if identity.Role != domain.RoleAdmin {
		t.Errorf("role must be preserved, got %s", identity.Role)
	}
}

func TestIdentityService_Authenticate_ProvisionsOnFirstSight(t *testing.T) {
	provider := newStubProvider()
	provider.subjects["tok"] = "subj_new"
	provider.profiles["subj_new"] = ports.Profile{Email: "leo@campus.edu", Name: "Leo"}
	repo := newStubIdentityRepo()
	svc := NewIdentityService(provider, repo, time.Second, discardLogger)

	identity, err := svc.Authenticate(context.Background(), "tok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identity.Role != domain.RoleUser {
		t.Errorf("first-sight identity must be USER, got %s", identity.Role)
	}
	if identity.CampusID != "" {
		t.Errorf("first-sight identity must have no campus, got %q", identity.CampusID)
	}
	if identity.Email != "leo@campus.edu" {
		t.Errorf("email mismatch: %s", identity.Email)
	}
	if _, ok := repo.bySubject["subj_new"]; !ok {
		t.Error("identity must be persisted")
	}
}

func TestIdentityService_Authenticate_ProfileWithoutEmail(t *testing.T) {
	provider := newStubProvider()
	provider.subjects["tok"] = "subj_new"
	provider.profiles["subj_new"] = ports.Profile{Name: "No Email"}
	svc := NewIdentityService(provider, newStubIdentityRepo(), time.Second, discardLogger)

	_, err := svc.Authenticate(context.Background(), "tok")
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestIdentityService_Authenticate_LostInsertRaceResolvesToFetch(t *testing.T) {
	provider := newStubProvider()
	provider.subjects["tok"] = "subj_race"
	provider.profiles["subj_race"] = ports.Profile{Email: "race@campus.edu", Name: "Race"}
	repo := newStubIdentityRepo()
	// Simulate losing a first-sight race: the initial lookup misses, the
	// insert hits the unique index, and the winner's row is there for the
	// follow-up fetch.
	repo.missFirstLookup = true
	repo.createErr = domain.ErrIdentityExists
	repo.bySubject["subj_race"] = &domain.Identity{
		ID: "winner", SubjectID: "subj_race", Email: "race@campus.edu", Role: domain.RoleUser,
	}
	svc := NewIdentityService(provider, repo, time.Second, discardLogger)

	identity, err := svc.Authenticate(context.Background(), "tok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identity.ID != "winner" {
		t.Errorf("expected the winner's row, got %s", identity.ID)
	}
}

func TestIdentityService_Authenticate_ClaimsStaffInvite(t *testing.T) {
	provider := newStubProvider()
	provider.subjects["tok"] = "subj_staff"
	provider.profiles["subj_staff"] = ports.Profile{Email: "staff@campus.edu", Name: "Staff"}
	repo := newStubIdentityRepo()
	repo.bySubject["invite:staff@campus.edu"] = &domain.Identity{
		ID: "invited", SubjectID: "invite:staff@campus.edu",
		Email: "staff@campus.edu", Role: domain.RoleManager, CampusID: "campus_1",
	}
	svc := NewIdentityService(provider, repo, time.Second, discardLogger)

	identity, err := svc.Authenticate(context.Background(), "tok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identity.ID != "invited" {
		t.Errorf("invite must be claimed, not re-provisioned; got %s", identity.ID)
	}
	if identity.Role != domain.RoleManager {
		t.Errorf("claimed invite must keep MANAGER role, got %s", identity.Role)
	}
	if identity.CampusID != "campus_1" {
		t.Errorf("claimed invite must keep its campus, got %q", identity.CampusID)
	}
	if identity.SubjectID != "subj_staff" {
		t.Errorf("claimed invite must be bound to the real subject, got %q", identity.SubjectID)
	}
}
