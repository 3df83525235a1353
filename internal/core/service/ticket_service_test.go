package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/campuscare/campuscare/internal/core/domain"
	"github.com/campuscare/campuscare/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Shared stubs: event bus and classifier
// ---------------------------------------------------------------------------

type publishedEvent struct {
	channel string
	event   *domain.Event
}

type stubBus struct {
	published  []publishedEvent
	publishErr error
}

func (b *stubBus) Publish(_ context.Context, channel string, event *domain.Event) error {
	if b.publishErr != nil {
		return b.publishErr
	}
	b.published = append(b.published, publishedEvent{channel: channel, event: event})
	return nil
}

func (b *stubBus) last(t *testing.T) publishedEvent {
	t.Helper()
	if len(b.published) == 0 {
		t.Fatal("expected at least one published event")
	}
	return b.published[len(b.published)-1]
}

type stubClassifier struct {
	analysis ports.Analysis
	err      error
}

func (c *stubClassifier) Classify(_ context.Context, _ string) (ports.Analysis, error) {
	if c.err != nil {
		return ports.Analysis{}, c.err
	}
	return c.analysis, nil
}

func workingClassifier() *stubClassifier {
	return &stubClassifier{analysis: ports.Analysis{
		Category: "Electrical",
		Priority: "HIGH",
		Summary:  "Exposed wiring",
		IsHazard: true,
	}}
}

// ---------------------------------------------------------------------------
// In-memory stub ticket repository
// ---------------------------------------------------------------------------

type stubTicketRepo struct {
	byID      map[string]*domain.Ticket
	nextID    int
	createErr error
	// closeOnRead closes the stored ticket right after the next FindByID,
	// modelling a concurrent writer landing between read and update.
	closeOnRead bool
}

func newStubTicketRepo() *stubTicketRepo {
	return &stubTicketRepo{byID: make(map[string]*domain.Ticket)}
}

func (r *stubTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	ticket.ID = string(rune('0' + r.nextID))
	clone := *ticket
	r.byID[ticket.ID] = &clone
	return nil
}

func (r *stubTicketRepo) FindByID(_ context.Context, id, campusID string) (*domain.Ticket, error) {
	ticket, ok := r.byID[id]
	if !ok || ticket.CampusID != campusID {
		return nil, domain.ErrTicketNotFound
	}
	clone := *ticket
	if r.closeOnRead {
		r.closeOnRead = false
		ticket.Status = domain.TicketClosed
	}
	return &clone, nil
}

func (r *stubTicketRepo) UpdateStatus(_ context.Context, id, campusID string, from, to domain.TicketStatus, at time.Time) (*domain.Ticket, error) {
	ticket, ok := r.byID[id]
	if !ok || ticket.CampusID != campusID {
		return nil, domain.ErrTicketNotFound
	}
	if ticket.Status != from {
		return nil, fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidTransition, from, to)
	}
	ticket.Status = to
	ticket.UpdatedAt = at
	clone := *ticket
	return &clone, nil
}

func (r *stubTicketRepo) ListByCreator(_ context.Context, creatorID, campusID string) ([]*domain.Ticket, error) {
	var out []*domain.Ticket
	for _, ticket := range r.byID {
		if ticket.CreatorID == creatorID && ticket.CampusID == campusID {
			clone := *ticket
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubTicketRepo) ListByCampus(_ context.Context, campusID string) ([]*domain.Ticket, error) {
	var out []*domain.Ticket
	for _, ticket := range r.byID {
		if ticket.CampusID == campusID {
			clone := *ticket
			out = append(out, &clone)
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func member(campusID string) *domain.Identity {
	return &domain.Identity{ID: "user_1", Role: domain.RoleUser, CampusID: campusID}
}

func staff(campusID string) *domain.Identity {
	return &domain.Identity{ID: "mgr_1", Role: domain.RoleManager, CampusID: campusID}
}

func ticketInput() ports.CreateTicketInput {
	return ports.CreateTicketInput{
		Title:       "Broken outlet",
		Description: "Sparks coming from the wall outlet in room B204",
		Location:    "Building B, room 204",
	}
}

// ---------------------------------------------------------------------------
// Create tests
// ---------------------------------------------------------------------------

func TestTicketService_Create_Success(t *testing.T) {
	repo := newStubTicketRepo()
	bus := &stubBus{}
	svc := NewTicketService(repo, workingClassifier(), bus, time.Second, discardLogger)

	result, err := svc.Create(context.Background(), member("campus_1"), ticketInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Ticket.Status != domain.TicketOpen {
		t.Errorf("new ticket must be OPEN, got %s", result.Ticket.Status)
	}
	if result.Ticket.Category != "Electrical" {
		t.Errorf("classifier category must be applied, got %s", result.Ticket.Category)
	}
	if result.Ticket.Priority != domain.PriorityHigh {
		t.Errorf("classifier priority must be applied, got %s", result.Ticket.Priority)
	}
	if !result.Analysis.IsHazard {
		t.Error("hazard flag must be surfaced to the caller")
	}
}

func TestTicketService_Create_NoCampus(t *testing.T) {
	svc := NewTicketService(newStubTicketRepo(), workingClassifier(), &stubBus{}, time.Second, discardLogger)

	_, err := svc.Create(context.Background(), member(""), ticketInput())
	if !errors.Is(err, domain.ErrNoCampus) {
		t.Fatalf("expected ErrNoCampus, got %v", err)
	}
}

func TestTicketService_Create_ClassifierFailureFallsBack(t *testing.T) {
	repo := newStubTicketRepo()
	classifier := &stubClassifier{err: errors.New("model overloaded")}
	svc := NewTicketService(repo, classifier, &stubBus{}, time.Second, discardLogger)

	result, err := svc.Create(context.Background(), member("campus_1"), ticketInput())
	if err != nil {
		t.Fatalf("classifier failure must not block creation: %v", err)
	}
	if result.Ticket.Category != "Other" {
		t.Errorf("expected fallback category Other, got %s", result.Ticket.Category)
	}
	if result.Ticket.Priority != domain.PriorityMedium {
		t.Errorf("expected fallback priority MEDIUM, got %s", result.Ticket.Priority)
	}
	if result.Analysis.IsHazard {
		t.Error("fallback must not flag a hazard")
	}
}

func TestTicketService_Create_EmitsStaffEvent(t *testing.T) {
	bus := &stubBus{}
	svc := NewTicketService(newStubTicketRepo(), workingClassifier(), bus, time.Second, discardLogger)

	result, err := svc.Create(context.Background(), member("campus_1"), ticketInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pub := bus.last(t)
	if pub.channel != domain.CampusChannel("campus_1") {
		t.Errorf("expected campus channel, got %s", pub.channel)
	}
	if pub.event.Type != domain.EventTicketCreated {
		t.Errorf("expected TICKET_CREATED, got %s", pub.event.Type)
	}
	if pub.event.UserID != domain.AudienceStaff {
		t.Errorf("creation event targets staff, not the creator; got %q", pub.event.UserID)
	}
	if pub.event.TicketID != result.Ticket.ID {
		t.Errorf("event must carry the ticket id, got %q", pub.event.TicketID)
	}
}

func TestTicketService_Create_PublishFailureIsSwallowed(t *testing.T) {
	repo := newStubTicketRepo()
	bus := &stubBus{publishErr: errors.New("redis down")}
	svc := NewTicketService(repo, workingClassifier(), bus, time.Second, discardLogger)

	result, err := svc.Create(context.Background(), member("campus_1"), ticketInput())
	if err != nil {
		t.Fatalf("publish failure must never fail the mutation: %v", err)
	}
	if _, ok := repo.byID[result.Ticket.ID]; !ok {
		t.Error("ticket must stay persisted after a failed publish")
	}
}

// ---------------------------------------------------------------------------
// UpdateStatus tests
// ---------------------------------------------------------------------------

func seedTicket(repo *stubTicketRepo, campusID, creatorID string, status domain.TicketStatus) *domain.Ticket {
	repo.nextID++
	ticket := &domain.Ticket{
		ID:        string(rune('0' + repo.nextID)),
		CampusID:  campusID,
		CreatorID: creatorID,
		Status:    status,
	}
	repo.byID[ticket.ID] = ticket
	return ticket
}

func TestTicketService_UpdateStatus_Success(t *testing.T) {
	repo := newStubTicketRepo()
	ticket := seedTicket(repo, "campus_1", "user_1", domain.TicketOpen)
	bus := &stubBus{}
	svc := NewTicketService(repo, workingClassifier(), bus, time.Second, discardLogger)

	updated, err := svc.UpdateStatus(context.Background(), staff("campus_1"), ticket.ID, domain.TicketInProgress)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != domain.TicketInProgress {
		t.Errorf("expected IN_PROGRESS, got %s", updated.Status)
	}
}

func TestTicketService_UpdateStatus_NonStaffForbidden(t *testing.T) {
	repo := newStubTicketRepo()
	ticket := seedTicket(repo, "campus_1", "user_1", domain.TicketOpen)
	svc := NewTicketService(repo, workingClassifier(), &stubBus{}, time.Second, discardLogger)

	_, err := svc.UpdateStatus(context.Background(), member("campus_1"), ticket.ID, domain.TicketInProgress)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestTicketService_UpdateStatus_InvalidTransition(t *testing.T) {
	repo := newStubTicketRepo()
	ticket := seedTicket(repo, "campus_1", "user_1", domain.TicketClosed)
	svc := NewTicketService(repo, workingClassifier(), &stubBus{}, time.Second, discardLogger)

	_, err := svc.UpdateStatus(context.Background(), staff("campus_1"), ticket.ID, domain.TicketInProgress)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestTicketService_UpdateStatus_ConcurrentCloseNotOverwritten(t *testing.T) {
	repo := newStubTicketRepo()
	ticket := seedTicket(repo, "campus_1", "user_1", domain.TicketOpen)
	repo.closeOnRead = true // another staff member closes it mid-flight
	bus := &stubBus{}
	svc := NewTicketService(repo, workingClassifier(), bus, time.Second, discardLogger)

	_, err := svc.UpdateStatus(context.Background(), staff("campus_1"), ticket.ID, domain.TicketInProgress)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("losing a status race must surface as ErrInvalidTransition, got %v", err)
	}
	if repo.byID[ticket.ID].Status != domain.TicketClosed {
		t.Errorf("a closed ticket must stay closed, got %s", repo.byID[ticket.ID].Status)
	}
	if len(bus.published) != 0 {
		t.Error("a lost race must not emit an update event")
	}
}

func TestTicketService_UpdateStatus_CrossTenantLooksMissing(t *testing.T) {
	repo := newStubTicketRepo()
	ticket := seedTicket(repo, "campus_1", "user_1", domain.TicketOpen)
	svc := NewTicketService(repo, workingClassifier(), &stubBus{}, time.Second, discardLogger)

	_, err := svc.UpdateStatus(context.Background(), staff("campus_2"), ticket.ID, domain.TicketInProgress)
	if !errors.Is(err, domain.ErrTicketNotFound) {
		t.Fatalf("cross-tenant update must look like a missing ticket, got %v", err)
	}
}

func TestTicketService_UpdateStatus_EventTargetsCreator(t *testing.T) {
	repo := newStubTicketRepo()
	ticket := seedTicket(repo, "campus_1", "creator_7", domain.TicketOpen)
	bus := &stubBus{}
	svc := NewTicketService(repo, workingClassifier(), bus, time.Second, discardLogger)

	_, err := svc.UpdateStatus(context.Background(), staff("campus_1"), ticket.ID, domain.TicketClosed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pub := bus.last(t)
	if pub.event.Type != domain.EventTicketUpdated {
		t.Errorf("expected TICKET_UPDATED, got %s", pub.event.Type)
	}
	if pub.event.UserID != "creator_7" {
		t.Errorf("update event targets the creator, got %q", pub.event.UserID)
	}
	if pub.event.Status != string(domain.TicketClosed) {
		t.Errorf("event must carry the new status, got %q", pub.event.Status)
	}
}

// ---------------------------------------------------------------------------
// Listing tests
// ---------------------------------------------------------------------------

func TestTicketService_ListMine_OnlyOwnTickets(t *testing.T) {
	repo := newStubTicketRepo()
	seedTicket(repo, "campus_1", "user_1", domain.TicketOpen)
	seedTicket(repo, "campus_1", "user_2", domain.TicketOpen)
	svc := NewTicketService(repo, workingClassifier(), &stubBus{}, time.Second, discardLogger)

	tickets, err := svc.ListMine(context.Background(), member("campus_1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tickets) != 1 {
		t.Fatalf("expected 1 ticket, got %d", len(tickets))
	}
	if tickets[0].CreatorID != "user_1" {
		t.Errorf("expected own ticket, got creator %s", tickets[0].CreatorID)
	}
}

func TestTicketService_ListAll_RequiresStaff(t *testing.T) {
	svc := NewTicketService(newStubTicketRepo(), workingClassifier(), &stubBus{}, time.Second, discardLogger)

	_, err := svc.ListAll(context.Background(), member("campus_1"))
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestTicketService_ListAll_CampusScoped(t *testing.T) {
	repo := newStubTicketRepo()
	seedTicket(repo, "campus_1", "user_1", domain.TicketOpen)
	seedTicket(repo, "campus_2", "user_9", domain.TicketOpen)
	svc := NewTicketService(repo, workingClassifier(), &stubBus{}, time.Second, discardLogger)

	tickets, err := svc.ListAll(context.Background(), staff("campus_1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tickets) != 1 {
		t.Fatalf("expected 1 ticket, got %d", len(tickets))
	}
	if tickets[0].CampusID != "campus_1" {
		t.Errorf("tickets from other campuses must not leak, got %s", tickets[0].CampusID)
	}
}
