package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mafiaidola/leads-manager-sub000/internal/audit"
	"github.com/mafiaidola/leads-manager-sub000/internal/events"
	"github.com/mafiaidola/leads-manager-sub000/internal/leads/domain"
	"github.com/mafiaidola/leads-manager-sub000/internal/leads/duplicate"
	"github.com/mafiaidola/leads-manager-sub000/internal/leads/ports"
	"github.com/mafiaidola/leads-manager-sub000/internal/leads/repository"
	"github.com/mafiaidola/leads-manager-sub000/internal/leads/transport"
	"github.com/mafiaidola/leads-manager-sub000/internal/users"
	"github.com/mafiaidola/leads-manager-sub000/platform/apperr"
	"github.com/mafiaidola/leads-manager-sub000/platform/logger"
)

// fakeStore is an in-memory Store for engine tests.
type fakeStore struct {
	leads   map[uuid.UUID]*repository.Lead
	notes   []*repository.Note
	actions []*repository.Action
	serial  int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{leads: make(map[uuid.UUID]*repository.Lead)}
}

func (f *fakeStore) Create(ctx context.Context, p repository.CreateLeadParams) (*repository.Lead, error) {
	for _, l := range f.leads {
		if l.DeletedAt == nil && p.PhoneDigits != "" && l.PhoneDigits == p.PhoneDigits {
			return nil, repository.ErrDuplicatePhone
		}
	}
	f.serial++
	lead := &repository.Lead{
		ID: uuid.New(), SerialNumber: f.serial,
		Name: p.Name, Company: p.Company, Position: p.Position, Email: p.Email,
		Phone: p.Phone, PhoneDigits: p.PhoneDigits, PhoneCountryCode: p.PhoneCountryCode,
		Website: p.Website, Status: p.Status, Source: p.Source, Product: p.Product,
		Tags: p.Tags, Currency: p.Currency, Value: p.Value,
		AssignedTo: p.AssignedTo, CreatedBy: p.CreatedBy, Public: p.Public,
		FollowUpDate: p.FollowUpDate, StarredBy: []uuid.UUID{},
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	f.leads[lead.ID] = lead
	return cloneLead(lead), nil
}

func (f *fakeStore) GetByID(ctx context.Context, id uuid.UUID) (*repository.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneLead(lead), nil
}

func (f *fakeStore) Update(ctx context.Context, id uuid.UUID, p repository.UpdateLeadParams) (*repository.Lead, error) {
	lead, ok := f.leads[id]
	if !ok || lead.DeletedAt != nil {
		return nil, repository.ErrNotFound
	}
	if p.Name != nil {
		lead.Name = *p.Name
	}
	if p.Company != nil {
		lead.Company = *p.Company
	}
	if p.Email != nil {
		lead.Email = *p.Email
	}
	if p.Phone != nil {
		lead.Phone = *p.Phone
	}
	if p.PhoneDigits != nil {
		lead.PhoneDigits = *p.PhoneDigits
	}
	if p.Status != nil {
		lead.Status = *p.Status
	}
	if p.Source != nil {
		lead.Source = *p.Source
	}
	if p.Product != nil {
		lead.Product = *p.Product
	}
	if p.Website != nil {
		lead.Website = *p.Website
	}
	if p.ValueSet {
		lead.Value = p.Value
	}
	if p.AssignedToSet {
		lead.AssignedTo = p.AssignedTo
	}
	lead.UpdatedBy = &p.UpdatedBy
	lead.UpdatedAt = time.Now()
	return cloneLead(lead), nil
}

func (f *fakeStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string, updatedBy uuid.UUID) (*repository.Lead, error) {
	lead, ok := f.leads[id]
	if !ok || lead.DeletedAt != nil {
		return nil, repository.ErrNotFound
	}
	lead.Status = status
	lead.UpdatedBy = &updatedBy
	return cloneLead(lead), nil
}

func (f *fakeStore) SetAssignee(ctx context.Context, id uuid.UUID, assignee *uuid.UUID, updatedBy uuid.UUID) (*repository.Lead, error) {
	lead, ok := f.leads[id]
	if !ok || lead.DeletedAt != nil {
		return nil, repository.ErrNotFound
	}
	lead.AssignedTo = assignee
	return cloneLead(lead), nil
}

func (f *fakeStore) TouchLastContact(ctx context.Context, id uuid.UUID) error {
	lead, ok := f.leads[id]
	if !ok {
		return repository.ErrNotFound
	}
	now := time.Now()
	lead.LastContactAt = &now
	return nil
}

func (f *fakeStore) SoftDelete(ctx context.Context, id uuid.UUID, updatedBy uuid.UUID) (*repository.Lead, error) {
	lead, ok := f.leads[id]
	if !ok || lead.DeletedAt != nil {
		return nil, repository.ErrNotFound
	}
	now := time.Now()
	lead.DeletedAt = &now
	return cloneLead(lead), nil
}

func (f *fakeStore) Restore(ctx context.Context, id uuid.UUID, updatedBy uuid.UUID) (*repository.Lead, error) {
	lead, ok := f.leads[id]
	if !ok || lead.DeletedAt == nil {
		return nil, repository.ErrNotFound
	}
	lead.DeletedAt = nil
	return cloneLead(lead), nil
}

func (f *fakeStore) PermanentDelete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.leads[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.leads, id)
	var keptNotes []*repository.Note
	for _, n := range f.notes {
		if n.LeadID != id {
			keptNotes = append(keptNotes, n)
		}
	}
	f.notes = keptNotes
	var keptActions []*repository.Action
	for _, a := range f.actions {
		if a.LeadID != id {
			keptActions = append(keptActions, a)
		}
	}
	f.actions = keptActions
	return nil
}

func (f *fakeStore) ToggleStar(ctx context.Context, id, userID uuid.UUID) (*repository.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for i, starred := range lead.StarredBy {
		if starred == userID {
			lead.StarredBy = append(lead.StarredBy[:i], lead.StarredBy[i+1:]...)
			return cloneLead(lead), nil
		}
	}
	lead.StarredBy = append(lead.StarredBy, userID)
	return cloneLead(lead), nil
}

func (f *fakeStore) List(ctx context.Context, p repository.ListParams) (*repository.ListResult, error) {
	var out []*repository.Lead
	for _, l := range f.leads {
		if p.Trash != (l.DeletedAt != nil) {
			continue
		}
		if p.AssignedTo != nil && (l.AssignedTo == nil || *l.AssignedTo != *p.AssignedTo) {
			continue
		}
		out = append(out, cloneLead(l))
	}
	return &repository.ListResult{Leads: out, Total: int64(len(out)), Page: 1}, nil
}

func (f *fakeStore) FindByPhoneDigits(ctx context.Context, digits string, excludeID *uuid.UUID) (*repository.Lead, error) {
	for _, l := range f.leads {
		if l.DeletedAt != nil || l.PhoneDigits != digits {
			continue
		}
		if excludeID != nil && l.ID == *excludeID {
			continue
		}
		return cloneLead(l), nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStore) FindSimilar(ctx context.Context, email, phoneDigits string, excludeID *uuid.UUID, limit int) ([]*repository.Lead, error) {
	return nil, nil
}

func (f *fakeStore) BulkUpdateStatus(ctx context.Context, ids []uuid.UUID, status string, updatedBy uuid.UUID) (int64, error) {
	var count int64
	for _, id := range ids {
		if lead, ok := f.leads[id]; ok && lead.DeletedAt == nil {
			lead.Status = status
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) BulkAssign(ctx context.Context, ids []uuid.UUID, assignee uuid.UUID, updatedBy uuid.UUID) (int64, error) {
	var count int64
	for _, id := range ids {
		if lead, ok := f.leads[id]; ok && lead.DeletedAt == nil {
			a := assignee
			lead.AssignedTo = &a
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) BulkSoftDelete(ctx context.Context, ids []uuid.UUID, updatedBy uuid.UUID) (int64, error) {
	var count int64
	now := time.Now()
	for _, id := range ids {
		if lead, ok := f.leads[id]; ok && lead.DeletedAt == nil {
			lead.DeletedAt = &now
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) CreateNote(ctx context.Context, p repository.CreateNoteParams) (*repository.Note, error) {
	// Monotonic timestamps keep ordering assertions deterministic.
	note := &repository.Note{
		ID: uuid.New(), LeadID: p.LeadID, AuthorID: p.AuthorID,
		AuthorRole: p.AuthorRole, Type: p.Type, Message: p.Message,
		Meta: p.Meta, CreatedAt: time.Now().Add(time.Duration(len(f.notes)) * time.Millisecond),
	}
	f.notes = append(f.notes, note)
	return note, nil
}

func (f *fakeStore) ListNotes(ctx context.Context, leadID uuid.UUID) ([]*repository.Note, error) {
	var out []*repository.Note
	for _, n := range f.notes {
		if n.LeadID == leadID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateAction(ctx context.Context, p repository.CreateActionParams) (*repository.Action, error) {
	action := &repository.Action{
		ID: uuid.New(), LeadID: p.LeadID, AuthorID: p.AuthorID,
		Type: p.Type, Description: p.Description, Outcome: p.Outcome,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	f.actions = append(f.actions, action)
	return action, nil
}

func (f *fakeStore) Timeline(ctx context.Context, leadID uuid.UUID) ([]*repository.TimelineEntry, error) {
	var entries []*repository.TimelineEntry
	for _, n := range f.notes {
		if n.LeadID == leadID {
			entries = append(entries, &repository.TimelineEntry{
				Kind: repository.TimelineKindNote, Type: n.Type,
				Message: n.Message, Meta: n.Meta, CreatedAt: n.CreatedAt,
			})
		}
	}
	return repository.MergeTimeline(entries), nil
}

func cloneLead(l *repository.Lead) *repository.Lead {
	c := *l
	c.StarredBy = append([]uuid.UUID(nil), l.StarredBy...)
	return &c
}

type fakeDirectory struct {
	users map[uuid.UUID]*ports.DirectoryUser
}

func (f *fakeDirectory) GetUser(ctx context.Context, id uuid.UUID) (*ports.DirectoryUser, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	return user, nil
}

type fakeVocab struct{ statuses []string }

func (f *fakeVocab) HasStatus(ctx context.Context, key string) (bool, error) {
	for _, s := range f.statuses {
		if s == key {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeVocab) DefaultStatus(ctx context.Context) (string, error) {
	return f.statuses[0], nil
}

type auditSink struct{ entries []audit.Entry }

func (a *auditSink) Insert(ctx context.Context, e audit.Entry) error {
	a.entries = append(a.entries, e)
	return nil
}

type fixture struct {
	svc   *Service
	store *fakeStore
	dir   *fakeDirectory
	audit *auditSink
}

func newFixture() *fixture {
	log := logger.New("development")
	store := newFakeStore()
	dir := &fakeDirectory{users: make(map[uuid.UUID]*ports.DirectoryUser)}
	sink := &auditSink{}
	svc := New(
		store,
		duplicate.New(store, "AE"),
		dir,
		&fakeVocab{statuses: []string{"New", "Contacted", "Won", "Lost"}},
		audit.NewRecorder(sink, log),
		events.NewInMemoryBus(log),
		log,
		"AE",
	)
	return &fixture{svc: svc, store: store, dir: dir, audit: sink}
}

func (fx *fixture) addUser(name, role string, active bool) uuid.UUID {
	id := uuid.New()
	fx.dir.users[id] = &ports.DirectoryUser{ID: id, Name: name, Role: role, Active: active}
	return id
}

func admin() domain.Principal {
	return domain.Principal{UserID: uuid.New(), Name: "Alice Admin", Role: domain.Admin()}
}

func ctxb() context.Context { return context.Background() }

func TestCreateLead(t *testing.T) {
	fx := newFixture()

	res, err := fx.svc.Create(ctxb(), admin(), transport.CreateLeadRequest{Name: "Acme", Phone: "0501234567"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success {
		t.Fatal("expected success")
	}
	if res.Lead.Status != "New" {
		t.Fatalf("expected default status New, got %q", res.Lead.Status)
	}
	if res.Lead.Phone != "+971501234567" {
		t.Fatalf("expected normalized phone, got %q", res.Lead.Phone)
	}

	if len(fx.store.notes) != 1 || fx.store.notes[0].Type != repository.NoteTypeSystem {
		t.Fatalf("expected one system note, got %+v", fx.store.notes)
	}
	if len(fx.audit.entries) != 1 || fx.audit.entries[0].Action != audit.ActionCreate {
		t.Fatalf("expected one CREATE audit entry, got %+v", fx.audit.entries)
	}
}

func TestCreateDuplicatePhonePersistsNothing(t *testing.T) {
	fx := newFixture()
	p := admin()

	if _, err := fx.svc.Create(ctxb(), p, transport.CreateLeadRequest{Name: "Acme", Phone: "501234567"}); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	_, err := fx.svc.Create(ctxb(), p, transport.CreateLeadRequest{Name: "Copycat", Phone: "+971501234567"})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Details["leadName"] != "Acme" {
		t.Fatalf("conflict should name the existing lead, got %+v", appErr)
	}
	if len(fx.store.leads) != 1 {
		t.Fatalf("duplicate create must persist nothing, have %d leads", len(fx.store.leads))
	}
}

func TestCreateRejectsNonDigitPhone(t *testing.T) {
	fx := newFixture()

	_, err := fx.svc.Create(ctxb(), admin(), transport.CreateLeadRequest{Name: "Bad", Phone: "call-me-maybe"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateRejectsUnknownStatus(t *testing.T) {
	fx := newFixture()

	_, err := fx.svc.Create(ctxb(), admin(), transport.CreateLeadRequest{Name: "Acme", Status: "Imaginary"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSalesCannotUpdateStatusOfForeignLead(t *testing.T) {
	fx := newFixture()
	created, err := fx.svc.Create(ctxb(), admin(), transport.CreateLeadRequest{Name: "Acme"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	sales := domain.Principal{UserID: uuid.New(), Name: "Sam Sales", Role: domain.Sales()}
	_, err = fx.svc.UpdateStatus(ctxb(), sales, created.Lead.ID, "Won")
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	lead, _ := fx.store.GetByID(ctxb(), created.Lead.ID)
	if lead.Status != "New" {
		t.Fatalf("denied update must leave lead unchanged, status is %q", lead.Status)
	}
}

func TestAssignedSalesStatusChangeWritesNote(t *testing.T) {
	fx := newFixture()
	sales := domain.Principal{UserID: uuid.New(), Name: "Sam Sales", Role: domain.Sales()}
	fx.dir.users[sales.UserID] = &ports.DirectoryUser{ID: sales.UserID, Name: "Sam Sales", Role: "SALES", Active: true}

	created, err := fx.svc.Create(ctxb(), admin(), transport.CreateLeadRequest{Name: "Acme", AssignedTo: &sales.UserID})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	res, err := fx.svc.UpdateStatus(ctxb(), sales, created.Lead.ID, "Won")
	if err != nil {
		t.Fatalf("assigned sales should update status: %v", err)
	}
	if res.Lead.Status != "Won" {
		t.Fatalf("expected Won, got %q", res.Lead.Status)
	}

	var statusNote *repository.Note
	for _, n := range fx.store.notes {
		if n.Type == repository.NoteTypeStatusChange {
			statusNote = n
		}
	}
	if statusNote == nil {
		t.Fatal("expected a STATUS_CHANGE note")
	}
	if statusNote.Meta["fromStatus"] != "New" || statusNote.Meta["toStatus"] != "Won" {
		t.Fatalf("status note meta wrong: %+v", statusNote.Meta)
	}

	timeline, err := fx.svc.Timeline(ctxb(), sales, created.Lead.ID)
	if err != nil {
		t.Fatalf("timeline failed: %v", err)
	}
	if len(timeline.Entries) == 0 || timeline.Entries[0].Type != repository.NoteTypeStatusChange {
		t.Fatal("newest timeline entry should be the status change")
	}
}

func TestMarketingDenialMatrix(t *testing.T) {
	fx := newFixture()
	marketing := domain.Principal{UserID: uuid.New(), Name: "Mary Marketing", Role: domain.Marketing()}

	created, err := fx.svc.Create(ctxb(), marketing, transport.CreateLeadRequest{Name: "FromMarketing"})
	if err != nil {
		t.Fatalf("marketing should create leads: %v", err)
	}

	name := "Renamed"
	if _, err := fx.svc.Update(ctxb(), marketing, created.Lead.ID, transport.UpdateLeadRequest{Name: &name}); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("marketing update should be forbidden, got %v", err)
	}
	if _, err := fx.svc.AddNote(ctxb(), marketing, created.Lead.ID, transport.AddNoteRequest{Message: "hi"}); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("marketing note should be forbidden, got %v", err)
	}
	if _, err := fx.svc.AddAction(ctxb(), marketing, created.Lead.ID, transport.AddActionRequest{Type: "CALL", Description: "x"}); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("marketing action should be forbidden, got %v", err)
	}
}

func TestUpdateIgnoresAssignmentForSales(t *testing.T) {
	fx := newFixture()
	sales := domain.Principal{UserID: uuid.New(), Name: "Sam", Role: domain.Sales()}
	fx.dir.users[sales.UserID] = &ports.DirectoryUser{ID: sales.UserID, Name: "Sam", Role: "SALES", Active: true}
	created, err := fx.svc.Create(ctxb(), admin(), transport.CreateLeadRequest{Name: "Acme", AssignedTo: &sales.UserID})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	other := uuid.New()
	req := transport.UpdateLeadRequest{
		AssignedTo: transport.OptionalUUID{Value: &other, Set: true},
	}
	if _, err := fx.svc.Update(ctxb(), sales, created.Lead.ID, req); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	lead, _ := fx.store.GetByID(ctxb(), created.Lead.ID)
	if lead.AssignedTo == nil || *lead.AssignedTo != sales.UserID {
		t.Fatal("sales-submitted assignedTo must be silently ignored")
	}
}

func TestToggleStarIsInvolution(t *testing.T) {
	fx := newFixture()
	p := admin()
	created, err := fx.svc.Create(ctxb(), p, transport.CreateLeadRequest{Name: "Acme"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	first, err := fx.svc.ToggleStar(ctxb(), p, created.Lead.ID)
	if err != nil {
		t.Fatalf("first toggle failed: %v", err)
	}
	if !first.Lead.Starred {
		t.Fatal("first toggle should star")
	}

	second, err := fx.svc.ToggleStar(ctxb(), p, created.Lead.ID)
	if err != nil {
		t.Fatalf("second toggle failed: %v", err)
	}
	if second.Lead.Starred {
		t.Fatal("second toggle should return to unstarred")
	}
}

func TestBulkAssignInactiveTargetModifiesNothing(t *testing.T) {
	fx := newFixture()
	p := admin()
	created, _ := fx.svc.Create(ctxb(), p, transport.CreateLeadRequest{Name: "A"})
	inactive := fx.addUser("Gone Guy", "SALES", false)

	_, err := fx.svc.BulkAssign(ctxb(), p, transport.BulkAssignRequest{
		IDs:    []uuid.UUID{created.Lead.ID},
		UserID: inactive,
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation failure for inactive target, got %v", err)
	}
	lead, _ := fx.store.GetByID(ctxb(), created.Lead.ID)
	if lead.AssignedTo != nil {
		t.Fatal("inactive target must modify zero leads")
	}

	_, err = fx.svc.BulkAssign(ctxb(), p, transport.BulkAssignRequest{
		IDs:    []uuid.UUID{created.Lead.ID},
		UserID: uuid.New(),
	})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for missing target, got %v", err)
	}
}

func TestBulkSoftDeleteWritesOneAggregatedAuditEntry(t *testing.T) {
	fx := newFixture()
	p := admin()
	a, _ := fx.svc.Create(ctxb(), p, transport.CreateLeadRequest{Name: "A"})
	b, _ := fx.svc.Create(ctxb(), p, transport.CreateLeadRequest{Name: "B"})
	c, _ := fx.svc.Create(ctxb(), p, transport.CreateLeadRequest{Name: "C"})
	ids := []uuid.UUID{a.Lead.ID, b.Lead.ID, c.Lead.ID}
	auditBefore := len(fx.audit.entries)

	res, err := fx.svc.BulkSoftDelete(ctxb(), p, transport.BulkDeleteRequest{IDs: ids})
	if err != nil {
		t.Fatalf("bulk delete failed: %v", err)
	}
	if res.Count != 3 {
		t.Fatalf("expected 3 deleted, got %d", res.Count)
	}
	if len(fx.audit.entries) != auditBefore+1 {
		t.Fatalf("expected exactly one audit entry, got %d", len(fx.audit.entries)-auditBefore)
	}
	entry := fx.audit.entries[len(fx.audit.entries)-1]
	if entry.Action != audit.ActionBulkDelete || entry.EntityID != audit.JoinIDs(ids) {
		t.Fatalf("aggregated audit entry wrong: %+v", entry)
	}

	trash, _ := fx.svc.List(ctxb(), p, ListQuery{Trash: true})
	if len(trash.Leads) != 3 {
		t.Fatalf("trash listing should return 3, got %d", len(trash.Leads))
	}
	live, _ := fx.svc.List(ctxb(), p, ListQuery{})
	if len(live.Leads) != 0 {
		t.Fatalf("default listing should exclude trashed leads, got %d", len(live.Leads))
	}
}

func TestRestoreThenPermanentDelete(t *testing.T) {
	fx := newFixture()
	p := admin()
	created, _ := fx.svc.Create(ctxb(), p, transport.CreateLeadRequest{Name: "A"})
	id := created.Lead.ID

	if _, err := fx.svc.Delete(ctxb(), p, id); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := fx.svc.Restore(ctxb(), p, id); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	live, _ := fx.svc.List(ctxb(), p, ListQuery{})
	if len(live.Leads) != 1 {
		t.Fatal("restored lead should reappear in the default listing")
	}

	if _, err := fx.svc.AddNote(ctxb(), p, id, transport.AddNoteRequest{Message: "note"}); err != nil {
		t.Fatalf("note failed: %v", err)
	}
	if _, err := fx.svc.PermanentDelete(ctxb(), p, id); err != nil {
		t.Fatalf("permanent delete failed: %v", err)
	}
	if _, err := fx.store.GetByID(ctxb(), id); err != repository.ErrNotFound {
		t.Fatal("lead should be gone after permanent delete")
	}
	for _, n := range fx.store.notes {
		if n.LeadID == id {
			t.Fatal("notes should cascade on permanent delete")
		}
	}
}

func TestTransferWritesNoteAndAudit(t *testing.T) {
	fx := newFixture()
	p := admin()
	target := fx.addUser("Tina Target", "SALES", true)
	created, _ := fx.svc.Create(ctxb(), p, transport.CreateLeadRequest{Name: "Acme"})

	res, err := fx.svc.Transfer(ctxb(), p, created.Lead.ID, target)
	if err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	if res.Lead.AssignedTo == nil || *res.Lead.AssignedTo != target {
		t.Fatal("transfer should set the assignee")
	}

	last := fx.audit.entries[len(fx.audit.entries)-1]
	if last.Action != audit.ActionTransfer {
		t.Fatalf("expected TRANSFER audit entry, got %s", last.Action)
	}
}

func TestAddActionWritesCompanionNoteAndTouchesContact(t *testing.T) {
	fx := newFixture()
	p := admin()
	created, _ := fx.svc.Create(ctxb(), p, transport.CreateLeadRequest{Name: "Acme"})

	if _, err := fx.svc.AddAction(ctxb(), p, created.Lead.ID, transport.AddActionRequest{Type: repository.ActionTypeCall, Description: "intro call"}); err != nil {
		t.Fatalf("add action failed: %v", err)
	}

	lead, _ := fx.store.GetByID(ctxb(), created.Lead.ID)
	if lead.LastContactAt == nil {
		t.Fatal("action must bump last contact")
	}
	foundCompanion := false
	for _, n := range fx.store.notes {
		if n.Type == repository.NoteTypeSystem && n.Meta != nil && n.Meta["actionType"] == repository.ActionTypeCall {
			foundCompanion = true
		}
	}
	if !foundCompanion {
		t.Fatal("action must write a companion system note")
	}
}

func TestAddActionRejectsUnknownType(t *testing.T) {
	fx := newFixture()
	p := admin()
	created, _ := fx.svc.Create(ctxb(), p, transport.CreateLeadRequest{Name: "Acme"})

	_, err := fx.svc.AddAction(ctxb(), p, created.Lead.ID, transport.AddActionRequest{Type: "TELEPATHY", Description: "x"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateLocalFormatDuplicateNamesExistingLead(t *testing.T) {
	fx := newFixture()
	p := admin()

	if _, err := fx.svc.Create(ctxb(), p, transport.CreateLeadRequest{Name: "Acme", Phone: "+971501234567"}); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	// The same number in local format must hit the pre-check, not just
	// the unique index.
	_, err := fx.svc.Create(ctxb(), p, transport.CreateLeadRequest{Name: "Copycat", Phone: "0501234567"})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Details["leadName"] != "Acme" {
		t.Fatalf("conflict should name the existing lead, got %+v", appErr)
	}
	if len(fx.store.leads) != 1 {
		t.Fatalf("duplicate create must persist nothing, have %d leads", len(fx.store.leads))
	}
}

func TestCreateInactiveAssigneePersistsNothing(t *testing.T) {
	fx := newFixture()
	inactive := fx.addUser("Gone Gil", "SALES", false)

	_, err := fx.svc.Create(ctxb(), admin(), transport.CreateLeadRequest{
		Name:       "Acme",
		AssignedTo: &inactive,
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for inactive assignee, got %v", err)
	}
	if len(fx.store.leads) != 0 {
		t.Fatalf("create with inactive assignee must persist nothing, have %d leads", len(fx.store.leads))
	}

	missing := uuid.New()
	_, err = fx.svc.Create(ctxb(), admin(), transport.CreateLeadRequest{
		Name:       "Acme",
		AssignedTo: &missing,
	})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for unknown assignee, got %v", err)
	}
}

func TestScopedRoleListSeesOnlyOwnLeads(t *testing.T) {
	fx := newFixture()
	mine := uuid.New()
	other := fx.addUser("Omar Other", "SALES", true)

	seed := func(name string, assignee *uuid.UUID) {
		if _, err := fx.store.Create(ctxb(), repository.CreateLeadParams{Name: name, Status: "New", AssignedTo: assignee, CreatedBy: mine}); err != nil {
			t.Fatalf("seed %s: %v", name, err)
		}
	}
	seed("Mine", &mine)
	seed("Theirs", &other)
	seed("Unassigned", nil)

	scoped := domain.Principal{UserID: mine, Name: "Scoped", Role: domain.Custom(domain.PermLeadEdit)}
	res, err := fx.svc.List(ctxb(), scoped, ListQuery{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(res.Leads) != 1 || res.Leads[0].Name != "Mine" {
		t.Fatalf("scoped role should only see its own leads, got %+v", res.Leads)
	}

	viewer := domain.Principal{UserID: mine, Name: "Viewer", Role: domain.Custom(domain.PermLeadViewAll)}
	res, err = fx.svc.List(ctxb(), viewer, ListQuery{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(res.Leads) != 3 {
		t.Fatalf("view-all role should see every lead, got %d", len(res.Leads))
	}
}
