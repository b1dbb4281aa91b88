package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/townhall/civic-service/internal/domain"
	"github.com/townhall/civic-service/internal/repository"
)

// fakeStore is an in-memory repository.Store mirroring the semantics of the
// SQL layer closely enough for service tests: ErrNoRows on misses,
// get-or-create credentials, conditional status flips on town changes.
type fakeStore struct {
	mu sync.Mutex

	principals    map[string]*domain.Principal
	citizens      map[string]*domain.CitizenProfile       // by principal ID
	businesses    map[string]*domain.BusinessOwnerProfile // by principal ID
	officials     map[string]*domain.GovernmentOfficial   // by official ID
	towns         map[string]*domain.Town
	townChanges   map[string]*domain.TownChangeRequest
	credentials   map[string]*domain.APICredential // by principal ID
	complaints    map[string]*domain.Complaint
	comments      map[string][]domain.ComplaintComment
	attachments   map[string][]domain.ComplaintAttachment
	licenses      map[string]*domain.License
	announcements map[string]*domain.Announcement
	bills         map[string]*domain.BillProposal
	votes         map[string]map[string]*domain.BillVote // billID -> principalID
	billComments  map[string][]domain.BillComment
	events        map[string]*domain.BusinessEvent
	registrations map[string]map[string]*domain.EventRegistration
	notifications map[string][]domain.Notification // by principal ID
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		principals:    make(map[string]*domain.Principal),
		citizens:      make(map[string]*domain.CitizenProfile),
		businesses:    make(map[string]*domain.BusinessOwnerProfile),
		officials:     make(map[string]*domain.GovernmentOfficial),
		towns:         make(map[string]*domain.Town),
		townChanges:   make(map[string]*domain.TownChangeRequest),
		credentials:   make(map[string]*domain.APICredential),
		complaints:    make(map[string]*domain.Complaint),
		comments:      make(map[string][]domain.ComplaintComment),
		attachments:   make(map[string][]domain.ComplaintAttachment),
		licenses:      make(map[string]*domain.License),
		announcements: make(map[string]*domain.Announcement),
		bills:         make(map[string]*domain.BillProposal),
		votes:         make(map[string]map[string]*domain.BillVote),
		billComments:  make(map[string][]domain.BillComment),
		events:        make(map[string]*domain.BusinessEvent),
		registrations: make(map[string]map[string]*domain.EventRegistration),
		notifications: make(map[string][]domain.Notification),
	}
}

func (s *fakeStore) Principals() repository.PrincipalRepository { return (*fakePrincipals)(s) }
func (s *fakeStore) CitizenProfiles() repository.CitizenProfileRepository {
	return (*fakeCitizens)(s)
}
func (s *fakeStore) BusinessProfiles() repository.BusinessProfileRepository {
	return (*fakeBusinesses)(s)
}
func (s *fakeStore) Officials() repository.OfficialRepository       { return (*fakeOfficials)(s) }
func (s *fakeStore) Towns() repository.TownRepository               { return (*fakeTowns)(s) }
func (s *fakeStore) TownChanges() repository.TownChangeRepository   { return (*fakeTownChanges)(s) }
func (s *fakeStore) Credentials() repository.CredentialRepository   { return (*fakeCredentials)(s) }
func (s *fakeStore) Complaints() repository.ComplaintRepository     { return (*fakeComplaints)(s) }
func (s *fakeStore) Licenses() repository.LicenseRepository         { return (*fakeLicenses)(s) }
func (s *fakeStore) Announcements() repository.AnnouncementRepository {
	return (*fakeAnnouncements)(s)
}
func (s *fakeStore) Bills() repository.BillRepository                 { return (*fakeBills)(s) }
func (s *fakeStore) Events() repository.EventRepository               { return (*fakeEvents)(s) }
func (s *fakeStore) Notifications() repository.NotificationRepository { return (*fakeNotifications)(s) }

func (s *fakeStore) ExecTx(_ context.Context, fn func(repository.Store) error) error {
	return fn(s)
}

// ---------------------------------------------------------------------------
// Principals
// ---------------------------------------------------------------------------

type fakePrincipals fakeStore

func (r *fakePrincipals) Create(_ context.Context, p *domain.Principal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	clone := *p
	r.principals[p.ID] = &clone
	return nil
}

func (r *fakePrincipals) Update(_ context.Context, p *domain.Principal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.principals[p.ID]; !ok {
		return pgx.ErrNoRows
	}
	p.UpdatedAt = time.Now()
	clone := *p
	r.principals[p.ID] = &clone
	return nil
}

func (r *fakePrincipals) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.principals[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.principals, id)
	delete(r.credentials, id)
	delete(r.citizens, id)
	delete(r.businesses, id)
	return nil
}

func (r *fakePrincipals) GetByID(_ context.Context, id string) (*domain.Principal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.principals[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *p
	return &clone, nil
}

func (r *fakePrincipals) GetByEmail(_ context.Context, email string) (*domain.Principal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.principals {
		if strings.EqualFold(p.Email, email) {
			clone := *p
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakePrincipals) List(_ context.Context, filter repository.PrincipalFilter) ([]domain.Principal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Principal
	for _, p := range r.principals {
		if filter.TownID != nil && (p.TownID == nil || *p.TownID != *filter.TownID) {
			continue
		}
		if filter.IsApproved != nil && p.IsApproved != *filter.IsApproved {
			continue
		}
		if len(filter.Roles) > 0 {
			match := false
			for _, role := range filter.Roles {
				if p.Role == role {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, *p)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Profiles
// ---------------------------------------------------------------------------

type fakeCitizens fakeStore

func (r *fakeCitizens) Create(_ context.Context, p *domain.CitizenProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = uuid.NewString()
	clone := *p
	r.citizens[p.PrincipalID] = &clone
	return nil
}

func (r *fakeCitizens) Update(_ context.Context, p *domain.CitizenProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.citizens[p.PrincipalID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *p
	r.citizens[p.PrincipalID] = &clone
	return nil
}

func (r *fakeCitizens) GetByPrincipal(_ context.Context, principalID string) (*domain.CitizenProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.citizens[principalID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *p
	return &clone, nil
}

type fakeBusinesses fakeStore

func (r *fakeBusinesses) Create(_ context.Context, p *domain.BusinessOwnerProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = uuid.NewString()
	clone := *p
	r.businesses[p.PrincipalID] = &clone
	return nil
}

func (r *fakeBusinesses) Update(_ context.Context, p *domain.BusinessOwnerProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.businesses[p.PrincipalID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *p
	r.businesses[p.PrincipalID] = &clone
	return nil
}

func (r *fakeBusinesses) GetByPrincipal(_ context.Context, principalID string) (*domain.BusinessOwnerProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.businesses[principalID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *p
	return &clone, nil
}

// ---------------------------------------------------------------------------
// Officials
// ---------------------------------------------------------------------------

type fakeOfficials fakeStore

func (r *fakeOfficials) Create(_ context.Context, o *domain.GovernmentOfficial) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o.ID = uuid.NewString()
	clone := *o
	r.officials[o.ID] = &clone
	return nil
}

func (r *fakeOfficials) GetByID(_ context.Context, id string) (*domain.GovernmentOfficial, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.officials[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *o
	return &clone, nil
}

func (r *fakeOfficials) GetByPrincipal(_ context.Context, principalID string) (*domain.GovernmentOfficial, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.officials {
		if o.PrincipalID == principalID {
			clone := *o
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeOfficials) List(_ context.Context, _, _ int) ([]domain.GovernmentOfficial, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.GovernmentOfficial
	for _, o := range r.officials {
		out = append(out, *o)
	}
	return out, nil
}

func (r *fakeOfficials) UpdateFlags(_ context.Context, id string, canView, canApprove bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.officials[id]
	if !ok {
		return pgx.ErrNoRows
	}
	o.CanViewUsers = canView
	o.CanApproveUsers = canApprove
	return nil
}

// ---------------------------------------------------------------------------
// Towns
// ---------------------------------------------------------------------------

type fakeTowns fakeStore

func (r *fakeTowns) Create(_ context.Context, t *domain.Town) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = uuid.NewString()
	clone := *t
	r.towns[t.ID] = &clone
	return nil
}

func (r *fakeTowns) Update(_ context.Context, t *domain.Town) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.towns[t.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *t
	r.towns[t.ID] = &clone
	return nil
}

func (r *fakeTowns) GetByID(_ context.Context, id string) (*domain.Town, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.towns[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *t
	return &clone, nil
}

func (r *fakeTowns) List(_ context.Context, activeOnly bool) ([]domain.Town, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Town
	for _, t := range r.towns {
		if activeOnly && !t.IsActive {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Town changes
// ---------------------------------------------------------------------------

type fakeTownChanges fakeStore

func (r *fakeTownChanges) Create(_ context.Context, req *domain.TownChangeRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req.ID = uuid.NewString()
	req.RequestedAt = time.Now()
	clone := *req
	r.townChanges[req.ID] = &clone
	return nil
}

func (r *fakeTownChanges) GetByID(_ context.Context, id string) (*domain.TownChangeRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.townChanges[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *req
	return &clone, nil
}

func (r *fakeTownChanges) List(_ context.Context, filter repository.TownChangeFilter) ([]domain.TownChangeRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.TownChangeRequest
	for _, req := range r.townChanges {
		if filter.PrincipalID != nil && req.PrincipalID != *filter.PrincipalID {
			continue
		}
		if filter.InvolvedTownID != nil &&
			req.CurrentTownID != *filter.InvolvedTownID && req.RequestedTownID != *filter.InvolvedTownID {
			continue
		}
		if filter.Status != nil && req.Status != *filter.Status {
			continue
		}
		out = append(out, *req)
	}
	return out, nil
}

func (r *fakeTownChanges) HasActiveForPrincipal(_ context.Context, principalID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, req := range r.townChanges {
		if req.PrincipalID == principalID && req.Status.Active() {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeTownChanges) ApproveByCurrent(_ context.Context, id, approverID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.townChanges[id]
	if !ok || req.Status != domain.TownChangeStatusPending {
		return false, nil
	}
	req.Status = domain.TownChangeStatusApprovedCurrent
	req.ApprovedByCurrent = &approverID
	return true, nil
}

func (r *fakeTownChanges) Complete(_ context.Context, id, approverID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.townChanges[id]
	if !ok || req.Status != domain.TownChangeStatusApprovedCurrent {
		return false, nil
	}
	now := time.Now()
	req.Status = domain.TownChangeStatusCompleted
	req.ApprovedByNew = &approverID
	req.CompletedAt = &now
	return true, nil
}

func (r *fakeTownChanges) Reject(_ context.Context, id, reason string, from domain.TownChangeStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.townChanges[id]
	if !ok || req.Status != from {
		return false, nil
	}
	req.Status = domain.TownChangeStatusRejected
	req.RejectionReason = reason
	return true, nil
}

// ---------------------------------------------------------------------------
// Credentials
// ---------------------------------------------------------------------------

type fakeCredentials fakeStore

func (r *fakeCredentials) GetOrCreate(_ context.Context, principalID, key string) (*domain.APICredential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.credentials[principalID]; ok {
		clone := *existing
		return &clone, nil
	}
	cred := &domain.APICredential{
		ID:          uuid.NewString(),
		PrincipalID: principalID,
		Key:         key,
		CreatedAt:   time.Now(),
	}
	r.credentials[principalID] = cred
	clone := *cred
	return &clone, nil
}

func (r *fakeCredentials) GetByKey(_ context.Context, key string) (*domain.APICredential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cred := range r.credentials {
		if cred.Key == key {
			clone := *cred
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeCredentials) DeleteByPrincipal(_ context.Context, principalID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.credentials, principalID)
	return nil
}

// ---------------------------------------------------------------------------
// Complaints
// ---------------------------------------------------------------------------

type fakeComplaints fakeStore

func (r *fakeComplaints) Create(_ context.Context, c *domain.Complaint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	clone := *c
	r.complaints[c.ID] = &clone
	return nil
}

func (r *fakeComplaints) Update(_ context.Context, c *domain.Complaint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.complaints[c.ID]; !ok {
		return pgx.ErrNoRows
	}
	c.UpdatedAt = time.Now()
	clone := *c
	r.complaints[c.ID] = &clone
	return nil
}

func (r *fakeComplaints) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.complaints[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.complaints, id)
	return nil
}

func (r *fakeComplaints) GetByID(_ context.Context, id string) (*domain.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.complaints[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *c
	return &clone, nil
}

func (r *fakeComplaints) List(_ context.Context, filter repository.ComplaintFilter) ([]domain.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Complaint
	for _, c := range r.complaints {
		if filter.TownID != nil && c.TownID != *filter.TownID {
			continue
		}
		if filter.OwnerID != nil && c.OwnerID != *filter.OwnerID {
			continue
		}
		if len(filter.Statuses) > 0 {
			match := false
			for _, status := range filter.Statuses {
				if c.Status == status {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeComplaints) AddComment(_ context.Context, cm *domain.ComplaintComment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cm.ID = uuid.NewString()
	cm.CreatedAt = time.Now()
	r.comments[cm.ComplaintID] = append(r.comments[cm.ComplaintID], *cm)
	return nil
}

func (r *fakeComplaints) ListComments(_ context.Context, complaintID string) ([]domain.ComplaintComment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.ComplaintComment(nil), r.comments[complaintID]...), nil
}

func (r *fakeComplaints) AddAttachment(_ context.Context, a *domain.ComplaintAttachment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = uuid.NewString()
	a.UploadedAt = time.Now()
	r.attachments[a.ComplaintID] = append(r.attachments[a.ComplaintID], *a)
	return nil
}

func (r *fakeComplaints) ListAttachments(_ context.Context, complaintID string) ([]domain.ComplaintAttachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.ComplaintAttachment(nil), r.attachments[complaintID]...), nil
}

func (r *fakeComplaints) GetAttachment(_ context.Context, id string) (*domain.ComplaintAttachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, list := range r.attachments {
		for i := range list {
			if list[i].ID == id {
				clone := list[i]
				return &clone, nil
			}
		}
	}
	return nil, pgx.ErrNoRows
}

// ---------------------------------------------------------------------------
// Licenses
// ---------------------------------------------------------------------------

type fakeLicenses fakeStore

func (r *fakeLicenses) Create(_ context.Context, l *domain.License) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l.ID = uuid.NewString()
	l.CreatedAt = time.Now()
	l.UpdatedAt = l.CreatedAt
	clone := *l
	r.licenses[l.ID] = &clone
	return nil
}

func (r *fakeLicenses) Update(_ context.Context, l *domain.License) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.licenses[l.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *l
	r.licenses[l.ID] = &clone
	return nil
}

func (r *fakeLicenses) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.licenses[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.licenses, id)
	return nil
}

func (r *fakeLicenses) GetByID(_ context.Context, id string) (*domain.License, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.licenses[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *l
	return &clone, nil
}

func (r *fakeLicenses) List(_ context.Context, filter repository.LicenseFilter) ([]domain.License, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.License
	for _, l := range r.licenses {
		if filter.TownID != nil && l.TownID != *filter.TownID {
			continue
		}
		if filter.OwnerID != nil && l.OwnerID != *filter.OwnerID {
			continue
		}
		if filter.Status != nil && l.Status != *filter.Status {
			continue
		}
		out = append(out, *l)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Announcements
// ---------------------------------------------------------------------------

type fakeAnnouncements fakeStore

func (r *fakeAnnouncements) Create(_ context.Context, a *domain.Announcement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = uuid.NewString()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	clone := *a
	r.announcements[a.ID] = &clone
	return nil
}

func (r *fakeAnnouncements) Update(_ context.Context, a *domain.Announcement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.announcements[a.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *a
	r.announcements[a.ID] = &clone
	return nil
}

func (r *fakeAnnouncements) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.announcements[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.announcements, id)
	return nil
}

func (r *fakeAnnouncements) GetByID(_ context.Context, id string) (*domain.Announcement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.announcements[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *a
	return &clone, nil
}

func (r *fakeAnnouncements) List(_ context.Context, filter repository.AnnouncementFilter) ([]domain.Announcement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Announcement
	for _, a := range r.announcements {
		if filter.TownID != nil && a.TownID != *filter.TownID {
			continue
		}
		if filter.PublishedOnly && !a.IsPublished {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Bills
// ---------------------------------------------------------------------------

type fakeBills fakeStore

func (r *fakeBills) Create(_ context.Context, b *domain.BillProposal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.ID = uuid.NewString()
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	clone := *b
	r.bills[b.ID] = &clone
	return nil
}

func (r *fakeBills) Update(_ context.Context, b *domain.BillProposal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bills[b.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *b
	r.bills[b.ID] = &clone
	return nil
}

func (r *fakeBills) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bills[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.bills, id)
	delete(r.votes, id)
	return nil
}

func (r *fakeBills) GetByID(_ context.Context, id string) (*domain.BillProposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bills[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *b
	return &clone, nil
}

func (r *fakeBills) List(_ context.Context, filter repository.BillFilter) ([]domain.BillProposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.BillProposal
	for _, b := range r.bills {
		if filter.TownID != nil && b.TownID != *filter.TownID {
			continue
		}
		if filter.Status != nil && b.Status != *filter.Status {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func (r *fakeBills) SetVote(_ context.Context, v *domain.BillVote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	byPrincipal, ok := r.votes[v.BillID]
	if !ok {
		byPrincipal = make(map[string]*domain.BillVote)
		r.votes[v.BillID] = byPrincipal
	}
	if existing, ok := byPrincipal[v.PrincipalID]; ok {
		existing.Support = v.Support
		v.ID = existing.ID
		v.CreatedAt = existing.CreatedAt
		return nil
	}
	v.ID = uuid.NewString()
	v.CreatedAt = time.Now()
	clone := *v
	byPrincipal[v.PrincipalID] = &clone
	return nil
}

func (r *fakeBills) DeleteVote(_ context.Context, billID, principalID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.votes[billID][principalID]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.votes[billID], principalID)
	return nil
}

func (r *fakeBills) GetVote(_ context.Context, billID, principalID string) (*domain.BillVote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.votes[billID][principalID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *v
	return &clone, nil
}

func (r *fakeBills) CountVotes(_ context.Context, billID string) (domain.BillVoteCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count domain.BillVoteCount
	for _, v := range r.votes[billID] {
		if v.Support {
			count.Support++
		} else {
			count.Oppose++
		}
	}
	return count, nil
}

func (r *fakeBills) AddComment(_ context.Context, cm *domain.BillComment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cm.ID = uuid.NewString()
	cm.CreatedAt = time.Now()
	r.billComments[cm.BillID] = append(r.billComments[cm.BillID], *cm)
	return nil
}

func (r *fakeBills) ListComments(_ context.Context, billID string) ([]domain.BillComment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.BillComment(nil), r.billComments[billID]...), nil
}

// ---------------------------------------------------------------------------
// Events
// ---------------------------------------------------------------------------

type fakeEvents fakeStore

func (r *fakeEvents) Create(_ context.Context, e *domain.BusinessEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = uuid.NewString()
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	clone := *e
	r.events[e.ID] = &clone
	return nil
}

func (r *fakeEvents) Update(_ context.Context, e *domain.BusinessEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[e.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *e
	r.events[e.ID] = &clone
	return nil
}

func (r *fakeEvents) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.events, id)
	delete(r.registrations, id)
	return nil
}

func (r *fakeEvents) GetByID(_ context.Context, id string) (*domain.BusinessEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *e
	return &clone, nil
}

func (r *fakeEvents) List(_ context.Context, filter repository.EventFilter) ([]domain.BusinessEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.BusinessEvent
	for _, e := range r.events {
		if filter.TownID != nil && e.TownID != *filter.TownID {
			continue
		}
		if filter.OwnerID != nil && e.OwnerID != *filter.OwnerID {
			continue
		}
		if filter.Status != nil && e.Status != *filter.Status {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (r *fakeEvents) Register(_ context.Context, reg *domain.EventRegistration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	byPrincipal, ok := r.registrations[reg.EventID]
	if !ok {
		byPrincipal = make(map[string]*domain.EventRegistration)
		r.registrations[reg.EventID] = byPrincipal
	}
	if existing, ok := byPrincipal[reg.PrincipalID]; ok {
		reg.ID = existing.ID
		reg.CreatedAt = existing.CreatedAt
		return nil
	}
	reg.ID = uuid.NewString()
	reg.CreatedAt = time.Now()
	clone := *reg
	byPrincipal[reg.PrincipalID] = &clone
	return nil
}

func (r *fakeEvents) Unregister(_ context.Context, eventID, principalID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.registrations[eventID], principalID)
	return nil
}

func (r *fakeEvents) ListRegistrations(_ context.Context, eventID string) ([]domain.EventRegistration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.EventRegistration
	for _, reg := range r.registrations[eventID] {
		out = append(out, *reg)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Notifications
// ---------------------------------------------------------------------------

type fakeNotifications fakeStore

func (r *fakeNotifications) Create(_ context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.ID = uuid.NewString()
	n.CreatedAt = time.Now()
	r.notifications[n.PrincipalID] = append(r.notifications[n.PrincipalID], *n)
	return nil
}

func (r *fakeNotifications) ListByPrincipal(_ context.Context, principalID string, unreadOnly bool, _, _ int) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Notification
	for _, n := range r.notifications[principalID] {
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *fakeNotifications) MarkRead(_ context.Context, id, principalID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.notifications[principalID]
	for i := range list {
		if list[i].ID == id {
			list[i].IsRead = true
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeNotifications) MarkAllRead(_ context.Context, principalID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.notifications[principalID]
	for i := range list {
		list[i].IsRead = true
	}
	return nil
}
