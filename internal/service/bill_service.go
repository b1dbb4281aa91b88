package service

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/townhall/civic-service/internal/authz"
	"github.com/townhall/civic-service/internal/domain"
	"github.com/townhall/civic-service/internal/repository"
	apperrors "github.com/townhall/civic-service/pkg/util/errorutil"
)

// BillInput carries proposal authoring fields.
type BillInput struct {
	Title    string
	Summary  string
	Priority domain.Priority
}

// BillService manages town bill proposals, public votes and discussion.
// Proposals belong to the creating official; votes and comments are open to
// approved members of the town.
type BillService struct {
	store repository.Store
}

func NewBillService(store repository.Store) *BillService {
	return &BillService{store: store}
}

// Propose creates a bill in the official's town.
func (s *BillService) Propose(ctx context.Context, actor authz.Context, input BillInput) (*domain.BillProposal, error) {
	if !s.isOfficial(actor) {
		return nil, apperrors.NewForbidden("only officials propose bills")
	}
	if actor.TownID == nil {
		return nil, apperrors.NewForbidden("official has no town")
	}

	bill := &domain.BillProposal{
		TownID:    *actor.TownID,
		CreatedBy: actor.PrincipalID,
		Title:     input.Title,
		Summary:   input.Summary,
		Priority:  input.Priority,
		Status:    domain.BillStatusProposed,
	}
	if bill.Priority == "" {
		bill.Priority = domain.PriorityMedium
	}
	if err := s.store.Bills().Create(ctx, bill); err != nil {
		return nil, apperrors.MapError(err)
	}
	return bill, nil
}

// List returns bills of the actor's town.
func (s *BillService) List(ctx context.Context, actor authz.Context, status *domain.BillStatus, limit, offset int) ([]domain.BillProposal, error) {
	filter := repository.BillFilter{Status: status, Limit: limit, Offset: offset}
	if !actor.IsSuperuser {
		if actor.TownID == nil {
			return nil, apperrors.NewForbidden("account has no town")
		}
		filter.TownID = actor.TownID
	}

	bills, err := s.store.Bills().List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return bills, nil
}

// Get returns one bill with its vote tally.
func (s *BillService) Get(ctx context.Context, actor authz.Context, id string) (*domain.BillProposal, domain.BillVoteCount, error) {
	bill, err := s.visible(ctx, actor, id)
	if err != nil {
		return nil, domain.BillVoteCount{}, err
	}
	count, err := s.store.Bills().CountVotes(ctx, bill.ID)
	if err != nil {
		return nil, domain.BillVoteCount{}, apperrors.MapError(err)
	}
	return bill, count, nil
}

// Update edits a proposal. Only the creating official (or a superuser)
// edits, and only while the bill is still proposed.
func (s *BillService) Update(ctx context.Context, actor authz.Context, id string, input BillInput) (*domain.BillProposal, error) {
	bill, err := s.visible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !s.canEdit(actor, bill) {
		return nil, apperrors.NewForbidden("only the proposing official edits a bill")
	}
	if bill.Status != domain.BillStatusProposed {
		return nil, apperrors.NewConflict("decided bills cannot be edited", nil)
	}

	bill.Title = input.Title
	bill.Summary = input.Summary
	if input.Priority != "" {
		bill.Priority = input.Priority
	}
	if err := s.store.Bills().Update(ctx, bill); err != nil {
		return nil, apperrors.MapError(err)
	}
	return bill, nil
}

// Decide settles a proposed bill as passed or rejected.
func (s *BillService) Decide(ctx context.Context, actor authz.Context, id string, passed bool) (*domain.BillProposal, error) {
	bill, err := s.visible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !s.canEdit(actor, bill) {
		return nil, apperrors.NewForbidden("only the proposing official decides a bill")
	}
	if bill.Status != domain.BillStatusProposed {
		return nil, apperrors.NewConflict("bill already decided", nil)
	}

	if passed {
		bill.Status = domain.BillStatusPassed
	} else {
		bill.Status = domain.BillStatusRejected
	}
	if err := s.store.Bills().Update(ctx, bill); err != nil {
		return nil, apperrors.MapError(err)
	}
	return bill, nil
}

// Delete removes a proposal and its votes.
func (s *BillService) Delete(ctx context.Context, actor authz.Context, id string) error {
	bill, err := s.visible(ctx, actor, id)
	if err != nil {
		return err
	}
	if !s.canEdit(actor, bill) {
		return apperrors.NewForbidden("only the proposing official deletes a bill")
	}
	if err := s.store.Bills().Delete(ctx, bill.ID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// Vote records or replaces the actor's position on a proposed bill.
func (s *BillService) Vote(ctx context.Context, actor authz.Context, id string, support bool) (*domain.BillVote, error) {
	bill, err := s.visible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if bill.Status != domain.BillStatusProposed {
		return nil, apperrors.NewConflict("voting is closed", nil)
	}

	vote := &domain.BillVote{BillID: bill.ID, PrincipalID: actor.PrincipalID, Support: support}
	if err := s.store.Bills().SetVote(ctx, vote); err != nil {
		return nil, apperrors.MapError(err)
	}
	return vote, nil
}

// Unvote withdraws the actor's vote.
func (s *BillService) Unvote(ctx context.Context, actor authz.Context, id string) error {
	bill, err := s.visible(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.store.Bills().DeleteVote(ctx, bill.ID, actor.PrincipalID); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("vote")
		}
		return apperrors.MapError(err)
	}
	return nil
}

// Comment adds to the bill's public discussion.
func (s *BillService) Comment(ctx context.Context, actor authz.Context, id, body string) (*domain.BillComment, error) {
	bill, err := s.visible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	comment := &domain.BillComment{BillID: bill.ID, PrincipalID: actor.PrincipalID, Body: body}
	if err := s.store.Bills().AddComment(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	return comment, nil
}

// Comments lists the bill's discussion thread.
func (s *BillService) Comments(ctx context.Context, actor authz.Context, id string) ([]domain.BillComment, error) {
	bill, err := s.visible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	comments, err := s.store.Bills().ListComments(ctx, bill.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return comments, nil
}

func (s *BillService) visible(ctx context.Context, actor authz.Context, id string) (*domain.BillProposal, error) {
	bill, err := s.store.Bills().GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("bill")
		}
		return nil, apperrors.MapError(err)
	}
	if !authz.SameTown(actor, bill.TownID) {
		return nil, apperrors.NewNotFound("bill")
	}
	return bill, nil
}

func (s *BillService) isOfficial(actor authz.Context) bool {
	return actor.IsSuperuser || (actor.Role == domain.RoleGovernment && actor.IsApproved)
}

func (s *BillService) canEdit(actor authz.Context, bill *domain.BillProposal) bool {
	if actor.IsSuperuser {
		return true
	}
	return bill.CreatedBy == actor.PrincipalID
}
