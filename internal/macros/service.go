package macros

import (
	"context"
	"errors"
	"fmt"

	"github.com/rolldeck/rolldeck/internal/dice"
	"github.com/rolldeck/rolldeck/internal/platform/httpx"
)

// maxPerOwner caps how many macros a single owner may save. The cap is an
// abuse heuristic, not a correctness bound: the count-then-insert in Create
// is not transactional, so two racing creates can briefly exceed it.
const maxPerOwner = 10

// Service wraps macro business rules. Every operation takes the owner
// identifier from the authenticated principal, never from client input.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns every macro owned by the caller.
func (s *Service) List(ctx context.Context, ownerID string) ([]Macro, error) {
	macros, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if macros == nil {
		macros = []Macro{}
	}
	return macros, nil
}

// Get resolves a macro by id within the caller's rows. Missing ids and rows
// owned by someone else both report not-found.
func (s *Service) Get(ctx context.Context, ownerID string, id int64) (Macro, error) {
	return s.repo.Get(ctx, ownerID, id)
}

// Create saves a new macro stamped with the caller's owner id.
func (s *Service) Create(ctx context.Context, ownerID string, in Input) (Macro, error) {
	count, err := s.repo.CountByOwner(ctx, ownerID)
	if err != nil {
		return Macro{}, err
	}
	if count >= maxPerOwner {
		return Macro{}, fmt.Errorf("%w: you can only save up to %d macros", httpx.ErrValidation, maxPerOwner)
	}

	created, err := s.repo.Create(ctx, Macro{
		OwnerID:  ownerID,
		Name:     in.Name,
		NumDice:  in.NumDice,
		Sides:    in.Sides,
		Modifier: in.Modifier,
	})
	if err != nil {
		return Macro{}, mapDuplicateName(err, in.Name)
	}
	return created, nil
}

// Update replaces the stored parameters of an owned macro. The quota does
// not apply and ownership never changes.
func (s *Service) Update(ctx context.Context, ownerID string, id int64, in Input) (Macro, error) {
	updated, err := s.repo.Update(ctx, Macro{
		ID:       id,
		OwnerID:  ownerID,
		Name:     in.Name,
		NumDice:  in.NumDice,
		Sides:    in.Sides,
		Modifier: in.Modifier,
	})
	if err != nil {
		return Macro{}, mapDuplicateName(err, in.Name)
	}
	return updated, nil
}

// Delete removes an owned macro.
func (s *Service) Delete(ctx context.Context, ownerID string, id int64) error {
	return s.repo.Delete(ctx, ownerID, id)
}

// Roll executes a saved macro with its stored parameters. Stored values were
// validated at write time and are not re-checked here.
func (s *Service) Roll(ctx context.Context, ownerID string, id int64) (RollOutcome, error) {
	macro, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return RollOutcome{}, err
	}

	result := dice.Roll(macro.NumDice, macro.Sides, macro.Modifier)
	return RollOutcome{
		MacroID:  macro.ID,
		Name:     macro.Name,
		Rolls:    result.Rolls,
		Total:    result.Total,
		Modifier: result.Modifier,
		Final:    result.Final,
	}, nil
}

func mapDuplicateName(err error, name string) error {
	if errors.Is(err, httpx.ErrDuplicate) {
		return fmt.Errorf("%w: a macro named %q already exists", httpx.ErrValidation, name)
	}
	return err
}
