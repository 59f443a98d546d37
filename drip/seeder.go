package drip

import (
	"context"
	"fmt"
	"log"

	"dealdrip/models"
)

// Seeder instantiates the built-in sequence catalog for a new company.
// The catalog is injected at construction; the seeder never reads global
// state.
type Seeder struct {
	store   Store
	catalog []models.Sequence
	Logger  *log.Logger
}

func NewSeeder(store Store, catalog []models.Sequence, logger *log.Logger) *Seeder {
	return &Seeder{
		store:   store,
		catalog: catalog,
		Logger:  logger,
	}
}

// SeedResult reports what a successful seed created.
type SeedResult struct {
	Sequences int `json:"sequences"`
	Steps     int `json:"steps"`
}

// SeedDefaultSequences creates one company-owned copy of every catalog
// sequence, all inside a single transaction: either the whole catalog is
// created or none of it is. A company that already has sequences is
// rejected with ErrAlreadySeeded rather than seeded twice.
func (s *Seeder) SeedDefaultSequences(ctx context.Context, companyID uint) (*SeedResult, error) {
	if companyID == 0 {
		return nil, fmt.Errorf("%w: company id is required", ErrInvalidInput)
	}

	existing, err := s.store.CountSequences(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("seed default sequences: %w", err)
	}
	if existing > 0 {
		return nil, ErrAlreadySeeded
	}

	sequences := make([]models.Sequence, len(s.catalog))
	steps := 0
	for i, tpl := range s.catalog {
		seq := tpl
		seq.CompanyID = companyID
		seq.Steps = make([]models.SequenceStep, len(tpl.Steps))
		copy(seq.Steps, tpl.Steps)
		for j := range seq.Steps {
			// immediate steps always carry delay_value 0
			if seq.Steps[j].DelayType == models.DelayImmediate {
				seq.Steps[j].DelayValue = 0
			}
		}
		steps += len(seq.Steps)
		sequences[i] = seq
	}

	if err := s.store.InsertSequencesWithSteps(ctx, sequences); err != nil {
		return nil, fmt.Errorf("seed default sequences: %w", err)
	}

	s.Logger.Printf("Seeded %d sequences (%d steps) for company %d", len(sequences), steps, companyID)
	return &SeedResult{Sequences: len(sequences), Steps: steps}, nil
}
