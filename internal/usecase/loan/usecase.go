// Package loan orchestrates every read and write against the loan
// collection: each operation reloads the full collection from the
// store, mutates it, and writes it back whole.
package loan

import (
	"context"
	"errors"
	"strings"
	"time"

	domain "loan-tracker/internal/domain/loan"
	"loan-tracker/pkg/id"
)

// How many times a mutation re-runs after losing a revision race.
const saveAttempts = 3

// Returned by a mutation that ended up touching nothing; the save is
// skipped and the operation reports success.
var errNoChange = errors.New("no change")

type Usecase struct {
	store    domain.Store
	validate *InputValidator
}

func NewUsecase(s domain.Store) *Usecase {
	return &Usecase{store: s, validate: NewInputValidator()}
}

// List returns the whole collection keyed by loan id.
func (u *Usecase) List(ctx context.Context) map[string]*domain.Loan {
	return u.store.LoadAll(ctx).Loans
}

func (u *Usecase) Get(ctx context.Context, loanID string) (*domain.Loan, error) {
	l, ok := u.store.LoadAll(ctx).Loans[loanID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return l, nil
}

// mutate runs fn against a freshly loaded collection and saves it,
// reloading and retrying when a concurrent save advanced the revision.
func (u *Usecase) mutate(ctx context.Context, fn func(c *domain.Collection) error) error {
	var err error
	for i := 0; i < saveAttempts; i++ {
		c := u.store.LoadAll(ctx)
		if err = fn(c); err != nil {
			if errors.Is(err, errNoChange) {
				return nil
			}
			return err
		}
		if err = u.store.SaveAll(ctx, c); err == nil || !errors.Is(err, domain.ErrConflict) {
			return err
		}
	}
	return err
}

// Create validates the supplied fields and adds a new loan with a
// generated id and a full checklist set for its type.
func (u *Usecase) Create(ctx context.Context, fields map[string]any) (*domain.Loan, error) {
	in, err := u.validate.ValidateLoanInput(fields, true)
	if err != nil {
		return nil, err
	}
	var created *domain.Loan
	err = u.mutate(ctx, func(c *domain.Collection) error {
		typ := domain.TypeConventional
		if in.LoanType != nil {
			typ = domain.LoanType(*in.LoanType)
		}
		stage := domain.StageApplication
		if in.Stage != nil {
			stage = domain.Stage(*in.Stage)
		}
		l := domain.New(id.NewShortID(), strings.TrimSpace(*in.Borrower), typ, stage, time.Now().UTC())
		applyText(l, in)
		for k, v := range in.Dates {
			l.Dates[k] = v
		}
		c.Loans[l.ID] = l
		created = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update applies the supplied fields to an existing loan. A loan type
// change reconciles the checklists; a stage change logs a milestone;
// plain field edits log nothing.
func (u *Usecase) Update(ctx context.Context, loanID string, fields map[string]any) (*domain.Loan, error) {
	in, err := u.validate.ValidateLoanInput(fields, false)
	if err != nil {
		return nil, err
	}
	var updated *domain.Loan
	err = u.mutate(ctx, func(c *domain.Collection) error {
		l, ok := c.Loans[loanID]
		if !ok {
			return domain.ErrNotFound
		}
		if in.Borrower != nil && strings.TrimSpace(*in.Borrower) != "" {
			l.Borrower = strings.TrimSpace(*in.Borrower)
		}
		applyText(l, in)
		for k, v := range in.Dates {
			l.Dates[k] = v
		}
		if in.Stage != nil {
			l.MoveStage(domain.Stage(*in.Stage), time.Now().UTC())
		}
		if in.LoanType != nil {
			l.ChangeType(domain.LoanType(*in.LoanType))
		}
		updated = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a loan. An unknown id is a no-op, not an error.
func (u *Usecase) Delete(ctx context.Context, loanID string) error {
	return u.mutate(ctx, func(c *domain.Collection) error {
		if _, ok := c.Loans[loanID]; !ok {
			return errNoChange
		}
		delete(c.Loans, loanID)
		return nil
	})
}

// MoveStage moves a loan to another pipeline stage.
func (u *Usecase) MoveStage(ctx context.Context, loanID, stage string) error {
	if !domain.ValidStage(stage) {
		return ValidationErrors{{Field: "stage", Message: "is not a pipeline stage"}}
	}
	return u.mutate(ctx, func(c *domain.Collection) error {
		l, ok := c.Loans[loanID]
		if !ok {
			return domain.ErrNotFound
		}
		l.MoveStage(domain.Stage(stage), time.Now().UTC())
		return nil
	})
}

// SetChecklist applies a submitted checklist for one stage: items is
// the set of item texts now marked done, by the given actor.
func (u *Usecase) SetChecklist(ctx context.Context, loanID, stage string, items []string, by string) error {
	if !domain.ValidStage(stage) {
		return ValidationErrors{{Field: "stage", Message: "is not a pipeline stage"}}
	}
	checked := make(map[string]bool, len(items))
	for _, it := range items {
		checked[it] = true
	}
	return u.mutate(ctx, func(c *domain.Collection) error {
		l, ok := c.Loans[loanID]
		if !ok {
			return domain.ErrNotFound
		}
		l.ApplyChecklist(domain.Stage(stage), checked, strings.TrimSpace(by), time.Now().UTC())
		return nil
	})
}

func applyText(l *domain.Loan, in *CleanedInput) {
	if in.CoBorrower != nil {
		l.CoBorrower = *in.CoBorrower
	}
	if in.PropertyAddress != nil {
		l.PropertyAddress = *in.PropertyAddress
	}
	if in.LoanAmount != nil {
		l.LoanAmount = *in.LoanAmount
	}
	if in.Notes != nil {
		l.Notes = *in.Notes
	}
}
