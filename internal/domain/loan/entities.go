package loan

import (
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("loan not found")
	ErrConflict = errors.New("collection revision conflict")
)

type LoanType string

const (
	TypeConventional LoanType = "conventional"
	TypeFHA          LoanType = "fha"
	TypeVA           LoanType = "va"
	TypeUSDA         LoanType = "usda"
	TypeNonQM        LoanType = "non-qm"
)

// LoanTypes lists every accepted loan type.
var LoanTypes = []LoanType{TypeConventional, TypeFHA, TypeVA, TypeUSDA, TypeNonQM}

func ValidLoanType(s string) bool {
	for _, t := range LoanTypes {
		if string(t) == s {
			return true
		}
	}
	return false
}

type Stage string

const (
	StageApplication         Stage = "Application"
	StageProcessing          Stage = "Processing"
	StageUnderwriting        Stage = "Underwriting"
	StageConditionalApproval Stage = "Conditional Approval"
	StageClearToClose        Stage = "Clear to Close"
	StageClosing             Stage = "Closing"
	StageFunded              Stage = "Funded"
)

// Stages is ordered by pipeline progression. The order drives display
// only; any stage may move to any other stage.
var Stages = []Stage{
	StageApplication,
	StageProcessing,
	StageUnderwriting,
	StageConditionalApproval,
	StageClearToClose,
	StageClosing,
	StageFunded,
}

func ValidStage(s string) bool {
	for _, st := range Stages {
		if string(st) == s {
			return true
		}
	}
	return false
}

// The six tracked deadline fields, in display order.
const (
	DateContract          = "contract_date"
	DateLockExpiration    = "lock_expiration"
	DateAppraisalDeadline = "appraisal_deadline"
	DateUWSubmission      = "uw_submission_deadline"
	DateLoanApproval      = "loan_approval_deadline"
	DateClosing           = "closing_date"
)

var DateFields = []string{
	DateContract,
	DateLockExpiration,
	DateAppraisalDeadline,
	DateUWSubmission,
	DateLoanApproval,
	DateClosing,
}

func ValidDateField(s string) bool {
	for _, f := range DateFields {
		if f == s {
			return true
		}
	}
	return false
}

// ChecklistEntry is the completion state of one checklist item.
type ChecklistEntry struct {
	Done        bool       `json:"done"`
	CompletedAt *time.Time `json:"completed_at"`
	CompletedBy *string    `json:"completed_by"`
}

// Checklist maps item text to its entry. Item text is the item's
// identity; reconciliation after a loan type change matches on it.
type Checklist map[string]*ChecklistEntry

type Checklists map[Stage]Checklist

type Milestone struct {
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
	By        string    `json:"by"`
}

type Loan struct {
	ID              string            `json:"id"`
	Borrower        string            `json:"borrower"`
	CoBorrower      string            `json:"co_borrower"`
	PropertyAddress string            `json:"property_address"`
	LoanAmount      string            `json:"loan_amount"`
	LoanType        LoanType          `json:"loan_type"`
	Stage           Stage             `json:"stage"`
	Dates           map[string]string `json:"dates"`
	Checklists      Checklists        `json:"checklists"`
	Notes           string            `json:"notes"`
	CreatedAt       time.Time         `json:"created_at"`
	Milestones      []Milestone       `json:"milestones"`
}

// New builds a loan with empty dates, a full checklist set for its
// type, and no milestones. Unknown types and stages fall back to the
// defaults rather than being stored.
func New(id, borrower string, typ LoanType, stage Stage, now time.Time) *Loan {
	if !ValidLoanType(string(typ)) {
		typ = TypeConventional
	}
	if !ValidStage(string(stage)) {
		stage = StageApplication
	}
	dates := make(map[string]string, len(DateFields))
	for _, f := range DateFields {
		dates[f] = ""
	}
	return &Loan{
		ID:         id,
		Borrower:   borrower,
		LoanType:   typ,
		Stage:      stage,
		Dates:      dates,
		Checklists: BuildAllChecklists(typ),
		CreatedAt:  now,
		Milestones: []Milestone{},
	}
}

// MoveStage moves the loan to another stage, logging one milestone.
// Moving to the current stage is a no-op and reports false.
func (l *Loan) MoveStage(to Stage, now time.Time) bool {
	if to == l.Stage {
		return false
	}
	from := l.Stage
	l.Stage = to
	l.Milestones = append(l.Milestones, Milestone{
		Action:    "Moved from " + string(from) + " → " + string(to),
		Timestamp: now,
	})
	return true
}

// ChangeType switches the loan type and reconciles every stage
// checklist, keeping completed items that exist under both types.
func (l *Loan) ChangeType(to LoanType) bool {
	if to == l.LoanType {
		return false
	}
	l.LoanType = to
	l.Checklists = RebuildPreserving(l.Checklists, to)
	return true
}

// ApplyChecklist applies one submitted checklist for a stage: checked
// holds the item texts now marked done. Each item flips independently;
// re-submitting an item in its current state changes nothing and logs
// nothing. Returns the number of items that flipped.
func (l *Loan) ApplyChecklist(stage Stage, checked map[string]bool, by string, now time.Time) int {
	cl := l.Checklists[stage]
	flipped := 0
	for _, item := range ItemOrder(stage, l.LoanType) {
		entry, ok := cl[item]
		if !ok {
			continue
		}
		isDone := checked[item]
		switch {
		case isDone && !entry.Done:
			t := now
			b := by
			entry.Done = true
			entry.CompletedAt = &t
			entry.CompletedBy = &b
			l.Milestones = append(l.Milestones, Milestone{
				Action:    "[" + string(stage) + "] ✓ " + item,
				Timestamp: now,
				By:        by,
			})
			flipped++
		case !isDone && entry.Done:
			entry.Done = false
			entry.CompletedAt = nil
			entry.CompletedBy = nil
			l.Milestones = append(l.Milestones, Milestone{
				Action:    "[" + string(stage) + "] ✗ Unchecked: " + item,
				Timestamp: now,
				By:        by,
			})
			flipped++
		}
	}
	return flipped
}

// Collection is the entire persisted state: every loan keyed by id,
// plus the revision it was loaded at. SaveAll rejects a collection
// whose revision no longer matches the document on disk.
type Collection struct {
	Revision uint64           `json:"revision"`
	Loans    map[string]*Loan `json:"loans"`
}

func NewCollection() *Collection {
	return &Collection{Loans: make(map[string]*Loan)}
}
