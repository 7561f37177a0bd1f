package loan

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	domain "loan-tracker/internal/domain/loan"
)

// Pending-checklist rows sort after every dated row.
const actionSortWeight = 999

// DigestItem is one row of the daily digest page.
type DigestItem struct {
	Borrower string `json:"borrower"`
	Message  string `json:"message"`
	Urgency  string `json:"urgency"`
	Days     int    `json:"days"`
}

// DeadlineRow is one row of the JSON digest API.
type DeadlineRow struct {
	Borrower string `json:"borrower"`
	Deadline string `json:"deadline"`
	Date     string `json:"date"`
	Days     int    `json:"days"`
}

var urgencyLabels = map[domain.Severity]string{
	domain.SeverityOverdue:  "OVERDUE",
	domain.SeverityCritical: "CRITICAL",
	domain.SeverityWarning:  "URGENT",
	domain.SeverityNormal:   "UPCOMING",
}

var titleCaser = cases.Title(language.English)

// FieldLabel renders a date field name for display:
// "uw_submission_deadline" becomes "Uw Submission Deadline".
func FieldLabel(field string) string {
	return titleCaser.String(strings.ReplaceAll(field, "_", " "))
}

// Digest builds the daily action list: one row per set, parseable
// deadline on every non-Funded loan, plus one row per loan with
// pending checklist items in its current stage, most urgent first.
func (u *Usecase) Digest(ctx context.Context) []DigestItem {
	var items []DigestItem
	for _, l := range u.store.LoadAll(ctx).Loans {
		if l.Stage == domain.StageFunded {
			continue
		}
		who := displayBorrower(l)
		for _, field := range domain.DateFields {
			val := l.Dates[field]
			days, ok := domain.DaysUntil(val)
			if !ok {
				continue
			}
			word := "left"
			if days < 0 {
				word = "overdue"
			}
			items = append(items, DigestItem{
				Borrower: who,
				Message:  fmt.Sprintf("%s: %s (%d days %s)", FieldLabel(field), val, days, word),
				Urgency:  urgencyLabels[domain.Classify(days, true)],
				Days:     days,
			})
		}
		if pending := pendingItems(l); len(pending) > 0 {
			preview := pending
			ellipsis := ""
			if len(preview) > 3 {
				preview = preview[:3]
				ellipsis = "..."
			}
			items = append(items, DigestItem{
				Borrower: who,
				Message: fmt.Sprintf("[%s] %d pending items: %s%s",
					l.Stage, len(pending), strings.Join(preview, ", "), ellipsis),
				Urgency: "ACTION",
				Days:    actionSortWeight,
			})
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Days < items[j].Days })
	return items
}

// DeadlineRows is the JSON digest: every set, parseable deadline on
// every non-Funded loan, soonest first.
func (u *Usecase) DeadlineRows(ctx context.Context) []DeadlineRow {
	var rows []DeadlineRow
	for _, l := range u.store.LoadAll(ctx).Loans {
		if l.Stage == domain.StageFunded {
			continue
		}
		for _, field := range domain.DateFields {
			val := l.Dates[field]
			days, ok := domain.DaysUntil(val)
			if !ok {
				continue
			}
			rows = append(rows, DeadlineRow{Borrower: l.Borrower, Deadline: field, Date: val, Days: days})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Days < rows[j].Days })
	return rows
}

func pendingItems(l *domain.Loan) []string {
	cl := l.Checklists[l.Stage]
	var pending []string
	for _, item := range domain.ItemOrder(l.Stage, l.LoanType) {
		if e, ok := cl[item]; ok && !e.Done {
			pending = append(pending, item)
		}
	}
	return pending
}

func displayBorrower(l *domain.Loan) string {
	if l.CoBorrower != "" {
		return l.Borrower + " & " + l.CoBorrower
	}
	return l.Borrower
}
