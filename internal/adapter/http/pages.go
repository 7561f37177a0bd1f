package http

import (
	"errors"
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"

	domain "loan-tracker/internal/domain/loan"
	uc "loan-tracker/internal/usecase/loan"
)

// Pages renders the HTML views; all state changes go through the same
// usecase the JSON API uses.
type Pages struct{ uc *uc.Usecase }

func NewPages(u *uc.Usecase) *Pages { return &Pages{uc: u} }

type badge struct {
	Label    string
	Days     int
	Severity domain.Severity
}

type card struct {
	Loan   *domain.Loan
	Badges []badge
}

type boardView struct {
	Stages  []domain.Stage
	Columns map[domain.Stage][]card
}

func (p *Pages) Board(c echo.Context) error {
	cols := make(map[domain.Stage][]card, len(domain.Stages))
	for _, l := range p.uc.List(c.Request().Context()) {
		if !domain.ValidStage(string(l.Stage)) {
			continue
		}
		cols[l.Stage] = append(cols[l.Stage], card{Loan: l, Badges: badges(l)})
	}
	for s := range cols {
		sort.Slice(cols[s], func(i, j int) bool { return cols[s][i].Loan.Borrower < cols[s][j].Loan.Borrower })
	}
	return c.Render(http.StatusOK, "board", boardView{Stages: domain.Stages, Columns: cols})
}

func badges(l *domain.Loan) []badge {
	var out []badge
	for _, f := range domain.DateFields {
		if days, ok := domain.DaysUntil(l.Dates[f]); ok {
			out = append(out, badge{Label: uc.FieldLabel(f), Days: days, Severity: domain.Classify(days, true)})
		}
	}
	return out
}

type dateCard struct {
	Label    string
	Value    string
	Days     int
	HasDays  bool
	Severity domain.Severity
}

type checkRow struct {
	Item  string
	Entry *domain.ChecklistEntry
}

type stageChecklist struct {
	Stage  domain.Stage
	Active bool
	Rows   []checkRow
}

type detailView struct {
	Loan       *domain.Loan
	Stages     []domain.Stage
	DateCards  []dateCard
	Checklists []stageChecklist
	Milestones []domain.Milestone
}

func (p *Pages) Detail(c echo.Context) error {
	l, err := p.uc.Get(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return c.Redirect(http.StatusSeeOther, "/")
	}

	cards := make([]dateCard, 0, len(domain.DateFields))
	for _, f := range domain.DateFields {
		val := l.Dates[f]
		days, ok := domain.DaysUntil(val)
		cards = append(cards, dateCard{
			Label: uc.FieldLabel(f), Value: val,
			Days: days, HasDays: ok, Severity: domain.Classify(days, ok),
		})
	}

	cls := make([]stageChecklist, 0, len(domain.Stages))
	for _, s := range domain.Stages {
		sc := stageChecklist{Stage: s, Active: s == l.Stage}
		for _, item := range domain.ItemOrder(s, l.LoanType) {
			if e, ok := l.Checklists[s][item]; ok {
				sc.Rows = append(sc.Rows, checkRow{Item: item, Entry: e})
			}
		}
		cls = append(cls, sc)
	}

	// Latest 20 milestones, newest first.
	ms := l.Milestones
	if len(ms) > 20 {
		ms = ms[len(ms)-20:]
	}
	rev := make([]domain.Milestone, len(ms))
	for i, m := range ms {
		rev[len(ms)-1-i] = m
	}

	return c.Render(http.StatusOK, "detail", detailView{
		Loan: l, Stages: domain.Stages, DateCards: cards, Checklists: cls, Milestones: rev,
	})
}

func (p *Pages) StageForm(c echo.Context) error {
	lid := c.Param("loan_id")
	err := p.uc.MoveStage(c.Request().Context(), lid, c.FormValue("stage"))
	if err != nil && errors.Is(err, domain.ErrNotFound) {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	return c.Redirect(http.StatusSeeOther, "/loan/"+lid)
}

func (p *Pages) ChecklistForm(c echo.Context) error {
	lid := c.Param("loan_id")
	form, err := c.FormParams()
	if err != nil {
		return c.Redirect(http.StatusSeeOther, "/loan/"+lid)
	}
	err = p.uc.SetChecklist(c.Request().Context(), lid,
		c.FormValue("stage"), form["items"], c.FormValue("completed_by"))
	if err != nil && errors.Is(err, domain.ErrNotFound) {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	return c.Redirect(http.StatusSeeOther, "/loan/"+lid)
}

func (p *Pages) DeleteForm(c echo.Context) error {
	_ = p.uc.Delete(c.Request().Context(), c.Param("loan_id"))
	return c.Redirect(http.StatusSeeOther, "/")
}

type editView struct {
	Title      string
	Action     string
	Stages     []domain.Stage
	LoanTypes  []domain.LoanType
	DateFields []string
	Form       map[string]string
	Errors     uc.ValidationErrors
}

func (p *Pages) AddForm(c echo.Context) error {
	if c.Request().Method == http.MethodGet {
		return c.Render(http.StatusOK, "edit", p.editView("Add New Loan", "/add", map[string]string{}, nil))
	}
	fields := formFields(c)
	l, err := p.uc.Create(c.Request().Context(), fields)
	if err != nil {
		var ve uc.ValidationErrors
		if errors.As(err, &ve) {
			return c.Render(http.StatusBadRequest, "edit", p.editView("Add New Loan", "/add", formValues(c), ve))
		}
		return writeError(c, err)
	}
	return c.Redirect(http.StatusSeeOther, "/loan/"+l.ID)
}

func (p *Pages) EditForm(c echo.Context) error {
	lid := c.Param("loan_id")
	if c.Request().Method == http.MethodGet {
		l, err := p.uc.Get(c.Request().Context(), lid)
		if err != nil {
			return c.Redirect(http.StatusSeeOther, "/")
		}
		return c.Render(http.StatusOK, "edit",
			p.editView("Edit: "+l.Borrower, "/loan/"+lid+"/edit", loanValues(l), nil))
	}
	fields := formFields(c)
	_, err := p.uc.Update(c.Request().Context(), lid, fields)
	if err != nil {
		var ve uc.ValidationErrors
		if errors.As(err, &ve) {
			return c.Render(http.StatusBadRequest, "edit",
				p.editView("Edit", "/loan/"+lid+"/edit", formValues(c), ve))
		}
		if errors.Is(err, domain.ErrNotFound) {
			return c.Redirect(http.StatusSeeOther, "/")
		}
		return writeError(c, err)
	}
	return c.Redirect(http.StatusSeeOther, "/loan/"+lid)
}

type digestView struct {
	Today string
	Items []uc.DigestItem
}

func (p *Pages) DigestPage(c echo.Context) error {
	return c.Render(http.StatusOK, "digest", digestView{
		Today: todayISO(),
		Items: p.uc.Digest(c.Request().Context()),
	})
}

func (p *Pages) editView(title, action string, form map[string]string, errs uc.ValidationErrors) editView {
	return editView{
		Title: title, Action: action,
		Stages: domain.Stages, LoanTypes: domain.LoanTypes, DateFields: domain.DateFields,
		Form: form, Errors: errs,
	}
}

var formFieldNames = []string{
	"borrower", "co_borrower", "property_address", "loan_amount",
	"loan_type", "stage", "notes",
	domain.DateContract, domain.DateLockExpiration, domain.DateAppraisalDeadline,
	domain.DateUWSubmission, domain.DateLoanApproval, domain.DateClosing,
}

func formFields(c echo.Context) map[string]any {
	out := make(map[string]any, len(formFieldNames))
	for _, k := range formFieldNames {
		out[k] = c.FormValue(k)
	}
	return out
}

func formValues(c echo.Context) map[string]string {
	out := make(map[string]string, len(formFieldNames))
	for _, k := range formFieldNames {
		out[k] = c.FormValue(k)
	}
	return out
}

func loanValues(l *domain.Loan) map[string]string {
	out := map[string]string{
		"borrower":         l.Borrower,
		"co_borrower":      l.CoBorrower,
		"property_address": l.PropertyAddress,
		"loan_amount":      l.LoanAmount,
		"loan_type":        string(l.LoanType),
		"stage":            string(l.Stage),
		"notes":            l.Notes,
	}
	for _, f := range domain.DateFields {
		out[f] = l.Dates[f]
	}
	return out
}
