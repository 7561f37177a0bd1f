// Package ingest seeds loans from free-text borrower files. The
// heuristics only produce candidate fields; everything still goes
// through the loan input validator before a record is created.
package ingest

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	uc "loan-tracker/internal/usecase/loan"

	domain "loan-tracker/internal/domain/loan"
)

type Seeder struct {
	dir string
	uc  *uc.Usecase
}

func New(dir string, u *uc.Usecase) *Seeder { return &Seeder{dir: dir, uc: u} }

var (
	reAmount = regexp.MustCompile(`\$?([\d,]+)`)
	reDate   = regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{2,4}`)

	titleCaser = cases.Title(language.English)
	stemNormal = strings.NewReplacer("-", " ", "_", " ")
)

// Seed creates a loan for every borrower .md file whose borrower is
// not already tracked. Files that escape the intake directory, cannot
// be read, or fail validation are logged and skipped.
func (s *Seeder) Seed(ctx context.Context) error {
	base, err := filepath.EvalSymlinks(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	existing := map[string]bool{}
	for _, l := range s.uc.List(ctx) {
		existing[strings.ToLower(l.Borrower)] = true
	}

	paths, err := filepath.Glob(filepath.Join(s.dir, "*.md"))
	if err != nil {
		return err
	}
	for _, p := range paths {
		resolved, err := filepath.EvalSymlinks(p)
		if err != nil || !strings.HasPrefix(resolved, base+string(os.PathSeparator)) {
			log.Printf("ingest: skipping file outside borrowers dir: %s", p)
			continue
		}
		text, err := os.ReadFile(p)
		if err != nil {
			log.Printf("ingest: error reading %s: %v", p, err)
			continue
		}
		name := BorrowerName(p)
		if existing[strings.ToLower(name)] {
			continue
		}
		fields := ParseFields(name, string(text))
		if _, err := s.uc.Create(ctx, fields); err != nil {
			log.Printf("ingest: skipping %s: %v", p, err)
			continue
		}
		existing[strings.ToLower(name)] = true
	}
	return nil
}

// BorrowerName derives the borrower name from the file stem:
// "ileana-rodriguez.md" becomes "Ileana Rodriguez".
func BorrowerName(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return titleCaser.String(stemNormal.Replace(stem))
}

// ParseFields scans the file text line by line for loan facts. Only a
// valid-looking closing date is kept; the validator has the final say
// on everything.
func ParseFields(name, text string) map[string]any {
	fields := map[string]any{"borrower": name}
	for _, line := range strings.Split(text, "\n") {
		ll := strings.ToLower(line)
		if strings.Contains(ll, "loan amount") || strings.Contains(ll, "purchase price") {
			if m := reAmount.FindStringSubmatch(line); m != nil {
				fields["loan_amount"] = strings.ReplaceAll(m[1], ",", "")
			}
		}
		if strings.Contains(ll, "property") || strings.Contains(ll, "address") {
			if _, val, found := strings.Cut(line, ":"); found {
				if val = strings.TrimSpace(val); val != "" {
					fields["property_address"] = val
				}
			}
		}
		if strings.Contains(ll, "fha") {
			fields["loan_type"] = string(domain.TypeFHA)
		}
		if strings.Contains(ll, "closing") && strings.Contains(ll, "date") {
			if m := reDate.FindString(line); m != "" {
				if _, _, err := domain.ParseDate(m); err == nil {
					fields["closing_date"] = m
				}
			}
		}
	}
	return fields
}
