package loan

import (
	"testing"
	"time"
)

func TestBuildChecklist_BaseThenExtras(t *testing.T) {
	for _, stage := range Stages {
		for _, typ := range LoanTypes {
			extras := convExtras[stage]
			if typ == TypeFHA {
				extras = fhaExtras[stage]
			}
			base := stageChecklists[stage]

			order := ItemOrder(stage, typ)
			if len(order) != len(base)+len(extras) {
				t.Fatalf("%s/%s: %d items, want %d", stage, typ, len(order), len(base)+len(extras))
			}
			for i, item := range base {
				if order[i] != item {
					t.Fatalf("%s/%s: item %d = %q, want base item %q", stage, typ, i, order[i], item)
				}
			}
			for i, item := range extras {
				if order[len(base)+i] != item {
					t.Fatalf("%s/%s: extra %d = %q, want %q", stage, typ, i, order[len(base)+i], item)
				}
			}

			cl := BuildChecklist(stage, typ)
			if len(cl) != len(order) {
				t.Fatalf("%s/%s: checklist has %d entries, want %d (duplicate item?)", stage, typ, len(cl), len(order))
			}
			for item, e := range cl {
				if e.Done || e.CompletedAt != nil || e.CompletedBy != nil {
					t.Fatalf("%s/%s: fresh item %q not pending: %+v", stage, typ, item, e)
				}
			}
		}
	}
}

func TestBuildChecklist_TypeExtras(t *testing.T) {
	if _, ok := BuildChecklist(StageApplication, TypeFHA)["FHA case number assigned"]; !ok {
		t.Fatal("FHA Application checklist missing FHA case number item")
	}
	if _, ok := BuildChecklist(StageApplication, TypeConventional)["FHA case number assigned"]; ok {
		t.Fatal("conventional Application checklist has FHA case number item")
	}
	if _, ok := BuildChecklist(StageProcessing, TypeFHA)["PMI quote obtained (if <20% down)"]; ok {
		t.Fatal("FHA Processing checklist has the PMI item")
	}

	// VA, USDA and non-QM receive the conventional extras.
	for _, typ := range []LoanType{TypeVA, TypeUSDA, TypeNonQM} {
		if _, ok := BuildChecklist(StageProcessing, typ)["PMI quote obtained (if <20% down)"]; !ok {
			t.Fatalf("%s Processing checklist missing conventional extras", typ)
		}
	}
}

func TestBuildAllChecklists_CoversEveryStage(t *testing.T) {
	all := BuildAllChecklists(TypeUSDA)
	if len(all) != len(Stages) {
		t.Fatalf("got %d stages, want %d", len(all), len(Stages))
	}
	for _, s := range Stages {
		if _, ok := all[s]; !ok {
			t.Fatalf("missing stage %s", s)
		}
	}
}

func TestRebuildPreserving(t *testing.T) {
	now := time.Date(2026, 2, 20, 10, 0, 0, 0, time.UTC)
	by := "ana"

	old := BuildAllChecklists(TypeFHA)
	// Done in both type's checklists: must survive verbatim.
	old[StageApplication]["Credit report pulled"] = &ChecklistEntry{Done: true, CompletedAt: &now, CompletedBy: &by}
	// FHA-only and done: must be dropped with its history.
	old[StageApplication]["FHA case number assigned"] = &ChecklistEntry{Done: true, CompletedAt: &now, CompletedBy: &by}
	// Pending in both: must come back pending, not copied.
	old[StageApplication]["Loan program selected"].Done = false

	rebuilt := RebuildPreserving(old, TypeConventional)

	kept := rebuilt[StageApplication]["Credit report pulled"]
	if kept == nil || !kept.Done || kept.CompletedAt == nil || !kept.CompletedAt.Equal(now) || *kept.CompletedBy != by {
		t.Fatalf("completed overlapping item not preserved: %+v", kept)
	}
	if _, ok := rebuilt[StageApplication]["FHA case number assigned"]; ok {
		t.Fatal("FHA-only item survived the switch to conventional")
	}
	pmi, ok := rebuilt[StageProcessing]["PMI quote obtained (if <20% down)"]
	if !ok {
		t.Fatal("conventional-only item missing after switch")
	}
	if pmi.Done {
		t.Fatal("new-only item should start pending")
	}
	if rebuilt[StageApplication]["Loan program selected"].Done {
		t.Fatal("pending item became done")
	}
}
