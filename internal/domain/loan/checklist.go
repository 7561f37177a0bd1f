package loan

// Per-stage base checklist items, in display order.
var stageChecklists = map[Stage][]string{
	StageApplication: {
		"Initial application (1003) completed",
		"Credit report pulled",
		"Borrower ID verified",
		"Disclosures sent (LE, intent to proceed)",
		"Preapproval letter issued",
		"Loan program selected",
	},
	StageProcessing: {
		"Income docs collected (paystubs, W2s, tax returns)",
		"Asset docs collected (bank statements)",
		"VOE ordered / completed",
		"Credit report reviewed",
		"Appraisal ordered",
		"Title ordered",
		"Insurance quote obtained",
		"HOI binder requested",
		"Survey ordered (if needed)",
		"Flood cert ordered",
	},
	StageUnderwriting: {
		"File submitted to underwriting",
		"AUS findings reviewed (DU/LP)",
		"Income calculated & documented",
		"Assets verified",
		"Appraisal reviewed & approved",
		"Title commitment reviewed",
		"Insurance verified",
	},
	StageConditionalApproval: {
		"Conditions list received",
		"Prior-to-doc conditions cleared",
		"Prior-to-closing conditions cleared",
		"Updated docs collected (if needed)",
		"Re-submitted to UW for final review",
	},
	StageClearToClose: {
		"Final approval received",
		"Closing Disclosure prepared",
		"CD sent to borrower (3-day wait)",
		"Wire instructions confirmed",
		"Closing scheduled",
		"Final walkthrough confirmed",
	},
	StageClosing: {
		"Docs sent to title/attorney",
		"Borrower signed",
		"Funds wired",
		"Note & deed recorded",
	},
	StageFunded: {
		"Funding confirmed",
		"Post-closing audit complete",
		"File archived",
	},
}

var fhaExtras = map[Stage][]string{
	StageApplication: {
		"FHA case number assigned",
		"UFMIP calculated",
		"MIP calculations reviewed",
	},
	StageProcessing: {
		"DPA program setup (if applicable)",
		"FHA appraisal requirements noted",
		"HOA certification (if condo)",
		"FHA property standards checklist reviewed",
	},
	StageUnderwriting: {
		"FHA-specific AUS (TOTAL Scorecard) reviewed",
		"MIP premium schedule verified",
		"FHA property standards compliance confirmed",
	},
}

var convExtras = map[Stage][]string{
	StageProcessing: {
		"PMI quote obtained (if <20% down)",
		"Gift letter collected (if applicable)",
		"Reserve verification",
	},
}

// ItemOrder returns the item texts for a stage and loan type in their
// deterministic order: base items first, then the type extras. FHA has
// its own extras; every other type gets the conventional set.
func ItemOrder(stage Stage, typ LoanType) []string {
	base := stageChecklists[stage]
	var extras []string
	if typ == TypeFHA {
		extras = fhaExtras[stage]
	} else {
		extras = convExtras[stage]
	}
	items := make([]string, 0, len(base)+len(extras))
	items = append(items, base...)
	items = append(items, extras...)
	return items
}

// BuildChecklist builds a fresh, all-pending checklist for one stage.
func BuildChecklist(stage Stage, typ LoanType) Checklist {
	items := ItemOrder(stage, typ)
	cl := make(Checklist, len(items))
	for _, item := range items {
		cl[item] = &ChecklistEntry{}
	}
	return cl
}

// BuildAllChecklists builds fresh checklists for every stage.
func BuildAllChecklists(typ LoanType) Checklists {
	all := make(Checklists, len(Stages))
	for _, s := range Stages {
		all[s] = BuildChecklist(s, typ)
	}
	return all
}

// RebuildPreserving rebuilds the full checklist set for a new loan
// type. An item completed in the old set that also exists in the new
// set keeps its entry verbatim; items only in the old set are dropped
// with their history; items only in the new set start pending.
func RebuildPreserving(old Checklists, typ LoanType) Checklists {
	rebuilt := BuildAllChecklists(typ)
	for _, stage := range Stages {
		oldCl := old[stage]
		for item := range rebuilt[stage] {
			if prev, ok := oldCl[item]; ok && prev.Done {
				rebuilt[stage][item] = prev
			}
		}
	}
	return rebuilt
}
