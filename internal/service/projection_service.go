package service

import (
	"sort"

	"github.com/noah-isme/plenary-api/internal/models"
)

// Project derives the full application state from a set of trusted records.
// It is a pure function: singleton categories resolve to the record with the
// latest recorded time (stable sort, so ties keep storage order), collection
// categories keep storage order.
func Project(records []models.Record) models.State {
	state := models.State{
		Status: models.StatusNotStarted,
		Phase:  models.PhaseAxes,
	}

	var controls []models.ControlEvent
	var pointers []models.ActiveProposal
	var rosterConfigs []models.RosterConfig
	var importConfigs []models.ProposalImportConfig

	for _, rec := range records {
		switch r := rec.(type) {
		case models.Vote:
			state.Votes = append(state.Votes, r)
		case models.Proposal:
			state.Proposals = append(state.Proposals, r)
		case models.ControlEvent:
			controls = append(controls, r)
		case models.ActiveProposal:
			pointers = append(pointers, r)
		case models.RosterConfig:
			rosterConfigs = append(rosterConfigs, r)
		case models.ProposalImportConfig:
			importConfigs = append(importConfigs, r)
		case models.VoterAccount:
			state.VoterAccounts = append(state.VoterAccounts, r)
		case models.AdminAccount:
			state.AdminAccounts = append(state.AdminAccounts, r)
		case models.ClassificationRule:
			state.Rules = append(state.Rules, r)
		}
	}

	projectControl(&state, controls)

	if latest := latestRecord(pointers); latest != nil {
		state.ActivePointer = latest
		state.ActiveProposal = state.FindProposal(latest.ProposalID)
	}
	if latest := latestRecord(rosterConfigs); latest != nil {
		state.RosterConfig = latest
	}
	if latest := latestRecord(importConfigs); latest != nil {
		state.ImportConfig = latest
	}

	return state
}

// projectControl resolves status and phase from the control log. Status
// always derives from the latest record, with the reset sentinels collapsing
// to not-started and clearing the round times. Phase is sticky: it only
// changes when a control record carries one, so it is folded over the whole
// log in chronological order.
func projectControl(state *models.State, controls []models.ControlEvent) {
	if len(controls) == 0 {
		return
	}

	chronological := make([]models.ControlEvent, len(controls))
	copy(chronological, controls)
	sort.SliceStable(chronological, func(i, j int) bool {
		return chronological[i].RecordedAt.Before(chronological[j].RecordedAt)
	})

	for _, c := range chronological {
		if c.Phase != nil {
			state.Phase = *c.Phase
		}
	}

	latest := chronological[len(chronological)-1]
	switch latest.Status {
	case models.StatusReset, models.StatusNewVotingCreated:
		state.Status = models.StatusNotStarted
		state.StartedAt = nil
		state.EndedAt = nil
	default:
		state.Status = latest.Status
		state.StartedAt = latest.StartedAt
		state.EndedAt = latest.EndedAt
	}
}

// latestRecord returns the record with the greatest recorded time, or nil
// for an empty slice. The stable sort keeps ties in storage order, so on
// equal timestamps the later stored record wins.
func latestRecord[T models.Record](items []T) *T {
	if len(items) == 0 {
		return nil
	}
	sorted := make([]T, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RecordedTime().Before(sorted[j].RecordedTime())
	})
	return &sorted[len(sorted)-1]
}
