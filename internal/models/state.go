package models

import "time"

// Default display text used while no proposal has been selected.
const (
	DefaultProposalTitle = "Proposal title"
	DefaultProposalBody  = "Select a proposal in the admin panel to start voting."
	DefaultAxisText      = "Proposal axis"
)

// State is the full application state derived from the event log. It is a
// value: projections build a fresh one on every change and swap it in
// atomically.
type State struct {
	Votes         []Vote
	Proposals     []Proposal
	VoterAccounts []VoterAccount
	AdminAccounts []AdminAccount
	Rules         []ClassificationRule

	Status    VotingStatus
	Phase     Phase
	StartedAt *time.Time
	EndedAt   *time.Time

	// ActivePointer is the latest selection record; ActiveProposal is the
	// registered proposal it references, nil if that proposal is gone.
	ActivePointer  *ActiveProposal
	ActiveProposal *Proposal

	RosterConfig *RosterConfig
	ImportConfig *ProposalImportConfig
}

// VotesForProposal filters ballots belonging to one proposal.
func (s *State) VotesForProposal(proposalID string) []Vote {
	var out []Vote
	for _, v := range s.Votes {
		if v.ProposalID == proposalID {
			out = append(out, v)
		}
	}
	return out
}

// HasVoted reports whether the voter already holds a ballot for the proposal.
func (s *State) HasVoted(voterID, proposalID string) bool {
	for _, v := range s.Votes {
		if v.VoterID == voterID && v.ProposalID == proposalID {
			return true
		}
	}
	return false
}

// FindProposal returns the registered proposal with the given id.
func (s *State) FindProposal(id string) *Proposal {
	for i := range s.Proposals {
		if s.Proposals[i].ID == id {
			return &s.Proposals[i]
		}
	}
	return nil
}

// Tally aggregates ballots by choice.
type Tally struct {
	Yes     int `json:"yes"`
	No      int `json:"no"`
	Abstain int `json:"abstain"`
	Total   int `json:"total"`
}

// CountVotes tallies a set of ballots.
func CountVotes(votes []Vote) Tally {
	t := Tally{Total: len(votes)}
	for _, v := range votes {
		switch v.Choice {
		case ChoiceYes:
			t.Yes++
		case ChoiceNo:
			t.No++
		case ChoiceAbstain:
			t.Abstain++
		}
	}
	return t
}

// Result applies the majority rule: abstain-majority when abstentions beat
// both sides, otherwise strict YES/NO comparison with equality as a tie.
func (t Tally) Result() ProposalResult {
	if t.Abstain > t.Yes && t.Abstain > t.No {
		return ResultAbstainMajority
	}
	switch {
	case t.Yes > t.No:
		return ResultApproved
	case t.No > t.Yes:
		return ResultRejected
	default:
		return ResultTie
	}
}
