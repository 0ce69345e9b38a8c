package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ballotFor(voter, proposal string, choice VoteChoice) Vote {
	return Vote{
		Meta:       Meta{ID: "v-" + voter + "-" + proposal, Kind: KindVote, RecordedAt: time.Now()},
		VoterID:    voter,
		ProposalID: proposal,
		Choice:     choice,
	}
}

func TestCountVotes(t *testing.T) {
	votes := []Vote{
		ballotFor("a", "p1", ChoiceYes),
		ballotFor("b", "p1", ChoiceYes),
		ballotFor("c", "p1", ChoiceNo),
		ballotFor("d", "p1", ChoiceAbstain),
	}

	tally := CountVotes(votes)
	assert.Equal(t, Tally{Yes: 2, No: 1, Abstain: 1, Total: 4}, tally)
	assert.Equal(t, Tally{}, CountVotes(nil))
}

func TestTallyResult(t *testing.T) {
	cases := []struct {
		name  string
		tally Tally
		want  ProposalResult
	}{
		{"yes majority", Tally{Yes: 3, No: 1, Abstain: 1}, ResultApproved},
		{"no majority", Tally{Yes: 1, No: 3, Abstain: 1}, ResultRejected},
		{"tie", Tally{Yes: 2, No: 2, Abstain: 1}, ResultTie},
		{"empty round is a tie", Tally{}, ResultTie},
		{"abstain beats both", Tally{Yes: 2, No: 1, Abstain: 3}, ResultAbstainMajority},
		{"abstain equals yes stays strict", Tally{Yes: 3, No: 1, Abstain: 3}, ResultApproved},
		{"abstain tie with both", Tally{Yes: 2, No: 2, Abstain: 2}, ResultTie},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.tally.Result())
		})
	}
}

func TestVotesForProposal(t *testing.T) {
	state := &State{Votes: []Vote{
		ballotFor("a", "p1", ChoiceYes),
		ballotFor("a", "p2", ChoiceNo),
		ballotFor("b", "p1", ChoiceNo),
	}}

	got := state.VotesForProposal("p1")
	assert.Len(t, got, 2)
	for _, v := range got {
		assert.Equal(t, "p1", v.ProposalID)
	}
	assert.Empty(t, state.VotesForProposal("p9"))
}

func TestHasVoted(t *testing.T) {
	state := &State{Votes: []Vote{ballotFor("Alice", "p1", ChoiceYes)}}

	assert.True(t, state.HasVoted("Alice", "p1"))
	assert.False(t, state.HasVoted("Alice", "p2"))
	assert.False(t, state.HasVoted("alice", "p1"), "voter ids match verbatim")
	assert.False(t, state.HasVoted("Bob", "p1"))
}

func TestFindProposal(t *testing.T) {
	state := &State{Proposals: []Proposal{
		{Meta: Meta{ID: "p1", Kind: KindProposal}, Title: "Water access"},
		{Meta: Meta{ID: "p2", Kind: KindProposal}, Title: "New school"},
	}}

	found := state.FindProposal("p2")
	if assert.NotNil(t, found) {
		assert.Equal(t, "New school", found.Title)
	}
	assert.Nil(t, state.FindProposal("p9"))
}
