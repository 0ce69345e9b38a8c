package models

import "time"

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// CastVoteRequest is the ballot submission payload.
type CastVoteRequest struct {
	Choice VoteChoice `json:"choice" validate:"required,oneof=YES NO ABSTAIN"`
	// DeviceToken is the per-device pseudo-identity, echoed back so the
	// client can persist it. Audit aid only, not a security boundary.
	DeviceToken string `json:"device_token,omitempty"`
}

// CastVoteResponse echoes the persisted ballot id and device token.
type CastVoteResponse struct {
	VoteID      string     `json:"vote_id"`
	Choice      VoteChoice `json:"choice"`
	DeviceToken string     `json:"device_token"`
}

// ProposalRequest creates or updates a registered proposal.
type ProposalRequest struct {
	Title        string `json:"title" validate:"required"`
	Axis         string `json:"axis" validate:"required"`
	Scope        string `json:"scope" validate:"required"`
	Region       string `json:"region" validate:"required"`
	Municipality string `json:"municipality" validate:"required"`
	Description  string `json:"description" validate:"required"`
}

// SelectProposalRequest points voting at a registered proposal.
type SelectProposalRequest struct {
	ProposalID string `json:"proposal_id" validate:"required"`
}

// ChangePhaseRequest switches the global voting mode.
type ChangePhaseRequest struct {
	Phase Phase `json:"phase" validate:"required,oneof=AXES FINAL"`
}

// RosterConfigRequest saves the voter roster source.
type RosterConfigRequest struct {
	SheetURL  string        `json:"sheet_url" validate:"required,url"`
	SheetName string        `json:"sheet_name" validate:"required"`
	Columns   RosterColumns `json:"columns"`
}

// ImportConfigRequest saves the proposal import source.
type ImportConfigRequest struct {
	SheetURL  string        `json:"sheet_url" validate:"required,url"`
	SheetName string        `json:"sheet_name" validate:"required"`
	Columns   ImportColumns `json:"columns"`
}

// VoterAccountRequest provisions a voter manually.
type VoterAccountRequest struct {
	DisplayName    string `json:"display_name" validate:"required"`
	Secret         string `json:"secret" validate:"required,min=4"`
	Segment        string `json:"segment"`
	Representative string `json:"representative"`
	Axis           string `json:"axis"`
}

// AdminAccountRequest provisions an administrator manually.
type AdminAccountRequest struct {
	Username    string            `json:"username" validate:"required"`
	Secret      string            `json:"secret" validate:"required,min=6"`
	Permissions *AdminPermissions `json:"permissions"`
}

// ClassificationRuleRequest creates or updates a percentage rule.
type ClassificationRuleRequest struct {
	MinPercent float64              `json:"min_percent" validate:"gte=0,lte=100"`
	MaxPercent float64              `json:"max_percent" validate:"gte=0,lte=100"`
	Label      string               `json:"label" validate:"required"`
	Action     ClassificationAction `json:"action" validate:"required,oneof=none promote_to_final"`
	Color      string               `json:"color" validate:"required"`
}

// PublicState is the projection slice exposed to voters.
type PublicState struct {
	Status        VotingStatus `json:"status"`
	Phase         Phase        `json:"phase"`
	StartedAt     *time.Time   `json:"started_at,omitempty"`
	EndedAt       *time.Time   `json:"ended_at,omitempty"`
	ProposalTitle string       `json:"proposal_title"`
	ProposalBody  string       `json:"proposal_body"`
	ProposalAxis  string       `json:"proposal_axis"`
	ProposalID    string       `json:"proposal_id,omitempty"`
	TotalVotes    int          `json:"total_votes"`
	HasVoted      bool         `json:"has_voted"`
	Eligible      bool         `json:"eligible"`
	// Tally is only populated once the round is closed.
	Tally *Tally `json:"tally,omitempty"`
}

// ProposalResultView is one closed proposal's outcome as published on the
// results endpoint.
type ProposalResultView struct {
	ProposalID          string         `json:"proposal_id"`
	Title               string         `json:"title"`
	Axis                string         `json:"axis"`
	Result              ProposalResult `json:"result"`
	Tally               Tally          `json:"tally"`
	VotedAt             *time.Time     `json:"voted_at,omitempty"`
	DurationSeconds     int            `json:"duration_seconds,omitempty"`
	Promoted            bool           `json:"promoted,omitempty"`
	ClassificationLabel string         `json:"classification_label,omitempty"`
	ClassificationColor string         `json:"classification_color,omitempty"`
}

// AxisStats aggregates proposal outcomes for one axis.
type AxisStats struct {
	Axis     string `json:"axis"`
	Total    int    `json:"total"`
	Approved int    `json:"approved"`
	Rejected int    `json:"rejected"`
	Promoted int    `json:"promoted"`
}

// MonitoringReport summarises the proposal set for the admin panel.
type MonitoringReport struct {
	Total    int         `json:"total"`
	Pending  int         `json:"pending"`
	Approved int         `json:"approved"`
	Rejected int         `json:"rejected"`
	Promoted int         `json:"promoted"`
	ByAxis   []AxisStats `json:"by_axis"`
}
