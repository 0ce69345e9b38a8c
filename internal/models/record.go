package models

import (
	"encoding/json"
	"time"
)

// RecordKind discriminates entries in the shared event log. Every piece of
// application state is derived from the full set of records, so kinds form a
// closed set: anything else is quarantined on load.
type RecordKind string

const (
	KindVote                 RecordKind = "vote"
	KindProposal             RecordKind = "proposal"
	KindControl              RecordKind = "control"
	KindActiveProposal       RecordKind = "active_proposal"
	KindRosterConfig         RecordKind = "roster_config"
	KindProposalImportConfig RecordKind = "proposal_import_config"
	KindVoterAccount         RecordKind = "voter_account"
	KindAdminAccount         RecordKind = "admin_account"
	KindClassificationRule   RecordKind = "classification_rule"
)

// VoteChoice is a ballot value.
type VoteChoice string

const (
	ChoiceYes     VoteChoice = "YES"
	ChoiceNo      VoteChoice = "NO"
	ChoiceAbstain VoteChoice = "ABSTAIN"
)

// VotingStatus is the session status carried by control records. The reset
// sentinels never survive projection: they collapse to StatusNotStarted.
type VotingStatus string

const (
	StatusNotStarted       VotingStatus = "not_started"
	StatusStarted          VotingStatus = "started"
	StatusClosed           VotingStatus = "closed"
	StatusReset            VotingStatus = "reset"
	StatusNewVotingCreated VotingStatus = "new_voting_created"
)

// Phase is the global voting mode: axis-restricted rounds or the final open
// plenary.
type Phase string

const (
	PhaseAxes  Phase = "AXES"
	PhaseFinal Phase = "FINAL"
)

// ProposalStatus is the lifecycle state of a registered proposal.
type ProposalStatus string

const (
	ProposalPending  ProposalStatus = "PENDING"
	ProposalInVoting ProposalStatus = "IN_VOTING"
	ProposalVoted    ProposalStatus = "VOTED"
)

// ProposalResult is the outcome of a closed round.
type ProposalResult string

const (
	ResultApproved        ProposalResult = "APPROVED"
	ResultRejected        ProposalResult = "REJECTED"
	ResultTie             ProposalResult = "TIE"
	ResultAbstainMajority ProposalResult = "ABSTAIN_MAJORITY"
)

// Record is one tagged, immutable-once-written unit in the event log.
type Record interface {
	RecordID() string
	RecordKind() RecordKind
	RecordedTime() time.Time
}

// Meta is the envelope shared by every record.
type Meta struct {
	ID         string     `json:"id"`
	Kind       RecordKind `json:"kind"`
	RecordedAt time.Time  `json:"recorded_at"`
}

func (m Meta) RecordID() string        { return m.ID }
func (m Meta) RecordKind() RecordKind  { return m.Kind }
func (m Meta) RecordedTime() time.Time { return m.RecordedAt }

// Vote is one ballot. Votes are never edited in place; a reset deletes the
// matching records instead.
type Vote struct {
	Meta
	VoterID     string     `json:"voter_id"`
	ProposalID  string     `json:"proposal_id"`
	Choice      VoteChoice `json:"choice"`
	DeviceToken string     `json:"device_token,omitempty"`
}

// Proposal is a registered ballot item. Tally fields are zero until the
// round that voted it is closed.
type Proposal struct {
	Meta
	Title        string    `json:"title"`
	Axis         string    `json:"axis"`
	Scope        string    `json:"scope"`
	Region       string    `json:"region"`
	Municipality string    `json:"municipality"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at"`

	Status          ProposalStatus  `json:"status,omitempty"`
	YesVotes        int             `json:"yes_votes,omitempty"`
	NoVotes         int             `json:"no_votes,omitempty"`
	AbstainVotes    int             `json:"abstain_votes,omitempty"`
	TotalVotes      int             `json:"total_votes,omitempty"`
	VotedAt         *time.Time      `json:"voted_at,omitempty"`
	Result          *ProposalResult `json:"result,omitempty"`
	DurationSeconds int             `json:"duration_seconds,omitempty"`

	Promoted            bool   `json:"promoted,omitempty"`
	ClassificationLabel string `json:"classification_label,omitempty"`
	ClassificationColor string `json:"classification_color,omitempty"`
}

// ControlEvent is an append-only voting-session control record; the latest
// one wins during projection.
type ControlEvent struct {
	Meta
	Status    VotingStatus `json:"status"`
	StartedAt *time.Time   `json:"started_at,omitempty"`
	EndedAt   *time.Time   `json:"ended_at,omitempty"`
	Phase     *Phase       `json:"phase,omitempty"`
}

// ActiveProposal points at the proposal currently up for voting and caches
// its display text so the voting screen works even if the registered record
// is deleted afterwards.
type ActiveProposal struct {
	Meta
	ProposalID string `json:"proposal_id"`
	Title      string `json:"title"`
	Axis       string `json:"axis"`
	BodyText   string `json:"body_text"`
}

// RosterColumns maps spreadsheet column letters to voter fields.
type RosterColumns struct {
	Name           string `json:"name"`
	Secret         string `json:"secret"`
	Segment        string `json:"segment,omitempty"`
	Representative string `json:"representative,omitempty"`
	Axis           string `json:"axis,omitempty"`
}

// RosterConfig describes the external voter roster source.
type RosterConfig struct {
	Meta
	SheetURL  string        `json:"sheet_url"`
	SheetName string        `json:"sheet_name"`
	Columns   RosterColumns `json:"columns"`
}

// ImportColumns maps spreadsheet column letters to proposal fields.
type ImportColumns struct {
	Title        string `json:"title"`
	Axis         string `json:"axis"`
	Scope        string `json:"scope,omitempty"`
	Region       string `json:"region,omitempty"`
	Municipality string `json:"municipality,omitempty"`
	Description  string `json:"description,omitempty"`
}

// ProposalImportConfig describes the external proposal source.
type ProposalImportConfig struct {
	Meta
	SheetURL  string        `json:"sheet_url"`
	SheetName string        `json:"sheet_name"`
	Columns   ImportColumns `json:"columns"`
}

// VoterAccount is a manually provisioned voter. The secret is compared
// verbatim, mirroring the plaintext roster it coexists with.
type VoterAccount struct {
	Meta
	DisplayName    string `json:"display_name"`
	Secret         string `json:"secret"`
	Segment        string `json:"segment,omitempty"`
	Representative string `json:"representative,omitempty"`
	Axis           string `json:"axis,omitempty"`
}

// AdminPermissions gates the admin panel areas. A nil permission set on an
// account means all-true.
type AdminPermissions struct {
	ManageVoting    bool `json:"manage_voting"`
	ManageProposals bool `json:"manage_proposals"`
	ManageUsers     bool `json:"manage_users"`
	ManageConfig    bool `json:"manage_config"`
}

// AllPermissions returns the default full permission set.
func AllPermissions() AdminPermissions {
	return AdminPermissions{ManageVoting: true, ManageProposals: true, ManageUsers: true, ManageConfig: true}
}

// AdminAccount is a manually provisioned administrator. SecretHash is a
// bcrypt hash computed at provision time.
type AdminAccount struct {
	Meta
	Username    string            `json:"username"`
	SecretHash  string            `json:"secret_hash"`
	Permissions *AdminPermissions `json:"permissions,omitempty"`
}

// ClassificationAction is what a matched rule does beyond labelling.
type ClassificationAction string

const (
	ActionNone           ClassificationAction = "none"
	ActionPromoteToFinal ClassificationAction = "promote_to_final"
)

// ClassificationRule maps a yes-percentage range to a label, color and an
// optional promotion to the final round. Rules are evaluated in stored
// order; the first match wins.
type ClassificationRule struct {
	Meta
	MinPercent float64              `json:"min_percent"`
	MaxPercent float64              `json:"max_percent"`
	Label      string               `json:"label"`
	Action     ClassificationAction `json:"action"`
	Color      string               `json:"color"`
}

// EncodeRecord serialises a record to its stored payload.
func EncodeRecord(r Record) (json.RawMessage, error) {
	return json.Marshal(r)
}
