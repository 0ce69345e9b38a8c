package models

import (
	"encoding/json"
	"fmt"
)

// DecodeRecord turns raw stored bytes into a trusted record. It is the
// single gate between storage and projection: it never panics, never
// normalises, and rejects unknown kinds and records missing required
// fields. Callers quarantine rejected records without deleting them.
func DecodeRecord(raw json.RawMessage) (Record, error) {
	var probe Meta
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("decode record envelope: %w", err)
	}
	if probe.ID == "" {
		return nil, fmt.Errorf("record missing id")
	}

	switch probe.Kind {
	case KindVote:
		var rec Vote
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decode vote: %w", err)
		}
		return rec, validateVote(rec)
	case KindProposal:
		var rec Proposal
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decode proposal: %w", err)
		}
		return rec, validateProposal(rec)
	case KindControl:
		var rec ControlEvent
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decode control: %w", err)
		}
		return rec, validateControl(rec)
	case KindActiveProposal:
		var rec ActiveProposal
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decode active proposal: %w", err)
		}
		return rec, validateActiveProposal(rec)
	case KindRosterConfig:
		var rec RosterConfig
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decode roster config: %w", err)
		}
		return rec, validateRosterConfig(rec)
	case KindProposalImportConfig:
		var rec ProposalImportConfig
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decode import config: %w", err)
		}
		return rec, validateImportConfig(rec)
	case KindVoterAccount:
		var rec VoterAccount
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decode voter account: %w", err)
		}
		return rec, validateVoterAccount(rec)
	case KindAdminAccount:
		var rec AdminAccount
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decode admin account: %w", err)
		}
		return rec, validateAdminAccount(rec)
	case KindClassificationRule:
		var rec ClassificationRule
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decode classification rule: %w", err)
		}
		return rec, validateClassificationRule(rec)
	default:
		return nil, fmt.Errorf("unknown record kind %q", probe.Kind)
	}
}

// IsValidRecord reports whether raw bytes decode to a trusted record.
func IsValidRecord(raw json.RawMessage) bool {
	_, err := DecodeRecord(raw)
	return err == nil
}

func validateVote(v Vote) error {
	if v.VoterID == "" {
		return fmt.Errorf("vote %s: missing voter_id", v.ID)
	}
	if v.ProposalID == "" {
		return fmt.Errorf("vote %s: missing proposal_id", v.ID)
	}
	switch v.Choice {
	case ChoiceYes, ChoiceNo, ChoiceAbstain:
	default:
		return fmt.Errorf("vote %s: invalid choice %q", v.ID, v.Choice)
	}
	if v.RecordedAt.IsZero() {
		return fmt.Errorf("vote %s: missing recorded_at", v.ID)
	}
	return nil
}

// Scope, region, municipality and description may legitimately be blank:
// imported sheets often omit those columns. Non-empty rules for manual
// registration live on the request DTO, not here, so stored records with
// blanks are never quarantined.
func validateProposal(p Proposal) error {
	if p.Title == "" {
		return fmt.Errorf("proposal %s: missing title", p.ID)
	}
	if p.Axis == "" {
		return fmt.Errorf("proposal %s: missing axis", p.ID)
	}
	if p.CreatedAt.IsZero() {
		return fmt.Errorf("proposal %s: missing created_at", p.ID)
	}
	return nil
}

func validateControl(c ControlEvent) error {
	switch c.Status {
	case StatusNotStarted, StatusStarted, StatusClosed, StatusReset, StatusNewVotingCreated:
	default:
		return fmt.Errorf("control %s: invalid status %q", c.ID, c.Status)
	}
	if c.Phase != nil {
		switch *c.Phase {
		case PhaseAxes, PhaseFinal:
		default:
			return fmt.Errorf("control %s: invalid phase %q", c.ID, *c.Phase)
		}
	}
	return nil
}

func validateActiveProposal(a ActiveProposal) error {
	if a.ProposalID == "" {
		return fmt.Errorf("active proposal %s: missing proposal_id", a.ID)
	}
	if a.Title == "" {
		return fmt.Errorf("active proposal %s: missing title", a.ID)
	}
	if a.Axis == "" {
		return fmt.Errorf("active proposal %s: missing axis", a.ID)
	}
	if a.BodyText == "" {
		return fmt.Errorf("active proposal %s: missing body_text", a.ID)
	}
	return nil
}

func validateRosterConfig(c RosterConfig) error {
	if c.SheetURL == "" {
		return fmt.Errorf("roster config %s: missing sheet_url", c.ID)
	}
	if c.SheetName == "" {
		return fmt.Errorf("roster config %s: missing sheet_name", c.ID)
	}
	if c.Columns.Name == "" || c.Columns.Secret == "" {
		return fmt.Errorf("roster config %s: missing name/secret column mapping", c.ID)
	}
	return nil
}

func validateImportConfig(c ProposalImportConfig) error {
	if c.SheetURL == "" {
		return fmt.Errorf("import config %s: missing sheet_url", c.ID)
	}
	if c.SheetName == "" {
		return fmt.Errorf("import config %s: missing sheet_name", c.ID)
	}
	if c.Columns.Title == "" || c.Columns.Axis == "" {
		return fmt.Errorf("import config %s: missing title/axis column mapping", c.ID)
	}
	return nil
}

func validateVoterAccount(a VoterAccount) error {
	if a.DisplayName == "" {
		return fmt.Errorf("voter account %s: missing display_name", a.ID)
	}
	if a.Secret == "" {
		return fmt.Errorf("voter account %s: missing secret", a.ID)
	}
	return nil
}

func validateAdminAccount(a AdminAccount) error {
	if a.Username == "" {
		return fmt.Errorf("admin account %s: missing username", a.ID)
	}
	if a.SecretHash == "" {
		return fmt.Errorf("admin account %s: missing secret_hash", a.ID)
	}
	return nil
}

func validateClassificationRule(r ClassificationRule) error {
	if r.Label == "" {
		return fmt.Errorf("classification rule %s: missing label", r.ID)
	}
	switch r.Action {
	case ActionNone, ActionPromoteToFinal:
	default:
		return fmt.Errorf("classification rule %s: invalid action %q", r.ID, r.Action)
	}
	if r.MinPercent < 0 || r.MaxPercent > 100 || r.MinPercent > r.MaxPercent {
		return fmt.Errorf("classification rule %s: invalid percent range [%v, %v]", r.ID, r.MinPercent, r.MaxPercent)
	}
	return nil
}
