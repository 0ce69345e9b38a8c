package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Plenary Voting API",
        "description": "Event-log backed voting service for plenary assemblies",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Authentication", "description": "Voter and admin sessions"},
        {"name": "State", "description": "Projected voting state"},
        {"name": "Voting", "description": "Ballots and round lifecycle"},
        {"name": "Proposals", "description": "Proposal registry and import"},
        {"name": "Users", "description": "Voter and admin provisioning"},
        {"name": "Configuration", "description": "External source configuration"},
        {"name": "Classification", "description": "Percentage rule engine"},
        {"name": "Reports", "description": "Monitoring and exports"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate voter",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/VoterLoginRequest"}}],
                "responses": {
                    "200": {"description": "Session token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid access code"}
                }
            }
        },
        "/auth/admin/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate administrator",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AdminLoginRequest"}}],
                "responses": {
                    "200": {"description": "Session token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current session claims",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Session claims"},
                    "401": {"description": "Missing or invalid session"}
                }
            }
        },
        "/state": {
            "get": {
                "tags": ["State"],
                "summary": "Current voting state",
                "description": "Session claims, when present, personalise has_voted and eligible.",
                "responses": {
                    "200": {"description": "Voting screen state", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/state/results": {
            "get": {
                "tags": ["State"],
                "summary": "Voted proposal outcomes",
                "responses": {
                    "200": {"description": "Closed proposals with tallies, sorted by axis then title"}
                }
            }
        },
        "/votes": {
            "post": {
                "tags": ["Voting"],
                "summary": "Cast a ballot",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CastVoteRequest"}},
                    {"name": "X-Device-Token", "in": "header", "required": false, "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Ballot recorded"},
                    "403": {"description": "Not eligible"},
                    "409": {"description": "Voting closed, no active proposal, or already voted"}
                }
            }
        },
        "/voting/start": {
            "post": {
                "tags": ["Voting"],
                "summary": "Start a voting round",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Round opened"}, "409": {"description": "Round already running or closed"}}
            }
        },
        "/voting/end": {
            "post": {
                "tags": ["Voting"],
                "summary": "End the voting round",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Round closed and tallied"}, "409": {"description": "No round running"}}
            }
        },
        "/voting/new": {
            "post": {
                "tags": ["Voting"],
                "summary": "Prepare a new voting round",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Session reset"}, "409": {"description": "Round in progress"}}
            }
        },
        "/voting/select": {
            "post": {
                "tags": ["Voting"],
                "summary": "Select the active proposal",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SelectProposalRequest"}}],
                "responses": {"200": {"description": "Proposal selected"}, "404": {"description": "Unknown proposal"}, "409": {"description": "Proposal already voted"}}
            }
        },
        "/voting/phase": {
            "post": {
                "tags": ["Voting"],
                "summary": "Change the voting phase",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChangePhaseRequest"}}],
                "responses": {"200": {"description": "Phase changed"}}
            }
        },
        "/voting/proposals/{id}/reset-votes": {
            "post": {
                "tags": ["Voting"],
                "summary": "Reset a proposal's ballots",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Ballots removed"}, "409": {"description": "Round in progress on this proposal"}}
            }
        },
        "/proposals": {
            "get": {
                "tags": ["Proposals"],
                "summary": "List proposals",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Proposals sorted by axis then title"}}
            },
            "post": {
                "tags": ["Proposals"],
                "summary": "Register a proposal",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ProposalRequest"}}],
                "responses": {"201": {"description": "Proposal registered"}}
            }
        },
        "/proposals/import": {
            "post": {
                "tags": ["Proposals"],
                "summary": "Import proposals from the configured spreadsheet",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Import summary"}, "502": {"description": "Spreadsheet unreachable"}}
            }
        },
        "/proposals/{id}": {
            "get": {
                "tags": ["Proposals"],
                "summary": "Get a proposal",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Proposal"}, "404": {"description": "Unknown proposal"}}
            },
            "put": {
                "tags": ["Proposals"],
                "summary": "Update a proposal",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ProposalRequest"}}
                ],
                "responses": {"200": {"description": "Proposal updated"}, "404": {"description": "Unknown proposal"}}
            },
            "delete": {
                "tags": ["Proposals"],
                "summary": "Delete a proposal",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Proposal deleted"}, "409": {"description": "Proposal is being voted"}}
            }
        },
        "/users/voters": {
            "get": {
                "tags": ["Users"],
                "summary": "List provisioned voters",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Voter accounts"}}
            },
            "post": {
                "tags": ["Users"],
                "summary": "Provision a voter",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/VoterAccountRequest"}}],
                "responses": {"201": {"description": "Voter provisioned"}, "409": {"description": "Duplicate secret"}}
            }
        },
        "/users/admins": {
            "get": {
                "tags": ["Users"],
                "summary": "List admin accounts",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Admin accounts, hashes redacted"}}
            },
            "post": {
                "tags": ["Users"],
                "summary": "Provision an administrator",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AdminAccountRequest"}}],
                "responses": {"201": {"description": "Admin provisioned"}, "409": {"description": "Duplicate username"}}
            }
        },
        "/config/roster": {
            "get": {
                "tags": ["Configuration"],
                "summary": "Get voter roster source",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Roster source"}, "404": {"description": "Not configured"}}
            },
            "put": {
                "tags": ["Configuration"],
                "summary": "Save voter roster source",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Roster source saved"}}
            }
        },
        "/config/proposal-import": {
            "get": {
                "tags": ["Configuration"],
                "summary": "Get proposal import source",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Import source"}, "404": {"description": "Not configured"}}
            },
            "put": {
                "tags": ["Configuration"],
                "summary": "Save proposal import source",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Import source saved"}}
            }
        },
        "/classification/rules": {
            "get": {
                "tags": ["Classification"],
                "summary": "List classification rules",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Rules in evaluation order"}}
            },
            "post": {
                "tags": ["Classification"],
                "summary": "Create a classification rule",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ClassificationRuleRequest"}}],
                "responses": {"201": {"description": "Rule created"}}
            }
        },
        "/classification/apply": {
            "post": {
                "tags": ["Classification"],
                "summary": "Apply classification rules to voted proposals",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Apply summary"}}
            }
        },
        "/reports/monitoring": {
            "get": {
                "tags": ["Reports"],
                "summary": "Monitoring summary",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Outcome aggregates overall and per axis"}}
            }
        },
        "/reports/proposals.csv": {
            "get": {
                "tags": ["Reports"],
                "summary": "Export proposals as CSV",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv"],
                "responses": {"200": {"description": "CSV document"}}
            }
        },
        "/reports/votes.pdf": {
            "get": {
                "tags": ["Reports"],
                "summary": "Export ballots as PDF",
                "security": [{"BearerAuth": []}],
                "produces": ["application/pdf"],
                "responses": {"200": {"description": "PDF document"}}
            }
        }
    },
    "definitions": {
        "VoterLoginRequest": {
            "type": "object",
            "required": ["secret"],
            "properties": {"secret": {"type": "string"}}
        },
        "AdminLoginRequest": {
            "type": "object",
            "required": ["secret"],
            "properties": {
                "username": {"type": "string"},
                "secret": {"type": "string"}
            }
        },
        "CastVoteRequest": {
            "type": "object",
            "required": ["choice"],
            "properties": {
                "choice": {"type": "string", "enum": ["YES", "NO", "ABSTAIN"]},
                "device_token": {"type": "string"}
            }
        },
        "SelectProposalRequest": {
            "type": "object",
            "required": ["proposal_id"],
            "properties": {"proposal_id": {"type": "string"}}
        },
        "ChangePhaseRequest": {
            "type": "object",
            "required": ["phase"],
            "properties": {"phase": {"type": "string", "enum": ["AXES", "FINAL"]}}
        },
        "ProposalRequest": {
            "type": "object",
            "required": ["title", "axis", "scope", "region", "municipality", "description"],
            "properties": {
                "title": {"type": "string"},
                "axis": {"type": "string"},
                "scope": {"type": "string"},
                "region": {"type": "string"},
                "municipality": {"type": "string"},
                "description": {"type": "string"}
            }
        },
        "VoterAccountRequest": {
            "type": "object",
            "required": ["display_name", "secret"],
            "properties": {
                "display_name": {"type": "string"},
                "secret": {"type": "string"},
                "segment": {"type": "string"},
                "representative": {"type": "string"},
                "axis": {"type": "string"}
            }
        },
        "AdminAccountRequest": {
            "type": "object",
            "required": ["username", "secret"],
            "properties": {
                "username": {"type": "string"},
                "secret": {"type": "string"},
                "permissions": {"type": "object"}
            }
        },
        "ClassificationRuleRequest": {
            "type": "object",
            "required": ["label", "action", "color"],
            "properties": {
                "min_percent": {"type": "number"},
                "max_percent": {"type": "number"},
                "label": {"type": "string"},
                "action": {"type": "string", "enum": ["none", "promote_to_final"]},
                "color": {"type": "string"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
