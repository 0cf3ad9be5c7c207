package conversation

import (
	"encoding/json"
	"fmt"

	"github.com/calder-ai/lead-qualification-platform/internal/leads"
)

// Tool names the model is allowed to request. Anything else is rejected as a
// validation error rather than dispatched by name.
const (
	ToolRouteLead = "route_lead_to_email"
	ToolStoreLead = "store_lead_in_database"
	ToolSendEmail = "send_email"
)

// ToolKind is the closed set of executable tool variants.
type ToolKind int

const (
	ToolKindRoute ToolKind = iota
	ToolKindStore
	ToolKindSend
)

// leadToolArgs is the argument payload shared by the route and store tools.
type leadToolArgs struct {
	LeadType string `json:"lead_type"`
	LeadName string `json:"lead_name"`
	Company  string `json:"company"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Details  string `json:"details"`
	Priority string `json:"priority"`
}

// sendEmailArgs is the argument payload for the send_email tool.
type sendEmailArgs struct {
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	CC      string `json:"cc"`
}

// ToolCall is a parsed, typed tool invocation.
type ToolCall struct {
	Kind ToolKind
	Lead leads.CreateLeadRequest
	Send sendEmailArgs
}

// parseToolCall turns a raw model tool request into a typed call. A non-empty
// second return is the validation error string handed back to the model; the
// call must not be executed in that case.
func parseToolCall(req ToolRequest) (ToolCall, string) {
	switch req.Name {
	case ToolRouteLead, ToolStoreLead:
		var args leadToolArgs
		if len(req.Args) > 0 {
			if err := json.Unmarshal(req.Args, &args); err != nil {
				return ToolCall{}, fmt.Sprintf("Error: Malformed arguments for %s: %v", req.Name, err)
			}
		}
		kind := ToolKindRoute
		noun := "routing"
		if req.Name == ToolStoreLead {
			kind = ToolKindStore
			noun = "storage"
		}
		if args.LeadName == "" || args.LeadType == "" {
			return ToolCall{}, fmt.Sprintf("Error: Lead name and type are required for %s.", noun)
		}
		if !leads.LeadType(args.LeadType).Valid() {
			return ToolCall{}, fmt.Sprintf("Error: Invalid lead type '%s'. Must be enterprise, smb, or individual.", args.LeadType)
		}
		call := ToolCall{
			Kind: kind,
			Lead: leads.CreateLeadRequest{
				LeadType: leads.LeadType(args.LeadType),
				Name:     args.LeadName,
				Company:  args.Company,
				Email:    args.Email,
				Phone:    args.Phone,
				Details:  args.Details,
				Priority: leads.Priority(args.Priority),
			},
		}
		call.Lead.Normalize()
		if !call.Lead.Priority.Valid() {
			call.Lead.Priority = leads.PriorityNormal
		}
		return call, ""

	case ToolSendEmail:
		var args sendEmailArgs
		if len(req.Args) > 0 {
			if err := json.Unmarshal(req.Args, &args); err != nil {
				return ToolCall{}, fmt.Sprintf("Error: Malformed arguments for %s: %v", req.Name, err)
			}
		}
		if args.ToEmail == "" {
			return ToolCall{}, "Error: Recipient email is required to send email."
		}
		return ToolCall{Kind: ToolKindSend, Send: args}, ""

	default:
		return ToolCall{}, fmt.Sprintf("Error: Unknown tool '%s'.", req.Name)
	}
}
