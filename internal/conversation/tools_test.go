package conversation

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/calder-ai/lead-qualification-platform/internal/leads"
)

func rawArgs(t *testing.T, fields map[string]string) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(fields)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return raw
}

func TestParseToolCallStore(t *testing.T) {
	call, errStr := parseToolCall(ToolRequest{
		Name: ToolStoreLead,
		Args: rawArgs(t, map[string]string{
			"lead_type": "enterprise",
			"lead_name": "Sarah",
			"company":   "Acme Corp",
			"email":     "sarah@acme.com",
			"priority":  "high",
		}),
	})
	if errStr != "" {
		t.Fatalf("unexpected validation error %q", errStr)
	}
	if call.Kind != ToolKindStore {
		t.Errorf("expected store kind, got %d", call.Kind)
	}
	if call.Lead.LeadType != leads.LeadTypeEnterprise || call.Lead.Name != "Sarah" {
		t.Errorf("unexpected lead %+v", call.Lead)
	}
	if call.Lead.Priority != leads.PriorityHigh {
		t.Errorf("priority should pass through, got %q", call.Lead.Priority)
	}
}

func TestParseToolCallMissingFields(t *testing.T) {
	cases := []struct {
		name string
		tool string
		args map[string]string
		want string
	}{
		{
			name: "route missing name",
			tool: ToolRouteLead,
			args: map[string]string{"lead_type": "smb"},
			want: "Error: Lead name and type are required for routing.",
		},
		{
			name: "store missing type",
			tool: ToolStoreLead,
			args: map[string]string{"lead_name": "Sarah"},
			want: "Error: Lead name and type are required for storage.",
		},
		{
			name: "invalid type",
			tool: ToolStoreLead,
			args: map[string]string{"lead_type": "partner", "lead_name": "Sarah"},
			want: "Error: Invalid lead type 'partner'. Must be enterprise, smb, or individual.",
		},
		{
			name: "send without recipient",
			tool: ToolSendEmail,
			args: map[string]string{"subject": "hi"},
			want: "Error: Recipient email is required to send email.",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, errStr := parseToolCall(ToolRequest{Name: tc.tool, Args: rawArgs(t, tc.args)})
			if errStr != tc.want {
				t.Errorf("got %q, want %q", errStr, tc.want)
			}
		})
	}
}

func TestParseToolCallUnknownTool(t *testing.T) {
	_, errStr := parseToolCall(ToolRequest{Name: "delete_all_leads"})
	if errStr != "Error: Unknown tool 'delete_all_leads'." {
		t.Errorf("got %q", errStr)
	}
}

func TestParseToolCallMalformedArgs(t *testing.T) {
	_, errStr := parseToolCall(ToolRequest{Name: ToolStoreLead, Args: json.RawMessage(`{"lead_type":`)})
	if !strings.HasPrefix(errStr, "Error: Malformed arguments for store_lead_in_database") {
		t.Errorf("got %q", errStr)
	}
}

func TestParseToolCallUnknownPriorityDefaults(t *testing.T) {
	call, errStr := parseToolCall(ToolRequest{
		Name: ToolRouteLead,
		Args: rawArgs(t, map[string]string{
			"lead_type": "individual",
			"lead_name": "Pat",
			"priority":  "asap",
		}),
	})
	if errStr != "" {
		t.Fatalf("unexpected validation error %q", errStr)
	}
	if call.Lead.Priority != leads.PriorityNormal {
		t.Errorf("unknown priority should default to normal, got %q", call.Lead.Priority)
	}
}
