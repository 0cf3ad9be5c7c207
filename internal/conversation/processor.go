package conversation

import (
	"context"
	"fmt"

	"github.com/calder-ai/lead-qualification-platform/internal/dedup"
	"github.com/calder-ai/lead-qualification-platform/internal/leads"
	"github.com/calder-ai/lead-qualification-platform/internal/notify"
	"github.com/calder-ai/lead-qualification-platform/internal/observability/metrics"
	"github.com/calder-ai/lead-qualification-platform/pkg/logging"
)

// ProcessResult reports the outcome of one lead-processing attempt. Message
// is always human-readable; it goes back to the model as the tool result and
// into the log, never a raw error.
type ProcessResult struct {
	// Processed is true when this attempt performed the store and route.
	Processed bool
	// Suppressed is true when the dedup guard absorbed a duplicate.
	Suppressed bool
	Message    string
}

// LeadProcessor is the single convergence point for lead side effects. The
// explicit tool calls and the handoff safety net both land here, so the
// dedup check, the store, and the route happen in exactly one place.
type LeadProcessor struct {
	repo    leads.Repository
	router  *notify.Service
	guard   dedup.Guard
	logger  *logging.Logger
	metrics *metrics.ConversationMetrics
}

// NewLeadProcessor wires the processing pipeline.
func NewLeadProcessor(repo leads.Repository, router *notify.Service, guard dedup.Guard, logger *logging.Logger, m *metrics.ConversationMetrics) *LeadProcessor {
	if repo == nil {
		panic("conversation: leads repository cannot be nil")
	}
	if guard == nil {
		panic("conversation: dedup guard cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &LeadProcessor{
		repo:    repo,
		router:  router,
		guard:   guard,
		logger:  logger,
		metrics: m,
	}
}

// Process stores and routes one lead behind the dedup guard.
//
// forced marks the handoff safety-net path: tool-contract validation is
// skipped because the record was reconstructed by the extractor, but the
// null-content guard still applies so an empty record is never persisted.
// The guard records intent before the store runs; a downstream failure does
// not release the key, so a flaky store cannot cause a duplicate route.
func (p *LeadProcessor) Process(ctx context.Context, req leads.CreateLeadRequest, forced bool) ProcessResult {
	req.Normalize()

	trigger := "tool"
	if forced {
		trigger = "handoff"
	}

	if forced {
		if !req.LeadType.Valid() {
			return ProcessResult{Message: fmt.Sprintf("Error: Invalid lead type '%s'. Must be enterprise, smb, or individual.", req.LeadType)}
		}
		if !req.HasContent() {
			p.logger.Warn("lead skipped: no recoverable content", "trigger", trigger)
			return ProcessResult{Message: "Lead skipped: no contact details could be recovered from the conversation."}
		}
	} else if err := req.Validate(); err != nil {
		return ProcessResult{Message: fmt.Sprintf("Error: %v", err)}
	}

	key := req.Key()
	ok, err := p.guard.ShouldProcess(ctx, key)
	if err != nil {
		p.logger.Error("dedup guard check failed", "error", err, "trigger", trigger)
		return ProcessResult{Message: fmt.Sprintf("Failed to process lead for %s: deduplication check unavailable", req.Name)}
	}
	if !ok {
		p.logger.Info("duplicate lead suppressed", "name", req.Name, "trigger", trigger)
		p.metrics.ObserveDedupSuppressed()
		return ProcessResult{
			Suppressed: true,
			Message:    fmt.Sprintf("Lead for %s was already processed recently; no action taken.", req.Name),
		}
	}

	lead, err := p.repo.Create(ctx, &req)
	if err != nil {
		p.logger.Error("failed to store lead", "error", err, "name", req.Name, "trigger", trigger)
		return ProcessResult{Message: fmt.Sprintf("Failed to store %s lead '%s': %v", req.LeadType, req.Name, err)}
	}
	p.logger.Info("lead stored", "lead_id", lead.ID, "lead_type", lead.LeadType, "trigger", trigger)

	if p.router == nil || !p.router.Enabled() {
		p.logger.Warn("lead stored but routing is not configured", "lead_id", lead.ID)
		return ProcessResult{
			Processed: true,
			Message:   fmt.Sprintf("Lead for %s stored successfully; notification routing is not configured.", lead.Name),
		}
	}

	if err := p.router.RouteLead(ctx, lead); err != nil {
		p.logger.Error("failed to route lead", "error", err, "lead_id", lead.ID, "trigger", trigger)
		return ProcessResult{
			Processed: true,
			Message:   fmt.Sprintf("Lead for %s stored, but routing to the %s team failed: %v", lead.Name, lead.LeadType, err),
		}
	}

	p.metrics.ObserveLeadProcessed(string(lead.LeadType), trigger)
	p.logger.Info("lead routed", "lead_id", lead.ID, "lead_type", lead.LeadType, "trigger", trigger)
	return ProcessResult{
		Processed: true,
		Message:   fmt.Sprintf("Lead for %s stored and routed to the %s team.", lead.Name, lead.LeadType),
	}
}
