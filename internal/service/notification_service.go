package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medops-hub/workorder-service/internal/config"
	"github.com/medops-hub/workorder-service/internal/domain"
	"github.com/medops-hub/workorder-service/internal/events"
	"github.com/medops-hub/workorder-service/internal/workflow"
)

// RecipientKind says how a recipient id is resolved by the delivery channel.
type RecipientKind string

const (
	RecipientRole RecipientKind = "role"
	RecipientTeam RecipientKind = "team"
	RecipientUser RecipientKind = "user"
)

// Recipient is one audience of a notification.
type Recipient struct {
	Kind RecipientKind `json:"kind"`
	ID   string        `json:"id"`
}

// Notification is a role-targeted message about a work order.
type Notification struct {
	ID          string                 `json:"id"`
	EventType   events.EventType       `json:"event_type"`
	WorkOrderID string                 `json:"work_order_id"`
	Code        string                 `json:"code"`
	Status      domain.WorkOrderStatus `json:"status"`
	Title       string                 `json:"title"`
	Body        string                 `json:"body"`
	Recipients  []Recipient            `json:"recipients"`
	CreatedAt   time.Time              `json:"created_at"`
}

// Sink delivers notifications over one channel.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, n Notification) error
}

// NotificationService turns workflow events into notifications and fans them out to sinks.
type NotificationService struct {
	sinks  []Sink
	logger *zap.Logger
	Now    func() time.Time
}

// NewNotificationService creates the service.
func NewNotificationService(logger *zap.Logger, sinks ...Sink) *NotificationService {
	return &NotificationService{
		sinks:  sinks,
		logger: logger,
		Now:    time.Now,
	}
}

// Handle builds the notification for event and delivers it. Delivery is best
// effort: sink failures are logged and never returned.
func (n *NotificationService) Handle(ctx context.Context, event events.Event) error {
	note, ok := n.Build(event)
	if !ok {
		return nil
	}
	for _, sink := range n.sinks {
		if err := sink.Deliver(ctx, note); err != nil {
			n.logger.Warn("notification delivery failed",
				zap.String("sink", sink.Name()),
				zap.String("work_order_id", note.WorkOrderID),
				zap.String("status", string(note.Status)),
				zap.Error(err))
		}
	}
	return nil
}

// Build resolves recipients for event. It reports false when nobody needs to hear about it.
func (n *NotificationService) Build(event events.Event) (Notification, bool) {
	note := Notification{
		ID:          uuid.NewString(),
		EventType:   event.Type,
		WorkOrderID: event.WorkOrderID,
		CreatedAt:   n.Now().UTC(),
	}
	switch p := event.Payload.(type) {
	case events.WorkOrderReportedPayload:
		note.Code = p.Code
		note.Status = domain.StatusPending
		note.Title = fmt.Sprintf("New work order %s", p.Code)
		note.Body = fmt.Sprintf("%s (%s, %s priority) is waiting to be assigned.", p.Title, p.Urgency, p.Priority)
		note.Recipients = roles(domain.RoleSupervisor)
	case events.WorkOrderTransitionedPayload:
		note.Code = p.Code
		note.Status = p.To
		note.Title = fmt.Sprintf("%s is now %s", p.Code, workflow.DisplayName(p.To, workflow.DefaultLocale))
		note.Body = transitionBody(p)
		note.Recipients = transitionRecipients(p)
	default:
		return Notification{}, false
	}
	return note, len(note.Recipients) > 0
}

func transitionBody(p events.WorkOrderTransitionedPayload) string {
	body := fmt.Sprintf("%s moved from %s to %s.", p.Title,
		workflow.DisplayName(p.From, workflow.DefaultLocale),
		workflow.DisplayName(p.To, workflow.DefaultLocale))
	if p.Reason != "" {
		body += " Reason: " + p.Reason
	}
	return body
}

func transitionRecipients(p events.WorkOrderTransitionedPayload) []Recipient {
	reporter := Recipient{Kind: RecipientUser, ID: p.ReportedBy}
	switch {
	case p.To == domain.StatusAssigned:
		if p.AssignedTeam == nil {
			return nil
		}
		return []Recipient{{Kind: RecipientTeam, ID: *p.AssignedTeam}}
	case p.To == domain.StatusPendingSupervisorApproval:
		return roles(domain.RoleSupervisor)
	case p.To == domain.StatusPendingEngineerReview:
		return roles(domain.RoleEngineer)
	case p.To == domain.StatusPendingReporterClosure,
		p.To == domain.StatusAutoClosed,
		p.To == domain.StatusCompleted,
		p.To == domain.StatusCancelled:
		return []Recipient{reporter}
	case p.To == domain.StatusCustomerApproved:
		return roles(domain.RoleMaintenanceManager)
	case p.To.Rejected():
		out := roles(domain.RoleSupervisor, domain.RoleMaintenanceManager)
		if p.To != domain.StatusCustomerRejected {
			out = append([]Recipient{reporter}, out...)
		}
		return out
	case p.To == domain.StatusNeedsRedirection:
		return roles(domain.RoleSupervisor, domain.RoleMaintenanceManager)
	}
	return nil
}

func roles(rs ...domain.Role) []Recipient {
	out := make([]Recipient, 0, len(rs))
	for _, r := range rs {
		out = append(out, Recipient{Kind: RecipientRole, ID: r.String()})
	}
	return out
}

// LogSink is the stub email/webhook channel: it records what would be sent.
type LogSink struct {
	name   string
	target string
	logger *zap.Logger
}

// NewEmailSink returns a stub email channel, or nil when no sender is configured.
func NewEmailSink(cfg config.NotificationConfig, logger *zap.Logger) Sink {
	if strings.TrimSpace(cfg.EmailFrom) == "" {
		return nil
	}
	return &LogSink{name: "email", target: cfg.EmailFrom, logger: logger}
}

// NewWebhookSink returns a stub webhook channel, or nil when no URL is configured.
func NewWebhookSink(cfg config.NotificationConfig, logger *zap.Logger) Sink {
	if strings.TrimSpace(cfg.WebhookURL) == "" {
		return nil
	}
	return &LogSink{name: "webhook", target: cfg.WebhookURL, logger: logger}
}

func (s *LogSink) Name() string { return s.name }

func (s *LogSink) Deliver(_ context.Context, n Notification) error {
	s.logger.Debug("notification stub",
		zap.String("sink", s.name),
		zap.String("target", s.target),
		zap.String("work_order_id", n.WorkOrderID),
		zap.String("status", string(n.Status)),
		zap.Any("recipients", n.Recipients))
	return nil
}

// Publisher is the transport behind KafkaSink.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, value []byte) error
}

// KafkaSink publishes notifications as JSON to a topic keyed by work order.
type KafkaSink struct {
	publisher Publisher
	topic     string
}

// NewKafkaSink builds the sink.
func NewKafkaSink(publisher Publisher, topic string) *KafkaSink {
	return &KafkaSink{publisher: publisher, topic: topic}
}

func (s *KafkaSink) Name() string { return "kafka" }

func (s *KafkaSink) Deliver(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	return s.publisher.Publish(ctx, s.topic, n.WorkOrderID, payload)
}

// Sinks drops nil entries so optional channels can be passed unconditionally.
func Sinks(candidates ...Sink) []Sink {
	out := make([]Sink, 0, len(candidates))
	for _, s := range candidates {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}
