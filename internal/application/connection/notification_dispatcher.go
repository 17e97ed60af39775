package connection

import (
	"context"
	"errors"
	"fmt"

	"github.com/carbonlink/backend/internal/domain/company"
	"github.com/carbonlink/backend/internal/domain/connection"
	"github.com/carbonlink/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Channel selects how connection notifications are delivered
type Channel string

const (
	// ChannelLegacy sends notification mails
	ChannelLegacy Channel = "legacy"
	// ChannelInbox writes to the in-app inbox
	ChannelInbox Channel = "inbox"
)

// IsValid checks if the channel is a known value
func (c Channel) IsValid() bool {
	return c == ChannelLegacy || c == ChannelInbox
}

// ConnectionRequestNotification tells a user that another company wants to connect
type ConnectionRequestNotification struct {
	Recipient         company.Member
	RelationshipID    uuid.UUID
	SenderCompanyID   uuid.UUID
	SenderCompanyName string
	Direction         connection.Direction
	Note              string
}

// StatusChangeNotification tells a user that the other side answered a request
type StatusChangeNotification struct {
	Recipient         company.Member
	RelationshipID    uuid.UUID
	SenderCompanyID   uuid.UUID
	SenderCompanyName string
	Direction         connection.Direction
	Kind              connection.NotificationKind
	FromStatus        connection.RelationshipStatus
	ToStatus          connection.RelationshipStatus
}

// Notifier delivers connection notifications to a single recipient
type Notifier interface {
	NotifyConnectionRequested(ctx context.Context, n ConnectionRequestNotification) error
	NotifyStatusChanged(ctx context.Context, n StatusChangeNotification) error
}

// NotificationDispatcher turns relationship events into notifications for
// the connection managers of the receiving company
type NotificationDispatcher struct {
	members   company.MemberDirectory
	companies company.CompanyRepository
	notifier  Notifier
	channel   Channel
	logger    *zap.Logger
}

// NewNotificationDispatcher creates a dispatcher that delivers through the
// notifier registered for channel
func NewNotificationDispatcher(
	members company.MemberDirectory,
	companies company.CompanyRepository,
	channel Channel,
	notifiers map[Channel]Notifier,
	logger *zap.Logger,
) (*NotificationDispatcher, error) {
	if !channel.IsValid() {
		return nil, fmt.Errorf("unknown notification channel %q", channel)
	}
	notifier, ok := notifiers[channel]
	if !ok || notifier == nil {
		return nil, fmt.Errorf("no notifier registered for channel %q", channel)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationDispatcher{
		members:   members,
		companies: companies,
		notifier:  notifier,
		channel:   channel,
		logger:    logger,
	}, nil
}

// Channel returns the active delivery channel
func (d *NotificationDispatcher) Channel() Channel {
	return d.channel
}

// EventTypes returns the event types this handler is interested in
func (d *NotificationDispatcher) EventTypes() []string {
	return []string{
		connection.EventTypeRelationshipCreated,
		connection.EventTypeRelationshipStatusChanged,
	}
}

// Handle sends notifications for a relationship event
func (d *NotificationDispatcher) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *connection.RelationshipCreatedEvent:
		return d.handleCreated(ctx, e)
	case *connection.RelationshipStatusChangedEvent:
		return d.handleStatusChanged(ctx, e)
	default:
		d.logger.Error("unexpected event type",
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
}

func (d *NotificationDispatcher) handleCreated(ctx context.Context, e *connection.RelationshipCreatedEvent) error {
	recipients, err := d.recipients(ctx, e.RecipientCompanyID)
	if err != nil || len(recipients) == 0 {
		return err
	}
	senderName := d.companyName(ctx, e.SenderCompanyID)

	var errs []error
	for _, member := range recipients {
		err := d.notifier.NotifyConnectionRequested(ctx, ConnectionRequestNotification{
			Recipient:         member,
			RelationshipID:    e.RelationshipID,
			SenderCompanyID:   e.SenderCompanyID,
			SenderCompanyName: senderName,
			Direction:         e.Direction,
			Note:              e.Note,
		})
		if err != nil {
			d.logger.Warn("failed to send connection request notification",
				zap.String("relationship_id", e.RelationshipID.String()),
				zap.String("user_id", member.UserID.String()),
				zap.String("channel", string(d.channel)),
				zap.Error(err),
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (d *NotificationDispatcher) handleStatusChanged(ctx context.Context, e *connection.RelationshipStatusChangedEvent) error {
	if e.Kind == "" {
		return nil
	}
	recipients, err := d.recipients(ctx, e.RecipientCompanyID)
	if err != nil || len(recipients) == 0 {
		return err
	}
	senderName := d.companyName(ctx, e.SenderCompanyID)

	var errs []error
	for _, member := range recipients {
		err := d.notifier.NotifyStatusChanged(ctx, StatusChangeNotification{
			Recipient:         member,
			RelationshipID:    e.RelationshipID,
			SenderCompanyID:   e.SenderCompanyID,
			SenderCompanyName: senderName,
			Direction:         e.Direction,
			Kind:              e.Kind,
			FromStatus:        e.FromStatus,
			ToStatus:          e.ToStatus,
		})
		if err != nil {
			d.logger.Warn("failed to send status change notification",
				zap.String("relationship_id", e.RelationshipID.String()),
				zap.String("user_id", member.UserID.String()),
				zap.String("kind", string(e.Kind)),
				zap.Error(err),
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (d *NotificationDispatcher) recipients(ctx context.Context, companyID uuid.UUID) ([]company.Member, error) {
	members, err := d.members.FindConnectionManagers(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("resolve recipients for company %s: %w", companyID, err)
	}
	if len(members) == 0 {
		d.logger.Info("no connection managers to notify",
			zap.String("company_id", companyID.String()),
		)
	}
	return members, nil
}

// companyName returns an empty name when the company cannot be loaded
func (d *NotificationDispatcher) companyName(ctx context.Context, companyID uuid.UUID) string {
	c, err := d.companies.FindByID(ctx, companyID)
	if err != nil || c == nil {
		d.logger.Warn("failed to load sender company",
			zap.String("company_id", companyID.String()),
			zap.Error(err),
		)
		return ""
	}
	return c.Name
}
