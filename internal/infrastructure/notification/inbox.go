package notification

import (
	"context"
	"time"

	appconn "github.com/carbonlink/backend/internal/application/connection"
	"github.com/carbonlink/backend/internal/domain/company"
	"github.com/carbonlink/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InboxNotifier stores connection notifications in the in-app inbox
type InboxNotifier struct {
	db *gorm.DB
}

// NewInboxNotifier creates a new InboxNotifier
func NewInboxNotifier(db *gorm.DB) *InboxNotifier {
	return &InboxNotifier{db: db}
}

// NotifyConnectionRequested adds a request to the recipient's inbox
func (n *InboxNotifier) NotifyConnectionRequested(ctx context.Context, req appconn.ConnectionRequestNotification) error {
	return n.store(ctx, req.Recipient, RequestMessage(req))
}

// NotifyStatusChanged adds an answer to the recipient's inbox
func (n *InboxNotifier) NotifyStatusChanged(ctx context.Context, change appconn.StatusChangeNotification) error {
	return n.store(ctx, change.Recipient, StatusMessage(change))
}

func (n *InboxNotifier) store(ctx context.Context, recipient company.Member, msg Message) error {
	return n.db.WithContext(ctx).Create(&models.NotificationModel{
		ID:        uuid.New(),
		UserID:    recipient.UserID,
		CompanyID: recipient.CompanyID,
		Kind:      msg.Kind,
		Title:     msg.Title,
		Body:      msg.Body,
		CreatedAt: time.Now(),
	}).Error
}

// Unread returns the unread inbox entries of a user, newest first
func (n *InboxNotifier) Unread(ctx context.Context, userID uuid.UUID) ([]models.NotificationModel, error) {
	var rows []models.NotificationModel
	err := n.db.WithContext(ctx).
		Where("user_id = ? AND read_at IS NULL", userID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// MarkRead marks one entry of the user as read
func (n *InboxNotifier) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	return n.db.WithContext(ctx).
		Model(&models.NotificationModel{}).
		Where("id = ? AND user_id = ? AND read_at IS NULL", id, userID).
		Update("read_at", time.Now()).Error
}

var _ appconn.Notifier = (*InboxNotifier)(nil)
