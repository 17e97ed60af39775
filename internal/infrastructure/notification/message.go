// Package notification delivers connection notifications through the legacy
// mail pipeline or the in-app inbox.
package notification

import (
	"fmt"

	appconn "github.com/carbonlink/backend/internal/application/connection"
	"github.com/carbonlink/backend/internal/domain/connection"
)

// Kind values stored with each delivered notification
const (
	KindConnectionRequested = "connection.requested"
	KindConnectionApproved  = "connection.approved"
	KindConnectionRejected  = "connection.rejected"
	KindConnectionReinvited = "connection.reinvited"
)

// Message is the rendered content of one notification
type Message struct {
	Kind  string
	Title string
	Body  string
}

func senderName(name string) string {
	if name == "" {
		return "A company"
	}
	return name
}

// roleOfSender names the role the sender plays in the relationship
func roleOfSender(d connection.Direction) string {
	if d == connection.DirectionCustomerToSupplier {
		return "customer"
	}
	return "supplier"
}

// RequestMessage renders a connection request
func RequestMessage(n appconn.ConnectionRequestNotification) Message {
	sender := senderName(n.SenderCompanyName)
	body := fmt.Sprintf("%s would like to add you as their %s.", sender, otherRole(n.Direction))
	if n.Note != "" {
		body += "\n\n" + n.Note
	}
	return Message{
		Kind:  KindConnectionRequested,
		Title: fmt.Sprintf("%s sent you a connection request", sender),
		Body:  body,
	}
}

// StatusMessage renders an answer to a connection request
func StatusMessage(n appconn.StatusChangeNotification) Message {
	sender := senderName(n.SenderCompanyName)
	switch n.Kind {
	case connection.NotificationApproved:
		return Message{
			Kind:  KindConnectionApproved,
			Title: fmt.Sprintf("%s accepted your connection request", sender),
			Body:  fmt.Sprintf("You are now connected with %s as their %s.", sender, otherRole(n.Direction)),
		}
	case connection.NotificationRejected:
		return Message{
			Kind:  KindConnectionRejected,
			Title: fmt.Sprintf("%s declined your connection request", sender),
			Body:  fmt.Sprintf("%s declined to connect as your %s.", sender, roleOfSender(n.Direction)),
		}
	default:
		return Message{
			Kind:  KindConnectionReinvited,
			Title: fmt.Sprintf("%s sent you a connection request again", sender),
			Body:  fmt.Sprintf("%s would like to reconsider connecting as your %s.", sender, roleOfSender(n.Direction)),
		}
	}
}

// otherRole names the role the recipient plays in the relationship
func otherRole(d connection.Direction) string {
	if d == connection.DirectionCustomerToSupplier {
		return "supplier"
	}
	return "customer"
}
