package connection

// Direction describes who sent a request relative to the relationship roles
type Direction string

const (
	DirectionCustomerToSupplier Direction = "CustomerToSupplier"
	DirectionSupplierToCustomer Direction = "SupplierToCustomer"
)

// DirectionFrom returns the direction of a message sent by side
func DirectionFrom(side ActingSide) Direction {
	if side == SideCustomer {
		return DirectionCustomerToSupplier
	}
	return DirectionSupplierToCustomer
}

// NotificationKind is the notification variant for a status change
type NotificationKind string

const (
	NotificationApproved  NotificationKind = "approved"
	NotificationRejected  NotificationKind = "rejected"
	NotificationReinvited NotificationKind = "reinvited"
)

// NotificationKindFor returns the notification variant for a (previous, next)
// status pair. The second result is false when the pair needs no notification.
func NotificationKindFor(previous, next RelationshipStatus) (NotificationKind, bool) {
	if previous == next {
		return "", false
	}
	switch {
	case next == StatusApproved:
		return NotificationApproved, true
	case next.IsRejected():
		return NotificationRejected, true
	case next.IsPending() && previous.IsRejected():
		return NotificationReinvited, true
	}
	return "", false
}
