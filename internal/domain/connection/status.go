package connection

import "sort"

// RelationshipStatus is the negotiation state of a company relationship
type RelationshipStatus string

const (
	StatusAwaitingCustomerApproval RelationshipStatus = "AwaitingCustomerApproval"
	StatusAwaitingSupplierApproval RelationshipStatus = "AwaitingSupplierApproval"
	StatusApproved                 RelationshipStatus = "Approved"
	StatusRejectedByCustomer       RelationshipStatus = "RejectedByCustomer"
	StatusRejectedBySupplier       RelationshipStatus = "RejectedBySupplier"
)

// AllStatuses lists every relationship status
var AllStatuses = []RelationshipStatus{
	StatusAwaitingCustomerApproval,
	StatusAwaitingSupplierApproval,
	StatusApproved,
	StatusRejectedByCustomer,
	StatusRejectedBySupplier,
}

// IsValid checks if the status is a known value
func (s RelationshipStatus) IsValid() bool {
	switch s {
	case StatusAwaitingCustomerApproval, StatusAwaitingSupplierApproval, StatusApproved,
		StatusRejectedByCustomer, StatusRejectedBySupplier:
		return true
	}
	return false
}

// IsPending reports whether one side still has to approve
func (s RelationshipStatus) IsPending() bool {
	return s == StatusAwaitingCustomerApproval || s == StatusAwaitingSupplierApproval
}

// IsRejected reports whether either side rejected the relationship
func (s RelationshipStatus) IsRejected() bool {
	return s == StatusRejectedByCustomer || s == StatusRejectedBySupplier
}

// ActingSide is the role of the company performing an action on a relationship
type ActingSide string

const (
	SideCustomer ActingSide = "Customer"
	SideSupplier ActingSide = "Supplier"
)

// Other returns the opposite side
func (s ActingSide) Other() ActingSide {
	if s == SideCustomer {
		return SideSupplier
	}
	return SideCustomer
}

// AwaitingApprovalOf returns the pending status waiting on the given side
func AwaitingApprovalOf(side ActingSide) RelationshipStatus {
	if side == SideCustomer {
		return StatusAwaitingCustomerApproval
	}
	return StatusAwaitingSupplierApproval
}

// RejectedBy returns the rejected status attributed to the given side
func RejectedBy(side ActingSide) RelationshipStatus {
	if side == SideCustomer {
		return StatusRejectedByCustomer
	}
	return StatusRejectedBySupplier
}

// InviteType records which side initiated the relationship
type InviteType string

const (
	InviteCustomerInvitesSupplier InviteType = "CustomerInvitesSupplier"
	InviteSupplierInvitesCustomer InviteType = "SupplierInvitesCustomer"
)

// IsValid checks if the invite type is a known value
func (t InviteType) IsValid() bool {
	return t == InviteCustomerInvitesSupplier || t == InviteSupplierInvitesCustomer
}

// InitiatingSide returns the side that sends the invite
func (t InviteType) InitiatingSide() ActingSide {
	if t == InviteCustomerInvitesSupplier {
		return SideCustomer
	}
	return SideSupplier
}

// ActingSideStatus pairs a current status with the side acting on it
type ActingSideStatus struct {
	Status RelationshipStatus
	Side   ActingSide
}

type statusSet map[RelationshipStatus]struct{}

func setOf(statuses ...RelationshipStatus) statusSet {
	s := make(statusSet, len(statuses))
	for _, status := range statuses {
		s[status] = struct{}{}
	}
	return s
}

// transitions is the complete whitelist of status changes. Pairs absent from
// the map (Approved, or waiting on the other side) allow nothing.
var transitions = map[ActingSideStatus]statusSet{
	{StatusAwaitingCustomerApproval, SideCustomer}: setOf(StatusApproved, StatusRejectedByCustomer),
	{StatusRejectedByCustomer, SideCustomer}:       setOf(StatusApproved),
	{StatusRejectedBySupplier, SideCustomer}:       setOf(StatusAwaitingSupplierApproval),

	{StatusAwaitingSupplierApproval, SideSupplier}: setOf(StatusApproved, StatusRejectedBySupplier),
	{StatusRejectedBySupplier, SideSupplier}:       setOf(StatusApproved),
	{StatusRejectedByCustomer, SideSupplier}:       setOf(StatusAwaitingCustomerApproval),
}

// IsValidTransition reports whether side may move a relationship from current to desired
func IsValidTransition(current, desired RelationshipStatus, side ActingSide) bool {
	allowed, ok := transitions[ActingSideStatus{Status: current, Side: side}]
	if !ok {
		return false
	}
	_, ok = allowed[desired]
	return ok
}

// AllowedTransitions returns the sorted next statuses side may choose from current
func AllowedTransitions(current RelationshipStatus, side ActingSide) []RelationshipStatus {
	allowed := transitions[ActingSideStatus{Status: current, Side: side}]
	result := make([]RelationshipStatus, 0, len(allowed))
	for status := range allowed {
		result = append(result, status)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}
