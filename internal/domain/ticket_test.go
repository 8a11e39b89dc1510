package domain

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to TicketStatus
		want     bool
	}{
		{TicketStatusNew, TicketStatusOpen, true},
		{TicketStatusNew, TicketStatusInProgress, true},
		{TicketStatusNew, TicketStatusClosed, true},
		{TicketStatusNew, TicketStatusResolved, false},
		{TicketStatusOpen, TicketStatusInProgress, true},
		{TicketStatusOpen, TicketStatusPendingCustomer, false},
		{TicketStatusInProgress, TicketStatusPendingCustomer, true},
		{TicketStatusInProgress, TicketStatusResolved, true},
		{TicketStatusPendingCustomer, TicketStatusInProgress, true},
		{TicketStatusPendingCustomer, TicketStatusResolved, true},
		{TicketStatusResolved, TicketStatusClosed, true},
		{TicketStatusResolved, TicketStatusInProgress, true},
		{TicketStatusClosed, TicketStatusOpen, false},
		{TicketStatusClosed, TicketStatusInProgress, false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestReopensOnReply(t *testing.T) {
	tests := []struct {
		status TicketStatus
		want   bool
	}{
		{TicketStatusClosed, true},
		{TicketStatusResolved, true},
		{TicketStatusNew, false},
		{TicketStatusOpen, false},
		{TicketStatusInProgress, false},
		{TicketStatusPendingCustomer, false},
	}
	for _, tt := range tests {
		if got := ReopensOnReply(tt.status); got != tt.want {
			t.Errorf("ReopensOnReply(%s) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestValidStatus(t *testing.T) {
	if !ValidStatus(TicketStatusPendingCustomer) {
		t.Error("PENDING_CUSTOMER should be valid")
	}
	if ValidStatus("ARCHIVED") {
		t.Error("unknown status accepted")
	}
}

func TestValidPriority(t *testing.T) {
	if !ValidPriority(TicketPriorityP1) {
		t.Error("P1 should be valid")
	}
	if ValidPriority("P9") {
		t.Error("unknown priority accepted")
	}
}
