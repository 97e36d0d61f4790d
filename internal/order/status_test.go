package order

import "testing"

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("  Shipped ")
	if err != nil {
		t.Fatalf("ParseStatus: %v", err)
	}
	if s != StatusShipped {
		t.Fatalf("got %q, want %q", s, StatusShipped)
	}
	if _, err := ParseStatus("teleported"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestCanTransitionForwardChain(t *testing.T) {
	chain := []Status{
		StatusPending, StatusConfirmed, StatusProcessing, StatusShipped,
		StatusInTransit, StatusOutForDelivery, StatusDelivered,
	}
	for i := 0; i < len(chain)-1; i++ {
		if !CanTransition(chain[i], chain[i+1]) {
			t.Errorf("%s -> %s should be allowed", chain[i], chain[i+1])
		}
		if CanTransition(chain[i+1], chain[i]) {
			t.Errorf("%s -> %s should be rejected", chain[i+1], chain[i])
		}
	}
}

func TestCanTransitionSkipsForward(t *testing.T) {
	if !CanTransition(StatusPending, StatusShipped) {
		t.Error("pending -> shipped should be allowed")
	}
	if !CanTransition(StatusConfirmed, StatusDelivered) {
		t.Error("confirmed -> delivered should be allowed")
	}
}

func TestCanTransitionTerminalStates(t *testing.T) {
	for _, terminal := range []Status{StatusDelivered, StatusCanceled, StatusReturned} {
		for _, to := range []Status{StatusPending, StatusShipped, StatusCanceled, StatusReturned} {
			if CanTransition(terminal, to) {
				t.Errorf("%s -> %s should be rejected", terminal, to)
			}
		}
	}
}

func TestCanTransitionCancelAndReturn(t *testing.T) {
	for _, from := range []Status{StatusPending, StatusProcessing, StatusOutForDelivery} {
		if !CanTransition(from, StatusCanceled) {
			t.Errorf("%s -> canceled should be allowed", from)
		}
		if !CanTransition(from, StatusReturned) {
			t.Errorf("%s -> returned should be allowed", from)
		}
	}
}

func TestCanTransitionSameStatus(t *testing.T) {
	if CanTransition(StatusShipped, StatusShipped) {
		t.Error("same-status transition should be rejected by the table")
	}
}

func TestTrackingTemplates(t *testing.T) {
	tpl := trackingFor(StatusShipped)
	if tpl.Location != "China" {
		t.Errorf("shipped location = %q, want China", tpl.Location)
	}
	if tpl.Notes != "Your order has been shipped from China." {
		t.Errorf("shipped notes = %q", tpl.Notes)
	}

	tpl = trackingFor(StatusPending)
	if tpl.Location != "Order Processing Center" {
		t.Errorf("pending location = %q", tpl.Location)
	}
	if tpl.Notes != "Order received and pending processing" {
		t.Errorf("pending notes = %q", tpl.Notes)
	}

	for _, s := range []Status{
		StatusConfirmed, StatusProcessing, StatusInTransit,
		StatusOutForDelivery, StatusDelivered, StatusCanceled, StatusReturned,
	} {
		tpl := trackingFor(s)
		if tpl.Location == "" || tpl.Notes == "" {
			t.Errorf("status %s has an incomplete tracking template", s)
		}
	}
}
