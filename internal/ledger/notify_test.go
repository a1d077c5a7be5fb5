package ledger

import (
	"testing"

	"github.com/adsmith-studio/adsmith-backend/internal/models"
)

func TestNotifier_FanOutAndCancel(t *testing.T) {
	notifier := NewBalanceNotifier()

	first, cancelFirst := notifier.Subscribe(1)
	second, cancelSecond := notifier.Subscribe(1)
	defer cancelSecond()

	notifier.Publish(BalanceEvent{UserID: 1, Kind: models.TokenTransactionGrant, Remaining: 10})

	if event := <-first; event.Remaining != 10 {
		t.Fatalf("first subscriber: unexpected event %+v", event)
	}
	if event := <-second; event.Remaining != 10 {
		t.Fatalf("second subscriber: unexpected event %+v", event)
	}

	cancelFirst()
	if _, open := <-first; open {
		t.Fatalf("expected first channel closed after cancel")
	}

	notifier.Publish(BalanceEvent{UserID: 1, Kind: models.TokenTransactionDeduct, Remaining: 9})
	if event := <-second; event.Remaining != 9 {
		t.Fatalf("second subscriber after cancel: unexpected event %+v", event)
	}
}

func TestNotifier_FullSubscriberDropsEvent(t *testing.T) {
	notifier := NewBalanceNotifier()
	events, cancel := notifier.Subscribe(1)
	defer cancel()

	notifier.Publish(BalanceEvent{Remaining: 1})
	notifier.Publish(BalanceEvent{Remaining: 2}) // dropped, buffer full

	if event := <-events; event.Remaining != 1 {
		t.Fatalf("expected first event, got %+v", event)
	}
	select {
	case event := <-events:
		t.Fatalf("expected second event dropped, got %+v", event)
	default:
	}
}

func TestNotifier_NilSafePublish(t *testing.T) {
	var notifier *BalanceNotifier
	notifier.Publish(BalanceEvent{Remaining: 1})
}
