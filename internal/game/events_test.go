package game

import (
	"testing"
)

type recordingSubscriber struct {
	events []Event
}

func (s *recordingSubscriber) OnEvent(e Event) {
	s.events = append(s.events, e)
}

func TestQueuePreservesOrder(t *testing.T) {
	var q Queue
	q.Append(BetPlaced{eventTime: stamp(), Amount: 10})
	q.Append(InitialDealComplete{eventTime: stamp()})
	q.Append(PlayerStood{eventTime: stamp()})

	if q.Len() != 3 {
		t.Fatalf("Len() = %d, expected 3", q.Len())
	}

	events := q.Flush()
	expected := []EventType{EventTypeBetPlaced, EventTypeInitialDealComplete, EventTypePlayerStood}
	for i, et := range expected {
		if events[i].Type() != et {
			t.Errorf("event %d = %s, expected %s", i, events[i].Type(), et)
		}
	}

	if q.Len() != 0 {
		t.Errorf("queue not empty after flush: %d", q.Len())
	}
	if events := q.Flush(); events != nil {
		t.Errorf("second flush returned %d events", len(events))
	}
}

func TestBusFansOutInSubscriptionOrder(t *testing.T) {
	bus := NewBus()
	first := &recordingSubscriber{}
	second := &recordingSubscriber{}
	bus.Subscribe(first)
	bus.Subscribe(second)

	bus.Publish(BetPlaced{eventTime: stamp(), Amount: 25})

	for _, sub := range []*recordingSubscriber{first, second} {
		if len(sub.events) != 1 {
			t.Fatalf("subscriber received %d events, expected 1", len(sub.events))
		}
		if got := sub.events[0].(BetPlaced).Amount; got != 25 {
			t.Errorf("Amount = %d, expected 25", got)
		}
	}
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus()
	kept := &recordingSubscriber{}
	dropped := &recordingSubscriber{}
	bus.Subscribe(kept)
	bus.Subscribe(dropped)
	bus.Unsubscribe(dropped)

	bus.Publish(DealerTurnStarted{eventTime: stamp()})

	if len(kept.events) != 1 {
		t.Errorf("kept subscriber received %d events, expected 1", len(kept.events))
	}
	if len(dropped.events) != 0 {
		t.Errorf("dropped subscriber received %d events, expected 0", len(dropped.events))
	}
}

func TestBusUnsubscribeUnknownIsNoop(t *testing.T) {
	bus := NewBus()
	bus.Unsubscribe(&recordingSubscriber{})
	bus.Publish(DealerTurnStarted{eventTime: stamp()})
}
