package eventbus

import "testing"

func TestBusPublishSubscribe(t *testing.T) {
	bus := New()
	ch, cancel := bus.Subscribe(1)
	defer cancel()

	bus.Publish("hello")
	if v := <-ch; v != "hello" {
		t.Fatalf("expected hello got %v", v)
	}
}

func TestBusDropsWhenSubscriberFull(t *testing.T) {
	bus := New()
	_, cancel := bus.Subscribe(1)
	defer cancel()

	bus.Publish(1)
	bus.Publish(2)
	if got := bus.Dropped(); got != 1 {
		t.Fatalf("Dropped = %d, want 1", got)
	}
}

func TestBusCancelStopsDelivery(t *testing.T) {
	bus := New()
	ch, cancel := bus.Subscribe(4)
	cancel()
	cancel() // idempotent

	if _, ok := <-ch; ok {
		t.Fatal("expected channel closed after cancel")
	}
	bus.Publish("late")
	if got := bus.Dropped(); got != 0 {
		t.Fatalf("Dropped = %d, want 0 after unsubscribe", got)
	}
}

func TestBusClose(t *testing.T) {
	bus := New()
	ch1, _ := bus.Subscribe(1)
	ch2, _ := bus.Subscribe(1)
	bus.Close()

	if _, ok := <-ch1; ok {
		t.Fatal("expected ch1 closed")
	}
	if _, ok := <-ch2; ok {
		t.Fatal("expected ch2 closed")
	}

	ch3, cancel := bus.Subscribe(1)
	if _, ok := <-ch3; ok {
		t.Fatal("expected subscription after Close to be closed")
	}
	cancel()
}

func TestBusCancelAfterClose(t *testing.T) {
	bus := New()
	_, cancel := bus.Subscribe(1)
	bus.Close()
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("panic on cancel after Close: %v", r)
		}
	}()
	cancel()
}
