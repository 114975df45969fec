package realtime

import (
	"testing"

	"github.com/lumenfleet/lumen-core/internal/device"
)

func tableClient() *Client {
	return &Client{send: make(chan []byte, 16)}
}

func TestTable_ReplaceReturnsSuperseded(t *testing.T) {
	table := NewTable()
	first := tableClient()
	second := tableClient()

	if prev := table.Replace("bulb-a", first); prev != nil {
		t.Errorf("Replace on empty table returned %v", prev)
	}
	if prev := table.Replace("bulb-a", second); prev != first {
		t.Error("Replace did not return the superseded session")
	}
	if table.Count() != 1 {
		t.Errorf("Count = %d, want 1", table.Count())
	}
}

func TestTable_RemoveIf(t *testing.T) {
	table := NewTable()
	current := tableClient()
	stale := tableClient()
	table.Replace("bulb-a", current)

	if table.RemoveIf("bulb-a", stale) {
		t.Error("RemoveIf removed a session it does not own")
	}
	if _, ok := table.Get("bulb-a"); !ok {
		t.Fatal("current session was evicted")
	}

	if !table.RemoveIf("bulb-a", current) {
		t.Error("RemoveIf refused to remove the current session")
	}
	if table.Count() != 0 {
		t.Errorf("Count = %d, want 0", table.Count())
	}
}

func TestTable_PushToDisconnected(t *testing.T) {
	table := NewTable()

	if table.PushStatus("bulb-a", device.Snapshot{IsOn: true, Energy: 10}) {
		t.Error("PushStatus to absent session reported delivery")
	}
	if table.PushEnergy("bulb-a", 10) {
		t.Error("PushEnergy to absent session reported delivery")
	}
}

func TestTable_Close(t *testing.T) {
	table := NewTable()
	a := tableClient()
	b := tableClient()
	table.Replace("bulb-a", a)
	table.Replace("bulb-b", b)

	table.Close()

	if table.Count() != 0 {
		t.Errorf("Count = %d, want 0 after Close", table.Count())
	}
	for _, c := range []*Client{a, b} {
		if _, ok := <-c.send; ok {
			t.Error("send channel still open after Close")
		}
	}
}
