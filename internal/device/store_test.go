package device

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func testStore() *Store {
	return NewStore([]Device{
		{ID: "bulb-a", Name: "Bulb A", SharedSecret: "secret-a", EnergyBalance: 1000, ConsumptionRate: 5},
		{ID: "bulb-b", Name: "Bulb B", SharedSecret: "secret-b", EnergyBalance: 0, ConsumptionRate: 2},
		{ID: "bulb-c", Name: "Bulb C", SharedSecret: "secret-c", On: true, EnergyBalance: 50, ConsumptionRate: 10},
	})
}

func TestGet_ReturnsClone(t *testing.T) {
	s := testStore()

	d, err := s.Get("bulb-a")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	d.EnergyBalance = -999
	d.On = true

	again, _ := s.Get("bulb-a")
	if again.EnergyBalance != 1000 || again.On {
		t.Error("mutating a returned device leaked into the registry")
	}
}

func TestGet_Unknown(t *testing.T) {
	s := testStore()

	if _, err := s.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestMutate_AppliesAtomically(t *testing.T) {
	s := testStore()

	after, err := s.Mutate("bulb-a", func(d *Device) {
		d.On = true
		d.EnergyBalance -= 100
	})
	if err != nil {
		t.Fatalf("Mutate() error = %v", err)
	}

	if !after.On || after.EnergyBalance != 900 {
		t.Errorf("after = {On:%v Balance:%v}, want {true 900}", after.On, after.EnergyBalance)
	}

	stored, _ := s.Get("bulb-a")
	if !stored.On || stored.EnergyBalance != 900 {
		t.Error("Mutate result not visible through Get")
	}
}

func TestMutate_Unknown(t *testing.T) {
	s := testStore()

	if _, err := s.Mutate("nope", func(*Device) {}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Mutate(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestMutate_ConcurrentNoLostUpdates(t *testing.T) {
	s := testStore()
	const workers = 50

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Mutate("bulb-a", func(d *Device) {
				d.EnergyBalance -= 1
			})
		}()
	}
	wg.Wait()

	d, _ := s.Get("bulb-a")
	if d.EnergyBalance != 1000-workers {
		t.Errorf("balance = %v, want %v (lost update)", d.EnergyBalance, 1000-workers)
	}
}

func TestMutatePair_AppliesJointly(t *testing.T) {
	s := testStore()

	a, b, err := s.MutatePair("bulb-a", "bulb-b", func(da, db *Device) {
		da.EnergyBalance -= 300
		db.EnergyBalance += 300
	})
	if err != nil {
		t.Fatalf("MutatePair() error = %v", err)
	}

	if a.EnergyBalance != 700 || b.EnergyBalance != 300 {
		t.Errorf("pair = (%v, %v), want (700, 300)", a.EnergyBalance, b.EnergyBalance)
	}
}

func TestMutatePair_SameDevice(t *testing.T) {
	s := testStore()

	if _, _, err := s.MutatePair("bulb-a", "bulb-a", func(*Device, *Device) {}); !errors.Is(err, ErrSameDevice) {
		t.Errorf("MutatePair(same) error = %v, want ErrSameDevice", err)
	}
}

func TestMutatePair_Unknown(t *testing.T) {
	s := testStore()

	if _, _, err := s.MutatePair("bulb-a", "nope", func(*Device, *Device) {}); !errors.Is(err, ErrNotFound) {
		t.Errorf("MutatePair(unknown) error = %v, want ErrNotFound", err)
	}
}

// Opposing pair mutations must not deadlock: locks are taken in ID order,
// not caller order.
func TestMutatePair_OpposingDirectionsNoDeadlock(t *testing.T) {
	s := testStore()
	const rounds = 200

	done := make(chan struct{})
	go func() {
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				_, _, _ = s.MutatePair("bulb-a", "bulb-b", func(da, db *Device) {
					da.EnergyBalance -= 1
					db.EnergyBalance += 1
				})
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				_, _, _ = s.MutatePair("bulb-b", "bulb-a", func(db, da *Device) {
					db.EnergyBalance -= 1
					da.EnergyBalance += 1
				})
			}
		}()
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("opposing MutatePair calls deadlocked")
	}

	// Conservation: every round moved 1 unit each way.
	a, _ := s.Get("bulb-a")
	b, _ := s.Get("bulb-b")
	if a.EnergyBalance+b.EnergyBalance != 1000 {
		t.Errorf("total = %v, want 1000 (energy not conserved)", a.EnergyBalance+b.EnergyBalance)
	}
}

func TestList_SortedClones(t *testing.T) {
	s := testStore()

	list := s.List()
	if len(list) != 3 {
		t.Fatalf("len = %d, want 3", len(list))
	}
	if list[0].ID != "bulb-a" || list[1].ID != "bulb-b" || list[2].ID != "bulb-c" {
		t.Errorf("list not sorted by id: %v %v %v", list[0].ID, list[1].ID, list[2].ID)
	}
}

func TestCheckCredentials(t *testing.T) {
	s := testStore()

	tests := []struct {
		name string
		id   string
		key  string
		want bool
	}{
		{"valid", "bulb-a", "secret-a", true},
		{"wrong key", "bulb-a", "secret-b", false},
		{"empty key", "bulb-a", "", false},
		{"unknown device", "nope", "secret-a", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.CheckCredentials(tt.id, tt.key); got != tt.want {
				t.Errorf("CheckCredentials(%q, %q) = %v, want %v", tt.id, tt.key, got, tt.want)
			}
		})
	}
}

func TestGetStats(t *testing.T) {
	s := testStore()

	stats := s.GetStats()
	if stats.Total != 3 {
		t.Errorf("Total = %d, want 3", stats.Total)
	}
	if stats.PoweredOn != 1 {
		t.Errorf("PoweredOn = %d, want 1", stats.PoweredOn)
	}
	if stats.TotalEnergy != 1050 {
		t.Errorf("TotalEnergy = %v, want 1050", stats.TotalEnergy)
	}
}

func TestClone_IndependentLastSeen(t *testing.T) {
	now := time.Now()
	d := &Device{ID: "x", LastSeen: &now}

	c := d.Clone()
	later := now.Add(time.Hour)
	*c.LastSeen = later

	if !d.LastSeen.Equal(now) {
		t.Error("Clone shares LastSeen pointer with original")
	}
}
