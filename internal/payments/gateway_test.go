package payments

import (
	"context"
	"strings"
	"sync"
	"testing"
)

func TestSimulatedGatewayAlwaysSucceedsByDefault(t *testing.T) {
	gateway := NewSimulatedGateway()
	for i := 0; i < 5; i++ {
		result, err := gateway.Charge(context.Background(), "user-1", 10000)
		if err != nil {
			t.Fatalf("charge failed: %v", err)
		}
		if !result.Succeeded {
			t.Fatalf("charge %d reported failure", i)
		}
		if !strings.HasPrefix(result.PaymentID, "sim_") {
			t.Fatalf("unexpected payment id: %s", result.PaymentID)
		}
	}
}

func TestSimulatedGatewayFailEvery(t *testing.T) {
	gateway := &SimulatedGateway{FailEvery: 3}
	var outcomes []bool
	for i := 0; i < 6; i++ {
		result, err := gateway.Charge(context.Background(), "user-1", 10000)
		if err != nil {
			t.Fatalf("charge failed: %v", err)
		}
		outcomes = append(outcomes, result.Succeeded)
	}
	want := []bool{true, true, false, true, true, false}
	for i := range want {
		if outcomes[i] != want[i] {
			t.Fatalf("charge %d: succeeded=%v, want %v", i, outcomes[i], want[i])
		}
	}
}

func TestSimulatedGatewayConcurrentCharges(t *testing.T) {
	gateway := &SimulatedGateway{FailEvery: 4}
	const charges = 16

	var wg sync.WaitGroup
	var mu sync.Mutex
	var failures int
	for i := 0; i < charges; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := gateway.Charge(context.Background(), "user-1", 10000)
			if err != nil {
				t.Errorf("charge failed: %v", err)
				return
			}
			mu.Lock()
			if !result.Succeeded {
				failures++
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	if failures != charges/4 {
		t.Fatalf("expected %d failures across %d charges, got %d", charges/4, charges, failures)
	}
	if gateway.calls != charges {
		t.Fatalf("expected %d recorded calls, got %d", charges, gateway.calls)
	}
}
