package dedup

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeduplicator_CaseFold(t *testing.T) {
	d := New()
	assert.False(t, d.IsDuplicate("Acme", "Frontend Dev"))

	d.MarkSeen("Acme", "Backend Dev")
	assert.True(t, d.IsDuplicate("acme", "backend dev"))
	assert.True(t, d.IsDuplicate("  ACME ", "Backend   Dev"))
	assert.False(t, d.IsDuplicate("Acme", "Frontend Dev"))
}

func TestDeduplicator_IsDuplicateDoesNotMark(t *testing.T) {
	d := New()
	assert.False(t, d.IsDuplicate("Paytm", "SDE"))
	assert.False(t, d.IsDuplicate("Paytm", "SDE"))
	assert.Equal(t, 0, d.Len())
}

func TestDeduplicator_CheckAndMark(t *testing.T) {
	d := New()
	assert.False(t, d.CheckAndMark("Groww", "SDE 1"))
	assert.True(t, d.CheckAndMark("groww", "sde 1"))
	assert.Equal(t, 1, d.Len())
}

func TestDeduplicator_Forget(t *testing.T) {
	d := New()
	require.False(t, d.CheckAndMark("Groww", "SDE 1"))
	d.Forget(" GROWW ", "sde  1")
	assert.False(t, d.IsDuplicate("Groww", "SDE 1"))
	assert.Equal(t, 0, d.Len())
	d.Forget("never", "seen")
	assert.False(t, d.CheckAndMark("Groww", "SDE 1"))
}

func TestDeduplicator_Seed(t *testing.T) {
	d := New()
	d.Seed([]Key{{Company: "CRED", Title: "Backend Engineer"}, MakeKey("Upstox", "SDE")})

	assert.True(t, d.IsDuplicate("cred", "backend engineer"))
	assert.True(t, d.IsDuplicate("UPSTOX", "sde"))
	assert.Equal(t, 2, d.Len())
}

func TestDeduplicator_SeparateRuns(t *testing.T) {
	first := New()
	first.MarkSeen("Zerodha", "SDE")

	second := New()
	assert.False(t, second.IsDuplicate("Zerodha", "SDE"))
}

func TestDeduplicator_Concurrent(t *testing.T) {
	d := New()
	var wg sync.WaitGroup
	var mu sync.Mutex
	fresh := 0

	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				if !d.CheckAndMark("Razorpay", fmt.Sprintf("role %d", i)) {
					mu.Lock()
					fresh++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, fresh)
	assert.Equal(t, 50, d.Len())
}

func TestMakeKey(t *testing.T) {
	want := Key{Company: "phonepe", Title: "backend developer - ppo"}
	assert.Equal(t, want, MakeKey(" PhonePe", "Backend  Developer - PPO "))
}
