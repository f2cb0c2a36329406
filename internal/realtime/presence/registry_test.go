package presence

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Join("room-1", "b")
	r.Join("room-1", "a")
	r.Join("", "c")
	r.Join("room-1", "")

	assert.Equal(t, []string{"a", "b"}, r.Peers("room-1"))
	assert.Equal(t, []string{"c"}, r.Peers(DefaultRoom))

	r.Leave("room-1", "a")
	assert.Equal(t, []string{"b"}, r.Peers("room-1"))

	r.Join("room-2", "b")
	assert.Equal(t, 2, r.LeaveAll("b"))
	assert.Empty(t, r.Peers("room-1"))
	assert.Empty(t, r.Peers("room-2"))

	r.Replace("room-3", []string{"x", "y", ""})
	assert.Equal(t, []string{"x", "y"}, r.Peers("room-3"))
	r.Replace("room-3", nil)
	assert.Empty(t, r.Peers("room-3"))

	r.Reset()
	assert.Empty(t, r.Peers(DefaultRoom))
}

func TestRegistry_Concurrent(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			peer := fmt.Sprintf("p%02d", i)
			r.Join("room", peer)
			_ = r.Peers("room")
		}(i)
	}
	wg.Wait()
	assert.Len(t, r.Peers("room"), 20)
}
