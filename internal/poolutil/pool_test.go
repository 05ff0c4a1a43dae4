package poolutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolGetPut(t *testing.T) {
	p := New(func() *int {
		v := 42
		return &v
	})

	item1 := p.Get()
	require.NotNil(t, item1)
	assert.Equal(t, 42, *item1)

	p.Put(item1)
	item2 := p.Get()
	require.NotNil(t, item2)
}

func TestPoolConcurrentAccess(t *testing.T) {
	p := New(func() []byte {
		return make([]byte, 1024)
	})

	var wg sync.WaitGroup
	const goroutines = 50
	const iterations = 50

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				buf := p.Get()
				assert.Len(t, buf, 1024)
				buf[0] = byte(j)
				p.Put(buf)
			}
		}()
	}
	wg.Wait()
}

func TestRecvScratchSize(t *testing.T) {
	buf := RecvScratch.Get()
	defer RecvScratch.Put(buf)
	assert.Len(t, buf[:], RecvScratchSize)
}
