package stats

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountersSnapshot(t *testing.T) {
	var c Counters
	c.AddCopied(2, 200)
	c.AddExamined(3, 300, 1)
	c.AddNonFatalErrors(1)

	snap := c.Snapshot()
	assert.Equal(t, Snapshot{
		CopiedFiles:    2,
		CopiedBytes:    200,
		ExaminedFiles:  3,
		ExaminedBytes:  300,
		ExaminedDirs:   1,
		NonFatalErrors: 1,
	}, snap)
}

func TestCountersConcurrentAdds(t *testing.T) {
	var c Counters
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.AddCopied(1, 10)
		}()
	}
	wg.Wait()

	snap := c.Snapshot()
	assert.Equal(t, int64(100), snap.CopiedFiles)
	assert.Equal(t, int64(1000), snap.CopiedBytes)
}
