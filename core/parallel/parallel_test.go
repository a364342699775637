package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParallelizeCoversAllItems(t *testing.T) {
	var visited [1000]int32
	Parallelize(len(visited), func(start, end int) {
		for i := start; i < end; i++ {
			atomic.AddInt32(&visited[i], 1)
		}
	})
	for i, v := range visited {
		assert.Equal(t, int32(1), v, "item %d", i)
	}
}

func TestParallelizeWithThresholdSequential(t *testing.T) {
	calls := 0
	ParallelizeWithThreshold(10, 100, func(start, end int) {
		calls++
		assert.Equal(t, 0, start)
		assert.Equal(t, 10, end)
	})
	assert.Equal(t, 1, calls)
}

func TestPartition(t *testing.T) {
	tests := []struct {
		name  string
		items int
		parts int
		want  [][2]int
	}{
		{"even", 6, 3, [][2]int{{0, 2}, {2, 4}, {4, 6}}},
		{"remainder goes first", 7, 3, [][2]int{{0, 3}, {3, 5}, {5, 7}}},
		{"more parts than items", 2, 5, [][2]int{{0, 1}, {1, 2}}},
		{"empty", 0, 4, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Partition(tt.items, tt.parts))
		})
	}
}
