package audio

import (
	"container/heap"
	"sort"

	"github.com/KirkDiggler/rpg-party/internal/entities"
)

// queued pairs an item with its arrival order so equal sequences keep FIFO order
type queued struct {
	item  entities.AudioQueueItem
	order uint64
}

// backlog is a min-heap on (Sequence, arrival order)
type backlog []queued

func (b backlog) Len() int { return len(b) }

func (b backlog) Less(i, j int) bool {
	if b[i].item.Sequence != b[j].item.Sequence {
		return b[i].item.Sequence < b[j].item.Sequence
	}
	return b[i].order < b[j].order
}

func (b backlog) Swap(i, j int) { b[i], b[j] = b[j], b[i] }

func (b *backlog) Push(x any) { *b = append(*b, x.(queued)) }

func (b *backlog) Pop() any {
	old := *b
	n := len(old)
	last := old[n-1]
	*b = old[:n-1]
	return last
}

func (b *backlog) push(item entities.AudioQueueItem, order uint64) {
	heap.Push(b, queued{item: item, order: order})
}

func (b *backlog) pop() entities.AudioQueueItem {
	return heap.Pop(b).(queued).item
}

// next returns the item pop would return without removing it
func (b backlog) next() entities.AudioQueueItem {
	return b[0].item
}

// items returns the pending items in drain order without consuming them
func (b backlog) items() []entities.AudioQueueItem {
	sorted := append(backlog(nil), b...)
	sort.Sort(sorted)
	out := make([]entities.AudioQueueItem, len(sorted))
	for i, q := range sorted {
		out[i] = q.item
	}
	return out
}
