package ecs

import "fmt"

// Entity packs a 24-bit slot index in the low bits and an 8-bit generation
// in the high bits. Generation increments on destroy to invalidate stale refs.
type Entity uint32

const (
	IndexBits      = 24
	GenerationBits = 8

	IndexMask      = 1<<IndexBits - 1
	GenerationMask = 1<<GenerationBits - 1

	// MaxSlots is the largest number of slots a pool may hand out. The top
	// index is reserved for Nil.
	MaxSlots = IndexMask

	// DefaultReuseThreshold is how many freed slots must be pooled before
	// the oldest one is handed out again.
	DefaultReuseThreshold = 2048
)

// Nil is never returned by a pool except to signal that every slot is live.
const Nil = Entity(GenerationMask<<IndexBits | IndexMask)

func NewEntity(index uint32, generation uint8) Entity {
	return Entity(uint32(generation)<<IndexBits | index&IndexMask)
}

func (e Entity) Index() uint32     { return uint32(e) & IndexMask }
func (e Entity) Generation() uint8 { return uint8(uint32(e) >> IndexBits) }
func (e Entity) IsNil() bool       { return e == Nil }

func (e Entity) String() string {
	if e.IsNil() {
		return "entity(nil)"
	}
	return fmt.Sprintf("entity(%d.%d)", e.Index(), e.Generation())
}

// retiredGeneration marks a slot whose 8-bit generation space is used up.
// It can never equal a handle's generation, so every handle to it is dead.
const retiredGeneration = GenerationMask + 1

// PoolConfig tunes slot recycling.
type PoolConfig struct {
	ReuseThreshold int // pooled slots required before reuse starts
	MaxSlots       int // upper bound on slots ever allocated, <= MaxSlots
}

// EntityPool manages entity allocation with generational indices and a FIFO
// recycling queue. Freed slots are only reused once more than ReuseThreshold
// of them are waiting, which keeps recently freed slots out of circulation
// while stale handles to them may still be held.
type EntityPool struct {
	generations []uint16
	free        queue
	threshold   int
	maxSlots    int
	retired     int
}

func NewEntityPool(cfg PoolConfig) *EntityPool {
	if cfg.ReuseThreshold < 0 {
		cfg.ReuseThreshold = 0
	}
	if cfg.MaxSlots <= 0 || cfg.MaxSlots > MaxSlots {
		cfg.MaxSlots = MaxSlots
	}
	return &EntityPool{
		generations: make([]uint16, 0, 1024),
		free:        newQueue(256),
		threshold:   cfg.ReuseThreshold,
		maxSlots:    cfg.MaxSlots,
	}
}

// Create returns a fresh handle. It returns Nil only when every slot up to
// MaxSlots is live or retired.
func (p *EntityPool) Create() Entity {
	full := len(p.generations) >= p.maxSlots
	if p.free.len() > p.threshold || (full && p.free.len() > 0) {
		idx := p.free.pop()
		return NewEntity(idx, uint8(p.generations[idx]))
	}
	if full {
		return Nil
	}
	p.generations = append(p.generations, 0)
	return NewEntity(uint32(len(p.generations)-1), 0)
}

func (p *EntityPool) Alive(e Entity) bool {
	idx := e.Index()
	if int(idx) >= len(p.generations) {
		return false
	}
	return p.generations[idx] == uint16(e.Generation())
}

// Destroy bumps the slot's generation and queues it for reuse. Stale handles
// are ignored so a slot is never queued twice.
func (p *EntityPool) Destroy(e Entity) {
	if !p.Alive(e) {
		return
	}
	idx := e.Index()
	p.generations[idx]++
	if p.generations[idx] == retiredGeneration {
		p.retired++
		return
	}
	p.free.push(idx)
}

// Len is the number of slots ever allocated.
func (p *EntityPool) Len() int { return len(p.generations) }

// Pooled is the number of freed slots waiting for reuse.
func (p *EntityPool) Pooled() int { return p.free.len() }

// Retired is the number of slots withdrawn after exhausting their generations.
func (p *EntityPool) Retired() int { return p.retired }

// queue is a FIFO of slot indices backed by a slice with a moving head.
type queue struct {
	items []uint32
	head  int
}

func newQueue(capacity int) queue {
	return queue{items: make([]uint32, 0, capacity)}
}

func (q *queue) len() int { return len(q.items) - q.head }

func (q *queue) push(v uint32) {
	q.items = append(q.items, v)
}

func (q *queue) pop() uint32 {
	v := q.items[q.head]
	q.head++
	// Compact once the consumed prefix dominates the backing array.
	if q.head > 64 && q.head*2 >= len(q.items) {
		n := copy(q.items, q.items[q.head:])
		q.items = q.items[:n]
		q.head = 0
	}
	return v
}
