// Package kernel is a cooperative, timer-gated task scheduler.
//
// Every task owns a Context holding a state label and a countdown timer. The
// kernel decrements all non-zero timers once per tick and, after each tick,
// invokes every task whose timer reached zero in registration order. A task
// never blocks: it does a bounded slice of work, then yields by setting its
// next state and how many ticks to sleep.
//
// If a tick arrives while the previous tick's task scan has not finished, the
// kernel enters a diagnostic halt that feeds the watchdog and lights the fault
// indicator forever.
package kernel

import (
	"context"
	"runtime"
	"sync/atomic"

	"camkernel-go/errcode"
)

// DefaultCapacity is the task table size used when New is given zero.
const DefaultCapacity = 12

// Context is the per-task scheduling record.
type Context struct {
	ID    int
	State int
	Timer int

	yielded bool
}

// Set records the task's next state and how many ticks to wait before it is
// invoked again. A wait of 0 makes the task eligible on the next tick; 1 is
// the usual self-loop for polling.
func (c *Context) Set(next, ticks int) {
	if ticks < 0 {
		ticks = 0
	}
	c.State = next
	c.Timer = ticks
	c.yielded = true
}

// SetContext is the free-function form of Context.Set.
func SetContext(c *Context, next, ticks int) { c.Set(next, ticks) }

// Task is one cooperative unit of work. Step must dispatch on ctx.State,
// finish in bounded time and call ctx.Set exactly once.
type Task interface {
	Step(ctx *Context)
}

// StepFunc adapts a plain function to Task.
type StepFunc func(ctx *Context)

func (f StepFunc) Step(ctx *Context) { f(ctx) }

// TickSource reports how many tick periods expired since the previous Poll.
type TickSource interface {
	Poll() int
}

// Watchdog is fed once per loop pass and continuously while halted.
type Watchdog interface {
	Feed()
}

// Indicator is asserted when the kernel halts.
type Indicator interface {
	Set(on bool)
}

type entry struct {
	ctx  Context
	task Task
	dead bool // deleted during a scan, removed when it ends
}

// Stats are diagnostic counters.
type Stats struct {
	Ticks       uint32
	Passes      uint32
	Invocations uint32
	NoYield     uint32 // invocations that returned without calling Set
}

type Kernel struct {
	src   TickSource
	wdt   Watchdog
	fault Indicator

	tasks  []entry
	nextID int

	ticks       uint32
	passes      uint32
	invocations uint32
	noYield     uint32

	guard    bool
	scanning bool
	halted   atomic.Bool
}

// New returns an initialised kernel with a task table of the given capacity.
// wdt and fault may be nil.
func New(capacity int, src TickSource, wdt Watchdog, fault Indicator) *Kernel {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	k := &Kernel{
		src:   src,
		wdt:   wdt,
		fault: fault,
		tasks: make([]entry, 0, capacity),
	}
	k.Init()
	return k
}

// Init clears the task table and the tick counter.
func (k *Kernel) Init() {
	k.tasks = k.tasks[:0]
	k.nextID = 0
	k.ticks = 0
	k.passes = 0
	k.invocations = 0
	k.noYield = 0
	k.guard = false
	k.scanning = false
}

// Create appends t to the task table with State 0 and Timer 1, so the task
// first runs on the tick after registration. IDs start at 1 and are
// not reused. On a full table it returns errcode.CapacityExceeded and the
// table is unchanged.
func (k *Kernel) Create(t Task) (int, error) {
	if t == nil {
		return 0, errcode.InvalidParams
	}
	// Slots freed during a scan are reclaimed when it ends; appending past
	// cap would move the contexts the scan is stepping.
	if len(k.tasks) == cap(k.tasks) {
		return 0, errcode.CapacityExceeded
	}
	k.nextID++
	k.tasks = append(k.tasks, entry{
		ctx:  Context{ID: k.nextID, State: 0, Timer: 1},
		task: t,
	})
	return k.nextID, nil
}

// Delete removes the task with the given id, keeping the relative order of
// the remaining tasks. A task deleted during a scan, including the running
// task itself, is not invoked again and leaves the table when the scan ends.
func (k *Kernel) Delete(id int) error {
	i := k.index(id)
	if i < 0 {
		return errcode.UnknownTask
	}
	if k.scanning {
		k.tasks[i].dead = true
		return nil
	}
	copy(k.tasks[i:], k.tasks[i+1:])
	k.tasks[len(k.tasks)-1] = entry{}
	k.tasks = k.tasks[:len(k.tasks)-1]
	return nil
}

func (k *Kernel) index(id int) int {
	for i := range k.tasks {
		if !k.tasks[i].dead && k.tasks[i].ctx.ID == id {
			return i
		}
	}
	return -1
}

// compact drops entries deleted during the last scan.
func (k *Kernel) compact() {
	n := 0
	for i := range k.tasks {
		if !k.tasks[i].dead {
			k.tasks[n] = k.tasks[i]
			n++
		}
	}
	for i := n; i < len(k.tasks); i++ {
		k.tasks[i] = entry{}
	}
	k.tasks = k.tasks[:n]
}

// Len returns the number of registered tasks.
func (k *Kernel) Len() int {
	n := 0
	for i := range k.tasks {
		if !k.tasks[i].dead {
			n++
		}
	}
	return n
}

// Cap returns the task table capacity.
func (k *Kernel) Cap() int { return cap(k.tasks) }

// Context returns a copy of the context of task id.
func (k *Kernel) Context(id int) (Context, bool) {
	if i := k.index(id); i >= 0 {
		return k.tasks[i].ctx, true
	}
	return Context{}, false
}

// IDs returns task ids in execution order.
func (k *Kernel) IDs() []int {
	ids := make([]int, 0, len(k.tasks))
	for i := range k.tasks {
		if !k.tasks[i].dead {
			ids = append(ids, k.tasks[i].ctx.ID)
		}
	}
	return ids
}

// Ticks returns the global tick counter.
func (k *Kernel) Ticks() uint32 { return k.ticks }

// Halted reports whether the kernel has entered the diagnostic halt.
func (k *Kernel) Halted() bool { return k.halted.Load() }

func (k *Kernel) Stats() Stats {
	return Stats{
		Ticks:       k.ticks,
		Passes:      k.passes,
		Invocations: k.invocations,
		NoYield:     k.noYield,
	}
}

// Tick accounts for one tick-source expiry. It returns errcode.Overrun when
// the previous tick's scan is still outstanding; the caller must then halt.
func (k *Kernel) Tick() error {
	if k.guard {
		return errcode.Overrun
	}
	k.guard = true
	k.ticks++
	for i := range k.tasks {
		if k.tasks[i].ctx.Timer > 0 {
			k.tasks[i].ctx.Timer--
		}
	}
	return nil
}

// RunPending invokes every task whose timer is zero, in table order, then
// clears the overrun guard. It does nothing when no tick is outstanding.
func (k *Kernel) RunPending() {
	if !k.guard {
		return
	}
	// Tasks registered during the scan are not visited until the next tick.
	// The table is only appended to or marked while scanning, so c stays
	// valid across Step.
	k.scanning = true
	n := len(k.tasks)
	for i := 0; i < n; i++ {
		e := &k.tasks[i]
		c := &e.ctx
		if e.dead || c.Timer != 0 {
			continue
		}
		c.yielded = false
		e.task.Step(c)
		k.invocations++
		if !c.yielded {
			k.noYield++
		}
	}
	k.scanning = false
	k.compact()
	k.guard = false
}

// Pass runs one main-loop iteration: poll the tick source, account every
// expiry, feed the watchdog and run eligible tasks. It returns
// errcode.Overrun if a tick was missed.
func (k *Kernel) Pass() error {
	k.passes++
	n := k.src.Poll()
	for i := 0; i < n; i++ {
		if err := k.Tick(); err != nil {
			return err
		}
	}
	k.feed()
	k.RunPending()
	return nil
}

// Run executes the main loop until ctx is cancelled. An overrun halts the
// kernel and Run never returns.
func (k *Kernel) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if err := k.Pass(); err != nil {
			println("[kernel] fatal:", err.Error(), "tick", k.ticks)
			k.Halt()
		}
		runtime.Gosched()
	}
}

// Halt enters the diagnostic halt: the fault indicator is asserted and the
// watchdog is fed forever so the device stays in the fault state.
func (k *Kernel) Halt() {
	k.halted.Store(true)
	for {
		k.feed()
		if k.fault != nil {
			k.fault.Set(true)
		}
		runtime.Gosched()
	}
}

func (k *Kernel) feed() {
	if k.wdt != nil {
		k.wdt.Feed()
	}
}
