package compile

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tliron/commonlog"

	"github.com/chazu/graft/builder"
	"github.com/chazu/graft/graph"
	"github.com/chazu/graft/meta"
)

var log = commonlog.GetLogger("graft.compile")

// Driver manages adaptive compilation of hot methods. It connects the
// profiler (which detects hot code) to the graph builder, running
// compilations on a background worker. Each compilation owns its own graph
// and context stack; only the read-only providers are shared.
type Driver struct {
	providers builder.Providers
	opts      builder.Options
	plugins   *builder.Plugins
	profiler  *Profiler
	store     *Store // optional compile log

	// Compilation queue for background processing
	pending chan *meta.Method
	done    chan struct{}
	wg      sync.WaitGroup

	// Compiled graph registry
	mu           sync.RWMutex
	graphs       map[string]*graph.Graph
	compiledKeys map[string]bool

	// Statistics
	methodsCompiled uint64
	bailouts        uint64
	compilationTime uint64 // nanoseconds
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithStore attaches a durable compile log.
func WithStore(s *Store) DriverOption {
	return func(d *Driver) { d.store = s }
}

// WithPlugins installs the intrinsic registry used for every compilation.
func WithPlugins(p *builder.Plugins) DriverOption {
	return func(d *Driver) { d.plugins = p }
}

// NewDriver creates a driver and starts its background worker. hotThreshold
// feeds the profiler; Stop must be called to release the worker.
func NewDriver(providers builder.Providers, opts builder.Options, hotThreshold uint64, options ...DriverOption) *Driver {
	d := &Driver{
		providers:    providers,
		opts:         opts,
		profiler:     NewProfiler(hotThreshold),
		pending:      make(chan *meta.Method, 100),
		done:         make(chan struct{}),
		graphs:       make(map[string]*graph.Graph),
		compiledKeys: make(map[string]bool),
	}
	for _, opt := range options {
		opt(d)
	}
	d.profiler.OnHot = d.enqueue
	d.wg.Add(1)
	go d.worker()
	return d
}

// Profiler returns the driver's profiler; embedders call RecordInvocation
// from their dispatch path.
func (d *Driver) Profiler() *Profiler { return d.profiler }

// enqueue adds a method to the compilation queue. A full queue drops the
// request: the method stays hot and profiling will not re-trigger, so
// embedders needing stronger guarantees call Compile directly.
func (d *Driver) enqueue(m *meta.Method) {
	d.mu.RLock()
	compiled := d.compiledKeys[m.Key()]
	d.mu.RUnlock()
	if compiled {
		return
	}
	select {
	case d.pending <- m:
	default:
		log.Warningf("compilation queue full, dropping %s", m.Key())
	}
}

// worker processes the compilation queue in the background.
func (d *Driver) worker() {
	defer d.wg.Done()
	for {
		select {
		case m := <-d.pending:
			d.Compile(m)
		case <-d.done:
			return
		}
	}
}

// Compile builds the graph for a method synchronously. Each method is
// compiled at most once; repeated calls return the cached graph. Bailouts
// are recorded and returned, never fatal to the driver.
func (d *Driver) Compile(m *meta.Method) (*graph.Graph, error) {
	key := m.Key()

	d.mu.Lock()
	if d.compiledKeys[key] {
		g := d.graphs[key]
		d.mu.Unlock()
		if g == nil {
			return nil, errors.New("compile: " + key + " previously bailed out")
		}
		return g, nil
	}
	d.compiledKeys[key] = true
	d.mu.Unlock()

	start := time.Now()
	g, err := builder.Build(m, d.providers, d.opts, d.plugins)
	elapsed := time.Since(start)
	atomic.AddUint64(&d.compilationTime, uint64(elapsed.Nanoseconds()))

	rec := CompileRecord{
		Method:   key,
		Duration: elapsed,
		When:     start,
	}
	if err != nil {
		atomic.AddUint64(&d.bailouts, 1)
		rec.Status = StatusBailout
		var bo *builder.BailoutError
		if errors.As(err, &bo) {
			rec.Message = bo.Message
		} else {
			rec.Message = err.Error()
		}
		d.record(rec)
		return nil, err
	}

	d.mu.Lock()
	d.graphs[key] = g
	d.mu.Unlock()
	atomic.AddUint64(&d.methodsCompiled, 1)

	rec.Status = StatusOK
	rec.NodeCount = g.NodeCount()
	d.record(rec)
	log.Infof("compiled %s: %d nodes in %s", key, g.NodeCount(), elapsed)
	return g, nil
}

func (d *Driver) record(rec CompileRecord) {
	if d.store == nil {
		return
	}
	if err := d.store.RecordCompile(rec); err != nil {
		log.Errorf("compile log write failed: %s", err)
	}
}

// Graph returns the compiled graph for a method key, or nil.
func (d *Driver) Graph(key string) *graph.Graph {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.graphs[key]
}

// CompiledMethods returns the keys of all successfully compiled methods.
func (d *Driver) CompiledMethods() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	keys := make([]string, 0, len(d.graphs))
	for key := range d.graphs {
		keys = append(keys, key)
	}
	return keys
}

// Stats holds driver statistics.
type Stats struct {
	MethodsCompiled uint64
	Bailouts        uint64
	CompilationTime time.Duration
	QueueLength     int
}

// Stats returns a snapshot of driver statistics.
func (d *Driver) Stats() Stats {
	return Stats{
		MethodsCompiled: atomic.LoadUint64(&d.methodsCompiled),
		Bailouts:        atomic.LoadUint64(&d.bailouts),
		CompilationTime: time.Duration(atomic.LoadUint64(&d.compilationTime)),
		QueueLength:     len(d.pending),
	}
}

// Stop stops the background worker and waits for it to drain.
func (d *Driver) Stop() {
	close(d.done)
	d.wg.Wait()
}
