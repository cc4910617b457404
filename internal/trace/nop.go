package trace

// nopTracer backs every solve when no --trace flag is given, so strategies
// can emit placements unconditionally.
type nopTracer struct{}

func (nopTracer) Emit(*Event)   {}
func (nopTracer) Flush() error  { return nil }
func (nopTracer) Close() error  { return nil }
func (nopTracer) Level() Level  { return LevelOff }
func (nopTracer) Enabled() bool { return false }

// Nop is what FromContext returns for a context without a tracer.
var Nop Tracer = nopTracer{}
