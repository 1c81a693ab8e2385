// Package reduce implements the reduction engine: recursive include
// expansion, preprocessor conditional evaluation, attribute substitution as
// it affects directive resolution, and per-line provenance tracking.
//
// The engine is purely functional over its input plus the filesystem reads
// its include directives trigger. Each call to Reducer.Reduce owns its
// buffer, conditional frame stack, attribute snapshot, and diagnostic bag,
// so concurrent reductions of independent documents need no coordination.
package reduce
