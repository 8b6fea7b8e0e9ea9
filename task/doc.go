// Package task defines the unit of work the engine schedules: the Task
// interface, the data carrier passed between tasks, task metadata, and the
// Registry that maps task ids to factories and resolves dependency order.
//
// A Task declares what it consumes and produces through Metadata: symbolic
// input and output kinds (open strings such as "text" or "report") and the
// ids of tasks it depends on. Execute receives an Inputs carrier and returns
// an Outputs carrier; both separate structured Data from Files on disk, with
// a Metadata map for informational context that never drives control flow.
//
// Tasks register a Factory, not an instance: the engine creates a fresh Task
// for every scheduled use, so implementations must not carry state between
// invocations. Optional behaviour is added through capability interfaces
// discovered by type assertion: Validator for custom input validation,
// SetupTask and CleanupTask for resource acquisition and release around
// Execute.
//
// Registry.ResolveDependencies expands a requested set of task ids to its
// transitive closure and orders it topologically, failing with
// *CircularDependencyError when the graph has a cycle. The order is fully
// deterministic: ties between simultaneously ready tasks are broken by
// discovery order (requested ids first, then dependencies as encountered).
package task
