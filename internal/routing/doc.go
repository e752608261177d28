// Package routing moves report files from the incoming drop folder into
// destination folders chosen by filename-prefix rules.
//
// # Overview
//
// Operators drop files named like Finance__Q1-summary.pdf into incoming. The
// engine extracts the prefix token (Finance), picks the best active PathRule
// and renames the file into reportsRoot/<destinationFolder>/. It provides:
//
//   - Deterministic prefix matching with a longest-prefix tie-break
//   - Dry runs that predict decisions without touching the filesystem
//   - Collision-safe moves that never overwrite an existing report
//   - Bulk and single-file passes serialized by an execution lock
//
// # Architecture
//
// ### Scanner
// Lists regular, non-hidden files in incoming, sorted by name.
//
// ### Matcher
// Pure function of a file name and a rule snapshot. Among matching active
// rules the longest prefix wins, then the lowest priority, then the lowest ID.
//
// ### Executor
// Validates the destination, creates the folder and performs a no-replace
// rename bounded by a timeout. An existing destination is a COLLISION.
//
// ### Engine
// Wires the above together with a RuleSource, a Locker, an optional Auditor
// and an optional EventPublisher.
//
// ## Data Flow
//
//  1. Engine acquires the execution lock (RunRoutingNow, RouteSingle)
//  2. Scanner lists incoming, RuleSource provides one rule snapshot
//  3. Matcher decides per file
//  4. Executor moves ROUTED candidates
//  5. Results are counted, audited and returned
//
// # Usage
//
//	engine, err := routing.NewEngine(routing.Options{
//		Rules:       store,
//		FS:          fsstore.NewOsStore(),
//		Locker:      locks.NewLocalLocker(),
//		IncomingDir: "/data/incoming",
//		ReportsDir:  "/data/reports",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := engine.RunRoutingNow(ctx)
//	if errors.Is(err, routing.ErrRoutingInProgress) {
//		// another pass is running
//	}
//
// # Outcomes
//
// Every file ends a pass in exactly one outcome. Only ROUTED removes it from
// incoming; NO_MATCH, COLLISION and ERROR leave it where it was. In a
// RoutingResult ROUTED counts as routed, NO_MATCH and COLLISION as skipped,
// ERROR as failed.
package routing
