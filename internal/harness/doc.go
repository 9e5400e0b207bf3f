// Package harness runs conformance scenarios against the expansion driver.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	sources:
//	  - ../sources/geometry.rs
//	inline:
//	  - name: extra.rs
//	    text: |
//	      #[derive(Mul)]
//	      struct Seconds(f64);
//	operators: [Mul]
//	flavor: std
//	assertions:
//	  - type: expands
//	    record: Seconds
//	    operator: Mul
//	  - type: contains
//	    record: Seconds
//	    operator: Mul
//	    text: ["Seconds(self.0.mul(rhs))"]
//
// Source paths are relative to the scenario file. Inline sources pick their
// front end from the extension of name.
//
// # Assertion Types
//
//   - expands: the record/operator pair produced an implementation
//   - rejects: the pair failed with a shape error, optionally matching reason
//   - count: exactly count implementations were produced
//   - contains: the rendered implementation contains every text entry
//
// # Deterministic Testing
//
// Every scenario runs twice against a fresh in-memory cache with a
// deterministic clock and a fixed run id. The second run must be served
// entirely from the cache and render byte-identical output; any difference
// fails the scenario.
package harness
