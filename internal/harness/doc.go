// Package harness runs conformance scenarios against the script engine.
//
// A scenario is a YAML file naming a script, the variables a run starts with,
// a provider configuration and a stub provider behaviour, plus the expected
// outcome and assertions over the run log and final variables.
//
// # Scenario Format
//
//	name: recaptcha_solved
//	description: "Solved token lands in the output variable"
//	script: |
//	  RECAPTCHA "https://{domain}/login" "SITE" -> VAR "cap"
//	variables:
//	  domain: shop.test
//	config:
//	  provider: TwoCaptcha
//	  credentials:
//	    TwoCaptcha: { token: "k" }
//	provider:
//	  token: TOK123
//	run_id: run-a
//	expect:
//	  outcome: completed
//	assertions:
//	  - type: log_contains
//	    severity: info
//	    message: TOK123
//	  - type: variable
//	    variable: cap
//	    value: TOK123
//
// script_file may replace script; it is resolved relative to the scenario.
// The config section uses the same fields as a YAML config file.
//
// # Assertion Types
//
//   - log_contains: an entry (optionally of a severity) contains message
//   - log_order: entries containing messages appear in that order
//   - log_count: exactly count entries (optionally of a severity)
//   - variable: a variable is bound to value
//   - variable_unset: a variable is not bound
//
// # Deterministic Testing
//
// Every scenario runs with a fixed run ID, a stepping wall clock and a fresh
// in-memory SQLite store. Assertions read the run back from the store, so a
// passing scenario also proves the run log round-trips. Golden files hold the
// complete run log for comparison.
package harness
