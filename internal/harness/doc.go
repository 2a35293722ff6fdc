// Package harness runs a conformance corpus through a parser and classifies
// the outcome against an exceptions file.
//
// # Pipeline
//
// Each corpus.TestRecord expands into at most two Scenarios:
//
//   - "<file>(default)": the source as written, unless the test is onlyStrict
//   - "<file>(strict mode)": the source prefixed with "'use strict';\n",
//     unless the test is noStrict or raw
//
// Every Scenario is probed once. The parser either accepts the source or
// raises; nothing else about the outcome is kept. A ProbeResult is then
// classified by two independent facts, whether the outcome matched the
// test's declaration and whether the scenario is listed in the exceptions
// file:
//
//	expected  actual  category       allowed iff
//	--------  ------  -------------  -----------
//	no error  none    success        not listed
//	no error  raised  falseNegative  listed
//	error     none    falsePositive  listed
//	error     raised  failure        not listed
//
// Exceptions entries that no scenario claimed are reported as unrecognized.
// A run passes only if every result is allowed and nothing is unrecognized.
//
// # Determinism
//
// Probes may run concurrently (Options.Jobs), but results are kept in
// generation order and classification is a single fold over them, so the
// Summary does not depend on scheduling.
//
// # Usage
//
//	records, err := corpus.Walk(ctx, "test262/test", corpus.Options{})
//	if err != nil {
//	    return err
//	}
//	set, err := exceptions.Load("test262_whitelist.txt")
//	if err != nil {
//	    return err
//	}
//	h, err := harness.New(harness.Options{Parser: p, Features: features})
//	if err != nil {
//	    return err
//	}
//	outcome, err := h.Run(ctx, records, set)
//	if err != nil {
//	    return err
//	}
//	if !outcome.Summary.Passed {
//	    ...
//	}
package harness
