// Package stats provides the statistical primitives the causal engine is
// built from: normal distribution helpers, ordinary least squares with
// coefficient standard errors, logistic regression via Newton–Raphson, and
// Fisher-z partial-correlation independence tests.
//
// Every routine that consumes randomness takes an explicit *rand.Rand so
// callers control seeding; nothing reads ambient global randomness.
package stats
