// Package framework contains the low-level implementation of test harness infrastructure
// that can be reused for different kinds of browser tests.
//
// The general model is:
//
// 1. There is a general notion of a test context which is similar to Go's *testing.T,
// allowing pieces of test logic to be associated with a test identifier, to accumulate
// success/failure results, and to register cleanup functions that always run.
//
// 2. Every failure carries an ErrorKind, so that a result can say whether the application
// behaved wrongly (a failure) or the environment was broken (an error).
//
// 3. Waiting for something to happen in a browser is done by polling with WaitUntil, which
// is always bounded by a timeout and by the caller's context.
//
// The domain-specific code that knows what is being tested is responsible for starting the
// application, creating browser sessions, and providing a domain-specific test API on top of
// the test context.
package framework
