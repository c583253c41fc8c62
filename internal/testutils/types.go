package testutils

// TestingT is the subset of testing.TB the helpers report through.
type TestingT interface {
	Helper()
	Logf(format string, args ...interface{})
	Error(args ...interface{})
	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})
}
