package pool_test

// haltError is the TestError analogue from the original test suite: a work
// function raises it on its Nth call to exercise the shutdown protocol.
type haltError struct{}

func (haltError) Error() string { return "halt" }
