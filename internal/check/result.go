package check

// Result is the outcome of a single check evaluation. Reason is empty
// exactly when the check passed.
type Result struct {
	Failed bool
	Reason string
}

func pass() Result {
	return Result{}
}

func fail(reason string) Result {
	return Result{Failed: true, Reason: reason}
}
