package check

import (
	"context"
	"fmt"
	"strings"
)

// QueryRunner executes a read-only query and reports the number of rows
// it returned. *store.Store satisfies this.
type QueryRunner interface {
	ProbeQuery(ctx context.Context, query string) (int, error)
}

// QueryChecker validates and executes scheduled database checks. A check
// passes purely on row existence; row contents are irrelevant.
type QueryChecker struct {
	runner QueryRunner
}

// NewQueryChecker builds a checker backed by the given runner.
func NewQueryChecker(runner QueryRunner) QueryChecker {
	return QueryChecker{runner: runner}
}

// Evaluate runs a scheduled check query. Only SELECT statements are ever
// executed; anything else fails before reaching the database.
func (c QueryChecker) Evaluate(ctx context.Context, query string) Result {
	normalized := strings.TrimSpace(query)
	if normalized == "" {
		return fail("Missing query for scheduled check")
	}
	if !strings.HasPrefix(strings.ToLower(normalized), "select") {
		return fail("Only SELECT queries are supported")
	}

	rows, err := c.runner.ProbeQuery(ctx, normalized)
	if err != nil {
		return fail(fmt.Sprintf("Query failed: %s", err))
	}
	if rows == 0 {
		return fail("Query returned no rows")
	}
	return pass()
}
