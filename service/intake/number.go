package intake

import (
	"context"
	"fmt"

	"github.com/viant/budgetflow/service/dao"
)

// NumberPrefix returns the request number prefix for year, e.g. EXE-2026-.
func NumberPrefix(year int) string {
	return fmt.Sprintf("EXE-%04d-", year)
}

// RequestNumber formats the human identifier EXE-<year>-<seq>.
func RequestNumber(year, sequence int) string {
	return fmt.Sprintf("%s%04d", NumberPrefix(year), sequence)
}

// nextNumber derives the next number of year from the requests already
// stored, inside the caller's transaction.
func nextNumber(ctx context.Context, tx dao.Reader, year int) (string, error) {
	count, err := tx.CountRequestNumbers(ctx, NumberPrefix(year))
	if err != nil {
		return "", err
	}
	return RequestNumber(year, count+1), nil
}
