// Package allocation implements the 52-week challenge allocator: incoming
// deposits fund weekly targets (week N needs N * 10,000) strictly in order,
// never splitting a shortfall across weeks.
package allocation

import (
	"fmt"

	"github.com/jmukasa/savings-challenge-engine/internal/domain"
	"github.com/shopspring/decimal"
)

// Result is the updated week-coverage snapshot after one deposit.
type Result struct {
	CoveredWeeks []domain.WeekCoverage

	// CarryForward is whatever could not fully fund the next week. It is
	// retained whole; partial weeks never occur.
	CarryForward decimal.Decimal

	// CumulativeTotal is everything that was available to this allocation:
	// prior carry-forward plus the deposit.
	CumulativeTotal decimal.Decimal

	// NextWeek is the first unfunded week, or 53 once the challenge is
	// complete.
	NextWeek int
}

// Allocate runs the deposit against the account's allocation state. It is
// pure and deterministic: identical inputs always produce identical
// outputs. Deposits arriving after week 52 is funded cover no new weeks and
// simply grow the carry-forward.
func Allocate(priorCarry decimal.Decimal, priorNextWeek int, deposit decimal.Decimal) (Result, error) {
	if err := domain.ValidateAmount(deposit); err != nil {
		return Result{}, fmt.Errorf("Allocate: %w", err)
	}

	if priorCarry.IsNegative() {
		priorCarry = decimal.Zero
	}
	if priorNextWeek < 1 {
		priorNextWeek = 1
	}
	if priorNextWeek > domain.WeekComplete {
		priorNextWeek = domain.WeekComplete
	}

	available := priorCarry.Add(deposit)
	remaining := available

	var covered []domain.WeekCoverage
	week := priorNextWeek
	for week <= domain.ChallengeWeeks {
		target := domain.WeekTarget(week)
		if remaining.LessThan(target) {
			// Cannot fully fund this week; stop and keep the whole
			// remainder as carry-forward.
			break
		}

		broughtForward := decimal.Zero
		if week == priorNextWeek {
			broughtForward = priorCarry
		}

		remaining = remaining.Sub(target)
		covered = append(covered, domain.WeekCoverage{
			Week:           week,
			Target:         target,
			Allocated:      target,
			FullyCovered:   true,
			BroughtForward: broughtForward,
			RunningTotal:   available.Sub(remaining),
		})
		week++
	}

	next := priorNextWeek
	if len(covered) > 0 {
		next = covered[len(covered)-1].Week + 1
	}
	if next > domain.ChallengeWeeks {
		next = domain.WeekComplete
	}

	return Result{
		CoveredWeeks:    covered,
		CarryForward:    remaining,
		CumulativeTotal: available,
		NextWeek:        next,
	}, nil
}
