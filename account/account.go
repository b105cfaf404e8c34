// Package account models the Account entity plus, for the
// business-plan forecast mode, synthesis of a book of simulated accounts
// from a portfolio-assumptions table.
package account

import (
	"time"

	"github.com/jiangshenghai57/zmodel/scenario"
)

// Type distinguishes accounts actually observed on the book from ones
// synthesised for a business-plan forecast.
type Type string

const (
	Actual    Type = "Actual"
	Simulated Type = "Simulated"
)

// InterestRateType is re-declared here (rather than imported from
// assumptions) to keep the account package free of a dependency on the
// segment-assumption schema; the ECL composer is responsible for wiring
// an Account's fields into the matching assumption type.
type InterestRateType string

const (
	Fixed InterestRateType = "FIXED"
	Float InterestRateType = "FLOAT"
)

// Account is the immutable per-contract record tracked on the book.
type Account struct {
	ContractID           string
	SegmentID            int
	OutstandingBalance   float64
	Limit                float64
	CurrentArrears       float64
	ContractualPayment   float64
	ContractualFreq      int
	InterestRateType     InterestRateType
	InterestRateFreq     int
	FixedRate            float64
	Spread               float64
	OriginationDate      time.Time
	PaymentHolidayEnd    *time.Time
	MaturityDate         time.Time
	ReportingDate        time.Time
	RemainingLife        int
	CollateralValue      float64
	OriginationRating    int
	CurrentRating        int
	Watchlist            int // 0 = not on watchlist, else 1..3
	AccountType          Type
}

// TimeOnBook returns months(reporting - origination).
func (a Account) TimeOnBook() int {
	return monthsBetween(a.OriginationDate, a.ReportingDate)
}

// ReportingMonth returns the account's reporting date expressed as a
// scenario.MonthIndex, computed as year*12 + (month-1), so month 0 is
// January of year 0 (month-end convention).
func (a Account) ReportingMonth() scenario.MonthIndex {
	return monthIndexOf(a.ReportingDate)
}

// MonthsUntilHolidayEnd returns how many months from the reporting date
// until the payment holiday ends, or 0 if there is none / it has passed.
func (a Account) MonthsUntilHolidayEnd() int {
	if a.PaymentHolidayEnd == nil {
		return 0
	}
	m := monthsBetween(a.ReportingDate, *a.PaymentHolidayEnd)
	if m < 0 {
		return 0
	}
	return m
}

// WithReportingOffset returns a copy of the account with its reporting
// date (and therefore its derived month index) shifted forward by the
// given number of months, used by the dynamic balance-sheet forecast mode
// to re-run the static pipeline at successive future reporting dates.
func (a Account) WithReportingOffset(months int) Account {
	out := a
	out.ReportingDate = addMonths(a.ReportingDate, months)
	return out
}

func monthIndexOf(t time.Time) scenario.MonthIndex {
	return scenario.MonthIndex(t.Year()*12 + int(t.Month()) - 1)
}

func monthsBetween(from, to time.Time) int {
	return int(monthIndexOf(to) - monthIndexOf(from))
}

func addMonths(t time.Time, months int) time.Time {
	return monthEnd(t.AddDate(0, months, 0))
}

// monthEnd normalises a date to the last day of its month, matching the
// month-end calendar convention used throughout the engine.
func monthEnd(t time.Time) time.Time {
	firstOfNext := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, 1, 0)
	return firstOfNext.AddDate(0, 0, -1)
}
