// synthetic.go generates a book of Simulated accounts from a
// portfolio-assumptions table for the business-plan forecast mode.
// Contractual payments for amortising and bullet vintages are computed
// with go-financial's Pmt on shopspring/decimal inputs and rounded to the
// cent; interest-only payments are plain float64 interest and are not
// rounded.
package account

import (
	"strconv"
	"time"

	financial "github.com/razorpay/go-financial"
	"github.com/shopspring/decimal"
)

// PortfolioAssumption describes one origination vintage of a synthetic
// origination book: an origination amount booked on OriginationDate, with
// a fixed contract shape (term, rate, segment, rating, product type)
// shared by every contract in that vintage.
type PortfolioAssumption struct {
	SegmentID         int
	OriginationDate   time.Time
	OriginationAmount float64
	TermMonths        int
	AnnualRate        float64
	ContractualFreq   int
	ProductType       ProductType
	BalloonPct        float64 // for BULLET/IO: fraction of origination amount due at maturity
	LTV               float64 // loan-to-value; collateral_value = origination_amount/LTV when LTV>0
	OriginationRating int
	CurrentRating     int
	ReportingDate     time.Time
}

// ProductType selects the amortisation shape used to derive the
// contractual payment for a synthesized vintage.
type ProductType string

const (
	Amortising ProductType = "AMORTISING"
	InterestOnly ProductType = "IO"
	Bullet      ProductType = "BULLET"
)

// GenerateSyntheticBook builds one Account per PortfolioAssumption,
// computing the contractual payment via go-financial's Pmt and deriving
// collateral value from LTV, tagging every result AccountType=Simulated.
func GenerateSyntheticBook(assumptions []PortfolioAssumption) []Account {
	out := make([]Account, 0, len(assumptions))
	for i, pa := range assumptions {
		balloon := 0.0
		if pa.ProductType != Amortising {
			balloon = pa.OriginationAmount * pa.BalloonPct
		}

		rate := decimal.NewFromFloat(pa.AnnualRate / 12)
		nper := decimal.NewFromInt(int64(pa.TermMonths))
		pv := decimal.NewFromFloat(-pa.OriginationAmount)
		fv := decimal.NewFromFloat(balloon)

		var payment float64
		if pa.ProductType == InterestOnly {
			payment = pa.OriginationAmount * pa.AnnualRate / 12
		} else {
			pmt := financial.Pmt(rate, nper, pv, fv, financial.End)
			payment, _ = pmt.Round(2).Float64()
		}

		collateral := 0.0
		if pa.LTV > 0 {
			collateral = pa.OriginationAmount / pa.LTV
		}

		remainingLife := monthsBetween(pa.ReportingDate, monthEnd(pa.OriginationDate.AddDate(0, pa.TermMonths, 0)))
		if remainingLife < 1 {
			remainingLife = 1
		}

		out = append(out, Account{
			ContractID:         syntheticID(i),
			SegmentID:          pa.SegmentID,
			OutstandingBalance: pa.OriginationAmount,
			Limit:              pa.OriginationAmount,
			ContractualPayment: payment,
			ContractualFreq:    pa.ContractualFreq,
			InterestRateType:   Fixed,
			InterestRateFreq:   12,
			FixedRate:          pa.AnnualRate,
			OriginationDate:    pa.OriginationDate,
			MaturityDate:       monthEnd(pa.OriginationDate.AddDate(0, pa.TermMonths, 0)),
			ReportingDate:      pa.ReportingDate,
			RemainingLife:      remainingLife,
			CollateralValue:    collateral,
			OriginationRating:  pa.OriginationRating,
			CurrentRating:      pa.CurrentRating,
			AccountType:        Simulated,
		})
	}
	return out
}

func syntheticID(i int) string {
	return "SIM-" + strconv.Itoa(i)
}
