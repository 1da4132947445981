package commission

import "github.com/shopspring/decimal"

// Commission types: which of the two inputs is authoritative.
const (
	TypeAmount  = "amount"
	TypePercent = "percent"
)

// GSTRatePercent is the fixed GST rate applied to invoice commission. It is
// statutory, not per-invoice configuration.
const GSTRatePercent = 18

var (
	hundred = decimal.NewFromInt(100)
	gstRate = decimal.NewFromInt(GSTRatePercent)
)

// Resolve converts a commission input to a concrete amount.
//
// Under the amount type the amount input is authoritative and returned as
// given; under the percent type the percentage is authoritative and the
// amount is round2(base * percent / 100). The non-authoritative input is
// ignored entirely, never folded back into the other.
func Resolve(commissionType string, amountInput, percentInput, baseAmount decimal.Decimal) decimal.Decimal {
	if commissionType == TypePercent {
		return baseAmount.Mul(percentInput).Div(hundred).Round(2)
	}
	return amountInput
}

// Net is the commission payout after GST, floored at zero.
func Net(commissionAmount, gst decimal.Decimal) decimal.Decimal {
	net := commissionAmount.Sub(gst)
	if net.IsNegative() {
		return decimal.Zero
	}
	return net
}

// Figures are the four amounts printed on a commission invoice.
type Figures struct {
	Taxable    decimal.Decimal `json:"taxable"`
	GSTAmount  decimal.Decimal `json:"gst_amount"`
	TDSAmount  decimal.Decimal `json:"tds_amount"`
	NetPayable decimal.Decimal `json:"net_payable"`
}

// InvoiceFigures computes the invoice breakdown for a commission amount.
// GST is added at the fixed rate, TDS is withheld at the given percentage,
// and rounding happens once, on the final figures, so intermediate error
// does not compound.
func InvoiceFigures(commissionAmount, tdsPercentage decimal.Decimal) Figures {
	taxable := commissionAmount
	gstAmount := taxable.Mul(gstRate).Div(hundred)
	tdsAmount := taxable.Mul(tdsPercentage).Div(hundred)
	netPayable := taxable.Add(gstAmount).Sub(tdsAmount)

	return Figures{
		Taxable:    taxable.Round(2),
		GSTAmount:  gstAmount.Round(2),
		TDSAmount:  tdsAmount.Round(2),
		NetPayable: netPayable.Round(2),
	}
}
