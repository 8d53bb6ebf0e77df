package models

// Methodology names one of the three valuation approaches.
type Methodology string

const (
	MethodDCF              Methodology = "dcf"
	MethodTransactionComps Methodology = "transaction_comps"
	MethodAssetBased       Methodology = "asset_based"
)

// Methodologies lists every methodology in reporting order.
var Methodologies = []Methodology{MethodDCF, MethodTransactionComps, MethodAssetBased}

// Label returns a human-readable name.
func (m Methodology) Label() string {
	switch m {
	case MethodDCF:
		return "Discounted Cash Flow"
	case MethodTransactionComps:
		return "Precedent Transaction Comparables"
	case MethodAssetBased:
		return "Asset-Based Valuation"
	}
	return string(m)
}
