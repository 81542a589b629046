package currency

var (
	zeroDecimalCodes = map[Code]struct{}{
		"AFN": {}, "ALL": {}, "BIF": {}, "CLP": {}, "COP": {}, "DJF": {}, "GNF": {},
		"IQD": {}, "IDR": {}, "IRR": {}, "ISK": {}, "JPY": {}, "KMF": {}, "KPW": {},
		"KRW": {}, "LAK": {}, "LBP": {}, "MGA": {}, "MMK": {}, "MRU": {}, "PYG": {},
		"RSD": {}, "RWF": {}, "SLL": {}, "SOS": {}, "SYP": {}, "TZS": {}, "UGX": {},
		"UYU": {}, "VND": {}, "VUV": {}, "XAF": {}, "XOF": {}, "XPF": {}, "YER": {},
	}

	threeDecimalCodes = map[Code]struct{}{
		"BHD": {}, "JOD": {}, "KWD": {}, "LYD": {}, "OMR": {}, "TND": {},
	}
)

// GetDecimals returns the number of digits after the decimal separator used
// for amounts in the currency. The smallest unit of the currency is
// 10^-GetDecimals(code).
func GetDecimals(code Code) int {
	if _, ok := zeroDecimalCodes[code]; ok {
		return 0
	}
	if _, ok := threeDecimalCodes[code]; ok {
		return 3
	}
	return 2
}
