// Package normalize converts raw ledger text into typed TransactionLines.
// Nothing here fails: unreadable values fall back to 0.0 or to domain.NoCode.
package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"audit-service/internal/domain"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// ParseNumber reads a Brazilian formatted number ("1.234,56"). Thousands
// separators are dropped and the decimal comma becomes a dot. Anything that
// does not parse, or is not finite and non-negative, becomes 0.0.
func ParseNumber(val string) float64 {
	s := whitespaceRegex.ReplaceAllString(val, "")
	if s == "" {
		return 0.0
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0.0
	}
	return f
}

// NormalizeCFOP strips periods and surrounding spaces. Empty, "nan" and "None"
// map to domain.NoCode. Applying it twice gives the same result.
func NormalizeCFOP(raw string) string {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ".", ""))
	switch strings.ToLower(s) {
	case "", "nan", "none":
		return domain.NoCode
	}
	return s
}

// NormalizeCST keeps the last two characters of the code, which drops the
// origin digit of three-digit codes ("060" -> "60"). Shorter codes are
// left-padded with zeros.
func NormalizeCST(raw string) string {
	r := []rune(strings.TrimSpace(raw))
	if len(r) >= 2 {
		return string(r[len(r)-2:])
	}
	return strings.Repeat("0", 2-len(r)) + string(r)
}

// RemoveAccents strips combining marks ("São" -> "Sao").
func RemoveAccents(raw string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(func(r rune) bool {
		return unicode.Is(unicode.Mn, r)
	}), norm.NFC)
	result, _, err := transform.String(t, raw)
	if err != nil {
		return raw
	}
	return result
}

// NormalizeUF upper-cases a state code and removes accents and spaces.
func NormalizeUF(raw string) string {
	return strings.ToUpper(whitespaceRegex.ReplaceAllString(RemoveAccents(raw), ""))
}

// FromInbound builds a line from an inbound record. Inbound rows carry no
// declared rate nor destination state.
func FromInbound(rec domain.InboundRecord, row int) domain.TransactionLine {
	return domain.TransactionLine{
		Direction:       domain.Inbound,
		Row:             row,
		DocumentNumber:  strings.TrimSpace(rec.NumNF),
		IssueDate:       strings.TrimSpace(rec.DataEmissao),
		CFOP:            NormalizeCFOP(rec.CFOP),
		CST:             NormalizeCST(rec.CSTICMS),
		CSTRaw:          strings.TrimSpace(rec.CSTICMS),
		ItemValue:       ParseNumber(rec.VProd),
		AccountingValue: ParseNumber(rec.VC),
		TaxBase:         ParseNumber(rec.BCICMS),
		ICMS:            ParseNumber(rec.VlrICMS),
		STBase:          ParseNumber(rec.BCICMSST),
		ST:              ParseNumber(rec.ICMSST),
		IPI:             ParseNumber(rec.VlrIPI),
		Freight:         ParseNumber(rec.Frete),
		Discount:        ParseNumber(rec.Desc),
		PIS:             ParseNumber(rec.VlrPIS),
		COFINS:          ParseNumber(rec.VlrCOF),
	}
}

// FromOutbound builds a line from an outbound record.
func FromOutbound(rec domain.OutboundRecord, row int) domain.TransactionLine {
	return domain.TransactionLine{
		Direction:       domain.Outbound,
		Row:             row,
		DocumentNumber:  strings.TrimSpace(rec.NF),
		IssueDate:       strings.TrimSpace(rec.DataEmissao),
		CFOP:            NormalizeCFOP(rec.CFOP),
		CST:             NormalizeCST(rec.CST),
		CSTRaw:          strings.TrimSpace(rec.CST),
		ItemValue:       ParseNumber(rec.VItem),
		AccountingValue: ParseNumber(rec.VCItem),
		TaxBase:         ParseNumber(rec.BCICMS),
		Rate:            ParseNumber(rec.AliqICMS),
		ICMS:            ParseNumber(rec.ICMS),
		STBase:          ParseNumber(rec.BCICMSST),
		ST:              ParseNumber(rec.ICMSST),
		IPI:             ParseNumber(rec.IPI),
		Freight:         ParseNumber(rec.Frete),
		Discount:        ParseNumber(rec.Desc),
		PIS:             ParseNumber(rec.PIS),
		COFINS:          ParseNumber(rec.COF),
		DestinationUF:   NormalizeUF(rec.UFDest),
	}
}

// Row dispatches on direction, for callers holding untyped cells.
func Row(dir domain.Direction, cells []string, row int) domain.TransactionLine {
	if dir == domain.Inbound {
		return FromInbound(domain.NewInboundRecord(cells), row)
	}
	return FromOutbound(domain.NewOutboundRecord(cells), row)
}
