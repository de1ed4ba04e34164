package domain

// --- Layout das planilhas gerenciais ---

// InboundColumns is the fixed column order of the inbound (entradas) export.
var InboundColumns = []string{
	"NUM_NF", "DATA_EMISSAO", "CNPJ", "UF", "VLR_NF", "AC", "CFOP", "COD_PROD", "DESCR", "NCM", "UNID",
	"VUNIT", "QTDE", "VPROD", "DESC", "FRETE", "SEG", "DESP", "VC", "CST-ICMS", "BC-ICMS", "VLR-ICMS",
	"BC-ICMS-ST", "ICMS-ST", "VLR_IPI", "CST_PIS", "BC_PIS", "VLR_PIS", "CST_COF", "BC_COF", "VLR_COF",
}

// OutboundColumns is the fixed column order of the outbound (saídas) export.
var OutboundColumns = []string{
	"NF", "DATA_EMISSAO", "CNPJ", "Ufp", "VC", "AC", "CFOP", "COD_ITEM", "DESC_ITEM", "NCM", "UND",
	"VUNIT", "QTDE", "VITEM", "DESC", "FRETE", "SEG", "OUTRAS", "VC_ITEM", "CST", "BC_ICMS", "ALIQ_ICMS",
	"ICMS", "BC_ICMSST", "ICMSST", "IPI", "CST_PIS Escriturado", "BC_PIS", "PIS", "CST_COF", "BC_COF", "COF",
}

var inboundValueColumns = []string{
	"VLR_NF", "VUNIT", "QTDE", "VPROD", "DESC", "FRETE", "SEG", "DESP", "VC", "BC-ICMS", "VLR-ICMS",
	"BC-ICMS-ST", "ICMS-ST", "VLR_IPI", "BC_PIS", "VLR_PIS", "BC_COF", "VLR_COF",
}

var outboundValueColumns = []string{
	"VC", "VUNIT", "QTDE", "VITEM", "DESC", "FRETE", "SEG", "OUTRAS", "VC_ITEM", "BC_ICMS", "ALIQ_ICMS",
	"ICMS", "BC_ICMSST", "ICMSST", "IPI", "BC_PIS", "PIS", "BC_COF", "COF",
}

// NumericColumns returns the positions of the amount, rate and quantity columns of dir.
func NumericColumns(dir Direction) []int {
	names := outboundValueColumns
	if dir == Inbound {
		names = inboundValueColumns
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	var idx []int
	for i, c := range Columns(dir) {
		if set[c] {
			idx = append(idx, i)
		}
	}
	return idx
}

// Columns returns the column layout of the given direction.
func Columns(dir Direction) []string {
	if dir == Inbound {
		return InboundColumns
	}
	return OutboundColumns
}

// InboundRecord is one raw row of the inbound export, still as text.
type InboundRecord struct {
	NumNF       string
	DataEmissao string
	CNPJ        string
	UF          string
	VlrNF       string
	AC          string
	CFOP        string
	CodProd     string
	Descr       string
	NCM         string
	Unid        string
	VUnit       string
	Qtde        string
	VProd       string
	Desc        string
	Frete       string
	Seg         string
	Desp        string
	VC          string
	CSTICMS     string
	BCICMS      string
	VlrICMS     string
	BCICMSST    string
	ICMSST      string
	VlrIPI      string
	CSTPIS      string
	BCPIS       string
	VlrPIS      string
	CSTCOF      string
	BCCOF       string
	VlrCOF      string
}

// NewInboundRecord maps cells by position. Missing cells become empty strings and
// extra cells are ignored.
func NewInboundRecord(cells []string) InboundRecord {
	c := pad(cells, len(InboundColumns))
	return InboundRecord{
		NumNF: c[0], DataEmissao: c[1], CNPJ: c[2], UF: c[3], VlrNF: c[4], AC: c[5], CFOP: c[6],
		CodProd: c[7], Descr: c[8], NCM: c[9], Unid: c[10], VUnit: c[11], Qtde: c[12], VProd: c[13],
		Desc: c[14], Frete: c[15], Seg: c[16], Desp: c[17], VC: c[18], CSTICMS: c[19], BCICMS: c[20],
		VlrICMS: c[21], BCICMSST: c[22], ICMSST: c[23], VlrIPI: c[24], CSTPIS: c[25], BCPIS: c[26],
		VlrPIS: c[27], CSTCOF: c[28], BCCOF: c[29], VlrCOF: c[30],
	}
}

// OutboundRecord is one raw row of the outbound export, still as text.
type OutboundRecord struct {
	NF          string
	DataEmissao string
	CNPJ        string
	UFDest      string
	VC          string
	AC          string
	CFOP        string
	CodItem     string
	DescItem    string
	NCM         string
	Und         string
	VUnit       string
	Qtde        string
	VItem       string
	Desc        string
	Frete       string
	Seg         string
	Outras      string
	VCItem      string
	CST         string
	BCICMS      string
	AliqICMS    string
	ICMS        string
	BCICMSST    string
	ICMSST      string
	IPI         string
	CSTPIS      string
	BCPIS       string
	PIS         string
	CSTCOF      string
	BCCOF       string
	COF         string
}

// NewOutboundRecord maps cells by position, like NewInboundRecord.
func NewOutboundRecord(cells []string) OutboundRecord {
	c := pad(cells, len(OutboundColumns))
	return OutboundRecord{
		NF: c[0], DataEmissao: c[1], CNPJ: c[2], UFDest: c[3], VC: c[4], AC: c[5], CFOP: c[6],
		CodItem: c[7], DescItem: c[8], NCM: c[9], Und: c[10], VUnit: c[11], Qtde: c[12], VItem: c[13],
		Desc: c[14], Frete: c[15], Seg: c[16], Outras: c[17], VCItem: c[18], CST: c[19], BCICMS: c[20],
		AliqICMS: c[21], ICMS: c[22], BCICMSST: c[23], ICMSST: c[24], IPI: c[25], CSTPIS: c[26],
		BCPIS: c[27], PIS: c[28], CSTCOF: c[29], BCCOF: c[30], COF: c[31],
	}
}

func pad(cells []string, n int) []string {
	out := make([]string, n)
	copy(out, cells)
	return out
}
