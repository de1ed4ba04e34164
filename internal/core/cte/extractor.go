// Package cte extracts the ICMS freight credit from CT-e (transport) documents.
package cte

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"audit-service/internal/core/normalize"
	"audit-service/internal/domain"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
)

// maxArchiveDepth bounds the recursion into zip files nested in zip files.
const maxArchiveDepth = 8

// Protocol status codes of cancelled or denied documents.
var excludedCStat = map[string]bool{
	"101": true, // cancelamento homologado
	"135": true, // evento de cancelamento
	"110": true, // uso denegado
	"301": true, // irregularidade do emitente
	"302": true, // irregularidade do destinatário
}

// Extractor walks CT-e files and sums their ICMS.
type Extractor struct {
	logger *zap.Logger
}

// NewExtractor creates an Extractor. A nil logger disables logging.
func NewExtractor(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger}
}

type cfopAcc struct {
	documents int
	credit    decimal.Decimal
}

// batch holds the state of one extraction.
type batch struct {
	logger   *zap.Logger
	excluded map[string]bool
	seen     map[string]bool
	byCFOP   map[string]*cfopAcc
	total    decimal.Decimal
	result   domain.FreightCredit
}

// Extract processes .xml and .zip files. statusList is optional; keys it marks as
// cancelled or denied are left out of the credit.
func (x *Extractor) Extract(files []domain.SourceFile, statusList *domain.SourceFile) (*domain.FreightCredit, error) {
	b := &batch{
		logger:   x.logger,
		excluded: map[string]bool{},
		seen:     map[string]bool{},
		byCFOP:   map[string]*cfopAcc{},
		result:   domain.FreightCredit{ByCFOP: []domain.FreightCFOP{}, DocumentKeys: []string{}},
	}
	if statusList != nil {
		excluded, err := ParseStatusList(statusList.Reader)
		if err != nil {
			return nil, fmt.Errorf("falha ao ler lista de status %s: %w", statusList.Name, err)
		}
		b.excluded = excluded
	}

	for _, f := range files {
		data, err := io.ReadAll(f.Reader)
		if err != nil {
			return nil, fmt.Errorf("falha ao ler arquivo CT-e %s: %w", f.Name, err)
		}
		if err := b.walk(f.Name, data, 0); err != nil {
			return nil, err
		}
	}

	return b.finish(), nil
}

func (b *batch) walk(name string, data []byte, depth int) error {
	if !isZip(name, data) {
		b.document(name, data)
		return nil
	}
	if depth >= maxArchiveDepth {
		b.logger.Warn("Arquivo compactado aninhado demais, ignorado", zap.String("file", name))
		b.result.Invalid++
		return nil
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		if depth == 0 {
			return fmt.Errorf("falha ao abrir arquivo compactado %s: %w", name, err)
		}
		b.logger.Warn("Arquivo compactado inválido", zap.String("file", name), zap.Error(err))
		b.result.Invalid++
		return nil
	}

	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(zf.Name))
		if ext != ".xml" && ext != ".zip" {
			continue
		}
		content, err := readZipEntry(zf)
		if err != nil {
			b.logger.Warn("Falha ao ler item do arquivo compactado", zap.String("file", zf.Name), zap.Error(err))
			b.result.Invalid++
			continue
		}
		if err := b.walk(zf.Name, content, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func readZipEntry(zf *zip.File) ([]byte, error) {
	rc, err := zf.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func isZip(name string, data []byte) bool {
	return strings.EqualFold(filepath.Ext(name), ".zip") || bytes.HasPrefix(data, []byte("PK\x03\x04"))
}

// document handles a single XML document.
func (b *batch) document(name string, data []byte) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charsetReader
	if err := doc.ReadFromBytes(data); err != nil {
		b.logger.Warn("XML inválido", zap.String("file", name), zap.Error(err))
		b.result.Invalid++
		return
	}
	root := doc.Root()
	if root == nil {
		b.result.Invalid++
		return
	}

	var infCte *etree.Element
	switch root.Tag {
	case "cteProc":
		infCte = root.FindElement("CTe/infCte")
	case "CTe":
		infCte = root.FindElement("infCte")
	default:
		b.result.NonFreight++
		return
	}
	if infCte == nil {
		b.logger.Warn("CT-e sem infCte", zap.String("file", name))
		b.result.Invalid++
		return
	}

	key := elementText(root.FindElement("protCTe/infProt/chCTe"))
	if key == "" {
		key = strings.TrimPrefix(infCte.SelectAttrValue("Id", ""), "CTe")
	}
	if key == "" {
		b.logger.Warn("CT-e sem chave de acesso", zap.String("file", name))
		b.result.Invalid++
		return
	}

	if excludedCStat[elementText(root.FindElement("protCTe/infProt/cStat"))] || b.excluded[key] {
		b.result.Cancelled++
		return
	}
	if b.seen[key] {
		b.result.Duplicates++
		return
	}
	b.seen[key] = true

	credit := decimal.Zero
	if icms := infCte.FindElement("imp/ICMS"); icms != nil {
		credit = decimal.NewFromFloat(parseXMLNumber(elementText(icms.FindElement(".//vICMS"))))
	}
	cfop := normalize.NormalizeCFOP(elementText(infCte.FindElement("ide/CFOP")))

	acc, ok := b.byCFOP[cfop]
	if !ok {
		acc = &cfopAcc{}
		b.byCFOP[cfop] = acc
	}
	acc.documents++
	acc.credit = acc.credit.Add(credit)
	b.total = b.total.Add(credit)
	b.result.Documents++
	b.result.DocumentKeys = append(b.result.DocumentKeys, key)
}

func (b *batch) finish() *domain.FreightCredit {
	cfops := make([]string, 0, len(b.byCFOP))
	for cfop := range b.byCFOP {
		cfops = append(cfops, cfop)
	}
	sort.Strings(cfops)
	for _, cfop := range cfops {
		acc := b.byCFOP[cfop]
		b.result.ByCFOP = append(b.result.ByCFOP, domain.FreightCFOP{
			CFOP:      cfop,
			Documents: acc.documents,
			Credit:    acc.credit.InexactFloat64(),
		})
	}
	b.result.Total = b.total.InexactFloat64()

	b.logger.Info("Crédito de frete apurado",
		zap.Float64("total", b.result.Total),
		zap.Int("documents", b.result.Documents),
		zap.Int("duplicates", b.result.Duplicates),
		zap.Int("cancelled", b.result.Cancelled),
		zap.Int("non_freight", b.result.NonFreight),
		zap.Int("invalid", b.result.Invalid))

	result := b.result
	return &result
}

func elementText(e *etree.Element) string {
	if e == nil {
		return ""
	}
	return strings.TrimSpace(e.Text())
}

// parseXMLNumber reads the dot-decimal numbers of fiscal XML. Failures become 0.
func parseXMLNumber(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(label) {
	case "iso-8859-1", "latin1", "latin-1":
		return charmap.ISO8859_1.NewDecoder().Reader(input), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder().Reader(input), nil
	}
	return nil, fmt.Errorf("codificação não suportada: %s", label)
}
