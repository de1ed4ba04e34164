// Package ledger reads the inbound and outbound ledger exports into raw,
// fixed-width rows. It does not interpret values; that is the normalizer's job.
package ledger

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"audit-service/internal/domain"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Row is one data row of a ledger, already padded or truncated to the schema width.
// Number is the 1-based position of the record in the source file.
type Row struct {
	Number int
	Cells  []string
}

// Reader loads ledger files.
type Reader struct {
	logger *zap.Logger
}

// NewReader creates a Reader. A nil logger disables logging.
func NewReader(logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{logger: logger}
}

// Read loads file using the column layout of dir. The format is chosen by extension.
func (r *Reader) Read(file domain.SourceFile, dir domain.Direction) ([]Row, error) {
	data, err := io.ReadAll(file.Reader)
	if err != nil {
		return nil, fmt.Errorf("falha ao ler arquivo %s: %w", file.Name, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%s: %w", file.Name, domain.ErrArquivoVazio)
	}

	var records [][]string
	ext := strings.ToLower(filepath.Ext(file.Name))
	switch ext {
	case ".csv", ".txt":
		records, err = readCSV(data)
	case ".xlsx", ".xls":
		records, err = loadWorkbook(data)
		if err == nil {
			commaDecimals(records, domain.NumericColumns(dir))
		}
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrFormatoNaoSuportado, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("falha ao processar arquivo %s: %w", file.Name, err)
	}

	return r.toRows(records, file.Name, dir), nil
}

// toRows drops blank rows and a leading header, then fits every row to the schema.
func (r *Reader) toRows(records [][]string, name string, dir domain.Direction) []Row {
	columns := domain.Columns(dir)
	matcher := newHeaderMatcher(columns)

	rows := make([]Row, 0, len(records))
	first := true
	for i, cells := range records {
		if isBlank(cells) {
			continue
		}
		if first {
			first = false
			if header, misplaced := matcher.inspect(cells); header {
				r.logger.Warn("Linha de cabeçalho ignorada",
					zap.String("file", name),
					zap.String("direction", string(dir)),
					zap.Int("row", i+1))
				if len(misplaced) > 0 {
					r.logger.Warn("Colunas fora da ordem esperada",
						zap.String("file", name),
						zap.Strings("columns", misplaced))
				}
				continue
			}
		}
		rows = append(rows, Row{Number: i + 1, Cells: fit(cells, len(columns))})
	}
	return rows
}

func readCSV(data []byte) ([][]string, error) {
	decoder := charmap.ISO8859_1.NewDecoder()
	reader := csv.NewReader(transform.NewReader(bytes.NewReader(data), decoder))
	reader.Comma = ';'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

// loadWorkbook reads the first sheet of an .xlsx or legacy .xls workbook.
func loadWorkbook(data []byte) ([][]string, error) {
	reader := bytes.NewReader(data)

	// tenta xlsx
	f, err := excelize.OpenReader(reader)
	if err == nil {
		defer f.Close()
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("a planilha não contém abas")
		}
		return f.GetRows(sheets[0])
	}

	// tenta xls
	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	workbook, err := xls.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: planilha ilegível", domain.ErrFormatoNaoSuportado)
	}
	if len(workbook.GetSheets()) == 0 {
		return nil, fmt.Errorf("o arquivo .xls não contém planilhas")
	}
	sheet, err := workbook.GetSheet(0)
	if err != nil {
		return nil, fmt.Errorf("erro ao obter planilha do arquivo .xls: %w", err)
	}
	var rows [][]string
	for _, row := range sheet.GetRows() {
		var cells []string
		for _, cell := range row.GetCols() {
			cells = append(cells, cell.GetString())
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// commaDecimals rewrites the value columns of workbook rows to the comma
// decimal form of the CSV exports. Numeric cells come out of excelize and
// xlsReader as "1000.5" or "1,000.50"; the last separator is the decimal one.
func commaDecimals(records [][]string, columns []int) {
	for _, cells := range records {
		for _, i := range columns {
			if i < len(cells) {
				cells[i] = commaDecimal(cells[i])
			}
		}
	}
}

func commaDecimal(raw string) string {
	s := strings.TrimSpace(raw)
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	if lastDot <= lastComma {
		// sem ponto decimal: só notação científica precisa de ajuste ("2E-05")
		if f, err := strconv.ParseFloat(s, 64); err == nil && strings.ContainsAny(s, "eE") {
			return strings.Replace(strconv.FormatFloat(f, 'f', -1, 64), ".", ",", 1)
		}
		return raw
	}

	s = strings.ReplaceAll(s, ",", "")
	if strings.Count(s, ".") > 1 {
		parts := strings.Split(s, ".")
		s = strings.Join(parts[:len(parts)-1], "") + "." + parts[len(parts)-1]
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		s = strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strings.Replace(s, ".", ",", 1)
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// fit pads short rows with empty cells and truncates long ones.
func fit(cells []string, width int) []string {
	out := make([]string, width)
	copy(out, cells)
	return out
}
