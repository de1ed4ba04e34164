package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"audit-service/internal/api/responses"
	"audit-service/internal/core/audit"
	"audit-service/internal/domain"
	"audit-service/internal/report"

	"github.com/gin-gonic/gin"
)

// Formatos de saída aceitos por HandleAudit.
const (
	FormatJSON = "json"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	pdfContentType  = "application/pdf"
)

var ledgerExtensions = []string{".csv", ".txt", ".xls", ".xlsx"}

// AuditHandler lida com as requisições de auditoria dos livros fiscais.
type AuditHandler struct {
	service   audit.Service
	maxUpload int64
}

// NewAuditHandler cria um novo handler de auditoria. maxUpload limita o corpo
// da requisição em bytes; zero desativa o limite.
func NewAuditHandler(service audit.Service, maxUpload int64) *AuditHandler {
	return &AuditHandler{
		service:   service,
		maxUpload: maxUpload,
	}
}

// HandleAudit audita os livros de entradas e saídas, com CT-e opcionais.
func (h *AuditHandler) HandleAudit(c *gin.Context) {
	h.limitBody(c)

	format := strings.ToLower(c.DefaultPostForm("format", FormatJSON))
	if format != FormatJSON && format != FormatXLSX && format != FormatPDF {
		responses.Error(c, http.StatusBadRequest, fmt.Sprintf("Formato de saída não suportado: %s", format))
		return
	}

	inbound, closeIn, ok := openLedger(c, "inboundFile", "Livro de Entradas")
	if !ok {
		return
	}
	defer closeIn()

	outbound, closeOut, ok := openLedger(c, "outboundFile", "Livro de Saídas")
	if !ok {
		return
	}
	defer closeOut()

	cteFiles, closeCTe, err := openMany(c, "cteFiles")
	if err != nil {
		uploadError(c, http.StatusInternalServerError, "Não foi possível abrir os arquivos CT-e", err)
		return
	}
	defer closeCTe()

	status, closeStatus, err := openOptional(c, "cteStatusFile")
	if err != nil {
		uploadError(c, http.StatusInternalServerError, "Não foi possível abrir a lista de status dos CT-e", err)
		return
	}
	defer closeStatus()

	rep, err := h.service.AuditLedgers(audit.AuditRequest{
		Inbound:   inbound,
		Outbound:  outbound,
		CTeFiles:  cteFiles,
		CTeStatus: status,
	})
	if err != nil {
		serviceError(c, "Erro ao auditar os livros", err)
		return
	}

	stamp := time.Now().Format("20060102_150405")
	switch format {
	case FormatXLSX:
		data, err := report.WriteWorkbook(rep)
		if err != nil {
			responses.Error(c, http.StatusInternalServerError, "Erro ao gerar a planilha", err.Error())
			return
		}
		responses.File(c, xlsxContentType, fmt.Sprintf("Auditoria_%s.xlsx", stamp), data)
	case FormatPDF:
		data, err := report.WriteSummaryPDF(rep)
		if err != nil {
			responses.Error(c, http.StatusInternalServerError, "Erro ao gerar o PDF", err.Error())
			return
		}
		responses.File(c, pdfContentType, fmt.Sprintf("Apuracao_%s.pdf", stamp), data)
	default:
		responses.Success(c, rep, "Auditoria concluída")
	}
}

// HandleFreightCredit apura o crédito de ICMS sobre fretes de um lote de CT-e.
func (h *AuditHandler) HandleFreightCredit(c *gin.Context) {
	h.limitBody(c)

	files, closeCTe, err := openMany(c, "cteFiles")
	if err != nil {
		uploadError(c, http.StatusInternalServerError, "Não foi possível abrir os arquivos CT-e", err)
		return
	}
	defer closeCTe()
	if len(files) == 0 {
		responses.Error(c, http.StatusBadRequest, "Nenhum arquivo CT-e (.xml, .zip) informado")
		return
	}

	status, closeStatus, err := openOptional(c, "cteStatusFile")
	if err != nil {
		uploadError(c, http.StatusInternalServerError, "Não foi possível abrir a lista de status dos CT-e", err)
		return
	}
	defer closeStatus()

	fc, err := h.service.ExtractFreightCredit(files, status)
	if err != nil {
		serviceError(c, "Erro ao processar os CT-e", err)
		return
	}
	responses.Success(c, fc, "Crédito de frete apurado")
}

// HandleRules devolve o catálogo de regras ativo.
func (h *AuditHandler) HandleRules(c *gin.Context) {
	responses.Success(c, h.service.Rules(), "Catálogo de regras ativo")
}

const maxUploadKey = "max_upload"

func (h *AuditHandler) limitBody(c *gin.Context) {
	if h.maxUpload > 0 {
		c.Set(maxUploadKey, h.maxUpload)
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	}
}

// serviceError maps batch errors caused by the input to 400.
func serviceError(c *gin.Context, message string, err error) {
	code := http.StatusInternalServerError
	if errors.Is(err, domain.ErrArquivoVazio) ||
		errors.Is(err, domain.ErrFormatoNaoSuportado) ||
		errors.Is(err, domain.ErrLedgerAusente) {
		code = http.StatusBadRequest
	}
	responses.Error(c, code, message, err.Error())
}

// uploadError answers 413 when the body went past the upload limit and code otherwise.
func uploadError(c *gin.Context, code int, message string, err error) {
	if tooLarge(err) {
		responses.Error(c, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("Arquivos excedem o limite de upload de %d bytes", c.GetInt64(maxUploadKey)), err.Error())
		return
	}
	responses.Error(c, code, message, err.Error())
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large")
}

func noop() {}

func openLedger(c *gin.Context, field, label string) (domain.SourceFile, func(), bool) {
	header, err := c.FormFile(field)
	if err != nil {
		uploadError(c, http.StatusBadRequest, fmt.Sprintf("%s (.csv, .xls, .xlsx) não encontrado ou inválido", label), err)
		return domain.SourceFile{}, noop, false
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	supported := false
	for _, e := range ledgerExtensions {
		if ext == e {
			supported = true
			break
		}
	}
	if !supported {
		responses.Error(c, http.StatusBadRequest, fmt.Sprintf("Extensão de arquivo não suportada para o %s: %s", label, ext))
		return domain.SourceFile{}, noop, false
	}
	f, err := header.Open()
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, fmt.Sprintf("Não foi possível abrir o %s", label))
		return domain.SourceFile{}, noop, false
	}
	return domain.SourceFile{Name: header.Filename, Reader: f}, func() { f.Close() }, true
}

func openOptional(c *gin.Context, field string) (*domain.SourceFile, func(), error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, noop, nil
		}
		return nil, noop, err
	}
	f, err := header.Open()
	if err != nil {
		return nil, noop, err
	}
	return &domain.SourceFile{Name: header.Filename, Reader: f}, func() { f.Close() }, nil
}

// openMany opens every file under field, accepting both "cteFiles" and "cteFiles[]".
func openMany(c *gin.Context, field string) ([]domain.SourceFile, func(), error) {
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, noop, nil
		}
		return nil, noop, err
	}
	var headers []*multipart.FileHeader
	headers = append(headers, form.File[field]...)
	headers = append(headers, form.File[field+"[]"]...)

	var (
		files   []domain.SourceFile
		closers []io.Closer
	)
	closeAll := func() {
		for _, cl := range closers {
			cl.Close()
		}
	}
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, noop, fmt.Errorf("%s: %w", fh.Filename, err)
		}
		closers = append(closers, f)
		files = append(files, domain.SourceFile{Name: fh.Filename, Reader: f})
	}
	return files, closeAll, nil
}
