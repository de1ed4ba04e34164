// internal/core/audit/service.go
package audit

import (
	"fmt"

	"audit-service/internal/core/cte"
	"audit-service/internal/core/ledger"
	"audit-service/internal/core/normalize"
	"audit-service/internal/core/rules"
	"audit-service/internal/domain"
	"audit-service/internal/report"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// AuditRequest carries the input files of one audit run. CTeFiles and
// CTeStatus are optional.
type AuditRequest struct {
	Inbound   domain.SourceFile
	Outbound  domain.SourceFile
	CTeFiles  []domain.SourceFile
	CTeStatus *domain.SourceFile
}

// Service define a interface do serviço de auditoria.
type Service interface {
	AuditLedgers(req AuditRequest) (*domain.AuditReport, error)
	ExtractFreightCredit(files []domain.SourceFile, statusList *domain.SourceFile) (*domain.FreightCredit, error)
	Rules() *rules.Catalogue
}

type service struct {
	catalogue *rules.Catalogue
	engine    *Engine
	ledgers   *ledger.Reader
	freight   *cte.Extractor
	logger    *zap.Logger
}

// NewService cria o serviço de auditoria sobre o catálogo de regras informado.
func NewService(catalogue *rules.Catalogue, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		catalogue: catalogue,
		engine:    NewEngine(catalogue),
		ledgers:   ledger.NewReader(logger),
		freight:   cte.NewExtractor(logger),
		logger:    logger,
	}
}

func (s *service) Rules() *rules.Catalogue {
	return s.catalogue
}

func (s *service) ExtractFreightCredit(files []domain.SourceFile, statusList *domain.SourceFile) (*domain.FreightCredit, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("nenhum arquivo CT-e informado: %w", domain.ErrArquivoVazio)
	}
	return s.freight.Extract(files, statusList)
}

// AuditLedgers loads both ledgers (and the CT-e batch, when present) in parallel,
// audits every row and aggregates the balances and CFOP summaries.
func (s *service) AuditLedgers(req AuditRequest) (*domain.AuditReport, error) {
	if req.Inbound.Reader == nil || req.Outbound.Reader == nil {
		return nil, domain.ErrLedgerAusente
	}

	var (
		inRows, outRows []ledger.Row
		freight         *domain.FreightCredit
		g               errgroup.Group
	)
	g.Go(func() error {
		rows, err := s.ledgers.Read(req.Inbound, domain.Inbound)
		if err != nil {
			return fmt.Errorf("livro de entradas: %w", err)
		}
		inRows = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.ledgers.Read(req.Outbound, domain.Outbound)
		if err != nil {
			return fmt.Errorf("livro de saídas: %w", err)
		}
		outRows = rows
		return nil
	})
	if len(req.CTeFiles) > 0 {
		g.Go(func() error {
			fc, err := s.freight.Extract(req.CTeFiles, req.CTeStatus)
			if err != nil {
				return fmt.Errorf("fretes CT-e: %w", err)
			}
			freight = fc
			return nil
		})
	} else if req.CTeStatus != nil {
		s.logger.Warn("Lista de status CT-e ignorada: nenhum CT-e informado", zap.String("file", req.CTeStatus.Name))
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	inbound, inLines := s.auditLedger(domain.Inbound, inRows)
	outbound, outLines := s.auditLedger(domain.Outbound, outRows)

	rep := &domain.AuditReport{
		RunID:         uuid.NewString(),
		Inbound:       inbound,
		Outbound:      outbound,
		Balances:      AggregateBalances(inLines, outLines, freight),
		FreightCredit: freight,
	}

	fields := []zap.Field{
		zap.String("run_id", rep.RunID),
		zap.Int("inbound_rows", len(inbound.Lines)),
		zap.Int("inbound_non_compliant", inbound.NonCompliant),
		zap.Int("outbound_rows", len(outbound.Lines)),
		zap.Int("outbound_non_compliant", outbound.NonCompliant),
	}
	for _, b := range rep.Balances.Balances {
		fields = append(fields, zap.Float64("net_"+string(b.Tax), b.Net))
	}
	if freight != nil {
		fields = append(fields, zap.Float64("freight_credit", freight.Total))
	}
	s.logger.Info("Auditoria concluída", fields...)

	return rep, nil
}

func (s *service) auditLedger(dir domain.Direction, rows []ledger.Row) (domain.LedgerResult, []domain.TransactionLine) {
	result := domain.LedgerResult{
		Direction: dir,
		Columns:   domain.Columns(dir),
		Lines:     make([]domain.AuditedLine, 0, len(rows)),
	}
	lines := make([]domain.TransactionLine, 0, len(rows))
	for _, r := range rows {
		line := normalize.Row(dir, r.Cells, r.Number)
		diag := s.engine.Audit(line)
		if !diag.Compliant() {
			result.NonCompliant++
		}
		result.Lines = append(result.Lines, domain.AuditedLine{
			Source:     r.Cells,
			Line:       line,
			Diagnostic: diag,
			Rendered:   report.RenderDiagnostic(diag),
		})
		lines = append(lines, line)
	}
	result.Summary = BuildCFOPSummary(lines, s.catalogue.Summary.ExemptCSTs)
	return result, lines
}
