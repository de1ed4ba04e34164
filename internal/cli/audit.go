package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"audit-service/internal/core/audit"
	"audit-service/internal/domain"
	"audit-service/internal/report"

	"github.com/spf13/cobra"
)

type auditFlags struct {
	inbound   string
	outbound  string
	cte       []string
	cteStatus string
	xlsx      string
	pdf       string
	json      bool
}

func newAuditCmd(opts *options) *cobra.Command {
	f := &auditFlags{}
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Audita os livros a partir de arquivos locais",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, catalogue, err := opts.bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync()
			return runAudit(cmd.OutOrStdout(), audit.NewService(catalogue, logger), f)
		},
	}
	cmd.Flags().StringVar(&f.inbound, "inbound", "", "livro de entradas (.csv, .xls, .xlsx)")
	cmd.Flags().StringVar(&f.outbound, "outbound", "", "livro de saídas (.csv, .xls, .xlsx)")
	cmd.Flags().StringSliceVar(&f.cte, "cte", nil, "CT-e em .xml ou .zip (repetível)")
	cmd.Flags().StringVar(&f.cteStatus, "cte-status", "", "lista de status dos CT-e (chave;status)")
	cmd.Flags().StringVar(&f.xlsx, "xlsx", "", "grava a planilha de auditoria neste caminho")
	cmd.Flags().StringVar(&f.pdf, "pdf", "", "grava o resumo em PDF neste caminho")
	cmd.Flags().BoolVar(&f.json, "json", false, "imprime o relatório completo em JSON")
	_ = cmd.MarkFlagRequired("inbound")
	_ = cmd.MarkFlagRequired("outbound")
	return cmd
}

func runAudit(out io.Writer, svc audit.Service, f *auditFlags) (err error) {
	var files []*os.File
	defer func() {
		for _, fh := range files {
			fh.Close()
		}
	}()
	open := func(path string) (domain.SourceFile, error) {
		fh, err := os.Open(path)
		if err != nil {
			return domain.SourceFile{}, fmt.Errorf("erro ao abrir %s: %w", path, err)
		}
		files = append(files, fh)
		return domain.SourceFile{Name: filepath.Base(path), Reader: fh}, nil
	}

	var req audit.AuditRequest
	if req.Inbound, err = open(f.inbound); err != nil {
		return err
	}
	if req.Outbound, err = open(f.outbound); err != nil {
		return err
	}
	for _, path := range f.cte {
		src, err := open(path)
		if err != nil {
			return err
		}
		req.CTeFiles = append(req.CTeFiles, src)
	}
	if f.cteStatus != "" {
		src, err := open(f.cteStatus)
		if err != nil {
			return err
		}
		req.CTeStatus = &src
	}

	rep, err := svc.AuditLedgers(req)
	if err != nil {
		return err
	}

	if f.xlsx != "" {
		if err := writeOutput(f.xlsx, rep, report.WriteWorkbook); err != nil {
			return err
		}
	}
	if f.pdf != "" {
		if err := writeOutput(f.pdf, rep, report.WriteSummaryPDF); err != nil {
			return err
		}
	}

	if f.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	return printSummary(out, rep)
}

func writeOutput(path string, rep *domain.AuditReport, render func(*domain.AuditReport) ([]byte, error)) error {
	data, err := render(rep)
	if err != nil {
		return fmt.Errorf("erro ao gerar %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("erro ao gravar %s: %w", path, err)
	}
	return nil
}

func printSummary(out io.Writer, rep *domain.AuditReport) error {
	w := &errWriter{w: out}
	w.printf("Auditoria %s\n", rep.RunID)
	w.printf("Entradas: %d linhas, %d com inconsistência\n", len(rep.Inbound.Lines), rep.Inbound.NonCompliant)
	w.printf("Saídas:   %d linhas, %d com inconsistência\n", len(rep.Outbound.Lines), rep.Outbound.NonCompliant)
	w.printf("\n%-8s %18s %18s %18s  %s\n", "Imposto", "Débito", "Crédito", "Saldo", "Situação")
	for _, b := range rep.Balances.Balances {
		w.balance(string(b.Tax), b)
	}
	if fc := rep.FreightCredit; fc != nil {
		w.printf("\nCrédito de frete (CT-e): %s em %d documentos\n", report.FormatBRL(fc.Total), fc.Documents)
	}
	if adj := rep.Balances.AdjustedICMS; adj != nil {
		w.balance("ICMS*", *adj)
	}
	return w.err
}

// errWriter keeps the first write error.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

func (e *errWriter) balance(label string, b domain.TaxBalance) {
	e.printf("%-8s %18s %18s %18s  %s\n", label,
		report.FormatBRL(b.Debit), report.FormatBRL(b.Credit), report.FormatBRL(b.Net), b.Status)
}
