package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"audit-service/internal/api/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	inboundCSV  = "1;;;;;;1102;;;;;;;500,00;;;;;500,00;000;500,00;60,00\n"
	outboundCSV = "11;;;SP;;;5102;;;;;;;1.000,00;;;;;1.000,00;000;1.000,00;18,00;180,00\n" +
		"12;;;BA;;;6403;;;;;;;;;;;;;010;;12,00;0,00\n"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeLedgers(t *testing.T) (string, string, string) {
	t.Helper()
	dir := t.TempDir()
	in := filepath.Join(dir, "entradas.csv")
	out := filepath.Join(dir, "saidas.csv")
	require.NoError(t, os.WriteFile(in, []byte(inboundCSV), 0o644))
	require.NoError(t, os.WriteFile(out, []byte(outboundCSV), 0o644))
	return dir, in, out
}

func TestAuditCmd_Resumo(t *testing.T) {
	dir, in, out := writeLedgers(t)
	xlsx := filepath.Join(dir, "auditoria.xlsx")
	pdf := filepath.Join(dir, "apuracao.pdf")

	stdout, err := run(t, "audit", "--inbound", in, "--outbound", out, "--xlsx", xlsx, "--pdf", pdf)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Saídas:   2 linhas, 1 com inconsistência")
	assert.Contains(t, stdout, "R$ 120,00")
	assert.Contains(t, stdout, "Recolher")

	data, err := os.ReadFile(xlsx)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("PK")))
	data, err = os.ReadFile(pdf)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestAuditCmd_JSON(t *testing.T) {
	_, in, out := writeLedgers(t)

	stdout, err := run(t, "audit", "--inbound", in, "--outbound", out, "--json")
	require.NoError(t, err)

	var rep struct {
		RunID    string `json:"run_id"`
		Outbound struct {
			NonCompliant int `json:"non_compliant"`
		} `json:"outbound"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &rep))
	assert.NotEmpty(t, rep.RunID)
	assert.Equal(t, 1, rep.Outbound.NonCompliant)
}

func TestAuditCmd_Erros(t *testing.T) {
	_, in, _ := writeLedgers(t)

	_, err := run(t, "audit", "--inbound", in)
	assert.Error(t, err)

	_, err = run(t, "audit", "--inbound", in, "--outbound", filepath.Join(t.TempDir(), "nao-existe.csv"))
	assert.ErrorContains(t, err, "nao-existe.csv")
}

func TestRulesCmd(t *testing.T) {
	stdout, err := run(t, "rules")
	require.NoError(t, err)
	assert.Contains(t, stdout, "optional_cst:")
	assert.Contains(t, stdout, "cfop_prefix:")
}

func TestRulesCmd_ArquivoPersonalizado(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regras.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tolerances:\n  icms_calculation: 0.10\n  base_understatement: 2\n"), 0o644))

	stdout, err := run(t, "--rules", path, "rules")
	require.NoError(t, err)
	assert.Contains(t, stdout, "icms_calculation: 0.1")

	require.NoError(t, os.WriteFile(path, []byte("tolerances:\n  icms_calculation: -1\n"), 0o644))
	_, err = run(t, "--rules", path, "rules")
	assert.Error(t, err)
}

func TestTokenCmd(t *testing.T) {
	t.Setenv("JWT_SECRET", "segredo")
	stdout, err := run(t, "token", "--user", "ana", "--roles", "auditor")
	require.NoError(t, err)

	user, roles, err := middleware.ParseToken("segredo", strings.TrimSpace(stdout))
	require.NoError(t, err)
	assert.Equal(t, "ana", user)
	assert.Equal(t, []string{"auditor"}, roles)
}

func TestTokenCmd_SemSegredo(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := run(t, "token", "--user", "ana")
	assert.ErrorIs(t, err, errSemSegredo)
}
