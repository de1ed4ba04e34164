package domain

import "errors"

// Erros de lote. Falhas por linha nunca viram erro.
var (
	ErrLedgerAusente       = errors.New("arquivo de entradas ou saídas ausente")
	ErrArquivoVazio        = errors.New("arquivo vazio")
	ErrFormatoNaoSuportado = errors.New("formato de arquivo não suportado")
	ErrRegrasInvalidas     = errors.New("catálogo de regras inválido")
)
