// Package report implements the run report sinks: CSV audit files on
// local disk and an optional S3 upload of the finished artifacts.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ignite/catalog-sync/internal/sync"
	"github.com/ignite/catalog-sync/internal/xbz"
)

const (
	skippedFile  = "skipped_products.csv"
	errorFile    = "error_products.csv"
	snapshotFile = "produtos_xbz.csv"
	summaryFile  = "run_summary.json"
)

var skippedHeader = []string{"codigo", "motivo"}
var errorHeader = []string{"codigo", "motivo", "mensagem", "fault_code"}

var snapshotHeader = []string{
	"CodigoComposto",
	"Nome",
	"CorWebPrincipal",
	"Descricao",
	"PrecoVenda",
	"Altura",
	"Largura",
	"Profundidade",
	"Peso",
	"QuantidadeDisponivelEstoquePrincipal",
	"Ncm",
}

// CSVSink writes the run artifacts to a directory. Rows are flushed as
// they are appended so the audit trail survives a crashed run.
type CSVSink struct {
	dir string

	skipFile *os.File
	skipCSV  *csv.Writer
	failFile *os.File
	failCSV  *csv.Writer
}

// NewCSVSink creates the sink directory if needed.
func NewCSVSink(dir string) (*CSVSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create report dir: %w", err)
	}
	return &CSVSink{dir: dir}, nil
}

// Dir returns the sink directory.
func (s *CSVSink) Dir() string { return s.dir }

// SnapshotSource writes the full source catalog, one row per record,
// with source-native column names.
func (s *CSVSink) SnapshotSource(products []xbz.Product) error {
	f, err := os.Create(filepath.Join(s.dir, snapshotFile))
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(snapshotHeader); err != nil {
		return err
	}
	for _, p := range products {
		row := []string{
			p.CodigoComposto,
			p.Nome,
			p.CorWebPrincipal,
			p.Descricao,
			formatFloat(float64(p.PrecoVenda)),
			formatFloat(p.Altura),
			formatFloat(p.Largura),
			formatFloat(p.Profundidade),
			formatFloat(p.Peso),
			strconv.Itoa(p.QuantidadeDisponivelEstoquePrincipal),
			p.Ncm,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// AppendSkip appends one row to skipped_products.csv, writing the header
// on first use.
func (s *CSVSink) AppendSkip(d sync.SkipDetail) error {
	if s.skipCSV == nil {
		f, w, err := s.open(skippedFile, skippedHeader)
		if err != nil {
			return err
		}
		s.skipFile, s.skipCSV = f, w
	}
	if err := s.skipCSV.Write([]string{d.Codigo, d.Motivo}); err != nil {
		return err
	}
	s.skipCSV.Flush()
	return s.skipCSV.Error()
}

// AppendFailure appends one row to error_products.csv, writing the
// header on first use.
func (s *CSVSink) AppendFailure(d sync.FailDetail) error {
	if s.failCSV == nil {
		f, w, err := s.open(errorFile, errorHeader)
		if err != nil {
			return err
		}
		s.failFile, s.failCSV = f, w
	}
	if err := s.failCSV.Write([]string{d.Codigo, d.Motivo, d.Mensagem, d.FaultCode}); err != nil {
		return err
	}
	s.failCSV.Flush()
	return s.failCSV.Error()
}

// Finalize writes the run summary JSON and closes the row files.
func (s *CSVSink) Finalize(report *sync.RunReport) error {
	defer s.Close()

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run summary: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, summaryFile), data, 0o644); err != nil {
		return fmt.Errorf("write run summary: %w", err)
	}
	return nil
}

// Close flushes and closes any open row files.
func (s *CSVSink) Close() {
	if s.skipCSV != nil {
		s.skipCSV.Flush()
		s.skipFile.Close()
		s.skipFile, s.skipCSV = nil, nil
	}
	if s.failCSV != nil {
		s.failCSV.Flush()
		s.failFile.Close()
		s.failFile, s.failCSV = nil, nil
	}
}

func (s *CSVSink) open(name string, header []string) (*os.File, *csv.Writer, error) {
	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", name, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, w, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
