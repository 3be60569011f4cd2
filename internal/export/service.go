package export

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"escrituras/internal/entity"
	"escrituras/internal/repository"
)

// Service produces XLSX bytes for a stored deed record: one summary sheet and
// one sheet listing the intervening parties.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

const (
	sheetEscritura = "Escritura"
	sheetPartes    = "Partes"
)

// BuildWorkbook renders one stored record as an XLSX workbook.
func (s *Service) BuildWorkbook(rec *repository.StoredEscritura) ([]byte, error) {
	start := time.Now()
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", sheetEscritura); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(sheetPartes); err != nil {
		return nil, err
	}

	e := rec.Record
	summary := [][2]string{
		{"Número de carpeta", fmt.Sprintf("%d", rec.NumeroCarpeta)},
		{"Fecha de otorgamiento", e.FechaOtorgamiento},
		{"Lugar", e.LugarEscritura},
		{"Número de escritura", e.NumeroEscritura},
		{"Folio", e.FolioEscritura},
		{"Escribano", e.Escribano},
		{"Registro del escribano", e.RegistroEscribano},
		{"Dirección del inmueble", e.DescripcionPropiedad.Direccion},
		{"Partida", e.DescripcionPropiedad.Partida},
		{"Nomenclatura catastral", formatNomenclatura(e.DescripcionPropiedad.Nomenclatura)},
		{"Superficie", e.DescripcionPropiedad.Superficie},
		{"Medidas y linderos", e.DescripcionPropiedad.Medidas},
		{"Matrícula", e.DescripcionPropiedad.Matricula},
		{"Valor de la transacción", e.ValorTransaccion},
		{"Observaciones", e.Observaciones},
		{"Fecha de creación", rec.FechaCreacion.Format("2006-01-02 15:04")},
		{"Última modificación", rec.UltimaModificacion.Format("2006-01-02 15:04")},
	}
	for i, kv := range summary {
		if err := setCell(f, sheetEscritura, 1, i+1, kv[0]); err != nil {
			return nil, err
		}
		if err := setCell(f, sheetEscritura, 2, i+1, kv[1]); err != nil {
			return nil, err
		}
	}

	headers := []string{
		"Rol", "Nombre", "Apellido", "Nacionalidad", "Fecha de nacimiento",
		"Tipo de documento", "Número de documento", "Tipo CUIL", "Número CUIL",
		"Estado civil", "Cónyuge", "Domicilio", "Representación",
	}
	for i, h := range headers {
		if err := setCell(f, sheetPartes, i+1, 1, h); err != nil {
			return nil, err
		}
	}
	for r, p := range e.PartesIntervinientes {
		cols := []string{
			p.Rol, p.Nombre, p.Apellido, p.Nacionalidad, p.FechaNacimiento,
			p.TipoDocumento, p.NumeroDocumento, p.TipoCUIL, p.NumeroCUIL,
			p.EstadoCivil, p.NombreApellidoConyuge, p.Domicilio, p.Representacion,
		}
		for c, v := range cols {
			if err := setCell(f, sheetPartes, c+1, r+2, v); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	s.logger.Info("workbook built",
		"numero_carpeta", rec.NumeroCarpeta,
		"partes", len(e.PartesIntervinientes),
		"bytes", buf.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func setCell(f *excelize.File, sheet string, col, row int, v any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, v)
}

func formatNomenclatura(noms []entity.NomenclaturaCatastral) string {
	if len(noms) == 0 {
		return ""
	}
	parts := make([]string, 0, len(noms))
	for _, n := range noms {
		fields := []string{}
		add := func(label, v string) {
			if v != "" {
				fields = append(fields, label+" "+v)
			}
		}
		add("Circ.", n.Circunscripcion)
		add("Secc.", n.Seccion)
		add("Quinta", n.Quinta)
		add("Fracc.", n.Fraccion)
		add("Manz.", n.Manzana)
		add("Parc.", n.Parcela)
		add("Subparc.", n.Subparcela)
		parts = append(parts, strings.Join(fields, ", "))
	}
	return strings.Join(parts, " | ")
}
