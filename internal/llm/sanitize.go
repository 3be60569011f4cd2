package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var reDigits = regexp.MustCompile(`\d+`)

var parteKeys = []string{
	"rol", "nombre", "apellido", "nacionalidad", "fecha_nacimiento",
	"tipo_documento", "numero_documento", "tipo_CUIL", "numero_CUIL",
	"estado_civil", "nombre_apellido_conyuge", "domicilio", "representacion",
}

var nomenclaturaKeys = []string{
	"circunscripcion", "seccion", "quinta", "fraccion", "manzana",
	"parcela", "subparcela",
}

var propiedadStringKeys = []string{
	"direccion", "Partida", "superficie", "medidas", "matricula",
}

var escrituraStringKeys = []string{
	"fecha_otorgamiento", "lugar_escritura", "numero_escritura",
	"folio_escritura", "escribano", "registro_escribano",
	"valor_transaccion", "observaciones",
}

// NormalizeEscrituraJSON repairs the common ways a model response drifts from
// the schema without inventing data:
//   - missing or null fields become "" / empty lists (empty-field policy)
//   - numbers arrive as JSON numbers and are coerced to strings
//   - numero_escritura keeps only its digits
//   - unknown keys are removed (additionalProperties is false)
//
// It returns the cleaned document plus a list of repairs for logging.
func NormalizeEscrituraJSON(raw []byte) ([]byte, []string, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	var repairs []string
	note := func(format string, args ...any) {
		repairs = append(repairs, fmt.Sprintf(format, args...))
	}

	fillStrings(m, escrituraStringKeys, "", note)

	// numero_escritura: digits only
	if s, ok := m["numero_escritura"].(string); ok {
		if d := reDigits.FindString(s); d != "" && d != s {
			m["numero_escritura"] = d
			note("numero_escritura(%q->%q)", s, d)
		}
	}

	// partes_intervinientes
	partes, _ := m["partes_intervinientes"].([]any)
	cleanPartes := make([]any, 0, len(partes))
	for i, p := range partes {
		pm, ok := p.(map[string]any)
		if !ok {
			note("partes_intervinientes[%d](not an object)", i)
			continue
		}
		fillStrings(pm, parteKeys, fmt.Sprintf("partes_intervinientes[%d].", i), note)
		dropUnknown(pm, parteKeys, note)
		cleanPartes = append(cleanPartes, pm)
	}
	m["partes_intervinientes"] = cleanPartes

	// descripcion_propiedad
	prop, ok := m["descripcion_propiedad"].(map[string]any)
	if !ok {
		prop = map[string]any{}
		note("descripcion_propiedad(missing)")
	}
	fillStrings(prop, propiedadStringKeys, "descripcion_propiedad.", note)

	noms, _ := prop["nomenclatura_catastral"].([]any)
	cleanNoms := make([]any, 0, len(noms))
	for i, n := range noms {
		nm, ok := n.(map[string]any)
		if !ok {
			note("nomenclatura_catastral[%d](not an object)", i)
			continue
		}
		fillStrings(nm, nomenclaturaKeys, fmt.Sprintf("nomenclatura_catastral[%d].", i), note)
		dropUnknown(nm, nomenclaturaKeys, note)
		cleanNoms = append(cleanNoms, nm)
	}
	prop["nomenclatura_catastral"] = cleanNoms
	dropUnknown(prop, append(propiedadStringKeys, "nomenclatura_catastral"), note)
	m["descripcion_propiedad"] = prop

	topKeys := append(escrituraStringKeys, "partes_intervinientes", "descripcion_propiedad")
	dropUnknown(m, topKeys, note)

	out, err := json.Marshal(m)
	if err != nil {
		return nil, repairs, fmt.Errorf("sanitize: encode: %w", err)
	}
	return out, repairs, nil
}

// fillStrings coerces every listed key to a trimmed string, writing "" for
// missing, null, or unusable values.
func fillStrings(m map[string]any, keys []string, prefix string, note func(string, ...any)) {
	for _, k := range keys {
		v, ok := m[k]
		if !ok {
			m[k] = ""
			note("%s%s(missing)", prefix, k)
			continue
		}
		switch t := v.(type) {
		case string:
			m[k] = strings.TrimSpace(t)
		case float64:
			if t == float64(int64(t)) {
				m[k] = fmt.Sprintf("%d", int64(t))
			} else {
				m[k] = fmt.Sprintf("%v", t)
			}
			note("%s%s(number)", prefix, k)
		case nil:
			m[k] = ""
			note("%s%s(null)", prefix, k)
		default:
			m[k] = ""
			note("%s%s(type)", prefix, k)
		}
	}
}

func dropUnknown(m map[string]any, allowed []string, note func(string, ...any)) {
	set := make(map[string]struct{}, len(allowed))
	for _, k := range allowed {
		set[k] = struct{}{}
	}
	for k := range m {
		if _, ok := set[k]; !ok {
			delete(m, k)
			note("%s(unknown)", k)
		}
	}
}
