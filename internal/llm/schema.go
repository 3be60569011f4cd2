package llm

// BuildEscrituraJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. We pass this to the model as a structured output constraint and
// also use it locally to validate the response. Every top-level field is
// required: unknown values come back as empty strings or empty lists, never as
// absent keys.
func BuildEscrituraJSONSchema() map[string]any {
	parte := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"rol":                     stringProp(),
			"nombre":                  stringProp(),
			"apellido":                stringProp(),
			"nacionalidad":            stringProp(),
			"fecha_nacimiento":        stringProp(),
			"tipo_documento":          stringProp(),
			"numero_documento":        stringProp(),
			"tipo_CUIL":               stringProp(),
			"numero_CUIL":             stringProp(),
			"estado_civil":            stringProp(),
			"nombre_apellido_conyuge": stringProp(),
			"domicilio":               stringProp(),
			"representacion":          stringProp(),
		},
		"required": []string{"rol", "nombre"},
	}

	nomenclatura := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"circunscripcion": stringProp(),
			"seccion":         stringProp(),
			"quinta":          stringProp(),
			"fraccion":        stringProp(),
			"manzana":         stringProp(),
			"parcela":         stringProp(),
			"subparcela":      stringProp(),
		},
		"required": []string{"circunscripcion", "seccion"},
	}

	propiedad := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"direccion":              stringProp(),
			"Partida":                stringProp(),
			"nomenclatura_catastral": map[string]any{"type": "array", "items": nomenclatura},
			"superficie":             stringProp(),
			"medidas":                stringProp(),
			"matricula":              stringProp(),
		},
		"required": []string{"direccion"},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"fecha_otorgamiento": stringProp(),
			"lugar_escritura":    stringProp(),
			// Arabic numerals only, even when the source writes the number in words.
			"numero_escritura":      map[string]any{"type": "string", "pattern": `^\d*$`},
			"folio_escritura":       stringProp(),
			"escribano":             stringProp(),
			"registro_escribano":    stringProp(),
			"partes_intervinientes": map[string]any{"type": "array", "items": parte},
			"descripcion_propiedad": propiedad,
			"valor_transaccion":     stringProp(),
			"observaciones":         stringProp(),
		},
		"required": []string{
			"fecha_otorgamiento", "lugar_escritura", "numero_escritura",
			"folio_escritura", "escribano", "registro_escribano",
			"partes_intervinientes", "descripcion_propiedad",
			"valor_transaccion", "observaciones",
		},
	}
}

func stringProp() map[string]any {
	return map[string]any{"type": "string"}
}
