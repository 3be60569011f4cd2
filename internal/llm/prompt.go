package llm

import "strings"

const maxPromptTextLen = 60000

// BuildSystemPrompt composes the fixed extraction rules. The rules are kept in
// Spanish, matching the language of the documents: the signing-notary
// disambiguation, the represented-party rule, deed-number normalization and
// the empty-field policy are heuristic instructions to the model, not
// deterministic parses.
func BuildSystemPrompt() string {
	parts := []string{
		"Sos un extractor de datos de escrituras públicas argentinas. " +
			"Devolvé ÚNICAMENTE un objeto JSON que cumpla el esquema provisto. " +
			"Extraé la información exclusivamente de la escritura pública actual.",

		// Signing notary: the one at the closing formula, never an antecedent.
		"Escribano firmante: la escritura puede mencionar varios escribanos. " +
			"Identificá únicamente al escribano firmante, que siempre está mencionado " +
			"al final del documento, en la fórmula de cierre o en la firma, después de " +
			"las palabras 'Ante mí' y antes de la palabra 'CONCUERDA'. " +
			"No uses escribanos citados como antecedentes, autorizantes de documentos " +
			"previos ni reemplazantes. El folio y el registro también deben " +
			"corresponder al escribano firmante, al final del documento.",

		// Represented principal, not the signer.
		"Partes intervinientes: identificá a los comparecientes verdaderos. " +
			"Si una persona actúa en nombre y representación de otra persona física o " +
			"jurídica, el interviniente es el representado, no el representante; " +
			"registrá al representante solo en el campo 'representacion' de esa parte. " +
			"Si hay más de una parte representada, listalas por separado. " +
			"Para personas físicas incluí rol, nombre, apellido, nacionalidad, fecha " +
			"de nacimiento, documento de identidad, estado civil y domicilio. " +
			"Para personas jurídicas incluí rol, nombre y domicilio. " +
			"Siempre indicá el rol en la escritura (ej. Vendedor, Comprador).",

		// Deed number normalization.
		"Número de escritura: devolvelo en número arábigo (ej. 435) aunque esté " +
			"escrito en letras en el texto.",

		// Empty-field policy.
		"Datos faltantes: si un campo no aparece en el texto, devolvelo como cadena " +
			"vacía (\"\") o lista vacía. Nunca uses null ni omitas claves.",
	}
	return strings.Join(parts, "\n\n")
}

// BuildUserPrompt packages the document text, capped defensively so a very
// long scanned deed cannot blow the request.
func BuildUserPrompt(req ExtractRequest) string {
	var b strings.Builder
	if f := strings.TrimSpace(req.FilenameHint); f != "" {
		b.WriteString("Archivo: ")
		b.WriteString(f)
		b.WriteString("\n")
	}
	b.WriteString("\nTexto de la escritura pública:\n")
	text := req.Text
	if len(text) > maxPromptTextLen {
		b.WriteString(text[:maxPromptTextLen])
		b.WriteString("\n…(truncado)")
	} else {
		b.WriteString(text)
	}
	return b.String()
}
