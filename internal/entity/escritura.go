package entity

// Parte is one intervening party. When a signer acts on behalf of a principal,
// the principal is the recorded party and Representacion describes the mandate.
type Parte struct {
	Rol                   string `json:"rol"`
	Nombre                string `json:"nombre"`
	Apellido              string `json:"apellido"`
	Nacionalidad          string `json:"nacionalidad"`
	FechaNacimiento       string `json:"fecha_nacimiento"`
	TipoDocumento         string `json:"tipo_documento"`
	NumeroDocumento       string `json:"numero_documento"`
	TipoCUIL              string `json:"tipo_CUIL"`
	NumeroCUIL            string `json:"numero_CUIL"`
	EstadoCivil           string `json:"estado_civil"`
	NombreApellidoConyuge string `json:"nombre_apellido_conyuge"`
	Domicilio             string `json:"domicilio"`
	Representacion        string `json:"representacion"`
}

// NomenclaturaCatastral locates the property in the land registry.
type NomenclaturaCatastral struct {
	Circunscripcion string `json:"circunscripcion"`
	Seccion         string `json:"seccion"`
	Quinta          string `json:"quinta"`
	Fraccion        string `json:"fraccion"`
	Manzana         string `json:"manzana"`
	Parcela         string `json:"parcela"`
	Subparcela      string `json:"subparcela"`
}

// Propiedad describes the conveyed property.
// The "Partida" JSON name keeps its historical capitalization; stored records
// depend on it.
type Propiedad struct {
	Direccion    string                  `json:"direccion"`
	Partida      string                  `json:"Partida"`
	Nomenclatura []NomenclaturaCatastral `json:"nomenclatura_catastral"`
	Superficie   string                  `json:"superficie"`
	Medidas      string                  `json:"medidas"`
	Matricula    string                  `json:"matricula"`
}

// Escritura is the structured record extracted from one public deed document.
// Escribano/RegistroEscribano refer to the signing notary named at the closing
// formula, never a notary cited as an antecedent.
type Escritura struct {
	FechaOtorgamiento    string    `json:"fecha_otorgamiento"`
	LugarEscritura       string    `json:"lugar_escritura"`
	NumeroEscritura      string    `json:"numero_escritura"`
	FolioEscritura       string    `json:"folio_escritura"`
	Escribano            string    `json:"escribano"`
	RegistroEscribano    string    `json:"registro_escribano"`
	PartesIntervinientes []Parte   `json:"partes_intervinientes"`
	DescripcionPropiedad Propiedad `json:"descripcion_propiedad"`
	ValorTransaccion     string    `json:"valor_transaccion"`
	Observaciones        string    `json:"observaciones"`
}

// Normalize enforces the empty-field policy: unknown values are empty strings
// and empty slices, never nil, so the record serializes with every key present.
func (e *Escritura) Normalize() {
	if e.PartesIntervinientes == nil {
		e.PartesIntervinientes = []Parte{}
	}
	if e.DescripcionPropiedad.Nomenclatura == nil {
		e.DescripcionPropiedad.Nomenclatura = []NomenclaturaCatastral{}
	}
}
