// Package catalog holds the static reference lists offered when a simulation
// is configured.
package catalog

// Option is one selectable value with its display label.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

var financialEntities = []Option{
	{Value: "bcp", Label: "Banco de Crédito del Perú"},
	{Value: "bbva", Label: "BBVA Continental"},
	{Value: "interbank", Label: "Interbank"},
	{Value: "scotiabank", Label: "Scotiabank"},
	{Value: "banbif", Label: "BanBif"},
	{Value: "pichincha", Label: "Banco Pichincha"},
	{Value: "mibanco", Label: "Mibanco"},
	{Value: "cajaArequipa", Label: "Caja Arequipa"},
	{Value: "cajaHuancayo", Label: "Caja Huancayo"},
	{Value: "cajaPiura", Label: "Caja Piura"},
}

var housingPrograms = []Option{
	{Value: "techoPropio", Label: "Techo Propio"},
	{Value: "miVivienda", Label: "Nuevo Crédito MiVivienda"},
	{Value: "miViviendaVerde", Label: "MiVivienda Verde"},
	{Value: "convencional", Label: "Crédito Hipotecario Convencional"},
}

// FinancialEntities returns the lenders a simulation can target.
func FinancialEntities() []Option {
	return append([]Option(nil), financialEntities...)
}

// HousingPrograms returns the housing programs a simulation can target.
func HousingPrograms() []Option {
	return append([]Option(nil), housingPrograms...)
}

// Lookup returns the label for value, or value itself when it is not listed.
func Lookup(options []Option, value string) string {
	for _, o := range options {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}

// Contains reports whether value is one of the options.
func Contains(options []Option, value string) bool {
	for _, o := range options {
		if o.Value == value {
			return true
		}
	}
	return false
}
