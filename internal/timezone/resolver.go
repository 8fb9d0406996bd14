// Package timezone resolve o fuso IANA de uma academia a partir do campo
// explícito ou do endereço (UF), com fallback para o fuso padrão do processo.
package timezone

import "strings"

// Academia carrega apenas os campos necessários para resolução de fuso.
type Academia struct {
	Timezone string
	Country  string
	Region   string
}

// Resolver aplica a preferência: timezone explícito > UF do endereço > padrão.
type Resolver struct {
	def string
}

// NewResolver cria resolver com o fuso padrão do processo (ex.: APP_TIMEZONE).
func NewResolver(def string) Resolver {
	if strings.TrimSpace(def) == "" {
		def = "America/Sao_Paulo"
	}
	return Resolver{def: def}
}

// Default devolve o fuso padrão configurado.
func (r Resolver) Default() string {
	return r.def
}

// Mapeamento aproximado de UF -> fuso IANA para o Brasil.
var ufZones = map[string]string{
	// Sudeste/Sul/Centro-Oeste
	"SP": "America/Sao_Paulo", "RJ": "America/Sao_Paulo", "MG": "America/Sao_Paulo", "ES": "America/Sao_Paulo",
	"PR": "America/Sao_Paulo", "SC": "America/Sao_Paulo", "RS": "America/Sao_Paulo",
	"GO": "America/Sao_Paulo", "DF": "America/Sao_Paulo", "TO": "America/Sao_Paulo",
	"MS": "America/Cuiaba", "MT": "America/Cuiaba",
	// Nordeste
	"BA": "America/Bahia", "SE": "America/Recife", "AL": "America/Recife", "PE": "America/Recife",
	"PB": "America/Fortaleza", "RN": "America/Fortaleza", "CE": "America/Fortaleza", "PI": "America/Fortaleza",
	"MA": "America/Fortaleza",
	// Norte
	"PA": "America/Belem", "AP": "America/Belem",
	"AM": "America/Manaus", "RO": "America/Porto_Velho", "RR": "America/Boa_Vista",
	"AC": "America/Rio_Branco",
}

// Resolve nunca falha: sempre devolve um identificador de fuso utilizável.
func (r Resolver) Resolve(a *Academia) string {
	if a == nil {
		return r.def
	}
	if tz := strings.TrimSpace(a.Timezone); tz != "" {
		return tz
	}

	country := strings.ToUpper(strings.TrimSpace(a.Country))
	if country != "" && country != "BR" {
		// Fora do Brasil, manter o fuso padrão por enquanto.
		return r.def
	}

	uf := strings.ToUpper(strings.TrimSpace(a.Region))
	if zone, ok := ufZones[uf]; ok {
		return zone
	}
	return r.def
}

// Or devolve o candidato quando não vazio, senão o padrão. Usado para
// overrides por requisição (?timezone=).
func (r Resolver) Or(candidate string) string {
	if tz := strings.TrimSpace(candidate); tz != "" {
		return tz
	}
	return r.def
}
