package agenda

import "strings"

// Índices de dia seguem time.Weekday: 0=domingo .. 6=sábado.
var diasSemana = map[string]int{
	"domingo": 0,
	"segunda": 1,
	"terca":   2,
	"terça":   2,
	"quarta":  3,
	"quinta":  4,
	"sexta":   5,
	"sabado":  6,
	"sábado":  6,
}

var diasSemanaEN = map[string]int{
	"sunday":    0,
	"monday":    1,
	"tuesday":   2,
	"wednesday": 3,
	"thursday":  4,
	"friday":    5,
	"saturday":  6,
}

// DayIndex resolve um rótulo livre de dia da semana ("segunda-feira",
// "SÁBADO", "monday") para o índice canônico. Rótulos não reconhecidos
// devolvem ok=false e devem ser pulados pelo chamador, nunca tratados
// como erro fatal.
func DayIndex(label string) (int, bool) {
	s := strings.ToLower(strings.TrimSpace(label))
	if s == "" {
		return 0, false
	}

	variants := []string{
		s,
		strings.ReplaceAll(s, "-feira", ""),
		strings.ReplaceAll(s, " feira", ""),
		stripNonLetters(s),
	}
	for _, v := range variants {
		if idx, ok := diasSemana[v]; ok {
			return idx, true
		}
	}

	if idx, ok := diasSemanaEN[stripASCII(s)]; ok {
		return idx, true
	}
	return 0, false
}

// stripNonLetters remove tudo que não for letra minúscula ou vogal
// acentuada usada nos nomes de dias em português.
func stripNonLetters(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' {
			return r
		}
		switch r {
		case 'ç', 'á', 'à', 'ã', 'â', 'é', 'ê', 'í', 'ó', 'ô', 'õ', 'ú', 'ü':
			return r
		}
		return -1
	}, s)
}

func stripASCII(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' {
			return r
		}
		return -1
	}, s)
}
