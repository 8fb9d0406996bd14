package agenda

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var errHorarioInvalido = errors.New("horário inválido")

// WeekStart devolve o instante UTC da meia-noite local do domingo mais
// recente no fuso informado.
//
// A busca é feita em duas fases: recuo grosseiro de 24h em UTC até o dia
// cair num domingo local, depois conversão precisa da data local para
// meia-noite via time.Date no fuso. Isso evita erros de aritmética em
// semanas com transição de horário de verão.
func WeekStart(loc *time.Location, ref time.Time) time.Time {
	d := ref
	for i := 0; i < 7; i++ {
		if d.In(loc).Weekday() == time.Sunday {
			break
		}
		d = d.Add(-24 * time.Hour)
	}
	year, month, day := d.In(loc).Date()
	return time.Date(year, month, day, 0, 0, 0, 0, loc).UTC()
}

// WeekEnd é o fim exclusivo da janela semanal.
func WeekEnd(weekStart time.Time) time.Time {
	return weekStart.Add(7 * 24 * time.Hour)
}

// OccurrenceInstant calcula o instante UTC de "HH:MM" local no dia
// (weekStart + dayIndex) do fuso informado, com a mesma conversão segura
// de WeekStart.
//
// O horário persistido é validado no caminho de escrita; aqui um valor
// malformado devolve erro em vez de um instante silenciosamente errado.
func OccurrenceInstant(weekStart time.Time, dayIndex int, horario string, loc *time.Location) (time.Time, error) {
	hh, mm, err := parseHorario(horario)
	if err != nil {
		return time.Time{}, err
	}

	target := weekStart.Add(time.Duration(dayIndex) * 24 * time.Hour)
	year, month, day := target.In(loc).Date()
	return time.Date(year, month, day, hh, mm, 0, 0, loc).UTC(), nil
}

func parseHorario(horario string) (int, int, error) {
	parts := strings.SplitN(strings.TrimSpace(horario), ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", errHorarioInvalido, horario)
	}
	hh, err := strconv.Atoi(parts[0])
	if err != nil || hh < 0 || hh > 23 {
		return 0, 0, fmt.Errorf("%w: %q", errHorarioInvalido, horario)
	}
	mm, err := strconv.Atoi(parts[1])
	if err != nil || mm < 0 || mm > 59 {
		return 0, 0, fmt.Errorf("%w: %q", errHorarioInvalido, horario)
	}
	return hh, mm, nil
}

// TempoRestante formata a distância até dataHora como "2d 3h 15m".
// Devolve nil quando o instante já passou.
func TempoRestante(now, dataHora time.Time) *string {
	diff := dataHora.Sub(now)
	if diff <= 0 {
		return nil
	}

	total := int(diff.Minutes())
	d := total / 1440
	h := (total % 1440) / 60
	m := total % 60

	var parts []string
	if d > 0 {
		parts = append(parts, strconv.Itoa(d)+"d")
	}
	if h > 0 {
		parts = append(parts, strconv.Itoa(h)+"h")
	}
	parts = append(parts, strconv.Itoa(m)+"m")

	out := strings.Join(parts, " ")
	return &out
}
