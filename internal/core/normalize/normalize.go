// Package normalize contém os parsers puros de valores de célula: números em
// formato BR/EN, datas (string ou serial Excel), horas (decimal, duração ou
// serial) e CNPJ. Nenhuma função faz I/O nem retorna erro: entrada
// irreconhecível vira "sem valor" (ok=false) ou zero, conforme o contrato de
// cada parser.
package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	brNumberRegex = regexp.MustCompile(`^\d{1,3}(\.\d{3})*,\d{1,2}$`)
	durationRegex = regexp.MustCompile(`^(\d+):(\d{1,2})(?::(\d{1,2}))?$`)
	dateBRRegex   = regexp.MustCompile(`^(\d{1,2})[\/\-](\d{1,2})[\/\-](\d{4})$`)
	dateISORegex  = regexp.MustCompile(`^(\d{4})[\/\-](\d{1,2})[\/\-](\d{1,2})$`)
	nonDigitRegex = regexp.MustCompile(`\D`)
)

// Round2 arredonda para 2 casas decimais (valores monetários e horas).
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ParseNumber interpreta um número em formato BR (1.234,56) ou EN (1234.56).
// Quando a string tem ponto E vírgula, o separador mais à direita é tratado
// como decimal e o outro removido como milhar. Vazio ou irreconhecível
// retorna ok=false ("sem valor").
func ParseNumber(val string) (float64, bool) {
	s := strings.TrimSpace(val)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	if s == "" {
		return 0, false
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		s = strings.Replace(s, ",", ".", 1)
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseMonetary interpreta um valor monetário; célula vazia vale 0 (zero
// explícito, contexto monetário; ver ParseNumber para o contexto em que
// vazio significa "desconhecido").
func ParseMonetary(val string) float64 {
	s := strings.TrimSpace(val)
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, "R$", "")
	if brNumberRegex.MatchString(strings.TrimSpace(s)) {
		clean := strings.ReplaceAll(strings.TrimSpace(s), ".", "")
		clean = strings.Replace(clean, ",", ".", 1)
		if n, err := strconv.ParseFloat(clean, 64); err == nil {
			return n
		}
	}
	if n, ok := ParseNumber(s); ok {
		return n
	}
	return 0
}

// excelEpoch é a base do serial de data do Excel (30/12/1899).
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// ExcelSerialToDate converte um serial Excel (dias desde 30/12/1899) em data.
func ExcelSerialToDate(serial float64) time.Time {
	days := int(serial)
	frac := serial - float64(days)
	return excelEpoch.AddDate(0, 0, days).Add(time.Duration(frac * 24 * float64(time.Hour)))
}

// Seriais fora deste intervalo não são tratados como datas (evita confundir
// anos como "2024" ou contagens com seriais Excel).
const (
	minDateSerial = 20000 // ~1954
	maxDateSerial = 60000 // ~2064
)

// ParseDateISO normaliza uma célula de data para YYYY-MM-DD. Aceita
// DD/MM/YYYY, YYYY-MM-DD e serial Excel. O sentinela "00/00/0000" e qualquer
// formato irreconhecível retornam ok=false, nunca um palpite.
func ParseDateISO(val string) (string, bool) {
	s := strings.TrimSpace(val)
	if s == "" || s == "00/00/0000" {
		return "", false
	}
	if m := dateBRRegex.FindStringSubmatch(s); m != nil {
		d, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		y, _ := strconv.Atoi(m[3])
		if !validYMD(y, mo, d) {
			return "", false
		}
		return isoDate(y, mo, d), true
	}
	if m := dateISORegex.FindStringSubmatch(s); m != nil {
		y, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		d, _ := strconv.Atoi(m[3])
		if !validYMD(y, mo, d) {
			return "", false
		}
		return isoDate(y, mo, d), true
	}
	if f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64); err == nil {
		if f >= minDateSerial && f <= maxDateSerial {
			return ExcelSerialToDate(f).Format("2006-01-02"), true
		}
	}
	return "", false
}

func validYMD(y, mo, d int) bool {
	if y < 1900 || y > 2200 || mo < 1 || mo > 12 || d < 1 || d > 31 {
		return false
	}
	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	return t.Day() == d && int(t.Month()) == mo
}

func isoDate(y, mo, d int) string {
	return time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
}

// ParseDecimalHours interpreta horas já em decimal (ex.: 1.5, 318.55, "1,5").
// Não remove ponto como milhar quando não há vírgula (evita 318.55 → 31855).
func ParseDecimalHours(val string) (float64, bool) {
	s := strings.TrimSpace(val)
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, false
	}
	if strings.Contains(s, ".") && strings.Contains(s, ",") {
		return ParseNumber(s)
	}
	n, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseDurationHours converte o "Total de Horas" de um TimeSheets para horas
// decimais. Aceita "HH:MM[:SS]", serial Excel de tempo (fração de dia,
// multiplicada por 24) ou número já em horas. A desambiguação de 0<x<1
// (meia hora vs. meio dia) é responsabilidade do chamador, que deve usar
// ParseDecimalHours quando o cabeçalho da coluna indicar "decimal".
func ParseDurationHours(val string) (float64, bool) {
	s := strings.TrimSpace(val)
	if s == "" {
		return 0, false
	}
	if m := durationRegex.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		mi, _ := strconv.Atoi(m[2])
		se := 0
		if m[3] != "" {
			se, _ = strconv.Atoi(m[3])
		}
		return float64(h) + float64(mi)/60 + float64(se)/3600, true
	}
	n, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return 0, false
	}
	if n >= 0 && n < 1 {
		return n * 24, true
	}
	return n, true
}

// ParseSerialDayHours converte horas exportadas como serial Excel em DIAS
// (base DADOS.xlsx: 80,51 dias = 1932h16) para horas decimais. Também aceita
// a forma "HHHH:MM:SS" de duração acumulada.
func ParseSerialDayHours(val string) (float64, bool) {
	s := strings.TrimSpace(val)
	if s == "" {
		return 0, false
	}
	if m := durationRegex.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		mi, _ := strconv.Atoi(m[2])
		se := 0
		if m[3] != "" {
			se, _ = strconv.Atoi(m[3])
		}
		return Round2(float64(h) + float64(mi)/60 + float64(se)/3600), true
	}
	if n, ok := ParseNumber(s); ok {
		return Round2(n * 24), true
	}
	return 0, false
}

// NormalizeCNPJ remove tudo que não é dígito e mantém exatamente 14 dígitos
// quando há 14 ou mais; menos que isso mantém o que existir; vazio vira "".
func NormalizeCNPJ(val string) string {
	digits := nonDigitRegex.ReplaceAllString(val, "")
	if len(digits) >= 14 {
		return digits[:14]
	}
	return digits
}
