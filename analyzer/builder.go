package analyzer

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/steosofficial/morphology/attr"
	"github.com/steosofficial/morphology/model"
)

// buildAnalysis превращает разбиение в набор атрибутов.
// Атрибуты берутся из последней части сложного слова, потому что именно она
// определяет класс и форму слова. Предыдущие части входят в начальную форму
// как есть: koiran|koppi -> koirankoppi.
func buildAnalysis(m model.Model, c candidate, full bool, logger *slog.Logger) *Analysis {
	parts := c.parts()
	last := parts[len(parts)-1]

	attrs := m.AttributeRules(last.morphemes())
	if _, ok := attrs[attr.Class]; !ok {
		// Builder и загрузчик модели гарантируют, что каждая часть начинается
		// с морфемы, задающей класс. Сюда можно попасть только из-за ошибки в коде.
		panic(fmt.Sprintf("морфологический разбор %q без %s", structure(parts), attr.Class))
	}

	var baseForm strings.Builder
	for i, p := range parts {
		if p[0].hyphen {
			baseForm.WriteByte('-')
		}
		if i < len(parts)-1 {
			baseForm.WriteString(p.surface())
		} else {
			baseForm.WriteString(p.base())
		}
	}

	attrs[attr.BaseForm] = baseForm.String()
	attrs[attr.Structure] = structure(parts)
	if full {
		attrs[attr.WordBases] = wordBases(parts)
	}
	return newAnalysis(attrs, logger)
}

// structure записывает морфемную структуру: морфемы через "+",
// части сложного слова через "=" или "-", если их разделял дефис.
// Например: koira, koira+n=koppi, linja-auto.
func structure(parts []candidate) string {
	var sb strings.Builder
	for i, p := range parts {
		if i > 0 {
			if p[0].hyphen {
				sb.WriteByte('-')
			} else {
				sb.WriteByte('=')
			}
		}
		for j, st := range p {
			if j > 0 {
				sb.WriteByte('+')
			}
			sb.WriteString(st.morpheme.Surface)
		}
	}
	return sb.String()
}

// wordBases перечисляет части слова с их начальными формами:
// +koira(koira)+koppi(koppi), дефис записывается как +-.
func wordBases(parts []candidate) string {
	var sb strings.Builder
	for _, p := range parts {
		if p[0].hyphen {
			sb.WriteString("+-")
		}
		sb.WriteByte('+')
		sb.WriteString(p.surface())
		sb.WriteByte('(')
		sb.WriteString(p.base())
		sb.WriteByte(')')
	}
	return sb.String()
}

func (c candidate) morphemes() []model.Morpheme {
	out := make([]model.Morpheme, len(c))
	for i, st := range c {
		out[i] = st.morpheme
	}
	return out
}

func (c candidate) surface() string {
	var sb strings.Builder
	for _, st := range c {
		sb.WriteString(st.morpheme.Surface)
	}
	return sb.String()
}

// base склеивает вклады морфем в начальную форму. Если модель не задала
// ни одного вклада, начальной формой считается сама часть.
func (c candidate) base() string {
	var sb strings.Builder
	for _, st := range c {
		sb.WriteString(st.morpheme.Base)
	}
	if sb.Len() == 0 {
		return c.surface()
	}
	return sb.String()
}
