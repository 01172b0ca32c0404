package analyzer

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/steosofficial/morphology/attr"
)

// Analysis - один полный морфологический разбор слова: набор атрибутов,
// в котором всегда есть BASEFORM, CLASS и STRUCTURE. Остальные ключи зависят
// от класса слова. После создания разбор не меняется, пока его результат
// не освобожден.
type Analysis struct {
	attrs  attr.Set
	logger *slog.Logger
}

func newAnalysis(attrs attr.Set, logger *slog.Logger) *Analysis {
	return &Analysis{attrs: attrs, logger: logger}
}

// Get возвращает значение атрибута и признак его наличия.
func (a *Analysis) Get(key attr.Key) (string, bool) {
	if !a.live("Analysis.Get") {
		return "", false
	}
	v, ok := a.attrs[key]
	return v, ok
}

// Value возвращает значение атрибута или пустую строку.
func (a *Analysis) Value(key attr.Key) string {
	v, _ := a.Get(key)
	return v
}

// Keys возвращает ключи разбора в алфавитном порядке.
func (a *Analysis) Keys() []attr.Key {
	if !a.live("Analysis.Keys") {
		return nil
	}
	return a.attrs.Keys()
}

// Len возвращает количество атрибутов.
func (a *Analysis) Len() int {
	if !a.live("Analysis.Len") {
		return 0
	}
	return len(a.attrs)
}

// Attributes возвращает копию набора атрибутов.
func (a *Analysis) Attributes() attr.Set {
	if !a.live("Analysis.Attributes") {
		return nil
	}
	return a.attrs.Clone()
}

// String возвращает отладочное представление,
// например koira[CLASS=nimisana|NUMBER=singular|SIJAMUOTO=nimento|STRUCTURE=koira].
func (a *Analysis) String() string {
	if a == nil || a.attrs == nil {
		return "<released>"
	}
	var sb strings.Builder
	sb.WriteString(a.attrs[attr.BaseForm])
	sb.WriteByte('[')
	first := true
	for _, k := range a.attrs.Keys() {
		if k == attr.BaseForm {
			continue
		}
		if !first {
			sb.WriteByte('|')
		}
		first = false
		sb.WriteString(string(k))
		sb.WriteByte('=')
		sb.WriteString(a.attrs[k])
	}
	sb.WriteByte(']')
	return sb.String()
}

// MarshalJSON кодирует разбор как объект {"BASEFORM": "...", "CLASS": "...", ...}.
func (a *Analysis) MarshalJSON() ([]byte, error) {
	if !a.live("Analysis.MarshalJSON") {
		return nil, ErrReleased
	}
	return json.Marshal(map[attr.Key]string(a.attrs))
}

// live проверяет, что разбор не уничтожен вместе со своим результатом.
func (a *Analysis) live(op string) bool {
	if a == nil {
		invalidUse(nil, op)
		return false
	}
	if a.attrs == nil {
		invalidUse(a.logger, op)
		return false
	}
	return true
}

// destroy уничтожает разбор при освобождении результата.
func (a *Analysis) destroy() {
	a.attrs = nil
}
