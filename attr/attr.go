// Пакет attr определяет закрытый словарь атрибутов морфологического разбора.
// Каждый разбор - это набор пар "ключ атрибута -> значение". Набор ключей
// зависит от класса слова (у глагола есть лицо, у существительного - падеж),
// но сами ключи и значения перечислимых атрибутов известны заранее и
// проверяются при загрузке модели.
package attr

import (
	"sort"
)

// Key - ключ атрибута разбора.
type Key string

// --- КЛЮЧИ АТРИБУТОВ ---

const (
	BaseForm    Key = "BASEFORM"                   // Начальная форма слова.
	Class       Key = "CLASS"                      // Класс слова (часть речи).
	Structure   Key = "STRUCTURE"                  // Разбиение на морфемы и части сложного слова.
	WordBases   Key = "WORDBASES"                  // Основы частей сложного слова.
	Case        Key = "SIJAMUOTO"                  // Падеж.
	Number      Key = "NUMBER"                     // Число.
	Person      Key = "PERSON"                     // Лицо.
	Mood        Key = "MOOD"                       // Наклонение или инфинитив.
	Tense       Key = "TENSE"                      // Время.
	Comparison  Key = "COMPARISON"                 // Степень сравнения.
	Possessive  Key = "POSSESSIVE"                 // Притяжательный суффикс.
	Negative    Key = "NEGATIVE"                   // Отрицательная форма.
	Participle  Key = "PARTICIPLE"                 // Тип причастия.
	Focus       Key = "FOCUS"                      // Фокусная частица (-kin, -kaan).
	Question    Key = "KYSYMYSLIITE"               // Вопросительная частица (-ko).
	RequireVerb Key = "REQUIRE_FOLLOWING_VERB"     // Требуемая форма следующего глагола.
	FreeSuffix  Key = "MALAGA_VAPAA_JALKIOSA"      // Часть может быть свободным последним компонентом.
	GeoName     Key = "POSSIBLE_GEOGRAPHICAL_NAME" // Возможное географическое название.
)

// Set - набор атрибутов одного разбора или одной морфемы.
type Set map[Key]string

// ValueSet - это множество допустимых значений атрибута.
type ValueSet map[string]struct{}

// Глобальные переменные с множествами допустимых значений перечислимых атрибутов.
// Для атрибутов, которых здесь нет, значение может быть произвольной строкой.
var (
	// classValues соответствует атрибуту CLASS.
	classValues = ValueSet{
		"nimisana":           {},
		"laatusana":          {},
		"nimisana_laatusana": {},
		"teonsana":           {},
		"seikkasana":         {},
		"asemosana":          {},
		"suhdesana":          {},
		"huudahdussana":      {},
		"sidesana":           {},
		"etuliite":           {},
		"lukusana":           {},
		"lyhenne":            {},
		"kieltosana":         {},
		"etunimi":            {},
		"sukunimi":           {},
		"paikannimi":         {},
		"nimi":               {},
	}

	// caseValues соответствует атрибуту SIJAMUOTO.
	caseValues = ValueSet{
		"nimento":     {},
		"omanto":      {},
		"osanto":      {},
		"olento":      {},
		"tulento":     {},
		"kohdanto":    {},
		"sisaolento":  {},
		"sisaeronto":  {},
		"sisatulento": {},
		"ulkoolento":  {},
		"ulkoeronto":  {},
		"ulkotulento": {},
		"vajanto":     {},
		"seuranto":    {},
		"keinonto":    {},
		"kerrontosti": {},
	}

	numberValues = ValueSet{
		"singular": {},
		"plural":   {},
	}

	personValues = ValueSet{
		"1": {},
		"2": {},
		"3": {},
		"4": {},
	}

	moodValues = ValueSet{
		"A-infinitive":      {},
		"E-infinitive":      {},
		"MA-infinitive":     {},
		"MINEN-infinitive":  {},
		"MAINEN-infinitive": {},
		"indicative":        {},
		"conditional":       {},
		"imperative":        {},
		"potential":         {},
	}

	tenseValues = ValueSet{
		"present_simple":    {},
		"past_imperfective": {},
	}

	comparisonValues = ValueSet{
		"positive":    {},
		"comparative": {},
		"superlative": {},
	}

	possessiveValues = ValueSet{
		"1s": {},
		"2s": {},
		"1p": {},
		"2p": {},
		"3":  {},
	}

	negativeValues = ValueSet{
		"true":  {},
		"false": {},
		"both":  {},
	}

	participleValues = ValueSet{
		"present_active":  {},
		"present_passive": {},
		"past_active":     {},
		"past_passive":    {},
		"agent":           {},
		"negation":        {},
	}

	focusValues = ValueSet{
		"kin":  {},
		"kaan": {},
	}

	flagValues = ValueSet{
		"true": {},
	}
)

// known связывает каждый ключ словаря с множеством его значений.
// nil означает, что значение атрибута не перечислимо.
var known = map[Key]ValueSet{
	BaseForm:    nil,
	Class:       classValues,
	Structure:   nil,
	WordBases:   nil,
	Case:        caseValues,
	Number:      numberValues,
	Person:      personValues,
	Mood:        moodValues,
	Tense:       tenseValues,
	Comparison:  comparisonValues,
	Possessive:  possessiveValues,
	Negative:    negativeValues,
	Participle:  participleValues,
	Focus:       focusValues,
	Question:    flagValues,
	RequireVerb: nil,
	FreeSuffix:  flagValues,
	GeoName:     flagValues,
}

// derived - ключи, которые вычисляет построитель разбора, а не таблицы модели.
var derived = map[Key]struct{}{
	BaseForm:  {},
	Structure: {},
	WordBases: {},
}

// Parse проверяет, что строка является ключом из словаря.
func Parse(s string) (Key, bool) {
	k := Key(s)
	_, ok := known[k]
	return k, ok
}

// Valid сообщает, допустимо ли значение для ключа.
// Для неперечислимых атрибутов допустима любая непустая строка.
func Valid(k Key, value string) bool {
	values, ok := known[k]
	if !ok || value == "" {
		return false
	}
	if values == nil {
		return true
	}
	return inSet(value, values)
}

// Derived сообщает, вычисляется ли ключ построителем разбора.
// Такие ключи запрещены в таблицах атрибутов модели.
func Derived(k Key) bool {
	_, ok := derived[k]
	return ok
}

// Keys возвращает отсортированный список всех ключей словаря.
func Keys() []Key {
	keys := make([]Key, 0, len(known))
	for k := range known {
		keys = append(keys, k)
	}
	sortKeys(keys)
	return keys
}

// Clone возвращает независимую копию набора.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Keys возвращает ключи набора в алфавитном порядке.
func (s Set) Keys() []Key {
	keys := make([]Key, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sortKeys(keys)
	return keys
}

func sortKeys(keys []Key) {
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
}

func inSet(value string, set ValueSet) bool {
	_, ok := set[value]
	return ok
}
