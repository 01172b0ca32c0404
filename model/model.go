// Пакет model описывает морфологическую модель - неизменяемую лексическую базу,
// к которой обращается анализатор. Модель отвечает на три вопроса:
// какие морфемы совпадают с началом оставшейся части слова в данном
// морфотактическом состоянии, является ли состояние конечным и какие
// атрибуты дает последовательность морфем.
//
// Конкретная реализация - Lexicon: префиксное дерево морфем в "плоском" виде,
// которое строится через Builder или загружается из бинарного файла
// через mmap без копирования.
package model

import (
	"github.com/steosofficial/morphology/attr"
)

// State - морфотактическое состояние, позиция в автомате правил модели.
type State uint32

// Kind - роль морфемы в слове.
type Kind uint8

const (
	Stem       Kind = iota // Основа.
	Prefix                 // Приставка.
	Suffix                 // Словоизменительный суффикс или окончание.
	Derivation             // Словообразовательный суффикс.
	Clitic                 // Клитика (-kin, -ko).
)

var kindNames = [...]string{"stem", "prefix", "suffix", "derivation", "clitic"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Morpheme - морфема, найденная в модели.
type Morpheme struct {
	ID      uint32 // Индекс морфемы в таблице модели.
	Surface string // Поверхностная форма, как она встречается в слове.
	Base    string // Вклад морфемы в начальную форму.
	Kind    Kind
}

// Match - одно совпадение морфемы с началом оставшейся части слова.
type Match struct {
	Morpheme Morpheme
	Length   int   // Сколько символов (рун) поглощает морфема.
	Next     State // Состояние после морфемы.
}

// Model - контракт, который анализатор требует от морфологической модели.
// Реализации неизменяемы и безопасны для одновременных запросов из многих горутин.
type Model interface {
	// Start возвращает начальное состояние для первой части слова.
	Start() State

	// MatchMorphemes возвращает все морфемы, которые совпадают с началом remaining
	// в состоянии state. Порядок детерминирован: сначала короткие совпадения,
	// при равной длине - в порядке добавления в модель.
	MatchMorphemes(remaining []rune, state State) []Match

	// IsTerminal сообщает, может ли слово (или часть сложного слова) закончиться в state.
	IsTerminal(state State) bool

	// CompoundStart сообщает, можно ли начать новую часть сложного слова после state,
	// и возвращает состояние, с которого начинается эта часть.
	CompoundStart(state State) (State, bool)

	// AttributeRules сворачивает таблицы атрибутов последовательности морфем
	// одной части слова в итоговый набор.
	AttributeRules(seq []Morpheme) attr.Set
}
