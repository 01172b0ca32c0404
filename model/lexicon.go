package model

import (
	"sort"

	"github.com/RoaringBitmap/roaring"
	"github.com/edsrzf/mmap-go"

	"github.com/steosofficial/morphology/attr"
)

// --- СТРУКТУРЫ ДАННЫХ ---

// FlatNode - "плоское" представление узла префиксного дерева морфем.
// Вместо указателей используются индексы в общих массивах ребер и payload-ов.
// Все поля одного размера, поэтому структура не содержит выравнивания
// и совпадает с форматом на диске.
type FlatNode struct {
	PayloadIdx, PayloadLen uint32 // Срез payload-ов узла. PayloadLen > 0 - узел конечный.
	EdgesIdx, EdgesLen     uint32 // Срез исходящих ребер узла, отсортированных по символу.
}

// FlatEdge - ребро дерева.
type FlatEdge struct {
	Char   rune   // Символ на ребре.
	NodeID uint32 // ID дочернего узла.
}

// FlatEntry - полезная нагрузка конечного узла: морфема и переход, который она задает.
type FlatEntry struct {
	MorphemeID uint32 // Индекс в таблице морфем.
	From       uint32 // Состояние, в котором морфема допустима.
	Next       uint32 // Состояние после морфемы.
}

// morphemeRecord - запись таблицы морфем. Хранится в "сложном" блоке файла.
type morphemeRecord struct {
	Surface string
	Base    string
	Kind    Kind
	Attrs   attr.Set   // Атрибуты, которые морфема устанавливает.
	Clears  []attr.Key // Атрибуты, которые морфема снимает перед установкой своих.
}

// Lexicon - неизменяемая морфологическая модель. Реализует Model.
// После построения или загрузки никогда не меняется, поэтому безопасна
// для одновременного использования из многих горутин.
type Lexicon struct {
	states    []string         // Имена состояний, индекс - State.
	morphemes []morphemeRecord // Таблица морфем, индекс - Morpheme.ID.
	start     State
	terminal  *roaring.Bitmap   // Конечные состояния.
	compound  map[State]State   // Состояние -> начальное состояние следующей части.
	reach     []*roaring.Bitmap // Для каждого узла: состояния, у которых есть payload в узле или ниже.
	keys      []attr.Key        // Все ключи, встречающиеся в таблицах атрибутов.

	// "Сырые" данные дерева. В загруженной модели указывают прямо на mmap-область.
	nodes    []FlatNode
	edges    []FlatEdge
	payloads []FlatEntry

	// Ссылка на mmap-объект, чтобы память оставалась доступной до Close.
	mmapFile mmap.MMap
}

var _ Model = (*Lexicon)(nil)

// --- ЗАПРОСЫ К МОДЕЛИ ---

// Start возвращает начальное состояние.
func (l *Lexicon) Start() State {
	return l.start
}

// IsTerminal сообщает, является ли состояние конечным.
func (l *Lexicon) IsTerminal(state State) bool {
	return l.terminal.Contains(uint32(state))
}

// CompoundStart возвращает начальное состояние следующей части сложного слова.
func (l *Lexicon) CompoundStart(state State) (State, bool) {
	next, ok := l.compound[state]
	return next, ok
}

// MatchMorphemes идет по дереву символ за символом и на каждом конечном узле
// собирает морфемы, допустимые в состоянии state.
func (l *Lexicon) MatchMorphemes(remaining []rune, state State) []Match {
	var matches []Match
	currentNodeIndex := uint32(0)

	for i, char := range remaining {
		childNodeIndex, found := l.findChild(currentNodeIndex, char)
		if !found {
			break
		}
		currentNodeIndex = childNodeIndex

		// Ни в узле, ни ниже нет морфем для этого состояния - дальше идти незачем.
		if !l.reach[currentNodeIndex].Contains(uint32(state)) {
			break
		}

		node := l.nodes[currentNodeIndex]
		for _, entry := range l.payloads[node.PayloadIdx : node.PayloadIdx+node.PayloadLen] {
			if entry.From != uint32(state) {
				continue
			}
			matches = append(matches, Match{
				Morpheme: l.morpheme(entry.MorphemeID),
				Length:   i + 1,
				Next:     State(entry.Next),
			})
		}
	}
	return matches
}

// AttributeRules сворачивает атрибуты морфем слева направо: каждая морфема
// сначала снимает перечисленные в Clears ключи, затем устанавливает свои.
// Побеждает последняя запись.
func (l *Lexicon) AttributeRules(seq []Morpheme) attr.Set {
	out := make(attr.Set)
	for _, m := range seq {
		rec := &l.morphemes[m.ID]
		for _, k := range rec.Clears {
			delete(out, k)
		}
		for k, v := range rec.Attrs {
			out[k] = v
		}
	}
	return out
}

// --- ВСПОМОГАТЕЛЬНЫЕ МЕТОДЫ ---

// Keys возвращает все ключи атрибутов, которые может дать модель.
func (l *Lexicon) Keys() []attr.Key {
	out := make([]attr.Key, len(l.keys))
	copy(out, l.keys)
	return out
}

// StateName возвращает имя состояния для отладки.
func (l *Lexicon) StateName(state State) string {
	if int(state) < len(l.states) {
		return l.states[state]
	}
	return ""
}

// StateByName ищет состояние по имени.
func (l *Lexicon) StateByName(name string) (State, bool) {
	for i, s := range l.states {
		if s == name {
			return State(i), true
		}
	}
	return 0, false
}

// NumStates возвращает количество состояний модели.
func (l *Lexicon) NumStates() int {
	return len(l.states)
}

// NumMorphemes возвращает количество морфем модели.
func (l *Lexicon) NumMorphemes() int {
	return len(l.morphemes)
}

// Close освобождает mmap-область. После Close модель использовать нельзя,
// поэтому закрывать ее нужно только после всех анализаторов.
func (l *Lexicon) Close() error {
	if l.mmapFile == nil {
		return nil
	}
	err := l.mmapFile.Unmap()
	l.mmapFile = nil
	l.nodes, l.edges, l.payloads = nil, nil, nil
	return err
}

func (l *Lexicon) morpheme(id uint32) Morpheme {
	rec := &l.morphemes[id]
	return Morpheme{ID: id, Surface: rec.Surface, Base: rec.Base, Kind: rec.Kind}
}

// findChild ищет дочерний узел по символу.
// Ребра одного узла лежат в массиве edges непрерывным блоком и отсортированы,
// поэтому используется бинарный поиск.
func (l *Lexicon) findChild(nodeIndex uint32, char rune) (uint32, bool) {
	node := l.nodes[nodeIndex]
	if node.EdgesLen == 0 {
		return 0, false
	}

	searchSlice := l.edges[node.EdgesIdx : node.EdgesIdx+node.EdgesLen]
	i := sort.Search(len(searchSlice), func(i int) bool { return searchSlice[i].Char >= char })
	if i < len(searchSlice) && searchSlice[i].Char == char {
		return searchSlice[i].NodeID, true
	}
	return 0, false
}
