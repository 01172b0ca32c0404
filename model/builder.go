package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/RoaringBitmap/roaring"

	"github.com/steosofficial/morphology/attr"
)

// ErrInvalidModel - модель нарушает собственные правила: неизвестный ключ
// атрибута, недопустимое значение, пустая морфема, ссылка на несуществующее состояние.
var ErrInvalidModel = errors.New("некорректная модель")

// StartStateName - имя начального состояния, которое Builder создает сам.
const StartStateName = "start"

// Entry - описание морфемы для Builder.Add.
type Entry struct {
	Surface string     // Поверхностная форма. Приводится к нижнему регистру.
	Base    string     // Вклад в начальную форму. Пустая строка - морфема ничего не добавляет.
	Kind    Kind       // Роль морфемы.
	Attrs   attr.Set   // Атрибуты, которые морфема устанавливает.
	Clears  []attr.Key // Атрибуты, которые морфема снимает.
}

// node - узел префиксного дерева в оперативной памяти.
// Использует map для дочерних узлов, перед сохранением превращается в FlatNode.
type node struct {
	children map[rune]*node
	payload  []FlatEntry
}

func newNode() *node {
	return &node{children: make(map[rune]*node)}
}

// Builder собирает Lexicon из состояний, правил сложных слов и морфем.
// Builder не предназначен для одновременного использования.
type Builder struct {
	states    []string
	stateIDs  map[string]State
	terminal  *roaring.Bitmap
	compound  map[State]State
	morphemes []morphemeRecord
	froms     []State // Состояние, из которого добавлена морфема, индекс - ID морфемы.
	root      *node
	errs      []error
}

// NewBuilder создает построитель с единственным состоянием StartStateName.
func NewBuilder() *Builder {
	b := &Builder{
		stateIDs: make(map[string]State),
		terminal: roaring.New(),
		compound: make(map[State]State),
		root:     newNode(),
	}
	b.State(StartStateName)
	return b
}

// Start возвращает начальное состояние.
func (b *Builder) Start() State {
	return 0
}

// State возвращает состояние с данным именем, создавая его при первом обращении.
func (b *Builder) State(name string) State {
	if s, ok := b.stateIDs[name]; ok {
		return s
	}
	s := State(len(b.states))
	b.states = append(b.states, name)
	b.stateIDs[name] = s
	return s
}

// Terminal помечает состояния как конечные.
func (b *Builder) Terminal(states ...State) {
	for _, s := range states {
		if !b.checkState(s, "Terminal") {
			continue
		}
		b.terminal.Add(uint32(s))
	}
}

// Compound разрешает начать новую часть сложного слова после состояния from.
// Новая часть начинается в состоянии restart.
func (b *Builder) Compound(from, restart State) {
	if !b.checkState(from, "Compound") || !b.checkState(restart, "Compound") {
		return
	}
	b.compound[from] = restart
}

// Add добавляет морфему, допустимую в состоянии from и переводящую в next.
// Ошибки накапливаются и возвращаются из Build.
func (b *Builder) Add(from, next State, e Entry) {
	if !b.checkState(from, "Add") || !b.checkState(next, "Add") {
		return
	}
	surface := strings.ToLower(e.Surface)
	if surface == "" {
		b.fail("пустая поверхностная форма морфемы (база %q)", e.Base)
		return
	}
	for k, v := range e.Attrs {
		if attr.Derived(k) {
			b.fail("морфема %q: ключ %s вычисляется анализатором и не может задаваться моделью", surface, k)
			return
		}
		if !attr.Valid(k, v) {
			b.fail("морфема %q: недопустимый атрибут %s=%q", surface, k, v)
			return
		}
	}
	for _, k := range e.Clears {
		if _, ok := attr.Parse(string(k)); !ok {
			b.fail("морфема %q: неизвестный ключ %s в списке снятия", surface, k)
			return
		}
	}

	id := uint32(len(b.morphemes))
	rec := morphemeRecord{
		Surface: surface,
		Base:    e.Base,
		Kind:    e.Kind,
		Attrs:   e.Attrs.Clone(),
		Clears:  append([]attr.Key(nil), e.Clears...),
	}
	b.morphemes = append(b.morphemes, rec)
	b.froms = append(b.froms, from)

	// Вставляем морфему в дерево символ за символом.
	current := b.root
	for _, char := range surface {
		child, ok := current.children[char]
		if !ok {
			child = newNode()
			current.children[char] = child
		}
		current = child
	}
	current.payload = append(current.payload, FlatEntry{MorphemeID: id, From: uint32(from), Next: uint32(next)})
}

// Build проверяет модель и превращает дерево в "плоские" массивы.
// Повторный вызов Build на том же построителе дает те же ошибки.
func (b *Builder) Build() (*Lexicon, error) {
	errs := append([]error(nil), b.errs...)
	errs = append(errs, checkRules(b.morphemes, b.partStarts(), func(id int) []State {
		return b.froms[id : id+1]
	})...)
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, errors.Join(errs...))
	}

	nodes, edges, payloads := flatten(b.root)

	compound := make(map[State]State, len(b.compound))
	for from, restart := range b.compound {
		compound[from] = restart
	}

	l := &Lexicon{
		states:    append([]string(nil), b.states...),
		morphemes: append([]morphemeRecord(nil), b.morphemes...),
		start:     b.Start(),
		terminal:  b.terminal.Clone(),
		compound:  compound,
		keys:      collectKeys(b.morphemes),
		nodes:     nodes,
		edges:     edges,
		payloads:  payloads,
	}
	l.reach = computeReach(nodes, edges, payloads)
	return l, nil
}

// partStarts возвращает состояния, с которых начинается часть слова.
func (b *Builder) partStarts() map[State]struct{} {
	return partStartStates(b.Start(), b.compound)
}

func partStartStates(start State, compound map[State]State) map[State]struct{} {
	starts := map[State]struct{}{start: {}}
	for _, restart := range compound {
		starts[restart] = struct{}{}
	}
	return starts
}

// checkRules проверяет таблицу морфем: допустимость атрибутов и ключей
// снятия, а также полноту правил. Каждая часть слова начинается с морфемы,
// задающей CLASS, и ни одна морфема не снимает CLASS, не установив его заново.
// Иначе построитель разбора получил бы путь без класса слова.
// Проверка общая для Builder и загрузчика.
func checkRules(morphemes []morphemeRecord, partStarts map[State]struct{}, froms func(id int) []State) []error {
	var errs []error
	for id, rec := range morphemes {
		for k, v := range rec.Attrs {
			if attr.Derived(k) || !attr.Valid(k, v) {
				errs = append(errs, fmt.Errorf("морфема %q: недопустимый атрибут %s=%q", rec.Surface, k, v))
			}
		}
		_, hasClass := rec.Attrs[attr.Class]
		for _, k := range rec.Clears {
			if _, ok := attr.Parse(string(k)); !ok {
				errs = append(errs, fmt.Errorf("морфема %q: неизвестный ключ %s в списке снятия", rec.Surface, k))
			}
			if k == attr.Class && !hasClass {
				errs = append(errs, fmt.Errorf("морфема %q снимает %s и не задает новый", rec.Surface, attr.Class))
			}
		}
		if hasClass {
			continue
		}
		for _, from := range froms(id) {
			if _, ok := partStarts[from]; ok {
				errs = append(errs, fmt.Errorf("морфема %q начинает часть слова, но не задает %s", rec.Surface, attr.Class))
				break
			}
		}
	}
	return errs
}

func (b *Builder) checkState(s State, op string) bool {
	if int(s) >= len(b.states) {
		b.fail("%s: неизвестное состояние %d", op, s)
		return false
	}
	return true
}

func (b *Builder) fail(format string, args ...any) {
	b.errs = append(b.errs, fmt.Errorf(format, args...))
}

// flatten обходит дерево в ширину и раскладывает его по массивам.
// Корень получает ID 0, ребра каждого узла идут подряд и отсортированы по символу.
func flatten(root *node) ([]FlatNode, []FlatEdge, []FlatEntry) {
	order := []*node{root}
	ids := map[*node]uint32{root: 0}
	for i := 0; i < len(order); i++ {
		for _, char := range sortedChars(order[i]) {
			child := order[i].children[char]
			ids[child] = uint32(len(order))
			order = append(order, child)
		}
	}

	nodes := make([]FlatNode, len(order))
	var edges []FlatEdge
	var payloads []FlatEntry
	for i, n := range order {
		chars := sortedChars(n)
		nodes[i] = FlatNode{
			PayloadIdx: uint32(len(payloads)),
			PayloadLen: uint32(len(n.payload)),
			EdgesIdx:   uint32(len(edges)),
			EdgesLen:   uint32(len(chars)),
		}
		payloads = append(payloads, n.payload...)
		for _, char := range chars {
			edges = append(edges, FlatEdge{Char: char, NodeID: ids[n.children[char]]})
		}
	}
	return nodes, edges, payloads
}

// computeReach для каждого узла собирает множество состояний, у которых есть
// морфемы в этом узле или в его потомках. Дочерние узлы всегда имеют больший ID,
// поэтому достаточно одного прохода с конца.
func computeReach(nodes []FlatNode, edges []FlatEdge, payloads []FlatEntry) []*roaring.Bitmap {
	reach := make([]*roaring.Bitmap, len(nodes))
	for i := len(nodes) - 1; i >= 0; i-- {
		bm := roaring.New()
		n := nodes[i]
		for _, entry := range payloads[n.PayloadIdx : n.PayloadIdx+n.PayloadLen] {
			bm.Add(entry.From)
		}
		for _, edge := range edges[n.EdgesIdx : n.EdgesIdx+n.EdgesLen] {
			bm.Or(reach[edge.NodeID])
		}
		bm.RunOptimize()
		reach[i] = bm
	}
	return reach
}

func collectKeys(morphemes []morphemeRecord) []attr.Key {
	seen := make(attr.Set)
	for _, rec := range morphemes {
		for k := range rec.Attrs {
			seen[k] = ""
		}
	}
	return seen.Keys()
}

func sortedChars(n *node) []rune {
	chars := make([]rune, 0, len(n.children))
	for char := range n.children {
		chars = append(chars, char)
	}
	sort.Slice(chars, func(i, j int) bool { return chars[i] < chars[j] })
	return chars
}
