package model

import (
	"errors"
	"strings"
	"testing"

	"github.com/steosofficial/morphology/attr"
)

func TestBuilder_State(t *testing.T) {
	b := NewBuilder()
	if b.State(StartStateName) != b.Start() {
		t.Error("Начальное состояние должно находиться по имени")
	}
	first := b.State("nimisana")
	if again := b.State("nimisana"); again != first {
		t.Errorf("Повторный вызов State вернул %d, ожидалось %d", again, first)
	}
	if b.State("teonsana") == first {
		t.Error("Разные имена должны давать разные состояния")
	}
}

func TestBuilder_Invalid(t *testing.T) {
	stem := Entry{Surface: "koira", Base: "koira", Kind: Stem, Attrs: attr.Set{attr.Class: "nimisana"}}

	testCases := []struct {
		name    string
		build   func(b *Builder, next State)
		wantMsg string
	}{
		{
			name: "Пустая поверхностная форма",
			build: func(b *Builder, next State) {
				b.Add(b.Start(), next, Entry{Base: "x", Attrs: attr.Set{attr.Class: "nimisana"}})
			},
			wantMsg: "пустая",
		},
		{
			name: "Вычисляемый ключ в таблице атрибутов",
			build: func(b *Builder, next State) {
				b.Add(b.Start(), next, Entry{Surface: "koira", Attrs: attr.Set{attr.Class: "nimisana", attr.BaseForm: "koira"}})
			},
			wantMsg: "BASEFORM",
		},
		{
			name: "Недопустимое значение",
			build: func(b *Builder, next State) {
				b.Add(b.Start(), next, Entry{Surface: "koira", Attrs: attr.Set{attr.Class: "substantiivi"}})
			},
			wantMsg: "substantiivi",
		},
		{
			name: "Неизвестный ключ",
			build: func(b *Builder, next State) {
				b.Add(b.Start(), next, Entry{Surface: "koira", Attrs: attr.Set{attr.Class: "nimisana", "GENDER": "m"}})
			},
			wantMsg: "GENDER",
		},
		{
			name: "Неизвестный ключ в списке снятия",
			build: func(b *Builder, next State) {
				b.Add(b.Start(), next, stem)
				b.Add(next, next, Entry{Surface: "sti", Clears: []attr.Key{"GENDER"}})
			},
			wantMsg: "GENDER",
		},
		{
			name: "Несуществующее состояние",
			build: func(b *Builder, next State) {
				b.Add(b.Start(), State(100), stem)
			},
			wantMsg: "неизвестное состояние",
		},
		{
			name: "Первая морфема без класса",
			build: func(b *Builder, next State) {
				b.Add(b.Start(), next, Entry{Surface: "koira", Attrs: attr.Set{attr.Case: "nimento"}})
			},
			wantMsg: "CLASS",
		},
		{
			name: "Первая морфема части сложного слова без класса",
			build: func(b *Builder, next State) {
				other := b.State("jalkiosa")
				b.Add(b.Start(), next, stem)
				b.Compound(next, other)
				b.Add(other, next, Entry{Surface: "koppi"})
			},
			wantMsg: "CLASS",
		},
		{
			name: "Снятие класса без замены",
			build: func(b *Builder, next State) {
				b.Add(b.Start(), next, stem)
				b.Add(next, next, Entry{Surface: "sti", Clears: []attr.Key{attr.Class}})
			},
			wantMsg: "CLASS",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b := NewBuilder()
			next := b.State("nimisana")
			b.Terminal(next)
			tc.build(b, next)

			lex, err := b.Build()
			if err == nil {
				t.Fatalf("Ожидалась ошибка, получена модель с %d морфемами", lex.NumMorphemes())
			}
			if !errors.Is(err, ErrInvalidModel) {
				t.Errorf("Ошибка %v должна оборачивать ErrInvalidModel", err)
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Errorf("Ошибка %q не содержит %q", err, tc.wantMsg)
			}
		})
	}
}

func TestBuilder_Flatten(t *testing.T) {
	b := NewBuilder()
	next := b.State("nimisana")
	b.Terminal(next)
	for _, s := range []string{"talo", "tala", "kala", "Koira", "t"} {
		b.Add(b.Start(), next, Entry{Surface: s, Attrs: attr.Set{attr.Class: "nimisana"}})
	}
	lex, err := b.Build()
	if err != nil {
		t.Fatalf("Ошибка построения: %v", err)
	}

	for i, n := range lex.nodes {
		edges := lex.edges[n.EdgesIdx : n.EdgesIdx+n.EdgesLen]
		for j, e := range edges {
			if e.NodeID <= uint32(i) {
				t.Errorf("Узел %d: потомок %d не больше родителя", i, e.NodeID)
			}
			if j > 0 && edges[j-1].Char >= e.Char {
				t.Errorf("Узел %d: ребра не отсортированы", i)
			}
		}
	}
	if err := lex.validate(); err != nil {
		t.Errorf("Построенная модель не проходит проверку: %v", err)
	}
	if got := lex.MatchMorphemes([]rune("koira"), lex.Start()); len(got) != 1 || got[0].Morpheme.Surface != "koira" {
		t.Errorf("Поверхностная форма должна приводиться к нижнему регистру: %+v", got)
	}
}

func TestBuilder_BuildTwice(t *testing.T) {
	b := NewBuilder()
	next := b.State("nimisana")
	b.Terminal(next)
	b.Add(b.Start(), next, Entry{Surface: "koira", Attrs: attr.Set{attr.Case: "nimento"}})
	b.Add(b.Start(), next, Entry{Surface: "", Attrs: attr.Set{attr.Class: "nimisana"}})

	_, first := b.Build()
	_, second := b.Build()
	if first == nil || second == nil {
		t.Fatal("Ожидались ошибки построения")
	}
	if first.Error() != second.Error() {
		t.Errorf("Повторный Build дал другие ошибки:\n%v\n%v", first, second)
	}
	if n := strings.Count(second.Error(), "CLASS"); n != 1 {
		t.Errorf("Ошибка о CLASS встречается %d раз: %v", n, second)
	}
}
