package model

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/steosofficial/morphology/attr"
)

// smallLexicon собирает модель из трех морфем: основы koira и kala
// и окончания родительного падежа n. У корня два ребра: 'k' и 'n'.
func smallLexicon(t *testing.T) *Lexicon {
	t.Helper()
	b := NewBuilder()
	noun := b.State("nimisana")
	nounCase := b.State("nimisana_sija")
	b.Terminal(noun, nounCase)
	b.Compound(noun, b.Start())
	b.Add(b.Start(), noun, Entry{Surface: "koira", Base: "koira", Kind: Stem, Attrs: attr.Set{attr.Class: "nimisana"}})
	b.Add(b.Start(), noun, Entry{Surface: "kala", Base: "kala", Kind: Stem, Attrs: attr.Set{attr.Class: "nimisana"}})
	b.Add(noun, nounCase, Entry{Surface: "n", Kind: Suffix, Attrs: attr.Set{attr.Case: "omanto"}})
	lex, err := b.Build()
	if err != nil {
		t.Fatalf("Ошибка построения: %v", err)
	}
	return lex
}

// Испорченная модель записывается заново, поэтому контрольная сумма верна
// и ошибку должна найти проверка ссылок и правил при загрузке.
func TestOpen_RejectsInvalidModel(t *testing.T) {
	testCases := []struct {
		name    string
		corrupt func(l *Lexicon)
		wantMsg string
	}{
		{
			name:    "Основа без класса",
			corrupt: func(l *Lexicon) { delete(l.morphemes[0].Attrs, attr.Class) },
			wantMsg: "CLASS",
		},
		{
			name:    "Снятие класса без замены",
			corrupt: func(l *Lexicon) { l.morphemes[2].Clears = []attr.Key{attr.Class} },
			wantMsg: "CLASS",
		},
		{
			name:    "Неизвестный ключ в списке снятия",
			corrupt: func(l *Lexicon) { l.morphemes[2].Clears = []attr.Key{"GENDER"} },
			wantMsg: "GENDER",
		},
		{
			name:    "Недопустимое значение атрибута",
			corrupt: func(l *Lexicon) { l.morphemes[2].Attrs[attr.Case] = "dativi" },
			wantMsg: "dativi",
		},
		{
			name:    "Вычисляемый ключ в таблице атрибутов",
			corrupt: func(l *Lexicon) { l.morphemes[0].Attrs[attr.BaseForm] = "koira" },
			wantMsg: "BASEFORM",
		},
		{
			name:    "Ребра корня не упорядочены",
			corrupt: func(l *Lexicon) { l.edges[0], l.edges[1] = l.edges[1], l.edges[0] },
			wantMsg: "не упорядочены",
		},
		{
			name:    "Ребро ведет назад",
			corrupt: func(l *Lexicon) { l.edges[0].NodeID = 0 },
			wantMsg: "ребро узла",
		},
		{
			name:    "Ребро за пределами узлов",
			corrupt: func(l *Lexicon) { l.edges[0].NodeID = uint32(len(l.nodes) + 5) },
			wantMsg: "ребро узла",
		},
		{
			name:    "Payload ссылается на несуществующую морфему",
			corrupt: func(l *Lexicon) { l.payloads[0].MorphemeID = uint32(len(l.morphemes)) },
			wantMsg: "payload",
		},
		{
			name:    "Payload с несуществующим состоянием",
			corrupt: func(l *Lexicon) { l.payloads[0].From = uint32(len(l.states)) },
			wantMsg: "payload",
		},
		{
			name:    "Конечное состояние вне диапазона",
			corrupt: func(l *Lexicon) { l.terminal.Add(uint32(len(l.states) + 3)) },
			wantMsg: "конечное состояние",
		},
		{
			name:    "Правило сложного слова вне диапазона",
			corrupt: func(l *Lexicon) { l.compound[State(len(l.states))] = l.start },
			wantMsg: "правило сложного слова",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			lex := smallLexicon(t)
			if len(lex.edges) < 2 || lex.nodes[0].EdgesLen != 2 {
				t.Fatalf("У корня ожидалось 2 ребра, получено %d", lex.nodes[0].EdgesLen)
			}
			tc.corrupt(lex)

			path := filepath.Join(t.TempDir(), DefaultModelFile)
			if err := lex.Save(path); err != nil {
				t.Fatalf("Ошибка сохранения: %v", err)
			}
			loaded, err := Open(path)
			if err == nil {
				loaded.Close()
				t.Fatal("Некорректная модель загружена без ошибки")
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

func TestOpen_AcceptsBuiltModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultModelFile)
	if err := smallLexicon(t).Save(path); err != nil {
		t.Fatalf("Ошибка сохранения: %v", err)
	}
	lex, err := Open(path)
	if err != nil {
		t.Fatalf("Корректная модель отвергнута: %v", err)
	}
	defer lex.Close()
	if got := lex.MatchMorphemes([]rune("kala"), lex.Start()); len(got) != 1 {
		t.Errorf("Ожидалось одно совпадение, получено %d", len(got))
	}
}
