package analyzer

import (
	"reflect"
	"strings"
	"testing"

	"github.com/steosofficial/morphology/attr"
	"github.com/steosofficial/morphology/model"
)

// fakeModel знает одну морфему "a". Любая последовательность "a" - слово,
// и после каждой морфемы можно начать новую часть сложного слова.
// Модель дополнительно возвращает совпадения нулевой длины и длиннее
// остатка слова, которые поиск должен пропускать.
type fakeModel struct {
	noClass bool
}

func (fakeModel) Start() model.State { return 0 }

func (fakeModel) MatchMorphemes(remaining []rune, state model.State) []model.Match {
	out := []model.Match{
		{Morpheme: model.Morpheme{ID: 0}, Length: 0, Next: 1},
		{Morpheme: model.Morpheme{ID: 0, Surface: string(remaining)}, Length: len(remaining) + 1, Next: 1},
	}
	if remaining[0] == 'a' {
		out = append(out, model.Match{Morpheme: model.Morpheme{ID: 1, Surface: "a", Base: "a"}, Length: 1, Next: 1})
	}
	return out
}

func (fakeModel) IsTerminal(state model.State) bool { return state == 1 }

func (fakeModel) CompoundStart(state model.State) (model.State, bool) { return 0, state == 1 }

func (f fakeModel) AttributeRules(seq []model.Morpheme) attr.Set {
	if f.noClass {
		return attr.Set{}
	}
	return attr.Set{attr.Class: "nimisana"}
}

func TestSearch_Order(t *testing.T) {
	testCases := []struct {
		name     string
		word     string
		maxParts int
		want     []string
	}{
		{"Одна морфема", "a", 0, []string{"a"}},
		{"Сначала морфемы, потом граница частей", "aa", 0, []string{"a+a", "a=a"}},
		{"Порядок обхода в глубину", "aaa", 0, []string{"a+a+a", "a+a=a", "a=a+a", "a=a=a"}},
		{"Ограничение частей", "aaa", 2, []string{"a+a+a", "a+a=a", "a=a+a"}},
		{"Дефис на границе", "a-a", 0, []string{"a-a"}},
		{"Дефис в конце", "a-", 0, nil},
		{"Дефис в начале", "-a", 0, nil},
		{"Два дефиса подряд", "a--a", 0, nil},
		{"Пустое слово", "", 0, nil},
		{"Незнакомый символ", "ab", 0, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := searcher{model: fakeModel{}, word: []rune(tc.word), maxParts: tc.maxParts}
			var got []string
			s.run(func(c candidate) bool {
				got = append(got, structure(c.parts()))
				return true
			})
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("'%s': %v, ожидалось %v", tc.word, got, tc.want)
			}
		})
	}
}

func TestSearch_CoversWord(t *testing.T) {
	word := []rune("aaaa")
	s := searcher{model: fakeModel{}, word: word}
	count := 0
	s.run(func(c candidate) bool {
		count++
		pos := 0
		for _, st := range c {
			if st.start != pos || st.end <= st.start {
				t.Errorf("Разбиение %s содержит пропуск или наложение", structure(c.parts()))
			}
			pos = st.end
		}
		if pos != len(word) {
			t.Errorf("Разбиение %s не покрывает слово", structure(c.parts()))
		}
		return true
	})
	// Каждый из трех промежутков - либо "+", либо "=".
	if count != 8 {
		t.Errorf("Найдено %d разбиений, ожидалось 8", count)
	}
}

func TestSearch_Stop(t *testing.T) {
	s := searcher{model: fakeModel{}, word: []rune("aaaa")}
	count := 0
	s.run(func(candidate) bool {
		count++
		return count < 3
	})
	if count != 3 {
		t.Errorf("Обход не остановился: %d", count)
	}
}

func TestBuildAnalysis_Compound(t *testing.T) {
	rs := New(fakeModel{}).Analyze("a-aa")
	got := make([]string, 0, rs.Len())
	for _, a := range rs.All() {
		got = append(got, a.Value(attr.BaseForm)+" "+a.Value(attr.WordBases))
	}
	want := []string{"a-aa +a(a)+-+aa(aa)", "a-aa +a(a)+-+a(a)+a(a)"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("%v, ожидалось %v", got, want)
	}
}

func TestBuildAnalysis_MissingClassPanics(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("Ожидалась паника при отсутствии CLASS")
		}
		if msg, _ := r.(string); !strings.Contains(msg, "CLASS") {
			t.Errorf("Неожиданная паника: %v", r)
		}
	}()
	New(fakeModel{noClass: true}).Analyze("a")
}
