package attr

import (
	"reflect"
	"testing"
)

func TestValid(t *testing.T) {
	testCases := []struct {
		name  string
		key   Key
		value string
		want  bool
	}{
		{"Перечислимое значение", Class, "nimisana", true},
		{"Неизвестное значение", Class, "substantiivi", false},
		{"Падеж", Case, "sisaolento", true},
		{"Пустое значение", Case, "", false},
		{"Свободное значение", BaseForm, "koira", true},
		{"Свободное пустое значение", Structure, "", false},
		{"Флаг", Question, "true", true},
		{"Неизвестный ключ", Key("GENDER"), "m", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Valid(tc.key, tc.value); got != tc.want {
				t.Errorf("Valid(%s, %q) = %v, ожидалось %v", tc.key, tc.value, got, tc.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	for _, k := range Keys() {
		if got, ok := Parse(string(k)); !ok || got != k {
			t.Errorf("Parse(%q) = %q, %v", k, got, ok)
		}
	}
	if _, ok := Parse("sijamuoto"); ok {
		t.Error("Ключи чувствительны к регистру")
	}
}

func TestDerived(t *testing.T) {
	for _, k := range []Key{BaseForm, Structure, WordBases} {
		if !Derived(k) {
			t.Errorf("%s должен быть вычисляемым", k)
		}
	}
	if Derived(Class) {
		t.Error("CLASS задается моделью")
	}
}

func TestSet(t *testing.T) {
	s := Set{Structure: "koira", Class: "nimisana", BaseForm: "koira"}
	if got, want := s.Keys(), []Key{BaseForm, Class, Structure}; !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, ожидалось %v", got, want)
	}

	c := s.Clone()
	c[Class] = "laatusana"
	if s[Class] != "nimisana" {
		t.Error("Clone должен возвращать независимую копию")
	}
}
