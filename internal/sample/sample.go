// Пакет sample собирает небольшую финскую модель для тестов и бенчмарков.
// В ней есть существительные с падежными окончаниями и клитиками, глагол,
// прилагательное со словообразованием, сложные слова (в том числе через дефис)
// и намеренные омонимы: "kuusi" (ель и шесть) и "-t" (именительный и
// винительный падеж множественного числа).
package sample

import (
	"github.com/steosofficial/morphology/attr"
	"github.com/steosofficial/morphology/model"
)

// Words - словоформы, которые модель разбирает. Используются в бенчмарках.
var Words = []string{
	"koira", "koiran", "koirat", "koirassa", "koirakin", "koirako",
	"talo", "talon", "talossa", "taloton", "talostakin",
	"koirakoppi", "koirankoppi", "kissakala", "linja-auto", "autotalo",
	"kuusi", "kuusikin", "taloja",
	"sanoa", "sanon", "sanot", "sanoi", "sanomme",
	"nopea", "nopeasti",
}

type noun struct {
	surface, base, class string
}

var nouns = []noun{
	{"koira", "koira", "nimisana"},
	{"kissa", "kissa", "nimisana"},
	{"talo", "talo", "nimisana"},
	{"koppi", "koppi", "nimisana"},
	{"auto", "auto", "nimisana"},
	{"linja", "linja", "nimisana"},
	{"kala", "kala", "nimisana"},
	{"kuusi", "kuusi", "nimisana"},
	{"kuusi", "kuusi", "lukusana"},
}

type ending struct {
	surface string
	attrs   attr.Set
}

var caseEndings = []ending{
	{"n", attr.Set{attr.Case: "omanto", attr.Number: "singular"}},
	{"a", attr.Set{attr.Case: "osanto", attr.Number: "singular"}},
	{"ssa", attr.Set{attr.Case: "sisaolento", attr.Number: "singular"}},
	{"sta", attr.Set{attr.Case: "sisaeronto", attr.Number: "singular"}},
	{"lla", attr.Set{attr.Case: "ulkoolento", attr.Number: "singular"}},
	{"ksi", attr.Set{attr.Case: "tulento", attr.Number: "singular"}},
	{"t", attr.Set{attr.Case: "nimento", attr.Number: "plural"}},
	{"t", attr.Set{attr.Case: "kohdanto", attr.Number: "plural"}},
	{"ja", attr.Set{attr.Case: "osanto", attr.Number: "plural"}},
}

var clitics = []ending{
	{"kin", attr.Set{attr.Focus: "kin"}},
	{"ko", attr.Set{attr.Question: "true"}},
}

var verbEndings = []ending{
	{"a", attr.Set{attr.Mood: "A-infinitive"}},
	{"n", attr.Set{attr.Mood: "indicative", attr.Tense: "present_simple", attr.Person: "1", attr.Number: "singular"}},
	{"t", attr.Set{attr.Mood: "indicative", attr.Tense: "present_simple", attr.Person: "2", attr.Number: "singular"}},
	{"mme", attr.Set{attr.Mood: "indicative", attr.Tense: "present_simple", attr.Person: "1", attr.Number: "plural"}},
	{"i", attr.Set{attr.Mood: "indicative", attr.Tense: "past_imperfective", attr.Person: "3", attr.Number: "singular"}},
}

// Build собирает модель.
func Build() (*model.Lexicon, error) {
	b := model.NewBuilder()
	start := b.Start()

	var (
		nounStem = b.State("nimisana")
		nounCase = b.State("nimisana_sija")
		clitic   = b.State("liitepartikkeli")
		verbStem = b.State("teonsana")
		verbForm = b.State("teonsana_paate")
		adjStem  = b.State("laatusana")
		adjDeriv = b.State("laatusana_johdos")
		adverb   = b.State("seikkasana")
	)
	b.Terminal(nounStem, nounCase, clitic, verbForm, adjStem, adjDeriv, adverb)

	// Основа существительного в именительном падеже может быть первой частью сложного слова,
	// а форма родительного падежа - тоже ("koiran|koppi").
	b.Compound(nounStem, start)
	b.Compound(nounCase, start)

	for _, n := range nouns {
		b.Add(start, nounStem, model.Entry{
			Surface: n.surface,
			Base:    n.base,
			Kind:    model.Stem,
			Attrs:   attr.Set{attr.Class: n.class, attr.Case: "nimento", attr.Number: "singular"},
		})
	}
	for _, e := range caseEndings {
		b.Add(nounStem, nounCase, model.Entry{Surface: e.surface, Kind: model.Suffix, Attrs: e.attrs})
	}
	for _, e := range clitics {
		b.Add(nounStem, clitic, model.Entry{Surface: e.surface, Kind: model.Clitic, Attrs: e.attrs})
		b.Add(nounCase, clitic, model.Entry{Surface: e.surface, Kind: model.Clitic, Attrs: e.attrs})
	}

	// Словообразование: talo -> taloton (прилагательное "бездомный").
	b.Add(nounStem, adjDeriv, model.Entry{
		Surface: "ton",
		Base:    "ton",
		Kind:    model.Derivation,
		Attrs:   attr.Set{attr.Class: "laatusana", attr.Case: "nimento", attr.Number: "singular"},
	})

	// Глагол: начальная форма задается основой, окончания ничего к ней не добавляют.
	b.Add(start, verbStem, model.Entry{
		Surface: "sano",
		Base:    "sanoa",
		Kind:    model.Stem,
		Attrs:   attr.Set{attr.Class: "teonsana"},
	})
	for _, e := range verbEndings {
		b.Add(verbStem, verbForm, model.Entry{Surface: e.surface, Kind: model.Suffix, Attrs: e.attrs})
	}

	// Прилагательное и наречие от него: nopea -> nopeasti. Наречие снимает падеж и число.
	b.Add(start, adjStem, model.Entry{
		Surface: "nopea",
		Base:    "nopea",
		Kind:    model.Stem,
		Attrs:   attr.Set{attr.Class: "laatusana", attr.Case: "nimento", attr.Number: "singular", attr.Comparison: "positive"},
	})
	b.Add(adjStem, adverb, model.Entry{
		Surface: "sti",
		Base:    "sti",
		Kind:    model.Derivation,
		Attrs:   attr.Set{attr.Class: "seikkasana"},
		Clears:  []attr.Key{attr.Case, attr.Number, attr.Comparison},
	})

	return b.Build()
}

// MustBuild - как Build, но паникует при ошибке. Для тестов и бенчмарков.
func MustBuild() *model.Lexicon {
	lex, err := Build()
	if err != nil {
		panic(err)
	}
	return lex
}
