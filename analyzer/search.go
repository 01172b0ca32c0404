package analyzer

import (
	"github.com/steosofficial/morphology/model"
)

// step - одна морфема в найденном разбиении слова.
type step struct {
	morpheme  model.Morpheme
	start     int         // Позиция первой руны морфемы в слове.
	end       int         // Позиция сразу после морфемы.
	next      model.State // Состояние после морфемы.
	partStart bool        // Морфема открывает часть сложного слова.
	hyphen    bool        // Перед частью стоит дефис.
}

// candidate - полное разбиение слова: морфемы покрывают его целиком,
// без пропусков и наложений.
type candidate []step

// frame - элемент рабочего стека поиска.
type frame struct {
	pos      int
	state    model.State
	path     candidate
	partLen  int  // Морфем в текущей части.
	parts    int  // Частей, включая текущую.
	boundary bool // Следующая морфема начинает часть.
	hyphen   bool // Граница частей поглотила дефис.
}

// searcher перебирает все разбиения слова, допустимые моделью.
// Обход - в глубину по парам (позиция, состояние) с явным стеком.
// Порядок результатов совпадает с порядком рекурсивного обхода: сначала
// совпадения морфем в порядке, который вернула модель, затем переход
// через границу частей сложного слова.
type searcher struct {
	model    model.Model
	word     []rune
	maxParts int // 0 - без ограничения.
}

// run вызывает emit для каждого разбиения, пока emit возвращает true.
func (s *searcher) run(emit func(candidate) bool) {
	n := len(s.word)
	if n == 0 {
		return
	}

	stack := []frame{{state: s.model.Start(), parts: 1, boundary: true}}
	var children []frame

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.pos == n {
			if f.partLen > 0 && s.model.IsTerminal(f.state) {
				if !emit(f.path) {
					return
				}
			}
			continue
		}

		children = children[:0]
		for _, m := range s.model.MatchMorphemes(s.word[f.pos:], f.state) {
			end := f.pos + m.Length
			if m.Length < 1 || end > n {
				continue
			}
			st := step{
				morpheme:  m.Morpheme,
				start:     f.pos,
				end:       end,
				next:      m.Next,
				partStart: f.boundary,
				hyphen:    f.hyphen,
			}
			children = append(children, frame{
				pos:     end,
				state:   m.Next,
				path:    extend(f.path, st),
				partLen: f.partLen + 1,
				parts:   f.parts,
			})
		}

		if f.partLen > 0 && (s.maxParts == 0 || f.parts < s.maxParts) {
			if restart, ok := s.model.CompoundStart(f.state); ok {
				children = append(children, frame{
					pos:      f.pos,
					state:    restart,
					path:     f.path,
					parts:    f.parts + 1,
					boundary: true,
				})
				if s.word[f.pos] == '-' && f.pos+1 < n {
					children = append(children, frame{
						pos:      f.pos + 1,
						state:    restart,
						path:     f.path,
						parts:    f.parts + 1,
						boundary: true,
						hyphen:   true,
					})
				}
			}
		}

		// В обратном порядке, чтобы первым со стека снимался первый потомок.
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
}

// extend возвращает новый путь. Ветви поиска делят общий префикс,
// поэтому исходный срез не изменяется.
func extend(path candidate, st step) candidate {
	out := make(candidate, len(path)+1)
	copy(out, path)
	out[len(path)] = st
	return out
}

// parts разбивает разбиение на части сложного слова.
func (c candidate) parts() []candidate {
	var out []candidate
	begin := 0
	for i := 1; i < len(c); i++ {
		if c[i].partStart {
			out = append(out, c[begin:i])
			begin = i
		}
	}
	return append(out, c[begin:])
}
