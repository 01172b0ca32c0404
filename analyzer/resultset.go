package analyzer

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrReleased - операция над результатом, который уже освобожден
// (или никогда не был получен от Analyze).
var ErrReleased = errors.New("результат анализа уже освобожден")

// ResultSet - упорядоченный набор разборов одного слова.
// Порядок совпадает с порядком обхода при поиске разбиений.
// Пустой набор означает "разборов нет" и ошибкой не является.
//
// У набора два состояния: живой и освобожденный. Освободить его можно только
// через Analyzer.Release, ровно один раз. Набор принадлежит вызывающему коду
// и не должен использоваться из нескольких горутин без внешней синхронизации.
type ResultSet struct {
	word     string
	analyses []*Analysis
	live     bool
	logger   *slog.Logger // Логгер анализатора, получает предупреждения об ошибках использования.
}

func newResultSet(word string, logger *slog.Logger) *ResultSet {
	return &ResultSet{word: word, live: true, logger: logger}
}

// Word возвращает слово, для которого получен результат.
func (r *ResultSet) Word() string {
	if !r.check("ResultSet.Word") {
		return ""
	}
	return r.word
}

// Len возвращает количество разборов.
func (r *ResultSet) Len() int {
	if !r.check("ResultSet.Len") {
		return 0
	}
	return len(r.analyses)
}

// Empty сообщает, что разборов нет.
func (r *ResultSet) Empty() bool {
	return r.Len() == 0
}

// At возвращает i-й разбор.
func (r *ResultSet) At(i int) *Analysis {
	if !r.check("ResultSet.At") {
		return nil
	}
	return r.analyses[i]
}

// All возвращает срез всех разборов. Сам срез - копия, разборы - общие.
func (r *ResultSet) All() []*Analysis {
	if !r.check("ResultSet.All") {
		return nil
	}
	out := make([]*Analysis, len(r.analyses))
	copy(out, r.analyses)
	return out
}

// Released сообщает, что набор освобожден. Единственная проверка,
// которую можно делать на освобожденном или nil-наборе.
func (r *ResultSet) Released() bool {
	return r == nil || !r.live
}

// Err возвращает ErrReleased для освобожденного набора.
func (r *ResultSet) Err() error {
	if r.Released() {
		return ErrReleased
	}
	return nil
}

func (r *ResultSet) check(op string) bool {
	if r.Released() {
		var logger *slog.Logger
		if r != nil {
			logger = r.logger
		}
		invalidUse(logger, op)
		return false
	}
	return true
}

// release уничтожает каждый разбор, затем сам набор.
func (r *ResultSet) release() {
	for i, a := range r.analyses {
		a.destroy()
		r.analyses[i] = nil
	}
	r.analyses = nil
	r.live = false
}

// invalidUse сообщает об использовании освобожденного результата.
// В сборке с тегом morphdebug это паника, иначе - предупреждение в лог
// и безопасное нулевое значение. Без логгера (nil-набор, неинициализированный
// разбор) предупреждение уходит в slog.Default().
func invalidUse(logger *slog.Logger, op string) {
	if strictHandles {
		panic(fmt.Errorf("%s: %w", op, ErrReleased))
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("операция над освобожденным результатом анализа", "op", op)
}
