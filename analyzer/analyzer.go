// Пакет analyzer выполняет морфологический анализ финских словоформ
// по модели из пакета model. Для слова перебираются все разбиения на морфемы,
// которые допускает модель (в том числе сложные слова), и каждое разбиение
// превращается в набор атрибутов: начальная форма, класс слова, падеж,
// морфемная структура и т.д.
//
// Результат анализа (ResultSet) принадлежит вызывающему коду и освобождается
// через Analyzer.Release ровно один раз.
package analyzer

import (
	"log/slog"
	"runtime"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/steosofficial/morphology/attr"
	"github.com/steosofficial/morphology/model"
)

// Analyzer - морфологический анализатор. Не меняется после создания,
// поэтому безопасен для одновременного использования из многих горутин.
// Модель должна жить дольше анализатора.
type Analyzer struct {
	model  model.Model
	opts   Options
	logger *slog.Logger
}

// New создает анализатор поверх модели.
func New(m model.Model, opts ...Option) *Analyzer {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.BatchCacheSize <= 0 {
		o.BatchCacheSize = DefaultOptions().BatchCacheSize
	}
	if o.MaxAnalyses < 0 {
		o.MaxAnalyses = 0
	}
	if o.MaxCompoundParts < 0 {
		o.MaxCompoundParts = 0
	}
	return &Analyzer{model: m, opts: o, logger: o.Logger}
}

// Options возвращает действующие настройки анализатора.
func (a *Analyzer) Options() Options {
	return a.opts
}

// Analyze возвращает все разборы слова. Слово приводится к нижнему регистру.
// Пустой результат означает, что модель не знает такой формы.
// Для одного и того же слова и модели результат всегда одинаков.
func (a *Analyzer) Analyze(word string) *ResultSet {
	rs := newResultSet(word, a.logger)
	if word == "" {
		return rs
	}

	s := searcher{
		model:    a.model,
		word:     []rune(strings.ToLower(word)),
		maxParts: a.opts.MaxCompoundParts,
	}
	s.run(func(c candidate) bool {
		rs.analyses = append(rs.analyses, buildAnalysis(a.model, c, a.opts.FullMorphology, a.logger))
		return a.opts.MaxAnalyses == 0 || len(rs.analyses) < a.opts.MaxAnalyses
	})

	a.logger.Debug("слово разобрано", "word", word, "analyses", len(rs.analyses))
	return rs
}

// Release освобождает результат: уничтожает каждый разбор, затем сам набор,
// и обнуляет переменную вызывающего кода. Release(nil) и повторный вызов
// с той же переменной ничего не делают. Освобождение через другую ссылку
// на уже освобожденный набор - ошибка использования.
func (a *Analyzer) Release(rs **ResultSet) {
	if rs == nil || *rs == nil {
		return
	}
	r := *rs
	*rs = nil
	if r.Released() {
		invalidUse(a.logger, "Analyzer.Release")
		return
	}
	r.release()
}

// AnalyzeList анализирует срез слов в конкурентном режиме, используя пул воркеров.
// i-й результат соответствует i-му слову. Повторяющиеся слова ищутся один раз,
// но каждое получает собственный результат, который нужно освободить отдельно.
func (a *Analyzer) AnalyzeList(words []string) []*ResultSet {
	const chunkSize = 256
	results := make([]*ResultSet, len(words))
	if len(words) == 0 {
		return results
	}

	cache, err := lru.New[string, []attr.Set](a.opts.BatchCacheSize)
	if err != nil {
		a.logger.Warn("кэш пакетного анализа не создан", "size", a.opts.BatchCacheSize, "err", err)
		cache = nil
	}

	numWorkers := min(runtime.NumCPU(), (len(words)+chunkSize-1)/chunkSize)
	chunksCh := make(chan int, numWorkers)

	var wg sync.WaitGroup

	// Воркеры пишут в непересекающиеся элементы results, поэтому порядок сохраняется без сортировки.
	wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go func() {
			defer wg.Done()
			for start := range chunksCh {
				end := min(start+chunkSize, len(words))
				for j := start; j < end; j++ {
					results[j] = a.analyzeCached(words[j], cache)
				}
			}
		}()
	}

	for i := 0; i < len(words); i += chunkSize {
		chunksCh <- i
	}
	close(chunksCh)
	wg.Wait()

	a.logger.Debug("пакетный анализ завершен", "words", len(words), "workers", numWorkers)
	return results
}

// analyzeCached разбирает слово или собирает новый результат из кэша.
// В кэше лежат копии атрибутов, а не разборы, чтобы освобождение одного
// результата не затрагивало другие.
func (a *Analyzer) analyzeCached(word string, cache *lru.Cache[string, []attr.Set]) *ResultSet {
	if cache == nil {
		return a.Analyze(word)
	}
	key := strings.ToLower(word)
	if cached, ok := cache.Get(key); ok {
		rs := newResultSet(word, a.logger)
		rs.analyses = make([]*Analysis, len(cached))
		for i, attrs := range cached {
			rs.analyses[i] = newAnalysis(attrs.Clone(), a.logger)
		}
		return rs
	}

	rs := a.Analyze(word)
	snapshot := make([]attr.Set, len(rs.analyses))
	for i, an := range rs.analyses {
		snapshot[i] = an.attrs.Clone()
	}
	cache.Add(key, snapshot)
	return rs
}
