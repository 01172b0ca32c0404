package analyzer

import "log/slog"

// Options - настройки анализатора.
type Options struct {
	// FullMorphology добавляет в разбор WORDBASES.
	FullMorphology bool

	// MaxAnalyses обрезает обход после заданного числа разборов. 0 - без ограничения.
	MaxAnalyses int

	// MaxCompoundParts ограничивает число частей сложного слова. 0 - без ограничения.
	MaxCompoundParts int

	// BatchCacheSize - размер LRU-кэша в AnalyzeList.
	BatchCacheSize int

	Logger *slog.Logger
}

// DefaultOptions возвращает настройки по умолчанию.
func DefaultOptions() Options {
	return Options{
		FullMorphology: true,
		BatchCacheSize: 4096,
		Logger:         slog.Default(),
	}
}

// Option изменяет настройки анализатора.
type Option func(*Options)

// WithFullMorphology включает или выключает WORDBASES.
func WithFullMorphology(on bool) Option {
	return func(o *Options) { o.FullMorphology = on }
}

// WithMaxAnalyses ограничивает число разборов одного слова.
func WithMaxAnalyses(n int) Option {
	return func(o *Options) { o.MaxAnalyses = n }
}

// WithMaxCompoundParts ограничивает число частей сложного слова.
func WithMaxCompoundParts(n int) Option {
	return func(o *Options) { o.MaxCompoundParts = n }
}

// WithBatchCache задает размер кэша AnalyzeList.
func WithBatchCache(size int) Option {
	return func(o *Options) { o.BatchCacheSize = size }
}

// WithLogger задает логгер анализатора.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}
