//go:build morphdebug

package analyzer

// strictHandles включает панику при любом использовании освобожденного результата.
const strictHandles = true
