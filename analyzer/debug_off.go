//go:build !morphdebug

package analyzer

// strictHandles выключен: использование освобожденного результата
// логируется и возвращает нулевые значения.
const strictHandles = false
