package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrUserNotFound      = errors.New("usuario no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrInvalidTransition = errors.New("transición de estado no permitida")
	ErrOrderCompleted    = errors.New("no se puede eliminar una orden completada")
)

// Variantes específicas de ErrNotFound; errors.Is(err, ErrNotFound) sigue siendo verdadero.
var (
	ErrProductNotFound  = fmt.Errorf("producto: %w", ErrNotFound)
	ErrOrderNotFound    = fmt.Errorf("orden: %w", ErrNotFound)
	ErrCategoryNotFound = fmt.Errorf("categoría: %w", ErrNotFound)
	ErrSupplierNotFound = fmt.Errorf("proveedor: %w", ErrNotFound)
)
