package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation devuelve la restricción violada si err es un 23505.
func uniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// foreignKeyViolation informa si err es un 23503.
func foreignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation
}

// mapError traduce errores de PostgreSQL a mensajes con contexto; el error original queda envuelto.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	switch pgErr.Code {
	case pgerrcode.ForeignKeyViolation:
		return fmt.Errorf("%s: referencia inexistente (%s): %w", op, pgErr.ConstraintName, err)
	case pgerrcode.CheckViolation:
		return fmt.Errorf("%s: valor fuera de rango (%s): %w", op, pgErr.ConstraintName, err)
	case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
		return fmt.Errorf("%s: conflicto de transacción (reintentable): %w", op, err)
	case pgerrcode.QueryCanceled:
		return fmt.Errorf("%s: consulta cancelada: %w", op, err)
	case pgerrcode.ConnectionException, pgerrcode.ConnectionFailure, pgerrcode.CannotConnectNow,
		pgerrcode.AdminShutdown, pgerrcode.TooManyConnections:
		return fmt.Errorf("%s: base de datos no disponible: %w", op, err)
	default:
		return fmt.Errorf("%s: postgres [%s] %s: %w", op, pgErr.Code, pgErr.Message, err)
	}
}
