package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
)

var (
	ErrNotFound    = errors.New("запись не найдена")
	ErrDuplicate   = errors.New("нарушено ограничение уникальности")
	ErrLockTimeout = errors.New("не удалось дождаться блокировки строки")
)

// classify переводит ошибки драйвера в ошибки пакета. Прочие ошибки возвращаются как есть.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pgerrcode.UniqueViolation:
			return fmt.Errorf("%w: %s", ErrDuplicate, pqErr.Constraint)
		case pgerrcode.LockNotAvailable:
			return fmt.Errorf("%w: %s", ErrLockTimeout, pqErr.Message)
		}
	}
	return err
}
