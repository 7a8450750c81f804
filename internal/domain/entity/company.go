package entity

import "time"

// Company es el registro espejo heredado de cada Organization (misma ID y nombre).
// Se crea junto con la organización y se elimina con ella.
type Company struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
