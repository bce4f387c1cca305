package repository

import "context"

// EmployeeRepository consulta de empleados. El alta y edición de empleados pertenece a otra capa.
type EmployeeRepository interface {
	Exists(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int64, error)
}
