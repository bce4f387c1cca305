// seed carga empleados y categorías desde exportaciones CSV del sistema anterior
// (separador ';', ISO-8859-1 por defecto) para que el ledger tenga a quién atribuir movimientos.
//
// Uso: go run ./cmd/seed -employees empleados.csv -categories categorias.csv [-utf8]
// Formato: empleados id;nombre;apellido;email, categorías id;nombre. La primera fila es encabezado.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/pkg/config"
)

type employeeRow struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string
}

type categoryRow struct {
	ID   int64
	Name string
}

func main() {
	employeesPath := flag.String("employees", "", "CSV de empleados")
	categoriesPath := flag.String("categories", "", "CSV de categorías")
	utf8 := flag.Bool("utf8", false, "los archivos ya vienen en UTF-8")
	flag.Parse()

	if *employeesPath == "" && *categoriesPath == "" {
		fmt.Fprintln(os.Stderr, "Indicar -employees y/o -categories")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuración: %v\n", err)
		os.Exit(1)
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB, cfg.Ledger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Conexión: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "Esquema: %v\n", err)
		os.Exit(1)
	}

	if *categoriesPath != "" {
		records, err := readCSV(*categoriesPath, !*utf8)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Leer categorías: %v\n", err)
			os.Exit(1)
		}
		rows, err := parseCategories(records)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Categorías: %v\n", err)
			os.Exit(1)
		}
		if err := insertCategories(ctx, pool, rows); err != nil {
			fmt.Fprintf(os.Stderr, "Insertar categorías: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Cargadas %d categorías\n", len(rows))
	}

	if *employeesPath != "" {
		records, err := readCSV(*employeesPath, !*utf8)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Leer empleados: %v\n", err)
			os.Exit(1)
		}
		rows, err := parseEmployees(records)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Empleados: %v\n", err)
			os.Exit(1)
		}
		if err := insertEmployees(ctx, pool, rows); err != nil {
			fmt.Fprintf(os.Stderr, "Insertar empleados: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Cargados %d empleados\n", len(rows))
	}
}

func readCSV(path string, latin1 bool) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decodeCSV(f, latin1)
}

// decodeCSV lee registros separados por ';'. Con latin1 convierte desde ISO-8859-1.
func decodeCSV(r io.Reader, latin1 bool) ([][]string, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) > 0 {
		records = records[1:] // encabezado
	}
	return records, nil
}

func parseEmployees(records [][]string) ([]employeeRow, error) {
	out := make([]employeeRow, 0, len(records))
	for i, rec := range records {
		if len(rec) < 2 {
			return nil, fmt.Errorf("fila %d: se esperan al menos id;nombre", i+2)
		}
		id, err := strconv.ParseInt(strings.TrimSpace(rec[0]), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("fila %d: id inválido %q", i+2, rec[0])
		}
		row := employeeRow{ID: id, FirstName: strings.TrimSpace(rec[1])}
		if row.FirstName == "" {
			return nil, fmt.Errorf("fila %d: nombre vacío", i+2)
		}
		if len(rec) > 2 {
			row.LastName = strings.TrimSpace(rec[2])
		}
		if len(rec) > 3 {
			row.Email = strings.TrimSpace(rec[3])
		}
		out = append(out, row)
	}
	return out, nil
}

func parseCategories(records [][]string) ([]categoryRow, error) {
	out := make([]categoryRow, 0, len(records))
	for i, rec := range records {
		if len(rec) < 2 {
			return nil, fmt.Errorf("fila %d: se espera id;nombre", i+2)
		}
		id, err := strconv.ParseInt(strings.TrimSpace(rec[0]), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("fila %d: id inválido %q", i+2, rec[0])
		}
		name := strings.TrimSpace(rec[1])
		if name == "" {
			return nil, fmt.Errorf("fila %d: nombre vacío", i+2)
		}
		out = append(out, categoryRow{ID: id, Name: name})
	}
	return out, nil
}

func insertEmployees(ctx context.Context, pool *pgxpool.Pool, rows []employeeRow) error {
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(`
			INSERT INTO employees (id, first_name, last_name, email) VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET first_name = EXCLUDED.first_name,
				last_name = EXCLUDED.last_name, email = EXCLUDED.email`,
			r.ID, r.FirstName, r.LastName, r.Email)
	}
	batch.Queue(`SELECT setval(pg_get_serial_sequence('employees', 'id'), GREATEST((SELECT MAX(id) FROM employees), 1))`)
	return pool.SendBatch(ctx, batch).Close()
}

func insertCategories(ctx context.Context, pool *pgxpool.Pool, rows []categoryRow) error {
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(`
			INSERT INTO categories (id, name) VALUES ($1, $2)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`,
			r.ID, r.Name)
	}
	batch.Queue(`SELECT setval(pg_get_serial_sequence('categories', 'id'), GREATEST((SELECT MAX(id) FROM categories), 1))`)
	return pool.SendBatch(ctx, batch).Close()
}
