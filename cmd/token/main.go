// token emite un JWT de desarrollo firmado con JWT_SECRET para probar la API.
//
// Uso: go run ./cmd/token -user 1 -role bodeguero
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/jwt"
)

func main() {
	userID := flag.String("user", "", "identificador del usuario")
	role := flag.String("role", jwt.RoleConsulta, "admin | bodeguero | consulta")
	flag.Parse()

	switch *role {
	case jwt.RoleAdmin, jwt.RoleBodeguero, jwt.RoleConsulta:
	default:
		fmt.Fprintf(os.Stderr, "Rol desconocido: %s\n", *role)
		os.Exit(2)
	}
	if *userID == "" {
		fmt.Fprintln(os.Stderr, "Indicar -user")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuración: %v\n", err)
		os.Exit(1)
	}
	tok, err := jwt.Generate(cfg.JWT.Secret, *userID, *role, cfg.JWT.Issuer, cfg.JWT.Expiration)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Generar token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
