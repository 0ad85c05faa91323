// Command seed creates the default console accounts for a fresh deployment.
// Department and settings seeds live in SQL files; accounts are created here
// so passwords are hashed at runtime.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"suvidha.org/internal/auth"
	"suvidha.org/internal/store/pg"
)

func main() {
	log.SetFlags(0)
	var (
		dsn      = flag.String("dsn", os.Getenv("SUVIDHA_PG_DSN"), "PostgreSQL DSN")
		password = flag.String("password", os.Getenv("SUVIDHA_SEED_PASSWORD"), "Password for seeded accounts")
	)
	flag.Parse()

	if *dsn == "" {
		log.Fatal("missing DSN: provide via -dsn or SUVIDHA_PG_DSN")
	}
	if *password == "" {
		log.Fatal("missing seed password: provide via -password or SUVIDHA_SEED_PASSWORD")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	db, err := pg.Open(*dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	// The token issuer is unused here, but the service requires one; any
	// non-empty secret works for seeding.
	tokens, err := auth.NewTokenIssuer("seed-only", time.Hour)
	if err != nil {
		log.Fatalf("token issuer: %v", err)
	}
	svc, err := auth.NewService(pg.NewUserStore(db), tokens)
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}

	accounts := []auth.RegisterInput{
		{Name: "Super Admin", Email: "superadmin@suvidha.gov.in", Role: string(auth.RoleSuperAdmin)},
		{Name: "Dept Admin", Email: "dept@suvidha.gov.in", Role: string(auth.RoleDepartmentAdmin)},
		{Name: "Operator", Email: "operator@suvidha.gov.in", Role: string(auth.RoleOperator)},
	}
	for _, in := range accounts {
		in.Password = *password
		if _, err := svc.Register(ctx, in); err != nil {
			if errors.Is(err, auth.ErrConflict) {
				log.Printf("skip %s: already registered", in.Email)
				continue
			}
			log.Fatalf("seed %s: %v", in.Email, err)
		}
		log.Printf("created %s (%s)", in.Email, in.Role)
	}
}
