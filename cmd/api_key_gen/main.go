package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"infinite-experiment/clanledger/internal/config"
	"infinite-experiment/clanledger/internal/constants"
)

// Issues an API key for a chat integration against the Postgres deployment.
func main() {
	role := flag.String("role", string(constants.RoleMember), "key role: member or admin")
	dsn := flag.String("dsn", "", "postgres DSN; defaults to the PG_* environment")
	flag.Parse()

	keyRole := constants.ActorRole(strings.ToLower(*role))
	if keyRole != constants.RoleMember && keyRole != constants.RoleAdmin {
		log.Fatalf("unsupported role %q", *role)
	}

	if *dsn == "" {
		cfg, err := config.Load()
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		*dsn = cfg.PostgresDSN()
	}

	db, err := sql.Open("postgres", *dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	key := strings.ReplaceAll(uuid.NewString(), "-", "")

	var id int64
	err = db.QueryRow(
		`INSERT INTO api_keys (key, status, role, created_at) VALUES ($1, true, $2, now()) RETURNING id`,
		key, keyRole,
	).Scan(&id)
	if err != nil {
		log.Fatalf("insert api key: %v", err)
	}

	fmt.Printf("New API Key (id %d, role %s): %s\n", id, keyRole, key)
}
