// Command migrate применяет SQL миграции из migrations/ к PostgreSQL.
//
//	migrate [flags] up [N] | down [N] | force V | version | drop
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"

	"github.com/Haleralex/storehub/internal/config"
	"github.com/Haleralex/storehub/internal/pkg/logger"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

// invocation - разобранная командная строка.
type invocation struct {
	path    string
	dsn     string
	command string
	arg     int
	hasArg  bool
	verbose bool
}

func parseArgs(args []string) (*invocation, error) {
	inv := &invocation{}
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.StringVar(&inv.path, "path", "./migrations", "migrations directory")
	fs.StringVar(&inv.dsn, "database-url", "", "PostgreSQL URL (default: DATABASE_URL or DB_* env)")
	fs.BoolVar(&inv.verbose, "verbose", false, "log every applied migration")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	rest := fs.Args()
	inv.command = "up"
	if len(rest) > 0 {
		inv.command = rest[0]
	}
	if len(rest) > 1 {
		n, err := strconv.Atoi(rest[1])
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%s: %q is not a non-negative number", inv.command, rest[1])
		}
		inv.arg, inv.hasArg = n, true
	}

	switch inv.command {
	case "up", "down", "version", "drop":
	case "force":
		if !inv.hasArg {
			return nil, errors.New("force requires a version")
		}
	default:
		return nil, fmt.Errorf("unknown command %q (up, down, force, version, drop)", inv.command)
	}
	return inv, nil
}

// resolveDSN: флаг, затем DATABASE_URL, затем DB_* переменные internal/config.
func (inv *invocation) resolveDSN() (string, error) {
	if inv.dsn != "" {
		return inv.dsn, nil
	}
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url, nil
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return "", fmt.Errorf("load config: %w", err)
	}
	return cfg.Database.DSN(), nil
}

func run(args []string, out io.Writer) error {
	_ = godotenv.Load()

	inv, err := parseArgs(args)
	if err != nil {
		return err
	}
	dsn, err := inv.resolveDSN()
	if err != nil {
		return err
	}

	m, err := migrate.New("file://"+inv.path, dsn)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	defer m.Close()

	log := logger.New(logger.DefaultConfig()).With("component", "migrate")
	m.Log = &migrateLog{log: log, verbose: inv.verbose}

	return inv.apply(m, out)
}

func (inv *invocation) apply(m *migrate.Migrate, out io.Writer) error {
	var err error
	switch inv.command {
	case "up":
		if inv.arg > 0 {
			err = m.Steps(inv.arg)
		} else {
			err = m.Up()
		}
	case "down":
		if inv.arg > 0 {
			err = m.Steps(-inv.arg)
		} else {
			err = m.Down()
		}
	case "force":
		err = m.Force(inv.arg)
	case "drop":
		err = m.Drop()
	case "version":
		version, dirty, verr := m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			fmt.Fprintln(out, "no migrations applied")
			return nil
		}
		if verr != nil {
			return fmt.Errorf("version: %w", verr)
		}
		fmt.Fprintf(out, "version %d (dirty: %t)\n", version, dirty)
		return nil
	}

	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Fprintln(out, inv.command+": nothing to do")
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", inv.command, err)
	}
	fmt.Fprintln(out, inv.command+": ok")
	return nil
}

// migrateLog адаптирует slog к migrate.Logger.
type migrateLog struct {
	log     *slog.Logger
	verbose bool
}

func (l *migrateLog) Printf(format string, v ...any) {
	l.log.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l *migrateLog) Verbose() bool { return l.verbose }
