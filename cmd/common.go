package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"nebula/core/config"
	"nebula/core/database"
	"nebula/core/identity"
	"nebula/core/logger"
	"nebula/core/secrets"
	"nebula/feature/inventory"
	"nebula/feature/network"

	"go.uber.org/zap"
)

// runtime is what every command needs: configuration, a logger and an initialized store.
type runtime struct {
	cfg   *config.Config
	log   *zap.Logger
	store *inventory.Store
}

// bootstrap loads configuration, connects the database and runs migrations and the
// first-start seed.
func bootstrap(ctx context.Context) (*runtime, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := inventory.NewStore(db, identity.New())
	seeded, err := store.Init(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize inventory: %w", err)
	}
	if seeded {
		l.Info("Seeded demo inventory")
	}

	l.Info("Connected to inventory database",
		zap.String("driver", cfg.Database.Driver),
		zap.String("name", cfg.Database.Name),
	)
	return &runtime{cfg: cfg, log: l, store: store}, nil
}

// credentials builds the controller credential store, warning when passwords cannot be kept.
func (rt *runtime) credentials() *network.CredentialStore {
	box := secrets.NewBox(rt.cfg.Secrets)
	if !box.Enabled() {
		rt.log.Warn("SECRETS_KEY is not set; controller passwords will not be stored")
	}
	return network.NewCredentialStore(rt.store, box, rt.log)
}

func (rt *runtime) networkConfig() network.Config {
	return network.Config{
		Site: rt.cfg.Discovery.UnifiSite,
		HTTP: rt.cfg.Discovery.HTTP,
	}
}

// confirmDestructiveAction prompts the user for confirmation or uses the --yes flag.
func confirmDestructiveAction(yes bool, prompt string) bool {
	if yes {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Printf("\n⚠️  %s Type 'yes' to confirm: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	return strings.TrimSpace(response) == "yes"
}
