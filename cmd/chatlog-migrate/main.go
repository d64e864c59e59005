// chatlog-migrate walks a vault's chat folder and resaves every chat it can
// load in the current document format, upgrading legacy-generation files in
// place. Files that are not chats are left untouched.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mdvault/chatlog/pkg/chatstore"
	"github.com/mdvault/chatlog/pkg/config"
	"github.com/mdvault/chatlog/pkg/logging"
	"github.com/mdvault/chatlog/pkg/vault"
)

func main() {
	vaultRoot := flag.String("vault", ".", "path to the vault root")
	configPath := flag.String("config", "", "path to the config file (default ~/.chatlog/config.json)")
	dryRun := flag.Bool("dry-run", false, "load and report without writing anything")
	flag.Parse()

	if err := run(*vaultRoot, *configPath, *dryRun); err != nil {
		fmt.Fprintf(os.Stderr, "chatlog-migrate: %v\n", err)
		os.Exit(1)
	}
}

func run(vaultRoot, configPath string, dryRun bool) error {
	if err := config.Initialize(configPath); err != nil {
		return fmt.Errorf("initialize config: %w", err)
	}
	chats := config.GetChats()

	logger, err := logging.NewLogger("migrate")
	if err != nil {
		fmt.Fprintf(os.Stderr, "chatlog-migrate: file logging unavailable: %v\n", err)
	}
	defer logger.Close()

	store, err := vault.NewOSStore(vaultRoot, chats.GetIgnoreGlobs())
	if err != nil {
		return err
	}

	cs := chatstore.New(store,
		chatstore.WithFolder(chats.GetFolder()),
		chatstore.WithDefaultTag(chats.GetDefaultTag()),
		chatstore.WithToolResultCap(chats.GetToolResultCap()),
		chatstore.WithLogger(logger),
	)

	ctx := context.Background()
	loaded, skipped, err := cs.LoadAll(ctx)
	if err != nil {
		return err
	}

	migrated := 0
	for _, c := range loaded {
		if dryRun {
			fmt.Printf("would resave %s (%q, %d messages)\n", c.Meta.ID, c.Meta.Title, len(c.Messages))
			continue
		}
		version, err := cs.SaveChat(ctx, c)
		if err != nil {
			logger.Errorf("resave %s failed: %v", c.Meta.ID, err)
			fmt.Fprintf(os.Stderr, "chatlog-migrate: resave %s failed: %v\n", c.Meta.ID, err)
			continue
		}
		migrated++
		fmt.Printf("resaved %s at version %d\n", c.Meta.ID, version)
	}

	fmt.Printf("done: %d loaded, %d resaved, %d skipped\n", len(loaded), migrated, skipped)
	return nil
}
