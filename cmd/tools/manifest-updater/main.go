// cmd/tools/manifest-updater/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ufunda-bots/pkg/registry"
)

var manifestPath string

func main() {
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	// Add command flags
	idAdd := addCmd.String("id", "", "Bot ID (e.g., stellenbosch)")
	displayName := addCmd.String("displayName", "", "Display Name (e.g., Stellenbosch University)")
	description := addCmd.String("description", "", "Description")
	institution := addCmd.String("institution", "", "Institution name")
	portalURL := addCmd.String("portalUrl", "", "Application portal URL")
	category := addCmd.String("category", "university", "Category (university, bursary, account)")
	status := addCmd.String("status", "experimental", "Status (active, disabled, experimental)")
	addCmd.StringVar(&manifestPath, "path", "configs/bots.json", "Path to manifest file")

	// Update command flags
	idUpdate := updateCmd.String("id", "", "Bot ID to update")
	field := updateCmd.String("field", "", "Field to update (status, displayName, portalUrl, category, description)")
	value := updateCmd.String("value", "", "New value for the field")
	updateCmd.StringVar(&manifestPath, "path", "configs/bots.json", "Path to manifest file")

	validateCmd.StringVar(&manifestPath, "path", "configs/bots.json", "Path to manifest file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add":
		addCmd.Parse(os.Args[2:])
		if *idAdd == "" || *displayName == "" || *institution == "" {
			fmt.Println("Error: id, displayName, and institution are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		bot := registry.Bot{
			ID:          *idAdd,
			DisplayName: *displayName,
			Description: *description,
			Institution: *institution,
			PortalURL:   *portalURL,
			Category:    *category,
			Status:      *status,
			ErrorCodes:  []string{},
			Tags:        []string{},
		}
		if err := addBot(&bot); err != nil {
			fmt.Printf("Error adding bot: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added bot: %s\n", *idAdd)

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *idUpdate == "" || *field == "" || *value == "" {
			fmt.Println("Error: id, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		if err := updateBot(*idUpdate, *field, *value); err != nil {
			fmt.Printf("Error updating bot: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated bot %s, field %s to %s\n", *idUpdate, *field, *value)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		if err := validateManifest(); err != nil {
			fmt.Printf("Manifest validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Manifest validation passed.")

	case "help":
		fallthrough
	default:
		help()
	}
}

func addBot(bot *registry.Bot) error {
	manifest, err := registry.LoadManifest(manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			manifest = &registry.BotManifest{
				Version:     "1.0.0",
				LastUpdated: time.Now().Format(time.RFC3339),
				Bots:        []registry.Bot{},
			}
		} else {
			return fmt.Errorf("failed to load manifest: %w", err)
		}
	}

	if _, exists := manifest.Find(bot.ID); exists {
		return fmt.Errorf("bot with ID %s already exists", bot.ID)
	}

	manifest.Bots = append(manifest.Bots, *bot)
	manifest.LastUpdated = time.Now().Format(time.RFC3339)
	return saveManifest(manifest, manifestPath)
}

func updateBot(id, field, value string) error {
	manifest, err := registry.LoadManifest(manifestPath)
	if err != nil {
		return fmt.Errorf("failed to load manifest: %w", err)
	}

	found := false
	for i := range manifest.Bots {
		if manifest.Bots[i].ID == id {
			found = true
			switch field {
			case "status":
				manifest.Bots[i].Status = value
			case "displayName":
				manifest.Bots[i].DisplayName = value
			case "description":
				manifest.Bots[i].Description = value
			case "institution":
				manifest.Bots[i].Institution = value
			case "portalUrl":
				manifest.Bots[i].PortalURL = value
			case "category":
				manifest.Bots[i].Category = value
			default:
				return fmt.Errorf("unknown field: %s", field)
			}
			break
		}
	}
	if !found {
		return fmt.Errorf("bot with ID %s not found", id)
	}

	manifest.LastUpdated = time.Now().Format(time.RFC3339)
	return saveManifest(manifest, manifestPath)
}

func validateManifest() error {
	manifest, err := registry.LoadManifest(manifestPath)
	if err != nil {
		return fmt.Errorf("failed to load manifest: %w", err)
	}

	if len(manifest.Bots) == 0 {
		return fmt.Errorf("manifest contains no bots")
	}

	ids := make(map[string]bool)
	for _, bot := range manifest.Bots {
		if ids[bot.ID] {
			return fmt.Errorf("duplicate bot ID: %s", bot.ID)
		}
		ids[bot.ID] = true

		if bot.ID == "" {
			return fmt.Errorf("bot missing required field: ID")
		}
		if bot.DisplayName == "" {
			return fmt.Errorf("bot %s missing required field: DisplayName", bot.ID)
		}
		if bot.Category == "" {
			return fmt.Errorf("bot %s missing required field: Category", bot.ID)
		}
	}

	fmt.Printf("Manifest validation passed. Found %d bots.\n", len(manifest.Bots))
	return nil
}

func saveManifest(manifest *registry.BotManifest, path string) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest file: %w", err)
	}
	return nil
}

func help() {
	fmt.Println(`
Usage: manifest-updater <command> [flags]

Commands:
  add      Add a new bot to the manifest
  update   Update an existing bot's field
  validate Validate the manifest file
  help     Show this help message

Examples:
  manifest-updater add -id stellenbosch -displayName "Stellenbosch University" -institution "Stellenbosch University" -portalUrl https://www.maties.com -category university
  manifest-updater update -id stellenbosch -field status -value active
  manifest-updater validate -path configs/bots.json

Use 'manifest-updater <command> -h' for more information about a command.`)
}
