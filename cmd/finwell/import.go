package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/finwell-app/finwell/internal/cli"
	"github.com/finwell-app/finwell/internal/ofx"
)

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE.ofx [FILE.qfx ...]",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import transactions from OFX or QFX bank exports.

Imported transactions keep their signed amounts: negative for money out,
positive for money in. Re-importing the same file is safe; transactions
are deduplicated by their bank-assigned id.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	userID, err := requireUser()
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer closeStore(store)

	parser := ofx.NewParser()
	total := 0

	for _, path := range args {
		file, openErr := os.Open(path)
		if openErr != nil {
			return fmt.Errorf("failed to open %s: %w", path, openErr)
		}

		transactions, parseErr := parser.ParseFile(file)
		_ = file.Close()
		if parseErr != nil {
			return fmt.Errorf("failed to parse %s: %w", path, parseErr)
		}

		if err := store.SaveTransactions(ctx, userID, transactions); err != nil {
			return fmt.Errorf("failed to save transactions from %s: %w", path, err)
		}

		fmt.Println(cli.StatLine("  "+path, len(transactions)))
		total += len(transactions)
	}

	fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Imported %d transactions", total)))
	return nil
}
