package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/finwell-app/finwell/internal/cli"
	"github.com/finwell-app/finwell/internal/common"
	"github.com/finwell-app/finwell/internal/model"
	"github.com/finwell-app/finwell/internal/storage"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage classification rules",
		Long: `Manage the classification rules applied before the AI fallback.

Rules map a description pattern to a category. Your own rules always win
over community-shared global rules and the built-in vendor table.`,
	}

	cmd.AddCommand(rulesListCmd())
	cmd.AddCommand(rulesAddCmd())
	cmd.AddCommand(rulesCategoriesCmd())
	cmd.AddCommand(rulesGlobalCmd())

	return cmd
}

func rulesListCmd() *cobra.Command {
	var showGlobal bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List classification rules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			var rules []model.ClassificationRule
			if showGlobal {
				rules, err = store.ListGlobalRules(ctx)
			} else {
				var userID string
				userID, err = requireUser()
				if err != nil {
					return err
				}
				rules, err = store.ListUserRules(ctx, userID)
			}
			if err != nil {
				return fmt.Errorf("failed to load rules: %w", err)
			}

			if len(rules) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No rules found."))
				return nil
			}

			fmt.Println(cli.TitleStyle.Render(fmt.Sprintf("Rules (%d)", len(rules))))
			for _, r := range rules {
				printRule(r)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showGlobal, "global", false, "List community-shared global rules instead")

	return cmd
}

func rulesAddCmd() *cobra.Command {
	var (
		patternType string
		direction   string
		vendor      string
		subcategory string
		amountMin   float64
		amountMax   float64
		global      bool
	)

	cmd := &cobra.Command{
		Use:   "add PATTERN CATEGORY",
		Short: "Add a classification rule",
		Long: `Add a classification rule mapping a description pattern to a category.

Examples:
  finwell rules add "STARBUCKS" MEALS_ENTERTAINMENT --vendor "Starbucks"
  finwell rules add "ACME PAYROLL" GROSS_RECEIPTS --direction positive
  finwell rules add "SHELL OIL" CAR_TRUCK_EXPENSES --sub "Fuel/Gas"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			userID, err := requireUser()
			if err != nil {
				return err
			}

			category, ok := model.LookupCategory(args[1])
			if !ok {
				return fmt.Errorf("unknown category %q; run 'finwell rules categories' for the list", args[1])
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			now := time.Now()
			rule := model.ClassificationRule{
				ID:              uuid.NewString(),
				UserID:          userID,
				Pattern:         args[0],
				PatternType:     model.PatternType(patternType),
				AmountDirection: model.AmountDirection(direction),
				VendorName:      vendor,
				Category:        category.Key,
				Subcategory:     subcategory,
				Source:          model.RuleSourceManual,
				Confidence:      1.0,
				IsActive:        true,
				IsGlobal:        global,
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			if cmd.Flags().Changed("min") {
				rule.AmountMin = &amountMin
			}
			if cmd.Flags().Changed("max") {
				rule.AmountMax = &amountMax
			}

			if err := store.UpsertRule(ctx, &rule); err != nil {
				if errors.Is(err, common.ErrDuplicateEntry) {
					fmt.Println(cli.WarningStyle.Render(
						fmt.Sprintf("A rule for %s (%s) already exists", rule.Pattern, rule.AmountDirection)))
					return nil
				}
				return fmt.Errorf("failed to save rule: %w", err)
			}

			fmt.Println(cli.SuccessStyle.Render(
				fmt.Sprintf("Saved rule %s → %s", rule.Pattern, category.DisplayName)))
			return nil
		},
	}

	cmd.Flags().StringVar(&patternType, "type", string(model.PatternContains), "Pattern type: exact, contains, starts_with")
	cmd.Flags().StringVar(&direction, "direction", string(model.DirectionAny), "Amount direction: any, positive, negative")
	cmd.Flags().StringVar(&vendor, "vendor", "", "Display vendor name for matched transactions")
	cmd.Flags().StringVar(&subcategory, "sub", "", "Subcategory label")
	cmd.Flags().Float64Var(&amountMin, "min", 0, "Minimum absolute amount the rule applies to")
	cmd.Flags().Float64Var(&amountMax, "max", 0, "Maximum absolute amount the rule applies to")
	cmd.Flags().BoolVar(&global, "global", false, "Share the rule with all users")

	return cmd
}

func rulesCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the category taxonomy",
		RunE: func(_ *cobra.Command, _ []string) error {
			for _, c := range model.AllCategories() {
				fmt.Printf("%-24s %s\n", c.Key, cli.SubtleStyle.Render(c.DisplayName))
			}
			return nil
		},
	}
}

func rulesGlobalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "global",
		Short: "Control community-shared rules",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "on",
		Short: "Enable global rules for your account",
		RunE:  func(cmd *cobra.Command, _ []string) error { return setGlobalToggle(cmd, true) },
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "off",
		Short: "Disable global rules for your account",
		RunE:  func(cmd *cobra.Command, _ []string) error { return setGlobalToggle(cmd, false) },
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "mute RULE_ID",
		Short: "Opt out of a single global rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setRuleMuted(cmd, args[0], true)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "unmute RULE_ID",
		Short: "Re-enable a muted global rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setRuleMuted(cmd, args[0], false)
		},
	})

	return cmd
}

func setGlobalToggle(cmd *cobra.Command, enabled bool) error {
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

	settings := model.GlobalRuleSettings{UserID: userID, UseGlobalRules: enabled}
	if err := store.SetGlobalSettings(ctx, settings); err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}

	fmt.Println(cli.SuccessStyle.Render("Global rules " + onOff(enabled)))
	return nil
}

func setRuleMuted(cmd *cobra.Command, ruleID string, muted bool) error {
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

	if err := store.SetGlobalRuleDisabled(ctx, userID, ruleID, muted); err != nil {
		return fmt.Errorf("failed to update rule opt-out: %w", err)
	}

	if muted {
		fmt.Println(cli.SuccessStyle.Render("Muted global rule " + ruleID))
	} else {
		fmt.Println(cli.SuccessStyle.Render("Unmuted global rule " + ruleID))
	}
	return nil
}

func printRule(r model.ClassificationRule) {
	scope := "user"
	if r.IsGlobal {
		scope = "global"
	}
	detail := string(r.PatternType) + ", " + string(r.AmountDirection) + ", " + scope +
		", matched " + strconv.Itoa(r.MatchCount) + "x"
	fmt.Printf("  %-30s → %-22s %s\n",
		r.Pattern, r.Category, cli.SubtleStyle.Render("("+detail+")"))
}

func closeStore(store *storage.SQLiteStore) {
	if err := store.Close(); err != nil {
		slog.Error("Failed to close database", "error", err)
	}
}

func onOff(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
