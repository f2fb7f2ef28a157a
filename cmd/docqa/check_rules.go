package main

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/nrjais/docqa/internal/check"
	"github.com/nrjais/docqa/internal/rules"
)

var checkRulesFlags struct {
	rules string
}

var checkRulesCmd = &cobra.Command{
	Use:   "check-rules",
	Short: "Parse and validate the rule file",
	Long: `Parse the rule file and report every structural problem found, without
connecting to the database.

Examples:
  docqa check-rules --rules shop.yaml`,
	RunE: checkRules,
}

func init() {
	rootCmd.AddCommand(checkRulesCmd)

	checkRulesCmd.Flags().StringVar(&checkRulesFlags.rules, "rules", "", "rule file path (uses rules_path if not specified)")
}

func checkRules(cmd *cobra.Command, args []string) error {
	path := lo.CoalesceOrEmpty(checkRulesFlags.rules, cfg.RulesPath)
	set, err := rules.Load(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Rule file %s is valid: %d collections\n", path, set.Collections.Len())
	for _, entry := range set.Collections {
		kinds := lo.Map(check.ConfiguredKinds(entry.Value), func(k check.RuleKind, _ int) string {
			return string(k)
		})
		if entry.Value.ExpectedCount != nil {
			kinds = append([]string{string(check.RuleExpectedCount)}, kinds...)
		}
		fmt.Fprintf(out, "  %s: %s\n", entry.Key, lo.Ternary(len(kinds) == 0, "existence only", strings.Join(kinds, ", ")))
	}
	return nil
}
