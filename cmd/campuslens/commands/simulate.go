package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"campuslens/internal/config"
	"campuslens/internal/llm"
	"campuslens/internal/simulate"
)

var (
	simulateType   string
	simulateParams []string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Evaluate one what-if scenario locally",
	Example: `  campuslens simulate --type lease_termination --param months_remaining=6 --param monthly_penalty=200
  campuslens simulate --type work_hours_violation --param hours_worked=25`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if simulateType == "" {
			return fmt.Errorf("--type is required")
		}
		params := make(map[string]float64, len(simulateParams))
		for _, raw := range simulateParams {
			key, val, ok := strings.Cut(raw, "=")
			if !ok {
				return fmt.Errorf("invalid --param %q, want name=value", raw)
			}
			f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
			if err != nil {
				return fmt.Errorf("invalid --param %q: %w", raw, err)
			}
			params[strings.TrimSpace(key)] = f
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		catalog, err := simulate.LoadCatalog(cfg.ScenarioYAMLPath)
		if err != nil {
			return err
		}

		// The model is only consulted for tags outside the catalog.
		var client llm.Client
		if gemini, err := llm.NewGeminiClient(cmd.Context(), cfg.Gemini.Model, cfg.Gemini.EmbedModel); err == nil {
			client = llm.Chain(gemini, llm.WithTimeout(cfg.Run.CallTimeout))
			defer gemini.Close()
		}

		result, err := simulate.NewEngine(catalog, client).Run(cmd.Context(), simulateType, params)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	simulateCmd.Flags().StringVar(&simulateType, "type", "", "scenario type tag (e.g. lease_termination)")
	simulateCmd.Flags().StringArrayVar(&simulateParams, "param", nil, "scenario parameter as name=value, repeatable")
}
