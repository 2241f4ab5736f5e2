package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"regimealloc/cmd"
	"regimealloc/internal/domain"
	"regimealloc/internal/ingest"
	l1_service "regimealloc/internal/service/l1"
	l2_service "regimealloc/internal/service/l2"
	l3_service "regimealloc/internal/service/l3"
)

var (
	configPath    string
	marginalsPath string
	snapshotPath  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "regimealloc",
		Short: "scenario-generation and regret-minimization portfolio optimizer",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to yaml config (default regimealloc.yaml)")

	optimizeCmd := &cobra.Command{
		Use:   "optimize",
		Short: "run one optimization and print the allocation with its trace",
		RunE:  runOptimize,
	}
	optimizeCmd.Flags().StringVar(&marginalsPath, "marginals", "", "yaml file with per-theme marginal distributions")
	optimizeCmd.Flags().StringVar(&snapshotPath, "snapshot", "", "optional indicator snapshot csv, classified for the trace")
	_ = optimizeCmd.MarkFlagRequired("marginals")

	scenariosCmd := &cobra.Command{
		Use:   "scenarios",
		Short: "enumerate the 81 joint regimes for a marginal set",
		RunE:  runScenarios,
	}
	scenariosCmd.Flags().StringVar(&marginalsPath, "marginals", "", "yaml file with per-theme marginal distributions")
	_ = scenariosCmd.MarkFlagRequired("marginals")

	classifyCmd := &cobra.Command{
		Use:   "classify",
		Short: "classify an indicator snapshot into theme scores and states",
		RunE:  runClassify,
	}
	classifyCmd.Flags().StringVar(&snapshotPath, "snapshot", "", "indicator snapshot csv")
	_ = classifyCmd.MarkFlagRequired("snapshot")

	rootCmd.AddCommand(optimizeCmd, scenariosCmd, classifyCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func loadMarginals(path string) (domain.Marginals, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read marginals file: %w", err)
	}
	raw := map[string]domain.Marginal{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse marginals file: %w", err)
	}
	marginals := domain.Marginals{}
	for tag, marginal := range raw {
		marginals[domain.ThemeTag(tag)] = marginal
	}
	if err := marginals.Valid(); err != nil {
		return nil, err
	}
	return marginals, nil
}

func pprint(v interface{}) {
	bytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(bytes))
}

func runOptimize(_ *cobra.Command, _ []string) error {
	handler, err := cmd.InitializeDependencies(configPath)
	if err != nil {
		return err
	}

	marginals, err := loadMarginals(marginalsPath)
	if err != nil {
		return err
	}

	in := l3_service.OptimizeInput{Marginals: marginals}
	if snapshotPath != "" {
		snapshot, err := ingest.LoadSnapshot(snapshotPath, handler.Cfg)
		if err != nil {
			return err
		}
		scores, err := l1_service.ClassifyThemes(handler.Cfg, snapshot.Observations)
		if err != nil {
			return err
		}
		in.ThemeScores = scores
	}

	ctx, _ := domain.NewCtxWithProfile(context.Background())
	resp, err := handler.OptimizeService.Optimize(ctx, in)
	if err != nil {
		return err
	}

	pprint(map[string]interface{}{
		"allocation": resp.Allocation,
		"trace":      resp.Trace,
	})
	return nil
}

func runScenarios(_ *cobra.Command, _ []string) error {
	handler, err := cmd.InitializeDependencies(configPath)
	if err != nil {
		return err
	}

	marginals, err := loadMarginals(marginalsPath)
	if err != nil {
		return err
	}

	scenarios, err := l2_service.EnumerateScenarios(marginals)
	if err != nil {
		return err
	}
	selection := l2_service.SelectScenarios(scenarios, handler.Cfg.Selection)

	pprint(map[string]interface{}{
		"scenarios":             scenarios,
		"selected":              selection.Selected,
		"cumulativeProbability": selection.CumulativeProbability,
	})
	return nil
}

func runClassify(_ *cobra.Command, _ []string) error {
	handler, err := cmd.InitializeDependencies(configPath)
	if err != nil {
		return err
	}

	snapshot, err := ingest.LoadSnapshot(snapshotPath, handler.Cfg)
	if err != nil {
		return err
	}
	if len(snapshot.Unknown) > 0 {
		handler.Logger.Warnw("snapshot contains unknown indicator keys", "keys", snapshot.Unknown)
	}

	scores, err := l1_service.ClassifyThemes(handler.Cfg, snapshot.Observations)
	if err != nil {
		return err
	}

	pprint(scores)
	return nil
}
