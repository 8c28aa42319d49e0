package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/viant/budgetflow"
	"github.com/viant/budgetflow/internal/cli"
	"github.com/viant/budgetflow/model"
)

var (
	flagLineProject  string
	flagLineCategory string
	flagLineName     string
	flagLineBudget   string
)

var lineCmd = &cobra.Command{
	Use:   "line",
	Short: "Manage budget line items",
}

var lineAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a line item to a project",
	RunE:  runLineAdd,
}

var lineActivateCmd = &cobra.Command{
	Use:   "activate <line-item-id>",
	Short: "Include a line item in project totals",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return runLineActive(cmd, args[0], true) },
}

var lineDeactivateCmd = &cobra.Command{
	Use:   "deactivate <line-item-id>",
	Short: "Exclude a line item from project totals",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return runLineActive(cmd, args[0], false) },
}

func init() {
	lineAddCmd.Flags().StringVarP(&flagLineProject, "project", "p", "", "Project id")
	lineAddCmd.Flags().StringVar(&flagLineCategory, "category", "", "Category")
	lineAddCmd.Flags().StringVar(&flagLineName, "name", "", "Line item name")
	lineAddCmd.Flags().StringVar(&flagLineBudget, "budget", "0", "Line item budget")
	_ = lineAddCmd.MarkFlagRequired("project")
	_ = lineAddCmd.MarkFlagRequired("name")
	lineCmd.AddCommand(lineAddCmd, lineActivateCmd, lineDeactivateCmd)
	rootCmd.AddCommand(lineCmd)
}

func runLineAdd(cmd *cobra.Command, _ []string) error {
	budget, err := model.ParseAmount(flagLineBudget)
	if err != nil {
		return err
	}
	return withService(cmd, func(ctx context.Context, srv *budgetflow.Service) error {
		item, err := srv.CreateLineItem(ctx, &budgetflow.LineItemInput{
			ProjectID: flagLineProject,
			Category:  flagLineCategory,
			Name:      flagLineName,
			Budget:    budget,
		})
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(item)
		}
		fmt.Printf("line item %s created (%s)\n", item.ID, cli.FormatAmount(item.CurrentBudget))
		return nil
	})
}

func runLineActive(cmd *cobra.Command, lineItemID string, active bool) error {
	return withService(cmd, func(ctx context.Context, srv *budgetflow.Service) error {
		project, err := srv.SetLineItemActive(ctx, lineItemID, active)
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(project)
		}
		fmt.Printf("project %s executed %s (%s)\n", project.ID,
			cli.FormatAmount(project.ExecutedAmount), cli.FormatPercent(project.ExecutionRate))
		return nil
	})
}
