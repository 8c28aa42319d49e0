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
	flagProjectCode   string
	flagProjectName   string
	flagProjectBudget string
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a project",
	RunE:  runProjectAdd,
}

var projectShowCmd = &cobra.Command{
	Use:   "show <project-id>",
	Short: "Show a project and its line items",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectShow,
}

func init() {
	projectAddCmd.Flags().StringVar(&flagProjectCode, "code", "", "Project code")
	projectAddCmd.Flags().StringVar(&flagProjectName, "name", "", "Project name")
	projectAddCmd.Flags().StringVar(&flagProjectBudget, "budget", "0", "Total budget")
	_ = projectAddCmd.MarkFlagRequired("name")
	projectCmd.AddCommand(projectAddCmd, projectShowCmd)
	rootCmd.AddCommand(projectCmd)
}

func runProjectAdd(cmd *cobra.Command, _ []string) error {
	budget, err := model.ParseAmount(flagProjectBudget)
	if err != nil {
		return err
	}
	return withService(cmd, func(ctx context.Context, srv *budgetflow.Service) error {
		project, err := srv.CreateProject(ctx, &budgetflow.ProjectInput{Code: flagProjectCode, Name: flagProjectName, Budget: budget})
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(project)
		}
		fmt.Printf("project %s created (%s)\n", project.ID, cli.FormatAmount(project.CurrentBudget))
		return nil
	})
}

func runProjectShow(cmd *cobra.Command, args []string) error {
	return withService(cmd, func(ctx context.Context, srv *budgetflow.Service) error {
		project, err := srv.Project(ctx, args[0])
		if err != nil {
			return err
		}
		items, err := srv.LineItems(ctx, project.ID)
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(map[string]interface{}{"project": project, "lineItems": items})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   fmt.Sprintf("%s %s", project.Code, project.Name),
			Headers: []string{"Budget", "Executed", "Remaining", "Rate"},
			Rows: [][]string{{
				cli.FormatAmount(project.CurrentBudget),
				cli.FormatAmount(project.ExecutedAmount),
				cli.FormatAmount(project.RemainingBudget),
				cli.FormatPercent(project.ExecutionRate),
			}},
		}))
		rows := make([][]string, 0, len(items))
		for _, item := range items {
			active := "yes"
			if !item.Active {
				active = "no"
			}
			rows = append(rows, []string{
				item.ID, item.Category, item.Name,
				cli.FormatAmount(item.CurrentBudget),
				cli.FormatAmount(item.ExecutedAmount),
				cli.FormatAmount(item.PendingExecutionAmount),
				cli.FormatAmount(item.Available()),
				active,
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Line items",
			Headers: []string{"ID", "Category", "Name", "Budget", "Executed", "Pending", "Available", "Active"},
			Rows:    rows,
		}))
		return nil
	})
}
