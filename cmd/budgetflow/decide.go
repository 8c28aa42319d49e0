package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/viant/budgetflow"
	"github.com/viant/budgetflow/internal/cli"
	"github.com/viant/budgetflow/service/workflow"
)

var (
	flagNote   string
	flagReason string
)

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List steps awaiting the acting user",
	RunE:  runPending,
}

var approveCmd = &cobra.Command{
	Use:   "approve <step-id>",
	Short: "Approve a pending step",
	Args:  cobra.ExactArgs(1),
	RunE:  runApprove,
}

var rejectCmd = &cobra.Command{
	Use:   "reject <step-id>",
	Short: "Reject a pending step",
	Args:  cobra.ExactArgs(1),
	RunE:  runReject,
}

func init() {
	approveCmd.Flags().StringVar(&flagNote, "note", "", "Optional approval note")
	rejectCmd.Flags().StringVar(&flagReason, "reason", "", "Rejection reason")
	_ = rejectCmd.MarkFlagRequired("reason")
	rootCmd.AddCommand(pendingCmd, approveCmd, rejectCmd)
}

func runPending(cmd *cobra.Command, _ []string) error {
	actor, err := requireActor()
	if err != nil {
		return err
	}
	return withService(cmd, func(ctx context.Context, srv *budgetflow.Service) error {
		pending, err := srv.ListPendingApprovals(ctx, actor)
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(pending)
		}
		if len(pending) == 0 {
			fmt.Println("nothing awaiting your decision")
			return nil
		}
		rows := make([][]string, 0, len(pending))
		for _, item := range pending {
			rows = append(rows, []string{
				item.Step.ID,
				item.Request.RequestNumber,
				strconv.Itoa(item.Step.Step) + "/" + strconv.Itoa(item.Request.TotalSteps),
				cli.FormatAmount(item.Request.Amount),
				item.Request.Purpose,
				item.Request.CreatedAt.Format("2006-01-02 15:04"),
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Pending approvals",
			Headers: []string{"Step ID", "Request", "Step", "Amount", "Purpose", "Created"},
			Rows:    rows,
		}))
		return nil
	})
}

func runApprove(cmd *cobra.Command, args []string) error {
	return decide(cmd, func(ctx context.Context, srv *budgetflow.Service, actor string) (*workflow.Result, error) {
		return srv.Approve(ctx, args[0], actor, flagNote)
	})
}

func runReject(cmd *cobra.Command, args []string) error {
	return decide(cmd, func(ctx context.Context, srv *budgetflow.Service, actor string) (*workflow.Result, error) {
		return srv.Reject(ctx, args[0], actor, flagReason)
	})
}

func decide(cmd *cobra.Command, fn func(ctx context.Context, srv *budgetflow.Service, actor string) (*workflow.Result, error)) error {
	actor, err := requireActor()
	if err != nil {
		return err
	}
	return withService(cmd, func(ctx context.Context, srv *budgetflow.Service) error {
		result, err := fn(ctx, srv, actor)
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(result)
		}
		fmt.Println(result.Message)
		if result.NextRole != "" {
			fmt.Printf("awaiting %s\n", result.NextRole)
		}
		return nil
	})
}
