package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/viant/budgetflow"
	"github.com/viant/budgetflow/internal/cli"
	"github.com/viant/budgetflow/model"
	"github.com/viant/budgetflow/service/dao"
	"github.com/viant/budgetflow/service/intake"
)

var (
	flagRequestProject string
	flagRequestLine    string
	flagRequestAmount  string
	flagRequestDate    string
	flagRequestPurpose string
	flagRequestType    string
	flagRequestStatus  string
)

var requestCmd = &cobra.Command{
	Use:   "request",
	Short: "Create and inspect execution requests",
}

var requestCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an execution request",
	RunE:  runRequestCreate,
}

var requestShowCmd = &cobra.Command{
	Use:   "show <request-id>",
	Short: "Show a request and its approval chain",
	Args:  cobra.ExactArgs(1),
	RunE:  runRequestShow,
}

var requestListCmd = &cobra.Command{
	Use:   "list",
	Short: "List requests, oldest first",
	RunE:  runRequestList,
}

func init() {
	requestCreateCmd.Flags().StringVarP(&flagRequestProject, "project", "p", "", "Project id")
	requestCreateCmd.Flags().StringVarP(&flagRequestLine, "line", "l", "", "Line item id")
	requestCreateCmd.Flags().StringVar(&flagRequestAmount, "amount", "", "Amount to execute")
	requestCreateCmd.Flags().StringVar(&flagRequestDate, "date", "", "Execution date (YYYY-MM-DD), defaults to today")
	requestCreateCmd.Flags().StringVar(&flagRequestPurpose, "purpose", "", "Purpose of the expense")
	requestCreateCmd.Flags().StringVar(&flagRequestType, "type", "", "Request type selecting the approval chain")
	for _, name := range []string{"project", "line", "amount", "purpose"} {
		_ = requestCreateCmd.MarkFlagRequired(name)
	}
	requestListCmd.Flags().StringVarP(&flagRequestProject, "project", "p", "", "Filter by project id")
	requestListCmd.Flags().StringVar(&flagRequestStatus, "status", "", "Filter by status (PENDING, APPROVED, REJECTED)")
	requestCmd.AddCommand(requestCreateCmd, requestShowCmd, requestListCmd)
	rootCmd.AddCommand(requestCmd)
}

func runRequestCreate(cmd *cobra.Command, _ []string) error {
	actor, err := requireActor()
	if err != nil {
		return err
	}
	amount, err := model.ParseAmount(flagRequestAmount)
	if err != nil {
		return err
	}
	date := time.Now().UTC()
	if flagRequestDate != "" {
		if date, err = time.Parse(time.DateOnly, flagRequestDate); err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
	}
	return withService(cmd, func(ctx context.Context, srv *budgetflow.Service) error {
		created, err := srv.CreateRequest(ctx, actor, &intake.Input{
			ProjectID:     flagRequestProject,
			LineItemID:    flagRequestLine,
			Amount:        amount,
			ExecutionDate: date,
			Purpose:       flagRequestPurpose,
			RequestType:   flagRequestType,
		})
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(created)
		}
		fmt.Printf("request %s created, awaiting %s\n", created.Request.RequestNumber, created.Steps[0].ApproverRole)
		return nil
	})
}

func runRequestShow(cmd *cobra.Command, args []string) error {
	return withService(cmd, func(ctx context.Context, srv *budgetflow.Service) error {
		detail, err := srv.Request(ctx, args[0])
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(detail)
		}
		request := detail.Request
		state, err := request.State()
		if err != nil {
			return err
		}
		fmt.Println(cli.RenderTitle(fmt.Sprintf("%s  %s  %s", request.RequestNumber, cli.FormatAmount(request.Amount), state)))
		fmt.Printf("purpose: %s\nrequested by: %s\n", request.Purpose, request.RequestedBy)
		if request.RejectionReason != "" {
			fmt.Printf("rejection reason: %s\n", request.RejectionReason)
		}
		rows := make([][]string, 0, len(detail.Steps))
		for _, step := range detail.Steps {
			decided := ""
			if step.DecidedAt != nil {
				decided = step.DecidedAt.Format(time.RFC3339)
			}
			rows = append(rows, []string{
				strconv.Itoa(step.Step), step.ID, step.ApproverRole,
				cli.RenderStatus(string(step.Status)), step.ApproverID, step.Decision, decided,
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Step", "ID", "Role", "Status", "Approver", "Decision", "Decided"},
			Rows:    rows,
		}))
		return nil
	})
}

func runRequestList(cmd *cobra.Command, _ []string) error {
	var parameters []*dao.Parameter
	if flagRequestProject != "" {
		parameters = append(parameters, dao.NewParameter(dao.ParamProjectID, flagRequestProject))
	}
	if flagRequestStatus != "" {
		parameters = append(parameters, dao.NewParameter(dao.ParamStatus, strings.ToUpper(flagRequestStatus)))
	}
	return withService(cmd, func(ctx context.Context, srv *budgetflow.Service) error {
		requests, err := srv.Requests(ctx, parameters...)
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(requests)
		}
		rows := make([][]string, 0, len(requests))
		for _, request := range requests {
			step := "-"
			if request.CurrentStep > 0 {
				step = fmt.Sprintf("%d/%d", request.CurrentStep, request.TotalSteps)
			}
			rows = append(rows, []string{
				request.RequestNumber, request.ID, cli.FormatAmount(request.Amount),
				cli.RenderStatus(string(request.Status)), step, request.RequestedBy,
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Requests",
			Headers: []string{"Number", "ID", "Amount", "Status", "Step", "Requested by"},
			Rows:    rows,
		}))
		return nil
	})
}
