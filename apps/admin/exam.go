package main

import (
	"context"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jounabs52/datesheet/core/exam"
)

var errNotTerminal = errors.New("stdin is not a terminal: use --yes to delete without confirmation")

func (cli *commandLine) examCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exam",
		Short: "Inspect and delete exams",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cli.connect()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Usage()
			return errHelp
		},
	}

	var filter exam.QueryFilter
	list := &cobra.Command{
		Use:   "list",
		Short: "Print exams, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.listExams(cmd.Context(), filter)
		},
	}
	list.Flags().StringVar(&filter.Status, "status", "", "only exams with this status")
	list.Flags().StringVar(&filter.Type, "type", "", "only exams of this type")

	grid := &cobra.Command{
		Use:   "grid ID",
		Short: "Print the classes × dates grid of a calendar-mode exam",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.printGrid(cmd.Context(), args[0])
		},
	}

	var yes bool
	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an exam and all its slots",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.deleteExam(cmd.Context(), args[0], yes)
		},
	}
	del.Flags().BoolVar(&yes, "yes", false, "do not ask for confirmation")

	cmd.AddCommand(list, grid, del)
	return cmd
}

func (cli *commandLine) listExams(ctx context.Context, filter exam.QueryFilter) error {
	exams, err := cli.examSvc.Query(ctx, &filter, nil)
	if err != nil {
		return err
	}
	if len(exams) == 0 {
		cli.warn("no exams found")
		return nil
	}

	table := tablewriter.NewWriter(cli.out)
	table.SetHeader([]string{"ID", "Name", "Type", "Mode", "Start", "End", "Status"})
	for _, e := range exams {
		table.Append([]string{e.ID, e.Name, e.Type, e.Mode, e.StartDate.String(), e.EndDate.String(), e.Status})
	}
	table.Render()
	return nil
}

func (cli *commandLine) printGrid(ctx context.Context, id string) error {
	grid, err := cli.examSvc.Grid(ctx, id)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cli.out, "%s (%s)\n", grid.Exam.Name, grid.Exam.ID)
	if len(grid.Rows) == 0 {
		cli.warn("the exam has no slots")
		return nil
	}

	header := make([]string, 0, len(grid.Dates)+1)
	header = append(header, "Class")
	for _, d := range grid.Dates {
		header = append(header, d.String())
	}

	table := tablewriter.NewWriter(cli.out)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	for _, row := range grid.Rows {
		line := make([]string, 0, len(row.Cells)+1)
		line = append(line, row.ClassID)
		for _, cell := range row.Cells {
			switch {
			case cell == nil:
				line = append(line, "")
			case cell.HasSubject():
				line = append(line, cell.Subject())
			default:
				line = append(line, "-")
			}
		}
		table.Append(line)
	}
	table.Render()
	return nil
}

func (cli *commandLine) deleteExam(ctx context.Context, id string, yes bool) error {
	e, err := cli.examSvc.Get(ctx, id)
	if err != nil {
		return err
	}

	if !yes {
		if !cli.isTerminal() {
			return errNotTerminal
		}
		n, err := cli.examSvc.SlotCount(ctx, e.ID)
		if err != nil {
			return err
		}
		ok, err := cli.confirm(fmt.Sprintf("Delete exam %q and its %d slots?", e.Name, n))
		if err != nil {
			return err
		}
		if !ok {
			cli.warn("aborted")
			return nil
		}
	}

	if err = cli.examSvc.Delete(ctx, e.ID); err != nil {
		return errors.Wrap(err, "deleting exam")
	}
	_, _ = fmt.Fprintf(cli.out, "exam %s deleted\n", e.ID)
	return nil
}
