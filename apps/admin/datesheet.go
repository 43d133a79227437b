package main

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/jounabs52/datesheet/core"
	"github.com/jounabs52/datesheet/core/exam"
)

func (cli *commandLine) datesheetCmd() *cobra.Command {
	var (
		start, end string
		rule       exam.DateRule
	)
	cmd := &cobra.Command{
		Use:   "datesheet",
		Short: "Print the exam dates generated from a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if start == "" || end == "" {
				_ = cmd.Usage()
				return errHelp
			}
			var err error
			if rule.StartDate, err = core.ParseDate(start); err != nil {
				return err
			}
			if rule.EndDate, err = core.ParseDate(end); err != nil {
				return err
			}
			return cli.datesheet(rule)
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "first day of the range (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "last day of the range (YYYY-MM-DD)")
	cmd.Flags().IntVar(&rule.Interval, "interval", 1, "days between two exams")
	cmd.Flags().BoolVar(&rule.SkipSaturday, "skip-saturday", false, "never schedule on Saturdays")
	cmd.Flags().BoolVar(&rule.SkipSunday, "skip-sunday", false, "never schedule on Sundays")
	return cmd
}

func (cli *commandLine) datesheet(rule exam.DateRule) error {
	dates, err := exam.GenerateDates(rule)
	if err != nil {
		return err
	}
	if len(dates) == 0 {
		cli.warn("no exam dates between %s and %s", rule.StartDate, rule.EndDate)
		return nil
	}

	table := tablewriter.NewWriter(cli.out)
	table.SetHeader([]string{"#", "Date", "Weekday"})
	for i, d := range dates {
		table.Append([]string{strconv.Itoa(i + 1), d.String(), d.Weekday().String()})
	}
	table.Render()
	_, _ = fmt.Fprintf(cli.out, "%d dates\n", len(dates))
	return nil
}
