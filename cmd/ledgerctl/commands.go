package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"ledger/config"
	"ledger/models"
	"ledger/service"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type app struct {
	cfg      *config.Config
	ledger   *service.Ledger
	reporter *service.Reporter
}

type opener func(configPath string) (*app, error)

func newRootCmd(open opener) *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "账务系统运维工具",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "外部配置文件路径")

	load := func() (*app, error) { return open(configPath) }
	root.AddCommand(
		reconcileCmd(load),
		capitalCmd(load),
		scheduleCmd(),
		remindCmd(load),
		exportCmd(load),
	)
	return root
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func reconcileCmd(load func() (*app, error)) *cobra.Command {
	var fix, asJSON bool
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "用付款分期重算已付金额，并核对现金余额与资金流水",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			report, err := a.ledger.Reconcile(cmd.Context(), fix)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, report)
			}

			fmt.Fprintf(out, "检查财务记录: %d，不一致: %d\n", report.Checked, len(report.Drifted))
			if len(report.Drifted) > 0 {
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "RECORD\tSTORED\tCOMPUTED")
				for _, d := range report.Drifted {
					fmt.Fprintf(tw, "%d\t%s\t%s\n", d.RecordID, d.Stored.StringFixed(2), d.Computed.StringFixed(2))
				}
				tw.Flush()
				if fix {
					fmt.Fprintln(out, "已写回")
				}
			}
			if report.Capital == nil {
				fmt.Fprintln(out, "现金余额: 未设定")
				return nil
			}
			status := "一致"
			if !report.Capital.Consistent {
				status = "不一致"
			}
			fmt.Fprintf(out, "现金余额: %s，流水合计: %s（%s）\n",
				report.Capital.Balance.StringFixed(2), report.Capital.JournalTotal.StringFixed(2), status)
			return nil
		},
	}
	cmd.Flags().BoolVar(&fix, "fix", false, "写回重算后的已付金额")
	cmd.Flags().BoolVar(&asJSON, "json", false, "以 JSON 输出")
	return cmd
}

func capitalCmd(load func() (*app, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "capital",
		Short: "现金余额",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "显示当前余额",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			c, err := a.ledger.Capital().Balance(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s（更新于 %s）\n", c.InitialAmount.StringFixed(2), a.cfg.Ledger.Currency, c.LastUpdated.Format("2006-01-02 15:04"))
			return nil
		},
	}

	var note string
	set := &cobra.Command{
		Use:   "set <amount>",
		Short: "设定余额，差额记为手工调整",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := service.ParseDecimal("amount", args[0])
			if err != nil {
				return err
			}
			a, err := load()
			if err != nil {
				return err
			}
			c, err := a.ledger.Capital().Set(cmd.Context(), amount, note)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "现金余额已设为 %s %s\n", c.InitialAmount.StringFixed(2), a.cfg.Ledger.Currency)
			return nil
		},
	}
	set.Flags().StringVar(&note, "note", "", "备注")

	var limit int
	movements := &cobra.Command{
		Use:   "movements",
		Short: "最近的资金流水",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			list, err := a.ledger.Capital().Movements(cmd.Context(), limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tSOURCE\tID\tAMOUNT\tBALANCE\tNOTE")
			for _, m := range list {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n", m.CreatedAt.Format("2006-01-02 15:04"), m.Source, m.SourceID,
					m.Amount.StringFixed(2), m.BalanceAfter.StringFixed(2), m.Note)
			}
			return tw.Flush()
		},
	}
	movements.Flags().IntVar(&limit, "limit", 20, "条数，0 表示全部")

	cmd.AddCommand(show, set, movements)
	return cmd
}

func scheduleCmd() *cobra.Command {
	var (
		principal, rate, start, remainder string
		months                            int
	)
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "预览贷款还款计划（不写库）",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := service.ParseAmount("principal", principal)
			if err != nil {
				return err
			}
			r, err := service.ParseOptionalAmount("rate", rate)
			if err != nil {
				return err
			}
			startDate, err := models.ParseDate(start)
			if err != nil {
				return fmt.Errorf("start 日期格式应为 YYYY-MM-DD: %w", err)
			}
			list, err := service.BuildSchedule(p, r, months, startDate, remainder)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(tw, "#\tDUE\tPRINCIPAL\tINTEREST\tTOTAL\t")
			total := decimal.Zero
			for i, inst := range list {
				total = total.Add(inst.TotalInstallmentAmount)
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t\n", i+1, inst.DueDate.Format(models.DateLayout),
					inst.PrincipalComponent.StringFixed(2), inst.InterestComponent.StringFixed(2), inst.TotalInstallmentAmount.StringFixed(2))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "合计: %s\n", total.StringFixed(2))
			return nil
		},
	}
	cmd.Flags().StringVar(&principal, "principal", "", "贷款本金")
	cmd.Flags().StringVar(&rate, "rate", "0", "总利率（百分比）")
	cmd.Flags().IntVar(&months, "months", 12, "期数（月）")
	cmd.Flags().StringVar(&start, "start", "", "起始日期 YYYY-MM-DD")
	cmd.Flags().StringVar(&remainder, "remainder", config.RemainderDrop, "取整差额处理: drop 或 final")
	_ = cmd.MarkFlagRequired("principal")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}

func remindCmd(load func() (*app, error)) *cobra.Command {
	var (
		to     string
		days   int
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "发送即将到期与已逾期的月供提醒邮件",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			alerts, err := a.reporter.Alerts(cmd.Context(), days)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "即将到期: %d，已逾期: %d\n", len(alerts.Upcoming), len(alerts.Overdue))
			if dryRun || alerts.Empty() {
				return nil
			}
			sent, err := service.NewEmailService(&a.cfg.Email, a.cfg.Ledger.Currency).SendInstallmentReminder(to, alerts)
			if err != nil {
				return err
			}
			if sent {
				fmt.Fprintln(out, "提醒邮件已发送")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "收件人，默认 email.notify_to")
	cmd.Flags().IntVar(&days, "days", -1, "提前提醒天数，默认 ledger.alert_window_days")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "只统计不发送")
	return cmd
}

func exportCmd(load func() (*app, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "导出 Excel",
	}

	var period, start, end, output string
	transactions := &cobra.Command{
		Use:   "transactions",
		Short: "按周期导出交易",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			rng, err := service.ParsePeriod(period, start, end, a.ledger.Today())
			if err != nil {
				return err
			}
			list, err := a.ledger.ListTransactions(cmd.Context(), service.TransactionFilter{Range: rng})
			if err != nil {
				return err
			}
			f, err := service.TransactionsWorkbook(list)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := f.SaveAs(output); err != nil {
				return fmt.Errorf("保存 %s 失败: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已导出 %d 笔交易到 %s\n", len(list), output)
			return nil
		},
	}
	transactions.Flags().StringVar(&period, "period", service.PeriodAll, "all|today|week|month|custom")
	transactions.Flags().StringVar(&start, "start", "", "custom 起始日期")
	transactions.Flags().StringVar(&end, "end", "", "custom 结束日期")
	transactions.Flags().StringVarP(&output, "output", "o", "transactions.xlsx", "输出文件")

	var bankOutput string
	bank := &cobra.Command{
		Use:   "bank",
		Short: "导出启用中贷款的对账单",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			st, err := a.reporter.BankStatement(cmd.Context())
			if err != nil {
				return err
			}
			f, err := service.BankStatementWorkbook(st)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := f.SaveAs(bankOutput); err != nil {
				return fmt.Errorf("保存 %s 失败: %w", bankOutput, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已导出 %d 期月供到 %s\n", len(st.Installments), bankOutput)
			return nil
		},
	}
	bank.Flags().StringVarP(&bankOutput, "output", "o", "bank_statement.xlsx", "输出文件")

	cmd.AddCommand(transactions, bank)
	return cmd
}
