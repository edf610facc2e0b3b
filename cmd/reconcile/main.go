package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/xavierca1/lead-reconciliation/internal/app"
	"github.com/xavierca1/lead-reconciliation/internal/config"
	"github.com/xavierca1/lead-reconciliation/internal/infra/storage"
	"github.com/xavierca1/lead-reconciliation/internal/reconcile"
	"github.com/xavierca1/lead-reconciliation/internal/usecase"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Cruzamento de leads do MKT com a base de alunos da Pacto",
	}

	rootCmd.AddCommand(createRunCmd())
	rootCmd.AddCommand(createBookingsCmd())
	rootCmd.AddCommand(createAuditCmd())
	rootCmd.AddCommand(createOfflineCmd())
	rootCmd.AddCommand(createScoreCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// bootstrap carrega a configuração e monta as dependências. Encerra o processo em erro.
func bootstrap() (context.Context, context.CancelFunc, *app.App) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Configuração inválida: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	ctx, cancel := context.WithTimeout(ctx, cfg.ReconcileTimeout)

	a, err := app.New(ctx, cfg)
	if err != nil {
		cancel()
		stop()
		log.Fatalf("❌ %v", err)
	}

	return ctx, func() {
		a.Close()
		cancel()
		stop()
	}, a
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Printf("⚠️ Erro ao imprimir resultado: %v", err)
	}
}

func createRunCmd() *cobra.Command {
	var (
		threshold   int
		windowDays  int
		windowStart string
		skipNotify  bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Executa o cruzamento completo (Pacto + planilha -> Historico + vendas novas)",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, done, a := bootstrap()
			defer done()

			if a.Reconcile == nil {
				log.Fatal("❌ Cruzamento indisponível: configure TOKEN/EMPRESA_ID e a planilha de leads")
			}

			input := usecase.ReconcileLeadsInput{WindowStart: windowStart, SkipNotify: skipNotify}
			if cmd.Flags().Changed("threshold") {
				input.Threshold = &threshold
			}
			if cmd.Flags().Changed("window-days") {
				input.WindowDays = &windowDays
			}

			out, err := a.Reconcile.Execute(ctx, input)
			if err != nil {
				log.Fatalf("❌ Cruzamento falhou: %v", err)
			}
			printJSON(out)
		},
	}

	cmd.Flags().IntVar(&threshold, "threshold", reconcile.DefaultThreshold, "score mínimo (0-100) para considerar match")
	cmd.Flags().IntVar(&windowDays, "window-days", 0, "janela de venda recente em dias (0 = início do mês)")
	cmd.Flags().StringVar(&windowStart, "window-start", "", "início fixo da janela (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&skipNotify, "skip-notify", false, "não envia as vendas novas ao backend")
	return cmd
}

func createBookingsCmd() *cobra.Command {
	var (
		events []string
		csvOut string
	)

	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "Limpa os agendamentos executados e grava a aba Agendamentos",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, done, a := bootstrap()
			defer done()

			if a.Bookings == nil {
				log.Fatal("❌ Extração da Pacto não configurada (TOKEN/EMPRESA_ID)")
			}

			out, ds, err := a.Bookings.Execute(ctx, usecase.CleanBookingsInput{Events: events})
			if err != nil {
				log.Fatalf("❌ Limpeza de agendamentos falhou: %v", err)
			}
			if csvOut != "" {
				if err := storage.WriteCSV(csvOut, ds); err != nil {
					log.Fatalf("❌ Erro ao gerar %s: %v", csvOut, err)
				}
				log.Printf("📄 Agendamentos salvos em %s", csvOut)
			}
			printJSON(out)
		},
	}

	cmd.Flags().StringSliceVar(&events, "events", nil, "tipos de treino considerados (padrão: configurados)")
	cmd.Flags().StringVar(&csvOut, "csv", "", "também exporta os agendamentos limpos para este CSV")
	return cmd
}

func createAuditCmd() *cobra.Command {
	var (
		days  int
		email bool
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Audita agendamentos x matrículas e gera a lista de recuperação",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, done, a := bootstrap()
			defer done()

			if a.Audit == nil {
				log.Fatal("❌ Extração da Pacto não configurada (TOKEN/EMPRESA_ID)")
			}

			out, err := a.Audit.Execute(ctx, usecase.AuditInput{Days: days, SendEmail: email})
			if err != nil {
				log.Fatalf("❌ Auditoria falhou: %v", err)
			}
			printJSON(out)
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "dias de matrículas considerados (0 = configurado)")
	cmd.Flags().BoolVar(&email, "email", false, "envia o relatório por e-mail")
	return cmd
}

func createScoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score [nome A] [nome B]",
		Short: "Mostra o score de similaridade entre dois nomes",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%q x %q = %d\n", args[0], args[1], reconcile.TokenSortRatio(args[0], args[1]))
		},
	}
}
