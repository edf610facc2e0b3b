package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/xavierca1/lead-reconciliation/internal/entity"
	"github.com/xavierca1/lead-reconciliation/internal/infra/sheet"
	"github.com/xavierca1/lead-reconciliation/internal/infra/storage"
	"github.com/xavierca1/lead-reconciliation/internal/reconcile"
)

type offlineOptions struct {
	LeadsPath     string
	CustomersPath string
	Out           string
	NewSalesOut   string
	Options       reconcile.Options
}

func createOfflineCmd() *cobra.Command {
	var (
		opts        offlineOptions
		windowStart string
	)

	cmd := &cobra.Command{
		Use:   "offline",
		Short: "Cruza arquivos CSV locais (sem Pacto, sem banco) e gera o consolidado em CSV",
		Run: func(cmd *cobra.Command, args []string) {
			opts.Options.Now = time.Now()
			if windowStart != "" {
				start, err := time.ParseInLocation("2006-01-02", windowStart, time.Local)
				if err != nil {
					log.Fatalf("❌ --window-start inválido: %v", err)
				}
				opts.Options.WindowStart = start
			}

			res, err := runOffline(cmd.Context(), opts)
			if err != nil {
				log.Fatalf("❌ %v", err)
			}
			s := res.Summary
			fmt.Printf("Leads: %d | Vendas novas: %d | Alunos antigos: %d | Não encontrados: %d\n",
				s.Leads, s.NewSales, s.ExistingCustomer, s.NotFound)
		},
	}

	cmd.Flags().StringVar(&opts.LeadsPath, "leads", "", "CSV de leads (planilha do MKT ou já com a coluna ALUNO)")
	cmd.Flags().StringVar(&opts.CustomersPath, "customers", "", "CSV da base de alunos")
	cmd.Flags().StringVar(&opts.Out, "out", "consolidado.csv", "CSV do consolidado")
	cmd.Flags().StringVar(&opts.NewSalesOut, "new-sales", "", "CSV só com as vendas novas (opcional)")
	cmd.Flags().IntVar(&opts.Options.Threshold, "threshold", reconcile.DefaultThreshold, "score mínimo (0-100)")
	cmd.Flags().IntVar(&opts.Options.WindowDays, "window-days", 0, "janela de venda recente em dias (0 = início do mês)")
	cmd.Flags().StringVar(&windowStart, "window-start", "", "início fixo da janela (YYYY-MM-DD)")
	cmd.Flags().IntVar(&opts.Options.Workers, "workers", 1, "goroutines de match")
	cmd.MarkFlagRequired("leads")
	cmd.MarkFlagRequired("customers")
	return cmd
}

// runOffline lê os dois CSVs, cruza e grava o consolidado.
// Planilha crua do MKT (com coluna de mês) passa antes por ParseLeadSheet.
func runOffline(ctx context.Context, opts offlineOptions) (*reconcile.Result, error) {
	if opts.Options.Threshold < 0 || opts.Options.Threshold > 100 {
		return nil, fmt.Errorf("--threshold deve estar entre 0 e 100, recebido %d", opts.Options.Threshold)
	}

	leads, err := sheet.NewFileSource(opts.LeadsPath).Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler leads: %w", err)
	}
	customers, err := sheet.NewFileSource(opts.CustomersPath).Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler alunos: %w", err)
	}

	if !leads.HasColumn(entity.ColLeadName) {
		parsed := reconcile.ParseLeadSheet(leads, opts.Options.Now, nil)
		log.Printf("📥 Planilha do MKT: %d leads de %s", len(parsed), reconcile.MonthName(opts.Options.Now.Month()))
		leads = entity.LeadDataset(parsed)
	}

	res := reconcile.Reconcile(leads, customers, opts.Options)
	for _, issue := range res.Issues {
		log.Printf("⚠️ [%s] linha %d: %s", issue.Kind, issue.Row, issue.Message)
	}

	if err := storage.WriteCSV(opts.Out, res.Records); err != nil {
		return nil, fmt.Errorf("erro ao gravar %s: %w", opts.Out, err)
	}
	log.Printf("✅ Consolidado salvo em %s (%d linhas)", opts.Out, res.Records.Len())

	if opts.NewSalesOut != "" {
		sales := reconcile.NewSales(res.Records)
		if err := storage.WriteCSV(opts.NewSalesOut, sales); err != nil {
			return nil, fmt.Errorf("erro ao gravar %s: %w", opts.NewSalesOut, err)
		}
		log.Printf("✅ %d vendas novas salvas em %s", sales.Len(), opts.NewSalesOut)
	}

	return res, nil
}
