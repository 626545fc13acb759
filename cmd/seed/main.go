// Package main loads the Varanda JK sample menu into the catalog tables. It
// applies the embedded migrations first and does nothing when the catalog
// already has categories.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Luiza-Bandeira/VarandaJK/internal/config"
	"github.com/Luiza-Bandeira/VarandaJK/internal/domain"
	"github.com/Luiza-Bandeira/VarandaJK/internal/repository/postgres"
	"github.com/Luiza-Bandeira/VarandaJK/pkg/database"
	"github.com/Luiza-Bandeira/VarandaJK/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg.ServiceName+"-seed", cfg.LogLevel)
	slog.SetDefault(log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pgCfg := cfg.PostgresConfig()
	pool, err := database.NewPostgresPool(ctx, &pgCfg, log)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, postgres.Migrations(), log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	result, err := postgres.Seed(ctx, pool, sampleMenu())
	if err != nil {
		return err
	}
	if result.Skipped {
		log.Info("catalog already seeded, nothing to do")
		return nil
	}

	log.Info("catalog seeded",
		slog.Int("categories", result.Categories),
		slog.Int("items", result.Items),
	)
	return nil
}

// --------------------------------------------------------------------------
// Sample data
// --------------------------------------------------------------------------

func price(cents int64) *domain.Money {
	m := domain.Money(cents)
	return &m
}

func sampleMenu() []postgres.SeedCategory {
	return []postgres.SeedCategory{
		{
			Name: "Espetinhos", Key: "espetinho", Icon: domain.IconBeef,
			Items: []postgres.SeedItem{
				{Name: "Espetinho de Carne", Description: "Contra filé temperado na brasa", Price: 1000},
				{Name: "Espetinho de Frango", Description: "Peito de frango com bacon", Price: 900},
				{Name: "Espetinho de Queijo Coalho", Description: "Com melaço de cana", Price: 800},
			},
		},
		{
			Name: "Pastéis", Key: "pastel", Icon: domain.IconUtensilsCrossed,
			Items: []postgres.SeedItem{
				{
					Name: "Pastel", Description: "Massa crocante frita na hora", Price: 800,
					OptionsTitle: "Sabor",
					Variants: []domain.Variant{
						{Value: "carne", Label: "Carne"},
						{Value: "queijo", Label: "Queijo"},
						{Value: "frango", Label: "Frango"},
					},
					AddOn: &domain.AddOn{Label: "Catupiry (+R$ 3,00)", Surcharge: 300},
				},
			},
		},
		{
			Name: "Lanches", Key: "lanche", Icon: domain.IconSandwich,
			Items: []postgres.SeedItem{
				{Name: "X-Burguer", Description: "Pão, hambúrguer, queijo e salada", Price: 1800},
				{
					Name: "X-Tudo", Description: "Hambúrguer, ovo, bacon, presunto e queijo", Price: 2600,
					AddOn: &domain.AddOn{Label: "Hambúrguer extra (+R$ 6,00)", Surcharge: 600},
				},
			},
		},
		{
			Name: "Porções", Key: "porcao", Icon: domain.IconDrumstick,
			Items: []postgres.SeedItem{
				{
					Name: "Batata Frita", Price: 2000, OptionsTitle: "Tamanho",
					Variants: []domain.Variant{
						{Value: "meia", Label: "Meia porção"},
						{Value: "inteira", Label: "Inteira", Price: price(3200)},
					},
				},
				{Name: "Frango à Passarinho", Description: "Com alho frito", Price: 3800},
			},
		},
		{
			Name: "Bebidas", Key: "bebida", Icon: domain.IconCupSoda,
			Items: []postgres.SeedItem{
				{
					Name: "Refrigerante Lata", Price: 600, OptionsTitle: "Sabor",
					Variants: []domain.Variant{
						{Value: "coca", Label: "Coca-Cola"},
						{Value: "guarana", Label: "Guaraná"},
					},
				},
				{Name: "Suco Natural", Description: "Laranja, maracujá ou acerola", Price: 900},
				{Name: "Água Mineral", Price: 400},
			},
		},
		{
			Name: "Cervejas", Key: "cerveja", Icon: domain.IconBeer,
			Items: []postgres.SeedItem{
				{Name: "Cerveja Long Neck", Price: 1000},
				{Name: "Cerveja 600ml", Price: 1400},
			},
		},
	}
}
