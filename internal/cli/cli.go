package cli

import (
	"context"
	"fmt"
	"math/rand"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ignatzorin/freelance-jobs/internal/app"
	"github.com/ignatzorin/freelance-jobs/internal/config"
	"github.com/ignatzorin/freelance-jobs/internal/logger"
	"github.com/ignatzorin/freelance-jobs/internal/seed"
)

// BuildCLI собирает корневую команду jobsvc.
func BuildCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "jobsvc",
		Short:         "Сервис заказов, откликов и приглашений фриланс-биржи",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(buildServeCommand())
	rootCmd.AddCommand(buildMigrateCommand())
	rootCmd.AddCommand(buildDispatchCommand())
	rootCmd.AddCommand(buildSeedCommand())

	return rootCmd
}

func buildServeCommand() *cobra.Command {
	var skipMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Запустить HTTP API вместе с диспетчером outbox",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app.App) error {
				if !skipMigrations {
					if err := migrate(ctx, a); err != nil {
						return err
					}
				}
				return a.Serve(ctx)
			})
		},
	}
	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "не применять миграции при старте")
	return cmd
}

func buildMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Применить миграции из MIGRATIONS_PATH",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(migrate)
		},
	}
}

func buildDispatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dispatch",
		Short: "Запустить только диспетчер outbox",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app.App) error {
				return a.Dispatch(ctx)
			})
		},
	}
}

func buildSeedCommand() *cobra.Command {
	var (
		file     string
		generate bool
		opts     seed.GenerateOptions
		rndSeed  int64
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Загрузить фикстуры из YAML или сгенерировать случайные",
		Example: `  jobsvc seed -f fixtures.yaml
  jobsvc seed --generate --clients 5 --freelancers 20 --jobs 15`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var fixtures *seed.Fixtures
			switch {
			case file != "" && generate:
				return fmt.Errorf("укажите либо --file, либо --generate")
			case file != "":
				loaded, err := seed.LoadFile(file)
				if err != nil {
					return err
				}
				fixtures = loaded
			case generate:
				if rndSeed == 0 {
					rndSeed = time.Now().UnixNano()
				}
				fixtures = seed.Generate(rand.New(rand.NewSource(rndSeed)), opts)
			default:
				return fmt.Errorf("нужен --file или --generate")
			}

			return withApp(func(ctx context.Context, a *app.App) error {
				report, err := a.Seed(ctx, fixtures)
				if err != nil {
					return err
				}
				logger.Log.WithFields(logrus.Fields{
					"users_created":     report.UsersCreated,
					"users_existing":    report.UsersExisting,
					"jobs_created":      report.JobsCreated,
					"proposals_created": report.ProposalsCreated,
					"proposals_skipped": report.ProposalsSkipped,
				}).Info("seed: готово")
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML файл с фикстурами")
	cmd.Flags().BoolVar(&generate, "generate", false, "сгенерировать случайные фикстуры")
	cmd.Flags().IntVar(&opts.Clients, "clients", 3, "сколько клиентов сгенерировать")
	cmd.Flags().IntVar(&opts.Freelancers, "freelancers", 10, "сколько исполнителей сгенерировать")
	cmd.Flags().IntVar(&opts.Jobs, "jobs", 10, "сколько заказов сгенерировать")
	cmd.Flags().StringVar(&opts.Password, "password", "", "пароль для всех сгенерированных пользователей")
	cmd.Flags().Int64Var(&rndSeed, "seed", 0, "зерно генератора (0 означает текущее время)")

	return cmd
}

func migrate(ctx context.Context, a *app.App) error {
	applied, err := a.Migrate(ctx)
	if err != nil {
		return err
	}
	logger.Log.WithField("applied", applied).Info("migrate: миграции применены")
	return nil
}

// withApp загружает конфигурацию, настраивает логгер и отдаёт собранное
// приложение в fn. Контекст отменяется по SIGINT/SIGTERM.
func withApp(fn func(ctx context.Context, a *app.App) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	initLogger(cfg)

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}

func initLogger(cfg *config.Config) {
	logger.Init(cfg.LogLevel)
	if !cfg.IsProduction() {
		logger.SetTextFormatter()
	}
}
