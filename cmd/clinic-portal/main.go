package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pmsmanus/clinic-portal/internal/api"
	"github.com/pmsmanus/clinic-portal/internal/config"
	"github.com/pmsmanus/clinic-portal/internal/platform/middleware"
	"github.com/pmsmanus/clinic-portal/internal/query"
	"github.com/pmsmanus/clinic-portal/internal/reports"
	"github.com/pmsmanus/clinic-portal/internal/rx"
	"github.com/pmsmanus/clinic-portal/internal/session"
	"github.com/pmsmanus/clinic-portal/internal/web"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-portal",
		Short: "Clinic management web portal",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(reportCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "" || os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the portal server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	client := api.NewClient(api.Config{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.APITimeout(),
	})

	cache := query.New(cfg.CacheTTL())
	cleanupCtx, stopCleanup := context.WithCancel(context.Background())
	defer stopCleanup()
	cache.StartCleanup(cleanupCtx, cfg.CacheTTL())

	gate := session.NewGate(api.NewAuthService(client), cfg.CacheTTL())

	handler, err := web.New(web.Options{
		Patients:      api.NewPatientsService(client),
		Appointments:  api.NewAppointmentsService(client),
		Prescriptions: api.NewPrescriptionsService(client),
		Documents:     api.NewDocumentsService(client),
		Gate:          gate,
		Cache:         cache,
		Letterhead: rx.Letterhead{
			Name:    cfg.ClinicName,
			Address: cfg.ClinicAddress,
			Phone:   cfg.ClinicPhone,
			Email:   cfg.ClinicEmail,
			RegNo:   cfg.ClinicRegNo,
		},
		UploadsBase: cfg.UploadsBase,
		Logger:      logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build handler")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())

	if err := handler.RegisterRoutes(e); err != nil {
		logger.Fatal().Err(err).Msg("failed to register routes")
	}

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("api", cfg.APIBaseURL).Msg("starting portal")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate reports from the command line",
	}

	var cookie, out string

	newGenerator := func() (*reports.Generator, context.Context, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, nil, err
		}

		client := api.NewClient(api.Config{
			BaseURL: cfg.APIBaseURL,
			Timeout: cfg.APITimeout(),
		})

		ctx := context.Background()
		if cookie != "" {
			ctx = api.WithCredentials(ctx, cookie)
		}
		return reports.NewGenerator(
			api.NewAppointmentsService(client),
			api.NewPatientsService(client),
		), ctx, nil
	}

	emit := func(r *reports.Report) error {
		text := reports.CSV(r, time.Now())
		if out == "" {
			fmt.Print(text)
			return nil
		}
		if err := os.WriteFile(out, []byte(text), 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Printf("Report %s written to %s\n", r.ReportID, out)
		return nil
	}

	dailyCmd := &cobra.Command{
		Use:   "daily",
		Short: "Daily appointment and patient statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			date, _ := cmd.Flags().GetString("date")
			if date == "" {
				date = time.Now().Format("2006-01-02")
			}

			gen, ctx, err := newGenerator()
			if err != nil {
				return err
			}
			r, err := gen.Daily(ctx, date)
			if err != nil {
				return err
			}
			return emit(r)
		},
	}
	dailyCmd.Flags().String("date", "", "Report date (YYYY-MM-DD, defaults to today)")
	cmd.AddCommand(dailyCmd)

	monthlyCmd := &cobra.Command{
		Use:   "monthly",
		Short: "Monthly appointment and patient statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			month, _ := cmd.Flags().GetString("month")
			if month == "" {
				month = time.Now().Format("2006-01")
			}

			gen, ctx, err := newGenerator()
			if err != nil {
				return err
			}
			r, err := gen.Monthly(ctx, month)
			if err != nil {
				return err
			}
			return emit(r)
		},
	}
	monthlyCmd.Flags().String("month", "", "Report month (YYYY-MM, defaults to this month)")
	cmd.AddCommand(monthlyCmd)

	cmd.PersistentFlags().StringVar(&cookie, "cookie", "", "Session cookie header forwarded to the API")
	cmd.PersistentFlags().StringVar(&out, "out", "", "Write the report to a file instead of stdout")

	return cmd
}
