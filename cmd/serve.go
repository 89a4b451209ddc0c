package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/insightequity/alpha-api/internal/auth"
	"github.com/insightequity/alpha-api/internal/db/bunx"
	"github.com/insightequity/alpha-api/internal/repository"
	"github.com/insightequity/alpha-api/internal/server"
	"github.com/insightequity/alpha-api/internal/services/reportgen"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Starts the HTTP server with the browser pages and the JSON API.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Connect to database
		db, err := bunx.NewDB(cfg.DatabaseURL, cfg.MaxDBConnections)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)

		log.Printf("Connected to database")

		sessions := auth.NewSessions(cfg)
		authorizer, err := auth.NewAuthorizer()
		if err != nil {
			return fmt.Errorf("failed to build authorizer: %w", err)
		}

		r := server.NewRouter(server.RouterOptions{
			Cfg:          cfg,
			Sessions:     sessions,
			Authorizer:   authorizer,
			Users:        repository.NewBunUserRepository(db),
			Companies:    repository.NewBunCompanyRepository(db),
			Reports:      repository.NewBunReportRepository(db),
			MeetingNotes: repository.NewBunMeetingNoteRepository(db),
			APIKeys:      repository.NewBunAPIKeyRepository(db),
			ReportGen:    reportgen.NewGenerator(),
		})

		srv := &http.Server{
			Addr:         cfg.ServerAddr,
			Handler:      r,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		// Start server in goroutine
		serverErrors := make(chan error, 1)
		go func() {
			log.Printf("Starting server on %s", cfg.ServerAddr)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			log.Printf("Received signal %v, shutting down gracefully", sig)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				srv.Close()
				return fmt.Errorf("graceful shutdown failed: %w", err)
			}

			log.Printf("Server stopped")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
