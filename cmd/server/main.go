package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"cartorio-reconciliation-backend/internal/config"
	"cartorio-reconciliation-backend/internal/repository"
	"cartorio-reconciliation-backend/internal/routes"
	"cartorio-reconciliation-backend/internal/services/importer"
	"cartorio-reconciliation-backend/internal/session"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	v = config.NewViper()

	rootCmd = &cobra.Command{
		Use:   "server",
		Short: "Bank statement reconciliation API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, err := connect(); err != nil {
				return err
			}
			log.Println("Database schema up to date")
			return nil
		},
	}

	importCmd = &cobra.Command{
		Use:   "import",
		Short: "Import an OFX or CSV statement into an account",
		RunE:  runImport,
	}
)

func init() {
	rootCmd.PersistentFlags().String("port", "", "HTTP port (overrides SERVER_PORT)")
	_ = v.BindPFlag("server.port", rootCmd.PersistentFlags().Lookup("port"))

	importCmd.Flags().String("user", "", "owner user ID")
	importCmd.Flags().String("account", "", "bank account ID")
	importCmd.Flags().String("file", "", "path to the statement file")
	_ = importCmd.MarkFlagRequired("user")
	_ = importCmd.MarkFlagRequired("account")
	_ = importCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(migrateCmd, importCmd)
}

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system env")
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// connect loads configuration, opens the database and brings the schema up
// to date.
func connect() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, nil, err
	}
	db, err := config.InitDB(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	if err := config.Migrate(db); err != nil {
		return nil, nil, fmt.Errorf("migrating: %w", err)
	}
	return cfg, db, nil
}

func serve() error {
	cfg, db, err := connect()
	if err != nil {
		return err
	}

	r := gin.Default()
	r.MaxMultipartMemory = cfg.Import.MaxSizeBytes
	// CORS config
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", session.Header},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, db, cfg)

	return r.Run(":" + cfg.Server.Port)
}

func runImport(cmd *cobra.Command, args []string) error {
	userFlag, _ := cmd.Flags().GetString("user")
	accountFlag, _ := cmd.Flags().GetString("account")
	path, _ := cmd.Flags().GetString("file")

	sess, err := session.Parse(userFlag)
	if err != nil {
		return err
	}
	accountID, err := uuid.Parse(accountFlag)
	if err != nil {
		return fmt.Errorf("invalid account ID: %w", err)
	}

	cfg, db, err := connect()
	if err != nil {
		return err
	}

	opts := importer.Options{MaxSize: cfg.Import.MaxSizeBytes, DemoOnEmptyParse: cfg.Import.DemoOnEmptyParse}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	filename := filepath.Base(path)
	if _, err := importer.Check(filename, info.Size(), opts); err != nil {
		return err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	svc := importer.NewService(repository.NewAccountRepository(db), repository.NewStatementRepository(db), opts)
	statement, err := svc.Import(context.Background(), sess, accountID, filename, content)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "statement %s: %d items (%s to %s)\n",
		statement.ID, statement.TotalItems,
		statement.PeriodStart.Format("02/01/2006"), statement.PeriodEnd.Format("02/01/2006"))
	return nil
}
