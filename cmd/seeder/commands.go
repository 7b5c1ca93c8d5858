package main

import (
    "database/sql"
    "errors"
    "fmt"
    "os"

    "github.com/sirupsen/logrus"
    "github.com/spf13/cobra"

    "github.com/unclebandit/customer-address-backend/internal/config"
    "github.com/unclebandit/customer-address-backend/internal/db"
    appErrors "github.com/unclebandit/customer-address-backend/internal/errors"
    "github.com/unclebandit/customer-address-backend/internal/logging"
    "github.com/unclebandit/customer-address-backend/internal/repository"
)

var (
    cfg  *config.Config
    log  *logrus.Logger
    conn *sql.DB

    seedFiles     []string
    demoCustomers int
)

var rootCmd = &cobra.Command{
    Use:               "seeder",
    Short:             "Prepare and populate the customer database",
    SilenceUsage:      true,
    CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
    PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
        if !needsDatabase(cmd) {
            return nil
        }

        var err error
        cfg, err = config.Load()
        if err != nil {
            return fmt.Errorf("failed to load config: %w", err)
        }
        log = logging.New(cfg.LogLevel, cfg.LogFormat)

        conn, err = db.Open(cmd.Context(), db.Options{
            DSN:             cfg.DatabaseURL,
            MaxOpenConns:    cfg.MaxOpenConns,
            MaxIdleConns:    cfg.MaxIdleConns,
            ConnMaxLifetime: cfg.ConnMaxLifetime,
            PingTimeout:     cfg.StoreTimeout,
        })
        return err
    },
    PersistentPostRun: func(cmd *cobra.Command, args []string) {
        if conn != nil {
            conn.Close()
        }
    },
}

// needsDatabase is false for cobra's built-in commands.
func needsDatabase(cmd *cobra.Command) bool {
    switch cmd.Name() {
    case "help", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd, "completion":
        return false
    }
    return cmd != cmd.Root()
}

var schemaCmd = &cobra.Command{
    Use:   "schema",
    Short: "Create the customers and addresses tables",
    RunE: func(cmd *cobra.Command, args []string) error {
        if err := db.EnsureSchema(cmd.Context(), conn); err != nil {
            return err
        }
        fmt.Println("Schema is up to date.")
        return nil
    },
}

var loadCmd = &cobra.Command{
    Use:   "load",
    Short: "Execute seed SQL files in order",
    RunE: func(cmd *cobra.Command, args []string) error {
        ctx := cmd.Context()
        if err := db.EnsureSchema(ctx, conn); err != nil {
            return err
        }

        for _, file := range seedFiles {
            content, err := os.ReadFile(file)
            if err != nil {
                return fmt.Errorf("failed to read %s: %w", file, err)
            }
            if _, err := conn.ExecContext(ctx, string(content)); err != nil {
                return fmt.Errorf("failed to execute %s: %w", file, err)
            }
            fmt.Printf("Seeded: %s\n", file)
        }

        fmt.Println("Database seeding completed successfully!")
        return nil
    },
}

var demoCmd = &cobra.Command{
    Use:   "demo",
    Short: "Insert generated demo customers with addresses",
    RunE: func(cmd *cobra.Command, args []string) error {
        ctx := cmd.Context()
        if err := db.EnsureSchema(ctx, conn); err != nil {
            return err
        }

        customers := &repository.CustomerRepository{DB: conn, Timeout: cfg.StoreTimeout}
        addresses := &repository.AddressRepository{DB: conn, Timeout: cfg.StoreTimeout}

        created, skipped := 0, 0
        for i := 1; i <= demoCustomers; i++ {
            in, addrs := demoCustomer(i)
            id, err := customers.Create(ctx, in)
            var conflict *appErrors.ConstraintViolation
            if errors.As(err, &conflict) {
                skipped++
                continue
            }
            if err != nil {
                return err
            }
            for _, a := range addrs {
                if _, err := addresses.Create(ctx, id, a); err != nil {
                    return err
                }
            }
            created++
        }

        log.WithFields(logrus.Fields{"created": created, "skipped": skipped}).Info("demo data inserted")
        return nil
    },
}

func init() {
    loadCmd.Flags().StringSliceVar(&seedFiles, "file", []string{"seed/customers.sql", "seed/addresses.sql"}, "seed SQL files, executed in order")
    demoCmd.Flags().IntVar(&demoCustomers, "customers", 50, "number of customers to generate")

    rootCmd.AddCommand(schemaCmd)
    rootCmd.AddCommand(loadCmd)
    rootCmd.AddCommand(demoCmd)
}
