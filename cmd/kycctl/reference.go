package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"medstaff-dashboard/internal/config"
	"medstaff-dashboard/internal/domain/ports/repository"
	"medstaff-dashboard/internal/infra/account"
	red "medstaff-dashboard/internal/infra/redis"
	"medstaff-dashboard/internal/usecase"
)

var referenceCmd = &cobra.Command{
	Use:   "reference",
	Short: "Manage the cached categories and services",
}

var referenceRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Drop the cached lists and fetch them again from the account service",
	RunE:  runReferenceRefresh,
}

func init() {
	referenceCmd.AddCommand(referenceRefreshCmd)
}

func runReferenceRefresh(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	var cache repository.ReferenceCache
	if cfg.Storage.Driver == config.StorageRedis {
		client, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer client.Close()
		cache = red.NewReferenceCache(client, cfg.Reference.TTL, cfg.Reference.MaxItems)
	}

	ref := usecase.NewReferenceUseCase(account.NewClient(cfg.Account, logger), cache, logger)
	if err := ref.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	cats, err := ref.Categories(ctx, "", 1, 1)
	if err != nil {
		return err
	}
	svcs, err := ref.Services(ctx, "", 1, 1)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "refreshed %d categories and %d services\n", cats.Total, svcs.Total)
	return nil
}
