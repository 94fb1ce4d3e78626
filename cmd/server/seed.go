package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/NoraHere/CMPE180B-TeamA-DBMS/internal/repository"
	"github.com/NoraHere/CMPE180B-TeamA-DBMS/internal/seed"
	"github.com/NoraHere/CMPE180B-TeamA-DBMS/internal/service"
	"github.com/NoraHere/CMPE180B-TeamA-DBMS/pkg/upload"
)

var seedOpts seed.Options

func init() {
	seedCmd.Flags().IntVarP(&seedOpts.Papers, "papers", "n", 20, "生成的论文数量")
	seedCmd.Flags().IntVar(&seedOpts.Members, "members", 5, "额外生成的教职成员数量")
	seedCmd.Flags().Int64Var(&seedOpts.Seed, "seed", 1, "随机种子")
	rootCmd.AddCommand(seedCmd)
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate departments, categories and synthetic papers",
	Long: `Create the default departments and categories (skipping names that already
exist) and then add synthetic papers through the regular paper submission flow.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.migrate(); err != nil {
		return err
	}

	repo := repository.NewRepository(a.db)
	svc := service.NewService(a.cfg, repo, service.Deps{
		Files: upload.NewStore(&a.cfg.Upload, a.logger),
	}, a.logger)

	sum, err := seed.Run(cmd.Context(), repo, svc.Paper, seedOpts, a.logger)
	if err != nil {
		return err
	}
	svc.Reference.Invalidate()

	fmt.Fprintf(cmd.OutOrStdout(), "departments +%d, categories +%d, members +%d, papers +%d\n",
		sum.Departments, sum.Categories, sum.Members, sum.Papers)
	return nil
}
