package main

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/reactome-fi/fiflow/internal/maf"
)

func newDownloadCmd() *cobra.Command {
	var (
		sandbox string
		baseURL string
	)

	cmd := &cobra.Command{
		Use:   "download <cohort>...",
		Short: "Download cohort MAF files from Firebrowse",
		Long: `Downloads the mutation (MAF) file for each cancer type cohort into the
sandbox directory as <cohort>.maf, paging through the Firebrowse
Analyses/Mutation/MAF endpoint until it is exhausted.`,
		Example: `  fiflow download OV
  fiflow download OV BRCA --sandbox /data/maf`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if sandbox == "" {
				sandbox = viper.GetString("sandbox")
			}
			if sandbox == "" {
				sandbox = "."
			}

			downloader := maf.NewDownloader(baseURL)
			downloader.SetLogger(logger)
			for _, cohort := range args {
				outFile := filepath.Join(sandbox, cohort+".maf")
				if _, err := downloader.Download(cohort, outFile); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&sandbox, "sandbox", "s", "", "directory to place the MAF files in (default is the working directory)")
	cmd.Flags().StringVar(&baseURL, "url", "", "the Firebrowse MAF endpoint (default "+maf.DefaultDownloadURL+")")

	return cmd
}
