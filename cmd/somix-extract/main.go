// Command somix-extract runs the source-structure extractor over a
// directory of Python files and writes a SOMIX/MSE model file.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/viant/somix-extract/internal/config"
	"github.com/viant/somix-extract/internal/pipeline"
	"github.com/viant/somix-extract/internal/project"
	"github.com/viant/somix-extract/internal/xerrors"
	"github.com/viant/somix-extract/internal/xlog"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var (
		basePath      string
		outputPath    string
		configPath    string
		logJSON       bool
		maxIterations int
	)

	root := &cobra.Command{
		Use:   "somix-extract",
		Short: "Extract a SOMIX structural model from a Python source tree",
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := resolveSettings(configPath, basePath, outputPath, logJSON, maxIterations)
			if err != nil {
				return err
			}
			log := xlog.New(xlog.Config{JSON: settings.LogJSON})
			xlog.SetDefault(log)

			if settings.BasePath == "" {
				prompted, err := promptBasePath()
				if err != nil {
					return xerrors.FatalConfig(err)
				}
				settings.BasePath = prompted
			}

			info, err := os.Stat(settings.BasePath)
			if err != nil || !info.IsDir() {
				return xerrors.FatalConfig(fmt.Errorf("base path %q is not a readable directory", settings.BasePath))
			}

			doc, err := pipeline.Run(context.Background(), settings.BasePath, settings.MaxIterations, log)
			if err != nil {
				return err
			}

			outPath := outputFilePath(settings.BasePath, settings.OutputPath)
			if err := os.WriteFile(outPath, doc, 0644); err != nil {
				return xerrors.IO(outPath, err)
			}
			log.Info("wrote model", "path", outPath)
			return nil
		},
	}

	root.Flags().StringVar(&basePath, "base-path", "", "root directory of the Python source tree")
	root.Flags().StringVar(&outputPath, "output-path", "", "directory to write the .mse output file into")
	root.Flags().StringVar(&configPath, "config", "", "key=value config file (base_path, output_path)")
	root.Flags().BoolVar(&logJSON, "log-json", false, "emit logs as JSON instead of text")
	root.Flags().IntVar(&maxIterations, "max-iterations", config.DefaultMaxIterations, "fixpoint iteration ceiling")

	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func resolveSettings(configPath, basePath, outputPath string, logJSON bool, maxIterations int) (config.Settings, error) {
	fromFile, err := config.LoadFile(configPath)
	if err != nil {
		return config.Settings{}, err
	}
	return fromFile.Merge(config.Settings{
		BasePath:      basePath,
		OutputPath:    outputPath,
		LogJSON:       logJSON,
		MaxIterations: maxIterations,
	}), nil
}

// promptBasePath asks interactively for the base path when it is still
// unresolved after flags and config file.
func promptBasePath() (string, error) {
	var path string
	input := huh.NewInput().
		Title("Base directory to extract").
		Value(&path)
	form := huh.NewForm(huh.NewGroup(input))
	if err := form.Run(); err != nil {
		return "", err
	}
	return path, nil
}

// outputFilePath builds "<repo_basename>_<YYYYMMDD_HHMMSS>.mse" inside dir
// (or the current working directory if dir is empty). The repo basename
// prefers a declared project name (pyproject.toml, setup.py, git origin)
// over the bare directory name.
func outputFilePath(basePath, dir string) string {
	base := project.Name(basePath)
	name := fmt.Sprintf("%s_%s.mse", base, time.Now().Format("20060102_150405"))
	if dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}
