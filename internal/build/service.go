package build

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/zklink-protocol/starknet-deployer/configs"
	"github.com/zklink-protocol/starknet-deployer/internal/infra/git"
	"github.com/zklink-protocol/starknet-deployer/internal/logger"
)

const (
	DefaultConstantsPath = "src/utils/constants.cairo"
	scarbManifest        = "Scarb.toml"
)

type (
	cloner interface {
		Clone(ctx context.Context, destDir string, repo git.Repository) error
	}

	// Builder injects network constants into the contract sources and compiles them.
	Builder struct {
		fs      afero.Fs
		cloner  cloner
		runner  Runner
		console *logger.Console
		logger  *slog.Logger
	}
)

func NewBuilder(fs afero.Fs, cloner cloner, runner Runner, console *logger.Console) *Builder {
	return &Builder{
		fs:      fs,
		cloner:  cloner,
		runner:  runner,
		console: console,
		logger:  logger.Named("builder"),
	}
}

func (b *Builder) Execute(ctx context.Context, cfg configs.Build, macro configs.Macro) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	constants, err := ConstantsFromMacro(macro)
	if err != nil {
		return err
	}

	sourceDir := cfg.SourceDir
	if sourceDir == "" {
		sourceDir = "."
	}

	if err := b.ensureSources(ctx, sourceDir, cfg.Repository); err != nil {
		return err
	}

	constantsPath := cfg.ConstantsPath
	if constantsPath == "" {
		constantsPath = DefaultConstantsPath
	}
	constantsPath = filepath.Join(sourceDir, constantsPath)

	version, err := b.runner.Version(ctx)
	if err != nil {
		return err
	}
	if err := CheckVersion(version, cfg.MinScarbVersion); err != nil {
		return err
	}

	b.logger.With("path", constantsPath, "constants", constants).Info("replacing zklink constants")
	if err := b.rewriteConstants(constantsPath, constants); err != nil {
		return err
	}
	b.console.Success("Replace zklink constants success")

	b.logger.With("scarb_version", version).Info("building zklink contracts")
	if err := b.runner.Build(ctx, sourceDir); err != nil {
		return err
	}
	b.console.Success("Build zklink contract success")

	return nil
}

func (b *Builder) ensureSources(ctx context.Context, sourceDir string, repo configs.Repository) error {
	exists, err := afero.Exists(b.fs, filepath.Join(sourceDir, scarbManifest))
	if err != nil {
		return fmt.Errorf("failed to check for %s: %w", scarbManifest, err)
	}
	if exists {
		return nil
	}

	if repo.URL == "" {
		return fmt.Errorf("no %s in '%s' and no repository configured", scarbManifest, sourceDir)
	}

	if err := b.cloner.Clone(ctx, sourceDir, git.Repository{URL: repo.URL, Ref: repo.Branch}); err != nil {
		return fmt.Errorf("failed to fetch contract sources: %w", err)
	}

	return nil
}

func (b *Builder) rewriteConstants(path string, constants Constants) error {
	source, err := afero.ReadFile(b.fs, path)
	if err != nil {
		return fmt.Errorf("failed to read constants file: %w", err)
	}

	updated, err := Inject(string(source), constants)
	if err != nil {
		return fmt.Errorf("failed to replace constants in '%s': %w", path, err)
	}

	if err := afero.WriteFile(b.fs, path, []byte(updated), 0644); err != nil {
		return fmt.Errorf("failed to write constants file: %w", err)
	}

	return nil
}
