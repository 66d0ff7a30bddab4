package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/zklink-protocol/starknet-deployer/internal/infra/filesystem"
	"github.com/zklink-protocol/starknet-deployer/internal/logger"
)

// ErrArtifactNotFound is returned when a contract name does not resolve to
// exactly one readable Sierra/CASM pair.
var ErrArtifactNotFound = errors.New("artifact not found")

// Default manifest written by scarb for the zklink package.
const DefaultManifestPath = "target/release/zklink.starknet_artifacts.json"

type (
	// ContractName is the logical contract name used in the scarb manifest.
	ContractName string

	// ContractClass is a compiled contract: the Sierra class used for
	// declaration and the CASM bytecode whose hash the declaration commits to.
	ContractClass struct {
		Name   ContractName
		Sierra json.RawMessage
		Casm   json.RawMessage
	}

	manifest struct {
		Version   int             `json:"version"`
		Contracts []manifestEntry `json:"contracts"`
	}

	manifestEntry struct {
		ID           string `json:"id"`
		PackageName  string `json:"package_name"`
		ContractName string `json:"contract_name"`
		Artifacts    struct {
			Sierra string `json:"sierra"`
			Casm   string `json:"casm"`
		} `json:"artifacts"`
	}

	// Resolver maps contract names to compiled classes using the scarb
	// artifacts manifest. Artifact paths are relative to the manifest.
	Resolver struct {
		manifestPath string
		reader       filesystem.Reader
		logger       *slog.Logger
	}
)

const (
	ContractZklink     ContractName = "Zklink"
	ContractVerifier   ContractName = "Verifier"
	ContractGatekeeper ContractName = "UpgradeGateKeeper"
	ContractMulticall  ContractName = "Multicall"
	ContractFaucet     ContractName = "FaucetToken"
)

func NewResolver(manifestPath string, reader filesystem.Reader) *Resolver {
	return &Resolver{
		manifestPath: manifestPath,
		reader:       reader,
		logger:       logger.Named("artifact_resolver"),
	}
}

// Resolve loads the Sierra and CASM artifacts for name.
func (r *Resolver) Resolve(name ContractName) (ContractClass, error) {
	var m manifest
	if err := r.reader.ReadJSON(r.manifestPath, &m); err != nil {
		return ContractClass{}, fmt.Errorf("%w: cannot read manifest: %w", ErrArtifactNotFound, err)
	}

	var matches []manifestEntry
	for _, entry := range m.Contracts {
		if entry.ContractName == string(name) {
			matches = append(matches, entry)
		}
	}

	switch len(matches) {
	case 0:
		return ContractClass{}, fmt.Errorf("%w: no contract named '%s' in '%s'", ErrArtifactNotFound, name, r.manifestPath)
	case 1:
	default:
		return ContractClass{}, fmt.Errorf("%w: %d contracts named '%s' in '%s'", ErrArtifactNotFound, len(matches), name, r.manifestPath)
	}

	entry := matches[0]
	baseDir := filepath.Dir(r.manifestPath)

	sierra, err := r.readArtifact(filepath.Join(baseDir, entry.Artifacts.Sierra))
	if err != nil {
		return ContractClass{}, fmt.Errorf("%w: sierra class of '%s': %w", ErrArtifactNotFound, name, err)
	}

	casm, err := r.readArtifact(filepath.Join(baseDir, entry.Artifacts.Casm))
	if err != nil {
		return ContractClass{}, fmt.Errorf("%w: casm class of '%s': %w", ErrArtifactNotFound, name, err)
	}

	r.logger.With("contract", name, "id", entry.ID).Debug("artifact resolved")

	return ContractClass{Name: name, Sierra: sierra, Casm: casm}, nil
}

func (r *Resolver) readArtifact(path string) (json.RawMessage, error) {
	data, err := r.reader.ReadBytes(path)
	if err != nil {
		return nil, err
	}

	if !json.Valid(data) {
		return nil, fmt.Errorf("'%s' is not valid JSON", path)
	}

	return data, nil
}
